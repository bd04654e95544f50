package models

import (
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// User is an account. Every user owns exactly one Profile.
type User struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Email       string    `json:"email" gorm:"size:254;uniqueIndex;not null"`
	Username    string    `json:"username" gorm:"size:150;uniqueIndex;not null"`
	Password    string    `json:"-"`                              // bcrypt hash
	FirebaseUID *string   `json:"-" gorm:"size:128;uniqueIndex"` // set once the account is linked to Firebase
	IsStaff     bool      `json:"is_staff" gorm:"default:false"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	Profile *Profile `json:"-" gorm:"constraint:OnDelete:CASCADE"`
}

// UserCompact is the author/actor summary embedded in feed and notification payloads.
type UserCompact struct {
	Username     string `json:"username"`
	DisplayName  string `json:"display_name"`
	Avatar       string `json:"avatar"`
	PlayingLevel string `json:"playing_level,omitempty"`
}

// DisplayName returns the profile's display name, falling back to the username.
func (u *User) DisplayName() string {
	if u.Profile != nil && u.Profile.DisplayName != "" {
		return u.Profile.DisplayName
	}
	return u.Username
}

// ToCompact requires Profile to be preloaded for avatar and level.
func (u *User) ToCompact() UserCompact {
	compact := UserCompact{
		Username:    u.Username,
		DisplayName: u.DisplayName(),
	}
	if u.Profile != nil {
		compact.Avatar = u.Profile.Avatar
		compact.PlayingLevel = u.Profile.PlayingLevel
	}
	return compact
}

type SignupRequest struct {
	Email           string `json:"email" validate:"required,email,max=254"`
	Username        string `json:"username" validate:"required,min=3,max=150"`
	Password        string `json:"password" validate:"required,min=8"`
	PasswordConfirm string `json:"password_confirm" validate:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type RefreshRequest struct {
	Refresh string `json:"refresh"`
}

type FirebaseLoginRequest struct {
	IDToken string `json:"idToken" validate:"required"`
}

// TokenPair is returned by signup and login.
type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

// JwtCustomClaims are custom claims extending standard jwt.RegisteredClaims
type JwtCustomClaims struct {
	UserID    uint   `json:"user_id"`
	Email     string `json:"email"`
	TokenType string `json:"token_type"`
	jwt.RegisteredClaims
}
