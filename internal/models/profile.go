package models

import "time"

const (
	PlayingLevelBeginner     = "Beginner"
	PlayingLevelIntermediate = "Intermediate"
	PlayingLevelAdvanced     = "Advanced"
)

const (
	MinSkillRating     = 1
	MaxSkillRating     = 10
	DefaultSkillRating = 1
)

// Profile holds the public, self-editable part of a user.
type Profile struct {
	ID             uint      `json:"id" gorm:"primaryKey"`
	UserID         uint      `json:"-" gorm:"uniqueIndex;not null"`
	DisplayName    string    `json:"display_name" gorm:"size:150"`
	Bio            string    `json:"bio" gorm:"size:500"`
	PlayingLevel   string    `json:"playing_level" gorm:"size:20"`
	ForehandRating int       `json:"forehand_rating" gorm:"default:1;not null"`
	BackhandRating int       `json:"backhand_rating" gorm:"default:1;not null"`
	ServeRating    int       `json:"serve_rating" gorm:"default:1;not null"`
	FootworkRating int       `json:"footwork_rating" gorm:"default:1;not null"`
	Avatar         string    `json:"avatar" gorm:"size:255"`
	Location       string    `json:"location" gorm:"size:100"`
	Website        string    `json:"website" gorm:"size:200"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// NewProfile returns the default profile for a freshly created user.
func NewProfile(user *User) *Profile {
	return &Profile{
		UserID:         user.ID,
		DisplayName:    user.Username,
		ForehandRating: DefaultSkillRating,
		BackhandRating: DefaultSkillRating,
		ServeRating:    DefaultSkillRating,
		FootworkRating: DefaultSkillRating,
	}
}

// UpdateProfileRequest is a partial update: nil fields are left untouched.
type UpdateProfileRequest struct {
	DisplayName    *string `json:"display_name" validate:"omitempty,max=150"`
	Bio            *string `json:"bio" validate:"omitempty,max=500"`
	PlayingLevel   *string `json:"playing_level" validate:"omitempty,oneof=Beginner Intermediate Advanced ''"`
	ForehandRating *int    `json:"forehand_rating" validate:"omitempty,rating"`
	BackhandRating *int    `json:"backhand_rating" validate:"omitempty,rating"`
	ServeRating    *int    `json:"serve_rating" validate:"omitempty,rating"`
	FootworkRating *int    `json:"footwork_rating" validate:"omitempty,rating"`
	Avatar         *string `json:"avatar" validate:"omitempty,max=255"`
	Location       *string `json:"location" validate:"omitempty,max=100"`
	Website        *string `json:"website" validate:"omitempty,max=200,url_or_blank"`
}
