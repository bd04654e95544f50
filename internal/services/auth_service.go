package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	fbauth "firebase.google.com/go/v4/auth"
	"github.com/anonto42/spinforge/backend/internal/apperror"
	"github.com/anonto42/spinforge/backend/internal/auth"
	"github.com/anonto42/spinforge/backend/internal/models"
	"github.com/anonto42/spinforge/backend/internal/repositories"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// IDTokenVerifier is satisfied by firebase.Verifier and *auth.Client.
type IDTokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*fbauth.Token, error)
}

type AuthService struct {
	users     repositories.UserRepository
	tokens    *auth.TokenService
	passwords *auth.PasswordHasher
	revoker   repositories.TokenRevoker
	firebase  IDTokenVerifier
	logger    *slog.Logger
}

func NewAuthService(
	users repositories.UserRepository,
	tokens *auth.TokenService,
	passwords *auth.PasswordHasher,
	revoker repositories.TokenRevoker,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		users:     users,
		tokens:    tokens,
		passwords: passwords,
		revoker:   revoker,
		logger:    logger,
	}
}

// SetFirebase enables FirebaseLogin.
func (s *AuthService) SetFirebase(verifier IDTokenVerifier) {
	s.firebase = verifier
}

func (s *AuthService) FirebaseEnabled() bool {
	return s.firebase != nil
}

func (s *AuthService) Signup(ctx context.Context, req models.SignupRequest) (*models.User, *models.TokenPair, error) {
	if req.Password != req.PasswordConfirm {
		return nil, nil, apperror.ValidationFailed("password", "Password fields didn't match.")
	}

	email := normalizeEmail(req.Email)
	username := strings.TrimSpace(req.Username)

	fields := map[string]string{}
	if exists, err := s.users.EmailExists(ctx, email); err != nil {
		return nil, nil, err
	} else if exists {
		fields["email"] = "A user with this email already exists."
	}
	if exists, err := s.users.UsernameExists(ctx, username); err != nil {
		return nil, nil, err
	} else if exists {
		fields["username"] = "A user with that username already exists."
	}
	if len(fields) > 0 {
		return nil, nil, apperror.InvalidFields(fields)
	}

	hash, err := s.passwords.Hash(req.Password)
	if err != nil {
		return nil, nil, apperror.ValidationFailed("password", "Password must be 72 bytes or fewer.")
	}

	user := &models.User{Email: email, Username: username, Password: hash}
	if err := s.users.CreateUserWithProfile(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, nil, apperror.BadRequest("A user with this email or username already exists.")
		}
		return nil, nil, fmt.Errorf("creating user: %w", err)
	}

	pair, err := s.tokens.IssuePair(user)
	if err != nil {
		return nil, nil, err
	}
	s.logger.InfoContext(ctx, "user registered", slog.Uint64("user_id", uint64(user.ID)))
	return user, pair, nil
}

func (s *AuthService) Login(ctx context.Context, req models.LoginRequest) (*models.User, *models.TokenPair, error) {
	invalid := apperror.BadRequest("Invalid email or password.")

	user, err := s.users.GetUserByEmail(ctx, normalizeEmail(req.Email))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, invalid
	}
	if err != nil {
		return nil, nil, err
	}
	if user.Password == "" {
		return nil, nil, invalid
	}
	if err := s.passwords.Verify(user.Password, req.Password); err != nil {
		if errors.Is(err, auth.ErrPasswordMismatch) {
			return nil, nil, invalid
		}
		return nil, nil, err
	}

	pair, err := s.tokens.IssuePair(user)
	if err != nil {
		return nil, nil, err
	}
	return user, pair, nil
}

// Logout revokes the caller's refresh token.
func (s *AuthService) Logout(ctx context.Context, userID uint, refresh string) error {
	if strings.TrimSpace(refresh) == "" {
		return apperror.BadRequest("Refresh token is required.")
	}
	invalid := apperror.BadRequest("Invalid token or token already blacklisted.")

	claims, err := s.tokens.Parse(refresh, models.TokenTypeRefresh)
	if err != nil || claims.UserID != userID {
		return invalid
	}
	revoked, err := s.revoker.IsRevoked(ctx, claims.ID)
	if err != nil {
		return err
	}
	if revoked {
		return invalid
	}
	return s.revoker.Revoke(ctx, claims.ID, claims.UserID, claims.ExpiresAt.Time)
}

// Refresh exchanges a valid, unrevoked refresh token for a new access token.
func (s *AuthService) Refresh(ctx context.Context, refresh string) (string, error) {
	if strings.TrimSpace(refresh) == "" {
		return "", apperror.BadRequest("Refresh token is required.")
	}
	claims, err := s.tokens.Parse(refresh, models.TokenTypeRefresh)
	if err != nil {
		return "", apperror.Unauthorized("Token is invalid or expired.")
	}
	revoked, err := s.revoker.IsRevoked(ctx, claims.ID)
	if err != nil {
		return "", err
	}
	if revoked {
		return "", apperror.Unauthorized("Token is blacklisted.")
	}
	if _, err := s.users.GetUserByID(ctx, claims.UserID); err != nil {
		return "", apperror.Unauthorized("User not found.")
	}
	return s.tokens.IssueAccess(claims)
}

func (s *AuthService) CurrentUser(ctx context.Context, userID uint) (*models.User, error) {
	user, err := s.users.GetUserByID(ctx, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperror.Unauthorized("User not found.")
	}
	return user, err
}

// FirebaseLogin verifies a Firebase ID token and signs in the matching local
// user, linking by email or creating the account on first sight.
func (s *AuthService) FirebaseLogin(ctx context.Context, idToken string) (*models.User, *models.TokenPair, error) {
	if s.firebase == nil {
		return nil, nil, apperror.NotFoundMessage("Firebase login is not enabled.")
	}

	token, err := s.firebase.VerifyIDToken(ctx, idToken)
	if err != nil {
		return nil, nil, apperror.Unauthorized("Invalid Firebase ID token.")
	}
	email, _ := token.Claims["email"].(string)
	if email == "" {
		return nil, nil, apperror.BadRequest("Firebase account has no email address.")
	}
	email = normalizeEmail(email)
	uid := token.UID

	user, err := s.users.GetUserByFirebaseUID(ctx, uid)
	switch {
	case err == nil:
	case errors.Is(err, gorm.ErrRecordNotFound):
		user, err = s.linkOrCreateFirebaseUser(ctx, uid, email)
		if err != nil {
			return nil, nil, err
		}
	default:
		return nil, nil, err
	}

	pair, err := s.tokens.IssuePair(user)
	if err != nil {
		return nil, nil, err
	}
	return user, pair, nil
}

func (s *AuthService) linkOrCreateFirebaseUser(ctx context.Context, uid, email string) (*models.User, error) {
	user, err := s.users.GetUserByEmail(ctx, email)
	if err == nil {
		user.FirebaseUID = &uid
		if err := s.users.UpdateUser(ctx, user); err != nil {
			return nil, fmt.Errorf("linking firebase account: %w", err)
		}
		return user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	username, err := s.availableUsername(ctx, email)
	if err != nil {
		return nil, err
	}
	user = &models.User{Email: email, Username: username, FirebaseUID: &uid}
	if err := s.users.CreateUserWithProfile(ctx, user); err != nil {
		return nil, fmt.Errorf("creating firebase user: %w", err)
	}
	s.logger.InfoContext(ctx, "user registered via firebase", slog.Uint64("user_id", uint64(user.ID)))
	return user, nil
}

var usernameUnsafe = regexp.MustCompile(`[^a-zA-Z0-9_.+-]`)

// availableUsername derives a username from the email's local part, adding a
// random suffix when it is taken.
func (s *AuthService) availableUsername(ctx context.Context, email string) (string, error) {
	base := usernameUnsafe.ReplaceAllString(strings.SplitN(email, "@", 2)[0], "")
	if len(base) < 3 {
		base = "player"
	}
	if len(base) > 140 {
		base = base[:140]
	}

	candidate := base
	for i := 0; i < 5; i++ {
		exists, err := s.users.UsernameExists(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !exists {
			return candidate, nil
		}
		candidate = base + "_" + uuid.NewString()[:8]
	}
	return "", fmt.Errorf("could not find a free username for %q", base)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
