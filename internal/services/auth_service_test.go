package services

import (
	"context"
	"errors"
	"testing"
	"time"

	fbauth "firebase.google.com/go/v4/auth"
	"github.com/anonto42/spinforge/backend/internal/apperror"
	"github.com/anonto42/spinforge/backend/internal/auth"
	"github.com/anonto42/spinforge/backend/internal/models"
	"github.com/anonto42/spinforge/backend/internal/repositories"
	"github.com/anonto42/spinforge/backend/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type authFixture struct {
	svc    *AuthService
	tokens *auth.TokenService
	db     *gorm.DB
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	db := testutil.NewTestDB(t)
	tokens, err := auth.NewTokenService("test-secret-0123456789", 5*time.Minute, time.Hour)
	require.NoError(t, err)
	svc := NewAuthService(
		repositories.NewPostgresUserRepository(db),
		tokens,
		auth.NewPasswordHasherWithCost(bcrypt.MinCost),
		repositories.NewPostgresTokenRevoker(db),
		testutil.DiscardLogger(),
	)
	return &authFixture{svc: svc, tokens: tokens, db: db}
}

func (f *authFixture) signup(t *testing.T, username string) (*models.User, *models.TokenPair) {
	t.Helper()
	user, pair, err := f.svc.Signup(context.Background(), models.SignupRequest{
		Email:           username + "@example.com",
		Username:        username,
		Password:        "backspin-123",
		PasswordConfirm: "backspin-123",
	})
	require.NoError(t, err)
	return user, pair
}

func TestSignup(t *testing.T) {
	f := newAuthFixture(t)
	user, pair, err := f.svc.Signup(context.Background(), models.SignupRequest{
		Email:           "  Alice@Example.COM ",
		Username:        "alice",
		Password:        "backspin-123",
		PasswordConfirm: "backspin-123",
	})
	require.NoError(t, err)

	assert.Equal(t, "alice@example.com", user.Email)
	assert.NotEqual(t, "backspin-123", user.Password)

	claims, err := f.tokens.Parse(pair.Access, models.TokenTypeAccess)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)

	var profile models.Profile
	require.NoError(t, f.db.Where("user_id = ?", user.ID).First(&profile).Error)
	assert.Equal(t, "alice", profile.DisplayName)
}

func TestSignup_Rejections(t *testing.T) {
	f := newAuthFixture(t)
	f.signup(t, "alice")

	_, _, err := f.svc.Signup(context.Background(), models.SignupRequest{
		Email: "new@example.com", Username: "newbie", Password: "backspin-123", PasswordConfirm: "topspin-123",
	})
	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "Password fields didn't match.", appErr.Fields["password"])

	_, _, err = f.svc.Signup(context.Background(), models.SignupRequest{
		Email: "ALICE@example.com", Username: "alice", Password: "backspin-123", PasswordConfirm: "backspin-123",
	})
	require.ErrorAs(t, err, &appErr)
	assert.ErrorIs(t, err, apperror.ErrValidation)
	assert.Equal(t, "A user with this email already exists.", appErr.Fields["email"])
	assert.Equal(t, "A user with that username already exists.", appErr.Fields["username"])
}

func TestLogin(t *testing.T) {
	f := newAuthFixture(t)
	alice, _ := f.signup(t, "alice")

	user, pair, err := f.svc.Login(context.Background(), models.LoginRequest{Email: "ALICE@example.com", Password: "backspin-123"})
	require.NoError(t, err)
	assert.Equal(t, alice.ID, user.ID)
	assert.NotEmpty(t, pair.Refresh)

	for _, req := range []models.LoginRequest{
		{Email: "alice@example.com", Password: "wrong-password"},
		{Email: "nobody@example.com", Password: "backspin-123"},
	} {
		_, _, err := f.svc.Login(context.Background(), req)
		var appErr *apperror.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, "Invalid email or password.", appErr.Message)
	}
}

func TestRefreshAndLogout(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	alice, pair := f.signup(t, "alice")

	access, err := f.svc.Refresh(ctx, pair.Refresh)
	require.NoError(t, err)
	claims, err := f.tokens.Parse(access, models.TokenTypeAccess)
	require.NoError(t, err)
	assert.Equal(t, alice.ID, claims.UserID)

	// An access token is not a refresh token.
	_, err = f.svc.Refresh(ctx, pair.Access)
	assert.ErrorIs(t, err, apperror.ErrUnauthorized)

	require.NoError(t, f.svc.Logout(ctx, alice.ID, pair.Refresh))

	_, err = f.svc.Refresh(ctx, pair.Refresh)
	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "Token is blacklisted.", appErr.Message)

	err = f.svc.Logout(ctx, alice.ID, pair.Refresh)
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "Invalid token or token already blacklisted.", appErr.Message)

	err = f.svc.Logout(ctx, alice.ID, "")
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "Refresh token is required.", appErr.Message)
}

func TestLogout_OtherUsersToken(t *testing.T) {
	f := newAuthFixture(t)
	alice, _ := f.signup(t, "alice")
	_, bobPair := f.signup(t, "bob")

	err := f.svc.Logout(context.Background(), alice.ID, bobPair.Refresh)
	assert.ErrorIs(t, err, apperror.ErrValidation)

	_, err = f.svc.Refresh(context.Background(), bobPair.Refresh)
	assert.NoError(t, err, "a rejected logout revokes nothing")
}

type fakeVerifier struct {
	tokens map[string]*fbauth.Token
}

func (v *fakeVerifier) VerifyIDToken(_ context.Context, idToken string) (*fbauth.Token, error) {
	token, ok := v.tokens[idToken]
	if !ok {
		return nil, errors.New("token signature invalid")
	}
	return token, nil
}

func firebaseToken(uid, email string) *fbauth.Token {
	return &fbauth.Token{UID: uid, Claims: map[string]interface{}{"email": email}}
}

func TestFirebaseLogin(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	_, _, err := f.svc.FirebaseLogin(ctx, "anything")
	assert.ErrorIs(t, err, apperror.ErrNotFound, "disabled without a verifier")

	alice, _ := f.signup(t, "alice")
	testutil.CreateUser(t, f.db, "carol")
	f.svc.SetFirebase(&fakeVerifier{tokens: map[string]*fbauth.Token{
		"alice-token": firebaseToken("uid-alice", "Alice@example.com"),
		"new-token":   firebaseToken("uid-new", "carol@elsewhere.org"),
		"short-token": firebaseToken("uid-short", "jo@example.org"),
		"noemail":     {UID: "uid-x", Claims: map[string]interface{}{}},
	}})
	require.True(t, f.svc.FirebaseEnabled())

	// Links the existing account by email.
	user, pair, err := f.svc.FirebaseLogin(ctx, "alice-token")
	require.NoError(t, err)
	assert.Equal(t, alice.ID, user.ID)
	require.NotNil(t, user.FirebaseUID)
	assert.Equal(t, "uid-alice", *user.FirebaseUID)
	assert.NotEmpty(t, pair.Access)

	// Second login finds the user by UID.
	again, _, err := f.svc.FirebaseLogin(ctx, "alice-token")
	require.NoError(t, err)
	assert.Equal(t, alice.ID, again.ID)

	// Creates a new account; "carol" is taken so a suffix is added.
	created, _, err := f.svc.FirebaseLogin(ctx, "new-token")
	require.NoError(t, err)
	assert.Equal(t, "carol@elsewhere.org", created.Email)
	assert.Regexp(t, `^carol_[0-9a-f]{8}$`, created.Username)

	short, _, err := f.svc.FirebaseLogin(ctx, "short-token")
	require.NoError(t, err)
	assert.Equal(t, "player", short.Username)

	_, _, err = f.svc.FirebaseLogin(ctx, "forged")
	assert.ErrorIs(t, err, apperror.ErrUnauthorized)

	_, _, err = f.svc.FirebaseLogin(ctx, "noemail")
	assert.ErrorIs(t, err, apperror.ErrValidation)
}
