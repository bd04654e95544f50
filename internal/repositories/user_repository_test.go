package repositories_test

import (
	"context"
	"testing"
	"time"

	"github.com/anonto42/spinforge/backend/internal/models"
	"github.com/anonto42/spinforge/backend/internal/repositories"
	"github.com/anonto42/spinforge/backend/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestUserRepository_CreateWithProfile(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := repositories.NewPostgresUserRepository(db)
	ctx := context.Background()

	user := &models.User{Email: "alice@example.com", Username: "alice", Password: "hash"}
	require.NoError(t, repo.CreateUserWithProfile(ctx, user))

	got, err := repo.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Profile)
	assert.Equal(t, "alice", got.Profile.DisplayName)

	exists, err := repo.EmailExists(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.True(t, exists)
	exists, err = repo.UsernameExists(ctx, "bob")
	require.NoError(t, err)
	assert.False(t, exists)

	dup := &models.User{Email: "alice@example.com", Username: "alice2", Password: "hash"}
	assert.ErrorIs(t, repo.CreateUserWithProfile(ctx, dup), gorm.ErrDuplicatedKey)

	var profiles int64
	require.NoError(t, db.Model(&models.Profile{}).Count(&profiles).Error)
	assert.Equal(t, int64(1), profiles, "a failed signup leaves no orphan profile")
}

func TestUserRepository_FirebaseUID(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := repositories.NewPostgresUserRepository(db)
	ctx := context.Background()
	alice := testutil.CreateUser(t, db, "alice")

	_, err := repo.GetUserByFirebaseUID(ctx, "uid-1")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	uid := "uid-1"
	alice.FirebaseUID = &uid
	require.NoError(t, repo.UpdateUser(ctx, alice))

	got, err := repo.GetUserByFirebaseUID(ctx, "uid-1")
	require.NoError(t, err)
	assert.Equal(t, alice.ID, got.ID)
}

func TestPostgresTokenRevoker(t *testing.T) {
	db := testutil.NewTestDB(t)
	revoker := repositories.NewPostgresTokenRevoker(db)
	ctx := context.Background()
	alice := testutil.CreateUser(t, db, "alice")

	revoked, err := revoker.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, revoked)

	exp := time.Now().Add(time.Hour)
	require.NoError(t, revoker.Revoke(ctx, "jti-1", alice.ID, exp))
	require.NoError(t, revoker.Revoke(ctx, "jti-1", alice.ID, exp), "revoking twice is a no-op")

	revoked, err = revoker.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, revoked)
}
