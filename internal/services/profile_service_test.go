package services

import (
	"context"
	"testing"

	"github.com/anonto42/spinforge/backend/internal/apperror"
	"github.com/anonto42/spinforge/backend/internal/models"
	"github.com/anonto42/spinforge/backend/internal/repositories"
	"github.com/anonto42/spinforge/backend/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newProfileService(t *testing.T) (*ProfileService, *gorm.DB) {
	t.Helper()
	db := testutil.NewTestDB(t)
	return NewProfileService(repositories.NewPostgresUserRepository(db), repositories.NewPostgresProfileRepository(db)), db
}

func TestGetProfile_Defaults(t *testing.T) {
	svc, db := newProfileService(t)
	alice := testutil.CreateUser(t, db, "alice")

	user, profile, err := svc.GetProfile(context.Background(), alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)
	assert.Equal(t, "alice", profile.DisplayName)
	assert.Equal(t, models.DefaultSkillRating, profile.ForehandRating)
	assert.Equal(t, models.DefaultSkillRating, profile.FootworkRating)
}

func TestGetProfile_RecreatesMissingProfile(t *testing.T) {
	svc, db := newProfileService(t)
	alice := testutil.CreateUser(t, db, "alice")
	require.NoError(t, db.Where("user_id = ?", alice.ID).Delete(&models.Profile{}).Error)

	_, profile, err := svc.GetProfile(context.Background(), alice.ID)
	require.NoError(t, err)
	assert.NotZero(t, profile.ID)
	assert.Equal(t, "alice", profile.DisplayName)

	var count int64
	require.NoError(t, db.Model(&models.Profile{}).Where("user_id = ?", alice.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestUpdateProfile(t *testing.T) {
	svc, db := newProfileService(t)
	ctx := context.Background()
	alice := testutil.CreateUser(t, db, "alice")

	name := "Alice Looper"
	level := models.PlayingLevelAdvanced
	serve := 7
	_, profile, err := svc.UpdateProfile(ctx, alice.ID, models.UpdateProfileRequest{
		DisplayName:  &name,
		PlayingLevel: &level,
		ServeRating:  &serve,
	})
	require.NoError(t, err)
	assert.Equal(t, "Alice Looper", profile.DisplayName)
	assert.Equal(t, models.PlayingLevelAdvanced, profile.PlayingLevel)
	assert.Equal(t, 7, profile.ServeRating)
	assert.Equal(t, models.DefaultSkillRating, profile.BackhandRating, "untouched fields keep their value")

	_, reloaded, err := svc.GetProfile(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "Alice Looper", reloaded.DisplayName)
	assert.Equal(t, 7, reloaded.ServeRating)
}

func TestUpdateProfile_BlankDisplayNameFallsBack(t *testing.T) {
	svc, db := newProfileService(t)
	alice := testutil.CreateUser(t, db, "alice")

	blank := "   "
	user, profile, err := svc.UpdateProfile(context.Background(), alice.ID, models.UpdateProfileRequest{DisplayName: &blank})
	require.NoError(t, err)
	assert.Equal(t, "alice", profile.DisplayName)
	assert.Equal(t, "alice", user.DisplayName())
}

func TestGetPublicProfile(t *testing.T) {
	svc, db := newProfileService(t)
	testutil.CreateUser(t, db, "alice")

	user, _, err := svc.GetPublicProfile(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)

	_, _, err = svc.GetPublicProfile(context.Background(), "ghost")
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestUpdateProfile_BlankClearsOptionalFields(t *testing.T) {
	svc, db := newProfileService(t)
	ctx := context.Background()
	alice := testutil.CreateUser(t, db, "alice")

	level := models.PlayingLevelIntermediate
	site := "https://spinforge.example/alice"
	_, _, err := svc.UpdateProfile(ctx, alice.ID, models.UpdateProfileRequest{PlayingLevel: &level, Website: &site})
	require.NoError(t, err)

	blank := ""
	_, _, err = svc.UpdateProfile(ctx, alice.ID, models.UpdateProfileRequest{PlayingLevel: &blank, Website: &blank})
	require.NoError(t, err)

	_, reloaded, err := svc.GetProfile(ctx, alice.ID)
	require.NoError(t, err)
	assert.Empty(t, reloaded.PlayingLevel)
	assert.Empty(t, reloaded.Website)
}
