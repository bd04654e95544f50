package repositories

import (
	"context"

	"github.com/anonto42/spinforge/backend/internal/models"
	"gorm.io/gorm"
)

type ProfileRepository interface {
	// GetOrCreate returns the user's profile, creating the default one if missing.
	GetOrCreate(ctx context.Context, user *models.User) (*models.Profile, error)
	UpdateProfile(ctx context.Context, profile *models.Profile) error
}

type postgresProfileRepository struct {
	db *gorm.DB
}

func NewPostgresProfileRepository(db *gorm.DB) ProfileRepository {
	return &postgresProfileRepository{db: db}
}

func (r *postgresProfileRepository) GetOrCreate(ctx context.Context, user *models.User) (*models.Profile, error) {
	var profile models.Profile
	err := r.db.WithContext(ctx).
		Where(models.Profile{UserID: user.ID}).
		Attrs(*models.NewProfile(user)).
		FirstOrCreate(&profile).Error
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *postgresProfileRepository) UpdateProfile(ctx context.Context, profile *models.Profile) error {
	return r.db.WithContext(ctx).Save(profile).Error
}
