package repositories

import (
	"context"

	"github.com/anonto42/spinforge/backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ActivityRepository interface {
	CreateActivity(ctx context.Context, activity *models.Activity) error
	GetByActorID(ctx context.Context, actorID uint, page, limit int) ([]models.Activity, int64, error)
}

type postgresActivityRepository struct {
	db *gorm.DB
}

func NewPostgresActivityRepository(db *gorm.DB) ActivityRepository {
	return &postgresActivityRepository{db: db}
}

func (r *postgresActivityRepository) CreateActivity(ctx context.Context, activity *models.Activity) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(activity).Error
}

func (r *postgresActivityRepository) GetByActorID(ctx context.Context, actorID uint, page, limit int) ([]models.Activity, int64, error) {
	var activities []models.Activity
	var total int64

	if err := r.db.WithContext(ctx).Model(&models.Activity{}).Where("actor_id = ?", actorID).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	err := r.db.WithContext(ctx).Preload("Actor.Profile").
		Where("actor_id = ?", actorID).
		Order("created_at DESC").Order("id DESC").
		Offset(offset).Limit(limit).
		Find(&activities).Error
	return activities, total, err
}
