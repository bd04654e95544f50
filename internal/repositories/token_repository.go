package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/anonto42/spinforge/backend/internal/models"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TokenRevoker remembers refresh tokens that were logged out.
type TokenRevoker interface {
	Revoke(ctx context.Context, jti string, userID uint, expiresAt time.Time) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

type postgresTokenRevoker struct {
	db *gorm.DB
}

func NewPostgresTokenRevoker(db *gorm.DB) TokenRevoker {
	return &postgresTokenRevoker{db: db}
}

// Revoke is idempotent.
func (r *postgresTokenRevoker) Revoke(ctx context.Context, jti string, userID uint, expiresAt time.Time) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "jti"}}, DoNothing: true}).
		Create(&models.RevokedToken{JTI: jti, UserID: userID, ExpiresAt: expiresAt}).Error
}

func (r *postgresTokenRevoker) IsRevoked(ctx context.Context, jti string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.RevokedToken{}).Where("jti = ?", jti).Count(&count).Error
	return count > 0, err
}

const revokedKeyPrefix = "revoked:"

type redisTokenRevoker struct {
	client *redis.Client
}

// NewRedisTokenRevoker stores revocations as keys that expire with the token.
func NewRedisTokenRevoker(client *redis.Client) TokenRevoker {
	return &redisTokenRevoker{client: client}
}

func (r *redisTokenRevoker) Revoke(ctx context.Context, jti string, userID uint, expiresAt time.Time) error {
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return nil
	}
	return r.client.Set(ctx, revokedKeyPrefix+jti, userID, ttl).Err()
}

func (r *redisTokenRevoker) IsRevoked(ctx context.Context, jti string) (bool, error) {
	err := r.client.Get(ctx, revokedKeyPrefix+jti).Err()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
