package repositories

import (
	"fmt"

	"github.com/anonto42/spinforge/backend/internal/models"
	"gorm.io/gorm"
)

// Migrate creates or updates every table the API needs, plus the partial
// unique index that deduplicates unread notifications. Works on postgres and sqlite.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.User{},
		&models.Profile{},
		&models.Post{},
		&models.Comment{},
		&models.Notification{},
		&models.Activity{},
		&models.RevokedToken{},
		&models.Sport{},
		&models.Rule{},
		&models.Technique{},
		&models.LearningSection{},
		&models.LearningTopic{},
	)
	if err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	err = db.Exec(fmt.Sprintf(
		"CREATE UNIQUE INDEX IF NOT EXISTS %s ON notifications (recipient_id, actor_id, notification_type, object_id) WHERE is_read = false",
		models.UniqueUnreadNotificationIndex,
	)).Error
	if err != nil {
		return fmt.Errorf("create %s: %w", models.UniqueUnreadNotificationIndex, err)
	}
	return nil
}
