package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/anonto42/spinforge/backend/internal/apperror"
	"github.com/anonto42/spinforge/backend/internal/models"
	"github.com/anonto42/spinforge/backend/internal/repositories"
	"gorm.io/gorm"
)

const archiveTimeout = 3 * time.Second

// ResolveFunc loads the object a notification points at.
type ResolveFunc func(ctx context.Context, id uint) (models.RelatedObject, error)

// NotificationService owns notification and activity bookkeeping.
type NotificationService struct {
	notifications repositories.NotificationRepository
	activities    repositories.ActivityRepository
	archive       repositories.ActivityArchive
	resolvers     map[string]ResolveFunc
	logger        *slog.Logger
}

func NewNotificationService(
	notifications repositories.NotificationRepository,
	activities repositories.ActivityRepository,
	logger *slog.Logger,
) *NotificationService {
	return &NotificationService{
		notifications: notifications,
		activities:    activities,
		resolvers:     make(map[string]ResolveFunc),
		logger:        logger,
	}
}

// SetArchive mirrors every new activity into archive. Archive failures are logged only.
func (s *NotificationService) SetArchive(archive repositories.ActivityArchive) {
	s.archive = archive
}

// RegisterResolver teaches the service how to load objects of one type tag.
func (s *NotificationService) RegisterResolver(objectType string, fn ResolveFunc) {
	s.resolvers[objectType] = fn
}

// CreateNotification stores a notification for recipientID. It returns nil
// without writing when the actor is the recipient, and nil when an identical
// unread notification already exists.
func (s *NotificationService) CreateNotification(
	ctx context.Context,
	recipientID uint,
	actorID *uint,
	notificationType, message string,
	related models.RelatedObject,
) (*models.Notification, error) {
	if recipientID == 0 {
		return nil, apperror.BadRequest("Notification recipient is required.")
	}
	if actorID != nil && *actorID == recipientID {
		return nil, nil
	}

	notification := &models.Notification{
		RecipientID:      recipientID,
		ActorID:          actorID,
		NotificationType: notificationType,
		Message:          message,
	}
	if related != nil {
		objectType := related.ObjectType()
		objectID := related.ObjectID()
		notification.ContentType = &objectType
		notification.ObjectID = &objectID
	}

	err := s.notifications.CreateNotification(ctx, notification)
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		s.logger.DebugContext(ctx, "duplicate unread notification skipped",
			slog.Uint64("recipient_id", uint64(recipientID)),
			slog.String("type", notificationType))
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("creating notification: %w", err)
	}
	return notification, nil
}

// CreateActivity appends to the activity log.
func (s *NotificationService) CreateActivity(ctx context.Context, actorID uint, actionType, targetType string, targetID uint) (*models.Activity, error) {
	activity := &models.Activity{
		ActorID:    actorID,
		ActionType: actionType,
		TargetType: targetType,
		TargetID:   targetID,
	}
	if err := s.activities.CreateActivity(ctx, activity); err != nil {
		return nil, fmt.Errorf("creating activity: %w", err)
	}

	if s.archive != nil {
		archiveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), archiveTimeout)
		defer cancel()
		if err := s.archive.Archive(archiveCtx, activity); err != nil {
			s.logger.WarnContext(ctx, "archiving activity failed",
				slog.Uint64("activity_id", uint64(activity.ID)),
				slog.String("error", err.Error()))
		}
	}
	return activity, nil
}

// MarkNotificationRead reports false when the notification does not exist or
// belongs to someone else; the two cases are indistinguishable to the caller.
func (s *NotificationService) MarkNotificationRead(ctx context.Context, id, userID uint) (bool, error) {
	affected, err := s.notifications.MarkAsRead(ctx, id, userID)
	if err != nil {
		return false, fmt.Errorf("marking notification read: %w", err)
	}
	return affected > 0, nil
}

func (s *NotificationService) MarkAllRead(ctx context.Context, userID uint) (int64, error) {
	count, err := s.notifications.MarkAllAsRead(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("marking all notifications read: %w", err)
	}
	return count, nil
}

func (s *NotificationService) UnreadCount(ctx context.Context, userID uint) (int64, error) {
	return s.notifications.GetUnreadCount(ctx, userID)
}

func (s *NotificationService) ListNotifications(ctx context.Context, userID uint, page, limit int) ([]models.Notification, int64, error) {
	return s.notifications.GetByRecipientID(ctx, userID, page, limit)
}

func (s *NotificationService) GetNotification(ctx context.Context, id, userID uint) (*models.Notification, error) {
	notification, err := s.notifications.GetForRecipient(ctx, id, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperror.NotFoundMessage("Notification not found.")
	}
	return notification, err
}

// ResolveRelated follows the weak reference. It returns nil, nil when the
// notification has no related object, the type is unknown, or the object is gone.
func (s *NotificationService) ResolveRelated(ctx context.Context, notification *models.Notification) (models.RelatedObject, error) {
	if notification.ContentType == nil || notification.ObjectID == nil {
		return nil, nil
	}
	resolve, ok := s.resolvers[*notification.ContentType]
	if !ok {
		return nil, nil
	}
	obj, err := resolve(ctx, *notification.ObjectID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return obj, err
}

func (s *NotificationService) ListActivities(ctx context.Context, actorID uint, page, limit int) ([]models.Activity, int64, error) {
	return s.activities.GetByActorID(ctx, actorID, page, limit)
}
