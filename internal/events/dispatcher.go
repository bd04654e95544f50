// Package events turns domain writes into notifications and activity entries.
// Handlers run synchronously after the primary write has committed; their
// failures are logged and never reach the caller.
package events

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/anonto42/spinforge/backend/internal/models"
	"github.com/anonto42/spinforge/backend/internal/repositories"
)

// Notifier is the subset of the notification service the dispatcher drives.
type Notifier interface {
	CreateNotification(ctx context.Context, recipientID uint, actorID *uint, notificationType, message string, related models.RelatedObject) (*models.Notification, error)
	CreateActivity(ctx context.Context, actorID uint, actionType, targetType string, targetID uint) (*models.Activity, error)
}

type Dispatcher struct {
	notifier Notifier
	comments repositories.CommentRepository
	logger   *slog.Logger
}

func NewDispatcher(notifier Notifier, comments repositories.CommentRepository, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{
		notifier: notifier,
		comments: comments,
		logger:   logger,
	}
}

// OnCommentCreated records the activity, tells the post author, and tells the
// author of the previous comment on the post. The previous commenter is only
// a guess at who is being replied to; there is no explicit reply link.
func (d *Dispatcher) OnCommentCreated(ctx context.Context, comment *models.Comment, post *models.Post, commenter *models.User) {
	if _, err := d.notifier.CreateActivity(ctx, commenter.ID, models.ActionCommentCreated, comment.ObjectType(), comment.ID); err != nil {
		d.logFailure(ctx, "record comment activity", err, comment.ID)
	}

	actorID := commenter.ID
	name := commenter.DisplayName()

	if post.AuthorID != commenter.ID {
		_, err := d.notifier.CreateNotification(ctx, post.AuthorID, &actorID,
			models.NotificationCommentOnPost,
			fmt.Sprintf("%s commented on your post", name),
			comment)
		if err != nil {
			d.logFailure(ctx, "notify post author", err, comment.ID)
		}
	}

	previous, err := d.comments.GetLatestCommentBefore(ctx, post.ID, comment.CreatedAt, comment.ID)
	if err != nil {
		d.logFailure(ctx, "find previous comment", err, comment.ID)
		return
	}
	if previous == nil {
		return
	}
	if previous.AuthorID == commenter.ID || previous.AuthorID == post.AuthorID {
		return
	}
	_, err = d.notifier.CreateNotification(ctx, previous.AuthorID, &actorID,
		models.NotificationCommentReply,
		fmt.Sprintf("%s replied to your comment", name),
		comment)
	if err != nil {
		d.logFailure(ctx, "notify previous commenter", err, comment.ID)
	}
}

func (d *Dispatcher) OnPostCreated(ctx context.Context, post *models.Post) {
	if _, err := d.notifier.CreateActivity(ctx, post.AuthorID, models.ActionPostCreated, post.ObjectType(), post.ID); err != nil {
		d.logFailure(ctx, "record post activity", err, post.ID)
	}
}

func (d *Dispatcher) OnPostUpdated(ctx context.Context, post *models.Post) {
	if _, err := d.notifier.CreateActivity(ctx, post.AuthorID, models.ActionPostUpdated, post.ObjectType(), post.ID); err != nil {
		d.logFailure(ctx, "record post update activity", err, post.ID)
	}
}

func (d *Dispatcher) OnCommentUpdated(ctx context.Context, comment *models.Comment) {
	if _, err := d.notifier.CreateActivity(ctx, comment.AuthorID, models.ActionCommentUpdated, comment.ObjectType(), comment.ID); err != nil {
		d.logFailure(ctx, "record comment update activity", err, comment.ID)
	}
}

func (d *Dispatcher) logFailure(ctx context.Context, step string, err error, targetID uint) {
	d.logger.ErrorContext(ctx, "event handler failed",
		slog.String("step", step),
		slog.Uint64("target_id", uint64(targetID)),
		slog.String("error", err.Error()))
}
