package models

import "time"

const (
	NotificationCommentOnPost      = "comment_on_post"
	NotificationCommentReply       = "comment_reply"
	NotificationPostFeedback       = "post_feedback"
	NotificationNewLearningContent = "new_learning_content"
)

// UniqueUnreadNotificationIndex guarantees at most one unread notification per
// (recipient, actor, type, object). Read rows are outside the index.
const UniqueUnreadNotificationIndex = "unique_unread_notification"

// Notification is a message addressed to one recipient. The related object is a
// weak (type tag, id) reference and may point at a row that no longer exists.
type Notification struct {
	ID               uint      `json:"id" gorm:"primaryKey"`
	RecipientID      uint      `json:"-" gorm:"not null;index:idx_notifications_recipient_read,priority:1"`
	Recipient        *User     `json:"-" gorm:"constraint:OnDelete:CASCADE"`
	ActorID          *uint     `json:"-" gorm:"index"`
	Actor            *User     `json:"-" gorm:"constraint:OnDelete:CASCADE"`
	NotificationType string    `json:"notification_type" gorm:"size:30;not null"`
	Message          string    `json:"message" gorm:"size:255;not null"`
	IsRead           bool      `json:"is_read" gorm:"default:false;not null;index:idx_notifications_recipient_read,priority:2"`
	ContentType      *string   `json:"related_object_type" gorm:"size:50"`
	ObjectID         *uint     `json:"related_object_id"`
	CreatedAt        time.Time `json:"created_at" gorm:"index"`
}

// RelatedObject is anything a notification can point at.
type RelatedObject interface {
	ObjectType() string
	ObjectID() uint
}
