package models

import "time"

const (
	ActionPostCreated    = "post_created"
	ActionCommentCreated = "comment_created"
	ActionPostUpdated    = "post_updated"
	ActionCommentUpdated = "comment_updated"
)

// Activity is an append-only log entry of something a user did.
type Activity struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	ActorID    uint      `json:"actor_id" gorm:"not null;index"`
	Actor      *User     `json:"-" gorm:"constraint:OnDelete:CASCADE"`
	ActionType string    `json:"action_type" gorm:"size:30;not null;index"`
	TargetType string    `json:"target_type" gorm:"size:50"`
	TargetID   uint      `json:"target_id"`
	CreatedAt  time.Time `json:"created_at" gorm:"index"`
}
