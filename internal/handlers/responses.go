package handlers

import (
	"time"

	"github.com/anonto42/spinforge/backend/internal/models"
	"github.com/anonto42/spinforge/backend/pkg/timefmt"
)

// Response payloads. Timestamps come with a human-readable companion.

type UserResponse struct {
	ID        uint      `json:"id"`
	Email     string    `json:"email"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"date_joined"`
}

func newUserResponse(u *models.User) UserResponse {
	return UserResponse{ID: u.ID, Email: u.Email, Username: u.Username, CreatedAt: u.CreatedAt}
}

type ProfileResponse struct {
	*models.Profile
	Username string `json:"username"`
	Email    string `json:"email,omitempty"`
}

// newProfileResponse hides the email unless the viewer owns the profile.
func newProfileResponse(u *models.User, p *models.Profile, self bool) ProfileResponse {
	resp := ProfileResponse{Profile: p, Username: u.Username}
	if self {
		resp.Email = u.Email
	}
	return resp
}

func compactOf(u *models.User) *models.UserCompact {
	if u == nil {
		return nil
	}
	compact := u.ToCompact()
	return &compact
}

type CommentResponse struct {
	ID                 uint                `json:"id"`
	PostID             uint                `json:"post_id"`
	Author             *models.UserCompact `json:"author"`
	Content            string              `json:"content"`
	CreatedAt          time.Time           `json:"created_at"`
	FormattedTimestamp string              `json:"formatted_timestamp"`
}

func newCommentResponse(c *models.Comment) CommentResponse {
	return CommentResponse{
		ID:                 c.ID,
		PostID:             c.PostID,
		Author:             compactOf(c.Author),
		Content:            c.Content,
		CreatedAt:          c.CreatedAt,
		FormattedTimestamp: timefmt.Since(c.CreatedAt),
	}
}

func newCommentResponses(comments []models.Comment) []CommentResponse {
	out := make([]CommentResponse, len(comments))
	for i := range comments {
		out[i] = newCommentResponse(&comments[i])
	}
	return out
}

type PostResponse struct {
	ID                 uint                `json:"id"`
	Author             *models.UserCompact `json:"author"`
	Content            string              `json:"content"`
	PostType           string              `json:"post_type"`
	RelatedSkill       *string             `json:"related_skill"`
	CommentCount       int64               `json:"comment_count"`
	Comments           []CommentResponse   `json:"comments,omitempty"`
	CreatedAt          time.Time           `json:"created_at"`
	FormattedTimestamp string              `json:"formatted_timestamp"`
}

func newPostResponse(p *models.Post, commentCount int64) PostResponse {
	return PostResponse{
		ID:                 p.ID,
		Author:             compactOf(p.Author),
		Content:            p.Content,
		PostType:           p.PostType,
		RelatedSkill:       p.RelatedSkill,
		CommentCount:       commentCount,
		CreatedAt:          p.CreatedAt,
		FormattedTimestamp: timefmt.Since(p.CreatedAt),
	}
}

type NotificationResponse struct {
	ID                 uint                `json:"id"`
	Actor              *models.UserCompact `json:"actor"`
	NotificationType   string              `json:"notification_type"`
	Message            string              `json:"message"`
	IsRead             bool                `json:"is_read"`
	RelatedObjectType  *string             `json:"related_object_type"`
	RelatedObjectID    *uint               `json:"related_object_id"`
	RelatedObject      any                 `json:"related_object,omitempty"`
	CreatedAt          time.Time           `json:"created_at"`
	FormattedTimestamp string              `json:"formatted_timestamp"`
}

func newNotificationResponse(n *models.Notification) NotificationResponse {
	return NotificationResponse{
		ID:                 n.ID,
		Actor:              compactOf(n.Actor),
		NotificationType:   n.NotificationType,
		Message:            n.Message,
		IsRead:             n.IsRead,
		RelatedObjectType:  n.ContentType,
		RelatedObjectID:    n.ObjectID,
		CreatedAt:          n.CreatedAt,
		FormattedTimestamp: timefmt.Since(n.CreatedAt),
	}
}

// relatedObjectPayload renders a resolved related object the way its own
// endpoint would.
func relatedObjectPayload(obj models.RelatedObject) any {
	switch v := obj.(type) {
	case *models.Post:
		return newPostResponse(v, 0)
	case *models.Comment:
		return newCommentResponse(v)
	}
	return obj
}

type ActivityResponse struct {
	ID         uint                `json:"id"`
	Actor      *models.UserCompact `json:"actor"`
	ActionType string              `json:"action_type"`
	TargetType string              `json:"target_type"`
	TargetID   uint                `json:"target_id"`
	CreatedAt  time.Time           `json:"created_at"`
}

func newActivityResponse(a *models.Activity) ActivityResponse {
	return ActivityResponse{
		ID:         a.ID,
		Actor:      compactOf(a.Actor),
		ActionType: a.ActionType,
		TargetType: a.TargetType,
		TargetID:   a.TargetID,
		CreatedAt:  a.CreatedAt,
	}
}
