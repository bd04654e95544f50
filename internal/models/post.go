package models

import "time"

const (
	PostTypeAchievement = "achievement"
	PostTypeStruggle    = "struggle"
	PostTypeTip         = "tip"
)

const (
	SkillForehand = "forehand"
	SkillBackhand = "backhand"
	SkillServe    = "serve"
	SkillFootwork = "footwork"
	SkillGeneral  = "general"
)

const MaxPostContentLength = 5000

// Post is a feed entry written by a user.
type Post struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	AuthorID     uint      `json:"-" gorm:"index;not null"`
	Author       *User     `json:"-" gorm:"constraint:OnDelete:CASCADE"`
	Content      string    `json:"content" gorm:"type:text;not null"`
	PostType     string    `json:"post_type" gorm:"size:20;default:achievement;index"`
	RelatedSkill *string   `json:"related_skill" gorm:"size:20"`
	Comments     []Comment `json:"-" gorm:"constraint:OnDelete:CASCADE"`
	CreatedAt    time.Time `json:"created_at" gorm:"index"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (p *Post) ObjectType() string { return "post" }
func (p *Post) ObjectID() uint     { return p.ID }

// CreatePostRequest defines the request body for creating a new post
type CreatePostRequest struct {
	Content      string  `json:"content"`
	PostType     string  `json:"post_type" validate:"omitempty,oneof=achievement struggle tip"`
	RelatedSkill *string `json:"related_skill" validate:"omitempty,oneof=forehand backhand serve footwork general ''"`
}

// UpdatePostRequest defines the request body for updating an existing post
type UpdatePostRequest struct {
	Content      *string `json:"content"`
	PostType     *string `json:"post_type" validate:"omitempty,oneof=achievement struggle tip"`
	RelatedSkill *string `json:"related_skill" validate:"omitempty,oneof=forehand backhand serve footwork general ''"`
}

// PostFilter narrows post listings. Zero values mean "any".
type PostFilter struct {
	AuthorUsername string
	PostType       string
	RelatedSkill   string
}
