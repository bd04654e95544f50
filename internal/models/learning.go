package models

import (
	"time"

	"gorm.io/datatypes"
)

// Sport groups rules and techniques.
type Sport struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Name      string    `json:"name" gorm:"size:100;uniqueIndex;not null"`
	Slug      string    `json:"slug" gorm:"size:100;uniqueIndex;not null"`
	CreatedAt time.Time `json:"created_at"`
}

const (
	DifficultyBeginner     = "beginner"
	DifficultyIntermediate = "intermediate"
	DifficultyAdvanced     = "advanced"
)

const (
	RuleCategoryServing = "serving"
	RuleCategoryScoring = "scoring"
	RuleCategoryFormat  = "format"
	RuleCategoryFault   = "fault"
	RuleCategoryMyth    = "myth"
)

// Rule is a single point of the rulebook, phrased as legal vs illegal play.
type Rule struct {
	ID              uint      `json:"id" gorm:"primaryKey"`
	SportID         uint      `json:"sport" gorm:"not null;index"`
	Sport           *Sport    `json:"-" gorm:"constraint:OnDelete:CASCADE"`
	RuleID          string    `json:"rule_id" gorm:"size:100;uniqueIndex;not null"`
	Title           string    `json:"title" gorm:"size:200;not null"`
	Description     string    `json:"description" gorm:"type:text"`
	IsLegal         bool      `json:"is_legal" gorm:"default:true"`
	DifficultyLevel string    `json:"difficulty_level" gorm:"size:20;default:beginner;index"`
	LegalText       string    `json:"legal_text" gorm:"type:text"`
	LegalDetails    string    `json:"legal_details" gorm:"type:text"`
	IllegalText     string    `json:"illegal_text" gorm:"type:text"`
	IllegalDetails  string    `json:"illegal_details" gorm:"type:text"`
	WhyThisRule     string    `json:"why_this_rule" gorm:"type:text"`
	Category        string    `json:"category" gorm:"size:20;index"`
	IsMyth          bool      `json:"is_myth" gorm:"default:false;index"`
	Priority        int       `json:"priority" gorm:"default:0"`
	RelatedRules    []*Rule   `json:"-" gorm:"many2many:rule_related_rules;joinForeignKey:FromRuleID;joinReferences:ToRuleID"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// Technique describes how to play a shot or movement.
type Technique struct {
	ID                uint           `json:"id" gorm:"primaryKey"`
	SportID           uint           `json:"sport" gorm:"not null;index"`
	Sport             *Sport         `json:"-" gorm:"constraint:OnDelete:CASCADE"`
	TechniqueID       string         `json:"technique_id" gorm:"size:100;uniqueIndex;not null"`
	Name              string         `json:"name" gorm:"size:200;not null"`
	Description       string         `json:"description" gorm:"type:text"`
	SkillType         string         `json:"skill_type" gorm:"size:20;index"`
	DifficultyLevel   string         `json:"difficulty_level" gorm:"size:20;default:beginner;index"`
	Content           string         `json:"content" gorm:"type:text"`
	MediaURL          *string        `json:"media_url" gorm:"size:200"`
	KeyTips           datatypes.JSON `json:"key_tips"`
	CommonMistakes    datatypes.JSON `json:"common_mistakes"`
	RelatedTechniques []*Technique   `json:"-" gorm:"many2many:technique_related_techniques;joinForeignKey:FromTechniqueID;joinReferences:ToTechniqueID"`
	CreatedAt         time.Time      `json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`
}

// LearningSection is a titled group of topics shown on the learning page.
type LearningSection struct {
	ID          uint            `json:"id" gorm:"primaryKey"`
	SectionID   string          `json:"section_id" gorm:"size:100;uniqueIndex;not null"`
	Title       string          `json:"title" gorm:"size:200;not null"`
	Description string          `json:"description" gorm:"type:text"`
	Icon        string          `json:"icon" gorm:"size:50"`
	Color       string          `json:"color" gorm:"size:20;default:primary"`
	Priority    int             `json:"priority" gorm:"default:0"`
	Topics      []LearningTopic `json:"-" gorm:"foreignKey:LearningSectionID;constraint:OnDelete:CASCADE"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// LearningTopic is one article inside a section.
type LearningTopic struct {
	ID                uint             `json:"id" gorm:"primaryKey"`
	LearningSectionID uint             `json:"section" gorm:"not null;index"`
	Section           *LearningSection `json:"-" gorm:"foreignKey:LearningSectionID"`
	TopicID           string           `json:"topic_id" gorm:"size:100;uniqueIndex;not null"`
	Title             string           `json:"title" gorm:"size:200;not null"`
	Description       string           `json:"description" gorm:"type:text"`
	Content           string           `json:"content" gorm:"type:text"`
	KeyTips           datatypes.JSON   `json:"key_tips"`
	CommonMistakes    datatypes.JSON   `json:"common_mistakes"`
	RelatedTopics     []*LearningTopic `json:"-" gorm:"many2many:topic_related_topics;joinForeignKey:FromTopicID;joinReferences:ToTopicID"`
	CTAs              datatypes.JSON   `json:"ctas" gorm:"column:ctas"`
	CreatedAt         time.Time        `json:"created_at"`
	UpdatedAt         time.Time        `json:"updated_at"`
}

// RuleFilter mirrors the list query string. Pointers distinguish "unset" from false.
type RuleFilter struct {
	SportID         uint
	DifficultyLevel string
	Category        string
	IsLegal         *bool
	IsMyth          *bool
	Search          string
	Ordering        string
}

type TechniqueFilter struct {
	SportID         uint
	SkillType       string
	DifficultyLevel string
	Search          string
	Ordering        string
}

type TopicFilter struct {
	SectionID uint
	Search    string
}
