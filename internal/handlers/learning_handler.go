package handlers

import (
	"net/http"
	"time"

	"github.com/anonto42/spinforge/backend/internal/models"
	"github.com/anonto42/spinforge/backend/internal/services"
	"github.com/labstack/echo/v4"
	"gorm.io/datatypes"
)

// LearningHandler serves the read-only knowledge base.
type LearningHandler struct {
	learningService *services.LearningService
}

func NewLearningHandler(learningService *services.LearningService) *LearningHandler {
	return &LearningHandler{learningService: learningService}
}

func (h *LearningHandler) RegisterLearningRoutes(g *echo.Group) {
	g.GET("/sports", h.ListSports)
	g.GET("/sports/:slug", h.GetSport)
	g.GET("/rules", h.ListRules)
	g.GET("/rules/:rule_id", h.GetRule)
	g.GET("/techniques", h.ListTechniques)
	g.GET("/techniques/:technique_id", h.GetTechnique)
	g.GET("/sections", h.ListSections)
	g.GET("/sections/:section_id", h.GetSection)
	g.GET("/topics", h.ListTopics)
	g.GET("/topics/:topic_id", h.GetTopic)
}

type ruleResponse struct {
	*models.Rule
	SportName         string        `json:"sport_name"`
	RelatedRulesCount *int64        `json:"related_rules_count,omitempty"`
	RelatedRules      []relatedRule `json:"related_rules,omitempty"`
}

type relatedRule struct {
	ID       uint   `json:"id"`
	RuleID   string `json:"rule_id"`
	Title    string `json:"title"`
	Category string `json:"category"`
}

type techniqueResponse struct {
	*models.Technique
	SportName              string             `json:"sport_name"`
	RelatedTechniquesCount *int64             `json:"related_techniques_count,omitempty"`
	RelatedTechniques      []relatedTechnique `json:"related_techniques,omitempty"`
}

type relatedTechnique struct {
	ID          uint   `json:"id"`
	TechniqueID string `json:"technique_id"`
	Name        string `json:"name"`
	SkillType   string `json:"skill_type"`
}

// topicSummary is a topic as nested inside a section.
type topicSummary struct {
	ID                 uint           `json:"id"`
	TopicID            string         `json:"topic_id"`
	Title              string         `json:"title"`
	Description        string         `json:"description"`
	RelatedTopicsCount int64          `json:"related_topics_count"`
	CTAs               datatypes.JSON `json:"ctas"`
}

type sectionResponse struct {
	ID          uint           `json:"id"`
	SectionID   string         `json:"section_id"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Icon        string         `json:"icon"`
	Color       string         `json:"color"`
	Priority    int            `json:"priority"`
	TopicsCount int            `json:"topics_count"`
	Topics      []topicSummary `json:"topics"`
	CreatedAt   time.Time      `json:"created_at"`
}

type topicResponse struct {
	*models.LearningTopic
	SectionTitle  string         `json:"section_title"`
	SectionSlug   string         `json:"section_id"`
	RelatedTopics []relatedTopic `json:"related_topics"`
}

type relatedTopic struct {
	ID           uint   `json:"id"`
	TopicID      string `json:"topic_id"`
	Title        string `json:"title"`
	SectionTitle string `json:"section_title"`
}

func sportName(s *models.Sport) string {
	if s == nil {
		return ""
	}
	return s.Name
}

func newSectionResponse(s *models.LearningSection, counts map[uint]int64) sectionResponse {
	topics := make([]topicSummary, len(s.Topics))
	for i, t := range s.Topics {
		topics[i] = topicSummary{
			ID:                 t.ID,
			TopicID:            t.TopicID,
			Title:              t.Title,
			Description:        t.Description,
			RelatedTopicsCount: counts[t.ID],
			CTAs:               t.CTAs,
		}
	}
	return sectionResponse{
		ID:          s.ID,
		SectionID:   s.SectionID,
		Title:       s.Title,
		Description: s.Description,
		Icon:        s.Icon,
		Color:       s.Color,
		Priority:    s.Priority,
		TopicsCount: len(topics),
		Topics:      topics,
		CreatedAt:   s.CreatedAt,
	}
}

func (h *LearningHandler) ListSports(c echo.Context) error {
	sports, err := h.learningService.ListSports(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, sports)
}

func (h *LearningHandler) GetSport(c echo.Context) error {
	sport, err := h.learningService.GetSport(c.Request().Context(), c.Param("slug"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, sport)
}

// ListRules supports ?sport=&difficulty_level=&category=&is_legal=&is_myth=&search=&ordering=.
func (h *LearningHandler) ListRules(c echo.Context) error {
	filter := models.RuleFilter{
		DifficultyLevel: c.QueryParam("difficulty_level"),
		Category:        c.QueryParam("category"),
		IsLegal:         optionalBool(c.QueryParam("is_legal")),
		IsMyth:          optionalBool(c.QueryParam("is_myth")),
		Search:          c.QueryParam("search"),
		Ordering:        c.QueryParam("ordering"),
	}
	if id := optionalUint(c.QueryParam("sport")); id != nil {
		filter.SportID = *id
	}

	rules, counts, err := h.learningService.ListRules(c.Request().Context(), filter)
	if err != nil {
		return err
	}

	out := make([]ruleResponse, len(rules))
	for i := range rules {
		count := counts[rules[i].ID]
		out[i] = ruleResponse{Rule: &rules[i], SportName: sportName(rules[i].Sport), RelatedRulesCount: &count}
	}
	return c.JSON(http.StatusOK, out)
}

func (h *LearningHandler) GetRule(c echo.Context) error {
	rule, related, err := h.learningService.GetRule(c.Request().Context(), c.Param("rule_id"))
	if err != nil {
		return err
	}

	resp := ruleResponse{Rule: rule, SportName: sportName(rule.Sport), RelatedRules: []relatedRule{}}
	for _, r := range related {
		resp.RelatedRules = append(resp.RelatedRules, relatedRule{ID: r.ID, RuleID: r.RuleID, Title: r.Title, Category: r.Category})
	}
	return c.JSON(http.StatusOK, resp)
}

// ListTechniques supports ?sport=&skill_type=&difficulty_level=&search=&ordering=.
func (h *LearningHandler) ListTechniques(c echo.Context) error {
	filter := models.TechniqueFilter{
		SkillType:       c.QueryParam("skill_type"),
		DifficultyLevel: c.QueryParam("difficulty_level"),
		Search:          c.QueryParam("search"),
		Ordering:        c.QueryParam("ordering"),
	}
	if id := optionalUint(c.QueryParam("sport")); id != nil {
		filter.SportID = *id
	}

	techniques, counts, err := h.learningService.ListTechniques(c.Request().Context(), filter)
	if err != nil {
		return err
	}

	out := make([]techniqueResponse, len(techniques))
	for i := range techniques {
		count := counts[techniques[i].ID]
		out[i] = techniqueResponse{Technique: &techniques[i], SportName: sportName(techniques[i].Sport), RelatedTechniquesCount: &count}
	}
	return c.JSON(http.StatusOK, out)
}

func (h *LearningHandler) GetTechnique(c echo.Context) error {
	technique, related, err := h.learningService.GetTechnique(c.Request().Context(), c.Param("technique_id"))
	if err != nil {
		return err
	}

	resp := techniqueResponse{Technique: technique, SportName: sportName(technique.Sport), RelatedTechniques: []relatedTechnique{}}
	for _, t := range related {
		resp.RelatedTechniques = append(resp.RelatedTechniques, relatedTechnique{ID: t.ID, TechniqueID: t.TechniqueID, Name: t.Name, SkillType: t.SkillType})
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *LearningHandler) ListSections(c echo.Context) error {
	sections, counts, err := h.learningService.ListSections(c.Request().Context(), c.QueryParam("ordering"))
	if err != nil {
		return err
	}

	out := make([]sectionResponse, len(sections))
	for i := range sections {
		out[i] = newSectionResponse(&sections[i], counts)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *LearningHandler) GetSection(c echo.Context) error {
	section, counts, err := h.learningService.GetSection(c.Request().Context(), c.Param("section_id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newSectionResponse(section, counts))
}

// ListTopics supports ?section=<id>&search=.
func (h *LearningHandler) ListTopics(c echo.Context) error {
	filter := models.TopicFilter{Search: c.QueryParam("search")}
	if id := optionalUint(c.QueryParam("section")); id != nil {
		filter.SectionID = *id
	}

	topics, counts, err := h.learningService.ListTopics(c.Request().Context(), filter)
	if err != nil {
		return err
	}

	out := make([]topicSummary, len(topics))
	for i, t := range topics {
		out[i] = topicSummary{
			ID:                 t.ID,
			TopicID:            t.TopicID,
			Title:              t.Title,
			Description:        t.Description,
			RelatedTopicsCount: counts[t.ID],
			CTAs:               t.CTAs,
		}
	}
	return c.JSON(http.StatusOK, out)
}

func (h *LearningHandler) GetTopic(c echo.Context) error {
	topic, related, err := h.learningService.GetTopic(c.Request().Context(), c.Param("topic_id"))
	if err != nil {
		return err
	}

	resp := topicResponse{LearningTopic: topic, RelatedTopics: []relatedTopic{}}
	if topic.Section != nil {
		resp.SectionTitle = topic.Section.Title
		resp.SectionSlug = topic.Section.SectionID
	}
	for _, r := range related {
		rt := relatedTopic{ID: r.ID, TopicID: r.TopicID, Title: r.Title}
		if r.Section != nil {
			rt.SectionTitle = r.Section.Title
		}
		resp.RelatedTopics = append(resp.RelatedTopics, rt)
	}
	return c.JSON(http.StatusOK, resp)
}
