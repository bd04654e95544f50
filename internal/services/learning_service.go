package services

import (
	"context"
	"errors"

	"github.com/anonto42/spinforge/backend/internal/apperror"
	"github.com/anonto42/spinforge/backend/internal/models"
	"github.com/anonto42/spinforge/backend/internal/repositories"
	"gorm.io/gorm"
)

// LearningService is the read side of the knowledge base.
type LearningService struct {
	repo repositories.LearningRepository
}

func NewLearningService(repo repositories.LearningRepository) *LearningService {
	return &LearningService{repo: repo}
}

func (s *LearningService) ListSports(ctx context.Context) ([]models.Sport, error) {
	return s.repo.ListSports(ctx)
}

func (s *LearningService) GetSport(ctx context.Context, slug string) (*models.Sport, error) {
	sport, err := s.repo.GetSportBySlug(ctx, slug)
	return sport, notFoundAs(err, "Sport not found.")
}

// ListRules returns the matching rules and how many related rules each one has.
func (s *LearningService) ListRules(ctx context.Context, filter models.RuleFilter) ([]models.Rule, map[uint]int64, error) {
	rules, err := s.repo.ListRules(ctx, filter)
	if err != nil {
		return nil, nil, err
	}
	ids := make([]uint, len(rules))
	for i := range rules {
		ids[i] = rules[i].ID
	}
	counts, err := s.repo.RelatedRuleCounts(ctx, ids)
	return rules, counts, err
}

func (s *LearningService) GetRule(ctx context.Context, ruleID string) (*models.Rule, []models.Rule, error) {
	rule, err := s.repo.GetRule(ctx, ruleID)
	if err != nil {
		return nil, nil, notFoundAs(err, "Rule not found.")
	}
	related, err := s.repo.RelatedRules(ctx, rule.ID, repositories.MaxRelatedItems)
	return rule, related, err
}

func (s *LearningService) ListTechniques(ctx context.Context, filter models.TechniqueFilter) ([]models.Technique, map[uint]int64, error) {
	techniques, err := s.repo.ListTechniques(ctx, filter)
	if err != nil {
		return nil, nil, err
	}
	ids := make([]uint, len(techniques))
	for i := range techniques {
		ids[i] = techniques[i].ID
	}
	counts, err := s.repo.RelatedTechniqueCounts(ctx, ids)
	return techniques, counts, err
}

func (s *LearningService) GetTechnique(ctx context.Context, techniqueID string) (*models.Technique, []models.Technique, error) {
	technique, err := s.repo.GetTechnique(ctx, techniqueID)
	if err != nil {
		return nil, nil, notFoundAs(err, "Technique not found.")
	}
	related, err := s.repo.RelatedTechniques(ctx, technique.ID, repositories.MaxRelatedItems)
	return technique, related, err
}

// ListSections returns sections with their topics nested, plus related-topic
// counts for every nested topic.
func (s *LearningService) ListSections(ctx context.Context, ordering string) ([]models.LearningSection, map[uint]int64, error) {
	sections, err := s.repo.ListSections(ctx, ordering)
	if err != nil {
		return nil, nil, err
	}
	var ids []uint
	for i := range sections {
		for j := range sections[i].Topics {
			ids = append(ids, sections[i].Topics[j].ID)
		}
	}
	counts, err := s.repo.RelatedTopicCounts(ctx, ids)
	return sections, counts, err
}

func (s *LearningService) GetSection(ctx context.Context, sectionID string) (*models.LearningSection, map[uint]int64, error) {
	section, err := s.repo.GetSection(ctx, sectionID)
	if err != nil {
		return nil, nil, notFoundAs(err, "Section not found.")
	}
	ids := make([]uint, len(section.Topics))
	for i := range section.Topics {
		ids[i] = section.Topics[i].ID
	}
	counts, err := s.repo.RelatedTopicCounts(ctx, ids)
	return section, counts, err
}

func (s *LearningService) ListTopics(ctx context.Context, filter models.TopicFilter) ([]models.LearningTopic, map[uint]int64, error) {
	topics, err := s.repo.ListTopics(ctx, filter)
	if err != nil {
		return nil, nil, err
	}
	ids := make([]uint, len(topics))
	for i := range topics {
		ids[i] = topics[i].ID
	}
	counts, err := s.repo.RelatedTopicCounts(ctx, ids)
	return topics, counts, err
}

func (s *LearningService) GetTopic(ctx context.Context, topicID string) (*models.LearningTopic, []models.LearningTopic, error) {
	topic, err := s.repo.GetTopic(ctx, topicID)
	if err != nil {
		return nil, nil, notFoundAs(err, "Topic not found.")
	}
	related, err := s.repo.RelatedTopics(ctx, topic.ID, repositories.MaxRelatedItems)
	return topic, related, err
}

// notFoundAs maps gorm's not-found to a 404 with message; other errors pass through.
func notFoundAs(err error, message string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperror.NotFoundMessage(message)
	}
	return err
}
