package repositories

import (
	"context"
	"strings"

	"github.com/anonto42/spinforge/backend/internal/models"
	"gorm.io/gorm"
)

// MaxRelatedItems caps how many related rules/techniques/topics a detail view shows.
const MaxRelatedItems = 5

// LearningRepository is read-only access to the knowledge base.
type LearningRepository interface {
	ListSports(ctx context.Context) ([]models.Sport, error)
	GetSportBySlug(ctx context.Context, slug string) (*models.Sport, error)

	ListRules(ctx context.Context, filter models.RuleFilter) ([]models.Rule, error)
	GetRule(ctx context.Context, ruleID string) (*models.Rule, error)
	RelatedRules(ctx context.Context, id uint, limit int) ([]models.Rule, error)
	RelatedRuleCounts(ctx context.Context, ids []uint) (map[uint]int64, error)

	ListTechniques(ctx context.Context, filter models.TechniqueFilter) ([]models.Technique, error)
	GetTechnique(ctx context.Context, techniqueID string) (*models.Technique, error)
	RelatedTechniques(ctx context.Context, id uint, limit int) ([]models.Technique, error)
	RelatedTechniqueCounts(ctx context.Context, ids []uint) (map[uint]int64, error)

	ListSections(ctx context.Context, ordering string) ([]models.LearningSection, error)
	GetSection(ctx context.Context, sectionID string) (*models.LearningSection, error)

	ListTopics(ctx context.Context, filter models.TopicFilter) ([]models.LearningTopic, error)
	GetTopic(ctx context.Context, topicID string) (*models.LearningTopic, error)
	RelatedTopics(ctx context.Context, id uint, limit int) ([]models.LearningTopic, error)
	RelatedTopicCounts(ctx context.Context, ids []uint) (map[uint]int64, error)
}

type postgresLearningRepository struct {
	db *gorm.DB
}

func NewPostgresLearningRepository(db *gorm.DB) LearningRepository {
	return &postgresLearningRepository{db: db}
}

// orderings whitelists the ?ordering= values each listing accepts.
var (
	ruleOrderings = map[string]string{
		"priority": "priority ASC", "-priority": "priority DESC",
		"created_at": "created_at ASC", "-created_at": "created_at DESC",
		"title": "title ASC", "-title": "title DESC",
	}
	techniqueOrderings = map[string]string{
		"difficulty_level": "difficulty_level ASC", "-difficulty_level": "difficulty_level DESC",
		"created_at": "created_at ASC", "-created_at": "created_at DESC",
		"name": "name ASC", "-name": "name DESC",
	}
	sectionOrderings = map[string]string{
		"priority": "priority ASC", "-priority": "priority DESC",
		"title": "title ASC", "-title": "title DESC",
	}
)

func applyOrdering(query *gorm.DB, ordering string, allowed map[string]string, defaults ...string) *gorm.DB {
	if ordering != "" {
		applied := false
		for _, field := range strings.Split(ordering, ",") {
			if clause, ok := allowed[strings.TrimSpace(field)]; ok {
				query = query.Order(clause)
				applied = true
			}
		}
		if applied {
			return query.Order("id ASC")
		}
	}
	for _, clause := range defaults {
		query = query.Order(clause)
	}
	return query.Order("id ASC")
}

// search ORs a case-insensitive LIKE across the given columns.
func search(query *gorm.DB, term string, columns ...string) *gorm.DB {
	term = strings.TrimSpace(term)
	if term == "" {
		return query
	}
	pattern := "%" + strings.ToLower(term) + "%"
	conds := make([]string, len(columns))
	args := make([]interface{}, len(columns))
	for i, col := range columns {
		conds[i] = "LOWER(" + col + ") LIKE ?"
		args[i] = pattern
	}
	return query.Where(strings.Join(conds, " OR "), args...)
}

func (r *postgresLearningRepository) ListSports(ctx context.Context) ([]models.Sport, error) {
	var sports []models.Sport
	err := r.db.WithContext(ctx).Order("name ASC").Find(&sports).Error
	return sports, err
}

func (r *postgresLearningRepository) GetSportBySlug(ctx context.Context, slug string) (*models.Sport, error) {
	var sport models.Sport
	if err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&sport).Error; err != nil {
		return nil, err
	}
	return &sport, nil
}

func (r *postgresLearningRepository) ListRules(ctx context.Context, filter models.RuleFilter) ([]models.Rule, error) {
	query := r.db.WithContext(ctx).Preload("Sport")
	if filter.SportID != 0 {
		query = query.Where("sport_id = ?", filter.SportID)
	}
	if filter.DifficultyLevel != "" {
		query = query.Where("difficulty_level = ?", filter.DifficultyLevel)
	}
	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}
	if filter.IsLegal != nil {
		query = query.Where("is_legal = ?", *filter.IsLegal)
	}
	if filter.IsMyth != nil {
		query = query.Where("is_myth = ?", *filter.IsMyth)
	}
	query = search(query, filter.Search, "title", "description", "rule_id")
	query = applyOrdering(query, filter.Ordering, ruleOrderings, "priority DESC", "title ASC")

	var rules []models.Rule
	err := query.Find(&rules).Error
	return rules, err
}

func (r *postgresLearningRepository) GetRule(ctx context.Context, ruleID string) (*models.Rule, error) {
	var rule models.Rule
	if err := r.db.WithContext(ctx).Preload("Sport").Where("rule_id = ?", ruleID).First(&rule).Error; err != nil {
		return nil, err
	}
	return &rule, nil
}

func (r *postgresLearningRepository) RelatedRules(ctx context.Context, id uint, limit int) ([]models.Rule, error) {
	var rules []models.Rule
	err := r.db.WithContext(ctx).Select("rules.*").
		Joins("JOIN rule_related_rules ON rule_related_rules.to_rule_id = rules.id").
		Where("rule_related_rules.from_rule_id = ?", id).
		Order("rules.priority DESC").Order("rules.title ASC").
		Limit(limit).
		Find(&rules).Error
	return rules, err
}

func (r *postgresLearningRepository) RelatedRuleCounts(ctx context.Context, ids []uint) (map[uint]int64, error) {
	return r.countRelated(ctx, "rule_related_rules", "from_rule_id", ids)
}

func (r *postgresLearningRepository) ListTechniques(ctx context.Context, filter models.TechniqueFilter) ([]models.Technique, error) {
	query := r.db.WithContext(ctx).Preload("Sport")
	if filter.SportID != 0 {
		query = query.Where("sport_id = ?", filter.SportID)
	}
	if filter.SkillType != "" {
		query = query.Where("skill_type = ?", filter.SkillType)
	}
	if filter.DifficultyLevel != "" {
		query = query.Where("difficulty_level = ?", filter.DifficultyLevel)
	}
	query = search(query, filter.Search, "name", "description", "technique_id")
	query = applyOrdering(query, filter.Ordering, techniqueOrderings, "difficulty_level ASC", "name ASC")

	var techniques []models.Technique
	err := query.Find(&techniques).Error
	return techniques, err
}

func (r *postgresLearningRepository) GetTechnique(ctx context.Context, techniqueID string) (*models.Technique, error) {
	var technique models.Technique
	if err := r.db.WithContext(ctx).Preload("Sport").Where("technique_id = ?", techniqueID).First(&technique).Error; err != nil {
		return nil, err
	}
	return &technique, nil
}

func (r *postgresLearningRepository) RelatedTechniques(ctx context.Context, id uint, limit int) ([]models.Technique, error) {
	var techniques []models.Technique
	err := r.db.WithContext(ctx).Select("techniques.*").
		Joins("JOIN technique_related_techniques ON technique_related_techniques.to_technique_id = techniques.id").
		Where("technique_related_techniques.from_technique_id = ?", id).
		Order("techniques.difficulty_level ASC").Order("techniques.name ASC").
		Limit(limit).
		Find(&techniques).Error
	return techniques, err
}

func (r *postgresLearningRepository) RelatedTechniqueCounts(ctx context.Context, ids []uint) (map[uint]int64, error) {
	return r.countRelated(ctx, "technique_related_techniques", "from_technique_id", ids)
}

func (r *postgresLearningRepository) ListSections(ctx context.Context, ordering string) ([]models.LearningSection, error) {
	query := r.db.WithContext(ctx).Preload("Topics", func(db *gorm.DB) *gorm.DB {
		return db.Order("title ASC").Order("id ASC")
	})
	query = applyOrdering(query, ordering, sectionOrderings, "priority ASC", "title ASC")

	var sections []models.LearningSection
	err := query.Find(&sections).Error
	return sections, err
}

func (r *postgresLearningRepository) GetSection(ctx context.Context, sectionID string) (*models.LearningSection, error) {
	var section models.LearningSection
	err := r.db.WithContext(ctx).
		Preload("Topics", func(db *gorm.DB) *gorm.DB { return db.Order("title ASC").Order("id ASC") }).
		Where("section_id = ?", sectionID).
		First(&section).Error
	if err != nil {
		return nil, err
	}
	return &section, nil
}

func (r *postgresLearningRepository) ListTopics(ctx context.Context, filter models.TopicFilter) ([]models.LearningTopic, error) {
	query := r.db.WithContext(ctx).Model(&models.LearningTopic{}).Preload("Section")
	if filter.SectionID != 0 {
		query = query.Where("learning_topics.learning_section_id = ?", filter.SectionID)
	}
	query = search(query, filter.Search, "learning_topics.title", "learning_topics.description", "learning_topics.topic_id")

	var topics []models.LearningTopic
	err := query.Select("learning_topics.*").
		Joins("JOIN learning_sections ON learning_sections.id = learning_topics.learning_section_id").
		Order("learning_sections.priority ASC").Order("learning_topics.title ASC").Order("learning_topics.id ASC").
		Find(&topics).Error
	return topics, err
}

func (r *postgresLearningRepository) GetTopic(ctx context.Context, topicID string) (*models.LearningTopic, error) {
	var topic models.LearningTopic
	if err := r.db.WithContext(ctx).Preload("Section").Where("topic_id = ?", topicID).First(&topic).Error; err != nil {
		return nil, err
	}
	return &topic, nil
}

func (r *postgresLearningRepository) RelatedTopics(ctx context.Context, id uint, limit int) ([]models.LearningTopic, error) {
	var topics []models.LearningTopic
	err := r.db.WithContext(ctx).Preload("Section").Select("learning_topics.*").
		Joins("JOIN topic_related_topics ON topic_related_topics.to_topic_id = learning_topics.id").
		Where("topic_related_topics.from_topic_id = ?", id).
		Order("learning_topics.title ASC").
		Limit(limit).
		Find(&topics).Error
	return topics, err
}

func (r *postgresLearningRepository) RelatedTopicCounts(ctx context.Context, ids []uint) (map[uint]int64, error) {
	return r.countRelated(ctx, "topic_related_topics", "from_topic_id", ids)
}

func (r *postgresLearningRepository) countRelated(ctx context.Context, table, fromColumn string, ids []uint) (map[uint]int64, error) {
	counts := make(map[uint]int64, len(ids))
	if len(ids) == 0 {
		return counts, nil
	}

	var rows []struct {
		ID    uint
		Count int64
	}
	err := r.db.WithContext(ctx).Table(table).
		Select(fromColumn+" AS id, COUNT(*) AS count").
		Where(fromColumn+" IN ?", ids).
		Group(fromColumn).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		counts[row.ID] = row.Count
	}
	return counts, nil
}
