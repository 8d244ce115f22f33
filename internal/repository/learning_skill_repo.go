package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/mentorlink/mentorlink-api/internal/models"
)

// LearningSkillRepository persists mentee desired-skill entries.
type LearningSkillRepository interface {
	Create(ctx context.Context, skill *models.MenteeLearningSkill) error
	ListByMentee(ctx context.Context, menteeID string) ([]models.MenteeLearningSkill, error)
	Delete(ctx context.Context, id uint) error
}

type learningSkillRepository struct {
	db *gorm.DB
}

// NewLearningSkillRepository constructs the repository implementation.
func NewLearningSkillRepository(db *gorm.DB) LearningSkillRepository {
	return &learningSkillRepository{db: db}
}

func (r *learningSkillRepository) Create(ctx context.Context, skill *models.MenteeLearningSkill) error {
	return r.db.WithContext(ctx).Create(skill).Error
}

func (r *learningSkillRepository) ListByMentee(ctx context.Context, menteeID string) ([]models.MenteeLearningSkill, error) {
	var skills []models.MenteeLearningSkill
	if err := r.db.WithContext(ctx).
		Where("mentee_id = ?", menteeID).
		Order("created_at ASC").
		Find(&skills).Error; err != nil {
		return nil, err
	}
	return skills, nil
}

func (r *learningSkillRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.MenteeLearningSkill{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
