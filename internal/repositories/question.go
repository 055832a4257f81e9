package repositories

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"axion/interview-evaluator/internal/models"
)

type QuestionRepository interface {
	FindByID(id uuid.UUID) (*models.Question, error)
	FindByJob(jobID uuid.UUID) ([]models.Question, error)
}

type questionRepository struct {
	db *gorm.DB
}

func NewQuestionRepository(db *gorm.DB) QuestionRepository {
	return &questionRepository{db: db}
}

func (r *questionRepository) FindByID(id uuid.UUID) (*models.Question, error) {
	var q models.Question
	if err := r.db.Where("id = ?", id).First(&q).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("question %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to find question: %w", err)
	}
	return &q, nil
}

// FindByJob returns the job's questions ordered by position. Report numbering
// depends on this order.
func (r *questionRepository) FindByJob(jobID uuid.UUID) ([]models.Question, error) {
	var questions []models.Question
	if err := r.db.Where("job_id = ?", jobID).Order("position ASC").Find(&questions).Error; err != nil {
		return nil, fmt.Errorf("failed to find questions: %w", err)
	}
	return questions, nil
}
