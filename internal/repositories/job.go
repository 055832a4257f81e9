package repositories

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"axion/interview-evaluator/internal/models"
)

type JobRepository interface {
	CreateWithQuestions(job *models.Job, questions []models.Question) error
	FindAll() ([]models.Job, error)
	FindByID(id uuid.UUID) (*models.Job, error)
	Delete(id uuid.UUID) error
}

type jobRepository struct {
	db *gorm.DB
}

func NewJobRepository(db *gorm.DB) JobRepository {
	return &jobRepository{db: db}
}

// CreateWithQuestions stores the job and its question batch in one transaction.
func (r *jobRepository) CreateWithQuestions(job *models.Job, questions []models.Question) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Questions", "Candidates").Create(job).Error; err != nil {
			return fmt.Errorf("failed to create job: %w", err)
		}

		for i := range questions {
			questions[i].JobID = job.ID
			questions[i].Position = i + 1
		}

		if len(questions) > 0 {
			if err := tx.Create(&questions).Error; err != nil {
				return fmt.Errorf("failed to create questions: %w", err)
			}
		}

		job.Questions = questions
		return nil
	})
}

func (r *jobRepository) FindAll() ([]models.Job, error) {
	var jobs []models.Job
	if err := r.db.Order("created_at DESC").Find(&jobs).Error; err != nil {
		return nil, fmt.Errorf("failed to find jobs: %w", err)
	}
	return jobs, nil
}

func (r *jobRepository) FindByID(id uuid.UUID) (*models.Job, error) {
	var job models.Job
	if err := r.db.Where("id = ?", id).First(&job).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("job %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to find job: %w", err)
	}
	return &job, nil
}

// Delete removes the job together with its candidates, their responses and
// the job's questions.
func (r *jobRepository) Delete(id uuid.UUID) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		candidateIDs := tx.Model(&models.Candidate{}).Select("id").Where("job_id = ?", id)

		if err := tx.Where("candidate_id IN (?)", candidateIDs).Delete(&models.Response{}).Error; err != nil {
			return fmt.Errorf("failed to delete responses: %w", err)
		}
		if err := tx.Where("job_id = ?", id).Delete(&models.Candidate{}).Error; err != nil {
			return fmt.Errorf("failed to delete candidates: %w", err)
		}
		if err := tx.Where("job_id = ?", id).Delete(&models.Question{}).Error; err != nil {
			return fmt.Errorf("failed to delete questions: %w", err)
		}

		result := tx.Where("id = ?", id).Delete(&models.Job{})
		if result.Error != nil {
			return fmt.Errorf("failed to delete job: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return fmt.Errorf("job %s: %w", id, ErrNotFound)
		}
		return nil
	})
}
