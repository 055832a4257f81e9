package repositories

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"axion/interview-evaluator/internal/models"
)

type ResponseRepository interface {
	Create(resp *models.Response) error
	FindByID(id uuid.UUID) (*models.Response, error)
	FindByCandidate(candidateID uuid.UUID) ([]models.Response, error)
	FindAllScores() ([]float64, error)
	ScoresByCandidate() (map[uuid.UUID][]float64, error)
	FindUnindexed(limit int) ([]models.Response, error)
	MarkIndexed(id uuid.UUID) error
}

type responseRepository struct {
	db *gorm.DB
}

func NewResponseRepository(db *gorm.DB) ResponseRepository {
	return &responseRepository{db: db}
}

// Create persists the scored answer in a single insert.
func (r *responseRepository) Create(resp *models.Response) error {
	if err := r.db.Omit("Candidate", "Question").Create(resp).Error; err != nil {
		return fmt.Errorf("failed to create response: %w", err)
	}
	return nil
}

func (r *responseRepository) FindByID(id uuid.UUID) (*models.Response, error) {
	var resp models.Response
	if err := r.db.Where("id = ?", id).First(&resp).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("response %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to find response: %w", err)
	}
	return &resp, nil
}

func (r *responseRepository) FindByCandidate(candidateID uuid.UUID) ([]models.Response, error) {
	var responses []models.Response
	if err := r.db.Where("candidate_id = ?", candidateID).Order("created_at ASC").Find(&responses).Error; err != nil {
		return nil, fmt.Errorf("failed to find responses: %w", err)
	}
	return responses, nil
}

func (r *responseRepository) FindAllScores() ([]float64, error) {
	var scores []float64
	if err := r.db.Model(&models.Response{}).Pluck("score_relevance", &scores).Error; err != nil {
		return nil, fmt.Errorf("failed to load scores: %w", err)
	}
	return scores, nil
}

type candidateScore struct {
	CandidateID    uuid.UUID
	ScoreRelevance float64
}

// ScoresByCandidate groups every stored score by candidate. Candidates without
// responses are absent from the map.
func (r *responseRepository) ScoresByCandidate() (map[uuid.UUID][]float64, error) {
	var rows []candidateScore
	if err := r.db.Model(&models.Response{}).Select("candidate_id", "score_relevance").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to load scores: %w", err)
	}

	grouped := make(map[uuid.UUID][]float64)
	for _, row := range rows {
		grouped[row.CandidateID] = append(grouped[row.CandidateID], row.ScoreRelevance)
	}
	return grouped, nil
}

func (r *responseRepository) FindUnindexed(limit int) ([]models.Response, error) {
	var responses []models.Response
	err := r.db.
		Where("indexed_at IS NULL").
		Where("TRIM(transcript) <> ''").
		Where("sentiment <> ?", string(models.SentimentError)).
		Order("created_at ASC").
		Limit(limit).
		Find(&responses).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find unindexed responses: %w", err)
	}
	return responses, nil
}

func (r *responseRepository) MarkIndexed(id uuid.UUID) error {
	result := r.db.Model(&models.Response{}).
		Where("id = ?", id).
		Update("indexed_at", time.Now())
	if result.Error != nil {
		return fmt.Errorf("failed to mark response indexed: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("response %s: %w", id, ErrNotFound)
	}
	return nil
}
