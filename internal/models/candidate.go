package models

import (
	"time"

	"github.com/google/uuid"
)

type Candidate struct {
	ID            uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	JobID         uuid.UUID `gorm:"type:uuid;not null;index" json:"job_id"`
	Name          string    `gorm:"type:varchar(100);not null" json:"name"`
	Email         string    `gorm:"type:varchar(100)" json:"email"`
	InterviewDate time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"interview_date"`

	Job *Job `gorm:"foreignKey:JobID" json:"job,omitempty"`
}

func (Candidate) TableName() string {
	return "candidates"
}

// Response is one recorded answer together with the judgment it received.
type Response struct {
	ID             uuid.UUID  `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	CandidateID    uuid.UUID  `gorm:"type:uuid;not null;index" json:"candidate_id"`
	QuestionID     uuid.UUID  `gorm:"type:uuid;not null;index" json:"question_id"`
	MediaURL       string     `gorm:"type:text" json:"media_url"`
	Transcript     string     `gorm:"type:text" json:"transcript"`
	ScoreRelevance float64    `gorm:"type:double precision;not null;default:0" json:"score_relevance"`
	Sentiment      string     `gorm:"type:varchar(50)" json:"sentiment"`
	Feedback       string     `gorm:"type:text" json:"feedback"`
	CheatFaults    int        `gorm:"not null;default:0" json:"cheat_faults"`
	IndexedAt      *time.Time `gorm:"index" json:"indexed_at,omitempty"`
	CreatedAt      time.Time  `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`

	Candidate *Candidate `gorm:"foreignKey:CandidateID;constraint:OnDelete:CASCADE" json:"-"`
	Question  *Question  `gorm:"foreignKey:QuestionID;constraint:OnDelete:CASCADE" json:"-"`
}

func (Response) TableName() string {
	return "responses"
}

// ApplyJudgment copies the judgment fields onto the stored row.
func (r *Response) ApplyJudgment(j Judgment) {
	r.Transcript = j.Transcript
	r.ScoreRelevance = float64(j.Score)
	r.Sentiment = string(j.Sentiment)
	r.Feedback = j.Feedback
}
