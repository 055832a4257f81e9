package models

import (
	"time"

	"github.com/google/uuid"
)

type Job struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	Title     string    `gorm:"type:varchar(100);not null" json:"title"`
	Level     string    `gorm:"type:varchar(50);not null" json:"level"`
	Skills    string    `gorm:"type:varchar(200)" json:"skills"`
	CreatedAt time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`

	// Relations
	Questions  []Question  `gorm:"foreignKey:JobID;constraint:OnDelete:CASCADE" json:"questions,omitempty"`
	Candidates []Candidate `gorm:"foreignKey:JobID;constraint:OnDelete:CASCADE" json:"-"`
}

func (Job) TableName() string {
	return "jobs"
}

// Question is immutable once its generation batch is stored.
type Question struct {
	ID           uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	JobID        uuid.UUID `gorm:"type:uuid;not null;index" json:"job_id"`
	Position     int       `gorm:"not null;default:0" json:"position"`
	QuestionText string    `gorm:"type:text;not null" json:"question_text"`
	IdealAnswer  string    `gorm:"type:text" json:"ideal_answer,omitempty"`
}

func (Question) TableName() string {
	return "questions"
}
