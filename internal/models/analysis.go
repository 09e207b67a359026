package models

import (
	"time"

	"github.com/google/uuid"
)

type AnalysisStatus string

const (
	StatusProcessing AnalysisStatus = "processing"
	StatusCompleted  AnalysisStatus = "completed"
	StatusFailed     AnalysisStatus = "failed"
)

// Analysis is the audit record kept for every resume analysis request.
// It tracks operational outcome only; the Assessment itself is returned
// to the caller and never stored.
type Analysis struct {
	ID           uuid.UUID      `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	Filename     string         `gorm:"type:text" json:"filename"`
	MediaType    string         `gorm:"type:text" json:"media_type"`
	Status       AnalysisStatus `gorm:"not null;default:'processing'" json:"status"`
	MatchScore   *int           `gorm:"type:integer" json:"match_score,omitempty"`
	ErrorMessage *string        `gorm:"type:text" json:"error_message,omitempty"`
	CreatedAt    time.Time      `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt    time.Time      `gorm:"default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Analysis) TableName() string {
	return "analyses"
}
