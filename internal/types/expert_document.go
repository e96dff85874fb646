package types

import (
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"time"
)

const (
	DocumentStatusPending    = "pending"
	DocumentStatusProcessing = "processing"
	DocumentStatusCompleted  = "completed"
	DocumentStatusFailed     = "failed"
)

// ExpertDocument is an AI-processed text artifact (summary, key points)
// attached to a presentation or asset. ProcessedContent holds the payload
// written back by the summarization worker; the viewer renders it
// heuristically (see services content formatter).
type ExpertDocument struct {
	ID               uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	SourceID         *uuid.UUID     `gorm:"type:uuid;index;column:source_id" json:"source_id,omitempty"`
	DocumentType     string         `gorm:"column:document_type" json:"document_type"`
	Title            string         `gorm:"column:title" json:"title"`
	RawContent       string         `gorm:"column:raw_content" json:"raw_content,omitempty"`
	ProcessedContent datatypes.JSON `gorm:"type:jsonb;column:processed_content" json:"processed_content,omitempty"`
	ProcessingStatus string         `gorm:"not null;default:'pending';column:processing_status;index" json:"processing_status"`
	ProcessingError  string         `gorm:"column:processing_error" json:"processing_error,omitempty"`
	CreatedAt        time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt        time.Time      `gorm:"not null;default:now()" json:"updated_at"`
}

func (ExpertDocument) TableName() string {
	return "expert_document"
}
