package types

import (
	"github.com/google/uuid"
	"time"
)

// Presentation pairs a video file with an AI-processed document and optional
// supporting assets. Under an active filter a presentation is only visible
// if its video_source_id is a member of the resolved source set.
type Presentation struct {
	ID                      uuid.UUID       `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Title                   string          `gorm:"column:title" json:"title"`
	VideoSourceID           *uuid.UUID      `gorm:"type:uuid;index;column:video_source_id" json:"video_source_id,omitempty"`
	VideoSource             *SourceGoogle   `gorm:"foreignKey:VideoSourceID;references:ID" json:"video_source,omitempty"`
	ExpertDocumentID        *uuid.UUID      `gorm:"type:uuid;index;column:expert_document_id" json:"expert_document_id,omitempty"`
	ExpertDocument          *ExpertDocument `gorm:"foreignKey:ExpertDocumentID;references:ID" json:"expert_document,omitempty"`
	HighLevelFolderSourceID *uuid.UUID      `gorm:"type:uuid;index;column:high_level_folder_source_id" json:"high_level_folder_source_id,omitempty"`
	HighLevelFolder         *SourceGoogle   `gorm:"foreignKey:HighLevelFolderSourceID;references:ID" json:"high_level_folder,omitempty"`
	WebViewLink             string          `gorm:"column:web_view_link" json:"web_view_link"`
	CreatedAt               time.Time       `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt               time.Time       `gorm:"not null;default:now()" json:"updated_at"`

	// Derived client-side of the repo layer: expert display names joined
	// through source_expert for the video source. Never persisted.
	ExpertNames []string    `gorm:"-" json:"expert_names,omitempty"`
	SubjectIDs  []uuid.UUID `gorm:"-" json:"subject_ids,omitempty"`
}

func (Presentation) TableName() string {
	return "presentation"
}
