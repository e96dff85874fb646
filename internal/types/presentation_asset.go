package types

import (
	"github.com/google/uuid"
	"time"
)

// PresentationAsset is a supporting file (transcript, slides, paper) hanging
// off a presentation. Rows are fetched only after a presentation is selected
// and discarded on deselection.
type PresentationAsset struct {
	ID                    uuid.UUID       `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	PresentationID        uuid.UUID       `gorm:"type:uuid;not null;index;column:presentation_id" json:"presentation_id"`
	AssetType             string          `gorm:"column:asset_type" json:"asset_type"`
	AssetRole             string          `gorm:"column:asset_role" json:"asset_role"`
	AssetSourceID         *uuid.UUID      `gorm:"type:uuid;index;column:asset_source_id" json:"asset_source_id,omitempty"`
	SourceFile            *SourceGoogle   `gorm:"foreignKey:AssetSourceID;references:ID" json:"source_file,omitempty"`
	AssetExpertDocumentID *uuid.UUID      `gorm:"type:uuid;index;column:asset_expert_document_id" json:"asset_expert_document_id,omitempty"`
	ExpertDocument        *ExpertDocument `gorm:"foreignKey:AssetExpertDocumentID;references:ID" json:"expert_document,omitempty"`
	ImportanceLevel       int             `gorm:"column:importance_level;default:0" json:"importance_level"`
	UserNotes             string          `gorm:"column:user_notes" json:"user_notes,omitempty"`
	CreatedAt             time.Time       `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt             time.Time       `gorm:"not null;default:now()" json:"updated_at"`
}

func (PresentationAsset) TableName() string {
	return "presentation_asset"
}
