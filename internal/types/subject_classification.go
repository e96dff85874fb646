package types

import (
	"github.com/google/uuid"
	"time"
)

// Entity types accepted by the polymorphic classification join. The backend
// schema uses a string discriminator; values are centralized here so no call
// site carries a bare literal.
const (
	EntityTypeSourcesGoogle  = "sources_google"
	EntityTypeExpertDocument = "expert_document"
	EntityTypePresentation   = "presentation"
)

// SubjectClassification is a topical tag attachable to a source file, used
// for pill-based browsing filters. Global lookup, loaded once and cached.
type SubjectClassification struct {
	ID           uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Subject      string    `gorm:"not null;column:subject" json:"subject"`
	ShortName    string    `gorm:"column:short_name" json:"short_name"`
	Description  string    `gorm:"column:description" json:"description,omitempty"`
	DisplayOrder int       `gorm:"column:display_order;default:0" json:"display_order"`
	CreatedAt    time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt    time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (SubjectClassification) TableName() string {
	return "subject_classification"
}

// TableClassification attaches a subject to one row of one of several tables
// via the (entity_id, entity_type) pair.
type TableClassification struct {
	ID                      uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	EntityID                uuid.UUID `gorm:"type:uuid;not null;index:idx_table_classification_entity;column:entity_id" json:"entity_id"`
	EntityType              string    `gorm:"not null;index:idx_table_classification_entity;column:entity_type" json:"entity_type"`
	SubjectClassificationID uuid.UUID `gorm:"type:uuid;not null;index;column:subject_classification_id" json:"subject_classification_id"`
	CreatedAt               time.Time `gorm:"not null;default:now()" json:"created_at"`
}

func (TableClassification) TableName() string {
	return "table_classification"
}
