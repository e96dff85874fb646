package types

import (
	"github.com/google/uuid"
	"time"
)

type Expert struct {
	ID         uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	ExpertName string    `gorm:"not null;uniqueIndex;column:expert_name" json:"expert_name"`
	FullName   string    `gorm:"column:full_name" json:"full_name"`
	CreatedAt  time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt  time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (Expert) TableName() string {
	return "expert"
}

// SourceExpert links a drive source to the expert(s) featured in it. The
// presentation list derives expert display names through this join.
type SourceExpert struct {
	ID        uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	SourceID  uuid.UUID `gorm:"type:uuid;not null;index;column:source_id" json:"source_id"`
	ExpertID  uuid.UUID `gorm:"type:uuid;not null;index;column:expert_id" json:"expert_id"`
	Expert    *Expert   `gorm:"foreignKey:ExpertID;references:ID" json:"expert,omitempty"`
	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
}

func (SourceExpert) TableName() string {
	return "source_expert"
}
