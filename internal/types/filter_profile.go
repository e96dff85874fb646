package types

import (
	"github.com/google/uuid"
	"time"
)

// FilterProfile is a named restriction limiting visible content to the
// descendants of its associated root drive folders. At most one profile is
// active at a time; SetActiveProfile enforces that in a single transaction.
type FilterProfile struct {
	ID          uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Name        string    `gorm:"not null;column:name" json:"name"`
	Description string    `gorm:"column:description" json:"description,omitempty"`
	IsActive    bool      `gorm:"not null;default:false;column:is_active;index" json:"is_active"`
	CreatedAt   time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt   time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (FilterProfile) TableName() string {
	return "filter_profile"
}

// FilterProfileDrive associates a profile with one top-level drive folder.
// Immutable from the service's perspective; rows are managed out-of-band.
type FilterProfileDrive struct {
	ID          uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	ProfileID   uuid.UUID `gorm:"type:uuid;not null;index;column:profile_id" json:"profile_id"`
	RootDriveID string    `gorm:"not null;index;column:root_drive_id" json:"root_drive_id"`
	CreatedAt   time.Time `gorm:"not null;default:now()" json:"created_at"`
}

func (FilterProfileDrive) TableName() string {
	return "filter_profile_drive"
}
