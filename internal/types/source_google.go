package types

import (
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"time"
)

// SourceGoogle is an ingested drive file or folder. The filter pipeline
// treats it as a lookup keyed by root_drive_id; referential integrity is
// owned by the backend schema.
type SourceGoogle struct {
	ID             uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	DriveID        string         `gorm:"uniqueIndex;not null;column:drive_id" json:"drive_id"`
	RootDriveID    string         `gorm:"index;column:root_drive_id" json:"root_drive_id"`
	ParentFolderID string         `gorm:"index;column:parent_folder_id" json:"parent_folder_id"`
	Name           string         `gorm:"not null;column:name" json:"name"`
	MimeType       string         `gorm:"column:mime_type" json:"mime_type"`
	WebViewLink    string         `gorm:"column:web_view_link" json:"web_view_link"`
	ModifiedAt     *time.Time     `gorm:"column:modified_at;index" json:"modified_at,omitempty"`
	Size           int64          `gorm:"column:size" json:"size"`
	Metadata       datatypes.JSON `gorm:"type:jsonb;column:metadata" json:"metadata,omitempty"`
	CreatedAt      time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt      time.Time      `gorm:"not null;default:now()" json:"updated_at"`
}

func (SourceGoogle) TableName() string {
	return "sources_google"
}
