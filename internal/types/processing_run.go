package types

import (
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"time"
)

const (
	RunStatusQueued    = "queued"
	RunStatusRunning   = "running"
	RunStatusSucceeded = "succeeded"
	RunStatusFailed    = "failed"
)

const (
	RunStagePrepare   = "prepare"
	RunStageSummarize = "summarize"
	RunStageWriteback = "writeback"
	RunStageDone      = "done"
)

// DocumentProcessingRun tracks one AI summarization pass over an expert
// document. The worker claims queued runs, heartbeats while running, and
// takes over stale ones.
type DocumentProcessingRun struct {
	ID               uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	ExpertDocumentID uuid.UUID      `gorm:"type:uuid;not null;index;column:expert_document_id" json:"expert_document_id"`
	Status           string         `gorm:"column:status;not null;index" json:"status"` // queued|running|succeeded|failed
	Stage            string         `gorm:"column:stage;not null;index" json:"stage"`   // prepare|summarize|writeback|done
	Progress         int            `gorm:"column:progress;not null;default:0" json:"progress"`
	Attempts         int            `gorm:"column:attempts;not null;default:0" json:"attempts"`
	Error            string         `gorm:"column:error" json:"error"`
	LastErrorAt      *time.Time     `gorm:"column:last_error_at" json:"last_error_at,omitempty"`
	LockedAt         *time.Time     `gorm:"column:locked_at;index" json:"locked_at,omitempty"`
	HeartbeatAt      *time.Time     `gorm:"column:heartbeat_at;index" json:"heartbeat_at,omitempty"`
	Metadata         datatypes.JSON `gorm:"type:jsonb;column:metadata" json:"metadata"`
	CreatedAt        time.Time      `gorm:"not null;default:now();index" json:"created_at"`
	UpdatedAt        time.Time      `gorm:"not null;default:now();index" json:"updated_at"`
}

func (DocumentProcessingRun) TableName() string {
	return "document_processing_run"
}
