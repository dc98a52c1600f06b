package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Job statuses. pending -> running -> completed | failed; terminal states are
// final, a new ingest call always creates a new job row.
const (
	JobStatusPending   = "pending"
	JobStatusRunning   = "running"
	JobStatusCompleted = "completed"
	JobStatusFailed    = "failed"
)

// Job types
const (
	JobTypeCatalogIngest  = "catalog_ingest"
	JobTypeCatalogRebuild = "catalog_rebuild"
)

// IngestJob tracks one execution of the ingestion pipeline.
type IngestJob struct {
	ID             string         `gorm:"type:varchar(36);primaryKey" json:"id"`
	JobType        string         `gorm:"type:varchar(40);not null;index" json:"job_type"`
	Status         string         `gorm:"type:varchar(20);not null;default:pending;index" json:"status"`
	Source         string         `gorm:"type:varchar(40)" json:"source"`
	ProcessedCount int            `gorm:"default:0" json:"processed_count"`
	SuccessCount   int            `gorm:"default:0" json:"success_count"`
	FailureCount   int            `gorm:"default:0" json:"failure_count"`
	ErrorMessage   string         `gorm:"type:text" json:"error_message"`
	Meta           datatypes.JSON `gorm:"type:jsonb" json:"meta"`
	StartedAt      *time.Time     `json:"started_at"`
	CompletedAt    *time.Time     `json:"completed_at"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

func (IngestJob) TableName() string { return "ingest_jobs" }

func (j *IngestJob) BeforeCreate(tx *gorm.DB) error {
	if j.ID == "" {
		j.ID = uuid.NewString()
	}
	return nil
}

// IngestCursor is the single resumable-position row per cursor key. It
// survives process restarts so status queries can report progress mid-run.
type IngestCursor struct {
	ID          string         `gorm:"type:varchar(36);primaryKey" json:"id"`
	CursorKey   string         `gorm:"type:varchar(120);uniqueIndex;not null" json:"cursor_key"`
	CursorValue string         `gorm:"type:varchar(500)" json:"cursor_value"`
	CursorMeta  datatypes.JSON `gorm:"type:jsonb" json:"cursor_meta"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

func (IngestCursor) TableName() string { return "ingest_cursors" }

func (c *IngestCursor) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

// AssetJob is one asset-prefetch work item. Items fail independently so one
// bad app id cannot abort a batch.
type AssetJob struct {
	ID           string         `gorm:"type:varchar(36);primaryKey" json:"id"`
	AppID        string         `gorm:"type:varchar(20);not null;index" json:"app_id"`
	Status       string         `gorm:"type:varchar(20);default:pending;index" json:"status"`
	Priority     int            `gorm:"default:100" json:"priority"`
	Retries      int            `gorm:"default:0" json:"retries"`
	LastError    string         `gorm:"type:text" json:"last_error"`
	ResultSource string         `gorm:"type:varchar(20)" json:"result_source"`
	ResultMeta   datatypes.JSON `gorm:"type:jsonb" json:"result_meta"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

func (AssetJob) TableName() string { return "asset_jobs" }

func (j *AssetJob) BeforeCreate(tx *gorm.DB) error {
	if j.ID == "" {
		j.ID = uuid.NewString()
	}
	return nil
}
