package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Enrichment source labels
const (
	EnrichmentSourceStructured  = "steamdb_structured"
	EnrichmentSourceUnavailable = "steamdb_unavailable"
)

// EnrichmentRecord holds per-title secondary data (price history, hidden tags,
// depot and branch metadata). The raw payload keeps every sub-fetch response,
// including failed ones, for auditability.
type EnrichmentRecord struct {
	ID           string         `gorm:"type:varchar(36);primaryKey" json:"id"`
	TitleID      string         `gorm:"type:varchar(36);not null;uniqueIndex" json:"title_id"`
	PriceHistory datatypes.JSON `gorm:"type:jsonb" json:"price_history"`
	HiddenTags   datatypes.JSON `gorm:"type:jsonb" json:"hidden_tags"`
	Depots       datatypes.JSON `gorm:"type:jsonb" json:"depots"`
	BranchMap    datatypes.JSON `gorm:"type:jsonb" json:"branch_map"`
	Payload      datatypes.JSON `gorm:"type:jsonb" json:"payload"`
	Confidence   float64        `gorm:"default:0" json:"confidence"`
	Source       string         `gorm:"type:varchar(30);default:steamdb_structured" json:"source"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

func (EnrichmentRecord) TableName() string { return "enrichment_records" }

func (r *EnrichmentRecord) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}
