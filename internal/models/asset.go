package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Asset source tiers
const (
	AssetSourceGridDB = "steamgriddb"
	AssetSourceEpic   = "epic"
	AssetSourceSteam  = "steam"
)

// TitleAsset is the one-to-one resolved artwork record for a title. Version
// increments on every material change so consumers can bust their caches.
type TitleAsset struct {
	ID             string         `gorm:"type:varchar(36);primaryKey" json:"id"`
	TitleID        string         `gorm:"type:varchar(36);not null;uniqueIndex" json:"title_id"`
	SelectedSource string         `gorm:"type:varchar(30);default:steam" json:"selected_source"`
	SgdbAssets     datatypes.JSON `gorm:"type:jsonb" json:"sgdb_assets"`
	EpicAssets     datatypes.JSON `gorm:"type:jsonb" json:"epic_assets"`
	SteamAssets    datatypes.JSON `gorm:"type:jsonb" json:"steam_assets"`
	SelectedAssets datatypes.JSON `gorm:"type:jsonb" json:"selected_assets"`
	QualityScore   float64        `gorm:"default:0" json:"quality_score"`
	Version        int            `gorm:"default:1" json:"version"`
	FetchedAt      time.Time      `json:"fetched_at"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

func (TitleAsset) TableName() string { return "title_assets" }

func (a *TitleAsset) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}

// Mapping verification states
const (
	MappingStateMatched  = "matched"
	MappingStateFallback = "fallback"
)

// CrossStoreMapping links a title to its equivalent listing on the Epic
// storefront. Multiple historical rows may exist per app id; the
// highest-confidence row is authoritative.
type CrossStoreMapping struct {
	ID            string         `gorm:"type:varchar(36);primaryKey" json:"id"`
	SteamAppID    string         `gorm:"type:varchar(20);not null;index" json:"steam_app_id"`
	EpicProductID string         `gorm:"type:varchar(120);not null;index" json:"epic_product_id"`
	Confidence    float64        `gorm:"default:0" json:"confidence"`
	Evidence      datatypes.JSON `gorm:"type:jsonb" json:"evidence"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

func (CrossStoreMapping) TableName() string { return "cross_store_mappings" }

func (m *CrossStoreMapping) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}
