package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Title states
const (
	TitleStateActive  = "active"
	TitleStateRetired = "retired"
)

// Title types
const (
	TitleTypeGame     = "game"
	TitleTypeDLC      = "dlc"
	TitleTypeSoftware = "software"
	TitleTypeUnknown  = "unknown"
)

// Title is one catalog entity keyed by the external numeric app id.
type Title struct {
	ID             string         `gorm:"type:varchar(36);primaryKey" json:"id"`
	AppID          string         `gorm:"type:varchar(20);uniqueIndex;not null" json:"app_id"`
	Name           string         `gorm:"type:varchar(300);not null" json:"name"`
	NormalizedName string         `gorm:"type:varchar(300);index" json:"normalized_name"`
	TitleType      string         `gorm:"type:varchar(30)" json:"title_type"`
	ReleaseDate    string         `gorm:"type:varchar(64)" json:"release_date"`
	Developer      string         `gorm:"type:varchar(200)" json:"developer"`
	Publisher      string         `gorm:"type:varchar(200)" json:"publisher"`
	PlatformFlags  datatypes.JSON `gorm:"type:jsonb" json:"platform_flags"`
	State          string         `gorm:"type:varchar(30);default:active" json:"state"`
	Source         string         `gorm:"type:varchar(40);default:steam_api" json:"source"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`

	Metadata   *TitleMetadata    `gorm:"foreignKey:TitleID" json:"metadata,omitempty"`
	Assets     *TitleAsset       `gorm:"foreignKey:TitleID" json:"assets,omitempty"`
	Aliases    []TitleAlias      `gorm:"foreignKey:TitleID" json:"aliases,omitempty"`
	Enrichment *EnrichmentRecord `gorm:"foreignKey:TitleID" json:"enrichment,omitempty"`
}

func (Title) TableName() string { return "titles" }

// BeforeCreate assigns the surrogate id
func (t *Title) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	return nil
}

// TitleAlias stores alternate names for a title, unique per
// (title, normalized alias, locale).
type TitleAlias struct {
	ID              string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	TitleID         string    `gorm:"type:varchar(36);not null;index;uniqueIndex:uq_title_alias,priority:1" json:"title_id"`
	Alias           string    `gorm:"type:varchar(300);not null" json:"alias"`
	NormalizedAlias string    `gorm:"type:varchar(300);not null;index;uniqueIndex:uq_title_alias,priority:2" json:"normalized_alias"`
	Locale          string    `gorm:"type:varchar(12);default:en;uniqueIndex:uq_title_alias,priority:3" json:"locale"`
	Source          string    `gorm:"type:varchar(30);default:steam" json:"source"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func (TitleAlias) TableName() string { return "title_aliases" }

func (a *TitleAlias) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}

// TitleMetadata is the one-to-one descriptive record for a title. Fields are
// filled incrementally and never downgraded back to empty; the two payload
// blobs cache the richest raw data seen so far.
type TitleMetadata struct {
	ID               string         `gorm:"type:varchar(36);primaryKey" json:"id"`
	TitleID          string         `gorm:"type:varchar(36);not null;uniqueIndex" json:"title_id"`
	ShortDescription string         `gorm:"type:text" json:"short_description"`
	LongDescription  string         `gorm:"type:text" json:"long_description"`
	Genres           datatypes.JSON `gorm:"type:jsonb" json:"genres"`
	Tags             datatypes.JSON `gorm:"type:jsonb" json:"tags"`
	Platforms        datatypes.JSON `gorm:"type:jsonb" json:"platforms"`
	Requirements     datatypes.JSON `gorm:"type:jsonb" json:"requirements"`
	Reviews          datatypes.JSON `gorm:"type:jsonb" json:"reviews"`
	Players          datatypes.JSON `gorm:"type:jsonb" json:"players"`
	DlcGraph         datatypes.JSON `gorm:"type:jsonb" json:"dlc_graph"`
	SummaryPayload   datatypes.JSON `gorm:"type:jsonb" json:"summary_payload"`
	DetailPayload    datatypes.JSON `gorm:"type:jsonb" json:"detail_payload"`
	LastRefreshedAt  time.Time      `json:"last_refreshed_at"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
}

func (TitleMetadata) TableName() string { return "title_metadata" }

func (m *TitleMetadata) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}
