package assets

import (
	"context"
	"log"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/playdex/catalogd/internal/config"
	"github.com/playdex/catalogd/internal/metrics"
	"github.com/playdex/catalogd/internal/models"
)

// Resolution is the outcome of one chain pass for an app id.
type Resolution struct {
	AppID          string  `json:"app_id"`
	SelectedSource string  `json:"selected_source"`
	Assets         Bundle  `json:"assets"`
	QualityScore   float64 `json:"quality_score"`
	Version        int     `json:"version"`
}

// PrefetchStats summarizes a batch prefetch run.
type PrefetchStats struct {
	Total     int `json:"total"`
	Processed int `json:"processed"`
	Success   int `json:"success"`
	Failed    int `json:"failed"`
}

// Chain resolves and caches artwork bundles on TitleAsset rows.
type Chain struct {
	db     *gorm.DB
	griddb *GridDBClient
	cfg    config.IndexConfig

	// RefreshTitle, when set, is invoked for app ids without a Title row so
	// a cold asset request can still hydrate the catalog.
	RefreshTitle func(ctx context.Context, appID string) (*models.Title, error)

	now func() time.Time
}

func NewChain(db *gorm.DB, griddb *GridDBClient, cfg config.IndexConfig) *Chain {
	return &Chain{db: db, griddb: griddb, cfg: cfg, now: time.Now}
}

// epicBundle reads storefront-derived assets out of the best mapping's
// evidence, gated on the asset confidence threshold.
func (c *Chain) epicBundle(appID string) Bundle {
	var mapping models.CrossStoreMapping
	err := c.db.Where("steam_app_id = ?", appID).
		Order("confidence DESC").
		First(&mapping).Error
	if err != nil {
		return Bundle{}
	}
	if mapping.Confidence < c.cfg.EpicAssetConfidence {
		return Bundle{}
	}
	evidence := models.JSONMap(mapping.Evidence)
	assetsRaw, ok := evidence["assets"].(map[string]any)
	if !ok {
		assetsRaw = evidence
	}
	return BundleFromMap(assetsRaw)
}

// ResolveAssets runs the provider chain for one app id. Cached rows are
// served as-is unless forceRefresh is set; every recomputation bumps the
// row version.
func (c *Chain) ResolveAssets(ctx context.Context, appID, titleHint string, forceRefresh bool) (Resolution, error) {
	var title models.Title
	err := c.db.Where("app_id = ?", appID).First(&title).Error
	if err == gorm.ErrRecordNotFound && c.RefreshTitle != nil {
		if refreshed, refreshErr := c.RefreshTitle(ctx, appID); refreshErr == nil && refreshed != nil {
			title = *refreshed
			err = nil
		}
	}
	if err != nil {
		// No catalog row; serve the deterministic floor without persisting.
		return Resolution{
			AppID:          appID,
			SelectedSource: models.AssetSourceSteam,
			Assets:         FallbackBundle(appID).Normalize(),
			QualityScore:   QualitySteam,
			Version:        1,
		}, nil
	}

	var row models.TitleAsset
	rowErr := c.db.Where("title_id = ?", title.ID).First(&row).Error
	if rowErr == nil && !forceRefresh {
		return Resolution{
			AppID:          appID,
			SelectedSource: row.SelectedSource,
			Assets:         BundleFromMap(models.JSONMap(row.SelectedAssets)),
			QualityScore:   row.QualityScore,
			Version:        row.Version,
		}, nil
	}
	if rowErr != nil && rowErr != gorm.ErrRecordNotFound {
		return Resolution{}, rowErr
	}

	searchTitle := titleHint
	if searchTitle == "" {
		searchTitle = title.Name
	}

	var sgdb Bundle
	if c.griddb != nil {
		sgdb = c.griddb.Resolve(ctx, appID, searchTitle)
	}
	epic := c.epicBundle(appID)
	steamFloor := FallbackBundle(appID)

	source, selected, score := ChooseSource(sgdb, epic, steamFloor)
	selected = selected.Normalize()

	if rowErr == gorm.ErrRecordNotFound {
		row = models.TitleAsset{TitleID: title.ID, Version: 0}
	}
	row.SgdbAssets = models.ToJSON(sgdb.Map())
	row.EpicAssets = models.ToJSON(epic.Map())
	row.SteamAssets = models.ToJSON(steamFloor.Map())
	row.SelectedAssets = models.ToJSON(selected.Map())
	row.SelectedSource = source
	row.QualityScore = score
	row.Version++
	row.FetchedAt = c.now().UTC()
	if err := c.db.Save(&row).Error; err != nil {
		return Resolution{}, err
	}
	metrics.AssetResolutions.WithLabelValues(source).Inc()

	return Resolution{
		AppID:          appID,
		SelectedSource: source,
		Assets:         selected,
		QualityScore:   score,
		Version:        row.Version,
	}, nil
}

// Prefetch resolves bundles for a bounded list of app ids, one AssetJob row
// per item. A failing id marks its job failed and the batch continues.
func (c *Chain) Prefetch(ctx context.Context, appIDs []string, forceRefresh bool) PrefetchStats {
	ids := make([]string, 0, len(appIDs))
	for _, raw := range appIDs {
		if id := digitsOnly(raw); id != "" {
			ids = append(ids, id)
		}
	}
	limit := c.cfg.MaxPrefetch
	if limit < 1 {
		limit = 1
	}
	if len(ids) > limit {
		ids = ids[:limit]
	}
	stats := PrefetchStats{Total: len(ids), Processed: len(ids)}
	if len(ids) == 0 {
		return stats
	}

	for index, appID := range ids {
		job := models.AssetJob{AppID: appID, Status: models.JobStatusRunning, Priority: index + 1}
		if err := c.db.Create(&job).Error; err != nil {
			log.Printf("⚠️ Asset job insert failed for %s: %v", appID, err)
			stats.Failed++
			continue
		}

		result, err := c.ResolveAssets(ctx, appID, "", forceRefresh)
		if err != nil {
			job.Status = models.JobStatusFailed
			job.LastError = err.Error()
			job.Retries++
			stats.Failed++
		} else {
			job.Status = models.JobStatusCompleted
			job.ResultSource = result.SelectedSource
			job.ResultMeta = models.ToJSON(map[string]any{
				"version":       result.Version,
				"quality_score": result.QualityScore,
			})
			stats.Success++
		}
		if err := c.db.Save(&job).Error; err != nil {
			log.Printf("⚠️ Asset job update failed for %s: %v", appID, err)
		}
	}
	return stats
}

func digitsOnly(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}
	for _, r := range trimmed {
		if r < '0' || r > '9' {
			return ""
		}
	}
	return trimmed
}
