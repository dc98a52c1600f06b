// Package ingest drives the catalog pipeline: seed list resolution, batched
// title upserts, bounded-parallel detail refresh, external enrichment and the
// optional completeness pass. A run always leaves a terminal IngestJob row.
package ingest

import (
	"context"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/playdex/catalogd/internal/complete"
	"github.com/playdex/catalogd/internal/config"
	"github.com/playdex/catalogd/internal/crossstore"
	"github.com/playdex/catalogd/internal/enrich"
	"github.com/playdex/catalogd/internal/metrics"
	"github.com/playdex/catalogd/internal/models"
	"github.com/playdex/catalogd/internal/normalize"
	"github.com/playdex/catalogd/internal/steam"
)

const cursorKey = "catalog_ingest"

// ExternalStats counts the enrichment and cross-store phases of one run.
type ExternalStats struct {
	SteamDBSuccess    int `json:"steamdb_success"`
	SteamDBFailed     int `json:"steamdb_failed"`
	CrossStoreSuccess int `json:"cross_store_success"`
	CrossStoreFailed  int `json:"cross_store_failed"`
}

// Result is the aggregate outcome of one pipeline run.
type Result struct {
	JobID       string        `json:"job_id"`
	Source      string        `json:"source"`
	Processed   int           `json:"processed"`
	Success     int           `json:"success"`
	Failed      int           `json:"failed"`
	External    ExternalStats `json:"external_enrichment"`
	ResumeToken string        `json:"resume_token"`
	StartedAt   time.Time     `json:"started_at"`
	CompletedAt time.Time     `json:"completed_at"`
}

// ProgressEvent is emitted as the pipeline moves through its stages.
type ProgressEvent struct {
	JobID     string `json:"job_id"`
	Stage     string `json:"stage"`
	Processed int    `json:"processed"`
	Total     int    `json:"total"`
	Failed    int    `json:"failed"`
}

// Pipeline wires the providers and stores together.
type Pipeline struct {
	db       *gorm.DB
	steam    *steam.Client
	seed     steam.SeedSource
	enricher *enrich.Client
	pool     *crossstore.Pool
	enforcer *complete.Enforcer
	cfg      *config.Config

	// Notify, when set, receives stage progress for live status feeds.
	Notify func(ProgressEvent)

	mu      sync.Mutex
	running bool
}

func NewPipeline(db *gorm.DB, client *steam.Client, seed steam.SeedSource, enricher *enrich.Client, pool *crossstore.Pool, enforcer *complete.Enforcer, cfg *config.Config) *Pipeline {
	return &Pipeline{
		db:       db,
		steam:    client,
		seed:     seed,
		enricher: enricher,
		pool:     pool,
		enforcer: enforcer,
		cfg:      cfg,
	}
}

func (p *Pipeline) emit(event ProgressEvent) {
	if p.Notify != nil {
		p.Notify(event)
	}
}

// Running reports whether a pipeline run is currently in flight.
func (p *Pipeline) Running() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

// IngestFull runs a complete pipeline pass. maxItems<=0 means unbounded.
func (p *Pipeline) IngestFull(ctx context.Context, maxItems int) (Result, error) {
	return p.run(ctx, models.JobTypeCatalogIngest, "", maxItems, false)
}

// IngestResume continues after an interrupted run. Upserts are idempotent so
// a resume is a fresh scan under the prior cursor's lineage; a stale token is
// replaced rather than rejected.
func (p *Pipeline) IngestResume(ctx context.Context, token string, maxItems int) (Result, error) {
	return p.run(ctx, models.JobTypeCatalogIngest, token, maxItems, false)
}

// IngestRebuild forces detail, enrichment and mapping refresh regardless of
// freshness windows.
func (p *Pipeline) IngestRebuild(ctx context.Context, maxItems int) (Result, error) {
	return p.run(ctx, models.JobTypeCatalogRebuild, "", maxItems, true)
}

func (p *Pipeline) run(ctx context.Context, jobType, resumeToken string, maxItems int, forceRefresh bool) (Result, error) {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return Result{}, fmt.Errorf("an ingest job is already running")
	}
	p.running = true
	p.mu.Unlock()
	defer func() {
		p.mu.Lock()
		p.running = false
		p.mu.Unlock()
	}()

	started := time.Now().UTC()
	job := models.IngestJob{
		JobType:   jobType,
		Status:    models.JobStatusRunning,
		Source:    "steam_api",
		StartedAt: &started,
		Meta: models.ToJSON(map[string]any{
			"max_items":     maxItems,
			"force_refresh": forceRefresh,
		}),
	}
	if err := p.db.Create(&job).Error; err != nil {
		return Result{}, fmt.Errorf("create ingest job: %w", err)
	}

	token := p.refreshCursor(job.ID, resumeToken)
	result := Result{JobID: job.ID, ResumeToken: token, StartedAt: started}

	apps, source := p.resolveSeedList(ctx, maxItems)
	result.Source = source
	if source != job.Source {
		job.Source = source
		p.db.Save(&job)
	}
	if len(apps) == 0 {
		return p.finishJob(&job, result, fmt.Errorf("no catalog entries available from any source"))
	}
	if maxItems > 0 && len(apps) > maxItems {
		apps = apps[:maxItems]
	}

	log.Printf("📦 Catalog ingest %s: %d entries from %s", job.ID, len(apps), source)

	touched, err := p.upsertPhase(ctx, &job, apps, source, &result)
	if err != nil {
		return p.finishJob(&job, result, err)
	}

	details := touched[:detailBound(len(touched), maxItems, p.cfg.Index.DetailsBatch)]

	p.detailPhase(ctx, &job, details, forceRefresh, &result)
	result.External = p.externalPhase(ctx, &job, details, forceRefresh)

	if p.cfg.Index.EnforceComplete && p.enforcer != nil {
		stats := p.enforcer.Enforce(ctx, details, p.cfg.Index.CompletionBatch)
		log.Printf("🧹 Completeness pass: %d scanned, %d metadata, %d assets, %d mappings",
			stats.Scanned, stats.MetadataFixed, stats.AssetsFixed, stats.MappingsFixed)
	}

	return p.finishJob(&job, result, nil)
}

// refreshCursor writes a fresh resume token at the start of every run so
// status queries can report in-progress lineage before completion.
func (p *Pipeline) refreshCursor(jobID, priorToken string) string {
	token := uuid.NewString()
	var cursor models.IngestCursor
	err := p.db.Where("cursor_key = ?", cursorKey).First(&cursor).Error
	if err != nil && err != gorm.ErrRecordNotFound {
		return token
	}
	if err == gorm.ErrRecordNotFound {
		cursor = models.IngestCursor{CursorKey: cursorKey}
	}
	cursor.CursorValue = token
	cursor.CursorMeta = models.ToJSON(map[string]any{
		"job_id":      jobID,
		"prior_token": priorToken,
		"started_at":  time.Now().UTC().Format(time.RFC3339),
	})
	if err := p.db.Save(&cursor).Error; err != nil {
		log.Printf("⚠️ Cursor update failed: %v", err)
	}
	return token
}

// resolveSeedList prefers the remote list and falls back to the local seed
// source with bounded retries, covering the race where the seed files are
// still being populated by a companion sync.
func (p *Pipeline) resolveSeedList(ctx context.Context, maxItems int) ([]steam.AppEntry, string) {
	apps, err := p.steam.FetchAppList(ctx)
	if err == nil && len(apps) > 0 {
		return apps, "steam_api"
	}
	if err != nil {
		log.Printf("⚠️ Remote app list unavailable: %v", err)
	}

	retries := p.cfg.Index.SeedFallbackRetries
	if retries < 1 {
		retries = 1
	}
	for attempt := 0; attempt < retries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, "seed_fallback"
			case <-time.After(time.Duration(attempt) * 2 * time.Second):
			}
		}
		seeded, seedErr := p.seed.Load()
		if seedErr == nil && len(seeded) > 0 {
			if maxItems > 0 && len(seeded) > maxItems {
				seeded = seeded[:maxItems]
			}
			return seeded, "seed_fallback"
		}
	}
	return nil, "seed_fallback"
}

// detailBound caps how many touched ids enter the detail phase per run. An
// unbounded ingest still refreshes at most detailsBatch titles; the remainder
// picks up fresh details on later runs through the freshness window.
func detailBound(touched, maxItems, detailsBatch int) int {
	bound := touched
	if maxItems > 0 && maxItems < bound {
		bound = maxItems
	}
	if detailsBatch > 0 && detailsBatch < bound {
		bound = detailsBatch
	}
	return bound
}

// ChooseName keeps the better of two names for the same app id. A
// placeholder never replaces a real name.
func ChooseName(existing, incoming string) string {
	if incoming == "" {
		return existing
	}
	if existing == "" {
		return incoming
	}
	if normalize.IsPlaceholderName(incoming) && !normalize.IsPlaceholderName(existing) {
		return existing
	}
	return incoming
}

// upsertPhase walks the seed list in batches, bulk-loading existing rows per
// batch and committing batch-by-batch so a crash loses at most one batch.
func (p *Pipeline) upsertPhase(ctx context.Context, job *models.IngestJob, apps []steam.AppEntry, source string, result *Result) ([]string, error) {
	batchSize := p.cfg.Index.IngestBatch
	if batchSize < 10 {
		batchSize = 10
	}

	var touched []string
	for start := 0; start < len(apps); start += batchSize {
		select {
		case <-ctx.Done():
			return touched, ctx.Err()
		default:
		}

		end := start + batchSize
		if end > len(apps) {
			end = len(apps)
		}
		batch := apps[start:end]

		err := p.db.Transaction(func(tx *gorm.DB) error {
			ids := make([]string, 0, len(batch))
			for _, entry := range batch {
				ids = append(ids, entry.AppID)
			}
			var rows []models.Title
			if err := tx.Where("app_id IN ?", ids).Find(&rows).Error; err != nil {
				return err
			}
			existing := make(map[string]*models.Title, len(rows))
			for i := range rows {
				existing[rows[i].AppID] = &rows[i]
			}

			for _, entry := range batch {
				result.Processed++
				if err := p.upsertTitle(tx, existing[entry.AppID], entry, source); err != nil {
					log.Printf("⚠️ Upsert failed for %s: %v", entry.AppID, err)
					result.Failed++
					continue
				}
				result.Success++
				touched = append(touched, entry.AppID)
			}
			return nil
		})
		if err != nil {
			return touched, fmt.Errorf("batch starting at %d: %w", start, err)
		}

		job.ProcessedCount = result.Processed
		job.SuccessCount = result.Success
		job.FailureCount = result.Failed
		p.db.Save(job)
		p.emit(ProgressEvent{JobID: job.ID, Stage: "upsert", Processed: result.Processed, Total: len(apps), Failed: result.Failed})
	}
	return touched, nil
}

func (p *Pipeline) upsertTitle(tx *gorm.DB, row *models.Title, entry steam.AppEntry, source string) error {
	name := entry.Name
	if row != nil {
		name = ChooseName(row.Name, entry.Name)
		row.Name = name
		row.NormalizedName = normalize.Title(name)
		row.State = models.TitleStateActive
		row.Source = source
		if err := tx.Save(row).Error; err != nil {
			return err
		}
		return upsertAlias(tx, row.ID, name, "en", source)
	}

	fresh := models.Title{
		AppID:          entry.AppID,
		Name:           name,
		NormalizedName: normalize.Title(name),
		TitleType:      models.TitleTypeUnknown,
		State:          models.TitleStateActive,
		Source:         source,
	}
	if err := tx.Create(&fresh).Error; err != nil {
		return err
	}
	return upsertAlias(tx, fresh.ID, name, "en", source)
}

func upsertAlias(tx *gorm.DB, titleID, alias, locale, source string) error {
	normalized := normalize.Title(alias)
	if normalized == "" {
		return nil
	}
	var existing models.TitleAlias
	err := tx.Where("title_id = ? AND normalized_alias = ? AND locale = ?", titleID, normalized, locale).
		First(&existing).Error
	if err != nil && err != gorm.ErrRecordNotFound {
		return err
	}
	if err == nil {
		existing.Alias = alias
		existing.Source = source
		return tx.Save(&existing).Error
	}
	return tx.Create(&models.TitleAlias{
		TitleID:         titleID,
		Alias:           alias,
		NormalizedAlias: normalized,
		Locale:          locale,
		Source:          source,
	}).Error
}

// detailPhase refreshes full metadata for the touched subset with a bounded
// worker pool. Per-id failures only bump the failure counter.
func (p *Pipeline) detailPhase(ctx context.Context, job *models.IngestJob, appIDs []string, forceRefresh bool, result *Result) {
	if len(appIDs) == 0 {
		return
	}
	workers := p.cfg.Index.DetailWorkers
	if workers < 1 {
		workers = 1
	}

	// Warm the summary cache in batched appdetails calls before the workers
	// fan out; each worker's GetSummary then hits the memo cache.
	p.steam.GetSummaries(ctx, appIDs)

	var failed int64
	var done int64
	jobs := make(chan string)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for appID := range jobs {
				if err := p.RefreshTitleDetail(ctx, appID, forceRefresh); err != nil {
					atomic.AddInt64(&failed, 1)
				}
				if count := atomic.AddInt64(&done, 1); count%200 == 0 {
					p.emit(ProgressEvent{JobID: job.ID, Stage: "details", Processed: int(count), Total: len(appIDs), Failed: int(atomic.LoadInt64(&failed))})
				}
			}
		}()
	}

feed:
	for _, appID := range appIDs {
		select {
		case <-ctx.Done():
			break feed
		case jobs <- appID:
		}
	}
	close(jobs)
	wg.Wait()

	result.Failed += int(failed)
	job.FailureCount = result.Failed
	p.db.Save(job)
	p.emit(ProgressEvent{JobID: job.ID, Stage: "details", Processed: int(done), Total: len(appIDs), Failed: int(failed)})
}

// RefreshTitleDetail pulls summary and detail for one app id and refreshes
// the Title and TitleMetadata rows. Skips metadata younger than the
// freshness window unless forced.
func (p *Pipeline) RefreshTitleDetail(ctx context.Context, appID string, forceRefresh bool) error {
	var title models.Title
	titleErr := p.db.Where("app_id = ?", appID).First(&title).Error
	if titleErr != nil && titleErr != gorm.ErrRecordNotFound {
		return titleErr
	}

	if titleErr == nil && !forceRefresh {
		var meta models.TitleMetadata
		if err := p.db.Where("title_id = ?", title.ID).First(&meta).Error; err == nil {
			if enrich.IsRecent(meta.LastRefreshedAt, p.cfg.Index.CatalogCacheTTL) && len(meta.DetailPayload) > 0 {
				return nil
			}
		}
	}

	summary := p.steam.GetSummary(ctx, appID)
	detail := p.steam.GetDetail(ctx, appID)
	if summary == nil && detail == nil {
		return fmt.Errorf("no provider data for app %s", appID)
	}

	name := ""
	if detail != nil {
		name = detail.Name
	}
	if name == "" && summary != nil {
		name = summary.Name
	}
	if name == "" {
		name = "Steam App " + appID
	}

	return p.db.Transaction(func(tx *gorm.DB) error {
		if titleErr == gorm.ErrRecordNotFound {
			title = models.Title{AppID: appID, State: models.TitleStateActive, Source: "steam_api"}
		}
		title.Name = ChooseName(title.Name, name)
		title.NormalizedName = normalize.Title(title.Name)
		applyProviderFields(&title, summary, detail)
		if err := tx.Save(&title).Error; err != nil {
			return err
		}
		if err := upsertAlias(tx, title.ID, title.Name, "en", "steam_api"); err != nil {
			return err
		}
		return upsertMetadata(tx, &title, summary, detail)
	})
}

func applyProviderFields(title *models.Title, summary *steam.Summary, detail *steam.Detail) {
	pick := func(get func(*steam.Summary) string) string {
		if detail != nil {
			if v := get(&detail.Summary); v != "" {
				return v
			}
		}
		if summary != nil {
			return get(summary)
		}
		return ""
	}

	if release := pick(func(s *steam.Summary) string { return s.ReleaseDate }); release != "" {
		title.ReleaseDate = release
	}
	if itemType := pick(func(s *steam.Summary) string { return s.ItemType }); itemType != "" {
		title.TitleType = classifyItemType(itemType)
	}
	if detail != nil {
		if len(detail.Developers) > 0 {
			title.Developer = detail.Developers[0]
		}
		if len(detail.Publishers) > 0 {
			title.Publisher = detail.Publishers[0]
		}
	}

	flags := map[string]bool{"windows": false, "mac": false, "linux": false}
	var platforms []string
	if detail != nil && len(detail.Platforms) > 0 {
		platforms = detail.Platforms
	} else if summary != nil {
		platforms = summary.Platforms
	}
	for _, platform := range platforms {
		if _, known := flags[platform]; known {
			flags[platform] = true
		}
	}
	if len(platforms) > 0 {
		title.PlatformFlags = models.ToJSON(flags)
	}
}

func classifyItemType(raw string) string {
	switch raw {
	case "game":
		return models.TitleTypeGame
	case "dlc":
		return models.TitleTypeDLC
	case "software", "application":
		return models.TitleTypeSoftware
	}
	return models.TitleTypeUnknown
}

func upsertMetadata(tx *gorm.DB, title *models.Title, summary *steam.Summary, detail *steam.Detail) error {
	var meta models.TitleMetadata
	err := tx.Where("title_id = ?", title.ID).First(&meta).Error
	if err != nil && err != gorm.ErrRecordNotFound {
		return err
	}
	if err == gorm.ErrRecordNotFound {
		meta = models.TitleMetadata{TitleID: title.ID}
	}

	if detail != nil {
		if detail.ShortDescription != "" {
			meta.ShortDescription = detail.ShortDescription
		}
		if detail.DetailedDescription != "" {
			meta.LongDescription = detail.DetailedDescription
		} else if detail.AboutTheGame != "" {
			meta.LongDescription = detail.AboutTheGame
		}
		if len(detail.Genres) > 0 {
			meta.Genres = models.ToJSON(detail.Genres)
		}
		if len(detail.Platforms) > 0 {
			meta.Platforms = models.ToJSON(detail.Platforms)
		}
		if len(detail.Requirements) > 0 {
			meta.Requirements = models.ToJSON(detail.Requirements)
		}
		if len(detail.DLC) > 0 {
			meta.DlcGraph = models.ToJSON(map[string]any{"dlc": detail.DLC, "full_game": detail.FullGameAppID})
		}
		meta.DetailPayload = models.ToJSON(detail.Payload)
	}
	if summary != nil {
		if meta.ShortDescription == "" {
			meta.ShortDescription = summary.ShortDescription
		}
		if len(models.JSONStrings(meta.Genres)) == 0 && len(summary.Genres) > 0 {
			meta.Genres = models.ToJSON(summary.Genres)
		}
		if len(models.JSONStrings(meta.Platforms)) == 0 && len(summary.Platforms) > 0 {
			meta.Platforms = models.ToJSON(summary.Platforms)
		}
		meta.SummaryPayload = models.ToJSON(summary.Payload)
	}
	meta.LastRefreshedAt = time.Now().UTC()
	return tx.Save(&meta).Error
}

// externalPhase runs enrichment and cross-store resolution over the touched
// subset, committing in slices of 50 so progress survives a crash.
func (p *Pipeline) externalPhase(ctx context.Context, job *models.IngestJob, appIDs []string, forceRefresh bool) ExternalStats {
	var stats ExternalStats
	if len(appIDs) == 0 {
		return stats
	}

	limit := p.cfg.SteamDB.MaxItems
	if limit > 0 && len(appIDs) > limit {
		appIDs = appIDs[:limit]
	}

	var titles []models.Title
	if err := p.db.Where("app_id IN ?", appIDs).Find(&titles).Error; err != nil {
		log.Printf("⚠️ External phase title load failed: %v", err)
		return stats
	}
	byAppID := make(map[string]*models.Title, len(titles))
	for i := range titles {
		byAppID[titles[i].AppID] = &titles[i]
	}

	candidates := p.pool.Candidates(ctx, forceRefresh)

	for index, appID := range appIDs {
		select {
		case <-ctx.Done():
			return stats
		default:
		}
		title := byAppID[appID]
		if title == nil {
			continue
		}

		if p.cfg.SteamDB.Enabled {
			p.enrichOne(ctx, title, forceRefresh, &stats)
		}
		if p.cfg.Epic.Enabled {
			p.resolveOne(title, candidates, forceRefresh, &stats)
		}

		if (index+1)%50 == 0 {
			p.emit(ProgressEvent{JobID: job.ID, Stage: "external", Processed: index + 1, Total: len(appIDs), Failed: stats.SteamDBFailed + stats.CrossStoreFailed})
		}
	}

	p.emit(ProgressEvent{JobID: job.ID, Stage: "external", Processed: len(appIDs), Total: len(appIDs), Failed: stats.SteamDBFailed + stats.CrossStoreFailed})
	return stats
}

func (p *Pipeline) enrichOne(ctx context.Context, title *models.Title, forceRefresh bool, stats *ExternalStats) {
	var existing models.EnrichmentRecord
	err := p.db.Where("title_id = ?", title.ID).First(&existing).Error
	if err == nil && !forceRefresh && enrich.IsRecent(existing.UpdatedAt, p.cfg.SteamDB.Freshness) {
		if existing.Confidence >= 0.35 {
			stats.SteamDBSuccess++
		} else {
			stats.SteamDBFailed++
		}
		return
	}

	result := p.enricher.Fetch(ctx, title.AppID)
	confidence, upsertErr := enrich.Upsert(p.db, title.ID, result)
	if upsertErr != nil {
		log.Printf("⚠️ Enrichment upsert failed for %s: %v", title.AppID, upsertErr)
		stats.SteamDBFailed++
		return
	}
	if confidence >= 0.35 {
		stats.SteamDBSuccess++
	} else {
		stats.SteamDBFailed++
	}
}

func (p *Pipeline) resolveOne(title *models.Title, candidates []crossstore.Candidate, forceRefresh bool, stats *ExternalStats) {
	var existing models.CrossStoreMapping
	err := p.db.Where("steam_app_id = ?", title.AppID).
		Order("confidence DESC, updated_at DESC").
		First(&existing).Error
	if err == nil && !forceRefresh &&
		enrich.IsRecent(existing.UpdatedAt, p.cfg.Epic.MapFreshness) &&
		existing.Confidence >= p.cfg.Epic.MinConfidence {
		stats.CrossStoreSuccess++
		return
	}

	facts := crossstore.TitleFacts{
		AppID:       title.AppID,
		Name:        title.Name,
		ReleaseDate: title.ReleaseDate,
		Developer:   title.Developer,
	}
	match := crossstore.SelectMatch(facts, candidates, p.cfg.Epic.MinConfidence)
	if match == nil {
		stats.CrossStoreFailed++
		return
	}
	score, upsertErr := crossstore.UpsertMapping(p.db, facts, *match)
	if upsertErr != nil {
		log.Printf("⚠️ Mapping upsert failed for %s: %v", title.AppID, upsertErr)
		stats.CrossStoreFailed++
		return
	}
	if score >= p.cfg.Epic.MinConfidence {
		stats.CrossStoreSuccess++
	} else {
		stats.CrossStoreFailed++
	}
}

func (p *Pipeline) finishJob(job *models.IngestJob, result Result, runErr error) (Result, error) {
	completed := time.Now().UTC()
	job.ProcessedCount = result.Processed
	job.SuccessCount = result.Success
	job.FailureCount = result.Failed
	job.CompletedAt = &completed

	meta := models.JSONMap(job.Meta)
	meta["source"] = result.Source
	meta["external_enrichment"] = map[string]any{
		"steamdb_success":     result.External.SteamDBSuccess,
		"steamdb_failed":      result.External.SteamDBFailed,
		"cross_store_success": result.External.CrossStoreSuccess,
		"cross_store_failed":  result.External.CrossStoreFailed,
	}
	job.Meta = models.ToJSON(meta)

	metrics.IngestedTitles.WithLabelValues("ok").Add(float64(result.Success))
	metrics.IngestedTitles.WithLabelValues("failed").Add(float64(result.Failed))
	metrics.IngestJobDuration.Observe(completed.Sub(result.StartedAt).Seconds())

	if runErr != nil {
		job.Status = models.JobStatusFailed
		job.ErrorMessage = runErr.Error()
		job.FailureCount = result.Failed + 1
	} else {
		job.Status = models.JobStatusCompleted
	}
	if err := p.db.Save(job).Error; err != nil {
		log.Printf("⚠️ Job finalize failed: %v", err)
	}

	result.CompletedAt = completed
	p.emit(ProgressEvent{JobID: job.ID, Stage: job.Status, Processed: result.Processed, Total: result.Processed, Failed: job.FailureCount})

	if runErr != nil {
		log.Printf("🛑 Catalog ingest %s failed: %v", job.ID, runErr)
		return result, runErr
	}
	log.Printf("✅ Catalog ingest %s completed: %d processed, %d ok, %d failed",
		job.ID, result.Processed, result.Success, result.Failed)
	return result, nil
}
