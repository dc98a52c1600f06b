package query

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/playdex/catalogd/internal/assets"
	"github.com/playdex/catalogd/internal/cache"
	"github.com/playdex/catalogd/internal/config"
	"github.com/playdex/catalogd/internal/metrics"
	"github.com/playdex/catalogd/internal/models"
	"github.com/playdex/catalogd/internal/normalize"
	"github.com/playdex/catalogd/internal/steam"
)

const (
	maxCandidates    = 200
	acronymScanLimit = 2000
)

// Artwork is the tiered image set rendered per catalog item.
type Artwork struct {
	T0      string `json:"t0"`
	T1      string `json:"t1"`
	T2      string `json:"t2"`
	T3      string `json:"t3"`
	T4      string `json:"t4"`
	Version int    `json:"version"`
}

// CatalogItem is the stable presentation shape for one title.
type CatalogItem struct {
	AppID            string         `json:"app_id"`
	Name             string         `json:"name"`
	TitleType        string         `json:"title_type"`
	ShortDescription string         `json:"short_description"`
	HeaderImage      string         `json:"header_image"`
	CapsuleImage     string         `json:"capsule_image"`
	Background       string         `json:"background"`
	Price            map[string]any `json:"price,omitempty"`
	Genres           []string       `json:"genres"`
	ReleaseDate      string         `json:"release_date"`
	Platforms        []string       `json:"platforms"`
	Artwork          Artwork        `json:"artwork"`
}

// ListOptions controls List.
type ListOptions struct {
	Limit          int
	Offset         int
	Sort           string
	Scope          string
	LibraryAppIDs  []string
	PriorityAppIDs []string
}

// SearchOptions controls Search.
type SearchOptions struct {
	Query           string
	Limit           int
	Offset          int
	IncludeDLC      bool
	RankingMode     string
	MustHaveArtwork bool
}

// Service answers catalog reads.
type Service struct {
	db            *gorm.DB
	memo          *cache.TTLCache
	steam         *steam.Client
	cfg           config.IndexConfig
	minConfidence float64
}

func NewService(db *gorm.DB, memo *cache.TTLCache, client *steam.Client, cfg config.IndexConfig, minConfidence float64) *Service {
	return &Service{db: db, memo: memo, steam: client, cfg: cfg, minConfidence: minConfidence}
}

// buildCatalogItem assembles the presentation shape with a full fallback
// chain, so every image field is non-empty even for bare rows.
func (s *Service) buildCatalogItem(title *models.Title) CatalogItem {
	var detailPayload, summaryPayload map[string]any
	shortDescription := ""
	if title.Metadata != nil {
		detailPayload = models.JSONMap(title.Metadata.DetailPayload)
		summaryPayload = models.JSONMap(title.Metadata.SummaryPayload)
		shortDescription = title.Metadata.ShortDescription
	}
	selected := map[string]any{}
	version := 1
	if title.Assets != nil {
		selected = models.JSONMap(title.Assets.SelectedAssets)
		version = title.Assets.Version
	}
	fallback := assets.FallbackBundle(title.AppID)

	header := firstString(
		stringAt(selected, "grid"),
		stringAt(detailPayload, "header_image"),
		stringAt(summaryPayload, "header_image"),
		fallback.Grid,
	)
	capsule := firstString(
		stringAt(selected, "grid"),
		stringAt(detailPayload, "capsule_image"),
		stringAt(summaryPayload, "capsule_image"),
		fallback.Grid,
	)
	background := firstString(
		stringAt(selected, "hero"),
		stringAt(detailPayload, "background"),
		stringAt(summaryPayload, "background"),
		fallback.Hero,
	)
	icon := firstString(stringAt(selected, "icon"), fallback.Icon)

	item := CatalogItem{
		AppID:            title.AppID,
		Name:             title.Name,
		TitleType:        title.TitleType,
		ShortDescription: firstString(stringAt(detailPayload, "short_description"), stringAt(summaryPayload, "short_description"), shortDescription),
		HeaderImage:      header,
		CapsuleImage:     capsule,
		Background:       background,
		ReleaseDate:      title.ReleaseDate,
		Genres:           []string{},
		Platforms:        []string{},
		Artwork: Artwork{
			T0:      icon,
			T1:      capsule,
			T2:      capsule,
			T3:      header,
			T4:      background,
			Version: version,
		},
	}
	if title.Metadata != nil {
		item.Genres = models.JSONStrings(title.Metadata.Genres)
		item.Platforms = models.JSONStrings(title.Metadata.Platforms)
	}
	if price, ok := stringMapAt(detailPayload, "price_overview"); ok {
		item.Price = price
	} else if price, ok := stringMapAt(summaryPayload, "price_overview"); ok {
		item.Price = price
	}
	if item.ReleaseDate == "" {
		item.ReleaseDate = firstString(stringAt(detailPayload, "release_date"), stringAt(summaryPayload, "release_date"))
	}
	return item
}

// List pages titles under the requested sort. Scope library/owned restricts
// to the caller's allow-list; priority sort interleaves the priority ids
// ahead of the remainder ordered by recency.
func (s *Service) List(opts ListOptions) (int64, []CatalogItem, error) {
	base := s.db.Model(&models.Title{}).Where("state = ?", models.TitleStateActive)

	scope := strings.ToLower(opts.Scope)
	if scope == "library" || scope == "owned" {
		allowed := cleanIDs(opts.LibraryAppIDs)
		if len(allowed) == 0 {
			return 0, []CatalogItem{}, nil
		}
		base = base.Where("app_id IN ?", allowed)
	}

	sortMode := strings.ToLower(opts.Sort)
	if sortMode == "priority" {
		return s.listPriority(base, opts)
	}

	switch sortMode {
	case "recent", "updated":
		base = base.Order("updated_at DESC, name ASC")
	case "appid":
		base = base.Order("app_id ASC")
	default:
		base = base.Order("name ASC")
	}

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return 0, nil, err
	}

	limit := opts.Limit
	if limit < 1 {
		limit = 1
	}
	offset := opts.Offset
	if offset < 0 {
		offset = 0
	}

	var rows []models.Title
	if err := base.Preload("Metadata").Preload("Assets").
		Offset(offset).Limit(limit).Find(&rows).Error; err != nil {
		return 0, nil, err
	}
	return total, s.itemsFromRows(rows), nil
}

// listPriority moves the deduplicated priority ids to the front, keeping
// only those still inside the scoped set, then appends the remainder by
// recency. Only the priority block and enough recent rows to fill the page
// are loaded, never the whole catalog.
func (s *Service) listPriority(base *gorm.DB, opts ListOptions) (int64, []CatalogItem, error) {
	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return 0, nil, err
	}

	limit := opts.Limit
	if limit < 1 {
		limit = 1
	}
	offset := opts.Offset
	if offset < 0 {
		offset = 0
	}

	priority := dedupe(cleanIDs(opts.PriorityAppIDs))
	var head []models.Title
	if len(priority) > 0 {
		if err := base.Session(&gorm.Session{}).Preload("Metadata").Preload("Assets").
			Where("app_id IN ?", priority).Find(&head).Error; err != nil {
			return 0, nil, err
		}
		position := make(map[string]int, len(priority))
		for i, appID := range priority {
			position[appID] = i
		}
		sort.SliceStable(head, func(i, j int) bool {
			return position[head[i].AppID] < position[head[j].AppID]
		})
	}

	rows := head
	if need := offset + limit; len(head) < need {
		tail := base.Session(&gorm.Session{}).Preload("Metadata").Preload("Assets").
			Order("updated_at DESC, name ASC").Limit(need - len(head))
		if len(priority) > 0 {
			tail = tail.Where("app_id NOT IN ?", priority)
		}
		var remainder []models.Title
		if err := tail.Find(&remainder).Error; err != nil {
			return 0, nil, err
		}
		rows = append(rows, remainder...)
	}

	if offset > len(rows) {
		offset = len(rows)
	}
	end := offset + limit
	if end > len(rows) {
		end = len(rows)
	}
	return total, s.itemsFromRows(rows[offset:end]), nil
}

type searchCandidate struct {
	title   models.Title
	score   float64
	hotRank int
}

// Search ranks titles for a free-text query. Candidates are gathered from
// app-id, normalized-name, compact and alias matches plus an acronym scan
// for short queries, then scored deterministically.
func (s *Service) Search(ctx context.Context, opts SearchOptions) (int, []CatalogItem, error) {
	trimmed := strings.TrimSpace(opts.Query)
	if trimmed == "" {
		return 0, []CatalogItem{}, nil
	}
	metrics.Searches.Inc()

	limit := opts.Limit
	if limit < 1 {
		limit = 1
	}
	if s.cfg.SearchLimit > 0 && limit > s.cfg.SearchLimit {
		limit = s.cfg.SearchLimit
	}
	offset := opts.Offset
	if offset < 0 {
		offset = 0
	}

	cacheKey := fmt.Sprintf("search:%s:%v:%s:%v", normalize.Title(trimmed), opts.IncludeDLC, opts.RankingMode, opts.MustHaveArtwork)
	type cachedSearch struct {
		total int
		rows  []models.Title
	}
	if s.memo != nil {
		if hit, ok := s.memo.Get(cacheKey); ok {
			if cached, ok := hit.(cachedSearch); ok {
				return cached.total, s.itemsFromRows(pageRows(cached.rows, offset, limit)), nil
			}
		}
	}

	candidates, err := s.collectCandidates(trimmed)
	if err != nil {
		return 0, nil, err
	}
	if len(candidates) == 0 {
		candidates = s.storeSearchCandidates(ctx, trimmed)
	}

	hotRank := map[string]int{}
	if opts.RankingMode == "priority" || opts.RankingMode == "popular" {
		for index, appID := range s.steam.GetMostPlayed(ctx) {
			hotRank[appID] = index
		}
	}

	scored := make([]searchCandidate, 0, len(candidates))
	for i := range candidates {
		title := &candidates[i]
		score := ScoreCandidate(trimmed, title.Name, title.AppID, hotRank)
		if !opts.IncludeDLC {
			score -= NoisePenalty(title.Name, title.TitleType)
		}
		if score < MinScore {
			continue
		}
		if opts.MustHaveArtwork && title.Assets == nil {
			continue
		}
		rank, ok := hotRank[title.AppID]
		if !ok {
			rank = 1 << 20
		}
		scored = append(scored, searchCandidate{title: *title, score: score, hotRank: rank})
	}

	popular := strings.EqualFold(opts.RankingMode, "popular")
	sort.SliceStable(scored, func(i, j int) bool {
		a, b := scored[i], scored[j]
		if popular {
			if a.hotRank != b.hotRank {
				return a.hotRank < b.hotRank
			}
		}
		if a.score != b.score {
			return a.score > b.score
		}
		if a.hotRank != b.hotRank {
			return a.hotRank < b.hotRank
		}
		if len(a.title.Name) != len(b.title.Name) {
			return len(a.title.Name) < len(b.title.Name)
		}
		if a.title.Name != b.title.Name {
			return a.title.Name < b.title.Name
		}
		return a.title.AppID < b.title.AppID
	})

	rows := make([]models.Title, 0, len(scored))
	for _, entry := range scored {
		rows = append(rows, entry.title)
	}
	if s.memo != nil {
		s.memo.Set(cacheKey, cachedSearch{total: len(rows), rows: rows}, s.cfg.CatalogCacheTTL)
	}
	return len(rows), s.itemsFromRows(pageRows(rows, offset, limit)), nil
}

func pageRows(rows []models.Title, offset, limit int) []models.Title {
	if offset > len(rows) {
		return nil
	}
	end := offset + limit
	if end > len(rows) {
		end = len(rows)
	}
	return rows[offset:end]
}

func (s *Service) collectCandidates(query string) ([]models.Title, error) {
	queryNorm := normalize.Title(query)
	queryCompact := normalize.Compact(query)

	byAppID := map[string]models.Title{}
	add := func(rows []models.Title) {
		for _, row := range rows {
			if _, exists := byAppID[row.AppID]; !exists && len(byAppID) < maxCandidates {
				byAppID[row.AppID] = row
			}
		}
	}

	if isDigits(queryCompact) {
		var exact []models.Title
		if err := s.db.Preload("Metadata").Preload("Assets").
			Where("app_id LIKE ?", queryCompact+"%").
			Limit(60).Find(&exact).Error; err != nil {
			return nil, err
		}
		add(exact)
	}

	if queryNorm != "" {
		var named []models.Title
		if err := s.db.Preload("Metadata").Preload("Assets").
			Where("normalized_name LIKE ?", "%"+queryNorm+"%").
			Order("updated_at DESC").
			Limit(maxCandidates).Find(&named).Error; err != nil {
			return nil, err
		}
		add(named)

		var aliased []models.Title
		aliasSub := s.db.Model(&models.TitleAlias{}).Select("title_id").
			Where("normalized_alias LIKE ?", "%"+queryNorm+"%")
		if err := s.db.Preload("Metadata").Preload("Assets").
			Where("id IN (?)", aliasSub).
			Limit(maxCandidates).Find(&aliased).Error; err != nil {
			return nil, err
		}
		add(aliased)
	}

	// Acronym-style queries ("gta5") cannot match by substring, so run a
	// bounded scan over recent titles and compare variants in memory.
	if len(queryCompact) >= 2 && len(queryCompact) <= 8 && !strings.Contains(strings.TrimSpace(query), " ") {
		var scan []models.Title
		if err := s.db.Preload("Metadata").Preload("Assets").
			Order("updated_at DESC").
			Limit(acronymScanLimit).Find(&scan).Error; err != nil {
			return nil, err
		}
		var matched []models.Title
		for _, row := range scan {
			variants := normalize.AcronymVariants(row.Name)
			if variants[queryCompact] {
				matched = append(matched, row)
				continue
			}
			for variant := range variants {
				if strings.HasPrefix(variant, queryCompact) {
					matched = append(matched, row)
					break
				}
			}
		}
		add(matched)
	}

	out := make([]models.Title, 0, len(byAppID))
	for _, row := range byAppID {
		out = append(out, row)
	}
	return out, nil
}

// storeSearchCandidates asks the provider's storefront search when nothing
// local matched, then keeps only results already present in the catalog so
// the response shape stays uniform.
func (s *Service) storeSearchCandidates(ctx context.Context, query string) []models.Title {
	if s.steam == nil {
		return nil
	}
	var ids []string
	seen := map[string]bool{}
	for _, variant := range normalize.SearchVariants(query) {
		for _, entry := range s.steam.SearchStore(ctx, variant) {
			if !seen[entry.AppID] {
				seen[entry.AppID] = true
				ids = append(ids, entry.AppID)
			}
		}
		if len(ids) > 0 {
			break
		}
	}
	if len(ids) == 0 {
		return nil
	}
	var rows []models.Title
	if err := s.db.Preload("Metadata").Preload("Assets").
		Where("app_id IN ?", ids).Limit(maxCandidates).Find(&rows).Error; err != nil {
		return nil
	}
	return rows
}

func (s *Service) itemsFromRows(rows []models.Title) []CatalogItem {
	items := make([]CatalogItem, 0, len(rows))
	for i := range rows {
		items = append(items, s.buildCatalogItem(&rows[i]))
	}
	return items
}

// GetDetail returns the full detail payload for an app id, or a templated
// shape assembled from the catalog item when no detail was ever fetched.
func (s *Service) GetDetail(ctx context.Context, appID string) (map[string]any, error) {
	var title models.Title
	err := s.db.Preload("Metadata").Preload("Assets").
		Where("app_id = ?", appID).First(&title).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if title.Metadata != nil {
		if detail := models.JSONMap(title.Metadata.DetailPayload); len(detail) > 0 {
			return detail, nil
		}
	}

	item := s.buildCatalogItem(&title)
	developers := []string{}
	if title.Developer != "" {
		developers = append(developers, title.Developer)
	}
	publishers := []string{}
	if title.Publisher != "" {
		publishers = append(publishers, title.Publisher)
	}
	screenshots := []string{}
	for _, candidate := range []string{item.HeaderImage, item.Background} {
		if candidate != "" {
			screenshots = append(screenshots, candidate)
		}
	}
	return map[string]any{
		"app_id":                    item.AppID,
		"name":                      item.Name,
		"short_description":         item.ShortDescription,
		"header_image":              item.HeaderImage,
		"capsule_image":             item.CapsuleImage,
		"background":                item.Background,
		"genres":                    item.Genres,
		"platforms":                 item.Platforms,
		"release_date":              item.ReleaseDate,
		"artwork":                   item.Artwork,
		"about_the_game":            item.ShortDescription,
		"detailed_description":      item.ShortDescription,
		"detailed_description_html": nil,
		"developers":                developers,
		"publishers":                publishers,
		"categories":                []string{},
		"screenshots":               screenshots,
		"movies":                    []string{},
		"pc_requirements":           map[string]any{},
		"recommendations":           nil,
		"website":                   nil,
	}, nil
}

// GetClassification reports how a title was categorized, blending provider
// type data with enrichment-derived tags.
func (s *Service) GetClassification(appID string) (map[string]any, error) {
	var title models.Title
	err := s.db.Preload("Metadata").Preload("Enrichment").
		Where("app_id = ?", appID).First(&title).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	genres := []string{}
	if title.Metadata != nil {
		genres = models.JSONStrings(title.Metadata.Genres)
	}
	hiddenTags := []string{}
	confidence := 0.0
	source := models.EnrichmentSourceUnavailable
	if title.Enrichment != nil {
		hiddenTags = models.JSONStrings(title.Enrichment.HiddenTags)
		confidence = title.Enrichment.Confidence
		source = title.Enrichment.Source
	}

	return map[string]any{
		"app_id":      title.AppID,
		"name":        title.Name,
		"title_type":  title.TitleType,
		"is_dlc":      title.TitleType == models.TitleTypeDLC,
		"genres":      genres,
		"hidden_tags": hiddenTags,
		"enrichment": map[string]any{
			"confidence": confidence,
			"source":     source,
		},
	}, nil
}

// GetIngestStatus reports the latest job, entity totals and the current
// resume cursor.
func (s *Service) GetIngestStatus() (map[string]any, error) {
	var latest models.IngestJob
	latestErr := s.db.Where("job_type IN ?", []string{models.JobTypeCatalogIngest, models.JobTypeCatalogRebuild}).
		Order("created_at DESC").First(&latest).Error
	if latestErr != nil && latestErr != gorm.ErrRecordNotFound {
		return nil, latestErr
	}

	latestJob := map[string]any{
		"id":              nil,
		"status":          "idle",
		"processed_count": 0,
		"success_count":   0,
		"failure_count":   0,
		"started_at":      nil,
		"completed_at":    nil,
		"error_message":   nil,
		"external_enrichment": map[string]any{
			"steamdb_success":     0,
			"steamdb_failed":      0,
			"cross_store_success": 0,
			"cross_store_failed":  0,
		},
	}
	if latestErr == nil {
		latestJob["id"] = latest.ID
		latestJob["status"] = latest.Status
		latestJob["processed_count"] = latest.ProcessedCount
		latestJob["success_count"] = latest.SuccessCount
		latestJob["failure_count"] = latest.FailureCount
		latestJob["error_message"] = latest.ErrorMessage
		if latest.StartedAt != nil {
			latestJob["started_at"] = latest.StartedAt.Format(time.RFC3339)
		}
		if latest.CompletedAt != nil {
			latestJob["completed_at"] = latest.CompletedAt.Format(time.RFC3339)
		}
		meta := models.JSONMap(latest.Meta)
		if external, ok := meta["external_enrichment"].(map[string]any); ok {
			latestJob["external_enrichment"] = external
		}
	}

	totals := map[string]any{}
	for name, model := range map[string]any{
		"titles":               &models.Title{},
		"assets":               &models.TitleAsset{},
		"steamdb_enrichment":   &models.EnrichmentRecord{},
		"cross_store_mappings": &models.CrossStoreMapping{},
	} {
		var count int64
		if err := s.db.Model(model).Count(&count).Error; err == nil {
			totals[name] = count
		} else {
			totals[name] = 0
		}
	}

	status := map[string]any{
		"latest_job": latestJob,
		"totals":     totals,
	}

	var cursor models.IngestCursor
	if err := s.db.Where("cursor_key = ?", "catalog_ingest").First(&cursor).Error; err == nil {
		status["cursor"] = map[string]any{
			"token":      cursor.CursorValue,
			"meta":       models.JSONMap(cursor.CursorMeta),
			"updated_at": cursor.UpdatedAt.Format(time.RFC3339),
		}
	}
	return status, nil
}

// GetCoverage reports what fraction of active titles carries each dependent
// row, the health signal behind the completeness invariant.
func (s *Service) GetCoverage() (map[string]any, error) {
	var total int64
	if err := s.db.Model(&models.Title{}).Where("state = ?", models.TitleStateActive).Count(&total).Error; err != nil {
		return nil, err
	}

	var withMetadata, withAssets, withMappings int64
	s.db.Model(&models.TitleMetadata{}).
		Where("title_id IN (?)", s.db.Model(&models.Title{}).Select("id").Where("state = ?", models.TitleStateActive)).
		Count(&withMetadata)
	s.db.Model(&models.TitleAsset{}).
		Where("title_id IN (?)", s.db.Model(&models.Title{}).Select("id").Where("state = ?", models.TitleStateActive)).
		Count(&withAssets)
	s.db.Model(&models.CrossStoreMapping{}).
		Where("confidence >= ?", s.minConfidence).
		Distinct("steam_app_id").Count(&withMappings)

	percent := func(part int64) float64 {
		if total == 0 {
			return 0
		}
		return float64(part) / float64(total) * 100.0
	}
	return map[string]any{
		"titles": total,
		"metadata": map[string]any{
			"count":   withMetadata,
			"percent": percent(withMetadata),
		},
		"assets": map[string]any{
			"count":   withAssets,
			"percent": percent(withAssets),
		},
		"cross_store_mappings": map[string]any{
			"count":   withMappings,
			"percent": percent(withMappings),
		},
	}, nil
}

// ListTopRanked returns catalog items for the provider's most-played list,
// falling back to recently updated titles when the chart is unavailable.
func (s *Service) ListTopRanked(ctx context.Context, limit, offset int) (int, []CatalogItem, error) {
	if limit < 1 {
		limit = 1
	}
	if offset < 0 {
		offset = 0
	}

	hotIDs := s.steam.GetMostPlayed(ctx)
	if len(hotIDs) == 0 {
		var rows []models.Title
		if err := s.db.Preload("Metadata").Preload("Assets").
			Where("state = ?", models.TitleStateActive).
			Order("updated_at DESC, name ASC").
			Offset(offset).Limit(limit).Find(&rows).Error; err != nil {
			return 0, nil, err
		}
		var total int64
		s.db.Model(&models.Title{}).Where("state = ?", models.TitleStateActive).Count(&total)
		return int(total), s.itemsFromRows(rows), nil
	}

	total := len(hotIDs)
	if offset > len(hotIDs) {
		return total, []CatalogItem{}, nil
	}
	end := offset + limit
	if end > len(hotIDs) {
		end = len(hotIDs)
	}
	page := hotIDs[offset:end]

	var rows []models.Title
	if err := s.db.Preload("Metadata").Preload("Assets").
		Where("app_id IN ?", page).Find(&rows).Error; err != nil {
		return 0, nil, err
	}
	byAppID := make(map[string]*models.Title, len(rows))
	for i := range rows {
		byAppID[rows[i].AppID] = &rows[i]
	}
	items := make([]CatalogItem, 0, len(page))
	for _, appID := range page {
		if row, ok := byAppID[appID]; ok {
			items = append(items, s.buildCatalogItem(row))
		}
	}
	return total, items, nil
}

func cleanIDs(raw []string) []string {
	out := make([]string, 0, len(raw))
	for _, value := range raw {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func dedupe(values []string) []string {
	seen := map[string]bool{}
	out := make([]string, 0, len(values))
	for _, value := range values {
		if !seen[value] {
			seen[value] = true
			out = append(out, value)
		}
	}
	return out
}

func stringAt(payload map[string]any, key string) string {
	if payload == nil {
		return ""
	}
	s, _ := payload[key].(string)
	return s
}

func stringMapAt(payload map[string]any, key string) (map[string]any, bool) {
	if payload == nil {
		return nil, false
	}
	m, ok := payload[key].(map[string]any)
	return m, ok && len(m) > 0
}

func firstString(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
