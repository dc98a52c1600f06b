package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"strings"
	"testing"
	"time"

	embeddedpostgres "github.com/fergusstrange/embedded-postgres"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/playdex/catalogd/internal/assets"
	"github.com/playdex/catalogd/internal/cache"
	"github.com/playdex/catalogd/internal/complete"
	"github.com/playdex/catalogd/internal/config"
	"github.com/playdex/catalogd/internal/crossstore"
	"github.com/playdex/catalogd/internal/enrich"
	"github.com/playdex/catalogd/internal/models"
	"github.com/playdex/catalogd/internal/query"
	"github.com/playdex/catalogd/internal/steam"
)

// The pipeline tests below run against a throwaway embedded PostgreSQL on a
// port away from the one the server itself uses. When the embedded binary
// cannot be provisioned the tests skip instead of failing.
var (
	testDB     *gorm.DB
	testDBSkip string
)

const testDBPort = 5544

func TestMain(m *testing.M) {
	os.Exit(runWithDatabase(m))
}

func runWithDatabase(m *testing.M) int {
	dataDir, err := os.MkdirTemp("", "catalogd-ingest-pg")
	if err != nil {
		testDBSkip = fmt.Sprintf("temp dir: %v", err)
		return m.Run()
	}
	defer os.RemoveAll(dataDir)

	embeddedCfg := embeddedpostgres.DefaultConfig().
		DataPath(filepath.Join(dataDir, "data")).
		RuntimePath(filepath.Join(dataDir, "runtime")).
		Port(uint32(testDBPort)).
		Database("catalogd_test").
		Username("postgres").
		Password("postgres").
		StartTimeout(90 * time.Second).
		Logger(io.Discard)

	embedded := embeddedpostgres.NewDatabase(embeddedCfg)
	if err := embedded.Start(); err != nil {
		testDBSkip = fmt.Sprintf("embedded postgres unavailable: %v", err)
		return m.Run()
	}
	defer embedded.Stop()

	dsn := fmt.Sprintf("host=localhost port=%d user=postgres password=postgres dbname=catalogd_test sslmode=disable", testDBPort)
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		testDBSkip = fmt.Sprintf("connect embedded postgres: %v", err)
		return m.Run()
	}

	if err := db.AutoMigrate(
		&models.Title{},
		&models.TitleAlias{},
		&models.TitleMetadata{},
		&models.TitleAsset{},
		&models.CrossStoreMapping{},
		&models.EnrichmentRecord{},
		&models.IngestJob{},
		&models.IngestCursor{},
		&models.AssetJob{},
	); err != nil {
		testDBSkip = fmt.Sprintf("migrate: %v", err)
		return m.Run()
	}

	testDB = db
	return m.Run()
}

func requireTestDB(t *testing.T) {
	t.Helper()
	if testDB == nil {
		t.Skip(testDBSkip)
	}
}

func resetCatalogTables(t *testing.T) {
	t.Helper()
	err := testDB.Exec(`TRUNCATE titles, title_aliases, title_metadata, title_assets,
		cross_store_mappings, enrichment_records, ingest_jobs, ingest_cursors, asset_jobs`).Error
	if err != nil {
		t.Fatalf("truncate tables: %v", err)
	}
}

var fixtureDetails = map[string]map[string]any{
	"440": {
		"name":                 "Team Fortress 2",
		"type":                 "game",
		"short_description":    "Nine classes of team-based action.",
		"detailed_description": "The sequel to the game that put class-based multiplayer on the map.",
		"genres":               []any{map[string]any{"id": "1", "description": "Action"}},
		"platforms":            map[string]any{"windows": true, "mac": true, "linux": true},
		"release_date":         map[string]any{"coming_soon": false, "date": "Oct 10, 2007"},
		"developers":           []any{"Valve"},
		"publishers":           []any{"Valve"},
	},
	"570": {
		"name":                 "Dota 2",
		"type":                 "game",
		"short_description":    "Every day, millions of players worldwide enter battle.",
		"detailed_description": "The most-played game on Steam.",
		"genres":               []any{map[string]any{"id": "2", "description": "Strategy"}},
		"platforms":            map[string]any{"windows": true, "mac": true, "linux": true},
		"release_date":         map[string]any{"coming_soon": false, "date": "Jul 9, 2013"},
		"developers":           []any{"Valve"},
		"publishers":           []any{"Valve"},
	},
}

// newCatalogFixtureServer serves appdetails for the fixture ids and rejects
// the app-list endpoints, which forces the pipeline onto the seed fallback.
func newCatalogFixtureServer() *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.Contains(r.URL.Path, "GetAppList"):
			http.Error(w, "upstream unavailable", http.StatusServiceUnavailable)
		case strings.HasSuffix(r.URL.Path, "/appdetails"):
			response := map[string]any{}
			for _, appID := range strings.Split(r.URL.Query().Get("appids"), ",") {
				data, ok := fixtureDetails[appID]
				if !ok {
					response[appID] = map[string]any{"success": false}
					continue
				}
				response[appID] = map[string]any{"success": true, "data": data}
			}
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(response)
		default:
			http.NotFound(w, r)
		}
	}))
}

func writeSeedFiles(t *testing.T) (string, string) {
	t.Helper()
	dir := t.TempDir()
	seedFile := filepath.Join(dir, "seed_appids.json")
	if err := os.WriteFile(seedFile, []byte(`[440, 570]`), 0o644); err != nil {
		t.Fatalf("write seed file: %v", err)
	}
	manifestFile := filepath.Join(dir, "manifest_names.json")
	if err := os.WriteFile(manifestFile, []byte(`{"440": "Team Fortress 2", "570": "Dota 2"}`), 0o644); err != nil {
		t.Fatalf("write manifest file: %v", err)
	}
	return seedFile, manifestFile
}

func newTestConfig(serverURL, seedFile, manifestFile string) *config.Config {
	return &config.Config{
		Steam: config.SteamConfig{
			WebAPIURL:       serverURL,
			StoreAPIURL:     serverURL,
			StoreSearchURL:  serverURL + "/storesearch/",
			RequestTimeout:  5 * time.Second,
			AppDetailsBatch: 60,
			RequestsPerSec:  1000,
			SeedFilePath:    seedFile,
			ManifestMapPath: manifestFile,
		},
		SteamDB: config.SteamDBConfig{Enabled: false},
		Epic:    config.EpicConfig{Enabled: false, MinConfidence: 0.62},
		Index: config.IndexConfig{
			IngestBatch:         10,
			DetailsBatch:        80,
			SearchLimit:         50,
			DetailWorkers:       2,
			SeedFallbackRetries: 1,
			CatalogCacheTTL:     time.Hour,
		},
	}
}

func newTestPipeline(cfg *config.Config) (*Pipeline, *steam.Client) {
	memo := cache.New()
	client := steam.NewClient(cfg.Steam, memo)
	seed := steam.SeedSource{FilePath: cfg.Steam.SeedFilePath, ManifestPath: cfg.Steam.ManifestMapPath}
	enricher := enrich.NewClient(cfg.SteamDB)
	pool := crossstore.NewPool(cfg.Epic)
	chain := assets.NewChain(testDB, assets.NewGridDBClient(cfg.GridDB), cfg.Index)
	enforcer := complete.NewEnforcer(testDB, chain, cfg.Epic.MinConfidence)
	return NewPipeline(testDB, client, seed, enricher, pool, enforcer, cfg), client
}

type titleSnapshot struct {
	Name           string
	NormalizedName string
	TitleType      string
	Aliases        []string
}

func snapshotCatalog(t *testing.T) map[string]titleSnapshot {
	t.Helper()
	var titles []models.Title
	if err := testDB.Preload("Aliases").Order("app_id ASC").Find(&titles).Error; err != nil {
		t.Fatalf("load titles: %v", err)
	}
	out := map[string]titleSnapshot{}
	for _, title := range titles {
		snap := titleSnapshot{
			Name:           title.Name,
			NormalizedName: title.NormalizedName,
			TitleType:      title.TitleType,
		}
		for _, alias := range title.Aliases {
			snap.Aliases = append(snap.Aliases, alias.Alias)
		}
		sort.Strings(snap.Aliases)
		out[title.AppID] = snap
	}
	return out
}

func TestIngestFullTwiceIsIdempotent(t *testing.T) {
	requireTestDB(t)
	resetCatalogTables(t)

	server := newCatalogFixtureServer()
	defer server.Close()

	seedFile, manifestFile := writeSeedFiles(t)
	cfg := newTestConfig(server.URL, seedFile, manifestFile)
	pipeline, _ := newTestPipeline(cfg)
	ctx := context.Background()

	first, err := pipeline.IngestFull(ctx, 0)
	if err != nil {
		t.Fatalf("first ingest: %v", err)
	}
	if first.Source != "seed_fallback" {
		t.Errorf("first ingest source = %q, want seed_fallback", first.Source)
	}
	if first.Processed != 2 || first.Success != 2 || first.Failed != 0 {
		t.Errorf("first ingest counts = %d/%d/%d, want 2/2/0", first.Processed, first.Success, first.Failed)
	}
	before := snapshotCatalog(t)
	if len(before) != 2 {
		t.Fatalf("titles after first ingest = %d, want 2", len(before))
	}
	if before["440"].Name != "Team Fortress 2" || before["570"].Name != "Dota 2" {
		t.Errorf("unexpected names after first ingest: %+v", before)
	}
	if before["440"].TitleType != models.TitleTypeGame {
		t.Errorf("title 440 type = %q, want %q", before["440"].TitleType, models.TitleTypeGame)
	}

	second, err := pipeline.IngestFull(ctx, 0)
	if err != nil {
		t.Fatalf("second ingest: %v", err)
	}
	if second.Processed != first.Processed || second.Success != first.Success || second.Failed != first.Failed {
		t.Errorf("second ingest counts = %d/%d/%d, want %d/%d/%d",
			second.Processed, second.Success, second.Failed,
			first.Processed, first.Success, first.Failed)
	}
	after := snapshotCatalog(t)
	if !reflect.DeepEqual(before, after) {
		t.Errorf("catalog changed on repeat ingest:\nbefore %+v\nafter  %+v", before, after)
	}
}

func TestEnforceBackfillsIncompleteTitles(t *testing.T) {
	requireTestDB(t)
	resetCatalogTables(t)

	title := models.Title{
		AppID:          "480",
		Name:           "Spacewar",
		NormalizedName: "spacewar",
		TitleType:      models.TitleTypeGame,
		State:          models.TitleStateActive,
	}
	if err := testDB.Create(&title).Error; err != nil {
		t.Fatalf("seed title: %v", err)
	}

	chain := assets.NewChain(testDB, assets.NewGridDBClient(config.GridDBConfig{}), config.IndexConfig{})
	enforcer := complete.NewEnforcer(testDB, chain, 0.62)

	stats := enforcer.Enforce(context.Background(), nil, 0)
	if stats.Scanned != 1 || stats.Failed != 0 {
		t.Fatalf("enforce stats = %+v, want 1 scanned and no failures", stats)
	}
	if stats.MetadataFixed != 1 || stats.AssetsFixed != 1 || stats.MappingsFixed != 1 {
		t.Errorf("enforce fixed %d/%d/%d, want 1/1/1", stats.MetadataFixed, stats.AssetsFixed, stats.MappingsFixed)
	}

	var meta models.TitleMetadata
	if err := testDB.Where("title_id = ?", title.ID).First(&meta).Error; err != nil {
		t.Fatalf("load metadata: %v", err)
	}
	want := complete.TemplatedDescription("Spacewar", models.TitleTypeGame)
	if meta.ShortDescription != want {
		t.Errorf("short description = %q, want %q", meta.ShortDescription, want)
	}
	if got := models.JSONStrings(meta.Platforms); len(got) == 0 {
		t.Errorf("platforms not backfilled")
	}

	var asset models.TitleAsset
	if err := testDB.Where("title_id = ?", title.ID).First(&asset).Error; err != nil {
		t.Fatalf("load asset row: %v", err)
	}
	if asset.SelectedSource != models.AssetSourceSteam {
		t.Errorf("asset source = %q, want %q", asset.SelectedSource, models.AssetSourceSteam)
	}
	if grid, _ := models.JSONMap(asset.SelectedAssets)["grid"].(string); grid == "" {
		t.Errorf("selected grid asset is empty")
	}

	var mapping models.CrossStoreMapping
	if err := testDB.Where("steam_app_id = ?", "480").First(&mapping).Error; err != nil {
		t.Fatalf("load mapping: %v", err)
	}
	if mapping.EpicProductID != "480" || mapping.Confidence != 0.62 {
		t.Errorf("fallback mapping = %s/%f, want 480/0.62", mapping.EpicProductID, mapping.Confidence)
	}
	if state, _ := models.JSONMap(mapping.Evidence)["state"].(string); state != models.MappingStateFallback {
		t.Errorf("mapping state = %q, want %q", state, models.MappingStateFallback)
	}

	again := enforcer.Enforce(context.Background(), nil, 0)
	if again.MetadataFixed != 0 || again.AssetsFixed != 0 || again.MappingsFixed != 0 {
		t.Errorf("second pass fixed %d/%d/%d, want nothing", again.MetadataFixed, again.AssetsFixed, again.MappingsFixed)
	}
}

func TestSeedScenarioListAndStatus(t *testing.T) {
	requireTestDB(t)
	resetCatalogTables(t)

	server := newCatalogFixtureServer()
	defer server.Close()

	seedFile, manifestFile := writeSeedFiles(t)
	cfg := newTestConfig(server.URL, seedFile, manifestFile)
	pipeline, client := newTestPipeline(cfg)

	result, err := pipeline.IngestFull(context.Background(), 0)
	if err != nil {
		t.Fatalf("ingest: %v", err)
	}
	if result.Success != 2 {
		t.Fatalf("ingest success = %d, want 2", result.Success)
	}

	svc := query.NewService(testDB, cache.New(), client, cfg.Index, cfg.Epic.MinConfidence)

	total, items, err := svc.List(query.ListOptions{Limit: 10})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 2 || len(items) != 2 {
		t.Fatalf("list returned %d/%d, want 2/2", total, len(items))
	}
	if items[0].Name != "Dota 2" || items[1].Name != "Team Fortress 2" {
		t.Errorf("name order = %q, %q", items[0].Name, items[1].Name)
	}
	if items[0].HeaderImage == "" {
		t.Errorf("header image missing for %s", items[0].AppID)
	}
	if len(items[1].Genres) == 0 || items[1].Genres[0] != "Action" {
		t.Errorf("genres for 440 = %v, want [Action]", items[1].Genres)
	}

	total, items, err = svc.List(query.ListOptions{Limit: 10, Sort: "priority", PriorityAppIDs: []string{"570"}})
	if err != nil {
		t.Fatalf("priority list: %v", err)
	}
	if total != 2 || len(items) != 2 {
		t.Fatalf("priority list returned %d/%d, want 2/2", total, len(items))
	}
	if items[0].AppID != "570" || items[1].AppID != "440" {
		t.Errorf("priority order = %s, %s, want 570, 440", items[0].AppID, items[1].AppID)
	}

	total, items, err = svc.List(query.ListOptions{Limit: 1, Sort: "priority", PriorityAppIDs: []string{"570"}})
	if err != nil {
		t.Fatalf("priority page: %v", err)
	}
	if total != 2 || len(items) != 1 || items[0].AppID != "570" {
		t.Errorf("priority page = total %d, %d items, first %s; want 2, 1, 570", total, len(items), items[0].AppID)
	}

	status, err := svc.GetIngestStatus()
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	latest, ok := status["latest_job"].(map[string]any)
	if !ok {
		t.Fatalf("latest_job missing from status: %v", status)
	}
	if latest["status"] != models.JobStatusCompleted {
		t.Errorf("latest job status = %v, want %q", latest["status"], models.JobStatusCompleted)
	}
	if latest["success_count"] != 2 {
		t.Errorf("latest job success_count = %v, want 2", latest["success_count"])
	}
	totals, ok := status["totals"].(map[string]any)
	if !ok {
		t.Fatalf("totals missing from status: %v", status)
	}
	if totals["titles"] != int64(2) {
		t.Errorf("totals.titles = %v, want 2", totals["titles"])
	}
	cursor, ok := status["cursor"].(map[string]any)
	if !ok {
		t.Fatalf("cursor missing from status: %v", status)
	}
	if cursor["token"] != result.ResumeToken {
		t.Errorf("cursor token = %v, want %v", cursor["token"], result.ResumeToken)
	}
}
