package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	NodeEnv  string
	Port     string
	Database DatabaseConfig
	Steam    SteamConfig
	SteamDB  SteamDBConfig
	Epic     EpicConfig
	GridDB   GridDBConfig
	Index    IndexConfig
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	Database string
}

// SteamConfig holds primary catalog provider configuration
type SteamConfig struct {
	WebAPIKey        string
	WebAPIURL        string
	StoreAPIURL      string
	StoreSearchURL   string
	RequestTimeout   time.Duration
	AppDetailsBatch  int
	RequestsPerSec   float64
	SeedFilePath     string
	ManifestMapPath  string
	TrendingLimit    int
	TrendingCacheTTL time.Duration
}

// SteamDBConfig holds secondary enrichment provider configuration
type SteamDBConfig struct {
	Enabled        bool
	BaseURL        string
	RequestTimeout time.Duration
	MaxItems       int
	Freshness      time.Duration
}

// EpicConfig holds tertiary storefront configuration
type EpicConfig struct {
	Enabled       bool
	FreeGamesURL  string
	Country       string
	Locale        string
	PoolCacheTTL  time.Duration
	MinConfidence float64
	MapFreshness  time.Duration
}

// GridDBConfig holds the dedicated artwork provider configuration
type GridDBConfig struct {
	APIKey         string
	BaseURL        string
	RequestTimeout time.Duration
}

// IndexConfig holds catalog index tunables
type IndexConfig struct {
	IngestBatch         int
	DetailsBatch        int
	SearchLimit         int
	MaxPrefetch         int
	DetailWorkers       int
	EpicAssetConfidence float64
	EnforceComplete     bool
	CompletionBatch     int
	SeedFallbackRetries int
	CatalogCacheTTL     time.Duration
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	return &Config{
		NodeEnv: getEnv("NODE_ENV", "development"),
		Port:    getEnv("PORT", "3001"),
		Database: DatabaseConfig{
			Host:     getEnv("PG_HOST", "localhost"),
			Port:     getEnv("PG_PORT", "5432"),
			Username: getEnv("PG_USERNAME", "postgres"),
			Password: os.Getenv("PG_PASSWORD"),
			Database: getEnv("PG_DATABASE", "catalogd"),
		},
		Steam: SteamConfig{
			WebAPIKey:        os.Getenv("STEAM_WEB_API_KEY"),
			WebAPIURL:        getEnv("STEAM_WEB_API_URL", "https://api.steampowered.com"),
			StoreAPIURL:      getEnv("STEAM_STORE_API_URL", "https://store.steampowered.com/api"),
			StoreSearchURL:   getEnv("STEAM_STORE_SEARCH_URL", "https://store.steampowered.com/api/storesearch/"),
			RequestTimeout:   getEnvSeconds("STEAM_REQUEST_TIMEOUT_SECONDS", 12),
			AppDetailsBatch:  getEnvInt("STEAM_APPDETAILS_BATCH_SIZE", 60),
			RequestsPerSec:   getEnvFloat("STEAM_REQUESTS_PER_SECOND", 4),
			SeedFilePath:     os.Getenv("SEED_APPIDS_FILE"),
			ManifestMapPath:  os.Getenv("MANIFEST_NAME_MAP_FILE"),
			TrendingLimit:    getEnvInt("STEAM_TRENDING_LIMIT", 100),
			TrendingCacheTTL: getEnvSeconds("STEAM_TRENDING_CACHE_TTL_SECONDS", 900),
		},
		SteamDB: SteamDBConfig{
			Enabled:        getEnvBool("STEAMDB_ENRICHMENT_ENABLED", true),
			BaseURL:        getEnv("STEAMDB_BASE_URL", "https://steamdb.info"),
			RequestTimeout: getEnvSeconds("STEAMDB_REQUEST_TIMEOUT_SECONDS", 12),
			MaxItems:       getEnvInt("STEAMDB_ENRICHMENT_MAX_ITEMS", 2500),
			Freshness:      getEnvSeconds("STEAMDB_FRESHNESS_SECONDS", 12*3600),
		},
		Epic: EpicConfig{
			Enabled:       getEnvBool("CROSS_STORE_MAPPING_ENABLED", true),
			FreeGamesURL:  getEnv("EPIC_CATALOG_FREE_GAMES_URL", "https://store-site-backend-static.ak.epicgames.com/freeGamesPromotions"),
			Country:       getEnv("EPIC_CATALOG_COUNTRY", "US"),
			Locale:        getEnv("EPIC_CATALOG_LOCALE", "en-US"),
			PoolCacheTTL:  getEnvSeconds("EPIC_POOL_CACHE_TTL_SECONDS", 1800),
			MinConfidence: getEnvFloat("CROSS_STORE_MAPPING_MIN_CONFIDENCE", 0.62),
			MapFreshness:  getEnvSeconds("CROSS_STORE_MAPPING_FRESHNESS_SECONDS", 6*3600),
		},
		GridDB: GridDBConfig{
			APIKey:         os.Getenv("STEAMGRIDDB_API_KEY"),
			BaseURL:        getEnv("STEAMGRIDDB_BASE_URL", "https://www.steamgriddb.com/api/v2"),
			RequestTimeout: getEnvSeconds("STEAMGRIDDB_REQUEST_TIMEOUT_SECONDS", 10),
		},
		Index: IndexConfig{
			IngestBatch:         getEnvInt("CATALOG_INDEX_INGEST_BATCH", 500),
			DetailsBatch:        getEnvInt("CATALOG_INDEX_DETAILS_BATCH", 80),
			SearchLimit:         getEnvInt("CATALOG_INDEX_SEARCH_LIMIT", 200),
			MaxPrefetch:         getEnvInt("CATALOG_INDEX_MAX_PREFETCH", 500),
			DetailWorkers:       getEnvInt("CATALOG_INDEX_DETAIL_WORKERS", 8),
			EpicAssetConfidence: getEnvFloat("CATALOG_INDEX_EPIC_CONFIDENCE_THRESHOLD", 0.86),
			EnforceComplete:     getEnvBool("CATALOG_INDEX_ENFORCE_COMPLETE", true),
			CompletionBatch:     getEnvInt("CATALOG_INDEX_COMPLETION_BATCH", 0),
			SeedFallbackRetries: getEnvInt("CATALOG_INDEX_SEED_FALLBACK_RETRIES", 3),
			CatalogCacheTTL:     getEnvSeconds("CATALOG_CACHE_TTL_SECONDS", 300),
		},
	}, nil
}

// getEnv gets environment variable with default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvFloat(key string, defaultValue float64) float64 {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvBool(key string, defaultValue bool) bool {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	switch raw {
	case "1", "true", "yes", "on", "True", "TRUE":
		return true
	case "0", "false", "no", "off", "False", "FALSE":
		return false
	}
	return defaultValue
}

func getEnvSeconds(key string, defaultSeconds int) time.Duration {
	return time.Duration(getEnvInt(key, defaultSeconds)) * time.Second
}
