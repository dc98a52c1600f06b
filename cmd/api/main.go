package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/playdex/catalogd/internal/assets"
	"github.com/playdex/catalogd/internal/cache"
	"github.com/playdex/catalogd/internal/complete"
	"github.com/playdex/catalogd/internal/config"
	"github.com/playdex/catalogd/internal/crossstore"
	"github.com/playdex/catalogd/internal/database"
	"github.com/playdex/catalogd/internal/enrich"
	"github.com/playdex/catalogd/internal/handlers"
	"github.com/playdex/catalogd/internal/ingest"
	"github.com/playdex/catalogd/internal/models"
	"github.com/playdex/catalogd/internal/query"
	"github.com/playdex/catalogd/internal/steam"
	"github.com/playdex/catalogd/internal/websocket"
)

func main() {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// 2. Initialize database (Detects Embedded vs External automatically)
	db, err := database.Connect(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	// Note: db.Close() is called manually in shutdown handler below

	// 3. Auto-Migrate Schema (Critical for Zero-Config)
	log.Println("🚀 Synchronizing database schema...")
	err = db.AutoMigrate(
		&models.Title{},
		&models.TitleAlias{},
		&models.TitleMetadata{},
		&models.TitleAsset{},
		&models.CrossStoreMapping{},
		&models.EnrichmentRecord{},
		&models.IngestJob{},
		&models.IngestCursor{},
		&models.AssetJob{},
	)
	if err != nil {
		log.Printf("⚠️ Migration warning: %v\n", err)
	} else {
		log.Println("✅ Schema synchronized successfully")
	}

	// 4. Wire providers and services
	memo := cache.New()
	steamClient := steam.NewClient(cfg.Steam, memo)
	seed := steam.SeedSource{
		FilePath:     cfg.Steam.SeedFilePath,
		ManifestPath: cfg.Steam.ManifestMapPath,
	}
	enricher := enrich.NewClient(cfg.SteamDB)
	pool := crossstore.NewPool(cfg.Epic)
	griddb := assets.NewGridDBClient(cfg.GridDB)

	chain := assets.NewChain(db.DB, griddb, cfg.Index)
	enforcer := complete.NewEnforcer(db.DB, chain, cfg.Epic.MinConfidence)
	pipeline := ingest.NewPipeline(db.DB, steamClient, seed, enricher, pool, enforcer, cfg)

	// Cold asset lookups hydrate the title first, then read it back.
	chain.RefreshTitle = func(ctx context.Context, appID string) (*models.Title, error) {
		if err := pipeline.RefreshTitleDetail(ctx, appID, false); err != nil {
			return nil, err
		}
		var title models.Title
		if err := db.Where("app_id = ?", appID).First(&title).Error; err != nil {
			return nil, err
		}
		return &title, nil
	}

	queries := query.NewService(db.DB, memo, steamClient, cfg.Index, cfg.Epic.MinConfidence)

	// 5. Start the ingest progress feed
	hub := websocket.NewHub()
	go hub.Run()
	pipeline.Notify = func(event ingest.ProgressEvent) {
		hub.Broadcast(event)
	}

	// 6. Set up HTTP router
	router := handlers.NewRouter(queries, pipeline, chain, enforcer, hub)

	// 7. Start server with graceful shutdown
	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	// Channel to listen for shutdown signals
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)

	// Start server in goroutine
	go func() {
		log.Printf("🚀 Catalog engine starting on port %s\n", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for shutdown signal
	sig := <-shutdown
	log.Printf("\n⚠️  Received signal: %v. Shutting down gracefully...\n", sig)

	// Create context with timeout for graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Shutdown HTTP server
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
	}

	// Close database (this also stops embedded PostgreSQL)
	log.Println("🛑 Closing database connection...")
	if err := db.Close(); err != nil {
		log.Printf("Database close error: %v", err)
	}

	log.Println("✅ Shutdown complete")
}
