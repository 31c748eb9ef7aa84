package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"

	"whomortality/internal/cache"
	"whomortality/internal/catalog"
	"whomortality/internal/config"
	"whomortality/internal/db"
	"whomortality/internal/jobs"
	"whomortality/internal/metrics"
	"whomortality/internal/mortality"
	"whomortality/internal/server"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg := config.Load()

	// Initialize database
	database, err := db.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close()

	// Run migrations
	if cfg.RunMigrations {
		if err := database.RunMigrations(cfg.DatabaseURL); err != nil {
			log.Fatalf("Failed to run migrations: %v", err)
		}
		log.Println("Migrations completed successfully")
	}

	// Load region table
	regions, err := config.LoadRegions(cfg.RegionsFile)
	if err != nil {
		log.Fatalf("Failed to load regions from %s: %v", cfg.RegionsFile, err)
	}
	log.Printf("Loaded %d region names from %s", regions.Len(), cfg.RegionsFile)

	// Metrics
	m := metrics.New(prometheus.DefaultRegisterer)
	prometheus.MustRegister(metrics.NewPoolCollector(database))

	// Shared storage for the rate limiter and the catalog cache
	storage := cache.New(cfg)
	var catalogCache catalog.Cache
	if storage != nil {
		catalogCache = storage
		defer storage.Close()
	}

	resolver := mortality.NewScopeResolver(regions, database)
	engine := mortality.NewEngine(database, resolver, mortality.WithRecorder(m))
	causes := catalog.New(database, resolver, catalogCache, cfg.CatalogCacheTTL, m)

	// Background catalog refresh
	if cfg.CatalogRefreshInterval > 0 {
		scopes := append([]string{mortality.GlobalScopeName}, regions.Names()...)
		warmer := jobs.NewCatalogWarmer(causes, m, cfg.CatalogRefreshInterval, scopes...)
		go warmer.Start(ctx)
	}

	srv := server.New(cfg, storage)
	srv.RegisterRoutes(server.Dependencies{
		Engine:  engine,
		Catalog: causes,
		DB:      database,
	})

	// Graceful shutdown
	go func() {
		if err := srv.Start(); err != nil {
			log.Fatalf("Server error: %v", err)
		}
	}()

	log.Printf("Server started on %s", cfg.ServerAddr)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	cancel()
	if err := srv.Shutdown(); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}
	log.Println("Server exited")
}
