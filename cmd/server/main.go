package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/vytor/wordflash/internal/api"
	"github.com/vytor/wordflash/internal/catalog"
	"github.com/vytor/wordflash/internal/config"
	"github.com/vytor/wordflash/internal/db"
	"github.com/vytor/wordflash/internal/deck"
	"github.com/vytor/wordflash/internal/jobs"
	"github.com/vytor/wordflash/internal/logger"
	"github.com/vytor/wordflash/internal/repository/sqlite"
	"github.com/vytor/wordflash/internal/services"
	"github.com/vytor/wordflash/internal/worker"
)

func main() {
	cfg := config.Load()

	// Initialize logger
	log := logger.New(
		logger.WithLevel(logger.ParseLevel(cfg.LogLevel)),
		logger.WithColors(true),
	)
	logger.SetDefault(log)

	log.Info("===========================================")
	log.Info("WordFlash Server Starting")
	log.Info("===========================================")
	if err := cfg.Validate(); err != nil {
		log.Error("%v", err)
		os.Exit(1)
	}
	log.Info("configuration loaded")
	log.Debug("addr=%s", cfg.Addr)
	log.Debug("db_path=%s", cfg.DBPath)
	log.Debug("log_level=%s", cfg.LogLevel)
	log.Debug("catalog_path=%s", cfg.CatalogPath)
	log.Debug("deck_base_url=%s", cfg.DeckBaseURL)
	log.Debug("deck_dir=%s", cfg.DeckDir)
	log.Debug("navigation_mode=%s", cfg.NavigationMode)
	log.Debug("random_orientation=%t", cfg.RandomOrientation)
	log.Debug("grade_delay_ms=%d", cfg.GradeDelayMs)
	log.Debug("fetch_timeout_seconds=%d", cfg.FetchTimeoutSecs)
	log.Debug("load_worker_count=%d", cfg.LoadWorkerCount)
	log.Debug("load_queue_size=%d", cfg.LoadQueueSize)

	// Source catalog
	cat := catalog.Default()
	if cfg.CatalogPath != "" {
		loaded, err := catalog.Load(cfg.CatalogPath)
		if err != nil {
			log.Error("failed to load catalog %s: %v", cfg.CatalogPath, err)
			os.Exit(1)
		}
		cat = loaded
	}
	log.Info("catalog has %d datasets, default %s", len(cat.Datasets), cat.DefaultDataset().ID)

	// Open database
	database, err := db.Open(cfg.DBPath)
	if err != nil {
		log.Error("failed to open database: %v", err)
		os.Exit(1)
	}
	defer func() {
		log.Debug("closing database connection")
		database.Close()
	}()

	fetcher, err := deck.NewSourceFetcher(cfg.DeckBaseURL, cfg.DeckDir, cfg.FetchTimeout())
	if err != nil {
		log.Error("invalid deck source settings: %v", err)
		os.Exit(1)
	}
	loader := deck.NewLoader(fetcher, deck.WithRandomOrientation(cfg.RandomOrientation))

	// Initialize worker pool
	loadPool := worker.NewPool(cfg.LoadWorkerCount, cfg.LoadQueueSize)

	studyService := services.NewStudyService(
		cat,
		sqlite.NewPreferenceRepository(database.DB),
		jobs.NewWorkerQueue(loadPool, loader),
		services.StudyConfig{
			Mode:       cfg.Mode(),
			GradeDelay: cfg.GradeDelay(),
		},
	)

	srv := &api.Server{
		StudyService: studyService,
		Pinger:       database,
		Metrics:      promhttp.Handler(),
	}

	ctx, cancel := context.WithCancel(context.Background())
	loadPool.Start(ctx)

	if view, ok, err := studyService.Restore(ctx); err != nil {
		log.Warn("failed to restore last dataset selection: %v", err)
	} else if ok {
		log.Info("restored session %s for dataset %s", view.SessionID, view.DatasetID)
	}

	// Configure HTTP server
	httpServer := &http.Server{
		Addr:         cfg.Addr,
		Handler:      srv.Routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start HTTP server
	go func() {
		log.Info("HTTP server listening on %s", cfg.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server error: %v", err)
			os.Exit(1)
		}
	}()

	// Wait for shutdown signal
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	sig := <-stop

	log.Info("received signal %v, initiating graceful shutdown", sig)

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	// Shutdown HTTP server
	log.Debug("shutting down HTTP server")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error: %v", err)
	}

	// Cancel worker context and wait for workers to finish
	log.Debug("stopping load pool")
	cancel()
	loadPool.Stop()
	studyService.Shutdown()

	log.Info("===========================================")
	log.Info("WordFlash Server Stopped")
	log.Info("===========================================")
}
