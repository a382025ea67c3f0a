// Package main is the entry point for the Precept order-prefill service.
// The service turns a raw order request into a fully prefilled ticket
// (order type, limit price, algo choice, algo parameters) plus a rationale,
// by running a layered decision pipeline over static reference data.
//
// The application follows clean architecture principles:
// - The decision pipeline is pure (no infrastructure dependencies)
// - Repository pattern for data access
// - HTTP handlers for API endpoints
// - Scheduled jobs for reference-data refresh
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aristath/precept/internal/config"
	"github.com/aristath/precept/internal/database"
	"github.com/aristath/precept/internal/modules/prefill"
	"github.com/aristath/precept/internal/modules/prefill/engine"
	"github.com/aristath/precept/internal/modules/refdata"
	"github.com/aristath/precept/internal/scheduler"
	"github.com/aristath/precept/internal/server"
	"github.com/aristath/precept/pkg/embedded"
	"github.com/aristath/precept/pkg/logger"
)

// main orchestrates the startup sequence:
// 1. Load configuration from environment variables (.env supported)
// 2. Initialize structured logging
// 3. Open the SQLite database and apply the schema
// 4. Seed empty reference tables from the bundled CSV fixtures
// 5. Build the initial in-memory dataset and publish it
// 6. Register the scheduled reference-data refresh
// 7. Start the HTTP server
// 8. Wait for shutdown signal and stop gracefully
func main() {
	cfg, err := config.Load()
	if err != nil {
		fallbackLog := logger.New(logger.Config{
			Level:  "info",
			Pretty: true,
		})
		fallbackLog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.LogPretty,
	})

	log.Info().Msg("Starting Precept")

	// Database
	db, err := database.New(database.Config{
		Path: cfg.DBPath,
		Name: "precept",
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open database")
	}
	defer db.Close()

	schema, err := embedded.Files.ReadFile("schema/precept_schema.sql")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to read embedded schema")
	}
	if err := db.Migrate(string(schema)); err != nil {
		log.Fatal().Err(err).Msg("Failed to apply database schema")
	}
	log.Info().Str("path", db.Path()).Msg("Database initialized")

	// Reference data: seed, build, publish
	refdataRepo := refdata.NewRepository(db.Conn(), log)
	loader := refdata.NewLoader(refdataRepo, cfg.DataDir, log)
	if err := loader.SeedIfEmpty(); err != nil {
		log.Fatal().Err(err).Msg("Failed to seed reference data")
	}

	store := refdata.NewStore()
	refreshJob := refdata.NewRefreshJob(loader, store, log)
	if err := refreshJob.Run(); err != nil {
		log.Fatal().Err(err).Msg("Failed to build initial reference dataset")
	}

	// Scheduled refresh keeps the dataset current without restarts
	sched := scheduler.New(log)
	if err := sched.AddJob(cfg.RefreshSchedule, refreshJob); err != nil {
		log.Fatal().Err(err).Msg("Failed to register reference-data refresh job")
	}
	sched.Start()

	// Decision pipeline and audit trail
	pipeline := engine.NewPipeline(engine.FromPipelineConfig(cfg.Pipeline), log)
	auditRepo := prefill.NewRepository(db.Conn(), log)

	// HTTP server
	srv := server.New(server.Config{
		Log:         log,
		DB:          db,
		Config:      cfg,
		Port:        cfg.Port,
		DevMode:     cfg.DevMode,
		Pipeline:    pipeline,
		Store:       store,
		RefdataRepo: refdataRepo,
		AuditRepo:   auditRepo,
		RefreshJob:  refreshJob,
		Scheduler:   sched,
	})

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	log.Info().Int("port", cfg.Port).Msg("Precept ready")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	// Stop scheduled jobs first so no refresh runs mid-shutdown
	sched.Stop()

	// The HTTP server gets up to 10 seconds to finish in-flight requests
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server stopped")
}
