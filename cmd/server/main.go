// Package main is the entry point of the TEFAS fund analysis server.
//
// The server answers live analysis requests over HTTP and refreshes a watch
// list of funds into the snapshot database on a cron schedule.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aristath/tefas/internal/config"
	"github.com/aristath/tefas/internal/di"
	"github.com/aristath/tefas/internal/scheduler"
	"github.com/aristath/tefas/internal/server"
	"github.com/aristath/tefas/pkg/logger"
)

// main orchestrates the startup sequence:
// 1. Loads configuration from environment variables (.env file supported)
// 2. Initializes logging
// 3. Wires the snapshot database, fetcher and analyzer
// 4. Registers the watch-list refresh with the scheduler
// 5. Starts the HTTP server
// 6. Waits for a shutdown signal and stops everything gracefully
func main() {
	cfg, err := config.Load()
	if err != nil {
		// Use fallback logger if config fails
		fallbackLog := logger.New(logger.Config{
			Level:  "info",
			Pretty: true,
		})
		fallbackLog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.DevMode,
	})

	log.Info().
		Str("data_dir", cfg.DataDir).
		Int("watchlist", len(cfg.Watchlist)).
		Str("benchmark", cfg.BenchmarkFund).
		Msg("Starting TEFAS analyzer")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	container, err := di.Wire(ctx, cfg, log, di.Options{Database: true, Uploader: true})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to wire dependencies")
	}
	// Closing the database writes the final WAL checkpoint
	defer container.Close()

	sched := scheduler.New(log)
	jobs, err := di.RegisterJobs(container, sched, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to register jobs")
	}
	sched.Start()

	// A live request renders the fund page and, with a benchmark configured,
	// the benchmark page too
	requestTimeout := 2*cfg.FetchTimeout + 15*time.Second

	var databases []server.SizedDatabase
	for _, db := range container.Databases() {
		databases = append(databases, db)
	}
	var triggers []server.Job
	for _, job := range jobs.All() {
		triggers = append(triggers, job)
	}

	srv := server.New(server.Config{
		Log:            log,
		Analyzer:       container.Analyzer,
		Snapshots:      container.Snapshots,
		Database:       container.SnapshotsDB,
		Port:           cfg.Port,
		DevMode:        cfg.DevMode,
		DataDir:        cfg.DataDir,
		Databases:      databases,
		Jobs:           triggers,
		Schedule:       sched,
		RequestTimeout: requestTimeout,
	})

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	log.Info().Int("port", cfg.Port).Msg("Server started successfully")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	// Stop the scheduler first so no refresh starts while the database closes.
	// A refresh already running is allowed to finish.
	sched.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server stopped")
}
