package di

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/aristath/tefas/internal/clientdata"
	"github.com/aristath/tefas/internal/clients/tefas"
	"github.com/aristath/tefas/internal/config"
	"github.com/aristath/tefas/internal/database"
	"github.com/aristath/tefas/internal/export"
	"github.com/aristath/tefas/internal/modules/statistics"
	"github.com/aristath/tefas/internal/reliability"
	"github.com/aristath/tefas/internal/services/analyzer"
)

// Options selects optional parts of the container
type Options struct {
	Database bool              // open and migrate the snapshot database
	Uploader bool              // build the S3 uploader when a bucket is configured
	Window   analyzer.Window   // default analysis window
	Fetcher  tefas.PageFetcher // overrides the fetcher chosen from config
}

// Wire initializes all dependencies and returns a fully configured container
// Order of operations:
// 1. Initialize the snapshot database (optional)
// 2. Choose the page fetcher, behind the page cache when enabled
// 3. Initialize the analyzer
// 4. Initialize the uploader and backups (optional)
func Wire(ctx context.Context, cfg *config.Config, log zerolog.Logger, opts Options) (*Container, error) {
	container := &Container{Config: cfg}

	if opts.Database {
		db, err := openDatabase(cfg.DatabasePath(), "snapshots", database.ProfileStandard)
		if err != nil {
			return nil, err
		}
		container.SnapshotsDB = db
		container.Snapshots = statistics.NewRepository(db.Conn(), log)
		log.Info().Str("path", db.Path()).Msg("Snapshots database ready")
	}

	container.Fetcher = opts.Fetcher
	if container.Fetcher == nil {
		container.Fetcher = NewFetcher(cfg, log)

		// Saved pages are already local, caching them gains nothing
		if cfg.PageCacheTTL > 0 && cfg.PagesDir == "" {
			db, err := openDatabase(cfg.ClientDataPath(), "client_data", database.ProfileCache)
			if err != nil {
				container.Close()
				return nil, err
			}
			container.ClientDataDB = db
			container.PageCache = clientdata.NewRepository(db.Conn())
			container.Fetcher = tefas.NewCachingFetcher(container.Fetcher, container.PageCache, cfg.PageCacheTTL, log)
			log.Debug().Dur("ttl", cfg.PageCacheTTL).Msg("Page cache enabled")
		}
	}

	container.Analyzer = analyzer.NewService(container.Fetcher, analyzer.Config{
		RiskFreeRate:  cfg.RiskFreeRate,
		BenchmarkFund: cfg.BenchmarkFund,
		Workers:       cfg.Workers,
		Window:        opts.Window,
	}, log)

	if opts.Uploader && cfg.S3.Enabled() {
		uploader, err := export.NewS3Uploader(ctx, export.S3Config(cfg.S3), log)
		if err != nil {
			container.Close()
			return nil, fmt.Errorf("failed to initialize S3 uploader: %w", err)
		}
		container.Uploader = uploader

		if container.SnapshotsDB != nil {
			container.Backup = reliability.NewBackupService(container.Databases(), uploader, cfg.DataDir, log)
		}
	}

	return container, nil
}

// openDatabase opens and migrates one database
func openDatabase(path, name string, profile database.DatabaseProfile) (*database.DB, error) {
	db, err := database.New(database.Config{
		Path:    path,
		Profile: profile,
		Name:    name,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize %s database: %w", name, err)
	}
	if err := db.Migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate %s database: %w", name, err)
	}
	return db, nil
}

// NewFetcher returns the on-disk fetcher when TEFAS_PAGES_DIR is set, else the browser fetcher
func NewFetcher(cfg *config.Config, log zerolog.Logger) tefas.PageFetcher {
	if cfg.PagesDir != "" {
		log.Info().Str("dir", cfg.PagesDir).Msg("Reading fund pages from disk")
		return tefas.NewDirFetcher(cfg.PagesDir, log)
	}
	return tefas.NewBrowserFetcher(tefas.BrowserConfig{
		BaseURL:  cfg.BaseURL,
		Headless: cfg.Headless,
		Timeout:  cfg.FetchTimeout,
	}, log)
}
