package di

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/tefas/internal/clients/tefas"
	"github.com/aristath/tefas/internal/config"
	"github.com/aristath/tefas/internal/scheduler"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		DataDir:             t.TempDir(),
		PagesDir:            t.TempDir(),
		FetchTimeout:        45 * time.Second,
		RiskFreeRate:        0.15,
		Workers:             2,
		RefreshSchedule:     "0 30 19 * * 1-5",
		MaintenanceSchedule: "0 0 3 * * *",
		BackupSchedule:      "0 0 4 * * 0",
		PageCacheTTL:        time.Hour,
		Port:                8010,
	}
}

func TestWire_WithDatabase(t *testing.T) {
	cfg := testConfig(t)
	c, err := Wire(context.Background(), cfg, zerolog.Nop(), Options{Database: true, Uploader: true})
	require.NoError(t, err)
	defer c.Close()

	require.NotNil(t, c.SnapshotsDB)
	require.NotNil(t, c.Snapshots)
	require.NotNil(t, c.Analyzer)
	assert.Nil(t, c.Uploader, "no bucket configured")
	assert.Nil(t, c.Backup)
	assert.IsType(t, &tefas.DirFetcher{}, c.Fetcher)
	assert.Nil(t, c.PageCache, "saved pages are not cached")
	assert.FileExists(t, filepath.Join(cfg.DataDir, "snapshots.db"))

	funds, err := c.Snapshots.Funds(context.Background())
	require.NoError(t, err)
	assert.Empty(t, funds)
}

func TestWire_WithoutDatabase(t *testing.T) {
	c, err := Wire(context.Background(), testConfig(t), zerolog.Nop(), Options{})
	require.NoError(t, err)
	assert.Nil(t, c.SnapshotsDB)
	assert.NoError(t, c.Close())
}

func TestNewFetcher_Browser(t *testing.T) {
	cfg := testConfig(t)
	cfg.PagesDir = ""
	assert.IsType(t, &tefas.BrowserFetcher{}, NewFetcher(cfg, zerolog.Nop()))
}

func TestWire_AnalyzesSavedPage(t *testing.T) {
	cfg := testConfig(t)
	page := `"data":[100,102,98,105] "categories":["01.01.2024","02.01.2024","03.01.2024","04.01.2024"]`
	require.NoError(t, os.WriteFile(filepath.Join(cfg.PagesDir, "CPU.html"), []byte(page), 0o644))

	c, err := Wire(context.Background(), cfg, zerolog.Nop(), Options{})
	require.NoError(t, err)

	report, err := c.Analyzer.Analyze(context.Background(), "cpu")
	require.NoError(t, err)
	require.NotNil(t, report.Statistics.TotalReturnPct)
	assert.InDelta(t, 5.0, *report.Statistics.TotalReturnPct, 1e-9)
}

func TestWire_PageCacheWrapsBrowser(t *testing.T) {
	cfg := testConfig(t)
	cfg.PagesDir = ""

	c, err := Wire(context.Background(), cfg, zerolog.Nop(), Options{})
	require.NoError(t, err)
	defer c.Close()

	assert.IsType(t, &tefas.CachingFetcher{}, c.Fetcher)
	require.NotNil(t, c.PageCache)
	assert.FileExists(t, filepath.Join(cfg.DataDir, "client_data.db"))
	assert.Len(t, c.Databases(), 1)

	cfg.PageCacheTTL = 0
	plain, err := Wire(context.Background(), cfg, zerolog.Nop(), Options{})
	require.NoError(t, err)
	assert.IsType(t, &tefas.BrowserFetcher{}, plain.Fetcher)
}

func TestWire_FetcherOverride(t *testing.T) {
	cfg := testConfig(t)
	cfg.PagesDir = ""
	override := tefas.NewDirFetcher(t.TempDir(), zerolog.Nop())

	c, err := Wire(context.Background(), cfg, zerolog.Nop(), Options{Fetcher: override})
	require.NoError(t, err)
	assert.Same(t, override, c.Fetcher)
	assert.Nil(t, c.PageCache)
}

func TestRegisterJobs(t *testing.T) {
	cfg := testConfig(t)
	sched := scheduler.New(zerolog.Nop())

	noDB, err := Wire(context.Background(), cfg, zerolog.Nop(), Options{})
	require.NoError(t, err)
	jobs, err := RegisterJobs(noDB, sched, zerolog.Nop())
	require.NoError(t, err)
	assert.Empty(t, jobs.All())
	assert.Equal(t, 0, sched.Entries())

	cfg.Watchlist = []string{"AAK", "CPU", "TTE"}
	c, err := Wire(context.Background(), cfg, zerolog.Nop(), Options{Database: true})
	require.NoError(t, err)
	defer c.Close()

	jobs, err = RegisterJobs(c, sched, zerolog.Nop())
	require.NoError(t, err)
	require.NotNil(t, jobs.Refresh)
	require.NotNil(t, jobs.Maintenance)
	assert.Nil(t, jobs.Cleanup, "no page cache for saved pages")
	assert.Nil(t, jobs.Backup, "no uploader")
	assert.Len(t, jobs.All(), 2)
	assert.Equal(t, 2, sched.Entries())

	cfg.RefreshSchedule = "not a schedule"
	_, err = RegisterJobs(c, sched, zerolog.Nop())
	assert.Error(t, err)
}

func TestRegisterJobs_MaintenanceOff(t *testing.T) {
	cfg := testConfig(t)
	cfg.MaintenanceSchedule = ""
	c, err := Wire(context.Background(), cfg, zerolog.Nop(), Options{Database: true})
	require.NoError(t, err)
	defer c.Close()

	jobs, err := RegisterJobs(c, scheduler.New(zerolog.Nop()), zerolog.Nop())
	require.NoError(t, err)
	assert.Empty(t, jobs.All())
}
