package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/tefas/internal/domain"
)

var allKeys = []string{
	"TEFAS_DATA_DIR", "TEFAS_BASE_URL", "TEFAS_PAGES_DIR", "TEFAS_HEADLESS", "TEFAS_FETCH_TIMEOUT",
	"TEFAS_RISK_FREE_RATE", "TEFAS_BENCHMARK_FUND", "TEFAS_WORKERS", "TEFAS_WATCHLIST",
	"TEFAS_WATCHLIST_FILE", "TEFAS_REFRESH_SCHEDULE", "GO_PORT", "LOG_LEVEL", "DEV_MODE",
	"TEFAS_S3_BUCKET", "TEFAS_S3_REGION", "TEFAS_S3_PREFIX", "TEFAS_S3_ENDPOINT",
	"TEFAS_S3_ACCESS_KEY_ID", "TEFAS_S3_SECRET_ACCESS_KEY",
	"TEFAS_PAGE_CACHE_TTL", "TEFAS_MAINTENANCE_SCHEDULE", "TEFAS_BACKUP_SCHEDULE",
}

// cleanEnv clears every key and points the data directory at a temp dir
func cleanEnv(t *testing.T) string {
	t.Helper()
	for _, k := range allKeys {
		t.Setenv(k, "")
	}
	dir := filepath.Join(t.TempDir(), "data")
	t.Setenv("TEFAS_DATA_DIR", dir)
	return dir
}

func TestLoad_Defaults(t *testing.T) {
	dir := cleanEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, dir, cfg.DataDir)
	assert.DirExists(t, dir)
	assert.Equal(t, filepath.Join(dir, "snapshots.db"), cfg.DatabasePath())
	assert.Equal(t, "https://www.tefas.gov.tr/FonAnaliz.aspx", cfg.BaseURL)
	assert.True(t, cfg.Headless)
	assert.Equal(t, 45*time.Second, cfg.FetchTimeout)
	assert.Equal(t, 0.15, cfg.RiskFreeRate)
	assert.Equal(t, 4, cfg.Workers)
	assert.Equal(t, 8010, cfg.Port)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "0 30 19 * * 1-5", cfg.RefreshSchedule)
	assert.Empty(t, cfg.Watchlist)
	assert.Empty(t, cfg.BenchmarkFund)
	assert.False(t, cfg.S3.Enabled())
	assert.Equal(t, 6*time.Hour, cfg.PageCacheTTL)
	assert.Equal(t, filepath.Join(dir, "client_data.db"), cfg.ClientDataPath())
	assert.Equal(t, "0 0 3 * * *", cfg.MaintenanceSchedule)
	assert.Equal(t, "0 0 4 * * 0", cfg.BackupSchedule)
}

func TestLoad_DisabledSchedules(t *testing.T) {
	cleanEnv(t)
	t.Setenv("TEFAS_BACKUP_SCHEDULE", "off")
	t.Setenv("TEFAS_MAINTENANCE_SCHEDULE", "OFF")
	t.Setenv("TEFAS_PAGE_CACHE_TTL", "0s")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Empty(t, cfg.BackupSchedule)
	assert.Empty(t, cfg.MaintenanceSchedule)
	assert.Zero(t, cfg.PageCacheTTL)
}

func TestLoad_Overrides(t *testing.T) {
	cleanEnv(t)
	t.Setenv("TEFAS_HEADLESS", "false")
	t.Setenv("TEFAS_FETCH_TIMEOUT", "90s")
	t.Setenv("TEFAS_RISK_FREE_RATE", "0.42")
	t.Setenv("TEFAS_WORKERS", "8")
	t.Setenv("TEFAS_BENCHMARK_FUND", "gah")
	t.Setenv("TEFAS_WATCHLIST", "aak, CPU,aak")
	t.Setenv("TEFAS_S3_BUCKET", "funds")
	t.Setenv("GO_PORT", "9000")

	cfg, err := Load()
	require.NoError(t, err)

	assert.False(t, cfg.Headless)
	assert.Equal(t, 90*time.Second, cfg.FetchTimeout)
	assert.Equal(t, 0.42, cfg.RiskFreeRate)
	assert.Equal(t, 8, cfg.Workers)
	assert.Equal(t, "GAH", cfg.BenchmarkFund)
	assert.Equal(t, []string{"AAK", "CPU"}, cfg.Watchlist)
	assert.True(t, cfg.S3.Enabled())
	assert.Equal(t, "tefas", cfg.S3.Prefix)
	assert.Equal(t, 9000, cfg.Port)
}

func TestLoad_WatchlistFile(t *testing.T) {
	cleanEnv(t)
	path := filepath.Join(t.TempDir(), "watchlist.yaml")
	require.NoError(t, os.WriteFile(path, []byte("funds:\n  - cpu\n  - TTE\nbenchmark: gah\n"), 0o644))

	t.Setenv("TEFAS_WATCHLIST", "AAK,CPU")
	t.Setenv("TEFAS_WATCHLIST_FILE", path)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"AAK", "CPU", "TTE"}, cfg.Watchlist)
	assert.Equal(t, "GAH", cfg.BenchmarkFund)

	// the environment wins over the file for the benchmark
	t.Setenv("TEFAS_BENCHMARK_FUND", "YAC")
	cfg, err = Load()
	require.NoError(t, err)
	assert.Equal(t, "YAC", cfg.BenchmarkFund)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"risk free rate as percent", "TEFAS_RISK_FREE_RATE", "15"},
		{"negative risk free rate", "TEFAS_RISK_FREE_RATE", "-0.1"},
		{"zero workers", "TEFAS_WORKERS", "0"},
		{"bad schedule", "TEFAS_REFRESH_SCHEDULE", "every evening"},
		{"five field schedule", "TEFAS_REFRESH_SCHEDULE", "30 19 * * 1-5"},
		{"port out of range", "GO_PORT", "70000"},
		{"bad backup schedule", "TEFAS_BACKUP_SCHEDULE", "weekly"},
		{"negative cache ttl", "TEFAS_PAGE_CACHE_TTL", "-1h"},
		{"bad watch list entry", "TEFAS_WATCHLIST", "AAK,X"},
		{"missing watch list file", "TEFAS_WATCHLIST_FILE", "/does/not/exist.yaml"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cleanEnv(t)
			t.Setenv(tt.key, tt.value)
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestLoad_InvalidWatchlistIsFundCodeError(t *testing.T) {
	cleanEnv(t)
	t.Setenv("TEFAS_WATCHLIST", "AAK,?")
	_, err := Load()
	assert.ErrorIs(t, err, domain.ErrInvalidFundCode)
}

func TestLoadWatchlistFile_BadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("funds: [AAK\n"), 0o644))
	_, err := LoadWatchlistFile(path)
	assert.ErrorContains(t, err, "parse watch list")
}
