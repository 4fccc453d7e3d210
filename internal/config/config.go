// Package config provides configuration management functionality.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"

	"github.com/aristath/tefas/internal/domain"
	"github.com/aristath/tefas/internal/utils"
)

// CronParser parses six-field cron specs (seconds first) and descriptors like @daily
var CronParser = cron.NewParser(
	cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

// Config holds application configuration
type Config struct {
	DataDir      string // Base directory for the snapshot database (always absolute)
	BaseURL      string // Fund analysis page URL
	PagesDir     string // When set, pages are read from <PagesDir>/<CODE>.html instead of a browser
	Headless     bool
	FetchTimeout time.Duration

	RiskFreeRate  float64 // Annual decimal rate used for the Sharpe ratio
	BenchmarkFund string  // Optional fund code used for beta
	Workers       int     // Concurrent fund pipelines

	Watchlist       []string // Normalised fund codes refreshed on schedule
	RefreshSchedule string   // Six-field cron spec

	PageCacheTTL        time.Duration // 0 disables the page cache
	MaintenanceSchedule string
	BackupSchedule      string // empty disables backups; needs S3
	// MaintenanceSchedule and BackupSchedule accept "off" in the environment

	Port     int
	LogLevel string
	DevMode  bool

	S3 S3Config
}

// S3Config holds the optional export upload target
type S3Config struct {
	Bucket          string
	Region          string
	Prefix          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
}

// Enabled reports whether uploads are configured
func (c S3Config) Enabled() bool {
	return c.Bucket != ""
}

// watchlistFile is the YAML layout of TEFAS_WATCHLIST_FILE
type watchlistFile struct {
	Funds     []string `yaml:"funds"`
	Benchmark string   `yaml:"benchmark"`
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	dataDir, err := filepath.Abs(getEnv("TEFAS_DATA_DIR", "./data"))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data directory path: %w", err)
	}
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	cfg := &Config{
		DataDir:             dataDir,
		BaseURL:             getEnv("TEFAS_BASE_URL", "https://www.tefas.gov.tr/FonAnaliz.aspx"),
		PagesDir:            getEnv("TEFAS_PAGES_DIR", ""),
		Headless:            getEnvAsBool("TEFAS_HEADLESS", true),
		FetchTimeout:        getEnvAsDuration("TEFAS_FETCH_TIMEOUT", 45*time.Second),
		RiskFreeRate:        getEnvAsFloat("TEFAS_RISK_FREE_RATE", 0.15),
		BenchmarkFund:       domain.CleanFundCode(getEnv("TEFAS_BENCHMARK_FUND", "")),
		Workers:             getEnvAsInt("TEFAS_WORKERS", 4),
		RefreshSchedule:     getEnv("TEFAS_REFRESH_SCHEDULE", "0 30 19 * * 1-5"), // after the evening price publication
		PageCacheTTL:        getEnvAsDuration("TEFAS_PAGE_CACHE_TTL", 6*time.Hour),
		MaintenanceSchedule: getSchedule("TEFAS_MAINTENANCE_SCHEDULE", "0 0 3 * * *"),
		BackupSchedule:      getSchedule("TEFAS_BACKUP_SCHEDULE", "0 0 4 * * 0"),
		Port:                getEnvAsInt("GO_PORT", 8010),
		LogLevel:            getEnv("LOG_LEVEL", "info"),
		DevMode:             getEnvAsBool("DEV_MODE", false),
		S3: S3Config{
			Bucket:          getEnv("TEFAS_S3_BUCKET", ""),
			Region:          getEnv("TEFAS_S3_REGION", ""),
			Prefix:          getEnv("TEFAS_S3_PREFIX", "tefas"),
			Endpoint:        getEnv("TEFAS_S3_ENDPOINT", ""),
			AccessKeyID:     getEnv("TEFAS_S3_ACCESS_KEY_ID", ""),
			SecretAccessKey: getEnv("TEFAS_S3_SECRET_ACCESS_KEY", ""),
		},
	}

	rawFunds := []string{getEnv("TEFAS_WATCHLIST", "")}
	if path := getEnv("TEFAS_WATCHLIST_FILE", ""); path != "" {
		wl, err := LoadWatchlistFile(path)
		if err != nil {
			return nil, err
		}
		rawFunds = append(rawFunds, wl.Funds...)
		if cfg.BenchmarkFund == "" {
			cfg.BenchmarkFund = domain.CleanFundCode(wl.Benchmark)
		}
	}

	codes, invalid := utils.ParseFundCodes(rawFunds...)
	if len(invalid) > 0 {
		return nil, fmt.Errorf("%w: watch list entries %s", domain.ErrInvalidFundCode, strings.Join(invalid, ", "))
	}
	cfg.Watchlist = codes

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadWatchlistFile reads a YAML watch list: {funds: [AAK, CPU], benchmark: GAH}
func LoadWatchlistFile(path string) (Watchlist, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Watchlist{}, fmt.Errorf("read watch list: %w", err)
	}

	var wl watchlistFile
	if err := yaml.Unmarshal(data, &wl); err != nil {
		return Watchlist{}, fmt.Errorf("parse watch list %s: %w", path, err)
	}
	return Watchlist(wl), nil
}

// Watchlist is the content of a watch list file
type Watchlist struct {
	Funds     []string
	Benchmark string
}

// DatabasePath returns the snapshot database location
func (c *Config) DatabasePath() string {
	return filepath.Join(c.DataDir, "snapshots.db")
}

// ClientDataPath returns the page cache database location
func (c *Config) ClientDataPath() string {
	return filepath.Join(c.DataDir, "client_data.db")
}

// Validate checks that the configuration is usable
func (c *Config) Validate() error {
	if c.RiskFreeRate < 0 || c.RiskFreeRate > 1 {
		return fmt.Errorf("TEFAS_RISK_FREE_RATE must be a decimal between 0 and 1, got %v", c.RiskFreeRate)
	}
	if c.Workers < 1 {
		return fmt.Errorf("TEFAS_WORKERS must be at least 1, got %d", c.Workers)
	}
	if c.FetchTimeout <= 0 {
		return fmt.Errorf("TEFAS_FETCH_TIMEOUT must be positive, got %s", c.FetchTimeout)
	}
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("GO_PORT must be a valid port, got %d", c.Port)
	}
	if c.BenchmarkFund != "" && !domain.ValidFundCode(c.BenchmarkFund) {
		return fmt.Errorf("%w: benchmark fund %q", domain.ErrInvalidFundCode, c.BenchmarkFund)
	}
	if c.PageCacheTTL < 0 {
		return fmt.Errorf("TEFAS_PAGE_CACHE_TTL must not be negative, got %s", c.PageCacheTTL)
	}
	schedules := []struct{ key, spec string }{
		{"TEFAS_REFRESH_SCHEDULE", c.RefreshSchedule},
		{"TEFAS_MAINTENANCE_SCHEDULE", c.MaintenanceSchedule},
		{"TEFAS_BACKUP_SCHEDULE", c.BackupSchedule},
	}
	for _, s := range schedules {
		if s.spec == "" && s.key != "TEFAS_REFRESH_SCHEDULE" {
			continue
		}
		if _, err := CronParser.Parse(s.spec); err != nil {
			return fmt.Errorf("%s %q is invalid: %w", s.key, s.spec, err)
		}
	}
	return nil
}

// Helper functions

// getSchedule reads a cron spec where "off" disables the job
func getSchedule(key, defaultValue string) string {
	value := getEnv(key, defaultValue)
	if strings.EqualFold(value, "off") {
		return ""
	}
	return value
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
