package reliability

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/disk"

	"github.com/aristath/tefas/internal/database"
)

// Disk space thresholds for the data directory
const (
	CriticalFreeBytes = 200 << 20 // maintenance fails below this
	LowFreeBytes      = 1 << 30   // logged as a warning below this
)

// DiskUsageFunc reports usage of the filesystem holding path
type DiskUsageFunc func(ctx context.Context, path string) (*disk.UsageStat, error)

// MaintenanceJob performs daily database maintenance
type MaintenanceJob struct {
	databases []*database.DB
	dataDir   string
	usage     DiskUsageFunc
	log       zerolog.Logger
}

// NewMaintenanceJob creates a maintenance job over the given databases
func NewMaintenanceJob(databases []*database.DB, dataDir string, log zerolog.Logger) *MaintenanceJob {
	return &MaintenanceJob{
		databases: databases,
		dataDir:   dataDir,
		usage:     disk.UsageWithContext,
		log:       log.With().Str("job", "daily_maintenance").Logger(),
	}
}

// Run executes the maintenance steps:
// 1. Integrity check (halts on a corrupt database)
// 2. WAL checkpoint (failures are logged only)
// 3. Disk space check on the data directory
func (j *MaintenanceJob) Run() error {
	j.log.Info().Msg("Starting daily maintenance")
	startTime := time.Now()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	for _, db := range j.databases {
		j.log.Debug().Str("database", db.Name()).Msg("Running integrity check")
		if err := db.HealthCheck(ctx); err != nil {
			j.log.Error().Err(err).Str("database", db.Name()).Msg("CRITICAL: Database failed integrity check")
			return err
		}
	}

	for _, db := range j.databases {
		if err := db.Checkpoint(ctx); err != nil {
			j.log.Warn().Err(err).Str("database", db.Name()).Msg("WAL checkpoint failed")
		}
		if size, err := db.SizeBytes(ctx); err == nil {
			j.log.Debug().Str("database", db.Name()).Int64("size_bytes", size).Msg("Database size")
		}
	}

	if err := j.checkDiskSpace(ctx); err != nil {
		return err
	}

	j.log.Info().
		Dur("duration_ms", time.Since(startTime)).
		Msg("Daily maintenance completed successfully")
	return nil
}

// Name returns the job name for scheduler
func (j *MaintenanceJob) Name() string {
	return "daily_maintenance"
}

// checkDiskSpace verifies sufficient disk space is available
func (j *MaintenanceJob) checkDiskSpace(ctx context.Context) error {
	stat, err := j.usage(ctx, j.dataDir)
	if err != nil {
		return fmt.Errorf("failed to stat filesystem: %w", err)
	}

	availableGB := float64(stat.Free) / 1e9
	j.log.Debug().Float64("available_gb", availableGB).Float64("used_pct", stat.UsedPercent).Msg("Disk space check")

	if stat.Free < CriticalFreeBytes {
		j.log.Error().Float64("available_gb", availableGB).Msg("CRITICAL: Insufficient disk space")
		return fmt.Errorf("only %.2f GB free under %s", availableGB, j.dataDir)
	}
	if stat.Free < LowFreeBytes {
		j.log.Warn().Float64("available_gb", availableGB).Msg("Disk space running low")
	}
	return nil
}
