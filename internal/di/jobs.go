package di

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/tefas/internal/clientdata"
	"github.com/aristath/tefas/internal/reliability"
	"github.com/aristath/tefas/internal/scheduler"
)

// Jobs holds the registered job instances; a nil field was not registered
type Jobs struct {
	Refresh     *scheduler.RefreshJob
	Cleanup     *clientdata.CleanupJob
	Maintenance *reliability.MaintenanceJob
	Backup      *reliability.BackupJob
}

// All returns the registered jobs
func (j *Jobs) All() []scheduler.Job {
	var out []scheduler.Job
	if j.Refresh != nil {
		out = append(out, j.Refresh)
	}
	if j.Cleanup != nil {
		out = append(out, j.Cleanup)
	}
	if j.Maintenance != nil {
		out = append(out, j.Maintenance)
	}
	if j.Backup != nil {
		out = append(out, j.Backup)
	}
	return out
}

// RegisterJobs registers every job the container supports on sched:
//   - refresh_watchlist: needs the snapshot database and a watch list
//   - page_cache_cleanup: needs the page cache
//   - daily_maintenance: needs at least one database and a schedule
//   - backup: needs the backup service and a schedule
func RegisterJobs(container *Container, sched *scheduler.Scheduler, log zerolog.Logger) (*Jobs, error) {
	cfg := container.Config
	jobs := &Jobs{}

	if container.Snapshots != nil && len(cfg.Watchlist) > 0 {
		// A run renders every page once, Workers at a time, plus the benchmark
		batches := (len(cfg.Watchlist)+cfg.Workers-1)/cfg.Workers + 1
		timeout := time.Duration(batches)*cfg.FetchTimeout + time.Minute

		job := scheduler.NewRefreshJob(container.Analyzer, container.Snapshots, cfg.Watchlist, timeout, log)
		if err := sched.AddJob(cfg.RefreshSchedule, job); err != nil {
			return nil, fmt.Errorf("failed to register %s: %w", job.Name(), err)
		}
		jobs.Refresh = job
	} else {
		log.Info().Msg("Watch list refresh disabled (no database or empty watch list)")
	}

	if container.PageCache != nil && cfg.MaintenanceSchedule != "" {
		job := clientdata.NewCleanupJob(container.PageCache, clientdata.StaleRetention, log)
		if err := sched.AddJob(cfg.MaintenanceSchedule, job); err != nil {
			return nil, fmt.Errorf("failed to register %s: %w", job.Name(), err)
		}
		jobs.Cleanup = job
	}

	if dbs := container.Databases(); len(dbs) > 0 && cfg.MaintenanceSchedule != "" {
		job := reliability.NewMaintenanceJob(dbs, cfg.DataDir, log)
		if err := sched.AddJob(cfg.MaintenanceSchedule, job); err != nil {
			return nil, fmt.Errorf("failed to register %s: %w", job.Name(), err)
		}
		jobs.Maintenance = job
	}

	if container.Backup != nil && cfg.BackupSchedule != "" {
		job := reliability.NewBackupJob(container.Backup, 10*time.Minute, log)
		if err := sched.AddJob(cfg.BackupSchedule, job); err != nil {
			return nil, fmt.Errorf("failed to register %s: %w", job.Name(), err)
		}
		jobs.Backup = job
	}

	return jobs, nil
}
