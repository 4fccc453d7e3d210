package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/tefas/internal/modules/statistics"
	"github.com/aristath/tefas/internal/services/analyzer"
)

// ErrJobRunning is returned when a refresh is triggered while one is in progress
var ErrJobRunning = errors.New("refresh already running")

// Comparer analyses many funds at once
type Comparer interface {
	Compare(ctx context.Context, codes []string) ([]analyzer.Result, error)
}

// SnapshotSaver persists a snapshot
type SnapshotSaver interface {
	Save(ctx context.Context, snap statistics.Snapshot) (string, error)
}

// RefreshJob analyses the watch list and stores a snapshot per successful fund
type RefreshJob struct {
	analyzer Comparer
	store    SnapshotSaver
	funds    []string
	timeout  time.Duration
	now      func() time.Time
	running  sync.Mutex
	log      zerolog.Logger
}

// NewRefreshJob creates a refresh job over funds. timeout bounds a whole run.
func NewRefreshJob(a Comparer, store SnapshotSaver, funds []string, timeout time.Duration, log zerolog.Logger) *RefreshJob {
	return &RefreshJob{
		analyzer: a,
		store:    store,
		funds:    funds,
		timeout:  timeout,
		now:      time.Now,
		log:      log.With().Str("job", "refresh_watchlist").Logger(),
	}
}

// Name returns the job name
func (j *RefreshJob) Name() string {
	return "refresh_watchlist"
}

// Timeout bounds one run; zero means unbounded
func (j *RefreshJob) Timeout() time.Duration {
	return j.timeout
}

// Run executes one refresh. It fails only when nothing could be stored.
func (j *RefreshJob) Run() error {
	if len(j.funds) == 0 {
		j.log.Debug().Msg("Watch list empty, nothing to refresh")
		return nil
	}
	if !j.running.TryLock() {
		return ErrJobRunning
	}
	defer j.running.Unlock()

	ctx := context.Background()
	if j.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, j.timeout)
		defer cancel()
	}

	results, err := j.analyzer.Compare(ctx, j.funds)
	if err != nil && len(results) == 0 {
		return fmt.Errorf("refresh failed: %w", err)
	}

	capturedAt := j.now()
	saved, failed := 0, 0
	for _, res := range results {
		if res.Err != nil {
			failed++
			continue
		}
		r := res.Report
		_, err := j.store.Save(ctx, statistics.Snapshot{
			CapturedAt: capturedAt,
			Statistics: r.Statistics,
			Allocation: r.Allocation,
			Benchmark:  r.Benchmark,
			Series:     r.Series,
		})
		if err != nil {
			j.log.Error().Err(err).Str("fund", res.FundCode).Msg("Failed to store snapshot")
			failed++
			continue
		}
		saved++
	}

	j.log.Info().
		Int("funds", len(j.funds)).
		Int("saved", saved).
		Int("failed", failed).
		Msg("Watch list refreshed")

	if saved == 0 {
		return fmt.Errorf("refresh stored no snapshots (%d funds failed)", failed)
	}
	return nil
}
