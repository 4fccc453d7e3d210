package clientdata

import (
	"time"

	"github.com/rs/zerolog"
)

// CleanupJob prunes cached pages that are too old to serve even as a stale fallback
type CleanupJob struct {
	repo      *Repository
	retention time.Duration
	log       zerolog.Logger
}

// NewCleanupJob returns a job that keeps expired pages for retention before
// dropping them. A non-positive retention uses StaleRetention.
func NewCleanupJob(repo *Repository, retention time.Duration, log zerolog.Logger) *CleanupJob {
	if retention <= 0 {
		retention = StaleRetention
	}
	return &CleanupJob{
		repo:      repo,
		retention: retention,
		log:       log.With().Str("job", "page_cache_cleanup").Logger(),
	}
}

func (j *CleanupJob) Run() error {
	results, err := j.repo.DeleteAllExpired(j.retention)
	if err != nil {
		return err
	}

	var total int64
	for _, n := range results {
		total += n
	}

	event := j.log.Debug()
	if total > 0 {
		event = j.log.Info()
	}
	event.Dur("retention", j.retention).Int64("pruned", total).Msg("Page cache pruned")
	return nil
}

func (j *CleanupJob) Name() string {
	return "page_cache_cleanup"
}
