// Package scheduler runs background jobs on cron schedules.
package scheduler

import (
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// Job is a unit of background work
type Job interface {
	Run() error
	Name() string
}

// TimedJob is a Job that declares how long one run may take. The scheduler
// warns when a run exceeds it; cancelling is up to the job itself.
type TimedJob interface {
	Job
	Timeout() time.Duration
}

// Scheduler runs jobs on six-field cron schedules (seconds first). A run that
// is still going when its next tick fires is skipped, and a panicking job is
// recovered and logged.
type Scheduler struct {
	cron *cron.Cron
	log  zerolog.Logger

	mu      sync.Mutex
	entries map[string]cron.EntryID
}

func New(log zerolog.Logger) *Scheduler {
	log = log.With().Str("component", "scheduler").Logger()
	return &Scheduler{
		cron: cron.New(
			cron.WithSeconds(),
			cron.WithChain(cron.Recover(cronLogger{log})),
		),
		log:     log,
		entries: map[string]cron.EntryID{},
	}
}

func (s *Scheduler) Start() {
	s.cron.Start()
	for _, e := range s.cron.Entries() {
		s.log.Debug().Time("next_run", e.Next).Int("entry", int(e.ID)).Msg("Entry armed")
	}
	s.log.Info().Int("jobs", len(s.cron.Entries())).Msg("Scheduler started")
}

// Stop stops the scheduler and waits for running jobs to finish
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.log.Info().Msg("Scheduler stopped")
}

// AddJob registers job under schedule, e.g. "0 30 19 * * 1-5" (19:30 on
// weekdays) or "@every 6h". Job names must be unique.
func (s *Scheduler) AddJob(schedule string, job Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, dup := s.entries[job.Name()]; dup {
		return fmt.Errorf("job %s is already registered", job.Name())
	}

	wrapped := cron.NewChain(cron.SkipIfStillRunning(cronLogger{s.log})).
		Then(cron.FuncJob(func() { s.run(job) }))
	id, err := s.cron.AddJob(schedule, wrapped)
	if err != nil {
		return fmt.Errorf("invalid schedule %q for %s: %w", schedule, job.Name(), err)
	}
	s.entries[job.Name()] = id

	next := s.cron.Entry(id).Schedule.Next(time.Now())
	s.log.Info().
		Str("job", job.Name()).
		Str("schedule", schedule).
		Time("next_run", next).
		Msg("Job registered")
	return nil
}

// Entries returns the number of registered jobs
func (s *Scheduler) Entries() int {
	return len(s.cron.Entries())
}

// Next returns when the named job fires next
func (s *Scheduler) Next(name string) (time.Time, bool) {
	s.mu.Lock()
	id, ok := s.entries[name]
	s.mu.Unlock()
	if !ok {
		return time.Time{}, false
	}

	e := s.cron.Entry(id)
	if !e.Valid() {
		return time.Time{}, false
	}
	if e.Next.IsZero() {
		// not started yet
		return e.Schedule.Next(time.Now()), true
	}
	return e.Next, true
}

func (s *Scheduler) run(job Job) {
	log := s.log.With().Str("job", job.Name()).Logger()

	var limit time.Duration
	if tj, ok := job.(TimedJob); ok {
		limit = tj.Timeout()
	}

	start := time.Now()
	err := job.Run()
	elapsed := time.Since(start)

	if limit > 0 && elapsed > limit {
		log.Warn().Dur("elapsed", elapsed).Dur("timeout", limit).Msg("Job overran its timeout")
	}

	event := log.Debug()
	if err != nil {
		event = log.Error().Err(err)
	}
	if next, ok := s.Next(job.Name()); ok {
		event = event.Time("next_run", next)
	}
	if err != nil {
		event.Dur("elapsed", elapsed).Msg("Job failed")
		return
	}
	event.Dur("elapsed", elapsed).Msg("Job completed")
}

// cronLogger routes cron's own messages (skips, recovered panics) to zerolog
type cronLogger struct {
	log zerolog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Info().Fields(keysAndValues).Msg(msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Error().Err(err).Fields(keysAndValues).Msg(msg)
}
