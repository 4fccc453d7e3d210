// Package utils holds small helpers shared by the command surfaces and services.
package utils

import (
	"time"

	"github.com/rs/zerolog"
)

// SlowThreshold is the duration above which a timed operation logs at warn.
// A headless page render routinely takes 10-20s, so the bar sits above that.
const SlowThreshold = 30 * time.Second

// Timer measures one operation
type Timer struct {
	start time.Time
	name  string
	slow  time.Duration
	log   zerolog.Logger
}

func NewTimer(name string, log zerolog.Logger) *Timer {
	return &Timer{start: time.Now(), name: name, slow: SlowThreshold, log: log}
}

// Stop logs the elapsed time, at debug normally and at warn past the slow
// threshold, and returns it
func (t *Timer) Stop() time.Duration {
	elapsed := time.Since(t.start)

	event, msg := t.log.Debug(), "Operation finished"
	if elapsed > t.slow {
		event, msg = t.log.Warn(), "Slow operation"
	}
	event.Str("operation", t.name).Dur("duration", elapsed).Msg(msg)

	return elapsed
}

// OperationTimer times the rest of the calling function:
//
//	defer utils.OperationTimer("compare", log)()
func OperationTimer(operation string, log zerolog.Logger) func() {
	t := NewTimer(operation, log)
	return func() { t.Stop() }
}
