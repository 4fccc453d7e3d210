package series

import (
	"strings"
	"time"
)

// DateLayouts are the calendar conventions accepted for the date axis, tried in order.
// Day-first comes before ISO because that is what the fund pages use.
var DateLayouts = []string{
	"02.01.2006",
	"2006-01-02",
	"2006-01-02T15:04:05",
	"02/01/2006",
}

// ParseDate parses a date string using the first matching layout. The result is
// a UTC midnight so that calendar-day arithmetic is exact.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range DateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), true
		}
	}
	return time.Time{}, false
}
