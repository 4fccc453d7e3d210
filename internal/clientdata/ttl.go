package clientdata

import "time"

const (
	// TTLFundPage covers one publication cycle: TEFAS publishes prices once per
	// business day, so a page fetched in the morning is still current at noon.
	TTLFundPage = 6 * time.Hour

	// StaleRetention is how long an expired page is kept as a fallback for
	// when TEFAS cannot be reached
	StaleRetention = 7 * 24 * time.Hour
)
