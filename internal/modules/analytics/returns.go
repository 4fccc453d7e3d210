// Package analytics computes return and risk metrics over clean price series.
//
// Every function is pure: it takes a series, checks its own preconditions and
// either returns a finite value or an error wrapping domain.ErrValidation or
// domain.ErrComputation. No function ever returns a sentinel number.
package analytics

import (
	"fmt"
	"math"
	"time"

	"github.com/aristath/tefas/internal/domain"
)

const (
	// TradingDaysPerYear annualises daily statistics
	TradingDaysPerYear = 252
	// MinDataPoints is the floor for estimators (volatility, Sharpe, beta)
	MinDataPoints = 30
	// DaysPerYear converts elapsed calendar days into years for CAGR
	DaysPerYear = 365.25
	// DefaultRiskFreeRate is the annual risk-free rate used for Sharpe, as a decimal
	DefaultRiskFreeRate = 0.15
)

// validate rejects series that are too short or contain a non-positive or non-finite price
func validate(s domain.PriceSeries, minPoints int, metric string) error {
	if s.Len() < minPoints {
		return fmt.Errorf("%w: %s needs at least %d data points, got %d",
			domain.ErrValidation, metric, minPoints, s.Len())
	}
	for i := 0; i < s.Len(); i++ {
		p := s.At(i).Price
		if math.IsNaN(p) || math.IsInf(p, 0) {
			return fmt.Errorf("%w: %s: price at %s is not a number",
				domain.ErrValidation, metric, s.At(i).Date.Format(time.DateOnly))
		}
		if p <= 0 {
			return fmt.Errorf("%w: %s: price at %s is not positive",
				domain.ErrValidation, metric, s.At(i).Date.Format(time.DateOnly))
		}
	}
	return nil
}

// logReturns computes ln(P_t / P_{t-1}) for consecutive prices
func logReturns(prices []float64) []float64 {
	if len(prices) < 2 {
		return []float64{}
	}
	out := make([]float64, len(prices)-1)
	for i := 1; i < len(prices); i++ {
		out[i-1] = math.Log(prices[i] / prices[i-1])
	}
	return out
}

// LogReturns returns the daily logarithmic returns of a series.
// The series must have at least two points, all positive.
func LogReturns(s domain.PriceSeries) ([]float64, error) {
	if err := validate(s, 2, "log returns"); err != nil {
		return nil, err
	}
	return logReturns(s.Prices()), nil
}

// finite wraps a result in a computation failure when it is NaN or Inf
func finite(v float64, metric string) (float64, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%w: %s evaluated to %v", domain.ErrComputation, metric, v)
	}
	return v, nil
}

// elapsedDays returns whole calendar days between two dates
func elapsedDays(from, to time.Time) int {
	return int(to.Sub(from).Hours() / 24)
}
