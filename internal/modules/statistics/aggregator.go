// Package statistics aggregates a clean price series into a FundStatistics record
// and persists those records as snapshots.
package statistics

import (
	"errors"
	"fmt"
	"math"

	"github.com/rs/zerolog"

	"github.com/aristath/tefas/internal/domain"
	"github.com/aristath/tefas/internal/modules/analytics"
)

type options struct {
	riskFree  float64
	benchmark *domain.PriceSeries
}

// Option tunes a single aggregation
type Option func(*options)

// WithRiskFreeRate overrides the annual risk-free rate used for the Sharpe ratio
func WithRiskFreeRate(rate float64) Option {
	return func(o *options) { o.riskFree = rate }
}

// WithBenchmark supplies a benchmark series; beta is only computed when one is given
func WithBenchmark(s domain.PriceSeries) Option {
	return func(o *options) { o.benchmark = &s }
}

// Aggregator builds FundStatistics records
type Aggregator struct {
	log zerolog.Logger
}

// NewAggregator creates an aggregator
func NewAggregator(log zerolog.Logger) *Aggregator {
	return &Aggregator{log: log.With().Str("component", "statistics").Logger()}
}

// Aggregate computes the anchor facts of s and every metric it can.
//
// A metric whose preconditions fail is left nil and logged at warn level; it
// never aborts the others. An empty series is the only hard failure.
func (a *Aggregator) Aggregate(fundCode string, s domain.PriceSeries, opts ...Option) (domain.FundStatistics, error) {
	if s.IsEmpty() {
		return domain.FundStatistics{}, fmt.Errorf("%w: %s: empty price series", domain.ErrValidation, fundCode)
	}

	o := options{riskFree: analytics.DefaultRiskFreeRate}
	for _, opt := range opts {
		opt(&o)
	}

	stats := anchorFacts(fundCode, s)
	log := a.log.With().Str("fund", fundCode).Int("points", s.Len()).Logger()

	stats.TotalReturnPct = a.metric(log, "total_return", func() (float64, error) {
		return analytics.TotalReturn(s)
	})
	stats.VolatilityPct = a.metric(log, "volatility", func() (float64, error) {
		return analytics.AnnualizedVolatility(s)
	})
	stats.CAGRPct = a.metric(log, "cagr", func() (float64, error) {
		return analytics.CAGR(s)
	})
	stats.SharpeRatio = a.metric(log, "sharpe_ratio", func() (float64, error) {
		return analytics.SharpeRatio(s, o.riskFree)
	})
	if o.benchmark != nil {
		bench := *o.benchmark
		stats.Beta = a.metric(log, "beta", func() (float64, error) {
			return analytics.Beta(s, bench)
		})
	}

	log.Debug().Msg("Aggregated fund statistics")
	return stats, nil
}

func (a *Aggregator) metric(log zerolog.Logger, name string, fn func() (float64, error)) *float64 {
	v, err := fn()
	if err != nil {
		ev := log.Warn()
		if !errors.Is(err, domain.ErrValidation) {
			ev = log.Error()
		}
		ev.Err(err).Str("metric", name).Msg("Metric unavailable")
		return nil
	}
	return &v
}

// anchorFacts derives the facts that never fail on a non-empty series
func anchorFacts(fundCode string, s domain.PriceSeries) domain.FundStatistics {
	first, last := s.First(), s.Last()
	minPrice, maxPrice := math.Inf(1), math.Inf(-1)
	sum := 0.0
	for _, p := range s.Prices() {
		minPrice = math.Min(minPrice, p)
		maxPrice = math.Max(maxPrice, p)
		sum += p
	}

	return domain.FundStatistics{
		FundCode:   fundCode,
		FirstPrice: first.Price,
		LastPrice:  last.Price,
		MinPrice:   minPrice,
		MaxPrice:   maxPrice,
		MeanPrice:  sum / float64(s.Len()),
		DataPoints: s.Len(),
		FirstDate:  first.Date,
		LastDate:   last.Date,
	}
}
