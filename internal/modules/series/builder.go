// Package series turns raw parallel price/date arrays into a clean PriceSeries.
package series

import (
	"fmt"
	"math"
	"slices"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/tefas/internal/domain"
)

const (
	// MinParsedDateRatio is the share of dates that must parse for a batch to be accepted
	MinParsedDateRatio = 0.8
	// OutlierMedianMultiple drops points priced above this multiple of the median
	OutlierMedianMultiple = 10.0
)

// Removed counts the points dropped at each cleaning step
type Removed struct {
	Unparseable int `json:"unparseable_date"`
	NonPositive int `json:"non_positive"`
	Duplicate   int `json:"duplicate"`
	Outlier     int `json:"outlier"`
}

// Total returns the number of points removed across all steps
func (r Removed) Total() int {
	return r.Unparseable + r.NonPositive + r.Duplicate + r.Outlier
}

// Result is a cleaned series plus the cleaning tally
type Result struct {
	Series  domain.PriceSeries
	Removed Removed
	Median  float64
}

// Builder builds and cleans price series
type Builder struct {
	log zerolog.Logger
}

// NewBuilder creates a new series builder
func NewBuilder(log zerolog.Logger) *Builder {
	return &Builder{
		log: log.With().Str("component", "series_builder").Logger(),
	}
}

// Build returns the cleaned series for the given parallel arrays
func (b *Builder) Build(prices []float64, dates []string) (domain.PriceSeries, error) {
	res, err := b.BuildWithReport(prices, dates)
	if err != nil {
		return domain.PriceSeries{}, err
	}
	return res.Series, nil
}

// BuildWithReport validates and cleans the parallel arrays.
//
// Cleaning order is fixed: drop non-positive prices, drop duplicate dates
// (first seen wins), sort by date, then drop points above 10x the median of
// what is left. The outlier pass runs once and the median is not recomputed.
func (b *Builder) BuildWithReport(prices []float64, dates []string) (Result, error) {
	if len(prices) != len(dates) {
		return Result{}, fmt.Errorf("%w: price and date count mismatch: %d vs %d",
			domain.ErrStructuralMismatch, len(prices), len(dates))
	}

	var removed Removed

	// Parse dates, keeping positional alignment with prices
	points := make([]domain.PricePoint, 0, len(prices))
	for i, raw := range dates {
		d, ok := ParseDate(raw)
		if !ok {
			b.log.Warn().Int("index", i).Str("date", raw).Msg("Could not parse date, dropping point")
			removed.Unparseable++
			continue
		}
		points = append(points, domain.PricePoint{Date: d, Price: prices[i]})
	}

	if len(dates) > 0 && float64(len(points)) < MinParsedDateRatio*float64(len(dates)) {
		return Result{}, fmt.Errorf("%w: only %d of %d dates could be parsed",
			domain.ErrValidation, len(points), len(dates))
	}

	// (a) non-positive prices
	positive := points[:0]
	for _, p := range points {
		if !(p.Price > 0) || math.IsInf(p.Price, 0) {
			removed.NonPositive++
			continue
		}
		positive = append(positive, p)
	}

	// (b) duplicate dates, first seen wins
	seen := make(map[time.Time]struct{}, len(positive))
	unique := make([]domain.PricePoint, 0, len(positive))
	for _, p := range positive {
		if _, dup := seen[p.Date]; dup {
			removed.Duplicate++
			continue
		}
		seen[p.Date] = struct{}{}
		unique = append(unique, p)
	}

	// (c) chronological order
	slices.SortFunc(unique, func(a, b domain.PricePoint) int {
		return a.Date.Compare(b.Date)
	})

	// (d) single-pass outlier guard against the median
	median := medianPrice(unique)
	clean := unique
	if median > 0 {
		threshold := median * OutlierMedianMultiple
		clean = make([]domain.PricePoint, 0, len(unique))
		for _, p := range unique {
			if p.Price > threshold {
				removed.Outlier++
				continue
			}
			clean = append(clean, p)
		}
	}

	if len(clean) == 0 {
		return Result{Removed: removed}, fmt.Errorf("%w: no usable data (all %d points removed)",
			domain.ErrValidation, len(prices))
	}

	if n := removed.NonPositive + removed.Outlier + removed.Duplicate; n > 0 {
		b.log.Info().
			Int("non_positive", removed.NonPositive).
			Int("duplicates", removed.Duplicate).
			Int("outliers", removed.Outlier).
			Int("unparseable_dates", removed.Unparseable).
			Msg("Removed points during cleaning")
	}

	series := domain.NewPriceSeries(clean)
	b.log.Debug().
		Int("input", len(prices)).
		Int("clean", series.Len()).
		Time("first_date", series.First().Date).
		Time("last_date", series.Last().Date).
		Msg("Price series built")

	return Result{Series: series, Removed: removed, Median: median}, nil
}

// medianPrice returns the median price, averaging the two middle values for an even count
func medianPrice(points []domain.PricePoint) float64 {
	if len(points) == 0 {
		return 0
	}
	prices := make([]float64, len(points))
	for i, p := range points {
		prices[i] = p.Price
	}
	slices.Sort(prices)

	mid := len(prices) / 2
	if len(prices)%2 == 1 {
		return prices[mid]
	}
	return (prices[mid-1] + prices[mid]) / 2
}
