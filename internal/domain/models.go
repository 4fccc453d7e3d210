// Package domain provides core domain models and types.
package domain

import (
	"slices"
	"time"
)

// BlockKind identifies one of the data blocks embedded in a fund page
type BlockKind string

const (
	// BlockPrice is the numeric price array of the price chart
	BlockPrice BlockKind = "price"
	// BlockCategories is the date axis of the price chart
	BlockCategories BlockKind = "categories"
	// BlockAllocation is the asset allocation pie chart object
	BlockAllocation BlockKind = "allocation"
	// BlockBenchmark is the benchmark comparison column chart object
	BlockBenchmark BlockKind = "benchmark"
)

// RawBlock is a labeled substring of page text
type RawBlock struct {
	Kind    BlockKind
	Content string
}

// PricePoint is a single dated price. Price is always > 0 inside a cleaned series.
type PricePoint struct {
	Date  time.Time `json:"date" msgpack:"d"`
	Price float64   `json:"price" msgpack:"p"`
}

// PriceSeries is an ordered, immutable sequence of price points.
// Points are kept sorted ascending by date; the zero value is an empty series.
type PriceSeries struct {
	points []PricePoint
}

// NewPriceSeries builds a series from points. The slice is copied and
// stable-sorted by date, so callers can pass points in any order.
// No cleaning is applied here; see the series module for that.
func NewPriceSeries(points []PricePoint) PriceSeries {
	cp := slices.Clone(points)
	slices.SortStableFunc(cp, func(a, b PricePoint) int {
		return a.Date.Compare(b.Date)
	})
	return PriceSeries{points: cp}
}

// Len returns the number of points
func (s PriceSeries) Len() int { return len(s.points) }

// IsEmpty reports whether the series has no points
func (s PriceSeries) IsEmpty() bool { return len(s.points) == 0 }

// At returns the i-th point
func (s PriceSeries) At(i int) PricePoint { return s.points[i] }

// First returns the earliest point. Panics on an empty series.
func (s PriceSeries) First() PricePoint { return s.points[0] }

// Last returns the latest point. Panics on an empty series.
func (s PriceSeries) Last() PricePoint { return s.points[len(s.points)-1] }

// Points returns a copy of the underlying points
func (s PriceSeries) Points() []PricePoint { return slices.Clone(s.points) }

// Prices returns the price column in chronological order
func (s PriceSeries) Prices() []float64 {
	out := make([]float64, len(s.points))
	for i, p := range s.points {
		out[i] = p.Price
	}
	return out
}

// Window returns the points whose date lies within [start, end].
// A zero start or end leaves that side open.
func (s PriceSeries) Window(start, end time.Time) PriceSeries {
	out := make([]PricePoint, 0, len(s.points))
	for _, p := range s.points {
		if !start.IsZero() && p.Date.Before(start) {
			continue
		}
		if !end.IsZero() && p.Date.After(end) {
			continue
		}
		out = append(out, p)
	}
	return PriceSeries{points: out}
}

// AllocationMap maps an asset class label to its percentage of the fund
type AllocationMap map[string]float64

// Sum returns the total percentage across all asset classes
func (m AllocationMap) Sum() float64 {
	total := 0.0
	for _, v := range m {
		total += v
	}
	return total
}

// BenchmarkMap maps a benchmark label to a signed return percentage
type BenchmarkMap map[string]float64

// FundStatistics is the aggregated report record for one fund series.
// The anchor facts are always present; each metric is nil when it could not be computed.
type FundStatistics struct {
	FundCode   string
	FirstPrice float64
	LastPrice  float64
	MinPrice   float64
	MaxPrice   float64
	MeanPrice  float64
	DataPoints int
	FirstDate  time.Time
	LastDate   time.Time

	TotalReturnPct *float64
	VolatilityPct  *float64
	CAGRPct        *float64
	SharpeRatio    *float64
	Beta           *float64 // only when a benchmark series was supplied
}

// Days returns the calendar days between the first and the last date
func (f FundStatistics) Days() int {
	return int(f.LastDate.Sub(f.FirstDate).Hours() / 24)
}
