package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestNewPriceSeries_SortsAndCopies(t *testing.T) {
	points := []PricePoint{
		{Date: day(2024, 1, 3), Price: 3},
		{Date: day(2024, 1, 1), Price: 1},
		{Date: day(2024, 1, 2), Price: 2},
	}

	s := NewPriceSeries(points)
	require.Equal(t, 3, s.Len())
	assert.Equal(t, []float64{1, 2, 3}, s.Prices())
	assert.Equal(t, day(2024, 1, 1), s.First().Date)
	assert.Equal(t, day(2024, 1, 3), s.Last().Date)

	// Mutating the input must not leak into the series
	points[0].Price = 999
	assert.Equal(t, []float64{1, 2, 3}, s.Prices())

	// Nor mutating the copy handed out
	out := s.Points()
	out[0].Price = 999
	assert.Equal(t, 1.0, s.At(0).Price)
}

func TestPriceSeries_Window(t *testing.T) {
	s := NewPriceSeries([]PricePoint{
		{Date: day(2024, 1, 1), Price: 1},
		{Date: day(2024, 2, 1), Price: 2},
		{Date: day(2024, 3, 1), Price: 3},
		{Date: day(2024, 4, 1), Price: 4},
	})

	tests := []struct {
		name       string
		start, end time.Time
		expected   []float64
	}{
		{"open both sides", time.Time{}, time.Time{}, []float64{1, 2, 3, 4}},
		{"inclusive bounds", day(2024, 2, 1), day(2024, 3, 1), []float64{2, 3}},
		{"open end", day(2024, 3, 1), time.Time{}, []float64{3, 4}},
		{"open start", time.Time{}, day(2024, 1, 15), []float64{1}},
		{"empty range", day(2025, 1, 1), time.Time{}, []float64{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, s.Window(tt.start, tt.end).Prices())
		})
	}
}

func TestPriceSeries_ZeroValue(t *testing.T) {
	var s PriceSeries
	assert.True(t, s.IsEmpty())
	assert.Equal(t, 0, s.Len())
	assert.Empty(t, s.Prices())
}

func TestAllocationMap_Sum(t *testing.T) {
	m := AllocationMap{"Hisse": 60, "Tahvil": 40}
	assert.InDelta(t, 100.0, m.Sum(), 1e-9)
	assert.Equal(t, 0.0, AllocationMap{}.Sum())
}

func TestFundStatistics_Days(t *testing.T) {
	f := FundStatistics{FirstDate: day(2023, 1, 1), LastDate: day(2024, 1, 1)}
	assert.Equal(t, 365, f.Days())
}
