package series

import (
	"fmt"
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/tefas/internal/domain"
)

func newTestBuilder() *Builder {
	return NewBuilder(zerolog.Nop())
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestBuild_Scenario(t *testing.T) {
	s, err := newTestBuilder().Build(
		[]float64{100, 102, 98, 105},
		[]string{"01.01.2024", "02.01.2024", "03.01.2024", "04.01.2024"},
	)
	require.NoError(t, err)
	assert.Equal(t, 4, s.Len())
	assert.Equal(t, []float64{100, 102, 98, 105}, s.Prices())
	assert.Equal(t, day(2024, 1, 1), s.First().Date)
	assert.Equal(t, day(2024, 1, 4), s.Last().Date)
}

func TestBuild_LengthMismatch(t *testing.T) {
	_, err := newTestBuilder().Build(
		[]float64{1, 2, 3, 4, 5},
		[]string{"01.01.2024", "02.01.2024", "03.01.2024", "04.01.2024"},
	)
	assert.ErrorIs(t, err, domain.ErrStructuralMismatch)
	assert.NotErrorIs(t, err, domain.ErrValidation)
}

func TestBuild_AllZero(t *testing.T) {
	res, err := newTestBuilder().BuildWithReport(
		[]float64{0, 0, 0},
		[]string{"01.01.2024", "02.01.2024", "03.01.2024"},
	)
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.NotErrorIs(t, err, domain.ErrStructuralMismatch)
	assert.Equal(t, 0, res.Series.Len())
	assert.Equal(t, 3, res.Removed.NonPositive)
}

func TestBuild_Empty(t *testing.T) {
	_, err := newTestBuilder().Build(nil, nil)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestBuild_DropsNonPositiveAndNaN(t *testing.T) {
	res, err := newTestBuilder().BuildWithReport(
		[]float64{0, 1, -2, math.NaN(), 3, math.Inf(1)},
		[]string{"2024-01-01", "2024-01-02", "2024-01-03", "2024-01-04", "2024-01-05", "2024-01-06"},
	)
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 3}, res.Series.Prices())
	assert.Equal(t, 4, res.Removed.NonPositive)
}

func TestBuild_DuplicateDatesFirstSeenWins(t *testing.T) {
	res, err := newTestBuilder().BuildWithReport(
		[]float64{1, 2, 3},
		[]string{"01.01.2024", "01.01.2024", "02.01.2024"},
	)
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 3}, res.Series.Prices())
	assert.Equal(t, 1, res.Removed.Duplicate)
}

func TestBuild_DuplicateAfterNonPositive(t *testing.T) {
	// The zero is removed before de-duplication, so the later point survives
	s, err := newTestBuilder().Build(
		[]float64{0, 2, 3},
		[]string{"01.01.2024", "01.01.2024", "02.01.2024"},
	)
	require.NoError(t, err)
	assert.Equal(t, []float64{2, 3}, s.Prices())
}

func TestBuild_SortsChronologically(t *testing.T) {
	s, err := newTestBuilder().Build(
		[]float64{3, 1, 2},
		[]string{"03.01.2024", "01.01.2024", "02.01.2024"},
	)
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2, 3}, s.Prices())
}

func TestBuild_OutlierBoundary(t *testing.T) {
	dates := []string{"01.01.2024", "02.01.2024", "03.01.2024", "04.01.2024"}

	t.Run("exactly 10x median is kept", func(t *testing.T) {
		res, err := newTestBuilder().BuildWithReport([]float64{1, 1, 1, 10}, dates)
		require.NoError(t, err)
		assert.Equal(t, 1.0, res.Median)
		assert.Equal(t, 4, res.Series.Len())
		assert.Equal(t, 0, res.Removed.Outlier)
	})

	t.Run("above 10x median is removed", func(t *testing.T) {
		res, err := newTestBuilder().BuildWithReport([]float64{1, 1, 1, 10.000001}, dates)
		require.NoError(t, err)
		assert.Equal(t, []float64{1, 1, 1}, res.Series.Prices())
		assert.Equal(t, 1, res.Removed.Outlier)
	})

	t.Run("single pass, median not recomputed", func(t *testing.T) {
		// median of {1,2,3,29,1000} is 3: 1000 goes, 29 stays even though a
		// second pass over the survivors (median 2.5) would drop it
		res, err := newTestBuilder().BuildWithReport(
			[]float64{1, 2, 3, 29, 1000},
			append(dates, "05.01.2024"),
		)
		require.NoError(t, err)
		assert.Equal(t, []float64{1, 2, 3, 29}, res.Series.Prices())
	})
}

func TestBuild_DateFormats(t *testing.T) {
	s, err := newTestBuilder().Build(
		[]float64{1, 2, 3, 4},
		[]string{"01.01.2024", "2024-01-02", "2024-01-03T00:00:00", "04/01/2024"},
	)
	require.NoError(t, err)
	assert.Equal(t, 4, s.Len())
	assert.Equal(t, day(2024, 1, 4), s.Last().Date)
}

func TestBuild_UnparseableDates(t *testing.T) {
	t.Run("within tolerance", func(t *testing.T) {
		res, err := newTestBuilder().BuildWithReport(
			[]float64{1, 2, 3, 4, 5},
			[]string{"01.01.2024", "bad", "03.01.2024", "04.01.2024", "05.01.2024"},
		)
		require.NoError(t, err)
		assert.Equal(t, []float64{1, 3, 4, 5}, res.Series.Prices())
		assert.Equal(t, 1, res.Removed.Unparseable)
	})

	t.Run("too many failures reject the batch", func(t *testing.T) {
		_, err := newTestBuilder().Build(
			[]float64{1, 2, 3, 4, 5},
			[]string{"01.01.2024", "bad", "worse", "04.01.2024", "05.01.2024"},
		)
		assert.ErrorIs(t, err, domain.ErrValidation)
	})
}

func TestBuild_InvariantsHoldForShuffledInput(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for run := 0; run < 20; run++ {
		n := 50 + rng.Intn(50)
		prices := make([]float64, n)
		dates := make([]string, n)
		for i := range prices {
			prices[i] = rng.Float64()*20 - 2 // some non-positive values
			dates[i] = day(2024, 1, 1).AddDate(0, 0, rng.Intn(n)).Format("02.01.2006")
		}

		s, err := newTestBuilder().Build(prices, dates)
		require.NoError(t, err, fmt.Sprintf("run %d", run))

		for i := 0; i < s.Len(); i++ {
			assert.Greater(t, s.At(i).Price, 0.0)
			if i > 0 {
				assert.True(t, s.At(i).Date.After(s.At(i-1).Date), "strictly increasing dates")
			}
		}
	}
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		in       string
		expected time.Time
		ok       bool
	}{
		{"31.12.2023", day(2023, 12, 31), true},
		{" 2023-12-31 ", day(2023, 12, 31), true},
		{"2023-12-31T15:04:05", day(2023, 12, 31), true},
		{"31/12/2023", day(2023, 12, 31), true},
		{"12/31/2023", time.Time{}, false},
		{"", time.Time{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseDate(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.expected, got)
		})
	}
}
