package extraction

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/tefas/internal/domain"
)

func TestParsePriceList(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		expected []float64
	}{
		{"simple", "100,102,98,105", []float64{100, 102, 98, 105}},
		{"whitespace", " 1.5 ,\n 2.25 ", []float64{1.5, 2.25}},
		{"trailing comma", "1,2,", []float64{1, 2}},
		{"negative and zero", "0,-1,3", []float64{0, -1, 3}},
		{"empty", "  ", []float64{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParsePriceList(tt.content)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestParsePriceList_Malformed(t *testing.T) {
	for _, content := range []string{"1,,2", "1.2.3", "1,abc"} {
		t.Run(content, func(t *testing.T) {
			_, err := ParsePriceList(content)
			assert.ErrorIs(t, err, domain.ErrStructuralMismatch)
		})
	}
}

func TestParseCategoryList(t *testing.T) {
	assert.Equal(t,
		[]string{"01.01.2024", "02.01.2024"},
		ParseCategoryList(`"01.01.2024", "02.01.2024"`))
	assert.Equal(t, []string{"a", "b"}, ParseCategoryList(`'a','b',`))
	assert.Equal(t, []string{}, ParseCategoryList(""))
}
