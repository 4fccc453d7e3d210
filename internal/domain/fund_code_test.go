package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanFundCode(t *testing.T) {
	tests := []struct {
		in, expected string
	}{
		{"cpu", "CPU"},
		{"  aak ", "AAK"},
		{"g-a.h", "GAH"},
		{"", ""},
		{"çpu", "PU"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.expected, CleanFundCode(tt.in))
		})
	}
}

func TestValidFundCode(t *testing.T) {
	assert.True(t, ValidFundCode("CPU"))
	assert.True(t, ValidFundCode("A1"))
	assert.True(t, ValidFundCode("ABCDE"))
	assert.False(t, ValidFundCode("A"))
	assert.False(t, ValidFundCode("ABCDEF"))
	assert.False(t, ValidFundCode("cpu"))
	assert.False(t, ValidFundCode("C-U"))
}

func TestNormalizeFundCode(t *testing.T) {
	code, err := NormalizeFundCode(" cpu ")
	require.NoError(t, err)
	assert.Equal(t, "CPU", code)

	_, err = NormalizeFundCode("x")
	assert.ErrorIs(t, err, ErrInvalidFundCode)

	_, err = NormalizeFundCode("toolong")
	assert.ErrorIs(t, err, ErrInvalidFundCode)
}

func TestPopularFunds(t *testing.T) {
	seen := map[string]bool{}
	for _, f := range PopularFunds {
		assert.True(t, ValidFundCode(f.Code), f.Code)
		assert.NotEmpty(t, f.Name, f.Code)
		assert.False(t, seen[f.Code], "duplicate %s", f.Code)
		seen[f.Code] = true
	}
}

func TestFundName(t *testing.T) {
	tests := []struct {
		code string
		want string
		ok   bool
	}{
		{"CPU", "Garanti Portföy Teknoloji", true},
		{" gah ", "Garanti Portföy Altın", true},
		{"ZZZ", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			name, ok := FundName(tt.code)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, name)
		})
	}
}
