package renderer

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/aristath/tefas/internal/domain"
)

func TestRateCAGR(t *testing.T) {
	tests := []struct {
		pct  float64
		tier Tier
		note string
	}{
		{25, TierGood, "Excellent"},
		{20.01, TierGood, "Excellent"},
		{20, TierGood, "Very good"},
		{10.01, TierGood, "Very good"},
		{10, TierFair, "Positive"},
		{0.01, TierFair, "Positive"},
		{0, TierPoor, "Negative"},
		{-12, TierPoor, "Negative"},
	}
	for _, tt := range tests {
		a := RateCAGR(tt.pct)
		assert.Equal(t, tt.tier, a.Tier, "cagr %v", tt.pct)
		assert.Contains(t, a.Note, tt.note, "cagr %v", tt.pct)
	}
}

func TestRateVolatility(t *testing.T) {
	tests := []struct {
		pct  float64
		tier Tier
	}{
		{3, TierGood},
		{14.99, TierGood},
		{15, TierFair},
		{24.99, TierFair},
		{25, TierPoor},
		{60, TierPoor},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.tier, RateVolatility(tt.pct).Tier, "volatility %v", tt.pct)
	}
}

func TestRateSharpe(t *testing.T) {
	tests := []struct {
		ratio float64
		tier  Tier
	}{
		{2, TierGood},
		{1.01, TierGood},
		{1, TierFair},
		{0.51, TierFair},
		{0.5, TierPoor},
		{-0.3, TierPoor},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.tier, RateSharpe(tt.ratio).Tier, "sharpe %v", tt.ratio)
	}
}

func TestAssess_SkipsMissingMetrics(t *testing.T) {
	assert.Empty(t, Assess(domain.FundStatistics{TotalReturnPct: ptr(5)}))

	got := Assess(domain.FundStatistics{CAGRPct: ptr(12), SharpeRatio: ptr(0.2)})
	if assert.Len(t, got, 2) {
		assert.Equal(t, "CAGR", got[0].Metric)
		assert.Equal(t, "Sharpe ratio", got[1].Metric)
	}
}

func TestReportMarkdown_Assessment(t *testing.T) {
	md := ReportMarkdown(sampleReport())
	assert.Contains(t, md, "# AAK (Ak Portföy Konut Gayrimenkul)")
	assert.Contains(t, md, "## Assessment")
	assert.Contains(t, md, "| CAGR | fair | Positive: the fund made money |")
	assert.NotContains(t, md, "| Volatility |")

	r := sampleReport()
	r.Statistics.CAGRPct = nil
	assert.NotContains(t, ReportMarkdown(r), "## Assessment")
}

func TestCatalogMarkdown(t *testing.T) {
	md := CatalogMarkdown(domain.PopularFunds)

	assert.Contains(t, md, "| CPU | Garanti Portföy Teknoloji |")
	assert.Contains(t, md, "| GAH | Garanti Portföy Altın |")
	assert.Contains(t, md, "| AEF | Ak Portföy Enflasyon Korumalı |")
}
