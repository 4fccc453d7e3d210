package renderer

import (
	"fmt"
	"strings"

	"github.com/aristath/tefas/internal/domain"
)

// Tier grades one metric
type Tier string

const (
	TierGood    Tier = "good"
	TierFair    Tier = "fair"
	TierPoor    Tier = "poor"
	TierUnrated Tier = ""
)

// Assessment is a graded comment on one metric
type Assessment struct {
	Metric string
	Tier   Tier
	Note   string
}

// RateCAGR grades annual growth: above 20% excellent, above 10% very good,
// above 0 positive, otherwise negative
func RateCAGR(pct float64) Assessment {
	a := Assessment{Metric: "CAGR"}
	switch {
	case pct > 20:
		a.Tier, a.Note = TierGood, "Excellent: more than 20% a year"
	case pct > 10:
		a.Tier, a.Note = TierGood, "Very good: more than 10% a year"
	case pct > 0:
		a.Tier, a.Note = TierFair, "Positive: the fund made money"
	default:
		a.Tier, a.Note = TierPoor, "Negative: the fund lost money"
	}
	return a
}

// RateVolatility grades annualized volatility: below 15% low, below 25% moderate
func RateVolatility(pct float64) Assessment {
	a := Assessment{Metric: "Volatility"}
	switch {
	case pct < 15:
		a.Tier, a.Note = TierGood, "Low risk"
	case pct < 25:
		a.Tier, a.Note = TierFair, "Moderate risk"
	default:
		a.Tier, a.Note = TierPoor, "High risk"
	}
	return a
}

// RateSharpe grades risk-adjusted return: above 1 good, above 0.5 acceptable
func RateSharpe(ratio float64) Assessment {
	a := Assessment{Metric: "Sharpe ratio"}
	switch {
	case ratio > 1:
		a.Tier, a.Note = TierGood, "Good return for the risk taken"
	case ratio > 0.5:
		a.Tier, a.Note = TierFair, "Acceptable return for the risk taken"
	default:
		a.Tier, a.Note = TierPoor, "Weak return for the risk taken"
	}
	return a
}

// Assess grades every metric that was computed; nil metrics are skipped
func Assess(s domain.FundStatistics) []Assessment {
	var out []Assessment
	if s.CAGRPct != nil {
		out = append(out, RateCAGR(*s.CAGRPct))
	}
	if s.VolatilityPct != nil {
		out = append(out, RateVolatility(*s.VolatilityPct))
	}
	if s.SharpeRatio != nil {
		out = append(out, RateSharpe(*s.SharpeRatio))
	}
	return out
}

func writeAssessment(b *strings.Builder, list []Assessment) {
	if len(list) == 0 {
		return
	}
	fmt.Fprint(b, "## Assessment\n\n")
	fmt.Fprintln(b, "| Metric | Rating | Comment |")
	fmt.Fprintln(b, "|:---|:---|:---|")
	for _, a := range list {
		fmt.Fprintf(b, "| %s | %s | %s |\n", a.Metric, a.Tier, a.Note)
	}
	fmt.Fprintln(b)
}

// CatalogMarkdown lists funds as a code/name table
func CatalogMarkdown(funds []domain.FundInfo) string {
	var b strings.Builder
	fmt.Fprint(&b, "# Popular TEFAS funds\n\n")
	fmt.Fprintln(&b, "| Code | Name |")
	fmt.Fprintln(&b, "|:---|:---|")
	for _, f := range funds {
		fmt.Fprintf(&b, "| %s | %s |\n", f.Code, escape(f.Name))
	}
	fmt.Fprint(&b, "\nExample: `tefas analyze CPU`, `tefas compare CPU AAK`\n")
	return b.String()
}
