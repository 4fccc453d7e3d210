// Package renderer turns analysis reports into markdown for the terminal.
package renderer

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/aristath/tefas/internal/domain"
	"github.com/aristath/tefas/internal/modules/series"
	"github.com/aristath/tefas/internal/services/analyzer"
)

// NotAvailable is printed in place of a metric that could not be computed
const NotAvailable = "not available"

const dayLayout = "2006-01-02"

// ReportMarkdown renders the full single-fund report
func ReportMarkdown(r analyzer.Report) string {
	var b strings.Builder
	s := r.Statistics

	if name, ok := domain.FundName(r.FundCode); ok {
		fmt.Fprintf(&b, "# %s (%s)\n\n", r.FundCode, escape(name))
	} else {
		fmt.Fprintf(&b, "# %s\n\n", r.FundCode)
	}
	fmt.Fprintf(&b, "%d data points from %s to %s (%d days)\n\n",
		s.DataPoints, s.FirstDate.Format(dayLayout), s.LastDate.Format(dayLayout), s.Days())

	fmt.Fprint(&b, "## Prices\n\n")
	fmt.Fprintln(&b, "| First | Last | Min | Max | Mean |")
	fmt.Fprintln(&b, "|---:|---:|---:|---:|---:|")
	fmt.Fprintf(&b, "| %.4f | %.4f | %.4f | %.4f | %.4f |\n\n",
		s.FirstPrice, s.LastPrice, s.MinPrice, s.MaxPrice, s.MeanPrice)

	fmt.Fprint(&b, "## Performance\n\n")
	fmt.Fprintln(&b, "| Metric | Value |")
	fmt.Fprintln(&b, "|:---|---:|")
	fmt.Fprintf(&b, "| Total return | %s |\n", Percent(s.TotalReturnPct))
	fmt.Fprintf(&b, "| Annualized volatility | %s |\n", Percent(s.VolatilityPct))
	fmt.Fprintf(&b, "| CAGR | %s |\n", Percent(s.CAGRPct))
	fmt.Fprintf(&b, "| Sharpe ratio | %s |\n", Ratio(s.SharpeRatio))
	fmt.Fprintf(&b, "| Beta | %s |\n", Ratio(s.Beta))
	fmt.Fprintln(&b)

	writeAssessment(&b, Assess(s))

	if len(r.Allocation) > 0 {
		fmt.Fprint(&b, "## Asset allocation\n\n")
		writeBreakdown(&b, "Asset", r.Allocation)
		fmt.Fprintf(&b, "| **Total** | **%.2f%%** |\n\n", r.Allocation.Sum())
	}

	if len(r.Benchmark) > 0 {
		fmt.Fprint(&b, "## Benchmark comparison\n\n")
		writeBreakdown(&b, "Label", r.Benchmark)
		fmt.Fprintln(&b)
	}

	if n := r.Removed.Total(); n > 0 {
		fmt.Fprintf(&b, "_%d points removed while cleaning: %d unparseable date, %d non-positive, %d duplicate, %d outlier._\n",
			n, r.Removed.Unparseable, r.Removed.NonPositive, r.Removed.Duplicate, r.Removed.Outlier)
		if r.Removed.Outlier > 0 && r.Median > 0 {
			fmt.Fprintf(&b, "\n_Outliers are prices above %.4f (%gx the median %.4f)._\n",
				r.Median*series.OutlierMedianMultiple, series.OutlierMedianMultiple, r.Median)
		}
	}

	return b.String()
}

func writeBreakdown[M ~map[string]float64](b *strings.Builder, heading string, m M) {
	fmt.Fprintf(b, "| %s | %% |\n", heading)
	fmt.Fprintln(b, "|:---|---:|")
	for _, k := range slices.Sorted(maps.Keys(m)) {
		fmt.Fprintf(b, "| %s | %.2f%% |\n", escape(k), m[k])
	}
}

// ComparisonMarkdown renders one row per fund in input order, followed by the failures
func ComparisonMarkdown(results []analyzer.Result) string {
	var b strings.Builder

	fmt.Fprint(&b, "# Fund comparison\n\n")
	fmt.Fprintln(&b, "| Fund | Last price | Total return | Volatility | CAGR | Sharpe | Beta | Points |")
	fmt.Fprintln(&b, "|:---|---:|---:|---:|---:|---:|---:|---:|")

	var failed []analyzer.Result
	for _, r := range results {
		if r.Err != nil || r.Report == nil {
			failed = append(failed, r)
			continue
		}
		s := r.Report.Statistics
		fmt.Fprintf(&b, "| %s | %.4f | %s | %s | %s | %s | %s | %d |\n",
			r.FundCode, s.LastPrice,
			Percent(s.TotalReturnPct), Percent(s.VolatilityPct), Percent(s.CAGRPct),
			Ratio(s.SharpeRatio), Ratio(s.Beta), s.DataPoints)
	}

	if len(failed) > 0 {
		fmt.Fprint(&b, "\n## Failed\n\n")
		for _, r := range failed {
			fmt.Fprintf(&b, "- **%s**: %s\n", r.FundCode, escape(errorText(r.Err)))
		}
	}

	return b.String()
}

// Percent formats a percentage metric, or NotAvailable when it is nil
func Percent(v *float64) string {
	if v == nil {
		return NotAvailable
	}
	return fmt.Sprintf("%.2f%%", *v)
}

// Ratio formats a unitless metric, or NotAvailable when it is nil
func Ratio(v *float64) string {
	if v == nil {
		return NotAvailable
	}
	return fmt.Sprintf("%.3f", *v)
}

func errorText(err error) string {
	if err == nil {
		return "no report"
	}
	return err.Error()
}

// escape keeps labels from breaking the table layout
func escape(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
