package renderer

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"

	"github.com/aristath/tefas/internal/modules/statistics"
)

// HistoryMarkdown renders stored snapshots of one fund, newest first
func HistoryMarkdown(code string, snaps []statistics.Snapshot) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s history\n\n", code)
	if len(snaps) == 0 {
		fmt.Fprintln(&b, "No snapshots stored yet.")
		return b.String()
	}

	fmt.Fprintln(&b, "| Captured | Last date | Last price | Total return | Volatility | CAGR | Sharpe | Beta |")
	fmt.Fprintln(&b, "|:---|:---|---:|---:|---:|---:|---:|---:|")
	for _, snap := range snaps {
		s := snap.Statistics
		fmt.Fprintf(&b, "| %s | %s | %.4f | %s | %s | %s | %s | %s |\n",
			snap.CapturedAt.Format("2006-01-02 15:04"), s.LastDate.Format(dayLayout), s.LastPrice,
			Percent(s.TotalReturnPct), Percent(s.VolatilityPct), Percent(s.CAGRPct),
			Ratio(s.SharpeRatio), Ratio(s.Beta))
	}

	return b.String()
}

// Terminal renders markdown for an ANSI terminal. When styling fails the
// plain markdown is returned, which is still readable.
func Terminal(md string, width int) string {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return md
	}
	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return out
}
