package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/aristath/tefas/internal/domain"
)

// Format is an export file format
type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
)

// ParseFormat accepts "json" or "csv"
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatJSON, FormatCSV:
		return Format(s), nil
	}
	return "", fmt.Errorf("%w: unknown export format %q (want json or csv)", domain.ErrValidation, s)
}

// ContentType returns the MIME type of the format
func (f Format) ContentType() string {
	if f == FormatCSV {
		return "text/csv"
	}
	return "application/json"
}

// ObjectName is the upload name of an export: <CODE>/<YYYY-MM-DD>.<format>,
// dated by the last price in the record.
func ObjectName(stats domain.FundStatistics, f Format) string {
	return fmt.Sprintf("%s/%s.%s", stats.FundCode, stats.LastDate.Format(time.DateOnly), f)
}

// Write serialises stats to w in the given format
func Write(w io.Writer, f Format, stats domain.FundStatistics) error {
	switch f {
	case FormatJSON:
		return WriteJSON(w, stats)
	case FormatCSV:
		return WriteCSV(w, stats)
	}
	return fmt.Errorf("%w: unknown export format %q", domain.ErrValidation, f)
}

// WriteJSON writes stats as one indented JSON object
func WriteJSON(w io.Writer, stats domain.FundStatistics) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(FromStatistics(stats)); err != nil {
		return fmt.Errorf("failed to encode statistics for %s: %w", stats.FundCode, err)
	}
	return nil
}

// WriteCSV writes a header row and one data row
func WriteCSV(w io.Writer, stats domain.FundStatistics) error {
	r := FromStatistics(stats)
	row := []string{
		r.FundCode,
		formatFloat(r.FirstPrice),
		formatFloat(r.LastPrice),
		formatFloat(r.MinPrice),
		formatFloat(r.MaxPrice),
		formatFloat(r.MeanPrice),
		strconv.Itoa(r.DataPoints),
		r.FirstDate,
		r.LastDate,
		formatOptional(r.TotalReturnPct),
		formatOptional(r.VolatilityPct),
		formatOptional(r.CAGRPct),
		formatOptional(r.SharpeRatio),
		formatOptional(r.Beta),
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(Columns); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}
	if err := cw.Write(row); err != nil {
		return fmt.Errorf("failed to write csv row for %s: %w", r.FundCode, err)
	}
	cw.Flush()
	return cw.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatOptional(v *float64) string {
	if v == nil {
		return ""
	}
	return formatFloat(*v)
}
