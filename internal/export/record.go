// Package export serialises FundStatistics records to JSON and CSV and
// optionally uploads the result to S3-compatible storage.
package export

import (
	"github.com/aristath/tefas/internal/domain"
)

// DateLayout is the timestamp format used for first_date and last_date
const DateLayout = "2006-01-02 15:04:05"

// Record is the flat, serialisable form of domain.FundStatistics.
// Nil metric pointers encode as JSON null and as empty CSV cells.
type Record struct {
	FundCode       string   `json:"fund_code"`
	FirstPrice     float64  `json:"first_price"`
	LastPrice      float64  `json:"last_price"`
	MinPrice       float64  `json:"min_price"`
	MaxPrice       float64  `json:"max_price"`
	MeanPrice      float64  `json:"mean_price"`
	DataPoints     int      `json:"data_points"`
	FirstDate      string   `json:"first_date"`
	LastDate       string   `json:"last_date"`
	TotalReturnPct *float64 `json:"total_return_pct"`
	VolatilityPct  *float64 `json:"volatility_pct"`
	CAGRPct        *float64 `json:"cagr_pct"`
	SharpeRatio    *float64 `json:"sharpe_ratio"`
	Beta           *float64 `json:"beta"`
}

// Columns lists the record keys in output order
var Columns = []string{
	"fund_code", "first_price", "last_price", "min_price", "max_price", "mean_price",
	"data_points", "first_date", "last_date",
	"total_return_pct", "volatility_pct", "cagr_pct", "sharpe_ratio", "beta",
}

// FromStatistics converts a statistics record into its export form
func FromStatistics(s domain.FundStatistics) Record {
	return Record{
		FundCode:       s.FundCode,
		FirstPrice:     s.FirstPrice,
		LastPrice:      s.LastPrice,
		MinPrice:       s.MinPrice,
		MaxPrice:       s.MaxPrice,
		MeanPrice:      s.MeanPrice,
		DataPoints:     s.DataPoints,
		FirstDate:      s.FirstDate.Format(DateLayout),
		LastDate:       s.LastDate.Format(DateLayout),
		TotalReturnPct: s.TotalReturnPct,
		VolatilityPct:  s.VolatilityPct,
		CAGRPct:        s.CAGRPct,
		SharpeRatio:    s.SharpeRatio,
		Beta:           s.Beta,
	}
}
