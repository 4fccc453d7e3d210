package statistics

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/aristath/tefas/internal/domain"
)

// ErrSnapshotNotFound is returned when a fund has no stored snapshot
var ErrSnapshotNotFound = errors.New("snapshot not found")

// Snapshot is a stored analysis result for one fund at one point in time
type Snapshot struct {
	ID         string
	CapturedAt time.Time
	Statistics domain.FundStatistics
	Allocation domain.AllocationMap
	Benchmark  domain.BenchmarkMap
	Series     domain.PriceSeries
}

// Repository persists snapshots in the snapshots table
//
// Database: snapshots.db (snapshots table)
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewRepository creates a new snapshot repository
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repository", "snapshots").Logger(),
	}
}

const snapshotColumns = `id, captured_at, fund_code, first_date, last_date,
	first_price, last_price, min_price, max_price, mean_price, data_points,
	total_return_pct, volatility_pct, cagr_pct, sharpe_ratio, beta,
	allocation, benchmark, series`

// Save stores a snapshot and returns its id. A zero CapturedAt is set to now.
func (r *Repository) Save(ctx context.Context, snap Snapshot) (string, error) {
	if snap.ID == "" {
		snap.ID = uuid.New().String()
	}
	if snap.CapturedAt.IsZero() {
		snap.CapturedAt = time.Now()
	}

	blob, err := msgpack.Marshal(snap.Series.Points())
	if err != nil {
		return "", fmt.Errorf("failed to encode series for %s: %w", snap.Statistics.FundCode, err)
	}
	allocation, err := encodeMap(snap.Allocation)
	if err != nil {
		return "", fmt.Errorf("failed to encode allocation for %s: %w", snap.Statistics.FundCode, err)
	}
	benchmark, err := encodeMap(snap.Benchmark)
	if err != nil {
		return "", fmt.Errorf("failed to encode benchmark for %s: %w", snap.Statistics.FundCode, err)
	}

	s := snap.Statistics
	_, err = r.db.ExecContext(ctx, `INSERT INTO snapshots (`+snapshotColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		snap.ID,
		snap.CapturedAt.Unix(),
		s.FundCode,
		s.FirstDate.Unix(),
		s.LastDate.Unix(),
		s.FirstPrice,
		s.LastPrice,
		s.MinPrice,
		s.MaxPrice,
		s.MeanPrice,
		s.DataPoints,
		nullFloat(s.TotalReturnPct),
		nullFloat(s.VolatilityPct),
		nullFloat(s.CAGRPct),
		nullFloat(s.SharpeRatio),
		nullFloat(s.Beta),
		allocation,
		benchmark,
		blob,
	)
	if err != nil {
		return "", fmt.Errorf("failed to insert snapshot for %s: %w", s.FundCode, err)
	}

	r.log.Debug().
		Str("id", snap.ID).
		Str("fund", s.FundCode).
		Int("points", s.DataPoints).
		Msg("Snapshot saved")

	return snap.ID, nil
}

// Latest returns the most recent snapshot for a fund
func (r *Repository) Latest(ctx context.Context, fundCode string) (*Snapshot, error) {
	rows, err := r.query(ctx, `SELECT `+snapshotColumns+` FROM snapshots
		WHERE fund_code = ? ORDER BY captured_at DESC, rowid DESC LIMIT 1`, fundCode)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrSnapshotNotFound, fundCode)
	}
	return &rows[0], nil
}

// History returns up to limit snapshots for a fund, newest first.
// A limit of zero or less returns all of them.
func (r *Repository) History(ctx context.Context, fundCode string, limit int) ([]Snapshot, error) {
	if limit <= 0 {
		limit = -1 // SQLite: no limit
	}
	return r.query(ctx, `SELECT `+snapshotColumns+` FROM snapshots
		WHERE fund_code = ? ORDER BY captured_at DESC, rowid DESC LIMIT ?`, fundCode, limit)
}

// Funds returns every fund code that has at least one snapshot
func (r *Repository) Funds(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT DISTINCT fund_code FROM snapshots ORDER BY fund_code`)
	if err != nil {
		return nil, fmt.Errorf("failed to query funds: %w", err)
	}
	defer rows.Close()

	var codes []string
	for rows.Next() {
		var code string
		if err := rows.Scan(&code); err != nil {
			return nil, fmt.Errorf("failed to scan fund code: %w", err)
		}
		codes = append(codes, code)
	}
	return codes, rows.Err()
}

func (r *Repository) query(ctx context.Context, query string, args ...any) ([]Snapshot, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshots: %w", err)
	}
	defer rows.Close()

	var out []Snapshot
	for rows.Next() {
		snap, err := scanSnapshot(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, snap)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate snapshots: %w", err)
	}
	return out, nil
}

func scanSnapshot(rows *sql.Rows) (Snapshot, error) {
	var (
		snap                            Snapshot
		s                               domain.FundStatistics
		capturedAt, firstDate, lastDate int64
		totalReturn, volatility, cagr   sql.NullFloat64
		sharpe, beta                    sql.NullFloat64
		allocation, benchmark           sql.NullString
		blob                            []byte
	)

	err := rows.Scan(
		&snap.ID, &capturedAt, &s.FundCode, &firstDate, &lastDate,
		&s.FirstPrice, &s.LastPrice, &s.MinPrice, &s.MaxPrice, &s.MeanPrice, &s.DataPoints,
		&totalReturn, &volatility, &cagr, &sharpe, &beta,
		&allocation, &benchmark, &blob,
	)
	if err != nil {
		return Snapshot{}, fmt.Errorf("failed to scan snapshot: %w", err)
	}

	s.FirstDate = time.Unix(firstDate, 0).UTC()
	s.LastDate = time.Unix(lastDate, 0).UTC()
	s.TotalReturnPct = floatPtr(totalReturn)
	s.VolatilityPct = floatPtr(volatility)
	s.CAGRPct = floatPtr(cagr)
	s.SharpeRatio = floatPtr(sharpe)
	s.Beta = floatPtr(beta)

	snap.CapturedAt = time.Unix(capturedAt, 0).UTC()
	snap.Statistics = s

	var points []domain.PricePoint
	if err := msgpack.Unmarshal(blob, &points); err != nil {
		return Snapshot{}, fmt.Errorf("failed to decode series of snapshot %s: %w", snap.ID, err)
	}
	for i := range points {
		points[i].Date = points[i].Date.UTC()
	}
	snap.Series = domain.NewPriceSeries(points)

	if allocation.Valid {
		if err := json.Unmarshal([]byte(allocation.String), &snap.Allocation); err != nil {
			return Snapshot{}, fmt.Errorf("failed to decode allocation of snapshot %s: %w", snap.ID, err)
		}
	}
	if benchmark.Valid {
		if err := json.Unmarshal([]byte(benchmark.String), &snap.Benchmark); err != nil {
			return Snapshot{}, fmt.Errorf("failed to decode benchmark of snapshot %s: %w", snap.ID, err)
		}
	}

	return snap, nil
}

func encodeMap[M ~map[string]float64](m M) (sql.NullString, error) {
	if len(m) == 0 {
		return sql.NullString{}, nil
	}
	b, err := json.Marshal(m)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: string(b), Valid: true}, nil
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

func floatPtr(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}
