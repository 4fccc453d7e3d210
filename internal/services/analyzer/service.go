// Package analyzer runs the per-fund pipeline: fetch the page, extract the chart
// blocks, build and clean the price series, parse the breakdowns and aggregate
// the statistics.
package analyzer

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/aristath/tefas/internal/clients/tefas"
	"github.com/aristath/tefas/internal/domain"
	"github.com/aristath/tefas/internal/modules/analytics"
	"github.com/aristath/tefas/internal/modules/breakdown"
	"github.com/aristath/tefas/internal/modules/extraction"
	"github.com/aristath/tefas/internal/modules/series"
	"github.com/aristath/tefas/internal/modules/statistics"
	"github.com/aristath/tefas/internal/utils"
)

// Window restricts the analysed series to [Start, End]. A zero bound is open.
type Window struct {
	Start time.Time
	End   time.Time
}

// IsZero reports whether the window leaves both sides open
func (w Window) IsZero() bool {
	return w.Start.IsZero() && w.End.IsZero()
}

// Config tunes the analyzer
type Config struct {
	RiskFreeRate  float64
	BenchmarkFund string // fund code whose series is used for beta; empty disables beta
	Workers       int    // maximum concurrent pipelines in Compare
	Window        Window
}

// Report is the full result of analysing one fund
type Report struct {
	FundCode   string
	Statistics domain.FundStatistics
	Series     domain.PriceSeries
	Allocation domain.AllocationMap
	Benchmark  domain.BenchmarkMap
	Removed    series.Removed
	// Median is the cleaned price median the outlier cutoff was derived from
	Median float64
}

// Result is one entry of a comparison. Exactly one of Report and Err is set.
type Result struct {
	FundCode string
	Report   *Report
	Err      error
}

// Service wires the pipeline stages together
type Service struct {
	fetcher    tefas.PageFetcher
	extractor  *extraction.Extractor
	builder    *series.Builder
	parser     *breakdown.Parser
	aggregator *statistics.Aggregator
	cfg        Config
	log        zerolog.Logger
}

// NewService creates an analyzer over the given fetcher
func NewService(fetcher tefas.PageFetcher, cfg Config, log zerolog.Logger) *Service {
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	if cfg.BenchmarkFund != "" {
		cfg.BenchmarkFund = domain.CleanFundCode(cfg.BenchmarkFund)
	}

	return &Service{
		fetcher:    fetcher,
		extractor:  extraction.NewExtractor(log),
		builder:    series.NewBuilder(log),
		parser:     breakdown.NewParser(log),
		aggregator: statistics.NewAggregator(log),
		cfg:        cfg,
		log:        log.With().Str("service", "analyzer").Logger(),
	}
}

// Analyze runs the pipeline for one fund using the configured window
func (s *Service) Analyze(ctx context.Context, code string) (Report, error) {
	return s.AnalyzeWithin(ctx, code, s.cfg.Window)
}

// AnalyzeWithin runs the pipeline for one fund restricted to w
func (s *Service) AnalyzeWithin(ctx context.Context, code string, w Window) (Report, error) {
	code, err := domain.NormalizeFundCode(code)
	if err != nil {
		return Report{}, err
	}
	bench := s.benchmarkSeries(ctx, []string{code})
	return s.analyze(ctx, code, w, bench)
}

// Compare analyses every fund concurrently, at most Workers at a time.
//
// A failing fund is recorded in its Result and never cancels the others.
// Results are returned in input order. The benchmark series is loaded once
// and shared by all pipelines.
func (s *Service) Compare(ctx context.Context, codes []string) ([]Result, error) {
	if len(codes) == 0 {
		return nil, fmt.Errorf("%w: no fund codes to compare", domain.ErrValidation)
	}
	defer utils.OperationTimer("compare", s.log)()

	results := make([]Result, len(codes))
	normalized := make([]string, 0, len(codes))
	for i, raw := range codes {
		code, err := domain.NormalizeFundCode(raw)
		results[i] = Result{FundCode: code, Err: err}
		if err != nil {
			results[i].FundCode = raw
			continue
		}
		normalized = append(normalized, code)
	}

	bench := s.benchmarkSeries(ctx, normalized)

	g := new(errgroup.Group)
	g.SetLimit(s.cfg.Workers)

	for i := range results {
		if results[i].Err != nil {
			continue
		}
		g.Go(func() error {
			report, err := s.analyze(ctx, results[i].FundCode, s.cfg.Window, bench)
			if err != nil {
				s.log.Warn().Err(err).Str("fund", results[i].FundCode).Msg("Fund analysis failed")
				results[i].Err = err
				return nil
			}
			results[i].Report = &report
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return results, err
	}
	return results, nil
}

func (s *Service) analyze(ctx context.Context, code string, w Window, bench *domain.PriceSeries) (Report, error) {
	log := s.log.With().Str("fund", code).Logger()
	defer utils.OperationTimer("analyze "+code, log)()

	page, err := s.fetch(ctx, code)
	if err != nil {
		return Report{}, err
	}

	blocks, err := s.extractor.ExtractAll(page)
	if err != nil {
		return Report{}, fmt.Errorf("%s: %w", code, err)
	}

	built, err := s.buildSeries(blocks)
	if err != nil {
		return Report{}, fmt.Errorf("%s: %w", code, err)
	}

	clean := built.Series
	if !w.IsZero() {
		clean = clean.Window(w.Start, w.End)
		if clean.IsEmpty() {
			return Report{}, fmt.Errorf("%w: %s: no data points inside the requested window", domain.ErrValidation, code)
		}
	}

	report := Report{
		FundCode:   code,
		Series:     clean,
		Allocation: domain.AllocationMap{},
		Benchmark:  domain.BenchmarkMap{},
		Removed:    built.Removed,
		Median:     built.Median,
	}

	if blocks.Allocation != nil {
		if m, err := s.parser.ParseAllocation(blocks.Allocation.Content); err != nil {
			log.Warn().Err(err).Msg("Asset allocation unavailable")
		} else {
			report.Allocation = m
		}
	}
	if blocks.Benchmark != nil {
		if m, err := s.parser.ParseBenchmark(blocks.Benchmark.Content); err != nil {
			log.Warn().Err(err).Msg("Benchmark comparison unavailable")
		} else {
			report.Benchmark = m
		}
	}

	// Beta of the benchmark against itself is always 1 and tells nothing
	opts := []statistics.Option{statistics.WithRiskFreeRate(s.cfg.RiskFreeRate)}
	if bench != nil && code != s.cfg.BenchmarkFund {
		opts = append(opts, statistics.WithBenchmark(*bench))
	}

	stats, err := s.aggregator.Aggregate(code, clean, opts...)
	if err != nil {
		return Report{}, err
	}
	report.Statistics = stats

	log.Info().
		Int("points", clean.Len()).
		Int("removed", built.Removed.Total()).
		Float64("median", built.Median).
		Msg("Fund analysed")

	return report, nil
}

func (s *Service) fetch(ctx context.Context, code string) (string, error) {
	page, err := s.fetcher.FetchPage(ctx, code)
	if err != nil {
		return "", fmt.Errorf("%w: failed to fetch page for %s: %w", domain.ErrFetch, code, err)
	}
	return page, nil
}

func (s *Service) buildSeries(blocks extraction.Blocks) (series.Result, error) {
	prices, err := extraction.ParsePriceList(blocks.Price.Content)
	if err != nil {
		return series.Result{}, err
	}
	dates := extraction.ParseCategoryList(blocks.Categories.Content)
	return s.builder.BuildWithReport(prices, dates)
}

// benchmarkSeries loads the configured benchmark fund. It returns nil when no
// benchmark is configured, when the benchmark is the only fund being analysed
// or when loading fails.
func (s *Service) benchmarkSeries(ctx context.Context, codes []string) *domain.PriceSeries {
	if s.cfg.BenchmarkFund == "" {
		return nil
	}
	if len(codes) == 1 && codes[0] == s.cfg.BenchmarkFund {
		return nil
	}

	log := s.log.With().Str("benchmark", s.cfg.BenchmarkFund).Logger()

	page, err := s.fetch(ctx, s.cfg.BenchmarkFund)
	if err != nil {
		log.Warn().Err(err).Msg("Benchmark fund unavailable, beta disabled")
		return nil
	}
	blocks, err := s.extractor.ExtractAll(page)
	if err != nil {
		log.Warn().Err(err).Msg("Benchmark fund unavailable, beta disabled")
		return nil
	}
	built, err := s.buildSeries(blocks)
	if err != nil {
		log.Warn().Err(err).Msg("Benchmark fund unavailable, beta disabled")
		return nil
	}
	if built.Series.Len() < analytics.MinDataPoints {
		log.Warn().Int("points", built.Series.Len()).Msg("Benchmark series too short, beta disabled")
		return nil
	}

	bench := built.Series
	return &bench
}
