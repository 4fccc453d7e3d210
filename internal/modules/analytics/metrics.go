package analytics

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/aristath/tefas/internal/domain"
)

// TotalReturn returns (P_last - P_first) / P_first * 100.
// Requires at least two positive prices.
func TotalReturn(s domain.PriceSeries) (float64, error) {
	if err := validate(s, 2, "total return"); err != nil {
		return 0, err
	}

	first, last := s.First().Price, s.Last().Price
	return finite((last-first)/first*100, "total return")
}

// AnnualizedVolatility returns stdev(log returns) * sqrt(252) * 100.
// Requires at least MinDataPoints prices.
func AnnualizedVolatility(s domain.PriceSeries) (float64, error) {
	if err := validate(s, MinDataPoints, "volatility"); err != nil {
		return 0, err
	}

	returns := logReturns(s.Prices())
	daily := stat.StdDev(returns, nil)
	return finite(daily*math.Sqrt(TradingDaysPerYear)*100, "volatility")
}

// CAGR returns ((P_last/P_first)^(365.25/days) - 1) * 100 where days is the
// calendar span between the first and last date, so irregular sampling does
// not distort the result.
func CAGR(s domain.PriceSeries) (float64, error) {
	if err := validate(s, 2, "CAGR"); err != nil {
		return 0, err
	}

	days := elapsedDays(s.First().Date, s.Last().Date)
	if days <= 0 {
		return 0, fmt.Errorf("%w: CAGR needs a positive calendar span, got %d days", domain.ErrValidation, days)
	}

	ratio := s.Last().Price / s.First().Price
	years := float64(days) / DaysPerYear
	return finite((math.Pow(ratio, 1/years)-1)*100, "CAGR")
}

// SharpeRatio returns (annualized return - riskFree) / annualized volatility.
//
// Annualized return is exp(mean(log returns) * 252) - 1 and volatility is the
// decimal stdev of log returns times sqrt(252). riskFree is an annual decimal
// rate in [0, 1]. A zero-volatility series has no defined ratio and fails.
func SharpeRatio(s domain.PriceSeries, riskFree float64) (float64, error) {
	if err := validate(s, MinDataPoints, "Sharpe ratio"); err != nil {
		return 0, err
	}
	if math.IsNaN(riskFree) || riskFree < 0 || riskFree > 1 {
		return 0, fmt.Errorf("%w: risk-free rate %v must be a decimal between 0 and 1", domain.ErrValidation, riskFree)
	}
	if elapsedDays(s.First().Date, s.Last().Date) <= 0 {
		return 0, fmt.Errorf("%w: Sharpe ratio needs a positive calendar span", domain.ErrValidation)
	}

	returns := logReturns(s.Prices())
	mean, std := stat.MeanStdDev(returns, nil)

	annualReturn := math.Exp(mean*TradingDaysPerYear) - 1
	annualVol := std * math.Sqrt(TradingDaysPerYear)

	if annualVol == 0 {
		return 0, fmt.Errorf("%w: Sharpe ratio undefined for zero volatility", domain.ErrValidation)
	}
	if math.IsNaN(annualReturn) || math.IsNaN(annualVol) {
		return 0, fmt.Errorf("%w: Sharpe ratio inputs are not numbers", domain.ErrComputation)
	}

	return finite((annualReturn-riskFree)/annualVol, "Sharpe ratio")
}

// Beta returns cov(r_fund, r_bench) / var(r_bench) over the dates both series share.
//
// The series are intersected by date, converted to log returns, and the return
// windows are truncated from the front to equal length. Covariance and variance
// use the same (n-1) estimator, so a series against itself has beta 1.
func Beta(fund, benchmark domain.PriceSeries) (float64, error) {
	if err := validate(fund, MinDataPoints, "beta (fund)"); err != nil {
		return 0, err
	}
	if err := validate(benchmark, MinDataPoints, "beta (benchmark)"); err != nil {
		return 0, err
	}

	fundPrices, benchPrices := alignByDate(fund, benchmark)
	if len(fundPrices) < MinDataPoints {
		return 0, fmt.Errorf("%w: beta needs at least %d overlapping data points, got %d",
			domain.ErrValidation, MinDataPoints, len(fundPrices))
	}

	fundReturns := logReturns(fundPrices)
	benchReturns := logReturns(benchPrices)

	n := min(len(fundReturns), len(benchReturns))
	if n < 2 {
		return 0, fmt.Errorf("%w: insufficient return data for beta", domain.ErrValidation)
	}
	fundReturns = fundReturns[len(fundReturns)-n:]
	benchReturns = benchReturns[len(benchReturns)-n:]

	variance := stat.Variance(benchReturns, nil)
	if variance == 0 {
		return 0, fmt.Errorf("%w: benchmark has zero variance", domain.ErrValidation)
	}
	covariance := stat.Covariance(fundReturns, benchReturns, nil)
	if math.IsNaN(covariance) || math.IsNaN(variance) {
		return 0, fmt.Errorf("%w: beta covariance or variance is not a number", domain.ErrComputation)
	}

	return finite(covariance/variance, "beta")
}

// alignByDate returns the prices of both series on the dates they share, in date order
func alignByDate(a, b domain.PriceSeries) ([]float64, []float64) {
	index := make(map[int64]float64, b.Len())
	for i := 0; i < b.Len(); i++ {
		p := b.At(i)
		index[p.Date.Unix()] = p.Price
	}

	var left, right []float64
	for i := 0; i < a.Len(); i++ {
		p := a.At(i)
		if bp, ok := index[p.Date.Unix()]; ok {
			left = append(left, p.Price)
			right = append(right, bp)
		}
	}
	return left, right
}
