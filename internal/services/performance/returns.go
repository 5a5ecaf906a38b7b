// Package performance turns a daily price series into the performance
// statistics of a MetricsReport. Every function is pure.
package performance

import (
	"fmt"
	"math"
	"time"

	"PerfScope/internal/domain/models"
	xutil "PerfScope/pkg/util"

	"gonum.org/v1/gonum/stat"
)

const (
	// TradingDaysPerYear annualizes daily volatility.
	TradingDaysPerYear = 252
	// secondsPerYear uses the Julian year so leap days average out.
	secondsPerYear = 365.25 * 24 * 3600
	// daysPerMonth converts a recovery period in days to months.
	daysPerMonth = 365.25 / 12
)

// Returns computes simple returns r_t = P_t / P_{t-1} - 1.
// Each return is dated with the later of the two prices.
func Returns(prices models.PriceSeries) (models.ReturnSeries, error) {
	if len(prices) < 2 {
		return nil, fmt.Errorf("%w: returns need 2 prices, got %d", models.ErrInsufficientData, len(prices))
	}
	out := make(models.ReturnSeries, 0, len(prices)-1)
	for i := 1; i < len(prices); i++ {
		prev := prices[i-1].Value
		if prev == 0 {
			return nil, fmt.Errorf("%w: zero price at %s", models.ErrInvalidSeries, prices[i-1].Date.Format(xutil.DateLayout))
		}
		out = append(out, models.Point{
			Date:  prices[i].Date,
			Value: (prices[i].Value - prev) / prev,
		})
	}
	return out, nil
}

// CAGR computes (last/first)^(1/years) - 1 where years is the elapsed time
// between start and end measured in Julian years.
func CAGR(prices models.PriceSeries, start, end time.Time) (float64, error) {
	if len(prices) < 2 {
		return 0, fmt.Errorf("%w: cagr needs 2 prices, got %d", models.ErrInsufficientData, len(prices))
	}
	years := end.Sub(start).Seconds() / secondsPerYear
	if years <= 0 {
		return 0, fmt.Errorf("%w: elapsed time %s is not positive", models.ErrInvalidRange, end.Sub(start))
	}
	first := prices.First().Value
	if first <= 0 {
		return 0, fmt.Errorf("%w: starting price %v is not positive", models.ErrInvalidRange, first)
	}
	ratio := prices.Last().Value / first
	if ratio < 0 {
		return 0, fmt.Errorf("%w: negative growth ratio %v", models.ErrInvalidRange, ratio)
	}
	cagr := math.Pow(ratio, 1/years) - 1
	if math.IsNaN(cagr) || math.IsInf(cagr, 0) {
		return 0, fmt.Errorf("%w: cagr not finite over %.6f years", models.ErrInvalidRange, years)
	}
	return cagr, nil
}

// AnnualizedVolatility is the population standard deviation of the returns
// scaled by sqrt(252).
func AnnualizedVolatility(returns models.ReturnSeries) (float64, error) {
	if len(returns) == 0 {
		return 0, fmt.Errorf("%w: volatility needs at least 1 return", models.ErrInsufficientData)
	}
	_, std := stat.PopMeanStdDev(returns.Values(), nil)
	return std * math.Sqrt(TradingDaysPerYear), nil
}
