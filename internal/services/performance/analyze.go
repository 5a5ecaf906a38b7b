package performance

import (
	"fmt"
	"time"

	"PerfScope/internal/domain/models"
)

// Options tune what Analyze attaches to the report.
type Options struct {
	IncludeSeries bool
}

// Analyze runs the full metrics pipeline for one instrument over [start, end].
func Analyze(ticker string, prices models.PriceSeries, start, end time.Time, opts Options) (*models.MetricsReport, error) {
	if err := prices.Validate(); err != nil {
		return nil, err
	}
	returns, err := Returns(prices)
	if err != nil {
		return nil, err
	}
	cagr, err := CAGR(prices, start, end)
	if err != nil {
		return nil, fmt.Errorf("cagr: %w", err)
	}
	vol, err := AnnualizedVolatility(returns)
	if err != nil {
		return nil, fmt.Errorf("volatility: %w", err)
	}
	dd, err := Drawdown(prices)
	if err != nil {
		return nil, fmt.Errorf("drawdown: %w", err)
	}
	maxDD, troughDate, err := MaxDrawdown(dd)
	if err != nil {
		return nil, fmt.Errorf("max drawdown: %w", err)
	}
	peaks := RunningMax(prices)
	peakDate, _ := PeakBefore(prices, peaks, troughDate)

	monthly := Resample(returns, Monthly)
	report := &models.MetricsReport{
		Ticker:               ticker,
		Start:                start,
		End:                  end,
		Observations:         len(prices),
		FirstPrice:           prices.First().Value,
		LastPrice:            prices.Last().Value,
		TotalReturn:          prices.Last().Value/prices.First().Value - 1,
		CAGR:                 cagr,
		AnnualizedVolatility: vol,
		MaxDrawdown:          maxDD,
		MaxDrawdownDate:      troughDate,
		PeakDate:             peakDate,
		AnnualReturns:        Resample(returns, Annual),
		MonthlyReturns:       monthly,
		Seasonality:          SeasonalityAverage(monthly),
	}
	if rec, ok := RecoveryPeriod(prices, peaks, troughDate); ok {
		date, days, months := rec.Date, rec.Days, RecoveryMonths(rec.Days)
		report.RecoveryDate = &date
		report.RecoveryDays = &days
		report.RecoveryMonths = &months
	}
	if opts.IncludeSeries {
		report.Prices = append(models.PriceSeries(nil), prices...)
		report.Drawdown = dd
	}
	return report, nil
}
