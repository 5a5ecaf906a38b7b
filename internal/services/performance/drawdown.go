package performance

import (
	"fmt"
	"time"

	"PerfScope/internal/domain/models"
)

// RunningMax returns the cumulative maximum of the prices.
func RunningMax(prices models.PriceSeries) []float64 {
	out := make([]float64, len(prices))
	for i, p := range prices {
		if i == 0 || p.Value > out[i-1] {
			out[i] = p.Value
			continue
		}
		out[i] = out[i-1]
	}
	return out
}

// Drawdown computes P_t / max(P_0..P_t) - 1 for every point.
func Drawdown(prices models.PriceSeries) (models.DrawdownSeries, error) {
	if len(prices) == 0 {
		return nil, fmt.Errorf("%w: drawdown of empty series", models.ErrInsufficientData)
	}
	peaks := RunningMax(prices)
	out := make(models.DrawdownSeries, len(prices))
	for i, p := range prices {
		dd := p.Value/peaks[i] - 1
		if dd > 0 {
			dd = 0
		}
		out[i] = models.Point{Date: p.Date, Value: dd}
	}
	return out, nil
}

// MaxDrawdown returns the minimum of the drawdown series and its date.
// Ties resolve to the earliest date.
func MaxDrawdown(dd models.DrawdownSeries) (float64, time.Time, error) {
	if len(dd) == 0 {
		return 0, time.Time{}, fmt.Errorf("%w: max drawdown of empty series", models.ErrInsufficientData)
	}
	worst := dd[0]
	for _, p := range dd[1:] {
		if p.Value < worst.Value {
			worst = p
		}
	}
	return worst.Value, worst.Date, nil
}

// PeakBefore returns the date at which the running maximum in effect at
// trough was first reached.
func PeakBefore(prices models.PriceSeries, peaks []float64, trough time.Time) (time.Time, bool) {
	idx := indexOf(prices, trough)
	if idx < 0 {
		return time.Time{}, false
	}
	for i := 0; i <= idx; i++ {
		if prices[i].Value == peaks[idx] {
			return prices[i].Date, true
		}
	}
	return time.Time{}, false
}

// RecoveryPeriod scans forward from the trough (inclusive) for the first price
// at or above the running maximum recorded at the trough. The second result is
// false while the drawdown has not been recovered, which is a valid state.
func RecoveryPeriod(prices models.PriceSeries, peaks []float64, trough time.Time) (models.Recovery, bool) {
	idx := indexOf(prices, trough)
	if idx < 0 || idx >= len(peaks) {
		return models.Recovery{}, false
	}
	target := peaks[idx]
	for _, p := range prices[idx:] {
		if p.Value >= target {
			return models.Recovery{Date: p.Date, Days: calendarDays(trough, p.Date)}, true
		}
	}
	return models.Recovery{}, false
}

// RecoveryMonths converts a recovery period in days to average calendar months.
func RecoveryMonths(days int) float64 { return float64(days) / daysPerMonth }

func indexOf(prices models.PriceSeries, date time.Time) int {
	for i, p := range prices {
		if p.Date.Equal(date) {
			return i
		}
	}
	return -1
}

func calendarDays(from, to time.Time) int {
	return int(to.Sub(from).Round(time.Hour).Hours() / 24)
}
