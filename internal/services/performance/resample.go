package performance

import (
	"time"

	"PerfScope/internal/domain/models"
)

// Period is a calendar bucket used by Resample.
type Period int

const (
	Monthly Period = iota
	Annual
)

func (p Period) String() string {
	switch p {
	case Monthly:
		return "monthly"
	case Annual:
		return "annual"
	default:
		return "unknown"
	}
}

// PeriodEnd returns the last calendar day of the period containing t,
// in t's location.
func (p Period) PeriodEnd(t time.Time) time.Time {
	y, m, _ := t.Date()
	switch p {
	case Annual:
		return time.Date(y, time.December, 31, 0, 0, 0, 0, t.Location())
	default:
		return time.Date(y, m+1, 0, 0, 0, 0, 0, t.Location())
	}
}

// Resample sums simple returns inside each calendar month or year.
// Periods without observations are omitted; callers that need a dense axis
// fill the gaps themselves.
func Resample(returns models.ReturnSeries, period Period) []models.PeriodReturn {
	out := make([]models.PeriodReturn, 0)
	for _, r := range returns {
		end := period.PeriodEnd(r.Date)
		if n := len(out); n > 0 && out[n-1].PeriodEnd.Equal(end) {
			out[n-1].Return += r.Value
			continue
		}
		out = append(out, models.PeriodReturn{PeriodEnd: end, Return: r.Value})
	}
	return out
}

// SeasonalityAverage averages monthly returns by calendar month across every
// year present. All twelve months are present in the result; months with no
// observations report 0.
func SeasonalityAverage(monthly []models.PeriodReturn) map[time.Month]float64 {
	var sums [12]float64
	var counts [12]int
	for _, r := range monthly {
		m := r.PeriodEnd.Month() - 1
		sums[m] += r.Return
		counts[m]++
	}
	out := make(map[time.Month]float64, 12)
	for i := 0; i < 12; i++ {
		avg := 0.0
		if counts[i] > 0 {
			avg = sums[i] / float64(counts[i])
		}
		out[time.Month(i+1)] = avg
	}
	return out
}
