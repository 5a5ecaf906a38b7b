package performance

import (
	"time"

	"PerfScope/internal/domain/models"
)

var day0 = time.Date(2020, time.January, 1, 0, 0, 0, 0, time.UTC)

func dailySeries(start time.Time, prices ...float64) models.PriceSeries {
	out := make(models.PriceSeries, len(prices))
	for i, p := range prices {
		out[i] = models.Point{Date: start.AddDate(0, 0, i), Value: p}
	}
	return out
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
