package performance

import (
	"math"
	"testing"
	"time"

	"PerfScope/internal/domain/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReturns(t *testing.T) {
	prices := dailySeries(day0, 100, 120, 90, 80, 130)

	got, err := Returns(prices)
	require.NoError(t, err)
	require.Len(t, got, len(prices)-1)

	for i, r := range got {
		prev, cur := prices[i].Value, prices[i+1].Value
		assert.InDelta(t, (cur-prev)/prev, r.Value, 1e-12)
		assert.True(t, r.Date.Equal(prices[i+1].Date), "return %d dated with later price", i)
	}
}

func TestReturnsInsufficientData(t *testing.T) {
	for _, prices := range []models.PriceSeries{nil, dailySeries(day0, 100)} {
		_, err := Returns(prices)
		assert.ErrorIs(t, err, models.ErrInsufficientData)
	}
}

func TestCAGR(t *testing.T) {
	start := date(2020, time.January, 1)
	end := start.Add(time.Duration(2 * secondsPerYear * float64(time.Second)))
	prices := models.PriceSeries{
		{Date: start, Value: 100},
		{Date: end, Value: 200},
	}

	got, err := CAGR(prices, start, end)
	require.NoError(t, err)
	assert.InDelta(t, math.Sqrt2-1, got, 1e-9)
}

func TestCAGRErrors(t *testing.T) {
	start := date(2020, time.January, 1)
	prices := dailySeries(start, 100, 110)

	tests := []struct {
		name   string
		prices models.PriceSeries
		start  time.Time
		end    time.Time
		want   error
	}{
		{name: "zero elapsed", prices: prices, start: start, end: start, want: models.ErrInvalidRange},
		{name: "negative elapsed", prices: prices, start: start, end: start.AddDate(0, 0, -1), want: models.ErrInvalidRange},
		{name: "zero first price", prices: dailySeries(start, 0, 110), start: start, end: start.AddDate(1, 0, 0), want: models.ErrInvalidRange},
		{name: "single point", prices: dailySeries(start, 100), start: start, end: start.AddDate(1, 0, 0), want: models.ErrInsufficientData},
		{name: "overflow", prices: dailySeries(start, 1, 1e300), start: start, end: start.Add(time.Second), want: models.ErrInvalidRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CAGR(tt.prices, tt.start, tt.end)
			assert.ErrorIs(t, err, tt.want)
			assert.False(t, math.IsNaN(got) || math.IsInf(got, 0))
		})
	}
}

// Volatility is pinned to the population standard deviation (divide by n);
// the sample estimate (divide by n-1) must not match.
func TestAnnualizedVolatilityUsesPopulationStd(t *testing.T) {
	returns := models.ReturnSeries{
		{Date: day0, Value: 0.01},
		{Date: day0.AddDate(0, 0, 1), Value: -0.02},
		{Date: day0.AddDate(0, 0, 2), Value: 0.03},
		{Date: day0.AddDate(0, 0, 3), Value: -0.04},
	}
	mean := (0.01 - 0.02 + 0.03 - 0.04) / 4
	var ss float64
	for _, r := range returns {
		ss += (r.Value - mean) * (r.Value - mean)
	}
	popStd := math.Sqrt(ss / 4)
	sampleStd := math.Sqrt(ss / 3)

	got, err := AnnualizedVolatility(returns)
	require.NoError(t, err)
	assert.InDelta(t, popStd*math.Sqrt(252), got, 1e-12)
	assert.Greater(t, math.Abs(sampleStd*math.Sqrt(252)-got), 1e-3)
}

func TestAnnualizedVolatilityConstantReturns(t *testing.T) {
	prices := dailySeries(day0, 100, 101, 102.01, 103.0301)
	returns, err := Returns(prices)
	require.NoError(t, err)

	got, err := AnnualizedVolatility(returns)
	require.NoError(t, err)
	assert.InDelta(t, 0, got, 1e-9)
}

func TestAnnualizedVolatilityEmpty(t *testing.T) {
	_, err := AnnualizedVolatility(nil)
	assert.ErrorIs(t, err, models.ErrInsufficientData)
}
