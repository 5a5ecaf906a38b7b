package performance

import (
	"testing"
	"time"

	"PerfScope/internal/domain/models"
	xutil "PerfScope/pkg/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPeriodEnd(t *testing.T) {
	tests := []struct {
		period Period
		in     time.Time
		want   time.Time
	}{
		{Monthly, date(2024, time.February, 10), date(2024, time.February, 29)},
		{Monthly, date(2023, time.February, 1), date(2023, time.February, 28)},
		{Monthly, date(2023, time.December, 31), date(2023, time.December, 31)},
		{Annual, date(2023, time.March, 3), date(2023, time.December, 31)},
	}
	for _, tt := range tests {
		t.Run(tt.period.String()+"/"+tt.in.Format(xutil.DateLayout), func(t *testing.T) {
			assert.True(t, tt.period.PeriodEnd(tt.in).Equal(tt.want))
		})
	}
}

func TestResampleMonthlySparse(t *testing.T) {
	returns := models.ReturnSeries{
		{Date: date(2022, time.January, 3), Value: 0.01},
		{Date: date(2022, time.January, 31), Value: 0.02},
		{Date: date(2022, time.March, 1), Value: -0.03},
		{Date: date(2023, time.January, 2), Value: 0.04},
	}

	got := Resample(returns, Monthly)
	require.Len(t, got, 3, "february has no observations and is omitted")

	assert.True(t, got[0].PeriodEnd.Equal(date(2022, time.January, 31)))
	assert.InDelta(t, 0.03, got[0].Return, 1e-12)
	assert.True(t, got[1].PeriodEnd.Equal(date(2022, time.March, 31)))
	assert.InDelta(t, -0.03, got[1].Return, 1e-12)
	assert.True(t, got[2].PeriodEnd.Equal(date(2023, time.January, 31)))
	assert.InDelta(t, 0.04, got[2].Return, 1e-12)
}

func TestResampleAnnual(t *testing.T) {
	returns := models.ReturnSeries{
		{Date: date(2021, time.June, 1), Value: 0.1},
		{Date: date(2021, time.December, 31), Value: -0.05},
		{Date: date(2022, time.January, 3), Value: 0.02},
	}

	got := Resample(returns, Annual)
	require.Len(t, got, 2)
	assert.True(t, got[0].PeriodEnd.Equal(date(2021, time.December, 31)))
	assert.InDelta(t, 0.05, got[0].Return, 1e-12)
	assert.True(t, got[1].PeriodEnd.Equal(date(2022, time.December, 31)))
	assert.InDelta(t, 0.02, got[1].Return, 1e-12)
}

func TestResampleEmpty(t *testing.T) {
	assert.Empty(t, Resample(nil, Monthly))
}

func TestSeasonalityAverage(t *testing.T) {
	monthly := []models.PeriodReturn{
		{PeriodEnd: date(2020, time.January, 31), Return: 0.04},
		{PeriodEnd: date(2020, time.February, 29), Return: -0.01},
		{PeriodEnd: date(2021, time.January, 31), Return: 0.06},
		{PeriodEnd: date(2021, time.February, 28), Return: -0.03},
	}

	got := SeasonalityAverage(monthly)
	require.Len(t, got, 12)
	assert.InDelta(t, 0.05, got[time.January], 1e-12)
	assert.InDelta(t, -0.02, got[time.February], 1e-12)
	for m := time.March; m <= time.December; m++ {
		assert.Equal(t, 0.0, got[m], m.String())
	}
}

func TestSeasonalityAverageEmpty(t *testing.T) {
	got := SeasonalityAverage(nil)
	require.Len(t, got, 12)
	for _, v := range got {
		assert.Equal(t, 0.0, v)
	}
}
