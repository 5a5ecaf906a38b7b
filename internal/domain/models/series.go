package models

import (
	"fmt"
	"math"
	"time"

	xutil "PerfScope/pkg/util"
)

// Point is a single dated observation of a series.
type Point struct {
	Date  time.Time `json:"date"`
	Value float64   `json:"value"`
}

// PriceSeries is an ordered sequence of daily closing prices for one instrument.
// Dates are strictly increasing and prices are positive finite numbers.
type PriceSeries []Point

// ReturnSeries holds simple period returns price[t]/price[t-1] - 1.
// It has one fewer element than the price series it was derived from.
type ReturnSeries []Point

// DrawdownSeries holds price[t]/runningMax(price[0..t]) - 1, always <= 0.
type DrawdownSeries []Point

// PeriodReturn is the summed simple return of one calendar period,
// keyed by the last calendar day of that period.
type PeriodReturn struct {
	PeriodEnd time.Time `json:"period_end"`
	Return    float64   `json:"return"`
}

// Validate checks ordering and value constraints of the series.
func (s PriceSeries) Validate() error {
	for i, p := range s {
		if math.IsNaN(p.Value) || math.IsInf(p.Value, 0) || p.Value <= 0 {
			return fmt.Errorf("%w: price %v at %s", ErrInvalidSeries, p.Value, p.Date.Format(xutil.DateLayout))
		}
		if i > 0 && !p.Date.After(s[i-1].Date) {
			return fmt.Errorf("%w: date %s not after %s", ErrInvalidSeries,
				p.Date.Format(xutil.DateLayout), s[i-1].Date.Format(xutil.DateLayout))
		}
	}
	return nil
}

// First returns the first point. The series must not be empty.
func (s PriceSeries) First() Point { return s[0] }

// Last returns the last point. The series must not be empty.
func (s PriceSeries) Last() Point { return s[len(s)-1] }

// Values returns the bare values in order.
func (s ReturnSeries) Values() []float64 {
	out := make([]float64, len(s))
	for i, p := range s {
		out[i] = p.Value
	}
	return out
}

