package models

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidTickerFormat = errors.New("invalid ticker format")
	ErrNoDataAvailable     = errors.New("no data available")
	ErrInsufficientData    = errors.New("insufficient data")
	ErrInvalidRange        = errors.New("invalid range")
	ErrUpstreamFetch       = errors.New("upstream fetch failed")
	ErrInvalidSeries       = errors.New("invalid price series")
	ErrNoTickers           = errors.New("no tickers requested")
	ErrTooManyTickers      = errors.New("too many tickers requested")
)

// Warning kinds reported for tickers that were rejected or skipped.
const (
	KindInvalidTicker    = "invalid_ticker_format"
	KindNoData           = "no_data"
	KindInsufficientData = "insufficient_data"
	KindInvalidRange     = "invalid_range"
	KindUpstreamFetch    = "upstream_fetch"
	KindInvalidSeries    = "invalid_series"
	KindInternal         = "internal"
)

// TickerError ties a failure to the ticker that produced it.
type TickerError struct {
	Ticker string
	Err    error
}

func (e *TickerError) Error() string {
	return fmt.Sprintf("%s: %v", e.Ticker, e.Err)
}

func (e *TickerError) Unwrap() error { return e.Err }

// WarningKind classifies a per-ticker error.
func WarningKind(err error) string {
	switch {
	case errors.Is(err, ErrInvalidTickerFormat):
		return KindInvalidTicker
	case errors.Is(err, ErrNoDataAvailable):
		return KindNoData
	case errors.Is(err, ErrInsufficientData):
		return KindInsufficientData
	case errors.Is(err, ErrInvalidRange):
		return KindInvalidRange
	case errors.Is(err, ErrUpstreamFetch):
		return KindUpstreamFetch
	case errors.Is(err, ErrInvalidSeries):
		return KindInvalidSeries
	default:
		return KindInternal
	}
}
