package repository

import (
	"context"
	"time"

	"PerfScope/internal/domain/models"
)

// PriceProvider supplies daily closing prices for a ticker over [start, end).
// An empty result is reported as models.ErrNoDataAvailable and transport or
// service failures wrap models.ErrUpstreamFetch.
type PriceProvider interface {
	DailyCloses(ctx context.Context, ticker string, start, end time.Time) (models.PriceSeries, error)
}

// ReportPublisher forwards finished reports to downstream consumers.
type ReportPublisher interface {
	Publish(ctx context.Context, r *models.MetricsReport) error
	Close() error
}

type Metrics interface {
	RecordReport(ticker string)
	RecordWarning(kind string)
	RecordError(kind string)
	RecordLastPrice(ticker string, price float64)
	RecordLatency(op string, seconds float64)
}
