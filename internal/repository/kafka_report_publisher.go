package repository

import (
	"context"
	"fmt"

	"PerfScope/internal/domain/models"
	pkgkafka "PerfScope/pkg/kafka"
)

// KafkaReportPublisher emits each finished MetricsReport as a JSON message
// keyed by ticker.
type KafkaReportPublisher struct {
	producer *pkgkafka.Producer
}

// NewKafkaReportPublisher creates a publisher on producer.
func NewKafkaReportPublisher(producer *pkgkafka.Producer) *KafkaReportPublisher {
	return &KafkaReportPublisher{producer: producer}
}

// Publish implements domrepo.ReportPublisher.
func (p *KafkaReportPublisher) Publish(ctx context.Context, r *models.MetricsReport) error {
	if r == nil {
		return nil
	}
	if err := p.producer.Publish(ctx, []byte(r.Ticker), r); err != nil {
		return fmt.Errorf("publish report %s to %s: %w", r.Ticker, p.producer.Topic(), err)
	}
	return nil
}

// Close closes the underlying producer.
func (p *KafkaReportPublisher) Close() error {
	return p.producer.Close()
}
