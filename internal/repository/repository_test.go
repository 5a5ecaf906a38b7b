package repository

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"PerfScope/internal/domain/models"
	"PerfScope/pkg/cache"
	pkgkafka "PerfScope/pkg/kafka"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingProvider struct {
	mu     sync.Mutex
	calls  int
	series models.PriceSeries
	err    error
}

func (p *countingProvider) DailyCloses(_ context.Context, _ string, _, _ time.Time) (models.PriceSeries, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	return p.series, p.err
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestCachedPriceProvider_CachesSuccessfulFetch(t *testing.T) {
	next := &countingProvider{series: models.PriceSeries{
		{Date: day(2020, 1, 2), Value: 100},
		{Date: day(2020, 1, 3), Value: 101},
	}}
	mc := cache.NewMemoryCache()
	defer mc.Close()

	p := NewCachedPriceProvider(next, mc, time.Hour, nil)
	ctx := context.Background()

	first, err := p.DailyCloses(ctx, "SPY", day(2020, 1, 1), day(2020, 2, 1))
	require.NoError(t, err)
	second, err := p.DailyCloses(ctx, "SPY", day(2020, 1, 1), day(2020, 2, 1))
	require.NoError(t, err)

	assert.Equal(t, 1, next.calls)
	require.Len(t, second, 2)
	assert.True(t, first[0].Date.Equal(second[0].Date))
	assert.Equal(t, first[1].Value, second[1].Value)

	// different range is a different key
	_, err = p.DailyCloses(ctx, "SPY", day(2020, 1, 1), day(2020, 3, 1))
	require.NoError(t, err)
	assert.Equal(t, 2, next.calls)
}

func TestCachedPriceProvider_DoesNotCacheErrors(t *testing.T) {
	next := &countingProvider{err: models.ErrNoDataAvailable}
	mc := cache.NewMemoryCache()
	defer mc.Close()

	p := NewCachedPriceProvider(next, mc, time.Hour, nil)
	for i := 0; i < 2; i++ {
		_, err := p.DailyCloses(context.Background(), "NOPE", day(2020, 1, 1), day(2020, 2, 1))
		assert.ErrorIs(t, err, models.ErrNoDataAvailable)
	}
	assert.Equal(t, 2, next.calls)
}

type kafkaSink struct {
	msgs []kafka.Message
	err  error
}

func (s *kafkaSink) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if s.err != nil {
		return s.err
	}
	s.msgs = append(s.msgs, msgs...)
	return nil
}

func (s *kafkaSink) Close() error { return nil }

func TestKafkaReportPublisher_Publish(t *testing.T) {
	sink := &kafkaSink{}
	pub := NewKafkaReportPublisher(pkgkafka.NewProducerWithWriter(sink, "perfscope.reports", "gzip"))

	require.NoError(t, pub.Publish(context.Background(), &models.MetricsReport{Ticker: "SPY", CAGR: 0.1}))
	require.NoError(t, pub.Publish(context.Background(), nil))

	require.Len(t, sink.msgs, 1)
	assert.Equal(t, "SPY", string(sink.msgs[0].Key))
	assert.Contains(t, string(sink.msgs[0].Value), `"cagr":0.1`)
	assert.NoError(t, pub.Close())
}

func TestKafkaReportPublisher_WrapsError(t *testing.T) {
	boom := errors.New("no leader")
	pub := NewKafkaReportPublisher(pkgkafka.NewProducerWithWriter(&kafkaSink{err: boom}, "t", "gzip"))

	err := pub.Publish(context.Background(), &models.MetricsReport{Ticker: "SPY"})
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "SPY")
}

func TestCHPriceStore_RejectsBadTableName(t *testing.T) {
	_, err := NewCHPriceStore(nil, "closes; DROP TABLE x")
	assert.Error(t, err)
}

func TestCHPriceStore_Query(t *testing.T) {
	s := &CHPriceStore{table: "perfscope.daily_closes"}
	assert.Contains(t, s.query(), "FROM perfscope.daily_closes FINAL")
	assert.Contains(t, s.query(), "date < ?")
	require.Len(t, s.SchemaStatements(), 1)
	assert.Contains(t, s.SchemaStatements()[0], "ReplacingMergeTree")
}
