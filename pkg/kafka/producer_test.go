package kafka

import (
	"context"
	"errors"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (w *recordingWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *recordingWriter) Close() error {
	w.closed = true
	return nil
}

func TestNewProducer_RequiresBrokersAndTopic(t *testing.T) {
	_, err := NewProducer(WithTopic("reports"))
	assert.Error(t, err)

	_, err = NewProducer(WithBrokers([]string{"localhost:9092"}))
	assert.Error(t, err)
}

func TestNewProducer_AppliesWriterOptions(t *testing.T) {
	p, err := NewProducer(
		WithBrokers([]string{"localhost:9092"}),
		WithTopic("reports"),
		WithAutoCreateTopic(true),
		WithHashByKey(true),
	)
	require.NoError(t, err)

	w, ok := p.writer.(*kafka.Writer)
	require.True(t, ok)
	assert.True(t, w.AllowAutoTopicCreation)
	assert.Equal(t, "reports", w.Topic)
	assert.IsType(t, &kafka.Hash{}, w.Balancer)
}

func TestProducer_PublishEncodesJSON(t *testing.T) {
	w := &recordingWriter{}
	p := NewProducerWithWriter(w, "reports", "gzip")

	payload := map[string]float64{"cagr": 0.1}
	require.NoError(t, p.Publish(context.Background(), []byte("SPY"), payload))

	require.Len(t, w.msgs, 1)
	assert.Equal(t, "SPY", string(w.msgs[0].Key))
	assert.JSONEq(t, `{"cagr":0.1}`, string(w.msgs[0].Value))
	assert.Equal(t, "reports", p.Topic())
}

func TestProducer_PublishBatch(t *testing.T) {
	w := &recordingWriter{}
	p := NewProducerWithWriter(w, "reports", "gzip")

	require.NoError(t, p.PublishBatch(context.Background(), nil))
	assert.Empty(t, w.msgs)

	err := p.PublishBatch(context.Background(), []Message{
		{Key: []byte("a"), Value: "raw"},
		{Key: []byte("b"), Value: []byte("bytes")},
	})
	require.NoError(t, err)
	require.Len(t, w.msgs, 2)
	assert.Equal(t, "raw", string(w.msgs[0].Value))
	assert.Equal(t, "bytes", string(w.msgs[1].Value))
}

func TestProducer_PropagatesWriteError(t *testing.T) {
	boom := errors.New("broker down")
	w := &recordingWriter{err: boom}
	p := NewProducerWithWriter(w, "reports", "gzip")

	assert.ErrorIs(t, p.Publish(context.Background(), nil, "x"), boom)
	require.NoError(t, p.Close())
	assert.True(t, w.closed)
}
