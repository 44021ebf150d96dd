package kafka_middleware

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"gameden/pkg/kafka"
	"gameden/pkg/logger"

	segkafka "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubWriter struct {
	err error
}

func (w *stubWriter) WriteMessages(ctx context.Context, msgs ...segkafka.Message) error {
	return w.err
}

func (w *stubWriter) Close() error { return nil }

func buildMessage(t *testing.T) kafka.Message {
	t.Helper()
	msg, err := kafka.NewMessage().
		WithKey("b-1").
		WithValue(map[string]string{"id": "b-1"}).
		WithEventType("booking.created").
		Build()
	require.NoError(t, err)
	return msg
}

func TestMetricsProducerMiddleware(t *testing.T) {
	var m Metrics
	w := &stubWriter{}
	p := kafka.NewProducerWithWriters(w, nil, "bookings", "")
	p.Use(MetricsProducerMiddleware(&m))

	require.NoError(t, p.Publish(context.Background(), buildMessage(t)))
	w.err = errors.New("connection refused")
	require.Error(t, p.Publish(context.Background(), buildMessage(t)))

	s := m.Snapshot()
	assert.Equal(t, int64(1), s.Published)
	assert.Equal(t, int64(1), s.Failed)

	m.Reset()
	assert.Equal(t, MetricsSnapshot{}, m.Snapshot())
}

func TestLoggingProducerMiddleware(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(logger.Config{Output: &buf, Level: logger.DEBUG})

	w := &stubWriter{}
	p := kafka.NewProducerWithWriters(w, nil, "bookings", "")
	p.Use(LoggingProducerMiddleware(log))

	require.NoError(t, p.Publish(context.Background(), buildMessage(t)))
	assert.Contains(t, buf.String(), "Published message")
	assert.Contains(t, buf.String(), `"topic":"bookings"`)

	buf.Reset()
	w.err = errors.New("i/o timeout")
	require.Error(t, p.Publish(context.Background(), buildMessage(t)))
	assert.Contains(t, buf.String(), "Failed to publish message")
	assert.Contains(t, buf.String(), `"transient":true`)
}
