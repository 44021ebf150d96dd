package kafka

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingWriter struct {
	mu     sync.Mutex
	msgs   []kafka.Message
	err    error
	closed bool
}

func (w *recordingWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	w.mu.Lock()
	defer w.mu.Unlock()
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

func header(m kafka.Message, key string) string {
	for _, h := range m.Headers {
		if h.Key == key {
			return string(h.Value)
		}
	}
	return ""
}

func TestMessageBuilder(t *testing.T) {
	msg, err := NewMessage().
		WithKey("b-1").
		WithValue(map[string]int{"duration": 2}).
		WithEventType("booking.created").
		WithCorrelationID("req-1").
		WithSource("bookings").
		Build()
	require.NoError(t, err)

	assert.Equal(t, "b-1", msg.Key)
	assert.JSONEq(t, `{"duration":2}`, string(msg.Value))
	assert.NotEmpty(t, msg.GetEventID())
	assert.Equal(t, "booking.created", msg.GetEventType())
	assert.Equal(t, "req-1", msg.GetCorrelationID())
	assert.NotEmpty(t, msg.Headers[HeaderTimestamp])

	var decoded map[string]int
	require.NoError(t, msg.DecodeValue(&decoded))
	assert.Equal(t, 2, decoded["duration"])
}

func TestMessageBuilder_EncodingError(t *testing.T) {
	_, err := NewMessage().WithKey("k").WithValue(make(chan int)).Build()
	assert.ErrorIs(t, err, ErrInvalidMessage)
}

func TestProducer_Publish(t *testing.T) {
	w := &recordingWriter{}
	p := NewProducerWithWriters(w, nil, "bookings", "")

	var seenTopic string
	p.Use(func(ctx context.Context, msg Message, next func(context.Context, Message) error) error {
		seenTopic = msg.Topic
		return next(ctx, msg)
	})

	msg, err := NewMessage().WithKey("b-1").WithValue("x").WithEventType("booking.created").Build()
	require.NoError(t, err)
	require.NoError(t, p.Publish(context.Background(), msg))

	require.Len(t, w.msgs, 1)
	assert.Equal(t, "b-1", string(w.msgs[0].Key))
	assert.Equal(t, "booking.created", header(w.msgs[0], HeaderEventType))
	assert.Equal(t, "bookings", seenTopic)
}

func TestProducer_RejectsInvalidMessages(t *testing.T) {
	p := NewProducerWithWriters(&recordingWriter{}, nil, "bookings", "")

	assert.ErrorIs(t, p.Publish(context.Background(), Message{Value: []byte("x")}), ErrEmptyKey)
	assert.ErrorIs(t, p.Publish(context.Background(), Message{Key: "k"}), ErrEmptyValue)
}

func TestProducer_FailureGoesToDLQ(t *testing.T) {
	cause := errors.New("leader not available")
	w := &recordingWriter{err: cause}
	dlq := &recordingWriter{}
	p := NewProducerWithWriters(w, dlq, "bookings", "dlq-bookings")

	msg, err := NewMessage().WithKey("b-1").WithValue("x").Build()
	require.NoError(t, err)

	err = p.Publish(context.Background(), msg)
	require.Error(t, err)
	assert.ErrorIs(t, err, cause)
	assert.True(t, IsTransient(err))

	var pubErr *PublishError
	require.True(t, errors.As(err, &pubErr))
	assert.True(t, pubErr.DeadLettered)

	require.Len(t, dlq.msgs, 1)
	assert.Equal(t, "bookings", header(dlq.msgs[0], HeaderOriginalTopic))
	assert.Equal(t, cause.Error(), header(dlq.msgs[0], HeaderDLQError))
	// the caller's message is left untouched
	assert.Empty(t, msg.Headers[HeaderOriginalTopic])
}

func TestProducer_Close(t *testing.T) {
	w, dlq := &recordingWriter{}, &recordingWriter{}
	p := NewProducerWithWriters(w, dlq, "bookings", "dlq-bookings")

	require.NoError(t, p.Close())
	require.NoError(t, p.Close())
	assert.True(t, w.closed)
	assert.True(t, dlq.closed)

	msg, err := NewMessage().WithKey("b-1").WithValue("x").Build()
	require.NoError(t, err)
	assert.ErrorIs(t, p.Publish(context.Background(), msg), ErrProducerClosed)
}

func TestIsTransient(t *testing.T) {
	assert.True(t, IsTransient(errors.New("dial tcp: connection refused")))
	assert.True(t, IsTransient(context.DeadlineExceeded))
	assert.False(t, IsTransient(errors.New("unknown topic or partition")))
	assert.False(t, IsTransient(nil))
}
