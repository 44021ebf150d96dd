package service

import (
	"context"
	"fmt"
	"time"

	"gameden/pkg/kafka"
	"gameden/pkg/middleware"
	"gameden/pkg/model"
)

const (
	EventBookingCreated   = "booking.created"
	EventBookingCancelled = "booking.cancelled"
)

// EventPublisher announces booking lifecycle changes. Publishing is best
// effort: callers log failures and never undo a booking because of them.
type EventPublisher interface {
	Publish(ctx context.Context, eventType string, booking *model.Booking) error
}

type noopPublisher struct{}

func NewNoopPublisher() EventPublisher {
	return noopPublisher{}
}

func (noopPublisher) Publish(context.Context, string, *model.Booking) error {
	return nil
}

type kafkaPublisher struct {
	producer *kafka.Producer
	source   string
	timeout  time.Duration
}

func NewKafkaPublisher(producer *kafka.Producer, source string, timeout time.Duration) EventPublisher {
	return &kafkaPublisher{
		producer: producer,
		source:   source,
		timeout:  timeout,
	}
}

// Publish runs detached from the caller's cancellation, bounded by timeout.
func (p *kafkaPublisher) Publish(ctx context.Context, eventType string, booking *model.Booking) error {
	msg, err := kafka.NewMessage().
		WithKey(booking.ID).
		WithValue(booking).
		WithEventType(eventType).
		WithSource(p.source).
		WithCorrelationID(middleware.RequestIDFromContext(ctx)).
		Build()
	if err != nil {
		return fmt.Errorf("failed to build %s event: %w", eventType, err)
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.timeout)
	defer cancel()

	return p.producer.Publish(ctx, msg)
}
