package kafka_middleware

import (
	"context"
	"time"

	"gameden/pkg/kafka"
	"gameden/pkg/logger"
)

// LoggingProducerMiddleware logs every publish with its outcome and latency.
func LoggingProducerMiddleware(log *logger.Logger) kafka.ProducerMiddleware {
	return func(ctx context.Context, msg kafka.Message, next func(ctx context.Context, msg kafka.Message) error) error {
		start := time.Now()

		err := next(ctx, msg)

		attrs := []any{
			"topic", msg.Topic,
			"key", msg.Key,
			"event_id", msg.GetEventID(),
			"event_type", msg.GetEventType(),
			"correlation_id", msg.GetCorrelationID(),
			"duration", time.Since(start),
		}
		if err != nil {
			attrs = append(attrs, "transient", kafka.IsTransient(err), "error", err)
			log.Error("Failed to publish message", attrs...)
			return err
		}

		log.Debug("Published message", attrs...)
		return nil
	}
}
