package kafka_middleware

import (
	"context"
	"sync/atomic"
	"time"

	"gameden/pkg/kafka"
)

// Metrics counts producer outcomes. The zero value is ready to use.
type Metrics struct {
	published     atomic.Int64
	failed        atomic.Int64
	durationTotal atomic.Int64 // nanoseconds, successful publishes only
}

type MetricsSnapshot struct {
	Published  int64         `json:"published"`
	Failed     int64         `json:"failed"`
	AvgLatency time.Duration `json:"avg_latency"`
}

func (m *Metrics) Snapshot() MetricsSnapshot {
	s := MetricsSnapshot{
		Published: m.published.Load(),
		Failed:    m.failed.Load(),
	}
	if s.Published > 0 {
		s.AvgLatency = time.Duration(m.durationTotal.Load() / s.Published)
	}
	return s
}

func (m *Metrics) Reset() {
	m.published.Store(0)
	m.failed.Store(0)
	m.durationTotal.Store(0)
}

// MetricsProducerMiddleware records publish outcomes into m.
func MetricsProducerMiddleware(m *Metrics) kafka.ProducerMiddleware {
	return func(ctx context.Context, msg kafka.Message, next func(ctx context.Context, msg kafka.Message) error) error {
		start := time.Now()
		err := next(ctx, msg)
		if err != nil {
			m.failed.Add(1)
			return err
		}
		m.published.Add(1)
		m.durationTotal.Add(int64(time.Since(start)))
		return nil
	}
}
