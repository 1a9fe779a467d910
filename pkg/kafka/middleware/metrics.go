package kafka_middleware

import (
	"context"
	"sync/atomic"
	"time"

	"taskhire/pkg/kafka"
	"taskhire/pkg/logger"
)

// Metrics counts publish and consume outcomes. Fields are updated atomically.
type Metrics struct {
	MessagesPublished       atomic.Int64
	MessagesPublishedFailed atomic.Int64
	PublishDurationTotal    atomic.Int64 // nanoseconds

	MessagesConsumed       atomic.Int64
	MessagesConsumedFailed atomic.Int64
	ConsumeDurationTotal   atomic.Int64 // nanoseconds
}

func NewMetrics() *Metrics {
	return &Metrics{}
}

func (m *Metrics) AvgPublishDuration() time.Duration {
	published := m.MessagesPublished.Load() + m.MessagesPublishedFailed.Load()
	if published == 0 {
		return 0
	}
	return time.Duration(m.PublishDurationTotal.Load() / published)
}

func (m *Metrics) AvgConsumeDuration() time.Duration {
	consumed := m.MessagesConsumed.Load() + m.MessagesConsumedFailed.Load()
	if consumed == 0 {
		return 0
	}
	return time.Duration(m.ConsumeDurationTotal.Load() / consumed)
}

// Log writes a snapshot of the counters, typically on shutdown.
func (m *Metrics) Log(log *logger.Logger) {
	log.Info("Kafka metrics",
		"published", m.MessagesPublished.Load(),
		"published_failed", m.MessagesPublishedFailed.Load(),
		"avg_publish_duration", m.AvgPublishDuration().String(),
		"consumed", m.MessagesConsumed.Load(),
		"consumed_failed", m.MessagesConsumedFailed.Load(),
		"avg_consume_duration", m.AvgConsumeDuration().String(),
	)
}

func MetricsProducerMiddleware(m *Metrics) kafka.ProducerMiddleware {
	return func(ctx context.Context, msg kafka.Message, next kafka.MessageHandler) error {
		start := time.Now()
		err := next(ctx, msg)
		m.PublishDurationTotal.Add(int64(time.Since(start)))
		if err != nil {
			m.MessagesPublishedFailed.Add(1)
		} else {
			m.MessagesPublished.Add(1)
		}
		return err
	}
}

func MetricsConsumerMiddleware(m *Metrics) kafka.ConsumerMiddleware {
	return func(ctx context.Context, msg kafka.Message, next kafka.MessageHandler) error {
		start := time.Now()
		err := next(ctx, msg)
		m.ConsumeDurationTotal.Add(int64(time.Since(start)))
		if err != nil {
			m.MessagesConsumedFailed.Add(1)
		} else {
			m.MessagesConsumed.Add(1)
		}
		return err
	}
}
