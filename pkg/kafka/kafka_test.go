package kafka

import (
	"context"
	"errors"
	"testing"

	kafka_config "taskhire/pkg/kafka/config"
	"taskhire/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMessageBuilder(t *testing.T) {
	msg, err := NewMessage().
		WithKey("65f1c0ffee000000000000c1").
		WithValue(map[string]string{"title": "Booking created"}).
		WithEventType("notification.created").
		WithCorrelationID("req-1").
		WithSource("marketplace").
		Build()

	require.NoError(t, err)
	assert.NotEmpty(t, msg.GetEventID())
	assert.Equal(t, "notification.created", msg.GetEventType())
	assert.Equal(t, "req-1", msg.GetCorrelationID())
	assert.NotEmpty(t, msg.Headers[HeaderTimestamp])

	var decoded map[string]string
	require.NoError(t, msg.DecodeValue(&decoded))
	assert.Equal(t, "Booking created", decoded["title"])

	_, err = NewMessage().WithValue(make(chan int)).Build()
	assert.ErrorIs(t, err, ErrInvalidMessage)
}

func TestRetryCount(t *testing.T) {
	var msg Message
	assert.Equal(t, 0, msg.GetRetryCount())
	for i := 0; i < 12; i++ {
		msg.IncrementRetryCount()
	}
	assert.Equal(t, 12, msg.GetRetryCount())
}

func TestDecodeValue_Permanent(t *testing.T) {
	msg := Message{Value: []byte("{not json")}
	err := msg.DecodeValue(&struct{}{})
	assert.Equal(t, ErrorTypePermanent, ClassifyError(err))
}

func TestClassifyError(t *testing.T) {
	tests := []struct {
		err  error
		want ErrorType
	}{
		{nil, ErrorTypeUnknown},
		{errors.New("dial tcp: Connection Refused"), ErrorTypeTransient},
		{errors.New("i/o timeout"), ErrorTypeTransient},
		{errors.New("unknown topic or partition"), ErrorTypePermanent},
		{errors.New("something odd"), ErrorTypePermanent},
		{NewTransientError("store", errors.New("x")), ErrorTypeTransient},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ClassifyError(tt.err), "%v", tt.err)
	}

	assert.False(t, ShouldRetry(errors.New("timeout"), 3, 3))
	assert.True(t, ShouldRetry(errors.New("timeout"), 2, 3))
}

func TestConsumer_ProcessMessageRetriesTransient(t *testing.T) {
	calls := 0
	c := &Consumer{
		maxRetries: 3,
		log:        logger.Discard(),
		handler: func(ctx context.Context, msg Message) error {
			calls++
			if calls < 3 {
				return NewTransientError("store unavailable", nil)
			}
			return nil
		},
	}

	require.NoError(t, c.processMessage(context.Background(), Message{Headers: map[string]string{}}))
	assert.Equal(t, 3, calls)
}

func TestConsumer_ProcessMessageStopsOnPermanent(t *testing.T) {
	calls := 0
	var order []string
	c := &Consumer{
		maxRetries: 3,
		log:        logger.Discard(),
		handler: func(ctx context.Context, msg Message) error {
			calls++
			order = append(order, "handler")
			return NewPermanentError("bad payload", nil)
		},
	}
	c.Use(func(ctx context.Context, msg Message, next MessageHandler) error {
		order = append(order, "middleware")
		return next(ctx, msg)
	})

	err := c.processMessage(context.Background(), Message{Headers: map[string]string{}})
	assert.Error(t, err)
	assert.Equal(t, 1, calls)
	assert.Equal(t, []string{"middleware", "handler"}, order)
}

func TestNewProducer_Validation(t *testing.T) {
	cfg := kafka_config.FromEnv()

	_, err := NewProducer(nil, "t", "", logger.Discard())
	assert.Error(t, err)

	_, err = NewProducer(cfg, "", "", logger.Discard())
	assert.Error(t, err)

	p, err := NewProducer(cfg, "marketplace.notifications", "marketplace.notifications.dlq", logger.Discard())
	require.NoError(t, err)
	assert.Equal(t, "marketplace.notifications", p.Topic())

	assert.ErrorIs(t, p.Publish(context.Background(), Message{Value: []byte("x")}), ErrEmptyKey)
	assert.ErrorIs(t, p.Publish(context.Background(), Message{Key: "k"}), ErrEmptyValue)

	require.NoError(t, p.Close())
	assert.ErrorIs(t, p.Publish(context.Background(), Message{Key: "k", Value: []byte("x")}), ErrProducerClosed)
}

func TestConfigValidate(t *testing.T) {
	cfg := kafka_config.FromEnv()
	require.NoError(t, cfg.Validate())

	cfg.ProducerCompression = "brotli"
	cfg.Brokers = nil
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ProducerCompression")
	assert.Contains(t, err.Error(), "broker")
}
