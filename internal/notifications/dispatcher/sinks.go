package dispatcher

import (
	"context"

	"taskhire/pkg/kafka"
	"taskhire/pkg/model"
)

const (
	EventNotificationCreated = "notification.created"
	SchemaVersion            = "1"
)

// Store is the notification store used by the direct sink and the notifier.
type Store interface {
	Send(ctx context.Context, n *model.Notification) error
}

// StoreSink writes notifications straight to the store.
type StoreSink struct {
	store Store
}

func NewStoreSink(store Store) *StoreSink {
	return &StoreSink{store: store}
}

func (s *StoreSink) Deliver(ctx context.Context, n *model.Notification) error {
	return s.store.Send(ctx, n)
}

type Publisher interface {
	Publish(ctx context.Context, msg kafka.Message) error
}

// KafkaSink publishes a notification event keyed by receiver, so one user's
// notifications stay on one partition.
type KafkaSink struct {
	publisher Publisher
	source    string
}

func NewKafkaSink(publisher Publisher, source string) *KafkaSink {
	return &KafkaSink{publisher: publisher, source: source}
}

func (s *KafkaSink) Deliver(ctx context.Context, n *model.Notification) error {
	msg, err := kafka.NewMessage().
		WithKey(string(n.Receiver.Role) + ":" + n.Receiver.ID).
		WithValue(n).
		WithEventType(EventNotificationCreated).
		WithSchemaVersion(SchemaVersion).
		WithSource(s.source).
		Build()
	if err != nil {
		return kafka.NewPermanentError("failed to encode notification", err)
	}
	return s.publisher.Publish(ctx, msg)
}
