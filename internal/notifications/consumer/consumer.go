// Package consumer turns notification events from the bus into stored
// notifications.
package consumer

import (
	"context"

	"taskhire/internal/notifications/dispatcher"
	apperrors "taskhire/pkg/errors"
	"taskhire/pkg/kafka"
	"taskhire/pkg/logger"
	"taskhire/pkg/model"
)

// NewHandler returns the message handler for the notifications topic.
// Malformed or invalid events are permanent failures and go to the DLQ.
// Store failures are retried only when the write never reached the server;
// an ambiguous failure goes to the DLQ so a notification is stored at most once.
func NewHandler(store dispatcher.Store, log *logger.Logger) kafka.MessageHandler {
	return func(ctx context.Context, msg kafka.Message) error {
		if eventType := msg.GetEventType(); eventType != "" && eventType != dispatcher.EventNotificationCreated {
			log.Debug("Skipping unrelated event", "event_type", eventType, "event_id", msg.GetEventID())
			return nil
		}

		var n model.Notification
		if err := msg.DecodeValue(&n); err != nil {
			return err
		}
		n.ID = ""

		if err := store.Send(ctx, &n); err != nil {
			if appErr := apperrors.AsAppError(err); !appErr.IsServerError() {
				return kafka.NewPermanentError("notification rejected", err)
			}
			if dispatcher.IsRetryable(err) {
				return kafka.NewTransientError("notification store unavailable", err)
			}
			return kafka.NewPermanentError("notification store write failed", err)
		}

		log.Debug("Notification event stored", "event_id", msg.GetEventID(), "notification_id", n.ID)
		return nil
	}
}
