package service

import (
	"context"
	"errors"
	"fmt"

	notificationserrors "taskhire/internal/notifications/errors"
	"taskhire/internal/notifications/repository"
	"taskhire/pkg/config"
	apperrors "taskhire/pkg/errors"
	"taskhire/pkg/model"
	"taskhire/pkg/sanitizer"
	"taskhire/pkg/validation"
)

type NotificationService interface {
	Send(ctx context.Context, n *model.Notification) error
	GetForUser(ctx context.Context, user model.Party) ([]model.FeedItem, error)
	MarkAsRead(ctx context.Context, user model.Party, ids []string) (int64, error)
	Delete(ctx context.Context, user model.Party, ids []string) (int64, error)
}

type notificationService struct {
	repo      repository.NotificationRepository
	validator *validation.Validator
	cfg       *config.Config
}

func NewNotificationService(repo repository.NotificationRepository, validator *validation.Validator, cfg *config.Config) NotificationService {
	return &notificationService{
		repo:      repo,
		validator: validator,
		cfg:       cfg,
	}
}

// Send stores n. Only the required fields are checked; there is no
// business validation.
func (s *notificationService) Send(ctx context.Context, n *model.Notification) error {
	n.Title = sanitizer.Text(n.Title)
	n.Message = sanitizer.Notes(n.Message)
	n.Receiver.ID = sanitizer.ID(n.Receiver.ID)
	n.Status = model.NotificationUnread

	if err := s.validator.Struct(n); err != nil {
		var verrs validation.ValidationErrors
		if errors.As(err, &verrs) {
			return verrs.AppError("Invalid notification")
		}
		return apperrors.Internal("Failed to validate notification", err)
	}

	if err := s.repo.Create(ctx, n); err != nil {
		return apperrors.Internal("Failed to store notification", err)
	}

	s.cfg.Log.Debug("Notification stored",
		"id", n.ID,
		"receiver_id", n.Receiver.ID,
		"receiver_role", n.Receiver.Role,
		"type", n.Type,
	)
	return nil
}

func (s *notificationService) GetForUser(ctx context.Context, user model.Party) ([]model.FeedItem, error) {
	if err := s.validateUser(user); err != nil {
		return nil, err
	}

	notifications, err := s.repo.FindByReceiver(ctx, user, s.feedLimit())
	if err != nil {
		return nil, apperrors.Internal("Failed to retrieve notifications", err)
	}

	feed := make([]model.FeedItem, 0, len(notifications))
	for _, n := range notifications {
		feed = append(feed, n.FeedItem())
	}
	return feed, nil
}

func (s *notificationService) MarkAsRead(ctx context.Context, user model.Party, ids []string) (int64, error) {
	ids, err := s.prepareIDs(user, ids)
	if err != nil {
		return 0, err
	}

	n, err := s.repo.MarkRead(ctx, user, ids)
	if err != nil {
		return 0, mapRepoError(err, "Failed to mark notifications as read")
	}

	s.cfg.Log.Info("Notifications marked as read", "user_id", user.ID, "role", user.Role, "requested", len(ids), "matched", n)
	return n, nil
}

func (s *notificationService) Delete(ctx context.Context, user model.Party, ids []string) (int64, error) {
	ids, err := s.prepareIDs(user, ids)
	if err != nil {
		return 0, err
	}

	n, err := s.repo.Delete(ctx, user, ids)
	if err != nil {
		return 0, mapRepoError(err, "Failed to delete notifications")
	}

	s.cfg.Log.Info("Notifications deleted successfully", "user_id", user.ID, "role", user.Role, "requested", len(ids), "deleted", n)
	return n, nil
}

func (s *notificationService) feedLimit() int {
	if s.cfg.NotificationFeedLimit > 0 {
		return s.cfg.NotificationFeedLimit
	}
	return config.DefaultNotificationFeedLimit
}

func (s *notificationService) validateUser(user model.Party) error {
	if user.ID == "" || !user.Role.Valid() {
		return apperrors.InvalidInput("User id and role are required")
	}
	return nil
}

func (s *notificationService) prepareIDs(user model.Party, ids []string) ([]string, error) {
	if err := s.validateUser(user); err != nil {
		return nil, err
	}

	ids = sanitizer.Slice(ids, sanitizer.ID)
	if len(ids) == 0 {
		return nil, validation.Field("ids", "ids must contain at least one notification id").AppError("Invalid notification ids")
	}
	for i, id := range ids {
		if err := s.validator.Var(fmt.Sprintf("ids[%d]", i), id, "mongodb"); err != nil {
			var verrs validation.ValidationErrors
			if errors.As(err, &verrs) {
				return nil, verrs.AppError("Invalid notification ids")
			}
			return nil, apperrors.Internal("Failed to validate notification ids", err)
		}
	}
	return ids, nil
}

func mapRepoError(err error, message string) error {
	if errors.Is(err, notificationserrors.ErrInvalidID) {
		return apperrors.InvalidInput("Invalid notification ID format")
	}
	return apperrors.Internal(message, err)
}
