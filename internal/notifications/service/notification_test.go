package service

import (
	"context"
	"errors"
	"testing"
	"time"

	notificationserrors "taskhire/internal/notifications/errors"
	"taskhire/pkg/config"
	apperrors "taskhire/pkg/errors"
	"taskhire/pkg/logger"
	"taskhire/pkg/model"
	"taskhire/pkg/validation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockNotificationRepository struct {
	createFunc         func(ctx context.Context, n *model.Notification) error
	findByReceiverFunc func(ctx context.Context, receiver model.Party, limit int) ([]*model.Notification, error)
	markReadFunc       func(ctx context.Context, receiver model.Party, ids []string) (int64, error)
	deleteFunc         func(ctx context.Context, receiver model.Party, ids []string) (int64, error)
}

func (m *mockNotificationRepository) Create(ctx context.Context, n *model.Notification) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, n)
	}
	n.ID = "65f1c0ffee0000000000aa01"
	return nil
}

func (m *mockNotificationRepository) FindByReceiver(ctx context.Context, receiver model.Party, limit int) ([]*model.Notification, error) {
	if m.findByReceiverFunc != nil {
		return m.findByReceiverFunc(ctx, receiver, limit)
	}
	return nil, nil
}

func (m *mockNotificationRepository) MarkRead(ctx context.Context, receiver model.Party, ids []string) (int64, error) {
	if m.markReadFunc != nil {
		return m.markReadFunc(ctx, receiver, ids)
	}
	return int64(len(ids)), nil
}

func (m *mockNotificationRepository) Delete(ctx context.Context, receiver model.Party, ids []string) (int64, error) {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, receiver, ids)
	}
	return int64(len(ids)), nil
}

func newTestService(repo *mockNotificationRepository) NotificationService {
	cfg := &config.Config{Log: logger.Discard(), NotificationFeedLimit: config.DefaultNotificationFeedLimit}
	return NewNotificationService(repo, validation.New(), cfg)
}

var customer = model.Party{ID: "65f1c0ffee000000000000c1", Role: model.RoleCustomer}

func TestSend_RequiresFields(t *testing.T) {
	svc := newTestService(&mockNotificationRepository{})

	tests := []struct {
		name string
		n    *model.Notification
	}{
		{"missing receiver", model.NewNotification(model.Party{}, model.NotificationJob, "t", "m")},
		{"missing title", model.NewNotification(customer, model.NotificationJob, "  ", "m")},
		{"missing message", model.NewNotification(customer, model.NotificationJob, "t", "")},
		{"bad type", model.NewNotification(customer, "carrier-pigeon", "t", "m")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := svc.Send(context.Background(), tt.n)
			assert.True(t, apperrors.HasCode(err, apperrors.CodeValidation), "got %v", err)
		})
	}
}

func TestSend_StoresUnread(t *testing.T) {
	var stored *model.Notification
	svc := newTestService(&mockNotificationRepository{
		createFunc: func(ctx context.Context, n *model.Notification) error {
			stored = n
			return nil
		},
	})

	n := model.NewNotification(customer, model.NotificationPayment, "Payment successful", "Your payment was recorded")
	n.Status = model.NotificationRead

	require.NoError(t, svc.Send(context.Background(), n))
	require.NotNil(t, stored)
	assert.Equal(t, model.NotificationUnread, stored.Status)
}

func TestGetForUser_ScopedAndNormalized(t *testing.T) {
	created := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	var gotReceiver model.Party
	var gotLimit int

	svc := newTestService(&mockNotificationRepository{
		findByReceiverFunc: func(ctx context.Context, receiver model.Party, limit int) ([]*model.Notification, error) {
			gotReceiver, gotLimit = receiver, limit
			return []*model.Notification{
				{ID: "n2", Title: "B", Message: "second", Status: model.NotificationRead, Type: model.NotificationJob, CreatedAt: created.Add(time.Hour)},
				{ID: "n1", Title: "A", Message: "first", Status: model.NotificationUnread, Type: model.NotificationAlert, CreatedAt: created},
			}, nil
		},
	})

	feed, err := svc.GetForUser(context.Background(), customer)
	require.NoError(t, err)

	assert.Equal(t, customer, gotReceiver)
	assert.Equal(t, 50, gotLimit)
	require.Len(t, feed, 2)
	assert.Equal(t, model.FeedItem{ID: "n2", Title: "B", Message: "second", Read: true, Time: created.Add(time.Hour), Type: model.NotificationJob}, feed[0])
	assert.False(t, feed[1].Read)
}

func TestMarkAsRead_ValidatesIDs(t *testing.T) {
	called := false
	svc := newTestService(&mockNotificationRepository{
		markReadFunc: func(ctx context.Context, receiver model.Party, ids []string) (int64, error) {
			called = true
			return 0, nil
		},
	})

	_, err := svc.MarkAsRead(context.Background(), customer, nil)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidation))

	_, err = svc.MarkAsRead(context.Background(), customer, []string{"65f1c0ffee0000000000aa01", "garbage"})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidation))

	_, err = svc.MarkAsRead(context.Background(), model.Party{ID: "x"}, []string{"65f1c0ffee0000000000aa01"})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeInvalidInput))

	assert.False(t, called)
}

func TestMarkAsRead_DedupesAndScopes(t *testing.T) {
	var gotIDs []string
	var gotReceiver model.Party
	svc := newTestService(&mockNotificationRepository{
		markReadFunc: func(ctx context.Context, receiver model.Party, ids []string) (int64, error) {
			gotIDs, gotReceiver = ids, receiver
			return 1, nil
		},
	})

	n, err := svc.MarkAsRead(context.Background(), customer, []string{"65F1C0FFEE0000000000AA01", "65f1c0ffee0000000000aa01"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.Equal(t, []string{"65f1c0ffee0000000000aa01"}, gotIDs)
	assert.Equal(t, customer, gotReceiver)
}

func TestDelete_MapsRepositoryErrors(t *testing.T) {
	svc := newTestService(&mockNotificationRepository{
		deleteFunc: func(ctx context.Context, receiver model.Party, ids []string) (int64, error) {
			return 0, errors.New("socket closed")
		},
	})

	_, err := svc.Delete(context.Background(), customer, []string{"65f1c0ffee0000000000aa01"})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeInternal))

	svc = newTestService(&mockNotificationRepository{
		deleteFunc: func(ctx context.Context, receiver model.Party, ids []string) (int64, error) {
			return 0, notificationserrors.ErrInvalidID
		},
	})
	_, err = svc.Delete(context.Background(), customer, []string{"65f1c0ffee0000000000aa01"})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeInvalidInput))
}
