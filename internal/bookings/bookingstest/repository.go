// Package bookingstest provides a func-field BookingRepository for tests of
// the packages that read and link bookings.
package bookingstest

import (
	"context"

	bookingserrors "taskhire/internal/bookings/errors"
	mongotx "taskhire/pkg/db/mongo"
	"taskhire/pkg/model"

	"go.mongodb.org/mongo-driver/mongo"
)

type Repository struct {
	CreateFunc       func(ctx context.Context, booking *model.Booking) error
	FindByIDFunc     func(ctx context.Context, id string) (*model.Booking, error)
	FindAllFunc      func(ctx context.Context, filter model.BookingFilter, limit int, offset int64) ([]*model.Booking, error)
	CountFunc        func(ctx context.Context, filter model.BookingFilter) (int64, error)
	UpdateFunc       func(ctx context.Context, booking *model.Booking) error
	SetReviewFunc    func(ctx context.Context, id string, review *model.Review, updatedBy model.Actor) error
	SetPaidFunc      func(ctx context.Context, id string, paid bool, updatedBy model.Actor) error
	SetDisputeFunc   func(ctx context.Context, id string, disputeID string) error
	UnsetDisputeFunc func(ctx context.Context, id string, disputeID string) error
	DeleteFunc       func(ctx context.Context, id string) error
}

// Returning serves FindByID from a fixed set of bookings.
func Returning(bookings ...*model.Booking) *Repository {
	byID := make(map[string]*model.Booking, len(bookings))
	for _, b := range bookings {
		byID[b.ID] = b
	}
	return &Repository{
		FindByIDFunc: func(ctx context.Context, id string) (*model.Booking, error) {
			b, ok := byID[id]
			if !ok {
				return nil, bookingserrors.ErrNotFound
			}
			cp := *b
			return &cp, nil
		},
	}
}

func (m *Repository) Create(ctx context.Context, booking *model.Booking) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, booking)
	}
	booking.ID = "65f1c0ffee0000000000b001"
	return nil
}

func (m *Repository) FindByID(ctx context.Context, id string) (*model.Booking, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, id)
	}
	return nil, bookingserrors.ErrNotFound
}

func (m *Repository) FindAll(ctx context.Context, filter model.BookingFilter, limit int, offset int64) ([]*model.Booking, error) {
	if m.FindAllFunc != nil {
		return m.FindAllFunc(ctx, filter, limit, offset)
	}
	return []*model.Booking{}, nil
}

func (m *Repository) Count(ctx context.Context, filter model.BookingFilter) (int64, error) {
	if m.CountFunc != nil {
		return m.CountFunc(ctx, filter)
	}
	return 0, nil
}

func (m *Repository) Update(ctx context.Context, booking *model.Booking) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, booking)
	}
	booking.Version++
	return nil
}

func (m *Repository) SetReview(ctx context.Context, id string, review *model.Review, updatedBy model.Actor) error {
	if m.SetReviewFunc != nil {
		return m.SetReviewFunc(ctx, id, review, updatedBy)
	}
	return nil
}

func (m *Repository) SetPaid(ctx context.Context, id string, paid bool, updatedBy model.Actor) error {
	if m.SetPaidFunc != nil {
		return m.SetPaidFunc(ctx, id, paid, updatedBy)
	}
	return nil
}

func (m *Repository) SetDispute(ctx context.Context, id string, disputeID string) error {
	if m.SetDisputeFunc != nil {
		return m.SetDisputeFunc(ctx, id, disputeID)
	}
	return nil
}

func (m *Repository) UnsetDispute(ctx context.Context, id string, disputeID string) error {
	if m.UnsetDisputeFunc != nil {
		return m.UnsetDisputeFunc(ctx, id, disputeID)
	}
	return nil
}

func (m *Repository) Delete(ctx context.Context, id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}

// ExecuteTransaction runs fn directly; there is no rollback.
func (m *Repository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return fn(mongo.NewSessionContext(ctx, nil))
}
