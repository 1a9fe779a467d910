package service

import (
	"context"
	"testing"
	"time"

	"taskhire/internal/authz"
	"taskhire/internal/bookings/bookingstest"
	"taskhire/internal/notifications/notificationstest"
	paymentserrors "taskhire/internal/payments/errors"
	"taskhire/pkg/config"
	apperrors "taskhire/pkg/errors"
	"taskhire/pkg/logger"
	"taskhire/pkg/model"
	"taskhire/pkg/validation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ────────────────────────────────────────────────
// Mock repository for testing
// ────────────────────────────────────────────────

type mockPaymentRepository struct {
	createFunc        func(ctx context.Context, p *model.Payment) error
	findByIDFunc      func(ctx context.Context, id string) (*model.Payment, error)
	findByBookingFunc func(ctx context.Context, bookingID string) (*model.Payment, error)
	findAllFunc       func(ctx context.Context, filter model.PaymentFilter, limit int, offset int64) ([]*model.Payment, error)
	countFunc         func(ctx context.Context, filter model.PaymentFilter) (int64, error)
	updateFunc        func(ctx context.Context, p *model.Payment) error
	deleteFunc        func(ctx context.Context, id string) error
}

func (m *mockPaymentRepository) Create(ctx context.Context, p *model.Payment) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, p)
	}
	p.ID = paymentID
	return nil
}

func (m *mockPaymentRepository) FindByID(ctx context.Context, id string) (*model.Payment, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return nil, paymentserrors.ErrNotFound
}

func (m *mockPaymentRepository) FindByBooking(ctx context.Context, bookingID string) (*model.Payment, error) {
	if m.findByBookingFunc != nil {
		return m.findByBookingFunc(ctx, bookingID)
	}
	return nil, paymentserrors.ErrNotFound
}

func (m *mockPaymentRepository) FindAll(ctx context.Context, filter model.PaymentFilter, limit int, offset int64) ([]*model.Payment, error) {
	if m.findAllFunc != nil {
		return m.findAllFunc(ctx, filter, limit, offset)
	}
	return []*model.Payment{}, nil
}

func (m *mockPaymentRepository) Count(ctx context.Context, filter model.PaymentFilter) (int64, error) {
	if m.countFunc != nil {
		return m.countFunc(ctx, filter)
	}
	return 0, nil
}

func (m *mockPaymentRepository) Update(ctx context.Context, p *model.Payment) error {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, p)
	}
	return nil
}

func (m *mockPaymentRepository) Delete(ctx context.Context, id string) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, id)
	}
	return nil
}

const (
	customerID = "65f1c0ffee000000000000c1"
	workerID   = "65f1c0ffee000000000000b2"
	adminID    = "65f1c0ffee000000000000ad"
	strangerID = "65f1c0ffee000000000000ff"
	bookingID  = "65f1c0ffee0000000000b001"
	paymentID  = "65f1c0ffee0000000000a001"
)

var (
	customer = model.Actor{ID: customerID, Role: model.RoleCustomer}
	worker   = model.Actor{ID: workerID, Role: model.RoleWorker}
	admin    = model.Actor{ID: adminID, Role: model.RoleAdmin}
	stranger = model.Actor{ID: strangerID, Role: model.RoleWorker}
)

type paidCall struct {
	bookingID string
	paid      bool
}

type fixture struct {
	payments *mockPaymentRepository
	bookings *bookingstest.Repository
	notifier *notificationstest.Recorder
	paid     []paidCall
	service  PaymentService
}

func newFixture(payments *mockPaymentRepository) *fixture {
	f := &fixture{
		payments: payments,
		bookings: bookingstest.Returning(&model.Booking{
			ID:       bookingID,
			Customer: customerID,
			Worker:   workerID,
			Status:   model.BookingCompleted,
		}),
		notifier: &notificationstest.Recorder{},
	}
	f.bookings.SetPaidFunc = func(ctx context.Context, id string, paid bool, by model.Actor) error {
		f.paid = append(f.paid, paidCall{bookingID: id, paid: paid})
		return nil
	}
	cfg := &config.Config{Log: logger.Discard(), WriteTimeout: 5 * time.Second}
	f.service = NewPaymentService(payments, f.bookings, authz.NewGate(), validation.New(), f.notifier, cfg)
	return f
}

func paidPayment() *model.Payment {
	return &model.Payment{
		ID:       paymentID,
		Booking:  bookingID,
		Customer: customerID,
		Worker:   workerID,
		Amount:   500,
		Status:   model.PaymentPaid,
		Method:   model.MethodCash,
	}
}

func ptr[T any](v T) *T { return &v }

// ────────────────────────────────────────────────
// Create
// ────────────────────────────────────────────────

func TestCreate_WorkerRecordsCashPayment(t *testing.T) {
	var created *model.Payment
	f := newFixture(&mockPaymentRepository{
		createFunc: func(ctx context.Context, p *model.Payment) error {
			created = p
			p.ID = paymentID
			return nil
		},
	})

	payment, err := f.service.Create(context.Background(), worker, bookingID, &model.PaymentInput{Amount: ptr(500.0), Method: model.MethodCash})
	require.NoError(t, err)
	require.NotNil(t, created)

	assert.Equal(t, 500.0, payment.Amount)
	assert.Equal(t, customerID, payment.Customer)
	assert.Equal(t, workerID, payment.Worker)
	assert.Equal(t, model.PaymentPaid, payment.Status)
	assert.Equal(t, "Worker", payment.CreatedByModel)

	assert.Equal(t, []paidCall{{bookingID: bookingID, paid: true}}, f.paid, "booking is marked paid")

	assert.ElementsMatch(t, []model.Party{
		{ID: workerID, Role: model.RoleWorker},
		{ID: customerID, Role: model.RoleCustomer},
	}, f.notifier.Receivers())
	for _, n := range f.notifier.Sent() {
		assert.Equal(t, model.NotificationPayment, n.Type)
		assert.Equal(t, paymentID, n.Metadata.PaymentID)
	}
}

func TestCreate_CustomerMayRecord(t *testing.T) {
	f := newFixture(&mockPaymentRepository{})
	_, err := f.service.Create(context.Background(), customer, bookingID, &model.PaymentInput{Amount: ptr(10.0), Method: model.MethodUPI})
	require.NoError(t, err)
}

func TestCreate_Validation(t *testing.T) {
	tests := []struct {
		name      string
		bookingID string
		input     *model.PaymentInput
	}{
		{"missing amount", bookingID, &model.PaymentInput{Method: model.MethodCash}},
		{"missing method", bookingID, &model.PaymentInput{Amount: ptr(1.0)}},
		{"unknown method", bookingID, &model.PaymentInput{Amount: ptr(1.0), Method: "Barter"}},
		{"negative amount", bookingID, &model.PaymentInput{Amount: ptr(-5.0), Method: model.MethodCash}},
		{"missing booking", "", &model.PaymentInput{Amount: ptr(1.0), Method: model.MethodCash}},
		{"malformed booking", "b-1", &model.PaymentInput{Amount: ptr(1.0), Method: model.MethodCash}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(&mockPaymentRepository{
				createFunc: func(ctx context.Context, p *model.Payment) error {
					t.Fatal("invalid payment must not be stored")
					return nil
				},
			})
			_, err := f.service.Create(context.Background(), worker, tt.bookingID, tt.input)
			assert.True(t, apperrors.HasCode(err, apperrors.CodeValidation), "got %v", err)
			assert.Empty(t, f.paid)
		})
	}
}

func TestCreate_UnknownBooking(t *testing.T) {
	f := newFixture(&mockPaymentRepository{})
	_, err := f.service.Create(context.Background(), worker, "65f1c0ffee0000000000b0ff", &model.PaymentInput{Amount: ptr(1.0), Method: model.MethodCash})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeNotFound))
}

func TestCreate_NonPartyForbidden(t *testing.T) {
	f := newFixture(&mockPaymentRepository{})
	_, err := f.service.Create(context.Background(), stranger, bookingID, &model.PaymentInput{Amount: ptr(1.0), Method: model.MethodCash})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeForbidden))
	assert.Empty(t, f.notifier.Sent())
}

func TestCreate_SecondPaymentConflicts(t *testing.T) {
	f := newFixture(&mockPaymentRepository{
		findByBookingFunc: func(ctx context.Context, id string) (*model.Payment, error) {
			return paidPayment(), nil
		},
	})
	_, err := f.service.Create(context.Background(), worker, bookingID, &model.PaymentInput{Amount: ptr(1.0), Method: model.MethodCash})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeConflict))

	f = newFixture(&mockPaymentRepository{
		createFunc: func(ctx context.Context, p *model.Payment) error {
			return paymentserrors.ErrDuplicate
		},
	})
	_, err = f.service.Create(context.Background(), worker, bookingID, &model.PaymentInput{Amount: ptr(1.0), Method: model.MethodCash})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeConflict), "unique index race is a conflict too")
	assert.Empty(t, f.paid)
}

// ────────────────────────────────────────────────
// Update
// ────────────────────────────────────────────────

func TestUpdate_WorkerWhitelistLeavesPaidFlag(t *testing.T) {
	var written *model.Payment
	f := newFixture(&mockPaymentRepository{
		findByBookingFunc: func(ctx context.Context, id string) (*model.Payment, error) {
			assert.Equal(t, bookingID, id)
			return paidPayment(), nil
		},
		updateFunc: func(ctx context.Context, p *model.Payment) error {
			written = p
			return nil
		},
	})

	payment, err := f.service.Update(context.Background(), worker, bookingID, &model.PaymentPatch{
		Amount: ptr(1.0),
		Method: ptr(model.MethodCard),
	})
	require.NoError(t, err)
	require.NotNil(t, written)

	assert.Equal(t, 500.0, payment.Amount, "amount is admin-only")
	assert.Equal(t, model.MethodCard, payment.Method)
	assert.Equal(t, workerID, payment.UpdatedBy)
	assert.Empty(t, f.paid, "isPaid only follows status changes")
	assert.Empty(t, f.notifier.Sent())
}

func TestUpdate_WorkerCannotLeavePaid(t *testing.T) {
	f := newFixture(&mockPaymentRepository{
		findByBookingFunc: func(ctx context.Context, id string) (*model.Payment, error) {
			return paidPayment(), nil
		},
		updateFunc: func(ctx context.Context, p *model.Payment) error {
			t.Fatal("must not be written")
			return nil
		},
	})

	_, err := f.service.Update(context.Background(), worker, bookingID, &model.PaymentPatch{Status: ptr(model.PaymentRefunded)})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeConflict))
}

func TestUpdate_AdminRefundClearsPaidFlag(t *testing.T) {
	f := newFixture(&mockPaymentRepository{
		findByBookingFunc: func(ctx context.Context, id string) (*model.Payment, error) {
			return paidPayment(), nil
		},
	})

	payment, err := f.service.Update(context.Background(), admin, bookingID, &model.PaymentPatch{Status: ptr(model.PaymentRefunded)})
	require.NoError(t, err)
	assert.Equal(t, model.PaymentRefunded, payment.Status)
	assert.Equal(t, []paidCall{{bookingID: bookingID, paid: false}}, f.paid)
	assert.Equal(t, []model.Party{{ID: customerID, Role: model.RoleCustomer}}, f.notifier.Receivers())
}

func TestUpdate_WorkerMarksPendingPaid(t *testing.T) {
	f := newFixture(&mockPaymentRepository{
		findByBookingFunc: func(ctx context.Context, id string) (*model.Payment, error) {
			p := paidPayment()
			p.Status = model.PaymentPending
			return p, nil
		},
	})

	_, err := f.service.Update(context.Background(), worker, bookingID, &model.PaymentPatch{Status: ptr(model.PaymentPaid)})
	require.NoError(t, err)
	assert.Equal(t, []paidCall{{bookingID: bookingID, paid: true}}, f.paid)
}

func TestUpdate_Forbidden(t *testing.T) {
	f := newFixture(&mockPaymentRepository{
		findByBookingFunc: func(ctx context.Context, id string) (*model.Payment, error) {
			return paidPayment(), nil
		},
	})

	_, err := f.service.Update(context.Background(), customer, bookingID, &model.PaymentPatch{Method: ptr(model.MethodCard)})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeForbidden), "customers cannot update payments")

	_, err = f.service.Update(context.Background(), stranger, bookingID, &model.PaymentPatch{Method: ptr(model.MethodCard)})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeForbidden))
}

func TestUpdate_NoPayment(t *testing.T) {
	f := newFixture(&mockPaymentRepository{})
	_, err := f.service.Update(context.Background(), admin, bookingID, &model.PaymentPatch{Method: ptr(model.MethodCard)})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeNotFound))
}

// ────────────────────────────────────────────────
// Read and delete
// ────────────────────────────────────────────────

func TestGetByID_Scoped(t *testing.T) {
	f := newFixture(&mockPaymentRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Payment, error) {
			return paidPayment(), nil
		},
	})

	_, err := f.service.GetByID(context.Background(), customer, paymentID)
	require.NoError(t, err)

	_, err = f.service.GetByID(context.Background(), stranger, paymentID)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeForbidden))
}

func TestList_ScopedToActor(t *testing.T) {
	tests := []struct {
		actor model.Actor
		want  model.PaymentFilter
	}{
		{customer, model.PaymentFilter{Customer: customerID}},
		{worker, model.PaymentFilter{Worker: workerID}},
		{admin, model.PaymentFilter{}},
	}

	for _, tt := range tests {
		t.Run(string(tt.actor.Role), func(t *testing.T) {
			var got model.PaymentFilter
			f := newFixture(&mockPaymentRepository{
				findAllFunc: func(ctx context.Context, filter model.PaymentFilter, limit int, offset int64) ([]*model.Payment, error) {
					got = filter
					return []*model.Payment{paidPayment()}, nil
				},
				countFunc: func(ctx context.Context, filter model.PaymentFilter) (int64, error) {
					return 1, nil
				},
			})

			payments, total, err := f.service.List(context.Background(), tt.actor, 20, 0)
			require.NoError(t, err)
			assert.Len(t, payments, 1)
			assert.Equal(t, int64(1), total)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestListAll_AdminOnly(t *testing.T) {
	f := newFixture(&mockPaymentRepository{})

	_, _, err := f.service.ListAll(context.Background(), worker, 20, 0)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeForbidden))

	_, _, err = f.service.ListAll(context.Background(), admin, 20, 0)
	assert.NoError(t, err)
}

func TestDelete(t *testing.T) {
	var deleted string
	f := newFixture(&mockPaymentRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Payment, error) {
			return paidPayment(), nil
		},
		deleteFunc: func(ctx context.Context, id string) error {
			deleted = id
			return nil
		},
	})

	err := f.service.Delete(context.Background(), worker, paymentID)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeForbidden))
	assert.Empty(t, deleted)

	require.NoError(t, f.service.Delete(context.Background(), admin, paymentID))
	assert.Equal(t, paymentID, deleted)
	assert.Equal(t, []paidCall{{bookingID: bookingID, paid: false}}, f.paid)
}
