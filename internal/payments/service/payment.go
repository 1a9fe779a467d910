package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"taskhire/internal/authz"
	bookingserrors "taskhire/internal/bookings/errors"
	bookingsrepo "taskhire/internal/bookings/repository"
	"taskhire/internal/notifications/dispatcher"
	paymentserrors "taskhire/internal/payments/errors"
	"taskhire/internal/payments/repository"
	"taskhire/pkg/config"
	apperrors "taskhire/pkg/errors"
	"taskhire/pkg/model"
	"taskhire/pkg/sanitizer"
	"taskhire/pkg/validation"

	"go.mongodb.org/mongo-driver/mongo"
)

type PaymentService interface {
	Create(ctx context.Context, actor model.Actor, bookingID string, input *model.PaymentInput) (*model.Payment, error)
	Update(ctx context.Context, actor model.Actor, bookingID string, patch *model.PaymentPatch) (*model.Payment, error)
	GetByID(ctx context.Context, actor model.Actor, id string) (*model.Payment, error)
	List(ctx context.Context, actor model.Actor, limit int, offset int64) ([]*model.Payment, int64, error)
	ListAll(ctx context.Context, actor model.Actor, limit int, offset int64) ([]*model.Payment, int64, error)
	Delete(ctx context.Context, actor model.Actor, id string) error
}

type paymentService struct {
	repo      repository.PaymentRepository
	bookings  bookingsrepo.BookingRepository
	gate      *authz.Gate
	validator *validation.Validator
	notifier  dispatcher.Notifier
	cfg       *config.Config
}

func NewPaymentService(
	repo repository.PaymentRepository,
	bookings bookingsrepo.BookingRepository,
	gate *authz.Gate,
	validator *validation.Validator,
	notifier dispatcher.Notifier,
	cfg *config.Config,
) PaymentService {
	return &paymentService{
		repo:      repo,
		bookings:  bookings,
		gate:      gate,
		validator: validator,
		notifier:  notifier,
		cfg:       cfg,
	}
}

// Create records a payment for a booking and marks the booking paid in the
// same transaction. Either party of the booking may record it.
func (s *paymentService) Create(ctx context.Context, actor model.Actor, bookingID string, input *model.PaymentInput) (*model.Payment, error) {
	bookingID = sanitizer.ID(bookingID)
	input.TransactionID = sanitizer.Text(input.TransactionID)
	if err := s.validateBookingRef(bookingID); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(input); err != nil {
		return nil, validationError(err, "Invalid payment input")
	}

	booking, err := s.bookings.FindByID(ctx, bookingID)
	if err != nil {
		return nil, mapBookingError(err, bookingID)
	}

	payment := &model.Payment{
		Booking:        booking.ID,
		Customer:       booking.Customer,
		Worker:         booking.Worker,
		Amount:         *input.Amount,
		Status:         model.PaymentPaid,
		Method:         input.Method,
		TransactionID:  input.TransactionID,
		CreatedBy:      actor.ID,
		CreatedByModel: actor.Role.Model(),
	}

	if d := s.gate.Authorize(actor, authz.ActionCreate, model.KindPayment, authz.Payment(payment)); !d.Allowed {
		s.cfg.Log.Warn("Payment creation denied", "booking_id", bookingID, "actor_id", actor.ID, "role", actor.Role, "reason", d.Reason)
		return nil, apperrors.Forbidden("Only a party to the booking can record its payment")
	}

	if _, err := s.repo.FindByBooking(ctx, bookingID); err == nil {
		return nil, apperrors.Conflict("Booking already has a payment")
	} else if !errors.Is(err, paymentserrors.ErrNotFound) {
		return nil, apperrors.Internal("Failed to check existing payment", err)
	}

	if err := s.validator.Struct(payment); err != nil {
		return nil, validationError(err, "Invalid payment")
	}

	err = s.bookings.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		if err := s.repo.Create(sessCtx, payment); err != nil {
			return mapPaymentError(err, "", "Failed to create payment")
		}
		if err := s.bookings.SetPaid(sessCtx, bookingID, true, actor); err != nil {
			return mapBookingError(err, bookingID)
		}
		return nil
	})
	if err != nil {
		s.cfg.Log.Error("Failed to record payment", "booking_id", bookingID, "error", err)
		return nil, err
	}

	s.cfg.Log.Info("Payment recorded",
		"id", payment.ID,
		"booking_id", bookingID,
		"amount", payment.Amount,
		"method", payment.Method,
		"recorded_by", actor.ID,
	)

	metadata := model.NotificationMetadata{JobID: bookingID, PaymentID: payment.ID}
	s.notifier.Dispatch(model.NewNotification(model.Party{ID: payment.Worker, Role: model.RoleWorker}, model.NotificationPayment,
		"Payment received",
		fmt.Sprintf("A payment of %.2f was recorded via %s", payment.Amount, payment.Method),
	).From(actor.Party()).WithMetadata(metadata))
	s.notifier.Dispatch(model.NewNotification(model.Party{ID: payment.Customer, Role: model.RoleCustomer}, model.NotificationPayment,
		"Payment successful",
		fmt.Sprintf("Your payment of %.2f was recorded", payment.Amount),
	).From(actor.Party()).WithMetadata(metadata))

	return payment, nil
}

// Update finds the payment by its booking. The booking's isPaid flag follows
// the payment status and is only written when the status changes.
func (s *paymentService) Update(ctx context.Context, actor model.Actor, bookingID string, patch *model.PaymentPatch) (*model.Payment, error) {
	bookingID = sanitizer.ID(bookingID)
	if err := s.validateBookingRef(bookingID); err != nil {
		return nil, err
	}
	if patch.TransactionID != nil {
		tx := sanitizer.Text(*patch.TransactionID)
		patch.TransactionID = &tx
	}
	if err := s.validator.Struct(patch); err != nil {
		return nil, validationError(err, "Invalid payment update")
	}

	existing, err := s.repo.FindByBooking(ctx, bookingID)
	if err != nil {
		return nil, mapPaymentError(err, bookingID, "Failed to retrieve payment")
	}

	d := s.gate.Authorize(actor, authz.ActionUpdate, model.KindPayment, authz.Payment(existing))
	if !d.Allowed {
		s.cfg.Log.Warn("Payment update denied", "booking_id", bookingID, "actor_id", actor.ID, "role", actor.Role, "reason", d.Reason)
		return nil, apperrors.Forbidden("Not permitted to update this payment")
	}

	if dropped := patch.Restrict(d.Fields); len(dropped) > 0 {
		s.cfg.Log.Debug("Ignoring fields outside the role whitelist", "payment_id", existing.ID, "role", actor.Role, "dropped", dropped)
	}

	previousStatus := existing.Status
	if patch.Status != nil && previousStatus.Settled() && !patch.Status.Settled() && !actor.IsAdmin() {
		return nil, apperrors.Conflict("Only an administrator can move a payment out of Paid")
	}

	merged := merge(existing, patch)
	merged.UpdatedBy = actor.ID
	merged.UpdatedByModel = actor.Role.Model()
	if err := s.validator.Struct(merged); err != nil {
		return nil, validationError(err, "Invalid payment")
	}

	statusChanged := merged.Status != previousStatus
	err = s.bookings.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		if err := s.repo.Update(sessCtx, merged); err != nil {
			return mapPaymentError(err, bookingID, "Failed to update payment")
		}
		if statusChanged {
			if err := s.bookings.SetPaid(sessCtx, merged.Booking, merged.Status.Settled(), actor); err != nil {
				return mapBookingError(err, merged.Booking)
			}
		}
		return nil
	})
	if err != nil {
		s.cfg.Log.Error("Failed to update payment", "booking_id", bookingID, "error", err)
		return nil, err
	}

	s.cfg.Log.Info("Payment updated successfully",
		"id", merged.ID,
		"booking_id", bookingID,
		"status", merged.Status,
		"updated_by", actor.ID,
	)

	if statusChanged {
		s.notifier.Dispatch(model.NewNotification(model.Party{ID: merged.Customer, Role: model.RoleCustomer}, model.NotificationPayment,
			"Payment status updated",
			fmt.Sprintf("Your payment is now %s", merged.Status),
		).From(actor.Party()).WithMetadata(model.NotificationMetadata{JobID: merged.Booking, PaymentID: merged.ID}))
	}

	return merged, nil
}

func (s *paymentService) GetByID(ctx context.Context, actor model.Actor, id string) (*model.Payment, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Payment ID cannot be empty")
	}

	payment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, mapPaymentError(err, id, "Failed to retrieve payment")
	}

	if d := s.gate.Authorize(actor, authz.ActionRead, model.KindPayment, authz.Payment(payment)); !d.Allowed {
		s.cfg.Log.Warn("Payment read denied", "id", id, "actor_id", actor.ID, "role", actor.Role, "reason", d.Reason)
		return nil, apperrors.Forbidden("Not permitted to access this payment")
	}
	return payment, nil
}

// List returns the payments the actor is a party to. Admins see all.
func (s *paymentService) List(ctx context.Context, actor model.Actor, limit int, offset int64) ([]*model.Payment, int64, error) {
	if d := s.gate.Authorize(actor, authz.ActionRead, model.KindPayment, nil); !d.Allowed {
		return nil, 0, apperrors.Forbidden("Not permitted to list payments")
	}

	var filter model.PaymentFilter
	switch actor.Role {
	case model.RoleCustomer:
		filter.Customer = actor.ID
	case model.RoleWorker:
		filter.Worker = actor.ID
	}
	return s.list(ctx, filter, limit, offset)
}

func (s *paymentService) ListAll(ctx context.Context, actor model.Actor, limit int, offset int64) ([]*model.Payment, int64, error) {
	if !actor.IsAdmin() {
		s.cfg.Log.Warn("Admin payment listing denied", "actor_id", actor.ID, "role", actor.Role)
		return nil, 0, apperrors.Forbidden("Only administrators can list all payments")
	}
	return s.list(ctx, model.PaymentFilter{}, limit, offset)
}

func (s *paymentService) list(ctx context.Context, filter model.PaymentFilter, limit int, offset int64) ([]*model.Payment, int64, error) {
	var count int64
	var payments []*model.Payment
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.repo.Count(ctx, filter)
		if errCount != nil {
			s.cfg.Log.Error("Failed to count payments", "error", errCount)
			errCount = apperrors.Internal("Failed to count payments", errCount)
		}
	}()

	go func() {
		defer wg.Done()
		payments, errFind = s.repo.FindAll(ctx, filter, limit, offset)
		if errFind != nil {
			s.cfg.Log.Error("Failed to list payments", "error", errFind)
			errFind = apperrors.Internal("Failed to retrieve payments", errFind)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}
	return payments, count, nil
}

// Delete removes the payment and clears the booking's paid flag with it.
func (s *paymentService) Delete(ctx context.Context, actor model.Actor, id string) error {
	if d := s.gate.Authorize(actor, authz.ActionDelete, model.KindPayment, nil); !d.Allowed {
		s.cfg.Log.Warn("Payment deletion denied", "id", id, "actor_id", actor.ID, "role", actor.Role)
		return apperrors.Forbidden("Only administrators can delete payments")
	}
	if id == "" {
		return apperrors.InvalidInput("Payment ID cannot be empty")
	}

	payment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return mapPaymentError(err, id, "Failed to retrieve payment")
	}

	err = s.bookings.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		if err := s.repo.Delete(sessCtx, id); err != nil {
			return mapPaymentError(err, id, "Failed to delete payment")
		}
		err := s.bookings.SetPaid(sessCtx, payment.Booking, false, actor)
		if err != nil && !errors.Is(err, bookingserrors.ErrNotFound) {
			return apperrors.Internal("Failed to update booking", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.cfg.Log.Info("Payment deleted successfully", "id", id, "booking_id", payment.Booking, "deleted_by", actor.ID)
	return nil
}

func (s *paymentService) validateBookingRef(bookingID string) error {
	if err := s.validator.Var("booking", bookingID, "required,mongodb"); err != nil {
		return validationError(err, "Invalid booking reference")
	}
	return nil
}

func merge(existing *model.Payment, patch *model.PaymentPatch) *model.Payment {
	merged := *existing
	if patch.Amount != nil {
		merged.Amount = *patch.Amount
	}
	if patch.Method != nil {
		merged.Method = *patch.Method
	}
	if patch.Status != nil {
		merged.Status = *patch.Status
	}
	if patch.TransactionID != nil {
		merged.TransactionID = *patch.TransactionID
	}
	return &merged
}

func mapPaymentError(err error, id, message string) error {
	switch {
	case apperrors.IsAppError(err):
		return err
	case errors.Is(err, paymentserrors.ErrNotFound):
		return apperrors.NotFoundWithID("Payment", id)
	case errors.Is(err, paymentserrors.ErrInvalidID):
		return apperrors.InvalidInput("Invalid payment ID format")
	case errors.Is(err, paymentserrors.ErrDuplicate):
		return apperrors.Conflict("Booking already has a payment")
	default:
		return apperrors.Internal(message, err)
	}
}

func mapBookingError(err error, bookingID string) error {
	switch {
	case errors.Is(err, bookingserrors.ErrNotFound):
		return apperrors.NotFoundWithID("Booking", bookingID)
	case errors.Is(err, bookingserrors.ErrInvalidID):
		return apperrors.InvalidInput("Invalid booking ID format")
	default:
		return apperrors.Internal("Failed to load booking", err)
	}
}

func validationError(err error, message string) error {
	var verrs validation.ValidationErrors
	if errors.As(err, &verrs) {
		return verrs.AppError(message)
	}
	return apperrors.Internal("Failed to validate input", err)
}
