package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"taskhire/internal/authz"
	bookingserrors "taskhire/internal/bookings/errors"
	"taskhire/internal/bookings/repository"
	"taskhire/internal/bookings/validator"
	"taskhire/internal/directory"
	"taskhire/internal/notifications/dispatcher"
	"taskhire/pkg/config"
	apperrors "taskhire/pkg/errors"
	"taskhire/pkg/model"
	"taskhire/pkg/sanitizer"
	"taskhire/pkg/validation"
)

type BookingService interface {
	Create(ctx context.Context, actor model.Actor, input *model.BookingInput) (*model.Booking, error)
	GetByID(ctx context.Context, actor model.Actor, id string) (*model.BookingView, error)
	GetAll(ctx context.Context, actor model.Actor, status model.BookingStatus, limit int, offset int64) ([]*model.BookingView, int64, error)
	Update(ctx context.Context, actor model.Actor, id string, patch *model.BookingPatch) (*model.BookingView, error)
	Review(ctx context.Context, actor model.Actor, id string, input *model.ReviewInput) (*model.BookingView, error)
	Delete(ctx context.Context, actor model.Actor, id string) error
}

type bookingService struct {
	repo      repository.BookingRepository
	directory directory.Directory
	gate      *authz.Gate
	validator *validator.BookingValidator
	notifier  dispatcher.Notifier
	cfg       *config.Config
}

func NewBookingService(
	repo repository.BookingRepository,
	dir directory.Directory,
	gate *authz.Gate,
	validator *validator.BookingValidator,
	notifier dispatcher.Notifier,
	cfg *config.Config,
) BookingService {
	return &bookingService{
		repo:      repo,
		directory: dir,
		gate:      gate,
		validator: validator,
		notifier:  notifier,
		cfg:       cfg,
	}
}

func (s *bookingService) Create(ctx context.Context, actor model.Actor, input *model.BookingInput) (*model.Booking, error) {
	if d := s.gate.Authorize(actor, authz.ActionCreate, model.KindBooking, nil); !d.Allowed {
		s.cfg.Log.Warn("Booking creation denied", "actor_id", actor.ID, "role", actor.Role, "reason", d.Reason)
		return nil, apperrors.Forbidden("Not permitted to create bookings")
	}

	booking := s.fromInput(actor, input)
	s.sanitize(booking)
	if err := s.validate(booking); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, booking); err != nil {
		s.cfg.Log.Error("Failed to create booking", "customer", booking.Customer, "worker", booking.Worker, "error", err)
		return nil, apperrors.Internal("Failed to create booking", err)
	}

	s.cfg.Log.Info("Booking created successfully",
		"id", booking.ID,
		"customer", booking.Customer,
		"worker", booking.Worker,
		"service", booking.Service,
		"created_by", actor.ID,
	)

	metadata := model.NotificationMetadata{JobID: booking.ID}
	s.notifier.Dispatch(model.NewNotification(customerOf(booking), model.NotificationJob,
		"Booking created",
		fmt.Sprintf("Your booking for %s is pending confirmation", booking.Date.Format(time.DateOnly)),
	).From(actor.Party()).WithMetadata(metadata))
	s.notifier.Dispatch(model.NewNotification(workerOf(booking), model.NotificationJob,
		"New booking request",
		fmt.Sprintf("You have a new booking request for %s at %s", booking.Date.Format(time.DateOnly), booking.Location),
	).From(actor.Party()).WithMetadata(metadata))

	return booking, nil
}

func (s *bookingService) GetByID(ctx context.Context, actor model.Actor, id string) (*model.BookingView, error) {
	booking, err := s.load(ctx, id, "Failed to retrieve booking")
	if err != nil {
		return nil, err
	}

	if d := s.gate.Authorize(actor, authz.ActionRead, model.KindBooking, authz.Booking(booking)); !d.Allowed {
		s.cfg.Log.Warn("Booking read denied", "id", id, "actor_id", actor.ID, "role", actor.Role, "reason", d.Reason)
		return nil, apperrors.Forbidden("Not permitted to access this booking")
	}

	return s.populateOne(ctx, booking)
}

// GetAll applies the ownership filter in the query itself: customers and
// workers only ever page through their own bookings.
func (s *bookingService) GetAll(ctx context.Context, actor model.Actor, status model.BookingStatus, limit int, offset int64) ([]*model.BookingView, int64, error) {
	if d := s.gate.Authorize(actor, authz.ActionRead, model.KindBooking, nil); !d.Allowed {
		return nil, 0, apperrors.Forbidden("Not permitted to list bookings")
	}

	if status != "" {
		if err := s.validator.ValidateStatus(status); err != nil {
			return nil, 0, validationError(err, "Invalid status filter")
		}
	}

	filter := model.BookingFilter{Status: status}
	switch actor.Role {
	case model.RoleCustomer:
		filter.Customer = actor.ID
	case model.RoleWorker:
		filter.Worker = actor.ID
	}

	var count int64
	var bookings []*model.Booking
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.repo.Count(ctx, filter)
		if errCount != nil {
			s.cfg.Log.Error("Failed to count bookings", "actor_id", actor.ID, "error", errCount)
			errCount = apperrors.Internal("Failed to count bookings", errCount)
		}
	}()

	go func() {
		defer wg.Done()
		bookings, errFind = s.repo.FindAll(ctx, filter, limit, offset)
		if errFind != nil {
			s.cfg.Log.Error("Failed to list bookings", "actor_id", actor.ID, "error", errFind)
			errFind = apperrors.Internal("Failed to retrieve bookings", errFind)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	views, err := directory.Populate(ctx, s.directory, bookings...)
	if err != nil {
		return nil, 0, apperrors.Internal("Failed to populate bookings", err)
	}
	return views, count, nil
}

// Update applies the role-restricted subset of patch. Fields the actor may
// not write are dropped before the merge, never rejected.
func (s *bookingService) Update(ctx context.Context, actor model.Actor, id string, patch *model.BookingPatch) (*model.BookingView, error) {
	if err := s.validator.ValidatePatch(patch); err != nil {
		return nil, validationError(err, "Invalid update input")
	}

	existing, err := s.load(ctx, id, "Failed to retrieve booking")
	if err != nil {
		return nil, err
	}

	d := s.gate.Authorize(actor, authz.ActionUpdate, model.KindBooking, authz.Booking(existing))
	if !d.Allowed {
		s.cfg.Log.Warn("Booking update denied", "id", id, "actor_id", actor.ID, "role", actor.Role, "reason", d.Reason)
		return nil, apperrors.Forbidden("Not permitted to update this booking")
	}

	if dropped := patch.Restrict(d.Fields); len(dropped) > 0 {
		s.cfg.Log.Debug("Ignoring fields outside the role whitelist",
			"id", id,
			"role", actor.Role,
			"state", existing.Status,
			"dropped", dropped,
		)
	}

	if patch.Version != nil && *patch.Version != existing.Version {
		return nil, staleVersion(id)
	}

	if patch.Status != nil && !existing.Status.CanTransitionTo(*patch.Status) {
		return nil, apperrors.Conflict(fmt.Sprintf("Cannot change booking status from %s to %s", existing.Status, *patch.Status))
	}

	previousStatus := existing.Status
	merged := s.merge(existing, patch)
	merged.UpdatedBy = actor.ID
	merged.UpdatedByModel = actor.Role.Model()
	s.sanitize(merged)
	if err := s.validate(merged); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, merged); err != nil {
		if !errors.Is(err, bookingserrors.ErrVersionConflict) {
			s.cfg.Log.Error("Failed to update booking", "id", id, "error", err)
		}
		return nil, s.mapRepoError(err, id, "Failed to update booking")
	}

	s.cfg.Log.Info("Booking updated successfully",
		"id", id,
		"updated_by", actor.ID,
		"role", actor.Role,
		"fields", patch.Fields(),
		"version", merged.Version,
	)

	if merged.Status != previousStatus {
		s.notifyStatusChange(actor, merged)
	}

	return s.populateOne(ctx, merged)
}

func (s *bookingService) Review(ctx context.Context, actor model.Actor, id string, input *model.ReviewInput) (*model.BookingView, error) {
	input.Comment = sanitizer.Notes(input.Comment)
	if err := s.validator.ValidateReview(input); err != nil {
		return nil, validationError(err, "Invalid review")
	}

	booking, err := s.load(ctx, id, "Failed to retrieve booking")
	if err != nil {
		return nil, err
	}

	if d := s.gate.Authorize(actor, authz.ActionReview, model.KindBooking, authz.Booking(booking)); !d.Allowed {
		s.cfg.Log.Warn("Booking review denied", "id", id, "actor_id", actor.ID, "role", actor.Role, "reason", d.Reason)
		return nil, apperrors.Forbidden("Not permitted to review this booking")
	}

	if booking.Review != nil {
		return nil, apperrors.Conflict("Booking has already been reviewed")
	}
	if booking.Status != model.BookingCompleted {
		return nil, apperrors.Conflict("Only completed bookings can be reviewed")
	}

	review := &model.Review{
		Rating:    input.Rating,
		Comment:   input.Comment,
		CreatedAt: time.Now().UTC().Truncate(time.Millisecond),
	}
	if err := s.repo.SetReview(ctx, id, review, actor); err != nil {
		return nil, s.mapRepoError(err, id, "Failed to save review")
	}

	booking.Review = review
	booking.UpdatedBy = actor.ID
	booking.UpdatedByModel = actor.Role.Model()
	booking.UpdatedAt = review.CreatedAt
	booking.Version++

	s.cfg.Log.Info("Booking reviewed", "id", id, "rating", review.Rating, "reviewed_by", actor.ID)

	s.notifier.Dispatch(model.NewNotification(workerOf(booking), model.NotificationRating,
		"New review",
		fmt.Sprintf("You received a %d-star review", review.Rating),
	).From(actor.Party()).WithMetadata(model.NotificationMetadata{JobID: booking.ID}))

	return s.populateOne(ctx, booking)
}

func (s *bookingService) Delete(ctx context.Context, actor model.Actor, id string) error {
	if d := s.gate.Authorize(actor, authz.ActionDelete, model.KindBooking, nil); !d.Allowed {
		s.cfg.Log.Warn("Booking deletion denied", "id", id, "actor_id", actor.ID, "role", actor.Role)
		return apperrors.Forbidden("Only administrators can delete bookings")
	}
	if id == "" {
		return apperrors.InvalidInput("Booking ID cannot be empty")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return s.mapRepoError(err, id, "Failed to delete booking")
	}

	s.cfg.Log.Info("Booking deleted successfully", "id", id, "deleted_by", actor.ID)
	return nil
}

// --- Helpers ---

func (s *bookingService) load(ctx context.Context, id, failure string) (*model.Booking, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Booking ID cannot be empty")
	}
	booking, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.mapRepoError(err, id, failure)
	}
	return booking, nil
}

func (s *bookingService) populateOne(ctx context.Context, booking *model.Booking) (*model.BookingView, error) {
	views, err := directory.Populate(ctx, s.directory, booking)
	if err != nil {
		s.cfg.Log.Error("Failed to populate booking", "id", booking.ID, "error", err)
		return nil, apperrors.Internal("Failed to populate booking", err)
	}
	return views[0], nil
}

func (s *bookingService) fromInput(actor model.Actor, input *model.BookingInput) *model.Booking {
	customer := actor.ID
	if actor.IsAdmin() && input.Customer != "" {
		customer = input.Customer
	}

	booking := &model.Booking{
		Customer:       customer,
		Worker:         input.Worker,
		Service:        input.Service,
		Time:           input.Time,
		Location:       input.Location,
		Notes:          input.Notes,
		Status:         model.BookingPending,
		Billing:        input.Billing,
		CreatedBy:      actor.ID,
		CreatedByModel: actor.Role.Model(),
	}
	if input.Date != nil {
		booking.Date = input.Date.UTC()
	}
	if input.Price != nil {
		booking.Price = *input.Price
	}
	return booking
}

func (s *bookingService) merge(existing *model.Booking, patch *model.BookingPatch) *model.Booking {
	merged := *existing

	if patch.Date != nil {
		merged.Date = patch.Date.UTC()
	}
	if patch.Time != nil {
		merged.Time = *patch.Time
	}
	if patch.Location != nil {
		merged.Location = *patch.Location
	}
	if patch.Notes != nil {
		merged.Notes = *patch.Notes
	}
	if patch.Status != nil {
		merged.Status = *patch.Status
	}
	if patch.Price != nil {
		merged.Price = *patch.Price
	}
	if patch.Billing != nil {
		merged.Billing = patch.Billing
	}

	return &merged
}

func (s *bookingService) sanitize(b *model.Booking) {
	b.Customer = sanitizer.ID(b.Customer)
	b.Worker = sanitizer.ID(b.Worker)
	b.Service = sanitizer.ID(b.Service)
	b.Time = sanitizer.Text(b.Time)
	b.Location = sanitizer.Text(b.Location)
	b.Notes = sanitizer.Notes(b.Notes)
	if b.Billing != nil {
		b.Billing.Name = sanitizer.Text(b.Billing.Name)
		b.Billing.Phone = sanitizer.NormalizePhone(b.Billing.Phone)
		b.Billing.Address = sanitizer.Text(b.Billing.Address)
	}
}

func (s *bookingService) validate(booking *model.Booking) error {
	if err := s.validator.Validate(booking); err != nil {
		s.cfg.Log.Warn("Booking validation failed", "id", booking.ID, "error", err)
		return validationError(err, "Booking validation failed")
	}
	return nil
}

// notifyStatusChange tells the party that did not make the change. Admin
// changes go to both.
func (s *bookingService) notifyStatusChange(actor model.Actor, booking *model.Booking) {
	var receivers []model.Party
	switch actor.Role {
	case model.RoleCustomer:
		receivers = []model.Party{workerOf(booking)}
	case model.RoleWorker:
		receivers = []model.Party{customerOf(booking)}
	default:
		receivers = []model.Party{customerOf(booking), workerOf(booking)}
	}

	for _, receiver := range receivers {
		s.notifier.Dispatch(model.NewNotification(receiver, model.NotificationJob,
			"Booking status updated",
			fmt.Sprintf("Booking on %s is now %s", booking.Date.Format(time.DateOnly), booking.Status),
		).From(actor.Party()).WithMetadata(model.NotificationMetadata{JobID: booking.ID}))
	}
}

func (s *bookingService) mapRepoError(err error, id, message string) error {
	switch {
	case errors.Is(err, bookingserrors.ErrNotFound):
		return apperrors.NotFoundWithID("Booking", id)
	case errors.Is(err, bookingserrors.ErrInvalidID):
		return apperrors.InvalidInput("Invalid booking ID format")
	case errors.Is(err, bookingserrors.ErrVersionConflict):
		return staleVersion(id)
	case errors.Is(err, bookingserrors.ErrAlreadyReviewed):
		return apperrors.Conflict("Booking has already been reviewed")
	case errors.Is(err, bookingserrors.ErrNotCompleted):
		return apperrors.Conflict("Only completed bookings can be reviewed")
	default:
		return apperrors.Internal(message, err)
	}
}

func staleVersion(id string) error {
	return apperrors.Conflict("Booking was modified by another request, reload and retry").
		WithDetails(map[string]any{"id": id})
}

func validationError(err error, message string) error {
	var verrs validation.ValidationErrors
	if errors.As(err, &verrs) {
		return verrs.AppError(message)
	}
	return apperrors.Internal("Failed to validate input", err)
}

func customerOf(b *model.Booking) model.Party {
	return model.Party{ID: b.Customer, Role: model.RoleCustomer}
}

func workerOf(b *model.Booking) model.Party {
	return model.Party{ID: b.Worker, Role: model.RoleWorker}
}
