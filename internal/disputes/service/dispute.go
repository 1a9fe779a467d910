package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"taskhire/internal/authz"
	bookingserrors "taskhire/internal/bookings/errors"
	bookingsrepo "taskhire/internal/bookings/repository"
	disputeserrors "taskhire/internal/disputes/errors"
	"taskhire/internal/disputes/repository"
	"taskhire/internal/notifications/dispatcher"
	"taskhire/pkg/config"
	apperrors "taskhire/pkg/errors"
	"taskhire/pkg/model"
	"taskhire/pkg/sanitizer"
	"taskhire/pkg/validation"

	"go.mongodb.org/mongo-driver/mongo"
)

type DisputeService interface {
	Create(ctx context.Context, actor model.Actor, input *model.DisputeInput) (*model.Dispute, error)
	GetByID(ctx context.Context, actor model.Actor, id string) (*model.Dispute, error)
	List(ctx context.Context, actor model.Actor, status model.DisputeStatus, limit int, offset int64) ([]*model.Dispute, int64, error)
	Update(ctx context.Context, actor model.Actor, id string, patch *model.DisputePatch) (*model.Dispute, error)
	Delete(ctx context.Context, actor model.Actor, id string) error
}

type disputeService struct {
	repo      repository.DisputeRepository
	bookings  bookingsrepo.BookingRepository
	gate      *authz.Gate
	validator *validation.Validator
	notifier  dispatcher.Notifier
	cfg       *config.Config
	now       func() time.Time
}

func NewDisputeService(
	repo repository.DisputeRepository,
	bookings bookingsrepo.BookingRepository,
	gate *authz.Gate,
	validator *validation.Validator,
	notifier dispatcher.Notifier,
	cfg *config.Config,
) DisputeService {
	return &disputeService{
		repo:      repo,
		bookings:  bookings,
		gate:      gate,
		validator: validator,
		notifier:  notifier,
		cfg:       cfg,
		now:       func() time.Time { return time.Now().UTC().Truncate(time.Millisecond) },
	}
}

// Create opens a dispute on a booking the actor is party to and links the
// booking back to it in the same transaction.
func (s *disputeService) Create(ctx context.Context, actor model.Actor, input *model.DisputeInput) (*model.Dispute, error) {
	sanitizeInput(input)
	if err := s.validator.Struct(input); err != nil {
		return nil, validationError(err, "Invalid dispute input")
	}

	booking, err := s.bookings.FindByID(ctx, input.Booking)
	if err != nil {
		return nil, mapBookingError(err, input.Booking)
	}

	if d := s.gate.Authorize(actor, authz.ActionCreate, model.KindDispute, authz.Booking(booking)); !d.Allowed {
		s.cfg.Log.Warn("Dispute creation denied", "booking_id", booking.ID, "actor_id", actor.ID, "role", actor.Role, "reason", d.Reason)
		return nil, apperrors.Forbidden("Only a party to the booking can raise a dispute")
	}

	if booking.Dispute != "" {
		return nil, apperrors.Conflict("Booking already has a dispute").
			WithDetails(map[string]any{"dispute": booking.Dispute})
	}

	now := s.now()
	against := model.Party{ID: booking.Worker, Role: model.RoleWorker}
	if actor.Role == model.RoleWorker {
		against = model.Party{ID: booking.Customer, Role: model.RoleCustomer}
	}

	dispute := &model.Dispute{
		Booking:        booking.ID,
		RaisedBy:       actor.ID,
		RaisedByModel:  actor.Role.Model(),
		Against:        against.ID,
		AgainstModel:   against.Role.Model(),
		Reason:         input.Reason,
		Details:        input.Details,
		Attachments:    attachments(input.Attachments, actor.ID, now),
		Status:         model.DisputeOpen,
		StatusHistory:  []model.StatusEntry{{Status: model.DisputeOpen, UpdatedBy: actor.ID, Notes: input.Reason, Timestamp: now}},
		CreatedBy:      actor.ID,
		CreatedByModel: actor.Role.Model(),
	}

	err = s.bookings.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		if err := s.repo.Create(sessCtx, dispute); err != nil {
			return apperrors.Internal("Failed to create dispute", err)
		}
		if err := s.bookings.SetDispute(sessCtx, booking.ID, dispute.ID); err != nil {
			if errors.Is(err, bookingserrors.ErrDisputeExists) {
				return apperrors.Conflict("Booking already has a dispute")
			}
			return mapBookingError(err, booking.ID)
		}
		return nil
	})
	if err != nil {
		s.cfg.Log.Error("Failed to open dispute", "booking_id", booking.ID, "error", err)
		return nil, err
	}

	s.cfg.Log.Info("Dispute opened",
		"id", dispute.ID,
		"booking_id", booking.ID,
		"raised_by", actor.ID,
		"against", against.ID,
	)

	s.notify(actor, []model.Party{
		{ID: booking.Customer, Role: model.RoleCustomer},
		{ID: booking.Worker, Role: model.RoleWorker},
	}, dispute, "Dispute raised", fmt.Sprintf("A dispute was raised on your booking: %s", dispute.Reason))

	return dispute, nil
}

func (s *disputeService) GetByID(ctx context.Context, actor model.Actor, id string) (*model.Dispute, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Dispute ID cannot be empty")
	}

	dispute, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, mapDisputeError(err, id, "Failed to retrieve dispute")
	}

	if d := s.gate.Authorize(actor, authz.ActionRead, model.KindDispute, authz.Dispute(dispute)); !d.Allowed {
		s.cfg.Log.Warn("Dispute read denied", "id", id, "actor_id", actor.ID, "role", actor.Role, "reason", d.Reason)
		return nil, apperrors.Forbidden("Not permitted to access this dispute")
	}
	return dispute, nil
}

// List returns disputes the actor raised or is named in. Admins see all.
func (s *disputeService) List(ctx context.Context, actor model.Actor, status model.DisputeStatus, limit int, offset int64) ([]*model.Dispute, int64, error) {
	if d := s.gate.Authorize(actor, authz.ActionRead, model.KindDispute, nil); !d.Allowed {
		return nil, 0, apperrors.Forbidden("Not permitted to list disputes")
	}
	if err := s.validator.Var("status", string(status), "omitempty,oneof=Open Resolved Rejected"); err != nil {
		return nil, 0, validationError(err, "Invalid status filter")
	}

	filter := model.DisputeFilter{Status: status}
	if !actor.IsAdmin() {
		filter.Party = actor.ID
	}

	var count int64
	var disputes []*model.Dispute
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.repo.Count(ctx, filter)
		if errCount != nil {
			s.cfg.Log.Error("Failed to count disputes", "error", errCount)
			errCount = apperrors.Internal("Failed to count disputes", errCount)
		}
	}()

	go func() {
		defer wg.Done()
		disputes, errFind = s.repo.FindAll(ctx, filter, limit, offset)
		if errFind != nil {
			s.cfg.Log.Error("Failed to list disputes", "error", errFind)
			errFind = apperrors.Internal("Failed to retrieve disputes", errFind)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}
	return disputes, count, nil
}

// Update appends to the status history and attachments. Resolution and
// escalation are admin fields; parties supplying them have them dropped.
func (s *disputeService) Update(ctx context.Context, actor model.Actor, id string, patch *model.DisputePatch) (*model.Dispute, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Dispute ID cannot be empty")
	}
	sanitizePatch(patch)
	if err := s.validator.Struct(patch); err != nil {
		return nil, validationError(err, "Invalid dispute update")
	}

	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, mapDisputeError(err, id, "Failed to retrieve dispute")
	}

	d := s.gate.Authorize(actor, authz.ActionUpdate, model.KindDispute, authz.Dispute(existing))
	if !d.Allowed {
		s.cfg.Log.Warn("Dispute update denied", "id", id, "actor_id", actor.ID, "role", actor.Role, "reason", d.Reason)
		return nil, apperrors.Forbidden("Not permitted to update this dispute")
	}

	if dropped := patch.Restrict(d.Fields); len(dropped) > 0 {
		s.cfg.Log.Debug("Ignoring fields outside the role whitelist", "dispute_id", id, "role", actor.Role, "dropped", dropped)
	}

	if patch.Status != nil && !existing.Status.CanTransitionTo(*patch.Status) {
		return nil, apperrors.Conflict(fmt.Sprintf("Cannot move dispute from %s to %s", existing.Status, *patch.Status)).
			WithDetails(map[string]any{"from": existing.Status, "to": *patch.Status})
	}

	now := s.now()
	change := repository.Change{
		Status:      patch.Status,
		From:        existing.Status,
		Attachments: attachments(patch.Attachments, actor.ID, now),
		UpdatedBy:   actor,
	}

	if patch.Status != nil || patch.Notes != nil {
		entry := model.StatusEntry{Status: existing.Status, UpdatedBy: actor.ID, Timestamp: now}
		if patch.Status != nil {
			entry.Status = *patch.Status
		}
		if patch.Notes != nil {
			entry.Notes = *patch.Notes
		}
		change.History = []model.StatusEntry{entry}
	}

	if patch.Resolution != nil {
		change.Resolution = mergeResolution(existing.Resolution, patch.Resolution, actor.ID, now)
	}

	if patch.EscalationLevel != nil {
		change.EscalationLevel = patch.EscalationLevel
		change.EscalatedBy = actor.ID
	}

	updated, err := s.repo.Update(ctx, id, change)
	if err != nil {
		s.cfg.Log.Error("Failed to update dispute", "id", id, "error", err)
		return nil, mapDisputeError(err, id, "Failed to update dispute")
	}

	statusChanged := patch.Status != nil && *patch.Status != existing.Status
	s.cfg.Log.Info("Dispute updated successfully",
		"id", id,
		"status", updated.Status,
		"status_changed", statusChanged,
		"resolved", patch.Resolution != nil,
		"updated_by", actor.ID,
	)

	switch {
	case patch.Resolution != nil:
		s.notify(actor, updated.Parties(), updated, "Dispute resolved",
			fmt.Sprintf("Your dispute is now %s", updated.Status))
	case statusChanged:
		s.notify(actor, updated.Parties(), updated, "Dispute status updated",
			fmt.Sprintf("Your dispute is now %s", updated.Status))
	}

	return updated, nil
}

// Delete removes the dispute and clears the booking's back-reference while
// it still points here.
func (s *disputeService) Delete(ctx context.Context, actor model.Actor, id string) error {
	if d := s.gate.Authorize(actor, authz.ActionDelete, model.KindDispute, nil); !d.Allowed {
		s.cfg.Log.Warn("Dispute deletion denied", "id", id, "actor_id", actor.ID, "role", actor.Role)
		return apperrors.Forbidden("Only administrators can delete disputes")
	}
	if id == "" {
		return apperrors.InvalidInput("Dispute ID cannot be empty")
	}

	dispute, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return mapDisputeError(err, id, "Failed to retrieve dispute")
	}

	err = s.bookings.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		if err := s.repo.Delete(sessCtx, id); err != nil {
			return mapDisputeError(err, id, "Failed to delete dispute")
		}
		if err := s.bookings.UnsetDispute(sessCtx, dispute.Booking, id); err != nil && !errors.Is(err, bookingserrors.ErrNotFound) {
			return apperrors.Internal("Failed to unlink dispute from booking", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.cfg.Log.Info("Dispute deleted successfully", "id", id, "booking_id", dispute.Booking, "deleted_by", actor.ID)
	return nil
}

func (s *disputeService) notify(actor model.Actor, receivers []model.Party, dispute *model.Dispute, title, message string) {
	metadata := model.NotificationMetadata{JobID: dispute.Booking, DisputeID: dispute.ID}
	for _, receiver := range receivers {
		if receiver.ID == "" {
			continue
		}
		s.notifier.Dispatch(model.NewNotification(receiver, model.NotificationAlert, title, message).
			From(actor.Party()).
			WithMetadata(metadata))
	}
}

func attachments(in []model.AttachmentInput, uploadedBy string, at time.Time) []model.Attachment {
	if len(in) == 0 {
		return nil
	}
	out := make([]model.Attachment, 0, len(in))
	for _, a := range in {
		out = append(out, model.Attachment{URL: a.URL, Name: a.Name, UploadedBy: uploadedBy, UploadedAt: at})
	}
	return out
}

func mergeResolution(existing *model.Resolution, in *model.ResolutionInput, resolvedBy string, at time.Time) *model.Resolution {
	merged := model.Resolution{}
	if existing != nil {
		merged = *existing
	}
	if in.Decision != nil {
		merged.Decision = *in.Decision
	}
	if in.Notes != nil {
		merged.Notes = *in.Notes
	}
	merged.ResolvedBy = resolvedBy
	merged.ResolvedAt = &at
	return &merged
}

func sanitizeInput(in *model.DisputeInput) {
	in.Booking = sanitizer.ID(in.Booking)
	in.Reason = sanitizer.Text(in.Reason)
	in.Details = sanitizer.Notes(in.Details)
	sanitizeAttachments(in.Attachments)
}

func sanitizePatch(p *model.DisputePatch) {
	if p.Notes != nil {
		notes := sanitizer.Notes(*p.Notes)
		p.Notes = &notes
	}
	if p.Resolution != nil {
		if p.Resolution.Decision != nil {
			decision := sanitizer.Text(*p.Resolution.Decision)
			p.Resolution.Decision = &decision
		}
		if p.Resolution.Notes != nil {
			notes := sanitizer.Notes(*p.Resolution.Notes)
			p.Resolution.Notes = &notes
		}
	}
	sanitizeAttachments(p.Attachments)
}

func sanitizeAttachments(in []model.AttachmentInput) {
	for i := range in {
		in[i].URL = sanitizer.URL(in[i].URL)
		in[i].Name = sanitizer.Text(in[i].Name)
	}
}

func mapDisputeError(err error, id, message string) error {
	switch {
	case apperrors.IsAppError(err):
		return err
	case errors.Is(err, disputeserrors.ErrNotFound):
		return apperrors.NotFoundWithID("Dispute", id)
	case errors.Is(err, disputeserrors.ErrInvalidID):
		return apperrors.InvalidInput("Invalid dispute ID format")
	case errors.Is(err, disputeserrors.ErrStatusChanged):
		return apperrors.Conflict("Dispute status changed, reload and retry")
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
