package service

import (
	"context"
	"testing"
	"time"

	"taskhire/internal/authz"
	"taskhire/internal/bookings/bookingstest"
	bookingserrors "taskhire/internal/bookings/errors"
	disputeserrors "taskhire/internal/disputes/errors"
	"taskhire/internal/disputes/repository"
	"taskhire/internal/notifications/notificationstest"
	"taskhire/pkg/config"
	apperrors "taskhire/pkg/errors"
	"taskhire/pkg/logger"
	"taskhire/pkg/model"
	"taskhire/pkg/validation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memoryDisputes applies changes the way the Mongo update does: history and
// attachments are appended, the rest is set.
type memoryDisputes struct {
	byID       map[string]*model.Dispute
	lastFilter model.DisputeFilter
	createErr  error
	deleted    []string

	beforeUpdate func(*model.Dispute)
}

func newMemoryDisputes(disputes ...*model.Dispute) *memoryDisputes {
	m := &memoryDisputes{byID: map[string]*model.Dispute{}}
	for _, d := range disputes {
		m.byID[d.ID] = d
	}
	return m
}

func (m *memoryDisputes) Create(ctx context.Context, d *model.Dispute) error {
	if m.createErr != nil {
		return m.createErr
	}
	d.ID = disputeID
	m.byID[d.ID] = d
	return nil
}

func (m *memoryDisputes) FindByID(ctx context.Context, id string) (*model.Dispute, error) {
	d, ok := m.byID[id]
	if !ok {
		return nil, disputeserrors.ErrNotFound
	}
	cp := *d
	cp.StatusHistory = append([]model.StatusEntry(nil), d.StatusHistory...)
	cp.Attachments = append([]model.Attachment(nil), d.Attachments...)
	return &cp, nil
}

func (m *memoryDisputes) FindAll(ctx context.Context, filter model.DisputeFilter, limit int, offset int64) ([]*model.Dispute, error) {
	m.lastFilter = filter
	out := []*model.Dispute{}
	for _, d := range m.byID {
		out = append(out, d)
	}
	return out, nil
}

func (m *memoryDisputes) Count(ctx context.Context, filter model.DisputeFilter) (int64, error) {
	return int64(len(m.byID)), nil
}

func (m *memoryDisputes) Update(ctx context.Context, id string, c repository.Change) (*model.Dispute, error) {
	d, ok := m.byID[id]
	if !ok {
		return nil, disputeserrors.ErrNotFound
	}
	if m.beforeUpdate != nil {
		m.beforeUpdate(d)
	}
	if c.Status != nil {
		if d.Status != c.From {
			return nil, disputeserrors.ErrStatusChanged
		}
		d.Status = *c.Status
	}
	if c.Resolution != nil {
		d.Resolution = c.Resolution
	}
	if c.EscalationLevel != nil {
		d.EscalationLevel = *c.EscalationLevel
		d.EscalatedBy = c.EscalatedBy
	}
	d.StatusHistory = append(d.StatusHistory, c.History...)
	d.Attachments = append(d.Attachments, c.Attachments...)
	d.UpdatedBy = c.UpdatedBy.ID
	d.UpdatedByModel = c.UpdatedBy.Role.Model()
	return m.FindByID(ctx, id)
}

func (m *memoryDisputes) Delete(ctx context.Context, id string) error {
	if _, ok := m.byID[id]; !ok {
		return disputeserrors.ErrNotFound
	}
	delete(m.byID, id)
	m.deleted = append(m.deleted, id)
	return nil
}

const (
	customerID = "65f1c0ffee000000000000c1"
	workerID   = "65f1c0ffee000000000000b2"
	adminID    = "65f1c0ffee000000000000ad"
	strangerID = "65f1c0ffee000000000000ff"
	bookingID  = "65f1c0ffee0000000000b001"
	disputeID  = "65f1c0ffee0000000000d001"
)

var (
	customer = model.Actor{ID: customerID, Role: model.RoleCustomer}
	worker   = model.Actor{ID: workerID, Role: model.RoleWorker}
	admin    = model.Actor{ID: adminID, Role: model.RoleAdmin}
	stranger = model.Actor{ID: strangerID, Role: model.RoleCustomer}
)

var fixedNow = time.Date(2026, 5, 1, 9, 30, 0, 0, time.UTC)

type fixture struct {
	disputes *memoryDisputes
	bookings *bookingstest.Repository
	booking  *model.Booking
	notifier *notificationstest.Recorder
	service  *disputeService
}

func newFixture(disputes *memoryDisputes) *fixture {
	f := &fixture{
		disputes: disputes,
		booking: &model.Booking{
			ID:       bookingID,
			Customer: customerID,
			Worker:   workerID,
			Status:   model.BookingCompleted,
		},
		notifier: &notificationstest.Recorder{},
	}
	f.bookings = bookingstest.Returning(f.booking)
	f.bookings.SetDisputeFunc = func(ctx context.Context, id, disputeID string) error {
		if f.booking.Dispute != "" {
			return bookingserrors.ErrDisputeExists
		}
		f.booking.Dispute = disputeID
		return nil
	}
	f.bookings.UnsetDisputeFunc = func(ctx context.Context, id, disputeID string) error {
		if f.booking.Dispute == disputeID {
			f.booking.Dispute = ""
		}
		return nil
	}

	cfg := &config.Config{Log: logger.Discard()}
	svc := NewDisputeService(disputes, f.bookings, authz.NewGate(), validation.New(), f.notifier, cfg).(*disputeService)
	svc.now = func() time.Time { return fixedNow }
	f.service = svc
	return f
}

func openDispute() *model.Dispute {
	return &model.Dispute{
		ID:            disputeID,
		Booking:       bookingID,
		RaisedBy:      customerID,
		RaisedByModel: "Customer",
		Against:       workerID,
		AgainstModel:  "Worker",
		Reason:        "no-show",
		Status:        model.DisputeOpen,
		StatusHistory: []model.StatusEntry{{Status: model.DisputeOpen, UpdatedBy: customerID, Notes: "no-show"}},
	}
}

func ptr[T any](v T) *T { return &v }

// ────────────────────────────────────────────────
// Create
// ────────────────────────────────────────────────

func TestCreate_CustomerRaisesAgainstWorker(t *testing.T) {
	f := newFixture(newMemoryDisputes())

	dispute, err := f.service.Create(context.Background(), customer, &model.DisputeInput{
		Booking:     bookingID,
		Reason:      "  no-show ",
		Attachments: []model.AttachmentInput{{URL: "photos.example.com/door.jpg", Name: "door"}},
	})
	require.NoError(t, err)

	assert.Equal(t, disputeID, dispute.ID)
	assert.Equal(t, customerID, dispute.RaisedBy)
	assert.Equal(t, "Customer", dispute.RaisedByModel)
	assert.Equal(t, workerID, dispute.Against)
	assert.Equal(t, "Worker", dispute.AgainstModel)
	assert.Equal(t, "no-show", dispute.Reason)
	assert.Equal(t, model.DisputeOpen, dispute.Status)
	assert.Equal(t, []model.StatusEntry{
		{Status: model.DisputeOpen, UpdatedBy: customerID, Notes: "no-show", Timestamp: fixedNow},
	}, dispute.StatusHistory)

	require.Len(t, dispute.Attachments, 1)
	assert.Equal(t, "https://photos.example.com/door.jpg", dispute.Attachments[0].URL)
	assert.Equal(t, customerID, dispute.Attachments[0].UploadedBy)

	assert.Equal(t, disputeID, f.booking.Dispute, "booking links back to the dispute")

	assert.ElementsMatch(t, []model.Party{
		{ID: customerID, Role: model.RoleCustomer},
		{ID: workerID, Role: model.RoleWorker},
	}, f.notifier.Receivers())
	for _, n := range f.notifier.Sent() {
		assert.Equal(t, model.NotificationAlert, n.Type)
		assert.Equal(t, disputeID, n.Metadata.DisputeID)
	}
}

func TestCreate_WorkerRaisesAgainstCustomer(t *testing.T) {
	f := newFixture(newMemoryDisputes())

	dispute, err := f.service.Create(context.Background(), worker, &model.DisputeInput{Booking: bookingID, Reason: "unpaid"})
	require.NoError(t, err)
	assert.Equal(t, customerID, dispute.Against)
	assert.Equal(t, "Customer", dispute.AgainstModel)
}

func TestCreate_Rejections(t *testing.T) {
	tests := []struct {
		name  string
		actor model.Actor
		input *model.DisputeInput
		setup func(f *fixture)
		code  string
	}{
		{"missing reason", customer, &model.DisputeInput{Booking: bookingID}, nil, apperrors.CodeValidation},
		{"malformed booking", customer, &model.DisputeInput{Booking: "b1", Reason: "late"}, nil, apperrors.CodeValidation},
		{"bad attachment", customer, &model.DisputeInput{Booking: bookingID, Reason: "late", Attachments: []model.AttachmentInput{{URL: "   "}}}, nil, apperrors.CodeValidation},
		{"unknown booking", customer, &model.DisputeInput{Booking: "65f1c0ffee0000000000b0ff", Reason: "late"}, nil, apperrors.CodeNotFound},
		{"not a party", stranger, &model.DisputeInput{Booking: bookingID, Reason: "late"}, nil, apperrors.CodeForbidden},
		{"admin cannot raise", admin, &model.DisputeInput{Booking: bookingID, Reason: "late"}, nil, apperrors.CodeForbidden},
		{
			"booking already disputed", customer, &model.DisputeInput{Booking: bookingID, Reason: "late"},
			func(f *fixture) { f.booking.Dispute = "65f1c0ffee0000000000d000" },
			apperrors.CodeConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(newMemoryDisputes())
			if tt.setup != nil {
				tt.setup(f)
			}
			_, err := f.service.Create(context.Background(), tt.actor, tt.input)
			assert.True(t, apperrors.HasCode(err, tt.code), "got %v", err)
			assert.Empty(t, f.disputes.byID)
			assert.Empty(t, f.notifier.Sent())
		})
	}
}

func TestCreate_LinkRaceIsConflict(t *testing.T) {
	f := newFixture(newMemoryDisputes())
	f.bookings.SetDisputeFunc = func(ctx context.Context, id, disputeID string) error {
		return bookingserrors.ErrDisputeExists
	}

	_, err := f.service.Create(context.Background(), customer, &model.DisputeInput{Booking: bookingID, Reason: "late"})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeConflict))
	assert.Empty(t, f.notifier.Sent())
}

// ────────────────────────────────────────────────
// Update
// ────────────────────────────────────────────────

func TestUpdate_AdminResolves(t *testing.T) {
	f := newFixture(newMemoryDisputes(openDispute()))

	dispute, err := f.service.Update(context.Background(), admin, disputeID, &model.DisputePatch{
		Status:     ptr(model.DisputeResolved),
		Resolution: &model.ResolutionInput{Decision: ptr("refund")},
	})
	require.NoError(t, err)

	require.Len(t, dispute.StatusHistory, 2)
	assert.Equal(t, model.DisputeOpen, dispute.StatusHistory[0].Status, "first entry is never rewritten")
	assert.Equal(t, model.StatusEntry{Status: model.DisputeResolved, UpdatedBy: adminID, Timestamp: fixedNow}, dispute.StatusHistory[1])

	require.NotNil(t, dispute.Resolution)
	assert.Equal(t, "refund", dispute.Resolution.Decision)
	assert.Equal(t, adminID, dispute.Resolution.ResolvedBy)
	require.NotNil(t, dispute.Resolution.ResolvedAt)
	assert.Equal(t, fixedNow, *dispute.Resolution.ResolvedAt)

	assert.ElementsMatch(t, []model.Party{
		{ID: customerID, Role: model.RoleCustomer},
		{ID: workerID, Role: model.RoleWorker},
	}, f.notifier.Receivers())
}

func TestUpdate_PartyAdminFieldsIgnored(t *testing.T) {
	f := newFixture(newMemoryDisputes(openDispute()))

	dispute, err := f.service.Update(context.Background(), worker, disputeID, &model.DisputePatch{
		Notes:           ptr("I was there at 9"),
		Resolution:      &model.ResolutionInput{Decision: ptr("no refund")},
		EscalationLevel: ptr(4),
		Attachments:     []model.AttachmentInput{{URL: "https://files.example.com/receipt.pdf"}},
	})
	require.NoError(t, err)

	assert.Nil(t, dispute.Resolution)
	assert.Zero(t, dispute.EscalationLevel)
	assert.Empty(t, dispute.EscalatedBy)

	require.Len(t, dispute.StatusHistory, 2)
	assert.Equal(t, model.DisputeOpen, dispute.StatusHistory[1].Status)
	assert.Equal(t, "I was there at 9", dispute.StatusHistory[1].Notes)

	require.Len(t, dispute.Attachments, 1)
	assert.Equal(t, workerID, dispute.Attachments[0].UploadedBy)
	assert.Empty(t, f.notifier.Sent(), "no status or resolution change")
}

func TestUpdate_AttachmentsAppend(t *testing.T) {
	existing := openDispute()
	existing.Attachments = []model.Attachment{{URL: "https://a/1.png", UploadedBy: customerID}}
	f := newFixture(newMemoryDisputes(existing))

	dispute, err := f.service.Update(context.Background(), customer, disputeID, &model.DisputePatch{
		Attachments: []model.AttachmentInput{{URL: "https://a/2.png"}},
	})
	require.NoError(t, err)
	require.Len(t, dispute.Attachments, 2)
	assert.Equal(t, "https://a/1.png", dispute.Attachments[0].URL)
	assert.Equal(t, "https://a/2.png", dispute.Attachments[1].URL)
	assert.Len(t, dispute.StatusHistory, 1, "attachments alone add no history entry")
}

func TestUpdate_AdminEscalates(t *testing.T) {
	f := newFixture(newMemoryDisputes(openDispute()))

	dispute, err := f.service.Update(context.Background(), admin, disputeID, &model.DisputePatch{EscalationLevel: ptr(3)})
	require.NoError(t, err)
	assert.Equal(t, 3, dispute.EscalationLevel)
	assert.Equal(t, adminID, dispute.EscalatedBy)
}

func TestUpdate_StatusGraph(t *testing.T) {
	resolved := openDispute()
	resolved.Status = model.DisputeResolved
	f := newFixture(newMemoryDisputes(resolved))

	_, err := f.service.Update(context.Background(), admin, disputeID, &model.DisputePatch{Status: ptr(model.DisputeOpen)})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeConflict), "no re-opening path")

	dispute, err := f.service.Update(context.Background(), admin, disputeID, &model.DisputePatch{Status: ptr(model.DisputeResolved), Notes: ptr("confirmed")})
	require.NoError(t, err)
	assert.Len(t, dispute.StatusHistory, 2, "re-asserting the status is still recorded")
	assert.Empty(t, f.notifier.Sent())
}

func TestUpdate_StatusMovedSinceReadIsConflict(t *testing.T) {
	disputes := newMemoryDisputes(openDispute())
	disputes.beforeUpdate = func(d *model.Dispute) { d.Status = model.DisputeResolved }
	f := newFixture(disputes)

	_, err := f.service.Update(context.Background(), admin, disputeID, &model.DisputePatch{Status: ptr(model.DisputeRejected)})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeConflict), "Resolved must not become Rejected")
	assert.Equal(t, model.DisputeResolved, disputes.byID[disputeID].Status)
	assert.Len(t, disputes.byID[disputeID].StatusHistory, 1)
	assert.Empty(t, f.notifier.Sent())
}

func TestUpdate_StatusChangeNotifies(t *testing.T) {
	f := newFixture(newMemoryDisputes(openDispute()))

	_, err := f.service.Update(context.Background(), customer, disputeID, &model.DisputePatch{Status: ptr(model.DisputeRejected)})
	require.NoError(t, err)
	assert.Len(t, f.notifier.Sent(), 2)
}

func TestUpdate_Errors(t *testing.T) {
	f := newFixture(newMemoryDisputes(openDispute()))

	_, err := f.service.Update(context.Background(), stranger, disputeID, &model.DisputePatch{Notes: ptr("x")})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeForbidden))

	_, err = f.service.Update(context.Background(), admin, "65f1c0ffee0000000000d0ff", &model.DisputePatch{Notes: ptr("x")})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeNotFound))

	_, err = f.service.Update(context.Background(), admin, disputeID, &model.DisputePatch{EscalationLevel: ptr(9)})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidation))

	_, err = f.service.Update(context.Background(), admin, disputeID, &model.DisputePatch{Status: ptr(model.DisputeStatus("Closed"))})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidation))
}

// ────────────────────────────────────────────────
// Read and delete
// ────────────────────────────────────────────────

func TestGetByID_PartiesAndAdmin(t *testing.T) {
	f := newFixture(newMemoryDisputes(openDispute()))

	for _, actor := range []model.Actor{customer, worker, admin} {
		_, err := f.service.GetByID(context.Background(), actor, disputeID)
		assert.NoError(t, err, "role %s", actor.Role)
	}

	_, err := f.service.GetByID(context.Background(), stranger, disputeID)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeForbidden))
}

func TestList_ScopedToParty(t *testing.T) {
	disputes := newMemoryDisputes(openDispute())
	f := newFixture(disputes)

	items, total, err := f.service.List(context.Background(), worker, model.DisputeOpen, 20, 0)
	require.NoError(t, err)
	assert.Len(t, items, 1)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, model.DisputeFilter{Party: workerID, Status: model.DisputeOpen}, disputes.lastFilter)

	_, _, err = f.service.List(context.Background(), admin, "", 20, 0)
	require.NoError(t, err)
	assert.Equal(t, model.DisputeFilter{}, disputes.lastFilter)

	_, _, err = f.service.List(context.Background(), admin, "Closed", 20, 0)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidation))
}

func TestDelete_ClearsBookingReference(t *testing.T) {
	disputes := newMemoryDisputes(openDispute())
	f := newFixture(disputes)
	f.booking.Dispute = disputeID

	err := f.service.Delete(context.Background(), customer, disputeID)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeForbidden))
	assert.Equal(t, disputeID, f.booking.Dispute)

	require.NoError(t, f.service.Delete(context.Background(), admin, disputeID))
	assert.Equal(t, []string{disputeID}, disputes.deleted)
	assert.Empty(t, f.booking.Dispute)

	err = f.service.Delete(context.Background(), admin, disputeID)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeNotFound))
}

func TestDelete_LeavesNewerLinkAlone(t *testing.T) {
	f := newFixture(newMemoryDisputes(openDispute()))
	f.booking.Dispute = "65f1c0ffee0000000000d002"

	require.NoError(t, f.service.Delete(context.Background(), admin, disputeID))
	assert.Equal(t, "65f1c0ffee0000000000d002", f.booking.Dispute)
}
