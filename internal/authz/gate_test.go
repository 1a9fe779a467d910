package authz

import (
	"testing"

	"taskhire/pkg/model"

	"github.com/stretchr/testify/assert"
)

const (
	customerID = "65f1c0ffee000000000000c1"
	workerID   = "65f1c0ffee000000000000a1"
	strangerID = "65f1c0ffee000000000000ff"
	adminID    = "65f1c0ffee000000000000ad"
)

var (
	customerActor = model.Actor{ID: customerID, Role: model.RoleCustomer}
	workerActor   = model.Actor{ID: workerID, Role: model.RoleWorker}
	adminActor    = model.Actor{ID: adminID, Role: model.RoleAdmin}
)

func booking(status model.BookingStatus) *model.Booking {
	return &model.Booking{Customer: customerID, Worker: workerID, Status: status}
}

func TestAuthorize_RoleTable(t *testing.T) {
	g := NewGate()

	tests := []struct {
		name    string
		actor   model.Actor
		action  Action
		kind    model.Kind
		allowed bool
	}{
		{"customer creates booking", customerActor, ActionCreate, model.KindBooking, true},
		{"worker cannot create booking", workerActor, ActionCreate, model.KindBooking, false},
		{"admin creates booking", adminActor, ActionCreate, model.KindBooking, true},
		{"customer cannot delete booking", customerActor, ActionDelete, model.KindBooking, false},
		{"admin deletes booking", adminActor, ActionDelete, model.KindBooking, true},
		{"worker cannot review booking", workerActor, ActionReview, model.KindBooking, false},
		{"customer cannot update payment", customerActor, ActionUpdate, model.KindPayment, false},
		{"worker updates payment", workerActor, ActionUpdate, model.KindPayment, true},
		{"admin cannot open dispute", adminActor, ActionCreate, model.KindDispute, false},
		{"worker opens dispute", workerActor, ActionCreate, model.KindDispute, true},
		{"worker cannot delete dispute", workerActor, ActionDelete, model.KindDispute, false},
		{"unknown action", adminActor, Action("archive"), model.KindBooking, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := g.Authorize(tt.actor, tt.action, tt.kind, nil)
			assert.Equal(t, tt.allowed, d.Allowed, d.Reason)
		})
	}
}

func TestAuthorize_Ownership(t *testing.T) {
	g := NewGate()
	b := booking(model.BookingPending)

	tests := []struct {
		name    string
		actor   model.Actor
		allowed bool
	}{
		{"owning customer", customerActor, true},
		{"owning worker", workerActor, true},
		{"admin", adminActor, true},
		{"foreign customer", model.Actor{ID: strangerID, Role: model.RoleCustomer}, false},
		{"foreign worker", model.Actor{ID: strangerID, Role: model.RoleWorker}, false},
		{"customer id used with worker role", model.Actor{ID: customerID, Role: model.RoleWorker}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := g.Authorize(tt.actor, ActionRead, model.KindBooking, Booking(b))
			assert.Equal(t, tt.allowed, d.Allowed, d.Reason)
		})
	}
}

func TestAuthorize_InvalidActor(t *testing.T) {
	g := NewGate()
	assert.False(t, g.Authorize(model.Actor{ID: customerID, Role: "guest"}, ActionRead, model.KindBooking, nil).Allowed)
	assert.False(t, g.Authorize(model.Actor{Role: model.RoleAdmin}, ActionRead, model.KindBooking, nil).Allowed)
}

func TestAuthorize_BookingFieldsByState(t *testing.T) {
	g := NewGate()

	d := g.Authorize(customerActor, ActionUpdate, model.KindBooking, Booking(booking(model.BookingPending)))
	assert.True(t, d.Allowed)
	assert.Equal(t, []string{model.FieldDate, model.FieldLocation, model.FieldNotes, model.FieldTime}, d.Fields.Names())

	d = g.Authorize(customerActor, ActionUpdate, model.KindBooking, Booking(booking(model.BookingInProgress)))
	assert.True(t, d.Allowed)
	assert.Empty(t, d.Fields.Names())

	d = g.Authorize(workerActor, ActionUpdate, model.KindBooking, Booking(booking(model.BookingPending)))
	assert.Equal(t, []string{model.FieldNotes, model.FieldStatus}, d.Fields.Names())

	d = g.Authorize(adminActor, ActionUpdate, model.KindBooking, Booking(booking(model.BookingCompleted)))
	assert.ElementsMatch(t, bookingAdminFields, d.Fields.Names())
}

func TestAuthorize_ReadCarriesNoFields(t *testing.T) {
	d := NewGate().Authorize(adminActor, ActionRead, model.KindBooking, Booking(booking(model.BookingPending)))
	assert.True(t, d.Allowed)
	assert.Nil(t, d.Fields)
}

func TestAuthorize_DisputeParties(t *testing.T) {
	g := NewGate()
	dispute := &model.Dispute{RaisedBy: customerID, Against: workerID, Status: model.DisputeOpen}

	for _, actor := range []model.Actor{customerActor, workerActor} {
		d := g.Authorize(actor, ActionUpdate, model.KindDispute, Dispute(dispute))
		assert.True(t, d.Allowed)
		assert.False(t, d.Fields.Has(model.FieldResolution))
		assert.False(t, d.Fields.Has(model.FieldEscalationLevel))
		assert.True(t, d.Fields.Has(model.FieldAttachments))
	}

	d := g.Authorize(adminActor, ActionUpdate, model.KindDispute, Dispute(dispute))
	assert.True(t, d.Fields.Has(model.FieldResolution))
	assert.True(t, d.Fields.Has(model.FieldEscalationLevel))

	stranger := model.Actor{ID: strangerID, Role: model.RoleCustomer}
	assert.False(t, g.Authorize(stranger, ActionRead, model.KindDispute, Dispute(dispute)).Allowed)
}

func TestAuthorize_PaymentFields(t *testing.T) {
	g := NewGate()
	p := &model.Payment{Customer: customerID, Worker: workerID, Status: model.PaymentPaid}

	d := g.Authorize(workerActor, ActionUpdate, model.KindPayment, Payment(p))
	assert.True(t, d.Allowed)
	assert.Equal(t, []string{model.FieldMethod, model.FieldStatus}, d.Fields.Names())

	other := model.Actor{ID: strangerID, Role: model.RoleWorker}
	assert.False(t, g.Authorize(other, ActionUpdate, model.KindPayment, Payment(p)).Allowed)
}

func TestAdminDisputeFieldsDoNotAliasPartyFields(t *testing.T) {
	g := NewGate()
	party := g.WritableFields(model.RoleCustomer, model.KindDispute, string(model.DisputeOpen))
	assert.Len(t, party, len(disputePartyFields))
}
