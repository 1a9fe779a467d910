package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRole_ModelRoundTrip(t *testing.T) {
	for _, role := range []Role{RoleCustomer, RoleWorker, RoleAdmin} {
		assert.True(t, role.Valid())
		assert.Equal(t, role, RoleFromModel(role.Model()))
	}
	assert.Equal(t, "Customer", RoleCustomer.Model())
	assert.Equal(t, "", Role("").Model())
	assert.False(t, Role("guest").Valid())
}

func TestFieldSet(t *testing.T) {
	fs := NewFieldSet(FieldNotes, FieldLocation, FieldNotes)

	assert.True(t, fs.Has(FieldNotes))
	assert.False(t, fs.Has(FieldStatus))
	assert.Equal(t, []string{FieldLocation, FieldNotes}, fs.Names())
	assert.False(t, FieldSet(nil).Has(FieldNotes))
}

func TestBookingPatch_Restrict(t *testing.T) {
	location := "42 Elm Street"
	status := BookingCompleted
	price := 90.0
	patch := &BookingPatch{Location: &location, Status: &status, Price: &price}

	dropped := patch.Restrict(NewFieldSet(FieldLocation, FieldDate, FieldTime, FieldNotes))

	assert.ElementsMatch(t, []string{FieldStatus, FieldPrice}, dropped)
	require.NotNil(t, patch.Location)
	assert.Equal(t, location, *patch.Location)
	assert.Nil(t, patch.Status)
	assert.Nil(t, patch.Price)
	assert.Equal(t, []string{FieldLocation}, patch.Fields())
}

func TestBookingPatch_RestrictEmptySetDropsEverything(t *testing.T) {
	notes := "gate code 1234"
	patch := &BookingPatch{Notes: &notes}

	dropped := patch.Restrict(nil)

	assert.Equal(t, []string{FieldNotes}, dropped)
	assert.Empty(t, patch.Fields())
}

func TestPaymentPatch_Restrict(t *testing.T) {
	amount := 10.0
	method := MethodCard
	patch := &PaymentPatch{Amount: &amount, Method: &method}

	dropped := patch.Restrict(NewFieldSet(FieldMethod, FieldStatus))

	assert.Equal(t, []string{FieldAmount}, dropped)
	assert.Nil(t, patch.Amount)
	assert.NotNil(t, patch.Method)
}

func TestDisputePatch_Restrict(t *testing.T) {
	level := 3
	decision := "refund"
	status := DisputeResolved
	patch := &DisputePatch{
		Status:          &status,
		EscalationLevel: &level,
		Resolution:      &ResolutionInput{Decision: &decision},
		Attachments:     []AttachmentInput{{URL: "https://files.example.com/a.png"}},
	}

	dropped := patch.Restrict(NewFieldSet(FieldStatus, FieldNotes, FieldAttachments))

	assert.ElementsMatch(t, []string{FieldResolution, FieldEscalationLevel}, dropped)
	assert.Nil(t, patch.Resolution)
	assert.Nil(t, patch.EscalationLevel)
	assert.Len(t, patch.Attachments, 1)
}

func TestBookingView_RefsAreShadowed(t *testing.T) {
	view := BookingView{
		Booking: Booking{
			ID:       "65f1c0ffee0000000000000a",
			Customer: "65f1c0ffee0000000000000b",
			Status:   BookingPending,
		},
		Customer: UserSummary{ID: "65f1c0ffee0000000000000b", Name: "Dana"},
	}

	data, err := json.Marshal(view)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))

	customer, ok := decoded["customer"].(map[string]any)
	require.True(t, ok, "customer should be populated object, got %T", decoded["customer"])
	assert.Equal(t, "Dana", customer["name"])
	assert.Equal(t, "Pending", decoded["status"])
}

func TestNotification_FeedItem(t *testing.T) {
	created := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	n := &Notification{
		ID:        "65f1c0ffee00000000000001",
		Type:      NotificationPayment,
		Title:     "Payment received",
		Message:   "You received 500",
		Status:    NotificationRead,
		CreatedAt: created,
	}

	item := n.FeedItem()

	assert.Equal(t, n.ID, item.ID)
	assert.True(t, item.Read)
	assert.Equal(t, created, item.Time)
	assert.Equal(t, NotificationPayment, item.Type)

	n.Status = NotificationArchived
	assert.False(t, n.FeedItem().Read)
}

func TestDispute_Parties(t *testing.T) {
	d := &Dispute{RaisedBy: "c1", RaisedByModel: "Customer"}
	assert.Equal(t, []Party{{ID: "c1", Role: RoleCustomer}}, d.Parties())

	d.Against = "w1"
	d.AgainstModel = "Worker"
	assert.Equal(t, []Party{{ID: "c1", Role: RoleCustomer}, {ID: "w1", Role: RoleWorker}}, d.Parties())
}
