package authz

import "taskhire/pkg/model"

// AnyState matches every state of an entity in the field table.
const AnyState = "*"

var (
	customer = model.RoleCustomer
	worker   = model.RoleWorker
	admin    = model.RoleAdmin
)

// defaultActions lists which roles may attempt an action on a kind at all.
// Ownership is checked separately for every role except admin.
var defaultActions = map[actionKey][]model.Role{
	{model.KindBooking, ActionCreate}: {customer, admin},
	{model.KindBooking, ActionRead}:   {customer, worker, admin},
	{model.KindBooking, ActionUpdate}: {customer, worker, admin},
	{model.KindBooking, ActionReview}: {customer, admin},
	{model.KindBooking, ActionDelete}: {admin},

	{model.KindPayment, ActionCreate}: {customer, worker, admin},
	{model.KindPayment, ActionRead}:   {customer, worker, admin},
	{model.KindPayment, ActionUpdate}: {worker, admin},
	{model.KindPayment, ActionDelete}: {admin},

	{model.KindDispute, ActionCreate}: {customer, worker},
	{model.KindDispute, ActionRead}:   {customer, worker, admin},
	{model.KindDispute, ActionUpdate}: {customer, worker, admin},
	{model.KindDispute, ActionDelete}: {admin},
}

var (
	bookingAdminFields = []string{
		model.FieldDate, model.FieldTime, model.FieldLocation, model.FieldNotes,
		model.FieldStatus, model.FieldPrice, model.FieldBilling,
	}
	disputePartyFields = []string{model.FieldStatus, model.FieldNotes, model.FieldAttachments}
)

// defaultFields is the {role, kind, state} -> writable fields table.
var defaultFields = map[fieldKey][]string{
	{customer, model.KindBooking, string(model.BookingPending)}: {
		model.FieldLocation, model.FieldDate, model.FieldTime, model.FieldNotes,
	},
	{customer, model.KindBooking, AnyState}: {},
	{worker, model.KindBooking, AnyState}:   {model.FieldStatus, model.FieldNotes},
	{admin, model.KindBooking, AnyState}:    bookingAdminFields,

	{worker, model.KindPayment, AnyState}: {model.FieldMethod, model.FieldStatus},
	{admin, model.KindPayment, AnyState}: {
		model.FieldAmount, model.FieldMethod, model.FieldStatus, model.FieldTransactionID,
	},

	{customer, model.KindDispute, AnyState}: disputePartyFields,
	{worker, model.KindDispute, AnyState}:   disputePartyFields,
	{admin, model.KindDispute, AnyState}: append(append([]string{}, disputePartyFields...),
		model.FieldResolution, model.FieldEscalationLevel),
}
