package authz

import "taskhire/pkg/model"

// partyByRole matches customers against the customer ref and workers against
// the worker ref.
func partyByRole(actor model.Actor, customerID, workerID string) bool {
	switch actor.Role {
	case model.RoleCustomer:
		return customerID != "" && customerID == actor.ID
	case model.RoleWorker:
		return workerID != "" && workerID == actor.ID
	}
	return false
}

type bookingResource struct{ b *model.Booking }

func Booking(b *model.Booking) Resource { return bookingResource{b: b} }

func (r bookingResource) State() string { return string(r.b.Status) }

func (r bookingResource) IsParty(actor model.Actor) bool {
	return partyByRole(actor, r.b.Customer, r.b.Worker)
}

type paymentResource struct{ p *model.Payment }

func Payment(p *model.Payment) Resource { return paymentResource{p: p} }

func (r paymentResource) State() string { return string(r.p.Status) }

func (r paymentResource) IsParty(actor model.Actor) bool {
	return partyByRole(actor, r.p.Customer, r.p.Worker)
}

type disputeResource struct{ d *model.Dispute }

func Dispute(d *model.Dispute) Resource { return disputeResource{d: d} }

func (r disputeResource) State() string { return string(r.d.Status) }

// IsParty for disputes ignores the role: raisedBy or against.
func (r disputeResource) IsParty(actor model.Actor) bool {
	if actor.ID == "" {
		return false
	}
	return r.d.RaisedBy == actor.ID || r.d.Against == actor.ID
}
