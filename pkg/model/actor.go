package model

import (
	"sort"
	"strings"
)

type Role string

const (
	RoleCustomer Role = "customer"
	RoleWorker   Role = "worker"
	RoleAdmin    Role = "admin"
)

func (r Role) Valid() bool {
	switch r {
	case RoleCustomer, RoleWorker, RoleAdmin:
		return true
	}
	return false
}

// Model is the capitalized role label stored next to actor refs
// (createdByModel, raisedByModel and friends).
func (r Role) Model() string {
	if r == "" {
		return ""
	}
	s := string(r)
	return strings.ToUpper(s[:1]) + s[1:]
}

// RoleFromModel is the inverse of Role.Model.
func RoleFromModel(model string) Role {
	return Role(strings.ToLower(model))
}

// Actor is the authenticated caller attached to every request.
type Actor struct {
	ID   string `json:"id"`
	Role Role   `json:"role"`
}

func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}

// Party addresses a user in a specific role, which is how notifications are
// routed and scoped.
type Party struct {
	ID   string `json:"id" bson:"id" validate:"required,max=64"`
	Role Role   `json:"role" bson:"role" validate:"required,oneof=customer worker admin"`
}

func (a Actor) Party() Party {
	return Party{ID: a.ID, Role: a.Role}
}

// Kind names the entity an authorization decision is about.
type Kind string

const (
	KindBooking Kind = "booking"
	KindPayment Kind = "payment"
	KindDispute Kind = "dispute"
)

// FieldSet is a set of writable field names.
type FieldSet map[string]struct{}

func NewFieldSet(fields ...string) FieldSet {
	fs := make(FieldSet, len(fields))
	for _, f := range fields {
		fs[f] = struct{}{}
	}
	return fs
}

func (fs FieldSet) Has(field string) bool {
	_, ok := fs[field]
	return ok
}

// Names returns the fields in sorted order.
func (fs FieldSet) Names() []string {
	names := make([]string, 0, len(fs))
	for f := range fs {
		names = append(names, f)
	}
	sort.Strings(names)
	return names
}
