// Package authz decides whether an actor may act on an entity and which
// fields of it the actor may write.
package authz

import (
	"fmt"

	"taskhire/pkg/model"
)

type Action string

const (
	ActionCreate Action = "create"
	ActionRead   Action = "read"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
	ActionReview Action = "review"
)

type actionKey struct {
	kind   model.Kind
	action Action
}

type fieldKey struct {
	role  model.Role
	kind  model.Kind
	state string
}

// Resource is what the gate needs to know about an entity.
type Resource interface {
	State() string
	IsParty(actor model.Actor) bool
}

// Decision is the outcome of Authorize. Fields is only populated for updates.
type Decision struct {
	Allowed bool
	Fields  model.FieldSet
	Reason  string
}

type Gate struct {
	actions map[actionKey]map[model.Role]struct{}
	fields  map[fieldKey]model.FieldSet
}

// NewGate builds a gate from the marketplace's role tables.
func NewGate() *Gate {
	g := &Gate{
		actions: make(map[actionKey]map[model.Role]struct{}, len(defaultActions)),
		fields:  make(map[fieldKey]model.FieldSet, len(defaultFields)),
	}
	for key, roles := range defaultActions {
		set := make(map[model.Role]struct{}, len(roles))
		for _, r := range roles {
			set[r] = struct{}{}
		}
		g.actions[key] = set
	}
	for key, fields := range defaultFields {
		g.fields[key] = model.NewFieldSet(fields...)
	}
	return g
}

// Authorize checks the role table, then ownership against res. res may be nil
// for actions that have no target yet (listing). Admin skips the ownership
// check.
func (g *Gate) Authorize(actor model.Actor, action Action, kind model.Kind, res Resource) Decision {
	if !actor.Role.Valid() || actor.ID == "" {
		return deny("unknown actor")
	}

	roles, ok := g.actions[actionKey{kind: kind, action: action}]
	if !ok {
		return deny(fmt.Sprintf("%s is not supported on %s", action, kind))
	}
	if _, ok := roles[actor.Role]; !ok {
		return deny(fmt.Sprintf("role %s may not %s %s", actor.Role, action, kind))
	}

	if res != nil && !actor.IsAdmin() && !res.IsParty(actor) {
		return deny(fmt.Sprintf("actor is not a party to this %s", kind))
	}

	decision := Decision{Allowed: true}
	if action == ActionUpdate {
		state := ""
		if res != nil {
			state = res.State()
		}
		decision.Fields = g.WritableFields(actor.Role, kind, state)
	}
	return decision
}

// WritableFields resolves the field whitelist for a role on an entity in a
// given state, falling back to the AnyState row.
func (g *Gate) WritableFields(role model.Role, kind model.Kind, state string) model.FieldSet {
	if fs, ok := g.fields[fieldKey{role: role, kind: kind, state: state}]; ok {
		return fs
	}
	if fs, ok := g.fields[fieldKey{role: role, kind: kind, state: AnyState}]; ok {
		return fs
	}
	return model.FieldSet{}
}

func deny(reason string) Decision {
	return Decision{Allowed: false, Reason: reason}
}
