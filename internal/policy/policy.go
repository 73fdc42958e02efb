// Package policy decides whether an actor may perform an action on a
// resource class or on one instance of it.
package policy

import "github.com/google/uuid"

type Tier int

const (
	Anonymous Tier = iota
	Regular
	Staff
)

func (t Tier) String() string {
	switch t {
	case Regular:
		return "regular"
	case Staff:
		return "staff"
	default:
		return "anonymous"
	}
}

type Actor struct {
	UserID uuid.UUID
	Tier   Tier
}

func AnonymousActor() Actor { return Actor{Tier: Anonymous} }

func UserActor(id uuid.UUID, staff bool) Actor {
	if staff {
		return Actor{UserID: id, Tier: Staff}
	}
	return Actor{UserID: id, Tier: Regular}
}

func (a Actor) IsAuthenticated() bool { return a.Tier != Anonymous }

type Action string

const (
	Read   Action = "read"
	Create Action = "create"
	Update Action = "update"
	Delete Action = "delete"
)

type Resource string

const (
	Airport      Resource = "airport"
	AirplaneType Resource = "airplane_type"
	Airplane     Resource = "airplane"
	Crew         Resource = "crew"
	Route        Resource = "route"
	Flight       Resource = "flight"
	Order        Resource = "order"
	Ticket       Resource = "ticket"
)

type Decision int

const (
	Allow Decision = iota
	DenyUnauthenticated
	DenyForbidden
	// DenyHidden is an object-level denial reported as "not found".
	DenyHidden
)

func (d Decision) Allowed() bool { return d == Allow }

type scope int

const (
	none scope = iota
	own
	all
)

type grants map[Action]scope

var (
	catalog = map[Tier]grants{
		Anonymous: {Read: all},
		Regular:   {Read: all, Create: all},
		Staff:     {Read: all, Create: all, Update: all},
	}

	table = map[Resource]map[Tier]grants{
		Airport:      catalog,
		AirplaneType: catalog,
		Airplane:     catalog,
		Crew:         catalog,
		Route:        catalog,
		Flight: {
			Anonymous: {Read: all},
			Regular:   {Read: all},
			Staff:     {Read: all, Create: all, Update: all, Delete: all},
		},
		Order: {
			Regular: {Read: own, Create: own},
			Staff:   {Read: own, Create: own, Update: own},
		},
		// Ticket creation is owner-only for every tier: staff must also
		// supply an order of their own.
		Ticket: {
			Regular: {Read: own, Create: own},
			Staff:   {Read: all, Create: own, Update: all},
		},
	}

	// hidden lists resources whose object-level denials must not leak existence.
	hidden = map[Resource]bool{Order: true, Ticket: true}
)

// Authorize decides a class-level request when owner is nil and an
// object-level one otherwise; owner is the id of the user owning the target.
// No resource grants Delete except Flight to staff.
func Authorize(actor Actor, action Action, res Resource, owner *uuid.UUID) Decision {
	s := table[res][actor.Tier][action]
	if s == none {
		if !actor.IsAuthenticated() {
			return DenyUnauthenticated
		}
		return DenyForbidden
	}
	if s == all || owner == nil || *owner == actor.UserID {
		return Allow
	}
	if hidden[res] {
		return DenyHidden
	}
	return DenyForbidden
}

// OwnedOnly reports whether a listing of res must be narrowed to the
// actor's own records.
func OwnedOnly(actor Actor, res Resource) bool {
	return table[res][actor.Tier][Read] == own
}
