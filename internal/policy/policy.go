// Package policy decides whether an actor may perform an action on a resource.
// Decisions depend only on the action, the actor and the resource owner.
package policy

import (
	"errors"

	"github.com/google/uuid"
)

var (
	ErrUnauthenticated = errors.New("authentication required")
	ErrForbidden       = errors.New("permission denied")
)

type Action int

const (
	ActionRead Action = iota
	ActionCreate
	ActionUpdate
	ActionDelete
)

func (a Action) String() string {
	switch a {
	case ActionRead:
		return "read"
	case ActionCreate:
		return "create"
	case ActionUpdate:
		return "update"
	case ActionDelete:
		return "delete"
	}
	return "unknown"
}

// Safe reports whether the action never mutates state.
func (a Action) Safe() bool {
	return a == ActionRead
}

type Kind int

const (
	KindCategory Kind = iota
	KindGenre
	KindTitle
	KindReview
	KindComment
	// KindUser is account administration: any account, including its role.
	KindUser
	// KindProfile is the caller's own account.
	KindProfile
)

type Resource struct {
	Kind    Kind
	OwnerID uuid.UUID
}

type Decision int

const (
	Deny Decision = iota
	Allow
)

func (d Decision) Allowed() bool {
	return d == Allow
}

// Authorize evaluates safe-method bypass first, then ownership, then role; anything else is denied.
func Authorize(actor Actor, action Action, res Resource) Decision {
	if action.Safe() && publicRead(res.Kind) {
		return Allow
	}

	if actor.IsAnonymous() {
		return Deny
	}

	switch res.Kind {
	case KindProfile:
		if res.OwnerID == actor.ID && action != ActionCreate {
			return Allow
		}
		return Deny

	case KindReview, KindComment:
		if action == ActionCreate {
			return Allow
		}
		if res.OwnerID != uuid.Nil && res.OwnerID == actor.ID {
			return Allow
		}
		if actor.IsModerator() || actor.IsAdmin() {
			return Allow
		}
		return Deny

	case KindCategory, KindGenre, KindTitle, KindUser:
		if actor.IsAdmin() {
			return Allow
		}
		return Deny
	}

	return Deny
}

// Check is Authorize as an error: ErrUnauthenticated for anonymous callers, ErrForbidden otherwise.
func Check(actor Actor, action Action, res Resource) error {
	if Authorize(actor, action, res).Allowed() {
		return nil
	}
	if actor.IsAnonymous() {
		return ErrUnauthenticated
	}
	return ErrForbidden
}

func publicRead(kind Kind) bool {
	switch kind {
	case KindUser, KindProfile:
		return false
	}
	return true
}
