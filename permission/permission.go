// Package permission answers access-control questions about delegated
// wishlist management. Every function is a pure function of its inputs
// and safe to call from any number of handlers concurrently; nothing
// here touches storage. Callers load the target record, ask this
// package, and only then invoke the registry mutator.
package permission

import (
	"github.com/giftgrove/giftgrove/internal/domain"
)

// Access is the result of an evaluation.
type Access struct {
	Allowed bool
	Level   domain.Level
}

// EvaluateAccess is the single source of truth. Decision order, first
// match wins: the actor owns the record; the actor holds a manager
// entry on it; nobody.
func EvaluateAccess(actor domain.User, targetID string, target domain.User) Access {
	if actor.ID == targetID {
		return Access{Allowed: true, Level: domain.LevelOwner}
	}

	if entry, ok := target.FindManager(actor.ID); ok {
		return Access{Allowed: true, Level: entry.Level}
	}

	return Access{Allowed: false, Level: domain.LevelNone}
}

// CanMoveItems reports whether the actor may reorder entries on the
// target's list. Any delegate level suffices.
func CanMoveItems(actor domain.User, targetID string, target domain.User) bool {
	return EvaluateAccess(actor, targetID, target).Allowed
}

// CanEditProfile reports whether the actor may edit the target's
// profile fields. Requires rank full or above, so owners always pass on
// their own account.
func CanEditProfile(actor domain.User, targetID string, target domain.User) bool {
	access := EvaluateAccess(actor, targetID, target)
	return access.Allowed && access.Level.Rank() >= domain.LevelFull.Rank()
}

// CanManageManagers reports whether the actor may add managers to the
// target, or (with levelBeingGranted == LevelNone) administer them
// generally. Owners may always grant collaborator access on their own
// account; anything beyond that needs admin or rank full or above.
func CanManageManagers(actor domain.User, targetID string, target domain.User, levelBeingGranted domain.Level) bool {
	if actor.Admin {
		return true
	}

	if actor.ID == targetID && levelBeingGranted == domain.LevelCollaborator {
		return true
	}

	access := EvaluateAccess(actor, targetID, target)
	return access.Allowed && access.Level.Rank() >= domain.LevelFull.Rank()
}

// CanRemoveManager reports whether the actor may remove the named
// delegate from the target. Owners may clear their own collaborators,
// but removing a full delegate takes admin or full rank: an owner must
// not be able to silently strip oversight they previously granted.
func CanRemoveManager(actor domain.User, targetID string, target domain.User, delegateIDToRemove string) bool {
	if actor.Admin {
		return true
	}

	access := EvaluateAccess(actor, targetID, target)
	if access.Allowed && access.Level.Rank() >= domain.LevelFull.Rank() {
		return true
	}

	if actor.ID == targetID {
		if entry, ok := target.FindManager(delegateIDToRemove); ok && entry.Level == domain.LevelCollaborator {
			return true
		}
	}

	return false
}
