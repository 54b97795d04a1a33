// Copyright (c) 2026 Critica. All rights reserved.

/*
Package policy is the authorization decision engine for Critica.

It maps (actor role, action, ownership) to an allow/deny outcome through an
explicit permission table. The engine is a pure function over its inputs: it
holds no state, performs no I/O, and is consulted by every mutating service
operation before storage is touched. A deny short-circuits the operation with
a Forbidden error and no side effect.

# Permission Table

	Action                      anonymous  user  moderator  admin
	read content                    x       x        x        x
	create review/comment           -       x        x        x
	edit own review/comment         -       x        x        x
	edit others' review/comment     -       -        x        x
	manage catalog entities         -       -        -        x
	manage users / change roles     -       -        -        x

Higher roles inherit everything below them, so the table stores only the
minimum role per action and ownership case.
*/
package policy

import (
	"github.com/critica-app/critica/internal/platform/apperr"
	"github.com/critica-app/critica/internal/platform/sec"
)

// Action identifies a class of operations gated by the permission table.
type Action string

const (
	// ActionReadContent covers listing and fetching catalog entries,
	// reviews, and comments.
	ActionReadContent Action = "read_content"

	// ActionCreateContent covers posting a new review or comment.
	ActionCreateContent Action = "create_content"

	// ActionEditContent covers updating or deleting an existing review or
	// comment. Ownership decides which table row applies.
	ActionEditContent Action = "edit_content"

	// ActionManageCatalog covers create/update/delete of categories,
	// genres, and titles.
	ActionManageCatalog Action = "manage_catalog"

	// ActionManageUsers covers administrative account management,
	// including role changes.
	ActionManageUsers Action = "manage_users"
)

// Actor is the resolved identity attached to a request: an account ID plus
// role, or the anonymous actor when no credential was presented. Services
// trust this pair as-is; token verification happens at the boundary.
type Actor struct {
	ID       string
	Username string
	Role     sec.UserRole
}

// Anonymous returns the actor used for requests without a verified identity.
func Anonymous() Actor {
	return Actor{Role: sec.RoleAnonymous}
}

// IsAnonymous reports whether the actor carries no verified identity.
func (a Actor) IsAnonymous() bool {
	return a.ID == "" || a.Role == sec.RoleAnonymous
}

// Owns reports whether the actor is the owner identified by ownerID.
// A record whose owner was deleted (empty ownerID) is owned by nobody.
func (a Actor) Owns(ownerID string) bool {
	return ownerID != "" && a.ID == ownerID
}

// # Decision Table

// requirement is the minimum role for an action, split by ownership case.
type requirement struct {
	owner sec.UserRole
	other sec.UserRole
}

var table = map[Action]requirement{
	ActionReadContent:   {owner: sec.RoleAnonymous, other: sec.RoleAnonymous},
	ActionCreateContent: {owner: sec.RoleUser, other: sec.RoleUser},
	ActionEditContent:   {owner: sec.RoleUser, other: sec.RoleModerator},
	ActionManageCatalog: {owner: sec.RoleAdmin, other: sec.RoleAdmin},
	ActionManageUsers:   {owner: sec.RoleAdmin, other: sec.RoleAdmin},
}

// Decide is the pure decision function: it reports whether the given role may
// perform the action, considering ownership of the target record. Unknown
// actions are always denied.
func Decide(role sec.UserRole, action Action, isOwner bool) bool {
	req, ok := table[action]
	if !ok {
		return false
	}

	minimum := req.other
	if isOwner {
		minimum = req.owner
	}

	// Anonymous-level actions are open to everyone, including actors whose
	// role string is unknown to this build. Anything higher needs a role
	// that ranks in the hierarchy.
	if minimum == sec.RoleAnonymous {
		return true
	}
	return role.AtLeast(minimum)
}

// # Service Entry Point

// Check runs Decide for the actor against the record owner and converts a
// deny into the canonical Forbidden error. Mutating services call this first
// and return the error untouched, so a denial never reaches storage. Denials
// map to Forbidden for anonymous actors too.
func Check(actor Actor, action Action, ownerID string) error {
	if Decide(actor.Role, action, actor.Owns(ownerID)) {
		return nil
	}
	return apperr.Forbidden("You do not have permission to perform this action")
}
