// Copyright (c) 2026 Critica. All rights reserved.

package sec

// # User Roles

// UserRole represents the authorization level granted to an account.
type UserRole string

const (
	// Unrestricted system access
	RoleAdmin UserRole = "admin"

	// Can edit and remove any review or comment
	RoleModerator UserRole = "moderator"

	// Default role for standard registered accounts
	RoleUser UserRole = "user"

	// Unauthenticated actor. Never stored on an account record.
	RoleAnonymous UserRole = "anonymous"
)

// # Role Hierarchy

// AtLeast checks if the current role meets or exceeds the required target role.
func (r UserRole) AtLeast(target UserRole) bool {
	return r.level() >= target.level()
}

// IsValid reports whether the role is one of the assignable account roles.
// Anonymous is a request state, not an assignable role.
func (r UserRole) IsValid() bool {
	switch r {
	case RoleAdmin, RoleModerator, RoleUser:
		return true
	}
	return false
}

// level maps a role to a numeric hierarchy level for comparison logic.
func (r UserRole) level() int {

	// Linear scale (10-40) allows for future intermediate roles
	switch r {
	case RoleAdmin:
		return 40
	case RoleModerator:
		return 30
	case RoleUser:
		return 10
	default:
		return 0
	}
}
