// Copyright (c) 2026 Critica. All rights reserved.

/*
Package account handles administrative user management and self-service profiles.

Administrators list, create, update, and delete any account, including role
assignment. Every signed-in member reads and edits their own profile through
the /me surface, where the role field is immutable.

# Architecture

  - Entities: This package depends on the auth package for the [auth.User] entity.
  - Authorization: Administrative operations consult the policy engine before storage.
*/
package account

import (
	"context"

	"github.com/critica-app/critica/internal/users/auth"
)

// # Repository Contracts

// AccountRepository defines the persistence contract for account administration.
// It operates on the same users.account table the auth package writes to.
type AccountRepository interface {

	/*
		List returns a page of accounts ordered by username, with the total count.

		Parameters:
		  - context: context.Context
		  - search: string (Optional username substring filter)
		  - limit: int
		  - offset: int

		Returns:
		  - []*auth.User: Page of accounts
		  - int: Total matching accounts
		  - error: Retrieval failures
	*/
	List(context context.Context, search string, limit, offset int) ([]*auth.User, int, error)

	/*
		FindByUsername retrieves the account with the given username.

		Parameters:
		  - context: context.Context
		  - username: string

		Returns:
		  - *auth.User: Hydrated account entity
		  - error: apperr.NotFound or storage failures
	*/
	FindByUsername(context context.Context, username string) (*auth.User, error)

	/*
		Create persists an administrator-defined account, role included.

		Parameters:
		  - context: context.Context
		  - user: *auth.User

		Returns:
		  - error: apperr.Conflict on identity collisions or storage failures
	*/
	Create(context context.Context, user *auth.User) error

	/*
		Update persists changes to an account's identity, profile, and role fields.

		Parameters:
		  - context: context.Context
		  - user: *auth.User (Hydrated entity with changes applied)

		Returns:
		  - error: apperr.Conflict on identity collisions or storage failures
	*/
	Update(context context.Context, user *auth.User) error

	/*
		DeleteByUsername permanently removes an account. Reviews and comments
		authored by the account survive with their author link cleared.

		Parameters:
		  - context: context.Context
		  - username: string

		Returns:
		  - error: apperr.NotFound when no such account exists
	*/
	DeleteByUsername(context context.Context, username string) error
}
