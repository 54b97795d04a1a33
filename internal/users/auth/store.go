// Copyright (c) 2026 Critica. All rights reserved.

package auth

import (
	"context"
	"time"
)

// # User Data Access

// UserRepository defines the data access contract the signup flow needs.
// The account package owns the full administrative contract on the same table.
type UserRepository interface {

	/*
		FindByEmail returns the account with the given email.

		Parameters:
		  - context: context.Context
		  - email: string

		Returns:
		  - *User: Hydrated entity
		  - error: apperr.NotFound or database retrieval failures
	*/
	FindByEmail(context context.Context, email string) (*User, error)

	/*
		FindByUsername returns the account with the given username.

		Parameters:
		  - context: context.Context
		  - username: string

		Returns:
		  - *User: Hydrated entity
		  - error: apperr.NotFound or database retrieval failures
	*/
	FindByUsername(context context.Context, username string) (*User, error)

	/*
		Create persists a brand-new user account to the storage.

		Parameters:
		  - context: context.Context
		  - user: *User

		Returns:
		  - error: apperr.Conflict on identity collisions or persistence failures
	*/
	Create(context context.Context, user *User) error
}

// # Volatile Data Access

// CodeRepository defines the contract for storing volatile confirmation codes.
//
// Codes are stored hashed, keyed by username, and expire on their own. A code
// survives at most one successful exchange.
type CodeRepository interface {

	/*
		Set stores a hashed confirmation code for a username with a bounded lifetime.

		Parameters:
		  - context: context.Context
		  - username: string
		  - codeHash: string (bcrypt hash, never the plain code)
		  - ttl: time.Duration

		Returns:
		  - error: Persistence failures
	*/
	Set(context context.Context, username, codeHash string, ttl time.Duration) error

	/*
		Get retrieves the stored code hash for a username.

		Parameters:
		  - context: context.Context
		  - username: string

		Returns:
		  - string: Stored bcrypt hash
		  - error: apperr.NotFound when no live code exists
	*/
	Get(context context.Context, username string) (string, error)

	/*
		Delete removes a confirmation code after successful use.

		Parameters:
		  - context: context.Context
		  - username: string

		Returns:
		  - error: Persistence failures
	*/
	Delete(context context.Context, username string) error
}
