// Copyright (c) 2026 Critica. All rights reserved.

/*
Package auth implements account signup and the confirmation-code token exchange.

It defines the [User] entity shared across the users domain and the two-step
authentication flow: signup stores a short-lived one-time code for an account,
and a later exchange of that code yields a signed access token.

# Architecture

This layer is the "Truth" of the identity system. The [User] entity has no
external dependencies beyond the role type, and every business rule about who
may obtain a token lives here.
*/
package auth

import (
	"time"

	"github.com/critica-app/critica/internal/platform/sec"
)

// # Domain Entities

// User represents a registered member of the Critica platform.
type User struct {
	ID        string       `json:"id"`
	Username  string       `json:"username"`
	Email     string       `json:"email"`
	Role      sec.UserRole `json:"role"`
	FirstName string       `json:"first_name"`
	LastName  string       `json:"last_name"`
	Bio       string       `json:"bio"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}

// # Identity Constraints

const (
	// UsernameMaxLen bounds the length of an account name.
	UsernameMaxLen = 150

	// EmailMaxLen bounds the length of an account email address.
	EmailMaxLen = 254
)

// # Field Identifiers

// Global field names for validation and identity mapping in the auth domain.
const (
	FieldUsername         = "username"
	FieldEmail            = "email"
	FieldConfirmationCode = "confirmation_code"
	FieldToken            = "token"
	FieldRole             = "role"
	FieldFirstName        = "first_name"
	FieldLastName         = "last_name"
	FieldBio              = "bio"
)
