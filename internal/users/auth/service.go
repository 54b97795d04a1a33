// Copyright (c) 2026 Critica. All rights reserved.

/*
Package auth: business logic of the two-step authentication flow.

Signup resolves an (email, username) pair onto an account, creating one when
the pair is new and re-issuing a code when the pair exactly matches an
existing account, then stores a hashed one-time confirmation code with a
short TTL.
Exchange trades a live code for an RS256-signed access token carrying the
account's id, username, and role.

Architecture:

  - Service: Orchestrates signup resolution, code issuance, and exchange.
  - Repository: Abstracted interfaces for Postgres (Users) and Redis (Codes).
  - Security: Bcrypt-hashed codes and RSA-signed JWTs via the sec package.
*/
package auth

import (
	stdctx "context"
	"fmt"
	"log/slog"
	"time"

	"github.com/critica-app/critica/internal/platform/apperr"
	"github.com/critica-app/critica/internal/platform/constants"
	"github.com/critica-app/critica/internal/platform/metrics"
	"github.com/critica-app/critica/internal/platform/sec"
	"github.com/critica-app/critica/internal/platform/validate"
	"github.com/critica-app/critica/pkg/uuid"
)

// # Contracts & Types

// TokenProvider defines the contract for generating security tokens.
// [sec.TokenService] satisfies it.
type TokenProvider interface {
	// GenerateAccessToken creates a signed JWT string for the given user.
	//
	// # Parameters
	//   - userID: The ID of the account.
	//   - username: The username of the account.
	//   - role: The role of the account.
	//   - timeToLive: The duration before the token expires.
	//
	// # Returns
	//   - A signed JWT string, or an err if signing fails.
	GenerateAccessToken(userID, username, role string, timeToLive time.Duration) (string, error)
}

// codeDeliveryTimeout bounds the background delivery of one confirmation code.
const codeDeliveryTimeout = 5 * time.Second

// Service implements the signup and token exchange use cases.
//
// # Review Process
//
// This service is critical for security. Any changes to code issuance,
// verification, or token signing must be reviewed before merging.
type Service struct {
	users  UserRepository
	codes  CodeRepository
	sender Sender
	tokens TokenProvider
	logger *slog.Logger
}

// NewService constructs the auth [Service] with its collaborators.
func NewService(
	users UserRepository,
	codes CodeRepository,
	sender Sender,
	tokens TokenProvider,
	logger *slog.Logger,
) *Service {
	return &Service{
		users:  users,
		codes:  codes,
		sender: sender,
		tokens: tokens,
		logger: logger,
	}
}

// SignupInput carries the identity pair submitted at signup.
type SignupInput struct {
	Email    string
	Username string
}

// # Signup

/*
Signup registers an account or re-issues a confirmation code for one.

Description: Validates the identity pair, then resolves it against existing
accounts. An exact match on both email and username belongs to a returning
user and simply re-issues a fresh code. A collision on either field alone
belongs to someone else and fails validation. A fully unknown pair creates a
new account with the member role. Every successful outcome stores a hashed
one-time code and dispatches the plain code in the background.

Parameters:
  - context: context.Context
  - input: SignupInput

Returns:
  - *User: The new or existing account the code was issued for
  - error: Validation failures or storage errors
*/
func (service *Service) Signup(context stdctx.Context, input SignupInput) (*User, error) {
	validator := &validate.Validator{}
	validator.Required(FieldEmail, input.Email).
		MaxLen(FieldEmail, input.Email, EmailMaxLen).
		Email(FieldEmail, input.Email).
		Required(FieldUsername, input.Username).
		MaxLen(FieldUsername, input.Username, UsernameMaxLen).
		Username(FieldUsername, input.Username)

	if err := validator.Err(); err != nil {
		return nil, err
	}

	user, err := service.resolveAccount(context, input)
	if err != nil {
		return nil, err
	}

	if err := service.issueCode(context, user); err != nil {
		return nil, err
	}

	metrics.SignupsTotal.Inc()
	service.logger.Info("signup_code_issued",
		slog.String("username", user.Username),
	)

	return user, nil
}

// resolveAccount maps the identity pair onto an account: the existing owner
// of both fields, a brand-new account, or a validation failure when either
// field is taken by someone else.
func (service *Service) resolveAccount(context stdctx.Context, input SignupInput) (*User, error) {
	byUsername, err := service.users.FindByUsername(context, input.Username)
	if err != nil && !apperr.IsNotFound(err) {
		return nil, fmt.Errorf("auth_service_signup_lookup_failed: %w", err)
	}

	byEmail, err := service.users.FindByEmail(context, input.Email)
	if err != nil && !apperr.IsNotFound(err) {
		return nil, fmt.Errorf("auth_service_signup_lookup_failed: %w", err)
	}

	// Returning user: both fields resolve to the same account.
	if byUsername != nil && byEmail != nil && byUsername.ID == byEmail.ID {
		return byUsername, nil
	}

	if byUsername != nil || byEmail != nil {
		validator := &validate.Validator{}
		validator.Custom(FieldUsername, byUsername != nil, "A user with this username already exists").
			Custom(FieldEmail, byEmail != nil, "A user with this email already exists")
		return nil, validator.Err()
	}

	user := &User{
		ID:       uuid.New(),
		Username: input.Username,
		Email:    input.Email,
		Role:     sec.RoleUser,
	}

	if err := service.users.Create(context, user); err != nil {
		return nil, fmt.Errorf("auth_service_signup_create_failed: %w", err)
	}

	service.logger.Info("user_registered",
		slog.String("user_id", user.ID),
		slog.String("username", user.Username),
	)

	return user, nil
}

// issueCode stores a hashed one-time code for the user and dispatches the
// plain code in the background. Delivery failure never rolls back signup.
func (service *Service) issueCode(context stdctx.Context, user *User) error {
	code, err := sec.GenerateConfirmationCode(constants.ConfirmationCodeLength)
	if err != nil {
		return fmt.Errorf("auth_service_code_generate_failed: %w", err)
	}

	hash, err := sec.HashCode(code)
	if err != nil {
		return fmt.Errorf("auth_service_code_hash_failed: %w", err)
	}

	if err := service.codes.Set(context, user.Username, hash, constants.ConfirmationCodeTTL); err != nil {
		return fmt.Errorf("auth_service_code_store_failed: %w", err)
	}

	go func() {
		sendContext, cancel := stdctx.WithTimeout(stdctx.Background(), codeDeliveryTimeout)
		defer cancel()

		if err := service.sender.Send(sendContext, user.Email, code); err != nil {
			service.logger.Warn("confirmation_code_delivery_failed",
				slog.String("username", user.Username),
				slog.Any("error", err),
			)
		}
	}()

	return nil
}

// # Token Exchange

/*
Exchange trades a valid (username, confirmation code) pair for an access token.

Description: An unknown username and a non-matching code fail with the same
Unauthorized error, so the endpoint never reveals which half was wrong. A
matching code is deleted before the token is returned, making every code
single-use.

Parameters:
  - context: context.Context
  - username: string
  - code: string

Returns:
  - string: Signed JWT access token
  - error: apperr.Unauthorized, validation, or signing failures
*/
func (service *Service) Exchange(context stdctx.Context, username, code string) (string, error) {
	validator := &validate.Validator{}
	validator.Required(FieldUsername, username).
		Required(FieldConfirmationCode, code)

	if err := validator.Err(); err != nil {
		return "", err
	}

	user, err := service.users.FindByUsername(context, username)
	if err != nil {
		if apperr.IsNotFound(err) {
			return "", apperr.Unauthorized("Invalid username or confirmation code")
		}
		return "", fmt.Errorf("auth_service_exchange_lookup_failed: %w", err)
	}

	storedHash, err := service.codes.Get(context, username)
	if err != nil {
		if apperr.IsNotFound(err) {
			return "", apperr.Unauthorized("Invalid username or confirmation code")
		}
		return "", fmt.Errorf("auth_service_exchange_code_lookup_failed: %w", err)
	}

	if !sec.CheckCodeHash(code, storedHash) {
		return "", apperr.Unauthorized("Invalid username or confirmation code")
	}

	// Single-use: a verified code never works twice. The TTL bounds the
	// window if this best-effort delete fails.
	_ = service.codes.Delete(context, username)

	token, err := service.tokens.GenerateAccessToken(user.ID, user.Username, string(user.Role), constants.AccessTokenTTL)
	if err != nil {
		return "", fmt.Errorf("auth_service_exchange_sign_failed: %w", err)
	}

	metrics.TokensIssuedTotal.Inc()
	service.logger.Info("access_token_issued",
		slog.String("user_id", user.ID),
		slog.String("username", user.Username),
	)

	return token, nil
}
