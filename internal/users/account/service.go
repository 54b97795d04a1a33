// Copyright (c) 2026 Critica. All rights reserved.

package account

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/critica-app/critica/internal/platform/policy"
	"github.com/critica-app/critica/internal/platform/sec"
	"github.com/critica-app/critica/internal/platform/validate"
	"github.com/critica-app/critica/internal/users/auth"
	"github.com/critica-app/critica/pkg/uuid"
)

// # Service Layer

// Service orchestrates account administration and profile self-service.
//
// Administrative operations run the manage-users policy check before touching
// storage; profile operations trust the authenticated identity resolved at
// the transport boundary.
type Service struct {
	repo   AccountRepository
	logger *slog.Logger
}

// NewService constructs a new account [Service].
func NewService(repo AccountRepository, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

// CreateInput carries the fields an administrator sets on a new account.
type CreateInput struct {
	Email     string
	Username  string
	Role      string
	FirstName string
	LastName  string
	Bio       string
}

// UpdateInput defines the mutable subset of account fields.
// Nil fields keep their stored value.
type UpdateInput struct {
	Email     *string
	Username  *string
	Role      *string
	FirstName *string
	LastName  *string
	Bio       *string
}

// # Administration

/*
ListUsers returns a page of accounts for the admin console.

Parameters:
  - context: context.Context
  - actor: policy.Actor
  - search: string (Optional username substring filter)
  - limit: int
  - offset: int

Returns:
  - []*auth.User: Page of accounts ordered by username
  - int: Total matching accounts
  - error: apperr.Forbidden unless the actor is an administrator
*/
func (service *Service) ListUsers(context context.Context, actor policy.Actor, search string, limit, offset int) ([]*auth.User, int, error) {
	if err := policy.Check(actor, policy.ActionManageUsers, ""); err != nil {
		return nil, 0, err
	}
	return service.repo.List(context, search, limit, offset)
}

/*
GetUser retrieves one account by username for the admin console.

Parameters:
  - context: context.Context
  - actor: policy.Actor
  - username: string

Returns:
  - *auth.User: The account
  - error: apperr.Forbidden or apperr.NotFound
*/
func (service *Service) GetUser(context context.Context, actor policy.Actor, username string) (*auth.User, error) {
	if err := policy.Check(actor, policy.ActionManageUsers, ""); err != nil {
		return nil, err
	}
	return service.repo.FindByUsername(context, username)
}

/*
CreateUser registers an account on behalf of an administrator.

Description: Unlike signup, the role is assignable here. The new account still
obtains tokens through the regular confirmation-code flow.

Parameters:
  - context: context.Context
  - actor: policy.Actor
  - input: CreateInput

Returns:
  - *auth.User: The created account
  - error: Forbidden, validation, or apperr.Conflict failures
*/
func (service *Service) CreateUser(context context.Context, actor policy.Actor, input CreateInput) (*auth.User, error) {
	if err := policy.Check(actor, policy.ActionManageUsers, ""); err != nil {
		return nil, err
	}

	user := &auth.User{
		ID:        uuid.New(),
		Username:  input.Username,
		Email:     input.Email,
		Role:      sec.UserRole(input.Role),
		FirstName: input.FirstName,
		LastName:  input.LastName,
		Bio:       input.Bio,
	}

	if err := validateIdentity(user); err != nil {
		return nil, err
	}

	if err := service.repo.Create(context, user); err != nil {
		return nil, fmt.Errorf("account_service_create_failed: %w", err)
	}

	service.logger.Info("user_created",
		slog.String("username", user.Username),
		slog.String("role", string(user.Role)),
		slog.String("actor", actor.Username),
	)

	return user, nil
}

/*
UpdateUser applies a partial set of changes to any account, role included.

Description: Realizes role assignment: an administrator patching the role
field is the only way a role ever changes.

Parameters:
  - context: context.Context
  - actor: policy.Actor
  - username: string (Current username of the target account)
  - input: UpdateInput

Returns:
  - *auth.User: The updated account
  - error: Forbidden, NotFound, validation, or Conflict failures
*/
func (service *Service) UpdateUser(context context.Context, actor policy.Actor, username string, input UpdateInput) (*auth.User, error) {
	if err := policy.Check(actor, policy.ActionManageUsers, ""); err != nil {
		return nil, err
	}

	user, err := service.repo.FindByUsername(context, username)
	if err != nil {
		return nil, err
	}

	applyUpdate(user, input)
	if err := validateIdentity(user); err != nil {
		return nil, err
	}

	if err := service.repo.Update(context, user); err != nil {
		return nil, fmt.Errorf("account_service_update_failed: %w", err)
	}

	service.logger.Info("user_updated",
		slog.String("username", user.Username),
		slog.String("actor", actor.Username),
	)

	return user, nil
}

/*
DeleteUser permanently removes an account.

Description: The account's reviews and comments survive with their author
link cleared, so title ratings are unaffected.

Parameters:
  - context: context.Context
  - actor: policy.Actor
  - username: string

Returns:
  - error: Forbidden, NotFound, or storage failures
*/
func (service *Service) DeleteUser(context context.Context, actor policy.Actor, username string) error {
	if err := policy.Check(actor, policy.ActionManageUsers, ""); err != nil {
		return err
	}

	if err := service.repo.DeleteByUsername(context, username); err != nil {
		return err
	}

	service.logger.Warn("user_deleted",
		slog.String("username", username),
		slog.String("actor", actor.Username),
	)

	return nil
}

// # Profile Self-Service

/*
Profile retrieves the account behind an authenticated identity.

Parameters:
  - context: context.Context
  - username: string (From verified token claims)

Returns:
  - *auth.User: The caller's own account
  - error: NotFound when the account no longer exists
*/
func (service *Service) Profile(context context.Context, username string) (*auth.User, error) {
	user, err := service.repo.FindByUsername(context, username)
	if err != nil {
		return nil, fmt.Errorf("account_service_get_profile_failed: %w", err)
	}
	return user, nil
}

/*
UpdateProfile applies a partial set of changes to the caller's own account.

Description: The role field is immutable through this path. An attempt to
change it fails validation instead of being silently dropped.

Parameters:
  - context: context.Context
  - username: string (From verified token claims)
  - input: UpdateInput

Returns:
  - *auth.User: The updated account
  - error: Validation, NotFound, or Conflict failures
*/
func (service *Service) UpdateProfile(context context.Context, username string, input UpdateInput) (*auth.User, error) {
	if input.Role != nil {
		return nil, validate.RequiredError(auth.FieldRole, "Role cannot be changed through this endpoint")
	}

	user, err := service.repo.FindByUsername(context, username)
	if err != nil {
		return nil, err
	}

	applyUpdate(user, input)
	if err := validateIdentity(user); err != nil {
		return nil, err
	}

	if err := service.repo.Update(context, user); err != nil {
		return nil, fmt.Errorf("account_service_update_profile_failed: %w", err)
	}

	service.logger.Info("user_profile_updated",
		slog.String("username", user.Username),
	)

	return user, nil
}

// # Shared Helpers

// applyUpdate copies the provided fields of input onto the user.
func applyUpdate(user *auth.User, input UpdateInput) {
	if input.Email != nil {
		user.Email = *input.Email
	}
	if input.Username != nil {
		user.Username = *input.Username
	}
	if input.Role != nil {
		user.Role = sec.UserRole(*input.Role)
	}
	if input.FirstName != nil {
		user.FirstName = *input.FirstName
	}
	if input.LastName != nil {
		user.LastName = *input.LastName
	}
	if input.Bio != nil {
		user.Bio = *input.Bio
	}
}

// validateIdentity checks the full post-update state of an account, so the
// same rules hold no matter which fields a patch touched.
func validateIdentity(user *auth.User) error {
	validator := &validate.Validator{}
	validator.Required(auth.FieldEmail, user.Email).
		MaxLen(auth.FieldEmail, user.Email, auth.EmailMaxLen).
		Email(auth.FieldEmail, user.Email).
		Required(auth.FieldUsername, user.Username).
		MaxLen(auth.FieldUsername, user.Username, auth.UsernameMaxLen).
		Username(auth.FieldUsername, user.Username).
		Custom(auth.FieldRole, !user.Role.IsValid(), "Must be one of: user, moderator, admin").
		MaxLen(auth.FieldFirstName, user.FirstName, 150).
		MaxLen(auth.FieldLastName, user.LastName, 150)

	return validator.Err()
}
