// Copyright (c) 2026 Critica. All rights reserved.

package account_test

import (
	"context"
	"io"
	"log/slog"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/critica-app/critica/internal/platform/apperr"
	"github.com/critica-app/critica/internal/platform/policy"
	"github.com/critica-app/critica/internal/platform/sec"
	"github.com/critica-app/critica/internal/users/account"
	"github.com/critica-app/critica/internal/users/auth"
	"github.com/critica-app/critica/pkg/pointer"
)

// # Test Fixtures

var (
	admin     = policy.Actor{ID: "user-admin", Username: "keeper", Role: sec.RoleAdmin}
	moderator = policy.Actor{ID: "user-mod", Username: "night_mod", Role: sec.RoleModerator}
	regular   = policy.Actor{ID: "user-plain", Username: "plain", Role: sec.RoleUser}
)

// # Test Fakes

// fakeAccountRepo keeps accounts keyed by ID and enforces the same
// username/email uniqueness the real table does. Reads hand out copies, so a
// mutation the service abandons never leaks into storage.
type fakeAccountRepo struct {
	users map[string]*auth.User
}

func newFakeAccountRepo() *fakeAccountRepo {
	return &fakeAccountRepo{users: make(map[string]*auth.User)}
}

func (f *fakeAccountRepo) List(_ context.Context, search string, limit, offset int) ([]*auth.User, int, error) {
	var matched []*auth.User
	for _, u := range f.users {
		if search == "" || strings.Contains(u.Username, search) {
			copied := *u
			matched = append(matched, &copied)
		}
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].Username < matched[j].Username })

	total := len(matched)
	if offset > total {
		offset = total
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return matched[offset:end], total, nil
}

func (f *fakeAccountRepo) FindByUsername(_ context.Context, username string) (*auth.User, error) {
	for _, u := range f.users {
		if u.Username == username {
			copied := *u
			return &copied, nil
		}
	}
	return nil, apperr.NotFound("User")
}

func (f *fakeAccountRepo) Create(_ context.Context, user *auth.User) error {
	for _, u := range f.users {
		if u.Username == user.Username || u.Email == user.Email {
			return apperr.Conflict("User with this username or email already exists")
		}
	}
	stored := *user
	f.users[user.ID] = &stored
	return nil
}

func (f *fakeAccountRepo) Update(_ context.Context, user *auth.User) error {
	if _, ok := f.users[user.ID]; !ok {
		return apperr.NotFound("User")
	}
	for id, u := range f.users {
		if id != user.ID && (u.Username == user.Username || u.Email == user.Email) {
			return apperr.Conflict("User with this username or email already exists")
		}
	}
	stored := *user
	f.users[user.ID] = &stored
	return nil
}

func (f *fakeAccountRepo) DeleteByUsername(_ context.Context, username string) error {
	for id, u := range f.users {
		if u.Username == username {
			delete(f.users, id)
			return nil
		}
	}
	return apperr.NotFound("User")
}

// byUsername digs the stored account out for assertions.
func (f *fakeAccountRepo) byUsername(username string) *auth.User {
	for _, u := range f.users {
		if u.Username == username {
			return u
		}
	}
	return nil
}

func newAccountService(t *testing.T) (*account.Service, *fakeAccountRepo) {
	t.Helper()

	repo := newFakeAccountRepo()
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	return account.NewService(repo, logger), repo
}

// # Tests

/*
TestAdminOperations_RoleGate denies every administrative operation to
moderators and regular users alike. User management has exactly one rank.
*/
func TestAdminOperations_RoleGate(t *testing.T) {
	service, repo := newAccountService(t)
	ctx := context.Background()

	_, err := service.CreateUser(ctx, admin, account.CreateInput{
		Email:    "ada@critica.app",
		Username: "ada",
		Role:     string(sec.RoleUser),
	})
	require.NoError(t, err)

	tests := []struct {
		name  string
		actor policy.Actor
	}{
		{name: "moderator", actor: moderator},
		{name: "regular_user", actor: regular},
		{name: "anonymous", actor: policy.Anonymous()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := service.ListUsers(ctx, tt.actor, "", 10, 0)
			assert.Equal(t, "FORBIDDEN", apperr.As(err).Code)

			_, err = service.GetUser(ctx, tt.actor, "ada")
			assert.Equal(t, "FORBIDDEN", apperr.As(err).Code)

			_, err = service.CreateUser(ctx, tt.actor, account.CreateInput{
				Email:    "new@critica.app",
				Username: "new_user",
				Role:     string(sec.RoleUser),
			})
			assert.Equal(t, "FORBIDDEN", apperr.As(err).Code)

			_, err = service.UpdateUser(ctx, tt.actor, "ada", account.UpdateInput{
				Bio: pointer.To("rewritten"),
			})
			assert.Equal(t, "FORBIDDEN", apperr.As(err).Code)

			err = service.DeleteUser(ctx, tt.actor, "ada")
			assert.Equal(t, "FORBIDDEN", apperr.As(err).Code)
		})
	}

	// The account was never touched.
	assert.NotNil(t, repo.byUsername("ada"))
	assert.Equal(t, "", repo.byUsername("ada").Bio)
}

/*
TestCreateUser_RoleAssignment lets an administrator set any valid role and
rejects the rest.
*/
func TestCreateUser_RoleAssignment(t *testing.T) {
	service, repo := newAccountService(t)
	ctx := context.Background()

	created, err := service.CreateUser(ctx, admin, account.CreateInput{
		Email:    "mod@critica.app",
		Username: "fresh_mod",
		Role:     string(sec.RoleModerator),
	})
	require.NoError(t, err)
	assert.Equal(t, sec.RoleModerator, created.Role)
	assert.Equal(t, sec.RoleModerator, repo.byUsername("fresh_mod").Role)

	_, err = service.CreateUser(ctx, admin, account.CreateInput{
		Email:    "boss@critica.app",
		Username: "boss",
		Role:     "superuser",
	})
	require.Error(t, err)

	ae := apperr.As(err)
	require.NotNil(t, ae)
	assert.Equal(t, "VALIDATION_ERROR", ae.Code)
	assert.Equal(t, auth.FieldRole, ae.Details[0].Field)
}

/*
TestCreateUser_DuplicateIdentity surfaces the storage uniqueness violation
as a Conflict through the service wrapping.
*/
func TestCreateUser_DuplicateIdentity(t *testing.T) {
	service, _ := newAccountService(t)
	ctx := context.Background()

	input := account.CreateInput{
		Email:    "ada@critica.app",
		Username: "ada",
		Role:     string(sec.RoleUser),
	}

	_, err := service.CreateUser(ctx, admin, input)
	require.NoError(t, err)

	_, err = service.CreateUser(ctx, admin, input)
	require.Error(t, err)
	assert.True(t, apperr.IsConflict(err))
}

/*
TestUpdateUser_RoleChange exercises the only path a role ever changes:
an administrator patching the role field.
*/
func TestUpdateUser_RoleChange(t *testing.T) {
	service, repo := newAccountService(t)
	ctx := context.Background()

	_, err := service.CreateUser(ctx, admin, account.CreateInput{
		Email:    "ada@critica.app",
		Username: "ada",
		Role:     string(sec.RoleUser),
	})
	require.NoError(t, err)

	updated, err := service.UpdateUser(ctx, admin, "ada", account.UpdateInput{
		Role: pointer.To(string(sec.RoleModerator)),
	})
	require.NoError(t, err)
	assert.Equal(t, sec.RoleModerator, updated.Role)
	assert.Equal(t, sec.RoleModerator, repo.byUsername("ada").Role)

	// Unknown roles are rejected; the stored account keeps its rank.
	_, err = service.UpdateUser(ctx, admin, "ada", account.UpdateInput{
		Role: pointer.To("root"),
	})
	require.Error(t, err)
	assert.Equal(t, "VALIDATION_ERROR", apperr.As(err).Code)
	assert.Equal(t, sec.RoleModerator, repo.byUsername("ada").Role)
}

/*
TestUpdateProfile_RoleImmutable rejects a role change through the
self-service path no matter what value is supplied.
*/
func TestUpdateProfile_RoleImmutable(t *testing.T) {
	service, repo := newAccountService(t)
	ctx := context.Background()

	_, err := service.CreateUser(ctx, admin, account.CreateInput{
		Email:    "ada@critica.app",
		Username: "ada",
		Role:     string(sec.RoleUser),
	})
	require.NoError(t, err)

	_, err = service.UpdateProfile(ctx, "ada", account.UpdateInput{
		Role: pointer.To(string(sec.RoleAdmin)),
	})
	require.Error(t, err)

	ae := apperr.As(err)
	require.NotNil(t, ae)
	assert.Equal(t, "VALIDATION_ERROR", ae.Code)
	assert.Equal(t, auth.FieldRole, ae.Details[0].Field)
	assert.Equal(t, sec.RoleUser, repo.byUsername("ada").Role)
}

/*
TestUpdateProfile_PartialPatch confirms nil fields keep their stored value
and the final state is validated as a whole.
*/
func TestUpdateProfile_PartialPatch(t *testing.T) {
	service, repo := newAccountService(t)
	ctx := context.Background()

	_, err := service.CreateUser(ctx, admin, account.CreateInput{
		Email:     "ada@critica.app",
		Username:  "ada",
		Role:      string(sec.RoleUser),
		FirstName: "Ada",
	})
	require.NoError(t, err)

	updated, err := service.UpdateProfile(ctx, "ada", account.UpdateInput{
		Bio: pointer.To("Reads everything twice."),
	})
	require.NoError(t, err)
	assert.Equal(t, "Reads everything twice.", updated.Bio)
	assert.Equal(t, "ada@critica.app", updated.Email)
	assert.Equal(t, "Ada", updated.FirstName)

	// An invalid patched email fails and leaves storage untouched.
	_, err = service.UpdateProfile(ctx, "ada", account.UpdateInput{
		Email: pointer.To("not-an-email"),
	})
	require.Error(t, err)
	assert.Equal(t, "VALIDATION_ERROR", apperr.As(err).Code)
	assert.Equal(t, "ada@critica.app", repo.byUsername("ada").Email)

	// Renaming to a reserved route name is rejected.
	_, err = service.UpdateProfile(ctx, "ada", account.UpdateInput{
		Username: pointer.To("me"),
	})
	require.Error(t, err)
	assert.Equal(t, "VALIDATION_ERROR", apperr.As(err).Code)
}

/*
TestDeleteUser_Admin removes the account and reports NotFound afterwards.
*/
func TestDeleteUser_Admin(t *testing.T) {
	service, repo := newAccountService(t)
	ctx := context.Background()

	_, err := service.CreateUser(ctx, admin, account.CreateInput{
		Email:    "gone@critica.app",
		Username: "short_lived",
		Role:     string(sec.RoleUser),
	})
	require.NoError(t, err)

	require.NoError(t, service.DeleteUser(ctx, admin, "short_lived"))
	assert.Nil(t, repo.byUsername("short_lived"))

	err = service.DeleteUser(ctx, admin, "short_lived")
	require.Error(t, err)
	assert.True(t, apperr.IsNotFound(err))
}

/*
TestProfile_MissingAccount reports NotFound when the token outlives the
account it was issued for.
*/
func TestProfile_MissingAccount(t *testing.T) {
	service, _ := newAccountService(t)

	_, err := service.Profile(context.Background(), "vanished")
	require.Error(t, err)
	assert.True(t, apperr.IsNotFound(err))
}
