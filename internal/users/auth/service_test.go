// Copyright (c) 2026 Critica. All rights reserved.

package auth_test

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/critica-app/critica/internal/platform/apperr"
	"github.com/critica-app/critica/internal/platform/sec"
	"github.com/critica-app/critica/internal/users/auth"
)

// # Test Fakes

// fakeUserRepo keeps accounts in memory, indexed both ways like the real
// unique constraints.
type fakeUserRepo struct {
	byUsername map[string]*auth.User
	byEmail    map[string]*auth.User

	createCalls int
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		byUsername: make(map[string]*auth.User),
		byEmail:    make(map[string]*auth.User),
	}
}

func (f *fakeUserRepo) FindByEmail(_ context.Context, email string) (*auth.User, error) {
	user, ok := f.byEmail[email]
	if !ok {
		return nil, apperr.NotFound("User")
	}
	return user, nil
}

func (f *fakeUserRepo) FindByUsername(_ context.Context, username string) (*auth.User, error) {
	user, ok := f.byUsername[username]
	if !ok {
		return nil, apperr.NotFound("User")
	}
	return user, nil
}

func (f *fakeUserRepo) Create(_ context.Context, user *auth.User) error {
	f.createCalls++
	if _, taken := f.byUsername[user.Username]; taken {
		return apperr.Conflict("User with this username or email already exists")
	}
	if _, taken := f.byEmail[user.Email]; taken {
		return apperr.Conflict("User with this username or email already exists")
	}

	stored := *user
	f.byUsername[user.Username] = &stored
	f.byEmail[user.Email] = &stored
	return nil
}

// codeEntry is one stored confirmation code hash with its expiry.
type codeEntry struct {
	hash      string
	expiresAt time.Time
}

// fakeCodeRepo honors the TTL contract: expired entries behave as missing.
type fakeCodeRepo struct {
	entries map[string]codeEntry
}

func newFakeCodeRepo() *fakeCodeRepo {
	return &fakeCodeRepo{entries: make(map[string]codeEntry)}
}

func (f *fakeCodeRepo) Set(_ context.Context, username, codeHash string, ttl time.Duration) error {
	f.entries[username] = codeEntry{hash: codeHash, expiresAt: time.Now().Add(ttl)}
	return nil
}

func (f *fakeCodeRepo) Get(_ context.Context, username string) (string, error) {
	entry, ok := f.entries[username]
	if !ok || time.Now().After(entry.expiresAt) {
		return "", apperr.NotFound("Confirmation code")
	}
	return entry.hash, nil
}

func (f *fakeCodeRepo) Delete(_ context.Context, username string) error {
	delete(f.entries, username)
	return nil
}

// expire backdates a stored code so Get treats it as gone.
func (f *fakeCodeRepo) expire(username string) {
	entry := f.entries[username]
	entry.expiresAt = time.Now().Add(-time.Minute)
	f.entries[username] = entry
}

// captureSender hands delivered codes to the test through a channel, since
// delivery runs on a background goroutine.
type captureSender struct {
	deliveries chan string
}

func (s *captureSender) Send(_ context.Context, _, code string) error {
	s.deliveries <- code
	return nil
}

// staticTokens signs nothing; it returns a recognizable token string.
type staticTokens struct{}

func (staticTokens) GenerateAccessToken(_, username, role string, _ time.Duration) (string, error) {
	return "token:" + username + ":" + role, nil
}

func newAuthService(t *testing.T) (*auth.Service, *fakeUserRepo, *fakeCodeRepo, *captureSender) {
	t.Helper()

	users := newFakeUserRepo()
	codes := newFakeCodeRepo()
	sender := &captureSender{deliveries: make(chan string, 8)}
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))

	service := auth.NewService(users, codes, sender, staticTokens{}, logger)
	return service, users, codes, sender
}

// receiveCode waits for the background delivery of one confirmation code.
func receiveCode(t *testing.T, sender *captureSender) string {
	t.Helper()

	select {
	case code := <-sender.deliveries:
		return code
	case <-time.After(2 * time.Second):
		t.Fatal("confirmation code was never delivered")
		return ""
	}
}

// # Tests

/*
TestSignupExchange_FullFlow drives the complete two-step authentication:
signup creates the account and delivers a code, the code buys exactly one
access token, and a replay of the spent code is rejected.
*/
func TestSignupExchange_FullFlow(t *testing.T) {
	service, users, _, sender := newAuthService(t)
	ctx := context.Background()

	user, err := service.Signup(ctx, auth.SignupInput{
		Email:    "ada@critica.app",
		Username: "ada",
	})
	require.NoError(t, err)
	assert.Equal(t, "ada", user.Username)
	assert.Equal(t, sec.RoleUser, user.Role)
	assert.NotEmpty(t, user.ID)
	assert.Equal(t, 1, users.createCalls)

	code := receiveCode(t, sender)
	require.Len(t, code, 6)

	token, err := service.Exchange(ctx, "ada", code)
	require.NoError(t, err)
	assert.Equal(t, "token:ada:user", token)

	// The code is single-use: a replay fails.
	_, err = service.Exchange(ctx, "ada", code)
	require.Error(t, err)
	assert.Equal(t, "UNAUTHORIZED", apperr.As(err).Code)
}

/*
TestSignup_Validation covers the identity pair rules: email format and
length, username charset, length, and the reserved route name.
*/
func TestSignup_Validation(t *testing.T) {
	tests := []struct {
		name     string
		email    string
		username string
		field    string
	}{
		{"bad_email", "not-an-email", "ada", auth.FieldEmail},
		{"empty_email", "", "ada", auth.FieldEmail},
		{"email_too_long", strings.Repeat("a", 250) + "@x.io", "ada", auth.FieldEmail},
		{"empty_username", "ada@critica.app", "", auth.FieldUsername},
		{"username_bad_chars", "ada@critica.app", "ada lovelace!", auth.FieldUsername},
		{"username_reserved", "ada@critica.app", "me", auth.FieldUsername},
		{"username_too_long", "ada@critica.app", strings.Repeat("a", 151), auth.FieldUsername},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, users, _, _ := newAuthService(t)

			_, err := service.Signup(context.Background(), auth.SignupInput{
				Email:    tt.email,
				Username: tt.username,
			})
			require.Error(t, err)

			ae := apperr.As(err)
			require.NotNil(t, ae)
			assert.Equal(t, "VALIDATION_ERROR", ae.Code)
			require.NotEmpty(t, ae.Details)
			assert.Equal(t, tt.field, ae.Details[0].Field)
			assert.Zero(t, users.createCalls)
		})
	}
}

/*
TestSignup_ReissuesForSameIdentity confirms a returning user gets a fresh
code on the same account instead of a duplicate error.
*/
func TestSignup_ReissuesForSameIdentity(t *testing.T) {
	service, users, _, sender := newAuthService(t)
	ctx := context.Background()
	input := auth.SignupInput{Email: "ada@critica.app", Username: "ada"}

	first, err := service.Signup(ctx, input)
	require.NoError(t, err)
	firstCode := receiveCode(t, sender)

	again, err := service.Signup(ctx, input)
	require.NoError(t, err)
	secondCode := receiveCode(t, sender)

	assert.Equal(t, first.ID, again.ID)
	assert.Equal(t, 1, users.createCalls)
	assert.Len(t, secondCode, 6)

	// The latest code wins the exchange.
	if firstCode != secondCode {
		_, err = service.Exchange(ctx, "ada", firstCode)
		require.Error(t, err)
		assert.Equal(t, "UNAUTHORIZED", apperr.As(err).Code)
	}

	token, err := service.Exchange(ctx, "ada", secondCode)
	require.NoError(t, err)
	assert.NotEmpty(t, token)
}

/*
TestSignup_PartialCollisionRejected fails signup when the username or the
email alone belongs to someone else.
*/
func TestSignup_PartialCollisionRejected(t *testing.T) {
	service, users, _, sender := newAuthService(t)
	ctx := context.Background()

	_, err := service.Signup(ctx, auth.SignupInput{Email: "ada@critica.app", Username: "ada"})
	require.NoError(t, err)
	receiveCode(t, sender)

	// Same username, different email.
	_, err = service.Signup(ctx, auth.SignupInput{Email: "impostor@critica.app", Username: "ada"})
	require.Error(t, err)

	ae := apperr.As(err)
	require.NotNil(t, ae)
	assert.Equal(t, "VALIDATION_ERROR", ae.Code)
	require.Len(t, ae.Details, 1)
	assert.Equal(t, auth.FieldUsername, ae.Details[0].Field)

	// Same email, different username.
	_, err = service.Signup(ctx, auth.SignupInput{Email: "ada@critica.app", Username: "impostor"})
	require.Error(t, err)

	ae = apperr.As(err)
	require.NotNil(t, ae)
	require.Len(t, ae.Details, 1)
	assert.Equal(t, auth.FieldEmail, ae.Details[0].Field)

	assert.Equal(t, 1, users.createCalls)
}

/*
TestExchange_Failures verifies the three rejection paths share one opaque
Unauthorized answer: unknown username, missing code, wrong code. A failed
attempt must not consume the stored code.
*/
func TestExchange_Failures(t *testing.T) {
	service, _, codes, sender := newAuthService(t)
	ctx := context.Background()

	_, err := service.Signup(ctx, auth.SignupInput{Email: "ada@critica.app", Username: "ada"})
	require.NoError(t, err)
	code := receiveCode(t, sender)

	// Unknown username.
	_, err = service.Exchange(ctx, "nobody", code)
	require.Error(t, err)
	assert.Equal(t, "UNAUTHORIZED", apperr.As(err).Code)

	// Wrong code for a real user.
	wrongCode := "000000"
	if code == wrongCode {
		wrongCode = "111111"
	}
	_, err = service.Exchange(ctx, "ada", wrongCode)
	require.Error(t, err)
	assert.Equal(t, "UNAUTHORIZED", apperr.As(err).Code)

	// The failed attempt did not burn the real code.
	token, err := service.Exchange(ctx, "ada", code)
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	// Expired code: the account exists but the code store has moved on.
	_, err = service.Signup(ctx, auth.SignupInput{Email: "ada@critica.app", Username: "ada"})
	require.NoError(t, err)
	expiredCode := receiveCode(t, sender)
	codes.expire("ada")

	_, err = service.Exchange(ctx, "ada", expiredCode)
	require.Error(t, err)
	assert.Equal(t, "UNAUTHORIZED", apperr.As(err).Code)
}

/*
TestExchange_MissingFields rejects blank credentials with a validation error
instead of the opaque Unauthorized.
*/
func TestExchange_MissingFields(t *testing.T) {
	service, _, _, _ := newAuthService(t)
	ctx := context.Background()

	_, err := service.Exchange(ctx, "", "123456")
	require.Error(t, err)
	assert.Equal(t, "VALIDATION_ERROR", apperr.As(err).Code)

	_, err = service.Exchange(ctx, "ada", "")
	require.Error(t, err)
	assert.Equal(t, "VALIDATION_ERROR", apperr.As(err).Code)
}
