// Copyright (c) 2026 Critica. All rights reserved.

package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/critica-app/critica/internal/platform/apperr"
	"github.com/critica-app/critica/internal/platform/constants"
)

// # Confirmation Code Repository

// RedisCodeRepository implements [CodeRepository] backed by Redis.
//
// Only the bcrypt hash of a code ever reaches Redis; expiry is delegated to
// the store's native TTL so stale codes vanish without a cleanup job.
type RedisCodeRepository struct {
	client *redis.Client
}

// NewCodeRepository creates a Redis-backed confirmation code repository.
func NewCodeRepository(client *redis.Client) *RedisCodeRepository {
	return &RedisCodeRepository{client: client}
}

// codeKey builds the Redis key for a username's confirmation code.
func codeKey(username string) string {
	return constants.RedisPrefixConfirmCode + username
}

/*
Set stores a hashed confirmation code for a username with the given TTL.

Description: Overwrites any previous code for the username, so a signup
re-issue invalidates the older code implicitly.

Parameters:
  - context: context.Context
  - username: string
  - codeHash: string
  - ttl: time.Duration

Returns:
  - error: Persistence failures
*/
func (repository *RedisCodeRepository) Set(context context.Context, username, codeHash string, ttl time.Duration) error {
	if err := repository.client.Set(context, codeKey(username), codeHash, ttl).Err(); err != nil {
		return fmt.Errorf("redis_confirm_code_set_failed: %w", err)
	}
	return nil
}

/*
Get retrieves the stored code hash for a username.

Parameters:
  - context: context.Context
  - username: string

Returns:
  - string: Stored bcrypt hash
  - error: apperr.NotFound when no live code exists for the username
*/
func (repository *RedisCodeRepository) Get(context context.Context, username string) (string, error) {
	hash, err := repository.client.Get(context, codeKey(username)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", apperr.NotFound("Confirmation code")
		}
		return "", fmt.Errorf("redis_confirm_code_get_failed: %w", err)
	}
	return hash, nil
}

/*
Delete removes the confirmation code for a username after successful use.

Parameters:
  - context: context.Context
  - username: string

Returns:
  - error: Persistence failures
*/
func (repository *RedisCodeRepository) Delete(context context.Context, username string) error {
	if err := repository.client.Del(context, codeKey(username)).Err(); err != nil {
		return fmt.Errorf("redis_confirm_code_delete_failed: %w", err)
	}
	return nil
}
