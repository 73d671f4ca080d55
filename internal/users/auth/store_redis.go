// Copyright (c) 2026 Vidora. All rights reserved.

package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/vidora/vidora/internal/platform/constants"
)

// RedisLoginThrottle implements LoginThrottle using Redis counters with TTL.
type RedisLoginThrottle struct {
	client *redis.Client
}

// NewLoginThrottle creates a new Redis-backed LoginThrottle.
func NewLoginThrottle(client *redis.Client) *RedisLoginThrottle {
	return &RedisLoginThrottle{client: client}
}

/*
Blocked reports whether the failed-attempt counter exceeds the budget.

Description: A missing key means no recent failures; the window expires on
its own, so there is no unbounded accumulation.

Parameters:
  - context: context.Context
  - key: string

Returns:
  - bool: true when the key has exhausted its attempts
  - error: Connectivity errors
*/
func (throttle *RedisLoginThrottle) Blocked(context context.Context, key string) (bool, error) {
	count, err := throttle.client.Get(context, constants.RedisPrefixLoginAttempt+key).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, fmt.Errorf("redis_login_throttle_get_failed: %w", err)
	}

	return count >= MaxFailedLogins, nil
}

/*
Fail increments the failed-attempt counter, starting the expiry window on
the first failure.

Parameters:
  - context: context.Context
  - key: string

Returns:
  - int64: Failed attempts within the current window
  - error: Persistence failures
*/
func (throttle *RedisLoginThrottle) Fail(context context.Context, key string) (int64, error) {
	redisKey := constants.RedisPrefixLoginAttempt + key

	count, err := throttle.client.Incr(context, redisKey).Result()
	if err != nil {
		return 0, fmt.Errorf("redis_login_throttle_incr_failed: %w", err)
	}

	// Arm the window only on the first failure; later failures must not
	// keep pushing the expiry out.
	if count == 1 {
		if err := throttle.client.Expire(context, redisKey, FailedLoginWindow).Err(); err != nil {
			return count, fmt.Errorf("redis_login_throttle_expire_failed: %w", err)
		}
	}

	return count, nil
}

/*
Reset clears the failed-attempt counter after a successful login.

Parameters:
  - context: context.Context
  - key: string

Returns:
  - error: Deletion failures
*/
func (throttle *RedisLoginThrottle) Reset(context context.Context, key string) error {
	if err := throttle.client.Del(context, constants.RedisPrefixLoginAttempt+key).Err(); err != nil {
		return fmt.Errorf("redis_login_throttle_reset_failed: %w", err)
	}
	return nil
}

// compile-time interface check
var _ LoginThrottle = (*RedisLoginThrottle)(nil)
