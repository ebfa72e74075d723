// Copyright (c) 2026 Platewise. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/taibuivan/platewise/internal/platform/constants"
)

// RedisSessionRepository implements SessionRepository using Redis.
//
// Expiry is the key TTL, so Redis evicts dead sessions on its own.
type RedisSessionRepository struct {
	client redis.UniversalClient
	now    func() time.Time
}

// NewRedisSessionRepository creates a new Redis-backed SessionRepository.
func NewRedisSessionRepository(client redis.UniversalClient) *RedisSessionRepository {
	return &RedisSessionRepository{client: client, now: time.Now}
}

func sessionKey(tokenHash string) string {
	return constants.RedisPrefixSession + tokenHash
}

/*
Create stores the session as JSON under its token digest with a TTL.

Parameters:
  - context: context.Context
  - tokenHash: string
  - session: *Session
  - ttl: time.Duration

Returns:
  - error: Encoding or connectivity errors
*/
func (repository *RedisSessionRepository) Create(context context.Context, tokenHash string, session *Session, ttl time.Duration) error {
	stored := *session
	stored.ExpiresAt = repository.now().Add(ttl)

	payload, err := json.Marshal(&stored)
	if err != nil {
		return fmt.Errorf("redis_session_encode_failed: %w", err)
	}

	if err := repository.client.Set(context, sessionKey(tokenHash), payload, ttl).Err(); err != nil {
		return fmt.Errorf("redis_session_set_failed: %w", err)
	}
	return nil
}

/*
Touch reads the session and resets the key TTL in one round trip (GETEX).

Returns:
  - *Session: ExpiresAt reflects the refreshed TTL
  - error: ErrSessionNotFound or connectivity errors
*/
func (repository *RedisSessionRepository) Touch(context context.Context, tokenHash string, ttl time.Duration) (*Session, error) {
	payload, err := repository.client.GetEx(context, sessionKey(tokenHash), ttl).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("redis_session_getex_failed: %w", err)
	}

	var session Session
	if err := json.Unmarshal(payload, &session); err != nil {
		return nil, fmt.Errorf("redis_session_decode_failed: %w", err)
	}

	session.ExpiresAt = repository.now().Add(ttl)
	return &session, nil
}

// Delete removes the session key. A missing key is not an error.
func (repository *RedisSessionRepository) Delete(context context.Context, tokenHash string) error {
	if err := repository.client.Del(context, sessionKey(tokenHash)).Err(); err != nil {
		return fmt.Errorf("redis_session_del_failed: %w", err)
	}
	return nil
}

// DeleteExpired is a no-op; Redis expires keys natively.
func (repository *RedisSessionRepository) DeleteExpired(context.Context) (int, error) {
	return 0, nil
}
