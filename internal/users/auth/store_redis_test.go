// Copyright (c) 2026 Platewise. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth_test

import (
	"context"
	"os"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/platewise/internal/platform/constants"
	"github.com/taibuivan/platewise/internal/users/auth"
	"github.com/taibuivan/platewise/pkg/uuid"
)

/*
TestRedisSessionRepository runs against a live Redis when TEST_REDIS_URL is set.
*/
func TestRedisSessionRepository(t *testing.T) {
	redisURL := os.Getenv("TEST_REDIS_URL")
	if redisURL == "" {
		t.Skip("TEST_REDIS_URL not set")
	}

	options, err := goredis.ParseURL(redisURL)
	require.NoError(t, err)
	client := goredis.NewClient(options)
	t.Cleanup(func() { _ = client.Close() })

	ctx := context.Background()
	repository := auth.NewRedisSessionRepository(client)
	tokenHash := uuid.New()
	key := constants.RedisPrefixSession + tokenHash

	// Create sets the key TTL.
	require.NoError(t, repository.Create(ctx, tokenHash, &auth.Session{Username: "alice", CreatedAt: time.Now()}, 10*time.Second))
	ttl, err := client.TTL(ctx, key).Result()
	require.NoError(t, err)
	assert.LessOrEqual(t, ttl, 10*time.Second)

	// Touch reads and slides the TTL.
	session, err := repository.Touch(ctx, tokenHash, time.Minute)
	require.NoError(t, err)
	assert.Equal(t, "alice", session.Username)

	ttl, err = client.TTL(ctx, key).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, 10*time.Second)

	// Delete is idempotent.
	require.NoError(t, repository.Delete(ctx, tokenHash))
	require.NoError(t, repository.Delete(ctx, tokenHash))

	_, err = repository.Touch(ctx, tokenHash, time.Minute)
	assert.ErrorIs(t, err, auth.ErrSessionNotFound)

	removed, err := repository.DeleteExpired(ctx)
	require.NoError(t, err)
	assert.Zero(t, removed)
}
