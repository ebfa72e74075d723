// Copyright (c) 2026 Platewise. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/platewise/internal/platform/sec"
)

/*
TestVerifyPassword checks match, mismatch and malformed-hash outcomes.
*/
func TestVerifyPassword(t *testing.T) {
	hash, err := sec.HashPassword("correct horse")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(hash, "$2a$10$"))

	tests := []struct {
		name      string
		password  string
		hash      string
		wantMatch bool
		wantErr   error
	}{
		{"match", "correct horse", hash, true, nil},
		{"mismatch", "battery staple", hash, false, nil},
		{"malformed_hash", "correct horse", "not-a-bcrypt-hash", false, sec.ErrCredential},
		{"empty_hash", "correct horse", "", false, sec.ErrCredential},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			match, err := sec.VerifyPassword(tt.password, tt.hash)
			assert.Equal(t, tt.wantMatch, match)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

/*
TestGenerateSecureToken verifies token uniqueness and digest stability.
*/
func TestGenerateSecureToken(t *testing.T) {
	first, err := sec.GenerateSecureToken(32)
	require.NoError(t, err)
	second, err := sec.GenerateSecureToken(32)
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.Len(t, first, 43) // 32 bytes, unpadded base64url

	assert.Equal(t, sec.HashToken(first), sec.HashToken(first))
	assert.NotEqual(t, sec.HashToken(first), sec.HashToken(second))
	assert.Len(t, sec.HashToken(first), 64)
}

/*
TestServiceTokenSigner covers the sign/verify round trip and rejection cases.
*/
func TestServiceTokenSigner(t *testing.T) {
	signer, err := sec.NewServiceTokenSigner("shared-secret", "platewise.api", "platewise.detector", time.Minute)
	require.NoError(t, err)

	token, err := signer.Sign("alice")
	require.NoError(t, err)

	claims, err := signer.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Subject)

	t.Run("wrong_secret", func(t *testing.T) {
		other, err := sec.NewServiceTokenSigner("other-secret", "platewise.api", "platewise.detector", time.Minute)
		require.NoError(t, err)
		_, err = other.Verify(token)
		assert.Error(t, err)
	})

	t.Run("wrong_audience", func(t *testing.T) {
		other, err := sec.NewServiceTokenSigner("shared-secret", "platewise.api", "someone.else", time.Minute)
		require.NoError(t, err)
		_, err = other.Verify(token)
		assert.Error(t, err)
	})

	t.Run("expired", func(t *testing.T) {
		shortLived, err := sec.NewServiceTokenSigner("shared-secret", "platewise.api", "platewise.detector", -time.Minute)
		require.NoError(t, err)
		stale, err := shortLived.Sign("alice")
		require.NoError(t, err)
		_, err = signer.Verify(stale)
		assert.Error(t, err)
	})

	t.Run("empty_secret", func(t *testing.T) {
		_, err := sec.NewServiceTokenSigner("", "i", "a", time.Minute)
		assert.Error(t, err)
	})
}
