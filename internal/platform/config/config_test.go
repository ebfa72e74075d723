// Copyright (c) 2026 Platewise. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package config_test

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/platewise/internal/platform/config"
)

/*
TestParse_Defaults verifies the zero-configuration local setup.
*/
func TestParse_Defaults(t *testing.T) {
	for _, key := range []string{"ACCOUNT_STORE", "SESSION_STORE", "SERVER_PORT", "SESSION_TTL", "SQLITE_PATH"} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}

	cfg, err := config.Parse()
	require.NoError(t, err)

	assert.Equal(t, "5000", cfg.ServerPort)
	assert.Equal(t, config.StoreSQLite, cfg.AccountStore)
	assert.Equal(t, config.StoreMemory, cfg.SessionStore)
	assert.Equal(t, time.Hour, cfg.SessionTTL)
	assert.Equal(t, "sid", cfg.SessionCookieName)
	assert.False(t, cfg.ArchiveEnabled())
}

/*
TestParse_DriverRequirements checks that each driver's required keys are enforced.
*/
func TestParse_DriverRequirements(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{
			name:    "postgres_without_dsn",
			env:     map[string]string{"ACCOUNT_STORE": "postgres", "DATABASE_URL": ""},
			wantErr: "DATABASE_URL",
		},
		{
			name:    "redis_without_url",
			env:     map[string]string{"SESSION_STORE": "redis", "REDIS_URL": ""},
			wantErr: "REDIS_URL",
		},
		{
			name:    "unknown_account_store",
			env:     map[string]string{"ACCOUNT_STORE": "mongo"},
			wantErr: "ACCOUNT_STORE",
		},
		{
			name:    "non_positive_ttl",
			env:     map[string]string{"SESSION_TTL": "0s"},
			wantErr: "SESSION_TTL",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for key, value := range tt.env {
				t.Setenv(key, value)
			}

			_, err := config.Parse()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

/*
TestParse_Overrides verifies typed parsing of durations and sizes.
*/
func TestParse_Overrides(t *testing.T) {
	t.Setenv("ACCOUNT_STORE", "memory")
	t.Setenv("SESSION_TTL", "15m")
	t.Setenv("MAX_UPLOAD_BYTES", "1048576")
	t.Setenv("S3_BUCKET", "plates")

	cfg, err := config.Parse()
	require.NoError(t, err)

	assert.Equal(t, 15*time.Minute, cfg.SessionTTL)
	assert.Equal(t, int64(1048576), cfg.MaxUploadBytes)
	assert.True(t, cfg.ArchiveEnabled())
}
