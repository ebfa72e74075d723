// Copyright (c) 2026 Platewise. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package config handles application-wide settings and environment parsing.

It leverages 'caarlos0/env' to map OS environment variables into a strongly-typed
Go struct, providing early validation and default values. A local '.env' file is
loaded first with 'joho/godotenv' when present; real environment variables win.

Usage:

	cfg, err := config.Load()
	if err != nil {
	    log.Fatal(err)
	}

Architecture:

  - Immutability: Once loaded, configuration is read-only.
  - DI-Friendly: Passed to core components (DB, Redis) via constructors.
  - Zero Hidden State: No global variables are used to store config.
*/
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// # Driver Names

const (
	StoreSQLite   = "sqlite"
	StorePostgres = "postgres"
	StoreMemory   = "memory"
	StoreRedis    = "redis"
)

// # Configuration Schema

// Config holds all runtime configuration for the Platewise API server.
type Config struct {

	// Server settings
	ServerPort  string `env:"SERVER_PORT"  envDefault:"5000"`
	Environment string `env:"ENVIRONMENT"  envDefault:"development"`
	Debug       bool   `env:"DEBUG"        envDefault:"false"`

	// Account storage: sqlite | postgres | memory
	AccountStore string `env:"ACCOUNT_STORE" envDefault:"sqlite"`
	SQLitePath   string `env:"SQLITE_PATH"   envDefault:"./data/platewise.db"`
	DatabaseURL  string `env:"DATABASE_URL"`

	// Session storage: memory | redis
	SessionStore      string        `env:"SESSION_STORE"       envDefault:"memory"`
	RedisURL          string        `env:"REDIS_URL"`
	SessionTTL        time.Duration `env:"SESSION_TTL"         envDefault:"1h"`
	SessionCookieName string        `env:"SESSION_COOKIE_NAME" envDefault:"sid"`
	CookieSecure      bool          `env:"COOKIE_SECURE"       envDefault:"false"`

	// Food detector collaborator
	DetectorURL     string        `env:"DETECTOR_URL"     envDefault:"http://127.0.0.1:5001/upload"`
	DetectorTimeout time.Duration `env:"DETECTOR_TIMEOUT" envDefault:"60s"`
	DetectorSecret  string        `env:"DETECTOR_SECRET"`
	MaxUploadBytes  int64         `env:"MAX_UPLOAD_BYTES" envDefault:"33554432"`

	// Object Storage (Cloudflare R2 / S3-compatible)
	S3Bucket          string `env:"S3_BUCKET"`
	S3Region          string `env:"S3_REGION"   envDefault:"auto"`
	S3Endpoint        string `env:"S3_ENDPOINT"`
	S3AccessKeyID     string `env:"S3_ACCESS_KEY_ID"`
	S3SecretAccessKey string `env:"S3_SECRET_ACCESS_KEY"`

	// Cross-Origin Resource Sharing
	ExtraOrigins string `env:"EXTRA_ORIGINS"`
}

// # Configuration Loading

// Load reads an optional '.env' file and parses environment variables into a [Config].
func Load() (*Config, error) {

	// A missing .env is the normal case outside local development.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("config: failed to read .env file: %w", err)
	}

	return Parse()
}

// Parse maps the current environment into a [Config] and validates it.
func Parse() (*Config, error) {

	// Initialize an empty config struct
	cfg := &Config{}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse environment variables: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate enforces the keys each selected driver depends on.
func (c *Config) Validate() error {
	var errs []error

	switch c.AccountStore {
	case StoreSQLite:
		if c.SQLitePath == "" {
			errs = append(errs, errors.New("SQLITE_PATH is required when ACCOUNT_STORE=sqlite"))
		}
	case StorePostgres:
		if c.DatabaseURL == "" {
			errs = append(errs, errors.New("DATABASE_URL is required when ACCOUNT_STORE=postgres"))
		}
	case StoreMemory:
	default:
		errs = append(errs, fmt.Errorf("ACCOUNT_STORE must be one of sqlite, postgres, memory (got %q)", c.AccountStore))
	}

	switch c.SessionStore {
	case StoreRedis:
		if c.RedisURL == "" {
			errs = append(errs, errors.New("REDIS_URL is required when SESSION_STORE=redis"))
		}
	case StoreMemory:
	default:
		errs = append(errs, fmt.Errorf("SESSION_STORE must be one of memory, redis (got %q)", c.SessionStore))
	}

	if c.SessionTTL <= 0 {
		errs = append(errs, errors.New("SESSION_TTL must be positive"))
	}
	if c.SessionCookieName == "" {
		errs = append(errs, errors.New("SESSION_COOKIE_NAME must not be empty"))
	}
	if c.DetectorURL == "" {
		errs = append(errs, errors.New("DETECTOR_URL is required"))
	}
	if c.DetectorTimeout <= 0 {
		errs = append(errs, errors.New("DETECTOR_TIMEOUT must be positive"))
	}
	if c.MaxUploadBytes <= 0 {
		errs = append(errs, errors.New("MAX_UPLOAD_BYTES must be positive"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config: invalid configuration: %w", errors.Join(errs...))
	}
	return nil
}

// ArchiveEnabled reports whether uploaded images are copied to object storage.
func (c *Config) ArchiveEnabled() bool {
	return c.S3Bucket != ""
}

// IsDevelopment reports whether the server is running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}
