// Copyright (c) 2026 Platewise. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Command api is the entry point for the Platewise HTTP API server.
//
// # Startup Sequence
//
//  1. Initialize structured logger.
//  2. Load configuration from environment variables (and .env).
//  3. Open the account store (SQLite, PostgreSQL or memory) and migrate it.
//  4. Open the session store (memory or Redis).
//  5. Build the detector client and the optional S3 image archive.
//  6. Wire HTTP handlers.
//  7. Start HTTP server with graceful shutdown.
//
// No business logic lives here. All wiring is explicit constructor injection.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/taibuivan/platewise/internal/api"
	"github.com/taibuivan/platewise/internal/nutrition"
	"github.com/taibuivan/platewise/internal/platform/config"
	"github.com/taibuivan/platewise/internal/platform/constants"
	"github.com/taibuivan/platewise/internal/platform/migration"
	pgstore "github.com/taibuivan/platewise/internal/platform/postgres"
	redisstore "github.com/taibuivan/platewise/internal/platform/redis"
	"github.com/taibuivan/platewise/internal/platform/sec"
	sqlitestore "github.com/taibuivan/platewise/internal/platform/sqlite"
	"github.com/taibuivan/platewise/internal/users/account"
	"github.com/taibuivan/platewise/internal/users/auth"
)

func main() {
	// ── 1. Logger ──────────────────────────────────────────────────────────
	// Initialize first so that subsequent startup errors are structured JSON.
	log := newLogger(slog.LevelInfo)
	log.Info("service_initializing")

	// ── 2. Configuration ──────────────────────────────────────────────────
	cfg, err := config.Load()
	must(log, err, "load configuration")

	if cfg.Debug {
		log = newLogger(slog.LevelDebug)
		log.Debug("debug_logging_enabled")
	}

	log.Info("configuration_loaded",
		slog.String("environment", cfg.Environment),
		slog.String("port", cfg.ServerPort),
		slog.String("account_store", cfg.AccountStore),
		slog.String("session_store", cfg.SessionStore),
		slog.Bool("archive_enabled", cfg.ArchiveEnabled()),
	)

	// Root context for startup. Use a 30s deadline so misconfiguration is
	// caught quickly rather than hanging indefinitely.
	startupCtx, startupCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer startupCancel()

	// Background workers (rate limiter cleanup, session janitor) stop with this.
	appCtx, appCancel := context.WithCancel(context.Background())
	defer appCancel()

	var checks []api.HealthCheck

	// ── 3. Account Store ──────────────────────────────────────────────────
	accounts, accountCheck, closeAccounts := openAccountStore(startupCtx, cfg, log)
	defer closeAccounts()
	if accountCheck.Check != nil {
		checks = append(checks, accountCheck)
	}

	// ── 4. Session Store ──────────────────────────────────────────────────
	sessions, sessionCheck, closeSessions := openSessionStore(startupCtx, cfg, log)
	defer closeSessions()
	if sessionCheck.Check != nil {
		checks = append(checks, sessionCheck)
	}

	// ── 5. Detector & Archive ─────────────────────────────────────────────
	var signer nutrition.TokenSigner
	if cfg.DetectorSecret != "" {
		serviceSigner, err := sec.NewServiceTokenSigner(cfg.DetectorSecret,
			constants.DetectorIssuer, constants.DetectorAudience, constants.DetectorTokenTTL)
		must(log, err, "initialize detector token signer")
		signer = serviceSigner
	}
	detector := nutrition.NewHTTPDetector(cfg.DetectorURL, cfg.DetectorTimeout, signer)

	var archive nutrition.ImageArchive
	if cfg.ArchiveEnabled() {
		s3Archive, err := nutrition.NewS3Archive(startupCtx, nutrition.S3Options{
			Bucket:          cfg.S3Bucket,
			Region:          cfg.S3Region,
			Endpoint:        cfg.S3Endpoint,
			AccessKeyID:     cfg.S3AccessKeyID,
			SecretAccessKey: cfg.S3SecretAccessKey,
		})
		must(log, err, "initialize image archive")
		archive = s3Archive
	}

	// ── 6. Domain Wiring ──────────────────────────────────────────────────
	authService := auth.NewService(accounts, sessions, cfg.SessionTTL, log)
	go authService.RunJanitor(appCtx, constants.SessionJanitorInterval)

	accountService := account.NewService(accounts, log)
	nutritionService := nutrition.NewService(detector, archive, log)

	liveness, readiness := api.NewHealthHandlers(checks, log)

	handlers := api.Handlers{
		Liveness:  liveness,
		Readiness: readiness,
		Auth:      auth.NewHandler(authService, auth.CookieOptions{Name: cfg.SessionCookieName, Secure: cfg.CookieSecure}),
		Account:   account.NewHandler(accountService),
		Nutrition: nutrition.NewHandler(nutritionService, cfg.MaxUploadBytes),
	}

	// ── 7. HTTP Server ────────────────────────────────────────────────────
	server := api.NewServer(appCtx, cfg, log, authService, handlers)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)

	serverErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Block until OS signal or server error.
	select {
	case sig := <-quit:
		log.Info("shutdown_signal_received", slog.String("signal", sig.String()))
	case err := <-serverErr:
		log.Error("server_startup_error", slog.Any("error", err))
	}

	// Give in-flight requests enough time to complete.
	shutdownTimeout := constants.ShutdownTimeout
	log.Info("server_shutting_down", slog.Duration("timeout", shutdownTimeout))

	if err := server.Shutdown(shutdownTimeout); err != nil {
		log.Error("shutdown_error", slog.Any("error", err))
		os.Exit(1)
	}

	log.Info("server_stopped")
}

func newLogger(level slog.Level) *slog.Logger {
	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})).
		With(slog.String("app", constants.AppName))
	slog.SetDefault(log)
	return log
}

// openAccountStore connects and migrates the configured account store.
func openAccountStore(ctx context.Context, cfg *config.Config, log *slog.Logger) (account.Repository, api.HealthCheck, func()) {
	switch cfg.AccountStore {
	case config.StorePostgres:
		must(log, migration.RunPostgres(cfg.DatabaseURL, log), "run postgres migrations")

		pool, err := pgstore.NewPool(ctx, cfg.DatabaseURL, log)
		must(log, err, "connect to postgres")

		check := api.HealthCheck{Name: "postgres", Check: func(ctx context.Context) error { return pgstore.Ping(ctx, pool) }}
		return account.NewPostgresRepository(pool), check, func() {
			log.Info("closing_postgres_pool")
			pool.Close()
		}

	case config.StoreSQLite:
		db, err := sqlitestore.Open(ctx, cfg.SQLitePath, log)
		must(log, err, "open sqlite database")
		must(log, migration.RunSQLite(db, log), "run sqlite migrations")

		check := api.HealthCheck{Name: "sqlite", Check: func(ctx context.Context) error { return sqlitestore.Ping(ctx, db) }}
		return account.NewSQLiteRepository(db), check, func() {
			log.Info("closing_sqlite_database")
			if err := db.Close(); err != nil {
				log.Error("sqlite_close_error", slog.Any("error", err))
			}
		}

	default:
		log.Warn("memory_account_store_enabled", slog.String("note", "accounts are lost on restart"))
		return account.NewMemoryRepository(), api.HealthCheck{}, func() {}
	}
}

// openSessionStore connects the configured session store.
func openSessionStore(ctx context.Context, cfg *config.Config, log *slog.Logger) (auth.SessionRepository, api.HealthCheck, func()) {
	if cfg.SessionStore != config.StoreRedis {
		return auth.NewMemorySessionRepository(), api.HealthCheck{}, func() {}
	}

	rdb, err := redisstore.NewClient(ctx, cfg.RedisURL, log)
	must(log, err, "connect to redis")

	check := api.HealthCheck{Name: "redis", Check: func(ctx context.Context) error { return redisstore.Ping(ctx, rdb) }}
	return auth.NewRedisSessionRepository(rdb), check, func() {
		log.Info("closing_redis_client")
		if err := rdb.Close(); err != nil {
			log.Error("redis_close_error", slog.Any("error", err))
		}
	}
}

// must logs a structured fatal error and terminates the process if err is non-nil.
//
// It is limited to startup wiring. After startup, all errors are returned
// and handled explicitly.
func must(log *slog.Logger, err error, step string) {
	if err != nil {
		log.Error("startup_failure",
			slog.String("step", step),
			slog.Any("error", err),
		)
		os.Exit(1)
	}
}
