// Copyright (c) 2026 Platewise. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package sqlite opens the embedded, file-backed account database.
//
// # Architecture
//
// SQLite allows a single writer. The handle is capped at one open connection
// so every transaction (and therefore every profile save) is serialized by
// database/sql itself, and busy_timeout absorbs contention from other processes.
package sqlite

import (
	stdctx "context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	// Registers the pure-Go "sqlite" driver.
	_ "modernc.org/sqlite"
)

const pingTimeout = 2 * time.Second

// Open creates the parent directory if needed and opens path with WAL,
// foreign keys and a busy timeout enabled.
func Open(context stdctx.Context, path string, logger *slog.Logger) (*sql.DB, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("sqlite: failed to create data directory: %w", err)
		}
	}

	dsn := fmt.Sprintf("file:%s?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: failed to open %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)

	if err := Ping(context, db); err != nil {
		_ = db.Close()
		return nil, err
	}

	logger.Info("sqlite database opened", slog.String("path", path))
	return db, nil
}

// Ping verifies that the database handle is usable.
func Ping(context stdctx.Context, db *sql.DB) error {
	pingCtx, cancel := stdctx.WithTimeout(context, pingTimeout)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		return fmt.Errorf("sqlite: ping failed: %w", err)
	}
	return nil
}
