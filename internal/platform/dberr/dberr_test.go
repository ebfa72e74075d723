// Copyright (c) 2026 Platewise. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package dberr_test

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/platewise/internal/platform/dberr"
)

/*
TestIsNoRows recognises both driver families, even when wrapped.
*/
func TestIsNoRows(t *testing.T) {
	assert.True(t, dberr.IsNoRows(pgx.ErrNoRows))
	assert.True(t, dberr.IsNoRows(fmt.Errorf("scan: %w", sql.ErrNoRows)))
	assert.False(t, dberr.IsNoRows(errors.New("boom")))
}

/*
TestIsUniqueViolation checks the PostgreSQL SQLSTATE mapping.
*/
func TestIsUniqueViolation(t *testing.T) {
	unique := &pgconn.PgError{Code: pgerrcode.UniqueViolation}
	other := &pgconn.PgError{Code: pgerrcode.ForeignKeyViolation}

	assert.True(t, dberr.IsUniqueViolation(fmt.Errorf("insert: %w", unique)))
	assert.False(t, dberr.IsUniqueViolation(other))
	assert.False(t, dberr.IsUniqueViolation(errors.New("boom")))
}

/*
TestWrap keeps the cause reachable.
*/
func TestWrap(t *testing.T) {
	cause := errors.New("connection reset")
	err := dberr.Wrap(cause, "sqlite_account_repo_create")

	assert.EqualError(t, err, "sqlite_account_repo_create_failed: connection reset")
	assert.ErrorIs(t, err, cause)
	assert.NoError(t, dberr.Wrap(nil, "noop"))
}
