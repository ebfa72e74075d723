// Copyright (c) 2026 Platewise. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package account

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/taibuivan/platewise/internal/platform/database/schema"
	"github.com/taibuivan/platewise/internal/platform/dberr"
	"github.com/taibuivan/platewise/pkg/pointer"
)

// sqliteTimeLayout is how timestamps are stored in SQLite TEXT columns.
const sqliteTimeLayout = time.RFC3339Nano

// SQLiteRepository implements [Repository] on an embedded SQLite database.
//
// The handle must be opened with a single connection (see platform/sqlite),
// which makes every transaction here exclusive.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a SQLite-backed account store.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

/*
Create inserts the account row and its initial history in one transaction.

Returns:
  - error: ErrUsernameTaken on a UNIQUE violation, otherwise storage failures
*/
func (repository *SQLiteRepository) Create(context context.Context, account *Account) (err error) {
	tx, err := repository.db.BeginTx(context, nil)
	if err != nil {
		return dberr.Wrap(err, "sqlite_account_repo_begin")
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	accountQuery := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s, %s, %s, %s, %s)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		schema.Account.Table,
		schema.Account.ID, schema.Account.Username, schema.Account.Password,
		schema.Account.CurrentWeight, schema.Account.Height, schema.Account.TargetWeight,
		schema.Account.Goal, schema.Account.CreatedAt, schema.Account.UpdatedAt,
	)

	_, err = tx.ExecContext(context, accountQuery,
		account.ID,
		account.Username,
		account.PasswordHash,
		account.Profile.CurrentWeight,
		account.Profile.Height,
		account.Profile.TargetWeight,
		string(account.Profile.Goal),
		account.CreatedAt.UTC().Format(sqliteTimeLayout),
		account.UpdatedAt.UTC().Format(sqliteTimeLayout),
	)
	if err != nil {
		if dberr.IsUniqueViolation(err) {
			return ErrUsernameTaken
		}
		return dberr.Wrap(err, "sqlite_account_repo_create")
	}

	for _, entry := range account.History {
		if err = repository.insertHistory(context, tx, account.ID, entry); err != nil {
			return err
		}
	}

	if err = tx.Commit(); err != nil {
		return dberr.Wrap(err, "sqlite_account_repo_commit")
	}
	return nil
}

/*
FindByUsername retrieves the account row for a username.

Returns:
  - *Account: Hydrated account (History not loaded)
  - error: ErrNotFound or storage failures
*/
func (repository *SQLiteRepository) FindByUsername(context context.Context, username string) (*Account, error) {
	return findAccountSQLite(context, repository.db, username)
}

/*
ListHistory returns the history of a username in insertion order.

Returns:
  - []HistoryEntry: oldest first
  - error: ErrNotFound or storage failures
*/
func (repository *SQLiteRepository) ListHistory(context context.Context, username string) ([]HistoryEntry, error) {
	return listHistorySQLite(context, repository.db, username)
}

/*
FindWithHistory reads the account row and its history inside one transaction.

Description: The handle has a single connection, so no save can commit
between the two statements while the transaction holds it.
*/
func (repository *SQLiteRepository) FindWithHistory(context context.Context, username string) (*Account, error) {
	tx, err := repository.db.BeginTx(context, nil)
	if err != nil {
		return nil, dberr.Wrap(err, "sqlite_account_repo_begin")
	}
	defer func() { _ = tx.Rollback() }()

	account, err := findAccountSQLite(context, tx, username)
	if err != nil {
		return nil, err
	}

	if account.History, err = listHistorySQLite(context, tx, username); err != nil {
		return nil, err
	}

	return account, nil
}

// sqlQuerier is satisfied by both *sql.DB and *sql.Tx.
type sqlQuerier interface {
	QueryRowContext(context context.Context, query string, args ...any) *sql.Row
	QueryContext(context context.Context, query string, args ...any) (*sql.Rows, error)
}

func findAccountSQLite(context context.Context, querier sqlQuerier, username string) (*Account, error) {
	query := fmt.Sprintf(`
		SELECT %s, %s, %s, %s, %s, %s, %s, %s, %s
		FROM %s
		WHERE %s = ?`,
		schema.Account.ID, schema.Account.Username, schema.Account.Password,
		schema.Account.CurrentWeight, schema.Account.Height, schema.Account.TargetWeight,
		schema.Account.Goal, schema.Account.CreatedAt, schema.Account.UpdatedAt,
		schema.Account.Table, schema.Account.Username,
	)

	var (
		account                             Account
		currentWeight, height, targetWeight sql.NullFloat64
		goal, createdAt, updatedAt          string
	)

	err := querier.QueryRowContext(context, query, username).Scan(
		&account.ID,
		&account.Username,
		&account.PasswordHash,
		&currentWeight,
		&height,
		&targetWeight,
		&goal,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		if dberr.IsNoRows(err) {
			return nil, ErrNotFound
		}
		return nil, dberr.Wrap(err, "sqlite_account_repo_find_by_username")
	}

	account.Profile = Profile{
		CurrentWeight: nullFloat(currentWeight),
		Height:        nullFloat(height),
		TargetWeight:  nullFloat(targetWeight),
		Goal:          Goal(goal),
	}
	if account.CreatedAt, err = time.Parse(sqliteTimeLayout, createdAt); err != nil {
		return nil, dberr.Wrap(err, "sqlite_account_repo_parse_created_at")
	}
	if account.UpdatedAt, err = time.Parse(sqliteTimeLayout, updatedAt); err != nil {
		return nil, dberr.Wrap(err, "sqlite_account_repo_parse_updated_at")
	}

	return &account, nil
}

func listHistorySQLite(context context.Context, querier sqlQuerier, username string) ([]HistoryEntry, error) {
	query := fmt.Sprintf(`
		SELECT h.%s, h.%s, h.%s
		FROM %s h
		JOIN %s a ON a.%s = h.%s
		WHERE a.%s = ?
		ORDER BY h.%s`,
		schema.WeightHistory.RecordedAt, schema.WeightHistory.Weight, schema.WeightHistory.Goal,
		schema.WeightHistory.Table,
		schema.Account.Table, schema.Account.ID, schema.WeightHistory.AccountID,
		schema.Account.Username,
		schema.WeightHistory.ID,
	)

	rows, err := querier.QueryContext(context, query, username)
	if err != nil {
		return nil, dberr.Wrap(err, "sqlite_account_repo_list_history")
	}
	defer rows.Close()

	history := make([]HistoryEntry, 0)
	for rows.Next() {
		var (
			entry      HistoryEntry
			recordedAt string
			goal       string
		)
		if err := rows.Scan(&recordedAt, &entry.Weight, &goal); err != nil {
			return nil, dberr.Wrap(err, "sqlite_account_repo_scan_history")
		}
		if entry.Date, err = time.Parse(sqliteTimeLayout, recordedAt); err != nil {
			return nil, dberr.Wrap(err, "sqlite_account_repo_parse_recorded_at")
		}
		entry.Goal = Goal(goal)
		history = append(history, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, dberr.Wrap(err, "sqlite_account_repo_list_history")
	}

	// Every account is created with one entry, so none means no account.
	if len(history) == 0 {
		return nil, ErrNotFound
	}

	return history, nil
}

/*
SaveProfile appends a history entry and overwrites the profile in one transaction.

Returns:
  - error: ErrNotFound or storage failures
*/
func (repository *SQLiteRepository) SaveProfile(context context.Context, username string, profile Profile, recordedAt time.Time) (err error) {
	tx, err := repository.db.BeginTx(context, nil)
	if err != nil {
		return dberr.Wrap(err, "sqlite_account_repo_begin")
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	lookupQuery := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = ?`,
		schema.Account.ID, schema.Account.Table, schema.Account.Username,
	)

	var accountID string
	if err = tx.QueryRowContext(context, lookupQuery, username).Scan(&accountID); err != nil {
		if dberr.IsNoRows(err) {
			return ErrNotFound
		}
		return dberr.Wrap(err, "sqlite_account_repo_lock")
	}

	entry := HistoryEntry{Date: recordedAt, Weight: pointer.Val(profile.CurrentWeight), Goal: profile.Goal}
	if err = repository.insertHistory(context, tx, accountID, entry); err != nil {
		return err
	}

	updateQuery := fmt.Sprintf(`
		UPDATE %s
		SET %s = ?, %s = ?, %s = ?, %s = ?, %s = ?
		WHERE %s = ?`,
		schema.Account.Table,
		schema.Account.CurrentWeight, schema.Account.Height, schema.Account.TargetWeight,
		schema.Account.Goal, schema.Account.UpdatedAt,
		schema.Account.ID,
	)

	_, err = tx.ExecContext(context, updateQuery,
		profile.CurrentWeight,
		profile.Height,
		profile.TargetWeight,
		string(profile.Goal),
		recordedAt.UTC().Format(sqliteTimeLayout),
		accountID,
	)
	if err != nil {
		return dberr.Wrap(err, "sqlite_account_repo_update_profile")
	}

	if err = tx.Commit(); err != nil {
		return dberr.Wrap(err, "sqlite_account_repo_commit")
	}
	return nil
}

// insertHistory appends one weight_history row inside tx.
func (repository *SQLiteRepository) insertHistory(context context.Context, tx *sql.Tx, accountID string, entry HistoryEntry) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s)
		VALUES (?, ?, ?, ?)`,
		schema.WeightHistory.Table,
		schema.WeightHistory.AccountID, schema.WeightHistory.RecordedAt,
		schema.WeightHistory.Weight, schema.WeightHistory.Goal,
	)

	_, err := tx.ExecContext(context, query,
		accountID,
		entry.Date.UTC().Format(sqliteTimeLayout),
		entry.Weight,
		string(entry.Goal),
	)
	if err != nil {
		return dberr.Wrap(err, "sqlite_account_repo_insert_history")
	}
	return nil
}

func nullFloat(value sql.NullFloat64) *float64 {
	if !value.Valid {
		return nil
	}
	return pointer.To(value.Float64)
}
