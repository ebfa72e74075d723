// Copyright (c) 2026 Platewise. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package account (Postgres) implements the storage layer for accounts on PostgreSQL.

# Schema Table Mapping
  - account: identity, credentials and the current profile.
  - weight_history: append-only weigh-ins, ordered by a BIGSERIAL id.

# Concurrency

SaveProfile locks the account row with SELECT ... FOR UPDATE, so concurrent
saves on one account queue behind each other and their history ids follow
acceptance order.
*/
package account

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/platewise/internal/platform/database/schema"
	"github.com/taibuivan/platewise/internal/platform/dberr"
	"github.com/taibuivan/platewise/pkg/pointer"
)

// PostgresRepository implements [Repository] using pgx.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new Postgres implementation of the account store.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

/*
Create inserts the account row and its initial history in one transaction.

Parameters:
  - context: context.Context
  - account: *Account

Returns:
  - error: ErrUsernameTaken on SQLSTATE 23505, otherwise execution failures
*/
func (repository *PostgresRepository) Create(context context.Context, account *Account) error {
	return pgx.BeginFunc(context, repository.pool, func(tx pgx.Tx) error {
		query := fmt.Sprintf(`
			INSERT INTO %s (%s, %s, %s, %s, %s, %s, %s, %s, %s)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			schema.Account.Table,
			schema.Account.ID, schema.Account.Username, schema.Account.Password,
			schema.Account.CurrentWeight, schema.Account.Height, schema.Account.TargetWeight,
			schema.Account.Goal, schema.Account.CreatedAt, schema.Account.UpdatedAt,
		)

		_, err := tx.Exec(context, query,
			account.ID,
			account.Username,
			account.PasswordHash,
			account.Profile.CurrentWeight,
			account.Profile.Height,
			account.Profile.TargetWeight,
			string(account.Profile.Goal),
			account.CreatedAt,
			account.UpdatedAt,
		)
		if err != nil {
			if dberr.IsUniqueViolation(err) {
				return ErrUsernameTaken
			}
			return fmt.Errorf("postgres_account_repo_create_failed: %w", err)
		}

		for _, entry := range account.History {
			if err := insertHistoryPostgres(context, tx, account.ID, entry); err != nil {
				return err
			}
		}
		return nil
	})
}

/*
FindByUsername retrieves the account row for a username.

Parameters:
  - context: context.Context
  - username: string

Returns:
  - *Account: Hydrated account entity (History not loaded)
  - error: ErrNotFound or database execution failure
*/
func (repository *PostgresRepository) FindByUsername(context context.Context, username string) (*Account, error) {
	return findAccountPostgres(context, repository.pool, username)
}

/*
ListHistory returns a username's weigh-ins, oldest first.

Parameters:
  - context: context.Context
  - username: string

Returns:
  - []HistoryEntry: Ordered by insertion id
  - error: ErrNotFound or database execution failure
*/
func (repository *PostgresRepository) ListHistory(context context.Context, username string) ([]HistoryEntry, error) {
	return listHistoryPostgres(context, repository.pool, username)
}

/*
FindWithHistory reads the account row and its history from one snapshot.

Description: A read-only REPEATABLE READ transaction sees SaveProfile's
history insert and profile update either both or neither.

Returns:
  - *Account: History set, oldest first
  - error: ErrNotFound or database execution failure
*/
func (repository *PostgresRepository) FindWithHistory(context context.Context, username string) (*Account, error) {
	var account *Account

	options := pgx.TxOptions{IsoLevel: pgx.RepeatableRead, AccessMode: pgx.ReadOnly}
	err := pgx.BeginTxFunc(context, repository.pool, options, func(tx pgx.Tx) error {
		found, err := findAccountPostgres(context, tx, username)
		if err != nil {
			return err
		}
		if found.History, err = listHistoryPostgres(context, tx, username); err != nil {
			return err
		}
		account = found
		return nil
	})
	if err != nil {
		return nil, err
	}

	return account, nil
}

// pgQuerier is satisfied by both *pgxpool.Pool and pgx.Tx.
type pgQuerier interface {
	QueryRow(context context.Context, sql string, args ...any) pgx.Row
	Query(context context.Context, sql string, args ...any) (pgx.Rows, error)
}

func findAccountPostgres(context context.Context, querier pgQuerier, username string) (*Account, error) {
	query := fmt.Sprintf(`
		SELECT %s, %s, %s, %s, %s, %s, %s, %s, %s
		FROM %s
		WHERE %s = $1`,
		schema.Account.ID, schema.Account.Username, schema.Account.Password,
		schema.Account.CurrentWeight, schema.Account.Height, schema.Account.TargetWeight,
		schema.Account.Goal, schema.Account.CreatedAt, schema.Account.UpdatedAt,
		schema.Account.Table, schema.Account.Username,
	)

	var (
		account Account
		goal    string
	)

	err := querier.QueryRow(context, query, username).Scan(
		&account.ID,
		&account.Username,
		&account.PasswordHash,
		&account.Profile.CurrentWeight,
		&account.Profile.Height,
		&account.Profile.TargetWeight,
		&goal,
		&account.CreatedAt,
		&account.UpdatedAt,
	)
	if err != nil {
		if dberr.IsNoRows(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("postgres_account_repo_find_by_username_failed: %w", err)
	}

	account.Profile.Goal = Goal(goal)
	return &account, nil
}

func listHistoryPostgres(context context.Context, querier pgQuerier, username string) ([]HistoryEntry, error) {
	query := fmt.Sprintf(`
		SELECT h.%s, h.%s, h.%s
		FROM %s h
		JOIN %s a ON a.%s = h.%s
		WHERE a.%s = $1
		ORDER BY h.%s`,
		schema.WeightHistory.RecordedAt, schema.WeightHistory.Weight, schema.WeightHistory.Goal,
		schema.WeightHistory.Table,
		schema.Account.Table, schema.Account.ID, schema.WeightHistory.AccountID,
		schema.Account.Username,
		schema.WeightHistory.ID,
	)

	rows, err := querier.Query(context, query, username)
	if err != nil {
		return nil, fmt.Errorf("postgres_account_repo_list_history_failed: %w", err)
	}
	defer rows.Close()

	history := make([]HistoryEntry, 0)
	for rows.Next() {
		var (
			entry HistoryEntry
			goal  string
		)
		if err := rows.Scan(&entry.Date, &entry.Weight, &goal); err != nil {
			return nil, fmt.Errorf("postgres_account_repo_scan_history_failed: %w", err)
		}
		entry.Goal = Goal(goal)
		history = append(history, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres_account_repo_list_history_failed: %w", err)
	}

	// Every account is created with one entry, so none means no account.
	if len(history) == 0 {
		return nil, ErrNotFound
	}

	return history, nil
}

/*
SaveProfile appends a history entry and overwrites the profile.

Description: Runs in a transaction holding a row lock on the account, so the
append and the overwrite are observed together or not at all.

Parameters:
  - context: context.Context
  - username: string
  - profile: Profile
  - recordedAt: time.Time

Returns:
  - error: ErrNotFound or database execution failure
*/
func (repository *PostgresRepository) SaveProfile(context context.Context, username string, profile Profile, recordedAt time.Time) error {
	return pgx.BeginFunc(context, repository.pool, func(tx pgx.Tx) error {
		lockQuery := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1 FOR UPDATE`,
			schema.Account.ID, schema.Account.Table, schema.Account.Username,
		)

		var accountID string
		if err := tx.QueryRow(context, lockQuery, username).Scan(&accountID); err != nil {
			if dberr.IsNoRows(err) {
				return ErrNotFound
			}
			return fmt.Errorf("postgres_account_repo_lock_failed: %w", err)
		}

		entry := HistoryEntry{Date: recordedAt, Weight: pointer.Val(profile.CurrentWeight), Goal: profile.Goal}
		if err := insertHistoryPostgres(context, tx, accountID, entry); err != nil {
			return err
		}

		updateQuery := fmt.Sprintf(`
			UPDATE %s
			SET %s = $2, %s = $3, %s = $4, %s = $5, %s = $6
			WHERE %s = $1`,
			schema.Account.Table,
			schema.Account.CurrentWeight, schema.Account.Height, schema.Account.TargetWeight,
			schema.Account.Goal, schema.Account.UpdatedAt,
			schema.Account.ID,
		)

		_, err := tx.Exec(context, updateQuery,
			accountID,
			profile.CurrentWeight,
			profile.Height,
			profile.TargetWeight,
			string(profile.Goal),
			recordedAt,
		)
		if err != nil {
			return fmt.Errorf("postgres_account_repo_update_profile_failed: %w", err)
		}
		return nil
	})
}

// insertHistoryPostgres appends one weight_history row inside tx.
func insertHistoryPostgres(context context.Context, tx pgx.Tx, accountID string, entry HistoryEntry) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s)
		VALUES ($1, $2, $3, $4)`,
		schema.WeightHistory.Table,
		schema.WeightHistory.AccountID, schema.WeightHistory.RecordedAt,
		schema.WeightHistory.Weight, schema.WeightHistory.Goal,
	)

	if _, err := tx.Exec(context, query, accountID, entry.Date, entry.Weight, string(entry.Goal)); err != nil {
		return fmt.Errorf("postgres_account_repo_insert_history_failed: %w", err)
	}
	return nil
}
