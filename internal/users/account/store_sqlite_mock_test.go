// Copyright (c) 2026 Platewise. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package account_test

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/platewise/internal/platform/apperr"
	"github.com/taibuivan/platewise/internal/users/account"
	"github.com/taibuivan/platewise/pkg/pointer"
)

func savedProfile() account.Profile {
	return account.Profile{
		CurrentWeight: pointer.To(72.0),
		Height:        pointer.To(170.0),
		TargetWeight:  pointer.To(68.0),
		Goal:          account.GoalLose,
	}
}

/*
TestSQLiteRepository_SaveProfile_Failures drives the transaction error paths
that a real database rarely produces.
*/
func TestSQLiteRepository_SaveProfile_Failures(t *testing.T) {
	lookup := regexp.QuoteMeta("SELECT id FROM account WHERE username = ?")
	insertHistory := regexp.QuoteMeta("INSERT INTO weight_history")
	updateAccount := regexp.QuoteMeta("UPDATE account")

	tests := []struct {
		name    string
		setup   func(mock sqlmock.Sqlmock)
		wantErr error
	}{
		{
			name: "begin_fails",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin().WillReturnError(errors.New("database is locked"))
			},
		},
		{
			name: "account_missing_rolls_back",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectQuery(lookup).WithArgs("alice").WillReturnRows(sqlmock.NewRows([]string{"id"}))
				mock.ExpectRollback()
			},
			wantErr: account.ErrNotFound,
		},
		{
			name: "history_insert_fails_rolls_back",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectQuery(lookup).WithArgs("alice").WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("acc-1"))
				mock.ExpectExec(insertHistory).WillReturnError(errors.New("disk I/O error"))
				mock.ExpectRollback()
			},
		},
		{
			name: "profile_update_fails_rolls_back_the_append",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectQuery(lookup).WithArgs("alice").WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("acc-1"))
				mock.ExpectExec(insertHistory).WillReturnResult(sqlmock.NewResult(7, 1))
				mock.ExpectExec(updateAccount).WillReturnError(errors.New("disk full"))
				mock.ExpectRollback()
			},
		},
		{
			name: "commit_fails",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectQuery(lookup).WithArgs("alice").WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("acc-1"))
				mock.ExpectExec(insertHistory).WillReturnResult(sqlmock.NewResult(7, 1))
				mock.ExpectExec(updateAccount).WillReturnResult(sqlmock.NewResult(0, 1))
				mock.ExpectCommit().WillReturnError(errors.New("commit failed"))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			tt.setup(mock)

			repository := account.NewSQLiteRepository(db)
			err = repository.SaveProfile(context.Background(), "alice", savedProfile(), time.Now())

			require.Error(t, err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				// Store faults must never look like a client error.
				assert.False(t, apperr.IsAppError(err))
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

/*
TestSQLiteRepository_SaveProfile_Success checks the statement sequence of a save.
*/
func TestSQLiteRepository_SaveProfile_Success(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM account WHERE username = ?")).
		WithArgs("alice").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("acc-1"))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO weight_history")).
		WithArgs("acc-1", sqlmock.AnyArg(), 72.0, "lose").
		WillReturnResult(sqlmock.NewResult(2, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE account")).
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), "lose", sqlmock.AnyArg(), "acc-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	repository := account.NewSQLiteRepository(db)
	require.NoError(t, repository.SaveProfile(context.Background(), "alice", savedProfile(), time.Now()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

/*
TestSQLiteRepository_FindByUsername_DriverError checks that driver faults are
wrapped, not mistaken for a missing account.
*/
func TestSQLiteRepository_FindByUsername_DriverError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta("FROM account")).
		WithArgs("alice").
		WillReturnError(errors.New("no such table: account"))

	_, err = account.NewSQLiteRepository(db).FindByUsername(context.Background(), "alice")
	require.Error(t, err)
	assert.NotErrorIs(t, err, account.ErrNotFound)
	assert.Contains(t, err.Error(), "sqlite_account_repo_find_by_username_failed")
	assert.NoError(t, mock.ExpectationsWereMet())
}
