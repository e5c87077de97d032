package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/lms-admin-api/internal/models"
)

var ledgerRowColumns = []string{"id", "user_id", "period", "leaves_accrued", "leaves_taken", "leaves_remaining", "created_at", "updated_at"}

func TestLeaveRepositoryLockLedgerCreatesThenLocks(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewLeaveRepository(db)

	period := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO leave_history`)).
		WithArgs(sqlmock.AnyArg(), "u-1", period, 2, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta(`FROM leave_history WHERE user_id = $1 AND period = $2 FOR UPDATE`)).
		WithArgs("u-1", period).
		WillReturnRows(sqlmock.NewRows(ledgerRowColumns).AddRow("l-1", "u-1", period, 2, 0, 2, period, period))
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE leave_history SET leaves_taken = $1, leaves_remaining = $2`)).
		WithArgs(1, 1, sqlmock.AnyArg(), "l-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.WithinTx(context.Background(), func(tx LeaveTx) error {
		ledger, err := tx.LockLedger(context.Background(), "u-1", period, 2)
		if err != nil {
			return err
		}
		ledger.Deduct(1)
		return tx.UpdateLedger(context.Background(), ledger)
	})
	require.NoError(t, err)
}

func TestLeaveRepositoryContentionIsClassified(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewLeaveRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`FROM leave_requests WHERE id = $1 FOR UPDATE`)).
		WithArgs("r-1").
		WillReturnError(&pq.Error{Code: "40P01"})
	mock.ExpectRollback()

	err := repo.WithinTx(context.Background(), func(tx LeaveTx) error {
		_, err := tx.LockRequest(context.Background(), "r-1")
		return err
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrContention))
}

func TestLeaveRepositoryListHistoryRange(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewLeaveRepository(db)

	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta(`FROM leave_history WHERE 1=1 AND user_id = $1 AND period >= $2 ORDER BY period DESC, user_id`)).
		WithArgs("u-1", from).
		WillReturnRows(sqlmock.NewRows(ledgerRowColumns).
			AddRow("l-2", "u-1", from.AddDate(0, 1, 0), 2, 1, 1, from, from).
			AddRow("l-1", "u-1", from, 2, 0, 2, from, from))

	rows, err := repo.ListHistory(context.Background(), models.LeaveHistoryFilter{UserID: "u-1", From: &from})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, 1, rows[0].LeavesRemaining)
}
