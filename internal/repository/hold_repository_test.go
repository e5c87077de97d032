package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/lms-admin-api/internal/models"
)

func TestHoldRepositoryWithinTxCommits(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewHoldRepository(db)

	start := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`FROM course_holds WHERE id = $1 FOR UPDATE`)).
		WithArgs("h-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "student_course_id", "start_date", "end_date", "reason", "status", "requested_by", "approved_by", "processed", "created_at", "updated_at"}).
			AddRow("h-1", "e-1", start, start.AddDate(0, 0, 2), "travel", "PENDING", nil, nil, false, start, start))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM course_holds WHERE id = $1`)).
		WithArgs("h-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	var locked *models.CourseHold
	err := repo.WithinTx(context.Background(), func(tx HoldTx) error {
		var err error
		if locked, err = tx.LockHold(context.Background(), "h-1"); err != nil {
			return err
		}
		return tx.DeleteHold(context.Background(), "h-1")
	})
	require.NoError(t, err)
	assert.Equal(t, models.HoldStatusPending, locked.Status)
	assert.Equal(t, 3, locked.Days())
}

func TestHoldRepositoryWithinTxRollsBack(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewHoldRepository(db)

	mock.ExpectBegin()
	mock.ExpectRollback()

	boom := errors.New("boom")
	err := repo.WithinTx(context.Background(), func(HoldTx) error { return boom })
	assert.ErrorIs(t, err, boom)
}

func TestHoldRepositoryListPendingFilters(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewHoldRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`WHERE h.status = 'PENDING' AND e.student_id = $1 ORDER BY h.created_at ASC LIMIT $2`)).
		WithArgs("s-1", 10).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	items, err := repo.ListPending(context.Background(), models.HoldFilter{StudentID: "s-1", Limit: 10})
	require.NoError(t, err)
	assert.Empty(t, items)
}
