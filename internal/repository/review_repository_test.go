package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/lms-admin-api/internal/models"
)

func TestReviewRepositoryDecideOnlyPending(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewReviewRepository(db)

	at := time.Date(2024, 6, 3, 18, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta(`WHERE id = $4 AND status = 'PENDING'`)).
		WithArgs(models.ReviewApproved, "admin-1", at, "rv-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "attendance_id", "trainer_id", "remark", "status", "decided_by", "decided_at", "created_at"}).
			AddRow("rv-1", "r-1", "t-1", "sick", "APPROVED", "admin-1", at, at.Add(-time.Hour)))
	mock.ExpectQuery(regexp.QuoteMeta(`UPDATE attendance_reviews`)).
		WithArgs(models.ReviewRejected, "admin-1", at, "rv-1").
		WillReturnError(sql.ErrNoRows)

	rv, err := repo.Decide(context.Background(), "rv-1", models.ReviewApproved, "admin-1", at)
	require.NoError(t, err)
	assert.Equal(t, models.ReviewApproved, rv.Status)

	_, err = repo.Decide(context.Background(), "rv-1", models.ReviewRejected, "admin-1", at)
	assert.ErrorIs(t, err, ErrStale)
}
