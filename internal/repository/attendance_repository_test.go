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

func TestAttendanceRepositoryRecentByStudent(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAttendanceRepository(db)

	now := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"id", "student_id", "trainer_id", "marked_at", "status", "class_content", "student_feedback"}).
		AddRow("r-3", "s-1", "t-1", now, "ABSENT", "", "NO_ACTION").
		AddRow("r-2", "s-1", nil, now.Add(-24*time.Hour), "PRESENT", "scales", "ACCEPTED")

	mock.ExpectQuery(regexp.QuoteMeta(`FROM attendance_records WHERE student_id = $1 ORDER BY marked_at DESC, id DESC LIMIT $2`)).
		WithArgs("s-1", 3).
		WillReturnRows(rows)

	items, err := repo.RecentByStudent(context.Background(), "s-1", 3)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, models.AttendanceStatusAbsent, items[0].Status)
	assert.Nil(t, items[1].TrainerID)
	assert.Equal(t, models.FeedbackAccepted, items[1].StudentFeedback)
}

func TestAttendanceRepositoryCreateDefaults(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAttendanceRepository(db)

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO attendance_records`)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	rec := &models.AttendanceRecord{StudentID: "s-1", Status: models.AttendanceStatusPresent}
	require.NoError(t, repo.Create(context.Background(), rec))
	assert.NotEmpty(t, rec.ID)
	assert.False(t, rec.MarkedAt.IsZero())
	assert.Equal(t, models.FeedbackNoAction, rec.StudentFeedback)
}

func TestAttendanceRepositoryUpdatesTouchOneColumn(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAttendanceRepository(db)

	now := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	columns := []string{"id", "student_id", "trainer_id", "marked_at", "status", "class_content", "student_feedback"}

	mock.ExpectQuery(regexp.QuoteMeta(`UPDATE attendance_records SET class_content = $1 WHERE id = $2 RETURNING`)).
		WithArgs("chapter 4", "r-1").
		WillReturnRows(sqlmock.NewRows(columns).AddRow("r-1", "s-1", "t-1", now, "PRESENT", "chapter 4", "ACCEPTED"))
	mock.ExpectQuery(regexp.QuoteMeta(`UPDATE attendance_records SET student_feedback = $1 WHERE id = $2 RETURNING`)).
		WithArgs(models.FeedbackRejected, "r-1").
		WillReturnRows(sqlmock.NewRows(columns).AddRow("r-1", "s-1", "t-1", now, "PRESENT", "chapter 4", "REJECTED"))

	rec, err := repo.UpdateClassContent(context.Background(), "r-1", "chapter 4")
	require.NoError(t, err)
	assert.Equal(t, "chapter 4", rec.ClassContent)
	assert.Equal(t, models.FeedbackAccepted, rec.StudentFeedback)

	rec, err = repo.UpdateFeedback(context.Background(), "r-1", models.FeedbackRejected)
	require.NoError(t, err)
	assert.Equal(t, models.FeedbackRejected, rec.StudentFeedback)
	assert.Equal(t, "chapter 4", rec.ClassContent)
}

func TestAttendanceRepositoryUpdateStatusReturnsPrevious(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAttendanceRepository(db)

	now := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`FOR UPDATE\s+\)\s+UPDATE attendance_records a SET status = \$1`).
		WithArgs(models.AttendanceStatusAbsent, "r-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "student_id", "trainer_id", "marked_at", "status", "class_content", "student_feedback", "previous_status"}).
			AddRow("r-1", "s-1", "t-1", now, "ABSENT", "", "NO_ACTION", "PRESENT"))
	mock.ExpectQuery(`UPDATE attendance_records a SET status`).
		WithArgs(models.AttendanceStatusAbsent, "missing").
		WillReturnError(sql.ErrNoRows)

	rec, previous, err := repo.UpdateStatus(context.Background(), "r-1", models.AttendanceStatusAbsent)
	require.NoError(t, err)
	assert.Equal(t, models.AttendanceStatusAbsent, rec.Status)
	assert.Equal(t, models.AttendanceStatusPresent, previous)

	_, _, err = repo.UpdateStatus(context.Background(), "missing", models.AttendanceStatusAbsent)
	assert.ErrorIs(t, err, sql.ErrNoRows)
}
