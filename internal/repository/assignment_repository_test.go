package repository

import (
	"context"
	"database/sql"
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

var assignmentRowColumns = []string{"id", "trainer_id", "course_id", "student_course_id", "start_date", "end_date", "start_time", "end_time", "duration_minutes", "created_at"}

func TestAssignmentRepositoryListByTrainer(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAssignmentRepository(db)

	day := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows(assignmentRowColumns).
		AddRow("a-1", "t-1", "c-1", nil, day, day.AddDate(0, 0, 5), "09:00:00", "10:30:00", 90, day)

	mock.ExpectQuery(regexp.QuoteMeta(`FROM trainer_assignments WHERE trainer_id = $1`)).
		WithArgs("t-1").
		WillReturnRows(rows)

	items, err := repo.ListByTrainer(context.Background(), "t-1")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, models.NewTimeOfDay(9, 0), items[0].StartTime)
	assert.Equal(t, models.NewTimeOfDay(10, 30), items[0].EndTime)
	assert.Nil(t, items[0].StudentCourseID)
}

func TestAssignmentRepositoryCreateDuplicate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAssignmentRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO trainer_assignments`)).
		WillReturnError(&pq.Error{Code: "23505"})
	mock.ExpectRollback()

	err := repo.WithinTx(context.Background(), func(tx AssignmentTx) error {
		return tx.Create(context.Background(), &models.TrainerAssignment{TrainerID: "t-1", CourseID: "c-1"})
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDuplicate))
}

func TestAssignmentRepositoryLocksTrainerBeforeWrite(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAssignmentRepository(db)

	day := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`SELECT pg_advisory_xact_lock(hashtext($1))`)).
		WithArgs("trainer_assignments:t-1").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta(`FROM trainer_assignments WHERE trainer_id = $1`)).
		WithArgs("t-1").
		WillReturnRows(sqlmock.NewRows(assignmentRowColumns).
			AddRow("a-1", "t-1", "c-1", nil, day, day, "09:00:00", "10:00:00", 60, day))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO trainer_assignments`)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	candidate := &models.TrainerAssignment{TrainerID: "t-1", CourseID: "c-2", StartDate: day, EndDate: day,
		StartTime: models.NewTimeOfDay(11, 0), EndTime: models.NewTimeOfDay(12, 0), DurationMinutes: 60}
	err := repo.WithinTx(context.Background(), func(tx AssignmentTx) error {
		existing, err := tx.LockTrainer(context.Background(), "t-1")
		if err != nil {
			return err
		}
		require.Len(t, existing, 1)
		return tx.Create(context.Background(), candidate)
	})
	require.NoError(t, err)
	assert.NotEmpty(t, candidate.ID)
}

func TestAssignmentRepositoryDeleteMissing(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAssignmentRepository(db)

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM trainer_assignments WHERE id = $1`)).
		WithArgs("missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Delete(context.Background(), "missing")
	assert.True(t, errors.Is(err, sql.ErrNoRows))
}

func TestCourseRepositoryAddTrainer(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewCourseRepository(db)

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO course_trainers (course_id, trainer_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`)).
		WithArgs("c-1", "t-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO course_trainers`)).
		WithArgs("c-1", "t-1").
		WillReturnResult(sqlmock.NewResult(0, 0))

	added, err := repo.AddTrainer(context.Background(), "c-1", "t-1")
	require.NoError(t, err)
	assert.True(t, added)

	added, err = repo.AddTrainer(context.Background(), "c-1", "t-1")
	require.NoError(t, err)
	assert.False(t, added)
}
