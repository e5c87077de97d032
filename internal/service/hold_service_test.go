package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/lms-admin-api/internal/dto"
	"github.com/noah-isme/lms-admin-api/internal/models"
	"github.com/noah-isme/lms-admin-api/internal/repository"
	"github.com/noah-isme/lms-admin-api/internal/repository/inmem"
	appErrors "github.com/noah-isme/lms-admin-api/pkg/errors"
)

var (
	adminActor   = models.Actor{UserID: "admin-1", Role: models.RoleAdmin}
	managerActor = models.Actor{UserID: "manager-1", Role: models.RoleManager}
	trainerActor = models.Actor{UserID: "t-1", Role: models.RoleTrainer}
	studentActor = models.Actor{UserID: "s-1", Role: models.RoleStudent}
)

type holdFixture struct {
	svc         *HoldService
	holds       *inmem.HoldRepository
	enrollments *inmem.EnrollmentRepository
	metrics     *holdMetricsStub
	enrollment  *models.Enrollment
}

type holdMetricsStub struct {
	decisions []string
}

func (m *holdMetricsStub) RecordHoldDecision(status models.HoldStatus, applied bool) {
	if applied {
		m.decisions = append(m.decisions, string(status))
	}
}

func newHoldFixture(t *testing.T) *holdFixture {
	t.Helper()
	db := inmem.New()
	f := &holdFixture{
		holds:       inmem.NewHoldRepository(db),
		enrollments: inmem.NewEnrollmentRepository(db),
		metrics:     &holdMetricsStub{},
	}
	f.svc = NewHoldService(f.holds, f.enrollments, f.metrics, nil, nil)

	trainer := "t-1"
	f.enrollment = &models.Enrollment{
		StudentID: "s-1",
		CourseID:  "c-1",
		TrainerID: &trainer,
		StartDate: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, f.enrollments.Create(context.Background(), f.enrollment))
	return f
}

func (f *holdFixture) request(t *testing.T, start, end string) *models.CourseHold {
	t.Helper()
	hold, err := f.svc.Request(context.Background(), dto.CreateHoldRequest{
		StudentCourseID: f.enrollment.ID,
		StartDate:       start,
		EndDate:         end,
		Reason:          "travel",
	}, studentActor)
	require.NoError(t, err)
	return hold
}

func TestHoldApproveExtendsEnrollment(t *testing.T) {
	ctx := context.Background()
	f := newHoldFixture(t)
	hold := f.request(t, "2024-01-10", "2024-01-12")

	result, err := f.svc.Approve(ctx, hold.ID, adminActor)
	require.NoError(t, err)
	assert.True(t, result.Applied)
	assert.Equal(t, 3, result.HoldDays)

	enrollment, err := f.enrollments.FindByID(ctx, f.enrollment.ID)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 4, 3, 0, 0, 0, 0, time.UTC), enrollment.EndDate)
	assert.Nil(t, enrollment.TrainerID)

	history, err := f.svc.History(ctx, "s-1", studentActor)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, models.HoldStatusApproved, history[0].Status)
	assert.Equal(t, "admin-1", *history[0].DecidedBy)

	pending, err := f.svc.ListPending(ctx, models.HoldFilter{}, adminActor)
	require.NoError(t, err)
	assert.Empty(t, pending)
	assert.Equal(t, []string{"APPROVED"}, f.metrics.decisions)
}

func TestHoldRejectLeavesEnrollmentUntouched(t *testing.T) {
	ctx := context.Background()
	f := newHoldFixture(t)
	hold := f.request(t, "2024-02-01", "2024-02-05")

	result, err := f.svc.Reject(ctx, hold.ID, managerActor)
	require.NoError(t, err)
	assert.True(t, result.Applied)
	assert.Nil(t, result.Enrollment)

	enrollment, err := f.enrollments.FindByID(ctx, f.enrollment.ID)
	require.NoError(t, err)
	assert.Equal(t, f.enrollment.EndDate, enrollment.EndDate)
	require.NotNil(t, enrollment.TrainerID)
	assert.Equal(t, "t-1", *enrollment.TrainerID)

	history, err := f.svc.History(ctx, "s-1", adminActor)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, models.HoldStatusRejected, history[0].Status)
}

func TestHoldDecisionIsIdempotent(t *testing.T) {
	ctx := context.Background()
	f := newHoldFixture(t)
	hold := f.request(t, "2024-01-10", "2024-01-12")

	_, err := f.svc.Approve(ctx, hold.ID, adminActor)
	require.NoError(t, err)

	again, err := f.svc.Approve(ctx, hold.ID, adminActor)
	require.NoError(t, err)
	assert.False(t, again.Applied)

	rejected, err := f.svc.Reject(ctx, hold.ID, adminActor)
	require.NoError(t, err)
	assert.False(t, rejected.Applied)

	enrollment, err := f.enrollments.FindByID(ctx, f.enrollment.ID)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 4, 3, 0, 0, 0, 0, time.UTC), enrollment.EndDate)

	history, err := f.svc.History(ctx, "s-1", adminActor)
	require.NoError(t, err)
	assert.Len(t, history, 1)
}

func TestHoldDecisionRequiresStaff(t *testing.T) {
	f := newHoldFixture(t)
	hold := f.request(t, "2024-01-10", "2024-01-12")

	_, err := f.svc.Approve(context.Background(), hold.ID, studentActor)
	assert.True(t, errors.Is(err, appErrors.ErrForbidden))
	_, err = f.svc.Reject(context.Background(), hold.ID, trainerActor)
	assert.True(t, errors.Is(err, appErrors.ErrForbidden))
}

func TestHoldRequestValidation(t *testing.T) {
	ctx := context.Background()
	f := newHoldFixture(t)

	_, err := f.svc.Request(ctx, dto.CreateHoldRequest{StudentCourseID: f.enrollment.ID, StartDate: "2024-01-12", EndDate: "2024-01-10"}, studentActor)
	assert.True(t, errors.Is(err, appErrors.ErrInvalidRange))

	other := models.Actor{UserID: "s-2", Role: models.RoleStudent}
	_, err = f.svc.Request(ctx, dto.CreateHoldRequest{StudentCourseID: f.enrollment.ID, StartDate: "2024-01-10", EndDate: "2024-01-12"}, other)
	assert.True(t, errors.Is(err, appErrors.ErrForbidden))

	_, err = f.svc.Request(ctx, dto.CreateHoldRequest{StudentCourseID: "missing", StartDate: "2024-01-10", EndDate: "2024-01-12"}, adminActor)
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))
}

func TestHoldListPendingScopesStudents(t *testing.T) {
	ctx := context.Background()
	f := newHoldFixture(t)
	f.request(t, "2024-01-10", "2024-01-12")

	mine, err := f.svc.ListPending(ctx, models.HoldFilter{}, studentActor)
	require.NoError(t, err)
	assert.Len(t, mine, 1)

	theirs, err := f.svc.ListPending(ctx, models.HoldFilter{StudentID: "s-1"}, models.Actor{UserID: "s-2", Role: models.RoleStudent})
	require.NoError(t, err)
	assert.Empty(t, theirs)
}

type failingHoldStore struct {
	holdStore
}

func (failingHoldStore) WithinTx(context.Context, func(repository.HoldTx) error) error {
	return errors.New("connection reset")
}

func TestHoldDecisionStorageFailure(t *testing.T) {
	svc := NewHoldService(failingHoldStore{}, nil, nil, nil, nil)
	_, err := svc.Approve(context.Background(), "h-1", adminActor)
	assert.True(t, errors.Is(err, appErrors.ErrInternal))
}

func TestApplyHoldDecisionPure(t *testing.T) {
	trainer := "t-1"
	hold := &models.CourseHold{StartDate: day(10), EndDate: day(12), Status: models.HoldStatusPending}
	enrollment := &models.Enrollment{ID: "e-1", StudentID: "s-1", TrainerID: &trainer, EndDate: day(20)}

	history, days := applyHoldDecision(hold, enrollment, models.HoldStatusApproved, "admin-1")

	assert.Equal(t, 3, days)
	assert.Equal(t, day(23), enrollment.EndDate)
	assert.Nil(t, enrollment.TrainerID)
	assert.True(t, hold.Processed)
	assert.Equal(t, "admin-1", *hold.ApprovedBy)
	assert.Equal(t, "e-1", *history.StudentCourseID)
}
