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
	"github.com/noah-isme/lms-admin-api/internal/repository/inmem"
	appErrors "github.com/noah-isme/lms-admin-api/pkg/errors"
)

type reviewFixture struct {
	svc    *ReviewService
	record *models.AttendanceRecord
	clock  *fakeClock
}

func newReviewFixture(t *testing.T) *reviewFixture {
	t.Helper()
	db := inmem.New()
	attendance := inmem.NewAttendanceRepository(db)
	trainer := "t-1"
	rec := &models.AttendanceRecord{StudentID: "s-1", TrainerID: &trainer, Status: models.AttendanceStatusAbsent}
	require.NoError(t, attendance.Create(context.Background(), rec))

	f := &reviewFixture{record: rec, clock: &fakeClock{now: time.Date(2024, 6, 3, 18, 0, 0, 0, time.UTC)}}
	f.svc = NewReviewService(inmem.NewReviewRepository(db), attendance, nil, nil, f.clock.Now)
	return f
}

func TestReviewSubmitByRecordTrainer(t *testing.T) {
	ctx := context.Background()
	f := newReviewFixture(t)

	review, err := f.svc.Submit(ctx, f.record.ID, dto.ReviewRequest{Remark: "student was sick"}, trainerActor)
	require.NoError(t, err)
	assert.Equal(t, models.ReviewPending, review.Status)
	assert.Equal(t, "t-1", review.TrainerID)
	assert.Equal(t, f.record.ID, review.AttendanceID)

	_, err = f.svc.Submit(ctx, f.record.ID, dto.ReviewRequest{Remark: "x"}, models.Actor{UserID: "t-2", Role: models.RoleTrainer})
	assert.True(t, errors.Is(err, appErrors.ErrForbidden))

	_, err = f.svc.Submit(ctx, f.record.ID, dto.ReviewRequest{Remark: "x"}, adminActor)
	assert.True(t, errors.Is(err, appErrors.ErrForbidden))

	_, err = f.svc.Submit(ctx, f.record.ID, dto.ReviewRequest{}, trainerActor)
	assert.True(t, errors.Is(err, appErrors.ErrValidation))

	_, err = f.svc.Submit(ctx, "missing", dto.ReviewRequest{Remark: "x"}, trainerActor)
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))
}

func TestReviewDecidedOnce(t *testing.T) {
	ctx := context.Background()
	f := newReviewFixture(t)
	review, err := f.svc.Submit(ctx, f.record.ID, dto.ReviewRequest{Remark: "student was sick"}, trainerActor)
	require.NoError(t, err)

	_, err = f.svc.Decide(ctx, review.ID, models.ReviewApproved, trainerActor)
	assert.True(t, errors.Is(err, appErrors.ErrForbidden))

	_, err = f.svc.Decide(ctx, review.ID, models.ReviewPending, managerActor)
	assert.True(t, errors.Is(err, appErrors.ErrInvalidValue))

	decided, err := f.svc.Decide(ctx, review.ID, models.ReviewApproved, managerActor)
	require.NoError(t, err)
	assert.Equal(t, models.ReviewApproved, decided.Status)
	require.NotNil(t, decided.DecidedBy)
	assert.Equal(t, "manager-1", *decided.DecidedBy)
	require.NotNil(t, decided.DecidedAt)
	assert.Equal(t, f.clock.now, *decided.DecidedAt)

	_, err = f.svc.Decide(ctx, review.ID, models.ReviewRejected, adminActor)
	assert.True(t, errors.Is(err, appErrors.ErrInvalidState))

	_, err = f.svc.Decide(ctx, "missing", models.ReviewRejected, adminActor)
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))
}

func TestReviewListScoping(t *testing.T) {
	ctx := context.Background()
	f := newReviewFixture(t)
	_, err := f.svc.Submit(ctx, f.record.ID, dto.ReviewRequest{Remark: "late bus"}, trainerActor)
	require.NoError(t, err)

	mine, err := f.svc.List(ctx, models.ReviewFilter{TrainerID: "t-2"}, trainerActor)
	require.NoError(t, err)
	assert.Len(t, mine, 1)

	other, err := f.svc.List(ctx, models.ReviewFilter{}, models.Actor{UserID: "t-2", Role: models.RoleTrainer})
	require.NoError(t, err)
	assert.Empty(t, other)

	pending, err := f.svc.List(ctx, models.ReviewFilter{Status: models.ReviewPending, AttendanceID: f.record.ID}, adminActor)
	require.NoError(t, err)
	assert.Len(t, pending, 1)

	_, err = f.svc.List(ctx, models.ReviewFilter{}, studentActor)
	assert.True(t, errors.Is(err, appErrors.ErrForbidden))
}
