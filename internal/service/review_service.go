package service

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/lms-admin-api/internal/dto"
	"github.com/noah-isme/lms-admin-api/internal/models"
	appErrors "github.com/noah-isme/lms-admin-api/pkg/errors"
)

type reviewStore interface {
	Create(ctx context.Context, rv *models.AttendanceReview) error
	FindByID(ctx context.Context, id string) (*models.AttendanceReview, error)
	Decide(ctx context.Context, id string, status models.ReviewStatus, decidedBy string, at time.Time) (*models.AttendanceReview, error)
	List(ctx context.Context, filter models.ReviewFilter) ([]models.AttendanceReview, error)
}

type attendanceReader interface {
	FindByID(ctx context.Context, id string) (*models.AttendanceRecord, error)
}

// ReviewService lets the trainer of a class file a remark on its attendance
// record for staff to approve or reject once.
type ReviewService struct {
	reviews    reviewStore
	attendance attendanceReader
	validator  *validator.Validate
	logger     *zap.Logger
	now        func() time.Time
}

// NewReviewService constructs the service; now defaults to time.Now.
func NewReviewService(reviews reviewStore, attendance attendanceReader, validate *validator.Validate, logger *zap.Logger, now func() time.Time) *ReviewService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if now == nil {
		now = time.Now
	}
	return &ReviewService{reviews: reviews, attendance: attendance, validator: validate, logger: logger, now: now}
}

// Submit files a pending review on an attendance record.
func (s *ReviewService) Submit(ctx context.Context, attendanceID string, req dto.ReviewRequest, actor models.Actor) (*models.AttendanceReview, error) {
	rec, err := s.attendance.FindByID(ctx, attendanceID)
	if err != nil {
		return nil, storeError(err, "attendance record not found", "load attendance record")
	}
	if err := Authorize(actor, CapReviewAttendance, Resource{TrainerID: rec.TrainerID}); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid review payload")
	}

	review := &models.AttendanceReview{
		AttendanceID: rec.ID,
		TrainerID:    actor.UserID,
		Remark:       req.Remark,
		Status:       models.ReviewPending,
		CreatedAt:    s.now().UTC(),
	}
	if err := s.reviews.Create(ctx, review); err != nil {
		return nil, storeError(err, "review not found", "create review")
	}
	return review, nil
}

// Decide approves or rejects a pending review.
func (s *ReviewService) Decide(ctx context.Context, id string, status models.ReviewStatus, actor models.Actor) (*models.AttendanceReview, error) {
	if err := Authorize(actor, CapDecideReview, Resource{}); err != nil {
		return nil, err
	}
	if !status.Decision() {
		return nil, appErrors.Clone(appErrors.ErrInvalidValue, fmt.Sprintf("review status must be APPROVED or REJECTED, got %q", status))
	}
	current, err := s.reviews.FindByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "review not found", "load review")
	}
	if current.Status != models.ReviewPending {
		return nil, appErrors.Clone(appErrors.ErrInvalidState, fmt.Sprintf("review already %s", current.Status))
	}

	decided, err := s.reviews.Decide(ctx, id, status, actor.UserID, s.now().UTC())
	if err != nil {
		return nil, storeError(err, "review not found", "decide review")
	}
	s.logger.Info("attendance review decided",
		zap.String("review_id", id),
		zap.String("status", string(status)),
		zap.String("actor_id", actor.UserID))
	return decided, nil
}

// List returns reviews; trainers only see their own.
func (s *ReviewService) List(ctx context.Context, filter models.ReviewFilter, actor models.Actor) ([]models.AttendanceReview, error) {
	if !actor.Role.Staff() {
		filter.TrainerID = actor.UserID
	}
	if err := Authorize(actor, CapViewReviews, Resource{TrainerID: &filter.TrainerID}); err != nil {
		return nil, err
	}
	items, err := s.reviews.List(ctx, filter)
	if err != nil {
		return nil, storeError(err, "review not found", "list reviews")
	}
	return items, nil
}
