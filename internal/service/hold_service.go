package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/lms-admin-api/internal/dto"
	"github.com/noah-isme/lms-admin-api/internal/models"
	"github.com/noah-isme/lms-admin-api/internal/repository"
	appErrors "github.com/noah-isme/lms-admin-api/pkg/errors"
)

type holdStore interface {
	Create(ctx context.Context, h *models.CourseHold) error
	ListPending(ctx context.Context, filter models.HoldFilter) ([]models.CourseHold, error)
	History(ctx context.Context, studentID string) ([]models.CourseHoldHistory, error)
	WithinTx(ctx context.Context, fn func(repository.HoldTx) error) error
}

type enrollmentReader interface {
	FindByID(ctx context.Context, id string) (*models.Enrollment, error)
}

type holdMetrics interface {
	RecordHoldDecision(status models.HoldStatus, applied bool)
}

// HoldService runs the course hold workflow. A decided hold is archived to
// history and removed, so approving or rejecting it again is a no-op.
type HoldService struct {
	holds       holdStore
	enrollments enrollmentReader
	metrics     holdMetrics
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewHoldService constructs the service; metrics may be nil.
func NewHoldService(holds holdStore, enrollments enrollmentReader, metrics holdMetrics, validate *validator.Validate, logger *zap.Logger) *HoldService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HoldService{holds: holds, enrollments: enrollments, metrics: metrics, validator: validate, logger: logger}
}

// Request files a pending hold for an enrollment.
func (s *HoldService) Request(ctx context.Context, req dto.CreateHoldRequest, actor models.Actor) (*models.CourseHold, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid hold payload")
	}
	enrollment, err := s.enrollments.FindByID(ctx, req.StudentCourseID)
	if err != nil {
		return nil, storeError(err, "enrollment not found", "load enrollment")
	}
	if err := Authorize(actor, CapRequestHold, Resource{OwnerID: &enrollment.StudentID}); err != nil {
		return nil, err
	}

	start, err := dto.ParseDate(req.StartDate)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, err.Error())
	}
	end, err := dto.ParseDate(req.EndDate)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, err.Error())
	}
	if end.Before(start) {
		return nil, appErrors.Clone(appErrors.ErrInvalidRange, "start_date must not be after end_date")
	}

	requester := actor.UserID
	hold := &models.CourseHold{
		StudentCourseID: enrollment.ID,
		StartDate:       start,
		EndDate:         end,
		Reason:          req.Reason,
		Status:          models.HoldStatusPending,
		RequestedBy:     &requester,
	}
	if err := s.holds.Create(ctx, hold); err != nil {
		return nil, storeError(err, "hold not found", "create hold")
	}
	return hold, nil
}

// Approve extends the enrollment by the hold length and drops its trainer.
func (s *HoldService) Approve(ctx context.Context, holdID string, approver models.Actor) (*dto.HoldDecisionResult, error) {
	return s.decide(ctx, holdID, models.HoldStatusApproved, approver)
}

// Reject archives the hold without touching the enrollment.
func (s *HoldService) Reject(ctx context.Context, holdID string, rejector models.Actor) (*dto.HoldDecisionResult, error) {
	return s.decide(ctx, holdID, models.HoldStatusRejected, rejector)
}

func (s *HoldService) decide(ctx context.Context, holdID string, status models.HoldStatus, actor models.Actor) (*dto.HoldDecisionResult, error) {
	if err := Authorize(actor, CapDecideHold, Resource{}); err != nil {
		return nil, err
	}

	var result *dto.HoldDecisionResult
	err := s.holds.WithinTx(ctx, func(tx repository.HoldTx) error {
		result = &dto.HoldDecisionResult{HoldID: holdID}

		hold, err := tx.LockHold(ctx, holdID)
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		if err != nil {
			return err
		}
		if hold.Status != models.HoldStatusPending || hold.Processed {
			return nil
		}

		enrollment, err := tx.LockEnrollment(ctx, hold.StudentCourseID)
		if err != nil {
			return err
		}

		history, days := applyHoldDecision(hold, enrollment, status, actor.UserID)
		if status == models.HoldStatusApproved {
			if err := tx.UpdateEnrollment(ctx, enrollment); err != nil {
				return err
			}
			result.Enrollment = enrollment
			result.HoldDays = days
		}
		if err := tx.ArchiveHold(ctx, history); err != nil {
			return err
		}
		if err := tx.DeleteHold(ctx, hold.ID); err != nil {
			return err
		}

		result.Applied = true
		result.Status = status
		result.History = history
		return nil
	})
	if err != nil {
		return nil, storeError(err, "hold not found", "process hold")
	}

	if s.metrics != nil {
		s.metrics.RecordHoldDecision(status, result.Applied)
	}
	if result.Applied {
		s.logger.Info("course hold processed",
			zap.String("hold_id", holdID),
			zap.String("status", string(status)),
			zap.String("actor_id", actor.UserID),
			zap.Int("hold_days", result.HoldDays))
	} else {
		s.logger.Debug("course hold already processed", zap.String("hold_id", holdID))
	}
	return result, nil
}

// applyHoldDecision mutates hold and enrollment in memory and returns the
// history row plus the inclusive number of days added on approval.
func applyHoldDecision(hold *models.CourseHold, enrollment *models.Enrollment, status models.HoldStatus, deciderID string) (*models.CourseHoldHistory, int) {
	decider := deciderID
	hold.Status = status
	hold.ApprovedBy = &decider
	hold.Processed = true

	days := 0
	if status == models.HoldStatusApproved {
		days = hold.Days()
		enrollment.EndDate = enrollment.EndDate.AddDate(0, 0, days)
		enrollment.TrainerID = nil
	}

	enrollmentID := enrollment.ID
	return &models.CourseHoldHistory{
		StudentID:       enrollment.StudentID,
		StudentCourseID: &enrollmentID,
		StartDate:       hold.StartDate,
		EndDate:         hold.EndDate,
		Reason:          hold.Reason,
		Status:          status,
		DecidedBy:       &decider,
	}, days
}

// ListPending lists open holds. Students only see their own.
func (s *HoldService) ListPending(ctx context.Context, filter models.HoldFilter, actor models.Actor) ([]models.CourseHold, error) {
	if !actor.Role.Staff() {
		filter.StudentID = actor.UserID
	}
	if err := Authorize(actor, CapViewHolds, Resource{OwnerID: &filter.StudentID}); err != nil {
		return nil, err
	}
	items, err := s.holds.ListPending(ctx, filter)
	if err != nil {
		return nil, storeError(err, "hold not found", "list holds")
	}
	return items, nil
}

// History returns the archived decisions for a student, newest first.
func (s *HoldService) History(ctx context.Context, studentID string, actor models.Actor) ([]models.CourseHoldHistory, error) {
	if err := Authorize(actor, CapViewHolds, Resource{OwnerID: &studentID}); err != nil {
		return nil, err
	}
	items, err := s.holds.History(ctx, studentID)
	if err != nil {
		return nil, storeError(err, "student not found", "list hold history")
	}
	return items, nil
}
