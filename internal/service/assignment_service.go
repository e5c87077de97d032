package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/lms-admin-api/internal/dto"
	"github.com/noah-isme/lms-admin-api/internal/models"
	"github.com/noah-isme/lms-admin-api/internal/repository"
	appErrors "github.com/noah-isme/lms-admin-api/pkg/errors"
)

type assignmentStore interface {
	ListByTrainer(ctx context.Context, trainerID string) ([]models.TrainerAssignment, error)
	FindByID(ctx context.Context, id string) (*models.TrainerAssignment, error)
	Delete(ctx context.Context, id string) error
	WithinTx(ctx context.Context, fn func(repository.AssignmentTx) error) error
}

type courseRoster interface {
	FindByID(ctx context.Context, id string) (*models.Course, error)
	AddTrainer(ctx context.Context, courseID, trainerID string) (bool, error)
}

// AssignmentService books trainers onto courses without double-booking them.
type AssignmentService struct {
	repo      assignmentStore
	courses   courseRoster
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAssignmentService constructs the service.
func NewAssignmentService(repo assignmentStore, courses courseRoster, validate *validator.Validate, logger *zap.Logger) *AssignmentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AssignmentService{repo: repo, courses: courses, validator: validate, logger: logger}
}

// Create validates and stores a new assignment.
func (s *AssignmentService) Create(ctx context.Context, req dto.AssignmentRequest, actor models.Actor) (*models.TrainerAssignment, error) {
	if err := Authorize(actor, CapManageAssignments, Resource{}); err != nil {
		return nil, err
	}
	candidate, course, err := s.prepare(ctx, req)
	if err != nil {
		return nil, err
	}
	err = s.repo.WithinTx(ctx, func(tx repository.AssignmentTx) error {
		if err := checkWindow(ctx, tx, *candidate); err != nil {
			return err
		}
		return tx.Create(ctx, candidate)
	})
	if err != nil {
		return nil, storeError(err, "assignment not found", "create assignment")
	}
	s.syncRoster(ctx, course, candidate.TrainerID)
	return candidate, nil
}

// Update revalidates an assignment against everything but itself.
func (s *AssignmentService) Update(ctx context.Context, id string, req dto.AssignmentRequest, actor models.Actor) (*models.TrainerAssignment, error) {
	if err := Authorize(actor, CapManageAssignments, Resource{}); err != nil {
		return nil, err
	}
	current, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "assignment not found", "load assignment")
	}
	candidate, course, err := s.prepare(ctx, req)
	if err != nil {
		return nil, err
	}
	candidate.ID = current.ID
	candidate.CreatedAt = current.CreatedAt
	err = s.repo.WithinTx(ctx, func(tx repository.AssignmentTx) error {
		if err := checkWindow(ctx, tx, *candidate); err != nil {
			return err
		}
		return tx.Update(ctx, candidate)
	})
	if err != nil {
		return nil, storeError(err, "assignment not found", "update assignment")
	}
	s.syncRoster(ctx, course, candidate.TrainerID)
	return candidate, nil
}

// Delete removes an assignment.
func (s *AssignmentService) Delete(ctx context.Context, id string, actor models.Actor) error {
	if err := Authorize(actor, CapManageAssignments, Resource{}); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return storeError(err, "assignment not found", "delete assignment")
	}
	return nil
}

// ListByTrainer returns a trainer's schedule; trainers may read their own.
func (s *AssignmentService) ListByTrainer(ctx context.Context, trainerID string, actor models.Actor) ([]models.TrainerAssignment, error) {
	if err := Authorize(actor, CapViewAssignments, Resource{TrainerID: &trainerID}); err != nil {
		return nil, err
	}
	items, err := s.repo.ListByTrainer(ctx, trainerID)
	if err != nil {
		return nil, storeError(err, "trainer not found", "list assignments")
	}
	return items, nil
}

func (s *AssignmentService) prepare(ctx context.Context, req dto.AssignmentRequest) (*models.TrainerAssignment, *models.Course, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid assignment payload")
	}
	startDate, err := dto.ParseDate(req.StartDate)
	if err != nil {
		return nil, nil, appErrors.Clone(appErrors.ErrValidation, err.Error())
	}
	endDate, err := dto.ParseDate(req.EndDate)
	if err != nil {
		return nil, nil, appErrors.Clone(appErrors.ErrValidation, err.Error())
	}
	startTime, err := models.ParseTimeOfDay(req.StartTime)
	if err != nil {
		return nil, nil, appErrors.Clone(appErrors.ErrValidation, err.Error())
	}
	endTime, err := models.ParseTimeOfDay(req.EndTime)
	if err != nil {
		return nil, nil, appErrors.Clone(appErrors.ErrValidation, err.Error())
	}

	course, err := s.courses.FindByID(ctx, req.CourseID)
	if err != nil {
		return nil, nil, storeError(err, "course not found", "load course")
	}

	candidate := &models.TrainerAssignment{
		TrainerID:       req.TrainerID,
		CourseID:        req.CourseID,
		StudentCourseID: req.StudentCourseID,
		StartDate:       startDate,
		EndDate:         endDate,
		StartTime:       startTime,
		EndTime:         endTime,
		DurationMinutes: req.DurationMinutes,
	}
	if course.IsGroupClass {
		candidate.StudentCourseID = nil
	}
	if candidate.DurationMinutes == 0 && endTime > startTime {
		candidate.DurationMinutes = endTime.Minutes() - startTime.Minutes()
	}
	return candidate, course, nil
}

// checkWindow validates against the trainer's schedule while holding its lock.
func checkWindow(ctx context.Context, tx repository.AssignmentTx, candidate models.TrainerAssignment) error {
	existing, err := tx.LockTrainer(ctx, candidate.TrainerID)
	if err != nil {
		return err
	}
	return ValidateAssignmentWindow(candidate, existing)
}

// syncRoster adds the trainer to a group course's roster; failures are logged only.
func (s *AssignmentService) syncRoster(ctx context.Context, course *models.Course, trainerID string) {
	if course == nil || !course.IsGroupClass {
		return
	}
	added, err := s.courses.AddTrainer(ctx, course.ID, trainerID)
	if err != nil {
		s.logger.Warn("failed to add trainer to course roster", zap.String("course_id", course.ID), zap.String("trainer_id", trainerID), zap.Error(err))
		return
	}
	if added {
		s.logger.Info("trainer added to group course", zap.String("course_id", course.ID), zap.String("trainer_id", trainerID))
	}
}
