package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/lms-admin-api/internal/dto"
	"github.com/noah-isme/lms-admin-api/internal/models"
	appErrors "github.com/noah-isme/lms-admin-api/pkg/errors"
)

type enrollmentStore interface {
	Create(ctx context.Context, e *models.Enrollment) error
	FindByID(ctx context.Context, id string) (*models.Enrollment, error)
}

type courseReader interface {
	FindByID(ctx context.Context, id string) (*models.Course, error)
}

// EnrollmentService manages student enrollments.
type EnrollmentService struct {
	repo      enrollmentStore
	courses   courseReader
	validator *validator.Validate
	logger    *zap.Logger
}

// NewEnrollmentService constructs the service.
func NewEnrollmentService(repo enrollmentStore, courses courseReader, validate *validator.Validate, logger *zap.Logger) *EnrollmentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EnrollmentService{repo: repo, courses: courses, validator: validate, logger: logger}
}

// Create enrols a student. Group courses never carry a per-student trainer.
func (s *EnrollmentService) Create(ctx context.Context, req dto.CreateEnrollmentRequest, actor models.Actor) (*models.Enrollment, error) {
	if err := Authorize(actor, CapManageEnrollments, Resource{}); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid enrollment payload")
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

	course, err := s.courses.FindByID(ctx, req.CourseID)
	if err != nil {
		return nil, storeError(err, "course not found", "load course")
	}

	enrollment := &models.Enrollment{
		StudentID: req.StudentID,
		CourseID:  req.CourseID,
		TrainerID: req.TrainerID,
		StartDate: start,
		EndDate:   end,
		ClassTime: course.ClassTime,
	}
	if req.ClassTime != nil {
		tod, err := models.ParseTimeOfDay(*req.ClassTime)
		if err != nil {
			return nil, appErrors.Clone(appErrors.ErrValidation, err.Error())
		}
		enrollment.ClassTime = &tod
	}
	if course.IsGroupClass {
		enrollment.TrainerID = nil
	}

	if err := s.repo.Create(ctx, enrollment); err != nil {
		return nil, storeError(err, "enrollment not found", "create enrollment")
	}
	return enrollment, nil
}

// Get returns an enrollment visible to staff, its student or its trainer.
func (s *EnrollmentService) Get(ctx context.Context, id string, actor models.Actor) (*models.Enrollment, error) {
	enrollment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "enrollment not found", "load enrollment")
	}
	if err := Authorize(actor, CapViewEnrollment, Resource{OwnerID: &enrollment.StudentID, TrainerID: enrollment.TrainerID}); err != nil {
		return nil, err
	}
	return enrollment, nil
}
