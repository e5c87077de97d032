package service

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/lms-admin-api/internal/dto"
	"github.com/noah-isme/lms-admin-api/internal/models"
	appErrors "github.com/noah-isme/lms-admin-api/pkg/errors"
)

type materialStore interface {
	Create(ctx context.Context, m *models.StudyMaterial) error
	FindByID(ctx context.Context, id string) (*models.StudyMaterial, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter models.MaterialFilter) ([]models.StudyMaterial, error)
}

// MaterialService shares study materials with a course or one enrollment.
// Materials expire DefaultMaterialLifetime after sharing unless given an expiry.
type MaterialService struct {
	materials   materialStore
	courses     courseReader
	enrollments enrollmentReader
	validator   *validator.Validate
	logger      *zap.Logger
	now         func() time.Time
}

// NewMaterialService constructs the service; now defaults to time.Now.
func NewMaterialService(materials materialStore, courses courseReader, enrollments enrollmentReader, validate *validator.Validate, logger *zap.Logger, now func() time.Time) *MaterialService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if now == nil {
		now = time.Now
	}
	return &MaterialService{materials: materials, courses: courses, enrollments: enrollments, validator: validate, logger: logger, now: now}
}

// Share stores a material for a course, an enrollment, or both.
func (s *MaterialService) Share(ctx context.Context, req dto.CreateMaterialRequest, actor models.Actor) (*models.StudyMaterial, error) {
	if err := Authorize(actor, CapShareMaterial, Resource{}); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid material payload")
	}
	if empty(req.CourseID) && empty(req.StudentCourseID) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "course_id or student_course_id is required")
	}
	if !empty(req.CourseID) {
		if _, err := s.courses.FindByID(ctx, *req.CourseID); err != nil {
			return nil, storeError(err, "course not found", "load course")
		}
	}
	if !empty(req.StudentCourseID) {
		if _, err := s.enrollments.FindByID(ctx, *req.StudentCourseID); err != nil {
			return nil, storeError(err, "enrollment not found", "load enrollment")
		}
	}

	now := s.now().UTC()
	expires := now.Add(models.DefaultMaterialLifetime)
	if req.ExpiresAt != "" {
		parsed, err := time.Parse(time.RFC3339, req.ExpiresAt)
		if err != nil {
			return nil, appErrors.Clone(appErrors.ErrValidation, "expires_at must be RFC 3339")
		}
		if !parsed.After(now) {
			return nil, appErrors.Clone(appErrors.ErrInvalidRange, "expires_at must be in the future")
		}
		expires = parsed.UTC()
	}

	creator := actor.UserID
	material := &models.StudyMaterial{
		Topic:           req.Topic,
		CourseID:        nonEmpty(req.CourseID),
		StudentCourseID: nonEmpty(req.StudentCourseID),
		CreatedBy:       &creator,
		CreatedAt:       now,
		ExpiresAt:       expires,
	}
	if err := s.materials.Create(ctx, material); err != nil {
		return nil, storeError(err, "study material not found", "create study material")
	}
	return material, nil
}

// List returns materials for a course or an enrollment. Expired materials
// are hidden unless a staff member asks for them.
func (s *MaterialService) List(ctx context.Context, filter models.MaterialFilter, includeExpired bool, actor models.Actor) ([]models.StudyMaterial, error) {
	switch {
	case filter.StudentCourseID != "":
		enrollment, err := s.enrollments.FindByID(ctx, filter.StudentCourseID)
		if err != nil {
			return nil, storeError(err, "enrollment not found", "load enrollment")
		}
		if err := Authorize(actor, CapViewEnrollment, Resource{OwnerID: &enrollment.StudentID, TrainerID: enrollment.TrainerID}); err != nil {
			return nil, err
		}
	case filter.CourseID != "":
		if err := Authorize(actor, CapReadMaterials, Resource{}); err != nil {
			return nil, err
		}
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, "course_id or student_course_id is required")
	}

	if !includeExpired || !actor.Role.Staff() {
		now := s.now().UTC()
		filter.ActiveAt = &now
	}
	items, err := s.materials.List(ctx, filter)
	if err != nil {
		return nil, storeError(err, "study material not found", "list study materials")
	}
	return items, nil
}

// Delete removes a material; its creator and staff may do so.
func (s *MaterialService) Delete(ctx context.Context, id string, actor models.Actor) error {
	material, err := s.materials.FindByID(ctx, id)
	if err != nil {
		return storeError(err, "study material not found", "load study material")
	}
	if err := Authorize(actor, CapRemoveMaterial, Resource{OwnerID: material.CreatedBy}); err != nil {
		return err
	}
	if err := s.materials.Delete(ctx, id); err != nil {
		return storeError(err, "study material not found", "delete study material")
	}
	return nil
}

func empty(s *string) bool {
	return s == nil || *s == ""
}

func nonEmpty(s *string) *string {
	if empty(s) {
		return nil
	}
	v := *s
	return &v
}
