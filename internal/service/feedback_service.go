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

type feedbackStore interface {
	Create(ctx context.Context, f *models.CourseFeedback) error
	FindByID(ctx context.Context, id string) (*models.CourseFeedback, error)
	Respond(ctx context.Context, id string, from models.TicketStatus, resp models.FeedbackResponse) (*models.CourseFeedback, error)
	List(ctx context.Context, filter models.FeedbackFilter) ([]models.CourseFeedback, error)
}

// FeedbackService runs student feedback tickets from PENDING through
// IN_PROGRESS to RESOLVED. Tickets only move forward.
type FeedbackService struct {
	repo      feedbackStore
	courses   courseReader
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewFeedbackService constructs the service; now defaults to time.Now.
func NewFeedbackService(repo feedbackStore, courses courseReader, validate *validator.Validate, logger *zap.Logger, now func() time.Time) *FeedbackService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if now == nil {
		now = time.Now
	}
	return &FeedbackService{repo: repo, courses: courses, validator: validate, logger: logger, now: now}
}

// Submit files a pending ticket from the student.
func (s *FeedbackService) Submit(ctx context.Context, req dto.CreateFeedbackRequest, actor models.Actor) (*models.CourseFeedback, error) {
	if err := Authorize(actor, CapSubmitFeedback, Resource{}); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid feedback payload")
	}
	if !req.Type.Valid() {
		return nil, appErrors.Clone(appErrors.ErrInvalidValue, fmt.Sprintf("unknown feedback type %q", req.Type))
	}
	if _, err := s.courses.FindByID(ctx, req.CourseID); err != nil {
		return nil, storeError(err, "course not found", "load course")
	}

	ticket := &models.CourseFeedback{
		StudentID: actor.UserID,
		CourseID:  req.CourseID,
		Type:      req.Type,
		Topic:     req.Topic,
		Content:   req.Content,
		Status:    models.TicketPending,
	}
	if err := s.repo.Create(ctx, ticket); err != nil {
		return nil, storeError(err, "feedback not found", "create feedback")
	}
	return ticket, nil
}

// Respond moves a ticket forward and records who answered it and when.
// Remarks left nil keep the previous remarks.
func (s *FeedbackService) Respond(ctx context.Context, id string, req dto.RespondFeedbackRequest, actor models.Actor) (*models.CourseFeedback, error) {
	if err := Authorize(actor, CapRespondFeedback, Resource{}); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid feedback response")
	}
	if !req.Status.Valid() {
		return nil, appErrors.Clone(appErrors.ErrInvalidValue, fmt.Sprintf("unknown feedback status %q", req.Status))
	}

	current, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "feedback not found", "load feedback")
	}
	if !current.Status.CanMoveTo(req.Status) {
		return nil, appErrors.Clone(appErrors.ErrInvalidState, fmt.Sprintf("feedback cannot move from %s to %s", current.Status, req.Status))
	}

	updated, err := s.repo.Respond(ctx, id, current.Status, models.FeedbackResponse{
		Status:       req.Status,
		AdminRemarks: req.AdminRemarks,
		RespondedBy:  actor.UserID,
		RespondedAt:  s.now().UTC(),
	})
	if err != nil {
		return nil, storeError(err, "feedback not found", "respond to feedback")
	}
	s.logger.Info("feedback updated",
		zap.String("feedback_id", id),
		zap.String("from", string(current.Status)),
		zap.String("to", string(updated.Status)),
		zap.String("actor_id", actor.UserID))
	return updated, nil
}

// List returns tickets; students only see their own.
func (s *FeedbackService) List(ctx context.Context, filter models.FeedbackFilter, actor models.Actor) ([]models.CourseFeedback, error) {
	if !actor.Role.Staff() {
		filter.StudentID = actor.UserID
	}
	if err := Authorize(actor, CapViewFeedback, Resource{OwnerID: &filter.StudentID}); err != nil {
		return nil, err
	}
	items, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, storeError(err, "feedback not found", "list feedback")
	}
	return items, nil
}
