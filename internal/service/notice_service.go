package service

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/lms-admin-api/internal/dto"
	"github.com/noah-isme/lms-admin-api/internal/models"
	appErrors "github.com/noah-isme/lms-admin-api/pkg/errors"
)

type noticeStore interface {
	Create(ctx context.Context, n *models.Notice) error
	FindByID(ctx context.Context, id string) (*models.Notice, error)
	Update(ctx context.Context, n *models.Notice) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter models.NoticeFilter) ([]models.Notice, error)
}

// NoticeService publishes notices and lists them per audience.
type NoticeService struct {
	repo      noticeStore
	validator *validator.Validate
	logger    *zap.Logger
}

// NewNoticeService constructs the service.
func NewNoticeService(repo noticeStore, validate *validator.Validate, logger *zap.Logger) *NoticeService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NoticeService{repo: repo, validator: validate, logger: logger}
}

// Create publishes a notice authored by the actor.
func (s *NoticeService) Create(ctx context.Context, req dto.NoticeRequest, actor models.Actor) (*models.Notice, error) {
	if err := Authorize(actor, CapPublishNotice, Resource{}); err != nil {
		return nil, err
	}
	if err := s.validate(req); err != nil {
		return nil, err
	}
	notice := &models.Notice{
		Title:    req.Title,
		Content:  req.Content,
		Audience: req.Audience,
		AuthorID: actor.UserID,
	}
	if err := s.repo.Create(ctx, notice); err != nil {
		return nil, storeError(err, "notice not found", "create notice")
	}
	s.logger.Info("notice published", zap.String("notice_id", notice.ID), zap.String("audience", string(notice.Audience)))
	return notice, nil
}

// Update replaces the title, content and audience of a notice.
func (s *NoticeService) Update(ctx context.Context, id string, req dto.NoticeRequest, actor models.Actor) (*models.Notice, error) {
	if err := Authorize(actor, CapPublishNotice, Resource{}); err != nil {
		return nil, err
	}
	if err := s.validate(req); err != nil {
		return nil, err
	}
	notice, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "notice not found", "load notice")
	}
	notice.Title, notice.Content, notice.Audience = req.Title, req.Content, req.Audience
	if err := s.repo.Update(ctx, notice); err != nil {
		return nil, storeError(err, "notice not found", "update notice")
	}
	return notice, nil
}

// Delete removes a notice.
func (s *NoticeService) Delete(ctx context.Context, id string, actor models.Actor) error {
	if err := Authorize(actor, CapPublishNotice, Resource{}); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return storeError(err, "notice not found", "delete notice")
	}
	return nil
}

// List returns the notices addressed to the actor's role, newest first.
func (s *NoticeService) List(ctx context.Context, limit int, actor models.Actor) ([]models.Notice, error) {
	if err := Authorize(actor, CapReadNotices, Resource{}); err != nil {
		return nil, err
	}
	items, err := s.repo.List(ctx, models.NoticeFilter{Audiences: models.AudiencesFor(actor.Role), Limit: limit})
	if err != nil {
		return nil, storeError(err, "notice not found", "list notices")
	}
	return items, nil
}

func (s *NoticeService) validate(req dto.NoticeRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid notice payload")
	}
	if !req.Audience.Valid() {
		return appErrors.Clone(appErrors.ErrInvalidValue, fmt.Sprintf("unknown audience %q", req.Audience))
	}
	return nil
}
