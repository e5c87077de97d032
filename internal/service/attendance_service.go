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

const (
	// DefaultAttendanceEditWindow is how long after marking a status may still change.
	DefaultAttendanceEditWindow = 1500 * time.Minute
	absenceStreak               = 3
)

type attendanceStore interface {
	Create(ctx context.Context, rec *models.AttendanceRecord) error
	FindByID(ctx context.Context, id string) (*models.AttendanceRecord, error)
	UpdateClassContent(ctx context.Context, id, content string) (*models.AttendanceRecord, error)
	UpdateFeedback(ctx context.Context, id string, feedback models.StudentFeedback) (*models.AttendanceRecord, error)
	UpdateStatus(ctx context.Context, id string, status models.AttendanceStatus) (*models.AttendanceRecord, models.AttendanceStatus, error)
	RecentByStudent(ctx context.Context, studentID string, n int) ([]models.AttendanceRecord, error)
	List(ctx context.Context, filter models.AttendanceFilter) ([]models.AttendanceRecord, error)
}

type alertNotifier interface {
	Notify(ctx context.Context, event models.NotificationEvent)
}

type alertMetrics interface {
	RecordAlert(kind models.NotificationKind)
}

// AttendanceServiceOption configures the service.
type AttendanceServiceOption func(*AttendanceService)

// WithAttendanceClock overrides the time source.
func WithAttendanceClock(now func() time.Time) AttendanceServiceOption {
	return func(s *AttendanceService) {
		if now != nil {
			s.now = now
		}
	}
}

// WithEditWindow overrides DefaultAttendanceEditWindow.
func WithEditWindow(window time.Duration) AttendanceServiceOption {
	return func(s *AttendanceService) {
		if window > 0 {
			s.window = window
		}
	}
}

// WithAlertMetrics records emitted alerts.
func WithAlertMetrics(m alertMetrics) AttendanceServiceOption {
	return func(s *AttendanceService) {
		s.metrics = m
	}
}

// AttendanceService enforces who may edit attendance and when, and raises
// absence alerts after status changes are persisted.
type AttendanceService struct {
	repo      attendanceStore
	notifier  alertNotifier
	metrics   alertMetrics
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
	window    time.Duration
}

// NewAttendanceService constructs the service.
func NewAttendanceService(repo attendanceStore, notifier alertNotifier, validate *validator.Validate, logger *zap.Logger, opts ...AttendanceServiceOption) *AttendanceService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &AttendanceService{
		repo:      repo,
		notifier:  notifier,
		validator: validate,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
		window:    DefaultAttendanceEditWindow,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Mark creates a record stamped with the current time.
func (s *AttendanceService) Mark(ctx context.Context, req dto.MarkAttendanceRequest, actor models.Actor) (*models.AttendanceRecord, error) {
	if err := Authorize(actor, CapMarkAttendance, Resource{}); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid attendance payload")
	}
	if !req.Status.Valid() {
		return nil, appErrors.Clone(appErrors.ErrInvalidValue, fmt.Sprintf("unknown attendance status %q", req.Status))
	}

	trainerID := req.TrainerID
	if trainerID == nil && actor.Role == models.RoleTrainer {
		id := actor.UserID
		trainerID = &id
	}
	rec := &models.AttendanceRecord{
		StudentID:       req.StudentID,
		TrainerID:       trainerID,
		MarkedAt:        s.now(),
		Status:          req.Status,
		ClassContent:    req.ClassContent,
		StudentFeedback: models.FeedbackNoAction,
	}
	if err := s.repo.Create(ctx, rec); err != nil {
		return nil, storeError(err, "attendance record not found", "create attendance record")
	}
	s.afterStatusChange(ctx, rec, "")
	return rec, nil
}

// SetClassContent lets the record's trainer write the class notes.
func (s *AttendanceService) SetClassContent(ctx context.Context, id, content string, actor models.Actor) (*models.AttendanceRecord, error) {
	rec, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := Authorize(actor, CapSetClassContent, Resource{TrainerID: rec.TrainerID}); err != nil {
		return nil, err
	}
	updated, err := s.repo.UpdateClassContent(ctx, rec.ID, content)
	if err != nil {
		return nil, storeError(err, "attendance record not found", "update class content")
	}
	return updated, nil
}

// SetStudentFeedback records the student's verdict on the class.
func (s *AttendanceService) SetStudentFeedback(ctx context.Context, id string, feedback models.StudentFeedback, actor models.Actor) (*models.AttendanceRecord, error) {
	rec, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := Authorize(actor, CapSetFeedback, Resource{OwnerID: &rec.StudentID}); err != nil {
		return nil, err
	}
	if !feedback.Valid() {
		return nil, appErrors.Clone(appErrors.ErrInvalidValue, fmt.Sprintf("unknown feedback %q", feedback))
	}
	updated, err := s.repo.UpdateFeedback(ctx, rec.ID, feedback)
	if err != nil {
		return nil, storeError(err, "attendance record not found", "update feedback")
	}
	return updated, nil
}

// ChangeStatus edits the status while the edit window is open. The window is inclusive.
func (s *AttendanceService) ChangeStatus(ctx context.Context, id string, status models.AttendanceStatus, actor models.Actor) (*models.AttendanceRecord, error) {
	rec, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := Authorize(actor, CapChangeAttendance, Resource{OwnerID: &rec.StudentID, TrainerID: rec.TrainerID}); err != nil {
		return nil, err
	}
	if !s.canChange(rec) {
		return nil, appErrors.Clone(appErrors.ErrWindowExpired, fmt.Sprintf("status can only be changed within %s of marking", s.window))
	}
	if !status.Valid() {
		return nil, appErrors.Clone(appErrors.ErrInvalidValue, fmt.Sprintf("unknown attendance status %q", status))
	}

	updated, previous, err := s.repo.UpdateStatus(ctx, rec.ID, status)
	if err != nil {
		return nil, storeError(err, "attendance record not found", "update attendance status")
	}
	s.afterStatusChange(ctx, updated, previous)
	return updated, nil
}

// List returns records visible to the actor with their edit flag.
func (s *AttendanceService) List(ctx context.Context, filter models.AttendanceFilter, actor models.Actor) ([]models.AttendanceView, error) {
	switch {
	case actor.Role.Staff():
	case actor.Role == models.RoleTrainer:
		filter.TrainerID = actor.UserID
	default:
		filter.StudentID = actor.UserID
	}
	if err := Authorize(actor, CapViewAttendance, Resource{OwnerID: &filter.StudentID, TrainerID: &filter.TrainerID}); err != nil {
		return nil, err
	}

	records, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, storeError(err, "attendance record not found", "list attendance")
	}
	views := make([]models.AttendanceView, 0, len(records))
	for i := range records {
		views = append(views, models.AttendanceView{AttendanceRecord: records[i], CanChangeStatus: s.canChange(&records[i])})
	}
	return views, nil
}

func (s *AttendanceService) load(ctx context.Context, id string) (*models.AttendanceRecord, error) {
	rec, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "attendance record not found", "load attendance record")
	}
	return rec, nil
}

func (s *AttendanceService) canChange(rec *models.AttendanceRecord) bool {
	return s.now().Sub(rec.MarkedAt) <= s.window
}

// afterStatusChange emits alerts for transitions into ABSENT or TRAINER_ABSENT.
// Alert failures are logged and never surface to the caller.
func (s *AttendanceService) afterStatusChange(ctx context.Context, rec *models.AttendanceRecord, previous models.AttendanceStatus) {
	if rec.Status == previous {
		return
	}
	switch rec.Status {
	case models.AttendanceStatusAbsent:
		recent, err := s.repo.RecentByStudent(ctx, rec.StudentID, absenceStreak)
		if err != nil {
			s.logger.Warn("failed to load recent attendance", zap.String("student_id", rec.StudentID), zap.Error(err))
			return
		}
		if len(recent) < absenceStreak {
			return
		}
		for _, r := range recent {
			if r.Status != models.AttendanceStatusAbsent {
				return
			}
		}
		s.emit(ctx, models.NotificationEvent{
			Kind:      models.NotificationAbsence,
			Message:   fmt.Sprintf("Student %s has been absent for the last %d classes", rec.StudentID, absenceStreak),
			StudentID: rec.StudentID,
			RecordID:  rec.ID,
		})
	case models.AttendanceStatusTrainerAbsent:
		trainer := ""
		if rec.TrainerID != nil {
			trainer = *rec.TrainerID
		}
		s.emit(ctx, models.NotificationEvent{
			Kind:      models.NotificationTrainerAbsent,
			Message:   fmt.Sprintf("Trainer %s was absent for student %s", trainer, rec.StudentID),
			StudentID: rec.StudentID,
			TrainerID: trainer,
			RecordID:  rec.ID,
		})
	}
}

func (s *AttendanceService) emit(ctx context.Context, event models.NotificationEvent) {
	event.OccurredAt = s.now()
	if s.metrics != nil {
		s.metrics.RecordAlert(event.Kind)
	}
	if s.notifier == nil {
		s.logger.Warn("no notifier configured, dropping alert", zap.String("kind", string(event.Kind)))
		return
	}
	s.notifier.Notify(ctx, event)
}
