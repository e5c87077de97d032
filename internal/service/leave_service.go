package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/lms-admin-api/internal/dto"
	"github.com/noah-isme/lms-admin-api/internal/models"
	"github.com/noah-isme/lms-admin-api/internal/repository"
	appErrors "github.com/noah-isme/lms-admin-api/pkg/errors"
	"github.com/noah-isme/lms-admin-api/pkg/export"
)

const (
	defaultLeaveMaxRetries = 3
	defaultLeaveRetryDelay = 50 * time.Millisecond
)

type leaveStore interface {
	CreateRequest(ctx context.Context, req *models.LeaveRequest) error
	ListRequests(ctx context.Context, filter models.LeaveRequestFilter) ([]models.LeaveRequest, error)
	GetOrCreateLedger(ctx context.Context, userID string, period time.Time, accrued int) (*models.LeaveHistory, error)
	ListHistory(ctx context.Context, filter models.LeaveHistoryFilter) ([]models.LeaveHistory, error)
	WithinTx(ctx context.Context, fn func(repository.LeaveTx) error) error
}

type leaveMetrics interface {
	RecordLeaveDecision(action models.LeaveAction)
	RecordTxRetry(operation string)
}

// LeaveServiceOption configures the service.
type LeaveServiceOption func(*LeaveService)

// WithLeaveRetry bounds how often a contended ledger transaction is retried.
func WithLeaveRetry(maxRetries int, delay time.Duration) LeaveServiceOption {
	return func(s *LeaveService) {
		if maxRetries >= 0 {
			s.maxRetries = maxRetries
		}
		if delay > 0 {
			s.retryDelay = delay
		}
	}
}

// WithLeaveClock overrides the time source used for the current period.
func WithLeaveClock(now func() time.Time) LeaveServiceOption {
	return func(s *LeaveService) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLeaveMetrics records decisions and retries.
func WithLeaveMetrics(m leaveMetrics) LeaveServiceOption {
	return func(s *LeaveService) {
		s.metrics = m
	}
}

// LeaveService maintains monthly leave balances and processes requests
// against them.
type LeaveService struct {
	repo       leaveStore
	accrual    AccrualPolicy
	metrics    leaveMetrics
	validator  *validator.Validate
	logger     *zap.Logger
	now        func() time.Time
	maxRetries int
	retryDelay time.Duration
}

// NewLeaveService constructs the service. A nil accrual policy grants nothing.
func NewLeaveService(repo leaveStore, accrual AccrualPolicy, validate *validator.Validate, logger *zap.Logger, opts ...LeaveServiceOption) *LeaveService {
	if accrual == nil {
		accrual = MonthlyAccrual{}
	}
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &LeaveService{
		repo:       repo,
		accrual:    accrual,
		validator:  validate,
		logger:     logger,
		now:        func() time.Time { return time.Now().UTC() },
		maxRetries: defaultLeaveMaxRetries,
		retryDelay: defaultLeaveRetryDelay,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GetOrCreate returns the ledger row for the month containing asOf.
func (s *LeaveService) GetOrCreate(ctx context.Context, userID string, asOf time.Time) (*models.LeaveHistory, error) {
	period := models.PeriodStart(asOf)
	ledger, err := s.repo.GetOrCreateLedger(ctx, userID, period, s.accrual.Accrued(userID, period))
	if err != nil {
		return nil, storeError(err, "leave ledger not found", "load leave ledger")
	}
	return ledger, nil
}

// CurrentMonth returns the actor's ledger for this month.
func (s *LeaveService) CurrentMonth(ctx context.Context, actor models.Actor) (*models.LeaveHistory, error) {
	if err := Authorize(actor, CapRequestLeave, Resource{}); err != nil {
		return nil, err
	}
	return s.GetOrCreate(ctx, actor.UserID, s.now())
}

// RequestLeave files a pending request. Requests above the remaining balance
// are still created and flagged with a warning.
func (s *LeaveService) RequestLeave(ctx context.Context, req dto.CreateLeaveRequest, actor models.Actor) (*dto.LeaveRequestResult, error) {
	if err := Authorize(actor, CapRequestLeave, Resource{}); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid leave payload")
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

	ledger, err := s.GetOrCreate(ctx, actor.UserID, start)
	if err != nil {
		return nil, err
	}

	request := &models.LeaveRequest{
		UserID:    actor.UserID,
		StartDate: start,
		EndDate:   end,
		Reason:    req.Reason,
		Status:    models.LeaveStatusPending,
	}
	if err := s.repo.CreateRequest(ctx, request); err != nil {
		return nil, storeError(err, "leave request not found", "create leave request")
	}

	result := &dto.LeaveRequestResult{Request: request, Days: request.Days(), Remaining: ledger.LeavesRemaining}
	if result.Days > ledger.LeavesRemaining {
		result.Warning = true
		result.Message = fmt.Sprintf("requested %d days but only %d remain this month", result.Days, ledger.LeavesRemaining)
	}
	return result, nil
}

// ProcessLeave approves or rejects a pending request. Approval books the days
// against the ledger for the request's start month in the same transaction.
func (s *LeaveService) ProcessLeave(ctx context.Context, id string, action models.LeaveAction, remarks string, approver models.Actor) (*models.LeaveRequest, error) {
	if !action.Valid() {
		return nil, appErrors.Clone(appErrors.ErrInvalidAction, fmt.Sprintf("action must be approve or reject, got %q", action))
	}
	if err := Authorize(approver, CapProcessLeave, Resource{}); err != nil {
		return nil, err
	}

	var processed *models.LeaveRequest
	attempt := 0
	operation := func() error {
		attempt++
		req, err := s.processOnce(ctx, id, action, remarks, approver.UserID)
		switch {
		case err == nil:
			processed = req
			return nil
		case errors.Is(err, repository.ErrContention):
			s.logger.Warn("leave transaction contended",
				zap.String("request_id", id),
				zap.Int("attempt", attempt),
				zap.Error(err))
			if s.metrics != nil && attempt <= s.maxRetries {
				s.metrics.RecordTxRetry("process_leave")
			}
			return err
		default:
			return backoff.Permanent(err)
		}
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = s.retryDelay
	policy.MaxElapsedTime = 0
	bo := backoff.WithContext(backoff.WithMaxRetries(policy, uint64(s.maxRetries)), ctx)
	if err := backoff.Retry(operation, bo); err != nil {
		return nil, storeError(err, "leave request not found", "process leave request")
	}

	if s.metrics != nil {
		s.metrics.RecordLeaveDecision(action)
	}
	s.logger.Info("leave request processed",
		zap.String("request_id", id),
		zap.String("action", string(action)),
		zap.String("actor_id", approver.UserID),
		zap.Int("attempts", attempt))
	return processed, nil
}

func (s *LeaveService) processOnce(ctx context.Context, id string, action models.LeaveAction, remarks, approverID string) (*models.LeaveRequest, error) {
	var out *models.LeaveRequest
	err := s.repo.WithinTx(ctx, func(tx repository.LeaveTx) error {
		req, err := tx.LockRequest(ctx, id)
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "leave request not found")
		}
		if err != nil {
			return err
		}
		if req.Status != models.LeaveStatusPending {
			return appErrors.Clone(appErrors.ErrInvalidState, fmt.Sprintf("leave request already %s", req.Status))
		}

		if action == models.LeaveActionApprove {
			period := models.PeriodStart(req.StartDate)
			ledger, err := tx.LockLedger(ctx, req.UserID, period, s.accrual.Accrued(req.UserID, period))
			if err != nil {
				return err
			}
			ledger.Deduct(req.Days())
			if err := tx.UpdateLedger(ctx, ledger); err != nil {
				return err
			}
			req.Status = models.LeaveStatusApproved
		} else {
			req.Status = models.LeaveStatusRejected
		}

		processedBy := approverID
		req.AdminRemarks = &remarks
		req.ProcessedBy = &processedBy
		if err := tx.UpdateRequest(ctx, req); err != nil {
			return err
		}
		out = req
		return nil
	})
	return out, err
}

// ListRequests returns leave requests; users without the view-all capability
// only see their own.
func (s *LeaveService) ListRequests(ctx context.Context, filter models.LeaveRequestFilter, actor models.Actor) ([]models.LeaveRequest, error) {
	scoped, err := s.scope(actor, filter.UserID)
	if err != nil {
		return nil, err
	}
	filter.UserID = scoped
	items, err := s.repo.ListRequests(ctx, filter)
	if err != nil {
		return nil, storeError(err, "leave request not found", "list leave requests")
	}
	return items, nil
}

// ListHistory returns ledger rows filtered by user and period range.
func (s *LeaveService) ListHistory(ctx context.Context, query dto.LeaveHistoryQuery, actor models.Actor) ([]models.LeaveHistory, error) {
	if err := s.validator.Struct(query); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid history query")
	}
	userID, err := s.scope(actor, query.UserID)
	if err != nil {
		return nil, err
	}
	filter := models.LeaveHistoryFilter{UserID: userID}
	if query.From != "" {
		from, err := dto.ParseDate(query.From)
		if err != nil {
			return nil, appErrors.Clone(appErrors.ErrValidation, err.Error())
		}
		from = models.PeriodStart(from)
		filter.From = &from
	}
	if query.To != "" {
		to, err := dto.ParseDate(query.To)
		if err != nil {
			return nil, appErrors.Clone(appErrors.ErrValidation, err.Error())
		}
		filter.To = &to
	}
	if filter.From != nil && filter.To != nil && filter.To.Before(*filter.From) {
		return nil, appErrors.Clone(appErrors.ErrInvalidRange, "from must not be after to")
	}

	items, err := s.repo.ListHistory(ctx, filter)
	if err != nil {
		return nil, storeError(err, "leave ledger not found", "list leave history")
	}
	return items, nil
}

// ExportHistory renders ledger rows as CSV or PDF.
func (s *LeaveService) ExportHistory(ctx context.Context, query dto.LeaveHistoryQuery, actor models.Actor) ([]byte, export.Format, error) {
	format, err := export.ParseFormat(query.Format)
	if err != nil {
		return nil, "", appErrors.Clone(appErrors.ErrValidation, err.Error())
	}
	items, err := s.ListHistory(ctx, query, actor)
	if err != nil {
		return nil, "", err
	}

	data := export.Dataset{
		Title:   "Leave History",
		Headers: []string{"user_id", "period", "leaves_accrued", "leaves_taken", "leaves_remaining"},
		Rows:    make([]map[string]string, 0, len(items)),
	}
	for _, h := range items {
		data.Rows = append(data.Rows, map[string]string{
			"user_id":          h.UserID,
			"period":           h.Period.Format("2006-01"),
			"leaves_accrued":   strconv.Itoa(h.LeavesAccrued),
			"leaves_taken":     strconv.Itoa(h.LeavesTaken),
			"leaves_remaining": strconv.Itoa(h.LeavesRemaining),
		})
	}
	body, err := export.Render(format, data)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render leave history")
	}
	return body, format, nil
}

// scope narrows requested to the actor unless they may view everyone.
func (s *LeaveService) scope(actor models.Actor, requested string) (string, error) {
	err := Authorize(actor, CapViewLeaveOfOthers, Resource{})
	switch {
	case err == nil:
		return requested, nil
	case errors.Is(err, appErrors.ErrUnauthorized):
		return "", err
	default:
		return actor.UserID, nil
	}
}
