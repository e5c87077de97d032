package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/lms-admin-api/internal/dto"
	"github.com/noah-isme/lms-admin-api/internal/models"
	"github.com/noah-isme/lms-admin-api/internal/repository"
	"github.com/noah-isme/lms-admin-api/internal/repository/inmem"
	appErrors "github.com/noah-isme/lms-admin-api/pkg/errors"
	"github.com/noah-isme/lms-admin-api/pkg/export"
)

type leaveMetricsStub struct {
	mu        sync.Mutex
	retries   int
	decisions []models.LeaveAction
}

func (m *leaveMetricsStub) RecordLeaveDecision(action models.LeaveAction) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.decisions = append(m.decisions, action)
}

func (m *leaveMetricsStub) RecordTxRetry(string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.retries++
}

// contendedLeaveStore fails the first failures transactions with contention.
type contendedLeaveStore struct {
	*inmem.LeaveRepository
	failures int
	calls    int
}

func (s *contendedLeaveStore) WithinTx(ctx context.Context, fn func(repository.LeaveTx) error) error {
	s.calls++
	if s.calls <= s.failures {
		return fmt.Errorf("commit transaction: %w", repository.ErrContention)
	}
	return s.LeaveRepository.WithinTx(ctx, fn)
}

func newLeaveService(store leaveStore, metrics *leaveMetricsStub) *LeaveService {
	return NewLeaveService(store, MonthlyAccrual{PerPeriod: 2}, nil, nil,
		WithLeaveRetry(3, time.Millisecond),
		WithLeaveMetrics(metrics),
		WithLeaveClock(func() time.Time { return time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC) }),
	)
}

func requestLeave(t *testing.T, svc *LeaveService, actor models.Actor, start, end string) *dto.LeaveRequestResult {
	t.Helper()
	result, err := svc.RequestLeave(context.Background(), dto.CreateLeaveRequest{StartDate: start, EndDate: end, Reason: "family"}, actor)
	require.NoError(t, err)
	return result
}

func TestLeaveGetOrCreateIsLazy(t *testing.T) {
	ctx := context.Background()
	svc := newLeaveService(inmem.NewLeaveRepository(inmem.New()), &leaveMetricsStub{})

	first, err := svc.GetOrCreate(ctx, "t-1", time.Date(2024, 6, 20, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), first.Period)
	assert.Equal(t, 2, first.LeavesAccrued)
	assert.Equal(t, 0, first.LeavesTaken)
	assert.Equal(t, 2, first.LeavesRemaining)

	second, err := svc.GetOrCreate(ctx, "t-1", time.Date(2024, 6, 2, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	current, err := svc.CurrentMonth(ctx, trainerActor)
	require.NoError(t, err)
	assert.Equal(t, first.ID, current.ID)

	_, err = svc.CurrentMonth(ctx, studentActor)
	assert.True(t, errors.Is(err, appErrors.ErrForbidden))
}

func TestLeaveRequestWarnsWhenOverBalance(t *testing.T) {
	svc := newLeaveService(inmem.NewLeaveRepository(inmem.New()), &leaveMetricsStub{})

	result := requestLeave(t, svc, trainerActor, "2024-06-10", "2024-06-14")
	assert.True(t, result.Warning)
	assert.Equal(t, 5, result.Days)
	assert.Equal(t, 2, result.Remaining)
	assert.NotEmpty(t, result.Message)
	assert.Equal(t, models.LeaveStatusPending, result.Request.Status)

	within := requestLeave(t, svc, trainerActor, "2024-06-20", "2024-06-20")
	assert.False(t, within.Warning)
}

func TestLeaveRequestValidation(t *testing.T) {
	ctx := context.Background()
	svc := newLeaveService(inmem.NewLeaveRepository(inmem.New()), &leaveMetricsStub{})

	_, err := svc.RequestLeave(ctx, dto.CreateLeaveRequest{StartDate: "2024-06-14", EndDate: "2024-06-10"}, trainerActor)
	assert.True(t, errors.Is(err, appErrors.ErrInvalidRange))

	_, err = svc.RequestLeave(ctx, dto.CreateLeaveRequest{StartDate: "2024-06-10", EndDate: "2024-06-14"}, studentActor)
	assert.True(t, errors.Is(err, appErrors.ErrForbidden))

	_, err = svc.RequestLeave(ctx, dto.CreateLeaveRequest{StartDate: "June 10", EndDate: "2024-06-14"}, trainerActor)
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
}

func TestLeaveApproveDeductsLedger(t *testing.T) {
	ctx := context.Background()
	metrics := &leaveMetricsStub{}
	svc := newLeaveService(inmem.NewLeaveRepository(inmem.New()), metrics)
	pending := requestLeave(t, svc, trainerActor, "2024-06-10", "2024-06-14")

	processed, err := svc.ProcessLeave(ctx, pending.Request.ID, models.LeaveActionApprove, "enjoy", adminActor)
	require.NoError(t, err)
	assert.Equal(t, models.LeaveStatusApproved, processed.Status)
	require.NotNil(t, processed.AdminRemarks)
	assert.Equal(t, "enjoy", *processed.AdminRemarks)
	assert.Equal(t, "admin-1", *processed.ProcessedBy)

	ledger, err := svc.GetOrCreate(ctx, "t-1", time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, 5, ledger.LeavesTaken)
	assert.Equal(t, 0, ledger.LeavesRemaining)
	assert.Equal(t, []models.LeaveAction{models.LeaveActionApprove}, metrics.decisions)
}

func TestLeaveRejectKeepsLedger(t *testing.T) {
	ctx := context.Background()
	svc := newLeaveService(inmem.NewLeaveRepository(inmem.New()), &leaveMetricsStub{})
	pending := requestLeave(t, svc, trainerActor, "2024-06-10", "2024-06-10")

	processed, err := svc.ProcessLeave(ctx, pending.Request.ID, models.LeaveActionReject, "busy week", managerActor)
	require.NoError(t, err)
	assert.Equal(t, models.LeaveStatusRejected, processed.Status)
	assert.Equal(t, "busy week", *processed.AdminRemarks)

	ledger, err := svc.GetOrCreate(ctx, "t-1", time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, 0, ledger.LeavesTaken)
	assert.Equal(t, 2, ledger.LeavesRemaining)
}

func TestLeaveProcessGuards(t *testing.T) {
	ctx := context.Background()
	svc := newLeaveService(inmem.NewLeaveRepository(inmem.New()), &leaveMetricsStub{})
	pending := requestLeave(t, svc, trainerActor, "2024-06-10", "2024-06-10")

	_, err := svc.ProcessLeave(ctx, pending.Request.ID, "maybe", "", adminActor)
	assert.True(t, errors.Is(err, appErrors.ErrInvalidAction))

	_, err = svc.ProcessLeave(ctx, pending.Request.ID, models.LeaveActionApprove, "", trainerActor)
	assert.True(t, errors.Is(err, appErrors.ErrForbidden))

	_, err = svc.ProcessLeave(ctx, "missing", models.LeaveActionApprove, "", adminActor)
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))

	_, err = svc.ProcessLeave(ctx, pending.Request.ID, models.LeaveActionApprove, "", adminActor)
	require.NoError(t, err)
	_, err = svc.ProcessLeave(ctx, pending.Request.ID, models.LeaveActionApprove, "", adminActor)
	assert.True(t, errors.Is(err, appErrors.ErrInvalidState))

	ledger, err := svc.GetOrCreate(ctx, "t-1", time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, 1, ledger.LeavesTaken)
}

func TestLeaveConcurrentApprovalsAreSerialized(t *testing.T) {
	ctx := context.Background()
	svc := newLeaveService(inmem.NewLeaveRepository(inmem.New()), &leaveMetricsStub{})

	const n = 12
	ids := make([]string, 0, n)
	for i := 0; i < n; i++ {
		day := fmt.Sprintf("2024-06-%02d", i+1)
		ids = append(ids, requestLeave(t, svc, trainerActor, day, day).Request.ID)
	}

	var wg sync.WaitGroup
	errs := make(chan error, n)
	for _, id := range ids {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			_, err := svc.ProcessLeave(ctx, id, models.LeaveActionApprove, "", adminActor)
			errs <- err
		}(id)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	ledger, err := svc.GetOrCreate(ctx, "t-1", time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, n, ledger.LeavesTaken)
	assert.Equal(t, 0, ledger.LeavesRemaining)
}

func TestLeaveProcessRetriesContention(t *testing.T) {
	ctx := context.Background()
	metrics := &leaveMetricsStub{}
	store := &contendedLeaveStore{LeaveRepository: inmem.NewLeaveRepository(inmem.New()), failures: 2}
	svc := newLeaveService(store, metrics)
	pending := requestLeave(t, svc, trainerActor, "2024-06-10", "2024-06-10")

	processed, err := svc.ProcessLeave(ctx, pending.Request.ID, models.LeaveActionApprove, "", adminActor)
	require.NoError(t, err)
	assert.Equal(t, models.LeaveStatusApproved, processed.Status)
	assert.Equal(t, 3, store.calls)
	assert.Equal(t, 2, metrics.retries)
}

func TestLeaveProcessGivesUpAfterRetries(t *testing.T) {
	ctx := context.Background()
	store := &contendedLeaveStore{LeaveRepository: inmem.NewLeaveRepository(inmem.New()), failures: 100}
	svc := newLeaveService(store, &leaveMetricsStub{})
	pending := requestLeave(t, svc, trainerActor, "2024-06-10", "2024-06-10")

	_, err := svc.ProcessLeave(ctx, pending.Request.ID, models.LeaveActionApprove, "", adminActor)
	assert.True(t, errors.Is(err, appErrors.ErrUnavailable))
	assert.Equal(t, 4, store.calls)
}

func TestLeaveListScopesToSelf(t *testing.T) {
	ctx := context.Background()
	svc := newLeaveService(inmem.NewLeaveRepository(inmem.New()), &leaveMetricsStub{})
	requestLeave(t, svc, trainerActor, "2024-06-10", "2024-06-10")
	requestLeave(t, svc, managerActor, "2024-06-11", "2024-06-11")

	own, err := svc.ListRequests(ctx, models.LeaveRequestFilter{UserID: "manager-1"}, trainerActor)
	require.NoError(t, err)
	require.Len(t, own, 1)
	assert.Equal(t, "t-1", own[0].UserID)

	all, err := svc.ListRequests(ctx, models.LeaveRequestFilter{}, adminActor)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	_, err = svc.ListRequests(ctx, models.LeaveRequestFilter{}, models.Actor{})
	assert.True(t, errors.Is(err, appErrors.ErrUnauthorized))
}

func TestLeaveHistoryExportCSV(t *testing.T) {
	ctx := context.Background()
	svc := newLeaveService(inmem.NewLeaveRepository(inmem.New()), &leaveMetricsStub{})
	for _, month := range []int{4, 5, 6} {
		_, err := svc.GetOrCreate(ctx, "t-1", time.Date(2024, time.Month(month), 3, 0, 0, 0, 0, time.UTC))
		require.NoError(t, err)
	}
	_, err := svc.GetOrCreate(ctx, "t-2", time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	body, format, err := svc.ExportHistory(ctx, dto.LeaveHistoryQuery{From: "2024-05-20"}, trainerActor)
	require.NoError(t, err)
	assert.Equal(t, export.FormatCSV, format)

	lines := strings.Split(strings.TrimSpace(string(body)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "user_id,period,leaves_accrued,leaves_taken,leaves_remaining", lines[0])
	assert.Equal(t, "t-1,2024-06,2,0,2", lines[1])
	assert.Equal(t, "t-1,2024-05,2,0,2", lines[2])

	_, _, err = svc.ExportHistory(ctx, dto.LeaveHistoryQuery{Format: "xlsx"}, adminActor)
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
}
