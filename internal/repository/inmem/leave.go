package inmem

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/noah-isme/lms-admin-api/internal/models"
	"github.com/noah-isme/lms-admin-api/internal/repository"
)

// LeaveRepository serves leave requests and ledgers from the store.
type LeaveRepository struct {
	db *DB
}

func NewLeaveRepository(db *DB) *LeaveRepository {
	return &LeaveRepository{db: db}
}

func (repo *LeaveRepository) CreateRequest(_ context.Context, req *models.LeaveRequest) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()
	now := time.Now().UTC()
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	req.CreatedAt, req.UpdatedAt = now, now
	repo.db.leaveRequests[req.ID] = *req
	return nil
}

func (repo *LeaveRepository) ListRequests(_ context.Context, filter models.LeaveRequestFilter) ([]models.LeaveRequest, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()
	items := make([]models.LeaveRequest, 0)
	for _, req := range repo.db.leaveRequests {
		if filter.UserID != "" && req.UserID != filter.UserID {
			continue
		}
		if filter.Status != "" && req.Status != filter.Status {
			continue
		}
		items = append(items, req)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].StartDate.After(items[j].StartDate) })
	if filter.Limit > 0 && len(items) > filter.Limit {
		items = items[:filter.Limit]
	}
	return items, nil
}

func (repo *LeaveRepository) GetOrCreateLedger(_ context.Context, userID string, period time.Time, accrued int) (*models.LeaveHistory, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()
	h := repo.db.ledger(userID, period, accrued)
	return &h, nil
}

func (repo *LeaveRepository) ListHistory(_ context.Context, filter models.LeaveHistoryFilter) ([]models.LeaveHistory, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()
	items := make([]models.LeaveHistory, 0)
	for _, h := range repo.db.ledgers {
		if filter.UserID != "" && h.UserID != filter.UserID {
			continue
		}
		if filter.From != nil && h.Period.Before(*filter.From) {
			continue
		}
		if filter.To != nil && h.Period.After(*filter.To) {
			continue
		}
		items = append(items, h)
	}
	sort.Slice(items, func(i, j int) bool {
		if !items[i].Period.Equal(items[j].Period) {
			return items[i].Period.After(items[j].Period)
		}
		return items[i].UserID < items[j].UserID
	})
	return items, nil
}

func (repo *LeaveRepository) WithinTx(ctx context.Context, fn func(repository.LeaveTx) error) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	tx := &leaveTx{db: repo.db, requests: make(map[string]models.LeaveRequest), ledgers: make(map[ledgerKey]models.LeaveHistory)}
	if err := fn(tx); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	for id, req := range tx.requests {
		repo.db.leaveRequests[id] = req
	}
	for key, h := range tx.ledgers {
		repo.db.ledgers[key] = h
	}
	return nil
}

// ledger returns the row for (userID, period), creating it when absent. Caller holds the write lock.
func (db *DB) ledger(userID string, period time.Time, accrued int) models.LeaveHistory {
	key := keyOf(userID, period)
	if h, ok := db.ledgers[key]; ok {
		return h
	}
	now := time.Now().UTC()
	h := models.LeaveHistory{
		ID:              uuid.NewString(),
		UserID:          userID,
		Period:          period,
		LeavesAccrued:   accrued,
		LeavesRemaining: accrued,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	db.ledgers[key] = h
	return h
}

type leaveTx struct {
	db       *DB
	requests map[string]models.LeaveRequest
	ledgers  map[ledgerKey]models.LeaveHistory
}

func (t *leaveTx) LockRequest(_ context.Context, id string) (*models.LeaveRequest, error) {
	req, ok := t.requests[id]
	if !ok {
		if req, ok = t.db.leaveRequests[id]; !ok {
			return nil, fmt.Errorf("lock leave request: %w", sql.ErrNoRows)
		}
	}
	return &req, nil
}

func (t *leaveTx) LockLedger(_ context.Context, userID string, period time.Time, accrued int) (*models.LeaveHistory, error) {
	key := keyOf(userID, period)
	if h, ok := t.ledgers[key]; ok {
		return &h, nil
	}
	// creation is not rolled back with the transaction
	h := t.db.ledger(userID, period, accrued)
	return &h, nil
}

func (t *leaveTx) UpdateLedger(_ context.Context, h *models.LeaveHistory) error {
	h.UpdatedAt = time.Now().UTC()
	t.ledgers[keyOf(h.UserID, h.Period)] = *h
	return nil
}

func (t *leaveTx) UpdateRequest(_ context.Context, req *models.LeaveRequest) error {
	req.UpdatedAt = time.Now().UTC()
	t.requests[req.ID] = *req
	return nil
}
