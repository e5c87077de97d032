package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/lms-admin-api/internal/models"
)

const (
	leaveRequestColumns = `id, user_id, start_date, end_date, reason, status, admin_remarks, processed_by, created_at, updated_at`
	leaveHistoryColumns = `id, user_id, period, leaves_accrued, leaves_taken, leaves_remaining, created_at, updated_at`
)

// LeaveTx is the unit of work used while processing a leave request.
type LeaveTx interface {
	// LockRequest returns sql.ErrNoRows when the request does not exist.
	LockRequest(ctx context.Context, id string) (*models.LeaveRequest, error)
	// LockLedger returns the locked ledger row, creating it with accrued days when missing.
	LockLedger(ctx context.Context, userID string, period time.Time, accrued int) (*models.LeaveHistory, error)
	UpdateLedger(ctx context.Context, h *models.LeaveHistory) error
	UpdateRequest(ctx context.Context, req *models.LeaveRequest) error
}

// LeaveRepository persists leave requests and the monthly ledger.
type LeaveRepository struct {
	db *sqlx.DB
}

// NewLeaveRepository constructs the repository.
func NewLeaveRepository(db *sqlx.DB) *LeaveRepository {
	return &LeaveRepository{db: db}
}

// CreateRequest inserts a leave request.
func (r *LeaveRepository) CreateRequest(ctx context.Context, req *models.LeaveRequest) error {
	now := time.Now().UTC()
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	req.CreatedAt, req.UpdatedAt = now, now
	const query = `INSERT INTO leave_requests (` + leaveRequestColumns + `)
VALUES (:id, :user_id, :start_date, :end_date, :reason, :status, :admin_remarks, :processed_by, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, req); err != nil {
		return fmt.Errorf("insert leave request: %w", err)
	}
	return nil
}

// ListRequests returns requests matching the filter, latest start first.
func (r *LeaveRepository) ListRequests(ctx context.Context, filter models.LeaveRequestFilter) ([]models.LeaveRequest, error) {
	query := strings.Builder{}
	query.WriteString(`SELECT ` + leaveRequestColumns + ` FROM leave_requests WHERE 1=1`)

	var args []interface{}
	if filter.UserID != "" {
		args = append(args, filter.UserID)
		fmt.Fprintf(&query, " AND user_id = $%d", len(args))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		fmt.Fprintf(&query, " AND status = $%d", len(args))
	}
	query.WriteString(" ORDER BY start_date DESC")
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		fmt.Fprintf(&query, " LIMIT $%d", len(args))
	}

	var items []models.LeaveRequest
	if err := r.db.SelectContext(ctx, &items, query.String(), args...); err != nil {
		return nil, fmt.Errorf("list leave requests: %w", err)
	}
	return items, nil
}

// GetOrCreateLedger returns the user's ledger row for period, creating it when absent.
func (r *LeaveRepository) GetOrCreateLedger(ctx context.Context, userID string, period time.Time, accrued int) (*models.LeaveHistory, error) {
	if err := insertLedger(ctx, r.db, userID, period, accrued); err != nil {
		return nil, err
	}
	const query = `SELECT ` + leaveHistoryColumns + ` FROM leave_history WHERE user_id = $1 AND period = $2`
	var h models.LeaveHistory
	if err := r.db.GetContext(ctx, &h, query, userID, period); err != nil {
		return nil, fmt.Errorf("get leave ledger: %w", err)
	}
	return &h, nil
}

// ListHistory returns ledger rows matching the filter, latest period first.
func (r *LeaveRepository) ListHistory(ctx context.Context, filter models.LeaveHistoryFilter) ([]models.LeaveHistory, error) {
	query := strings.Builder{}
	query.WriteString(`SELECT ` + leaveHistoryColumns + ` FROM leave_history WHERE 1=1`)

	var args []interface{}
	if filter.UserID != "" {
		args = append(args, filter.UserID)
		fmt.Fprintf(&query, " AND user_id = $%d", len(args))
	}
	if filter.From != nil {
		args = append(args, *filter.From)
		fmt.Fprintf(&query, " AND period >= $%d", len(args))
	}
	if filter.To != nil {
		args = append(args, *filter.To)
		fmt.Fprintf(&query, " AND period <= $%d", len(args))
	}
	query.WriteString(" ORDER BY period DESC, user_id")

	var items []models.LeaveHistory
	if err := r.db.SelectContext(ctx, &items, query.String(), args...); err != nil {
		return nil, fmt.Errorf("list leave history: %w", err)
	}
	return items, nil
}

// WithinTx runs fn inside a single transaction. Lock contention surfaces as ErrContention.
func (r *LeaveRepository) WithinTx(ctx context.Context, fn func(LeaveTx) error) error {
	return runInTx(ctx, r.db, func(tx *sqlx.Tx) error {
		return fn(&leaveTx{tx: tx})
	})
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

func insertLedger(ctx context.Context, db execer, userID string, period time.Time, accrued int) error {
	now := time.Now().UTC()
	const query = `INSERT INTO leave_history (` + leaveHistoryColumns + `)
VALUES ($1, $2, $3, $4, 0, $4, $5, $5) ON CONFLICT (user_id, period) DO NOTHING`
	if _, err := db.ExecContext(ctx, query, uuid.NewString(), userID, period, accrued, now); err != nil {
		return fmt.Errorf("create leave ledger: %w", err)
	}
	return nil
}

type leaveTx struct {
	tx *sqlx.Tx
}

func (t *leaveTx) LockRequest(ctx context.Context, id string) (*models.LeaveRequest, error) {
	const query = `SELECT ` + leaveRequestColumns + ` FROM leave_requests WHERE id = $1 FOR UPDATE`
	var req models.LeaveRequest
	if err := t.tx.GetContext(ctx, &req, query, id); err != nil {
		return nil, fmt.Errorf("lock leave request: %w", err)
	}
	return &req, nil
}

func (t *leaveTx) LockLedger(ctx context.Context, userID string, period time.Time, accrued int) (*models.LeaveHistory, error) {
	if err := insertLedger(ctx, t.tx, userID, period, accrued); err != nil {
		return nil, err
	}
	const query = `SELECT ` + leaveHistoryColumns + ` FROM leave_history WHERE user_id = $1 AND period = $2 FOR UPDATE`
	var h models.LeaveHistory
	if err := t.tx.GetContext(ctx, &h, query, userID, period); err != nil {
		return nil, fmt.Errorf("lock leave ledger: %w", err)
	}
	return &h, nil
}

func (t *leaveTx) UpdateLedger(ctx context.Context, h *models.LeaveHistory) error {
	h.UpdatedAt = time.Now().UTC()
	const query = `UPDATE leave_history SET leaves_taken = $1, leaves_remaining = $2, updated_at = $3 WHERE id = $4`
	if _, err := t.tx.ExecContext(ctx, query, h.LeavesTaken, h.LeavesRemaining, h.UpdatedAt, h.ID); err != nil {
		return fmt.Errorf("update leave ledger: %w", err)
	}
	return nil
}

func (t *leaveTx) UpdateRequest(ctx context.Context, req *models.LeaveRequest) error {
	req.UpdatedAt = time.Now().UTC()
	const query = `UPDATE leave_requests SET status = $1, admin_remarks = $2, processed_by = $3, updated_at = $4 WHERE id = $5`
	if _, err := t.tx.ExecContext(ctx, query, req.Status, req.AdminRemarks, req.ProcessedBy, req.UpdatedAt, req.ID); err != nil {
		return fmt.Errorf("update leave request: %w", err)
	}
	return nil
}
