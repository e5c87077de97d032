package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/lms-admin-api/internal/models"
)

const (
	holdColumns        = `id, student_course_id, start_date, end_date, reason, status, requested_by, approved_by, processed, created_at, updated_at`
	holdHistoryColumns = `id, student_id, student_course_id, start_date, end_date, reason, status, decided_by, created_at`
)

// HoldTx is the unit of work used while deciding a course hold.
type HoldTx interface {
	// LockHold returns sql.ErrNoRows when the hold no longer exists.
	LockHold(ctx context.Context, id string) (*models.CourseHold, error)
	LockEnrollment(ctx context.Context, id string) (*models.Enrollment, error)
	UpdateEnrollment(ctx context.Context, e *models.Enrollment) error
	ArchiveHold(ctx context.Context, h *models.CourseHoldHistory) error
	DeleteHold(ctx context.Context, id string) error
}

// HoldRepository persists course holds and their archived history.
type HoldRepository struct {
	db *sqlx.DB
}

// NewHoldRepository constructs the repository.
func NewHoldRepository(db *sqlx.DB) *HoldRepository {
	return &HoldRepository{db: db}
}

// Create inserts a pending hold.
func (r *HoldRepository) Create(ctx context.Context, h *models.CourseHold) error {
	now := time.Now().UTC()
	if h.ID == "" {
		h.ID = uuid.NewString()
	}
	h.CreatedAt, h.UpdatedAt = now, now
	const query = `INSERT INTO course_holds (` + holdColumns + `)
VALUES (:id, :student_course_id, :start_date, :end_date, :reason, :status, :requested_by, :approved_by, :processed, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, h); err != nil {
		return fmt.Errorf("insert course hold: %w", err)
	}
	return nil
}

// ListPending returns pending holds, optionally scoped to an enrollment or student.
func (r *HoldRepository) ListPending(ctx context.Context, filter models.HoldFilter) ([]models.CourseHold, error) {
	query := strings.Builder{}
	query.WriteString(`SELECT h.id, h.student_course_id, h.start_date, h.end_date, h.reason, h.status, h.requested_by, h.approved_by, h.processed, h.created_at, h.updated_at
FROM course_holds h JOIN enrollments e ON e.id = h.student_course_id
WHERE h.status = 'PENDING'`)

	var args []interface{}
	if filter.StudentCourseID != "" {
		args = append(args, filter.StudentCourseID)
		fmt.Fprintf(&query, " AND h.student_course_id = $%d", len(args))
	}
	if filter.StudentID != "" {
		args = append(args, filter.StudentID)
		fmt.Fprintf(&query, " AND e.student_id = $%d", len(args))
	}
	query.WriteString(" ORDER BY h.created_at ASC")
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		fmt.Fprintf(&query, " LIMIT $%d", len(args))
	}

	var items []models.CourseHold
	if err := r.db.SelectContext(ctx, &items, query.String(), args...); err != nil {
		return nil, fmt.Errorf("list pending holds: %w", err)
	}
	return items, nil
}

// History lists archived hold decisions for a student, newest first.
func (r *HoldRepository) History(ctx context.Context, studentID string) ([]models.CourseHoldHistory, error) {
	const query = `SELECT ` + holdHistoryColumns + ` FROM course_hold_history WHERE student_id = $1 ORDER BY created_at DESC`
	var items []models.CourseHoldHistory
	if err := r.db.SelectContext(ctx, &items, query, studentID); err != nil {
		return nil, fmt.Errorf("list hold history: %w", err)
	}
	return items, nil
}

// WithinTx runs fn inside a single transaction.
func (r *HoldRepository) WithinTx(ctx context.Context, fn func(HoldTx) error) error {
	return runInTx(ctx, r.db, func(tx *sqlx.Tx) error {
		return fn(&holdTx{tx: tx})
	})
}

type holdTx struct {
	tx *sqlx.Tx
}

func (t *holdTx) LockHold(ctx context.Context, id string) (*models.CourseHold, error) {
	const query = `SELECT ` + holdColumns + ` FROM course_holds WHERE id = $1 FOR UPDATE`
	var h models.CourseHold
	if err := t.tx.GetContext(ctx, &h, query, id); err != nil {
		return nil, fmt.Errorf("lock course hold: %w", err)
	}
	return &h, nil
}

func (t *holdTx) LockEnrollment(ctx context.Context, id string) (*models.Enrollment, error) {
	const query = `SELECT ` + enrollmentColumns + ` FROM enrollments WHERE id = $1 FOR UPDATE`
	var e models.Enrollment
	if err := t.tx.GetContext(ctx, &e, query, id); err != nil {
		return nil, fmt.Errorf("lock enrollment: %w", err)
	}
	return &e, nil
}

func (t *holdTx) UpdateEnrollment(ctx context.Context, e *models.Enrollment) error {
	const query = `UPDATE enrollments SET trainer_id = $1, start_date = $2, end_date = $3, class_time = $4 WHERE id = $5`
	if _, err := t.tx.ExecContext(ctx, query, e.TrainerID, e.StartDate, e.EndDate, e.ClassTime, e.ID); err != nil {
		return fmt.Errorf("update enrollment: %w", err)
	}
	return nil
}

func (t *holdTx) ArchiveHold(ctx context.Context, h *models.CourseHoldHistory) error {
	if h.ID == "" {
		h.ID = uuid.NewString()
	}
	if h.CreatedAt.IsZero() {
		h.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO course_hold_history (` + holdHistoryColumns + `)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	if _, err := t.tx.ExecContext(ctx, query, h.ID, h.StudentID, h.StudentCourseID, h.StartDate, h.EndDate, h.Reason, h.Status, h.DecidedBy, h.CreatedAt); err != nil {
		return fmt.Errorf("archive course hold: %w", err)
	}
	return nil
}

func (t *holdTx) DeleteHold(ctx context.Context, id string) error {
	if _, err := t.tx.ExecContext(ctx, `DELETE FROM course_holds WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete course hold: %w", err)
	}
	return nil
}
