package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/lms-admin-api/internal/models"
)

const assignmentColumns = `id, trainer_id, course_id, student_course_id, start_date, end_date, start_time, end_time, duration_minutes, created_at`

// AssignmentRepository persists trainer assignments.
type AssignmentRepository struct {
	db *sqlx.DB
}

// NewAssignmentRepository constructs the repository.
func NewAssignmentRepository(db *sqlx.DB) *AssignmentRepository {
	return &AssignmentRepository{db: db}
}

// ListByTrainer returns every assignment held by the trainer ordered by start.
func (r *AssignmentRepository) ListByTrainer(ctx context.Context, trainerID string) ([]models.TrainerAssignment, error) {
	const query = `SELECT ` + assignmentColumns + ` FROM trainer_assignments WHERE trainer_id = $1 ORDER BY start_date, start_time`
	var items []models.TrainerAssignment
	if err := r.db.SelectContext(ctx, &items, query, trainerID); err != nil {
		return nil, fmt.Errorf("list trainer assignments: %w", err)
	}
	return items, nil
}

// FindByID fetches a single assignment; missing rows surface as sql.ErrNoRows.
func (r *AssignmentRepository) FindByID(ctx context.Context, id string) (*models.TrainerAssignment, error) {
	const query = `SELECT ` + assignmentColumns + ` FROM trainer_assignments WHERE id = $1`
	var a models.TrainerAssignment
	if err := r.db.GetContext(ctx, &a, query, id); err != nil {
		return nil, fmt.Errorf("get trainer assignment: %w", err)
	}
	return &a, nil
}

// AssignmentTx is the unit of work for booking a trainer's schedule.
type AssignmentTx interface {
	// LockTrainer serializes schedule changes for the trainer and returns their current assignments.
	LockTrainer(ctx context.Context, trainerID string) ([]models.TrainerAssignment, error)
	Create(ctx context.Context, a *models.TrainerAssignment) error
	Update(ctx context.Context, a *models.TrainerAssignment) error
}

// WithinTx runs fn in one transaction so the overlap check and the write see the same schedule.
func (r *AssignmentRepository) WithinTx(ctx context.Context, fn func(AssignmentTx) error) error {
	return runInTx(ctx, r.db, func(tx *sqlx.Tx) error {
		return fn(&assignmentTx{tx: tx})
	})
}

type assignmentTx struct {
	tx *sqlx.Tx
}

// LockTrainer takes a transaction-scoped advisory lock keyed on the trainer,
// which also covers trainers with no rows yet.
func (t *assignmentTx) LockTrainer(ctx context.Context, trainerID string) ([]models.TrainerAssignment, error) {
	if _, err := t.tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, "trainer_assignments:"+trainerID); err != nil {
		return nil, fmt.Errorf("lock trainer schedule: %w", err)
	}
	const query = `SELECT ` + assignmentColumns + ` FROM trainer_assignments WHERE trainer_id = $1 ORDER BY start_date, start_time`
	var items []models.TrainerAssignment
	if err := t.tx.SelectContext(ctx, &items, query, trainerID); err != nil {
		return nil, fmt.Errorf("list trainer assignments: %w", err)
	}
	return items, nil
}

func (t *assignmentTx) Create(ctx context.Context, a *models.TrainerAssignment) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO trainer_assignments (` + assignmentColumns + `)
VALUES (:id, :trainer_id, :course_id, :student_course_id, :start_date, :end_date, :start_time, :end_time, :duration_minutes, :created_at)`
	if _, err := t.tx.NamedExecContext(ctx, query, a); err != nil {
		return fmt.Errorf("insert trainer assignment: %w", err)
	}
	return nil
}

func (t *assignmentTx) Update(ctx context.Context, a *models.TrainerAssignment) error {
	const query = `UPDATE trainer_assignments SET trainer_id = :trainer_id, course_id = :course_id, student_course_id = :student_course_id,
start_date = :start_date, end_date = :end_date, start_time = :start_time, end_time = :end_time, duration_minutes = :duration_minutes
WHERE id = :id`
	res, err := t.tx.NamedExecContext(ctx, query, a)
	if err != nil {
		return fmt.Errorf("update trainer assignment: %w", err)
	}
	return expectOneRow(res, "update trainer assignment")
}

// Delete removes an assignment.
func (r *AssignmentRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM trainer_assignments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete trainer assignment: %w", err)
	}
	return expectOneRow(res, "delete trainer assignment")
}

func expectOneRow(res sql.Result, op string) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s rows: %w", op, err)
	}
	if affected == 0 {
		return fmt.Errorf("%s: %w", op, sql.ErrNoRows)
	}
	return nil
}
