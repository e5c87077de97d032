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

const attendanceColumns = `id, student_id, trainer_id, marked_at, status, class_content, student_feedback`

// AttendanceRepository persists attendance records.
type AttendanceRepository struct {
	db *sqlx.DB
}

// NewAttendanceRepository constructs the repository.
func NewAttendanceRepository(db *sqlx.DB) *AttendanceRepository {
	return &AttendanceRepository{db: db}
}

// Create inserts a record, defaulting id, marked_at and feedback.
func (r *AttendanceRepository) Create(ctx context.Context, rec *models.AttendanceRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.MarkedAt.IsZero() {
		rec.MarkedAt = time.Now().UTC()
	}
	if rec.StudentFeedback == "" {
		rec.StudentFeedback = models.FeedbackNoAction
	}
	const query = `INSERT INTO attendance_records (` + attendanceColumns + `)
VALUES (:id, :student_id, :trainer_id, :marked_at, :status, :class_content, :student_feedback)`
	if _, err := r.db.NamedExecContext(ctx, query, rec); err != nil {
		return fmt.Errorf("insert attendance record: %w", err)
	}
	return nil
}

// FindByID fetches a record; missing rows surface as sql.ErrNoRows.
func (r *AttendanceRepository) FindByID(ctx context.Context, id string) (*models.AttendanceRecord, error) {
	const query = `SELECT ` + attendanceColumns + ` FROM attendance_records WHERE id = $1`
	var rec models.AttendanceRecord
	if err := r.db.GetContext(ctx, &rec, query, id); err != nil {
		return nil, fmt.Errorf("get attendance record: %w", err)
	}
	return &rec, nil
}

// UpdateClassContent rewrites only the class notes and returns the stored row.
func (r *AttendanceRepository) UpdateClassContent(ctx context.Context, id, content string) (*models.AttendanceRecord, error) {
	const query = `UPDATE attendance_records SET class_content = $1 WHERE id = $2 RETURNING ` + attendanceColumns
	var rec models.AttendanceRecord
	if err := r.db.GetContext(ctx, &rec, query, content, id); err != nil {
		return nil, fmt.Errorf("update class content: %w", err)
	}
	return &rec, nil
}

// UpdateFeedback rewrites only the student feedback and returns the stored row.
func (r *AttendanceRepository) UpdateFeedback(ctx context.Context, id string, feedback models.StudentFeedback) (*models.AttendanceRecord, error) {
	const query = `UPDATE attendance_records SET student_feedback = $1 WHERE id = $2 RETURNING ` + attendanceColumns
	var rec models.AttendanceRecord
	if err := r.db.GetContext(ctx, &rec, query, feedback, id); err != nil {
		return nil, fmt.Errorf("update feedback: %w", err)
	}
	return &rec, nil
}

type statusChange struct {
	models.AttendanceRecord
	Previous models.AttendanceStatus `db:"previous_status"`
}

// UpdateStatus sets the status under a row lock and reports the status it replaced.
func (r *AttendanceRepository) UpdateStatus(ctx context.Context, id string, status models.AttendanceStatus) (*models.AttendanceRecord, models.AttendanceStatus, error) {
	const query = `WITH prev AS (
	SELECT id, status FROM attendance_records WHERE id = $2 FOR UPDATE
)
UPDATE attendance_records a SET status = $1 FROM prev WHERE a.id = prev.id
RETURNING a.id, a.student_id, a.trainer_id, a.marked_at, a.status, a.class_content, a.student_feedback, prev.status AS previous_status`
	var change statusChange
	if err := r.db.GetContext(ctx, &change, query, status, id); err != nil {
		return nil, "", fmt.Errorf("update attendance status: %w", err)
	}
	return &change.AttendanceRecord, change.Previous, nil
}

// RecentByStudent returns the student's n most recent records, newest first.
func (r *AttendanceRepository) RecentByStudent(ctx context.Context, studentID string, n int) ([]models.AttendanceRecord, error) {
	const query = `SELECT ` + attendanceColumns + ` FROM attendance_records WHERE student_id = $1 ORDER BY marked_at DESC, id DESC LIMIT $2`
	var items []models.AttendanceRecord
	if err := r.db.SelectContext(ctx, &items, query, studentID, n); err != nil {
		return nil, fmt.Errorf("list recent attendance: %w", err)
	}
	return items, nil
}

// List returns records matching the filter, newest first.
func (r *AttendanceRepository) List(ctx context.Context, filter models.AttendanceFilter) ([]models.AttendanceRecord, error) {
	query := strings.Builder{}
	query.WriteString(`SELECT ` + attendanceColumns + ` FROM attendance_records WHERE 1=1`)

	var args []interface{}
	if filter.StudentID != "" {
		args = append(args, filter.StudentID)
		fmt.Fprintf(&query, " AND student_id = $%d", len(args))
	}
	if filter.TrainerID != "" {
		args = append(args, filter.TrainerID)
		fmt.Fprintf(&query, " AND trainer_id = $%d", len(args))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		fmt.Fprintf(&query, " AND status = $%d", len(args))
	}
	query.WriteString(" ORDER BY marked_at DESC")
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		fmt.Fprintf(&query, " LIMIT $%d", len(args))
	}

	var items []models.AttendanceRecord
	if err := r.db.SelectContext(ctx, &items, query.String(), args...); err != nil {
		return nil, fmt.Errorf("list attendance: %w", err)
	}
	return items, nil
}
