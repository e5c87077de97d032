package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/lms-admin-api/internal/models"
)

const feedbackColumns = `id, student_id, course_id, feedback_type, topic, content, status, admin_remarks, responded_by, responded_at, created_at, updated_at`

// FeedbackRepository persists course feedback tickets.
type FeedbackRepository struct {
	db *sqlx.DB
}

// NewFeedbackRepository constructs the repository.
func NewFeedbackRepository(db *sqlx.DB) *FeedbackRepository {
	return &FeedbackRepository{db: db}
}

// Create inserts a ticket.
func (r *FeedbackRepository) Create(ctx context.Context, f *models.CourseFeedback) error {
	now := time.Now().UTC()
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	f.CreatedAt, f.UpdatedAt = now, now
	const query = `INSERT INTO course_feedback (` + feedbackColumns + `)
VALUES (:id, :student_id, :course_id, :feedback_type, :topic, :content, :status, :admin_remarks, :responded_by, :responded_at, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, f); err != nil {
		return fmt.Errorf("insert feedback: %w", err)
	}
	return nil
}

// FindByID fetches a ticket; missing rows surface as sql.ErrNoRows.
func (r *FeedbackRepository) FindByID(ctx context.Context, id string) (*models.CourseFeedback, error) {
	const query = `SELECT ` + feedbackColumns + ` FROM course_feedback WHERE id = $1`
	var f models.CourseFeedback
	if err := r.db.GetContext(ctx, &f, query, id); err != nil {
		return nil, fmt.Errorf("get feedback: %w", err)
	}
	return &f, nil
}

// Respond applies resp only while the ticket is still in status from.
// A ticket that moved on in the meantime yields ErrStale.
func (r *FeedbackRepository) Respond(ctx context.Context, id string, from models.TicketStatus, resp models.FeedbackResponse) (*models.CourseFeedback, error) {
	const query = `UPDATE course_feedback
SET status = $1, admin_remarks = COALESCE($2::text, admin_remarks), responded_by = $3, responded_at = $4, updated_at = $4
WHERE id = $5 AND status = $6
RETURNING ` + feedbackColumns
	var f models.CourseFeedback
	err := r.db.GetContext(ctx, &f, query, resp.Status, resp.AdminRemarks, resp.RespondedBy, resp.RespondedAt, id, from)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("respond to feedback %s: %w", id, ErrStale)
	}
	if err != nil {
		return nil, fmt.Errorf("respond to feedback: %w", err)
	}
	return &f, nil
}

// List returns tickets matching the filter, newest first.
func (r *FeedbackRepository) List(ctx context.Context, filter models.FeedbackFilter) ([]models.CourseFeedback, error) {
	query := strings.Builder{}
	query.WriteString(`SELECT ` + feedbackColumns + ` FROM course_feedback WHERE 1=1`)

	var args []interface{}
	if filter.StudentID != "" {
		args = append(args, filter.StudentID)
		fmt.Fprintf(&query, " AND student_id = $%d", len(args))
	}
	if filter.CourseID != "" {
		args = append(args, filter.CourseID)
		fmt.Fprintf(&query, " AND course_id = $%d", len(args))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		fmt.Fprintf(&query, " AND status = $%d", len(args))
	}
	query.WriteString(" ORDER BY created_at DESC")
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		fmt.Fprintf(&query, " LIMIT $%d", len(args))
	}

	var items []models.CourseFeedback
	if err := r.db.SelectContext(ctx, &items, query.String(), args...); err != nil {
		return nil, fmt.Errorf("list feedback: %w", err)
	}
	return items, nil
}
