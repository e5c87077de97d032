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

const reviewColumns = `id, attendance_id, trainer_id, remark, status, decided_by, decided_at, created_at`

// ReviewRepository persists trainer reviews of attendance records.
type ReviewRepository struct {
	db *sqlx.DB
}

// NewReviewRepository constructs the repository.
func NewReviewRepository(db *sqlx.DB) *ReviewRepository {
	return &ReviewRepository{db: db}
}

// Create inserts a review.
func (r *ReviewRepository) Create(ctx context.Context, rv *models.AttendanceReview) error {
	if rv.ID == "" {
		rv.ID = uuid.NewString()
	}
	if rv.CreatedAt.IsZero() {
		rv.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO attendance_reviews (` + reviewColumns + `)
VALUES (:id, :attendance_id, :trainer_id, :remark, :status, :decided_by, :decided_at, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, rv); err != nil {
		return fmt.Errorf("insert attendance review: %w", err)
	}
	return nil
}

// FindByID fetches a review; missing rows surface as sql.ErrNoRows.
func (r *ReviewRepository) FindByID(ctx context.Context, id string) (*models.AttendanceReview, error) {
	const query = `SELECT ` + reviewColumns + ` FROM attendance_reviews WHERE id = $1`
	var rv models.AttendanceReview
	if err := r.db.GetContext(ctx, &rv, query, id); err != nil {
		return nil, fmt.Errorf("get attendance review: %w", err)
	}
	return &rv, nil
}

// Decide settles a pending review. A review that is no longer pending yields ErrStale.
func (r *ReviewRepository) Decide(ctx context.Context, id string, status models.ReviewStatus, decidedBy string, at time.Time) (*models.AttendanceReview, error) {
	const query = `UPDATE attendance_reviews SET status = $1, decided_by = $2, decided_at = $3
WHERE id = $4 AND status = 'PENDING'
RETURNING ` + reviewColumns
	var rv models.AttendanceReview
	err := r.db.GetContext(ctx, &rv, query, status, decidedBy, at, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("decide attendance review %s: %w", id, ErrStale)
	}
	if err != nil {
		return nil, fmt.Errorf("decide attendance review: %w", err)
	}
	return &rv, nil
}

// List returns reviews matching the filter, newest first.
func (r *ReviewRepository) List(ctx context.Context, filter models.ReviewFilter) ([]models.AttendanceReview, error) {
	query := strings.Builder{}
	query.WriteString(`SELECT ` + reviewColumns + ` FROM attendance_reviews WHERE 1=1`)

	var args []interface{}
	if filter.AttendanceID != "" {
		args = append(args, filter.AttendanceID)
		fmt.Fprintf(&query, " AND attendance_id = $%d", len(args))
	}
	if filter.TrainerID != "" {
		args = append(args, filter.TrainerID)
		fmt.Fprintf(&query, " AND trainer_id = $%d", len(args))
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

	var items []models.AttendanceReview
	if err := r.db.SelectContext(ctx, &items, query.String(), args...); err != nil {
		return nil, fmt.Errorf("list attendance reviews: %w", err)
	}
	return items, nil
}
