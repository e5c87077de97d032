package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/lms-admin-api/internal/models"
)

const noticeColumns = `id, title, content, audience, author_id, created_at, updated_at`

// NoticeRepository persists staff notices.
type NoticeRepository struct {
	db *sqlx.DB
}

// NewNoticeRepository constructs the repository.
func NewNoticeRepository(db *sqlx.DB) *NoticeRepository {
	return &NoticeRepository{db: db}
}

// Create inserts a notice.
func (r *NoticeRepository) Create(ctx context.Context, n *models.Notice) error {
	now := time.Now().UTC()
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	n.CreatedAt, n.UpdatedAt = now, now
	const query = `INSERT INTO notices (` + noticeColumns + `)
VALUES (:id, :title, :content, :audience, :author_id, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, n); err != nil {
		return fmt.Errorf("insert notice: %w", err)
	}
	return nil
}

// FindByID fetches a notice; missing rows surface as sql.ErrNoRows.
func (r *NoticeRepository) FindByID(ctx context.Context, id string) (*models.Notice, error) {
	const query = `SELECT ` + noticeColumns + ` FROM notices WHERE id = $1`
	var n models.Notice
	if err := r.db.GetContext(ctx, &n, query, id); err != nil {
		return nil, fmt.Errorf("get notice: %w", err)
	}
	return &n, nil
}

// Update rewrites the notice body and audience.
func (r *NoticeRepository) Update(ctx context.Context, n *models.Notice) error {
	n.UpdatedAt = time.Now().UTC()
	const query = `UPDATE notices SET title = $1, content = $2, audience = $3, updated_at = $4 WHERE id = $5`
	res, err := r.db.ExecContext(ctx, query, n.Title, n.Content, n.Audience, n.UpdatedAt, n.ID)
	if err != nil {
		return fmt.Errorf("update notice: %w", err)
	}
	return expectOneRow(res, "update notice")
}

// Delete removes a notice.
func (r *NoticeRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM notices WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete notice: %w", err)
	}
	return expectOneRow(res, "delete notice")
}

// List returns notices addressed to any of the filter audiences, newest first.
func (r *NoticeRepository) List(ctx context.Context, filter models.NoticeFilter) ([]models.Notice, error) {
	audiences := make([]string, 0, len(filter.Audiences))
	for _, a := range filter.Audiences {
		audiences = append(audiences, string(a))
	}
	query := `SELECT ` + noticeColumns + ` FROM notices WHERE audience = ANY($1) ORDER BY created_at DESC`
	args := []interface{}{pq.Array(audiences)}
	if filter.Limit > 0 {
		query += ` LIMIT $2`
		args = append(args, filter.Limit)
	}

	var items []models.Notice
	if err := r.db.SelectContext(ctx, &items, query, args...); err != nil {
		return nil, fmt.Errorf("list notices: %w", err)
	}
	return items, nil
}
