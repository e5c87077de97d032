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

const materialColumns = `id, topic, course_id, student_course_id, created_by, created_at, expires_at`

// MaterialRepository persists study materials.
type MaterialRepository struct {
	db *sqlx.DB
}

// NewMaterialRepository constructs the repository.
func NewMaterialRepository(db *sqlx.DB) *MaterialRepository {
	return &MaterialRepository{db: db}
}

// Create inserts a material, defaulting its expiry to DefaultMaterialLifetime after creation.
func (r *MaterialRepository) Create(ctx context.Context, m *models.StudyMaterial) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}
	if m.ExpiresAt.IsZero() {
		m.ExpiresAt = m.CreatedAt.Add(models.DefaultMaterialLifetime)
	}
	const query = `INSERT INTO study_materials (` + materialColumns + `)
VALUES (:id, :topic, :course_id, :student_course_id, :created_by, :created_at, :expires_at)`
	if _, err := r.db.NamedExecContext(ctx, query, m); err != nil {
		return fmt.Errorf("insert study material: %w", err)
	}
	return nil
}

// FindByID fetches a material; missing rows surface as sql.ErrNoRows.
func (r *MaterialRepository) FindByID(ctx context.Context, id string) (*models.StudyMaterial, error) {
	const query = `SELECT ` + materialColumns + ` FROM study_materials WHERE id = $1`
	var m models.StudyMaterial
	if err := r.db.GetContext(ctx, &m, query, id); err != nil {
		return nil, fmt.Errorf("get study material: %w", err)
	}
	return &m, nil
}

// Delete removes a material.
func (r *MaterialRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM study_materials WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete study material: %w", err)
	}
	return expectOneRow(res, "delete study material")
}

// List returns materials matching the filter, newest first.
func (r *MaterialRepository) List(ctx context.Context, filter models.MaterialFilter) ([]models.StudyMaterial, error) {
	query := strings.Builder{}
	query.WriteString(`SELECT ` + materialColumns + ` FROM study_materials WHERE 1=1`)

	var args []interface{}
	if filter.CourseID != "" {
		args = append(args, filter.CourseID)
		fmt.Fprintf(&query, " AND course_id = $%d", len(args))
	}
	if filter.StudentCourseID != "" {
		args = append(args, filter.StudentCourseID)
		fmt.Fprintf(&query, " AND student_course_id = $%d", len(args))
	}
	if filter.ActiveAt != nil {
		args = append(args, *filter.ActiveAt)
		fmt.Fprintf(&query, " AND expires_at > $%d", len(args))
	}
	query.WriteString(" ORDER BY created_at DESC")
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		fmt.Fprintf(&query, " LIMIT $%d", len(args))
	}

	var items []models.StudyMaterial
	if err := r.db.SelectContext(ctx, &items, query.String(), args...); err != nil {
		return nil, fmt.Errorf("list study materials: %w", err)
	}
	return items, nil
}
