package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/lms-admin-api/internal/models"
)

const enrollmentColumns = `id, student_id, course_id, trainer_id, start_date, end_date, class_time`

// EnrollmentRepository persists student enrollments.
type EnrollmentRepository struct {
	db *sqlx.DB
}

// NewEnrollmentRepository constructs the repository.
func NewEnrollmentRepository(db *sqlx.DB) *EnrollmentRepository {
	return &EnrollmentRepository{db: db}
}

// Create inserts an enrollment, assigning an id when empty.
func (r *EnrollmentRepository) Create(ctx context.Context, e *models.Enrollment) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	const query = `INSERT INTO enrollments (` + enrollmentColumns + `) VALUES (:id, :student_id, :course_id, :trainer_id, :start_date, :end_date, :class_time)`
	if _, err := r.db.NamedExecContext(ctx, query, e); err != nil {
		return classify(fmt.Errorf("insert enrollment: %w", err))
	}
	return nil
}

// FindByID fetches an enrollment; missing rows surface as sql.ErrNoRows.
func (r *EnrollmentRepository) FindByID(ctx context.Context, id string) (*models.Enrollment, error) {
	const query = `SELECT ` + enrollmentColumns + ` FROM enrollments WHERE id = $1`
	var e models.Enrollment
	if err := r.db.GetContext(ctx, &e, query, id); err != nil {
		return nil, fmt.Errorf("get enrollment: %w", err)
	}
	return &e, nil
}
