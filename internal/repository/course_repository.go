package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/lms-admin-api/internal/models"
)

// CourseRepository reads courses and maintains their trainer roster.
type CourseRepository struct {
	db *sqlx.DB
}

// NewCourseRepository constructs the repository.
func NewCourseRepository(db *sqlx.DB) *CourseRepository {
	return &CourseRepository{db: db}
}

// FindByID fetches a course; missing rows surface as sql.ErrNoRows.
func (r *CourseRepository) FindByID(ctx context.Context, id string) (*models.Course, error) {
	const query = `SELECT id, name, description, class_duration_minutes, is_group_class, class_time FROM courses WHERE id = $1`
	var course models.Course
	if err := r.db.GetContext(ctx, &course, query, id); err != nil {
		return nil, fmt.Errorf("get course: %w", err)
	}
	return &course, nil
}

// AddTrainer links the trainer to the course roster and reports whether the link is new.
func (r *CourseRepository) AddTrainer(ctx context.Context, courseID, trainerID string) (bool, error) {
	const query = `INSERT INTO course_trainers (course_id, trainer_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`
	res, err := r.db.ExecContext(ctx, query, courseID, trainerID)
	if err != nil {
		return false, fmt.Errorf("add course trainer: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("add course trainer rows: %w", err)
	}
	return affected > 0, nil
}

// Trainers lists the trainer ids on the course roster.
func (r *CourseRepository) Trainers(ctx context.Context, courseID string) ([]string, error) {
	const query = `SELECT trainer_id FROM course_trainers WHERE course_id = $1 ORDER BY trainer_id`
	var ids []string
	if err := r.db.SelectContext(ctx, &ids, query, courseID); err != nil {
		return nil, fmt.Errorf("list course trainers: %w", err)
	}
	return ids, nil
}
