package inmem

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/noah-isme/lms-admin-api/internal/models"
)

// EnrollmentRepository serves enrollments from the store.
type EnrollmentRepository struct {
	db *DB
}

func NewEnrollmentRepository(db *DB) *EnrollmentRepository {
	return &EnrollmentRepository{db: db}
}

func (repo *EnrollmentRepository) Create(_ context.Context, e *models.Enrollment) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	stored := *e
	stored.TrainerID = copyString(e.TrainerID)
	repo.db.enrollments[e.ID] = stored
	return nil
}

func (repo *EnrollmentRepository) FindByID(_ context.Context, id string) (*models.Enrollment, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()
	e, ok := repo.db.enrollments[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	e.TrainerID = copyString(e.TrainerID)
	return &e, nil
}
