package inmem

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/noah-isme/lms-admin-api/internal/models"
	"github.com/noah-isme/lms-admin-api/internal/repository"
)

// AssignmentRepository serves trainer assignments from the store.
type AssignmentRepository struct {
	db *DB
}

func NewAssignmentRepository(db *DB) *AssignmentRepository {
	return &AssignmentRepository{db: db}
}

func (repo *AssignmentRepository) ListByTrainer(_ context.Context, trainerID string) ([]models.TrainerAssignment, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()
	return listByTrainer(repo.db, trainerID), nil
}

// caller must hold the lock
func listByTrainer(db *DB, trainerID string) []models.TrainerAssignment {
	items := make([]models.TrainerAssignment, 0)
	for _, a := range db.assignments {
		if a.TrainerID == trainerID {
			a.StudentCourseID = copyString(a.StudentCourseID)
			items = append(items, a)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		if !items[i].StartDate.Equal(items[j].StartDate) {
			return items[i].StartDate.Before(items[j].StartDate)
		}
		return items[i].StartTime < items[j].StartTime
	})
	return items
}

func (repo *AssignmentRepository) FindByID(_ context.Context, id string) (*models.TrainerAssignment, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()
	a, ok := repo.db.assignments[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	a.StudentCourseID = copyString(a.StudentCourseID)
	return &a, nil
}

// WithinTx holds the store lock for the whole callback, so concurrent bookings
// for a trainer are validated one at a time. Writes apply immediately; a
// failed callback is expected not to have written.
func (repo *AssignmentRepository) WithinTx(_ context.Context, fn func(repository.AssignmentTx) error) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()
	return fn(&assignmentTx{db: repo.db})
}

type assignmentTx struct {
	db *DB
}

func (tx *assignmentTx) LockTrainer(_ context.Context, trainerID string) ([]models.TrainerAssignment, error) {
	return listByTrainer(tx.db, trainerID), nil
}

func (tx *assignmentTx) Create(_ context.Context, a *models.TrainerAssignment) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}
	if err := checkUnique(tx.db, *a); err != nil {
		return err
	}
	stored := *a
	stored.StudentCourseID = copyString(a.StudentCourseID)
	tx.db.assignments[a.ID] = stored
	return nil
}

func (tx *assignmentTx) Update(_ context.Context, a *models.TrainerAssignment) error {
	current, ok := tx.db.assignments[a.ID]
	if !ok {
		return fmt.Errorf("update trainer assignment: %w", sql.ErrNoRows)
	}
	if err := checkUnique(tx.db, *a); err != nil {
		return err
	}
	stored := *a
	stored.CreatedAt = current.CreatedAt
	stored.StudentCourseID = copyString(a.StudentCourseID)
	tx.db.assignments[a.ID] = stored
	return nil
}

func (repo *AssignmentRepository) Delete(_ context.Context, id string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()
	if _, ok := repo.db.assignments[id]; !ok {
		return fmt.Errorf("delete trainer assignment: %w", sql.ErrNoRows)
	}
	delete(repo.db.assignments, id)
	return nil
}

// checkUnique mirrors the trainer_assignments_unique_slot index.
func checkUnique(db *DB, a models.TrainerAssignment) error {
	for _, other := range db.assignments {
		if other.ID == a.ID {
			continue
		}
		if other.TrainerID == a.TrainerID && other.CourseID == a.CourseID &&
			deref(other.StudentCourseID) == deref(a.StudentCourseID) &&
			other.StartTime == a.StartTime && other.StartDate.Equal(a.StartDate) {
			return fmt.Errorf("insert trainer assignment: %w", repository.ErrDuplicate)
		}
	}
	return nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
