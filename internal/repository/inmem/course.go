package inmem

import (
	"context"
	"database/sql"
	"sort"

	"github.com/google/uuid"

	"github.com/noah-isme/lms-admin-api/internal/models"
)

// CourseRepository serves courses from the store.
type CourseRepository struct {
	db *DB
}

func NewCourseRepository(db *DB) *CourseRepository {
	return &CourseRepository{db: db}
}

// Save inserts or replaces a course. Used for seeding.
func (repo *CourseRepository) Save(_ context.Context, c *models.Course) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	repo.db.courses[c.ID] = *c
	return nil
}

func (repo *CourseRepository) FindByID(_ context.Context, id string) (*models.Course, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()
	c, ok := repo.db.courses[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &c, nil
}

func (repo *CourseRepository) AddTrainer(_ context.Context, courseID, trainerID string) (bool, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()
	roster, ok := repo.db.courseTrainers[courseID]
	if !ok {
		roster = make(map[string]struct{})
		repo.db.courseTrainers[courseID] = roster
	}
	if _, exists := roster[trainerID]; exists {
		return false, nil
	}
	roster[trainerID] = struct{}{}
	return true, nil
}

func (repo *CourseRepository) Trainers(_ context.Context, courseID string) ([]string, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()
	ids := make([]string, 0, len(repo.db.courseTrainers[courseID]))
	for id := range repo.db.courseTrainers[courseID] {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}
