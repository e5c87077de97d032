package inmem

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/noah-isme/lms-admin-api/internal/models"
)

// MaterialRepository serves study materials from the store.
type MaterialRepository struct {
	db *DB
}

func NewMaterialRepository(db *DB) *MaterialRepository {
	return &MaterialRepository{db: db}
}

func (repo *MaterialRepository) Create(_ context.Context, m *models.StudyMaterial) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}
	if m.ExpiresAt.IsZero() {
		m.ExpiresAt = m.CreatedAt.Add(models.DefaultMaterialLifetime)
	}
	repo.db.materials[m.ID] = cloneMaterial(*m)
	repo.db.stamp(m.ID)
	return nil
}

func (repo *MaterialRepository) FindByID(_ context.Context, id string) (*models.StudyMaterial, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()
	m, ok := repo.db.materials[id]
	if !ok {
		return nil, fmt.Errorf("get study material: %w", sql.ErrNoRows)
	}
	m = cloneMaterial(m)
	return &m, nil
}

func (repo *MaterialRepository) Delete(_ context.Context, id string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()
	if _, ok := repo.db.materials[id]; !ok {
		return fmt.Errorf("delete study material: %w", sql.ErrNoRows)
	}
	delete(repo.db.materials, id)
	return nil
}

func (repo *MaterialRepository) List(_ context.Context, filter models.MaterialFilter) ([]models.StudyMaterial, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()
	items := make([]models.StudyMaterial, 0)
	for _, m := range repo.db.materials {
		if filter.CourseID != "" && deref(m.CourseID) != filter.CourseID {
			continue
		}
		if filter.StudentCourseID != "" && deref(m.StudentCourseID) != filter.StudentCourseID {
			continue
		}
		if filter.ActiveAt != nil && m.Expired(*filter.ActiveAt) {
			continue
		}
		items = append(items, cloneMaterial(m))
	}
	sort.Slice(items, func(i, j int) bool {
		if !items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].CreatedAt.After(items[j].CreatedAt)
		}
		return repo.db.seqOf[items[i].ID] > repo.db.seqOf[items[j].ID]
	})
	if filter.Limit > 0 && len(items) > filter.Limit {
		items = items[:filter.Limit]
	}
	return items, nil
}

func cloneMaterial(m models.StudyMaterial) models.StudyMaterial {
	m.CourseID = copyString(m.CourseID)
	m.StudentCourseID = copyString(m.StudentCourseID)
	m.CreatedBy = copyString(m.CreatedBy)
	return m
}
