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

// HoldRepository serves course holds and their history from the store.
type HoldRepository struct {
	db *DB
}

func NewHoldRepository(db *DB) *HoldRepository {
	return &HoldRepository{db: db}
}

func (repo *HoldRepository) Create(_ context.Context, h *models.CourseHold) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()
	now := time.Now().UTC()
	if h.ID == "" {
		h.ID = uuid.NewString()
	}
	h.CreatedAt, h.UpdatedAt = now, now
	repo.db.holds[h.ID] = *h
	repo.db.stamp(h.ID)
	return nil
}

func (repo *HoldRepository) ListPending(_ context.Context, filter models.HoldFilter) ([]models.CourseHold, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()
	items := make([]models.CourseHold, 0)
	for _, h := range repo.db.holds {
		if h.Status != models.HoldStatusPending {
			continue
		}
		if filter.StudentCourseID != "" && h.StudentCourseID != filter.StudentCourseID {
			continue
		}
		if filter.StudentID != "" && repo.db.enrollments[h.StudentCourseID].StudentID != filter.StudentID {
			continue
		}
		items = append(items, h)
	}
	sort.Slice(items, func(i, j int) bool { return repo.db.seqOf[items[i].ID] < repo.db.seqOf[items[j].ID] })
	if filter.Limit > 0 && len(items) > filter.Limit {
		items = items[:filter.Limit]
	}
	return items, nil
}

func (repo *HoldRepository) History(_ context.Context, studentID string) ([]models.CourseHoldHistory, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()
	items := make([]models.CourseHoldHistory, 0)
	for i := len(repo.db.holdHistory) - 1; i >= 0; i-- {
		if h := repo.db.holdHistory[i]; h.StudentID == studentID {
			items = append(items, h)
		}
	}
	return items, nil
}

func (repo *HoldRepository) WithinTx(ctx context.Context, fn func(repository.HoldTx) error) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	tx := &holdTx{db: repo.db, enrollments: make(map[string]models.Enrollment), deleted: make(map[string]bool)}
	if err := fn(tx); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	tx.commit()
	return nil
}

type holdTx struct {
	db          *DB
	enrollments map[string]models.Enrollment
	archived    []models.CourseHoldHistory
	deleted     map[string]bool
}

func (t *holdTx) LockHold(_ context.Context, id string) (*models.CourseHold, error) {
	h, ok := t.db.holds[id]
	if !ok || t.deleted[id] {
		return nil, fmt.Errorf("lock course hold: %w", sql.ErrNoRows)
	}
	return &h, nil
}

func (t *holdTx) LockEnrollment(_ context.Context, id string) (*models.Enrollment, error) {
	e, ok := t.enrollments[id]
	if !ok {
		if e, ok = t.db.enrollments[id]; !ok {
			return nil, fmt.Errorf("lock enrollment: %w", sql.ErrNoRows)
		}
	}
	e.TrainerID = copyString(e.TrainerID)
	return &e, nil
}

func (t *holdTx) UpdateEnrollment(_ context.Context, e *models.Enrollment) error {
	staged := *e
	staged.TrainerID = copyString(e.TrainerID)
	t.enrollments[e.ID] = staged
	return nil
}

func (t *holdTx) ArchiveHold(_ context.Context, h *models.CourseHoldHistory) error {
	if h.ID == "" {
		h.ID = uuid.NewString()
	}
	if h.CreatedAt.IsZero() {
		h.CreatedAt = time.Now().UTC()
	}
	t.archived = append(t.archived, *h)
	return nil
}

func (t *holdTx) DeleteHold(_ context.Context, id string) error {
	t.deleted[id] = true
	return nil
}

func (t *holdTx) commit() {
	for id, e := range t.enrollments {
		t.db.enrollments[id] = e
	}
	t.db.holdHistory = append(t.db.holdHistory, t.archived...)
	for id := range t.deleted {
		delete(t.db.holds, id)
		delete(t.db.seqOf, id)
	}
}
