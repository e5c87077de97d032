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

// ReviewRepository serves attendance reviews from the store.
type ReviewRepository struct {
	db *DB
}

func NewReviewRepository(db *DB) *ReviewRepository {
	return &ReviewRepository{db: db}
}

func (repo *ReviewRepository) Create(_ context.Context, rv *models.AttendanceReview) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()
	if rv.ID == "" {
		rv.ID = uuid.NewString()
	}
	if rv.CreatedAt.IsZero() {
		rv.CreatedAt = time.Now().UTC()
	}
	repo.db.reviews[rv.ID] = cloneReview(*rv)
	repo.db.stamp(rv.ID)
	return nil
}

func (repo *ReviewRepository) FindByID(_ context.Context, id string) (*models.AttendanceReview, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()
	rv, ok := repo.db.reviews[id]
	if !ok {
		return nil, fmt.Errorf("get attendance review: %w", sql.ErrNoRows)
	}
	rv = cloneReview(rv)
	return &rv, nil
}

func (repo *ReviewRepository) Decide(_ context.Context, id string, status models.ReviewStatus, decidedBy string, at time.Time) (*models.AttendanceReview, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()
	current, ok := repo.db.reviews[id]
	if !ok || current.Status != models.ReviewPending {
		return nil, fmt.Errorf("decide attendance review %s: %w", id, repository.ErrStale)
	}
	current.Status = status
	current.DecidedBy, current.DecidedAt = &decidedBy, &at
	repo.db.reviews[id] = current
	current = cloneReview(current)
	return &current, nil
}

func (repo *ReviewRepository) List(_ context.Context, filter models.ReviewFilter) ([]models.AttendanceReview, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()
	items := make([]models.AttendanceReview, 0)
	for _, rv := range repo.db.reviews {
		if filter.AttendanceID != "" && rv.AttendanceID != filter.AttendanceID {
			continue
		}
		if filter.TrainerID != "" && rv.TrainerID != filter.TrainerID {
			continue
		}
		if filter.Status != "" && rv.Status != filter.Status {
			continue
		}
		items = append(items, cloneReview(rv))
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

func cloneReview(rv models.AttendanceReview) models.AttendanceReview {
	rv.DecidedBy = copyString(rv.DecidedBy)
	rv.DecidedAt = copyTime(rv.DecidedAt)
	return rv
}
