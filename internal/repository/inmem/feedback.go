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

// FeedbackRepository serves course feedback tickets from the store.
type FeedbackRepository struct {
	db *DB
}

func NewFeedbackRepository(db *DB) *FeedbackRepository {
	return &FeedbackRepository{db: db}
}

func (repo *FeedbackRepository) Create(_ context.Context, f *models.CourseFeedback) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()
	now := time.Now().UTC()
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	f.CreatedAt, f.UpdatedAt = now, now
	repo.db.feedback[f.ID] = cloneFeedback(*f)
	repo.db.stamp(f.ID)
	return nil
}

func (repo *FeedbackRepository) FindByID(_ context.Context, id string) (*models.CourseFeedback, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()
	f, ok := repo.db.feedback[id]
	if !ok {
		return nil, fmt.Errorf("get feedback: %w", sql.ErrNoRows)
	}
	f = cloneFeedback(f)
	return &f, nil
}

func (repo *FeedbackRepository) Respond(_ context.Context, id string, from models.TicketStatus, resp models.FeedbackResponse) (*models.CourseFeedback, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()
	current, ok := repo.db.feedback[id]
	if !ok || current.Status != from {
		return nil, fmt.Errorf("respond to feedback %s: %w", id, repository.ErrStale)
	}
	current.Status = resp.Status
	if resp.AdminRemarks != nil {
		current.AdminRemarks = copyString(resp.AdminRemarks)
	}
	responder, at := resp.RespondedBy, resp.RespondedAt
	current.RespondedBy, current.RespondedAt = &responder, &at
	current.UpdatedAt = at
	repo.db.feedback[id] = current
	current = cloneFeedback(current)
	return &current, nil
}

func (repo *FeedbackRepository) List(_ context.Context, filter models.FeedbackFilter) ([]models.CourseFeedback, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()
	items := make([]models.CourseFeedback, 0)
	for _, f := range repo.db.feedback {
		if filter.StudentID != "" && f.StudentID != filter.StudentID {
			continue
		}
		if filter.CourseID != "" && f.CourseID != filter.CourseID {
			continue
		}
		if filter.Status != "" && f.Status != filter.Status {
			continue
		}
		items = append(items, cloneFeedback(f))
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

func cloneFeedback(f models.CourseFeedback) models.CourseFeedback {
	f.AdminRemarks = copyString(f.AdminRemarks)
	f.RespondedBy = copyString(f.RespondedBy)
	f.RespondedAt = copyTime(f.RespondedAt)
	return f
}
