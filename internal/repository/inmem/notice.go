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

// NoticeRepository serves notices from the store.
type NoticeRepository struct {
	db *DB
}

func NewNoticeRepository(db *DB) *NoticeRepository {
	return &NoticeRepository{db: db}
}

func (repo *NoticeRepository) Create(_ context.Context, n *models.Notice) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()
	now := time.Now().UTC()
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	n.CreatedAt, n.UpdatedAt = now, now
	repo.db.notices[n.ID] = *n
	repo.db.stamp(n.ID)
	return nil
}

func (repo *NoticeRepository) FindByID(_ context.Context, id string) (*models.Notice, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()
	n, ok := repo.db.notices[id]
	if !ok {
		return nil, fmt.Errorf("get notice: %w", sql.ErrNoRows)
	}
	return &n, nil
}

func (repo *NoticeRepository) Update(_ context.Context, n *models.Notice) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()
	current, ok := repo.db.notices[n.ID]
	if !ok {
		return fmt.Errorf("update notice: %w", sql.ErrNoRows)
	}
	n.UpdatedAt = time.Now().UTC()
	current.Title, current.Content, current.Audience, current.UpdatedAt = n.Title, n.Content, n.Audience, n.UpdatedAt
	repo.db.notices[n.ID] = current
	return nil
}

func (repo *NoticeRepository) Delete(_ context.Context, id string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()
	if _, ok := repo.db.notices[id]; !ok {
		return fmt.Errorf("delete notice: %w", sql.ErrNoRows)
	}
	delete(repo.db.notices, id)
	return nil
}

func (repo *NoticeRepository) List(_ context.Context, filter models.NoticeFilter) ([]models.Notice, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()
	allowed := make(map[models.NoticeAudience]struct{}, len(filter.Audiences))
	for _, a := range filter.Audiences {
		allowed[a] = struct{}{}
	}
	items := make([]models.Notice, 0)
	for _, n := range repo.db.notices {
		if _, ok := allowed[n.Audience]; ok {
			items = append(items, n)
		}
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
