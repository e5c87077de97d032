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

// AttendanceRepository serves attendance records from the store.
type AttendanceRepository struct {
	db *DB
}

func NewAttendanceRepository(db *DB) *AttendanceRepository {
	return &AttendanceRepository{db: db}
}

func (repo *AttendanceRepository) Create(_ context.Context, rec *models.AttendanceRecord) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.MarkedAt.IsZero() {
		rec.MarkedAt = time.Now().UTC()
	}
	if rec.StudentFeedback == "" {
		rec.StudentFeedback = models.FeedbackNoAction
	}
	stored := *rec
	stored.TrainerID = copyString(rec.TrainerID)
	repo.db.attendance[rec.ID] = stored
	repo.db.stamp(rec.ID)
	return nil
}

func (repo *AttendanceRepository) FindByID(_ context.Context, id string) (*models.AttendanceRecord, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()
	rec, ok := repo.db.attendance[id]
	if !ok {
		return nil, fmt.Errorf("get attendance record: %w", sql.ErrNoRows)
	}
	rec.TrainerID = copyString(rec.TrainerID)
	return &rec, nil
}

func (repo *AttendanceRepository) UpdateClassContent(_ context.Context, id, content string) (*models.AttendanceRecord, error) {
	rec, _, err := repo.patch(id, "update class content", func(rec *models.AttendanceRecord) {
		rec.ClassContent = content
	})
	return rec, err
}

func (repo *AttendanceRepository) UpdateFeedback(_ context.Context, id string, feedback models.StudentFeedback) (*models.AttendanceRecord, error) {
	rec, _, err := repo.patch(id, "update feedback", func(rec *models.AttendanceRecord) {
		rec.StudentFeedback = feedback
	})
	return rec, err
}

func (repo *AttendanceRepository) UpdateStatus(_ context.Context, id string, status models.AttendanceStatus) (*models.AttendanceRecord, models.AttendanceStatus, error) {
	return repo.patch(id, "update attendance status", func(rec *models.AttendanceRecord) {
		rec.Status = status
	})
}

// patch applies fn to the stored record under the write lock and returns the
// updated copy together with the status it had before.
func (repo *AttendanceRepository) patch(id, action string, fn func(*models.AttendanceRecord)) (*models.AttendanceRecord, models.AttendanceStatus, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()
	current, ok := repo.db.attendance[id]
	if !ok {
		return nil, "", fmt.Errorf("%s: %w", action, sql.ErrNoRows)
	}
	previous := current.Status
	fn(&current)
	repo.db.attendance[id] = current
	current.TrainerID = copyString(current.TrainerID)
	return &current, previous, nil
}

func (repo *AttendanceRepository) RecentByStudent(ctx context.Context, studentID string, n int) ([]models.AttendanceRecord, error) {
	return repo.List(ctx, models.AttendanceFilter{StudentID: studentID, Limit: n})
}

func (repo *AttendanceRepository) List(_ context.Context, filter models.AttendanceFilter) ([]models.AttendanceRecord, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()
	items := make([]models.AttendanceRecord, 0)
	for _, rec := range repo.db.attendance {
		if filter.StudentID != "" && rec.StudentID != filter.StudentID {
			continue
		}
		if filter.TrainerID != "" && deref(rec.TrainerID) != filter.TrainerID {
			continue
		}
		if filter.Status != "" && rec.Status != filter.Status {
			continue
		}
		rec.TrainerID = copyString(rec.TrainerID)
		items = append(items, rec)
	}
	sort.Slice(items, func(i, j int) bool {
		if !items[i].MarkedAt.Equal(items[j].MarkedAt) {
			return items[i].MarkedAt.After(items[j].MarkedAt)
		}
		return repo.db.seqOf[items[i].ID] > repo.db.seqOf[items[j].ID]
	})
	if filter.Limit > 0 && len(items) > filter.Limit {
		items = items[:filter.Limit]
	}
	return items, nil
}
