// Package inmem is a process-local store with the same contracts as the
// Postgres repositories. Transactions hold the store lock for their whole
// callback and apply staged writes only on success.
package inmem

import (
	"sync"
	"time"

	"github.com/noah-isme/lms-admin-api/internal/models"
)

type ledgerKey struct {
	userID string
	period string
}

func keyOf(userID string, period time.Time) ledgerKey {
	return ledgerKey{userID: userID, period: period.Format("2006-01-02")}
}

// DB holds every table behind a single lock.
type DB struct {
	mutex sync.RWMutex

	courses        map[string]models.Course
	courseTrainers map[string]map[string]struct{}
	enrollments    map[string]models.Enrollment
	assignments    map[string]models.TrainerAssignment
	holds          map[string]models.CourseHold
	holdHistory    []models.CourseHoldHistory
	attendance     map[string]models.AttendanceRecord
	leaveRequests  map[string]models.LeaveRequest
	ledgers        map[ledgerKey]models.LeaveHistory
	notices        map[string]models.Notice
	feedback       map[string]models.CourseFeedback
	reviews        map[string]models.AttendanceReview
	materials      map[string]models.StudyMaterial
	// seq orders inserts so equal timestamps still sort deterministically.
	seq   int64
	seqOf map[string]int64
}

// New returns an empty store.
func New() *DB {
	return &DB{
		courses:        make(map[string]models.Course),
		courseTrainers: make(map[string]map[string]struct{}),
		enrollments:    make(map[string]models.Enrollment),
		assignments:    make(map[string]models.TrainerAssignment),
		holds:          make(map[string]models.CourseHold),
		attendance:     make(map[string]models.AttendanceRecord),
		leaveRequests:  make(map[string]models.LeaveRequest),
		ledgers:        make(map[ledgerKey]models.LeaveHistory),
		notices:        make(map[string]models.Notice),
		feedback:       make(map[string]models.CourseFeedback),
		reviews:        make(map[string]models.AttendanceReview),
		materials:      make(map[string]models.StudyMaterial),
		seqOf:          make(map[string]int64),
	}
}

// caller must hold the write lock
func (db *DB) stamp(id string) {
	db.seq++
	db.seqOf[id] = db.seq
}

func copyString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
