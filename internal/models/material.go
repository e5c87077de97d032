package models

import "time"

// DefaultMaterialLifetime applies when a study material has no expiry.
const DefaultMaterialLifetime = 90 * 24 * time.Hour

// StudyMaterial is a topic shared with a course or a single enrollment.
type StudyMaterial struct {
	ID              string    `db:"id" json:"id"`
	Topic           string    `db:"topic" json:"topic"`
	CourseID        *string   `db:"course_id" json:"course_id,omitempty"`
	StudentCourseID *string   `db:"student_course_id" json:"student_course_id,omitempty"`
	CreatedBy       *string   `db:"created_by" json:"created_by,omitempty"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
	ExpiresAt       time.Time `db:"expires_at" json:"expires_at"`
}

// Expired reports whether the material is past its expiry at now.
func (m StudyMaterial) Expired(now time.Time) bool {
	return !now.Before(m.ExpiresAt)
}

// MaterialFilter scopes study material listings. ActiveAt hides materials
// expired at that instant when set.
type MaterialFilter struct {
	CourseID        string
	StudentCourseID string
	ActiveAt        *time.Time
	Limit           int
}
