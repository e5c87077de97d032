package models

import "time"

// TrainerAssignment books a trainer for a course over a date range and daily time range.
type TrainerAssignment struct {
	ID              string    `db:"id" json:"id"`
	TrainerID       string    `db:"trainer_id" json:"trainer_id"`
	CourseID        string    `db:"course_id" json:"course_id"`
	StudentCourseID *string   `db:"student_course_id" json:"student_course_id,omitempty"`
	StartDate       time.Time `db:"start_date" json:"start_date"`
	EndDate         time.Time `db:"end_date" json:"end_date"`
	StartTime       TimeOfDay `db:"start_time" json:"start_time"`
	EndTime         TimeOfDay `db:"end_time" json:"end_time"`
	DurationMinutes int       `db:"duration_minutes" json:"duration_minutes"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
}

// Overlaps reports whether both assignments share at least one date and their
// daily time ranges intersect. Touching boundaries do not overlap.
func (a TrainerAssignment) Overlaps(b TrainerAssignment) bool {
	datesIntersect := !a.StartDate.After(b.EndDate) && !b.StartDate.After(a.EndDate)
	timesIntersect := a.StartTime < b.EndTime && b.StartTime < a.EndTime
	return datesIntersect && timesIntersect
}
