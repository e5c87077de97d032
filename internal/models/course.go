package models

import "time"

// Course is a catalogue entry students enrol into.
type Course struct {
	ID                   string     `db:"id" json:"id"`
	Name                 string     `db:"name" json:"name"`
	Description          string     `db:"description" json:"description"`
	ClassDurationMinutes int        `db:"class_duration_minutes" json:"class_duration_minutes"`
	IsGroupClass         bool       `db:"is_group_class" json:"is_group_class"`
	ClassTime            *TimeOfDay `db:"class_time" json:"class_time,omitempty"`
}

// Enrollment links a student to a course for a date range; trainer is nil for group classes.
type Enrollment struct {
	ID        string     `db:"id" json:"id"`
	StudentID string     `db:"student_id" json:"student_id"`
	CourseID  string     `db:"course_id" json:"course_id"`
	TrainerID *string    `db:"trainer_id" json:"trainer_id,omitempty"`
	StartDate time.Time  `db:"start_date" json:"start_date"`
	EndDate   time.Time  `db:"end_date" json:"end_date"`
	ClassTime *TimeOfDay `db:"class_time" json:"class_time,omitempty"`
}
