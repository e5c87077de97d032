package models

import "time"

// HoldStatus captures workflow states for course hold requests.
type HoldStatus string

const (
	HoldStatusPending  HoldStatus = "PENDING"
	HoldStatusApproved HoldStatus = "APPROVED"
	HoldStatusRejected HoldStatus = "REJECTED"
)

// CourseHold is a pending request to pause an enrollment.
type CourseHold struct {
	ID              string     `db:"id" json:"id"`
	StudentCourseID string     `db:"student_course_id" json:"student_course_id"`
	StartDate       time.Time  `db:"start_date" json:"start_date"`
	EndDate         time.Time  `db:"end_date" json:"end_date"`
	Reason          string     `db:"reason" json:"reason"`
	Status          HoldStatus `db:"status" json:"status"`
	RequestedBy     *string    `db:"requested_by" json:"requested_by,omitempty"`
	ApprovedBy      *string    `db:"approved_by" json:"approved_by,omitempty"`
	Processed       bool       `db:"processed" json:"processed"`
	CreatedAt       time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time  `db:"updated_at" json:"updated_at"`
}

// Days returns the inclusive length of the hold.
func (h CourseHold) Days() int {
	return InclusiveDays(h.StartDate, h.EndDate)
}

// CourseHoldHistory archives the outcome of a processed hold.
type CourseHoldHistory struct {
	ID              string     `db:"id" json:"id"`
	StudentID       string     `db:"student_id" json:"student_id"`
	StudentCourseID *string    `db:"student_course_id" json:"student_course_id,omitempty"`
	StartDate       time.Time  `db:"start_date" json:"start_date"`
	EndDate         time.Time  `db:"end_date" json:"end_date"`
	Reason          string     `db:"reason" json:"reason"`
	Status          HoldStatus `db:"status" json:"status"`
	DecidedBy       *string    `db:"decided_by" json:"decided_by,omitempty"`
	CreatedAt       time.Time  `db:"created_at" json:"created_at"`
}

// HoldFilter scopes pending hold listings.
type HoldFilter struct {
	StudentCourseID string
	StudentID       string
	Limit           int
}
