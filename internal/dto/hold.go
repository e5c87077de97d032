package dto

import "github.com/noah-isme/lms-admin-api/internal/models"

// CreateHoldRequest asks to pause an enrollment for a date range.
type CreateHoldRequest struct {
	StudentCourseID string `json:"student_course_id" validate:"required"`
	StartDate       string `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate         string `json:"end_date" validate:"required,datetime=2006-01-02"`
	Reason          string `json:"reason" validate:"max=1000"`
}

// HoldDecisionResult reports the outcome of an approve or reject call.
// Applied is false when the hold was already processed or no longer exists.
type HoldDecisionResult struct {
	HoldID     string                    `json:"hold_id"`
	Applied    bool                      `json:"applied"`
	Status     models.HoldStatus         `json:"status,omitempty"`
	HoldDays   int                       `json:"hold_days,omitempty"`
	Enrollment *models.Enrollment        `json:"enrollment,omitempty"`
	History    *models.CourseHoldHistory `json:"history,omitempty"`
}
