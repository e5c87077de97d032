package dto

// AssignmentRequest is the payload for creating or updating a trainer assignment.
type AssignmentRequest struct {
	TrainerID       string  `json:"trainer_id" validate:"required"`
	CourseID        string  `json:"course_id" validate:"required"`
	StudentCourseID *string `json:"student_course_id"`
	StartDate       string  `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate         string  `json:"end_date" validate:"required,datetime=2006-01-02"`
	StartTime       string  `json:"start_time" validate:"required"`
	EndTime         string  `json:"end_time" validate:"required"`
	DurationMinutes int     `json:"duration_minutes" validate:"omitempty,min=1"`
}
