package dto

// CreateEnrollmentRequest enrols a student into a course.
type CreateEnrollmentRequest struct {
	StudentID string  `json:"student_id" validate:"required"`
	CourseID  string  `json:"course_id" validate:"required"`
	TrainerID *string `json:"trainer_id"`
	StartDate string  `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate   string  `json:"end_date" validate:"required,datetime=2006-01-02"`
	ClassTime *string `json:"class_time"`
}
