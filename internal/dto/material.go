package dto

// CreateMaterialRequest shares a topic with a course or one enrollment.
// ExpiresAt is RFC 3339; empty means the default lifetime.
type CreateMaterialRequest struct {
	Topic           string  `json:"topic" validate:"required,max=255"`
	CourseID        *string `json:"course_id"`
	StudentCourseID *string `json:"student_course_id"`
	ExpiresAt       string  `json:"expires_at"`
}
