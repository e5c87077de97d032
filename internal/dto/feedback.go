package dto

import "github.com/noah-isme/lms-admin-api/internal/models"

// CreateFeedbackRequest raises a feedback ticket about a course.
type CreateFeedbackRequest struct {
	CourseID string              `json:"course_id" validate:"required"`
	Type     models.FeedbackType `json:"feedback_type" validate:"required"`
	Topic    string              `json:"topic" validate:"required,max=255"`
	Content  string              `json:"content" validate:"required"`
}

// RespondFeedbackRequest moves a ticket forward with optional remarks.
type RespondFeedbackRequest struct {
	Status       models.TicketStatus `json:"status" validate:"required"`
	AdminRemarks *string             `json:"admin_remarks" validate:"omitempty,max=5000"`
}
