package dto

import "github.com/noah-isme/lms-admin-api/internal/models"

// NoticeRequest creates or replaces a notice.
type NoticeRequest struct {
	Title    string                `json:"title" validate:"required,max=255"`
	Content  string                `json:"content" validate:"required"`
	Audience models.NoticeAudience `json:"audience" validate:"required"`
}
