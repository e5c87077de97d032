package dto

import "github.com/noah-isme/lms-admin-api/internal/models"

// MarkAttendanceRequest records a class attendance mark.
type MarkAttendanceRequest struct {
	StudentID    string                  `json:"student_id" validate:"required"`
	TrainerID    *string                 `json:"trainer_id"`
	Status       models.AttendanceStatus `json:"status" validate:"required"`
	ClassContent string                  `json:"class_content" validate:"max=5000"`
}

// ClassContentRequest sets the trainer's class notes.
type ClassContentRequest struct {
	ClassContent string `json:"class_content" validate:"max=5000"`
}

// FeedbackRequest sets the student's feedback on a class.
type FeedbackRequest struct {
	StudentFeedback models.StudentFeedback `json:"student_feedback" validate:"required"`
}

// StatusRequest changes an attendance status.
type StatusRequest struct {
	Status models.AttendanceStatus `json:"status" validate:"required"`
}

// ReviewRequest files a trainer remark on an attendance record.
type ReviewRequest struct {
	Remark string `json:"remark" validate:"required,max=5000"`
}

// ReviewDecisionRequest settles a pending review.
type ReviewDecisionRequest struct {
	Status models.ReviewStatus `json:"status" validate:"required"`
}
