package models

import "time"

// FeedbackType classifies a course feedback ticket.
type FeedbackType string

const (
	FeedbackTypeGeneral FeedbackType = "GENERAL"
	FeedbackTypeCourse  FeedbackType = "COURSE"
	FeedbackTypeTrainer FeedbackType = "TRAINER"
)

// Valid reports whether the type is a supported value.
func (t FeedbackType) Valid() bool {
	switch t {
	case FeedbackTypeGeneral, FeedbackTypeCourse, FeedbackTypeTrainer:
		return true
	default:
		return false
	}
}

// TicketStatus tracks a feedback ticket through staff handling.
type TicketStatus string

const (
	TicketPending    TicketStatus = "PENDING"
	TicketInProgress TicketStatus = "IN_PROGRESS"
	TicketResolved   TicketStatus = "RESOLVED"
)

func (s TicketStatus) rank() int {
	switch s {
	case TicketPending:
		return 1
	case TicketInProgress:
		return 2
	case TicketResolved:
		return 3
	default:
		return 0
	}
}

// Valid reports whether the status is a supported value.
func (s TicketStatus) Valid() bool {
	return s.rank() > 0
}

// CanMoveTo reports whether next is a forward step from s. RESOLVED is final.
func (s TicketStatus) CanMoveTo(next TicketStatus) bool {
	return s.Valid() && next.Valid() && next.rank() > s.rank()
}

// CourseFeedback is a ticket a student raises about a course or trainer.
type CourseFeedback struct {
	ID           string       `db:"id" json:"id"`
	StudentID    string       `db:"student_id" json:"student_id"`
	CourseID     string       `db:"course_id" json:"course_id"`
	Type         FeedbackType `db:"feedback_type" json:"feedback_type"`
	Topic        string       `db:"topic" json:"topic"`
	Content      string       `db:"content" json:"content"`
	Status       TicketStatus `db:"status" json:"status"`
	AdminRemarks *string      `db:"admin_remarks" json:"admin_remarks,omitempty"`
	RespondedBy  *string      `db:"responded_by" json:"responded_by,omitempty"`
	RespondedAt  *time.Time   `db:"responded_at" json:"responded_at,omitempty"`
	CreatedAt    time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time    `db:"updated_at" json:"updated_at"`
}

// FeedbackResponse is the staff reply applied to a ticket.
type FeedbackResponse struct {
	Status       TicketStatus
	AdminRemarks *string
	RespondedBy  string
	RespondedAt  time.Time
}

// FeedbackFilter scopes ticket listings.
type FeedbackFilter struct {
	StudentID string
	CourseID  string
	Status    TicketStatus
	Limit     int
}
