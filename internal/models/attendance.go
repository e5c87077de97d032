package models

import "time"

// AttendanceStatus represents the status for attendance records.
type AttendanceStatus string

const (
	AttendanceStatusPresent       AttendanceStatus = "PRESENT"
	AttendanceStatusAbsent        AttendanceStatus = "ABSENT"
	AttendanceStatusTrainerAbsent AttendanceStatus = "TRAINER_ABSENT"
	AttendanceStatusOff           AttendanceStatus = "OFF"
	AttendanceStatusComp          AttendanceStatus = "COMP"
)

// Valid returns true when the status is a supported value.
func (s AttendanceStatus) Valid() bool {
	switch s {
	case AttendanceStatusPresent, AttendanceStatusAbsent, AttendanceStatusTrainerAbsent,
		AttendanceStatusOff, AttendanceStatusComp:
		return true
	default:
		return false
	}
}

// StudentFeedback is the student's verdict on a class.
type StudentFeedback string

const (
	FeedbackAccepted StudentFeedback = "ACCEPTED"
	FeedbackRejected StudentFeedback = "REJECTED"
	FeedbackNoAction StudentFeedback = "NO_ACTION"
)

// Valid returns true when the feedback is a supported value.
func (f StudentFeedback) Valid() bool {
	switch f {
	case FeedbackAccepted, FeedbackRejected, FeedbackNoAction:
		return true
	default:
		return false
	}
}

// AttendanceRecord is a single class attendance mark.
type AttendanceRecord struct {
	ID              string           `db:"id" json:"id"`
	StudentID       string           `db:"student_id" json:"student_id"`
	TrainerID       *string          `db:"trainer_id" json:"trainer_id,omitempty"`
	MarkedAt        time.Time        `db:"marked_at" json:"marked_at"`
	Status          AttendanceStatus `db:"status" json:"status"`
	ClassContent    string           `db:"class_content" json:"class_content"`
	StudentFeedback StudentFeedback  `db:"student_feedback" json:"student_feedback"`
}

// AttendanceView decorates a record with whether its status can still be edited.
type AttendanceView struct {
	AttendanceRecord
	CanChangeStatus bool `json:"can_change_status"`
}

// AttendanceFilter scopes listing queries.
type AttendanceFilter struct {
	StudentID string
	TrainerID string
	Status    AttendanceStatus
	Limit     int
}

// ReviewStatus tracks a trainer's review of an attendance record.
type ReviewStatus string

const (
	ReviewPending  ReviewStatus = "PENDING"
	ReviewApproved ReviewStatus = "APPROVED"
	ReviewRejected ReviewStatus = "REJECTED"
)

// Decision reports whether the status is a final verdict.
func (s ReviewStatus) Decision() bool {
	return s == ReviewApproved || s == ReviewRejected
}

// AttendanceReview is a trainer remark on an attendance record awaiting staff approval.
type AttendanceReview struct {
	ID           string       `db:"id" json:"id"`
	AttendanceID string       `db:"attendance_id" json:"attendance_id"`
	TrainerID    string       `db:"trainer_id" json:"trainer_id"`
	Remark       string       `db:"remark" json:"remark"`
	Status       ReviewStatus `db:"status" json:"status"`
	DecidedBy    *string      `db:"decided_by" json:"decided_by,omitempty"`
	DecidedAt    *time.Time   `db:"decided_at" json:"decided_at,omitempty"`
	CreatedAt    time.Time    `db:"created_at" json:"created_at"`
}

// ReviewFilter scopes review listings.
type ReviewFilter struct {
	AttendanceID string
	TrainerID    string
	Status       ReviewStatus
	Limit        int
}
