package models

import "time"

// LeaveStatus captures workflow states for leave requests.
type LeaveStatus string

const (
	LeaveStatusPending  LeaveStatus = "PENDING"
	LeaveStatusApproved LeaveStatus = "APPROVED"
	LeaveStatusRejected LeaveStatus = "REJECTED"
)

// LeaveAction is the reviewer's decision on a leave request.
type LeaveAction string

const (
	LeaveActionApprove LeaveAction = "approve"
	LeaveActionReject  LeaveAction = "reject"
)

// Valid reports whether the action is approve or reject.
func (a LeaveAction) Valid() bool {
	return a == LeaveActionApprove || a == LeaveActionReject
}

// LeaveRequest is a staff member's request for days off.
type LeaveRequest struct {
	ID           string      `db:"id" json:"id"`
	UserID       string      `db:"user_id" json:"user_id"`
	StartDate    time.Time   `db:"start_date" json:"start_date"`
	EndDate      time.Time   `db:"end_date" json:"end_date"`
	Reason       string      `db:"reason" json:"reason"`
	Status       LeaveStatus `db:"status" json:"status"`
	AdminRemarks *string     `db:"admin_remarks" json:"admin_remarks,omitempty"`
	ProcessedBy  *string     `db:"processed_by" json:"processed_by,omitempty"`
	CreatedAt    time.Time   `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time   `db:"updated_at" json:"updated_at"`
}

// Days returns the inclusive number of leave days requested.
func (r LeaveRequest) Days() int {
	return InclusiveDays(r.StartDate, r.EndDate)
}

// LeaveHistory is the per-user, per-period leave ledger row.
type LeaveHistory struct {
	ID              string    `db:"id" json:"id"`
	UserID          string    `db:"user_id" json:"user_id"`
	Period          time.Time `db:"period" json:"period"`
	LeavesAccrued   int       `db:"leaves_accrued" json:"leaves_accrued"`
	LeavesTaken     int       `db:"leaves_taken" json:"leaves_taken"`
	LeavesRemaining int       `db:"leaves_remaining" json:"leaves_remaining"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time `db:"updated_at" json:"updated_at"`
}

// Deduct books days against the ledger; remaining never drops below zero.
func (h *LeaveHistory) Deduct(days int) {
	h.LeavesTaken += days
	h.LeavesRemaining -= days
	if h.LeavesRemaining < 0 {
		h.LeavesRemaining = 0
	}
}

// PeriodStart returns the first day of the calendar month containing t.
func PeriodStart(t time.Time) time.Time {
	y, m, _ := t.Date()
	return time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)
}

// LeaveRequestFilter scopes request listings.
type LeaveRequestFilter struct {
	UserID string
	Status LeaveStatus
	Limit  int
}

// LeaveHistoryFilter scopes ledger listings.
type LeaveHistoryFilter struct {
	UserID string
	From   *time.Time
	To     *time.Time
}
