package dto

import "github.com/noah-isme/lms-admin-api/internal/models"

// CreateLeaveRequest submits a leave request for the acting user.
type CreateLeaveRequest struct {
	StartDate string `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate   string `json:"end_date" validate:"required,datetime=2006-01-02"`
	Reason    string `json:"reason" validate:"max=1000"`
}

// LeaveRequestResult wraps a created request with the over-balance warning.
type LeaveRequestResult struct {
	Request   *models.LeaveRequest `json:"request"`
	Days      int                  `json:"days"`
	Remaining int                  `json:"remaining"`
	Warning   bool                 `json:"warning"`
	Message   string               `json:"message,omitempty"`
}

// ProcessLeaveRequest carries an approve or reject decision.
type ProcessLeaveRequest struct {
	Action  models.LeaveAction `json:"action" validate:"required"`
	Remarks string             `json:"remarks" validate:"max=1000"`
}

// LeaveHistoryQuery filters ledger listings and exports.
type LeaveHistoryQuery struct {
	UserID string `form:"user_id"`
	From   string `form:"from" validate:"omitempty,datetime=2006-01-02"`
	To     string `form:"to" validate:"omitempty,datetime=2006-01-02"`
	Format string `form:"format" validate:"omitempty,oneof=csv pdf CSV PDF"`
}
