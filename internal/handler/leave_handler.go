package handler

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/lms-admin-api/internal/dto"
	"github.com/noah-isme/lms-admin-api/internal/models"
	"github.com/noah-isme/lms-admin-api/pkg/export"
	"github.com/noah-isme/lms-admin-api/pkg/response"
)

type leaveService interface {
	RequestLeave(ctx context.Context, req dto.CreateLeaveRequest, actor models.Actor) (*dto.LeaveRequestResult, error)
	ProcessLeave(ctx context.Context, id string, action models.LeaveAction, remarks string, approver models.Actor) (*models.LeaveRequest, error)
	ListRequests(ctx context.Context, filter models.LeaveRequestFilter, actor models.Actor) ([]models.LeaveRequest, error)
	CurrentMonth(ctx context.Context, actor models.Actor) (*models.LeaveHistory, error)
	ListHistory(ctx context.Context, query dto.LeaveHistoryQuery, actor models.Actor) ([]models.LeaveHistory, error)
	ExportHistory(ctx context.Context, query dto.LeaveHistoryQuery, actor models.Actor) ([]byte, export.Format, error)
}

// LeaveHandler exposes leave requests and the leave ledger.
type LeaveHandler struct {
	service leaveService
	now     func() time.Time
}

// NewLeaveHandler builds a new handler.
func NewLeaveHandler(service leaveService) *LeaveHandler {
	return &LeaveHandler{service: service, now: time.Now}
}

// Request godoc
// @Summary Request leave
// @Description Requests beyond the remaining balance are created with warning=true.
// @Tags Leave
// @Accept json
// @Produce json
// @Param payload body dto.CreateLeaveRequest true "Leave payload"
// @Success 201 {object} response.Envelope
// @Router /leave-requests [post]
func (h *LeaveHandler) Request(c *gin.Context) {
	var req dto.CreateLeaveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err, "invalid leave payload"))
		return
	}
	result, err := h.service.RequestLeave(c.Request.Context(), req, actorFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// List godoc
// @Summary List leave requests
// @Tags Leave
// @Produce json
// @Param user_id query string false "User filter (admins and managers)"
// @Param status query string false "Status filter"
// @Param limit query int false "Maximum rows"
// @Success 200 {object} response.Envelope
// @Router /leave-requests [get]
func (h *LeaveHandler) List(c *gin.Context) {
	limit, err := queryLimit(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	filter := models.LeaveRequestFilter{
		UserID: c.Query("user_id"),
		Status: models.LeaveStatus(c.Query("status")),
		Limit:  limit,
	}
	items, err := h.service.ListRequests(c.Request.Context(), filter, actorFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, nil)
}

// Process godoc
// @Summary Approve or reject a leave request
// @Tags Leave
// @Accept json
// @Produce json
// @Param id path string true "Leave request ID"
// @Param payload body dto.ProcessLeaveRequest true "Decision"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /leave-requests/{id}/process [post]
func (h *LeaveHandler) Process(c *gin.Context) {
	var req dto.ProcessLeaveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err, "invalid decision payload"))
		return
	}
	item, err := h.service.ProcessLeave(c.Request.Context(), c.Param("id"), req.Action, req.Remarks, actorFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, item, nil)
}

// History godoc
// @Summary List leave ledger rows
// @Tags Leave
// @Produce json
// @Param user_id query string false "User filter (admins and managers)"
// @Param from query string false "First period (YYYY-MM-DD)"
// @Param to query string false "Last period (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Router /leave-history [get]
func (h *LeaveHandler) History(c *gin.Context) {
	var query dto.LeaveHistoryQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, bindError(err, "invalid history query"))
		return
	}
	items, err := h.service.ListHistory(c.Request.Context(), query, actorFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, nil)
}

// CurrentMonth godoc
// @Summary Current month leave balance
// @Tags Leave
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /leave-history/current-month [get]
func (h *LeaveHandler) CurrentMonth(c *gin.Context) {
	item, err := h.service.CurrentMonth(c.Request.Context(), actorFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, item, nil)
}

// Export godoc
// @Summary Export leave ledger rows
// @Tags Leave
// @Produce text/csv
// @Produce application/pdf
// @Param user_id query string false "User filter (admins and managers)"
// @Param from query string false "First period (YYYY-MM-DD)"
// @Param to query string false "Last period (YYYY-MM-DD)"
// @Param format query string false "csv or pdf"
// @Success 200 {file} file
// @Router /leave-history/export [get]
func (h *LeaveHandler) Export(c *gin.Context) {
	var query dto.LeaveHistoryQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, bindError(err, "invalid export query"))
		return
	}
	body, format, err := h.service.ExportHistory(c.Request.Context(), query, actorFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	filename := fmt.Sprintf("leave-history-%s.%s", h.now().UTC().Format("20060102"), format)
	response.Attachment(c, filename, format.ContentType(), body)
}
