package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/lms-admin-api/internal/dto"
	"github.com/noah-isme/lms-admin-api/internal/models"
	"github.com/noah-isme/lms-admin-api/pkg/response"
)

type attendanceService interface {
	Mark(ctx context.Context, req dto.MarkAttendanceRequest, actor models.Actor) (*models.AttendanceRecord, error)
	SetClassContent(ctx context.Context, id, content string, actor models.Actor) (*models.AttendanceRecord, error)
	SetStudentFeedback(ctx context.Context, id string, feedback models.StudentFeedback, actor models.Actor) (*models.AttendanceRecord, error)
	ChangeStatus(ctx context.Context, id string, status models.AttendanceStatus, actor models.Actor) (*models.AttendanceRecord, error)
	List(ctx context.Context, filter models.AttendanceFilter, actor models.Actor) ([]models.AttendanceView, error)
}

// AttendanceHandler exposes attendance marking and editing.
type AttendanceHandler struct {
	service attendanceService
}

// NewAttendanceHandler builds a new handler.
func NewAttendanceHandler(service attendanceService) *AttendanceHandler {
	return &AttendanceHandler{service: service}
}

// Mark godoc
// @Summary Mark attendance for a class
// @Tags Attendance
// @Accept json
// @Produce json
// @Param payload body dto.MarkAttendanceRequest true "Attendance payload"
// @Success 201 {object} response.Envelope
// @Router /attendance [post]
func (h *AttendanceHandler) Mark(c *gin.Context) {
	var req dto.MarkAttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err, "invalid attendance payload"))
		return
	}
	rec, err := h.service.Mark(c.Request.Context(), req, actorFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, rec)
}

// List godoc
// @Summary List attendance records
// @Description Each record carries can_change_status while its edit window is open.
// @Tags Attendance
// @Produce json
// @Param student_id query string false "Student filter"
// @Param trainer_id query string false "Trainer filter"
// @Param status query string false "Status filter"
// @Param limit query int false "Maximum rows"
// @Success 200 {object} response.Envelope
// @Router /attendance [get]
func (h *AttendanceHandler) List(c *gin.Context) {
	limit, err := queryLimit(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	filter := models.AttendanceFilter{
		StudentID: c.Query("student_id"),
		TrainerID: c.Query("trainer_id"),
		Status:    models.AttendanceStatus(c.Query("status")),
		Limit:     limit,
	}
	items, err := h.service.List(c.Request.Context(), filter, actorFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, nil)
}

// SetClassContent godoc
// @Summary Record class content
// @Tags Attendance
// @Accept json
// @Produce json
// @Param id path string true "Attendance ID"
// @Param payload body dto.ClassContentRequest true "Class content"
// @Success 200 {object} response.Envelope
// @Router /attendance/{id}/class-content [patch]
func (h *AttendanceHandler) SetClassContent(c *gin.Context) {
	var req dto.ClassContentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err, "invalid class content payload"))
		return
	}
	rec, err := h.service.SetClassContent(c.Request.Context(), c.Param("id"), req.ClassContent, actorFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rec, nil)
}

// SetFeedback godoc
// @Summary Record student feedback
// @Tags Attendance
// @Accept json
// @Produce json
// @Param id path string true "Attendance ID"
// @Param payload body dto.FeedbackRequest true "Feedback"
// @Success 200 {object} response.Envelope
// @Router /attendance/{id}/feedback [patch]
func (h *AttendanceHandler) SetFeedback(c *gin.Context) {
	var req dto.FeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err, "invalid feedback payload"))
		return
	}
	rec, err := h.service.SetStudentFeedback(c.Request.Context(), c.Param("id"), req.StudentFeedback, actorFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rec, nil)
}

// ChangeStatus godoc
// @Summary Change an attendance status
// @Tags Attendance
// @Accept json
// @Produce json
// @Param id path string true "Attendance ID"
// @Param payload body dto.StatusRequest true "New status"
// @Success 200 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /attendance/{id}/status [patch]
func (h *AttendanceHandler) ChangeStatus(c *gin.Context) {
	var req dto.StatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err, "invalid status payload"))
		return
	}
	rec, err := h.service.ChangeStatus(c.Request.Context(), c.Param("id"), req.Status, actorFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rec, nil)
}
