package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/lms-admin-api/internal/dto"
	"github.com/noah-isme/lms-admin-api/internal/models"
	"github.com/noah-isme/lms-admin-api/pkg/response"
)

type holdService interface {
	Request(ctx context.Context, req dto.CreateHoldRequest, actor models.Actor) (*models.CourseHold, error)
	Approve(ctx context.Context, holdID string, approver models.Actor) (*dto.HoldDecisionResult, error)
	Reject(ctx context.Context, holdID string, rejector models.Actor) (*dto.HoldDecisionResult, error)
	ListPending(ctx context.Context, filter models.HoldFilter, actor models.Actor) ([]models.CourseHold, error)
	History(ctx context.Context, studentID string, actor models.Actor) ([]models.CourseHoldHistory, error)
}

// HoldHandler exposes the course hold workflow.
type HoldHandler struct {
	service holdService
}

// NewHoldHandler builds a new handler.
func NewHoldHandler(service holdService) *HoldHandler {
	return &HoldHandler{service: service}
}

// Request godoc
// @Summary Request a course hold
// @Tags Holds
// @Accept json
// @Produce json
// @Param payload body dto.CreateHoldRequest true "Hold payload"
// @Success 201 {object} response.Envelope
// @Router /holds [post]
func (h *HoldHandler) Request(c *gin.Context) {
	var req dto.CreateHoldRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err, "invalid hold payload"))
		return
	}
	item, err := h.service.Request(c.Request.Context(), req, actorFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, item)
}

// List godoc
// @Summary List pending course holds
// @Tags Holds
// @Produce json
// @Param student_course_id query string false "Enrollment filter"
// @Param student_id query string false "Student filter"
// @Param limit query int false "Maximum rows"
// @Success 200 {object} response.Envelope
// @Router /holds [get]
func (h *HoldHandler) List(c *gin.Context) {
	limit, err := queryLimit(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	filter := models.HoldFilter{
		StudentCourseID: c.Query("student_course_id"),
		StudentID:       c.Query("student_id"),
		Limit:           limit,
	}
	items, err := h.service.ListPending(c.Request.Context(), filter, actorFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, nil)
}

// Approve godoc
// @Summary Approve a course hold
// @Description Extends the enrollment by the hold length. Repeating the call is a no-op with applied=false.
// @Tags Holds
// @Produce json
// @Param id path string true "Hold ID"
// @Success 200 {object} response.Envelope
// @Router /holds/{id}/approve [post]
func (h *HoldHandler) Approve(c *gin.Context) {
	result, err := h.service.Approve(c.Request.Context(), c.Param("id"), actorFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Reject godoc
// @Summary Reject a course hold
// @Tags Holds
// @Produce json
// @Param id path string true "Hold ID"
// @Success 200 {object} response.Envelope
// @Router /holds/{id}/reject [post]
func (h *HoldHandler) Reject(c *gin.Context) {
	result, err := h.service.Reject(c.Request.Context(), c.Param("id"), actorFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// History godoc
// @Summary List a student's processed holds
// @Tags Holds
// @Produce json
// @Param id path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Router /students/{id}/hold-history [get]
func (h *HoldHandler) History(c *gin.Context) {
	items, err := h.service.History(c.Request.Context(), c.Param("id"), actorFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, nil)
}
