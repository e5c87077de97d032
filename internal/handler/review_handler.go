package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/lms-admin-api/internal/dto"
	"github.com/noah-isme/lms-admin-api/internal/models"
	"github.com/noah-isme/lms-admin-api/pkg/response"
)

type reviewService interface {
	Submit(ctx context.Context, attendanceID string, req dto.ReviewRequest, actor models.Actor) (*models.AttendanceReview, error)
	Decide(ctx context.Context, id string, status models.ReviewStatus, actor models.Actor) (*models.AttendanceReview, error)
	List(ctx context.Context, filter models.ReviewFilter, actor models.Actor) ([]models.AttendanceReview, error)
}

// ReviewHandler exposes trainer reviews of attendance records.
type ReviewHandler struct {
	service reviewService
}

// NewReviewHandler builds a new handler.
func NewReviewHandler(service reviewService) *ReviewHandler {
	return &ReviewHandler{service: service}
}

// Submit godoc
// @Summary Review an attendance record
// @Tags Attendance
// @Accept json
// @Produce json
// @Param id path string true "Attendance ID"
// @Param payload body dto.ReviewRequest true "Remark"
// @Success 201 {object} response.Envelope
// @Router /attendance/{id}/reviews [post]
func (h *ReviewHandler) Submit(c *gin.Context) {
	var req dto.ReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err, "invalid review payload"))
		return
	}
	review, err := h.service.Submit(c.Request.Context(), c.Param("id"), req, actorFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, review)
}

// List godoc
// @Summary List attendance reviews
// @Tags Attendance
// @Produce json
// @Param attendance_id query string false "Attendance filter"
// @Param trainer_id query string false "Trainer filter"
// @Param status query string false "Status filter"
// @Param limit query int false "Maximum rows"
// @Success 200 {object} response.Envelope
// @Router /attendance-reviews [get]
func (h *ReviewHandler) List(c *gin.Context) {
	limit, err := queryLimit(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	filter := models.ReviewFilter{
		AttendanceID: c.Query("attendance_id"),
		TrainerID:    c.Query("trainer_id"),
		Status:       models.ReviewStatus(c.Query("status")),
		Limit:        limit,
	}
	items, err := h.service.List(c.Request.Context(), filter, actorFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, nil)
}

// Decide godoc
// @Summary Approve or reject an attendance review
// @Tags Attendance
// @Accept json
// @Produce json
// @Param id path string true "Review ID"
// @Param payload body dto.ReviewDecisionRequest true "Decision"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /attendance-reviews/{id}/decision [post]
func (h *ReviewHandler) Decide(c *gin.Context) {
	var req dto.ReviewDecisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err, "invalid review decision"))
		return
	}
	review, err := h.service.Decide(c.Request.Context(), c.Param("id"), req.Status, actorFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, review, nil)
}
