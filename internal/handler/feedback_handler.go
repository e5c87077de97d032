package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/lms-admin-api/internal/dto"
	"github.com/noah-isme/lms-admin-api/internal/models"
	"github.com/noah-isme/lms-admin-api/pkg/response"
)

type feedbackService interface {
	Submit(ctx context.Context, req dto.CreateFeedbackRequest, actor models.Actor) (*models.CourseFeedback, error)
	Respond(ctx context.Context, id string, req dto.RespondFeedbackRequest, actor models.Actor) (*models.CourseFeedback, error)
	List(ctx context.Context, filter models.FeedbackFilter, actor models.Actor) ([]models.CourseFeedback, error)
}

// FeedbackHandler exposes the course feedback ticket workflow.
type FeedbackHandler struct {
	service feedbackService
}

// NewFeedbackHandler builds a new handler.
func NewFeedbackHandler(service feedbackService) *FeedbackHandler {
	return &FeedbackHandler{service: service}
}

// Submit godoc
// @Summary Raise a feedback ticket
// @Tags Feedback
// @Accept json
// @Produce json
// @Param payload body dto.CreateFeedbackRequest true "Feedback payload"
// @Success 201 {object} response.Envelope
// @Router /feedback [post]
func (h *FeedbackHandler) Submit(c *gin.Context) {
	var req dto.CreateFeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err, "invalid feedback payload"))
		return
	}
	ticket, err := h.service.Submit(c.Request.Context(), req, actorFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, ticket)
}

// List godoc
// @Summary List feedback tickets
// @Tags Feedback
// @Produce json
// @Param student_id query string false "Student filter"
// @Param course_id query string false "Course filter"
// @Param status query string false "Status filter"
// @Param limit query int false "Maximum rows"
// @Success 200 {object} response.Envelope
// @Router /feedback [get]
func (h *FeedbackHandler) List(c *gin.Context) {
	limit, err := queryLimit(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	filter := models.FeedbackFilter{
		StudentID: c.Query("student_id"),
		CourseID:  c.Query("course_id"),
		Status:    models.TicketStatus(c.Query("status")),
		Limit:     limit,
	}
	items, err := h.service.List(c.Request.Context(), filter, actorFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, nil)
}

// Respond godoc
// @Summary Move a feedback ticket forward
// @Tags Feedback
// @Accept json
// @Produce json
// @Param id path string true "Feedback ID"
// @Param payload body dto.RespondFeedbackRequest true "Response"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /feedback/{id}/respond [post]
func (h *FeedbackHandler) Respond(c *gin.Context) {
	var req dto.RespondFeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err, "invalid feedback response"))
		return
	}
	ticket, err := h.service.Respond(c.Request.Context(), c.Param("id"), req, actorFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, ticket, nil)
}
