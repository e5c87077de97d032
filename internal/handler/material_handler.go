package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/lms-admin-api/internal/dto"
	"github.com/noah-isme/lms-admin-api/internal/models"
	appErrors "github.com/noah-isme/lms-admin-api/pkg/errors"
	"github.com/noah-isme/lms-admin-api/pkg/response"
)

type materialService interface {
	Share(ctx context.Context, req dto.CreateMaterialRequest, actor models.Actor) (*models.StudyMaterial, error)
	List(ctx context.Context, filter models.MaterialFilter, includeExpired bool, actor models.Actor) ([]models.StudyMaterial, error)
	Delete(ctx context.Context, id string, actor models.Actor) error
}

// MaterialHandler exposes study material sharing.
type MaterialHandler struct {
	service materialService
}

// NewMaterialHandler builds a new handler.
func NewMaterialHandler(service materialService) *MaterialHandler {
	return &MaterialHandler{service: service}
}

// Share godoc
// @Summary Share a study material
// @Description expires_at defaults to 90 days after sharing.
// @Tags Materials
// @Accept json
// @Produce json
// @Param payload body dto.CreateMaterialRequest true "Material payload"
// @Success 201 {object} response.Envelope
// @Router /materials [post]
func (h *MaterialHandler) Share(c *gin.Context) {
	var req dto.CreateMaterialRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err, "invalid material payload"))
		return
	}
	material, err := h.service.Share(c.Request.Context(), req, actorFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, material)
}

// List godoc
// @Summary List study materials for a course or enrollment
// @Tags Materials
// @Produce json
// @Param course_id query string false "Course filter"
// @Param student_course_id query string false "Enrollment filter"
// @Param include_expired query bool false "Staff only"
// @Param limit query int false "Maximum rows"
// @Success 200 {object} response.Envelope
// @Router /materials [get]
func (h *MaterialHandler) List(c *gin.Context) {
	limit, err := queryLimit(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	includeExpired := false
	if raw := c.Query("include_expired"); raw != "" {
		includeExpired, err = strconv.ParseBool(raw)
		if err != nil {
			response.Error(c, appErrors.New(appErrors.ErrValidation.Code, http.StatusBadRequest, "include_expired must be a boolean"))
			return
		}
	}
	filter := models.MaterialFilter{
		CourseID:        c.Query("course_id"),
		StudentCourseID: c.Query("student_course_id"),
		Limit:           limit,
	}
	items, err := h.service.List(c.Request.Context(), filter, includeExpired, actorFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, nil)
}

// Delete godoc
// @Summary Remove a study material
// @Tags Materials
// @Param id path string true "Material ID"
// @Success 204
// @Router /materials/{id} [delete]
func (h *MaterialHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id"), actorFromContext(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
