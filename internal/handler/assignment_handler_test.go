package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/lms-admin-api/internal/dto"
	"github.com/noah-isme/lms-admin-api/internal/models"
	appErrors "github.com/noah-isme/lms-admin-api/pkg/errors"
)

type assignmentServiceMock struct {
	created   *models.TrainerAssignment
	err       error
	lastActor models.Actor
	lastID    string
	lastReq   dto.AssignmentRequest
}

func (m *assignmentServiceMock) Create(_ context.Context, req dto.AssignmentRequest, actor models.Actor) (*models.TrainerAssignment, error) {
	m.lastReq, m.lastActor = req, actor
	return m.created, m.err
}

func (m *assignmentServiceMock) Update(_ context.Context, id string, req dto.AssignmentRequest, actor models.Actor) (*models.TrainerAssignment, error) {
	m.lastID, m.lastReq, m.lastActor = id, req, actor
	return m.created, m.err
}

func (m *assignmentServiceMock) Delete(_ context.Context, id string, actor models.Actor) error {
	m.lastID, m.lastActor = id, actor
	return m.err
}

func (m *assignmentServiceMock) ListByTrainer(_ context.Context, trainerID string, actor models.Actor) ([]models.TrainerAssignment, error) {
	m.lastID, m.lastActor = trainerID, actor
	if m.err != nil {
		return nil, m.err
	}
	return []models.TrainerAssignment{*m.created}, nil
}

func TestAssignmentHandlerCreate(t *testing.T) {
	mock := &assignmentServiceMock{created: &models.TrainerAssignment{ID: "a-1", TrainerID: "t-1"}}
	handler := NewAssignmentHandler(mock)

	c, w := newTestContext(t, http.MethodPost, "/assignments", dto.AssignmentRequest{
		TrainerID: "t-1", CourseID: "c-1", StartDate: "2024-01-01", EndDate: "2024-01-31", StartTime: "09:00", EndTime: "10:00",
	}, adminClaims)
	handler.Create(c)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, models.Actor{UserID: "admin-1", Role: models.RoleAdmin}, mock.lastActor)
	assert.Equal(t, "09:00", mock.lastReq.StartTime)
	assert.Contains(t, w.Body.String(), `"id":"a-1"`)
}

func TestAssignmentHandlerCreateOverlap(t *testing.T) {
	handler := NewAssignmentHandler(&assignmentServiceMock{err: appErrors.Clone(appErrors.ErrOverlap, "overlaps with assignment a-9")})

	c, w := newTestContext(t, http.MethodPost, "/assignments", dto.AssignmentRequest{TrainerID: "t-1"}, adminClaims)
	handler.Create(c)

	require.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "OVERLAP")
}

func TestAssignmentHandlerInvalidBody(t *testing.T) {
	handler := NewAssignmentHandler(&assignmentServiceMock{})
	c, w := newTestContext(t, http.MethodPost, "/assignments", `{"trainer_id":`, adminClaims)
	handler.Create(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAssignmentHandlerDeleteAndList(t *testing.T) {
	mock := &assignmentServiceMock{created: &models.TrainerAssignment{ID: "a-1"}}
	handler := NewAssignmentHandler(mock)

	c, w := newTestContext(t, http.MethodDelete, "/assignments/a-1", nil, adminClaims)
	c.Params = gin.Params{{Key: "id", Value: "a-1"}}
	handler.Delete(c)
	c.Writer.WriteHeaderNow()
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "a-1", mock.lastID)

	c, w = newTestContext(t, http.MethodGet, "/trainers/t-1/assignments", nil, trainerClaims)
	c.Params = gin.Params{{Key: "id", Value: "t-1"}}
	handler.ListByTrainer(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "t-1", mock.lastID)
	assert.Equal(t, models.RoleTrainer, mock.lastActor.Role)
}
