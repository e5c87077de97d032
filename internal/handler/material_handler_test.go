package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/lms-admin-api/internal/dto"
	"github.com/noah-isme/lms-admin-api/internal/models"
)

type materialServiceMock struct {
	lastFilter     models.MaterialFilter
	includeExpired bool
	lastReq        dto.CreateMaterialRequest
}

func (m *materialServiceMock) Share(_ context.Context, req dto.CreateMaterialRequest, _ models.Actor) (*models.StudyMaterial, error) {
	m.lastReq = req
	return &models.StudyMaterial{ID: "m-1", Topic: req.Topic}, nil
}

func (m *materialServiceMock) List(_ context.Context, filter models.MaterialFilter, includeExpired bool, _ models.Actor) ([]models.StudyMaterial, error) {
	m.lastFilter, m.includeExpired = filter, includeExpired
	return []models.StudyMaterial{}, nil
}

func (m *materialServiceMock) Delete(context.Context, string, models.Actor) error {
	return nil
}

func TestMaterialHandlerListParsesQuery(t *testing.T) {
	mock := &materialServiceMock{}
	handler := NewMaterialHandler(mock)

	c, w := newTestContext(t, http.MethodGet, "/materials?course_id=c-1&include_expired=true&limit=3", nil, adminClaims)
	handler.List(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "c-1", mock.lastFilter.CourseID)
	assert.Equal(t, 3, mock.lastFilter.Limit)
	assert.True(t, mock.includeExpired)

	c, w = newTestContext(t, http.MethodGet, "/materials?course_id=c-1&include_expired=sometimes", nil, adminClaims)
	handler.List(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMaterialHandlerShare(t *testing.T) {
	mock := &materialServiceMock{}
	handler := NewMaterialHandler(mock)

	c, w := newTestContext(t, http.MethodPost, "/materials", map[string]interface{}{"topic": "arpeggios", "course_id": "c-1"}, trainerClaims)
	handler.Share(c)

	require.Equal(t, http.StatusCreated, w.Code)
	require.NotNil(t, mock.lastReq.CourseID)
	assert.Equal(t, "c-1", *mock.lastReq.CourseID)
	assert.Nil(t, mock.lastReq.StudentCourseID)
}
