package handler

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/lms-admin-api/internal/dto"
	"github.com/noah-isme/lms-admin-api/internal/models"
	appErrors "github.com/noah-isme/lms-admin-api/pkg/errors"
)

type attendanceServiceMock struct {
	err        error
	lastID     string
	lastStatus models.AttendanceStatus
	lastFilter models.AttendanceFilter
	lastActor  models.Actor
	views      []models.AttendanceView
}

func (m *attendanceServiceMock) record() *models.AttendanceRecord {
	return &models.AttendanceRecord{ID: m.lastID, StudentID: "s-1", Status: m.lastStatus}
}

func (m *attendanceServiceMock) Mark(_ context.Context, req dto.MarkAttendanceRequest, actor models.Actor) (*models.AttendanceRecord, error) {
	m.lastStatus, m.lastActor = req.Status, actor
	return m.record(), m.err
}

func (m *attendanceServiceMock) SetClassContent(_ context.Context, id, _ string, actor models.Actor) (*models.AttendanceRecord, error) {
	m.lastID, m.lastActor = id, actor
	return m.record(), m.err
}

func (m *attendanceServiceMock) SetStudentFeedback(_ context.Context, id string, _ models.StudentFeedback, actor models.Actor) (*models.AttendanceRecord, error) {
	m.lastID, m.lastActor = id, actor
	return m.record(), m.err
}

func (m *attendanceServiceMock) ChangeStatus(_ context.Context, id string, status models.AttendanceStatus, actor models.Actor) (*models.AttendanceRecord, error) {
	m.lastID, m.lastStatus, m.lastActor = id, status, actor
	if m.err != nil {
		return nil, m.err
	}
	return m.record(), nil
}

func (m *attendanceServiceMock) List(_ context.Context, filter models.AttendanceFilter, actor models.Actor) ([]models.AttendanceView, error) {
	m.lastFilter, m.lastActor = filter, actor
	return m.views, m.err
}

func TestAttendanceHandlerChangeStatus(t *testing.T) {
	mock := &attendanceServiceMock{}
	handler := NewAttendanceHandler(mock)

	c, w := newTestContext(t, http.MethodPatch, "/attendance/r-1/status", dto.StatusRequest{Status: models.AttendanceStatusOff}, studentClaims)
	c.Params = gin.Params{{Key: "id", Value: "r-1"}}
	handler.ChangeStatus(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "r-1", mock.lastID)
	assert.Equal(t, models.AttendanceStatusOff, mock.lastStatus)
}

func TestAttendanceHandlerWindowExpired(t *testing.T) {
	handler := NewAttendanceHandler(&attendanceServiceMock{err: appErrors.ErrWindowExpired})

	c, w := newTestContext(t, http.MethodPatch, "/attendance/r-1/status", dto.StatusRequest{Status: models.AttendanceStatusOff}, studentClaims)
	c.Params = gin.Params{{Key: "id", Value: "r-1"}}
	handler.ChangeStatus(c)

	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), "WINDOW_EXPIRED")
}

func TestAttendanceHandlerMarkAndList(t *testing.T) {
	mock := &attendanceServiceMock{views: []models.AttendanceView{{
		AttendanceRecord: models.AttendanceRecord{ID: "r-1", MarkedAt: time.Now()},
		CanChangeStatus:  true,
	}}}
	handler := NewAttendanceHandler(mock)

	c, w := newTestContext(t, http.MethodPost, "/attendance", dto.MarkAttendanceRequest{StudentID: "s-1", Status: models.AttendanceStatusAbsent}, trainerClaims)
	handler.Mark(c)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, models.AttendanceStatusAbsent, mock.lastStatus)

	c, w = newTestContext(t, http.MethodGet, "/attendance?student_id=s-1&status=ABSENT", nil, trainerClaims)
	handler.List(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.AttendanceFilter{StudentID: "s-1", Status: models.AttendanceStatusAbsent}, mock.lastFilter)
	assert.Contains(t, w.Body.String(), `"can_change_status":true`)
}

func TestAttendanceHandlerFeedbackAndContent(t *testing.T) {
	mock := &attendanceServiceMock{}
	handler := NewAttendanceHandler(mock)

	c, w := newTestContext(t, http.MethodPatch, "/attendance/r-2/feedback", dto.FeedbackRequest{StudentFeedback: models.FeedbackAccepted}, studentClaims)
	c.Params = gin.Params{{Key: "id", Value: "r-2"}}
	handler.SetFeedback(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "r-2", mock.lastID)

	c, w = newTestContext(t, http.MethodPatch, "/attendance/r-3/class-content", `{"class_content":`, trainerClaims)
	c.Params = gin.Params{{Key: "id", Value: "r-3"}}
	handler.SetClassContent(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
}
