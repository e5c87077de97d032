package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/lms-admin-api/internal/middleware"
	"github.com/noah-isme/lms-admin-api/internal/models"
)

// Handlers groups the API handlers mounted under the API prefix.
type Handlers struct {
	Assignments *AssignmentHandler
	Enrollments *EnrollmentHandler
	Holds       *HoldHandler
	Attendance  *AttendanceHandler
	Leave       *LeaveHandler
	Notices     *NoticeHandler
	Feedback    *FeedbackHandler
	Reviews     *ReviewHandler
	Materials   *MaterialHandler
}

// RegisterRoutes mounts every rule-engine endpoint behind auth.
func RegisterRoutes(api *gin.RouterGroup, h Handlers, auth gin.HandlerFunc) {
	staff := middleware.RequireRoles(models.RoleAdmin, models.RoleManager)

	secured := api.Group("")
	secured.Use(auth)

	secured.POST("/assignments", staff, h.Assignments.Create)
	secured.PUT("/assignments/:id", staff, h.Assignments.Update)
	secured.DELETE("/assignments/:id", staff, h.Assignments.Delete)
	secured.GET("/trainers/:id/assignments", h.Assignments.ListByTrainer)

	secured.POST("/enrollments", staff, h.Enrollments.Create)
	secured.GET("/enrollments/:id", h.Enrollments.Get)

	secured.POST("/holds", h.Holds.Request)
	secured.GET("/holds", h.Holds.List)
	secured.POST("/holds/:id/approve", staff, h.Holds.Approve)
	secured.POST("/holds/:id/reject", staff, h.Holds.Reject)
	secured.GET("/students/:id/hold-history", h.Holds.History)

	secured.POST("/attendance", h.Attendance.Mark)
	secured.GET("/attendance", h.Attendance.List)
	secured.PATCH("/attendance/:id/class-content", h.Attendance.SetClassContent)
	secured.PATCH("/attendance/:id/feedback", h.Attendance.SetFeedback)
	secured.PATCH("/attendance/:id/status", h.Attendance.ChangeStatus)

	secured.POST("/leave-requests", h.Leave.Request)
	secured.GET("/leave-requests", h.Leave.List)
	secured.POST("/leave-requests/:id/process", staff, h.Leave.Process)
	secured.GET("/leave-history", h.Leave.History)
	secured.GET("/leave-history/current-month", h.Leave.CurrentMonth)
	secured.GET("/leave-history/export", h.Leave.Export)

	secured.GET("/notices", h.Notices.List)
	secured.POST("/notices", staff, h.Notices.Create)
	secured.PUT("/notices/:id", staff, h.Notices.Update)
	secured.DELETE("/notices/:id", staff, h.Notices.Delete)

	secured.POST("/feedback", h.Feedback.Submit)
	secured.GET("/feedback", h.Feedback.List)
	secured.POST("/feedback/:id/respond", staff, h.Feedback.Respond)

	secured.POST("/attendance/:id/reviews", h.Reviews.Submit)
	secured.GET("/attendance-reviews", h.Reviews.List)
	secured.POST("/attendance-reviews/:id/decision", staff, h.Reviews.Decide)

	secured.POST("/materials", h.Materials.Share)
	secured.GET("/materials", h.Materials.List)
	secured.DELETE("/materials/:id", h.Materials.Delete)
}
