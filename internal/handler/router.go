package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/coaching-center-api/internal/middleware"
	"github.com/noah-isme/coaching-center-api/internal/models"
)

// Handlers groups every HTTP handler mounted under the API prefix.
type Handlers struct {
	Students   *StudentHandler
	Exports    *ExportHandler
	Results    *ResultsHandler
	Batches    *BatchHandler
	Attendance *AttendanceHandler
	Auth       *AuthHandler
}

// RegisterRoutes mounts owner and guardian routes on group.
func RegisterRoutes(group *gin.RouterGroup, h Handlers, tokens middleware.TokenValidator) {
	group.POST("/guardian/login", h.Auth.GuardianLogin)

	authed := group.Group("")
	authed.Use(middleware.JWT(tokens))

	guardian := authed.Group("/guardian")
	guardian.Use(middleware.RequireRoles(models.RoleGuardian))
	guardian.GET("/students", h.Auth.GuardianStudents)

	owner := authed.Group("")
	owner.Use(middleware.RequireRoles(models.RoleOwner))

	owner.GET("/auth/me", h.Auth.Me)
	owner.POST("/guardians", h.Auth.GrantGuardian)

	students := owner.Group("/students")
	students.GET("", h.Students.List)
	students.GET("/unpaid", h.Students.Unpaid)
	students.GET("/export", h.Exports.Export)
	students.POST("", h.Students.Create)
	students.GET("/:id", h.Students.Get)
	students.PATCH("/:id", h.Students.Update)
	students.DELETE("/:id", h.Students.Delete)
	students.PATCH("/:id/toggle-payment", h.Students.TogglePayment)
	students.PATCH("/:id/remove-due", h.Students.RemoveDue)

	owner.POST("/results", h.Results.Submit)

	owner.GET("/batches", h.Batches.List)
	owner.POST("/batches", h.Batches.Create)

	owner.POST("/attendance", h.Attendance.Record)
	owner.GET("/attendance", h.Attendance.List)
}

// RegisterOps mounts health, readiness and metrics endpoints at the root.
func RegisterOps(r gin.IRouter, h *MetricsHandler) {
	r.GET("/health", h.Health)
	r.GET("/ready", h.Ready)
	r.GET("/metrics", h.Prometheus)
}
