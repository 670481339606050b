package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/coaching-center-api/internal/models"
	"github.com/noah-isme/coaching-center-api/internal/service"
	"github.com/noah-isme/coaching-center-api/pkg/response"
)

type attendanceService interface {
	Record(ctx context.Context, ownerID string, req service.RecordAttendanceRequest) (*models.AttendanceRecord, error)
	List(ctx context.Context, ownerID string, filter models.AttendanceFilter) ([]models.AttendanceRecord, error)
}

// AttendanceHandler exposes attendance endpoints.
type AttendanceHandler struct {
	attendance attendanceService
}

// NewAttendanceHandler constructs an AttendanceHandler.
func NewAttendanceHandler(attendance attendanceService) *AttendanceHandler {
	return &AttendanceHandler{attendance: attendance}
}

// Record godoc
// @Summary Record batch-day attendance
// @Tags Attendance
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body service.RecordAttendanceRequest true "Attendance sheet"
// @Success 201 {object} response.Envelope
// @Router /attendance [post]
func (h *AttendanceHandler) Record(c *gin.Context) {
	owner, err := ownerFromContext(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var req service.RecordAttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidBody(err))
		return
	}
	record, err := h.attendance.Record(c.Request.Context(), owner, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, record)
}

// List godoc
// @Summary List attendance records
// @Tags Attendance
// @Produce json
// @Security BearerAuth
// @Param date query string false "YYYY-MM-DD"
// @Param batch_id query string false "Batch ID"
// @Success 200 {object} response.Envelope
// @Router /attendance [get]
func (h *AttendanceHandler) List(c *gin.Context) {
	owner, err := ownerFromContext(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	filter := models.AttendanceFilter{Date: c.Query("date"), BatchID: c.Query("batch_id")}
	records, err := h.attendance.List(c.Request.Context(), owner, filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, records)
}
