package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/absensi-sd/absensi-api/internal/service"
	appErrors "github.com/absensi-sd/absensi-api/pkg/errors"
	"github.com/absensi-sd/absensi-api/pkg/response"
)

// AttendanceHandler exposes the attendance write path.
type AttendanceHandler struct {
	attendance *service.AttendanceService
}

// NewAttendanceHandler constructs AttendanceHandler.
func NewAttendanceHandler(attendance *service.AttendanceService) *AttendanceHandler {
	return &AttendanceHandler{attendance: attendance}
}

// Record godoc
// @Summary Record today's attendance for a student
// @Tags Attendance
// @Accept json
// @Produce json
// @Param payload body service.RecordAttendanceRequest true "Attendance payload"
// @Success 201 {object} response.Envelope
// @Router /attendance [post]
func (h *AttendanceHandler) Record(c *gin.Context) {
	var req service.RecordAttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	record, err := h.attendance.Record(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, record)
}

// Today godoc
// @Summary Current reporting day
// @Tags Attendance
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /attendance/today [get]
func (h *AttendanceHandler) Today(c *gin.Context) {
	response.JSON(c, http.StatusOK, gin.H{"date": h.attendance.Today()}, nil)
}

// History godoc
// @Summary Attendance history for a student
// @Tags Attendance
// @Produce json
// @Param nis path string true "Student NIS"
// @Param limit query int false "Max entries"
// @Success 200 {object} response.Envelope
// @Router /attendance/students/{nis}/history [get]
func (h *AttendanceHandler) History(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "30"))
	rows, err := h.attendance.History(c.Request.Context(), c.Param("nis"), limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rows, nil)
}
