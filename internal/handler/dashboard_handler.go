package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/absensi-sd/absensi-api/internal/service"
	appErrors "github.com/absensi-sd/absensi-api/pkg/errors"
	"github.com/absensi-sd/absensi-api/pkg/export"
	"github.com/absensi-sd/absensi-api/pkg/response"
)

type dashboardService interface {
	Attendance(ctx context.Context, grade, date string) (*service.DashboardAttendanceResponse, bool, error)
}

type gradeLister interface {
	Grades(ctx context.Context) ([]string, error)
}

// DashboardHandler exposes the aggregated attendance read path.
type DashboardHandler struct {
	dashboard dashboardService
	grades    gradeLister
	today     func() string
	csv       *export.CSVExporter
	pdf       *export.PDFExporter
}

// NewDashboardHandler constructs DashboardHandler.
func NewDashboardHandler(dashboard dashboardService, grades gradeLister, today func() string) *DashboardHandler {
	return &DashboardHandler{
		dashboard: dashboard,
		grades:    grades,
		today:     today,
		csv:       export.NewCSVExporter(),
		pdf:       export.NewPDFExporter(),
	}
}

// Attendance godoc
// @Summary Attendance records for a grade and day
// @Tags Dashboard
// @Produce json
// @Param grade query string true "Grade"
// @Param date query string false "Date YYYY-MM-DD, defaults to today"
// @Success 200 {object} response.Envelope
// @Router /dashboard/attendance [get]
func (h *DashboardHandler) Attendance(c *gin.Context) {
	grade := c.Query("grade")
	date := c.Query("date")
	if date == "" {
		date = h.today()
	}

	resp, cacheHit, err := h.dashboard.Attendance(c.Request.Context(), grade, date)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, resp, nil, map[string]interface{}{"cache_hit": cacheHit})
}

// Grades godoc
// @Summary Distinct grades on the roster
// @Tags Dashboard
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /dashboard/grades [get]
func (h *DashboardHandler) Grades(c *gin.Context) {
	grades, err := h.grades.Grades(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	if grades == nil {
		grades = []string{}
	}
	response.JSON(c, http.StatusOK, grades, nil)
}

// Export godoc
// @Summary Export a grade/day attendance recap
// @Tags Dashboard
// @Produce text/csv
// @Param grade query string true "Grade"
// @Param date query string false "Date YYYY-MM-DD, defaults to today"
// @Param format query string false "csv or pdf"
// @Success 200
// @Router /dashboard/attendance/export [get]
func (h *DashboardHandler) Export(c *gin.Context) {
	grade := c.Query("grade")
	date := c.Query("date")
	if date == "" {
		date = h.today()
	}

	resp, _, err := h.dashboard.Attendance(c.Request.Context(), grade, date)
	if err != nil {
		response.Error(c, err)
		return
	}

	sheet := export.Sheet{
		Headers: []string{"NIS", "Nama", "Kelas", "Status", "Tanggal"},
	}
	for _, record := range resp.Records {
		sheet.Rows = append(sheet.Rows, []string{record.NIS, record.Name, record.Grade, string(record.Status), record.Date})
	}

	filename := fmt.Sprintf("rekap-kehadiran-kelas-%s-%s", grade, date)
	switch c.DefaultQuery("format", "csv") {
	case "pdf":
		out, err := h.pdf.Render(sheet, fmt.Sprintf("Rekap Kehadiran Kelas %s - %s", grade, date))
		if err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf"))
			return
		}
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s.pdf", filename))
		c.Data(http.StatusOK, "application/pdf", out)
	case "csv":
		out, err := h.csv.Render(sheet)
		if err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv"))
			return
		}
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s.csv", filename))
		c.Data(http.StatusOK, "text/csv", out)
	default:
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf"))
	}
}
