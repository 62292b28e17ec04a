package controllers

import (
	"bytes"
	"net/http"
	"time"

	"barberqueue-backend/services"
	"barberqueue-backend/utils"

	"github.com/gin-gonic/gin"
)

// ReportController serves end-of-day reports.
type ReportController struct {
	Reports  *services.ReportService
	Location *time.Location
}

// DailyPDF renders the report for ?date=YYYY-MM-DD, today by default.
func (rc *ReportController) DailyPDF(c *gin.Context) {
	day, ok := rc.day(c)
	if !ok {
		return
	}

	report, err := rc.Reports.Daily(c.Request.Context(), day)
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to build report")
		return
	}

	var buf bytes.Buffer
	if err := report.WritePDF(&buf); err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to generate PDF")
		return
	}

	c.Header("Content-Disposition", "attachment; filename=report-"+day.Format("2006-01-02")+".pdf")
	c.Data(http.StatusOK, "application/pdf", buf.Bytes())
}

// Daily returns the same report as JSON.
func (rc *ReportController) Daily(c *gin.Context) {
	day, ok := rc.day(c)
	if !ok {
		return
	}
	report, err := rc.Reports.Daily(c.Request.Context(), day)
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to build report")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"date":         day.Format("2006-01-02"),
		"stats":        report.Stats,
		"appointments": report.Appointments,
	})
}

func (rc *ReportController) day(c *gin.Context) (time.Time, bool) {
	raw := c.Query("date")
	if raw == "" {
		return time.Now().In(rc.Location), true
	}
	day, err := time.ParseInLocation("2006-01-02", raw, rc.Location)
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid date, use YYYY-MM-DD")
		return time.Time{}, false
	}
	return day, true
}
