package services

import (
	"fmt"
	"io"
	"time"

	"barberqueue-backend/models"
	"barberqueue-backend/queue"
	"barberqueue-backend/utils"

	"github.com/phpdave11/gofpdf"
)

// DailyReport is the content of the end-of-day report.
type DailyReport struct {
	Day          time.Time
	Stats        queue.Stats
	Appointments []models.Appointment
	Currency     string
	Location     *time.Location
}

// WritePDF renders the report as an A4 document.
func (r DailyReport) WritePDF(w io.Writer) error {
	loc := r.Location
	if loc == nil {
		loc = time.UTC
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()
	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(0, 10, "Daily report "+r.Day.In(loc).Format("02/01/2006"))
	pdf.Ln(12)

	pdf.SetFont("Arial", "", 12)
	pdf.Cell(0, 8, fmt.Sprintf("Clients served: %d", r.Stats.TotalAppointments))
	pdf.Ln(7)
	pdf.Cell(0, 8, tr("Revenue: "+utils.FormatMoney(r.Currency, r.Stats.TotalRevenue)))
	pdf.Ln(7)
	pdf.Cell(0, 8, tr("Average ticket: "+utils.FormatMoney(r.Currency, r.Stats.AveragePrice)))
	pdf.Ln(12)

	widths := []float64{25, 60, 50, 25, 30}
	pdf.SetFont("Arial", "B", 11)
	for i, h := range []string{"Time", "Client", "Haircut", "Minutes", "Price"} {
		pdf.CellFormat(widths[i], 8, h, "1", 0, "L", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 10)
	for _, a := range r.Appointments {
		minutes := "-"
		if a.DurationMinutes != nil {
			minutes = fmt.Sprintf("%d", *a.DurationMinutes)
		}
		row := []string{
			a.FinishedAt.In(loc).Format("15:04"),
			tr(a.ClientName),
			tr(a.HaircutTypeName),
			minutes,
			tr(utils.FormatMoney(r.Currency, a.Price)),
		}
		for i, cell := range row {
			pdf.CellFormat(widths[i], 7, cell, "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}

	return pdf.Output(w)
}

// Summary is the short text sent at the end of the day.
func (r DailyReport) Summary() string {
	loc := r.Location
	if loc == nil {
		loc = time.UTC
	}
	return fmt.Sprintf("Daily summary %s\nClients served: %d\nRevenue: %s\nAverage ticket: %s",
		r.Day.In(loc).Format("02/01/2006"),
		r.Stats.TotalAppointments,
		utils.FormatMoney(r.Currency, r.Stats.TotalRevenue),
		utils.FormatMoney(r.Currency, r.Stats.AveragePrice))
}
