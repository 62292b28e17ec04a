package queue

import (
	"time"

	"barberqueue-backend/models"
	"barberqueue-backend/utils"

	"github.com/shopspring/decimal"
)

// Stats is a snapshot derived from completed appointments.
type Stats struct {
	TotalAppointments int64           `json:"totalAppointments"`
	TotalRevenue      decimal.Decimal `json:"totalRevenue"`
	AveragePrice      decimal.Decimal `json:"averagePrice"`
}

// NewStats derives the average ticket, which is zero when nothing was served.
func NewStats(count int64, revenue decimal.Decimal) Stats {
	avg := decimal.Zero
	if count > 0 {
		avg = revenue.Div(decimal.NewFromInt(count))
	}
	return Stats{TotalAppointments: count, TotalRevenue: revenue, AveragePrice: avg}
}

// Summarize folds appointment prices into Stats.
func Summarize(appts []models.Appointment) Stats {
	var t Totals
	for _, a := range appts {
		t.Record(a.Price)
	}
	return t.Stats()
}

// Totals are running counters updated once per completion.
type Totals struct {
	Served  int64           `json:"totalServed"`
	Revenue decimal.Decimal `json:"totalRevenue"`
}

func (t *Totals) Record(price decimal.Decimal) {
	t.Served++
	t.Revenue = t.Revenue.Add(price)
}

func (t Totals) Stats() Stats { return NewStats(t.Served, t.Revenue) }

// Range is a half-open interval [From, To). Zero bounds are open.
type Range struct {
	From time.Time
	To   time.Time
}

// Unbounded reports whether neither bound is set.
func (r Range) Unbounded() bool { return r.From.IsZero() && r.To.IsZero() }

func (r Range) Contains(t time.Time) bool {
	if !r.From.IsZero() && t.Before(r.From) {
		return false
	}
	if !r.To.IsZero() && !t.Before(r.To) {
		return false
	}
	return true
}

// Today is the calendar day containing now in loc.
func Today(now time.Time, loc *time.Location) Range {
	from, to := utils.DayBounds(now, loc)
	return Range{From: from, To: to}
}
