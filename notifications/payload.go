// Package notifications delivers completed-service events to external sinks.
package notifications

import (
	"context"
	"fmt"
	"time"

	"barberqueue-backend/models"
	"barberqueue-backend/utils"

	"github.com/shopspring/decimal"
)

// Payload is the body sent for every completed service.
type Payload struct {
	ClientName  string          `json:"client_name"`
	HaircutType string          `json:"haircut_type"`
	Cost        decimal.Decimal `json:"cost"`
	Timestamp   time.Time       `json:"timestamp"`
	Duration    *int            `json:"duration"`
}

func PayloadFromAppointment(a models.Appointment) Payload {
	return Payload{
		ClientName:  a.ClientName,
		HaircutType: a.HaircutTypeName,
		Cost:        a.Price,
		Timestamp:   a.FinishedAt.UTC(),
		Duration:    a.DurationMinutes,
	}
}

// Message renders the payload as a short text for chat and SMS channels.
func (p Payload) Message(currency string, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	msg := fmt.Sprintf("Service completed\nClient: %s\nHaircut: %s\nAmount: %s\nTime: %s",
		p.ClientName, p.HaircutType, utils.FormatMoney(currency, p.Cost),
		p.Timestamp.In(loc).Format("02/01/2006 15:04"))
	if p.Duration != nil {
		msg += fmt.Sprintf("\nDuration: %d min", *p.Duration)
	}
	return msg
}

// Sink delivers one payload. Implementations make a single attempt.
type Sink interface {
	Name() string
	Send(ctx context.Context, p Payload) error
}
