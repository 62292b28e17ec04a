// models/notification_log.go
package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	NotificationSent   = "sent"
	NotificationFailed = "failed"
)

// NotificationLog records one delivery attempt of a completion event to one sink.
type NotificationLog struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	AppointmentID uuid.UUID `gorm:"type:uuid;index" json:"appointmentId"`
	Sink          string    `gorm:"type:varchar(20);not null" json:"sink"` // webhook, twilio, kafka
	ClientName    string    `json:"clientName"`
	Status        string    `gorm:"type:varchar(20);not null" json:"status"` // sent, failed
	ErrorMessage  string    `gorm:"type:text" json:"errorMessage,omitempty"`
	SentAt        time.Time `gorm:"index" json:"sentAt"`
}

func (n *NotificationLog) BeforeCreate(tx *gorm.DB) (err error) {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	return
}
