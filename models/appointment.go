package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Appointment is the append-only history record of one completed service.
type Appointment struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	ClientName      string          `gorm:"not null" json:"clientName"`
	HaircutTypeID   uuid.UUID       `gorm:"type:uuid;index;not null" json:"haircutTypeId"`
	HaircutTypeName string          `gorm:"not null" json:"haircutTypeName"`
	Price           decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
	StartedAt       *time.Time      `json:"startedAt"`
	FinishedAt      time.Time       `gorm:"index;not null" json:"finishedAt"`
	DurationMinutes *int            `json:"durationMinutes"`
	CreatedAt       time.Time       `json:"createdAt"`
}
