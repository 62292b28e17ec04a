package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type QueueStatus string

const (
	StatusWaiting    QueueStatus = "waiting"
	StatusInProgress QueueStatus = "in_progress"
	StatusCompleted  QueueStatus = "completed"
)

// Label returns the human readable name shown in listings.
func (s QueueStatus) Label() string {
	switch s {
	case StatusWaiting:
		return "Waiting"
	case StatusInProgress:
		return "In progress"
	case StatusCompleted:
		return "Completed"
	}
	return "Unknown"
}

// QueueItem is one client's pending or active service request.
// Price is captured from the catalog at enrollment and never updated.
type QueueItem struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	ClientName    string          `gorm:"not null" json:"clientName"`
	HaircutTypeID uuid.UUID       `gorm:"type:uuid;index;not null" json:"haircutTypeId"`
	HaircutType   HaircutType     `gorm:"foreignKey:HaircutTypeID" json:"haircutType"`
	Price         decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
	Status        QueueStatus     `gorm:"type:varchar(20);not null;default:'waiting'" json:"status"`
	Position      int             `gorm:"not null;index" json:"position"`
	AddedAt       time.Time       `gorm:"not null" json:"addedAt"`
	StartedAt     *time.Time      `json:"startedAt"`
	FinishedAt    *time.Time      `json:"finishedAt"`
}
