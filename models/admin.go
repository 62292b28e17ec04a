package models

import (
	"barberqueue-backend/utils"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Admin struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey"`
	Email    string    `gorm:"uniqueIndex;not null"`
	Password string    `gorm:"not null"`
	Name     string    `gorm:"not null"`
	Role     string    `gorm:"type:varchar(20);not null;default:'admin'"` // 'admin' or 'staff'

	LastLogin *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Initialize UUID and hash the plain password before creating
func (a *Admin) BeforeCreate(tx *gorm.DB) (err error) {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	hashed, err := utils.HashPassword(a.Password)
	if err != nil {
		return err
	}
	a.Password = hashed
	return
}
