package models

import (
	"time"

	"github.com/google/uuid"
)

type Contract struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	TenantName    string    `gorm:"index" json:"tenant_name"`
	RoomNumber    string    `json:"room_number"`
	MonthlyAmount int64     `json:"monthly_amount"`
	StartDate     time.Time `json:"start_date"`
	EndDate       time.Time `json:"end_date"`
	BillingDay    int       `json:"billing_day"`
	Active        bool      `gorm:"index" json:"active"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
