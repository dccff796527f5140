package models

import (
	"time"

	"github.com/google/uuid"
)

type InvoiceStatus string

const (
	InvoiceStatusPending   InvoiceStatus = "pending"
	InvoiceStatusPaid      InvoiceStatus = "paid"
	InvoiceStatusCancelled InvoiceStatus = "cancelled"
)

func (s InvoiceStatus) Valid() bool {
	switch s {
	case InvoiceStatusPending, InvoiceStatusPaid, InvoiceStatusCancelled:
		return true
	}
	return false
}

type Invoice struct {
	ID          uuid.UUID     `gorm:"type:uuid;primaryKey" json:"id"`
	Number      string        `gorm:"uniqueIndex" json:"number"`
	ContractID  uuid.UUID     `gorm:"type:uuid;index" json:"contract_id"`
	Amount      int64         `json:"amount"`
	Status      InvoiceStatus `gorm:"index" json:"status"`
	DueDate     time.Time     `json:"due_date"`
	PaidAt      *time.Time    `json:"paid_at"`
	PeriodStart *time.Time    `json:"period_start"`
	PeriodEnd   *time.Time    `json:"period_end"`
	Notes       string        `json:"notes"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}
