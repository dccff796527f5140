package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusFailed    PaymentStatus = "failed"
	PaymentStatusCancelled PaymentStatus = "cancelled"
)

func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentStatusPending, PaymentStatusCompleted, PaymentStatusFailed, PaymentStatusCancelled:
		return true
	}
	return false
}

// Terminal reports whether no further status transition is allowed.
// Pending is the only non-terminal state.
func (s PaymentStatus) Terminal() bool {
	return s != PaymentStatusPending
}

type PaymentMethod string

const (
	PaymentMethodCash           PaymentMethod = "cash"
	PaymentMethodTransfer       PaymentMethod = "transfer"
	PaymentMethodVirtualAccount PaymentMethod = "virtual_account"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentMethodCash, PaymentMethodTransfer, PaymentMethodVirtualAccount:
		return true
	}
	return false
}

// Manual reports whether the method is entered by staff rather than a gateway.
func (m PaymentMethod) Manual() bool {
	return m == PaymentMethodCash || m == PaymentMethodTransfer
}

type Payment struct {
	ID            uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	InvoiceID     uuid.UUID      `gorm:"type:uuid;index" json:"invoice_id"`
	Reference     *string        `gorm:"uniqueIndex" json:"reference"`
	Method        PaymentMethod  `gorm:"index" json:"method"`
	Status        PaymentStatus  `gorm:"index" json:"status"`
	Amount        int64          `json:"amount"`
	PaidAt        *time.Time     `json:"paid_at"`
	Provider      *string        `json:"provider"`
	VANumber      *string        `json:"va_number"`
	VAExpiredAt   *time.Time     `json:"va_expired_at"`
	AttachmentRef *string        `json:"attachment_ref"`
	Note          string         `json:"note"`
	Meta          datatypes.JSON `json:"meta"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}
