package gateway

import (
	"encoding/json"
	"strconv"
	"strings"

	"rental-billing-backend/internal/apperrors"
)

// VANumber is one bank/account pair from a virtual-account charge.
type VANumber struct {
	Bank     string `json:"bank"`
	VANumber string `json:"va_number"`
}

// Notification is the payload the payment gateway POSTs on every
// transaction status change. Unknown fields are retained in Raw so the
// full payload can be kept on the payment for audit.
type Notification struct {
	OrderID           string     `json:"order_id"`
	TransactionStatus string     `json:"transaction_status"`
	StatusCode        string     `json:"status_code"`
	GrossAmount       string     `json:"gross_amount"`
	SignatureKey      string     `json:"signature_key"`
	FraudStatus       string     `json:"fraud_status"`
	PaymentType       string     `json:"payment_type"`
	TransactionTime   string     `json:"transaction_time"`
	SettlementTime    string     `json:"settlement_time"`
	VANumbers         []VANumber `json:"va_numbers"`
	PermataVANumber   string     `json:"permata_va_number"`
	QRString          string     `json:"qr_string"`
	ExpiryTime        string     `json:"expiry_time"`

	Raw json.RawMessage `json:"-"`
}

// ValidateRequired checks the fields every notification must carry
// before any processing happens.
func (n *Notification) ValidateRequired() error {
	switch {
	case n.OrderID == "":
		return apperrors.Validation("order_id", "required")
	case n.StatusCode == "":
		return apperrors.Validation("status_code", "required")
	case n.GrossAmount == "":
		return apperrors.Validation("gross_amount", "required")
	case n.SignatureKey == "":
		return apperrors.Validation("signature_key", "required")
	}
	return nil
}

// GrossAmountMinorUnits parses the gateway's decimal gross_amount string
// ("500000.00") into minor units. The gateway never sends fractional
// minor units; a fractional remainder is a validation failure.
func (n *Notification) GrossAmountMinorUnits() (int64, error) {
	s := n.GrossAmount
	if i := strings.IndexByte(s, '.'); i >= 0 {
		frac := s[i+1:]
		if strings.Trim(frac, "0") != "" {
			return 0, apperrors.Validation("gross_amount", "fractional amount not supported")
		}
		s = s[:i]
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil || v < 0 {
		return 0, apperrors.Validation("gross_amount", "invalid amount")
	}
	return v, nil
}

// FirstVANumber returns the virtual-account number from whichever field
// the channel populated, or empty.
func (n *Notification) FirstVANumber() string {
	if len(n.VANumbers) > 0 {
		return n.VANumbers[0].VANumber
	}
	return n.PermataVANumber
}
