package gateway

import (
	"time"

	"rental-billing-backend/internal/models"
)

const timeLayout = "2006-01-02 15:04:05"

// MapStatus translates a gateway notification into the internal payment
// status plus the settlement timestamp. It is pure: no storage access,
// no side effects.
//
// capture/settlement with fraud accept settle the payment; a fraud
// challenge keeps it pending until the gateway decides. deny and
// failure are failures, cancel and expire are cancellations.
func MapStatus(n *Notification) (models.PaymentStatus, *time.Time) {
	switch n.TransactionStatus {
	case "capture":
		switch n.FraudStatus {
		case "challenge":
			return models.PaymentStatusPending, nil
		case "deny":
			return models.PaymentStatusFailed, nil
		default:
			return models.PaymentStatusCompleted, paidAt(n)
		}
	case "settlement":
		return models.PaymentStatusCompleted, paidAt(n)
	case "pending":
		return models.PaymentStatusPending, nil
	case "deny", "failure":
		return models.PaymentStatusFailed, nil
	case "cancel", "expire":
		return models.PaymentStatusCancelled, nil
	default:
		// Unknown states never settle anything.
		return models.PaymentStatusPending, nil
	}
}

func paidAt(n *Notification) *time.Time {
	for _, s := range []string{n.SettlementTime, n.TransactionTime} {
		if s == "" {
			continue
		}
		if t, err := time.Parse(timeLayout, s); err == nil {
			return &t
		}
	}
	return nil
}
