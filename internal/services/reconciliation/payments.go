package reconciliation

import (
	"context"
	"fmt"
	"time"

	"rental-billing-backend/internal/apperrors"
	"rental-billing-backend/internal/models"
	"rental-billing-backend/internal/money"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ManualPaymentInput is a staff-entered cash or bank-transfer payment.
// A non-nil PaidAt records the payment as already verified and settles
// it immediately; that override requires a note explaining why.
type ManualPaymentInput struct {
	InvoiceID     uuid.UUID
	Method        models.PaymentMethod
	Amount        int64
	PaidAt        *time.Time
	AttachmentRef *string
	Note          string
	ActorID       string
}

// RecordManualPayment creates a payment for a manual channel. Without a
// PaidAt override the payment stays pending until staff acknowledge it;
// the invoice is not touched until then.
func (s *Service) RecordManualPayment(ctx context.Context, in ManualPaymentInput) (*models.Payment, *models.Invoice, error) {
	if !in.Method.Manual() {
		return nil, nil, apperrors.Validation("method", "must be cash or transfer")
	}
	amount, err := money.New(in.Amount)
	if err != nil || amount.IsZero() {
		return nil, nil, apperrors.Validation("amount", "must be positive")
	}
	if in.PaidAt != nil && in.Note == "" {
		return nil, nil, apperrors.Validation("note", "required when paid_at is overridden")
	}

	var (
		payment *models.Payment
		invoice *models.Invoice
	)
	txErr := s.db.Transaction(func(tx *gorm.DB) error {
		inv, err := s.invoices.GetByIDForUpdate(ctx, tx, in.InvoiceID)
		if err != nil {
			return wrapLookup(err, "invoice", in.InvoiceID.String())
		}
		if inv.Status == models.InvoiceStatusCancelled {
			return apperrors.Validation("invoice", "cancelled invoices do not accept payments")
		}

		p := &models.Payment{
			ID:            uuid.New(),
			InvoiceID:     inv.ID,
			Method:        in.Method,
			Status:        models.PaymentStatusPending,
			Amount:        amount.Int64(),
			AttachmentRef: in.AttachmentRef,
			Note:          in.Note,
		}
		if in.PaidAt != nil {
			p.Status = models.PaymentStatusCompleted
			p.PaidAt = in.PaidAt
		}
		if err := s.payments.Create(ctx, tx, p); err != nil {
			return apperrors.Internal(err)
		}
		if p.Status == models.PaymentStatusCompleted {
			if err := s.recalculate(ctx, tx, inv); err != nil {
				return apperrors.Internal(err)
			}
		}
		if err := s.audit.Record(ctx, tx, in.ActorID, "payment.record_manual", p.ID.String(), in.Note, map[string]any{
			"invoice_id": inv.ID.String(),
			"method":     string(in.Method),
			"amount":     p.Amount,
		}); err != nil {
			return apperrors.Internal(err)
		}
		payment, invoice = p, inv
		return nil
	})
	if txErr != nil {
		return nil, nil, txErr
	}
	return payment, invoice, nil
}

// CreateGatewayPayment opens a pending virtual-account payment for the
// invoice's outstanding balance and assigns the order reference the
// gateway will echo back in notifications.
func (s *Service) CreateGatewayPayment(ctx context.Context, invoiceID uuid.UUID, provider string) (*models.Payment, error) {
	if provider == "" {
		return nil, apperrors.Validation("provider", "required")
	}
	var payment *models.Payment
	txErr := s.db.Transaction(func(tx *gorm.DB) error {
		inv, err := s.invoices.GetByIDForUpdate(ctx, tx, invoiceID)
		if err != nil {
			return wrapLookup(err, "invoice", invoiceID.String())
		}
		switch inv.Status {
		case models.InvoiceStatusCancelled:
			return apperrors.Validation("invoice", "cancelled invoices do not accept payments")
		case models.InvoiceStatusPaid:
			return apperrors.InvalidState("invoice is already paid")
		case models.InvoiceStatusPending:
		}

		payments, err := s.payments.ListByInvoice(ctx, tx, inv.ID)
		if err != nil {
			return apperrors.Internal(err)
		}
		outstanding := Outstanding(inv.Amount, payments)
		if outstanding == 0 {
			return apperrors.InvalidState("nothing outstanding on invoice")
		}

		id := uuid.New()
		reference := fmt.Sprintf("RB-%s", id.String())
		p := &models.Payment{
			ID:        id,
			InvoiceID: inv.ID,
			Reference: &reference,
			Method:    models.PaymentMethodVirtualAccount,
			Status:    models.PaymentStatusPending,
			Amount:    outstanding,
			Provider:  &provider,
		}
		if err := s.payments.Create(ctx, tx, p); err != nil {
			return apperrors.Internal(err)
		}
		s.log.Info("gateway payment opened",
			zap.String("order_id", reference),
			zap.String("invoice", inv.Number),
			zap.Int64("amount", outstanding),
		)
		payment = p
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}
	return payment, nil
}

// AcknowledgePayment is the staff review of a manual submission.
// Approve settles the payment; reject fails it with a mandatory reason.
func (s *Service) AcknowledgePayment(ctx context.Context, paymentID uuid.UUID, approve bool, actorID, reason string, paidAt *time.Time) (*models.Payment, *models.Invoice, error) {
	if !approve && reason == "" {
		return nil, nil, apperrors.Validation("reason", "required when rejecting")
	}
	if approve && paidAt != nil && reason == "" {
		return nil, nil, apperrors.Validation("reason", "required when paid_at is overridden")
	}

	var (
		payment *models.Payment
		invoice *models.Invoice
	)
	txErr := s.db.Transaction(func(tx *gorm.DB) error {
		p, err := s.payments.GetByIDForUpdate(ctx, tx, paymentID)
		if err != nil {
			return wrapLookup(err, "payment", paymentID.String())
		}
		if !p.Method.Manual() {
			return apperrors.InvalidState("only manual payments are acknowledged")
		}
		if p.Status.Terminal() {
			return apperrors.InvalidState("payment is already settled")
		}

		action := "payment.reject"
		if approve {
			action = "payment.approve"
			p.Status = models.PaymentStatusCompleted
			if paidAt == nil {
				t := s.now()
				paidAt = &t
			}
			p.PaidAt = paidAt
		} else {
			p.Status = models.PaymentStatusFailed
		}
		if err := s.payments.Save(ctx, tx, p); err != nil {
			return apperrors.Internal(err)
		}

		inv, err := s.invoices.GetByIDForUpdate(ctx, tx, p.InvoiceID)
		if err != nil {
			return apperrors.Internal(err)
		}
		if err := s.recalculate(ctx, tx, inv); err != nil {
			return apperrors.Internal(err)
		}
		if err := s.audit.Record(ctx, tx, actorID, action, p.ID.String(), reason, nil); err != nil {
			return apperrors.Internal(err)
		}
		payment, invoice = p, inv
		return nil
	})
	if txErr != nil {
		return nil, nil, txErr
	}
	return payment, invoice, nil
}

// VoidPayment cancels a payment. A completed payment that is holding an
// invoice in Paid cannot be voided here; that needs a refund through
// the gateway, which is outside this service. Voiding an already-voided
// payment is a no-op.
func (s *Service) VoidPayment(ctx context.Context, paymentID uuid.UUID, actorID, reason string) (*models.Payment, error) {
	if reason == "" {
		return nil, apperrors.Validation("reason", "required")
	}
	var payment *models.Payment
	txErr := s.db.Transaction(func(tx *gorm.DB) error {
		p, err := s.payments.GetByIDForUpdate(ctx, tx, paymentID)
		if err != nil {
			return wrapLookup(err, "payment", paymentID.String())
		}
		switch p.Status {
		case models.PaymentStatusCancelled:
			payment = p
			return nil
		case models.PaymentStatusFailed:
			return apperrors.InvalidState("failed payment cannot be voided")
		case models.PaymentStatusPending, models.PaymentStatusCompleted:
		}

		inv, err := s.invoices.GetByIDForUpdate(ctx, tx, p.InvoiceID)
		if err != nil {
			return apperrors.Internal(err)
		}
		if p.Status == models.PaymentStatusCompleted && inv.Status == models.InvoiceStatusPaid {
			return apperrors.InvalidState("payment is counted toward a paid invoice")
		}

		p.Status = models.PaymentStatusCancelled
		if err := s.payments.Save(ctx, tx, p); err != nil {
			return apperrors.Internal(err)
		}
		if err := s.recalculate(ctx, tx, inv); err != nil {
			return apperrors.Internal(err)
		}
		if err := s.audit.Record(ctx, tx, actorID, "payment.void", p.ID.String(), reason, nil); err != nil {
			return apperrors.Internal(err)
		}
		payment = p
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}
	return payment, nil
}
