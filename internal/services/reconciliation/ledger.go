package reconciliation

import (
	"context"
	"time"

	"rental-billing-backend/internal/apperrors"
	"rental-billing-backend/internal/models"
	"rental-billing-backend/internal/money"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// CompletedTotal sums the amounts of all completed payments.
func CompletedTotal(payments []models.Payment) money.Amount {
	var total money.Amount
	for _, p := range payments {
		if p.Status == models.PaymentStatusCompleted {
			total = total.Add(money.Amount(p.Amount))
		}
	}
	return total
}

// Outstanding returns the invoice amount minus the completed payment
// total, floored at zero.
func Outstanding(invoiceAmount int64, payments []models.Payment) int64 {
	return money.Amount(invoiceAmount).Sub(CompletedTotal(payments)).Int64()
}

func latestPaidAt(payments []models.Payment) *time.Time {
	var latest *time.Time
	for _, p := range payments {
		if p.Status != models.PaymentStatusCompleted || p.PaidAt == nil {
			continue
		}
		if latest == nil || p.PaidAt.After(*latest) {
			latest = p.PaidAt
		}
	}
	return latest
}

// recalculate re-derives the invoice status from its payments. Paid is
// set when the completed total covers the amount; a shortfall after a
// void reverts Paid to Pending. Cancelled is sticky.
func (s *Service) recalculate(ctx context.Context, tx *gorm.DB, inv *models.Invoice) error {
	payments, err := s.payments.ListByInvoice(ctx, tx, inv.ID)
	if err != nil {
		return err
	}
	outstanding := Outstanding(inv.Amount, payments)

	switch inv.Status {
	case models.InvoiceStatusCancelled:
		return nil
	case models.InvoiceStatusPending:
		if outstanding > 0 {
			return nil
		}
		inv.Status = models.InvoiceStatusPaid
		paidAt := latestPaidAt(payments)
		if paidAt == nil {
			t := s.now()
			paidAt = &t
		}
		inv.PaidAt = paidAt
		s.log.Info("invoice paid", zap.String("number", inv.Number))
	case models.InvoiceStatusPaid:
		if outstanding == 0 {
			return nil
		}
		inv.Status = models.InvoiceStatusPending
		inv.PaidAt = nil
		s.log.Info("invoice reverted to pending",
			zap.String("number", inv.Number),
			zap.Int64("outstanding", outstanding),
		)
	}
	return s.invoices.Save(ctx, tx, inv)
}

// CancelInvoice marks an invoice cancelled. Paid invoices cannot be
// cancelled; cancelling an already-cancelled invoice is a no-op.
func (s *Service) CancelInvoice(ctx context.Context, invoiceID uuid.UUID, actorID, reason string) (*models.Invoice, error) {
	if reason == "" {
		return nil, apperrors.Validation("reason", "required")
	}
	var out *models.Invoice
	err := s.db.Transaction(func(tx *gorm.DB) error {
		inv, err := s.invoices.GetByIDForUpdate(ctx, tx, invoiceID)
		if err != nil {
			return wrapLookup(err, "invoice", invoiceID.String())
		}
		switch inv.Status {
		case models.InvoiceStatusPaid:
			return apperrors.InvalidState("paid invoice cannot be cancelled")
		case models.InvoiceStatusCancelled:
			out = inv
			return nil
		case models.InvoiceStatusPending:
		}
		inv.Status = models.InvoiceStatusCancelled
		if err := s.invoices.Save(ctx, tx, inv); err != nil {
			return apperrors.Internal(err)
		}
		if err := s.audit.Record(ctx, tx, actorID, "invoice.cancel", inv.ID.String(), reason, nil); err != nil {
			return apperrors.Internal(err)
		}
		out = inv
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ExtendDueDate moves the due date forward. The new date must be
// strictly in the future.
func (s *Service) ExtendDueDate(ctx context.Context, invoiceID uuid.UUID, actorID string, newDue time.Time, reason string) (*models.Invoice, error) {
	if reason == "" {
		return nil, apperrors.Validation("reason", "required")
	}
	if !newDue.After(s.now()) {
		return nil, apperrors.Validation("due_date", "must be in the future")
	}
	var out *models.Invoice
	err := s.db.Transaction(func(tx *gorm.DB) error {
		inv, err := s.invoices.GetByIDForUpdate(ctx, tx, invoiceID)
		if err != nil {
			return wrapLookup(err, "invoice", invoiceID.String())
		}
		if inv.Status == models.InvoiceStatusCancelled {
			return apperrors.InvalidState("cancelled invoice cannot be extended")
		}
		inv.DueDate = newDue
		if err := s.invoices.Save(ctx, tx, inv); err != nil {
			return apperrors.Internal(err)
		}
		if err := s.audit.Record(ctx, tx, actorID, "invoice.extend_due", inv.ID.String(), reason, map[string]any{
			"new_due_date": newDue.Format(time.RFC3339),
		}); err != nil {
			return apperrors.Internal(err)
		}
		out = inv
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
