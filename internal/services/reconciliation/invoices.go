package reconciliation

import (
	"context"
	"fmt"
	"strings"
	"time"

	"rental-billing-backend/internal/apperrors"
	"rental-billing-backend/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// InvoiceDetail is an invoice together with its payments and the
// derived outstanding balance.
type InvoiceDetail struct {
	Invoice     *models.Invoice  `json:"invoice"`
	Payments    []models.Payment `json:"payments"`
	Outstanding int64            `json:"outstanding"`
}

// GenerateInvoice creates the invoice for one billing period of a
// contract. Each contract gets at most one invoice per period.
func (s *Service) GenerateInvoice(ctx context.Context, contractID uuid.UUID, periodStart time.Time) (*models.Invoice, error) {
	var invoice *models.Invoice
	txErr := s.db.Transaction(func(tx *gorm.DB) error {
		contract, err := s.contracts.GetByID(ctx, tx, contractID)
		if err != nil {
			return wrapLookup(err, "contract", contractID.String())
		}
		if !contract.Active {
			return apperrors.InvalidState("contract is not active")
		}

		exists, err := s.invoices.ExistsForPeriod(ctx, tx, contract.ID, periodStart)
		if err != nil {
			return apperrors.Internal(err)
		}
		if exists {
			return apperrors.Validation("period_start", "invoice already generated for this period")
		}

		periodEnd := periodStart.AddDate(0, 1, 0)
		id := uuid.New()
		inv := &models.Invoice{
			ID:          id,
			Number:      invoiceNumber(periodStart, id),
			ContractID:  contract.ID,
			Amount:      contract.MonthlyAmount,
			Status:      models.InvoiceStatusPending,
			DueDate:     dueDateFor(contract, periodStart),
			PeriodStart: &periodStart,
			PeriodEnd:   &periodEnd,
		}
		if err := s.invoices.Create(ctx, tx, inv); err != nil {
			return apperrors.Internal(err)
		}
		s.log.Info("invoice generated",
			zap.String("number", inv.Number),
			zap.String("contract", contract.ID.String()),
		)
		invoice = inv
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}
	return invoice, nil
}

func invoiceNumber(periodStart time.Time, id uuid.UUID) string {
	short := strings.ToUpper(strings.ReplaceAll(id.String(), "-", "")[:8])
	return fmt.Sprintf("INV/%s/%s", periodStart.Format("200601"), short)
}

func dueDateFor(contract *models.Contract, periodStart time.Time) time.Time {
	day := contract.BillingDay
	if day < 1 || day > 28 {
		day = periodStart.Day()
	}
	return time.Date(periodStart.Year(), periodStart.Month(), day, 0, 0, 0, 0, periodStart.Location())
}

// GetInvoiceDetail loads an invoice with its payments and outstanding
// balance.
func (s *Service) GetInvoiceDetail(ctx context.Context, invoiceID uuid.UUID) (*InvoiceDetail, error) {
	var detail *InvoiceDetail
	txErr := s.db.Transaction(func(tx *gorm.DB) error {
		inv, err := s.invoices.GetByID(ctx, tx, invoiceID)
		if err != nil {
			return wrapLookup(err, "invoice", invoiceID.String())
		}
		return s.buildDetail(ctx, tx, inv, &detail)
	})
	if txErr != nil {
		return nil, txErr
	}
	return detail, nil
}

// GetInvoiceDetailByNumber is the public-site lookup by the
// human-facing invoice number.
func (s *Service) GetInvoiceDetailByNumber(ctx context.Context, number string) (*InvoiceDetail, error) {
	var detail *InvoiceDetail
	txErr := s.db.Transaction(func(tx *gorm.DB) error {
		inv, err := s.invoices.GetByNumber(ctx, tx, number)
		if err != nil {
			return wrapLookup(err, "invoice", number)
		}
		return s.buildDetail(ctx, tx, inv, &detail)
	})
	if txErr != nil {
		return nil, txErr
	}
	return detail, nil
}

func (s *Service) buildDetail(ctx context.Context, tx *gorm.DB, inv *models.Invoice, out **InvoiceDetail) error {
	payments, err := s.payments.ListByInvoice(ctx, tx, inv.ID)
	if err != nil {
		return apperrors.Internal(err)
	}
	*out = &InvoiceDetail{
		Invoice:     inv,
		Payments:    payments,
		Outstanding: Outstanding(inv.Amount, payments),
	}
	return nil
}
