package reconciliation

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"rental-billing-backend/internal/apperrors"
	"rental-billing-backend/internal/audit"
	"rental-billing-backend/internal/gateway"
	"rental-billing-backend/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Database is the slice of *gorm.DB the service drives transactions
// through. Every mutation for one payment event runs inside a single
// transaction so a payment update can never land without the matching
// invoice recalculation.
type Database interface {
	Transaction(fn func(tx *gorm.DB) error, opts ...*sql.TxOptions) error
}

type InvoiceRepository interface {
	GetByID(ctx context.Context, db *gorm.DB, id uuid.UUID) (*models.Invoice, error)
	GetByIDForUpdate(ctx context.Context, db *gorm.DB, id uuid.UUID) (*models.Invoice, error)
	GetByNumber(ctx context.Context, db *gorm.DB, number string) (*models.Invoice, error)
	Create(ctx context.Context, db *gorm.DB, inv *models.Invoice) error
	Save(ctx context.Context, db *gorm.DB, inv *models.Invoice) error
	ExistsForPeriod(ctx context.Context, db *gorm.DB, contractID uuid.UUID, periodStart time.Time) (bool, error)
}

type PaymentRepository interface {
	GetByID(ctx context.Context, db *gorm.DB, id uuid.UUID) (*models.Payment, error)
	GetByIDForUpdate(ctx context.Context, db *gorm.DB, id uuid.UUID) (*models.Payment, error)
	GetByReferenceForUpdate(ctx context.Context, db *gorm.DB, reference string) (*models.Payment, error)
	ListByInvoice(ctx context.Context, db *gorm.DB, invoiceID uuid.UUID) ([]models.Payment, error)
	Create(ctx context.Context, db *gorm.DB, p *models.Payment) error
	Save(ctx context.Context, db *gorm.DB, p *models.Payment) error
}

type ContractRepository interface {
	GetByID(ctx context.Context, db *gorm.DB, id uuid.UUID) (*models.Contract, error)
}

type Service struct {
	db        Database
	invoices  InvoiceRepository
	payments  PaymentRepository
	contracts ContractRepository
	audit     audit.Recorder
	serverKey string
	log       *zap.Logger
	now       func() time.Time
}

func NewService(
	db Database,
	invoices InvoiceRepository,
	payments PaymentRepository,
	contracts ContractRepository,
	auditRec audit.Recorder,
	serverKey string,
	log *zap.Logger,
) *Service {
	return &Service{
		db:        db,
		invoices:  invoices,
		payments:  payments,
		contracts: contracts,
		audit:     auditRec,
		serverKey: serverKey,
		log:       log,
		now:       time.Now,
	}
}

// ApplyGatewayNotification reconciles one gateway notification against
// its payment and invoice. Validation, signature, and unknown-order
// failures surface to the caller; anything that goes wrong after the
// payment is found is logged and reported as success, because the
// gateway answers non-2xx with retry floods.
func (s *Service) ApplyGatewayNotification(ctx context.Context, n *gateway.Notification) error {
	if err := n.ValidateRequired(); err != nil {
		return err
	}
	if !gateway.VerifySignature(n, s.serverKey) {
		s.log.Warn("notification signature mismatch", zap.String("order_id", n.OrderID))
		return apperrors.Authentication("invalid signature")
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		payment, err := s.payments.GetByReferenceForUpdate(ctx, tx, n.OrderID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.NotFound("payment", n.OrderID)
			}
			return apperrors.Internal(err)
		}

		mapped, mappedPaidAt := gateway.MapStatus(n)

		if gross, gerr := n.GrossAmountMinorUnits(); gerr == nil && gross != payment.Amount {
			s.log.Warn("notification gross amount differs from payment",
				zap.String("order_id", n.OrderID),
				zap.Int64("payment_amount", payment.Amount),
				zap.Int64("gross_amount", gross),
			)
		}

		// Meta is merged even for settled payments so the audit trail
		// always carries the latest gateway payload.
		s.mergeNotificationMeta(payment, n)

		switch {
		case payment.Status == models.PaymentStatusPending:
			if mapped != payment.Status {
				payment.Status = mapped
				if mapped == models.PaymentStatusCompleted {
					paidAt := mappedPaidAt
					if paidAt == nil {
						t := s.now()
						paidAt = &t
					}
					payment.PaidAt = paidAt
				}
				s.log.Info("payment status applied",
					zap.String("order_id", n.OrderID),
					zap.String("status", string(mapped)),
				)
			}
		case mapped != payment.Status:
			// Settled payments never regress; the duplicate or
			// out-of-order delivery is recorded in meta only.
			s.log.Warn("notification ignored for settled payment",
				zap.String("order_id", n.OrderID),
				zap.String("current", string(payment.Status)),
				zap.String("mapped", string(mapped)),
			)
		}

		if err := s.payments.Save(ctx, tx, payment); err != nil {
			return apperrors.Internal(err)
		}

		inv, err := s.invoices.GetByIDForUpdate(ctx, tx, payment.InvoiceID)
		if err != nil {
			return apperrors.Internal(err)
		}
		if err := s.recalculate(ctx, tx, inv); err != nil {
			return apperrors.Internal(err)
		}
		return nil
	})
	if err != nil {
		var nf *apperrors.NotFoundError
		if errors.As(err, &nf) {
			s.log.Warn("notification for unknown order", zap.String("order_id", n.OrderID))
			return err
		}
		s.log.Error("reconciliation failed, acknowledging anyway",
			zap.String("order_id", n.OrderID),
			zap.Error(err),
		)
		return nil
	}
	return nil
}

func (s *Service) mergeNotificationMeta(p *models.Payment, n *gateway.Notification) {
	meta := map[string]any{}
	if len(p.Meta) > 0 {
		_ = json.Unmarshal(p.Meta, &meta)
	}
	if len(n.Raw) > 0 {
		meta["last_notification"] = json.RawMessage(n.Raw)
	}
	if n.PaymentType != "" {
		meta["payment_type"] = n.PaymentType
	}
	if va := n.FirstVANumber(); va != "" {
		meta["va_number"] = va
		p.VANumber = &va
	}
	if n.QRString != "" {
		meta["qr_string"] = n.QRString
	}
	if n.ExpiryTime != "" {
		meta["expiry_time"] = n.ExpiryTime
		if t, err := time.Parse("2006-01-02 15:04:05", n.ExpiryTime); err == nil {
			p.VAExpiredAt = &t
		}
	}
	raw, err := json.Marshal(meta)
	if err != nil {
		s.log.Error("marshal payment meta", zap.Error(err))
		return
	}
	p.Meta = datatypes.JSON(raw)
}

// wrapLookup converts a repository miss into the taxonomy error for the
// given resource; everything else becomes an internal error.
func wrapLookup(err error, resource, ref string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperrors.NotFound(resource, ref)
	}
	return apperrors.Internal(err)
}
