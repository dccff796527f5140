package reconciliation

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"rental-billing-backend/internal/apperrors"
	"rental-billing-backend/internal/gateway"
	"rental-billing-backend/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const testServerKey = "server-key-test"

// fakeDB runs the transaction body directly; the in-memory stores below
// stand in for the database.
type fakeDB struct{}

func (fakeDB) Transaction(fn func(tx *gorm.DB) error, opts ...*sql.TxOptions) error {
	return fn(nil)
}

type memStore struct {
	invoices     map[uuid.UUID]models.Invoice
	payments     map[uuid.UUID]models.Payment
	paymentOrder []uuid.UUID
	contracts    map[uuid.UUID]models.Contract
}

func newMemStore() *memStore {
	return &memStore{
		invoices:  make(map[uuid.UUID]models.Invoice),
		payments:  make(map[uuid.UUID]models.Payment),
		contracts: make(map[uuid.UUID]models.Contract),
	}
}

type fakeInvoices struct{ store *memStore }

func (f *fakeInvoices) GetByID(ctx context.Context, db *gorm.DB, id uuid.UUID) (*models.Invoice, error) {
	inv, ok := f.store.invoices[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &inv, nil
}

func (f *fakeInvoices) GetByIDForUpdate(ctx context.Context, db *gorm.DB, id uuid.UUID) (*models.Invoice, error) {
	return f.GetByID(ctx, db, id)
}

func (f *fakeInvoices) GetByNumber(ctx context.Context, db *gorm.DB, number string) (*models.Invoice, error) {
	for _, inv := range f.store.invoices {
		if inv.Number == number {
			cp := inv
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeInvoices) Create(ctx context.Context, db *gorm.DB, inv *models.Invoice) error {
	f.store.invoices[inv.ID] = *inv
	return nil
}

func (f *fakeInvoices) Save(ctx context.Context, db *gorm.DB, inv *models.Invoice) error {
	f.store.invoices[inv.ID] = *inv
	return nil
}

func (f *fakeInvoices) ExistsForPeriod(ctx context.Context, db *gorm.DB, contractID uuid.UUID, periodStart time.Time) (bool, error) {
	for _, inv := range f.store.invoices {
		if inv.ContractID == contractID && inv.PeriodStart != nil && inv.PeriodStart.Equal(periodStart) {
			return true, nil
		}
	}
	return false, nil
}

type fakePayments struct{ store *memStore }

func (f *fakePayments) GetByID(ctx context.Context, db *gorm.DB, id uuid.UUID) (*models.Payment, error) {
	p, ok := f.store.payments[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &p, nil
}

func (f *fakePayments) GetByIDForUpdate(ctx context.Context, db *gorm.DB, id uuid.UUID) (*models.Payment, error) {
	return f.GetByID(ctx, db, id)
}

func (f *fakePayments) GetByReferenceForUpdate(ctx context.Context, db *gorm.DB, reference string) (*models.Payment, error) {
	for _, id := range f.store.paymentOrder {
		p := f.store.payments[id]
		if p.Reference != nil && *p.Reference == reference {
			cp := p
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakePayments) ListByInvoice(ctx context.Context, db *gorm.DB, invoiceID uuid.UUID) ([]models.Payment, error) {
	var out []models.Payment
	for _, id := range f.store.paymentOrder {
		if p := f.store.payments[id]; p.InvoiceID == invoiceID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakePayments) Create(ctx context.Context, db *gorm.DB, p *models.Payment) error {
	f.store.payments[p.ID] = *p
	f.store.paymentOrder = append(f.store.paymentOrder, p.ID)
	return nil
}

func (f *fakePayments) Save(ctx context.Context, db *gorm.DB, p *models.Payment) error {
	f.store.payments[p.ID] = *p
	return nil
}

type fakeContracts struct{ store *memStore }

func (f *fakeContracts) GetByID(ctx context.Context, db *gorm.DB, id uuid.UUID) (*models.Contract, error) {
	c, ok := f.store.contracts[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &c, nil
}

type auditEntry struct {
	actor, action, subject, reason string
}

type fakeAudit struct{ entries []auditEntry }

func (f *fakeAudit) Record(ctx context.Context, db *gorm.DB, actorID, action, subjectID, reason string, meta map[string]any) error {
	f.entries = append(f.entries, auditEntry{actorID, action, subjectID, reason})
	return nil
}

type ServiceTestSuite struct {
	suite.Suite
	store *memStore
	audit *fakeAudit
	svc   *Service
	now   time.Time
	ctx   context.Context
}

func (s *ServiceTestSuite) SetupTest() {
	s.store = newMemStore()
	s.audit = &fakeAudit{}
	s.now = time.Date(2025, 8, 15, 12, 0, 0, 0, time.UTC)
	s.svc = NewService(
		fakeDB{},
		&fakeInvoices{s.store},
		&fakePayments{s.store},
		&fakeContracts{s.store},
		s.audit,
		testServerKey,
		zap.NewNop(),
	)
	s.svc.now = func() time.Time { return s.now }
	s.ctx = context.Background()
}

func (s *ServiceTestSuite) seedInvoice(amount int64, status models.InvoiceStatus) models.Invoice {
	inv := models.Invoice{
		ID:         uuid.New(),
		ContractID: uuid.New(),
		Amount:     amount,
		Status:     status,
		DueDate:    s.now.AddDate(0, 0, 10),
	}
	inv.Number = fmt.Sprintf("INV/202508/%s", inv.ID.String()[:8])
	if status == models.InvoiceStatusPaid {
		inv.PaidAt = &s.now
	}
	s.store.invoices[inv.ID] = inv
	return inv
}

func (s *ServiceTestSuite) seedGatewayPayment(inv models.Invoice, reference string, amount int64, status models.PaymentStatus) models.Payment {
	provider := "midtrans"
	p := models.Payment{
		ID:        uuid.New(),
		InvoiceID: inv.ID,
		Reference: &reference,
		Method:    models.PaymentMethodVirtualAccount,
		Status:    status,
		Amount:    amount,
		Provider:  &provider,
	}
	if status == models.PaymentStatusCompleted {
		p.PaidAt = &s.now
	}
	s.store.payments[p.ID] = p
	s.store.paymentOrder = append(s.store.paymentOrder, p.ID)
	return p
}

func (s *ServiceTestSuite) notification(orderID, txStatus, gross string) *gateway.Notification {
	n := &gateway.Notification{
		OrderID:           orderID,
		TransactionStatus: txStatus,
		StatusCode:        "200",
		GrossAmount:       gross,
		PaymentType:       "bank_transfer",
		SettlementTime:    "2025-08-15 10:00:00",
		VANumbers:         []gateway.VANumber{{Bank: "bca", VANumber: "9901234567"}},
	}
	n.SignatureKey = gateway.Signature(n.OrderID, n.StatusCode, n.GrossAmount, testServerKey)
	raw, _ := json.Marshal(n)
	n.Raw = raw
	return n
}

func (s *ServiceTestSuite) TestSettlementMarksInvoicePaid() {
	inv := s.seedInvoice(500000, models.InvoiceStatusPending)
	p := s.seedGatewayPayment(inv, "RB-A", 500000, models.PaymentStatusPending)

	err := s.svc.ApplyGatewayNotification(s.ctx, s.notification("RB-A", "settlement", "500000.00"))
	assert.NoError(s.T(), err)

	stored := s.store.payments[p.ID]
	assert.Equal(s.T(), models.PaymentStatusCompleted, stored.Status)
	assert.NotNil(s.T(), stored.PaidAt)
	assert.True(s.T(), stored.PaidAt.Equal(time.Date(2025, 8, 15, 10, 0, 0, 0, time.UTC)))

	storedInv := s.store.invoices[inv.ID]
	assert.Equal(s.T(), models.InvoiceStatusPaid, storedInv.Status)
	assert.NotNil(s.T(), storedInv.PaidAt)
	assert.True(s.T(), storedInv.PaidAt.Equal(*stored.PaidAt))

	payments, _ := s.svc.payments.ListByInvoice(s.ctx, nil, inv.ID)
	assert.Equal(s.T(), int64(0), Outstanding(storedInv.Amount, payments))
}

func (s *ServiceTestSuite) TestDuplicateNotificationIsIdempotent() {
	inv := s.seedInvoice(500000, models.InvoiceStatusPending)
	p := s.seedGatewayPayment(inv, "RB-B", 500000, models.PaymentStatusPending)
	n := s.notification("RB-B", "settlement", "500000.00")

	assert.NoError(s.T(), s.svc.ApplyGatewayNotification(s.ctx, n))
	first := s.store.payments[p.ID]
	firstInv := s.store.invoices[inv.ID]

	assert.NoError(s.T(), s.svc.ApplyGatewayNotification(s.ctx, n))
	second := s.store.payments[p.ID]
	secondInv := s.store.invoices[inv.ID]

	assert.Equal(s.T(), first.Status, second.Status)
	assert.True(s.T(), first.PaidAt.Equal(*second.PaidAt))
	assert.Equal(s.T(), firstInv.Status, secondInv.Status)
	assert.True(s.T(), firstInv.PaidAt.Equal(*secondInv.PaidAt))
	assert.Empty(s.T(), s.audit.entries)
}

func (s *ServiceTestSuite) TestUnknownOrderLeavesStateUntouched() {
	inv := s.seedInvoice(500000, models.InvoiceStatusPending)
	s.seedGatewayPayment(inv, "RB-C", 500000, models.PaymentStatusPending)

	err := s.svc.ApplyGatewayNotification(s.ctx, s.notification("RB-MISSING", "settlement", "500000.00"))

	var notFound *apperrors.NotFoundError
	assert.True(s.T(), errors.As(err, &notFound))
	assert.Len(s.T(), s.store.payments, 1)
	assert.Equal(s.T(), models.InvoiceStatusPending, s.store.invoices[inv.ID].Status)
}

func (s *ServiceTestSuite) TestInvalidSignatureRejected() {
	inv := s.seedInvoice(500000, models.InvoiceStatusPending)
	p := s.seedGatewayPayment(inv, "RB-D", 500000, models.PaymentStatusPending)

	n := s.notification("RB-D", "settlement", "500000.00")
	n.SignatureKey = "tampered"

	err := s.svc.ApplyGatewayNotification(s.ctx, n)

	var authErr *apperrors.AuthenticationError
	assert.True(s.T(), errors.As(err, &authErr))
	assert.Equal(s.T(), models.PaymentStatusPending, s.store.payments[p.ID].Status)
	assert.Equal(s.T(), models.InvoiceStatusPending, s.store.invoices[inv.ID].Status)
}

func (s *ServiceTestSuite) TestMissingFieldsRejected() {
	n := s.notification("RB-E", "settlement", "500000.00")
	n.OrderID = ""

	err := s.svc.ApplyGatewayNotification(s.ctx, n)

	var validationErr *apperrors.ValidationError
	assert.True(s.T(), errors.As(err, &validationErr))
}

func (s *ServiceTestSuite) TestSettledPaymentNeverRegresses() {
	inv := s.seedInvoice(500000, models.InvoiceStatusPaid)
	p := s.seedGatewayPayment(inv, "RB-F", 500000, models.PaymentStatusCompleted)
	settledAt := *s.store.payments[p.ID].PaidAt

	err := s.svc.ApplyGatewayNotification(s.ctx, s.notification("RB-F", "expire", "500000.00"))
	assert.NoError(s.T(), err)

	stored := s.store.payments[p.ID]
	assert.Equal(s.T(), models.PaymentStatusCompleted, stored.Status)
	assert.True(s.T(), stored.PaidAt.Equal(settledAt))
	assert.Equal(s.T(), models.InvoiceStatusPaid, s.store.invoices[inv.ID].Status)

	// The late notification still lands in meta for audit.
	var meta map[string]any
	assert.NoError(s.T(), json.Unmarshal(stored.Meta, &meta))
	assert.Contains(s.T(), meta, "last_notification")
	assert.Equal(s.T(), "bank_transfer", meta["payment_type"])
}

func (s *ServiceTestSuite) TestCancelledInvoiceStaysCancelled() {
	inv := s.seedInvoice(500000, models.InvoiceStatusCancelled)
	p := s.seedGatewayPayment(inv, "RB-G", 500000, models.PaymentStatusPending)

	err := s.svc.ApplyGatewayNotification(s.ctx, s.notification("RB-G", "settlement", "500000.00"))
	assert.NoError(s.T(), err)

	assert.Equal(s.T(), models.PaymentStatusCompleted, s.store.payments[p.ID].Status)
	assert.Equal(s.T(), models.InvoiceStatusCancelled, s.store.invoices[inv.ID].Status)
}

func (s *ServiceTestSuite) TestManualPartialPayment() {
	inv := s.seedInvoice(500000, models.InvoiceStatusPending)

	payment, _, err := s.svc.RecordManualPayment(s.ctx, ManualPaymentInput{
		InvoiceID: inv.ID,
		Method:    models.PaymentMethodTransfer,
		Amount:    200000,
		ActorID:   "staff-1",
	})
	assert.NoError(s.T(), err)
	assert.Equal(s.T(), models.PaymentStatusPending, payment.Status)
	assert.Equal(s.T(), models.InvoiceStatusPending, s.store.invoices[inv.ID].Status)

	_, invoice, err := s.svc.AcknowledgePayment(s.ctx, payment.ID, true, "staff-1", "", nil)
	assert.NoError(s.T(), err)
	assert.Equal(s.T(), models.InvoiceStatusPending, invoice.Status)

	payments, _ := s.svc.payments.ListByInvoice(s.ctx, nil, inv.ID)
	assert.Equal(s.T(), int64(300000), Outstanding(invoice.Amount, payments))

	assert.Len(s.T(), s.audit.entries, 2)
	assert.Equal(s.T(), "payment.record_manual", s.audit.entries[0].action)
	assert.Equal(s.T(), "payment.approve", s.audit.entries[1].action)
}

func (s *ServiceTestSuite) TestManualPaymentValidation() {
	inv := s.seedInvoice(500000, models.InvoiceStatusPending)
	cancelled := s.seedInvoice(500000, models.InvoiceStatusCancelled)

	var validationErr *apperrors.ValidationError

	_, _, err := s.svc.RecordManualPayment(s.ctx, ManualPaymentInput{
		InvoiceID: inv.ID, Method: models.PaymentMethodCash, Amount: 0,
	})
	assert.True(s.T(), errors.As(err, &validationErr))

	_, _, err = s.svc.RecordManualPayment(s.ctx, ManualPaymentInput{
		InvoiceID: inv.ID, Method: models.PaymentMethodVirtualAccount, Amount: 100000,
	})
	assert.True(s.T(), errors.As(err, &validationErr))

	_, _, err = s.svc.RecordManualPayment(s.ctx, ManualPaymentInput{
		InvoiceID: cancelled.ID, Method: models.PaymentMethodCash, Amount: 100000,
	})
	assert.True(s.T(), errors.As(err, &validationErr))

	paidAt := s.now.AddDate(0, 0, -1)
	_, _, err = s.svc.RecordManualPayment(s.ctx, ManualPaymentInput{
		InvoiceID: inv.ID, Method: models.PaymentMethodCash, Amount: 100000, PaidAt: &paidAt,
	})
	assert.True(s.T(), errors.As(err, &validationErr))
}

func (s *ServiceTestSuite) TestPreVerifiedManualPaymentSettlesImmediately() {
	inv := s.seedInvoice(500000, models.InvoiceStatusPending)
	paidAt := s.now.AddDate(0, 0, -2)

	payment, invoice, err := s.svc.RecordManualPayment(s.ctx, ManualPaymentInput{
		InvoiceID: inv.ID,
		Method:    models.PaymentMethodCash,
		Amount:    500000,
		PaidAt:    &paidAt,
		Note:      "cash received at front desk",
		ActorID:   "staff-1",
	})
	assert.NoError(s.T(), err)
	assert.Equal(s.T(), models.PaymentStatusCompleted, payment.Status)
	assert.Equal(s.T(), models.InvoiceStatusPaid, invoice.Status)
	assert.True(s.T(), invoice.PaidAt.Equal(paidAt))
}

func (s *ServiceTestSuite) TestAcknowledgeReject() {
	inv := s.seedInvoice(500000, models.InvoiceStatusPending)
	payment, _, err := s.svc.RecordManualPayment(s.ctx, ManualPaymentInput{
		InvoiceID: inv.ID, Method: models.PaymentMethodTransfer, Amount: 500000, ActorID: "staff-1",
	})
	assert.NoError(s.T(), err)

	var validationErr *apperrors.ValidationError
	_, _, err = s.svc.AcknowledgePayment(s.ctx, payment.ID, false, "staff-1", "", nil)
	assert.True(s.T(), errors.As(err, &validationErr))

	_, invoice, err := s.svc.AcknowledgePayment(s.ctx, payment.ID, false, "staff-1", "proof unreadable", nil)
	assert.NoError(s.T(), err)
	assert.Equal(s.T(), models.PaymentStatusFailed, s.store.payments[payment.ID].Status)
	assert.Equal(s.T(), models.InvoiceStatusPending, invoice.Status)

	payments, _ := s.svc.payments.ListByInvoice(s.ctx, nil, inv.ID)
	assert.Equal(s.T(), int64(500000), Outstanding(invoice.Amount, payments))
}

func (s *ServiceTestSuite) TestAcknowledgeSettledPaymentFails() {
	inv := s.seedInvoice(500000, models.InvoiceStatusPending)
	paidAt := s.now
	payment, _, err := s.svc.RecordManualPayment(s.ctx, ManualPaymentInput{
		InvoiceID: inv.ID, Method: models.PaymentMethodCash, Amount: 500000,
		PaidAt: &paidAt, Note: "verified", ActorID: "staff-1",
	})
	assert.NoError(s.T(), err)

	var invalidState *apperrors.InvalidStateError
	_, _, err = s.svc.AcknowledgePayment(s.ctx, payment.ID, true, "staff-1", "", nil)
	assert.True(s.T(), errors.As(err, &invalidState))
}

func (s *ServiceTestSuite) TestCancelPaidInvoiceFails() {
	inv := s.seedInvoice(500000, models.InvoiceStatusPaid)

	_, err := s.svc.CancelInvoice(s.ctx, inv.ID, "staff-1", "tenant moved out")

	var invalidState *apperrors.InvalidStateError
	assert.True(s.T(), errors.As(err, &invalidState))
	assert.Equal(s.T(), models.InvoiceStatusPaid, s.store.invoices[inv.ID].Status)
	assert.Empty(s.T(), s.audit.entries)
}

func (s *ServiceTestSuite) TestCancelInvoiceIsIdempotent() {
	inv := s.seedInvoice(500000, models.InvoiceStatusPending)

	first, err := s.svc.CancelInvoice(s.ctx, inv.ID, "staff-1", "duplicate billing")
	assert.NoError(s.T(), err)
	assert.Equal(s.T(), models.InvoiceStatusCancelled, first.Status)
	assert.Len(s.T(), s.audit.entries, 1)

	second, err := s.svc.CancelInvoice(s.ctx, inv.ID, "staff-1", "duplicate billing")
	assert.NoError(s.T(), err)
	assert.Equal(s.T(), models.InvoiceStatusCancelled, second.Status)
	assert.Len(s.T(), s.audit.entries, 1)
}

func (s *ServiceTestSuite) TestExtendDueDate() {
	inv := s.seedInvoice(500000, models.InvoiceStatusPending)

	var validationErr *apperrors.ValidationError
	_, err := s.svc.ExtendDueDate(s.ctx, inv.ID, "staff-1", s.now.AddDate(0, 0, -1), "late request")
	assert.True(s.T(), errors.As(err, &validationErr))

	newDue := s.now.AddDate(0, 0, 14)
	invoice, err := s.svc.ExtendDueDate(s.ctx, inv.ID, "staff-1", newDue, "tenant asked for two weeks")
	assert.NoError(s.T(), err)
	assert.True(s.T(), invoice.DueDate.Equal(newDue))
	assert.Len(s.T(), s.audit.entries, 1)
	assert.Equal(s.T(), "invoice.extend_due", s.audit.entries[0].action)
}

func (s *ServiceTestSuite) TestVoidPayment() {
	inv := s.seedInvoice(500000, models.InvoiceStatusPending)
	p := s.seedGatewayPayment(inv, "RB-H", 500000, models.PaymentStatusPending)

	payment, err := s.svc.VoidPayment(s.ctx, p.ID, "staff-1", "tenant cancelled order")
	assert.NoError(s.T(), err)
	assert.Equal(s.T(), models.PaymentStatusCancelled, payment.Status)
	assert.Len(s.T(), s.audit.entries, 1)

	// Voiding again is a no-op.
	_, err = s.svc.VoidPayment(s.ctx, p.ID, "staff-1", "tenant cancelled order")
	assert.NoError(s.T(), err)
	assert.Len(s.T(), s.audit.entries, 1)
}

func (s *ServiceTestSuite) TestVoidCompletedPaymentOnPaidInvoiceFails() {
	inv := s.seedInvoice(500000, models.InvoiceStatusPaid)
	p := s.seedGatewayPayment(inv, "RB-I", 500000, models.PaymentStatusCompleted)

	_, err := s.svc.VoidPayment(s.ctx, p.ID, "staff-1", "entered by mistake")

	var invalidState *apperrors.InvalidStateError
	assert.True(s.T(), errors.As(err, &invalidState))
	assert.Equal(s.T(), models.PaymentStatusCompleted, s.store.payments[p.ID].Status)
}

func (s *ServiceTestSuite) TestVoidCompletedPartialPayment() {
	inv := s.seedInvoice(500000, models.InvoiceStatusPending)
	p := s.seedGatewayPayment(inv, "RB-J", 200000, models.PaymentStatusCompleted)

	payment, err := s.svc.VoidPayment(s.ctx, p.ID, "staff-1", "wrong invoice")
	assert.NoError(s.T(), err)
	assert.Equal(s.T(), models.PaymentStatusCancelled, payment.Status)

	payments, _ := s.svc.payments.ListByInvoice(s.ctx, nil, inv.ID)
	assert.Equal(s.T(), int64(500000), Outstanding(inv.Amount, payments))
}

func (s *ServiceTestSuite) TestRecalculateRevertsPaidOnShortfall() {
	inv := s.seedInvoice(500000, models.InvoiceStatusPaid)
	s.seedGatewayPayment(inv, "RB-K", 200000, models.PaymentStatusCompleted)

	stored := s.store.invoices[inv.ID]
	err := s.svc.recalculate(s.ctx, nil, &stored)
	assert.NoError(s.T(), err)

	after := s.store.invoices[inv.ID]
	assert.Equal(s.T(), models.InvoiceStatusPending, after.Status)
	assert.Nil(s.T(), after.PaidAt)
}

func (s *ServiceTestSuite) TestGenerateInvoice() {
	contract := models.Contract{
		ID:            uuid.New(),
		TenantName:    "Siti Rahma",
		RoomNumber:    "A-12",
		MonthlyAmount: 2500000,
		BillingDay:    5,
		Active:        true,
	}
	s.store.contracts[contract.ID] = contract

	periodStart := time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC)
	invoice, err := s.svc.GenerateInvoice(s.ctx, contract.ID, periodStart)
	assert.NoError(s.T(), err)
	assert.Equal(s.T(), int64(2500000), invoice.Amount)
	assert.Equal(s.T(), models.InvoiceStatusPending, invoice.Status)
	assert.Contains(s.T(), invoice.Number, "INV/202509/")
	assert.True(s.T(), invoice.DueDate.Equal(time.Date(2025, 9, 5, 0, 0, 0, 0, time.UTC)))
	assert.True(s.T(), invoice.PeriodEnd.Equal(periodStart.AddDate(0, 1, 0)))

	var validationErr *apperrors.ValidationError
	_, err = s.svc.GenerateInvoice(s.ctx, contract.ID, periodStart)
	assert.True(s.T(), errors.As(err, &validationErr))
}

func (s *ServiceTestSuite) TestGenerateInvoiceRequiresActiveContract() {
	contract := models.Contract{ID: uuid.New(), MonthlyAmount: 2500000, Active: false}
	s.store.contracts[contract.ID] = contract

	_, err := s.svc.GenerateInvoice(s.ctx, contract.ID, time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC))

	var invalidState *apperrors.InvalidStateError
	assert.True(s.T(), errors.As(err, &invalidState))

	var notFound *apperrors.NotFoundError
	_, err = s.svc.GenerateInvoice(s.ctx, uuid.New(), time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC))
	assert.True(s.T(), errors.As(err, &notFound))
}

func (s *ServiceTestSuite) TestCreateGatewayPayment() {
	inv := s.seedInvoice(500000, models.InvoiceStatusPending)
	s.seedGatewayPayment(inv, "RB-L", 200000, models.PaymentStatusCompleted)

	payment, err := s.svc.CreateGatewayPayment(s.ctx, inv.ID, "midtrans")
	assert.NoError(s.T(), err)
	assert.Equal(s.T(), models.PaymentStatusPending, payment.Status)
	assert.Equal(s.T(), models.PaymentMethodVirtualAccount, payment.Method)
	assert.Equal(s.T(), int64(300000), payment.Amount)
	assert.NotNil(s.T(), payment.Reference)
	assert.Contains(s.T(), *payment.Reference, "RB-")
}

func (s *ServiceTestSuite) TestCreateGatewayPaymentStateChecks() {
	paid := s.seedInvoice(500000, models.InvoiceStatusPaid)
	cancelled := s.seedInvoice(500000, models.InvoiceStatusCancelled)
	pending := s.seedInvoice(500000, models.InvoiceStatusPending)

	var invalidState *apperrors.InvalidStateError
	_, err := s.svc.CreateGatewayPayment(s.ctx, paid.ID, "midtrans")
	assert.True(s.T(), errors.As(err, &invalidState))

	var validationErr *apperrors.ValidationError
	_, err = s.svc.CreateGatewayPayment(s.ctx, cancelled.ID, "midtrans")
	assert.True(s.T(), errors.As(err, &validationErr))

	_, err = s.svc.CreateGatewayPayment(s.ctx, pending.ID, "")
	assert.True(s.T(), errors.As(err, &validationErr))
}

func TestServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ServiceTestSuite))
}
