package repository

import (
	"context"
	"time"

	"rental-billing-backend/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type InvoiceRepository struct{}

func NewInvoiceRepository() *InvoiceRepository {
	return &InvoiceRepository{}
}

func (r *InvoiceRepository) GetByID(ctx context.Context, db *gorm.DB, id uuid.UUID) (*models.Invoice, error) {
	var inv models.Invoice
	if err := db.WithContext(ctx).First(&inv, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &inv, nil
}

// GetByIDForUpdate locks the invoice row for the rest of the transaction.
func (r *InvoiceRepository) GetByIDForUpdate(ctx context.Context, db *gorm.DB, id uuid.UUID) (*models.Invoice, error) {
	var inv models.Invoice
	err := db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&inv, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

func (r *InvoiceRepository) GetByNumber(ctx context.Context, db *gorm.DB, number string) (*models.Invoice, error) {
	var inv models.Invoice
	if err := db.WithContext(ctx).First(&inv, "number = ?", number).Error; err != nil {
		return nil, err
	}
	return &inv, nil
}

func (r *InvoiceRepository) Create(ctx context.Context, db *gorm.DB, inv *models.Invoice) error {
	return db.WithContext(ctx).Create(inv).Error
}

func (r *InvoiceRepository) Save(ctx context.Context, db *gorm.DB, inv *models.Invoice) error {
	return db.WithContext(ctx).Save(inv).Error
}

// ExistsForPeriod reports whether the contract already has an invoice
// whose billing window starts at periodStart.
func (r *InvoiceRepository) ExistsForPeriod(ctx context.Context, db *gorm.DB, contractID uuid.UUID, periodStart time.Time) (bool, error) {
	var count int64
	err := db.WithContext(ctx).Model(&models.Invoice{}).
		Where("contract_id = ? AND period_start = ?", contractID, periodStart).
		Count(&count).Error
	return count > 0, err
}
