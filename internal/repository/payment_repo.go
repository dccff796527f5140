package repository

import (
	"context"

	"rental-billing-backend/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PaymentRepository struct{}

func NewPaymentRepository() *PaymentRepository {
	return &PaymentRepository{}
}

func (r *PaymentRepository) GetByID(ctx context.Context, db *gorm.DB, id uuid.UUID) (*models.Payment, error) {
	var p models.Payment
	if err := db.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PaymentRepository) GetByIDForUpdate(ctx context.Context, db *gorm.DB, id uuid.UUID) (*models.Payment, error) {
	var p models.Payment
	err := db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&p, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// GetByReferenceForUpdate locks the payment row carrying the gateway
// order id. Two concurrent notifications for the same order serialize
// here.
func (r *PaymentRepository) GetByReferenceForUpdate(ctx context.Context, db *gorm.DB, reference string) (*models.Payment, error) {
	var p models.Payment
	err := db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&p, "reference = ?", reference).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PaymentRepository) ListByInvoice(ctx context.Context, db *gorm.DB, invoiceID uuid.UUID) ([]models.Payment, error) {
	var payments []models.Payment
	err := db.WithContext(ctx).
		Where("invoice_id = ?", invoiceID).
		Order("created_at ASC").
		Find(&payments).Error
	return payments, err
}

func (r *PaymentRepository) Create(ctx context.Context, db *gorm.DB, p *models.Payment) error {
	return db.WithContext(ctx).Create(p).Error
}

func (r *PaymentRepository) Save(ctx context.Context, db *gorm.DB, p *models.Payment) error {
	return db.WithContext(ctx).Save(p).Error
}
