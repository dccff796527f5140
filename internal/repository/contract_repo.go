package repository

import (
	"context"

	"rental-billing-backend/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ContractRepository struct{}

func NewContractRepository() *ContractRepository {
	return &ContractRepository{}
}

func (r *ContractRepository) GetByID(ctx context.Context, db *gorm.DB, id uuid.UUID) (*models.Contract, error) {
	var c models.Contract
	if err := db.WithContext(ctx).First(&c, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &c, nil
}
