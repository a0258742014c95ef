package repository

import (
	"context"

	"gorm.io/gorm"

	"tricommerce/internal/model"
)

type movementRepo struct {
	db *gorm.DB
}

func NewMovementRepo(db *gorm.DB) MovementRepository {
	return &movementRepo{db}
}

func (r *movementRepo) Create(ctx context.Context, movement *model.StockMovement) error {
	return translate(r.db.WithContext(ctx).Create(movement).Error)
}

// FindBySKU returns the ledger of one product, newest first.
func (r *movementRepo) FindBySKU(ctx context.Context, sku string) ([]model.StockMovement, error) {
	var movements []model.StockMovement
	err := r.db.WithContext(ctx).
		Where("product_sku = ?", sku).
		Order("created_at DESC").
		Find(&movements).Error
	return movements, translate(err)
}
