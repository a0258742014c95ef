package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"tricommerce/internal/model"
)

type cartRepo struct {
	db *gorm.DB
}

func NewCartRepo(db *gorm.DB) CartRepository {
	return &cartRepo{db}
}

func (r *cartRepo) AddQuantity(ctx context.Context, customerID uuid.UUID, sku string, qty int) error {
	line := model.CartLine{CustomerID: customerID, ProductSKU: sku, Quantity: qty}
	return translate(r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "customer_id"}, {Name: "product_sku"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"quantity":   gorm.Expr("cart_lines.quantity + EXCLUDED.quantity"),
			"updated_at": time.Now(),
		}),
	}).Create(&line).Error)
}

func (r *cartRepo) SetQuantity(ctx context.Context, customerID uuid.UUID, sku string, qty int) error {
	res := r.db.WithContext(ctx).Model(&model.CartLine{}).
		Where("customer_id = ? AND product_sku = ?", customerID, sku).
		Update("quantity", qty)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *cartRepo) Delete(ctx context.Context, customerID uuid.UUID, sku string) error {
	return translate(r.db.WithContext(ctx).
		Where("customer_id = ? AND product_sku = ?", customerID, sku).
		Delete(&model.CartLine{}).Error)
}

func (r *cartRepo) FindByCustomer(ctx context.Context, customerID uuid.UUID) ([]model.CartLine, error) {
	var lines []model.CartLine
	err := r.db.WithContext(ctx).
		Preload("Product").
		Where("customer_id = ?", customerID).
		Order("product_sku ASC").
		Find(&lines).Error
	return lines, translate(err)
}

func (r *cartRepo) Clear(ctx context.Context, customerID uuid.UUID) error {
	return translate(r.db.WithContext(ctx).
		Where("customer_id = ?", customerID).
		Delete(&model.CartLine{}).Error)
}
