package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"tricommerce/internal/model"
)

type productRepo struct {
	db *gorm.DB
}

func NewProductRepo(db *gorm.DB) ProductRepository {
	return &productRepo{db}
}

func (r *productRepo) Create(ctx context.Context, product *model.Product) error {
	return translate(r.db.WithContext(ctx).Create(product).Error)
}

func (r *productRepo) FindBySKU(ctx context.Context, sku string) (*model.Product, error) {
	var product model.Product
	if err := r.db.WithContext(ctx).Preload("Category").First(&product, "sku = ?", sku).Error; err != nil {
		return nil, translate(err)
	}
	return &product, nil
}

func (r *productRepo) FindBySKUForUpdate(ctx context.Context, sku string) (*model.Product, error) {
	var product model.Product
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&product, "sku = ?", sku).Error
	if err != nil {
		return nil, translate(err)
	}
	return &product, nil
}

func (r *productRepo) FindByStatus(ctx context.Context, status model.ProductStatus, sellerID *uuid.UUID) ([]model.Product, error) {
	var products []model.Product
	q := r.db.WithContext(ctx).Preload("Category").Order("sku ASC")
	if status != "" {
		q = q.Where("status = ?", status)
	}
	if sellerID != nil {
		q = q.Where("seller_id = ?", *sellerID)
	}
	if err := q.Find(&products).Error; err != nil {
		return nil, translate(err)
	}
	return products, nil
}

func (r *productRepo) SKUsBySeller(ctx context.Context, sellerID uuid.UUID) ([]string, error) {
	var skus []string
	err := r.db.WithContext(ctx).Model(&model.Product{}).
		Where("seller_id = ?", sellerID).
		Order("sku ASC").
		Pluck("sku", &skus).Error
	return skus, translate(err)
}

func (r *productRepo) UpdateStatus(ctx context.Context, sku string, status model.ProductStatus) error {
	res := r.db.WithContext(ctx).Model(&model.Product{}).Where("sku = ?", sku).Update("status", status)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *productRepo) ActivatePending(ctx context.Context) ([]string, error) {
	db := r.db.WithContext(ctx)
	var skus []string
	err := db.Model(&model.Product{}).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("status = ?", model.ProductPending).
		Order("sku").
		Pluck("sku", &skus).Error
	if err != nil || len(skus) == 0 {
		return nil, translate(err)
	}
	err = db.Model(&model.Product{}).
		Where("sku IN ?", skus).
		Update("status", model.ProductActive).Error
	if err != nil {
		return nil, translate(err)
	}
	return skus, nil
}

// AdjustStock is one guarded UPDATE. When no row matched it tells a missing
// product apart from a stock conflict.
func (r *productRepo) AdjustStock(ctx context.Context, sku string, delta int) error {
	res := r.db.WithContext(ctx).Model(&model.Product{}).
		Where("sku = ? AND stock + ? >= 0", sku, delta).
		Update("stock", gorm.Expr("stock + ?", delta))
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 1 {
		return nil
	}

	var count int64
	if err := r.db.WithContext(ctx).Model(&model.Product{}).Where("sku = ?", sku).Count(&count).Error; err != nil {
		return translate(err)
	}
	if count == 0 {
		return ErrNotFound
	}
	return ErrStockConflict
}

func (r *productRepo) CountLowStock(ctx context.Context, sellerID uuid.UUID, threshold int) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Product{}).
		Where("seller_id = ? AND stock < ?", sellerID, threshold).
		Count(&count).Error
	return count, translate(err)
}

func (r *productRepo) CountByStatus(ctx context.Context, sellerID uuid.UUID) (map[model.ProductStatus]int64, error) {
	var rows []struct {
		Status model.ProductStatus
		Count  int64
	}
	err := r.db.WithContext(ctx).Model(&model.Product{}).
		Select("status, COUNT(*) AS count").
		Where("seller_id = ?", sellerID).
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, translate(err)
	}

	counts := make(map[model.ProductStatus]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}
