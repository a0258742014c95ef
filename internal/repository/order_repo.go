package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"tricommerce/internal/model"
)

type orderRepo struct {
	db *gorm.DB
}

func NewOrderRepo(db *gorm.DB) OrderRepository {
	return &orderRepo{db}
}

// Create inserts the order together with its items.
func (r *orderRepo) Create(ctx context.Context, order *model.Order) error {
	return translate(r.db.WithContext(ctx).Create(order).Error)
}

func (r *orderRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	var order model.Order
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("product_sku ASC") }).
		Preload("Items.Product").
		First(&order, "id = ?", id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &order, nil
}

// FindByIDForUpdate locks only the order row; items are immutable and are
// loaded with a plain read.
func (r *orderRepo) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	var order model.Order
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&order, "id = ?", id).Error
	if err != nil {
		return nil, translate(err)
	}
	err = r.db.WithContext(ctx).
		Where("order_id = ?", id).
		Order("product_sku ASC").
		Find(&order.Items).Error
	if err != nil {
		return nil, translate(err)
	}
	return &order, nil
}

func (r *orderRepo) FindByCustomer(ctx context.Context, customerID uuid.UUID) ([]model.Order, error) {
	var orders []model.Order
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("product_sku ASC") }).
		Where("customer_id = ?", customerID).
		Order("order_date DESC").
		Find(&orders).Error
	return orders, translate(err)
}

func (r *orderRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status model.OrderStatus) error {
	res := r.db.WithContext(ctx).Model(&model.Order{}).Where("id = ?", id).Update("status", status)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ListLines flattens orders into one row per item. A seller filter keeps only
// that seller's items, not the whole order.
func (r *orderRepo) ListLines(ctx context.Context, filter model.OrderFilter) ([]model.OrderLine, error) {
	var lines []model.OrderLine

	q := r.db.WithContext(ctx).
		Table("order_items AS oi").
		Select(`
			o.id AS order_id,
			oi.product_sku AS product_sku,
			p.name AS product_name,
			p.seller_id AS seller_id,
			oi.quantity AS quantity,
			oi.unit_price AS unit_price,
			oi.unit_price * oi.quantity AS line_total,
			o.customer_id AS customer_id,
			c.first_name || ' ' || c.last_name AS customer_name,
			o.order_date AS order_date,
			o.status AS status
		`).
		Joins("JOIN orders o ON o.id = oi.order_id AND o.deleted_at IS NULL").
		Joins("JOIN products p ON p.sku = oi.product_sku").
		Joins("JOIN customers c ON c.id = o.customer_id")

	if filter.Status != "" {
		q = q.Where("o.status = ?", filter.Status)
	}
	if filter.SellerID != nil {
		q = q.Where("p.seller_id = ?", *filter.SellerID)
	}
	if filter.CustomerID != nil {
		q = q.Where("o.customer_id = ?", *filter.CustomerID)
	}

	err := q.Order("o.order_date DESC, o.id ASC, oi.product_sku ASC").Scan(&lines).Error
	return lines, translate(err)
}

func (r *orderRepo) CountForSeller(ctx context.Context, sellerID uuid.UUID, status model.OrderStatus) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Table("orders AS o").
		Select("COUNT(DISTINCT o.id)").
		Joins("JOIN order_items oi ON oi.order_id = o.id").
		Joins("JOIN products p ON p.sku = oi.product_sku").
		Where("p.seller_id = ? AND o.status = ? AND o.deleted_at IS NULL", sellerID, status).
		Scan(&count).Error
	return count, translate(err)
}
