package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type ProductStatus string

const (
	ProductPending  ProductStatus = "Pending"
	ProductActive   ProductStatus = "Active"
	ProductInactive ProductStatus = "Inactive"
)

// Valid reports whether s is a known product status.
func (s ProductStatus) Valid() bool {
	switch s {
	case ProductPending, ProductActive, ProductInactive:
		return true
	}
	return false
}

// MaxStock caps the stock a single product can hold.
const MaxStock = 1_000_000

type Product struct {
	BaseModel
	SKU         string          `gorm:"type:varchar(50);uniqueIndex;not null" json:"sku"`
	SellerID    uuid.UUID       `gorm:"type:uuid;not null;index" json:"seller_id"`
	Name        string          `gorm:"type:varchar(255);not null" json:"name"`
	CategoryID  uint            `gorm:"index" json:"category_id"`
	Description string          `gorm:"type:text" json:"description"`
	Price       decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0" json:"price"`
	Stock       int             `gorm:"not null;default:0;check:chk_products_stock,stock >= 0" json:"stock"`
	Status      ProductStatus   `gorm:"type:varchar(20);not null;index" json:"status"`
	ImageRef    string          `gorm:"type:varchar(512)" json:"image_ref"`
	PublishDate time.Time       `gorm:"type:date" json:"publish_date"`

	Category *Category `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
}

// Orderable reports whether customers may put the product in a cart or order it.
func (p *Product) Orderable() bool {
	return p.Status == ProductActive
}

// ToggledStatus returns the Active/Inactive counterpart of the current status.
// Pending products have no counterpart until they are approved.
func (p *Product) ToggledStatus() (ProductStatus, bool) {
	switch p.Status {
	case ProductActive:
		return ProductInactive, true
	case ProductInactive:
		return ProductActive, true
	}
	return "", false
}

// Category is seeded reference data for product classification.
type Category struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"type:varchar(100);uniqueIndex;not null" json:"name"`
}

var DefaultCategories = []Category{
	{ID: 1, Name: "Electronics"},
	{ID: 2, Name: "Fashion"},
	{ID: 3, Name: "Home & Kitchen"},
	{ID: 4, Name: "Books"},
	{ID: 5, Name: "Health & Beauty"},
	{ID: 6, Name: "Sports"},
	{ID: 7, Name: "Groceries"},
}
