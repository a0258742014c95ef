package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CartLine is one (customer, product) pair with a positive quantity.
type CartLine struct {
	CustomerID uuid.UUID `gorm:"type:uuid;primaryKey" json:"customer_id"`
	ProductSKU string    `gorm:"type:varchar(50);primaryKey" json:"product_sku"`
	Quantity   int       `gorm:"not null;check:chk_cart_lines_quantity,quantity > 0" json:"quantity"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`

	Product *Product `gorm:"foreignKey:ProductSKU;references:SKU" json:"product,omitempty"`
}

// CartSnapshotLine is a priced view of a cart line at read time.
type CartSnapshotLine struct {
	ProductSKU  string          `json:"product_sku"`
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	LineTotal   decimal.Decimal `json:"line_total"`
	Available   bool            `json:"available"`
}

// CartSnapshot is the full cart with its grand total. An empty Lines slice
// means the cart is empty.
type CartSnapshot struct {
	CustomerID uuid.UUID          `json:"customer_id"`
	Lines      []CartSnapshotLine `json:"lines"`
	Total      decimal.Decimal    `json:"total"`
}

func (s CartSnapshot) Empty() bool {
	return len(s.Lines) == 0
}
