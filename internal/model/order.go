package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderPending   OrderStatus = "Pending"
	OrderShipped   OrderStatus = "Shipped"
	OrderDelivered OrderStatus = "Delivered"
	OrderCancelled OrderStatus = "Cancelled"
)

// orderTransitions lists the only forward moves of the order lifecycle.
var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderPending: {OrderShipped, OrderCancelled},
	OrderShipped: {OrderDelivered},
}

// CanTransitionTo reports whether an order may move from s to next.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range orderTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Valid reports whether s is a known order status.
func (s OrderStatus) Valid() bool {
	_, ok := statusIDs[s]
	return ok
}

type Order struct {
	BaseModel
	CustomerID      uuid.UUID   `gorm:"type:uuid;not null;index" json:"customer_id"`
	ShippingAddress string      `gorm:"type:text;not null" json:"shipping_address"`
	OrderDate       time.Time   `gorm:"not null;index" json:"order_date"`
	Status          OrderStatus `gorm:"type:varchar(20);not null;index" json:"status"`
	Items           []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"`

	Customer *Customer `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
}

// Total sums the captured line prices.
func (o *Order) Total() decimal.Decimal {
	total := decimal.Zero
	for _, item := range o.Items {
		total = total.Add(item.LineTotal())
	}
	return total
}

// HasSellerItems reports whether any item belongs to one of the given SKUs.
func (o *Order) HasSellerItems(owned map[string]bool) bool {
	for _, item := range o.Items {
		if owned[item.ProductSKU] {
			return true
		}
	}
	return false
}

// OrderItem captures quantity and unit price at the time the order was placed.
type OrderItem struct {
	ID         uint            `gorm:"primaryKey" json:"id"`
	OrderID    uuid.UUID       `gorm:"type:uuid;not null;index" json:"order_id"`
	ProductSKU string          `gorm:"type:varchar(50);not null;index" json:"product_sku"`
	Quantity   int             `gorm:"not null" json:"quantity"`
	UnitPrice  decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"unit_price"`

	Product *Product `gorm:"foreignKey:ProductSKU;references:SKU" json:"product,omitempty"`
}

func (i OrderItem) LineTotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// OrderLine is the flattened order/item/product/customer projection used by
// the admin and seller order tables.
type OrderLine struct {
	OrderID      uuid.UUID       `json:"order_id"`
	ProductSKU   string          `json:"product_sku"`
	ProductName  string          `json:"product_name"`
	SellerID     uuid.UUID       `json:"seller_id"`
	Quantity     int             `json:"quantity"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	LineTotal    decimal.Decimal `json:"line_total"`
	CustomerID   uuid.UUID       `json:"customer_id"`
	CustomerName string          `json:"customer_name"`
	OrderDate    time.Time       `json:"order_date"`
	Status       OrderStatus     `json:"status"`
}

// OrderFilter narrows order line listings. Zero values mean "any".
type OrderFilter struct {
	Status     OrderStatus
	SellerID   *uuid.UUID
	CustomerID *uuid.UUID
}
