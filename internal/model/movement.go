package model

import "github.com/google/uuid"

type MovementType string

const (
	MovementIn  MovementType = "IN"
	MovementOut MovementType = "OUT"
)

// StockMovement is the ledger row written with every stock change.
type StockMovement struct {
	BaseModel
	ProductSKU string       `gorm:"type:varchar(50);not null;index" json:"product_sku"`
	Type       MovementType `gorm:"type:varchar(10);not null" json:"type"`
	Quantity   int          `gorm:"not null" json:"quantity"` // always > 0, direction is in Type
	OrderID    *uuid.UUID   `gorm:"type:uuid;index" json:"order_id,omitempty"`
	Note       string       `json:"note"`
}
