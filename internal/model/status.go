package model

// Status is the read-only lookup table mapping order status titles to ids.
type Status struct {
	ID    uint        `gorm:"primaryKey" json:"id"`
	Title OrderStatus `gorm:"type:varchar(20);uniqueIndex;not null" json:"title"`
}

// TableName keeps the lookup table name singular, as reference data.
func (Status) TableName() string {
	return "status"
}

var statusIDs = map[OrderStatus]uint{
	OrderPending:   1,
	OrderShipped:   2,
	OrderDelivered: 3,
	OrderCancelled: 4,
}

// DefaultStatuses is the seeded content of the status lookup table.
var DefaultStatuses = []Status{
	{ID: 1, Title: OrderPending},
	{ID: 2, Title: OrderShipped},
	{ID: 3, Title: OrderDelivered},
	{ID: 4, Title: OrderCancelled},
}

// ID returns the numeric identifier of the status, or 0 when unknown.
func (s OrderStatus) ID() uint {
	return statusIDs[s]
}
