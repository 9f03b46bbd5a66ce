package models

import "time"

// OrderItem is a single line of an order. Name and unit price are snapshots
// taken at order time and survive later catalog changes.
type OrderItem struct {
	ID          string `json:"id" gorm:"primaryKey;type:varchar(36)"`
	OrderID     string `json:"order_id" gorm:"index;type:varchar(36)"`
	ProductID   string `json:"product_id" gorm:"type:varchar(36)"`
	ProductName string `json:"product_name"`
	UnitPrice   int64  `json:"unit_price"`
	Quantity    int    `json:"quantity"`
}

// Order represents a completed checkout. It is immutable once created;
// TotalPrice is computed exactly once from the item snapshots.
type Order struct {
	ID              string      `json:"id" gorm:"primaryKey;type:varchar(36)"`
	MemberID        string      `json:"member_id" gorm:"type:varchar(36);uniqueIndex:idx_member_idem_key"`
	ShippingAddress string      `json:"shipping_address"`
	TotalPrice      int64       `json:"total_price"`
	IdempotencyKey  string      `json:"-" gorm:"type:varchar(64);uniqueIndex:idx_member_idem_key"`
	Items           []OrderItem `json:"items" gorm:"foreignKey:OrderID"`
	CreatedAt       time.Time   `json:"created_at"`
}

// OrderLine is the priced snapshot handed to the order assembler. It is
// captured from the product record before stock is reserved.
type OrderLine struct {
	ProductID   string `json:"product_id"`
	ProductName string `json:"product_name"`
	UnitPrice   int64  `json:"unit_price"`
	Quantity    int    `json:"quantity"`
}
