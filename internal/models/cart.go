package models

import (
	"time"

	"gorm.io/gorm"
)

// Cart holds a member's pending purchases. Each member owns at most one cart;
// it is created lazily on first access and only ever emptied, never deleted.
type Cart struct {
	ID         string `json:"id" gorm:"primaryKey;type:varchar(36)"`
	MemberID   string `json:"member_id" gorm:"uniqueIndex;type:varchar(36)"`
	gorm.Model        // Embed gorm.Model for CreatedAt, UpdatedAt, DeletedAt
}

// CartItem is one product entry inside a cart. Quantity is always >= 1; an
// update that would drop it to zero deletes the row instead. No gorm.Model
// here: items are hard-deleted, a soft-deleted row would keep occupying the
// (cart, product) unique index after checkout emptied the cart.
type CartItem struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	CartID    string    `json:"cart_id" gorm:"type:varchar(36);uniqueIndex:idx_cart_product"`
	ProductID string    `json:"product_id" gorm:"type:varchar(36);uniqueIndex:idx_cart_product"`
	Quantity  int       `json:"quantity" validate:"gte=1"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CartItemView is a cart item joined with the current product catalog data.
// The price here is informational for display; checkout re-reads the product
// record to snapshot prices, it never trusts this view.
type CartItemView struct {
	ID           string `json:"id"`
	ProductID    string `json:"product_id"`
	ProductName  string `json:"product_name"`
	ProductPrice int64  `json:"product_price"`
	Quantity     int    `json:"quantity"`
	LineTotal    int64  `json:"line_total"`
}
