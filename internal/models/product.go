package models

import "gorm.io/gorm"

// ProductStatus controls whether a product can be added to carts or ordered.
type ProductStatus string

const (
	ProductOnSale     ProductStatus = "on_sale"
	ProductNotForSale ProductStatus = "not_for_sale"
)

// Product represents a product in the store. Price is in the smallest
// currency unit. Stock is mutated only through the inventory reservation
// path; catalog management owns price and status.
type Product struct {
	ID          string        `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	Name        string        `json:"name" validate:"required,min=1,max=100"`
	Description string        `json:"description" validate:"omitempty,max=500"`
	Price       int64         `json:"price" validate:"gte=0"`
	Stock       int           `json:"stock" validate:"gte=0"`
	Status      ProductStatus `json:"status" gorm:"type:varchar(20);default:on_sale"`
	gorm.Model                // Embed gorm.Model for CreatedAt, UpdatedAt, DeletedAt
}
