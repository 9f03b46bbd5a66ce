package models

import (
	"errors"
	"fmt"
	"strings"
)

// Domain errors shared by repositories and services. Handlers map these to
// HTTP statuses; anything not in this taxonomy is treated as a storage
// failure and surfaced as retryable.
var (
	ErrUnauthenticated  = errors.New("unauthenticated")
	ErrNotOwner         = errors.New("not owner")
	ErrNotFound         = errors.New("not found")
	ErrInvalidQuantity  = errors.New("invalid quantity")
	ErrEmptyCart        = errors.New("empty cart")
	ErrEmptyOrder       = errors.New("empty order")
	ErrPartialOwnership = errors.New("partial ownership")
)

// OutOfStockError reports every product in a reservation batch whose stock
// was insufficient. The whole batch is rejected when this is returned.
type OutOfStockError struct {
	ProductIDs []string
}

func (e *OutOfStockError) Error() string {
	return fmt.Sprintf("insufficient stock for products: %s", strings.Join(e.ProductIDs, ", "))
}

// ProductUnavailableError is returned when a product is not on sale.
type ProductUnavailableError struct {
	ProductID string
}

func (e *ProductUnavailableError) Error() string {
	return fmt.Sprintf("product %s is not available for sale", e.ProductID)
}
