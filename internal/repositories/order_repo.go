package repositories

import (
	"fluxmall/internal/models"
)

// OrderRepository defines the interface for order data access. Orders are
// created exactly once per successful checkout and never updated.
type OrderRepository interface {
	// Create persists the order together with its items as one unit.
	Create(order *models.Order) error
	GetByID(id string) (*models.Order, error)
	ListByMember(memberID string) ([]models.Order, error)
	// GetByIdempotencyKey returns the order a previous submission by the
	// same member with the same key produced, or models.ErrNotFound. Keys
	// are scoped per member; another member's key is never a match.
	GetByIdempotencyKey(memberID, key string) (*models.Order, error)
}
