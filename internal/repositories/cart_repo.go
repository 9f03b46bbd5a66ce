package repositories

import (
	"fluxmall/internal/models"
)

// CartRepository defines the interface for cart data access. Ownership
// decisions are made by the service layer from the rows returned here;
// the repository never trusts a caller-supplied cart id for a mutation.
type CartRepository interface {
	GetOrCreateCart(memberID string) (*models.Cart, error)
	GetCart(cartID string) (*models.Cart, error)
	GetItem(itemID string) (*models.CartItem, error)
	ListItems(cartID string) ([]models.CartItem, error)
	// UpsertItem adds quantityDelta to the existing (cart, product) row or
	// inserts a new one. Fails with models.ErrInvalidQuantity if the
	// resulting quantity would be <= 0.
	UpsertItem(cartID, productID string, quantityDelta int) (*models.CartItem, error)
	UpdateItemQuantity(itemID string, quantity int) error
	DeleteItem(itemID string) error
	// DeleteItems removes all given items as one unit; none are removed if
	// any id does not exist.
	DeleteItems(itemIDs []string) error
	ClearCart(cartID string) error
}
