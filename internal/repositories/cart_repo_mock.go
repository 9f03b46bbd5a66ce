package repositories

import (
	"fmt"
	"sync"

	"fluxmall/internal/models"

	"github.com/google/uuid"
)

// MockCartRepository is an in-memory implementation of CartRepository.
type MockCartRepository struct {
	carts        map[string]models.Cart     // by cart ID
	cartByMember map[string]string          // member ID -> cart ID
	items        map[string]models.CartItem // by item ID
	mu           sync.RWMutex
}

// NewMockCartRepository creates a new instance of MockCartRepository.
func NewMockCartRepository() *MockCartRepository {
	return &MockCartRepository{
		carts:        make(map[string]models.Cart),
		cartByMember: make(map[string]string),
		items:        make(map[string]models.CartItem),
	}
}

// GetOrCreateCart returns the member's cart, creating it on first access.
func (r *MockCartRepository) GetOrCreateCart(memberID string) (*models.Cart, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if cartID, ok := r.cartByMember[memberID]; ok {
		cart := r.carts[cartID]
		return &cart, nil
	}
	cart := models.Cart{ID: uuid.New().String(), MemberID: memberID}
	r.carts[cart.ID] = cart
	r.cartByMember[memberID] = cart.ID
	return &cart, nil
}

// GetCart returns a cart by its ID.
func (r *MockCartRepository) GetCart(cartID string) (*models.Cart, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	cart, ok := r.carts[cartID]
	if !ok {
		return nil, fmt.Errorf("cart %s: %w", cartID, models.ErrNotFound)
	}
	return &cart, nil
}

// GetItem returns a cart item by its ID.
func (r *MockCartRepository) GetItem(itemID string) (*models.CartItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.items[itemID]
	if !ok {
		return nil, fmt.Errorf("cart item %s: %w", itemID, models.ErrNotFound)
	}
	return &item, nil
}

// ListItems returns all items of a cart.
func (r *MockCartRepository) ListItems(cartID string) ([]models.CartItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	itemList := make([]models.CartItem, 0)
	for _, item := range r.items {
		if item.CartID == cartID {
			itemList = append(itemList, item)
		}
	}
	return itemList, nil
}

// UpsertItem adds quantityDelta to the (cart, product) row or inserts it.
func (r *MockCartRepository) UpsertItem(cartID, productID string, quantityDelta int) (*models.CartItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, item := range r.items {
		if item.CartID == cartID && item.ProductID == productID {
			newQuantity := item.Quantity + quantityDelta
			if newQuantity <= 0 {
				return nil, fmt.Errorf("resulting quantity %d: %w", newQuantity, models.ErrInvalidQuantity)
			}
			item.Quantity = newQuantity
			r.items[id] = item
			return &item, nil
		}
	}

	if quantityDelta <= 0 {
		return nil, fmt.Errorf("resulting quantity %d: %w", quantityDelta, models.ErrInvalidQuantity)
	}
	item := models.CartItem{
		ID:        uuid.New().String(),
		CartID:    cartID,
		ProductID: productID,
		Quantity:  quantityDelta,
	}
	r.items[item.ID] = item
	return &item, nil
}

// UpdateItemQuantity sets the absolute quantity of a cart item.
func (r *MockCartRepository) UpdateItemQuantity(itemID string, quantity int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	item, ok := r.items[itemID]
	if !ok {
		return fmt.Errorf("cart item %s: %w", itemID, models.ErrNotFound)
	}
	item.Quantity = quantity
	r.items[itemID] = item
	return nil
}

// DeleteItem removes a single cart item.
func (r *MockCartRepository) DeleteItem(itemID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[itemID]; !ok {
		return fmt.Errorf("cart item %s: %w", itemID, models.ErrNotFound)
	}
	delete(r.items, itemID)
	return nil
}

// DeleteItems removes all given items, or none if any id is missing.
func (r *MockCartRepository) DeleteItems(itemIDs []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, id := range itemIDs {
		if _, ok := r.items[id]; !ok {
			return fmt.Errorf("cart item %s: %w", id, models.ErrNotFound)
		}
	}
	for _, id := range itemIDs {
		delete(r.items, id)
	}
	return nil
}

// ClearCart removes all items of a cart.
func (r *MockCartRepository) ClearCart(cartID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, item := range r.items {
		if item.CartID == cartID {
			delete(r.items, id)
		}
	}
	return nil
}
