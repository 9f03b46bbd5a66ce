package repositories

import (
	"errors"
	"fmt"

	"fluxmall/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMCartRepository is a GORM implementation of CartRepository.
type GORMCartRepository struct {
	db *gorm.DB
}

// NewGORMCartRepository creates a new instance of GORMCartRepository.
func NewGORMCartRepository(db *gorm.DB) *GORMCartRepository {
	return &GORMCartRepository{
		db: db,
	}
}

// GetOrCreateCart returns the member's cart, creating an empty one on first
// access. The unique index on member_id keeps concurrent first accesses from
// producing two carts; the loser of the race re-reads the winner's row.
func (r *GORMCartRepository) GetOrCreateCart(memberID string) (*models.Cart, error) {
	var cart models.Cart
	err := r.db.First(&cart, "member_id = ?", memberID).Error
	if err == nil {
		return &cart, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to get cart for member %s: %w", memberID, err)
	}

	cart = models.Cart{ID: uuid.New().String(), MemberID: memberID}
	if createErr := r.db.Create(&cart).Error; createErr != nil {
		// Lost the creation race; the other request's cart is now there.
		if readErr := r.db.First(&cart, "member_id = ?", memberID).Error; readErr == nil {
			return &cart, nil
		}
		return nil, fmt.Errorf("failed to create cart for member %s: %w", memberID, createErr)
	}
	return &cart, nil
}

// GetCart retrieves a cart by its ID.
func (r *GORMCartRepository) GetCart(cartID string) (*models.Cart, error) {
	var cart models.Cart
	if err := r.db.First(&cart, "id = ?", cartID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("cart %s: %w", cartID, models.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get cart %s: %w", cartID, err)
	}
	return &cart, nil
}

// GetItem retrieves a cart item by its ID.
func (r *GORMCartRepository) GetItem(itemID string) (*models.CartItem, error) {
	var item models.CartItem
	if err := r.db.First(&item, "id = ?", itemID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("cart item %s: %w", itemID, models.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get cart item %s: %w", itemID, err)
	}
	return &item, nil
}

// ListItems retrieves all items of a cart.
func (r *GORMCartRepository) ListItems(cartID string) ([]models.CartItem, error) {
	var items []models.CartItem
	if err := r.db.Find(&items, "cart_id = ?", cartID).Error; err != nil {
		return nil, fmt.Errorf("failed to list items for cart %s: %w", cartID, err)
	}
	return items, nil
}

// UpsertItem adds quantityDelta to the (cart, product) row, inserting it if
// absent. The row is locked for the read-modify-write so two tabs of the
// same member cannot interleave their increments.
func (r *GORMCartRepository) UpsertItem(cartID, productID string, quantityDelta int) (*models.CartItem, error) {
	var item models.CartItem
	err := r.db.Transaction(func(tx *gorm.DB) error {
		err := lockForUpdate(tx).
			First(&item, "cart_id = ? AND product_id = ?", cartID, productID).Error
		if err == nil {
			newQuantity := item.Quantity + quantityDelta
			if newQuantity <= 0 {
				return fmt.Errorf("resulting quantity %d: %w", newQuantity, models.ErrInvalidQuantity)
			}
			item.Quantity = newQuantity
			return tx.Model(&item).Update("quantity", newQuantity).Error
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		if quantityDelta <= 0 {
			return fmt.Errorf("resulting quantity %d: %w", quantityDelta, models.ErrInvalidQuantity)
		}
		item = models.CartItem{
			ID:        uuid.New().String(),
			CartID:    cartID,
			ProductID: productID,
			Quantity:  quantityDelta,
		}
		return tx.Create(&item).Error
	})
	if err != nil {
		if errors.Is(err, models.ErrInvalidQuantity) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to upsert item for cart %s: %w", cartID, err)
	}
	return &item, nil
}

// UpdateItemQuantity sets the absolute quantity of a cart item.
func (r *GORMCartRepository) UpdateItemQuantity(itemID string, quantity int) error {
	res := r.db.Model(&models.CartItem{}).Where("id = ?", itemID).Update("quantity", quantity)
	if res.Error != nil {
		return fmt.Errorf("failed to update quantity of cart item %s: %w", itemID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("cart item %s: %w", itemID, models.ErrNotFound)
	}
	return nil
}

// DeleteItem removes a single cart item.
func (r *GORMCartRepository) DeleteItem(itemID string) error {
	res := r.db.Delete(&models.CartItem{}, "id = ?", itemID)
	if res.Error != nil {
		return fmt.Errorf("failed to delete cart item %s: %w", itemID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("cart item %s: %w", itemID, models.ErrNotFound)
	}
	return nil
}

// DeleteItems removes all given items in one transaction. If any id is
// missing the whole batch is rolled back.
func (r *GORMCartRepository) DeleteItems(itemIDs []string) error {
	if len(itemIDs) == 0 {
		return nil
	}
	err := r.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Delete(&models.CartItem{}, "id IN ?", itemIDs)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected != int64(len(itemIDs)) {
			return fmt.Errorf("expected %d cart items, deleted %d: %w", len(itemIDs), res.RowsAffected, models.ErrNotFound)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return err
		}
		return fmt.Errorf("failed to delete cart items: %w", err)
	}
	return nil
}

// ClearCart deletes all items of a cart. Idempotent on an empty cart.
func (r *GORMCartRepository) ClearCart(cartID string) error {
	if err := r.db.Delete(&models.CartItem{}, "cart_id = ?", cartID).Error; err != nil {
		return fmt.Errorf("failed to clear cart %s: %w", cartID, err)
	}
	return nil
}
