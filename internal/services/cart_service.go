package services

import (
	"errors"
	"fmt"

	"fluxmall/internal/models"
	"fluxmall/internal/repositories"
)

// CartService handles business logic for carts and their items. Every
// mutating operation re-derives the owning cart from storage and checks it
// against the caller's member id; a client-supplied item id alone is never
// trusted.
type CartService struct {
	cartRepo    repositories.CartRepository
	productRepo repositories.ProductRepository
}

// NewCartService creates a new CartService.
func NewCartService(cartRepo repositories.CartRepository, productRepo repositories.ProductRepository) *CartService {
	return &CartService{
		cartRepo:    cartRepo,
		productRepo: productRepo,
	}
}

// GetOrCreateCart returns the member's cart, creating an empty one on first
// access. Idempotent.
func (s *CartService) GetOrCreateCart(memberID string) (*models.Cart, error) {
	if memberID == "" {
		return nil, models.ErrUnauthenticated
	}
	return s.cartRepo.GetOrCreateCart(memberID)
}

// ListItems returns the member's cart items joined with current product name
// and price, plus the display total. The prices here are informational;
// checkout snapshots prices from the product records itself.
func (s *CartService) ListItems(memberID string) ([]models.CartItemView, int64, error) {
	cart, err := s.GetOrCreateCart(memberID)
	if err != nil {
		return nil, 0, err
	}
	items, err := s.cartRepo.ListItems(cart.ID)
	if err != nil {
		return nil, 0, err
	}

	views := make([]models.CartItemView, 0, len(items))
	var total int64
	for _, item := range items {
		product, err := s.productRepo.GetByID(item.ProductID)
		if err != nil {
			if errors.Is(err, models.ErrNotFound) {
				// Product was removed from the catalog; the stale row stays
				// out of the display and checkout will reject it.
				continue
			}
			return nil, 0, err
		}
		lineTotal := product.Price * int64(item.Quantity)
		views = append(views, models.CartItemView{
			ID:           item.ID,
			ProductID:    item.ProductID,
			ProductName:  product.Name,
			ProductPrice: product.Price,
			Quantity:     item.Quantity,
			LineTotal:    lineTotal,
		})
		total += lineTotal
	}
	return views, total, nil
}

// AddItem adds quantityDelta of a product to the member's cart, incrementing
// the existing row if the product is already there.
func (s *CartService) AddItem(memberID, productID string, quantityDelta int) error {
	if memberID == "" {
		return models.ErrUnauthenticated
	}
	product, err := s.productRepo.GetByID(productID)
	if err != nil {
		return err
	}
	if product.Status != models.ProductOnSale {
		return &models.ProductUnavailableError{ProductID: product.ID}
	}
	cart, err := s.cartRepo.GetOrCreateCart(memberID)
	if err != nil {
		return err
	}
	_, err = s.cartRepo.UpsertItem(cart.ID, productID, quantityDelta)
	return err
}

// SetItemQuantity sets the absolute quantity of a cart item after verifying
// the caller owns it. A quantity of zero or less deletes the row; quantities
// are never stored as zero.
func (s *CartService) SetItemQuantity(memberID, itemID string, newQuantity int) error {
	item, err := s.ownedItem(memberID, itemID)
	if err != nil {
		return err
	}
	if newQuantity <= 0 {
		return s.cartRepo.DeleteItem(item.ID)
	}
	return s.cartRepo.UpdateItemQuantity(item.ID, newQuantity)
}

// RemoveItem deletes a cart item after verifying the caller owns it.
func (s *CartService) RemoveItem(memberID, itemID string) error {
	item, err := s.ownedItem(memberID, itemID)
	if err != nil {
		return err
	}
	return s.cartRepo.DeleteItem(item.ID)
}

// RemoveItems deletes a batch of cart items. If any id does not exist or is
// not owned by the caller the whole batch is rejected with
// models.ErrPartialOwnership; no owned item is deleted as a side effect.
func (s *CartService) RemoveItems(memberID string, itemIDs []string) error {
	if memberID == "" {
		return models.ErrUnauthenticated
	}
	if len(itemIDs) == 0 {
		return nil
	}
	for _, id := range itemIDs {
		if _, err := s.ownedItem(memberID, id); err != nil {
			if errors.Is(err, models.ErrNotFound) || errors.Is(err, models.ErrNotOwner) {
				return fmt.Errorf("cart item %s: %w", id, models.ErrPartialOwnership)
			}
			return err
		}
	}
	return s.cartRepo.DeleteItems(itemIDs)
}

// Clear deletes all items of a cart. Idempotent on an empty cart.
func (s *CartService) Clear(cartID string) error {
	return s.cartRepo.ClearCart(cartID)
}

// rawItems returns the stored item rows of a cart without joining product
// data. Checkout uses this; it snapshots names and prices from the product
// records itself and must see stale rows that ListItems would hide.
func (s *CartService) rawItems(cartID string) ([]models.CartItem, error) {
	return s.cartRepo.ListItems(cartID)
}

// ownedItem loads the item and its cart from storage and verifies the cart
// belongs to the requesting member.
func (s *CartService) ownedItem(memberID, itemID string) (*models.CartItem, error) {
	if memberID == "" {
		return nil, models.ErrUnauthenticated
	}
	item, err := s.cartRepo.GetItem(itemID)
	if err != nil {
		return nil, err
	}
	cart, err := s.cartRepo.GetCart(item.CartID)
	if err != nil {
		return nil, err
	}
	if cart.MemberID != memberID {
		return nil, fmt.Errorf("cart item %s: %w", itemID, models.ErrNotOwner)
	}
	return item, nil
}
