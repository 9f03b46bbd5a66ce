package services

import (
	"fmt"
	"time"

	"fluxmall/internal/models"
	"fluxmall/internal/repositories"

	"github.com/google/uuid"
)

// OrderService assembles and reads orders. Assembling is pure persistence of
// an already-priced snapshot; stock is never touched here.
type OrderService struct {
	orderRepo repositories.OrderRepository
}

// NewOrderService creates a new OrderService.
func NewOrderService(orderRepo repositories.OrderRepository) *OrderService {
	return &OrderService{
		orderRepo: orderRepo,
	}
}

// Assemble persists an order and its items as one unit. The name and price
// snapshots in lines were captured from the product records before the stock
// reservation, so a catalog change mid-checkout cannot alter the total.
func (s *OrderService) Assemble(memberID, shippingAddress string, lines []models.OrderLine, idempotencyKey string) (*models.Order, error) {
	if len(lines) == 0 {
		return nil, models.ErrEmptyOrder
	}

	var totalPrice int64
	items := make([]models.OrderItem, 0, len(lines))
	for _, line := range lines {
		if line.Quantity < 1 {
			return nil, fmt.Errorf("quantity %d for product %s: %w", line.Quantity, line.ProductID, models.ErrInvalidQuantity)
		}
		items = append(items, models.OrderItem{
			ID:          uuid.New().String(),
			ProductID:   line.ProductID,
			ProductName: line.ProductName,
			UnitPrice:   line.UnitPrice,
			Quantity:    line.Quantity,
		})
		totalPrice += line.UnitPrice * int64(line.Quantity)
	}

	order := &models.Order{
		ID:              uuid.New().String(),
		MemberID:        memberID,
		ShippingAddress: shippingAddress,
		TotalPrice:      totalPrice,
		Items:           items,
		CreatedAt:       time.Now(),
	}
	// Unkeyed orders use their own id so the unique index stays satisfied.
	if idempotencyKey == "" {
		idempotencyKey = order.ID
	}
	order.IdempotencyKey = idempotencyKey

	if err := s.orderRepo.Create(order); err != nil {
		return nil, fmt.Errorf("failed to persist order: %w", err)
	}
	return order, nil
}

// GetOrder retrieves one of the member's orders with its items. An order
// belonging to another member reads as not found rather than revealing its
// existence.
func (s *OrderService) GetOrder(memberID, orderID string) (*models.Order, error) {
	if memberID == "" {
		return nil, models.ErrUnauthenticated
	}
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, err
	}
	if order.MemberID != memberID {
		return nil, fmt.Errorf("order %s: %w", orderID, models.ErrNotFound)
	}
	return order, nil
}

// ListOrders retrieves all orders of the member, newest first.
func (s *OrderService) ListOrders(memberID string) ([]models.Order, error) {
	if memberID == "" {
		return nil, models.ErrUnauthenticated
	}
	return s.orderRepo.ListByMember(memberID)
}

// FindByIdempotencyKey returns the order created by a previous checkout
// submission of the same member with the same key, or models.ErrNotFound.
// Keys are scoped per member so a client-generated key reused by someone
// else never matches.
func (s *OrderService) FindByIdempotencyKey(memberID, key string) (*models.Order, error) {
	return s.orderRepo.GetByIdempotencyKey(memberID, key)
}
