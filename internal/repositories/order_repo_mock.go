package repositories

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"fluxmall/internal/models"

	"github.com/google/uuid"
)

// MockOrderRepository is an in-memory implementation of OrderRepository.
type MockOrderRepository struct {
	orders map[string]models.Order
	mu     sync.RWMutex
}

// NewMockOrderRepository creates a new instance of MockOrderRepository.
func NewMockOrderRepository() *MockOrderRepository {
	return &MockOrderRepository{
		orders: make(map[string]models.Order),
	}
}

// Create adds a new order with its items. The idempotency key behaves like a
// unique column: a duplicate key rejects the insert.
func (r *MockOrderRepository) Create(order *models.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if order.ID == "" {
		order.ID = uuid.New().String()
	}
	if order.IdempotencyKey != "" {
		for _, existing := range r.orders {
			if existing.MemberID == order.MemberID && existing.IdempotencyKey == order.IdempotencyKey {
				return fmt.Errorf("duplicate idempotency key for order %s", existing.ID)
			}
		}
	}
	for i := range order.Items {
		if order.Items[i].ID == "" {
			order.Items[i].ID = uuid.New().String()
		}
		order.Items[i].OrderID = order.ID
	}
	if order.CreatedAt.IsZero() {
		order.CreatedAt = time.Now()
	}
	r.orders[order.ID] = *order
	return nil
}

// GetByID returns an order by its ID.
func (r *MockOrderRepository) GetByID(id string) (*models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	order, ok := r.orders[id]
	if !ok {
		return nil, fmt.Errorf("order %s: %w", id, models.ErrNotFound)
	}
	return &order, nil
}

// ListByMember returns all orders of a member, newest first.
func (r *MockOrderRepository) ListByMember(memberID string) ([]models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	orderList := make([]models.Order, 0)
	for _, order := range r.orders {
		if order.MemberID == memberID {
			orderList = append(orderList, order)
		}
	}
	sort.Slice(orderList, func(i, j int) bool {
		return orderList[i].CreatedAt.After(orderList[j].CreatedAt)
	})
	return orderList, nil
}

// GetByIdempotencyKey returns the order the member created with the given key.
func (r *MockOrderRepository) GetByIdempotencyKey(memberID, key string) (*models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, order := range r.orders {
		if order.MemberID == memberID && order.IdempotencyKey == key {
			return &order, nil
		}
	}
	return nil, fmt.Errorf("order for idempotency key: %w", models.ErrNotFound)
}
