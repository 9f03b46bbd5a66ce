package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"fluxmall/internal/models"
	"fluxmall/internal/repositories"
)

// EventPublisher publishes checkout events to the message broker.
type EventPublisher interface {
	Publish(exchange, routingKey string, body []byte) error
}

// CheckoutSource identifies where the line items of a checkout come from.
type CheckoutSource interface {
	checkoutSource()
}

// CartSource checks out the member's whole cart.
type CartSource struct{}

// DirectSource checks out a single product immediately ("buy now") without
// going through the cart.
type DirectSource struct {
	ProductID string
	Quantity  int
}

func (CartSource) checkoutSource()   {}
func (DirectSource) checkoutSource() {}

// CheckoutService sequences a checkout attempt: resolve and price the line
// items, reserve stock, persist the order, clear the cart. A failure after
// the reservation succeeded releases the reserved stock, so stock is never
// decremented without a matching order.
type CheckoutService struct {
	cartService      *CartService
	inventoryService *InventoryService
	orderService     *OrderService
	productRepo      repositories.ProductRepository
	mqClient         EventPublisher
}

// NewCheckoutService creates a new CheckoutService.
func NewCheckoutService(
	cartService *CartService,
	inventoryService *InventoryService,
	orderService *OrderService,
	productRepo repositories.ProductRepository,
	mqClient EventPublisher,
) *CheckoutService {
	return &CheckoutService{
		cartService:      cartService,
		inventoryService: inventoryService,
		orderService:     orderService,
		productRepo:      productRepo,
		mqClient:         mqClient,
	}
}

// Checkout converts the source's line items into a persisted order and
// returns its id. idempotencyKey may be empty; when present, a repeated
// submission by the same member with the same key returns the order the
// first one created instead of reserving and ordering again. Keys are
// scoped per member, so two members reusing the same client-generated key
// each get their own order.
func (s *CheckoutService) Checkout(memberID, shippingAddress string, source CheckoutSource, idempotencyKey string) (string, error) {
	if memberID == "" {
		return "", models.ErrUnauthenticated
	}

	if idempotencyKey != "" {
		existing, err := s.orderService.FindByIdempotencyKey(memberID, idempotencyKey)
		if err == nil {
			return existing.ID, nil
		}
		if !errors.Is(err, models.ErrNotFound) {
			return "", err
		}
	}

	lines, cartID, err := s.resolveLines(memberID, source)
	if err != nil {
		return "", err
	}

	reservationLines := make([]models.ReservationLine, 0, len(lines))
	for _, line := range lines {
		reservationLines = append(reservationLines, models.ReservationLine{
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
		})
	}
	reservation, err := s.inventoryService.Reserve(reservationLines)
	if err != nil {
		return "", err
	}

	order, err := s.orderService.Assemble(memberID, shippingAddress, lines, idempotencyKey)
	if err != nil {
		if releaseErr := s.inventoryService.Release(reservation); releaseErr != nil {
			log.Printf("Failed to release reservation after order persistence failure: %v", releaseErr)
		}
		// A racing submission by the same member with the same key may have
		// won the insert; return its order instead of a duplicate-key failure.
		if idempotencyKey != "" {
			if existing, findErr := s.orderService.FindByIdempotencyKey(memberID, idempotencyKey); findErr == nil {
				return existing.ID, nil
			}
		}
		return "", err
	}

	if cartID != "" {
		// The order is the durable outcome; a cart that failed to empty is
		// a recoverable cosmetic issue, not a reason to unwind it.
		if clearErr := s.cartService.Clear(cartID); clearErr != nil {
			log.Printf("Warning: failed to clear cart %s after checkout %s: %v", cartID, order.ID, clearErr)
		}
	}

	s.publishOrderCreated(order)

	return order.ID, nil
}

// resolveLines turns the checkout source into priced order lines. Names and
// prices are snapshotted from the product records here, before reservation.
// For a cart source it also returns the cart id to clear afterwards.
func (s *CheckoutService) resolveLines(memberID string, source CheckoutSource) ([]models.OrderLine, string, error) {
	switch src := source.(type) {
	case CartSource:
		cart, err := s.cartService.GetOrCreateCart(memberID)
		if err != nil {
			return nil, "", err
		}
		items, err := s.cartService.rawItems(cart.ID)
		if err != nil {
			return nil, "", err
		}
		if len(items) == 0 {
			return nil, "", models.ErrEmptyCart
		}
		lines := make([]models.OrderLine, 0, len(items))
		for _, item := range items {
			product, err := s.productRepo.GetByID(item.ProductID)
			if err != nil {
				return nil, "", err
			}
			lines = append(lines, models.OrderLine{
				ProductID:   product.ID,
				ProductName: product.Name,
				UnitPrice:   product.Price,
				Quantity:    item.Quantity,
			})
		}
		return lines, cart.ID, nil

	case DirectSource:
		if src.Quantity < 1 {
			return nil, "", fmt.Errorf("quantity %d: %w", src.Quantity, models.ErrInvalidQuantity)
		}
		product, err := s.productRepo.GetByID(src.ProductID)
		if err != nil {
			return nil, "", err
		}
		if product.Status != models.ProductOnSale {
			return nil, "", &models.ProductUnavailableError{ProductID: product.ID}
		}
		// Precheck against current stock; the reservation repeats this
		// atomically, this just fails the obvious case early.
		if product.Stock < src.Quantity {
			return nil, "", &models.OutOfStockError{ProductIDs: []string{product.ID}}
		}
		return []models.OrderLine{{
			ProductID:   product.ID,
			ProductName: product.Name,
			UnitPrice:   product.Price,
			Quantity:    src.Quantity,
		}}, "", nil

	default:
		return nil, "", fmt.Errorf("unknown checkout source %T", source)
	}
}

// publishOrderCreated emits an order.created event. Publishing is
// best-effort; a broker failure never fails a completed checkout.
func (s *CheckoutService) publishOrderCreated(order *models.Order) {
	if s.mqClient == nil {
		log.Println("RabbitMQ client is not initialized. Skipping message publication.")
		return
	}
	event := map[string]interface{}{
		"order_id":  order.ID,
		"member_id": order.MemberID,
		"total":     order.TotalPrice,
	}
	body, err := json.Marshal(event)
	if err != nil {
		log.Printf("Failed to marshal order created event: %v", err)
		return
	}
	if err := s.mqClient.Publish("order", "order.created", body); err != nil {
		log.Printf("Warning: Failed to publish order created event for order %s: %v", order.ID, err)
	} else {
		log.Printf("Successfully published order created event for order %s", order.ID)
	}
}
