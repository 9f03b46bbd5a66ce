package services_test

import (
	"fmt"
	"sync"
	"testing"

	"fluxmall/internal/models"
	"fluxmall/internal/repositories"
	"fluxmall/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockOrderRepository is a mock implementation of repositories.OrderRepository
type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) Create(order *models.Order) error {
	args := m.Called(order)
	return args.Error(0)
}

func (m *MockOrderRepository) GetByID(id string) (*models.Order, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Order), args.Error(1)
}

func (m *MockOrderRepository) ListByMember(memberID string) ([]models.Order, error) {
	args := m.Called(memberID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Order), args.Error(1)
}

func (m *MockOrderRepository) GetByIdempotencyKey(memberID, key string) (*models.Order, error) {
	args := m.Called(memberID, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Order), args.Error(1)
}

// MockEventPublisher is a mock implementation of services.EventPublisher
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(exchange, routingKey string, body []byte) error {
	args := m.Called(exchange, routingKey, body)
	return args.Error(0)
}

type checkoutFixture struct {
	checkout    *services.CheckoutService
	cartService *services.CartService
	orders      *services.OrderService
	productRepo *repositories.MockProductRepository
}

func newCheckoutFixture(t *testing.T) *checkoutFixture {
	t.Helper()
	productRepo := repositories.NewMockProductRepository()
	cartRepo := repositories.NewMockCartRepository()
	cartService := services.NewCartService(cartRepo, productRepo)
	inventoryService := services.NewInventoryService(repositories.NewMockInventoryRepository(productRepo))
	orderService := services.NewOrderService(repositories.NewMockOrderRepository())
	checkout := services.NewCheckoutService(cartService, inventoryService, orderService, productRepo, nil)
	return &checkoutFixture{
		checkout:    checkout,
		cartService: cartService,
		orders:      orderService,
		productRepo: productRepo,
	}
}

func TestCheckoutService_CartCheckoutScenario(t *testing.T) {
	f := newCheckoutFixture(t)
	seedProduct(t, f.productRepo, "P1", 1000, 5)
	seedProduct(t, f.productRepo, "P2", 2000, 5)
	assert.NoError(t, f.cartService.AddItem("member-1", "P1", 2))
	assert.NoError(t, f.cartService.AddItem("member-1", "P2", 1))

	orderID, err := f.checkout.Checkout("member-1", "Seoul", services.CartSource{}, "")
	assert.NoError(t, err)
	assert.NotEmpty(t, orderID)

	order, err := f.orders.GetOrder("member-1", orderID)
	assert.NoError(t, err)
	assert.Equal(t, int64(4000), order.TotalPrice)
	assert.Equal(t, "Seoul", order.ShippingAddress)
	assert.Len(t, order.Items, 2)

	assert.Equal(t, 3, stockOf(t, f.productRepo, "P1"))
	assert.Equal(t, 4, stockOf(t, f.productRepo, "P2"))

	items, _, err := f.cartService.ListItems("member-1")
	assert.NoError(t, err)
	assert.Empty(t, items, "cart must be empty after checkout")
}

func TestCheckoutService_SnapshotSurvivesPriceChange(t *testing.T) {
	f := newCheckoutFixture(t)
	seedProduct(t, f.productRepo, "P1", 1000, 5)
	assert.NoError(t, f.cartService.AddItem("member-1", "P1", 2))

	orderID, err := f.checkout.Checkout("member-1", "Seoul", services.CartSource{}, "")
	assert.NoError(t, err)

	// A later catalog change must not leak into the persisted order.
	product, err := f.productRepo.GetByID("P1")
	assert.NoError(t, err)
	product.Price = 9999
	product.Name = "Renamed"
	assert.NoError(t, f.productRepo.Update(product))

	order, err := f.orders.GetOrder("member-1", orderID)
	assert.NoError(t, err)
	assert.Equal(t, int64(2000), order.TotalPrice)
	assert.Equal(t, int64(1000), order.Items[0].UnitPrice)
	assert.Equal(t, "Product P1", order.Items[0].ProductName)
}

func TestCheckoutService_RequiresMemberAndItems(t *testing.T) {
	f := newCheckoutFixture(t)

	_, err := f.checkout.Checkout("", "Seoul", services.CartSource{}, "")
	assert.ErrorIs(t, err, models.ErrUnauthenticated)

	_, err = f.checkout.Checkout("member-1", "Seoul", services.CartSource{}, "")
	assert.ErrorIs(t, err, models.ErrEmptyCart)
}

func TestCheckoutService_DirectCheckout(t *testing.T) {
	f := newCheckoutFixture(t)
	seedProduct(t, f.productRepo, "P1", 1500, 4)
	// An unrelated cart item must survive a direct purchase untouched.
	assert.NoError(t, f.cartService.AddItem("member-1", "P1", 1))

	orderID, err := f.checkout.Checkout("member-1", "Busan", services.DirectSource{ProductID: "P1", Quantity: 3}, "")
	assert.NoError(t, err)

	order, err := f.orders.GetOrder("member-1", orderID)
	assert.NoError(t, err)
	assert.Equal(t, int64(4500), order.TotalPrice)
	assert.Equal(t, 1, stockOf(t, f.productRepo, "P1"))

	items, _, err := f.cartService.ListItems("member-1")
	assert.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestCheckoutService_DirectCheckoutPrechecks(t *testing.T) {
	f := newCheckoutFixture(t)
	seedProduct(t, f.productRepo, "P1", 1500, 2)
	assert.NoError(t, f.productRepo.Create(&models.Product{ID: "halted", Name: "Halted", Price: 100, Stock: 5, Status: models.ProductNotForSale}))

	_, err := f.checkout.Checkout("member-1", "Seoul", services.DirectSource{ProductID: "P1", Quantity: 0}, "")
	assert.ErrorIs(t, err, models.ErrInvalidQuantity)

	_, err = f.checkout.Checkout("member-1", "Seoul", services.DirectSource{ProductID: "missing", Quantity: 1}, "")
	assert.ErrorIs(t, err, models.ErrNotFound)

	_, err = f.checkout.Checkout("member-1", "Seoul", services.DirectSource{ProductID: "halted", Quantity: 1}, "")
	var unavailable *models.ProductUnavailableError
	assert.ErrorAs(t, err, &unavailable)

	_, err = f.checkout.Checkout("member-1", "Seoul", services.DirectSource{ProductID: "P1", Quantity: 3}, "")
	var outOfStock *models.OutOfStockError
	assert.ErrorAs(t, err, &outOfStock)
	assert.Equal(t, 2, stockOf(t, f.productRepo, "P1"))
}

func TestCheckoutService_ConcurrentLastUnit(t *testing.T) {
	f := newCheckoutFixture(t)
	seedProduct(t, f.productRepo, "P1", 1000, 1)

	var wg sync.WaitGroup
	results := make(chan error, 2)
	for i := 0; i < 2; i++ {
		memberID := fmt.Sprintf("member-%d", i)
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.checkout.Checkout(memberID, "Seoul", services.DirectSource{ProductID: "P1", Quantity: 1}, "")
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	succeeded, failed := 0, 0
	for err := range results {
		if err == nil {
			succeeded++
		} else {
			var outOfStock *models.OutOfStockError
			assert.ErrorAs(t, err, &outOfStock)
			failed++
		}
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 1, failed)
	assert.Equal(t, 0, stockOf(t, f.productRepo, "P1"))
}

func TestCheckoutService_PersistenceFailureReleasesReservation(t *testing.T) {
	productRepo := repositories.NewMockProductRepository()
	cartRepo := repositories.NewMockCartRepository()
	cartService := services.NewCartService(cartRepo, productRepo)
	inventoryService := services.NewInventoryService(repositories.NewMockInventoryRepository(productRepo))

	mockOrderRepo := new(MockOrderRepository)
	mockOrderRepo.On("Create", mock.Anything).Return(fmt.Errorf("database error")).Once()
	orderService := services.NewOrderService(mockOrderRepo)

	checkout := services.NewCheckoutService(cartService, inventoryService, orderService, productRepo, nil)

	seedProduct(t, productRepo, "P1", 1000, 5)
	assert.NoError(t, cartService.AddItem("member-1", "P1", 2))

	_, err := checkout.Checkout("member-1", "Seoul", services.CartSource{}, "")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "database error")

	// Compensation ran: stock is back to its pre-reservation value and the
	// cart was not cleared.
	product, err := productRepo.GetByID("P1")
	assert.NoError(t, err)
	assert.Equal(t, 5, product.Stock)

	items, _, err := cartService.ListItems("member-1")
	assert.NoError(t, err)
	assert.Len(t, items, 1)

	mockOrderRepo.AssertExpectations(t)
}

func TestCheckoutService_IdempotentResubmission(t *testing.T) {
	f := newCheckoutFixture(t)
	seedProduct(t, f.productRepo, "P1", 1000, 5)
	assert.NoError(t, f.cartService.AddItem("member-1", "P1", 2))

	first, err := f.checkout.Checkout("member-1", "Seoul", services.CartSource{}, "submit-123")
	assert.NoError(t, err)

	// The double-clicked submit returns the same order and decrements
	// nothing further, even though the cart is empty by now.
	second, err := f.checkout.Checkout("member-1", "Seoul", services.CartSource{}, "submit-123")
	assert.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 3, stockOf(t, f.productRepo, "P1"))
}

func TestCheckoutService_IdempotencyKeyScopedToMember(t *testing.T) {
	f := newCheckoutFixture(t)
	seedProduct(t, f.productRepo, "P1", 1000, 5)

	// Client-generated keys collide across members. Each member's checkout
	// must produce their own order; neither may see the other's order id.
	aliceOrderID, err := f.checkout.Checkout("alice", "Seoul", services.DirectSource{ProductID: "P1", Quantity: 1}, "submit-123")
	assert.NoError(t, err)
	bobOrderID, err := f.checkout.Checkout("bob", "Busan", services.DirectSource{ProductID: "P1", Quantity: 2}, "submit-123")
	assert.NoError(t, err)
	assert.NotEqual(t, aliceOrderID, bobOrderID)

	bobOrder, err := f.orders.GetOrder("bob", bobOrderID)
	assert.NoError(t, err)
	assert.Equal(t, int64(2000), bobOrder.TotalPrice)
	assert.Equal(t, 2, stockOf(t, f.productRepo, "P1"))

	// Each member's resubmission still deduplicates against their own order.
	again, err := f.checkout.Checkout("alice", "Seoul", services.DirectSource{ProductID: "P1", Quantity: 1}, "submit-123")
	assert.NoError(t, err)
	assert.Equal(t, aliceOrderID, again)
	assert.Equal(t, 2, stockOf(t, f.productRepo, "P1"))
}

func TestCheckoutService_PublishesOrderCreatedEvent(t *testing.T) {
	productRepo := repositories.NewMockProductRepository()
	cartRepo := repositories.NewMockCartRepository()
	cartService := services.NewCartService(cartRepo, productRepo)
	inventoryService := services.NewInventoryService(repositories.NewMockInventoryRepository(productRepo))
	orderService := services.NewOrderService(repositories.NewMockOrderRepository())

	mockPublisher := new(MockEventPublisher)
	mockPublisher.On("Publish", "order", "order.created", mock.Anything).Return(nil).Once()

	checkout := services.NewCheckoutService(cartService, inventoryService, orderService, productRepo, mockPublisher)

	seedProduct(t, productRepo, "P1", 1000, 5)
	assert.NoError(t, cartService.AddItem("member-1", "P1", 1))

	_, err := checkout.Checkout("member-1", "Seoul", services.CartSource{}, "")
	assert.NoError(t, err)

	mockPublisher.AssertExpectations(t)
}
