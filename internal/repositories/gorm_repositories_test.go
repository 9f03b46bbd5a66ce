package repositories_test

import (
	"fmt"
	"testing"

	"fluxmall/internal/models"
	"fluxmall/internal/repositories"

	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB opens a dedicated in-memory SQLite database and migrates the
// full schema. Each test gets its own database name so tests stay isolated.
func newTestDB(t *testing.T, name string) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("failed to open in-memory database: %v", err)
	}
	err = db.AutoMigrate(
		&models.Member{},
		&models.Product{},
		&models.Cart{},
		&models.CartItem{},
		&models.Order{},
		&models.OrderItem{},
	)
	if err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	return db
}

func createProduct(t *testing.T, repo repositories.ProductRepository, id string, price int64, stock int, status models.ProductStatus) {
	t.Helper()
	err := repo.Create(&models.Product{ID: id, Name: "Product " + id, Price: price, Stock: stock, Status: status})
	assert.NoError(t, err)
}

func TestGORMCartRepository_GetOrCreateCart(t *testing.T) {
	db := newTestDB(t, "cart_getorcreate")
	repo := repositories.NewGORMCartRepository(db)

	first, err := repo.GetOrCreateCart("member-1")
	assert.NoError(t, err)
	second, err := repo.GetOrCreateCart("member-1")
	assert.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
}

func TestGORMCartRepository_UpsertItem(t *testing.T) {
	db := newTestDB(t, "cart_upsert")
	repo := repositories.NewGORMCartRepository(db)
	cart, err := repo.GetOrCreateCart("member-1")
	assert.NoError(t, err)

	item, err := repo.UpsertItem(cart.ID, "prod-1", 2)
	assert.NoError(t, err)
	assert.Equal(t, 2, item.Quantity)

	// Second upsert increments the same row instead of inserting.
	item, err = repo.UpsertItem(cart.ID, "prod-1", 3)
	assert.NoError(t, err)
	assert.Equal(t, 5, item.Quantity)

	items, err := repo.ListItems(cart.ID)
	assert.NoError(t, err)
	assert.Len(t, items, 1)

	_, err = repo.UpsertItem(cart.ID, "prod-1", -5)
	assert.ErrorIs(t, err, models.ErrInvalidQuantity)
	_, err = repo.UpsertItem(cart.ID, "prod-2", -1)
	assert.ErrorIs(t, err, models.ErrInvalidQuantity)
}

func TestGORMCartRepository_ReAddAfterClear(t *testing.T) {
	db := newTestDB(t, "cart_readd")
	repo := repositories.NewGORMCartRepository(db)
	cart, err := repo.GetOrCreateCart("member-1")
	assert.NoError(t, err)

	_, err = repo.UpsertItem(cart.ID, "prod-1", 1)
	assert.NoError(t, err)
	assert.NoError(t, repo.ClearCart(cart.ID))

	// The (cart, product) unique index must not block re-adding a product
	// whose row was deleted by a previous checkout.
	item, err := repo.UpsertItem(cart.ID, "prod-1", 2)
	assert.NoError(t, err)
	assert.Equal(t, 2, item.Quantity)
}

func TestGORMCartRepository_DeleteItemsIsAtomic(t *testing.T) {
	db := newTestDB(t, "cart_bulkdelete")
	repo := repositories.NewGORMCartRepository(db)
	cart, err := repo.GetOrCreateCart("member-1")
	assert.NoError(t, err)

	itemA, err := repo.UpsertItem(cart.ID, "prod-1", 1)
	assert.NoError(t, err)
	itemB, err := repo.UpsertItem(cart.ID, "prod-2", 1)
	assert.NoError(t, err)

	// A missing id rolls the whole batch back.
	err = repo.DeleteItems([]string{itemA.ID, "missing"})
	assert.ErrorIs(t, err, models.ErrNotFound)
	items, err := repo.ListItems(cart.ID)
	assert.NoError(t, err)
	assert.Len(t, items, 2)

	assert.NoError(t, repo.DeleteItems([]string{itemA.ID, itemB.ID}))
	items, err = repo.ListItems(cart.ID)
	assert.NoError(t, err)
	assert.Empty(t, items)
}

func TestGORMInventoryRepository_ReserveAndRelease(t *testing.T) {
	db := newTestDB(t, "inventory_reserve")
	productRepo := repositories.NewGORMProductRepository(db)
	repo := repositories.NewGORMInventoryRepository(db)
	createProduct(t, productRepo, "prod-1", 1000, 5, models.ProductOnSale)
	createProduct(t, productRepo, "prod-2", 2000, 1, models.ProductOnSale)

	err := repo.ReserveStock([]models.ReservationLine{
		{ProductID: "prod-1", Quantity: 2},
		{ProductID: "prod-2", Quantity: 1},
	})
	assert.NoError(t, err)

	product, err := productRepo.GetByID("prod-1")
	assert.NoError(t, err)
	assert.Equal(t, 3, product.Stock)
	product, err = productRepo.GetByID("prod-2")
	assert.NoError(t, err)
	assert.Equal(t, 0, product.Stock)

	err = repo.ReleaseStock([]models.ReservationLine{
		{ProductID: "prod-1", Quantity: 2},
		{ProductID: "prod-2", Quantity: 1},
	})
	assert.NoError(t, err)
	product, err = productRepo.GetByID("prod-1")
	assert.NoError(t, err)
	assert.Equal(t, 5, product.Stock)
}

func TestGORMInventoryRepository_ReserveRollsBackWholeBatch(t *testing.T) {
	db := newTestDB(t, "inventory_rollback")
	productRepo := repositories.NewGORMProductRepository(db)
	repo := repositories.NewGORMInventoryRepository(db)
	createProduct(t, productRepo, "prod-1", 1000, 5, models.ProductOnSale)
	createProduct(t, productRepo, "prod-2", 2000, 1, models.ProductOnSale)

	err := repo.ReserveStock([]models.ReservationLine{
		{ProductID: "prod-1", Quantity: 2},
		{ProductID: "prod-2", Quantity: 2},
	})
	var outOfStock *models.OutOfStockError
	assert.ErrorAs(t, err, &outOfStock)
	assert.Equal(t, []string{"prod-2"}, outOfStock.ProductIDs)

	// Nothing was decremented for the passing line either.
	product, err := productRepo.GetByID("prod-1")
	assert.NoError(t, err)
	assert.Equal(t, 5, product.Stock)
}

func TestGORMInventoryRepository_ReserveRejectsNotForSale(t *testing.T) {
	db := newTestDB(t, "inventory_notforsale")
	productRepo := repositories.NewGORMProductRepository(db)
	repo := repositories.NewGORMInventoryRepository(db)
	createProduct(t, productRepo, "halted", 1000, 5, models.ProductNotForSale)

	err := repo.ReserveStock([]models.ReservationLine{{ProductID: "halted", Quantity: 1}})
	var unavailable *models.ProductUnavailableError
	assert.ErrorAs(t, err, &unavailable)
	assert.Equal(t, "halted", unavailable.ProductID)
}

func TestGORMOrderRepository_SnapshotRoundTrip(t *testing.T) {
	db := newTestDB(t, "order_snapshot")
	productRepo := repositories.NewGORMProductRepository(db)
	repo := repositories.NewGORMOrderRepository(db)
	createProduct(t, productRepo, "prod-1", 1000, 5, models.ProductOnSale)

	order := &models.Order{
		MemberID:        "member-1",
		ShippingAddress: "Seoul",
		TotalPrice:      2000,
		IdempotencyKey:  "key-1",
		Items: []models.OrderItem{
			{ProductID: "prod-1", ProductName: "Product prod-1", UnitPrice: 1000, Quantity: 2},
		},
	}
	assert.NoError(t, repo.Create(order))

	// Changing the catalog price must not touch the persisted snapshot.
	product, err := productRepo.GetByID("prod-1")
	assert.NoError(t, err)
	product.Price = 9999
	assert.NoError(t, productRepo.Update(product))

	got, err := repo.GetByID(order.ID)
	assert.NoError(t, err)
	assert.Equal(t, int64(2000), got.TotalPrice)
	assert.Len(t, got.Items, 1)
	assert.Equal(t, int64(1000), got.Items[0].UnitPrice)
	assert.Equal(t, "Product prod-1", got.Items[0].ProductName)

	found, err := repo.GetByIdempotencyKey("member-1", "key-1")
	assert.NoError(t, err)
	assert.Equal(t, order.ID, found.ID)

	// The key lookup is scoped to the member who submitted it.
	_, err = repo.GetByIdempotencyKey("member-2", "key-1")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestGORMOrderRepository_IdempotencyKeyUniquePerMember(t *testing.T) {
	db := newTestDB(t, "order_idemkey")
	repo := repositories.NewGORMOrderRepository(db)

	first := &models.Order{MemberID: "member-1", ShippingAddress: "Seoul", TotalPrice: 1000, IdempotencyKey: "dup"}
	assert.NoError(t, repo.Create(first))

	second := &models.Order{MemberID: "member-1", ShippingAddress: "Seoul", TotalPrice: 1000, IdempotencyKey: "dup"}
	assert.Error(t, repo.Create(second))

	// A different member may reuse the same client-generated key.
	other := &models.Order{MemberID: "member-2", ShippingAddress: "Busan", TotalPrice: 500, IdempotencyKey: "dup"}
	assert.NoError(t, repo.Create(other))
}

func TestGORMOrderRepository_ListByMember(t *testing.T) {
	db := newTestDB(t, "order_list")
	repo := repositories.NewGORMOrderRepository(db)

	for i := 0; i < 3; i++ {
		order := &models.Order{
			MemberID:        "member-1",
			ShippingAddress: "Seoul",
			TotalPrice:      1000,
			IdempotencyKey:  fmt.Sprintf("key-%d", i),
			Items:           []models.OrderItem{{ProductID: "prod-1", ProductName: "P", UnitPrice: 1000, Quantity: 1}},
		}
		assert.NoError(t, repo.Create(order))
	}
	other := &models.Order{MemberID: "member-2", ShippingAddress: "Busan", TotalPrice: 500, IdempotencyKey: "key-other"}
	assert.NoError(t, repo.Create(other))

	orders, err := repo.ListByMember("member-1")
	assert.NoError(t, err)
	assert.Len(t, orders, 3)
	for _, order := range orders {
		assert.Equal(t, "member-1", order.MemberID)
	}
}
