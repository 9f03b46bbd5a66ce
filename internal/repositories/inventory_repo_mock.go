package repositories

import (
	"sync"

	"fluxmall/internal/models"
)

// MockInventoryRepository is an in-memory implementation of
// InventoryRepository layered over a ProductRepository. A single mutex
// serializes whole reservation batches: all stock mutation flows through
// here, so the check-and-decrement of a batch is atomic with respect to
// every concurrent reservation and release.
type MockInventoryRepository struct {
	products ProductRepository
	mu       sync.Mutex
}

// NewMockInventoryRepository creates a new instance of MockInventoryRepository.
func NewMockInventoryRepository(products ProductRepository) *MockInventoryRepository {
	return &MockInventoryRepository{
		products: products,
	}
}

// ReserveStock checks every line against current stock and decrements only
// if all lines pass. The failing set is reported in full.
func (r *MockInventoryRepository) ReserveStock(lines []models.ReservationLine) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	checked := make([]*models.Product, 0, len(lines))
	var outOfStock []string
	for _, line := range lines {
		product, err := r.products.GetByID(line.ProductID)
		if err != nil {
			return err
		}
		if product.Status != models.ProductOnSale {
			return &models.ProductUnavailableError{ProductID: product.ID}
		}
		if product.Stock < line.Quantity {
			outOfStock = append(outOfStock, product.ID)
		}
		checked = append(checked, product)
	}
	if len(outOfStock) > 0 {
		return &models.OutOfStockError{ProductIDs: outOfStock}
	}

	for i, line := range lines {
		checked[i].Stock -= line.Quantity
		if err := r.products.Update(checked[i]); err != nil {
			return err
		}
	}
	return nil
}

// ReleaseStock restores the reserved quantities.
func (r *MockInventoryRepository) ReleaseStock(lines []models.ReservationLine) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, line := range lines {
		product, err := r.products.GetByID(line.ProductID)
		if err != nil {
			return err
		}
		product.Stock += line.Quantity
		if err := r.products.Update(product); err != nil {
			return err
		}
	}
	return nil
}
