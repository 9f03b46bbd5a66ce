package repositories

import (
	"errors"
	"fmt"
	"sort"

	"fluxmall/internal/models"

	"gorm.io/gorm"
)

// GORMInventoryRepository is a GORM implementation of InventoryRepository.
// Check-and-decrement runs inside one transaction with the affected product
// rows locked, so concurrent reservations for the same product serialize and
// the accept/reject decision is always made against the committed stock value.
type GORMInventoryRepository struct {
	db *gorm.DB
}

// NewGORMInventoryRepository creates a new instance of GORMInventoryRepository.
func NewGORMInventoryRepository(db *gorm.DB) *GORMInventoryRepository {
	return &GORMInventoryRepository{
		db: db,
	}
}

// ReserveStock locks every product of the batch in ascending product-id order
// (so two overlapping reservations cannot deadlock), checks all lines, and
// only then decrements. A single failing line rolls back the whole batch.
func (r *GORMInventoryRepository) ReserveStock(lines []models.ReservationLine) error {
	if len(lines) == 0 {
		return nil
	}
	sorted := make([]models.ReservationLine, len(lines))
	copy(sorted, lines)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ProductID < sorted[j].ProductID })

	err := r.db.Transaction(func(tx *gorm.DB) error {
		var outOfStock []string
		for _, line := range sorted {
			var product models.Product
			err := lockForUpdate(tx).
				First(&product, "id = ?", line.ProductID).Error
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return fmt.Errorf("product %s: %w", line.ProductID, models.ErrNotFound)
				}
				return err
			}
			if product.Status != models.ProductOnSale {
				return &models.ProductUnavailableError{ProductID: product.ID}
			}
			if product.Stock < line.Quantity {
				outOfStock = append(outOfStock, product.ID)
			}
		}
		if len(outOfStock) > 0 {
			return &models.OutOfStockError{ProductIDs: outOfStock}
		}

		for _, line := range sorted {
			res := tx.Model(&models.Product{}).
				Where("id = ? AND stock >= ?", line.ProductID, line.Quantity).
				Update("stock", gorm.Expr("stock - ?", line.Quantity))
			if res.Error != nil {
				return res.Error
			}
			// Rows are still locked from the check above, so an affected
			// count of zero means the row vanished, not a stale read.
			if res.RowsAffected == 0 {
				return &models.OutOfStockError{ProductIDs: []string{line.ProductID}}
			}
		}
		return nil
	})
	if err != nil {
		var oos *models.OutOfStockError
		var unavailable *models.ProductUnavailableError
		if errors.As(err, &oos) || errors.As(err, &unavailable) || errors.Is(err, models.ErrNotFound) {
			return err
		}
		return fmt.Errorf("failed to reserve stock: %w", err)
	}
	return nil
}

// ReleaseStock adds the reserved quantities back. Used only as compensation,
// so it never fails a line on business grounds.
func (r *GORMInventoryRepository) ReleaseStock(lines []models.ReservationLine) error {
	if len(lines) == 0 {
		return nil
	}
	err := r.db.Transaction(func(tx *gorm.DB) error {
		for _, line := range lines {
			res := tx.Model(&models.Product{}).
				Where("id = ?", line.ProductID).
				Update("stock", gorm.Expr("stock + ?", line.Quantity))
			if res.Error != nil {
				return res.Error
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to release stock: %w", err)
	}
	return nil
}
