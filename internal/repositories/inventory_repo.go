package repositories

import (
	"fluxmall/internal/models"
)

// InventoryRepository is the single point through which stock changes flow.
type InventoryRepository interface {
	// ReserveStock atomically checks and decrements stock for every line.
	// Either every line passes and every decrement is committed, or no stock
	// changes at all. Fails with *models.OutOfStockError (listing every
	// failing product) or *models.ProductUnavailableError.
	ReserveStock(lines []models.ReservationLine) error
	// ReleaseStock restores previously reserved stock. Compensating action
	// for a checkout that failed after its reservation succeeded.
	ReleaseStock(lines []models.ReservationLine) error
}
