package services

import (
	"fmt"

	"fluxmall/internal/models"
	"fluxmall/internal/repositories"
)

// InventoryService handles stock reservation for checkouts. It is the only
// path through which order processing touches stock.
type InventoryService struct {
	repo repositories.InventoryRepository
}

// NewInventoryService creates a new InventoryService.
func NewInventoryService(repo repositories.InventoryRepository) *InventoryService {
	return &InventoryService{
		repo: repo,
	}
}

// Reserve atomically checks and decrements stock for every line. The whole
// batch is rejected if any single line fails; on success the returned
// Reservation records what was decremented so it can be released later.
func (s *InventoryService) Reserve(lines []models.ReservationLine) (*models.Reservation, error) {
	if len(lines) == 0 {
		return nil, models.ErrEmptyOrder
	}
	for _, line := range lines {
		if line.Quantity < 1 {
			return nil, fmt.Errorf("quantity %d for product %s: %w", line.Quantity, line.ProductID, models.ErrInvalidQuantity)
		}
	}
	if err := s.repo.ReserveStock(lines); err != nil {
		return nil, err
	}
	return &models.Reservation{Lines: lines}, nil
}

// Release restores the stock of a reservation. Compensating action for a
// checkout that failed after its reservation succeeded; safe to call with a
// nil reservation.
func (s *InventoryService) Release(reservation *models.Reservation) error {
	if reservation == nil {
		return nil
	}
	return s.repo.ReleaseStock(reservation.Lines)
}
