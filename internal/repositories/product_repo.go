package repositories

import (
	"fluxmall/internal/models"
)

// ProductRepository defines the interface for product catalog access.
// Stock is read here but only mutated through InventoryRepository.
type ProductRepository interface {
	GetAll() ([]models.Product, error)
	GetByID(id string) (*models.Product, error)
	Create(product *models.Product) error
	Update(product *models.Product) error
	Delete(id string) error
}
