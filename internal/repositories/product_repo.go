package repositories

import (
	"lapak/internal/models"
)

// ProductRepository defines the interface for product data access.
type ProductRepository interface {
	GetAll() ([]models.Product, error)
	GetByID(id string) (*models.Product, error)
	// GetByIDs returns the products whose IDs appear in ids. Soft-deleted
	// products are not returned; callers treat a missing ID as unavailable.
	GetByIDs(ids []string) ([]models.Product, error)
	Create(product *models.Product) error
	Update(product *models.Product) error
	Delete(id string) error
	// DecrementStock subtracts qty from the product's stock with a
	// stock >= qty guard inside the write itself, so concurrent checkouts
	// against the same product serialize instead of racing below zero.
	// Returns an InsufficientStock error when the guard fails.
	DecrementStock(id string, qty int) error
}
