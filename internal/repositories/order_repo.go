package repositories

import (
	"lapak/internal/models"
)

// OrderRepository defines the interface for order data access.
type OrderRepository interface {
	GetAll() ([]models.Order, error)
	GetByID(id string) (*models.Order, error)
	GetByCustomer(customerID string) ([]models.Order, error)
	Create(order *models.Order) error
	// AddItems bulk-inserts the item snapshots of a newly created order.
	AddItems(items []models.OrderItem) error
	UpdateStatus(id string, status models.OrderStatus) error
	// Orders are never physically deleted; soft delete only.
}
