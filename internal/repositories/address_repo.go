package repositories

import "lapak/internal/models"

// AddressRepository defines the interface for address data access.
type AddressRepository interface {
	GetByID(id string) (*models.Address, error)
	GetByCustomer(customerID string) ([]models.Address, error)
	Create(address *models.Address) error
	Update(address *models.Address) error
	Delete(id string) error
}
