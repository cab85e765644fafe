package repositories

import (
	"lapak/internal/models"
)

// CartRepository defines the interface for cart data access.
type CartRepository interface {
	// GetActiveByCustomer returns the customer's single non-checked-out cart
	// with its lines eagerly loaded, or a NoActiveCart error if none exists.
	GetActiveByCustomer(customerID string) (*models.Cart, error)
	Create(cart *models.Cart) error
	AddLine(line *models.CartLine) error
	UpdateLine(line *models.CartLine) error
	DeleteLine(lineID string) error
	// MarkCheckedOut flips the cart's checked-out flag, guarded by a
	// checked_out = false condition so a cart can be checked out at most
	// once. Returns a Conflict error if the cart was already checked out.
	MarkCheckedOut(cartID string) error
}
