package repositories

import (
	"errors"
	"fmt"

	"lapak/internal/models"
	"lapak/pkg/apperrors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMCartRepository is a GORM implementation of CartRepository.
type GORMCartRepository struct {
	db *gorm.DB
}

// NewGORMCartRepository creates a new instance of GORMCartRepository.
func NewGORMCartRepository(db *gorm.DB) *GORMCartRepository {
	return &GORMCartRepository{
		db: db,
	}
}

// GetActiveByCustomer retrieves the customer's open cart with its lines.
func (r *GORMCartRepository) GetActiveByCustomer(customerID string) (*models.Cart, error) {
	var cart models.Cart
	err := r.db.Preload("Lines").
		First(&cart, "customer_id = ? AND checked_out = ?", customerID, false).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.New(apperrors.KindNoActiveCart,
				"no active cart for customer %s", customerID)
		}
		return nil, fmt.Errorf("failed to get active cart for customer %s: %w", customerID, err)
	}
	return &cart, nil
}

// Create creates a new cart in the database. The partial unique index on
// (customer_id) WHERE checked_out = false turns a racing second insert into
// a duplicate-key error, keeping the open cart unique per customer.
func (r *GORMCartRepository) Create(cart *models.Cart) error {
	if cart.ID == "" {
		cart.ID = uuid.New().String()
	}
	if err := r.db.Create(cart).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return apperrors.New(apperrors.KindConflict,
				"customer %s already has an open cart", cart.CustomerID)
		}
		return fmt.Errorf("failed to create cart: %w", err)
	}
	return nil
}

// AddLine inserts a new cart line.
func (r *GORMCartRepository) AddLine(line *models.CartLine) error {
	if line.ID == "" {
		line.ID = uuid.New().String()
	}
	if err := r.db.Create(line).Error; err != nil {
		return fmt.Errorf("failed to add cart line: %w", err)
	}
	return nil
}

// UpdateLine updates an existing cart line.
func (r *GORMCartRepository) UpdateLine(line *models.CartLine) error {
	res := r.db.Save(line)
	if res.Error != nil {
		return fmt.Errorf("failed to update cart line: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.New(apperrors.KindNotFound, "cart line with ID %s not found for update", line.ID)
	}
	return nil
}

// DeleteLine removes a cart line by its ID. The cart itself is kept even
// when its last line is removed.
func (r *GORMCartRepository) DeleteLine(lineID string) error {
	res := r.db.Unscoped().Delete(&models.CartLine{}, "id = ?", lineID)
	if res.Error != nil {
		return fmt.Errorf("failed to delete cart line: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.New(apperrors.KindNotFound, "cart line with ID %s not found for deletion", lineID)
	}
	return nil
}

// MarkCheckedOut freezes the cart. The checked_out = false condition in the
// WHERE clause makes checkout at-most-once per cart.
func (r *GORMCartRepository) MarkCheckedOut(cartID string) error {
	res := r.db.Model(&models.Cart{}).
		Where("id = ? AND checked_out = ?", cartID, false).
		Update("checked_out", true)
	if res.Error != nil {
		return fmt.Errorf("failed to mark cart %s checked out: %w", cartID, res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.New(apperrors.KindConflict, "cart %s is already checked out", cartID)
	}
	return nil
}
