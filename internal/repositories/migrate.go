package repositories

import (
	"fmt"

	"lapak/internal/models"

	"gorm.io/gorm"
)

// Migrate creates the schema plus the constraints AutoMigrate cannot
// express. Used by the application and the integration tests so both run
// against the same schema.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.User{},
		&models.Product{},
		&models.Address{},
		&models.Cart{},
		&models.CartLine{},
		&models.Order{},
		&models.OrderItem{},
	)
	if err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}

	// At most one open cart per customer. A partial unique index enforces
	// this in the database itself, so two concurrent first-adds cannot both
	// insert; checked-out and soft-deleted carts do not collide. SQLite and
	// Postgres both support partial indexes.
	err = db.Exec(`CREATE UNIQUE INDEX IF NOT EXISTS idx_carts_open_per_customer
		ON carts (customer_id) WHERE checked_out = false AND deleted_at IS NULL`).Error
	if err != nil {
		return fmt.Errorf("failed to create open-cart index: %w", err)
	}
	return nil
}
