package models

import "gorm.io/gorm"

// ProductStatus marks whether a product is offered for sale.
type ProductStatus string

const (
	ProductStatusActive   ProductStatus = "active"
	ProductStatusInactive ProductStatus = "inactive"
)

// Product represents a product in the store.
type Product struct {
	ID              string        `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	Name            string        `json:"name" validate:"required,min=3,max=100"`
	Description     string        `json:"description" validate:"omitempty,max=500"`
	Price           float64       `json:"price" validate:"required,gt=0"`
	DiscountPercent float64       `json:"discount_percent" validate:"gte=0,lte=100"`
	Stock           int           `json:"stock" validate:"gte=0"`
	Status          ProductStatus `json:"status" gorm:"type:varchar(20);default:active"`
	gorm.Model                    // Embed gorm.Model for CreatedAt, UpdatedAt, DeletedAt
}

// Purchasable is the single availability predicate: a product can be bought
// only while it is active and not soft-deleted.
func (p *Product) Purchasable() bool {
	return p.Status == ProductStatusActive && !p.DeletedAt.Valid
}
