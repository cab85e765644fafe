package models

import "gorm.io/gorm"

// Address is a customer-owned billing or shipping address.
type Address struct {
	ID         string `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	CustomerID string `json:"customer_id" gorm:"index;type:varchar(36)"`
	FullName   string `json:"full_name" validate:"required,max=100"`
	Street     string `json:"street" validate:"required,max=200"`
	City       string `json:"city" validate:"required,max=100"`
	PostalCode string `json:"postal_code" validate:"required,max=20"`
	Country    string `json:"country" validate:"required,max=100"`
	Phone      string `json:"phone" validate:"omitempty,max=30"`
	gorm.Model
}

// OwnedBy reports whether the address belongs to the given customer.
func (a *Address) OwnedBy(customerID string) bool {
	return a.CustomerID == customerID
}
