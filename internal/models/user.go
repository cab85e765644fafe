package models

import "gorm.io/gorm"

// UserRole distinguishes customers from store administrators.
type UserRole string

const (
	UserRoleCustomer UserRole = "customer"
	UserRoleAdmin    UserRole = "admin"
)

// UserStatus marks whether an account may act at all.
type UserStatus string

const (
	UserStatusActive   UserStatus = "active"
	UserStatusInactive UserStatus = "inactive"
)

// User represents a user of the store.
type User struct {
	ID         string     `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	Username   string     `json:"username" gorm:"uniqueIndex;type:varchar(100)" validate:"required,min=3,max=100"`
	Email      string     `json:"email" gorm:"uniqueIndex;type:varchar(255)" validate:"required,email"`
	Password   string     `gorm:"type:varchar(255)" validate:"required,min=6"` // No json tag for security
	Role       UserRole   `json:"role" gorm:"type:varchar(20);default:customer"`
	Status     UserStatus `json:"status" gorm:"type:varchar(20);default:active"`
	gorm.Model            // Embed gorm.Model for CreatedAt, UpdatedAt, DeletedAt
}

// IsActiveAdmin reports whether this user may perform admin-only actions
// such as advancing an order's status.
func (u *User) IsActiveAdmin() bool {
	return u.Role == UserRoleAdmin && u.Status == UserStatusActive
}

// IsActive reports whether the account may place orders.
func (u *User) IsActive() bool {
	return u.Status == UserStatusActive
}
