package models

import (
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
)

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCanceled   OrderStatus = "canceled"
)

// orderTransitions is the allowed-transition table: state -> reachable next
// states. Built once at package load and never mutated, so it is consulted
// without synchronization. Terminal states map to an empty slice.
var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:    {OrderStatusProcessing, OrderStatusCanceled},
	OrderStatusProcessing: {OrderStatusShipped, OrderStatusCanceled},
	OrderStatusShipped:    {OrderStatusDelivered},
	OrderStatusDelivered:  {},
	OrderStatusCanceled:   {},
}

// ParseOrderStatus converts a persisted status string into an OrderStatus.
// Matching is case-insensitive; unknown values are an error so corrupted
// rows are caught instead of silently treated as terminal.
func ParseOrderStatus(s string) (OrderStatus, error) {
	status := OrderStatus(strings.ToLower(s))
	if _, ok := orderTransitions[status]; !ok {
		return "", fmt.Errorf("unknown order status %q", s)
	}
	return status, nil
}

// AllowedTransitions returns the states reachable from s, in declaration
// order. The returned slice is shared; callers must not modify it.
func (s OrderStatus) AllowedTransitions() []OrderStatus {
	return orderTransitions[s]
}

// CanTransitionTo reports whether moving from s to target is a legal edge.
func (s OrderStatus) CanTransitionTo(target OrderStatus) bool {
	for _, next := range orderTransitions[s] {
		if next == target {
			return true
		}
	}
	return false
}

// Order represents a customer order. Created once at checkout and immutable
// afterwards except for its status. Orders are never physically deleted.
type Order struct {
	ID                  string      `json:"id" gorm:"primaryKey;type:varchar(36)"`
	CustomerID          string      `json:"customer_id" gorm:"index;type:varchar(36)"`
	OrderNumber         string      `json:"order_number" gorm:"uniqueIndex;type:varchar(64)"`
	BillingAddressID    string      `json:"billing_address_id" gorm:"type:varchar(36)"`
	ShippingAddressID   string      `json:"shipping_address_id" gorm:"type:varchar(36)"`
	OrderDate           time.Time   `json:"order_date"`
	ShippingCost        float64     `json:"shipping_cost"`
	TotalBaseAmount     float64     `json:"total_base_amount"`
	TotalDiscountAmount float64     `json:"total_discount_amount"`
	TotalAmount         float64     `json:"total_amount"`
	Status              OrderStatus `json:"status" gorm:"type:varchar(20)"`
	Items               []OrderItem `json:"items" gorm:"foreignKey:OrderID"`
	gorm.Model
}

// OrderItem is an immutable snapshot of a purchased product at order time.
// Unit price and discount are frozen here and do not follow later product
// price changes.
type OrderItem struct {
	ID         string  `json:"id" gorm:"primaryKey;type:varchar(36)"`
	OrderID    string  `json:"order_id" gorm:"index;type:varchar(36)"`
	ProductID  string  `json:"product_id" gorm:"index;type:varchar(36)"`
	Quantity   int     `json:"quantity"`
	UnitPrice  float64 `json:"unit_price"`
	Discount   float64 `json:"discount"`
	TotalPrice float64 `json:"total_price"`
	gorm.Model
}
