package models

import "gorm.io/gorm"

// Cart is a customer's open shopping cart. A customer has at most one cart
// with CheckedOut == false at any time; checkout sets the flag exactly once
// and it is never reverted.
type Cart struct {
	ID         string     `json:"id" gorm:"primaryKey;type:varchar(36)"`
	CustomerID string     `json:"customer_id" gorm:"index;type:varchar(36)"`
	CheckedOut bool       `json:"checked_out" gorm:"index"`
	Lines      []CartLine `json:"lines" gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE"`
	gorm.Model
}

// CartLine is one product entry within a cart.
type CartLine struct {
	ID         string  `json:"id" gorm:"primaryKey;type:varchar(36)"`
	CartID     string  `json:"cart_id" gorm:"index;type:varchar(36)"`
	ProductID  string  `json:"product_id" gorm:"index;type:varchar(36)"`
	Quantity   int     `json:"quantity"`
	UnitPrice  float64 `json:"unit_price"`
	Discount   float64 `json:"discount"`
	TotalPrice float64 `json:"total_price"`
	gorm.Model
}

// Reprice recomputes the line's monetary fields from the product's current
// price and discount percentage. Called whenever the quantity changes.
func (l *CartLine) Reprice(p *Product) {
	l.UnitPrice = p.Price
	base := p.Price * float64(l.Quantity)
	l.Discount = base * p.DiscountPercent / 100
	l.TotalPrice = base - l.Discount
}

// LineFor returns the cart line holding the given product, or nil.
func (c *Cart) LineFor(productID string) *CartLine {
	for i := range c.Lines {
		if c.Lines[i].ProductID == productID {
			return &c.Lines[i]
		}
	}
	return nil
}

// LineByID returns the cart line with the given ID, or nil.
func (c *Cart) LineByID(lineID string) *CartLine {
	for i := range c.Lines {
		if c.Lines[i].ID == lineID {
			return &c.Lines[i]
		}
	}
	return nil
}
