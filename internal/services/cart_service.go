package services

import (
	"lapak/internal/models"
	"lapak/internal/repositories"
	"lapak/pkg/apperrors"
)

// CartService handles business logic for a customer's open cart.
type CartService struct {
	store repositories.Store
}

// NewCartService creates a new CartService.
func NewCartService(store repositories.Store) *CartService {
	return &CartService{
		store: store,
	}
}

// CartView is the read model returned for an active cart: the lines plus
// the cart-level monetary totals.
type CartView struct {
	CartID        string            `json:"cart_id"`
	Lines         []models.CartLine `json:"lines"`
	TotalBase     float64           `json:"total_base"`
	TotalDiscount float64           `json:"total_discount"`
	TotalAmount   float64           `json:"total_amount"`
}

// GetActiveCart returns the customer's open cart with computed totals.
// A missing cart and an open-but-empty cart are distinct failures so the
// caller can tell them apart.
func (s *CartService) GetActiveCart(customerID string) (*CartView, error) {
	cart, err := s.store.Carts().GetActiveByCustomer(customerID)
	if err != nil {
		return nil, err
	}
	if len(cart.Lines) == 0 {
		return nil, apperrors.New(apperrors.KindEmptyCart, "cart %s is empty", cart.ID)
	}

	view := &CartView{
		CartID: cart.ID,
		Lines:  cart.Lines,
	}
	for _, line := range cart.Lines {
		view.TotalBase += line.UnitPrice * float64(line.Quantity)
		view.TotalDiscount += line.Discount
		view.TotalAmount += line.TotalPrice
	}
	return view, nil
}

// AddLine puts quantity units of a product into the customer's open cart,
// creating the cart if necessary. Adding a product that is already in the
// cart merges by summing quantities into the existing line; the merged
// quantity is re-validated against stock and the line is re-priced from the
// product's current price and discount.
func (s *CartService) AddLine(customerID, productID string, quantity int) error {
	if quantity <= 0 {
		return apperrors.New(apperrors.KindInvalidInput, "quantity must be greater than zero")
	}

	return s.store.Transaction(func(tx repositories.Store) error {
		product, err := tx.Products().GetByID(productID)
		if err != nil {
			return err
		}
		if !product.Purchasable() {
			return apperrors.New(apperrors.KindProductsUnavailable,
				"product %s is not available for purchase", product.ID)
		}
		if product.Stock == 0 {
			return apperrors.New(apperrors.KindOutOfStock, "product %s is out of stock", product.ID)
		}
		if quantity > product.Stock {
			return apperrors.New(apperrors.KindInsufficientStock,
				"insufficient stock for product %s (requested: %d, available: %d)",
				product.ID, quantity, product.Stock)
		}

		cart, err := tx.Carts().GetActiveByCustomer(customerID)
		if apperrors.IsKind(err, apperrors.KindNoActiveCart) {
			cart = &models.Cart{CustomerID: customerID}
			if err := tx.Carts().Create(cart); err != nil {
				return err
			}
		} else if err != nil {
			return err
		}

		if existing := cart.LineFor(productID); existing != nil {
			merged := existing.Quantity + quantity
			if merged > product.Stock {
				return apperrors.New(apperrors.KindInsufficientStock,
					"insufficient stock for product %s (requested: %d, available: %d)",
					product.ID, merged, product.Stock)
			}
			existing.Quantity = merged
			existing.Reprice(product)
			return tx.Carts().UpdateLine(existing)
		}

		line := &models.CartLine{
			CartID:    cart.ID,
			ProductID: productID,
			Quantity:  quantity,
		}
		line.Reprice(product)
		return tx.Carts().AddLine(line)
	})
}

// UpdateLine replaces a cart line's quantity. The unit price is re-derived
// from the product's current price, not the price captured when the line
// was added; carts track today's prices until checkout freezes them.
func (s *CartService) UpdateLine(customerID, lineID string, quantity int) error {
	if quantity <= 0 {
		return apperrors.New(apperrors.KindInvalidInput, "quantity must be greater than zero")
	}

	line, err := s.ownedLine(customerID, lineID)
	if err != nil {
		return err
	}
	product, err := s.store.Products().GetByID(line.ProductID)
	if err != nil {
		return err
	}
	if quantity > product.Stock {
		return apperrors.New(apperrors.KindInsufficientStock,
			"insufficient stock for product %s (requested: %d, available: %d)",
			product.ID, quantity, product.Stock)
	}

	line.Quantity = quantity
	line.Reprice(product)
	return s.store.Carts().UpdateLine(line)
}

// RemoveLine deletes a line from the customer's open cart. The cart itself
// survives even when its last line is removed.
func (s *CartService) RemoveLine(customerID, lineID string) error {
	line, err := s.ownedLine(customerID, lineID)
	if err != nil {
		return err
	}
	return s.store.Carts().DeleteLine(line.ID)
}

// ownedLine resolves a line ID against the customer's active cart. A line
// in someone else's cart, in a checked-out cart, or absent entirely all
// look the same to the caller: not found.
func (s *CartService) ownedLine(customerID, lineID string) (*models.CartLine, error) {
	cart, err := s.store.Carts().GetActiveByCustomer(customerID)
	if err != nil {
		if apperrors.IsKind(err, apperrors.KindNoActiveCart) {
			return nil, apperrors.New(apperrors.KindNotFound, "cart line with ID %s not found", lineID)
		}
		return nil, err
	}
	line := cart.LineByID(lineID)
	if line == nil {
		return nil, apperrors.New(apperrors.KindNotFound, "cart line with ID %s not found", lineID)
	}
	return line, nil
}
