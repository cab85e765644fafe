package services

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log"
	"math"
	"strings"
	"time"

	"lapak/internal/models"
	"lapak/internal/repositories"
	"lapak/pkg/apperrors"

	"github.com/google/uuid"
)

// DefaultShippingCost is the flat shipping fee applied to every order.
const DefaultShippingCost = 3.50

// EventPublisher is the messaging surface the order service needs. The
// RabbitMQ client satisfies it; tests pass a mock or nil.
type EventPublisher interface {
	Publish(exchange, routingKey string, body []byte) error
}

// CheckoutLine is one line of an order request. At checkout it confirms the
// cart's current state rather than specifying new contents.
type CheckoutLine struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

// OrderService handles business logic related to orders: creating them from
// a cart or a direct purchase, and moving them through their lifecycle.
type OrderService struct {
	store        repositories.Store
	events       EventPublisher
	shippingCost float64
}

// NewOrderService creates a new OrderService. events may be nil, in which
// case no messages are published.
func NewOrderService(store repositories.Store, events EventPublisher, shippingCost float64) *OrderService {
	return &OrderService{
		store:        store,
		events:       events,
		shippingCost: shippingCost,
	}
}

// GetAllOrders retrieves every order. Admin surface.
func (s *OrderService) GetAllOrders() ([]models.Order, error) {
	return s.store.Orders().GetAll()
}

// GetOrdersByCustomer retrieves a customer's own orders.
func (s *OrderService) GetOrdersByCustomer(customerID string) ([]models.Order, error) {
	return s.store.Orders().GetByCustomer(customerID)
}

// GetOrderByID retrieves one order with its items. An order belonging to a
// different customer is reported as not found, not as forbidden.
func (s *OrderService) GetOrderByID(customerID, orderID string) (*models.Order, error) {
	order, err := s.store.Orders().GetByID(orderID)
	if err != nil {
		return nil, err
	}
	if order.CustomerID != customerID {
		return nil, apperrors.New(apperrors.KindNotFound, "order with ID %s not found", orderID)
	}
	return order, nil
}

// CreateFromCart converts the customer's open cart into an order. The
// requested lines must confirm the cart's current contents exactly. On
// success the cart is frozen, product stocks are decremented, and the order
// with its item snapshots is persisted, all in one atomic unit of work.
func (s *OrderService) CreateFromCart(customerID, billingAddressID, shippingAddressID string, lines []CheckoutLine) (*models.Order, error) {
	if err := s.verifyCustomerAndAddresses(customerID, billingAddressID, shippingAddressID); err != nil {
		return nil, err
	}

	if len(lines) == 0 {
		return nil, apperrors.New(apperrors.KindEmptyCart, "order request contains no lines")
	}
	requested := make(map[string]int, len(lines))
	for _, line := range lines {
		if _, dup := requested[line.ProductID]; dup {
			return nil, apperrors.New(apperrors.KindDuplicateLineItem,
				"product %s appears more than once in the order request", line.ProductID)
		}
		requested[line.ProductID] = line.Quantity
	}

	cart, err := s.store.Carts().GetActiveByCustomer(customerID)
	if err != nil {
		return nil, err
	}
	if len(cart.Lines) == 0 {
		return nil, apperrors.New(apperrors.KindEmptyCart, "cart %s is empty", cart.ID)
	}

	// Reconciliation: the request must match the cart line for line.
	if len(lines) != len(cart.Lines) {
		return nil, apperrors.New(apperrors.KindLineMismatch,
			"order request has %d lines but the cart has %d", len(lines), len(cart.Lines))
	}
	for productID, qty := range requested {
		cartLine := cart.LineFor(productID)
		if cartLine == nil {
			return nil, apperrors.New(apperrors.KindLineMismatch,
				"product %s is not in the cart", productID)
		}
		if qty != cartLine.Quantity {
			return nil, apperrors.New(apperrors.KindQuantityMismatch,
				"quantity %d for product %s does not match cart quantity %d",
				qty, productID, cartLine.Quantity)
		}
	}

	products, err := s.loadCartProducts(cart)
	if err != nil {
		return nil, err
	}
	if err := checkStock(cart, products); err != nil {
		return nil, err
	}

	order, err := s.newOrder(customerID, billingAddressID, shippingAddressID)
	if err != nil {
		return nil, err
	}
	var items []models.OrderItem
	var totalBase, totalDiscount float64
	for _, line := range cart.Lines {
		product := products[line.ProductID]
		item := snapshotItem(order.ID, &product, line.Quantity)
		totalBase += product.Price * float64(line.Quantity)
		totalDiscount += item.Discount
		items = append(items, item)
	}
	s.fillTotals(order, totalBase, totalDiscount)

	uow := repositories.NewUnitOfWork()
	uow.Add("create order", func(tx repositories.Store) error {
		return tx.Orders().Create(order)
	})
	uow.Add("create order items", func(tx repositories.Store) error {
		return tx.Orders().AddItems(items)
	})
	for _, line := range cart.Lines {
		uow.Add(fmt.Sprintf("decrement stock of product %s", line.ProductID), func(tx repositories.Store) error {
			return tx.Products().DecrementStock(line.ProductID, line.Quantity)
		})
	}
	uow.Add("mark cart checked out", func(tx repositories.Store) error {
		return tx.Carts().MarkCheckedOut(cart.ID)
	})
	if err := uow.Commit(s.store); err != nil {
		return nil, err
	}

	order.Items = items
	s.publishOrderCreated(order)
	return order, nil
}

// CreateDirect creates an order for a single product without touching any
// cart. Validation, pricing, and stock decrement follow the same rules as a
// cart checkout.
func (s *OrderService) CreateDirect(customerID, billingAddressID, shippingAddressID, productID string, quantity int) (*models.Order, error) {
	if quantity <= 0 {
		return nil, apperrors.New(apperrors.KindInvalidInput, "quantity must be greater than zero")
	}
	if err := s.verifyCustomerAndAddresses(customerID, billingAddressID, shippingAddressID); err != nil {
		return nil, err
	}

	product, err := s.store.Products().GetByID(productID)
	if err != nil {
		return nil, err
	}
	if !product.Purchasable() {
		return nil, apperrors.New(apperrors.KindProductsUnavailable,
			"product %s is not available for purchase", product.ID)
	}
	if product.Stock == 0 {
		return nil, apperrors.New(apperrors.KindOutOfStock, "product %s is out of stock", product.ID)
	}
	if quantity > product.Stock {
		return nil, apperrors.New(apperrors.KindInsufficientStock,
			"insufficient stock for product %s (requested: %d, available: %d)",
			product.ID, quantity, product.Stock)
	}

	order, err := s.newOrder(customerID, billingAddressID, shippingAddressID)
	if err != nil {
		return nil, err
	}
	item := snapshotItem(order.ID, product, quantity)
	items := []models.OrderItem{item}
	s.fillTotals(order, product.Price*float64(quantity), item.Discount)

	uow := repositories.NewUnitOfWork()
	uow.Add("create order", func(tx repositories.Store) error {
		return tx.Orders().Create(order)
	})
	uow.Add("create order items", func(tx repositories.Store) error {
		return tx.Orders().AddItems(items)
	})
	uow.Add(fmt.Sprintf("decrement stock of product %s", productID), func(tx repositories.Store) error {
		return tx.Products().DecrementStock(productID, quantity)
	})
	if err := uow.Commit(s.store); err != nil {
		return nil, err
	}

	order.Items = items
	s.publishOrderCreated(order)
	return order, nil
}

// UpdateOrderStatus moves an order along the lifecycle graph. Only an
// active admin may do this. Requesting the current status is an idempotent
// no-op; anything outside the allowed-transition set is rejected with the
// legal next states named in the error.
func (s *OrderService) UpdateOrderStatus(orderID, requestedStatus, adminID string) (string, error) {
	admin, err := s.store.Users().GetByID(adminID)
	if err != nil || !admin.IsActiveAdmin() {
		return "", apperrors.New(apperrors.KindForbidden,
			"only an active admin may change order status")
	}

	order, err := s.store.Orders().GetByID(orderID)
	if err != nil {
		return "", err
	}

	current, err := models.ParseOrderStatus(string(order.Status))
	if err != nil {
		return "", apperrors.Wrap(apperrors.KindInvalidState, err,
			"order %s has an unrecognized persisted status", orderID)
	}
	target, err := models.ParseOrderStatus(requestedStatus)
	if err != nil {
		return "", apperrors.New(apperrors.KindInvalidTransition,
			"unknown status %q; allowed next states: %s",
			requestedStatus, formatStatuses(current.AllowedTransitions()))
	}

	if target == current {
		return fmt.Sprintf("order %s is already %s", orderID, current), nil
	}
	if !current.CanTransitionTo(target) {
		return "", apperrors.New(apperrors.KindInvalidTransition,
			"cannot move order %s from %s to %s; allowed next states: %s",
			orderID, current, target, formatStatuses(current.AllowedTransitions()))
	}

	if err := s.store.Orders().UpdateStatus(orderID, target); err != nil {
		return "", err
	}
	s.publishStatusUpdated(orderID, current, target)
	return fmt.Sprintf("order %s status updated to %s", orderID, target), nil
}

// verifyCustomerAndAddresses runs the shared pre-checks of both creation
// modes: the customer exists and is active, and both addresses exist and
// belong to that customer.
func (s *OrderService) verifyCustomerAndAddresses(customerID, billingAddressID, shippingAddressID string) error {
	customer, err := s.store.Users().GetByID(customerID)
	if err != nil {
		return err
	}
	if !customer.IsActive() {
		return apperrors.New(apperrors.KindForbidden, "customer account %s is inactive", customerID)
	}
	for _, addressID := range []string{billingAddressID, shippingAddressID} {
		address, err := s.store.Addresses().GetByID(addressID)
		if err != nil {
			return err
		}
		if !address.OwnedBy(customerID) {
			return apperrors.New(apperrors.KindAddressMismatch,
				"address %s does not belong to customer %s", addressID, customerID)
		}
	}
	return nil
}

// loadCartProducts resolves every product referenced by the cart and fails
// with the offending IDs if any is missing, soft-deleted, or inactive.
func (s *OrderService) loadCartProducts(cart *models.Cart) (map[string]models.Product, error) {
	ids := make([]string, 0, len(cart.Lines))
	for _, line := range cart.Lines {
		ids = append(ids, line.ProductID)
	}
	products, err := s.store.Products().GetByIDs(ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]models.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	var unavailable []string
	for _, line := range cart.Lines {
		p, ok := byID[line.ProductID]
		if !ok || !p.Purchasable() {
			unavailable = append(unavailable, line.ProductID)
		}
	}
	if len(unavailable) > 0 {
		return nil, apperrors.New(apperrors.KindProductsUnavailable,
			"products unavailable: %s", strings.Join(unavailable, ", "))
	}
	return byID, nil
}

// checkStock verifies every cart line against current stock before any
// mutation is attempted. The conditional decrement inside the unit of work
// re-checks under the transaction, so concurrent checkouts cannot race a
// product below zero even if this pre-check passed on stale data.
func checkStock(cart *models.Cart, products map[string]models.Product) error {
	for _, line := range cart.Lines {
		p := products[line.ProductID]
		if line.Quantity > p.Stock {
			return apperrors.New(apperrors.KindInsufficientStock,
				"insufficient stock for product %s (requested: %d, available: %d)",
				p.ID, line.Quantity, p.Stock)
		}
	}
	return nil
}

// newOrder creates the order shell: identity, order number, addresses,
// date, shipping cost, and the initial pending status.
func (s *OrderService) newOrder(customerID, billingAddressID, shippingAddressID string) (*models.Order, error) {
	now := time.Now()
	number, err := newOrderNumber(now)
	if err != nil {
		return nil, err
	}
	return &models.Order{
		ID:                uuid.New().String(),
		CustomerID:        customerID,
		OrderNumber:       number,
		BillingAddressID:  billingAddressID,
		ShippingAddressID: shippingAddressID,
		OrderDate:         now,
		ShippingCost:      s.shippingCost,
		Status:            models.OrderStatusPending,
	}, nil
}

// fillTotals sets the order's monetary fields. Per-line amounts keep full
// precision; rounding to 2 decimals happens only here.
func (s *OrderService) fillTotals(order *models.Order, totalBase, totalDiscount float64) {
	order.TotalBaseAmount = round2(totalBase)
	order.TotalDiscountAmount = round2(totalDiscount)
	order.TotalAmount = round2(totalBase - totalDiscount + s.shippingCost)
}

// snapshotItem freezes a product's price and discount into an order item.
// Later product price changes do not touch existing orders.
func snapshotItem(orderID string, p *models.Product, quantity int) models.OrderItem {
	base := p.Price * float64(quantity)
	discount := base * p.DiscountPercent / 100
	return models.OrderItem{
		ID:         uuid.New().String(),
		OrderID:    orderID,
		ProductID:  p.ID,
		Quantity:   quantity,
		UnitPrice:  p.Price,
		Discount:   discount,
		TotalPrice: base - discount,
	}
}

// newOrderNumber builds the human-readable order number: the order date as
// YY-MM-DD followed by a random 32-hex-character token.
func newOrderNumber(t time.Time) (string, error) {
	token := make([]byte, 16)
	if _, err := rand.Read(token); err != nil {
		return "", fmt.Errorf("failed to generate order number token: %w", err)
	}
	return t.Format("06-01-02") + hex.EncodeToString(token), nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// formatStatuses renders an allowed-transition set for error messages.
func formatStatuses(statuses []models.OrderStatus) string {
	if len(statuses) == 0 {
		return "none"
	}
	names := make([]string, len(statuses))
	for i, s := range statuses {
		names[i] = string(s)
	}
	return strings.Join(names, ", ")
}

func (s *OrderService) publishOrderCreated(order *models.Order) {
	s.publishEvent("order.created", map[string]interface{}{
		"orderID":     order.ID,
		"orderNumber": order.OrderNumber,
		"customerID":  order.CustomerID,
		"status":      order.Status,
		"total":       order.TotalAmount,
	})
}

func (s *OrderService) publishStatusUpdated(orderID string, from, to models.OrderStatus) {
	s.publishEvent("order.status.updated", map[string]interface{}{
		"orderID": orderID,
		"from":    from,
		"to":      to,
	})
}

// publishEvent sends a domain event to the broker. Publishing is best
// effort: a broker outage must not fail an already-committed order.
func (s *OrderService) publishEvent(routingKey string, payload map[string]interface{}) {
	if s.events == nil {
		return
	}
	body, err := json.Marshal(payload)
	if err != nil {
		log.Printf("Failed to marshal %s event: %v", routingKey, err)
		return
	}
	if err := s.events.Publish("order", routingKey, body); err != nil {
		log.Printf("Warning: failed to publish %s event: %v", routingKey, err)
	}
}
