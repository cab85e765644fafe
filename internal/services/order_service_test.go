package services_test

import (
	"regexp"
	"testing"

	"lapak/internal/models"
	"lapak/internal/repositories"
	"lapak/internal/services"
	"lapak/pkg/apperrors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockEventPublisher is a mock implementation of services.EventPublisher.
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(exchange, routingKey string, body []byte) error {
	args := m.Called(exchange, routingKey, body)
	return args.Error(0)
}

type orderFixture struct {
	store *repositories.MemoryStore
	cart  *services.CartService
	order *services.OrderService
}

func newOrderFixture(t *testing.T) *orderFixture {
	t.Helper()
	store := repositories.NewMemoryStore()

	users := []models.User{
		{ID: "cust-1", Username: "alice", Email: "alice@example.com", Role: models.UserRoleCustomer, Status: models.UserStatusActive},
		{ID: "cust-2", Username: "bob", Email: "bob@example.com", Role: models.UserRoleCustomer, Status: models.UserStatusActive},
		{ID: "admin-1", Username: "root", Email: "root@example.com", Role: models.UserRoleAdmin, Status: models.UserStatusActive},
		{ID: "admin-off", Username: "gone", Email: "gone@example.com", Role: models.UserRoleAdmin, Status: models.UserStatusInactive},
	}
	for i := range users {
		assert.NoError(t, store.Users().Create(&users[i]))
	}

	addresses := []models.Address{
		{ID: "addr-b", CustomerID: "cust-1", FullName: "Alice", Street: "Main 1", City: "Town", PostalCode: "1000", Country: "NL"},
		{ID: "addr-s", CustomerID: "cust-1", FullName: "Alice", Street: "Main 2", City: "Town", PostalCode: "1000", Country: "NL"},
		{ID: "addr-other", CustomerID: "cust-2", FullName: "Bob", Street: "Side 1", City: "Town", PostalCode: "2000", Country: "NL"},
	}
	for i := range addresses {
		assert.NoError(t, store.Addresses().Create(&addresses[i]))
	}

	products := []models.Product{
		{ID: "42", Name: "Gadget", Price: 10.0, DiscountPercent: 10, Stock: 10, Status: models.ProductStatusActive},
		{ID: "7", Name: "Widget", Price: 20.0, Stock: 2, Status: models.ProductStatusActive},
		{ID: "prod-off", Name: "Retired", Price: 5.0, Stock: 5, Status: models.ProductStatusInactive},
	}
	for i := range products {
		assert.NoError(t, store.Products().Create(&products[i]))
	}

	return &orderFixture{
		store: store,
		cart:  services.NewCartService(store),
		order: services.NewOrderService(store, nil, services.DefaultShippingCost),
	}
}

var orderNumberPattern = regexp.MustCompile(`^\d{2}-\d{2}-\d{2}[0-9a-f]{32}$`)

func TestCreateFromCart(t *testing.T) {
	f := newOrderFixture(t)
	assert.NoError(t, f.cart.AddLine("cust-1", "42", 3))

	order, err := f.order.CreateFromCart("cust-1", "addr-b", "addr-s",
		[]services.CheckoutLine{{ProductID: "42", Quantity: 3}})
	assert.NoError(t, err)

	// 3 * 10.00 = 30.00 base, 10% discount = 3.00, + 3.50 shipping.
	assert.InDelta(t, 30.0, order.TotalBaseAmount, 0.01)
	assert.InDelta(t, 3.0, order.TotalDiscountAmount, 0.01)
	assert.InDelta(t, 30.5, order.TotalAmount, 0.01)
	assert.Equal(t, 3.5, order.ShippingCost)
	assert.Equal(t, models.OrderStatusPending, order.Status)
	assert.Regexp(t, orderNumberPattern, order.OrderNumber)

	assert.Len(t, order.Items, 1)
	assert.Equal(t, 10.0, order.Items[0].UnitPrice)
	assert.InDelta(t, 27.0, order.Items[0].TotalPrice, 0.01)

	// Item totals plus shipping reconcile with the order total.
	var itemSum float64
	for _, item := range order.Items {
		itemSum += item.TotalPrice
	}
	assert.InDelta(t, order.TotalAmount, itemSum+order.ShippingCost, 0.01)

	// Stock decremented, cart frozen.
	product, _ := f.store.Products().GetByID("42")
	assert.Equal(t, 7, product.Stock)
	_, err = f.store.Carts().GetActiveByCustomer("cust-1")
	assert.True(t, apperrors.IsKind(err, apperrors.KindNoActiveCart))

	// Persisted order matches the returned one.
	persisted, err := f.store.Orders().GetByID(order.ID)
	assert.NoError(t, err)
	assert.Equal(t, order.OrderNumber, persisted.OrderNumber)
	assert.Len(t, persisted.Items, 1)
}

func TestCreateFromCartIsAtMostOncePerCart(t *testing.T) {
	f := newOrderFixture(t)
	assert.NoError(t, f.cart.AddLine("cust-1", "42", 1))
	lines := []services.CheckoutLine{{ProductID: "42", Quantity: 1}}

	_, err := f.order.CreateFromCart("cust-1", "addr-b", "addr-s", lines)
	assert.NoError(t, err)

	_, err = f.order.CreateFromCart("cust-1", "addr-b", "addr-s", lines)
	assert.True(t, apperrors.IsKind(err, apperrors.KindNoActiveCart))

	orders, _ := f.order.GetAllOrders()
	assert.Len(t, orders, 1)
}

func TestCreateFromCartInsufficientStockLeavesStockUntouched(t *testing.T) {
	f := newOrderFixture(t)
	assert.NoError(t, f.cart.AddLine("cust-1", "7", 2))

	// Stock shrinks between add and checkout.
	product, _ := f.store.Products().GetByID("7")
	product.Stock = 1
	assert.NoError(t, f.store.Products().Update(product))

	_, err := f.order.CreateFromCart("cust-1", "addr-b", "addr-s",
		[]services.CheckoutLine{{ProductID: "7", Quantity: 2}})
	assert.True(t, apperrors.IsKind(err, apperrors.KindInsufficientStock))

	// No stock mutation, no order, cart still open.
	product, _ = f.store.Products().GetByID("7")
	assert.Equal(t, 1, product.Stock)
	orders, _ := f.order.GetAllOrders()
	assert.Empty(t, orders)
	_, err = f.store.Carts().GetActiveByCustomer("cust-1")
	assert.NoError(t, err)
}

func TestCreateFromCartValidation(t *testing.T) {
	f := newOrderFixture(t)
	assert.NoError(t, f.cart.AddLine("cust-1", "42", 2))

	// Unknown customer.
	_, err := f.order.CreateFromCart("cust-missing", "addr-b", "addr-s",
		[]services.CheckoutLine{{ProductID: "42", Quantity: 2}})
	assert.True(t, apperrors.IsKind(err, apperrors.KindNotFound))

	// Address owned by someone else.
	_, err = f.order.CreateFromCart("cust-1", "addr-b", "addr-other",
		[]services.CheckoutLine{{ProductID: "42", Quantity: 2}})
	assert.True(t, apperrors.IsKind(err, apperrors.KindAddressMismatch))

	// Empty request.
	_, err = f.order.CreateFromCart("cust-1", "addr-b", "addr-s", nil)
	assert.True(t, apperrors.IsKind(err, apperrors.KindEmptyCart))

	// Duplicate product in the request.
	_, err = f.order.CreateFromCart("cust-1", "addr-b", "addr-s",
		[]services.CheckoutLine{{ProductID: "42", Quantity: 1}, {ProductID: "42", Quantity: 1}})
	assert.True(t, apperrors.IsKind(err, apperrors.KindDuplicateLineItem))

	// Product not in the cart.
	_, err = f.order.CreateFromCart("cust-1", "addr-b", "addr-s",
		[]services.CheckoutLine{{ProductID: "7", Quantity: 2}})
	assert.True(t, apperrors.IsKind(err, apperrors.KindLineMismatch))

	// Quantity disagrees with the cart.
	_, err = f.order.CreateFromCart("cust-1", "addr-b", "addr-s",
		[]services.CheckoutLine{{ProductID: "42", Quantity: 5}})
	assert.True(t, apperrors.IsKind(err, apperrors.KindQuantityMismatch))

	// Nothing above may have produced an order.
	orders, _ := f.order.GetAllOrders()
	assert.Empty(t, orders)
}

func TestCreateFromCartNoActiveCart(t *testing.T) {
	f := newOrderFixture(t)
	_, err := f.order.CreateFromCart("cust-1", "addr-b", "addr-s",
		[]services.CheckoutLine{{ProductID: "42", Quantity: 1}})
	assert.True(t, apperrors.IsKind(err, apperrors.KindNoActiveCart))
}

func TestCreateFromCartProductsUnavailable(t *testing.T) {
	f := newOrderFixture(t)
	assert.NoError(t, f.cart.AddLine("cust-1", "42", 1))

	// Product goes off sale after it was added to the cart.
	product, _ := f.store.Products().GetByID("42")
	product.Status = models.ProductStatusInactive
	assert.NoError(t, f.store.Products().Update(product))

	_, err := f.order.CreateFromCart("cust-1", "addr-b", "addr-s",
		[]services.CheckoutLine{{ProductID: "42", Quantity: 1}})
	assert.True(t, apperrors.IsKind(err, apperrors.KindProductsUnavailable))
	assert.Contains(t, err.Error(), "42", "the offending product must be named")
}

func TestCreateDirect(t *testing.T) {
	f := newOrderFixture(t)

	// An open cart must not be touched by a direct purchase.
	assert.NoError(t, f.cart.AddLine("cust-1", "42", 1))

	order, err := f.order.CreateDirect("cust-1", "addr-b", "addr-s", "7", 2)
	assert.NoError(t, err)
	assert.InDelta(t, 40.0, order.TotalBaseAmount, 0.01)
	assert.InDelta(t, 0.0, order.TotalDiscountAmount, 0.01)
	assert.InDelta(t, 43.5, order.TotalAmount, 0.01)
	assert.Len(t, order.Items, 1)
	assert.Equal(t, 20.0, order.Items[0].UnitPrice)

	product, _ := f.store.Products().GetByID("7")
	assert.Equal(t, 0, product.Stock)

	// Cart untouched and still active.
	cart, err := f.store.Carts().GetActiveByCustomer("cust-1")
	assert.NoError(t, err)
	assert.Len(t, cart.Lines, 1)
}

func TestCreateDirectInsufficientStock(t *testing.T) {
	f := newOrderFixture(t)

	// Product 7 has stock 2; requesting 5 must fail without an order row.
	_, err := f.order.CreateDirect("cust-1", "addr-b", "addr-s", "7", 5)
	assert.True(t, apperrors.IsKind(err, apperrors.KindInsufficientStock))

	orders, _ := f.order.GetAllOrders()
	assert.Empty(t, orders)
	product, _ := f.store.Products().GetByID("7")
	assert.Equal(t, 2, product.Stock)
}

func TestCreateDirectUnavailableAndOutOfStock(t *testing.T) {
	f := newOrderFixture(t)

	_, err := f.order.CreateDirect("cust-1", "addr-b", "addr-s", "prod-off", 1)
	assert.True(t, apperrors.IsKind(err, apperrors.KindProductsUnavailable))

	product, _ := f.store.Products().GetByID("7")
	product.Stock = 0
	assert.NoError(t, f.store.Products().Update(product))
	_, err = f.order.CreateDirect("cust-1", "addr-b", "addr-s", "7", 1)
	assert.True(t, apperrors.IsKind(err, apperrors.KindOutOfStock))
}

func TestCreateOrderPublishesEvent(t *testing.T) {
	f := newOrderFixture(t)
	events := new(MockEventPublisher)
	svc := services.NewOrderService(f.store, events, services.DefaultShippingCost)

	events.On("Publish", "order", "order.created", mock.Anything).Return(nil).Once()

	_, err := svc.CreateDirect("cust-1", "addr-b", "addr-s", "7", 1)
	assert.NoError(t, err)
	events.AssertExpectations(t)
}

func TestUpdateOrderStatusPublishesEvent(t *testing.T) {
	f := newOrderFixture(t)
	order := seedOrder(t, f, models.OrderStatusPending)

	events := new(MockEventPublisher)
	svc := services.NewOrderService(f.store, events, services.DefaultShippingCost)
	events.On("Publish", "order", "order.status.updated", mock.Anything).Return(nil).Once()

	_, err := svc.UpdateOrderStatus(order.ID, "processing", "admin-1")
	assert.NoError(t, err)
	events.AssertExpectations(t)

	// An idempotent same-status request must not publish.
	_, err = svc.UpdateOrderStatus(order.ID, "processing", "admin-1")
	assert.NoError(t, err)
	events.AssertNumberOfCalls(t, "Publish", 1)
}

func TestGetOrderByIDHidesOthersOrders(t *testing.T) {
	f := newOrderFixture(t)
	order, err := f.order.CreateDirect("cust-1", "addr-b", "addr-s", "7", 1)
	assert.NoError(t, err)

	got, err := f.order.GetOrderByID("cust-1", order.ID)
	assert.NoError(t, err)
	assert.Equal(t, order.ID, got.ID)

	_, err = f.order.GetOrderByID("cust-2", order.ID)
	assert.True(t, apperrors.IsKind(err, apperrors.KindNotFound))
}

// seedOrder creates an order and forces it into the given status.
func seedOrder(t *testing.T, f *orderFixture, status models.OrderStatus) *models.Order {
	t.Helper()
	order, err := f.order.CreateDirect("cust-1", "addr-b", "addr-s", "42", 1)
	assert.NoError(t, err)
	if status != models.OrderStatusPending {
		assert.NoError(t, f.store.Orders().UpdateStatus(order.ID, status))
	}
	return order
}

func TestUpdateOrderStatusTableExhaustive(t *testing.T) {
	all := []models.OrderStatus{
		models.OrderStatusPending,
		models.OrderStatusProcessing,
		models.OrderStatusShipped,
		models.OrderStatusDelivered,
		models.OrderStatusCanceled,
	}

	for _, from := range all {
		for _, to := range all {
			f := newOrderFixture(t)
			order := seedOrder(t, f, from)

			msg, err := f.order.UpdateOrderStatus(order.ID, string(to), "admin-1")
			persisted, _ := f.store.Orders().GetByID(order.ID)

			switch {
			case from == to:
				// Idempotent no-op.
				assert.NoError(t, err, "%s -> %s", from, to)
				assert.Contains(t, msg, "already")
				assert.Equal(t, from, persisted.Status)
			case from.CanTransitionTo(to):
				assert.NoError(t, err, "%s -> %s", from, to)
				assert.Contains(t, msg, string(to))
				assert.Equal(t, to, persisted.Status)
			default:
				assert.True(t, apperrors.IsKind(err, apperrors.KindInvalidTransition), "%s -> %s", from, to)
				assert.Equal(t, from, persisted.Status, "rejected transition must not write")
			}
		}
	}
}

func TestUpdateOrderStatusShippedRejectsProcessing(t *testing.T) {
	f := newOrderFixture(t)
	order := seedOrder(t, f, models.OrderStatusShipped)

	_, err := f.order.UpdateOrderStatus(order.ID, "processing", "admin-1")
	assert.True(t, apperrors.IsKind(err, apperrors.KindInvalidTransition))
	assert.Contains(t, err.Error(), "delivered", "the only allowed next state must be listed")
	assert.NotContains(t, err.Error(), "canceled")
}

func TestUpdateOrderStatusTerminalStateListsNone(t *testing.T) {
	f := newOrderFixture(t)
	order := seedOrder(t, f, models.OrderStatusDelivered)

	_, err := f.order.UpdateOrderStatus(order.ID, "pending", "admin-1")
	assert.True(t, apperrors.IsKind(err, apperrors.KindInvalidTransition))
	assert.Contains(t, err.Error(), "none")
}

func TestUpdateOrderStatusAuthorization(t *testing.T) {
	f := newOrderFixture(t)
	order := seedOrder(t, f, models.OrderStatusPending)

	// A customer, an unknown user, and an inactive admin are all rejected.
	for _, actor := range []string{"cust-1", "nobody", "admin-off"} {
		_, err := f.order.UpdateOrderStatus(order.ID, "processing", actor)
		assert.True(t, apperrors.IsKind(err, apperrors.KindForbidden), "actor %s", actor)
	}

	persisted, _ := f.store.Orders().GetByID(order.ID)
	assert.Equal(t, models.OrderStatusPending, persisted.Status)
}

func TestUpdateOrderStatusOrderNotFound(t *testing.T) {
	f := newOrderFixture(t)
	_, err := f.order.UpdateOrderStatus("order-missing", "processing", "admin-1")
	assert.True(t, apperrors.IsKind(err, apperrors.KindNotFound))
}

func TestUpdateOrderStatusCorruptedPersistedStatus(t *testing.T) {
	f := newOrderFixture(t)
	order := seedOrder(t, f, models.OrderStatusPending)
	assert.NoError(t, f.store.Orders().UpdateStatus(order.ID, models.OrderStatus("garbled")))

	_, err := f.order.UpdateOrderStatus(order.ID, "processing", "admin-1")
	assert.True(t, apperrors.IsKind(err, apperrors.KindInvalidState))
}

func TestUpdateOrderStatusUnknownRequestedStatus(t *testing.T) {
	f := newOrderFixture(t)
	order := seedOrder(t, f, models.OrderStatusPending)

	_, err := f.order.UpdateOrderStatus(order.ID, "teleported", "admin-1")
	assert.True(t, apperrors.IsKind(err, apperrors.KindInvalidTransition))
	assert.Contains(t, err.Error(), "processing")
	assert.Contains(t, err.Error(), "canceled")
}
