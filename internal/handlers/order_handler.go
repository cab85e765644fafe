package handlers

import (
	"log"

	"lapak/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// OrderHandler handles HTTP requests for orders.
type OrderHandler struct {
	service  *services.OrderService
	validate *validator.Validate
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(service *services.OrderService) *OrderHandler {
	return &OrderHandler{
		service:  service,
		validate: validator.New(),
	}
}

// RegisterRoutes registers the customer-facing order routes.
func (h *OrderHandler) RegisterRoutes(router fiber.Router) {
	orderRoutes := router.Group("/orders")
	orderRoutes.Get("/", h.HandleGetOrders)
	orderRoutes.Get("/:id", h.HandleGetOrderByID)
	orderRoutes.Post("/", h.HandleCheckout)
	orderRoutes.Post("/direct", h.HandleDirectOrder)
}

// RegisterAdminRoutes registers the routes that require an admin token.
func (h *OrderHandler) RegisterAdminRoutes(router fiber.Router) {
	orderRoutes := router.Group("/orders")
	orderRoutes.Get("/", h.HandleGetAllOrders)
	orderRoutes.Patch("/:id/status", h.HandleUpdateOrderStatus)
}

// HandleGetOrders lists the authenticated customer's orders.
func (h *OrderHandler) HandleGetOrders(c *fiber.Ctx) error {
	orders, err := h.service.GetOrdersByCustomer(currentUserID(c))
	if err != nil {
		log.Printf("Error getting orders: %v", err)
		return respondError(c, err)
	}
	return respond(c, fiber.StatusOK, orders)
}

// HandleGetAllOrders lists every order in the store.
func (h *OrderHandler) HandleGetAllOrders(c *fiber.Ctx) error {
	orders, err := h.service.GetAllOrders()
	if err != nil {
		log.Printf("Error getting all orders: %v", err)
		return respondError(c, err)
	}
	return respond(c, fiber.StatusOK, orders)
}

// HandleGetOrderByID returns one of the customer's orders with its items.
func (h *OrderHandler) HandleGetOrderByID(c *fiber.Ctx) error {
	orderID := c.Params("id")
	order, err := h.service.GetOrderByID(currentUserID(c), orderID)
	if err != nil {
		log.Printf("Error getting order %s: %v", orderID, err)
		return respondError(c, err)
	}
	return respond(c, fiber.StatusOK, order)
}

// OrderCreateRequest is the checkout confirmation: the lines must match the
// active cart's contents exactly.
type OrderCreateRequest struct {
	BillingAddressID  string                  `json:"billing_address_id" validate:"required"`
	ShippingAddressID string                  `json:"shipping_address_id" validate:"required"`
	Lines             []services.CheckoutLine `json:"lines" validate:"required,min=1,dive"`
}

// HandleCheckout converts the customer's active cart into an order.
func (h *OrderHandler) HandleCheckout(c *fiber.Ctx) error {
	var req OrderCreateRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing checkout request body: %v", err)
		return respondBadBody(c, err)
	}
	if err := h.validate.Struct(req); err != nil {
		return respondValidationError(c, err)
	}

	order, err := h.service.CreateFromCart(currentUserID(c), req.BillingAddressID, req.ShippingAddressID, req.Lines)
	if err != nil {
		log.Printf("Error creating order from cart: %v", err)
		return respondError(c, err)
	}
	return respond(c, fiber.StatusCreated, order)
}

// DirectOrderRequest is the request body for a single-product order that
// bypasses the cart.
type DirectOrderRequest struct {
	BillingAddressID  string `json:"billing_address_id" validate:"required"`
	ShippingAddressID string `json:"shipping_address_id" validate:"required"`
	ProductID         string `json:"product_id" validate:"required"`
	Quantity          int    `json:"quantity" validate:"required,gt=0"`
}

// HandleDirectOrder creates an order for a single product without a cart.
func (h *OrderHandler) HandleDirectOrder(c *fiber.Ctx) error {
	var req DirectOrderRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing direct order request body: %v", err)
		return respondBadBody(c, err)
	}
	if err := h.validate.Struct(req); err != nil {
		return respondValidationError(c, err)
	}

	order, err := h.service.CreateDirect(currentUserID(c), req.BillingAddressID, req.ShippingAddressID, req.ProductID, req.Quantity)
	if err != nil {
		log.Printf("Error creating direct order for product %s: %v", req.ProductID, err)
		return respondError(c, err)
	}
	return respond(c, fiber.StatusCreated, order)
}

// OrderStatusChangeRequest is the admin request to advance an order's
// lifecycle.
type OrderStatusChangeRequest struct {
	Status string `json:"status" validate:"required"`
}

// HandleUpdateOrderStatus moves an order to a new lifecycle state. The
// acting admin is taken from the authenticated token.
func (h *OrderHandler) HandleUpdateOrderStatus(c *fiber.Ctx) error {
	orderID := c.Params("id")
	var req OrderStatusChangeRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing status update request body: %v", err)
		return respondBadBody(c, err)
	}
	if err := h.validate.Struct(req); err != nil {
		return respondValidationError(c, err)
	}

	message, err := h.service.UpdateOrderStatus(orderID, req.Status, currentUserID(c))
	if err != nil {
		log.Printf("Error updating status of order %s: %v", orderID, err)
		return respondError(c, err)
	}
	return respond(c, fiber.StatusOK, fiber.Map{
		"message": message,
	})
}
