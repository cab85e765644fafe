package handlers

import (
	"log"

	"lapak/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// CartHandler handles HTTP requests for the customer's cart.
type CartHandler struct {
	service  *services.CartService
	validate *validator.Validate
}

// NewCartHandler creates a new CartHandler.
func NewCartHandler(service *services.CartService) *CartHandler {
	return &CartHandler{
		service:  service,
		validate: validator.New(),
	}
}

// RegisterRoutes registers the cart routes with the Fiber app.
func (h *CartHandler) RegisterRoutes(router fiber.Router) {
	cartRoutes := router.Group("/cart")
	cartRoutes.Get("/", h.HandleGetCart)
	cartRoutes.Post("/items", h.HandleAddItem)
	cartRoutes.Put("/items", h.HandleUpdateItem)
	cartRoutes.Delete("/items/:lineId", h.HandleRemoveItem)
}

// HandleGetCart returns the authenticated customer's open cart with totals.
func (h *CartHandler) HandleGetCart(c *fiber.Ctx) error {
	cart, err := h.service.GetActiveCart(currentUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return respond(c, fiber.StatusOK, cart)
}

// AddToCartRequest is the request body for adding a product to the cart.
type AddToCartRequest struct {
	ProductID string `json:"product_id" validate:"required"`
	Quantity  int    `json:"quantity" validate:"required,gt=0"`
}

// HandleAddItem adds a product to the cart, merging with an existing line
// for the same product.
func (h *CartHandler) HandleAddItem(c *fiber.Ctx) error {
	var req AddToCartRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing add-to-cart request body: %v", err)
		return respondBadBody(c, err)
	}
	if err := h.validate.Struct(req); err != nil {
		return respondValidationError(c, err)
	}

	if err := h.service.AddLine(currentUserID(c), req.ProductID, req.Quantity); err != nil {
		log.Printf("Error adding product %s to cart: %v", req.ProductID, err)
		return respondError(c, err)
	}
	return respond(c, fiber.StatusCreated, fiber.Map{
		"message": "Product added to cart",
	})
}

// CartItemsUpdateRequest is the request body for changing a line's quantity.
type CartItemsUpdateRequest struct {
	CartLineID string `json:"cart_line_id" validate:"required"`
	Quantity   int    `json:"quantity" validate:"required,gt=0"`
}

// HandleUpdateItem replaces a cart line's quantity and re-prices the line
// from the product's current price.
func (h *CartHandler) HandleUpdateItem(c *fiber.Ctx) error {
	var req CartItemsUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing cart update request body: %v", err)
		return respondBadBody(c, err)
	}
	if err := h.validate.Struct(req); err != nil {
		return respondValidationError(c, err)
	}

	if err := h.service.UpdateLine(currentUserID(c), req.CartLineID, req.Quantity); err != nil {
		log.Printf("Error updating cart line %s: %v", req.CartLineID, err)
		return respondError(c, err)
	}
	return respond(c, fiber.StatusOK, fiber.Map{
		"message": "Cart line updated",
	})
}

// HandleRemoveItem deletes a line from the cart.
func (h *CartHandler) HandleRemoveItem(c *fiber.Ctx) error {
	lineID := c.Params("lineId")
	if err := h.service.RemoveLine(currentUserID(c), lineID); err != nil {
		log.Printf("Error removing cart line %s: %v", lineID, err)
		return respondError(c, err)
	}
	return respond(c, fiber.StatusOK, fiber.Map{
		"message": "Cart line removed",
	})
}
