package handlers

import (
	"log"

	"lapak/internal/models"
	"lapak/internal/repositories"
	"lapak/pkg/apperrors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// AddressHandler handles HTTP requests for customer addresses. Addresses
// are plain CRUD; the handler talks to the repository directly.
type AddressHandler struct {
	repo     repositories.AddressRepository
	validate *validator.Validate
}

// NewAddressHandler creates a new AddressHandler.
func NewAddressHandler(repo repositories.AddressRepository) *AddressHandler {
	return &AddressHandler{
		repo:     repo,
		validate: validator.New(),
	}
}

// RegisterRoutes registers the address routes with the Fiber app.
func (h *AddressHandler) RegisterRoutes(router fiber.Router) {
	addressRoutes := router.Group("/addresses")
	addressRoutes.Get("/", h.HandleGetAddresses)
	addressRoutes.Post("/", h.HandleCreateAddress)
	addressRoutes.Put("/:id", h.HandleUpdateAddress)
	addressRoutes.Delete("/:id", h.HandleDeleteAddress)
}

// HandleGetAddresses lists the authenticated customer's addresses.
func (h *AddressHandler) HandleGetAddresses(c *fiber.Ctx) error {
	addresses, err := h.repo.GetByCustomer(currentUserID(c))
	if err != nil {
		log.Printf("Error getting addresses: %v", err)
		return respondError(c, err)
	}
	return respond(c, fiber.StatusOK, addresses)
}

// HandleCreateAddress creates an address owned by the authenticated customer.
func (h *AddressHandler) HandleCreateAddress(c *fiber.Ctx) error {
	var address models.Address
	if err := c.BodyParser(&address); err != nil {
		log.Printf("Error parsing create address request body: %v", err)
		return respondBadBody(c, err)
	}
	address.CustomerID = currentUserID(c)
	if err := h.validate.Struct(address); err != nil {
		return respondValidationError(c, err)
	}

	if err := h.repo.Create(&address); err != nil {
		log.Printf("Error creating address: %v", err)
		return respondError(c, err)
	}
	return respond(c, fiber.StatusCreated, address)
}

// HandleUpdateAddress updates one of the customer's addresses.
func (h *AddressHandler) HandleUpdateAddress(c *fiber.Ctx) error {
	existing, err := h.ownedAddress(c)
	if err != nil {
		return respondError(c, err)
	}

	var address models.Address
	if err := c.BodyParser(&address); err != nil {
		log.Printf("Error parsing update address request body: %v", err)
		return respondBadBody(c, err)
	}
	address.ID = existing.ID
	address.CustomerID = existing.CustomerID
	if err := h.validate.Struct(address); err != nil {
		return respondValidationError(c, err)
	}

	if err := h.repo.Update(&address); err != nil {
		log.Printf("Error updating address %s: %v", address.ID, err)
		return respondError(c, err)
	}
	return respond(c, fiber.StatusOK, address)
}

// HandleDeleteAddress deletes one of the customer's addresses.
func (h *AddressHandler) HandleDeleteAddress(c *fiber.Ctx) error {
	existing, err := h.ownedAddress(c)
	if err != nil {
		return respondError(c, err)
	}
	if err := h.repo.Delete(existing.ID); err != nil {
		log.Printf("Error deleting address %s: %v", existing.ID, err)
		return respondError(c, err)
	}
	return respond(c, fiber.StatusOK, fiber.Map{
		"message": "Address deleted",
	})
}

// ownedAddress loads the address in the :id param and hides other
// customers' addresses behind a not-found.
func (h *AddressHandler) ownedAddress(c *fiber.Ctx) (*models.Address, error) {
	addressID := c.Params("id")
	address, err := h.repo.GetByID(addressID)
	if err != nil {
		return nil, err
	}
	if !address.OwnedBy(currentUserID(c)) {
		return nil, apperrors.New(apperrors.KindNotFound, "address with ID %s not found", addressID)
	}
	return address, nil
}
