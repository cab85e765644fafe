package handlers

import (
	"fmt"

	"lapak/pkg/apperrors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// Envelope is the uniform response shape of every endpoint.
type Envelope struct {
	StatusCode int         `json:"statusCode"`
	Success    bool        `json:"success"`
	Data       interface{} `json:"data,omitempty"`
	Errors     []string    `json:"errors,omitempty"`
}

// respond writes a success envelope.
func respond(c *fiber.Ctx, status int, data interface{}) error {
	return c.Status(status).JSON(Envelope{
		StatusCode: status,
		Success:    true,
		Data:       data,
	})
}

// respondError maps a service error onto the envelope. Typed business
// errors carry their own message and status; anything untyped is reported
// generically so internals do not leak.
func respondError(c *fiber.Ctx, err error) error {
	status := apperrors.HTTPStatus(err)
	message := err.Error()
	if apperrors.KindOf(err) == apperrors.KindInternal {
		message = "an unexpected error occurred"
	}
	return c.Status(status).JSON(Envelope{
		StatusCode: status,
		Success:    false,
		Errors:     []string{message},
	})
}

// respondValidationError reports which fields failed which validation tags.
func respondValidationError(c *fiber.Ctx, err error) error {
	var messages []string
	if validationErrors, ok := err.(validator.ValidationErrors); ok {
		for _, e := range validationErrors {
			messages = append(messages, fmt.Sprintf("Field '%s' failed on the '%s' tag", e.Field(), e.Tag()))
		}
	} else {
		messages = append(messages, err.Error())
	}
	return c.Status(fiber.StatusBadRequest).JSON(Envelope{
		StatusCode: fiber.StatusBadRequest,
		Success:    false,
		Errors:     messages,
	})
}

// respondBadBody reports an unparseable request body.
func respondBadBody(c *fiber.Ctx, err error) error {
	return c.Status(fiber.StatusBadRequest).JSON(Envelope{
		StatusCode: fiber.StatusBadRequest,
		Success:    false,
		Errors:     []string{"Invalid request body: " + err.Error()},
	})
}

// currentUserID pulls the authenticated user ID stored by the JWT middleware.
func currentUserID(c *fiber.Ctx) string {
	if id, ok := c.Locals("user_id").(string); ok {
		return id
	}
	return ""
}
