package apperr

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
)

// Status returns the HTTP status code for err.
func Status(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, ErrInsufficientStock), errors.Is(err, ErrValidation):
		return fiber.StatusBadRequest
	case errors.Is(err, ErrUnauthorized):
		return fiber.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return fiber.StatusForbidden
	case errors.Is(err, ErrConflict):
		return fiber.StatusConflict
	default:
		return fiber.StatusInternalServerError
	}
}

// Respond writes err as a JSON error body. Unknown errors are logged and
// reported without their text.
func Respond(c *fiber.Ctx, err error) error {
	status := Status(err)
	body := fiber.Map{"message": err.Error()}

	var ve *ValidationError
	var se *InsufficientStockError
	switch {
	case errors.As(err, &ve):
		body["errors"] = ve.Fields
	case errors.As(err, &se):
		body["productId"] = se.ProductID
		body["requested"] = se.Requested
		body["available"] = se.Available
	case status == fiber.StatusInternalServerError:
		log.Errorf("%s %s: %v", c.Method(), c.Path(), err)
		body["message"] = "internal server error"
	}

	return c.Status(status).JSON(body)
}
