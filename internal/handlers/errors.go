package handlers

import (
	"errors"

	"fluxmall/internal/models"

	"github.com/gofiber/fiber/v2"
)

// statusForError maps the domain error taxonomy to HTTP statuses. Anything
// outside the taxonomy is a storage failure the client may retry.
func statusForError(err error) int {
	var outOfStock *models.OutOfStockError
	var unavailable *models.ProductUnavailableError
	switch {
	case errors.Is(err, models.ErrUnauthenticated):
		return fiber.StatusUnauthorized
	case errors.Is(err, models.ErrNotOwner), errors.Is(err, models.ErrPartialOwnership):
		return fiber.StatusForbidden
	case errors.Is(err, models.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, models.ErrInvalidQuantity),
		errors.Is(err, models.ErrEmptyCart),
		errors.Is(err, models.ErrEmptyOrder):
		return fiber.StatusBadRequest
	case errors.As(err, &outOfStock), errors.As(err, &unavailable):
		return fiber.StatusConflict
	default:
		return fiber.StatusInternalServerError
	}
}

// memberIDFromCtx returns the authenticated member id the JWT middleware
// stored on the request, or the empty string.
func memberIDFromCtx(c *fiber.Ctx) string {
	memberID, _ := c.Locals("member_id").(string)
	return memberID
}
