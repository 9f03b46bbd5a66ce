package handlers

import (
	"fmt"
	"log"

	"fluxmall/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// CartHandler handles HTTP requests for the member's cart.
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
	cartRoutes.Patch("/items/:id", h.HandleSetItemQuantity)
	cartRoutes.Delete("/items/:id", h.HandleRemoveItem)
	cartRoutes.Delete("/items", h.HandleRemoveItems)
}

// HandleGetCart returns the member's cart items joined with current product
// data, plus the display total.
func (h *CartHandler) HandleGetCart(c *fiber.Ctx) error {
	items, total, err := h.service.ListItems(memberIDFromCtx(c))
	if err != nil {
		log.Printf("Error listing cart items: %v", err)
		return c.Status(statusForError(err)).JSON(fiber.Map{
			"message": "Could not retrieve cart",
			"error":   err.Error(),
		})
	}
	return c.JSON(fiber.Map{
		"items": items,
		"total": total,
	})
}

// AddItemRequest represents the request body for adding a product to the cart.
type AddItemRequest struct {
	ProductID string `json:"product_id" validate:"required"`
	Quantity  int    `json:"quantity" validate:"required"`
}

// HandleAddItem adds a product to the cart, incrementing the existing row if
// the product is already there.
func (h *CartHandler) HandleAddItem(c *fiber.Ctx) error {
	var req AddItemRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing add item request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	if err := h.validate.Struct(req); err != nil {
		validationErrors := err.(validator.ValidationErrors)
		errorMessages := make(map[string]string)
		for _, e := range validationErrors {
			errorMessages[e.Field()] = fmt.Sprintf("Field '%s' failed on the '%s' tag", e.Field(), e.Tag())
		}
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Validation failed",
			"errors":  errorMessages,
		})
	}

	if err := h.service.AddItem(memberIDFromCtx(c), req.ProductID, req.Quantity); err != nil {
		log.Printf("Error adding product %s to cart: %v", req.ProductID, err)
		return c.Status(statusForError(err)).JSON(fiber.Map{
			"message": "Could not add item to cart",
			"error":   err.Error(),
		})
	}
	return c.JSON(fiber.Map{
		"success": true,
	})
}

// SetQuantityRequest represents the request body for setting an item quantity.
type SetQuantityRequest struct {
	Quantity int `json:"quantity"`
}

// HandleSetItemQuantity sets the absolute quantity of a cart item. A
// quantity of zero or less removes the item.
func (h *CartHandler) HandleSetItemQuantity(c *fiber.Ctx) error {
	itemID := c.Params("id")
	var req SetQuantityRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing set quantity request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	if err := h.service.SetItemQuantity(memberIDFromCtx(c), itemID, req.Quantity); err != nil {
		log.Printf("Error setting quantity of cart item %s: %v", itemID, err)
		return c.Status(statusForError(err)).JSON(fiber.Map{
			"message": "Could not update cart item",
			"error":   err.Error(),
		})
	}
	return c.JSON(fiber.Map{
		"success": true,
	})
}

// HandleRemoveItem deletes a single cart item.
func (h *CartHandler) HandleRemoveItem(c *fiber.Ctx) error {
	itemID := c.Params("id")
	if err := h.service.RemoveItem(memberIDFromCtx(c), itemID); err != nil {
		log.Printf("Error removing cart item %s: %v", itemID, err)
		return c.Status(statusForError(err)).JSON(fiber.Map{
			"message": "Could not remove cart item",
			"error":   err.Error(),
		})
	}
	return c.JSON(fiber.Map{
		"success": true,
	})
}

// RemoveItemsRequest represents the request body for bulk item removal.
type RemoveItemsRequest struct {
	IDs []string `json:"ids" validate:"required,min=1"`
}

// HandleRemoveItems deletes a batch of cart items. The batch is rejected as
// a whole if any id is not owned by the caller.
func (h *CartHandler) HandleRemoveItems(c *fiber.Ctx) error {
	var req RemoveItemsRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing remove items request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	if err := h.validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "At least one item id is required",
		})
	}

	if err := h.service.RemoveItems(memberIDFromCtx(c), req.IDs); err != nil {
		log.Printf("Error removing cart items: %v", err)
		return c.Status(statusForError(err)).JSON(fiber.Map{
			"message": "Could not remove cart items",
			"error":   err.Error(),
		})
	}
	return c.JSON(fiber.Map{
		"success": true,
	})
}
