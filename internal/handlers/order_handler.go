package handlers

import (
	"fmt"
	"log"

	"fluxmall/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// IdempotencyKeyHeader carries the client-supplied token that lets a
// double-submitted checkout return the original order instead of creating a
// duplicate.
const IdempotencyKeyHeader = "Idempotency-Key"

// OrderHandler handles HTTP requests for checkout and order history.
type OrderHandler struct {
	checkoutService *services.CheckoutService
	orderService    *services.OrderService
	validate        *validator.Validate
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(checkoutService *services.CheckoutService, orderService *services.OrderService) *OrderHandler {
	return &OrderHandler{
		checkoutService: checkoutService,
		orderService:    orderService,
		validate:        validator.New(),
	}
}

// RegisterRoutes registers the checkout and order routes with the Fiber app.
func (h *OrderHandler) RegisterRoutes(router fiber.Router) {
	router.Post("/checkout", h.HandleCheckout)
	orderRoutes := router.Group("/orders")
	orderRoutes.Get("/", h.HandleListOrders)
	orderRoutes.Get("/:id", h.HandleGetOrder)
}

// CheckoutRequest represents the request body for a checkout. Without a
// product_id the member's whole cart is checked out; with one, that single
// product is bought directly.
type CheckoutRequest struct {
	ShippingAddress string `json:"shipping_address" validate:"required,min=1,max=500"`
	ProductID       string `json:"product_id"`
	Quantity        int    `json:"quantity"`
}

// HandleCheckout converts the cart (or a direct purchase) into an order.
func (h *OrderHandler) HandleCheckout(c *fiber.Ctx) error {
	var req CheckoutRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing checkout request body: %v", err)
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

	var source services.CheckoutSource = services.CartSource{}
	if req.ProductID != "" {
		quantity := req.Quantity
		if quantity == 0 {
			quantity = 1
		}
		source = services.DirectSource{ProductID: req.ProductID, Quantity: quantity}
	}

	orderID, err := h.checkoutService.Checkout(memberIDFromCtx(c), req.ShippingAddress, source, c.Get(IdempotencyKeyHeader))
	if err != nil {
		log.Printf("Error during checkout: %v", err)
		return c.Status(statusForError(err)).JSON(fiber.Map{
			"message": "Checkout failed",
			"error":   err.Error(),
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"order_id": orderID,
	})
}

// HandleListOrders returns the member's orders, newest first.
func (h *OrderHandler) HandleListOrders(c *fiber.Ctx) error {
	orders, err := h.orderService.ListOrders(memberIDFromCtx(c))
	if err != nil {
		log.Printf("Error listing orders: %v", err)
		return c.Status(statusForError(err)).JSON(fiber.Map{
			"message": "Could not retrieve orders",
			"error":   err.Error(),
		})
	}
	return c.JSON(orders)
}

// HandleGetOrder returns one of the member's orders with its items.
func (h *OrderHandler) HandleGetOrder(c *fiber.Ctx) error {
	orderID := c.Params("id")
	order, err := h.orderService.GetOrder(memberIDFromCtx(c), orderID)
	if err != nil {
		log.Printf("Error getting order %s: %v", orderID, err)
		return c.Status(statusForError(err)).JSON(fiber.Map{
			"message": "Could not retrieve order",
			"error":   err.Error(),
		})
	}
	return c.JSON(order)
}
