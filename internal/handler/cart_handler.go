package handler

import (
	"github.com/gofiber/fiber/v2"

	"tricommerce/internal/middleware"
	"tricommerce/internal/service"
)

type CartHandler struct {
	cartService service.CartService
}

func NewCartHandler(s service.CartService) *CartHandler {
	return &CartHandler{cartService: s}
}

type AddCartItemRequest struct {
	SKU      string `json:"sku" validate:"required"`
	Quantity int    `json:"quantity"`
}

type SetQuantityRequest struct {
	Quantity int `json:"quantity"`
}

// GetCart
// GET /api/v1/cart
func (h *CartHandler) GetCart(c *fiber.Ctx) error {
	actor, _ := middleware.ActorFrom(c)
	snapshot, err := h.cartService.Snapshot(c.UserContext(), actor.ID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(snapshot)
}

// AddItem adds quantity to a line, creating it when needed
// POST /api/v1/cart
func (h *CartHandler) AddItem(c *fiber.Ctx) error {
	actor, _ := middleware.ActorFrom(c)

	var req AddCartItemRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if err := h.cartService.AddItem(c.UserContext(), actor.ID, req.SKU, req.Quantity); err != nil {
		return respondError(c, err)
	}
	return h.GetCart(c)
}

// SetQuantity
// PUT /api/v1/cart/:sku
func (h *CartHandler) SetQuantity(c *fiber.Ctx) error {
	actor, _ := middleware.ActorFrom(c)

	var req SetQuantityRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid JSON")
	}
	if err := h.cartService.SetQuantity(c.UserContext(), actor.ID, c.Params("sku"), req.Quantity); err != nil {
		return respondError(c, err)
	}
	return h.GetCart(c)
}

// RemoveItem
// DELETE /api/v1/cart/:sku
func (h *CartHandler) RemoveItem(c *fiber.Ctx) error {
	actor, _ := middleware.ActorFrom(c)
	if err := h.cartService.RemoveItem(c.UserContext(), actor.ID, c.Params("sku")); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
