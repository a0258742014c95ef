package handler

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"tricommerce/internal/idempotency"
	"tricommerce/internal/middleware"
	"tricommerce/internal/model"
	"tricommerce/internal/service"
)

const idempotencyHeader = "Idempotency-Key"

type OrderHandler struct {
	orderService service.OrderService
	keys         idempotency.Store
	log          *zap.Logger
}

func NewOrderHandler(s service.OrderService, keys idempotency.Store, log *zap.Logger) *OrderHandler {
	return &OrderHandler{orderService: s, keys: keys, log: log}
}

type CheckoutRequest struct {
	ShippingAddress string `json:"shipping_address"`
}

// Checkout turns the cart into an order. A repeated Idempotency-Key returns
// the order created by the first request.
// POST /api/v1/orders
func (h *OrderHandler) Checkout(c *fiber.Ctx) error {
	actor, _ := middleware.ActorFrom(c)

	var req CheckoutRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return badRequest(c, "Invalid JSON")
		}
	}

	ctx := c.UserContext()
	key := c.Get(idempotencyHeader)
	if key != "" && h.keys != nil {
		key = actor.ID.String() + ":" + key
		record, err := h.keys.Reserve(ctx, key)
		if err != nil {
			return respondError(c, err)
		}
		if record != nil {
			return c.Status(fiber.StatusOK).JSON(fiber.Map{"order_id": record.OrderID, "replayed": true})
		}
	} else {
		key = ""
	}

	orderID, err := h.orderService.PlaceOrder(ctx, actor.ID, req.ShippingAddress)
	if err != nil {
		if key != "" {
			if relErr := h.keys.Release(ctx, key); relErr != nil {
				h.log.Warn("release idempotency key", zap.String("key", key), zap.Error(relErr))
			}
		}
		return respondError(c, err)
	}
	if key != "" {
		if err := h.keys.Complete(ctx, key, orderID); err != nil {
			h.log.Error("complete idempotency key, order already placed",
				zap.String("key", key),
				zap.String("order_id", orderID.String()),
				zap.Error(err))
		}
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "Order placed", "order_id": orderID})
}

// MyOrders
// GET /api/v1/orders/mine
func (h *OrderHandler) MyOrders(c *fiber.Ctx) error {
	actor, _ := middleware.ActorFrom(c)
	orders, err := h.orderService.ListForCustomer(c.UserContext(), actor.ID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(orders)
}

// ListOrders lists order lines by status; sellers only see their own products
// GET /api/v1/orders?status=Pending
func (h *OrderHandler) ListOrders(c *fiber.Ctx) error {
	actor, _ := middleware.ActorFrom(c)

	var sellerID *uuid.UUID
	if actor.Role == model.RoleSeller {
		sellerID = &actor.ID
	}
	lines, err := h.orderService.ListByStatus(c.UserContext(), model.OrderStatus(c.Query("status")), sellerID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(lines)
}

// GetOrder
// GET /api/v1/orders/:id
func (h *OrderHandler) GetOrder(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "Invalid order ID")
	}
	actor, _ := middleware.ActorFrom(c)

	order, err := h.orderService.Get(c.UserContext(), id, actor)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"data": order, "total": order.Total()})
}

// History
// GET /api/v1/orders/:id/history
func (h *OrderHandler) History(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "Invalid order ID")
	}
	actor, _ := middleware.ActorFrom(c)

	entries, err := h.orderService.History(c.UserContext(), id, actor)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(entries)
}

// Cancel
// POST /api/v1/orders/:id/cancel
func (h *OrderHandler) Cancel(c *fiber.Ctx) error {
	return h.transition(c, h.orderService.Cancel, "Order cancelled")
}

// Ship
// POST /api/v1/orders/:id/ship
func (h *OrderHandler) Ship(c *fiber.Ctx) error {
	return h.transition(c, h.orderService.Advance, "Order shipped")
}

// Deliver
// POST /api/v1/orders/:id/deliver
func (h *OrderHandler) Deliver(c *fiber.Ctx) error {
	return h.transition(c, h.orderService.Deliver, "Order delivered")
}

func (h *OrderHandler) transition(c *fiber.Ctx, fn func(context.Context, uuid.UUID, service.Actor) error, msg string) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "Invalid order ID")
	}
	actor, _ := middleware.ActorFrom(c)

	if err := fn(c.UserContext(), id, actor); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": msg, "order_id": id})
}

// Statuses
// GET /api/v1/statuses
func (h *OrderHandler) Statuses(c *fiber.Ctx) error {
	statuses, err := h.orderService.Statuses(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(statuses)
}
