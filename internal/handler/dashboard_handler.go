package handler

import (
	"github.com/gofiber/fiber/v2"

	"tricommerce/internal/middleware"
	"tricommerce/internal/service"
)

type DashboardHandler struct {
	service service.DashboardService
}

func NewDashboardHandler(s service.DashboardService) *DashboardHandler {
	return &DashboardHandler{service: s}
}

// GetSellerStats returns the seller's overview statistics
// GET /api/v1/seller/dashboard
func (h *DashboardHandler) GetSellerStats(c *fiber.Ctx) error {
	actor, _ := middleware.ActorFrom(c)
	stats, err := h.service.SellerStats(c.UserContext(), actor.ID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(stats)
}
