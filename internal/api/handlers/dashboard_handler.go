package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/maheshrc27/creatorhub/internal/service"
)

type DashboardHandler struct {
	s service.DashboardService
}

func NewDashboardHandler(service service.DashboardService) *DashboardHandler {
	return &DashboardHandler{s: service}
}

// GetDashboard always answers 200: unauthenticated callers get the default
// snapshot with fallback=true, everyone else the aggregated (possibly
// cached) payload.
func (h *DashboardHandler) GetDashboard(c *fiber.Ctx) error {
	userID := GetUserID(c)

	dashboard := h.s.Get(c.Context(), userID)
	return c.Status(fiber.StatusOK).JSON(dashboard)
}

// SyncDashboard forces a fresh aggregation pass, bypassing cache freshness.
func (h *DashboardHandler) SyncDashboard(c *fiber.Ctx) error {
	userID := GetUserID(c)

	dashboard := h.s.Sync(c.Context(), userID)
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"data": dashboard})
}
