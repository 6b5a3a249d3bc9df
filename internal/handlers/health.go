package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/macrosdb/internal/config"
	"github.com/localnerve/macrosdb/internal/services"
	"github.com/sirupsen/logrus"
)

// HealthHandler reports database and cache reachability
type HealthHandler struct {
	Config *config.Config
	Store  *services.Store
	Cache  services.FoodCache
	Log    *logrus.Logger
}

// Health handles GET /api/health. Unhealthy responds 503 with the same body.
func (h *HealthHandler) Health(c *fiber.Ctx) error {
	result := services.HealthCheck(c.UserContext(), h.Config, h.Store.DB(), h.Cache, h.Log)
	status := fiber.StatusOK
	if result.Status != "healthy" {
		status = fiber.StatusServiceUnavailable
	}
	return c.Status(status).JSON(result)
}
