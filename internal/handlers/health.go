package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/agrilearn/internal/config"
	"github.com/localnerve/agrilearn/internal/services"
)

// HealthHandler reports dependency reachability
type HealthHandler struct {
	*Deps
}

// Healthz handles GET /healthz
// @Summary Health check
// @Tags Health
// @Produce json
// @Success 200 {object} services.HealthCheckResult
// @Failure 503 {object} services.HealthCheckResult
// @Router /healthz [get]
func (h *HealthHandler) Healthz(c *fiber.Ctx) error {
	cfg := h.Config
	if cfg == nil {
		cfg = &config.Config{}
	}

	var pinger services.Pinger
	if h.Events != nil {
		pinger = h.Events
	}

	result := services.HealthCheck(c.UserContext(), cfg, h.DB, pinger, h.Log)
	status := fiber.StatusOK
	if result.Status != "healthy" {
		status = fiber.StatusServiceUnavailable
	}
	return c.Status(status).JSON(result)
}
