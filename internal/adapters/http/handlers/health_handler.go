package handlers

import (
	"time"

	"biblio-circulate/internal/config"
	"biblio-circulate/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// HealthHandler handles health check endpoints
type HealthHandler struct {
	startedAt time.Time
}

// NewHealthHandler creates a new health handler
func NewHealthHandler() *HealthHandler {
	return &HealthHandler{startedAt: time.Now()}
}

// Root handles the root endpoint
func (h *HealthHandler) Root(c *fiber.Ctx) error {
	return response.Success(c, "biblio-circulate API", fiber.Map{
		"docs": "/swagger/index.html",
	})
}

// APIInfo returns API metadata
func (h *HealthHandler) APIInfo(c *fiber.Ctx) error {
	return response.Success(c, "biblio-circulate API v1", fiber.Map{
		"version": "1.0",
		"uptime":  time.Since(h.startedAt).String(),
	})
}

// HealthCheck returns service and database health
// @Summary Health check
// @Description Returns service and database health
// @Tags Health
// @Produce json
// @Success 200 {object} response.Response
// @Failure 503 {object} response.Response
// @Router /health [get]
func (h *HealthHandler) HealthCheck(c *fiber.Ctx) error {
	if err := config.HealthCheck(); err != nil {
		return response.Error(c, fiber.StatusServiceUnavailable, "database unreachable")
	}

	return response.Success(c, "healthy", fiber.Map{
		"uptime": time.Since(h.startedAt).String(),
	})
}
