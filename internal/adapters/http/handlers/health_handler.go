package handlers

import (
	"time"

	"rezo-marketplace/internal/config"
	"rezo-marketplace/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// HealthHandler handles health check endpoints
type HealthHandler struct {
	startTime time.Time
}

// NewHealthHandler creates a new health handler
func NewHealthHandler() *HealthHandler {
	return &HealthHandler{startTime: time.Now()}
}

// Root handles the root endpoint
func (h *HealthHandler) Root(c *fiber.Ctx) error {
	return response.Success(c, "Rezo Marketplace API", fiber.Map{
		"version": "1.0.0",
		"docs":    "/swagger/index.html",
	})
}

// HealthCheck reports API and database health
// @Summary Health check
// @Description Check API and database health
// @Tags Health
// @Accept json
// @Produce json
// @Success 200 {object} response.Response
// @Router /health [get]
func (h *HealthHandler) HealthCheck(c *fiber.Ctx) error {
	dbStatus := "up"
	if err := config.HealthCheck(); err != nil {
		dbStatus = "down"
	}

	return response.Success(c, "Health check", fiber.Map{
		"status":   "ok",
		"database": dbStatus,
		"uptime":   time.Since(h.startTime).String(),
		"mode":     config.AppConfig.AppMode,
	})
}
