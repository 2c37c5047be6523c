package handlers

import (
	"github.com/gofiber/fiber/v3"

	"engagedash/internal/engine"
)

// ProbeHandler handles Kubernetes health probe endpoints.
type ProbeHandler struct {
	engine *engine.Engine
}

// NewProbeHandler creates a new probe handler.
func NewProbeHandler(eng *engine.Engine) *ProbeHandler {
	return &ProbeHandler{engine: eng}
}

// Liveness handles the /healthz endpoint for Kubernetes liveness probes.
// Returns 200 OK if the application is running.
func (h *ProbeHandler) Liveness(c fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status": "ok",
	})
}

// Readiness handles the /readyz endpoint for Kubernetes readiness probes.
// Returns 200 OK once the engine is loaded and its analytics store answers.
func (h *ProbeHandler) Readiness(c fiber.Ctx) error {
	if h.engine == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"status": "error",
			"error":  "engine not loaded",
		})
	}
	if err := h.engine.Analytics.Ping(c.Context()); err != nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"status": "error",
			"error":  "analytics store unavailable",
		})
	}

	return c.JSON(fiber.Map{
		"status":         "ok",
		"model":          h.engine.ModelVersion(),
		"rows":           h.engine.Rows(),
		"analytics_rows": h.engine.Analytics.Rows(),
		"loaded_at":      h.engine.LoadedAt,
	})
}
