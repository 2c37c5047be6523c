package api

import (
	"github.com/gofiber/fiber/v3"

	"engagedash/internal/engine"
)

const maxHashtags = 100

// AnalyticsHandler serves the descriptive aggregates behind the charts.
type AnalyticsHandler struct {
	engine *engine.Engine
}

// NewAnalyticsHandler creates a new analytics handler.
func NewAnalyticsHandler(eng *engine.Engine) *AnalyticsHandler {
	return &AnalyticsHandler{engine: eng}
}

// Platforms returns the engagement-rate distribution per platform.
func (h *AnalyticsHandler) Platforms(c fiber.Ctx) error {
	stats, err := h.engine.Analytics.PlatformDistribution(c.Context())
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "failed to compute platform distribution")
	}
	return jsonSuccess(c, stats)
}

// Days returns mean engagement rate per weekday, Monday first.
func (h *AnalyticsHandler) Days(c fiber.Ctx) error {
	days, err := h.engine.Analytics.DayOfWeekMeans(c.Context())
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "failed to compute weekday means")
	}
	return jsonSuccess(c, days)
}

// Hours returns mean engagement rate per posting hour.
func (h *AnalyticsHandler) Hours(c fiber.Ctx) error {
	hours, err := h.engine.Analytics.HourMeans(c.Context())
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "failed to compute hourly means")
	}
	return jsonSuccess(c, hours)
}

// Hashtags returns the most used hashtags. ?limit=n, default 10, at most 100.
func (h *AnalyticsHandler) Hashtags(c fiber.Ctx) error {
	limit, err := queryInt(c, "limit", 10)
	if err != nil || limit <= 0 || limit > maxHashtags {
		return jsonError(c, fiber.StatusBadRequest, "limit must be between 1 and 100")
	}
	tags, err := h.engine.Analytics.TopHashtags(c.Context(), limit)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "failed to count hashtags")
	}
	return jsonSuccess(c, tags)
}
