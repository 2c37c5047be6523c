package api

import (
	"github.com/gofiber/fiber/v3"

	"engagedash/internal/engine"
)

// InsightsHandler exposes what the model has learned and how well it fits.
type InsightsHandler struct {
	engine *engine.Engine
}

// NewInsightsHandler creates a new insights handler.
func NewInsightsHandler(eng *engine.Engine) *InsightsHandler {
	return &InsightsHandler{engine: eng}
}

// Importances returns ranked feature importances. ?limit=n keeps the top n.
func (h *InsightsHandler) Importances(c fiber.Ctx) error {
	limit, err := queryInt(c, "limit", 0)
	if err != nil || limit < 0 {
		return jsonError(c, fiber.StatusBadRequest, "limit must not be negative")
	}
	return jsonSuccess(c, h.engine.Importances(limit))
}

// Performance returns RMSE and R² of the batch predictions. The per-row
// points are included only with ?points=true.
func (h *InsightsHandler) Performance(c fiber.Ctx) error {
	perf := h.engine.Performance
	if c.Query("points") != "true" {
		perf.Points = nil
	}
	return jsonSuccess(c, fiber.Map{
		"performance":   perf,
		"excluded_rows": h.engine.Excluded(),
		"model_version": h.engine.ModelVersion(),
	})
}

// Schema returns the frozen feature schema with each categorical's reference
// level spelled out.
func (h *InsightsHandler) Schema(c fiber.Ctx) error {
	schema := h.engine.Schema()
	references := make(map[string]string, len(schema.Categoricals))
	for _, cat := range schema.Categoricals {
		references[cat.Column] = cat.Reference()
	}
	return jsonSuccess(c, fiber.Map{
		"schema":     schema,
		"references": references,
		"inferred":   h.engine.SchemaInferred,
	})
}
