// Package api serves the JSON API under /api/v1.
package api

import (
	"errors"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v3"

	"engagedash/internal/engine"
	"engagedash/internal/logging"
	"engagedash/internal/metrics"
	"engagedash/internal/model"
	"engagedash/internal/models"
	"engagedash/internal/validation"
)

// PredictHandler handles single-row predictions via JSON API.
type PredictHandler struct {
	engine *engine.Engine
}

// NewPredictHandler creates a new API predict handler.
func NewPredictHandler(eng *engine.Engine) *PredictHandler {
	return &PredictHandler{engine: eng}
}

// Predict reconciles the posted attributes against the feature schema and
// returns the predicted engagement rate.
func (h *PredictHandler) Predict(c fiber.Ctx) error {
	var form models.PredictionForm
	if err := json.Unmarshal(c.Body(), &form); err != nil {
		metrics.RecordPrediction("api", 0, err)
		return jsonError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if err := validation.ValidateStruct(&form); err != nil {
		metrics.RecordPrediction("api", 0, err)
		return jsonError(c, fiber.StatusBadRequest, err.Error())
	}

	prediction, err := h.engine.Predict(form)
	metrics.RecordPrediction("api", prediction.EngagementRate, err)
	if err != nil {
		if errors.Is(err, model.ErrSchemaMismatch) {
			logging.Error().Err(err).Msg("prediction input does not match the model schema")
		} else {
			logging.Error().Err(err).Msg("prediction failed")
		}
		return jsonError(c, fiber.StatusInternalServerError, "prediction failed")
	}

	return jsonSuccess(c, prediction)
}
