package handlers

import (
	"github.com/gofiber/fiber/v3"

	"engagedash/internal/config"
	"engagedash/internal/engine"
	"engagedash/internal/logging"
	"engagedash/internal/metrics"
	"engagedash/internal/validation"
)

// PredictHandler handles the dashboard's prediction form.
type PredictHandler struct {
	engine *engine.Engine
	cfg    *config.Config
}

// NewPredictHandler creates a new predict handler.
func NewPredictHandler(eng *engine.Engine, cfg *config.Config) *PredictHandler {
	return &PredictHandler{engine: eng, cfg: cfg}
}

// Submit predicts the engagement rate of the submitted post. HTMX requests
// get the result partial, others a full page.
func (h *PredictHandler) Submit(c fiber.Ctx) error {
	form, err := parsePredictionForm(c)
	if err == nil {
		err = validation.ValidateStruct(&form)
	}
	if err != nil {
		metrics.RecordPrediction("html", 0, err)
		if isHTMX(c) {
			return htmxError(c, err.Error())
		}
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	prediction, err := h.engine.Predict(form)
	metrics.RecordPrediction("html", prediction.EngagementRate, err)
	if err != nil {
		logging.Error().Err(err).Msg("prediction failed")
		return err
	}

	data := fiber.Map{
		"Title":      "Prediction",
		"Prediction": prediction,
		"Form":       form,
	}
	if isHTMX(c) {
		return c.Render("partials/prediction", data, "")
	}
	return c.Render("partials/prediction", PageData(c, h.cfg, data))
}
