package handlers

import (
	"github.com/gofiber/fiber/v3"

	"engagedash/internal/config"
	"engagedash/internal/engine"
	"engagedash/internal/features"
	"engagedash/internal/middleware"
	"engagedash/internal/models"
	"engagedash/internal/validation"
)

// DashboardHandler renders the analytics dashboard.
type DashboardHandler struct {
	engine *engine.Engine
	cfg    *config.Config
	yaml   *config.YAMLConfig
}

// NewDashboardHandler creates a new dashboard handler.
func NewDashboardHandler(eng *engine.Engine, cfg *config.Config, yamlCfg *config.YAMLConfig) *DashboardHandler {
	if yamlCfg == nil {
		yamlCfg = config.DefaultYAMLConfig()
	}
	return &DashboardHandler{engine: eng, cfg: cfg, yaml: yamlCfg}
}

// ChartData is serialized into the page for Chart.js.
type ChartData struct {
	Platforms   []models.PlatformStats     `json:"platforms"`
	Days        []models.DayMean           `json:"days"`
	Hours       []models.HourMean          `json:"hours"`
	Importances []models.FeatureImportance `json:"importances"`
	Scatter     []models.ScatterPair       `json:"scatter"`
}

// FormOptions lists the choices offered by the prediction form.
type FormOptions struct {
	Platforms    []string
	ContentTypes []string
	Days         []string
}

// Index renders the dashboard: dataset preview, the selected charts, top
// hashtags and the prediction form.
func (h *DashboardHandler) Index(c fiber.Ctx) error {
	ctx := c.Context()
	dash := h.yaml.Dashboard

	selected := validation.NormalizeCharts(queryValues(c, "charts"), config.Charts, dash.DefaultCharts)
	enabled := make(map[string]bool, len(selected))
	for _, ch := range selected {
		enabled[ch] = true
	}

	charts := ChartData{Importances: h.engine.Importances(dash.TopImportances)}
	var err error
	if enabled[config.ChartPlatformBoxplot] {
		if charts.Platforms, err = h.engine.Analytics.PlatformDistribution(ctx); err != nil {
			return err
		}
	}
	if enabled[config.ChartDayOfWeekBar] {
		if charts.Days, err = h.engine.Analytics.DayOfWeekMeans(ctx); err != nil {
			return err
		}
	}
	if enabled[config.ChartHourLine] {
		if charts.Hours, err = h.engine.Analytics.HourMeans(ctx); err != nil {
			return err
		}
	}
	if enabled[config.ChartActualVsPredicted] {
		charts.Scatter = h.engine.Performance.Points
	}

	hashtags, err := h.engine.Analytics.TopHashtags(ctx, dash.TopHashtags)
	if err != nil {
		return err
	}

	return c.Render("index", PageData(c, h.cfg, fiber.Map{
		"Title":          "Dashboard",
		"Preview":        h.engine.Preview(dash.PreviewRows),
		"TotalRows":      h.engine.Rows(),
		"Excluded":       h.engine.Excluded(),
		"AllCharts":      config.Charts,
		"Enabled":        enabled,
		"Charts":         charts,
		"Hashtags":       hashtags,
		"Performance":    h.engine.Performance,
		"ModelVersion":   h.engine.ModelVersion(),
		"SchemaInferred": h.engine.SchemaInferred,
		"LoadedAt":       h.engine.LoadedAt,
		"SessionStarted": middleware.SessionStarted(c),
		"Form":           models.DefaultPredictionForm(),
		"Options":        h.formOptions(),
	}))
}

func (h *DashboardHandler) formOptions() FormOptions {
	schema := h.engine.Schema()
	levels := func(column string) []string {
		if cat, ok := schema.Categorical(column); ok {
			return cat.Levels
		}
		return nil
	}
	return FormOptions{
		Platforms:    levels(features.ColPlatform),
		ContentTypes: levels(features.ColContentType),
		Days:         models.Weekdays,
	}
}
