package server

import (
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"engagedash/internal/engine"
	"engagedash/internal/handlers"
	"engagedash/internal/handlers/api"
	"engagedash/internal/metrics"
)

// RegisterRoutes registers all application routes against a loaded engine.
func (s *Server) RegisterRoutes(eng *engine.Engine) {
	metrics.Init(eng)

	// Initialize handlers
	probeHandler := handlers.NewProbeHandler(eng)
	dashboardHandler := handlers.NewDashboardHandler(eng, s.Cfg, s.YAML)
	predictHandler := handlers.NewPredictHandler(eng, s.Cfg)

	apiPredict := api.NewPredictHandler(eng)
	apiInsights := api.NewInsightsHandler(eng)
	apiAnalytics := api.NewAnalyticsHandler(eng)

	// Probes and metrics
	s.App.Get("/healthz", probeHandler.Liveness)
	s.App.Get("/readyz", probeHandler.Readiness)
	s.App.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// Dashboard
	s.App.Get("/", dashboardHandler.Index)
	s.App.Post("/predict", predictHandler.Submit)
	s.App.Post("/theme", handlers.SetTheme)

	// JSON API
	v1 := s.App.Group("/api/v1")
	v1.Post("/predict", apiPredict.Predict)
	v1.Get("/importances", apiInsights.Importances)
	v1.Get("/performance", apiInsights.Performance)
	v1.Get("/schema", apiInsights.Schema)
	v1.Get("/analytics/platforms", apiAnalytics.Platforms)
	v1.Get("/analytics/days", apiAnalytics.Days)
	v1.Get("/analytics/hours", apiAnalytics.Hours)
	v1.Get("/analytics/hashtags", apiAnalytics.Hashtags)
}
