package server

import (
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"whomortality/internal/handlers"
	"whomortality/internal/handlers/api"
	"whomortality/internal/middleware"
)

// Dependencies are the services the routes are served from.
type Dependencies struct {
	Engine   api.Aggregator
	Catalog  api.CatalogService
	DB       handlers.Pinger
	Gatherer prometheus.Gatherer // nil serves the default registry
}

// RegisterRoutes registers all application routes.
func (s *Server) RegisterRoutes(deps Dependencies) {
	// Initialize handlers
	mortalityHandler := api.NewMortalityHandler(deps.Engine, s.Cfg.MaxCauses)
	catalogHandler := api.NewCatalogHandler(deps.Catalog)
	pageHandler := handlers.NewPageHandler(deps.Catalog, s.Cfg)
	probeHandler := handlers.NewProbeHandler(deps.DB)

	gatherer := deps.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	// Probes and metrics
	s.App.Get("/healthz", probeHandler.Liveness)
	s.App.Get("/readyz", probeHandler.Readiness)
	s.App.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	// Pages
	s.App.Get("/", func(c fiber.Ctx) error {
		return c.Redirect().To("/countries")
	})
	s.App.Get("/countries", pageHandler.Countries)

	// JSON API
	apiGroup := s.App.Group("/api", middleware.QueryTimeout(s.Cfg.QueryTimeout))
	apiGroup.Post("/data", mortalityHandler.Data)
	apiGroup.Post("/stats", mortalityHandler.Stats)
	apiGroup.Post("/export", mortalityHandler.Export)
	apiGroup.Get("/causes", catalogHandler.Causes)
	apiGroup.Get("/countries", catalogHandler.Countries)
}
