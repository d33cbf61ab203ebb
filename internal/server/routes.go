package server

import (
	"log/slog"

	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"sealshare/internal/db"
	"sealshare/internal/handlers/api"
	"sealshare/internal/middleware"
	"sealshare/internal/service"
)

// RegisterRoutes registers all application routes.
func (s *Server) RegisterRoutes(database *db.DB, svc *service.Service, log *slog.Logger) {
	identity := middleware.NewIdentity()

	shareHandler := api.NewShareHandler(svc, log)
	urnHandler := api.NewUrnHandler(svc, log)
	probeHandler := api.NewProbeHandler(database)

	// Public protocol operations
	s.App.Post("/api/generate-urn", urnHandler.Generate)
	s.App.Post("/api/create-share", identity.RequireUrn, shareHandler.Create)
	s.App.Post("/api/get-share", identity.OptionalUrn, shareHandler.Get)

	// Owner-scoped share management
	s.App.Get("/api/shares", identity.RequireUrn, shareHandler.List)
	s.App.Delete("/api/shares/:token", identity.RequireUrn, shareHandler.Delete)

	// Probes and metrics
	s.App.Get("/healthz", probeHandler.Liveness)
	s.App.Get("/readyz", probeHandler.Readiness)
	s.App.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))
}
