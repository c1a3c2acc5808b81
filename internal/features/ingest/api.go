package ingest

import (
	"github.com/tndevelopers2024/medagg-crm-sub002/internal/common/api"
	"github.com/tndevelopers2024/medagg-crm-sub002/internal/config"
	"github.com/tndevelopers2024/medagg-crm-sub002/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type IngestApi struct {
	controller *IngestController
	config     *config.Config
}

func NewIngestApi(controller *IngestController, config *config.Config) api.Route {
	return &IngestApi{
		controller: controller,
		config:     config,
	}
}

// Setup registers all ingestion routes
func (h *IngestApi) Setup(app *fiber.App) {
	group := app.Group("/api/ingest", middleware.AuthMiddleware(h.config.SkipAuth))

	group.Post("/campaigns/sync", middleware.RequireRole(middleware.RoleAdmin), h.controller.SyncCampaigns)
	group.Post("/leads/sync", middleware.RequireRole(middleware.RoleAdmin), h.controller.SyncLeads)
	group.Get("/runs/last", h.controller.GetLastRun)
	group.Get("/runs/last/export", h.controller.ExportLastRun)
}
