package app

import (
	"context"
	"time"

	"github.com/tndevelopers2024/medagg-crm-sub002/internal/config"
	"github.com/tndevelopers2024/medagg-crm-sub002/internal/database"
	"github.com/tndevelopers2024/medagg-crm-sub002/internal/features/campaign"
	"github.com/tndevelopers2024/medagg-crm-sub002/internal/features/graph"
	"github.com/tndevelopers2024/medagg-crm-sub002/internal/features/ingest"
	"github.com/tndevelopers2024/medagg-crm-sub002/internal/features/lead"
	"github.com/tndevelopers2024/medagg-crm-sub002/internal/logger"
	"github.com/tndevelopers2024/medagg-crm-sub002/pkg/utils"

	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

// Core provides everything a sync run needs: config, store, logger, the
// Graph API client, repositories and the ingest service.
var Core = fx.Options(
	fx.Provide(
		config.LoadConfig,
		logger.NewLogger,
		database.NewDatabase,

		fx.Annotate(graph.NewClientFromConfig, fx.As(new(graph.Getter))),
		ingest.NewSource,

		lead.NewLeadRepository,
		campaign.NewCampaignRepository,
		func() *lead.Assigner { return lead.NewAssigner(nil) },

		ingest.NewIngestService,
	),
	fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
		return &fxevent.ZapLogger{Logger: log}
	}),
	fx.Invoke(func(cfg *config.Config) {
		utils.SetSecret(cfg.JWTSecret)
	}),
)

// InitializeIndexes ensures the unique keys the idempotent upserts rely on
func InitializeIndexes(lc fx.Lifecycle, svc ingest.IngestService, log *zap.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
			defer cancel()

			if err := svc.EnsureIndexes(ctx); err != nil {
				log.Error("Failed to ensure indexes", zap.Error(err))
				return err
			}
			return nil
		},
	})
}
