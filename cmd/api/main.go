package main

import (
	"context"
	"fmt"
	"log"

	"github.com/tndevelopers2024/medagg-crm-sub002/internal/app"
	common_api "github.com/tndevelopers2024/medagg-crm-sub002/internal/common/api"
	"github.com/tndevelopers2024/medagg-crm-sub002/internal/config"
	"github.com/tndevelopers2024/medagg-crm-sub002/internal/features/ingest"
	"github.com/tndevelopers2024/medagg-crm-sub002/internal/features/scheduler"
	"github.com/tndevelopers2024/medagg-crm-sub002/internal/features/system"
	"github.com/tndevelopers2024/medagg-crm-sub002/internal/middleware"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// NewFiberServer creates a new Fiber app instance
func NewFiberServer(cfg *config.Config) *fiber.App {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error": err.Error(),
			})
		},
	})

	app.Use(middleware.CORSMiddleware(cfg.CORSOrigins))

	return app
}

// AsRoute tags the constructor so Fx adds it to the "routes" group.
func AsRoute(f any) any {
	return fx.Annotate(
		f,
		fx.As(new(common_api.Route)),
		fx.ResultTags(`group:"routes"`),
	)
}

// RegisterAllRoutes calls Setup() on every route in the "routes" group.
func RegisterAllRoutes(app *fiber.App, routes []common_api.Route, log *zap.Logger) {
	for _, route := range routes {
		log.Debug("Setting up route", zap.String("route", fmt.Sprintf("%T", route)))
		route.Setup(app)
	}
	log.Info("All routes registered", zap.Int("count", len(routes)))
}

var RegisterAllRoutesWithAnnotation = fx.Annotate(
	RegisterAllRoutes,
	fx.ParamTags(``, `group:"routes"`, ``),
)

// StartServer starts Fiber in a goroutine and shuts it down when the app exits.
func StartServer(lc fx.Lifecycle, app *fiber.App, cfg *config.Config) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				port := fmt.Sprintf(":%s", cfg.Port)
				if err := app.Listen(port); err != nil {
					log.Fatalf("Server failed to start: %v", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return app.Shutdown()
		},
	})
}

func main() {
	fx.New(
		app.Core,
		fx.Provide(
			NewFiberServer,

			scheduler.NewSchedulerService,

			ingest.NewIngestController,
			system.NewDebugController,

			AsRoute(system.NewHealthApi),
			AsRoute(system.NewMetricsApi),
			AsRoute(system.NewDebugApi),
			AsRoute(ingest.NewIngestApi),
		),
		fx.Invoke(
			app.InitializeIndexes,
			RegisterAllRoutesWithAnnotation,
			StartServer,
			func(lc fx.Lifecycle, s scheduler.SchedulerService) {
				lc.Append(fx.Hook{
					OnStart: s.Start,
					OnStop:  s.Stop,
				})
			},
		),
	).Run()
}
