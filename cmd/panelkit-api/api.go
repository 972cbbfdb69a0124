// Package main provides the PanelKit API server implementation.
package main

import (
	"log/slog"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/healthcheck"
	"github.com/gofiber/fiber/v3/middleware/logger"

	"github.com/panelkit/panelkit/pkg/eventbus"
	"github.com/panelkit/panelkit/pkg/persistence"
	"github.com/panelkit/panelkit/pkg/services"
	"github.com/panelkit/panelkit/pkg/system"
	"github.com/panelkit/panelkit/pkg/web"
)

type API struct {
	logger      *slog.Logger
	persistence persistence.Persistence
	system      *system.System
	eventBus    eventbus.EventBus
	validate    *validator.Validate
}

func NewAPI(
	logger *slog.Logger,
	persistence persistence.Persistence,
	sys *system.System,
	eventBus eventbus.EventBus,
) *API {
	return &API{
		logger:      logger,
		persistence: persistence,
		system:      sys,
		eventBus:    eventBus,
		validate:    validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (a *API) App() *fiber.App {
	dashboardService := services.NewDashboard(
		a.logger,
		a.persistence,
		a.system.Store(),
		a.system.Configurations(),
		a.eventBus,
	)

	handlers := web.NewAPIHandlers(dashboardService, a.system, a.validate)

	app := fiber.New()
	app.Use(cors.New())
	app.Use(logger.New(logger.Config{
		DisableColors: true,
	}))

	app.Get(healthcheck.DefaultLivenessEndpoint, healthcheck.NewHealthChecker())
	app.Get(healthcheck.DefaultReadinessEndpoint, healthcheck.NewHealthChecker())

	app.Get("/", func(c fiber.Ctx) error {
		return c.SendString("PanelKit API")
	})

	w := app.Group("/widgets")
	w.Get("/", handlers.GetWidgets)
	w.Get("/:type", handlers.GetWidget)

	d := app.Group("/dashboards")
	d.Get("/", handlers.GetDashboards)
	d.Post("/", handlers.CreateDashboard)
	d.Get("/:id", handlers.GetDashboard)
	d.Patch("/:id", handlers.UpdateDashboard)
	d.Delete("/:id", handlers.DeleteDashboard)
	d.Post("/:id/open", handlers.OpenDashboard)
	d.Post("/:id/save", handlers.SaveDashboard)
	d.Post("/:id/actions", handlers.DispatchAction)

	n := app.Group("/nodes")
	n.Get("/:nodeId/configuration", handlers.GetNodeConfiguration)
	n.Put("/:nodeId/configuration", handlers.SetNodeConfiguration)

	app.Get("/health", handlers.HealthCheck)

	return app
}

func (a *API) Start(port int) error {
	app := a.App()

	return app.Listen(":" + strconv.Itoa(port))
}
