package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/threaddesk/threaddesk/internal/api/http/handlers"
	"github.com/threaddesk/threaddesk/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Admin          *handlers.AdminHandler
	AuthMiddleware *auth.Middleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	app.Post("/auth/login", cfg.Auth.Login)

	api := app.Group("/api/v1", cfg.AuthMiddleware.Handle)

	api.Post("/teams", cfg.Admin.CreateTeam)
	api.Get("/teams", cfg.Admin.ListTeams)

	api.Post("/managers", cfg.Admin.CreateManager)
	api.Get("/managers", cfg.Admin.ListManagers)

	api.Post("/forums", cfg.Admin.CreateForum)
	api.Get("/forums", cfg.Admin.ListForums)
	api.Post("/forums/:id/managers", cfg.Admin.AttachForumManager)
	api.Post("/forums/:id/practical-tags", cfg.Admin.AddPracticalTag)

	api.Post("/trace-configs", cfg.Admin.CreateTraceConfig)
	api.Get("/trace-configs", cfg.Admin.ListTraceConfigs)
	api.Post("/trace-configs/:id/managers", cfg.Admin.AttachTraceConfigManager)
}
