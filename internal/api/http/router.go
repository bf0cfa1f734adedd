package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/nvron-auth/internal/api/http/handlers"
	"github.com/spec-kit/nvron-auth/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Subscriptions  *handlers.SubscriptionHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/", cfg.Health.Root)
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/health/metrics", cfg.Health.Metrics)

	api := app.Group("/api")
	api.Post("/login", cfg.Auth.Login)

	protected := api.Group("", cfg.AuthMiddleware.Handle)
	protected.Post("/subscribe", cfg.Subscriptions.Subscribe)
	protected.Get("/subscriptions", cfg.Subscriptions.List)
}

// NewApp builds a fiber app with global middlewares and routes registered.
func NewApp(appName string, mw MiddlewareConfig, routes RouteConfig) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               appName,
		DisableStartupMessage: true,
	})
	RegisterMiddlewares(app, mw)
	RegisterRoutes(app, routes)
	return app
}
