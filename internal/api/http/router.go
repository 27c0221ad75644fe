package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/repository-api/internal/api/http/handlers"
	"github.com/spec-kit/repository-api/internal/auth"
	"github.com/spec-kit/repository-api/internal/tenancy"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Tenants        *handlers.TenantsHandler
	Sessions       *handlers.SessionsHandler
	Registrations  *handlers.RegistrationsHandler
	TenantResolver *tenancy.Resolver
	AuthMiddleware *auth.Middleware
}

// RegisterRoutes wires HTTP routes. Tenant resolution runs before
// authentication on every tenant-scoped route; that ordering is load-bearing
// because the authentication lookup itself happens in the tenant's schema.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	api := app.Group("/api/v1")
	api.Get("/tenant", cfg.Tenants.Index)

	tenant := api.Group("/tenant/:tenant_id", cfg.TenantResolver.Handle, cfg.AuthMiddleware.Authenticate)
	tenant.Get("", cfg.Tenants.Show)

	tenant.Post("/users/login", cfg.Sessions.Create)
	tenant.Post("/users/signup", cfg.Registrations.Create)
	tenant.Post("/users/refresh", cfg.Sessions.Refresh)
	tenant.Delete("/users/log_out", cfg.Sessions.Destroy)
	tenant.Post("/users/current", auth.RequireSession(), cfg.Sessions.Show)
}
