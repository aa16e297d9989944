package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/spec-kit/helpdesk/internal/api/http/handlers"
	"github.com/spec-kit/helpdesk/internal/auth"
	"github.com/spec-kit/helpdesk/internal/domain"
	"github.com/spec-kit/helpdesk/internal/observability"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Principals     *handlers.PrincipalsHandler
	Roles          *handlers.RolesHandler
	Stations       *handlers.StationsHandler
	Tickets        *handlers.TicketsHandler
	Alerts         *handlers.AlertsHandler
	Metrics        *observability.Metrics
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes. Route-level permission checks mirror the
// service checks so denied calls never reach a handler.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	if cfg.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(cfg.Metrics.Handler()))
	}

	authGroup := app.Group("/auth")
	authGroup.Post("/signup", cfg.Auth.Signup)
	authGroup.Post("/login", cfg.Auth.Login)
	authGroup.Post("/verify", cfg.Auth.Verify)
	authGroup.Post("/verify/resend", cfg.Auth.ResendVerification)

	// Guards are attached per group so unknown paths still fall through to 404.
	guard := []fiber.Handler{cfg.AuthMiddleware.Handle, auth.RequireAuthenticated()}

	me := app.Group("/me", guard...)
	me.Get("/", cfg.Principals.Me)
	me.Patch("/", cfg.Principals.UpdateMe)
	me.Post("/avatar", cfg.Principals.AttachAvatar)

	users := app.Group("/users", guard...)
	users.Get("/", perm(domain.ResourceUsers, domain.ActionList), cfg.Principals.List)
	users.Post("/", perm(domain.ResourceUsers, domain.ActionAdd), cfg.Principals.Create)
	users.Get("/:id", perm(domain.ResourceUsers, domain.ActionList), cfg.Principals.Get)
	users.Patch("/:id", perm(domain.ResourceUsers, domain.ActionEdit), cfg.Principals.Update)
	users.Delete("/:id", perm(domain.ResourceUsers, domain.ActionDelete), cfg.Principals.Delete)
	users.Get("/:id/attachments", perm(domain.ResourceUsers, domain.ActionList), cfg.Principals.Attachments)

	roles := app.Group("/roles", guard...)
	roles.Get("/", perm(domain.ResourceUserRules, domain.ActionList), cfg.Roles.List)
	roles.Post("/", perm(domain.ResourceUserRules, domain.ActionAdd), cfg.Roles.Create)
	roles.Get("/:id", perm(domain.ResourceUserRules, domain.ActionList), cfg.Roles.Get)
	roles.Patch("/:id", perm(domain.ResourceUserRules, domain.ActionEdit), cfg.Roles.Update)
	roles.Delete("/:id", perm(domain.ResourceUserRules, domain.ActionDelete), cfg.Roles.Delete)

	stations := app.Group("/stations", guard...)
	stations.Put("/bots", perm(domain.ResourceStations, domain.ActionEdit), cfg.Stations.RegisterBot)
	stations.Get("/", perm(domain.ResourceStations, domain.ActionList), cfg.Stations.List)
	stations.Post("/", perm(domain.ResourceStations, domain.ActionAdd), cfg.Stations.Create)
	stations.Get("/:id", perm(domain.ResourceStations, domain.ActionList), cfg.Stations.Get)
	stations.Put("/:id", perm(domain.ResourceStations, domain.ActionEdit), cfg.Stations.Update)
	stations.Delete("/:id", perm(domain.ResourceStations, domain.ActionDelete), cfg.Stations.Delete)

	// Transition and create carry extra conditional checks in the service.
	tickets := app.Group("/tickets", guard...)
	tickets.Get("/", perm(domain.ResourceTickets, domain.ActionList), cfg.Tickets.List)
	tickets.Post("/", perm(domain.ResourceTickets, domain.ActionAdd), cfg.Tickets.Create)
	tickets.Get("/:id", perm(domain.ResourceTickets, domain.ActionList), cfg.Tickets.Get)
	tickets.Patch("/:id", perm(domain.ResourceTickets, domain.ActionEdit), cfg.Tickets.Update)
	tickets.Delete("/:id", perm(domain.ResourceTickets, domain.ActionDelete), cfg.Tickets.Delete)
	tickets.Post("/:id/transition", perm(domain.ResourceTickets, domain.ActionEdit), cfg.Tickets.Transition)
	tickets.Post("/:id/assign", perm(domain.ResourceTickets, domain.ActionListAssign), cfg.Tickets.Assign)
	tickets.Get("/:id/attachments", perm(domain.ResourceTickets, domain.ActionList), cfg.Tickets.Attachments)
	tickets.Post("/:id/attachments", perm(domain.ResourceTickets, domain.ActionEdit), cfg.Tickets.AttachImage)

	alerts := app.Group("/alerts", guard...)
	alerts.Post("/:platform", perm(domain.ResourceTickets, domain.ActionEdit), cfg.Alerts.Dispatch)
}

func perm(resource domain.Resource, action domain.Action) fiber.Handler {
	return auth.RequirePermission(resource, action)
}
