package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/sla-engine/internal/api/http/handlers"
	"github.com/spec-kit/sla-engine/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Status         *handlers.StatusHandler
	Tickets        *handlers.TicketsHandler
	Analytics      *handlers.AnalyticsHandler
	Notifications  *handlers.NotificationsHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	app.Post("/auth/login", cfg.Auth.Login)

	// Workflow catalog is public read: the UI fetches it before login to
	// render the roadmap; gating happens on mutation.
	app.Get("/status/workflow", cfg.Status.Workflow)
	app.Get("/status/allowed-transitions/:status", cfg.Status.AllowedTransitions)

	protected := app.Group("", cfg.AuthMiddleware.Handle, auth.RequireAnyRole())
	protected.Put("/tickets/:id/status", cfg.Tickets.UpdateStatus)
	protected.Get("/notifications", cfg.Notifications.List)
	protected.Post("/notifications/:id/read", cfg.Notifications.MarkRead)

	staff := app.Group("", cfg.AuthMiddleware.Handle, auth.RequirePrivileged())
	staff.Post("/tickets/:id/assign", cfg.Tickets.Assign)
	staff.Get("/tickets/:id/sla", cfg.Tickets.Evaluate)
	staff.Get("/tickets/analytics/sla-adherence", cfg.Analytics.Adherence)
	staff.Get("/analytics/ticket-aging", cfg.Analytics.Aging)
}
