package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/opsdesk/helpdesk/internal/api/http/handlers"
	"github.com/opsdesk/helpdesk/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Tickets        *handlers.TicketsHandler
	Thread         *handlers.ThreadHandler
	Users          *handlers.UsersHandler
	Audit          *handlers.AuditHandler
	AuthMiddleware *auth.Middleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	api := app.Group("/api")
	api.Post("/register", cfg.Auth.Register)
	api.Post("/login", cfg.Auth.Login)
	api.Post("/logout", cfg.Auth.Logout)
	api.Post("/password/request", cfg.Auth.RequestReset)
	api.Post("/password/reset", cfg.Auth.ConfirmReset)

	protected := api.Group("", cfg.AuthMiddleware.Handle)
	protected.Get("/me", cfg.Auth.Me)

	tickets := protected.Group("/tickets")
	tickets.Get("", cfg.Tickets.List)
	tickets.Post("", cfg.Tickets.Create)
	tickets.Get("/:id", cfg.Tickets.Get)
	tickets.Put("/:id", cfg.Tickets.Update)
	tickets.Put("/:id/assign", auth.RequireStaff(), cfg.Tickets.Assign)
	tickets.Put("/:id/close", auth.RequireStaff(), cfg.Tickets.Close)
	tickets.Get("/:id/comments", cfg.Thread.ListComments)
	tickets.Post("/:id/comments", cfg.Thread.AddComment)
	tickets.Get("/:id/attachments", cfg.Thread.ListAttachments)
	tickets.Post("/:id/attachments", cfg.Thread.AddAttachment)

	protected.Get("/users", auth.RequireStaff(), cfg.Users.List)
	protected.Put("/users/:id/role", auth.RequireAdmin(), cfg.Users.SetRole)
	protected.Get("/audit", auth.RequireAdmin(), cfg.Audit.List)

	app.Get("/uploads/:name", cfg.AuthMiddleware.Handle, cfg.Thread.ServeUpload)
}
