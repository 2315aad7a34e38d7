package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/spec-kit/event-gate/internal/api/http/handlers"
	"github.com/spec-kit/event-gate/internal/auth"
	"github.com/spec-kit/event-gate/internal/observability"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Users          *handlers.UsersHandler
	Attendee       *handlers.AttendeeHandler
	Admin          *handlers.AdminHandler
	AuthMiddleware *auth.AuthMiddleware
	RateLimiter    *RateLimiter
	Metrics        *observability.Metrics
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	if cfg.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(cfg.Metrics.Handler()))
	}

	signup := []fiber.Handler{cfg.Users.Signup}
	login := []fiber.Handler{cfg.Users.Login}
	if cfg.RateLimiter != nil {
		signup = append([]fiber.Handler{cfg.RateLimiter.Handler("signup")}, signup...)
		login = append([]fiber.Handler{cfg.RateLimiter.Handler("login")}, login...)
	}
	app.Post("/signup", signup...)
	app.Post("/login", login...)
	app.Post("/logout", cfg.Users.Logout)

	api := app.Group("/api")
	api.Get("/events", cfg.Attendee.Events)

	session := []fiber.Handler{cfg.AuthMiddleware.Handle, auth.RequireUser()}
	api.Get("/user", append(session, cfg.Attendee.Profile)...)
	api.Post("/register-event", append(session, cfg.Attendee.RegisterEvent)...)
	api.Get("/qrcode/:id", append(session, cfg.Attendee.QRCode)...)

	admin := app.Group("/admin", cfg.AuthMiddleware.Handle, auth.RequireAdmin())
	admin.Get("/verify/:id", cfg.Admin.Verify)
	admin.Post("/allow-entry/:id", cfg.Admin.AllowEntry)
	admin.Get("/events", cfg.Admin.Events)
	admin.Post("/update", cfg.Admin.UpdateEvent)
	admin.Post("/add-event", cfg.Admin.AddEvent)
	admin.Get("/users", cfg.Admin.Users)
}
