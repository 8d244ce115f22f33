package router

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/mentorlink/mentorlink-api/internal/config"
	"github.com/mentorlink/mentorlink-api/internal/handler"
	"github.com/mentorlink/mentorlink-api/internal/middleware"
	"github.com/mentorlink/mentorlink-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	AuthHandler         *handler.AuthHandler
	UserHandler         *handler.UserHandler
	MatchingHandler     *handler.MatchingHandler
	RequestHandler      *handler.RequestHandler
	SessionHandler      *handler.SessionHandler
	NotificationHandler *handler.NotificationHandler
	GoalHandler         *handler.GoalHandler
	JWTMiddleware       fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	app.Get("/metrics", observability.MetricsHandler())

	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))

	// Use provided JWT middleware, or a no-op if nil
	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}

	if deps.AuthHandler != nil {
		auth := api.Group("/auth", middleware.RateLimit("auth", 20, time.Minute))
		deps.AuthHandler.Register(auth)
	}

	if deps.UserHandler != nil {
		deps.UserHandler.Register(api.Group("/users", jwtMiddleware))
	}

	if deps.MatchingHandler != nil {
		matching := api.Group("/matching", jwtMiddleware, middleware.RequireRole("mentee", "admin"))
		deps.MatchingHandler.Register(matching)
	}

	if deps.RequestHandler != nil {
		deps.RequestHandler.Register(api.Group("/requests", jwtMiddleware))
	}

	if deps.SessionHandler != nil {
		deps.SessionHandler.Register(api.Group("/sessions", jwtMiddleware))
	}

	if deps.NotificationHandler != nil {
		deps.NotificationHandler.Register(api.Group("/notifications", jwtMiddleware))
	}

	if deps.GoalHandler != nil {
		deps.GoalHandler.Register(api.Group("/goals", jwtMiddleware))
	}
}
