package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/bit2byte/mentorhub-api/internal/config"
	"github.com/bit2byte/mentorhub-api/internal/handler"
	"github.com/bit2byte/mentorhub-api/internal/middleware"
	"github.com/bit2byte/mentorhub-api/internal/models"
	"github.com/bit2byte/mentorhub-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	AssignmentHandler *handler.AssignmentHandler
	DoubtHandler      *handler.DoubtHandler
	OverviewHandler   *handler.OverviewHandler
	JWTMiddleware     fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	// Common v1 group for health & headers
	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))

	app.Get("/metrics", observability.MetricsHandler())

	// Use provided JWT middleware, or a no-op if nil
	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}

	studentOnly := middleware.RequireRole(models.RoleStudent, models.RoleVolunteer)
	mentorOnly := middleware.RequireRole(models.RoleMentor, models.RoleAdmin)

	if deps.AssignmentHandler != nil {
		assignments := api.Group("/assignments", jwtMiddleware)
		deps.AssignmentHandler.Register(assignments, mentorOnly, studentOnly)
	}

	if deps.DoubtHandler != nil {
		doubts := api.Group("/doubts", jwtMiddleware)
		createLimiter := middleware.RateLimit("doubt-create", cfg.DoubtRateLimit, cfg.DoubtRateWindow)
		deps.DoubtHandler.Register(doubts, studentOnly, mentorOnly, createLimiter)
	}

	if deps.OverviewHandler != nil {
		student := api.Group("/student", jwtMiddleware, studentOnly)
		deps.OverviewHandler.Register(student)
	}
}
