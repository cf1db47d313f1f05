package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/manara-platform/manara-api/internal/config"
	"github.com/manara-platform/manara-api/internal/handler"
	"github.com/manara-platform/manara-api/internal/middleware"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	EntitlementHandler  *handler.EntitlementHandler
	TeacherHandler      *handler.TeacherHandler
	CatalogHandler      *handler.CatalogHandler
	NotificationHandler *handler.NotificationHandler
	AssistantHandler    *handler.AssistantHandler
	MaterialHandler     *handler.MaterialHandler
	AdminHandler        *handler.AdminHandler
	ExpiryJobHandler    *handler.ExpiryJobHandler
	JWTMiddleware       fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))

	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}

	if deps.CatalogHandler != nil {
		subjects := api.Group("/subjects")
		deps.CatalogHandler.Register(subjects)
	}

	if deps.EntitlementHandler != nil {
		entitlements := api.Group("/entitlements", jwtMiddleware)
		deps.EntitlementHandler.Register(entitlements)
	}

	if deps.TeacherHandler != nil {
		teachers := api.Group("/teachers", jwtMiddleware)
		deps.TeacherHandler.Register(teachers)
	}

	if deps.NotificationHandler != nil {
		notifications := api.Group("/notifications", jwtMiddleware)
		deps.NotificationHandler.Register(notifications)
	}

	if deps.AssistantHandler != nil {
		assistant := api.Group("/assistant", jwtMiddleware)
		deps.AssistantHandler.Register(assistant)
	}

	if deps.AdminHandler != nil || deps.MaterialHandler != nil {
		admin := api.Group("/admin", jwtMiddleware, middleware.RequireRole("admin"))
		if deps.AdminHandler != nil {
			deps.AdminHandler.Register(admin)
		}
		if deps.MaterialHandler != nil {
			materials := admin.Group("/materials")
			deps.MaterialHandler.Register(materials)
		}
	}

	// Job routes are guarded by the shared token inside the handler, not by
	// user auth.
	if deps.ExpiryJobHandler != nil {
		jobs := api.Group("/jobs")
		deps.ExpiryJobHandler.Register(jobs)
	}
}
