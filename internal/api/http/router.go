package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/guard-duty-service/internal/api/http/handlers"
	"github.com/spec-kit/guard-duty-service/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Users          *handlers.UsersHandler
	Duties         *handlers.DutiesHandler
	Candidates     *handlers.CandidatesHandler
	Recount        *handlers.RecountHandler
	Staff          *handlers.StaffHandler
	Locations      *handlers.LocationsHandler
	Roles          *handlers.RolesHandler
	Export         *handlers.ExportHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/health/metrics", cfg.Health.Metrics)

	authGroup := app.Group("/auth")
	authGroup.Post("/register", cfg.Users.Register)
	authGroup.Post("/login", cfg.Users.Login)

	api := app.Group("/api", cfg.AuthMiddleware.Handle)

	duties := api.Group("/duties")
	duties.Post("/", cfg.Duties.Create)
	duties.Get("/", cfg.Duties.ListMonth)
	duties.Get("/export/week", cfg.Export.WeekRoster)
	duties.Get("/:id", cfg.Duties.Get)
	duties.Put("/:id", cfg.Duties.Update)
	duties.Delete("/:id", cfg.Duties.Delete)

	staff := api.Group("/staff")
	staff.Post("/", cfg.Staff.Create)
	staff.Get("/", cfg.Staff.List)
	staff.Get("/candidates", cfg.Candidates.List)
	staff.Post("/recount", cfg.Recount.RecountStaff)
	staff.Get("/:id", cfg.Staff.Get)
	staff.Put("/:id", cfg.Staff.Update)
	staff.Delete("/:id", cfg.Staff.Delete)
	staff.Post("/:id/recount", cfg.Recount.RecountStaffMember)
	staff.Get("/:dniOrId/duties", cfg.Staff.History)

	locations := api.Group("/locations")
	locations.Post("/", cfg.Locations.Create)
	locations.Get("/", cfg.Locations.List)
	locations.Post("/recount", cfg.Recount.RecountLocations)
	locations.Get("/:id", cfg.Locations.Get)
	locations.Put("/:id", cfg.Locations.Update)
	locations.Delete("/:id", cfg.Locations.Delete)
	locations.Post("/:id/recount", cfg.Recount.RecountLocation)
	locations.Get("/:id/duties", cfg.Locations.History)

	roles := api.Group("/roles")
	roles.Post("/", cfg.Roles.Create)
	roles.Get("/", cfg.Roles.List)
	roles.Get("/by-name", cfg.Roles.GetByName)
	roles.Get("/:id", cfg.Roles.Get)
	roles.Put("/:id", cfg.Roles.Update)
	roles.Delete("/:id", cfg.Roles.Delete)
}
