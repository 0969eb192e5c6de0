package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/customer-care-api/internal/api/http/handlers"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health     *handlers.HealthHandler
	Tickets    *handlers.TicketsHandler
	Responses  *handlers.ResponsesHandler
	Users      *handlers.UsersHandler
	Categories *handlers.CategoriesHandler
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	api := app.Group("/api/v1")

	api.Post("/tickets", cfg.Tickets.CreateTicket)
	api.Get("/tickets", cfg.Tickets.ListTickets)
	api.Get("/tickets/:id", cfg.Tickets.GetTicket)
	api.Put("/tickets/:id", cfg.Tickets.UpdateTicket)
	api.Delete("/tickets/:id", cfg.Tickets.DeleteTicket)
	api.Post("/tickets/:id/assign", cfg.Tickets.AssignTicket)
	api.Post("/tickets/:id/status", cfg.Tickets.ChangeStatus)

	api.Post("/tickets/:id/responses", cfg.Responses.CreateResponse)
	api.Get("/tickets/:id/responses", cfg.Responses.ListResponses)
	api.Put("/responses/:id", cfg.Responses.UpdateResponse)
	api.Delete("/responses/:id", cfg.Responses.DeleteResponse)

	api.Post("/users", cfg.Users.CreateUser)
	api.Get("/users", cfg.Users.ListUsers)
	api.Get("/agents", cfg.Users.ListAgents)
	api.Get("/users/:id", cfg.Users.GetUser)
	api.Put("/users/:id", cfg.Users.UpdateUser)
	api.Delete("/users/:id", cfg.Users.DeleteUser)
	api.Get("/users/:id/tickets", cfg.Tickets.ListUserTickets)
	api.Get("/agents/:id/tickets", cfg.Tickets.ListAgentTickets)

	api.Post("/categories", cfg.Categories.CreateCategory)
	api.Get("/categories", cfg.Categories.ListCategories)
	api.Get("/categories/:id", cfg.Categories.GetCategory)
	api.Put("/categories/:id", cfg.Categories.UpdateCategory)
	api.Delete("/categories/:id", cfg.Categories.DeleteCategory)
}
