package routes

import (
	"khedutbazaar/controllers"

	"github.com/gofiber/fiber/v2"
)

func RegisterDatabaseRoutes(app *fiber.App, h *controllers.DatabaseController) {
	api := app.Group("/api/database")

	api.Get("/health", h.Health)
	api.Get("/stats", h.Stats)
	api.Get("/states", h.States)
	api.Get("/states/:id/markets", h.MarketsOfState)
	api.Post("/states/district", h.DistrictsOfState)
	api.Post("/states/district/markets", h.MarketsOfStateDistrict)
	api.Get("/districts", h.Districts)
	api.Get("/districts/:id/markets", h.MarketsOfDistrict)
	api.Get("/search", h.Search)
	api.Get("/yard", h.Yard)
}
