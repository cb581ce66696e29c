package routes

import (
	"khedutbazaar/controllers"

	"github.com/gofiber/fiber/v2"
)

// RegisterSyncRoutes mounts the manual and automated scraping endpoints.
func RegisterSyncRoutes(app *fiber.App, h *controllers.ScrapeController) {
	scrape := app.Group("/scrape")
	scrape.Get("/states", h.ScrapeStates)
	scrape.Get("/districts", h.ScrapeDistricts)
	scrape.Get("/markets", h.ScrapeMarkets)
	scrape.Get("/markets/:state_id", h.ScrapeMarketsForState)
	scrape.Get("/yard", h.ScrapeYard)

	automated := app.Group("/automated")
	automated.Get("/scrape/district/:id", h.AutomatedDistrict)
	automated.Get("/scrape/state/:id", h.AutomatedState)
	automated.Post("/scrape/bulk", h.AutomatedBulk)
	automated.Get("/status", h.AutomatedStatus)
}
