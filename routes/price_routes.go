package routes

import (
	"khedutbazaar/controllers"

	"github.com/gofiber/fiber/v2"
)

func RegisterPriceRoutes(app *fiber.App, h *controllers.MobileController) {
	api := app.Group("/API")

	api.Post("/getcrop_data", h.GetCropData)
	api.Post("/commodity_stats", h.CommodityStats)
	api.Post("/getCommodityBasedOnmarket", h.CommodityBasedOnMarket)
}
