package routes

import (
	"khedutbazaar/controllers"

	"github.com/gofiber/fiber/v2"
)

func RegisterMarketRoutes(app *fiber.App, h *controllers.MobileController) {
	api := app.Group("/API")

	api.Post("/statelist", h.StateList)
	api.Post("/districtlist", h.DistrictList)
	api.Post("/marketlist", h.MarketList)
	api.Post("/addtofavorite", h.AddToFavorite)
	api.Post("/getAllFavorite", h.GetAllFavorite)
}
