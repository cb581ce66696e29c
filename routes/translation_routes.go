package routes

import (
	"khedutbazaar/controllers"

	"github.com/gofiber/fiber/v2"
)

func RegisterTranslationRoutes(app *fiber.App, h *controllers.TranslationController) {
	api := app.Group("/api/translations")

	api.Get("/languages", h.Languages)
	api.Post("/custom", h.AddCustom)
}
