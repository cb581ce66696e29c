package routes

import (
	"khedutbazaar/controllers"

	"github.com/gofiber/fiber/v2"
)

func RegisterMobileRoutes(app *fiber.App, h *controllers.MobileController) {
	api := app.Group("/API")

	api.Post("/login", h.Login)
	api.Post("/alerts", h.Alerts)
	api.Get("/banner", h.Banner)
	api.Post("/banner", h.Banner)
	api.Get("/send_alert_notification", h.SendAlertNotification)
	api.Post("/test_notification", h.TestNotification)
}
