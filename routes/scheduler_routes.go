package routes

import (
	"khedutbazaar/controllers"

	"github.com/gofiber/fiber/v2"
)

func RegisterSchedulerRoutes(app *fiber.App, h *controllers.SchedulerController) {
	api := app.Group("/scheduler")

	api.Post("/start", h.Start)
	api.Post("/stop", h.Stop)
	api.Get("/status", h.Status)
	api.Post("/run-now", h.RunNow)
	api.Post("/add-state", h.AddState)
	api.Post("/remove-state", h.RemoveState)
	api.Get("/scheduled-items", h.ScheduledItems)
}
