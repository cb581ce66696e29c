package controllers

import (
	"context"
	"errors"
	"fmt"
	"log"

	"khedutbazaar/scheduler"

	"github.com/gofiber/fiber/v2"
)

type SchedulerController struct {
	scheduler *scheduler.Scheduler
}

func NewSchedulerController(s *scheduler.Scheduler) *SchedulerController {
	return &SchedulerController{scheduler: s}
}

func (h *SchedulerController) Start(c *fiber.Ctx) error {
	switch err := h.scheduler.Start(); {
	case errors.Is(err, scheduler.ErrAlreadyRunning), errors.Is(err, scheduler.ErrDisabled):
		return errorResponse(c, fiber.StatusBadRequest, err.Error())
	case err != nil:
		log.Println("❌ Error starting scheduler:", err)
		return errorResponse(c, fiber.StatusInternalServerError, "Failed to start scheduler: "+err.Error())
	}
	return c.JSON(fiber.Map{"status": "success", "message": "Scheduler started successfully"})
}

func (h *SchedulerController) Stop(c *fiber.Ctx) error {
	if err := h.scheduler.Stop(); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, err.Error())
	}
	return c.JSON(fiber.Map{"status": "success", "message": "Scheduler stopped successfully"})
}

func (h *SchedulerController) Status(c *fiber.Ctx) error {
	status, err := h.scheduler.Status()
	if err != nil {
		log.Println("❌ Error reading scheduler status:", err)
		return errorResponse(c, fiber.StatusInternalServerError, "Failed to read scheduler status")
	}
	return c.JSON(fiber.Map{"status": "success", "data": status})
}

// RunNow starts a scheduled run in the background. With ?wait=true the
// request blocks until the run finishes and returns its summary.
func (h *SchedulerController) RunNow(c *fiber.Ctx) error {
	if c.QueryBool("wait") {
		summary, err := h.scheduler.RunNow(c.UserContext())
		if errors.Is(err, scheduler.ErrRunInProgress) {
			return errorResponse(c, fiber.StatusConflict, err.Error())
		}
		if err != nil {
			log.Println("❌ Manual run failed:", err)
			return errorResponse(c, fiber.StatusInternalServerError, "Scheduled run failed: "+err.Error())
		}
		return c.JSON(fiber.Map{"status": "success", "message": "Scheduled scraping completed", "data": summary})
	}

	go func() {
		if _, err := h.scheduler.RunNow(context.Background()); err != nil {
			log.Println("❌ Manual run failed:", err)
		}
	}()
	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
		"status":  "success",
		"message": "Scheduled scraping started in background",
	})
}

type stateIDRequest struct {
	StateID ID `json:"state_id" validate:"required"`
}

func (h *SchedulerController) AddState(c *fiber.Ctx) error {
	var req stateIDRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	added, err := h.scheduler.AddState(uint(req.StateID))
	if err != nil {
		log.Println("❌ Error saving scheduler config:", err)
		return errorResponse(c, fiber.StatusInternalServerError, "Failed to update scheduler config")
	}
	if !added {
		return errorResponse(c, fiber.StatusBadRequest, fmt.Sprintf("State %d is already scheduled", req.StateID))
	}
	return c.JSON(fiber.Map{"status": "success", "message": fmt.Sprintf("State %d added to scheduled scraping", req.StateID)})
}

func (h *SchedulerController) RemoveState(c *fiber.Ctx) error {
	var req stateIDRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	removed, err := h.scheduler.RemoveState(uint(req.StateID))
	if err != nil {
		log.Println("❌ Error saving scheduler config:", err)
		return errorResponse(c, fiber.StatusInternalServerError, "Failed to update scheduler config")
	}
	if !removed {
		return errorResponse(c, fiber.StatusNotFound, fmt.Sprintf("State %d is not scheduled", req.StateID))
	}
	return c.JSON(fiber.Map{"status": "success", "message": fmt.Sprintf("State %d removed from scheduled scraping", req.StateID)})
}

func (h *SchedulerController) ScheduledItems(c *fiber.Ctx) error {
	items, err := h.scheduler.ScheduledItems()
	if err != nil {
		log.Println("❌ Error reading scheduler config:", err)
		return errorResponse(c, fiber.StatusInternalServerError, "Failed to read scheduler config")
	}
	return c.JSON(fiber.Map{"status": "success", "data": items})
}
