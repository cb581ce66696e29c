package controllers

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"khedutbazaar/database"
	"khedutbazaar/scraper"

	"github.com/gofiber/fiber/v2"
)

// ScrapeController syncs states, districts, markets and prices from the
// upstream price site into the database.
type ScrapeController struct {
	store     *database.Store
	scraper   *scraper.Scraper
	automated *scraper.Automated
}

func NewScrapeController(store *database.Store, s *scraper.Scraper, automated *scraper.Automated) *ScrapeController {
	return &ScrapeController{store: store, scraper: s, automated: automated}
}

func (h *ScrapeController) respond(c *fiber.Ctx, what string, run func(ctx context.Context) (int, error)) error {
	ctx := c.UserContext()
	count, err := run(ctx)
	if err != nil {
		log.Printf("❌ Scraping %s failed: %v", what, err)
		status := fiber.StatusInternalServerError
		if errors.Is(err, database.ErrNotFound) {
			status = fiber.StatusNotFound
		}
		return c.Status(status).JSON(fiber.Map{
			"status":    "error",
			"message":   fmt.Sprintf("Failed to scrape %s data: %v", what, err),
			"timestamp": time.Now(),
		})
	}

	stats, err := h.store.Stats(ctx)
	if err != nil {
		log.Println("❌ Error reading stats:", err)
	}
	return c.JSON(fiber.Map{
		"status":    "success",
		"message":   fmt.Sprintf("%s data scraped from website", what),
		"count":     count,
		"stats":     stats,
		"timestamp": time.Now(),
	})
}

func (h *ScrapeController) ScrapeStates(c *fiber.Ctx) error {
	return h.respond(c, "States", h.scraper.ScrapeStatesOnly)
}

func (h *ScrapeController) ScrapeDistricts(c *fiber.Ctx) error {
	return h.respond(c, "Districts", h.scraper.ScrapeDistrictsOnly)
}

func (h *ScrapeController) ScrapeMarkets(c *fiber.Ctx) error {
	return h.respond(c, "Markets", h.scraper.ScrapeMarketsOnly)
}

func (h *ScrapeController) ScrapeMarketsForState(c *fiber.Ctx) error {
	stateID, err := paramID(c, "state_id")
	if err != nil {
		return err
	}
	return h.respond(c, fmt.Sprintf("Markets for state %d", stateID), func(ctx context.Context) (int, error) {
		return h.scraper.ScrapeMarketsForState(ctx, stateID)
	})
}

// ScrapeYard scrapes one market when market_id is given, otherwise the
// district-level price page.
func (h *ScrapeController) ScrapeYard(c *fiber.Ctx) error {
	stateID, err := queryID(c, "state_id")
	if err != nil {
		return err
	}
	districtID, err := queryID(c, "district_id")
	if err != nil {
		return err
	}
	marketID, err := queryID(c, "market_id")
	if err != nil {
		return err
	}
	if stateID == 0 || districtID == 0 {
		return errorResponse(c, fiber.StatusBadRequest, "Missing required parameters: state_id, district_id")
	}

	ctx := c.UserContext()
	state, err := h.store.StateByID(ctx, stateID)
	if err != nil {
		return notFoundOr500(c, err, fmt.Sprintf("State with ID %d not found", stateID))
	}
	district, err := h.store.DistrictByID(ctx, districtID)
	if err != nil || district.StateID != state.ID {
		if err == nil {
			err = database.ErrNotFound
		}
		return notFoundOr500(c, err, fmt.Sprintf("District with ID %d not found in state %s", districtID, state.Name))
	}

	location := state.Name + "/" + district.Name
	run := func(ctx context.Context) (int, error) {
		return h.scraper.ScrapeDistrictData(ctx, state.Name, district.Name)
	}
	if marketID != 0 {
		markets, err := h.store.MarketsByStateAndDistrict(ctx, state.ID, district.ID)
		if err != nil {
			return notFoundOr500(c, err, "")
		}
		var marketName string
		for _, m := range markets {
			if m.ID == marketID {
				marketName = m.Name
			}
		}
		if marketName == "" {
			return errorResponse(c, fiber.StatusNotFound, fmt.Sprintf("Market with ID %d not found in district %s", marketID, district.Name))
		}
		location += "/" + marketName
		run = func(ctx context.Context) (int, error) {
			return h.scraper.ScrapeYardData(ctx, state.Name, district.Name, marketName)
		}
	}

	count, err := run(ctx)
	if err != nil {
		log.Printf("❌ Scraping %s failed: %v", location, err)
		return c.Status(scrapeFailureStatus(err)).JSON(fiber.Map{
			"status":           "error",
			"message":          "No data scraped successfully: " + err.Error(),
			"failed_locations": []string{location},
			"timestamp":        time.Now(),
		})
	}

	stats, err := h.store.Stats(ctx)
	if err != nil {
		log.Println("❌ Error reading stats:", err)
	}
	return c.JSON(fiber.Map{
		"status":               scraper.StatusSuccess,
		"message":              fmt.Sprintf("Scraped %d price rows for %s", count, location),
		"successful_locations": []string{location},
		"failed_locations":     []string{},
		"stats":                stats,
		"timestamp":            time.Now(),
	})
}

// scrapeFailureStatus answers 404 when the location or its price rows are
// missing and 500 for upstream and network failures.
func scrapeFailureStatus(err error) int {
	switch {
	case errors.Is(err, database.ErrNotFound),
		errors.Is(err, scraper.ErrNoPriceRows),
		errors.Is(err, scraper.ErrNoPriceTable),
		errors.Is(err, scraper.ErrNoMarkets):
		return fiber.StatusNotFound
	}
	return fiber.StatusInternalServerError
}

// reportStatus maps an automated report to an HTTP status code.
func reportStatus(r scraper.Report) int {
	switch r.Status {
	case scraper.StatusSuccess, scraper.StatusPartialSuccess:
		return fiber.StatusOK
	case scraper.StatusWarning:
		return fiber.StatusNotFound
	}
	if errors.Is(r.Err, database.ErrNotFound) {
		return fiber.StatusNotFound
	}
	return fiber.StatusInternalServerError
}

func (h *ScrapeController) AutomatedDistrict(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	report := h.automated.ScrapeDistrictByID(c.UserContext(), id)
	return c.Status(reportStatus(report)).JSON(report)
}

func (h *ScrapeController) AutomatedState(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	report := h.automated.ScrapeStateByID(c.UserContext(), id)
	return c.Status(reportStatus(report)).JSON(report)
}

type bulkRequest struct {
	DistrictIDs []ID `json:"district_ids" validate:"required,min=1,dive,required"`
}

func (h *ScrapeController) AutomatedBulk(c *fiber.Ctx) error {
	var req bulkRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	ids := make([]uint, len(req.DistrictIDs))
	for i, id := range req.DistrictIDs {
		ids[i] = uint(id)
	}
	return c.JSON(h.automated.BulkScrape(c.UserContext(), ids))
}

func (h *ScrapeController) AutomatedStatus(c *fiber.Ctx) error {
	report := h.automated.Status(c.UserContext())
	if report.Status != scraper.StatusSuccess {
		return c.Status(fiber.StatusInternalServerError).JSON(report)
	}
	return c.JSON(report)
}
