package controllers

import (
	"fmt"
	"log"
	"strings"
	"time"

	"khedutbazaar/database"
	"khedutbazaar/models"

	"github.com/gofiber/fiber/v2"
)

// DatabaseController exposes read-only views of the scraped data.
type DatabaseController struct {
	store *database.Store
}

func NewDatabaseController(store *database.Store) *DatabaseController {
	return &DatabaseController{store: store}
}

func (h *DatabaseController) Health(c *fiber.Ctx) error {
	if err := h.store.Ping(c.UserContext()); err != nil {
		log.Println("❌ Database health check failed:", err)
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"status":    "error",
			"message":   "Database unavailable",
			"timestamp": time.Now(),
		})
	}
	return c.JSON(fiber.Map{
		"status":    "healthy",
		"service":   "khedut-bazaar",
		"database":  "connected",
		"timestamp": time.Now(),
	})
}

func (h *DatabaseController) Stats(c *fiber.Ctx) error {
	stats, err := h.store.Stats(c.UserContext())
	if err != nil {
		log.Println("❌ Error reading stats:", err)
		return errorResponse(c, fiber.StatusInternalServerError, "Failed to read stats")
	}
	return c.JSON(fiber.Map{"status": "success", "data": stats})
}

func (h *DatabaseController) States(c *fiber.Ctx) error {
	states, err := h.store.AllStates(c.UserContext())
	if err != nil {
		log.Println("❌ Error fetching states:", err)
		return errorResponse(c, fiber.StatusInternalServerError, "Failed to fetch states")
	}
	return c.JSON(fiber.Map{"status": "success", "data": states, "count": len(states)})
}

// MarketsOfState lists a state's markets grouped by district name.
func (h *DatabaseController) MarketsOfState(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	ctx := c.UserContext()

	state, err := h.store.StateByID(ctx, id)
	if err != nil {
		return notFoundOr500(c, err, fmt.Sprintf("State with ID %d not found", id))
	}
	markets, err := h.store.MarketsByState(ctx, state.ID)
	if err != nil {
		log.Println("❌ Error fetching markets:", err)
		return errorResponse(c, fiber.StatusInternalServerError, "Failed to fetch markets")
	}
	return c.JSON(fiber.Map{"status": "success", "state": state, "data": markets, "count": len(markets)})
}

func (h *DatabaseController) Districts(c *fiber.Ctx) error {
	districts, err := h.store.AllDistricts(c.UserContext())
	if err != nil {
		log.Println("❌ Error fetching districts:", err)
		return errorResponse(c, fiber.StatusInternalServerError, "Failed to fetch districts")
	}
	return c.JSON(fiber.Map{"status": "success", "data": districts, "count": len(districts)})
}

func (h *DatabaseController) DistrictsOfState(c *fiber.Ctx) error {
	var req stateIDRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	ctx := c.UserContext()

	state, err := h.store.StateByID(ctx, uint(req.StateID))
	if err != nil {
		return notFoundOr500(c, err, fmt.Sprintf("State with ID %d not found", req.StateID))
	}
	districts, err := h.store.DistrictsByState(ctx, state.ID)
	if err != nil {
		log.Println("❌ Error fetching districts:", err)
		return errorResponse(c, fiber.StatusInternalServerError, "Failed to fetch districts")
	}
	return c.JSON(fiber.Map{"status": "success", "state": state, "data": districts, "count": len(districts)})
}

type districtMarketsRequest struct {
	StateID    ID `json:"state_id" validate:"required"`
	DistrictID ID `json:"district_id" validate:"required"`
}

func (h *DatabaseController) MarketsOfStateDistrict(c *fiber.Ctx) error {
	var req districtMarketsRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	markets, err := h.store.MarketsByStateAndDistrict(c.UserContext(), uint(req.StateID), uint(req.DistrictID))
	if err != nil {
		log.Println("❌ Error fetching markets:", err)
		return errorResponse(c, fiber.StatusInternalServerError, "Failed to fetch markets")
	}
	if len(markets) == 0 {
		return errorResponse(c, fiber.StatusNotFound,
			fmt.Sprintf("No markets found for district %d in state %d", req.DistrictID, req.StateID))
	}
	return c.JSON(fiber.Map{"status": "success", "data": markets, "count": len(markets)})
}

func (h *DatabaseController) MarketsOfDistrict(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	ctx := c.UserContext()

	district, err := h.store.DistrictByID(ctx, id)
	if err != nil {
		return notFoundOr500(c, err, fmt.Sprintf("District with ID %d not found", id))
	}
	markets, err := h.store.MarketsByDistrict(ctx, district.ID)
	if err != nil {
		log.Println("❌ Error fetching markets:", err)
		return errorResponse(c, fiber.StatusInternalServerError, "Failed to fetch markets")
	}
	return c.JSON(fiber.Map{"status": "success", "district": district, "data": markets, "count": len(markets)})
}

func (h *DatabaseController) Search(c *fiber.Ctx) error {
	q := strings.TrimSpace(c.Query("q"))
	if q == "" {
		return errorResponse(c, fiber.StatusBadRequest, "Query parameter q is required")
	}
	result, err := h.store.SearchLocations(c.UserContext(), q)
	if err != nil {
		log.Println("❌ Error searching locations:", err)
		return errorResponse(c, fiber.StatusInternalServerError, "Search failed")
	}
	return c.JSON(fiber.Map{"status": "success", "query": q, "data": result})
}

// Yard lists stored price rows, narrowed by the optional state_id,
// district_id and market_id. Narrower ids require the wider ones.
func (h *DatabaseController) Yard(c *fiber.Ctx) error {
	var filter models.PriceFilter
	var err error
	if filter.StateID, err = queryID(c, "state_id"); err != nil {
		return err
	}
	if filter.DistrictID, err = queryID(c, "district_id"); err != nil {
		return err
	}
	if filter.MarketID, err = queryID(c, "market_id"); err != nil {
		return err
	}
	filter.Commodity = c.Query("commodity")
	filter.Limit = c.QueryInt("limit", 100)

	if filter.DistrictID != 0 && filter.StateID == 0 {
		return errorResponse(c, fiber.StatusBadRequest, "state_id is required when district_id is provided")
	}
	if filter.MarketID != 0 && filter.DistrictID == 0 {
		return errorResponse(c, fiber.StatusBadRequest, "state_id and district_id are required when market_id is provided")
	}

	ctx := c.UserContext()
	if filter.StateID != 0 {
		if _, err := h.store.StateByID(ctx, filter.StateID); err != nil {
			return notFoundOr500(c, err, fmt.Sprintf("State with ID %d not found", filter.StateID))
		}
	}
	if filter.DistrictID != 0 {
		district, err := h.store.DistrictByID(ctx, filter.DistrictID)
		if err != nil {
			return notFoundOr500(c, err, fmt.Sprintf("District with ID %d not found", filter.DistrictID))
		}
		if district.StateID != filter.StateID {
			return errorResponse(c, fiber.StatusNotFound,
				fmt.Sprintf("District with ID %d not found in state ID %d", filter.DistrictID, filter.StateID))
		}
	}

	rows, err := h.store.CommodityPrices(ctx, filter)
	if err != nil {
		log.Println("❌ Error retrieving commodity prices:", err)
		return errorResponse(c, fiber.StatusInternalServerError, "Error retrieving commodity prices")
	}
	return c.JSON(fiber.Map{
		"status":    "success",
		"message":   fmt.Sprintf("Retrieved %d commodity price records", len(rows)),
		"data":      rows,
		"count":     len(rows),
		"timestamp": time.Now(),
	})
}
