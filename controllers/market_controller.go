package controllers

import (
	"log"
	"strconv"

	"khedutbazaar/translation"

	"github.com/gofiber/fiber/v2"
)

type namedItem struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func itemName(i *namedItem) *string { return &i.Name }

type stateListRequest struct {
	Language string `json:"language"`
}

func (h *MobileController) StateList(c *fiber.Ctx) error {
	var req stateListRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	states, err := h.store.AllStates(c.UserContext())
	if err != nil {
		log.Println("❌ Error fetching states:", err)
		return errorResponse(c, fiber.StatusInternalServerError, "Failed to fetch states")
	}
	if len(states) == 0 {
		return errorResponse(c, fiber.StatusNotFound, "No states found")
	}

	items := make([]namedItem, 0, len(states))
	for _, s := range states {
		items = append(items, namedItem{ID: strconv.FormatUint(uint64(s.ID), 10), Name: s.Name})
	}
	items = translation.BatchTranslate(c.UserContext(), h.translator, items, normalizeLanguage(req.Language), itemName)
	return c.JSON(fiber.Map{"status": "success", "data": items})
}

type districtListRequest struct {
	StateID  ID     `json:"state_id" validate:"required"`
	Language string `json:"language"`
}

func (h *MobileController) DistrictList(c *fiber.Ctx) error {
	var req districtListRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	districts, err := h.store.DistrictsByState(c.UserContext(), uint(req.StateID))
	if err != nil {
		log.Println("❌ Error fetching districts:", err)
		return errorResponse(c, fiber.StatusInternalServerError, "Failed to fetch districts")
	}
	if len(districts) == 0 {
		return errorResponse(c, fiber.StatusNotFound, "No districts found for this state")
	}

	items := make([]namedItem, 0, len(districts))
	for _, d := range districts {
		items = append(items, namedItem{ID: strconv.FormatUint(uint64(d.ID), 10), Name: d.Name})
	}
	items = translation.BatchTranslate(c.UserContext(), h.translator, items, normalizeLanguage(req.Language), itemName)
	return c.JSON(fiber.Map{"status": "success", "data": items})
}

type marketListRequest struct {
	StateID  ID     `json:"stateid"`
	UserID   ID     `json:"userid"`
	Language string `json:"language"`
}

type marketItem struct {
	MarketID     string `json:"market_id"`
	MarketName   string `json:"market_name"`
	DistrictName string `json:"district_name"`
	StateName    string `json:"state_name"`
	IsFavorite   int    `json:"isFavorite"`
}

func marketItemName(m *marketItem) *string     { return &m.MarketName }
func marketItemDistrict(m *marketItem) *string { return &m.DistrictName }
func marketItemState(m *marketItem) *string    { return &m.StateName }

// MarketList lists markets of one state, or of every state when stateid is
// omitted. With a userid each market carries the user's favourite flag.
func (h *MobileController) MarketList(c *fiber.Ctx) error {
	var req marketListRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	ctx := c.UserContext()

	locations, err := h.store.MarketLocations(ctx, uint(req.StateID))
	if err != nil {
		log.Println("❌ Error fetching markets:", err)
		return errorResponse(c, fiber.StatusInternalServerError, "Failed to fetch markets")
	}
	if len(locations) == 0 {
		return errorResponse(c, fiber.StatusNotFound, "No markets found")
	}

	favorite := make(map[uint]bool)
	if req.UserID != 0 {
		favorites, err := h.store.Favorites(ctx, uint(req.UserID))
		if err != nil {
			log.Println("❌ Error fetching favorites:", err)
			return errorResponse(c, fiber.StatusInternalServerError, "Failed to fetch favorites")
		}
		for _, f := range favorites {
			favorite[f.MarketID] = true
		}
	}

	items := make([]marketItem, 0, len(locations))
	for _, l := range locations {
		item := marketItem{
			MarketID:     strconv.FormatUint(uint64(l.MarketID), 10),
			MarketName:   l.MarketName,
			DistrictName: l.DistrictName,
			StateName:    l.StateName,
		}
		if favorite[l.MarketID] {
			item.IsFavorite = 1
		}
		items = append(items, item)
	}
	items = translation.BatchTranslate(ctx, h.translator, items, normalizeLanguage(req.Language),
		marketItemName, marketItemDistrict, marketItemState)
	return c.JSON(fiber.Map{"status": "success", "data": items})
}
