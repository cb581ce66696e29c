package controllers

import (
	"log"
	"slices"
	"strconv"
	"strings"

	"khedutbazaar/models"
	"khedutbazaar/pricing"
	"khedutbazaar/translation"

	"github.com/gofiber/fiber/v2"
)

const defaultStatsDays = 7

// priceRecord is one price row as the app sees it: exposed prices, a trend
// status and a short date.
type priceRecord struct {
	ID          string `json:"id"`
	Commodity   string `json:"commodity"`
	Variety     string `json:"variety"`
	ModalPrice  int    `json:"modal_price"`
	MinPrice    int    `json:"min_price"`
	MaxPrice    int    `json:"max_price"`
	Status      string `json:"status"`
	PriceDate   string `json:"price_date"`
	MarketName  string `json:"market_name,omitempty"`
	LastUpdated string `json:"last_updated,omitempty"`
}

func recordCommodity(r *priceRecord) *string  { return &r.Commodity }
func recordVariety(r *priceRecord) *string    { return &r.Variety }
func recordStatus(r *priceRecord) *string     { return &r.Status }
func recordMarketName(r *priceRecord) *string { return &r.MarketName }

func newPriceRecord(p models.PriceListing, trend pricing.Trend) priceRecord {
	return priceRecord{
		ID:         strconv.FormatUint(uint64(p.ID), 10),
		Commodity:  p.Commodity,
		Variety:    p.Variety,
		ModalPrice: pricing.Exposed(p.ModalPrice),
		MinPrice:   pricing.Exposed(p.MinPrice),
		MaxPrice:   pricing.Exposed(p.MaxPrice),
		Status:     string(trend),
		PriceDate:  pricing.FormatPriceDate(p.PriceDate),
	}
}

type marketRequest struct {
	MarketID ID     `json:"market_id" validate:"required"`
	Language string `json:"language"`
}

// GetCropData returns, for every commodity/variety of a market, the latest
// price compared with the one before it.
func (h *MobileController) GetCropData(c *fiber.Ctx) error {
	var req marketRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	ctx := c.UserContext()

	pairs, err := h.store.LatestPricePairs(ctx, uint(req.MarketID))
	if err != nil {
		log.Println("❌ Error fetching crop data:", err)
		return errorResponse(c, fiber.StatusInternalServerError, "Failed to fetch crop data")
	}

	now := h.now()
	records := make([]priceRecord, 0, len(pairs))
	for _, pair := range pairs {
		var previous *int
		if pair.Previous != nil {
			previous = &pair.Previous.ModalPrice
		}
		rec := newPriceRecord(pair.Latest, pricing.Classify(pair.Latest.ModalPrice, previous))
		rec.MarketName = pair.Latest.MarketName
		rec.LastUpdated = pricing.TimeAgo(pair.Latest.LastUpdated, now)
		records = append(records, rec)
	}

	records = translation.BatchTranslate(ctx, h.translator, records, normalizeLanguage(req.Language),
		recordCommodity, recordVariety, recordMarketName, recordStatus)
	return c.JSON(fiber.Map{"status": "success", "data": records})
}

type commodityStatsRequest struct {
	Commodity string `json:"commodity" validate:"required"`
	Variety   string `json:"variety"`
	MarketID  ID     `json:"market_id" validate:"required"`
	Days      ID     `json:"days"`
	Language  string `json:"language"`
}

// CommodityStats returns the recent price history of one commodity in a
// market, newest first, with a summary. Commodity and variety may be given in
// any supported language.
func (h *MobileController) CommodityStats(c *fiber.Ctx) error {
	var req commodityStatsRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	ctx := c.UserContext()

	days := int(req.Days)
	if days <= 0 {
		days = defaultStatsDays
	}
	commodity := h.translator.DetectAndTranslateToEnglish(ctx, strings.TrimSpace(req.Commodity)).Text
	variety := strings.TrimSpace(req.Variety)
	if variety != "" {
		variety = h.translator.DetectAndTranslateToEnglish(ctx, variety).Text
	}

	now := h.now()
	rows, err := h.store.PriceSeries(ctx, uint(req.MarketID), commodity, variety, now.AddDate(0, 0, -days), now)
	if err != nil {
		log.Println("❌ Error fetching commodity stats:", err)
		return errorResponse(c, fiber.StatusInternalServerError, "Failed to fetch commodity stats")
	}
	if len(rows) == 0 {
		return errorResponse(c, fiber.StatusNotFound, "No data found for the selected filter")
	}

	modal := make([]int, len(rows))
	points := make([]pricing.Point, len(rows))
	for i, r := range rows {
		modal[i] = r.ModalPrice
		points[i] = pricing.Point{Min: r.MinPrice, Max: r.MaxPrice, Modal: r.ModalPrice}
	}
	trends := pricing.Trends(modal)

	records := make([]priceRecord, len(rows))
	for i, r := range rows {
		records[i] = newPriceRecord(r, trends[i])
	}
	slices.Reverse(records)

	records = translation.BatchTranslate(ctx, h.translator, records, normalizeLanguage(req.Language),
		recordCommodity, recordVariety, recordStatus)
	return c.JSON(fiber.Map{
		"status":      "success",
		"filter_days": days,
		"summary":     pricing.Summarize(points),
		"data":        records,
	})
}

type commodityItem struct {
	ID        string `json:"id"`
	Commodity string `json:"commodity"`
	Variety   string `json:"variety"`
}

func itemCommodity(i *commodityItem) *string { return &i.Commodity }
func itemVariety(i *commodityItem) *string   { return &i.Variety }

// CommodityBasedOnMarket lists the commodity/variety pairs a market reports.
func (h *MobileController) CommodityBasedOnMarket(c *fiber.Ctx) error {
	var req marketRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	ctx := c.UserContext()

	rows, err := h.store.CommoditiesForMarket(ctx, uint(req.MarketID))
	if err != nil {
		log.Println("❌ Error fetching commodities:", err)
		return errorResponse(c, fiber.StatusInternalServerError, "Failed to fetch commodities")
	}

	items := make([]commodityItem, 0, len(rows))
	for _, r := range rows {
		items = append(items, commodityItem{ID: strconv.FormatUint(uint64(r.ID), 10), Commodity: r.Commodity, Variety: r.Variety})
	}
	items = translation.BatchTranslate(ctx, h.translator, items, normalizeLanguage(req.Language), itemCommodity, itemVariety)
	return c.JSON(fiber.Map{"status": "success", "data": items})
}
