package database

import (
	"context"
	"strings"
	"time"

	"khedutbazaar/models"

	"gorm.io/gorm/clause"
)

const listingSelect = "p.*, s.name AS state_name, d.name AS district_name, m.name AS market_name"

// UpsertCommodityPrice inserts a price row or, when the same
// state/district/market/commodity/variety/date already exists, overwrites its
// prices and refreshes last_updated.
func (s *Store) UpsertCommodityPrice(ctx context.Context, rec *models.CommodityPrice) error {
	rec.Commodity = strings.TrimSpace(rec.Commodity)
	rec.Variety = strings.TrimSpace(rec.Variety)
	rec.PriceDate = strings.TrimSpace(rec.PriceDate)
	rec.LastUpdated = s.now()

	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "state_id"}, {Name: "district_id"}, {Name: "market_id"},
			{Name: "commodity"}, {Name: "variety"}, {Name: "price_date"},
		},
		DoUpdates: clause.AssignmentColumns([]string{"min_price", "max_price", "modal_price", "last_updated"}),
	}).Create(rec).Error
}

func (s *Store) CommodityPrices(ctx context.Context, filter models.PriceFilter) ([]models.PriceListing, error) {
	query := s.db.WithContext(ctx).
		Table("commodity_prices AS p").
		Select(listingSelect).
		Joins("JOIN states AS s ON s.id = p.state_id").
		Joins("JOIN districts AS d ON d.id = p.district_id").
		Joins("JOIN markets AS m ON m.id = p.market_id")

	if filter.StateID != 0 {
		query = query.Where("p.state_id = ?", filter.StateID)
	}
	if filter.DistrictID != 0 {
		query = query.Where("p.district_id = ?", filter.DistrictID)
	}
	if filter.MarketID != 0 {
		query = query.Where("p.market_id = ?", filter.MarketID)
	}
	if c := strings.TrimSpace(filter.Commodity); c != "" {
		query = query.Where("LOWER(p.commodity) LIKE ?", "%"+strings.ToLower(c)+"%")
	}

	limit := filter.Limit
	if limit <= 0 || limit > 1000 {
		limit = 100
	}

	var rows []models.PriceListing
	err := query.Order("p.last_updated DESC, p.id DESC").Limit(limit).Scan(&rows).Error
	return rows, err
}

// LatestPricePairs returns, for every commodity/variety of a market, the two
// most recently updated rows ordered by commodity then variety.
func (s *Store) LatestPricePairs(ctx context.Context, marketID uint) ([]models.PricePair, error) {
	var rows []models.PriceListing
	err := s.db.WithContext(ctx).
		Table("commodity_prices AS p").
		Select(listingSelect).
		Joins("JOIN states AS s ON s.id = p.state_id").
		Joins("JOIN districts AS d ON d.id = p.district_id").
		Joins("JOIN markets AS m ON m.id = p.market_id").
		Where("p.market_id = ?", marketID).
		Order("p.commodity, p.variety, p.last_updated DESC, p.id DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	var pairs []models.PricePair
	for i := 0; i < len(rows); {
		j := i + 1
		for j < len(rows) && rows[j].Commodity == rows[i].Commodity && rows[j].Variety == rows[i].Variety {
			j++
		}
		pair := models.PricePair{Latest: rows[i]}
		if j-i > 1 {
			prev := rows[i+1]
			pair.Previous = &prev
		}
		pairs = append(pairs, pair)
		i = j
	}
	return pairs, nil
}

// PriceSeries returns rows for one market/commodity/variety whose
// last_updated falls in [from, to], oldest first.
func (s *Store) PriceSeries(ctx context.Context, marketID uint, commodity, variety string, from, to time.Time) ([]models.PriceListing, error) {
	var rows []models.PriceListing
	err := s.db.WithContext(ctx).
		Table("commodity_prices AS p").
		Select(listingSelect).
		Joins("JOIN states AS s ON s.id = p.state_id").
		Joins("JOIN districts AS d ON d.id = p.district_id").
		Joins("JOIN markets AS m ON m.id = p.market_id").
		Where("p.market_id = ? AND p.commodity = ? AND p.variety = ?", marketID, strings.TrimSpace(commodity), strings.TrimSpace(variety)).
		Where("p.last_updated BETWEEN ? AND ?", from, to).
		Order("p.last_updated ASC, p.id ASC").
		Scan(&rows).Error
	return rows, err
}

// CommoditiesForMarket lists the distinct commodity/variety pairs a market has
// ever reported, most recently first seen first.
func (s *Store) CommoditiesForMarket(ctx context.Context, marketID uint) ([]models.CommodityVariety, error) {
	var rows []models.CommodityVariety
	err := s.db.WithContext(ctx).
		Model(&models.CommodityPrice{}).
		Select("MIN(id) AS id, commodity, variety").
		Where("market_id = ?", marketID).
		Group("commodity, variety").
		Order("id DESC").
		Scan(&rows).Error
	return rows, err
}

// LatestModalPrice is the modal price of the most recently updated row for a
// commodity in a market, as stored.
func (s *Store) LatestModalPrice(ctx context.Context, marketID uint, commodity string) (int, error) {
	var row models.CommodityPrice
	err := s.db.WithContext(ctx).
		Where("market_id = ? AND commodity = ?", marketID, strings.TrimSpace(commodity)).
		Order("last_updated DESC, id DESC").
		First(&row).Error
	if err != nil {
		return 0, notFound(err)
	}
	return row.ModalPrice, nil
}
