package models

import "time"

// CommodityPrice is one scraped price row. Prices are stored exactly as the
// source publishes them; the API divides them by five on the way out.
type CommodityPrice struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	StateID     uint      `gorm:"not null;uniqueIndex:unique_price,priority:1" json:"state_id"`
	DistrictID  uint      `gorm:"not null;uniqueIndex:unique_price,priority:2" json:"district_id"`
	MarketID    uint      `gorm:"not null;uniqueIndex:unique_price,priority:3;index:idx_market_commodity,priority:1" json:"market_id"`
	Commodity   string    `gorm:"type:varchar(100);not null;uniqueIndex:unique_price,priority:4;index:idx_market_commodity,priority:2" json:"commodity"`
	Variety     string    `gorm:"type:varchar(100);not null;uniqueIndex:unique_price,priority:5" json:"variety"`
	MinPrice    int       `gorm:"not null" json:"min_price"`
	MaxPrice    int       `gorm:"not null" json:"max_price"`
	ModalPrice  int       `gorm:"not null" json:"modal_price"`
	PriceDate   string    `gorm:"type:varchar(50);not null;uniqueIndex:unique_price,priority:6" json:"price_date"`
	LastUpdated time.Time `gorm:"index" json:"last_updated"`
	CreatedAt   time.Time `json:"created_at"`
}

// PriceListing is a price row joined with the names of its location.
type PriceListing struct {
	CommodityPrice
	StateName    string `json:"state_name"`
	DistrictName string `json:"district_name"`
	MarketName   string `json:"market_name"`
}

// PriceFilter narrows CommodityPrices; zero fields are ignored.
type PriceFilter struct {
	StateID    uint
	DistrictID uint
	MarketID   uint
	Commodity  string
	Limit      int
}

// PricePair holds the newest row for a commodity/variety and, when present,
// the row before it.
type PricePair struct {
	Latest   PriceListing  `json:"latest"`
	Previous *PriceListing `json:"previous,omitempty"`
}

type CommodityVariety struct {
	ID        uint   `json:"id"`
	Commodity string `json:"commodity"`
	Variety   string `json:"variety"`
}
