package models

import "time"

// State, District and Market use the ids assigned by the upstream price site.
type State struct {
	ID        uint      `gorm:"primaryKey;autoIncrement:false" json:"id"`
	Name      string    `gorm:"type:varchar(255);not null;uniqueIndex:unique_state_name" json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

type District struct {
	ID        uint      `gorm:"primaryKey;autoIncrement:false" json:"id"`
	Name      string    `gorm:"type:varchar(255);not null;uniqueIndex:unique_district_state,priority:1" json:"name"`
	StateID   uint      `gorm:"not null;index;uniqueIndex:unique_district_state,priority:2" json:"state_id"`
	CreatedAt time.Time `json:"created_at"`
}

type Market struct {
	ID         uint      `gorm:"primaryKey;autoIncrement:false" json:"id"`
	Name       string    `gorm:"type:varchar(255);not null;uniqueIndex:unique_market_district,priority:1" json:"name"`
	DistrictID uint      `gorm:"not null;index;uniqueIndex:unique_market_district,priority:2" json:"district_id"`
	StateID    uint      `gorm:"not null;index" json:"state_id"`
	CreatedAt  time.Time `json:"created_at"`
}

// MarketWithDistrict is a market row joined with its district name.
type MarketWithDistrict struct {
	ID           uint   `json:"id"`
	Name         string `json:"name"`
	DistrictID   uint   `json:"district_id"`
	StateID      uint   `json:"state_id"`
	DistrictName string `json:"district_name"`
}

// MarketLocation carries the full state/district/market naming chain of a market.
type MarketLocation struct {
	MarketID     uint   `json:"market_id"`
	MarketName   string `json:"market_name"`
	DistrictName string `json:"district_name"`
	StateName    string `json:"state_name"`
}

type LocationSearch struct {
	States    []State    `json:"states"`
	Districts []District `json:"districts"`
	Markets   []Market   `json:"markets"`
}

type Stats struct {
	States      int64 `json:"states"`
	Districts   int64 `json:"districts"`
	Markets     int64 `json:"markets"`
	Commodities int64 `json:"commodities"`
}
