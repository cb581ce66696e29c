package models

import "time"

// LoginDevice maps an app install to its push token. Its primary key is the
// user id handed back to the client.
type LoginDevice struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	DeviceID  string    `gorm:"type:varchar(255);not null;uniqueIndex" json:"device_id"`
	Token     *string   `gorm:"type:text" json:"token"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (LoginDevice) TableName() string {
	return "login"
}

type FavoriteMarket struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	UserID     uint      `gorm:"not null;uniqueIndex:unique_user_market,priority:1" json:"user_id"`
	MarketID   uint      `gorm:"column:marketid;not null;uniqueIndex:unique_user_market,priority:2" json:"marketid"`
	IsFavorite int       `gorm:"column:isFavorite;not null;default:1" json:"isFavorite"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type Alert struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	UserID     uint      `gorm:"column:userid;not null;index" json:"userid"`
	MarketID   uint      `gorm:"column:marketid;not null" json:"marketid"`
	Commodity  string    `gorm:"type:varchar(100);not null" json:"commodity"`
	Variety    string    `gorm:"type:varchar(100)" json:"variety"`
	Conditions string    `gorm:"type:varchar(20);not null" json:"conditions"`
	Amount     float64   `gorm:"not null" json:"amount"`
	CreatedAt  time.Time `json:"created_at"`
}

type AlertListing struct {
	Alert
	MarketName string `json:"market_name"`
}

type Banner struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Title       string    `gorm:"type:varchar(255);not null" json:"title"`
	Description string    `gorm:"type:text" json:"description"`
	Language    string    `gorm:"type:varchar(10);not null;default:'en'" json:"language"`
	CreatedAt   time.Time `json:"-"`
}

func (Banner) TableName() string {
	return "banner"
}

// All returns every model the service migrates.
func All() []interface{} {
	return []interface{}{
		&State{}, &District{}, &Market{}, &CommodityPrice{},
		&LoginDevice{}, &FavoriteMarket{}, &Alert{}, &Banner{},
	}
}
