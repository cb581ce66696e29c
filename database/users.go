package database

import (
	"context"
	"errors"
	"strings"

	"khedutbazaar/models"

	"gorm.io/gorm"
)

// RegisterDevice records a device and its push token. An existing device has
// its token replaced when a non-empty token differs. It returns the user id and whether the
// device was already known.
func (s *Store) RegisterDevice(ctx context.Context, deviceID, token string) (uint, bool, error) {
	deviceID = strings.TrimSpace(deviceID)
	token = strings.TrimSpace(token)

	var device models.LoginDevice
	existed := false
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("device_id = ?", deviceID).First(&device).Error
		switch {
		case err == nil:
			existed = true
			if token != "" && (device.Token == nil || *device.Token != token) {
				return tx.Model(&device).Update("token", token).Error
			}
			return nil
		case errors.Is(err, gorm.ErrRecordNotFound):
			device = models.LoginDevice{DeviceID: deviceID}
			if token != "" {
				device.Token = &token
			}
			return tx.Create(&device).Error
		default:
			return err
		}
	})
	if err != nil {
		return 0, false, err
	}
	return device.ID, existed, nil
}

// DeviceToken returns the push token registered for a user.
func (s *Store) DeviceToken(ctx context.Context, userID uint) (string, error) {
	var device models.LoginDevice
	err := s.db.WithContext(ctx).
		Where("id = ? AND token IS NOT NULL AND token <> ''", userID).
		First(&device).Error
	if err != nil {
		return "", notFound(err)
	}
	return *device.Token, nil
}

// ToggleFavorite adds a market to a user's favorites, or flips the flag when
// the pair is already known. It returns the new flag value.
func (s *Store) ToggleFavorite(ctx context.Context, userID, marketID uint) (int, error) {
	var fav models.FavoriteMarket
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("user_id = ? AND marketid = ?", userID, marketID).First(&fav).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			fav = models.FavoriteMarket{UserID: userID, MarketID: marketID, IsFavorite: 1}
			return tx.Create(&fav).Error
		}
		if err != nil {
			return err
		}
		fav.IsFavorite = 1 - fav.IsFavorite
		return tx.Model(&fav).Update("isFavorite", fav.IsFavorite).Error
	})
	if err != nil {
		return 0, err
	}
	return fav.IsFavorite, nil
}

// Favorites lists the markets a user currently has flagged, most recently
// toggled first.
func (s *Store) Favorites(ctx context.Context, userID uint) ([]models.MarketLocation, error) {
	var favorites []models.MarketLocation
	err := s.db.WithContext(ctx).
		Table("favorite_markets AS f").
		Select("f.marketid AS market_id, m.name AS market_name, d.name AS district_name, s.name AS state_name").
		Joins("JOIN markets AS m ON m.id = f.marketid").
		Joins("LEFT JOIN districts AS d ON d.id = m.district_id").
		Joins("LEFT JOIN states AS s ON s.id = d.state_id").
		Where("f.user_id = ? AND f.isFavorite = 1", userID).
		Order("f.updated_at DESC").
		Scan(&favorites).Error
	return favorites, err
}

func (s *Store) AddAlert(ctx context.Context, alert *models.Alert) error {
	alert.Commodity = strings.TrimSpace(alert.Commodity)
	alert.Variety = strings.TrimSpace(alert.Variety)
	alert.Conditions = strings.ToLower(strings.TrimSpace(alert.Conditions))
	return s.db.WithContext(ctx).Create(alert).Error
}

// DeleteAlert removes an alert and reports whether it existed.
func (s *Store) DeleteAlert(ctx context.Context, id uint) (bool, error) {
	res := s.db.WithContext(ctx).Delete(&models.Alert{}, id)
	return res.RowsAffected > 0, res.Error
}

func (s *Store) AlertsForUser(ctx context.Context, userID uint) ([]models.AlertListing, error) {
	var alerts []models.AlertListing
	err := s.db.WithContext(ctx).
		Table("alerts AS a").
		Select("a.*, m.name AS market_name").
		Joins("LEFT JOIN markets AS m ON m.id = a.marketid").
		Where("a.userid = ?", userID).
		Order("a.id DESC").
		Scan(&alerts).Error
	return alerts, err
}

func (s *Store) AllAlerts(ctx context.Context) ([]models.Alert, error) {
	var alerts []models.Alert
	err := s.db.WithContext(ctx).Order("id").Find(&alerts).Error
	return alerts, err
}

func (s *Store) Banners(ctx context.Context) ([]models.Banner, error) {
	var banners []models.Banner
	err := s.db.WithContext(ctx).Order("id DESC").Find(&banners).Error
	return banners, err
}
