package database

import (
	"context"
	"strings"
	"time"

	"khedutbazaar/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Store is the relational store of locations, prices and user data.
type Store struct {
	db  *gorm.DB
	now func() time.Time
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db, now: time.Now}
}

// WithClock replaces the clock used to stamp last_updated.
func (s *Store) WithClock(now func() time.Time) *Store {
	s.now = now
	return s
}

// Ping checks that the database answers.
func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (s *Store) UpsertState(ctx context.Context, id uint, name string) error {
	state := models.State{ID: id, Name: strings.TrimSpace(name)}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"name"}),
	}).Create(&state).Error
}

func (s *Store) UpsertDistrict(ctx context.Context, id uint, name string, stateID uint) error {
	district := models.District{ID: id, Name: strings.TrimSpace(name), StateID: stateID}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "state_id"}),
	}).Create(&district).Error
}

func (s *Store) UpsertMarket(ctx context.Context, id uint, name string, districtID, stateID uint) error {
	market := models.Market{ID: id, Name: strings.TrimSpace(name), DistrictID: districtID, StateID: stateID}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "district_id", "state_id"}),
	}).Create(&market).Error
}

func (s *Store) StateIDByName(ctx context.Context, name string) (uint, error) {
	var state models.State
	err := s.db.WithContext(ctx).
		Where("LOWER(name) = LOWER(?)", strings.TrimSpace(name)).
		First(&state).Error
	if err != nil {
		return 0, notFound(err)
	}
	return state.ID, nil
}

func (s *Store) DistrictIDByName(ctx context.Context, name string, stateID uint) (uint, error) {
	var district models.District
	err := s.db.WithContext(ctx).
		Where("LOWER(name) = LOWER(?) AND state_id = ?", strings.TrimSpace(name), stateID).
		First(&district).Error
	if err != nil {
		return 0, notFound(err)
	}
	return district.ID, nil
}

func (s *Store) MarketIDByName(ctx context.Context, name string, districtID uint) (uint, error) {
	var market models.Market
	err := s.db.WithContext(ctx).
		Where("LOWER(name) = LOWER(?) AND district_id = ?", strings.TrimSpace(name), districtID).
		First(&market).Error
	if err != nil {
		return 0, notFound(err)
	}
	return market.ID, nil
}

func (s *Store) AllStates(ctx context.Context) ([]models.State, error) {
	var states []models.State
	err := s.db.WithContext(ctx).Order("name").Find(&states).Error
	return states, err
}

func (s *Store) StateByID(ctx context.Context, id uint) (*models.State, error) {
	var state models.State
	if err := s.db.WithContext(ctx).First(&state, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &state, nil
}

func (s *Store) DistrictsByState(ctx context.Context, stateID uint) ([]models.District, error) {
	var districts []models.District
	err := s.db.WithContext(ctx).Where("state_id = ?", stateID).Order("name").Find(&districts).Error
	return districts, err
}

func (s *Store) AllDistricts(ctx context.Context) ([]models.District, error) {
	var districts []models.District
	err := s.db.WithContext(ctx).Order("state_id, name").Find(&districts).Error
	return districts, err
}

func (s *Store) DistrictByID(ctx context.Context, id uint) (*models.District, error) {
	var district models.District
	if err := s.db.WithContext(ctx).First(&district, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &district, nil
}

func (s *Store) MarketsByDistrict(ctx context.Context, districtID uint) ([]models.Market, error) {
	var markets []models.Market
	err := s.db.WithContext(ctx).Where("district_id = ?", districtID).Order("name").Find(&markets).Error
	return markets, err
}

func (s *Store) MarketsByStateAndDistrict(ctx context.Context, stateID, districtID uint) ([]models.Market, error) {
	var markets []models.Market
	err := s.db.WithContext(ctx).
		Where("state_id = ? AND district_id = ?", stateID, districtID).
		Order("name").
		Find(&markets).Error
	return markets, err
}

func (s *Store) MarketsByState(ctx context.Context, stateID uint) ([]models.MarketWithDistrict, error) {
	var markets []models.MarketWithDistrict
	err := s.db.WithContext(ctx).
		Table("markets AS m").
		Select("m.id, m.name, m.district_id, m.state_id, d.name AS district_name").
		Joins("JOIN districts AS d ON d.id = m.district_id").
		Where("m.state_id = ?", stateID).
		Order("d.name, m.name").
		Scan(&markets).Error
	return markets, err
}

// MarketLocations lists markets with their full naming chain, restricted to
// one state unless stateID is zero.
func (s *Store) MarketLocations(ctx context.Context, stateID uint) ([]models.MarketLocation, error) {
	query := s.db.WithContext(ctx).
		Table("markets AS m").
		Select("m.id AS market_id, m.name AS market_name, d.name AS district_name, s.name AS state_name").
		Joins("JOIN districts AS d ON d.id = m.district_id").
		Joins("JOIN states AS s ON s.id = d.state_id")
	if stateID != 0 {
		query = query.Where("m.state_id = ?", stateID)
	}

	var markets []models.MarketLocation
	err := query.Order("s.name, d.name, m.name").Scan(&markets).Error
	return markets, err
}

// SearchLocations matches states, districts and markets whose name contains term.
func (s *Store) SearchLocations(ctx context.Context, term string) (*models.LocationSearch, error) {
	pattern := "%" + strings.ToLower(strings.TrimSpace(term)) + "%"
	result := &models.LocationSearch{}

	db := s.db.WithContext(ctx)
	if err := db.Where("LOWER(name) LIKE ?", pattern).Order("name").Limit(50).Find(&result.States).Error; err != nil {
		return nil, err
	}
	if err := db.Where("LOWER(name) LIKE ?", pattern).Order("name").Limit(50).Find(&result.Districts).Error; err != nil {
		return nil, err
	}
	if err := db.Where("LOWER(name) LIKE ?", pattern).Order("name").Limit(50).Find(&result.Markets).Error; err != nil {
		return nil, err
	}
	return result, nil
}

func (s *Store) Stats(ctx context.Context) (models.Stats, error) {
	var stats models.Stats
	db := s.db.WithContext(ctx)
	if err := db.Model(&models.State{}).Count(&stats.States).Error; err != nil {
		return stats, err
	}
	if err := db.Model(&models.District{}).Count(&stats.Districts).Error; err != nil {
		return stats, err
	}
	if err := db.Model(&models.Market{}).Count(&stats.Markets).Error; err != nil {
		return stats, err
	}
	if err := db.Model(&models.CommodityPrice{}).Count(&stats.Commodities).Error; err != nil {
		return stats, err
	}
	return stats, nil
}
