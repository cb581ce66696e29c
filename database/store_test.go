package database

import (
	"context"
	"testing"
	"time"

	"khedutbazaar/models"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	require.NoError(t, Migrate(db))
	return NewStore(db)
}

func seedLocations(t *testing.T, s *Store) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, s.UpsertState(ctx, 1, "Gujarat"))
	require.NoError(t, s.UpsertDistrict(ctx, 10, "Rajkot", 1))
	require.NoError(t, s.UpsertMarket(ctx, 100, "Gondal", 10, 1))
	require.NoError(t, s.UpsertMarket(ctx, 101, "Rajkot", 10, 1))
}

func TestUpsertLocationsIsIdempotent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	seedLocations(t, s)

	require.NoError(t, s.UpsertState(ctx, 1, " Gujarat State "))
	states, err := s.AllStates(ctx)
	require.NoError(t, err)
	require.Len(t, states, 1)
	assert.Equal(t, "Gujarat State", states[0].Name)

	id, err := s.StateIDByName(ctx, "gujarat state")
	require.NoError(t, err)
	assert.Equal(t, uint(1), id)

	_, err = s.StateIDByName(ctx, "Kerala")
	assert.ErrorIs(t, err, ErrNotFound)

	districtID, err := s.DistrictIDByName(ctx, "RAJKOT", 1)
	require.NoError(t, err)
	assert.Equal(t, uint(10), districtID)

	marketID, err := s.MarketIDByName(ctx, "gondal", 10)
	require.NoError(t, err)
	assert.Equal(t, uint(100), marketID)

	markets, err := s.MarketsByState(ctx, 1)
	require.NoError(t, err)
	require.Len(t, markets, 2)
	assert.Equal(t, "Rajkot", markets[0].DistrictName)

	locations, err := s.MarketLocations(ctx, 1)
	require.NoError(t, err)
	require.Len(t, locations, 2)
	assert.Equal(t, "Gujarat State", locations[0].StateName)
}

func TestUpsertCommodityPriceOverwritesSameDay(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	seedLocations(t, s)

	rec := &models.CommodityPrice{StateID: 1, DistrictID: 10, MarketID: 100, Commodity: "Wheat", Variety: "Lokwan",
		MinPrice: 2000, MaxPrice: 2500, ModalPrice: 2200, PriceDate: "2024-08-27"}
	require.NoError(t, s.UpsertCommodityPrice(ctx, rec))

	again := &models.CommodityPrice{StateID: 1, DistrictID: 10, MarketID: 100, Commodity: "Wheat", Variety: "Lokwan",
		MinPrice: 2100, MaxPrice: 2600, ModalPrice: 2300, PriceDate: "2024-08-27"}
	require.NoError(t, s.UpsertCommodityPrice(ctx, again))

	rows, err := s.CommodityPrices(ctx, models.PriceFilter{MarketID: 100})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 2300, rows[0].ModalPrice)
	assert.Equal(t, "Gondal", rows[0].MarketName)

	stats, err := s.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.Stats{States: 1, Districts: 1, Markets: 2, Commodities: 1}, stats)
}

func TestLatestPricePairs(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	seedLocations(t, s)

	base := time.Date(2024, 8, 20, 10, 0, 0, 0, time.UTC)
	insert := func(day int, commodity string, modal int) {
		at := base.AddDate(0, 0, day)
		s.WithClock(func() time.Time { return at })
		require.NoError(t, s.UpsertCommodityPrice(ctx, &models.CommodityPrice{
			StateID: 1, DistrictID: 10, MarketID: 100, Commodity: commodity, Variety: "Other",
			MinPrice: modal - 100, MaxPrice: modal + 100, ModalPrice: modal,
			PriceDate: at.Format("2006-01-02"),
		}))
	}
	insert(0, "Wheat", 2000)
	insert(1, "Wheat", 2100)
	insert(2, "Wheat", 2050)
	insert(0, "Cotton", 7000)

	pairs, err := s.LatestPricePairs(ctx, 100)
	require.NoError(t, err)
	require.Len(t, pairs, 2)

	assert.Equal(t, "Cotton", pairs[0].Latest.Commodity)
	assert.Nil(t, pairs[0].Previous)

	assert.Equal(t, "Wheat", pairs[1].Latest.Commodity)
	assert.Equal(t, 2050, pairs[1].Latest.ModalPrice)
	require.NotNil(t, pairs[1].Previous)
	assert.Equal(t, 2100, pairs[1].Previous.ModalPrice)

	modal, err := s.LatestModalPrice(ctx, 100, "Wheat")
	require.NoError(t, err)
	assert.Equal(t, 2050, modal)

	_, err = s.LatestModalPrice(ctx, 100, "Onion")
	assert.ErrorIs(t, err, ErrNotFound)

	series, err := s.PriceSeries(ctx, 100, "Wheat", "Other", base.AddDate(0, 0, 1), base.AddDate(0, 0, 3))
	require.NoError(t, err)
	require.Len(t, series, 2)
	assert.Equal(t, 2100, series[0].ModalPrice)

	commodities, err := s.CommoditiesForMarket(ctx, 100)
	require.NoError(t, err)
	assert.Len(t, commodities, 2)
}

func TestToggleFavorite(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	seedLocations(t, s)

	flag, err := s.ToggleFavorite(ctx, 7, 100)
	require.NoError(t, err)
	assert.Equal(t, 1, flag)

	favorites, err := s.Favorites(ctx, 7)
	require.NoError(t, err)
	require.Len(t, favorites, 1)
	assert.Equal(t, "Gondal", favorites[0].MarketName)
	assert.Equal(t, "Rajkot", favorites[0].DistrictName)

	flag, err = s.ToggleFavorite(ctx, 7, 100)
	require.NoError(t, err)
	assert.Equal(t, 0, flag)

	favorites, err = s.Favorites(ctx, 7)
	require.NoError(t, err)
	assert.Empty(t, favorites)

	flag, err = s.ToggleFavorite(ctx, 7, 100)
	require.NoError(t, err)
	assert.Equal(t, 1, flag)
}

func TestRegisterDevice(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	id, existed, err := s.RegisterDevice(ctx, "device-1", "token-a")
	require.NoError(t, err)
	assert.False(t, existed)

	again, existed, err := s.RegisterDevice(ctx, "device-1", "token-b")
	require.NoError(t, err)
	assert.True(t, existed)
	assert.Equal(t, id, again)

	token, err := s.DeviceToken(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "token-b", token)

	_, err = s.DeviceToken(ctx, id+1)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAlerts(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	seedLocations(t, s)

	alert := &models.Alert{UserID: 3, MarketID: 100, Commodity: " Wheat ", Conditions: "Greater", Amount: 400}
	require.NoError(t, s.AddAlert(ctx, alert))
	assert.Equal(t, "greater", alert.Conditions)

	listed, err := s.AlertsForUser(ctx, 3)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, "Gondal", listed[0].MarketName)
	assert.Equal(t, "Wheat", listed[0].Commodity)

	deleted, err := s.DeleteAlert(ctx, alert.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = s.DeleteAlert(ctx, alert.ID)
	require.NoError(t, err)
	assert.False(t, deleted)
}
