package controllers

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"khedutbazaar/config"
	"khedutbazaar/database"
	"khedutbazaar/middleware"
	"khedutbazaar/scheduler"
	"khedutbazaar/scraper"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubStateScraper struct {
	mu    sync.Mutex
	calls []uint
}

func (s *stubStateScraper) ScrapeStateByID(_ context.Context, id uint) scraper.Report {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, id)
	return scraper.Report{Status: scraper.StatusSuccess, StateID: id, Successful: []string{"Rajkot"}, Total: 1}
}

// newAdminEnv wires the scrape, scheduler and database controllers. The
// scraper points at a closed port so nothing reaches the network.
func newAdminEnv(t *testing.T) (*testEnv, *stubStateScraper) {
	t.Helper()
	env := newTestEnv(t)
	app := fiber.New(fiber.Config{ErrorHandler: middleware.ErrorHandler})

	s := scraper.New(env.store, config.ScraperConfig{BaseURL: "http://127.0.0.1:1", Timeout: time.Second, RatePerSecond: 100})
	scrape := NewScrapeController(env.store, s, scraper.NewAutomated(s))
	app.Get("/scrape/yard", scrape.ScrapeYard)
	app.Get("/scrape/markets/:state_id", scrape.ScrapeMarketsForState)
	app.Get("/automated/scrape/district/:id", scrape.AutomatedDistrict)
	app.Get("/automated/scrape/state/:id", scrape.AutomatedState)
	app.Post("/automated/scrape/bulk", scrape.AutomatedBulk)
	app.Get("/automated/status", scrape.AutomatedStatus)

	stub := &stubStateScraper{}
	file := scheduler.NewConfigFile(filepath.Join(t.TempDir(), "scraping_config.json"))
	sched := NewSchedulerController(scheduler.New(file, stub, nil))
	app.Post("/scheduler/start", sched.Start)
	app.Post("/scheduler/stop", sched.Stop)
	app.Get("/scheduler/status", sched.Status)
	app.Post("/scheduler/run-now", sched.RunNow)
	app.Post("/scheduler/add-state", sched.AddState)
	app.Post("/scheduler/remove-state", sched.RemoveState)
	app.Get("/scheduler/scheduled-items", sched.ScheduledItems)

	db := NewDatabaseController(env.store)
	app.Get("/api/database/health", db.Health)
	app.Get("/api/database/stats", db.Stats)
	app.Get("/api/database/states", db.States)
	app.Get("/api/database/states/:id/markets", db.MarketsOfState)
	app.Get("/api/database/districts", db.Districts)
	app.Post("/api/database/states/district", db.DistrictsOfState)
	app.Post("/api/database/states/district/markets", db.MarketsOfStateDistrict)
	app.Get("/api/database/districts/:id/markets", db.MarketsOfDistrict)
	app.Get("/api/database/search", db.Search)
	app.Get("/api/database/yard", db.Yard)

	tr := NewTranslationController(env.mobile.translator)
	app.Get("/api/translations/languages", tr.Languages)
	app.Post("/api/translations/custom", tr.AddCustom)
	app.Post("/API/statelist", env.mobile.StateList)

	env.app = app
	return env, stub
}

func TestScrapeYardValidation(t *testing.T) {
	env, _ := newAdminEnv(t)
	env.seedLocations(t)

	code, body := env.call(t, "GET", "/scrape/yard?state_id=1", nil)
	assert.Equal(t, fiber.StatusBadRequest, code)
	assert.Equal(t, "Missing required parameters: state_id, district_id", body["message"])

	code, body = env.call(t, "GET", "/scrape/yard?state_id=x&district_id=10", nil)
	assert.Equal(t, fiber.StatusBadRequest, code)
	assert.Equal(t, "state_id must be a number", body["message"])

	code, body = env.call(t, "GET", "/scrape/yard?state_id=9&district_id=10", nil)
	assert.Equal(t, fiber.StatusNotFound, code)
	assert.Equal(t, "State with ID 9 not found", body["message"])

	code, body = env.call(t, "GET", "/scrape/yard?state_id=1&district_id=11", nil)
	assert.Equal(t, fiber.StatusNotFound, code)
	assert.Equal(t, "District with ID 11 not found in state Gujarat", body["message"])

	code, body = env.call(t, "GET", "/scrape/yard?state_id=1&district_id=10&market_id=555", nil)
	assert.Equal(t, fiber.StatusNotFound, code)
	assert.Equal(t, "Market with ID 555 not found in district Rajkot", body["message"])

	code, body = env.call(t, "GET", "/scrape/yard?state_id=1&district_id=10", nil)
	assert.Equal(t, fiber.StatusInternalServerError, code)
	assert.Equal(t, "error", body["status"])
	assert.Equal(t, []interface{}{"Gujarat/Rajkot"}, body["failed_locations"])

	code, _ = env.call(t, "GET", "/scrape/markets/abc", nil)
	assert.Equal(t, fiber.StatusBadRequest, code)
}

func TestScrapeFailureStatus(t *testing.T) {
	assert.Equal(t, fiber.StatusNotFound, scrapeFailureStatus(fmt.Errorf("Gujarat/Rajkot: %w", scraper.ErrNoPriceRows)))
	assert.Equal(t, fiber.StatusNotFound, scrapeFailureStatus(scraper.ErrNoPriceTable))
	assert.Equal(t, fiber.StatusNotFound, scrapeFailureStatus(database.ErrNotFound))
	assert.Equal(t, fiber.StatusInternalServerError, scrapeFailureStatus(errors.New("upstream returned 502")))
}

func TestAutomatedEndpoints(t *testing.T) {
	env, _ := newAdminEnv(t)
	env.seedLocations(t)

	code, body := env.call(t, "GET", "/automated/scrape/district/77", nil)
	assert.Equal(t, fiber.StatusNotFound, code)
	assert.Equal(t, scraper.StatusError, body["status"])

	code, body = env.call(t, "GET", "/automated/scrape/state/2", nil)
	assert.Equal(t, fiber.StatusNotFound, code)
	assert.Equal(t, scraper.StatusError, body["status"])

	code, body = env.call(t, "POST", "/automated/scrape/bulk", fiber.Map{"district_ids": []int{}})
	assert.Equal(t, fiber.StatusBadRequest, code)
	assert.Equal(t, "district_ids must have at least 1 entries", body["message"])

	code, body = env.call(t, "POST", "/automated/scrape/bulk", fiber.Map{"district_ids": []string{"77", "78"}})
	assert.Equal(t, fiber.StatusOK, code)
	assert.Equal(t, float64(2), body["failed"])
	assert.Len(t, body["results"], 2)

	code, body = env.call(t, "GET", "/automated/status", nil)
	assert.Equal(t, fiber.StatusOK, code)
	stats := body["stats"].(map[string]interface{})
	assert.Equal(t, float64(2), stats["markets"])
}

func TestSchedulerEndpoints(t *testing.T) {
	env, stub := newAdminEnv(t)

	code, body := env.call(t, "POST", "/scheduler/add-state", fiber.Map{"state_id": "4"})
	require.Equal(t, fiber.StatusOK, code, body)

	code, body = env.call(t, "POST", "/scheduler/add-state", fiber.Map{"state_id": 4})
	assert.Equal(t, fiber.StatusBadRequest, code)
	assert.Equal(t, "State 4 is already scheduled", body["message"])

	code, body = env.call(t, "GET", "/scheduler/scheduled-items", nil)
	assert.Equal(t, fiber.StatusOK, code)
	items := body["data"].(map[string]interface{})
	assert.Equal(t, []interface{}{float64(4)}, items["states_to_scrape"])

	code, body = env.call(t, "POST", "/scheduler/run-now?wait=true", nil)
	require.Equal(t, fiber.StatusOK, code, body)
	assert.Equal(t, []uint{4}, stub.calls)

	code, _ = env.call(t, "POST", "/scheduler/start", nil)
	assert.Equal(t, fiber.StatusOK, code)
	code, body = env.call(t, "POST", "/scheduler/start", nil)
	assert.Equal(t, fiber.StatusBadRequest, code)
	assert.Equal(t, scheduler.ErrAlreadyRunning.Error(), body["message"])

	code, body = env.call(t, "GET", "/scheduler/status", nil)
	assert.Equal(t, fiber.StatusOK, code)
	status := body["data"].(map[string]interface{})
	assert.Equal(t, true, status["is_running"])
	assert.NotNil(t, status["last_run"])

	code, _ = env.call(t, "POST", "/scheduler/stop", nil)
	assert.Equal(t, fiber.StatusOK, code)
	code, _ = env.call(t, "POST", "/scheduler/stop", nil)
	assert.Equal(t, fiber.StatusBadRequest, code)

	code, _ = env.call(t, "POST", "/scheduler/remove-state", fiber.Map{"state_id": 4})
	assert.Equal(t, fiber.StatusOK, code)
	code, _ = env.call(t, "POST", "/scheduler/remove-state", fiber.Map{"state_id": 4})
	assert.Equal(t, fiber.StatusNotFound, code)
}

func TestDatabaseEndpoints(t *testing.T) {
	env, _ := newAdminEnv(t)
	env.seedLocations(t)
	env.seedPrice(t, time.Now(), "Wheat", "Lokwan", 2000)

	code, body := env.call(t, "GET", "/api/database/health", nil)
	assert.Equal(t, fiber.StatusOK, code)
	assert.Equal(t, "healthy", body["status"])

	_, body = env.call(t, "GET", "/api/database/stats", nil)
	stats := body["data"].(map[string]interface{})
	assert.Equal(t, float64(1), stats["commodities"])

	_, body = env.call(t, "GET", "/api/database/states", nil)
	assert.Equal(t, float64(1), body["count"])

	code, body = env.call(t, "POST", "/api/database/states/district", fiber.Map{"state_id": 3})
	assert.Equal(t, fiber.StatusNotFound, code)
	assert.Equal(t, "State with ID 3 not found", body["message"])

	_, body = env.call(t, "POST", "/api/database/states/district", fiber.Map{"state_id": 1})
	assert.Equal(t, float64(1), body["count"])

	_, body = env.call(t, "POST", "/api/database/states/district/markets", fiber.Map{"state_id": 1, "district_id": 10})
	assert.Equal(t, float64(2), body["count"])

	_, body = env.call(t, "GET", "/api/database/districts", nil)
	assert.Equal(t, float64(1), body["count"])

	code, body = env.call(t, "GET", "/api/database/states/1/markets", nil)
	assert.Equal(t, fiber.StatusOK, code)
	markets := dataList(t, body, "data")
	require.Len(t, markets, 2)
	assert.Equal(t, "Gondal", markets[0]["name"])
	assert.Equal(t, "Rajkot", markets[0]["district_name"])

	code, _ = env.call(t, "GET", "/api/database/states/5/markets", nil)
	assert.Equal(t, fiber.StatusNotFound, code)

	code, _ = env.call(t, "GET", "/api/database/districts/99/markets", nil)
	assert.Equal(t, fiber.StatusNotFound, code)

	code, _ = env.call(t, "GET", "/api/database/search", nil)
	assert.Equal(t, fiber.StatusBadRequest, code)

	_, body = env.call(t, "GET", "/api/database/search?q=raj", nil)
	result := body["data"].(map[string]interface{})
	assert.Len(t, result["districts"], 1)
	assert.Len(t, result["markets"], 1)

	code, body = env.call(t, "GET", "/api/database/yard?district_id=10", nil)
	assert.Equal(t, fiber.StatusBadRequest, code)
	assert.Equal(t, "state_id is required when district_id is provided", body["message"])

	code, body = env.call(t, "GET", "/api/database/yard?state_id=1&district_id=10&market_id=100", nil)
	assert.Equal(t, fiber.StatusOK, code)
	assert.Equal(t, float64(1), body["count"])
	rows := dataList(t, body, "data")
	assert.Equal(t, "Gondal", rows[0]["market_name"])
	assert.Equal(t, float64(2000), rows[0]["modal_price"])
}

func TestTranslationEndpoints(t *testing.T) {
	env, _ := newAdminEnv(t)
	env.seedLocations(t)

	code, body := env.call(t, "GET", "/api/translations/languages", nil)
	assert.Equal(t, fiber.StatusOK, code)
	languages := body["data"].(map[string]interface{})
	assert.Equal(t, "ગુજરાતી", languages["gu"])
	assert.Equal(t, float64(0), body["custom_count"])

	_, body = env.call(t, "POST", "/API/statelist", fiber.Map{"language": "hi"})
	assert.Equal(t, "गुजरात", dataList(t, body, "data")[0]["name"])

	code, body = env.call(t, "POST", "/api/translations/custom", fiber.Map{"text": "Gujarat", "translation": "गुर्जर", "target": "fr"})
	assert.Equal(t, fiber.StatusBadRequest, code)
	assert.Equal(t, "target must be one of: en, hi, gu", body["message"])

	code, body = env.call(t, "POST", "/api/translations/custom", fiber.Map{"text": "Gujarat", "translation": "गुर्जर", "target": "hi"})
	require.Equal(t, fiber.StatusOK, code, body)

	_, body = env.call(t, "POST", "/API/statelist", fiber.Map{"language": "hi"})
	assert.Equal(t, "गुर्जर", dataList(t, body, "data")[0]["name"])

	_, body = env.call(t, "GET", "/api/translations/languages", nil)
	assert.Equal(t, float64(1), body["custom_count"])
}
