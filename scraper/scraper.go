package scraper

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"khedutbazaar/config"
	"khedutbazaar/models"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"
)

var (
	ErrNoStates    = errors.New("no states in database, scrape states first")
	ErrNoDistricts = errors.New("no districts found")
	ErrNoMarkets   = errors.New("no markets found")
)

// Store is the persistence the scraper writes into and resolves names against.
type Store interface {
	UpsertState(ctx context.Context, id uint, name string) error
	UpsertDistrict(ctx context.Context, id uint, name string, stateID uint) error
	UpsertMarket(ctx context.Context, id uint, name string, districtID, stateID uint) error
	UpsertCommodityPrice(ctx context.Context, rec *models.CommodityPrice) error

	AllStates(ctx context.Context) ([]models.State, error)
	StateByID(ctx context.Context, id uint) (*models.State, error)
	DistrictByID(ctx context.Context, id uint) (*models.District, error)
	DistrictsByState(ctx context.Context, stateID uint) ([]models.District, error)
	MarketsByStateAndDistrict(ctx context.Context, stateID, districtID uint) ([]models.Market, error)

	StateIDByName(ctx context.Context, name string) (uint, error)
	DistrictIDByName(ctx context.Context, name string, stateID uint) (uint, error)
	MarketIDByName(ctx context.Context, name string, districtID uint) (uint, error)

	Stats(ctx context.Context) (models.Stats, error)
}

// Scraper fetches location lists and price tables from the price site and
// stores them. Every outbound request waits on a shared rate limiter.
type Scraper struct {
	store   Store
	http    *resty.Client
	limiter *rate.Limiter
	baseURL string
}

func New(store Store, cfg config.ScraperConfig) *Scraper {
	limit := rate.Inf
	if cfg.RatePerSecond > 0 {
		limit = rate.Limit(cfg.RatePerSecond)
	}

	s := &Scraper{
		store:   store,
		limiter: rate.NewLimiter(limit, 1),
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
	}

	s.http = resty.New().
		SetTimeout(cfg.Timeout).
		SetHeaders(map[string]string{
			"User-Agent":      "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36",
			"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8",
			"Accept-Language": "en-US,en;q=0.5",
		}).
		SetRetryCount(cfg.Retries).
		SetRetryWaitTime(time.Second).
		SetRetryMaxWaitTime(10 * time.Second).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			if err != nil {
				return true
			}
			return r.StatusCode() == http.StatusTooManyRequests || r.StatusCode() >= 500
		}).
		OnBeforeRequest(func(_ *resty.Client, r *resty.Request) error {
			return s.limiter.Wait(r.Context())
		})
	return s
}

func (s *Scraper) listingURL(segments ...string) string {
	parts := append([]string{s.baseURL, "prices", "all"}, segments...)
	return strings.Join(parts, "/")
}

func (s *Scraper) get(ctx context.Context, url string) (*goquery.Document, error) {
	r, err := s.http.R().SetContext(ctx).Get(url)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", url, err)
	}
	if r.IsError() {
		return nil, fmt.Errorf("GET %s: %s", url, r.Status())
	}
	return goquery.NewDocumentFromReader(bytes.NewReader(r.Body()))
}

func (s *Scraper) postForm(ctx context.Context, url string, form map[string]string) (*goquery.Document, error) {
	r, err := s.http.R().SetContext(ctx).SetFormData(form).Post(url)
	if err != nil {
		return nil, fmt.Errorf("POST %s: %w", url, err)
	}
	if r.IsError() {
		return nil, fmt.Errorf("POST %s: %s", url, r.Status())
	}
	return goquery.NewDocumentFromReader(bytes.NewReader(r.Body()))
}

// fetchOptions loads the listing page for its CSRF token and posts to one of
// the option-list endpoints.
func (s *Scraper) fetchOptions(ctx context.Context, endpoint string, form map[string]string, placeholders []string) ([]Option, error) {
	page, err := s.get(ctx, s.listingURL())
	if err != nil {
		return nil, err
	}
	form["_token"] = csrfToken(page)

	doc, err := s.postForm(ctx, s.baseURL+endpoint, form)
	if err != nil {
		return nil, err
	}
	return parseOptions(doc, placeholders), nil
}

func (s *Scraper) fetchDistricts(ctx context.Context, stateID uint) ([]Option, error) {
	return s.fetchOptions(ctx, "/district/fetch", map[string]string{
		"stateid": strconv.FormatUint(uint64(stateID), 10),
		"id":      "district",
	}, districtPlaceholders)
}

func (s *Scraper) fetchMarkets(ctx context.Context, districtID uint) ([]Option, error) {
	return s.fetchOptions(ctx, "/market/fetch", map[string]string{
		"distid": strconv.FormatUint(uint64(districtID), 10),
		"id":     "market",
	}, marketPlaceholders)
}

// ScrapeStatesOnly stores every state listed on the site and returns how many
// were found.
func (s *Scraper) ScrapeStatesOnly(ctx context.Context) (int, error) {
	doc, err := s.get(ctx, s.listingURL())
	if err != nil {
		return 0, err
	}

	states := parseStates(doc)
	log.Printf("Found %d states", len(states))
	for _, st := range states {
		if err := s.store.UpsertState(ctx, st.ID, st.Name); err != nil {
			log.Printf("❌ Failed to save state %s (%d): %v", st.Name, st.ID, err)
			continue
		}
	}
	s.logStats(ctx, "states")
	return len(states), nil
}

// ScrapeDistrictsOnly fetches the districts of every stored state. A state
// whose list cannot be fetched is logged and skipped.
func (s *Scraper) ScrapeDistrictsOnly(ctx context.Context) (int, error) {
	states, err := s.store.AllStates(ctx)
	if err != nil {
		return 0, err
	}
	if len(states) == 0 {
		return 0, ErrNoStates
	}

	total := 0
	for _, st := range states {
		if err := ctx.Err(); err != nil {
			return total, err
		}
		districts, err := s.fetchDistricts(ctx, st.ID)
		if err != nil {
			log.Printf("❌ Districts for %s (%d): %v", st.Name, st.ID, err)
			continue
		}
		if len(districts) == 0 {
			log.Printf("No districts found for %s", st.Name)
			continue
		}
		for _, d := range districts {
			if err := s.store.UpsertDistrict(ctx, d.ID, d.Name, st.ID); err != nil {
				log.Printf("❌ Failed to save district %s (%d): %v", d.Name, d.ID, err)
				continue
			}
			total++
		}
		log.Printf("✅ Found %d districts for %s", len(districts), st.Name)
	}
	s.logStats(ctx, "districts")
	return total, nil
}

// ScrapeMarketsOnly fetches the markets of every stored district.
func (s *Scraper) ScrapeMarketsOnly(ctx context.Context) (int, error) {
	states, err := s.store.AllStates(ctx)
	if err != nil {
		return 0, err
	}
	if len(states) == 0 {
		return 0, ErrNoStates
	}

	total := 0
	for _, st := range states {
		districts, err := s.store.DistrictsByState(ctx, st.ID)
		if err != nil {
			return total, err
		}
		if len(districts) == 0 {
			log.Printf("No districts found for %s", st.Name)
			continue
		}
		n, err := s.scrapeMarketsOfDistricts(ctx, st, districts)
		total += n
		if err != nil {
			return total, err
		}
	}
	s.logStats(ctx, "markets")
	return total, nil
}

// ScrapeMarketsForState fetches the markets of one stored state.
func (s *Scraper) ScrapeMarketsForState(ctx context.Context, stateID uint) (int, error) {
	st, err := s.store.StateByID(ctx, stateID)
	if err != nil {
		return 0, fmt.Errorf("state %d: %w", stateID, err)
	}
	districts, err := s.store.DistrictsByState(ctx, st.ID)
	if err != nil {
		return 0, err
	}
	if len(districts) == 0 {
		return 0, fmt.Errorf("%w for %s", ErrNoDistricts, st.Name)
	}

	total, err := s.scrapeMarketsOfDistricts(ctx, *st, districts)
	if err != nil {
		return total, err
	}
	log.Printf("✅ Total %d markets saved for %s", total, st.Name)
	return total, nil
}

func (s *Scraper) scrapeMarketsOfDistricts(ctx context.Context, st models.State, districts []models.District) (int, error) {
	total := 0
	for _, d := range districts {
		if err := ctx.Err(); err != nil {
			return total, err
		}
		markets, err := s.fetchMarkets(ctx, d.ID)
		if err != nil {
			log.Printf("❌ Markets for %s (%d): %v", d.Name, d.ID, err)
			continue
		}
		if len(markets) == 0 {
			log.Printf("No markets found for %s", d.Name)
			continue
		}
		for _, m := range markets {
			if err := s.store.UpsertMarket(ctx, m.ID, m.Name, d.ID, st.ID); err != nil {
				log.Printf("❌ Failed to save market %s (%d): %v", m.Name, m.ID, err)
				continue
			}
			total++
		}
		log.Printf("✅ Found %d markets for %s", len(markets), d.Name)
	}
	return total, nil
}

// ScrapeYardData stores the price table of one market page and returns the
// number of rows read.
func (s *Scraper) ScrapeYardData(ctx context.Context, state, district, market string) (int, error) {
	url := s.listingURL(NormalizeNameForURL(state), NormalizeNameForURL(district), NormalizeNameForURL(market))
	doc, err := s.get(ctx, url)
	if err != nil {
		return 0, err
	}
	rows, err := parsePriceTable(doc)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", url, err)
	}

	stateID, err := s.store.StateIDByName(ctx, state)
	if err != nil {
		return 0, fmt.Errorf("state %s: %w", state, err)
	}
	districtID, err := s.store.DistrictIDByName(ctx, district, stateID)
	if err != nil {
		return 0, fmt.Errorf("district %s in %s: %w", district, state, err)
	}
	marketID, err := s.store.MarketIDByName(ctx, market, districtID)
	if err != nil {
		return 0, fmt.Errorf("market %s in %s: %w", market, district, err)
	}

	if len(rows) == 0 {
		return 0, fmt.Errorf("%s/%s/%s: %w", state, district, market, ErrNoPriceRows)
	}
	for _, row := range rows {
		s.savePrice(ctx, stateID, districtID, marketID, row)
	}
	log.Printf("✅ Scraped %d commodities for %s/%s/%s", len(rows), state, district, market)
	return len(rows), nil
}

// ScrapeDistrictData stores the price table of a district page, attributing
// each row to a stored market by its name. Rows naming an unknown market are
// skipped.
func (s *Scraper) ScrapeDistrictData(ctx context.Context, state, district string) (int, error) {
	url := s.listingURL(NormalizeNameForURL(state), NormalizeNameForURL(district))
	doc, err := s.get(ctx, url)
	if err != nil {
		return 0, err
	}
	rows, err := parsePriceTable(doc)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", url, err)
	}

	stateID, err := s.store.StateIDByName(ctx, state)
	if err != nil {
		return 0, fmt.Errorf("state %s: %w", state, err)
	}
	districtID, err := s.store.DistrictIDByName(ctx, district, stateID)
	if err != nil {
		return 0, fmt.Errorf("district %s in %s: %w", district, state, err)
	}
	markets, err := s.store.MarketsByStateAndDistrict(ctx, stateID, districtID)
	if err != nil {
		return 0, err
	}
	if len(markets) == 0 {
		return 0, fmt.Errorf("%w for district %s", ErrNoMarkets, district)
	}

	byName := make(map[string]uint, len(markets))
	for _, m := range markets {
		byName[strings.ToLower(m.Name)] = m.ID
	}

	saved := 0
	for _, row := range rows {
		marketID, ok := byName[strings.ToLower(row.Market)]
		if !ok {
			log.Printf("Market %s not found in database for district %s", row.Market, district)
			continue
		}
		s.savePrice(ctx, stateID, districtID, marketID, row)
		saved++
	}
	if saved == 0 {
		return 0, fmt.Errorf("%s/%s: %w", state, district, ErrNoPriceRows)
	}
	log.Printf("✅ Scraped %d commodities for %s/%s", saved, state, district)
	return saved, nil
}

func (s *Scraper) savePrice(ctx context.Context, stateID, districtID, marketID uint, row PriceRow) {
	rec := &models.CommodityPrice{
		StateID:    stateID,
		DistrictID: districtID,
		MarketID:   marketID,
		Commodity:  row.Commodity,
		Variety:    row.Variety,
		MinPrice:   row.MinPrice,
		MaxPrice:   row.MaxPrice,
		ModalPrice: row.ModalPrice,
		PriceDate:  row.PriceDate,
	}
	if err := s.store.UpsertCommodityPrice(ctx, rec); err != nil {
		log.Printf("❌ Failed to save commodity %s (%s) for market %d: %v", row.Commodity, row.Variety, marketID, err)
	}
}

func (s *Scraper) logStats(ctx context.Context, stage string) {
	stats, err := s.store.Stats(ctx)
	if err != nil {
		return
	}
	log.Printf("Database statistics after %s scraping: states=%d districts=%d markets=%d commodities=%d",
		stage, stats.States, stats.Districts, stats.Markets, stats.Commodities)
}
