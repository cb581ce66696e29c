package scraper

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"khedutbazaar/models"

	"github.com/google/uuid"
)

// ErrNothingScraped is the cause of a report in which every item failed.
var ErrNothingScraped = errors.New("every item failed to scrape")

const (
	StatusSuccess        = "success"
	StatusPartialSuccess = "partial_success"
	StatusWarning        = "warning"
	StatusError          = "error"
)

// Report describes one automated scrape of a district or a state.
type Report struct {
	RunID        string        `json:"run_id"`
	Status       string        `json:"status"`
	Message      string        `json:"message"`
	StateID      uint          `json:"state_id,omitempty"`
	StateName    string        `json:"state_name,omitempty"`
	DistrictID   uint          `json:"district_id,omitempty"`
	DistrictName string        `json:"district_name,omitempty"`
	Successful   []string      `json:"successful"`
	Failed       []string      `json:"failed"`
	Total        int           `json:"total"`
	Stats        *models.Stats `json:"stats,omitempty"`
	Timestamp    time.Time     `json:"timestamp"`

	// Err is the cause of an error status.
	Err error `json:"-"`
}

type BulkReport struct {
	RunID     string    `json:"run_id"`
	Status    string    `json:"status"`
	Message   string    `json:"message"`
	Results   []Report  `json:"results"`
	Succeeded int       `json:"succeeded"`
	Failed    int       `json:"failed"`
	Timestamp time.Time `json:"timestamp"`
}

type StatusReport struct {
	Status      string       `json:"status"`
	Message     string       `json:"message"`
	Stats       models.Stats `json:"stats"`
	LastUpdated time.Time    `json:"last_updated"`
}

// Automated drives whole-district and whole-state price scrapes, collecting
// per-market and per-district outcomes instead of stopping at the first
// failure.
type Automated struct {
	scraper *Scraper
	store   Store
	now     func() time.Time
}

func NewAutomated(s *Scraper) *Automated {
	return &Automated{scraper: s, store: s.store, now: time.Now}
}

func (a *Automated) newReport() Report {
	return Report{
		RunID:      uuid.NewString(),
		Successful: []string{},
		Failed:     []string{},
		Timestamp:  a.now(),
	}
}

func (a *Automated) fail(r Report, err error) Report {
	r.Status = StatusError
	r.Message = err.Error()
	r.Err = err
	return r
}

// ScrapeDistrictByID scrapes every stored market of a district.
func (a *Automated) ScrapeDistrictByID(ctx context.Context, districtID uint) Report {
	report := a.newReport()
	report.DistrictID = districtID

	district, err := a.store.DistrictByID(ctx, districtID)
	if err != nil {
		return a.fail(report, fmt.Errorf("district with ID %d: %w", districtID, err))
	}
	state, err := a.store.StateByID(ctx, district.StateID)
	if err != nil {
		return a.fail(report, fmt.Errorf("state with ID %d: %w", district.StateID, err))
	}
	report.DistrictName = district.Name
	report.StateID = state.ID
	report.StateName = state.Name

	markets, err := a.store.MarketsByStateAndDistrict(ctx, state.ID, district.ID)
	if err != nil {
		return a.fail(report, err)
	}
	if len(markets) == 0 {
		report.Status = StatusWarning
		report.Message = fmt.Sprintf("No markets found for district %s", district.Name)
		return report
	}

	report.Total = len(markets)
	for _, m := range markets {
		if ctx.Err() != nil {
			report.Failed = append(report.Failed, m.Name)
			continue
		}
		if _, err := a.scraper.ScrapeYardData(ctx, state.Name, district.Name, m.Name); err != nil {
			log.Printf("❌ Market %s: %v", m.Name, err)
			report.Failed = append(report.Failed, m.Name)
			continue
		}
		report.Successful = append(report.Successful, m.Name)
	}

	report.Status = outcome(len(report.Successful), len(report.Failed))
	report.Message = fmt.Sprintf("Scraped data for %d markets successfully", len(report.Successful))
	if report.Status == StatusError {
		report.Err = ErrNothingScraped
	}
	a.attachStats(ctx, &report)
	return report
}

// ScrapeStateByID scrapes the district price page of every stored district
// of a state.
func (a *Automated) ScrapeStateByID(ctx context.Context, stateID uint) Report {
	report := a.newReport()
	report.StateID = stateID

	state, err := a.store.StateByID(ctx, stateID)
	if err != nil {
		return a.fail(report, fmt.Errorf("state with ID %d: %w", stateID, err))
	}
	report.StateName = state.Name

	districts, err := a.store.DistrictsByState(ctx, stateID)
	if err != nil {
		return a.fail(report, err)
	}
	if len(districts) == 0 {
		report.Status = StatusWarning
		report.Message = fmt.Sprintf("No districts found for state %s", state.Name)
		return report
	}

	report.Total = len(districts)
	for _, d := range districts {
		if ctx.Err() != nil {
			report.Failed = append(report.Failed, d.Name)
			continue
		}
		if _, err := a.scraper.ScrapeDistrictData(ctx, state.Name, d.Name); err != nil {
			log.Printf("❌ District %s: %v", d.Name, err)
			report.Failed = append(report.Failed, d.Name)
			continue
		}
		report.Successful = append(report.Successful, d.Name)
	}

	report.Status = outcome(len(report.Successful), len(report.Failed))
	report.Message = fmt.Sprintf("Scraped data for %d districts successfully", len(report.Successful))
	if report.Status == StatusError {
		report.Err = ErrNothingScraped
	}
	a.attachStats(ctx, &report)
	return report
}

// BulkScrape runs ScrapeDistrictByID for each id in order.
func (a *Automated) BulkScrape(ctx context.Context, districtIDs []uint) BulkReport {
	bulk := BulkReport{
		RunID:     uuid.NewString(),
		Results:   make([]Report, 0, len(districtIDs)),
		Timestamp: a.now(),
	}
	for _, id := range districtIDs {
		r := a.ScrapeDistrictByID(ctx, id)
		if r.Status == StatusSuccess || r.Status == StatusPartialSuccess {
			bulk.Succeeded++
		} else {
			bulk.Failed++
		}
		bulk.Results = append(bulk.Results, r)
	}

	bulk.Status = outcome(bulk.Succeeded, bulk.Failed)
	bulk.Message = fmt.Sprintf("Bulk scraping completed: %d successful, %d failed", bulk.Succeeded, bulk.Failed)
	return bulk
}

func (a *Automated) Status(ctx context.Context) StatusReport {
	stats, err := a.store.Stats(ctx)
	if err != nil {
		return StatusReport{
			Status:      StatusError,
			Message:     fmt.Sprintf("Error getting scraping status: %v", err),
			LastUpdated: a.now(),
		}
	}
	return StatusReport{
		Status:      StatusSuccess,
		Message:     "Scraping system is operational",
		Stats:       stats,
		LastUpdated: a.now(),
	}
}

func (a *Automated) attachStats(ctx context.Context, r *Report) {
	stats, err := a.store.Stats(ctx)
	if err != nil {
		log.Printf("❌ Stats after scrape: %v", err)
		return
	}
	r.Stats = &stats
}

// outcome is success when nothing failed, partial_success when something
// succeeded, and error otherwise.
func outcome(succeeded, failed int) string {
	switch {
	case failed == 0 && succeeded > 0:
		return StatusSuccess
	case succeeded > 0:
		return StatusPartialSuccess
	default:
		return StatusError
	}
}
