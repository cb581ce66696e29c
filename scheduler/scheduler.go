package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"khedutbazaar/database"
	"khedutbazaar/notification"
	"khedutbazaar/scraper"

	"github.com/robfig/cron/v3"
)

var (
	ErrAlreadyRunning = errors.New("scheduler is already running")
	ErrNotRunning     = errors.New("scheduler is not running")
	ErrDisabled       = errors.New("scheduler is disabled in configuration")
	ErrRunInProgress  = errors.New("a scheduled run is already in progress")
)

// StateScraper scrapes every district of one state.
type StateScraper interface {
	ScrapeStateByID(ctx context.Context, stateID uint) scraper.Report
}

// AlertDispatcher runs price alerts once fresh prices are stored.
type AlertDispatcher interface {
	Dispatch(ctx context.Context) (notification.Report, error)
}

type Status struct {
	IsRunning       bool        `json:"is_running"`
	Enabled         bool        `json:"enabled"`
	ScheduleTime    string      `json:"schedule_time"`
	ScheduledStates []uint      `json:"scheduled_states"`
	NextRun         string      `json:"next_run"`
	LastRun         *RunSummary `json:"last_run,omitempty"`
}

type ScheduledItems struct {
	StatesToScrape []uint `json:"states_to_scrape"`
	ScheduleTime   string `json:"schedule_time"`
	Enabled        bool   `json:"enabled"`
}

type RunSummary struct {
	StartedAt  time.Time            `json:"started_at"`
	FinishedAt time.Time            `json:"finished_at"`
	Skipped    string               `json:"skipped,omitempty"`
	States     []scraper.Report     `json:"states"`
	Alerts     *notification.Report `json:"alerts,omitempty"`
}

// Scheduler runs the configured states once a day at schedule_time.
type Scheduler struct {
	config     *ConfigFile
	scraper    StateScraper
	dispatcher AlertDispatcher

	mu       sync.Mutex
	cron     *cron.Cron
	schedule cron.Schedule
	lastRun  *RunSummary

	runMu sync.Mutex
	sleep func(ctx context.Context, d time.Duration) error
}

// New builds a scheduler. dispatcher may be nil.
func New(config *ConfigFile, s StateScraper, dispatcher AlertDispatcher) *Scheduler {
	return &Scheduler{
		config:     config,
		scraper:    s,
		dispatcher: dispatcher,
		sleep:      sleepContext,
	}
}

func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cron != nil {
		return ErrAlreadyRunning
	}
	cfg, err := s.config.Load()
	if err != nil {
		return err
	}
	if !cfg.Enabled {
		return ErrDisabled
	}
	spec, err := cfg.CronSpec()
	if err != nil {
		return err
	}
	schedule, err := cron.ParseStandard(spec)
	if err != nil {
		return fmt.Errorf("schedule %q: %w", spec, err)
	}

	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger)))
	c.Schedule(schedule, cron.FuncJob(func() {
		if _, err := s.RunNow(context.Background()); err != nil {
			log.Printf("❌ Scheduled run: %v", err)
		}
	}))
	c.Start()

	s.cron = c
	s.schedule = schedule
	log.Printf("✅ Scheduler started - will run daily at %s for states %v", cfg.ScheduleTime, cfg.StatesToScrape)
	return nil
}

// Stop removes the daily entry. A run already in progress finishes on its own.
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cron == nil {
		return ErrNotRunning
	}
	s.cron.Stop()
	s.cron = nil
	s.schedule = nil
	log.Println("Scheduler stopped")
	return nil
}

func (s *Scheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cron != nil
}

func (s *Scheduler) Status() (Status, error) {
	cfg, err := s.config.Load()
	if err != nil {
		return Status{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	st := Status{
		IsRunning:       s.cron != nil,
		Enabled:         cfg.Enabled,
		ScheduleTime:    cfg.ScheduleTime,
		ScheduledStates: cfg.StatesToScrape,
		NextRun:         "Not scheduled",
		LastRun:         s.lastRun,
	}
	if s.schedule != nil {
		st.NextRun = s.schedule.Next(time.Now()).Format(time.RFC3339)
	} else if cfg.Enabled {
		st.NextRun = "Today at " + cfg.ScheduleTime
	}
	return st, nil
}

func (s *Scheduler) ScheduledItems() (ScheduledItems, error) {
	cfg, err := s.config.Load()
	if err != nil {
		return ScheduledItems{}, err
	}
	return ScheduledItems{
		StatesToScrape: cfg.StatesToScrape,
		ScheduleTime:   cfg.ScheduleTime,
		Enabled:        cfg.Enabled,
	}, nil
}

func (s *Scheduler) AddState(id uint) (bool, error) {
	return s.config.AddState(id)
}

func (s *Scheduler) RemoveState(id uint) (bool, error) {
	return s.config.RemoveState(id)
}

// RunNow scrapes every scheduled state, pausing between states, and then
// dispatches price alerts. Overlapping runs are refused.
func (s *Scheduler) RunNow(ctx context.Context) (RunSummary, error) {
	if !s.runMu.TryLock() {
		return RunSummary{}, ErrRunInProgress
	}
	defer s.runMu.Unlock()

	summary := RunSummary{StartedAt: time.Now(), States: []scraper.Report{}}
	defer func() {
		summary.FinishedAt = time.Now()
		s.mu.Lock()
		last := summary
		s.lastRun = &last
		s.mu.Unlock()
	}()

	cfg, err := s.config.Load()
	if err != nil {
		return summary, err
	}
	if !cfg.Enabled {
		summary.Skipped = "Scheduled scraping is disabled"
		return summary, nil
	}

	log.Printf("Starting scheduled scraping of %d states", len(cfg.StatesToScrape))
	for i, stateID := range cfg.StatesToScrape {
		if i > 0 {
			if err := s.sleep(ctx, cfg.Delay()); err != nil {
				return summary, err
			}
		}
		report := s.scrapeWithRetry(ctx, stateID, cfg.MaxRetries)
		log.Printf("State %d scraping result: %s", stateID, report.Status)
		summary.States = append(summary.States, report)
	}

	if s.dispatcher != nil {
		alerts, err := s.dispatcher.Dispatch(ctx)
		if err != nil {
			log.Printf("❌ Alert dispatch after scheduled run: %v", err)
		} else {
			summary.Alerts = &alerts
		}
	}
	log.Println("✅ Completed scheduled scraping")
	return summary, nil
}

func (s *Scheduler) scrapeWithRetry(ctx context.Context, stateID uint, retries int) scraper.Report {
	report := s.scraper.ScrapeStateByID(ctx, stateID)
	for attempt := 1; attempt <= retries && retryable(report); attempt++ {
		log.Printf("Retrying state %d (attempt %d/%d): %s", stateID, attempt, retries, report.Message)
		if err := s.sleep(ctx, time.Duration(attempt)*time.Second); err != nil {
			return report
		}
		report = s.scraper.ScrapeStateByID(ctx, stateID)
	}
	return report
}

func retryable(r scraper.Report) bool {
	return r.Status == scraper.StatusError && !errors.Is(r.Err, database.ErrNotFound)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
