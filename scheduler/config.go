package scheduler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"slices"
	"sync"
	"time"
)

// Config is the persisted scheduling configuration.
type Config struct {
	Enabled              bool   `json:"enabled"`
	ScheduleTime         string `json:"schedule_time"`
	StatesToScrape       []uint `json:"states_to_scrape"`
	DelayBetweenRequests int    `json:"delay_between_requests"`
	MaxRetries           int    `json:"max_retries"`
	LogFile              string `json:"log_file,omitempty"`
	Description          string `json:"description,omitempty"`
}

func DefaultConfig() Config {
	return Config{
		Enabled:              true,
		ScheduleTime:         "21:00",
		StatesToScrape:       []uint{},
		DelayBetweenRequests: 3,
		MaxRetries:           3,
		LogFile:              "scraping_scheduler.log",
		Description:          "Only add state IDs here. All districts of each state are scraped for commodity prices.",
	}
}

// Delay is the pause between two scheduled states.
func (c Config) Delay() time.Duration {
	return time.Duration(c.DelayBetweenRequests) * time.Second
}

// CronSpec converts the HH:MM schedule time into a daily cron expression.
func (c Config) CronSpec() (string, error) {
	t, err := time.Parse("15:04", c.ScheduleTime)
	if err != nil {
		return "", fmt.Errorf("invalid schedule_time %q: %w", c.ScheduleTime, err)
	}
	return fmt.Sprintf("%d %d * * *", t.Minute(), t.Hour()), nil
}

// ConfigFile reads and writes the configuration JSON file. A missing file is
// created with defaults on first load.
type ConfigFile struct {
	path string
	mu   sync.Mutex
}

func NewConfigFile(path string) *ConfigFile {
	return &ConfigFile{path: path}
}

func (f *ConfigFile) Load() (Config, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.load()
}

func (f *ConfigFile) load() (Config, error) {
	raw, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		cfg := DefaultConfig()
		if err := f.save(cfg); err != nil {
			return cfg, err
		}
		log.Printf("Created default scheduler configuration %s", f.path)
		return cfg, nil
	}
	if err != nil {
		return Config{}, err
	}

	cfg := DefaultConfig()
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse %s: %w", f.path, err)
	}
	if cfg.StatesToScrape == nil {
		cfg.StatesToScrape = []uint{}
	}
	return cfg, nil
}

func (f *ConfigFile) Save(cfg Config) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.save(cfg)
}

func (f *ConfigFile) save(cfg Config) error {
	raw, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(f.path, raw, 0o644)
}

// Update applies fn to the stored configuration and writes it back when fn
// reports a change.
func (f *ConfigFile) Update(fn func(*Config) bool) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	cfg, err := f.load()
	if err != nil {
		return false, err
	}
	if !fn(&cfg) {
		return false, nil
	}
	return true, f.save(cfg)
}

// AddState schedules a state. It reports false when it was already scheduled.
func (f *ConfigFile) AddState(id uint) (bool, error) {
	return f.Update(func(c *Config) bool {
		if slices.Contains(c.StatesToScrape, id) {
			return false
		}
		c.StatesToScrape = append(c.StatesToScrape, id)
		return true
	})
}

// RemoveState unschedules a state. It reports false when it was not scheduled.
func (f *ConfigFile) RemoveState(id uint) (bool, error) {
	return f.Update(func(c *Config) bool {
		i := slices.Index(c.StatesToScrape, id)
		if i < 0 {
			return false
		}
		c.StatesToScrape = slices.Delete(c.StatesToScrape, i, i+1)
		return true
	})
}
