package scheduler

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"khedutbazaar/database"
	"khedutbazaar/notification"
	"khedutbazaar/scraper"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStateScraper struct {
	mu      sync.Mutex
	calls   []uint
	results map[uint][]scraper.Report
}

func (f *fakeStateScraper) ScrapeStateByID(_ context.Context, id uint) scraper.Report {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, id)
	queue := f.results[id]
	if len(queue) == 0 {
		return scraper.Report{Status: scraper.StatusSuccess}
	}
	r := queue[0]
	f.results[id] = queue[1:]
	return r
}

type countingDispatcher struct{ runs int }

func (c *countingDispatcher) Dispatch(context.Context) (notification.Report, error) {
	c.runs++
	return notification.Report{Evaluated: 1}, nil
}

func newConfigFile(t *testing.T) *ConfigFile {
	t.Helper()
	return NewConfigFile(filepath.Join(t.TempDir(), "scraping_config.json"))
}

func noSleep(context.Context, time.Duration) error { return nil }

func TestConfigFileCreatesDefaults(t *testing.T) {
	f := newConfigFile(t)

	cfg, err := f.Load()
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)

	_, err = os.Stat(f.path)
	assert.NoError(t, err)
}

func TestConfigFileAddRemoveState(t *testing.T) {
	f := newConfigFile(t)

	added, err := f.AddState(1)
	require.NoError(t, err)
	assert.True(t, added)

	added, err = f.AddState(1)
	require.NoError(t, err)
	assert.False(t, added)

	_, err = f.AddState(4)
	require.NoError(t, err)

	cfg, err := NewConfigFile(f.path).Load()
	require.NoError(t, err)
	assert.Equal(t, []uint{1, 4}, cfg.StatesToScrape)

	removed, err := f.RemoveState(1)
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = f.RemoveState(9)
	require.NoError(t, err)
	assert.False(t, removed)

	cfg, err = f.Load()
	require.NoError(t, err)
	assert.Equal(t, []uint{4}, cfg.StatesToScrape)
}

func TestCronSpec(t *testing.T) {
	spec, err := Config{ScheduleTime: "21:00"}.CronSpec()
	require.NoError(t, err)
	assert.Equal(t, "0 21 * * *", spec)

	spec, err = Config{ScheduleTime: "06:45"}.CronSpec()
	require.NoError(t, err)
	assert.Equal(t, "45 6 * * *", spec)

	_, err = Config{ScheduleTime: "9pm"}.CronSpec()
	assert.Error(t, err)
}

func TestStartStop(t *testing.T) {
	s := New(newConfigFile(t), &fakeStateScraper{}, nil)

	require.NoError(t, s.Start())
	assert.ErrorIs(t, s.Start(), ErrAlreadyRunning)

	st, err := s.Status()
	require.NoError(t, err)
	assert.True(t, st.IsRunning)
	assert.True(t, s.IsRunning())
	assert.NotEqual(t, "Not scheduled", st.NextRun)

	require.NoError(t, s.Stop())
	assert.ErrorIs(t, s.Stop(), ErrNotRunning)

	st, err = s.Status()
	require.NoError(t, err)
	assert.False(t, st.IsRunning)
	assert.False(t, s.IsRunning())
	assert.Equal(t, "Today at 21:00", st.NextRun)
}

func TestStartDisabled(t *testing.T) {
	f := newConfigFile(t)
	cfg := DefaultConfig()
	cfg.Enabled = false
	require.NoError(t, f.Save(cfg))

	s := New(f, &fakeStateScraper{}, nil)
	assert.ErrorIs(t, s.Start(), ErrDisabled)

	summary, err := s.RunNow(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, summary.Skipped)
}

func TestRunNowScrapesStatesAndDispatches(t *testing.T) {
	f := newConfigFile(t)
	_, err := f.AddState(1)
	require.NoError(t, err)
	_, err = f.AddState(2)
	require.NoError(t, err)
	_, err = f.AddState(3)
	require.NoError(t, err)

	fake := &fakeStateScraper{results: map[uint][]scraper.Report{
		2: {
			{Status: scraper.StatusError, Err: scraper.ErrNothingScraped},
			{Status: scraper.StatusPartialSuccess},
		},
		3: {{Status: scraper.StatusError, Err: database.ErrNotFound}},
	}}
	dispatcher := &countingDispatcher{}
	s := New(f, fake, dispatcher)
	s.sleep = noSleep

	summary, err := s.RunNow(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []uint{1, 2, 2, 3}, fake.calls, "transient failures are retried, missing states are not")
	require.Len(t, summary.States, 3)
	assert.Equal(t, scraper.StatusPartialSuccess, summary.States[1].Status)
	assert.Equal(t, scraper.StatusError, summary.States[2].Status)
	assert.Equal(t, 1, dispatcher.runs)
	require.NotNil(t, summary.Alerts)

	st, err := s.Status()
	require.NoError(t, err)
	require.NotNil(t, st.LastRun)
	assert.Len(t, st.LastRun.States, 3)
}

func TestRunNowRefusesOverlap(t *testing.T) {
	s := New(newConfigFile(t), &fakeStateScraper{}, nil)
	s.runMu.Lock()
	defer s.runMu.Unlock()

	_, err := s.RunNow(context.Background())
	assert.ErrorIs(t, err, ErrRunInProgress)
}
