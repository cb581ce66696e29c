package notification

import (
	"context"
	"errors"
	"testing"

	"khedutbazaar/database"
	"khedutbazaar/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	alerts []models.Alert
	prices map[string]int
	tokens map[uint]string
}

func (f *fakeStore) AllAlerts(context.Context) ([]models.Alert, error) {
	return f.alerts, nil
}

func (f *fakeStore) LatestModalPrice(_ context.Context, marketID uint, commodity string) (int, error) {
	p, ok := f.prices[commodity]
	if !ok || marketID != 100 {
		return 0, database.ErrNotFound
	}
	return p, nil
}

func (f *fakeStore) DeviceToken(_ context.Context, userID uint) (string, error) {
	t, ok := f.tokens[userID]
	if !ok {
		return "", database.ErrNotFound
	}
	return t, nil
}

type recordingPusher struct {
	sent []Message
	fail bool
}

func (r *recordingPusher) Push(_ context.Context, msg Message) error {
	if r.fail {
		return errors.New("fcm unavailable")
	}
	r.sent = append(r.sent, msg)
	return nil
}

func TestShouldNotify(t *testing.T) {
	assert.True(t, ShouldNotify("greater", 400, 401))
	assert.False(t, ShouldNotify("greater", 400, 400))
	assert.True(t, ShouldNotify("less", 400, 399))
	assert.False(t, ShouldNotify("less", 400, 400))
	assert.True(t, ShouldNotify(" Greater ", 399.5, 400))
	assert.False(t, ShouldNotify("equal", 400, 400))
}

func TestDispatch(t *testing.T) {
	store := &fakeStore{
		alerts: []models.Alert{
			{ID: 1, UserID: 1, MarketID: 100, Commodity: "Wheat", Conditions: "greater", Amount: 400},
			{ID: 2, UserID: 1, MarketID: 100, Commodity: "Wheat", Conditions: "less", Amount: 400},
			{ID: 3, UserID: 2, MarketID: 100, Commodity: "Wheat", Conditions: "greater", Amount: 100},
			{ID: 4, UserID: 1, MarketID: 100, Commodity: "Onion", Conditions: "greater", Amount: 1},
		},
		prices: map[string]int{"Wheat": 2204},
		tokens: map[uint]string{1: "token-1"},
	}
	pusher := &recordingPusher{}

	report, err := NewDispatcher(store, pusher).Dispatch(context.Background())
	require.NoError(t, err)

	assert.Equal(t, Report{Evaluated: 4, Matched: 2, Sent: 1, Skipped: 2}, report)
	require.Len(t, pusher.sent, 1)
	msg := pusher.sent[0]
	assert.Equal(t, "token-1", msg.Token)
	assert.Equal(t, "Price Alert", msg.Title)
	assert.Equal(t, "Price of Wheat in market 100 is Rs.440 (your alert: greater 400)", msg.Body)
	assert.Equal(t, "khedut-bazaar", msg.Data["source"])
	assert.Equal(t, "FLUTTER_NOTIFICATION_CLICK", msg.Data["click_action"])
}

func TestDispatchCountsFailures(t *testing.T) {
	store := &fakeStore{
		alerts: []models.Alert{{ID: 1, UserID: 1, MarketID: 100, Commodity: "Wheat", Conditions: "less", Amount: 1000}},
		prices: map[string]int{"Wheat": 2000},
		tokens: map[uint]string{1: "token-1"},
	}

	report, err := NewDispatcher(store, &recordingPusher{fail: true}).Dispatch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Report{Evaluated: 1, Matched: 1, Failed: 1}, report)
}

func TestAlertBodyFormatsAmount(t *testing.T) {
	body := AlertBody(models.Alert{Commodity: "Cotton", MarketID: 7, Conditions: "less", Amount: 1450.5}, 1400)
	assert.Equal(t, "Price of Cotton in market 7 is Rs.1400 (your alert: less 1450.5)", body)
}
