package notification

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"khedutbazaar/database"
	"khedutbazaar/models"
	"khedutbazaar/pricing"
)

const (
	ConditionGreater = "greater"
	ConditionLess    = "less"

	alertTitle = "Price Alert"
)

// Message is one push notification.
type Message struct {
	Token string
	Title string
	Body  string
	Data  map[string]string
}

// Pusher delivers push notifications.
type Pusher interface {
	Push(ctx context.Context, msg Message) error
}

// Store is what the dispatcher reads alerts, prices and tokens from.
type Store interface {
	AllAlerts(ctx context.Context) ([]models.Alert, error)
	LatestModalPrice(ctx context.Context, marketID uint, commodity string) (int, error)
	DeviceToken(ctx context.Context, userID uint) (string, error)
}

// ShouldNotify reports whether an exposed price crosses an alert threshold.
// Unknown conditions never match.
func ShouldNotify(condition string, amount float64, price int) bool {
	switch strings.ToLower(strings.TrimSpace(condition)) {
	case ConditionGreater:
		return float64(price) > amount
	case ConditionLess:
		return float64(price) < amount
	}
	return false
}

// AlertBody renders the notification text for a triggered alert.
func AlertBody(alert models.Alert, price int) string {
	return fmt.Sprintf("Price of %s in market %d is Rs.%d (your alert: %s %s)",
		alert.Commodity, alert.MarketID, price, alert.Conditions, strconv.FormatFloat(alert.Amount, 'f', -1, 64))
}

// Report counts what one dispatch run did.
type Report struct {
	Evaluated int `json:"evaluated"`
	Matched   int `json:"matched"`
	Sent      int `json:"sent"`
	Skipped   int `json:"skipped"`
	Failed    int `json:"failed"`
}

// Dispatcher evaluates every stored alert against the latest price and
// pushes a notification for each one that matches.
type Dispatcher struct {
	store  Store
	pusher Pusher
}

func NewDispatcher(store Store, pusher Pusher) *Dispatcher {
	return &Dispatcher{store: store, pusher: pusher}
}

func (d *Dispatcher) Pusher() Pusher {
	return d.pusher
}

// Dispatch runs every alert once. Alerts without a price or a device token
// are skipped; delivery failures are counted and do not stop the run.
func (d *Dispatcher) Dispatch(ctx context.Context) (Report, error) {
	var report Report
	alerts, err := d.store.AllAlerts(ctx)
	if err != nil {
		return report, err
	}

	for _, alert := range alerts {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		report.Evaluated++

		stored, err := d.store.LatestModalPrice(ctx, alert.MarketID, alert.Commodity)
		if err != nil {
			if !errors.Is(err, database.ErrNotFound) {
				log.Printf("❌ Price lookup for alert %d: %v", alert.ID, err)
			}
			report.Skipped++
			continue
		}

		price := pricing.Exposed(stored)
		if !ShouldNotify(alert.Conditions, alert.Amount, price) {
			continue
		}
		report.Matched++

		token, err := d.store.DeviceToken(ctx, alert.UserID)
		if err != nil {
			report.Skipped++
			continue
		}

		msg := NewMessage(token, alertTitle, AlertBody(alert, price))
		if err := d.pusher.Push(ctx, msg); err != nil {
			log.Printf("❌ Push for alert %d: %v", alert.ID, err)
			report.Failed++
			continue
		}
		report.Sent++
	}
	return report, nil
}

// NewMessage builds a message carrying the data payload the mobile app expects.
func NewMessage(token, title, body string) Message {
	return Message{
		Token: token,
		Title: title,
		Body:  body,
		Data: map[string]string{
			"title":        title,
			"body":         body,
			"timestamp":    strconv.FormatInt(time.Now().Unix(), 10),
			"source":       "khedut-bazaar",
			"click_action": "FLUTTER_NOTIFICATION_CLICK",
		},
	}
}

// LogPusher only logs messages. It stands in when no FCM credentials are
// configured.
type LogPusher struct{}

func (LogPusher) Push(_ context.Context, msg Message) error {
	token := msg.Token
	if len(token) > 20 {
		token = token[:20] + "..."
	}
	log.Printf("Push (not delivered) to %s: %s - %s", token, msg.Title, msg.Body)
	return nil
}
