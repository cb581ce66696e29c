package notification

import (
	"context"
	"fmt"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"
)

// FirebasePusher delivers messages through Firebase Cloud Messaging.
type FirebasePusher struct {
	client *messaging.Client
}

func NewFirebasePusher(ctx context.Context, credentialsPath, projectID string) (*FirebasePusher, error) {
	var cfg *firebase.Config
	if projectID != "" {
		cfg = &firebase.Config{ProjectID: projectID}
	}

	app, err := firebase.NewApp(ctx, cfg, option.WithCredentialsFile(credentialsPath))
	if err != nil {
		return nil, fmt.Errorf("error initializing firebase app: %v", err)
	}

	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("error getting messaging client: %v", err)
	}
	return &FirebasePusher{client: client}, nil
}

func (f *FirebasePusher) Push(ctx context.Context, msg Message) error {
	message := &messaging.Message{
		Token: msg.Token,
		Notification: &messaging.Notification{
			Title: msg.Title,
			Body:  msg.Body,
		},
		Data: msg.Data,
		Android: &messaging.AndroidConfig{
			Priority: "high",
			Notification: &messaging.AndroidNotification{
				ClickAction: msg.Data["click_action"],
			},
		},
	}

	if _, err := f.client.Send(ctx, message); err != nil {
		switch {
		case messaging.IsUnregistered(err):
			return fmt.Errorf("token is invalid or expired: %w", err)
		case messaging.IsQuotaExceeded(err):
			return fmt.Errorf("fcm quota exceeded: %w", err)
		}
		return fmt.Errorf("error sending message: %w", err)
	}
	return nil
}
