package notification

import (
	"context"
	"fmt"
	"log"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"
)

// PushSender delivers a push payload to a single device. Implementations are
// best-effort: callers log failures and move on.
type PushSender interface {
	Send(ctx context.Context, deviceToken, title, body string, data map[string]string) error
}

// FCMSender sends push notifications through Firebase Cloud Messaging
type FCMSender struct {
	client *messaging.Client
}

// NewFCMSender creates an FCM-backed push sender. Missing or broken
// credentials disable push rather than blocking startup.
func NewFCMSender(credentialsFile string) (*FCMSender, error) {
	if credentialsFile == "" {
		log.Println("firebase credentials not provided, push notifications disabled")
		return nil, nil
	}

	opt := option.WithCredentialsFile(credentialsFile)
	app, err := firebase.NewApp(context.Background(), nil, opt)
	if err != nil {
		log.Printf("failed to initialize Firebase app: %v (push notifications disabled)", err)
		return nil, nil
	}

	client, err := app.Messaging(context.Background())
	if err != nil {
		log.Printf("failed to get messaging client: %v", err)
		return nil, nil
	}

	return &FCMSender{client: client}, nil
}

// Send delivers one push message to one device token
func (s *FCMSender) Send(ctx context.Context, deviceToken, title, body string, data map[string]string) error {
	if s == nil || s.client == nil {
		return nil
	}

	message := &messaging.Message{
		Token: deviceToken,
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
		Data: data,
		Android: &messaging.AndroidConfig{
			Priority: "high",
		},
		APNS: &messaging.APNSConfig{
			Payload: &messaging.APNSPayload{
				Aps: &messaging.Aps{
					Sound: "default",
				},
			},
		},
	}

	if _, err := s.client.Send(ctx, message); err != nil {
		return fmt.Errorf("fcm send: %w", err)
	}
	return nil
}
