// Package firebase sends push notifications through Firebase Cloud Messaging.
package firebase

import (
	"context"
	"fmt"
	"log"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"
)

// TokenSource returns the active device tokens registered for a user.
type TokenSource func(ctx context.Context, userID int64) ([]string, error)

// Notifier implements transfer.Notifier using FCM.
type Notifier struct {
	msgClient *messaging.Client
	tokens    TokenSource
}

// NewNotifier initializes a Firebase app and returns an FCM-backed notifier.
func NewNotifier(ctx context.Context, credentialsFile string, tokens TokenSource) (*Notifier, error) {
	app, err := firebase.NewApp(ctx, nil, option.WithCredentialsFile(credentialsFile))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize firebase app: %w", err)
	}

	msgClient, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize firebase messaging client: %w", err)
	}

	return &Notifier{msgClient: msgClient, tokens: tokens}, nil
}

// Send delivers a notification to every device registered for the user.
// Delivery is best effort: invalid tokens are logged and skipped.
func (n *Notifier) Send(ctx context.Context, userID int64, title, body string, data map[string]string) error {
	tokens, err := n.tokens(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to list device tokens: %w", err)
	}
	if len(tokens) == 0 {
		return nil
	}

	for _, token := range tokens {
		msg := &messaging.Message{
			Token: token,
			Notification: &messaging.Notification{
				Title: title,
				Body:  body,
			},
			Data: data,
		}

		if _, err := n.msgClient.Send(ctx, msg); err != nil {
			if messaging.IsUnregistered(err) || messaging.IsInvalidArgument(err) {
				log.Printf("Invalid FCM token for user %d, skipping", userID)
				continue
			}
			return fmt.Errorf("failed to send FCM message: %w", err)
		}
	}

	return nil
}
