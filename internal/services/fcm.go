package services

import (
	"context"
	"encoding/base64"
	"fmt"

	"dispatchai-pro/pkg/logger"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"
)

type messageSender interface {
	Send(ctx context.Context, message *messaging.Message) (string, error)
}

// TokenSource resolves a user's registered device token
type TokenSource interface {
	FCMToken(userID string) (string, bool)
}

// FCMService sends push notifications through Firebase Cloud Messaging
type FCMService struct {
	client messageSender
	tokens TokenSource
	log    logger.Logger
}

// NewFCMService creates a new FCM service instance from a credentials file
func NewFCMService(ctx context.Context, credentialsFile string, tokens TokenSource, log logger.Logger) (*FCMService, error) {
	return newFCMService(ctx, option.WithCredentialsFile(credentialsFile), tokens, log)
}

// NewFCMServiceFromBase64 creates a new FCM service instance from base64-encoded credentials.
// Useful on hosts where a credentials file can't be uploaded.
func NewFCMServiceFromBase64(ctx context.Context, credentialsBase64 string, tokens TokenSource, log logger.Logger) (*FCMService, error) {
	credentialsJSON, err := base64.StdEncoding.DecodeString(credentialsBase64)
	if err != nil {
		return nil, fmt.Errorf("error decoding base64 credentials: %w", err)
	}
	return newFCMService(ctx, option.WithCredentialsJSON(credentialsJSON), tokens, log)
}

func newFCMService(ctx context.Context, opt option.ClientOption, tokens TokenSource, log logger.Logger) (*FCMService, error) {
	app, err := firebase.NewApp(ctx, nil, opt)
	if err != nil {
		return nil, fmt.Errorf("error initializing Firebase app: %w", err)
	}

	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("error getting messaging client: %w", err)
	}

	return &FCMService{client: client, tokens: tokens, log: log}, nil
}

func buildMessage(token, title, body string, data map[string]string) *messaging.Message {
	return &messaging.Message{
		Token: token,
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
					ContentAvailable: true,
					Sound:            "default",
				},
			},
		},
	}
}

// NotifyUser pushes to the user's registered device. Users without a token
// are skipped silently.
func (s *FCMService) NotifyUser(ctx context.Context, userID, title, body string, data map[string]string) error {
	token, ok := s.tokens.FCMToken(userID)
	if !ok {
		s.log.Debug("no FCM token registered, skipping push", "user_id", userID)
		return nil
	}

	response, err := s.client.Send(ctx, buildMessage(token, title, body, data))
	if err != nil {
		return fmt.Errorf("error sending FCM message: %w", err)
	}

	s.log.Info("✅ FCM notification sent", "user_id", userID, "type", data["type"], "message_id", response)
	return nil
}
