package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/wayfarer-app/wayfarer/internal/storage"
)

// NotificationService stores browser push subscriptions.
type NotificationService struct {
	store storage.SubscriptionStore
}

// NewNotificationService creates a notification service.
func NewNotificationService(store storage.SubscriptionStore) *NotificationService {
	return &NotificationService{store: store}
}

// subscriptionDescriptor is the part of a browser push subscription we need
// to key the row. The full token is stored verbatim for delivery.
type subscriptionDescriptor struct {
	Endpoint string `json:"endpoint"`
}

// SaveSubscription validates and upserts a push subscription for the user.
// The endpoint inside the token is the identity of the subscription: saving
// an endpoint that already exists reassigns it to the calling user, so a
// shared browser notifies whoever logged in last.
func (s *NotificationService) SaveSubscription(ctx context.Context, userID, token string) error {
	var descriptor subscriptionDescriptor
	if err := json.Unmarshal([]byte(token), &descriptor); err != nil {
		return fmt.Errorf("%w: subscription is not valid JSON", ErrInvalidInput)
	}
	if descriptor.Endpoint == "" {
		return fmt.Errorf("%w: subscription has no endpoint", ErrInvalidInput)
	}

	if err := s.store.UpsertSubscription(ctx, userID, token, descriptor.Endpoint); err != nil {
		return fmt.Errorf("failed to save subscription: %w", err)
	}

	slog.Info("Push subscription saved", "user_id", userID)
	return nil
}

// RemoveSubscription deletes a subscription by its endpoint. Used by the
// optional pruning hook wired into the dispatcher.
func (s *NotificationService) RemoveSubscription(ctx context.Context, endpoint string) error {
	return s.store.DeleteSubscription(ctx, endpoint)
}
