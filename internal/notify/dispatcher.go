// Package notify fans notifications out to online clients (realtime room
// broadcast) and offline ones (durable web push).
package notify

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/SherClockHolmes/webpush-go"

	"github.com/wayfarer-app/wayfarer/internal/metrics"
	"github.com/wayfarer-app/wayfarer/internal/models"
)

// notificationIcon is the icon shown in browser notifications.
const notificationIcon = "/pwa-192x192.png"

// Broadcaster is the realtime channel: an in-app event to a group room.
type Broadcaster interface {
	Broadcast(groupID, event string, payload interface{}) error
}

// SubscriptionSource resolves the push subscriptions of a group's members.
type SubscriptionSource interface {
	ListGroupSubscriptions(ctx context.Context, groupID string) ([]*models.PushSubscription, error)
}

// Pusher delivers one web push payload to one subscription.
type Pusher interface {
	Send(ctx context.Context, sub *webpush.Subscription, payload []byte) error
}

// FailureHook is called for each failed push delivery. It enables, but
// does not require, pruning of expired subscriptions.
type FailureHook func(subscriptionID, endpoint string, err error)

// socketPayload is the in-app notification body.
type socketPayload struct {
	Title   string `json:"title"`
	Message string `json:"message"`
}

// pushPayload is the JSON body handed to the push service.
type pushPayload struct {
	Title string `json:"title"`
	Body  string `json:"body"`
	Icon  string `json:"icon"`
}

// Dispatcher delivers a (title, message) notification to a group over both
// channels. Every delivery is best-effort: failures are logged and isolated
// per channel and per subscription, never propagated to the caller.
type Dispatcher struct {
	broadcaster Broadcaster
	subs        SubscriptionSource
	pusher      Pusher
	onFailure   FailureHook
}

// NewDispatcher creates a dispatcher. broadcaster may be nil (the realtime
// layer is then skipped with a logged error, push still runs). onFailure
// may be nil.
func NewDispatcher(broadcaster Broadcaster, subs SubscriptionSource, pusher Pusher, onFailure FailureHook) *Dispatcher {
	return &Dispatcher{
		broadcaster: broadcaster,
		subs:        subs,
		pusher:      pusher,
		onFailure:   onFailure,
	}
}

// Deliver sends the notification to the group room and to every push
// subscription of the group's members. It returns after all attempts have
// completed.
func (d *Dispatcher) Deliver(ctx context.Context, groupID, title, message string) {
	// Channel 1: in-app broadcast, fire-and-forget.
	if d.broadcaster == nil {
		slog.Error("Realtime layer not initialized, skipping broadcast", "group_id", groupID)
	} else if err := d.broadcaster.Broadcast(groupID, "notification", socketPayload{Title: title, Message: message}); err != nil {
		slog.Error("Broadcast failed", "group_id", groupID, "error", err)
	}

	// Channel 2: durable web push to the group's subscriptions.
	subs, err := d.subs.ListGroupSubscriptions(ctx, groupID)
	if err != nil {
		slog.Error("Failed to resolve push subscriptions", "group_id", groupID, "error", err)
		return
	}
	if len(subs) == 0 {
		return
	}

	payload, err := json.Marshal(pushPayload{Title: title, Body: message, Icon: notificationIcon})
	if err != nil {
		slog.Error("Failed to encode push payload", "error", err)
		return
	}

	var wg sync.WaitGroup
	for _, sub := range subs {
		wg.Add(1)
		go func(sub *models.PushSubscription) {
			defer wg.Done()
			d.push(ctx, sub, payload)
		}(sub)
	}
	wg.Wait()

	slog.Info("Notification dispatched",
		"group_id", groupID,
		"title", title,
		"subscriptions", len(subs),
	)
}

// push attempts one delivery. A token that fails to deserialize or an
// expired endpoint affects only this subscription; the row is not purged.
func (d *Dispatcher) push(ctx context.Context, sub *models.PushSubscription, payload []byte) {
	var descriptor webpush.Subscription
	if err := json.Unmarshal([]byte(sub.Token), &descriptor); err != nil {
		metrics.PushFailures.Inc()
		slog.Error("Failed to parse push subscription token", "subscription_id", sub.ID, "error", err)
		return
	}

	if err := d.pusher.Send(ctx, &descriptor, payload); err != nil {
		metrics.PushFailures.Inc()
		slog.Error("Push delivery failed, endpoint might be expired",
			"subscription_id", sub.ID,
			"error", err,
		)
		if d.onFailure != nil {
			d.onFailure(sub.ID, sub.Endpoint, err)
		}
		return
	}

	metrics.PushDelivered.Inc()
}
