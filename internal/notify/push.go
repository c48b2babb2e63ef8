package notify

import (
	"context"
	"fmt"

	"github.com/SherClockHolmes/webpush-go"
)

// Ensure WebPushClient implements Pusher
var _ Pusher = (*WebPushClient)(nil)

// WebPushClient sends VAPID-signed web push messages.
type WebPushClient struct {
	subject    string
	publicKey  string
	privateKey string
}

// NewWebPushClient creates a push client with the given VAPID credentials.
func NewWebPushClient(subject, publicKey, privateKey string) *WebPushClient {
	return &WebPushClient{
		subject:    subject,
		publicKey:  publicKey,
		privateKey: privateKey,
	}
}

// Send delivers one payload to one subscription. Timeouts are left to the
// underlying HTTP transport and the caller's context.
func (c *WebPushClient) Send(ctx context.Context, sub *webpush.Subscription, payload []byte) error {
	resp, err := webpush.SendNotificationWithContext(ctx, payload, sub, &webpush.Options{
		Subscriber:      c.subject,
		VAPIDPublicKey:  c.publicKey,
		VAPIDPrivateKey: c.privateKey,
		TTL:             60,
	})
	if err != nil {
		return fmt.Errorf("failed to send push notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("push endpoint returned status %d", resp.StatusCode)
	}
	return nil
}
