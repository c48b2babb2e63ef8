package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/wayfarer-app/wayfarer/internal/auth"
)

func TestSaveSubscription(t *testing.T) {
	ctx := context.Background()

	t.Run("Valid subscription is stored", func(t *testing.T) {
		f := newFixture(t, "100")
		svc := NewNotificationService(f.store)

		token := `{"endpoint":"https://push.example.com/one","keys":{"auth":"a","p256dh":"b"}}`
		if err := svc.SaveSubscription(ctx, f.member.ID, token); err != nil {
			t.Fatalf("SaveSubscription failed: %v", err)
		}

		subs, err := f.store.ListGroupSubscriptions(ctx, f.group.ID)
		if err != nil {
			t.Fatalf("ListGroupSubscriptions failed: %v", err)
		}
		if len(subs) != 1 || subs[0].Endpoint != "https://push.example.com/one" {
			t.Fatalf("Expected stored subscription, got %+v", subs)
		}
	})

	t.Run("Re-registering reassigns ownership", func(t *testing.T) {
		f := newFixture(t, "100")
		svc := NewNotificationService(f.store)

		token := `{"endpoint":"https://push.example.com/shared"}`
		if err := svc.SaveSubscription(ctx, f.member.ID, token); err != nil {
			t.Fatalf("SaveSubscription failed: %v", err)
		}
		if err := svc.SaveSubscription(ctx, f.admin.ID, token); err != nil {
			t.Fatalf("SaveSubscription failed: %v", err)
		}

		subs, err := f.store.ListGroupSubscriptions(ctx, f.group.ID)
		if err != nil {
			t.Fatalf("ListGroupSubscriptions failed: %v", err)
		}
		if len(subs) != 1 {
			t.Fatalf("Expected one row for the shared endpoint, got %d", len(subs))
		}
		if subs[0].UserID != f.admin.ID {
			t.Errorf("Expected ownership to move to %s, got %s", f.admin.ID, subs[0].UserID)
		}
	})

	t.Run("Invalid payloads rejected", func(t *testing.T) {
		f := newFixture(t, "100")
		svc := NewNotificationService(f.store)

		if err := svc.SaveSubscription(ctx, f.member.ID, "not-json"); !errors.Is(err, ErrInvalidInput) {
			t.Errorf("Expected ErrInvalidInput for bad JSON, got %v", err)
		}
		if err := svc.SaveSubscription(ctx, f.member.ID, `{"keys":{}}`); !errors.Is(err, ErrInvalidInput) {
			t.Errorf("Expected ErrInvalidInput for missing endpoint, got %v", err)
		}
	})
}

func TestAuthService(t *testing.T) {
	ctx := context.Background()

	newAuthService := func(f *fixture) *AuthService {
		return NewAuthService(
			auth.NewPasswordAuthenticator(f.store),
			auth.NewJWTManager("test-secret", time.Hour),
		)
	}

	t.Run("Register issues a working session", func(t *testing.T) {
		f := newFixture(t, "100")
		svc := newAuthService(f)

		session, err := svc.Register(ctx, "wanda", "wanda@example.com", "password1")
		if err != nil {
			t.Fatalf("Register failed: %v", err)
		}
		if session.Token == "" {
			t.Error("Expected a token")
		}
		if session.User.ID == "" {
			t.Error("Expected a persisted user")
		}

		login, err := svc.Login(ctx, "wanda@example.com", "password1")
		if err != nil {
			t.Fatalf("Login failed: %v", err)
		}
		if login.User.ID != session.User.ID {
			t.Error("Expected login to resolve the same user")
		}
	})

	t.Run("Missing username is invalid", func(t *testing.T) {
		f := newFixture(t, "100")
		svc := newAuthService(f)

		_, err := svc.Register(ctx, "", "x@example.com", "password1")
		if !errors.Is(err, ErrInvalidInput) {
			t.Errorf("Expected ErrInvalidInput, got %v", err)
		}
	})
}
