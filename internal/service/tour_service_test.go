package service

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/wayfarer-app/wayfarer/internal/models"
)

func TestTourService(t *testing.T) {
	ctx := context.Background()

	t.Run("Itinerary writes require group admin", func(t *testing.T) {
		f := newFixture(t, "100")
		svc := NewTourService(f.store, NewAuthorizer(f.store, f.store))

		day := &models.TourDay{GroupID: f.group.ID, DayNumber: 2, Title: "Day 2", Date: "2026-09-11"}
		if err := svc.CreateDay(ctx, f.member.ID, day); !errors.Is(err, ErrForbidden) {
			t.Errorf("Expected ErrForbidden for member, got %v", err)
		}
		if err := svc.CreateDay(ctx, f.admin.ID, day); err != nil {
			t.Fatalf("CreateDay failed for admin: %v", err)
		}
	})

	t.Run("SetDayStatus validates the status", func(t *testing.T) {
		f := newFixture(t, "100")
		svc := NewTourService(f.store, NewAuthorizer(f.store, f.store))

		if err := svc.SetDayStatus(ctx, f.admin.ID, f.day.ID, "Paused"); !errors.Is(err, ErrInvalidInput) {
			t.Errorf("Expected ErrInvalidInput for unknown status, got %v", err)
		}
		if err := svc.SetDayStatus(ctx, f.admin.ID, f.day.ID, models.DayOngoing); err != nil {
			t.Fatalf("SetDayStatus failed: %v", err)
		}

		day, err := f.store.GetDay(ctx, f.day.ID)
		if err != nil {
			t.Fatalf("GetDay failed: %v", err)
		}
		if day.Status != models.DayOngoing {
			t.Errorf("Expected Ongoing, got %q", day.Status)
		}
	})

	t.Run("SetDayStatus on unknown day is NotFound", func(t *testing.T) {
		f := newFixture(t, "100")
		svc := NewTourService(f.store, NewAuthorizer(f.store, f.store))

		err := svc.SetDayStatus(ctx, f.admin.ID, "no-such-day", models.DayOngoing)
		if !errors.Is(err, ErrNotFound) {
			t.Errorf("Expected ErrNotFound, got %v", err)
		}
	})

	t.Run("Time of day validation", func(t *testing.T) {
		f := newFixture(t, "100")
		svc := NewTourService(f.store, NewAuthorizer(f.store, f.store))

		loc := &models.Location{DayID: f.day.ID, Name: "Pier", StartTime: "25:99", OrderInDay: 2}
		if err := svc.CreateLocation(ctx, f.admin.ID, loc); !errors.Is(err, ErrInvalidInput) {
			t.Errorf("Expected ErrInvalidInput for bad start time, got %v", err)
		}

		loc.StartTime = "18:30"
		if err := svc.CreateLocation(ctx, f.admin.ID, loc); err != nil {
			t.Fatalf("CreateLocation failed: %v", err)
		}

		event := &models.Event{LocationID: loc.ID, Name: "Dinner", Time: "7pm"}
		if err := svc.CreateEvent(ctx, f.admin.ID, event); !errors.Is(err, ErrInvalidInput) {
			t.Errorf("Expected ErrInvalidInput for bad event time, got %v", err)
		}
	})

	t.Run("Negative cost per unit is invalid", func(t *testing.T) {
		f := newFixture(t, "100")
		svc := NewTourService(f.store, NewAuthorizer(f.store, f.store))

		loc := &models.Location{DayID: f.day.ID, Name: "Market", OrderInDay: 2}
		if err := svc.CreateLocation(ctx, f.admin.ID, loc); err != nil {
			t.Fatalf("CreateLocation failed: %v", err)
		}

		event := &models.Event{
			LocationID:  loc.ID,
			Name:        "Shopping",
			CostPerUnit: decimal.RequireFromString("-1"),
		}
		if err := svc.CreateEvent(ctx, f.admin.ID, event); !errors.Is(err, ErrInvalidInput) {
			t.Errorf("Expected ErrInvalidInput, got %v", err)
		}
	})

	t.Run("Members can read the itinerary", func(t *testing.T) {
		f := newFixture(t, "100")
		svc := NewTourService(f.store, NewAuthorizer(f.store, f.store))

		days, err := svc.GetItinerary(ctx, f.member.ID, f.group.ID)
		if err != nil {
			t.Fatalf("GetItinerary failed: %v", err)
		}
		if len(days) != 1 {
			t.Errorf("Expected 1 day, got %d", len(days))
		}

		outsider := &models.User{Username: "reader", Email: "reader@example.com", PasswordHash: "x"}
		if err := f.store.CreateUser(ctx, outsider); err != nil {
			t.Fatalf("CreateUser failed: %v", err)
		}
		if _, err := svc.GetItinerary(ctx, outsider.ID, f.group.ID); !errors.Is(err, ErrForbidden) {
			t.Errorf("Expected ErrForbidden for non-member, got %v", err)
		}
	})
}
