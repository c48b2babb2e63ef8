package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/wayfarer-app/wayfarer/internal/models"
	"github.com/wayfarer-app/wayfarer/internal/storage"
)

// TourService manages a group's itinerary: days, locations and events.
// Every mutation requires group admin; reads require membership.
type TourService struct {
	store storage.Store
	authz *Authorizer
}

// NewTourService creates a tour service.
func NewTourService(store storage.Store, authz *Authorizer) *TourService {
	return &TourService{store: store, authz: authz}
}

// CreateDay adds a day to a group's itinerary.
func (s *TourService) CreateDay(ctx context.Context, callerID string, day *models.TourDay) error {
	if day.GroupID == "" || day.Title == "" {
		return fmt.Errorf("%w: group and title are required", ErrInvalidInput)
	}
	if _, err := time.Parse("2006-01-02", day.Date); err != nil {
		return fmt.Errorf("%w: day date must be YYYY-MM-DD", ErrInvalidInput)
	}
	if err := s.authz.Require(ctx, callerID, day.GroupID, models.GroupRoleAdmin); err != nil {
		return err
	}

	day.Status = models.DayUpcoming
	return s.store.CreateDay(ctx, day)
}

// UpdateDay updates a day's number, title, date and description.
func (s *TourService) UpdateDay(ctx context.Context, callerID string, day *models.TourDay) error {
	existing, err := s.resolveDay(ctx, day.ID)
	if err != nil {
		return err
	}
	if err := s.authz.Require(ctx, callerID, existing.GroupID, models.GroupRoleAdmin); err != nil {
		return err
	}
	return s.store.UpdateDay(ctx, day)
}

// SetDayStatus moves a day through Upcoming/Ongoing/Ended. The transition
// is entirely admin-driven; nothing moves a day automatically.
func (s *TourService) SetDayStatus(ctx context.Context, callerID, dayID string, status models.DayStatus) error {
	if !models.ValidDayStatus(status) {
		return fmt.Errorf("%w: invalid day status %q", ErrInvalidInput, status)
	}
	day, err := s.resolveDay(ctx, dayID)
	if err != nil {
		return err
	}
	if err := s.authz.Require(ctx, callerID, day.GroupID, models.GroupRoleAdmin); err != nil {
		return err
	}

	if err := s.store.SetDayStatus(ctx, dayID, status); err != nil {
		return err
	}
	slog.Info("Day status changed", "day_id", dayID, "status", status)
	return nil
}

// DeleteDay removes a day and everything below it.
func (s *TourService) DeleteDay(ctx context.Context, callerID, dayID string) error {
	day, err := s.resolveDay(ctx, dayID)
	if err != nil {
		return err
	}
	if err := s.authz.Require(ctx, callerID, day.GroupID, models.GroupRoleAdmin); err != nil {
		return err
	}
	return s.store.DeleteDay(ctx, dayID)
}

// CreateLocation adds a stop to a day.
func (s *TourService) CreateLocation(ctx context.Context, callerID string, loc *models.Location) error {
	if loc.DayID == "" || loc.Name == "" {
		return fmt.Errorf("%w: day and name are required", ErrInvalidInput)
	}
	if err := validateTimeOfDay(loc.StartTime); err != nil {
		return err
	}
	if err := validateTimeOfDay(loc.EndTime); err != nil {
		return err
	}
	day, err := s.resolveDay(ctx, loc.DayID)
	if err != nil {
		return err
	}
	if err := s.authz.Require(ctx, callerID, day.GroupID, models.GroupRoleAdmin); err != nil {
		return err
	}
	return s.store.CreateLocation(ctx, loc)
}

// UpdateLocation updates a stop.
func (s *TourService) UpdateLocation(ctx context.Context, callerID string, loc *models.Location) error {
	if err := validateTimeOfDay(loc.StartTime); err != nil {
		return err
	}
	if err := validateTimeOfDay(loc.EndTime); err != nil {
		return err
	}
	groupID, err := s.resolveLocationGroup(ctx, loc.ID)
	if err != nil {
		return err
	}
	if err := s.authz.Require(ctx, callerID, groupID, models.GroupRoleAdmin); err != nil {
		return err
	}
	return s.store.UpdateLocation(ctx, loc)
}

// DeleteLocation removes a stop and its events.
func (s *TourService) DeleteLocation(ctx context.Context, callerID, locationID string) error {
	groupID, err := s.resolveLocationGroup(ctx, locationID)
	if err != nil {
		return err
	}
	if err := s.authz.Require(ctx, callerID, groupID, models.GroupRoleAdmin); err != nil {
		return err
	}
	return s.store.DeleteLocation(ctx, locationID)
}

// CreateEvent adds an activity to a location.
func (s *TourService) CreateEvent(ctx context.Context, callerID string, event *models.Event) error {
	if event.LocationID == "" || event.Name == "" {
		return fmt.Errorf("%w: location and name are required", ErrInvalidInput)
	}
	if event.CostPerUnit.IsNegative() {
		return fmt.Errorf("%w: cost per unit must not be negative", ErrInvalidInput)
	}
	if err := validateTimeOfDay(event.Time); err != nil {
		return err
	}
	groupID, err := s.resolveLocationGroup(ctx, event.LocationID)
	if err != nil {
		return err
	}
	if err := s.authz.Require(ctx, callerID, groupID, models.GroupRoleAdmin); err != nil {
		return err
	}
	return s.store.CreateEvent(ctx, event)
}

// UpdateEvent updates an activity.
func (s *TourService) UpdateEvent(ctx context.Context, callerID string, event *models.Event) error {
	if event.CostPerUnit.IsNegative() {
		return fmt.Errorf("%w: cost per unit must not be negative", ErrInvalidInput)
	}
	if err := validateTimeOfDay(event.Time); err != nil {
		return err
	}
	gate, err := s.store.GetEventGate(ctx, event.ID)
	if err != nil {
		return err
	}
	if gate == nil {
		return fmt.Errorf("%w: event %s", ErrNotFound, event.ID)
	}
	if err := s.authz.Require(ctx, callerID, gate.GroupID, models.GroupRoleAdmin); err != nil {
		return err
	}
	return s.store.UpdateEvent(ctx, event)
}

// DeleteEvent removes an activity and its expenses.
func (s *TourService) DeleteEvent(ctx context.Context, callerID, eventID string) error {
	gate, err := s.store.GetEventGate(ctx, eventID)
	if err != nil {
		return err
	}
	if gate == nil {
		return fmt.Errorf("%w: event %s", ErrNotFound, eventID)
	}
	if err := s.authz.Require(ctx, callerID, gate.GroupID, models.GroupRoleAdmin); err != nil {
		return err
	}
	return s.store.DeleteEvent(ctx, eventID)
}

// GetItinerary retrieves a group's full itinerary. Requires membership.
func (s *TourService) GetItinerary(ctx context.Context, callerID, groupID string) ([]*models.TourDay, error) {
	if err := s.authz.Require(ctx, callerID, groupID, models.GroupRoleMember); err != nil {
		return nil, err
	}
	return s.store.GetItinerary(ctx, groupID)
}

// ListMapPins retrieves a group's mappable events. Requires membership.
func (s *TourService) ListMapPins(ctx context.Context, callerID, groupID string) ([]*models.MapPin, error) {
	if err := s.authz.Require(ctx, callerID, groupID, models.GroupRoleMember); err != nil {
		return nil, err
	}
	return s.store.ListMapPins(ctx, groupID)
}

func (s *TourService) resolveDay(ctx context.Context, dayID string) (*models.TourDay, error) {
	day, err := s.store.GetDay(ctx, dayID)
	if err != nil {
		return nil, err
	}
	if day == nil {
		return nil, fmt.Errorf("%w: day %s", ErrNotFound, dayID)
	}
	return day, nil
}

func (s *TourService) resolveLocationGroup(ctx context.Context, locationID string) (string, error) {
	groupID, err := s.store.GetLocationGroup(ctx, locationID)
	if err != nil {
		return "", err
	}
	if groupID == "" {
		return "", fmt.Errorf("%w: location %s", ErrNotFound, locationID)
	}
	return groupID, nil
}

// validateTimeOfDay accepts "" (unset) or "HH:MM".
func validateTimeOfDay(hhmm string) error {
	if hhmm == "" {
		return nil
	}
	if _, err := time.Parse("15:04", hhmm); err != nil {
		return fmt.Errorf("%w: time of day must be HH:MM", ErrInvalidInput)
	}
	return nil
}
