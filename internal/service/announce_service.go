package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/wayfarer-app/wayfarer/internal/models"
	"github.com/wayfarer-app/wayfarer/internal/storage"
)

// Deliverer is the notification fan-out used for instant announcements.
type Deliverer interface {
	Deliver(ctx context.Context, groupID, title, message string)
}

// AnnounceService sends admin announcements to a group, either immediately
// or at a scheduled time. Scheduled announcements are delivered by the
// reminder scheduler; instant ones are delivered inline and stored with a
// nil schedule so they appear in the group's history.
type AnnounceService struct {
	store      storage.Store
	authz      *Authorizer
	dispatcher Deliverer
	now        func() time.Time
}

// NewAnnounceService creates an announcement service.
func NewAnnounceService(store storage.Store, authz *Authorizer, dispatcher Deliverer) *AnnounceService {
	return &AnnounceService{
		store:      store,
		authz:      authz,
		dispatcher: dispatcher,
		now:        time.Now,
	}
}

// Announce sends an announcement to the group right away, then records it.
// Delivery happens before persistence; a storage failure after a successful
// delivery is reported but the notification is already out.
func (s *AnnounceService) Announce(ctx context.Context, callerID, groupID, message string) (*models.Announcement, error) {
	if message == "" {
		return nil, fmt.Errorf("%w: message is required", ErrInvalidInput)
	}
	if err := s.authz.Require(ctx, callerID, groupID, models.GroupRoleAdmin); err != nil {
		return nil, err
	}

	s.dispatcher.Deliver(ctx, groupID, "Admin Announcement", message)

	announcement := &models.Announcement{
		GroupID: groupID,
		Message: message,
	}
	if err := s.store.CreateAnnouncement(ctx, announcement); err != nil {
		return nil, fmt.Errorf("failed to record announcement: %w", err)
	}
	slog.Info("Announcement sent", "group_id", groupID, "announcement_id", announcement.ID)
	return announcement, nil
}

// Schedule stores an announcement for future delivery. The time must be in
// the future; the scheduler picks it up once it comes due.
func (s *AnnounceService) Schedule(ctx context.Context, callerID, groupID, message string, at time.Time) (*models.Announcement, error) {
	if message == "" {
		return nil, fmt.Errorf("%w: message is required", ErrInvalidInput)
	}
	if !at.After(s.now()) {
		return nil, fmt.Errorf("%w: scheduled time must be in the future", ErrInvalidInput)
	}
	if err := s.authz.Require(ctx, callerID, groupID, models.GroupRoleAdmin); err != nil {
		return nil, err
	}

	due := at.Unix()
	announcement := &models.Announcement{
		GroupID:      groupID,
		Message:      message,
		ScheduledFor: &due,
	}
	if err := s.store.CreateAnnouncement(ctx, announcement); err != nil {
		return nil, fmt.Errorf("failed to schedule announcement: %w", err)
	}
	slog.Info("Announcement scheduled",
		"group_id", groupID,
		"announcement_id", announcement.ID,
		"scheduled_for", due,
	)
	return announcement, nil
}

// List returns a group's announcement history. Requires membership.
func (s *AnnounceService) List(ctx context.Context, callerID, groupID string) ([]*models.Announcement, error) {
	if err := s.authz.Require(ctx, callerID, groupID, models.GroupRoleMember); err != nil {
		return nil, err
	}
	return s.store.ListGroupAnnouncements(ctx, groupID)
}
