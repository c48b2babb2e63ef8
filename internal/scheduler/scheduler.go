// Package scheduler runs the minute tick that delivers event reminders,
// location reminders and scheduled announcements.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/wayfarer-app/wayfarer/internal/metrics"
	"github.com/wayfarer-app/wayfarer/internal/models"
)

const (
	// tickInterval is how often the scheduler wakes up.
	tickInterval = time.Minute

	// matchWindow is the tolerance band around a trigger instant. With a
	// one-minute tick and a +/-30s window each instant is visited by
	// exactly one tick under normal clock behavior. There is no persisted
	// "already sent" marker for reminders: if the tick cadence drifts a
	// reminder can fire twice or not at all.
	matchWindow = 30 * time.Second
)

// Store is the subset of storage the scheduler reads and writes.
type Store interface {
	ListEventReminders(ctx context.Context, date string) ([]*models.EventReminder, error)
	ListLocationReminders(ctx context.Context, date string) ([]*models.LocationReminder, error)
	ListDueAnnouncements(ctx context.Context, now time.Time) ([]*models.Announcement, error)
	ClearSchedule(ctx context.Context, announcementID string) error
}

// Dispatcher delivers one notification to a group over all channels.
type Dispatcher interface {
	Deliver(ctx context.Context, groupID, title, message string)
}

// Service drives the reminder tick. All collaborators are injected; there
// is no global state, so tests can run ticks directly against a fake clock
// and fake transports.
type Service struct {
	store      Store
	dispatcher Dispatcher
	clock      Clock
	interval   time.Duration
}

// New creates a scheduler service. clock may be nil, defaulting to the
// system clock.
func New(store Store, dispatcher Dispatcher, clock Clock) *Service {
	if clock == nil {
		clock = SystemClock()
	}
	return &Service{
		store:      store,
		dispatcher: dispatcher,
		clock:      clock,
		interval:   tickInterval,
	}
}

// Run ticks until ctx is cancelled. Ticks fire on wall clock: a tick that
// overruns the interval does not delay the next one, so two ticks may run
// concurrently. There is no other cancellation; the scheduler lives as
// long as the process.
func (s *Service) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	slog.Info("Scheduler started", "interval", s.interval)
	for {
		select {
		case <-ctx.Done():
			slog.Info("Scheduler stopped")
			return
		case <-ticker.C:
			go s.Tick(ctx)
		}
	}
}

// Tick runs the three reminder tasks once, sequentially. Each task is its
// own failure domain: an error is logged and the remaining tasks still
// run.
func (s *Service) Tick(ctx context.Context) {
	now := s.clock.Now()
	metrics.SchedulerTicks.Inc()
	slog.Debug("Scheduler tick", "now", now)

	if err := s.eventReminders(ctx, now); err != nil {
		metrics.SchedulerTaskErrors.WithLabelValues("event_reminders").Inc()
		slog.Error("Scheduler task failed", "task", "event_reminders", "error", err)
	}
	if err := s.locationReminders(ctx, now); err != nil {
		metrics.SchedulerTaskErrors.WithLabelValues("location_reminders").Inc()
		slog.Error("Scheduler task failed", "task", "location_reminders", "error", err)
	}
	if err := s.scheduledAnnouncements(ctx, now); err != nil {
		metrics.SchedulerTaskErrors.WithLabelValues("announcements").Inc()
		slog.Error("Scheduler task failed", "task", "announcements", "error", err)
	}
}

// eventReminders notifies groups about events starting soon today.
func (s *Service) eventReminders(ctx context.Context, now time.Time) error {
	reminders, err := s.store.ListEventReminders(ctx, today(now))
	if err != nil {
		return fmt.Errorf("failed to list event reminders: %w", err)
	}

	for _, r := range reminders {
		trigger, err := triggerAt(now, r.Time, r.ReminderMinutes)
		if err != nil {
			slog.Warn("Skipping event with bad time", "event_id", r.EventID, "time", r.Time, "error", err)
			continue
		}
		if !inWindow(now, trigger) {
			continue
		}

		message := fmt.Sprintf("Reminder: %q is in %d minutes!", r.Name, r.ReminderMinutes)
		s.dispatcher.Deliver(ctx, r.GroupID, "Upcoming Event", message)
		metrics.RemindersDelivered.WithLabelValues("event").Inc()
		slog.Info("Sent event reminder", "event_id", r.EventID, "group_id", r.GroupID)
	}
	return nil
}

// locationReminders notifies groups ahead of arrival times, keyed on the
// location's start time.
func (s *Service) locationReminders(ctx context.Context, now time.Time) error {
	reminders, err := s.store.ListLocationReminders(ctx, today(now))
	if err != nil {
		return fmt.Errorf("failed to list location reminders: %w", err)
	}

	for _, r := range reminders {
		trigger, err := triggerAt(now, r.StartTime, r.ReminderMinutes)
		if err != nil {
			slog.Warn("Skipping location with bad start time", "location_id", r.LocationID, "time", r.StartTime, "error", err)
			continue
		}
		if !inWindow(now, trigger) {
			continue
		}

		message := fmt.Sprintf("Reminder: You need to be at %q in %d minutes!", r.Name, r.ReminderMinutes)
		s.dispatcher.Deliver(ctx, r.GroupID, "Upcoming Location", message)
		metrics.RemindersDelivered.WithLabelValues("location").Inc()
		slog.Info("Sent location reminder", "location_id", r.LocationID, "group_id", r.GroupID)
	}
	return nil
}

// scheduledAnnouncements delivers every announcement due at or before now,
// then clears its schedule. Unlike the windowed reminders this path is
// at-most-once across restarts: the one-sided comparison catches up missed
// ticks, and once the schedule is cleared the row is never selected again.
func (s *Service) scheduledAnnouncements(ctx context.Context, now time.Time) error {
	due, err := s.store.ListDueAnnouncements(ctx, now)
	if err != nil {
		return fmt.Errorf("failed to list due announcements: %w", err)
	}

	for _, a := range due {
		// Delivery is fire-and-forget; the clear happens after the
		// attempt regardless of outcome.
		s.dispatcher.Deliver(ctx, a.GroupID, "Scheduled Announcement", a.Message)
		metrics.RemindersDelivered.WithLabelValues("announcement").Inc()

		if err := s.store.ClearSchedule(ctx, a.ID); err != nil {
			return fmt.Errorf("failed to clear announcement %s: %w", a.ID, err)
		}
		slog.Info("Sent scheduled announcement", "announcement_id", a.ID, "group_id", a.GroupID)
	}
	return nil
}

// today formats the tick instant as a date in the clock's location.
func today(now time.Time) string {
	return now.Format("2006-01-02")
}

// triggerAt computes the reminder trigger instant: the "HH:MM" time of day
// on now's date, minus the reminder lead.
func triggerAt(now time.Time, hhmm string, reminderMinutes int) (time.Time, error) {
	t, err := time.Parse("15:04", hhmm)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid time of day %q: %w", hhmm, err)
	}
	at := time.Date(now.Year(), now.Month(), now.Day(), t.Hour(), t.Minute(), 0, 0, now.Location())
	return at.Add(-time.Duration(reminderMinutes) * time.Minute), nil
}

// inWindow reports whether trigger falls in [now-30s, now+30s).
func inWindow(now, trigger time.Time) bool {
	lower := now.Add(-matchWindow)
	upper := now.Add(matchWindow)
	return !trigger.Before(lower) && trigger.Before(upper)
}
