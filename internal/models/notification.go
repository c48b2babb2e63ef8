package models

// Announcement is a message to a group, delivered instantly or at a
// scheduled time.
//
// Lifecycle: an instant announcement is stored with ScheduledFor == nil and
// is never scheduled. A scheduled announcement stores the future Unix
// timestamp; the scheduler clears ScheduledFor to nil exactly once when it
// delivers, so the row is never picked up again.
type Announcement struct {
	// ID is the unique identifier for the announcement (UUID format).
	ID string

	// GroupID references the target group.
	GroupID string

	// Message is the announcement body.
	Message string

	// ScheduledFor is the Unix timestamp the announcement is due, or nil
	// once delivered (or if it was instant).
	ScheduledFor *int64

	// CreatedAt is the Unix timestamp when the announcement was created.
	CreatedAt int64
}

// PushSubscription is a stored browser push subscription.
//
// Token is the serialized subscription object as handed over by the
// browser. Endpoint is extracted from it and used as the upsert key: when a
// different user registers the same endpoint (shared device), ownership
// moves to that user.
type PushSubscription struct {
	// ID is the unique identifier for the subscription row (UUID format).
	ID string

	// UserID references the user the subscription currently belongs to.
	UserID string

	// Token is the serialized push subscription descriptor.
	Token string

	// Endpoint is the push service URL, unique per subscription.
	Endpoint string

	// CreatedAt is the Unix timestamp when the subscription was stored.
	CreatedAt int64
}

// EventReminder is an event due for a reminder, joined with its group, as
// read by the scheduler.
type EventReminder struct {
	EventID         string
	GroupID         string
	Name            string
	Time            string // "HH:MM"
	ReminderMinutes int
}

// LocationReminder is a location due for an arrival reminder, joined with
// its group, as read by the scheduler.
type LocationReminder struct {
	LocationID      string
	GroupID         string
	Name            string
	StartTime       string // "HH:MM"
	ReminderMinutes int
}
