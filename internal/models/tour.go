package models

import "github.com/shopspring/decimal"

// DayStatus is the admin-controlled lifecycle state of a tour day. It gates
// expense mutations: members may only add/edit/delete expenses while the
// owning day is Ongoing.
type DayStatus string

const (
	DayUpcoming DayStatus = "Upcoming"
	DayOngoing  DayStatus = "Ongoing"
	DayEnded    DayStatus = "Ended"
)

// ValidDayStatus reports whether s is one of the known day statuses.
func ValidDayStatus(s DayStatus) bool {
	switch s {
	case DayUpcoming, DayOngoing, DayEnded:
		return true
	}
	return false
}

// TourDay is one day of a group's itinerary.
type TourDay struct {
	// ID is the unique identifier for the day (UUID format).
	ID string

	// GroupID references the owning group.
	GroupID string

	// DayNumber orders days within a group (unique per group).
	DayNumber int

	// Title is the display title for the day.
	Title string

	// Date is the calendar date in "2006-01-02" form.
	Date string

	// Description is an optional free-text description.
	Description string

	// Status is the current lifecycle state. There is no automatic
	// transition; an admin moves the day through the states.
	Status DayStatus

	// Locations are the stops planned for this day, in visit order.
	// Populated only by itinerary reads.
	Locations []Location
}

// Location is one stop within a tour day.
type Location struct {
	// ID is the unique identifier for the location (UUID format).
	ID string

	// DayID references the owning tour day.
	DayID string

	// Name is the display name of the stop.
	Name string

	// Address is an optional street address.
	Address string

	// Latitude and Longitude are optional map coordinates.
	Latitude  *float64
	Longitude *float64

	// StartTime and EndTime are optional times of day in "HH:MM" form.
	StartTime string
	EndTime   string

	// ReminderMinutes is how many minutes before StartTime an arrival
	// reminder fires. Zero disables the reminder.
	ReminderMinutes int

	// OrderInDay orders locations within the day.
	OrderInDay int

	// Events are the activities at this stop. Populated only by itinerary
	// reads.
	Events []Event
}

// Event is one activity at a location, with an estimated per-person cost.
type Event struct {
	// ID is the unique identifier for the event (UUID format).
	ID string

	// LocationID references the owning location.
	LocationID string

	// Name is the display name of the activity.
	Name string

	// Description is an optional free-text description.
	Description string

	// CostPerUnit is the estimated cost per unit (>= 0). Self-service
	// expenses are priced from this value.
	CostPerUnit decimal.Decimal

	// Time is the optional time of day in "HH:MM" form.
	Time string

	// ReminderMinutes is how many minutes before Time a reminder fires.
	// Zero disables the reminder.
	ReminderMinutes int
}

// MapPin is an event with coordinates, for rendering a group's trip map.
type MapPin struct {
	EventID      string
	EventName    string
	LocationName string
	DayID        string
	Latitude     float64
	Longitude    float64
	OrderInDay   int
}
