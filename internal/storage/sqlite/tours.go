package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/wayfarer-app/wayfarer/internal/models"
)

// CreateDay inserts a new tour day. The (group, day_number) pair is unique;
// a duplicate insert fails on the schema constraint.
func (s *SQLiteStore) CreateDay(ctx context.Context, day *models.TourDay) error {
	if day.ID == "" {
		day.ID = uuid.New().String()
	}
	if day.Status == "" {
		day.Status = models.DayUpcoming
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO tour_days (id, group_id, day_number, title, day_date, description, status)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		day.ID, day.GroupID, day.DayNumber, day.Title, day.Date, day.Description, day.Status,
	)
	if err != nil {
		return fmt.Errorf("failed to insert tour day: %w", err)
	}
	return nil
}

// GetDay retrieves a tour day by ID.
func (s *SQLiteStore) GetDay(ctx context.Context, dayID string) (*models.TourDay, error) {
	day := &models.TourDay{}
	err := s.db.QueryRowContext(ctx,
		`SELECT id, group_id, day_number, title, day_date, description, status
		 FROM tour_days WHERE id = ?`,
		dayID,
	).Scan(&day.ID, &day.GroupID, &day.DayNumber, &day.Title, &day.Date, &day.Description, &day.Status)

	if err == sql.ErrNoRows {
		return nil, nil // Day not found
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get tour day: %w", err)
	}
	return day, nil
}

// UpdateDay updates a day's number, title, date and description. Status is
// changed only through SetDayStatus.
func (s *SQLiteStore) UpdateDay(ctx context.Context, day *models.TourDay) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE tour_days SET day_number = ?, title = ?, day_date = ?, description = ?
		 WHERE id = ?`,
		day.DayNumber, day.Title, day.Date, day.Description, day.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update tour day: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("tour day not found: %s", day.ID)
	}
	return nil
}

// SetDayStatus moves a day through its lifecycle.
func (s *SQLiteStore) SetDayStatus(ctx context.Context, dayID string, status models.DayStatus) error {
	result, err := s.db.ExecContext(ctx,
		"UPDATE tour_days SET status = ? WHERE id = ?",
		status, dayID,
	)
	if err != nil {
		return fmt.Errorf("failed to set day status: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("tour day not found: %s", dayID)
	}
	return nil
}

// DeleteDay removes a day; locations, events and expenses below it cascade.
func (s *SQLiteStore) DeleteDay(ctx context.Context, dayID string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM tour_days WHERE id = ?", dayID)
	if err != nil {
		return fmt.Errorf("failed to delete tour day: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("tour day not found: %s", dayID)
	}
	return nil
}

// CreateLocation inserts a new location.
func (s *SQLiteStore) CreateLocation(ctx context.Context, loc *models.Location) error {
	if loc.ID == "" {
		loc.ID = uuid.New().String()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO locations (id, day_id, name, address, latitude, longitude, start_time, end_time, reminder_minutes, order_in_day)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		loc.ID, loc.DayID, loc.Name, loc.Address, loc.Latitude, loc.Longitude,
		loc.StartTime, loc.EndTime, loc.ReminderMinutes, loc.OrderInDay,
	)
	if err != nil {
		return fmt.Errorf("failed to insert location: %w", err)
	}
	return nil
}

// UpdateLocation updates all editable fields of a location.
func (s *SQLiteStore) UpdateLocation(ctx context.Context, loc *models.Location) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE locations
		 SET name = ?, address = ?, latitude = ?, longitude = ?, start_time = ?, end_time = ?, reminder_minutes = ?, order_in_day = ?
		 WHERE id = ?`,
		loc.Name, loc.Address, loc.Latitude, loc.Longitude, loc.StartTime, loc.EndTime,
		loc.ReminderMinutes, loc.OrderInDay, loc.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update location: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("location not found: %s", loc.ID)
	}
	return nil
}

// DeleteLocation removes a location; its events cascade.
func (s *SQLiteStore) DeleteLocation(ctx context.Context, locationID string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM locations WHERE id = ?", locationID)
	if err != nil {
		return fmt.Errorf("failed to delete location: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("location not found: %s", locationID)
	}
	return nil
}

// GetLocationGroup resolves a location to its owning group ID.
func (s *SQLiteStore) GetLocationGroup(ctx context.Context, locationID string) (string, error) {
	var groupID string
	err := s.db.QueryRowContext(ctx,
		`SELECT d.group_id FROM locations l
		 JOIN tour_days d ON l.day_id = d.id
		 WHERE l.id = ?`,
		locationID,
	).Scan(&groupID)

	if err == sql.ErrNoRows {
		return "", nil // Location not found
	}
	if err != nil {
		return "", fmt.Errorf("failed to resolve location group: %w", err)
	}
	return groupID, nil
}

// CreateEvent inserts a new event.
func (s *SQLiteStore) CreateEvent(ctx context.Context, event *models.Event) error {
	if event.ID == "" {
		event.ID = uuid.New().String()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO events (id, location_id, name, description, cost_per_unit, event_time, reminder_minutes)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		event.ID, event.LocationID, event.Name, event.Description,
		event.CostPerUnit, event.Time, event.ReminderMinutes,
	)
	if err != nil {
		return fmt.Errorf("failed to insert event: %w", err)
	}
	return nil
}

// UpdateEvent updates all editable fields of an event.
func (s *SQLiteStore) UpdateEvent(ctx context.Context, event *models.Event) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE events
		 SET name = ?, description = ?, cost_per_unit = ?, event_time = ?, reminder_minutes = ?
		 WHERE id = ?`,
		event.Name, event.Description, event.CostPerUnit, event.Time, event.ReminderMinutes, event.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update event: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("event not found: %s", event.ID)
	}
	return nil
}

// DeleteEvent removes an event; its expenses cascade.
func (s *SQLiteStore) DeleteEvent(ctx context.Context, eventID string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM events WHERE id = ?", eventID)
	if err != nil {
		return fmt.Errorf("failed to delete event: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("event not found: %s", eventID)
	}
	return nil
}

// GetItinerary retrieves a group's full itinerary: days ordered by day
// number, each with its locations in visit order and their events.
func (s *SQLiteStore) GetItinerary(ctx context.Context, groupID string) ([]*models.TourDay, error) {
	dayRows, err := s.db.QueryContext(ctx,
		`SELECT id, group_id, day_number, title, day_date, description, status
		 FROM tour_days WHERE group_id = ? ORDER BY day_number`,
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get tour days: %w", err)
	}
	defer dayRows.Close()

	var days []*models.TourDay
	for dayRows.Next() {
		day := &models.TourDay{}
		if err := dayRows.Scan(&day.ID, &day.GroupID, &day.DayNumber, &day.Title, &day.Date, &day.Description, &day.Status); err != nil {
			return nil, fmt.Errorf("failed to scan tour day: %w", err)
		}
		days = append(days, day)
	}
	if err := dayRows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate tour days: %w", err)
	}

	for _, day := range days {
		locations, err := s.listLocations(ctx, day.ID)
		if err != nil {
			return nil, err
		}
		day.Locations = locations
	}

	return days, nil
}

func (s *SQLiteStore) listLocations(ctx context.Context, dayID string) ([]models.Location, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, day_id, name, address, latitude, longitude, start_time, end_time, reminder_minutes, order_in_day
		 FROM locations WHERE day_id = ? ORDER BY order_in_day`,
		dayID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get locations: %w", err)
	}
	defer rows.Close()

	var locations []models.Location
	for rows.Next() {
		var loc models.Location
		var lat, lon sql.NullFloat64
		if err := rows.Scan(&loc.ID, &loc.DayID, &loc.Name, &loc.Address, &lat, &lon,
			&loc.StartTime, &loc.EndTime, &loc.ReminderMinutes, &loc.OrderInDay); err != nil {
			return nil, fmt.Errorf("failed to scan location: %w", err)
		}
		if lat.Valid {
			loc.Latitude = &lat.Float64
		}
		if lon.Valid {
			loc.Longitude = &lon.Float64
		}
		locations = append(locations, loc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate locations: %w", err)
	}

	for i := range locations {
		events, err := s.listEvents(ctx, locations[i].ID)
		if err != nil {
			return nil, err
		}
		locations[i].Events = events
	}

	return locations, nil
}

func (s *SQLiteStore) listEvents(ctx context.Context, locationID string) ([]models.Event, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, location_id, name, description, cost_per_unit, event_time, reminder_minutes
		 FROM events WHERE location_id = ? ORDER BY event_time, name`,
		locationID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get events: %w", err)
	}
	defer rows.Close()

	var events []models.Event
	for rows.Next() {
		var event models.Event
		if err := rows.Scan(&event.ID, &event.LocationID, &event.Name, &event.Description,
			&event.CostPerUnit, &event.Time, &event.ReminderMinutes); err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate events: %w", err)
	}

	return events, nil
}

// ListMapPins retrieves all events of a group whose location has
// coordinates.
func (s *SQLiteStore) ListMapPins(ctx context.Context, groupID string) ([]*models.MapPin, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT e.id, e.name, l.name, d.id, l.latitude, l.longitude, l.order_in_day
		 FROM events e
		 JOIN locations l ON e.location_id = l.id
		 JOIN tour_days d ON l.day_id = d.id
		 WHERE d.group_id = ? AND l.latitude IS NOT NULL AND l.longitude IS NOT NULL`,
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get map pins: %w", err)
	}
	defer rows.Close()

	var pins []*models.MapPin
	for rows.Next() {
		pin := &models.MapPin{}
		if err := rows.Scan(&pin.EventID, &pin.EventName, &pin.LocationName, &pin.DayID,
			&pin.Latitude, &pin.Longitude, &pin.OrderInDay); err != nil {
			return nil, fmt.Errorf("failed to scan map pin: %w", err)
		}
		pins = append(pins, pin)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate map pins: %w", err)
	}

	return pins, nil
}

// ListEventReminders retrieves events with an enabled reminder and a set
// time whose owning day falls on the given date.
func (s *SQLiteStore) ListEventReminders(ctx context.Context, date string) ([]*models.EventReminder, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT e.id, d.group_id, e.name, e.event_time, e.reminder_minutes
		 FROM events e
		 JOIN locations l ON e.location_id = l.id
		 JOIN tour_days d ON l.day_id = d.id
		 WHERE d.day_date = ? AND e.reminder_minutes > 0 AND e.event_time != ''`,
		date,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list event reminders: %w", err)
	}
	defer rows.Close()

	var reminders []*models.EventReminder
	for rows.Next() {
		r := &models.EventReminder{}
		if err := rows.Scan(&r.EventID, &r.GroupID, &r.Name, &r.Time, &r.ReminderMinutes); err != nil {
			return nil, fmt.Errorf("failed to scan event reminder: %w", err)
		}
		reminders = append(reminders, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate event reminders: %w", err)
	}

	return reminders, nil
}

// ListLocationReminders retrieves locations with an enabled reminder and a
// start time whose owning day falls on the given date.
func (s *SQLiteStore) ListLocationReminders(ctx context.Context, date string) ([]*models.LocationReminder, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT l.id, d.group_id, l.name, l.start_time, l.reminder_minutes
		 FROM locations l
		 JOIN tour_days d ON l.day_id = d.id
		 WHERE d.day_date = ? AND l.reminder_minutes > 0 AND l.start_time != ''`,
		date,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list location reminders: %w", err)
	}
	defer rows.Close()

	var reminders []*models.LocationReminder
	for rows.Next() {
		r := &models.LocationReminder{}
		if err := rows.Scan(&r.LocationID, &r.GroupID, &r.Name, &r.StartTime, &r.ReminderMinutes); err != nil {
			return nil, fmt.Errorf("failed to scan location reminder: %w", err)
		}
		reminders = append(reminders, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate location reminders: %w", err)
	}

	return reminders, nil
}
