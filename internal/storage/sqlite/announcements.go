package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/wayfarer-app/wayfarer/internal/models"
)

// CreateAnnouncement persists an announcement. ScheduledFor nil means the
// announcement was delivered instantly and must never be picked up by the
// scheduler.
func (s *SQLiteStore) CreateAnnouncement(ctx context.Context, a *models.Announcement) error {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	if a.CreatedAt == 0 {
		a.CreatedAt = time.Now().Unix()
	}

	var scheduledFor interface{}
	if a.ScheduledFor != nil {
		scheduledFor = *a.ScheduledFor
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO announcements (id, group_id, message, scheduled_for, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		a.ID, a.GroupID, a.Message, scheduledFor, a.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert announcement: %w", err)
	}
	return nil
}

// ListDueAnnouncements retrieves every announcement scheduled at or before
// now. There is deliberately no lower bound so announcements missed while
// the process was down are still delivered.
func (s *SQLiteStore) ListDueAnnouncements(ctx context.Context, now time.Time) ([]*models.Announcement, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, group_id, message, scheduled_for, created_at
		 FROM announcements
		 WHERE scheduled_for IS NOT NULL AND scheduled_for <= ?`,
		now.Unix(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list due announcements: %w", err)
	}
	defer rows.Close()

	return scanAnnouncements(rows)
}

// ClearSchedule nulls an announcement's schedule so it is never selected as
// due again.
func (s *SQLiteStore) ClearSchedule(ctx context.Context, announcementID string) error {
	result, err := s.db.ExecContext(ctx,
		"UPDATE announcements SET scheduled_for = NULL WHERE id = ?",
		announcementID,
	)
	if err != nil {
		return fmt.Errorf("failed to clear announcement schedule: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("announcement not found: %s", announcementID)
	}
	return nil
}

// ListGroupAnnouncements retrieves a group's announcements, newest first.
func (s *SQLiteStore) ListGroupAnnouncements(ctx context.Context, groupID string) ([]*models.Announcement, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, group_id, message, scheduled_for, created_at
		 FROM announcements WHERE group_id = ? ORDER BY created_at DESC`,
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list group announcements: %w", err)
	}
	defer rows.Close()

	return scanAnnouncements(rows)
}

func scanAnnouncements(rows *sql.Rows) ([]*models.Announcement, error) {
	var announcements []*models.Announcement
	for rows.Next() {
		a := &models.Announcement{}
		var scheduledFor sql.NullInt64
		if err := rows.Scan(&a.ID, &a.GroupID, &a.Message, &scheduledFor, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan announcement: %w", err)
		}
		if scheduledFor.Valid {
			a.ScheduledFor = &scheduledFor.Int64
		}
		announcements = append(announcements, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate announcements: %w", err)
	}
	return announcements, nil
}
