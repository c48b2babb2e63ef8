package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/wayfarer-app/wayfarer/internal/models"
)

// UpsertSubscription stores a push subscription keyed by its endpoint.
// Re-registering a known endpoint updates the token and reassigns the row
// to the current user, which handles a shared device logging in as someone
// else.
func (s *SQLiteStore) UpsertSubscription(ctx context.Context, userID, token, endpoint string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO push_subscriptions (id, user_id, token, endpoint, created_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(endpoint) DO UPDATE SET user_id = excluded.user_id, token = excluded.token`,
		uuid.New().String(), userID, token, endpoint, time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert push subscription: %w", err)
	}
	return nil
}

// ListGroupSubscriptions retrieves every push subscription whose owner is a
// member of the group.
func (s *SQLiteStore) ListGroupSubscriptions(ctx context.Context, groupID string) ([]*models.PushSubscription, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT ps.id, ps.user_id, ps.token, ps.endpoint, ps.created_at
		 FROM push_subscriptions ps
		 WHERE ps.user_id IN (SELECT user_id FROM users_groups WHERE group_id = ?)`,
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list group subscriptions: %w", err)
	}
	defer rows.Close()

	var subs []*models.PushSubscription
	for rows.Next() {
		sub := &models.PushSubscription{}
		if err := rows.Scan(&sub.ID, &sub.UserID, &sub.Token, &sub.Endpoint, &sub.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan subscription: %w", err)
		}
		subs = append(subs, sub)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate subscriptions: %w", err)
	}

	return subs, nil
}

// DeleteSubscription removes a subscription by endpoint.
func (s *SQLiteStore) DeleteSubscription(ctx context.Context, endpoint string) error {
	_, err := s.db.ExecContext(ctx,
		"DELETE FROM push_subscriptions WHERE endpoint = ?", endpoint,
	)
	if err != nil {
		return fmt.Errorf("failed to delete subscription: %w", err)
	}
	return nil
}
