package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/wayfarer-app/wayfarer/internal/models"
)

// CreateDeposit appends a ledger entry.
func (s *SQLiteStore) CreateDeposit(ctx context.Context, deposit *models.Deposit) error {
	if deposit.ID == "" {
		deposit.ID = uuid.New().String()
	}
	if deposit.CreatedAt == 0 {
		deposit.CreatedAt = time.Now().Unix()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO deposits (id, user_id, group_id, amount, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		deposit.ID, deposit.UserID, deposit.GroupID, deposit.Amount, deposit.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert deposit: %w", err)
	}
	return nil
}

// ListDeposits retrieves a user's deposits, optionally scoped to one group,
// newest first.
func (s *SQLiteStore) ListDeposits(ctx context.Context, userID, groupID string) ([]*models.Deposit, error) {
	query := `SELECT id, user_id, group_id, amount, created_at
	          FROM deposits WHERE user_id = ?`
	args := []interface{}{userID}
	if groupID != "" {
		query += " AND group_id = ?"
		args = append(args, groupID)
	}
	query += " ORDER BY created_at DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list deposits: %w", err)
	}
	defer rows.Close()

	var deposits []*models.Deposit
	for rows.Next() {
		d := &models.Deposit{}
		if err := rows.Scan(&d.ID, &d.UserID, &d.GroupID, &d.Amount, &d.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan deposit: %w", err)
		}
		deposits = append(deposits, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate deposits: %w", err)
	}

	return deposits, nil
}

// SumDeposits returns the sum of a user's deposit amounts, optionally
// scoped to one group. Amounts are summed in Go to keep decimal exactness;
// SQLite would coerce the TEXT column to float.
func (s *SQLiteStore) SumDeposits(ctx context.Context, userID, groupID string) (decimal.Decimal, error) {
	query := "SELECT amount FROM deposits WHERE user_id = ?"
	args := []interface{}{userID}
	if groupID != "" {
		query += " AND group_id = ?"
		args = append(args, groupID)
	}

	return s.sumDecimalColumn(ctx, query, args...)
}

// SumExpenses returns the sum of a user's expense totals, optionally scoped
// to one group by resolving each expense's event through the itinerary.
func (s *SQLiteStore) SumExpenses(ctx context.Context, userID, groupID string) (decimal.Decimal, error) {
	query := "SELECT total_cost FROM expenses WHERE user_id = ?"
	args := []interface{}{userID}
	if groupID != "" {
		query = `SELECT ex.total_cost
		         FROM expenses ex
		         JOIN events e ON ex.event_id = e.id
		         JOIN locations l ON e.location_id = l.id
		         JOIN tour_days d ON l.day_id = d.id
		         WHERE ex.user_id = ? AND d.group_id = ?`
		args = append(args, groupID)
	}

	return s.sumDecimalColumn(ctx, query, args...)
}

func (s *SQLiteStore) sumDecimalColumn(ctx context.Context, query string, args ...interface{}) (decimal.Decimal, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to query amounts: %w", err)
	}
	defer rows.Close()

	sum := decimal.Zero
	for rows.Next() {
		var amount decimal.Decimal
		if err := rows.Scan(&amount); err != nil {
			return decimal.Zero, fmt.Errorf("failed to scan amount: %w", err)
		}
		sum = sum.Add(amount)
	}
	if err := rows.Err(); err != nil {
		return decimal.Zero, fmt.Errorf("failed to iterate amounts: %w", err)
	}

	return sum, nil
}
