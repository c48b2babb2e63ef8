package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/wayfarer-app/wayfarer/internal/models"
	"github.com/wayfarer-app/wayfarer/internal/storage"
)

// GetEventGate resolves an event to the context needed to gate an expense
// write: the owning day's status, the unit cost, and the owning group.
func (s *SQLiteStore) GetEventGate(ctx context.Context, eventID string) (*storage.EventGate, error) {
	gate := &storage.EventGate{}
	err := s.db.QueryRowContext(ctx,
		`SELECT d.group_id, d.status, e.cost_per_unit
		 FROM events e
		 JOIN locations l ON e.location_id = l.id
		 JOIN tour_days d ON l.day_id = d.id
		 WHERE e.id = ?`,
		eventID,
	).Scan(&gate.GroupID, &gate.DayStatus, &gate.CostPerUnit)

	if err == sql.ErrNoRows {
		return nil, nil // Event not found
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get event gate: %w", err)
	}
	return gate, nil
}

// GetExpenseForUserEvent retrieves the self-service expense row for
// (user, event), if any.
func (s *SQLiteStore) GetExpenseForUserEvent(ctx context.Context, userID, eventID string) (*models.Expense, error) {
	expense := &models.Expense{}
	err := s.db.QueryRowContext(ctx,
		`SELECT id, user_id, event_id, quantity, total_cost, created_at
		 FROM expenses WHERE user_id = ? AND event_id = ?`,
		userID, eventID,
	).Scan(&expense.ID, &expense.UserID, &expense.EventID, &expense.Quantity, &expense.TotalCost, &expense.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil // No expense yet
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get expense for user/event: %w", err)
	}
	return expense, nil
}

// GetExpenseGate resolves an expense row to its gate context. When userID
// is non-empty the row must also belong to that user.
func (s *SQLiteStore) GetExpenseGate(ctx context.Context, expenseID, userID string) (*storage.ExpenseGate, error) {
	query := `SELECT ex.id, ex.user_id, ex.event_id, ex.quantity, ex.total_cost, ex.created_at,
	                 d.group_id, d.status, e.cost_per_unit
	          FROM expenses ex
	          JOIN events e ON ex.event_id = e.id
	          JOIN locations l ON e.location_id = l.id
	          JOIN tour_days d ON l.day_id = d.id
	          WHERE ex.id = ?`
	args := []interface{}{expenseID}
	if userID != "" {
		query += " AND ex.user_id = ?"
		args = append(args, userID)
	}

	gate := &storage.ExpenseGate{}
	err := s.db.QueryRowContext(ctx, query, args...).Scan(
		&gate.Expense.ID, &gate.Expense.UserID, &gate.Expense.EventID,
		&gate.Expense.Quantity, &gate.Expense.TotalCost, &gate.Expense.CreatedAt,
		&gate.GroupID, &gate.DayStatus, &gate.CostPerUnit,
	)

	if err == sql.ErrNoRows {
		return nil, nil // Expense not found (or not owned by userID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get expense gate: %w", err)
	}
	return gate, nil
}

// CreateExpense inserts a new expense row.
func (s *SQLiteStore) CreateExpense(ctx context.Context, expense *models.Expense) error {
	if expense.ID == "" {
		expense.ID = uuid.New().String()
	}
	if expense.CreatedAt == 0 {
		expense.CreatedAt = time.Now().Unix()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO expenses (id, user_id, event_id, quantity, total_cost, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		expense.ID, expense.UserID, expense.EventID, expense.Quantity, expense.TotalCost, expense.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert expense: %w", err)
	}
	return nil
}

// UpdateExpense sets a row's quantity and total cost.
func (s *SQLiteStore) UpdateExpense(ctx context.Context, expenseID string, quantity int, totalCost decimal.Decimal) error {
	result, err := s.db.ExecContext(ctx,
		"UPDATE expenses SET quantity = ?, total_cost = ? WHERE id = ?",
		quantity, totalCost, expenseID,
	)
	if err != nil {
		return fmt.Errorf("failed to update expense: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("expense not found: %s", expenseID)
	}
	return nil
}

// DeleteExpense removes a row.
func (s *SQLiteStore) DeleteExpense(ctx context.Context, expenseID string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM expenses WHERE id = ?", expenseID)
	if err != nil {
		return fmt.Errorf("failed to delete expense: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("expense not found: %s", expenseID)
	}
	return nil
}

// CreateExpensesBulk inserts one expense row per user in a single
// transaction. Any failure rolls back every row.
func (s *SQLiteStore) CreateExpensesBulk(ctx context.Context, eventID string, userIDs []string, quantity int, totalCost decimal.Decimal) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().Unix()
	for _, userID := range userIDs {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO expenses (id, user_id, event_id, quantity, total_cost, created_at)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			uuid.New().String(), userID, eventID, quantity, totalCost, now,
		)
		if err != nil {
			return fmt.Errorf("failed to insert expense for user %s: %w", userID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// ListUserExpenses retrieves a user's expenses with their itinerary
// context, newest first.
func (s *SQLiteStore) ListUserExpenses(ctx context.Context, userID string) ([]*models.ExpenseDetail, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT ex.id, ex.user_id, ex.event_id, ex.quantity, ex.total_cost, ex.created_at,
		        e.name, e.cost_per_unit, l.name, d.title, d.day_number, d.status
		 FROM expenses ex
		 JOIN events e ON ex.event_id = e.id
		 JOIN locations l ON e.location_id = l.id
		 JOIN tour_days d ON l.day_id = d.id
		 WHERE ex.user_id = ?
		 ORDER BY ex.created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list user expenses: %w", err)
	}
	defer rows.Close()

	var details []*models.ExpenseDetail
	for rows.Next() {
		d := &models.ExpenseDetail{}
		if err := rows.Scan(&d.ID, &d.UserID, &d.EventID, &d.Quantity, &d.TotalCost, &d.CreatedAt,
			&d.EventName, &d.CostPerUnit, &d.LocationName, &d.DayTitle, &d.DayNumber, &d.DayStatus); err != nil {
			return nil, fmt.Errorf("failed to scan expense detail: %w", err)
		}
		details = append(details, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate expense details: %w", err)
	}

	return details, nil
}
