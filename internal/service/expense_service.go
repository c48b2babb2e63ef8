package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/wayfarer-app/wayfarer/internal/models"
	"github.com/wayfarer-app/wayfarer/internal/storage"
)

// ExpenseService enforces the expense mutation rules: members may only
// write while the owning day is Ongoing, self-service adds merge into one
// row per (user, event), and admin paths bypass the gate.
type ExpenseService struct {
	store storage.Store
	authz *Authorizer
}

// NewExpenseService creates an expense service.
func NewExpenseService(store storage.Store, authz *Authorizer) *ExpenseService {
	return &ExpenseService{store: store, authz: authz}
}

// AddSelfExpense records an expense for the caller against an event,
// priced from the event's cost per unit. If the caller already has an
// expense row for the event, its quantity is incremented and the total
// recomputed; otherwise a new row is inserted. Returns true when a new row
// was created.
func (s *ExpenseService) AddSelfExpense(ctx context.Context, userID, eventID string, quantity int) (bool, error) {
	if userID == "" || eventID == "" {
		return false, fmt.Errorf("%w: user and event are required", ErrInvalidInput)
	}
	if quantity < 1 {
		return false, fmt.Errorf("%w: quantity must be at least 1", ErrInvalidInput)
	}

	gate, err := s.store.GetEventGate(ctx, eventID)
	if err != nil {
		return false, err
	}
	if gate == nil {
		return false, fmt.Errorf("%w: event %s", ErrNotFound, eventID)
	}
	if gate.DayStatus != models.DayOngoing {
		return false, fmt.Errorf("%w: expenses can only be added on an Ongoing day", ErrForbidden)
	}

	existing, err := s.store.GetExpenseForUserEvent(ctx, userID, eventID)
	if err != nil {
		return false, err
	}

	if existing != nil {
		newQuantity := existing.Quantity + quantity
		newTotal := gate.CostPerUnit.Mul(decimal.NewFromInt(int64(newQuantity)))
		if err := s.store.UpdateExpense(ctx, existing.ID, newQuantity, newTotal); err != nil {
			return false, err
		}
		slog.Info("Expense quantity updated",
			"expense_id", existing.ID,
			"user_id", userID,
			"quantity", newQuantity,
		)
		return false, nil
	}

	expense := &models.Expense{
		UserID:    userID,
		EventID:   eventID,
		Quantity:  quantity,
		TotalCost: gate.CostPerUnit.Mul(decimal.NewFromInt(int64(quantity))),
	}
	if err := s.store.CreateExpense(ctx, expense); err != nil {
		return false, err
	}
	slog.Info("Expense recorded", "expense_id", expense.ID, "user_id", userID, "event_id", eventID)
	return true, nil
}

// UpdateSelfExpense sets the quantity on the caller's own expense row and
// recomputes the total from the event's cost per unit.
func (s *ExpenseService) UpdateSelfExpense(ctx context.Context, expenseID, userID string, quantity int) error {
	if quantity < 1 {
		return fmt.Errorf("%w: quantity must be at least 1", ErrInvalidInput)
	}

	gate, err := s.store.GetExpenseGate(ctx, expenseID, userID)
	if err != nil {
		return err
	}
	if gate == nil {
		return fmt.Errorf("%w: expense %s", ErrNotFound, expenseID)
	}
	if gate.DayStatus != models.DayOngoing {
		return fmt.Errorf("%w: expenses can only be edited during an Ongoing day", ErrForbidden)
	}

	newTotal := gate.CostPerUnit.Mul(decimal.NewFromInt(int64(quantity)))
	return s.store.UpdateExpense(ctx, expenseID, quantity, newTotal)
}

// DeleteSelfExpense removes the caller's own expense row, subject to the
// same day-status gate as edits.
func (s *ExpenseService) DeleteSelfExpense(ctx context.Context, expenseID, userID string) error {
	gate, err := s.store.GetExpenseGate(ctx, expenseID, userID)
	if err != nil {
		return err
	}
	if gate == nil {
		return fmt.Errorf("%w: expense %s", ErrNotFound, expenseID)
	}
	if gate.DayStatus != models.DayOngoing {
		return fmt.Errorf("%w: expenses can only be deleted during an Ongoing day", ErrForbidden)
	}

	return s.store.DeleteExpense(ctx, expenseID)
}

// AdminAddExpenses inserts one expense row per user against the event, in
// a single transaction, priced from the given actual cost per unit. The
// caller must be an admin of the event's group. The day-status gate does
// not apply: this is the admin override for settling real costs after the
// fact.
func (s *ExpenseService) AdminAddExpenses(ctx context.Context, adminID, eventID string, userIDs []string, quantity int, costPerUnit decimal.Decimal) error {
	if eventID == "" || len(userIDs) == 0 {
		return fmt.Errorf("%w: event and at least one user are required", ErrInvalidInput)
	}
	if quantity < 1 {
		return fmt.Errorf("%w: quantity must be at least 1", ErrInvalidInput)
	}
	if costPerUnit.IsNegative() {
		return fmt.Errorf("%w: cost per unit must not be negative", ErrInvalidInput)
	}

	gate, err := s.store.GetEventGate(ctx, eventID)
	if err != nil {
		return err
	}
	if gate == nil {
		return fmt.Errorf("%w: event %s", ErrNotFound, eventID)
	}
	if err := s.authz.Require(ctx, adminID, gate.GroupID, models.GroupRoleAdmin); err != nil {
		return err
	}

	totalCost := costPerUnit.Mul(decimal.NewFromInt(int64(quantity)))
	if err := s.store.CreateExpensesBulk(ctx, eventID, userIDs, quantity, totalCost); err != nil {
		return err
	}

	slog.Info("Admin added expenses",
		"admin_id", adminID,
		"event_id", eventID,
		"users", len(userIDs),
	)
	return nil
}

// AdminUpdateExpense sets an arbitrary quantity and total cost on any
// expense in a group the caller administers. The total is a manual
// override and is deliberately not derived from quantity x unit cost.
func (s *ExpenseService) AdminUpdateExpense(ctx context.Context, adminID, expenseID string, quantity int, totalCost decimal.Decimal) error {
	if quantity < 1 {
		return fmt.Errorf("%w: quantity must be at least 1", ErrInvalidInput)
	}
	if totalCost.IsNegative() {
		return fmt.Errorf("%w: total cost must not be negative", ErrInvalidInput)
	}

	gate, err := s.store.GetExpenseGate(ctx, expenseID, "")
	if err != nil {
		return err
	}
	if gate == nil {
		return fmt.Errorf("%w: expense %s", ErrNotFound, expenseID)
	}
	if err := s.authz.Require(ctx, adminID, gate.GroupID, models.GroupRoleAdmin); err != nil {
		return err
	}

	return s.store.UpdateExpense(ctx, expenseID, quantity, totalCost)
}

// AdminDeleteExpense removes any expense in a group the caller
// administers, regardless of day status.
func (s *ExpenseService) AdminDeleteExpense(ctx context.Context, adminID, expenseID string) error {
	gate, err := s.store.GetExpenseGate(ctx, expenseID, "")
	if err != nil {
		return err
	}
	if gate == nil {
		return fmt.Errorf("%w: expense %s", ErrNotFound, expenseID)
	}
	if err := s.authz.Require(ctx, adminID, gate.GroupID, models.GroupRoleAdmin); err != nil {
		return err
	}

	return s.store.DeleteExpense(ctx, expenseID)
}

// ListMyExpenses retrieves the caller's expenses with itinerary context,
// newest first.
func (s *ExpenseService) ListMyExpenses(ctx context.Context, userID string) ([]*models.ExpenseDetail, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: user is required", ErrInvalidInput)
	}
	return s.store.ListUserExpenses(ctx, userID)
}
