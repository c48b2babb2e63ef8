package service

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/wayfarer-app/wayfarer/internal/models"
	"github.com/wayfarer-app/wayfarer/internal/storage/sqlite"
)

// fixture is a populated store with a group, an admin, a member, and one
// day/location/event chain.
type fixture struct {
	store  *sqlite.SQLiteStore
	admin  *models.User
	member *models.User
	group  *models.Group
	day    *models.TourDay
	event  *models.Event
}

func newFixture(t *testing.T, costPerUnit string) *fixture {
	t.Helper()
	ctx := context.Background()

	tempDir, err := os.MkdirTemp("", "wayfarer-svc-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(tempDir) })

	store, err := sqlite.New(filepath.Join(tempDir, "test.db"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	f := &fixture{store: store}

	f.admin = &models.User{Username: "admin", Email: "admin@example.com", PasswordHash: "x"}
	f.member = &models.User{Username: "member", Email: "member@example.com", PasswordHash: "x"}
	for _, u := range []*models.User{f.admin, f.member} {
		if err := store.CreateUser(ctx, u); err != nil {
			t.Fatalf("CreateUser failed: %v", err)
		}
	}

	f.group = &models.Group{Name: "Test Trip"}
	if err := store.CreateGroup(ctx, f.group, f.admin.ID); err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}
	if err := store.AddMember(ctx, f.group.ID, f.member.ID, models.GroupRoleMember); err != nil {
		t.Fatalf("AddMember failed: %v", err)
	}

	f.day = &models.TourDay{GroupID: f.group.ID, DayNumber: 1, Title: "Day 1", Date: "2026-09-10"}
	if err := store.CreateDay(ctx, f.day); err != nil {
		t.Fatalf("CreateDay failed: %v", err)
	}
	loc := &models.Location{DayID: f.day.ID, Name: "Fort", OrderInDay: 1}
	if err := store.CreateLocation(ctx, loc); err != nil {
		t.Fatalf("CreateLocation failed: %v", err)
	}
	f.event = &models.Event{
		LocationID:  loc.ID,
		Name:        "Guided tour",
		CostPerUnit: decimal.RequireFromString(costPerUnit),
	}
	if err := store.CreateEvent(ctx, f.event); err != nil {
		t.Fatalf("CreateEvent failed: %v", err)
	}

	return f
}

func (f *fixture) setDayStatus(t *testing.T, status models.DayStatus) {
	t.Helper()
	if err := f.store.SetDayStatus(context.Background(), f.day.ID, status); err != nil {
		t.Fatalf("SetDayStatus failed: %v", err)
	}
}

func (f *fixture) expenses() *ExpenseService {
	authz := NewAuthorizer(f.store, f.store)
	return NewExpenseService(f.store, authz)
}

func (f *fixture) finances() *FinanceService {
	authz := NewAuthorizer(f.store, f.store)
	return NewFinanceService(f.store, authz)
}

func TestAddSelfExpense(t *testing.T) {
	ctx := context.Background()

	t.Run("Rejected while day is Upcoming", func(t *testing.T) {
		f := newFixture(t, "100")
		svc := f.expenses()

		_, err := svc.AddSelfExpense(ctx, f.member.ID, f.event.ID, 1)
		if !errors.Is(err, ErrForbidden) {
			t.Errorf("Expected ErrForbidden, got %v", err)
		}
	})

	t.Run("Rejected after day has Ended", func(t *testing.T) {
		f := newFixture(t, "100")
		f.setDayStatus(t, models.DayEnded)
		svc := f.expenses()

		_, err := svc.AddSelfExpense(ctx, f.member.ID, f.event.ID, 1)
		if !errors.Is(err, ErrForbidden) {
			t.Errorf("Expected ErrForbidden, got %v", err)
		}
	})

	t.Run("Creates a row priced from the event", func(t *testing.T) {
		f := newFixture(t, "150.50")
		f.setDayStatus(t, models.DayOngoing)
		svc := f.expenses()

		created, err := svc.AddSelfExpense(ctx, f.member.ID, f.event.ID, 2)
		if err != nil {
			t.Fatalf("AddSelfExpense failed: %v", err)
		}
		if !created {
			t.Error("Expected a new row on first add")
		}

		expense, err := f.store.GetExpenseForUserEvent(ctx, f.member.ID, f.event.ID)
		if err != nil || expense == nil {
			t.Fatalf("Expected expense row: %v", err)
		}
		if expense.Quantity != 2 || !expense.TotalCost.Equal(decimal.RequireFromString("301")) {
			t.Errorf("Expected 2 x 301, got %d x %s", expense.Quantity, expense.TotalCost)
		}
	})

	t.Run("Second add merges into the existing row", func(t *testing.T) {
		f := newFixture(t, "100")
		f.setDayStatus(t, models.DayOngoing)
		svc := f.expenses()

		if _, err := svc.AddSelfExpense(ctx, f.member.ID, f.event.ID, 2); err != nil {
			t.Fatalf("AddSelfExpense failed: %v", err)
		}
		created, err := svc.AddSelfExpense(ctx, f.member.ID, f.event.ID, 3)
		if err != nil {
			t.Fatalf("AddSelfExpense failed: %v", err)
		}
		if created {
			t.Error("Expected merge, not a new row")
		}

		expense, err := f.store.GetExpenseForUserEvent(ctx, f.member.ID, f.event.ID)
		if err != nil || expense == nil {
			t.Fatalf("Expected expense row: %v", err)
		}
		if expense.Quantity != 5 {
			t.Errorf("Expected merged quantity 5, got %d", expense.Quantity)
		}
		if !expense.TotalCost.Equal(decimal.RequireFromString("500")) {
			t.Errorf("Expected total 500, got %s", expense.TotalCost)
		}
	})

	t.Run("Unknown event is NotFound", func(t *testing.T) {
		f := newFixture(t, "100")
		svc := f.expenses()

		_, err := svc.AddSelfExpense(ctx, f.member.ID, "no-such-event", 1)
		if !errors.Is(err, ErrNotFound) {
			t.Errorf("Expected ErrNotFound, got %v", err)
		}
	})

	t.Run("Zero quantity is invalid", func(t *testing.T) {
		f := newFixture(t, "100")
		f.setDayStatus(t, models.DayOngoing)
		svc := f.expenses()

		_, err := svc.AddSelfExpense(ctx, f.member.ID, f.event.ID, 0)
		if !errors.Is(err, ErrInvalidInput) {
			t.Errorf("Expected ErrInvalidInput, got %v", err)
		}
	})
}

func TestSelfExpenseEditAndDelete(t *testing.T) {
	ctx := context.Background()

	t.Run("Update recomputes total from unit cost", func(t *testing.T) {
		f := newFixture(t, "40")
		f.setDayStatus(t, models.DayOngoing)
		svc := f.expenses()

		if _, err := svc.AddSelfExpense(ctx, f.member.ID, f.event.ID, 1); err != nil {
			t.Fatalf("AddSelfExpense failed: %v", err)
		}
		expense, _ := f.store.GetExpenseForUserEvent(ctx, f.member.ID, f.event.ID)

		if err := svc.UpdateSelfExpense(ctx, expense.ID, f.member.ID, 4); err != nil {
			t.Fatalf("UpdateSelfExpense failed: %v", err)
		}
		got, _ := f.store.GetExpenseForUserEvent(ctx, f.member.ID, f.event.ID)
		if got.Quantity != 4 || !got.TotalCost.Equal(decimal.RequireFromString("160")) {
			t.Errorf("Expected 4 x 160, got %d x %s", got.Quantity, got.TotalCost)
		}
	})

	t.Run("Cannot touch another user's row", func(t *testing.T) {
		f := newFixture(t, "40")
		f.setDayStatus(t, models.DayOngoing)
		svc := f.expenses()

		if _, err := svc.AddSelfExpense(ctx, f.member.ID, f.event.ID, 1); err != nil {
			t.Fatalf("AddSelfExpense failed: %v", err)
		}
		expense, _ := f.store.GetExpenseForUserEvent(ctx, f.member.ID, f.event.ID)

		if err := svc.UpdateSelfExpense(ctx, expense.ID, f.admin.ID, 2); !errors.Is(err, ErrNotFound) {
			t.Errorf("Expected ErrNotFound for foreign row, got %v", err)
		}
		if err := svc.DeleteSelfExpense(ctx, expense.ID, f.admin.ID); !errors.Is(err, ErrNotFound) {
			t.Errorf("Expected ErrNotFound for foreign row, got %v", err)
		}
	})

	t.Run("Edits blocked once the day ends", func(t *testing.T) {
		f := newFixture(t, "40")
		f.setDayStatus(t, models.DayOngoing)
		svc := f.expenses()

		if _, err := svc.AddSelfExpense(ctx, f.member.ID, f.event.ID, 1); err != nil {
			t.Fatalf("AddSelfExpense failed: %v", err)
		}
		expense, _ := f.store.GetExpenseForUserEvent(ctx, f.member.ID, f.event.ID)
		f.setDayStatus(t, models.DayEnded)

		if err := svc.UpdateSelfExpense(ctx, expense.ID, f.member.ID, 2); !errors.Is(err, ErrForbidden) {
			t.Errorf("Expected ErrForbidden, got %v", err)
		}
		if err := svc.DeleteSelfExpense(ctx, expense.ID, f.member.ID); !errors.Is(err, ErrForbidden) {
			t.Errorf("Expected ErrForbidden, got %v", err)
		}
	})

	t.Run("Delete removes the row", func(t *testing.T) {
		f := newFixture(t, "40")
		f.setDayStatus(t, models.DayOngoing)
		svc := f.expenses()

		if _, err := svc.AddSelfExpense(ctx, f.member.ID, f.event.ID, 1); err != nil {
			t.Fatalf("AddSelfExpense failed: %v", err)
		}
		expense, _ := f.store.GetExpenseForUserEvent(ctx, f.member.ID, f.event.ID)

		if err := svc.DeleteSelfExpense(ctx, expense.ID, f.member.ID); err != nil {
			t.Fatalf("DeleteSelfExpense failed: %v", err)
		}
		got, err := f.store.GetExpenseForUserEvent(ctx, f.member.ID, f.event.ID)
		if err != nil {
			t.Fatalf("GetExpenseForUserEvent failed: %v", err)
		}
		if got != nil {
			t.Error("Expected row to be gone")
		}
	})
}

func TestAdminExpensePaths(t *testing.T) {
	ctx := context.Background()

	t.Run("Bulk add bypasses the day gate", func(t *testing.T) {
		f := newFixture(t, "100")
		// Day stays Upcoming; the admin path must not care.
		svc := f.expenses()

		err := svc.AdminAddExpenses(ctx, f.admin.ID, f.event.ID,
			[]string{f.admin.ID, f.member.ID}, 2, decimal.RequireFromString("90"))
		if err != nil {
			t.Fatalf("AdminAddExpenses failed: %v", err)
		}

		expense, _ := f.store.GetExpenseForUserEvent(ctx, f.member.ID, f.event.ID)
		if expense == nil {
			t.Fatal("Expected expense for member")
		}
		if !expense.TotalCost.Equal(decimal.RequireFromString("180")) {
			t.Errorf("Expected total 180 from actual unit cost, got %s", expense.TotalCost)
		}
	})

	t.Run("Bulk add requires group admin", func(t *testing.T) {
		f := newFixture(t, "100")
		svc := f.expenses()

		err := svc.AdminAddExpenses(ctx, f.member.ID, f.event.ID, []string{f.member.ID}, 1, decimal.RequireFromString("10"))
		if !errors.Is(err, ErrForbidden) {
			t.Errorf("Expected ErrForbidden, got %v", err)
		}
	})

	t.Run("Unknown event reported before permissions", func(t *testing.T) {
		f := newFixture(t, "100")
		svc := f.expenses()

		err := svc.AdminAddExpenses(ctx, f.member.ID, "no-such-event", []string{f.member.ID}, 1, decimal.RequireFromString("10"))
		if !errors.Is(err, ErrNotFound) {
			t.Errorf("Expected ErrNotFound, got %v", err)
		}
	})

	t.Run("Admin update overrides the total manually", func(t *testing.T) {
		f := newFixture(t, "100")
		f.setDayStatus(t, models.DayOngoing)
		svc := f.expenses()

		if _, err := svc.AddSelfExpense(ctx, f.member.ID, f.event.ID, 1); err != nil {
			t.Fatalf("AddSelfExpense failed: %v", err)
		}
		expense, _ := f.store.GetExpenseForUserEvent(ctx, f.member.ID, f.event.ID)
		f.setDayStatus(t, models.DayEnded)

		// 2 x 100 would be 200; the manual override wins.
		if err := svc.AdminUpdateExpense(ctx, f.admin.ID, expense.ID, 2, decimal.RequireFromString("175.25")); err != nil {
			t.Fatalf("AdminUpdateExpense failed: %v", err)
		}
		got, _ := f.store.GetExpenseForUserEvent(ctx, f.member.ID, f.event.ID)
		if got.Quantity != 2 || !got.TotalCost.Equal(decimal.RequireFromString("175.25")) {
			t.Errorf("Expected 2 x 175.25, got %d x %s", got.Quantity, got.TotalCost)
		}
	})

	t.Run("Admin delete works regardless of day status", func(t *testing.T) {
		f := newFixture(t, "100")
		f.setDayStatus(t, models.DayOngoing)
		svc := f.expenses()

		if _, err := svc.AddSelfExpense(ctx, f.member.ID, f.event.ID, 1); err != nil {
			t.Fatalf("AddSelfExpense failed: %v", err)
		}
		expense, _ := f.store.GetExpenseForUserEvent(ctx, f.member.ID, f.event.ID)
		f.setDayStatus(t, models.DayEnded)

		if err := svc.AdminDeleteExpense(ctx, f.admin.ID, expense.ID); err != nil {
			t.Fatalf("AdminDeleteExpense failed: %v", err)
		}
	})
}

// TestExpenseLifecycleScenario walks one event through self-service adds,
// a merge, the day ending, and an admin settlement.
func TestExpenseLifecycleScenario(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "500")
	expenses := f.expenses()
	finances := f.finances()

	// Fund the member before the trip.
	if _, err := finances.AddDeposit(ctx, f.admin.ID, f.member.ID, f.group.ID, decimal.RequireFromString("3000")); err != nil {
		t.Fatalf("AddDeposit failed: %v", err)
	}

	// Day not yet Ongoing: self-service add refused.
	if _, err := expenses.AddSelfExpense(ctx, f.member.ID, f.event.ID, 1); !errors.Is(err, ErrForbidden) {
		t.Fatalf("Expected ErrForbidden before the day starts, got %v", err)
	}

	f.setDayStatus(t, models.DayOngoing)

	// Two adds merge into one row of quantity 3.
	if _, err := expenses.AddSelfExpense(ctx, f.member.ID, f.event.ID, 1); err != nil {
		t.Fatalf("AddSelfExpense failed: %v", err)
	}
	if _, err := expenses.AddSelfExpense(ctx, f.member.ID, f.event.ID, 2); err != nil {
		t.Fatalf("AddSelfExpense failed: %v", err)
	}
	row, _ := f.store.GetExpenseForUserEvent(ctx, f.member.ID, f.event.ID)
	if row.Quantity != 3 || !row.TotalCost.Equal(decimal.RequireFromString("1500")) {
		t.Fatalf("Expected 3 x 1500, got %d x %s", row.Quantity, row.TotalCost)
	}

	f.setDayStatus(t, models.DayEnded)

	// Member can no longer edit; the admin settles the real price.
	if err := expenses.UpdateSelfExpense(ctx, row.ID, f.member.ID, 4); !errors.Is(err, ErrForbidden) {
		t.Fatalf("Expected ErrForbidden after day end, got %v", err)
	}
	if err := expenses.AdminUpdateExpense(ctx, f.admin.ID, row.ID, 3, decimal.RequireFromString("1350")); err != nil {
		t.Fatalf("AdminUpdateExpense failed: %v", err)
	}

	balance, err := finances.GetBalance(ctx, f.member.ID, f.group.ID)
	if err != nil {
		t.Fatalf("GetBalance failed: %v", err)
	}
	if !balance.Net.Equal(decimal.RequireFromString("1650")) {
		t.Errorf("Expected net 3000 - 1350 = 1650, got %s", balance.Net)
	}
}
