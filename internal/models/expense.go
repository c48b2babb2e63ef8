package models

import "github.com/shopspring/decimal"

// Expense is one charge against an event for one user.
//
// The self-service path keeps at most one row per (user, event): repeated
// adds increment the quantity on the existing row. The admin path inserts
// one row per user explicitly and never merges.
type Expense struct {
	// ID is the unique identifier for the expense (UUID format).
	ID string

	// UserID references the user the expense belongs to.
	UserID string

	// EventID references the event the expense was logged against.
	EventID string

	// Quantity is the number of units (>= 1).
	Quantity int

	// TotalCost is quantity x cost-per-unit at the time of the write,
	// except under an admin manual override.
	TotalCost decimal.Decimal

	// CreatedAt is the Unix timestamp when the expense was recorded.
	CreatedAt int64
}

// ExpenseDetail is an expense joined with its itinerary context, for the
// per-user expense report.
type ExpenseDetail struct {
	Expense
	EventName    string
	CostPerUnit  decimal.Decimal
	LocationName string
	DayTitle     string
	DayNumber    int
	DayStatus    DayStatus
}

// Deposit is one append-only ledger entry of money a user put into a
// group's pool.
type Deposit struct {
	// ID is the unique identifier for the deposit (UUID format).
	ID string

	// UserID references the depositing user.
	UserID string

	// GroupID references the group the deposit belongs to.
	GroupID string

	// Amount is the deposited amount (> 0).
	Amount decimal.Decimal

	// CreatedAt is the Unix timestamp when the deposit was recorded.
	CreatedAt int64
}

// Balance is the financial position of one user: deposits minus expenses,
// optionally scoped to a single group.
type Balance struct {
	UserID        string
	GroupID       string // empty when aggregated across all groups
	TotalDeposits decimal.Decimal
	TotalExpenses decimal.Decimal
	Net           decimal.Decimal
}
