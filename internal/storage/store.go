// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/wayfarer-app/wayfarer/internal/models"
)

// UserStore persists user accounts.
type UserStore interface {
	// CreateUser persists a new user. The user.ID field will be populated
	// by the store.
	CreateUser(ctx context.Context, user *models.User) error

	// GetUserByEmail retrieves a user by email. Returns (nil, nil) if no
	// user matches.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)

	// GetUserByID retrieves a user by ID. Returns (nil, nil) if no user
	// matches.
	GetUserByID(ctx context.Context, id string) (*models.User, error)
}

// GroupStore persists groups and memberships.
type GroupStore interface {
	// CreateGroup persists a new group and makes creatorID its admin in a
	// single transaction.
	CreateGroup(ctx context.Context, group *models.Group, creatorID string) error

	// GetGroup retrieves a group by ID. Returns (nil, nil) if no group
	// matches.
	GetGroup(ctx context.Context, groupID string) (*models.Group, error)

	// UpdateGroup updates a group's name and description.
	UpdateGroup(ctx context.Context, group *models.Group) error

	// DeleteGroup removes a group; days, memberships, announcements and
	// everything below them cascade.
	DeleteGroup(ctx context.Context, groupID string) error

	// ListGroupsForUser retrieves every group the user belongs to, with
	// their role in each.
	ListGroupsForUser(ctx context.Context, userID string) ([]*models.GroupWithRole, error)

	// AddMember inserts a membership row.
	AddMember(ctx context.Context, groupID, userID string, role models.GroupRole) error

	// RemoveMember deletes a membership row.
	RemoveMember(ctx context.Context, groupID, userID string) error

	// GetMemberRole returns the user's role in the group, or "" if the
	// user is not a member.
	GetMemberRole(ctx context.Context, userID, groupID string) (models.GroupRole, error)

	// ListMembers retrieves all members of a group.
	ListMembers(ctx context.Context, groupID string) ([]*models.Member, error)
}

// TourStore persists the itinerary: days, locations and events.
type TourStore interface {
	CreateDay(ctx context.Context, day *models.TourDay) error
	GetDay(ctx context.Context, dayID string) (*models.TourDay, error)
	UpdateDay(ctx context.Context, day *models.TourDay) error
	SetDayStatus(ctx context.Context, dayID string, status models.DayStatus) error
	DeleteDay(ctx context.Context, dayID string) error

	CreateLocation(ctx context.Context, loc *models.Location) error
	UpdateLocation(ctx context.Context, loc *models.Location) error
	DeleteLocation(ctx context.Context, locationID string) error

	// GetLocationGroup resolves a location to its owning group ID, or ""
	// if the location does not exist.
	GetLocationGroup(ctx context.Context, locationID string) (string, error)

	CreateEvent(ctx context.Context, event *models.Event) error
	UpdateEvent(ctx context.Context, event *models.Event) error
	DeleteEvent(ctx context.Context, eventID string) error

	// GetItinerary retrieves a group's full itinerary: days ordered by
	// day number, locations by order-in-day, events by time then name.
	GetItinerary(ctx context.Context, groupID string) ([]*models.TourDay, error)

	// ListMapPins retrieves all events of a group whose location has
	// coordinates.
	ListMapPins(ctx context.Context, groupID string) ([]*models.MapPin, error)

	// ListEventReminders retrieves events with an enabled reminder and a
	// set time whose owning day falls on date ("2006-01-02").
	ListEventReminders(ctx context.Context, date string) ([]*models.EventReminder, error)

	// ListLocationReminders is ListEventReminders keyed on location start
	// times.
	ListLocationReminders(ctx context.Context, date string) ([]*models.LocationReminder, error)
}

// EventGate is the itinerary context needed to authorize an expense write:
// the owning day's status, the event's unit cost, and the owning group.
type EventGate struct {
	GroupID     string
	DayStatus   models.DayStatus
	CostPerUnit decimal.Decimal
}

// ExpenseGate is EventGate resolved from an expense row instead of an
// event, including the row itself.
type ExpenseGate struct {
	Expense     models.Expense
	GroupID     string
	DayStatus   models.DayStatus
	CostPerUnit decimal.Decimal
}

// ExpenseStore persists expenses.
type ExpenseStore interface {
	// GetEventGate resolves an event to its gate context. Returns
	// (nil, nil) if the event does not exist.
	GetEventGate(ctx context.Context, eventID string) (*EventGate, error)

	// GetExpenseForUserEvent retrieves the single self-service expense row
	// for (user, event). Returns (nil, nil) if none exists.
	GetExpenseForUserEvent(ctx context.Context, userID, eventID string) (*models.Expense, error)

	// GetExpenseGate resolves an expense to its gate context. When userID
	// is non-empty the row must also belong to that user. Returns
	// (nil, nil) if no row matches.
	GetExpenseGate(ctx context.Context, expenseID, userID string) (*ExpenseGate, error)

	// CreateExpense inserts a new expense row. The expense.ID field will
	// be populated by the store.
	CreateExpense(ctx context.Context, expense *models.Expense) error

	// UpdateExpense sets a row's quantity and total cost.
	UpdateExpense(ctx context.Context, expenseID string, quantity int, totalCost decimal.Decimal) error

	// DeleteExpense removes a row.
	DeleteExpense(ctx context.Context, expenseID string) error

	// CreateExpensesBulk inserts one expense row per user in a single
	// transaction; either all rows are written or none.
	CreateExpensesBulk(ctx context.Context, eventID string, userIDs []string, quantity int, totalCost decimal.Decimal) error

	// ListUserExpenses retrieves a user's expenses with itinerary context,
	// newest first.
	ListUserExpenses(ctx context.Context, userID string) ([]*models.ExpenseDetail, error)
}

// FinanceStore persists deposits and serves balance aggregates.
type FinanceStore interface {
	// CreateDeposit appends a ledger entry. The deposit.ID field will be
	// populated by the store.
	CreateDeposit(ctx context.Context, deposit *models.Deposit) error

	// ListDeposits retrieves a user's deposits, optionally scoped to one
	// group (groupID == "" means all groups), newest first.
	ListDeposits(ctx context.Context, userID, groupID string) ([]*models.Deposit, error)

	// SumDeposits returns the sum of a user's deposit amounts, optionally
	// scoped to one group.
	SumDeposits(ctx context.Context, userID, groupID string) (decimal.Decimal, error)

	// SumExpenses returns the sum of a user's expense totals, optionally
	// scoped to one group (resolved through the event's itinerary).
	SumExpenses(ctx context.Context, userID, groupID string) (decimal.Decimal, error)
}

// AnnouncementStore persists announcements.
type AnnouncementStore interface {
	// CreateAnnouncement persists an announcement. The announcement.ID
	// field will be populated by the store.
	CreateAnnouncement(ctx context.Context, a *models.Announcement) error

	// ListDueAnnouncements retrieves every announcement with a non-null
	// schedule at or before now. There is no lower bound: announcements
	// missed while the process was down are caught up.
	ListDueAnnouncements(ctx context.Context, now time.Time) ([]*models.Announcement, error)

	// ClearSchedule nulls an announcement's schedule so it is never
	// selected as due again.
	ClearSchedule(ctx context.Context, announcementID string) error

	// ListGroupAnnouncements retrieves a group's announcements, newest
	// first.
	ListGroupAnnouncements(ctx context.Context, groupID string) ([]*models.Announcement, error)
}

// SubscriptionStore persists push subscriptions.
type SubscriptionStore interface {
	// UpsertSubscription stores a subscription keyed by endpoint. If the
	// endpoint is already known the row's ownership moves to userID.
	UpsertSubscription(ctx context.Context, userID, token, endpoint string) error

	// ListGroupSubscriptions retrieves the push subscriptions of every
	// member of the group.
	ListGroupSubscriptions(ctx context.Context, groupID string) ([]*models.PushSubscription, error)

	// DeleteSubscription removes a subscription by endpoint.
	DeleteSubscription(ctx context.Context, endpoint string) error
}

// Store is the full persistence contract. This abstraction allows swapping
// storage backends without changing the service layer.
type Store interface {
	UserStore
	GroupStore
	TourStore
	ExpenseStore
	FinanceStore
	AnnouncementStore
	SubscriptionStore

	// Close releases any resources held by the store.
	Close() error
}
