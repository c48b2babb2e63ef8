package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/wayfarer-app/wayfarer/internal/models"
	"github.com/wayfarer-app/wayfarer/internal/storage"
)

// FinanceService records deposits and reports balances. A balance is the
// sum of a user's deposits minus the sum of their expense totals, scoped
// to one group or across every group they belong to.
type FinanceService struct {
	store storage.Store
	authz *Authorizer
}

// NewFinanceService creates a finance service.
func NewFinanceService(store storage.Store, authz *Authorizer) *FinanceService {
	return &FinanceService{store: store, authz: authz}
}

// AddDeposit appends a deposit for a member. The caller must administer
// the group; the target user must be a member of it.
func (s *FinanceService) AddDeposit(ctx context.Context, adminID, userID, groupID string, amount decimal.Decimal) (*models.Deposit, error) {
	if userID == "" || groupID == "" {
		return nil, fmt.Errorf("%w: user and group are required", ErrInvalidInput)
	}
	if !amount.IsPositive() {
		return nil, fmt.Errorf("%w: deposit amount must be positive", ErrInvalidInput)
	}

	if err := s.authz.Require(ctx, adminID, groupID, models.GroupRoleAdmin); err != nil {
		return nil, err
	}
	role, err := s.store.GetMemberRole(ctx, userID, groupID)
	if err != nil {
		return nil, err
	}
	if role == "" {
		return nil, fmt.Errorf("%w: user %s is not a member of group %s", ErrNotFound, userID, groupID)
	}

	deposit := &models.Deposit{
		UserID:  userID,
		GroupID: groupID,
		Amount:  amount,
	}
	if err := s.store.CreateDeposit(ctx, deposit); err != nil {
		return nil, err
	}

	slog.Info("Deposit recorded",
		"deposit_id", deposit.ID,
		"user_id", userID,
		"group_id", groupID,
		"amount", amount,
	)
	return deposit, nil
}

// ListDeposits retrieves a user's deposits, optionally scoped to a group.
func (s *FinanceService) ListDeposits(ctx context.Context, userID, groupID string) ([]*models.Deposit, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: user is required", ErrInvalidInput)
	}
	return s.store.ListDeposits(ctx, userID, groupID)
}

// GetBalance computes deposits minus expenses for a user. groupID == ""
// aggregates across all groups the user belongs to. The two sums are plain
// read-committed reads: the UI refresh cycle tolerates a write landing
// between them.
func (s *FinanceService) GetBalance(ctx context.Context, userID, groupID string) (*models.Balance, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: user is required", ErrInvalidInput)
	}

	deposits, err := s.store.SumDeposits(ctx, userID, groupID)
	if err != nil {
		return nil, err
	}
	expenses, err := s.store.SumExpenses(ctx, userID, groupID)
	if err != nil {
		return nil, err
	}

	return &models.Balance{
		UserID:        userID,
		GroupID:       groupID,
		TotalDeposits: deposits,
		TotalExpenses: expenses,
		Net:           deposits.Sub(expenses),
	}, nil
}

// GetGroupBalances computes the balance of every member of a group. The
// caller must be a member.
func (s *FinanceService) GetGroupBalances(ctx context.Context, callerID, groupID string) ([]*models.Balance, error) {
	if groupID == "" {
		return nil, fmt.Errorf("%w: group is required", ErrInvalidInput)
	}
	if err := s.authz.Require(ctx, callerID, groupID, models.GroupRoleMember); err != nil {
		return nil, err
	}

	members, err := s.store.ListMembers(ctx, groupID)
	if err != nil {
		return nil, err
	}

	balances := make([]*models.Balance, 0, len(members))
	for _, m := range members {
		balance, err := s.GetBalance(ctx, m.UserID, groupID)
		if err != nil {
			return nil, err
		}
		balances = append(balances, balance)
	}
	return balances, nil
}
