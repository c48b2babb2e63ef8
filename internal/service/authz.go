package service

import (
	"context"
	"fmt"

	"github.com/wayfarer-app/wayfarer/internal/models"
	"github.com/wayfarer-app/wayfarer/internal/storage"
)

// Authorizer is the single place group-scoped permissions are decided.
// Every operation that needs "is this user an admin/member of this group"
// goes through it instead of repeating the membership lookup inline.
type Authorizer struct {
	users  storage.UserStore
	groups storage.GroupStore
}

// NewAuthorizer creates an authorizer over the given stores.
func NewAuthorizer(users storage.UserStore, groups storage.GroupStore) *Authorizer {
	return &Authorizer{users: users, groups: groups}
}

// Require returns nil if the user holds at least the required role in the
// group, ErrForbidden otherwise. A global admin bypasses the group check
// entirely.
func (a *Authorizer) Require(ctx context.Context, userID, groupID string, required models.GroupRole) error {
	user, err := a.users.GetUserByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to resolve user: %w", err)
	}
	if user.IsAdmin() {
		return nil
	}

	role, err := a.groups.GetMemberRole(ctx, userID, groupID)
	if err != nil {
		return fmt.Errorf("failed to resolve membership: %w", err)
	}
	switch {
	case role == "":
		return ErrForbidden
	case required == models.GroupRoleAdmin && role != models.GroupRoleAdmin:
		return ErrForbidden
	}
	return nil
}

// CanJoin reports whether the user may join the group's realtime room:
// any membership (or global admin) suffices.
func (a *Authorizer) CanJoin(ctx context.Context, userID, groupID string) (bool, error) {
	err := a.Require(ctx, userID, groupID, models.GroupRoleMember)
	if err == ErrForbidden {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
