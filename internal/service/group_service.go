package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/wayfarer-app/wayfarer/internal/models"
	"github.com/wayfarer-app/wayfarer/internal/storage"
)

// GroupService manages groups and their memberships.
type GroupService struct {
	store storage.Store
	authz *Authorizer
}

// NewGroupService creates a group service.
func NewGroupService(store storage.Store, authz *Authorizer) *GroupService {
	return &GroupService{store: store, authz: authz}
}

// CreateGroup creates a group and makes the creator its admin.
func (s *GroupService) CreateGroup(ctx context.Context, creatorID, name, description string) (*models.Group, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: group name is required", ErrInvalidInput)
	}

	group := &models.Group{
		Name:        name,
		Description: description,
	}
	if err := s.store.CreateGroup(ctx, group, creatorID); err != nil {
		return nil, err
	}

	slog.Info("Group created", "group_id", group.ID, "creator_id", creatorID)
	return group, nil
}

// UpdateGroup updates a group's name and description. Requires group
// admin.
func (s *GroupService) UpdateGroup(ctx context.Context, callerID, groupID, name, description string) error {
	if name == "" {
		return fmt.Errorf("%w: group name is required", ErrInvalidInput)
	}
	if err := s.authz.Require(ctx, callerID, groupID, models.GroupRoleAdmin); err != nil {
		return err
	}

	return s.store.UpdateGroup(ctx, &models.Group{
		ID:          groupID,
		Name:        name,
		Description: description,
	})
}

// DeleteGroup removes a group and everything it owns. Requires group
// admin.
func (s *GroupService) DeleteGroup(ctx context.Context, callerID, groupID string) error {
	if err := s.authz.Require(ctx, callerID, groupID, models.GroupRoleAdmin); err != nil {
		return err
	}
	return s.store.DeleteGroup(ctx, groupID)
}

// ListGroups retrieves every group the user belongs to with their role.
func (s *GroupService) ListGroups(ctx context.Context, userID string) ([]*models.GroupWithRole, error) {
	return s.store.ListGroupsForUser(ctx, userID)
}

// ListMembers retrieves a group's members. Requires group admin.
func (s *GroupService) ListMembers(ctx context.Context, callerID, groupID string) ([]*models.Member, error) {
	if err := s.authz.Require(ctx, callerID, groupID, models.GroupRoleAdmin); err != nil {
		return nil, err
	}
	return s.store.ListMembers(ctx, groupID)
}

// AddMemberByEmail adds a registered user to the group as a member.
// Requires group admin.
func (s *GroupService) AddMemberByEmail(ctx context.Context, callerID, groupID, email string) error {
	if email == "" {
		return fmt.Errorf("%w: email is required", ErrInvalidInput)
	}
	if err := s.authz.Require(ctx, callerID, groupID, models.GroupRoleAdmin); err != nil {
		return err
	}

	user, err := s.store.GetUserByEmail(ctx, email)
	if err != nil {
		return err
	}
	if user == nil {
		return fmt.Errorf("%w: no user with email %s", ErrNotFound, email)
	}

	role, err := s.store.GetMemberRole(ctx, user.ID, groupID)
	if err != nil {
		return err
	}
	if role != "" {
		return fmt.Errorf("%w: user is already in this group", ErrInvalidInput)
	}

	if err := s.store.AddMember(ctx, groupID, user.ID, models.GroupRoleMember); err != nil {
		return err
	}
	slog.Info("Member added", "group_id", groupID, "user_id", user.ID)
	return nil
}

// RemoveMember removes a user from the group. Requires group admin; an
// admin cannot remove themselves.
func (s *GroupService) RemoveMember(ctx context.Context, callerID, groupID, userID string) error {
	if err := s.authz.Require(ctx, callerID, groupID, models.GroupRoleAdmin); err != nil {
		return err
	}
	if callerID == userID {
		return fmt.Errorf("%w: admin cannot remove themselves", ErrInvalidInput)
	}

	role, err := s.store.GetMemberRole(ctx, userID, groupID)
	if err != nil {
		return err
	}
	if role == "" {
		return fmt.Errorf("%w: user not in group", ErrNotFound)
	}

	return s.store.RemoveMember(ctx, groupID, userID)
}
