package service

import (
	"context"
	"errors"
	"testing"

	"github.com/wayfarer-app/wayfarer/internal/models"
)

func TestGroupService(t *testing.T) {
	ctx := context.Background()

	t.Run("Creator becomes group admin", func(t *testing.T) {
		f := newFixture(t, "100")
		svc := NewGroupService(f.store, NewAuthorizer(f.store, f.store))

		group, err := svc.CreateGroup(ctx, f.member.ID, "Side Trip", "weekend")
		if err != nil {
			t.Fatalf("CreateGroup failed: %v", err)
		}

		role, err := f.store.GetMemberRole(ctx, f.member.ID, group.ID)
		if err != nil {
			t.Fatalf("GetMemberRole failed: %v", err)
		}
		if role != models.GroupRoleAdmin {
			t.Errorf("Expected creator to be admin, got %q", role)
		}
	})

	t.Run("AddMemberByEmail", func(t *testing.T) {
		f := newFixture(t, "100")
		svc := NewGroupService(f.store, NewAuthorizer(f.store, f.store))

		newcomer := &models.User{Username: "newbie", Email: "newbie@example.com", PasswordHash: "x"}
		if err := f.store.CreateUser(ctx, newcomer); err != nil {
			t.Fatalf("CreateUser failed: %v", err)
		}

		if err := svc.AddMemberByEmail(ctx, f.admin.ID, f.group.ID, "newbie@example.com"); err != nil {
			t.Fatalf("AddMemberByEmail failed: %v", err)
		}
		role, _ := f.store.GetMemberRole(ctx, newcomer.ID, f.group.ID)
		if role != models.GroupRoleMember {
			t.Errorf("Expected member role, got %q", role)
		}

		// Adding again is rejected.
		err := svc.AddMemberByEmail(ctx, f.admin.ID, f.group.ID, "newbie@example.com")
		if !errors.Is(err, ErrInvalidInput) {
			t.Errorf("Expected ErrInvalidInput for duplicate member, got %v", err)
		}

		// Unknown email.
		err = svc.AddMemberByEmail(ctx, f.admin.ID, f.group.ID, "ghost@example.com")
		if !errors.Is(err, ErrNotFound) {
			t.Errorf("Expected ErrNotFound for unknown email, got %v", err)
		}

		// Plain members cannot add.
		err = svc.AddMemberByEmail(ctx, f.member.ID, f.group.ID, "newbie@example.com")
		if !errors.Is(err, ErrForbidden) {
			t.Errorf("Expected ErrForbidden for non-admin caller, got %v", err)
		}
	})

	t.Run("Admin cannot remove themselves", func(t *testing.T) {
		f := newFixture(t, "100")
		svc := NewGroupService(f.store, NewAuthorizer(f.store, f.store))

		err := svc.RemoveMember(ctx, f.admin.ID, f.group.ID, f.admin.ID)
		if !errors.Is(err, ErrInvalidInput) {
			t.Errorf("Expected ErrInvalidInput, got %v", err)
		}

		if err := svc.RemoveMember(ctx, f.admin.ID, f.group.ID, f.member.ID); err != nil {
			t.Fatalf("RemoveMember failed: %v", err)
		}
		role, _ := f.store.GetMemberRole(ctx, f.member.ID, f.group.ID)
		if role != "" {
			t.Errorf("Expected member to be gone, got role %q", role)
		}
	})
}

func TestAuthorizer(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "100")
	authz := NewAuthorizer(f.store, f.store)

	t.Run("Member passes member check but not admin check", func(t *testing.T) {
		if err := authz.Require(ctx, f.member.ID, f.group.ID, models.GroupRoleMember); err != nil {
			t.Errorf("Expected member to pass, got %v", err)
		}
		if err := authz.Require(ctx, f.member.ID, f.group.ID, models.GroupRoleAdmin); !errors.Is(err, ErrForbidden) {
			t.Errorf("Expected ErrForbidden, got %v", err)
		}
	})

	t.Run("Non-member is refused", func(t *testing.T) {
		outsider := &models.User{Username: "visitor", Email: "visitor@example.com", PasswordHash: "x"}
		if err := f.store.CreateUser(ctx, outsider); err != nil {
			t.Fatalf("CreateUser failed: %v", err)
		}
		if err := authz.Require(ctx, outsider.ID, f.group.ID, models.GroupRoleMember); !errors.Is(err, ErrForbidden) {
			t.Errorf("Expected ErrForbidden, got %v", err)
		}

		ok, err := authz.CanJoin(ctx, outsider.ID, f.group.ID)
		if err != nil {
			t.Fatalf("CanJoin failed: %v", err)
		}
		if ok {
			t.Error("Expected non-member to be refused from the room")
		}
	})

	t.Run("Global admin bypasses membership", func(t *testing.T) {
		super := &models.User{Username: "super", Email: "super@example.com", PasswordHash: "x", Role: models.GlobalRoleAdmin}
		if err := f.store.CreateUser(ctx, super); err != nil {
			t.Fatalf("CreateUser failed: %v", err)
		}
		if err := authz.Require(ctx, super.ID, f.group.ID, models.GroupRoleAdmin); err != nil {
			t.Errorf("Expected global admin to pass, got %v", err)
		}

		ok, err := authz.CanJoin(ctx, super.ID, f.group.ID)
		if err != nil {
			t.Fatalf("CanJoin failed: %v", err)
		}
		if !ok {
			t.Error("Expected global admin to join any room")
		}
	})
}
