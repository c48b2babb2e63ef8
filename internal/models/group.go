package models

// GroupRole is a user's role within one group. A group admin manages only
// that group.
type GroupRole string

const (
	GroupRoleMember GroupRole = "member"
	GroupRoleAdmin  GroupRole = "admin"
)

// Group represents a single trip with its own itinerary, members and
// finances.
type Group struct {
	// ID is the unique identifier for the group (UUID format).
	ID string

	// Name is the display name of the trip (e.g., "Kerala Tour 2026").
	Name string

	// Description is an optional free-text description.
	Description string

	// CreatedAt is the Unix timestamp when the group was created.
	CreatedAt int64
}

// Membership is one (user, group) pair with a group-scoped role.
type Membership struct {
	UserID  string
	GroupID string
	Role    GroupRole
}

// GroupWithRole is a group joined with the requesting user's role in it.
type GroupWithRole struct {
	Group
	Role GroupRole
}

// Member is a user joined with their role in one group.
type Member struct {
	UserID   string
	Username string
	Email    string
	Role     GroupRole
}
