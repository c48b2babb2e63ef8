package models

// GlobalRole is a user's site-wide role. A global admin bypasses
// group-scoped permission checks.
type GlobalRole string

const (
	GlobalRoleUser  GlobalRole = "user"
	GlobalRoleAdmin GlobalRole = "admin"
)

// User represents a registered user account.
type User struct {
	// ID is the unique identifier for the user (UUID format).
	ID string

	// Username is the unique display name of the user.
	Username string

	// Email is the user's email address (unique). Used for login and for
	// adding members to a group.
	Email string

	// PasswordHash is the bcrypt hash of the user's password.
	PasswordHash string

	// Role is the user's global role.
	Role GlobalRole

	// CreatedAt is the Unix timestamp when the account was created.
	CreatedAt int64
}

// IsAdmin reports whether the user holds the global admin role.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == GlobalRoleAdmin
}
