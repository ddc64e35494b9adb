package domain

import "time"

// Role enumerates the roles recognized by the transition permission matrix.
type Role string

const (
	RoleRequester Role = "requester"
	RoleAgent     Role = "agent"
	RoleManager   Role = "manager"
)

// Valid reports whether the value is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleRequester, RoleAgent, RoleManager:
		return true
	}
	return false
}

// User is the domain model for people who interact with tickets. Identity and
// credentials are managed by an external identity provider; this service
// consumes users read-only.
type User struct {
	ID        string
	Name      string
	Email     string
	Role      Role
	CreatedAt time.Time
}

// UserRef identifies the authenticated actor of a lifecycle operation, as
// supplied by the identity layer.
type UserRef struct {
	ID   string
	Role Role
}
