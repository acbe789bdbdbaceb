package auth

import "errors"

// Role represents an authorisation tier. Roles are stored as integers
// in both the database and token claims.
type Role int

const (
	// RoleAdmin has full catalogue control: any profile, any collection,
	// any stamp, plus the admin listing endpoints.
	RoleAdmin Role = 1

	// RoleUser is a registered collector. Scoped to their own profile,
	// settings, collections and stamps.
	RoleUser Role = 2
)

// IsValid returns true if the role is a recognised tier.
func (r Role) IsValid() bool {
	return r == RoleAdmin || r == RoleUser
}

// String returns the human-readable role name.
func (r Role) String() string {
	switch r {
	case RoleAdmin:
		return "admin"
	case RoleUser:
		return "user"
	default:
		return "unknown"
	}
}

// Identity is the authenticated principal carried through a request.
// It is what token claims decode to and what handlers authorise against.
type Identity struct {
	UserID int  `json:"user_id"`
	Role   Role `json:"role"`
}

// IsAdmin returns true if the identity holds the admin role.
func (id Identity) IsAdmin() bool {
	return id.Role == RoleAdmin
}

// Sentinel errors for auth operations.
var (
	ErrTokenExpired       = errors.New("token has expired")
	ErrTokenMalformed     = errors.New("malformed token")
	ErrTokenMissingExpiry = errors.New("token has no expiry claim")
	ErrInvalidRefresh     = errors.New("invalid refresh token")
	ErrIdentityNotFound   = errors.New("identity not found")
)
