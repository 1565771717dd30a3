// Package authz is the single decision point for role-gated access.
// Handlers never compare roles inline; they describe the capability a
// route needs and let Authorize answer.
package authz

import "errors"

// ErrForbidden is returned whenever an identity lacks a capability.
// Handlers map it to 403 so denied access is always explicit, never an
// empty result set dressed up as success.
var ErrForbidden = errors.New("insufficient role for this action")

// Role is the coarse access level attached to an authenticated identity.
type Role string

const (
	RoleStandard Role = "standard"
	RoleAdmin    Role = "admin"
)

// Capability classifies what a route does with a resource.
type Capability int

const (
	// PublicRead is open to anyone, authenticated or not.
	PublicRead Capability = iota
	// SelfOnly touches a resource owned by one user. Only that owner
	// passes; role is irrelevant, so even admins go through their own
	// admin-only routes instead of borrowing a user's.
	SelfOnly
	// AdminOnly is reserved for catalog writes, account management and
	// cross-user reads.
	AdminOnly
)

// Identity is the authenticated caller as established by the auth
// middleware: a user id plus the role derived from the account record.
type Identity struct {
	UserID uint
	Role   Role
}

// IsAdmin reports whether the identity holds the admin role.
func (id Identity) IsAdmin() bool { return id.Role == RoleAdmin }

// Authorize checks one capability against one identity. ownerID is the
// owning user of the resource being touched and is ignored for
// capabilities that are not ownership-scoped.
func Authorize(id Identity, capability Capability, ownerID uint) error {
	switch capability {
	case PublicRead:
		return nil
	case SelfOnly:
		if id.UserID != 0 && id.UserID == ownerID {
			return nil
		}
		return ErrForbidden
	case AdminOnly:
		if id.IsAdmin() {
			return nil
		}
		return ErrForbidden
	default:
		return ErrForbidden
	}
}
