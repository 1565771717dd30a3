package authz

import (
	"errors"
	"testing"
)

func TestAuthorizePublicRead(t *testing.T) {
	id := Identity{UserID: 7, Role: RoleStandard}
	if err := Authorize(id, PublicRead, 99); err != nil {
		t.Fatalf("public read should never be denied, got %v", err)
	}
}

func TestAuthorizeSelfOnly(t *testing.T) {
	owner := Identity{UserID: 7, Role: RoleStandard}
	stranger := Identity{UserID: 8, Role: RoleStandard}
	admin := Identity{UserID: 1, Role: RoleAdmin}

	if err := Authorize(owner, SelfOnly, 7); err != nil {
		t.Fatalf("owner denied own resource: %v", err)
	}
	// Ownership is the only thing that counts here; the admin role does
	// not open other users' resources through self routes.
	if err := Authorize(admin, SelfOnly, 7); !errors.Is(err, ErrForbidden) {
		t.Fatalf("admin on user 7 self-only resource: want ErrForbidden, got %v", err)
	}
	if err := Authorize(stranger, SelfOnly, 7); !errors.Is(err, ErrForbidden) {
		t.Fatalf("stranger touching user 7 resource: want ErrForbidden, got %v", err)
	}
	// An anonymous zero identity never owns anything.
	if err := Authorize(Identity{}, SelfOnly, 0); !errors.Is(err, ErrForbidden) {
		t.Fatalf("zero identity passed self-only check")
	}
}

func TestAuthorizeAdminOnly(t *testing.T) {
	admin := Identity{UserID: 1, Role: RoleAdmin}
	standard := Identity{UserID: 7, Role: RoleStandard}

	if err := Authorize(admin, AdminOnly, 0); err != nil {
		t.Fatalf("admin denied admin capability: %v", err)
	}
	if err := Authorize(standard, AdminOnly, 0); !errors.Is(err, ErrForbidden) {
		t.Fatalf("standard user on admin capability: want ErrForbidden, got %v", err)
	}
	// Owning the resource does not substitute for the admin role.
	if err := Authorize(standard, AdminOnly, standard.UserID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("ownership must not grant admin capability, got %v", err)
	}
}
