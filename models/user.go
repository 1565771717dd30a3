package models

import "github.com/Samy440/ebookstore/authz"

// User is an account holder. The password hash never leaves the server.
//
// Deletion policy is explicit rather than ORM-managed: removing a user
// deletes their cart lines, cart and favorites in one transaction, while
// orders are retained as history (orders.user_id carries no foreign key
// on purpose).
type User struct {
	ID             uint   `gorm:"primaryKey" json:"id"`
	Username       string `gorm:"uniqueIndex;not null" json:"username"`
	Email          string `gorm:"uniqueIndex;not null" json:"email"`
	HashedPassword string `gorm:"not null" json:"-"`
	IsActive       bool   `gorm:"default:true" json:"is_active"`
	IsAdmin        bool   `gorm:"default:false" json:"is_admin"`
}

// Role maps the stored admin flag onto the access-control role.
func (u *User) Role() authz.Role {
	if u.IsAdmin {
		return authz.RoleAdmin
	}
	return authz.RoleStandard
}
