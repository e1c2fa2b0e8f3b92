package domain

import (
	"time"

	"github.com/google/uuid"
)

// Role tokens carried in access tokens. The borrower role creates loans and
// manages its own returns; the admin role verifies, approves and closes them.
const (
	RoleBorrower = "peminjam"
	RoleAdmin    = "pengguna"
)

// ValidRole reports whether role is one of the two known roles.
func ValidRole(role string) bool {
	return role == RoleBorrower || role == RoleAdmin
}

// User models an authenticated actor in the system.
type User struct {
	ID           uuid.UUID `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	Disabled     bool      `json:"disabled"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Ref returns the user as a loan owner reference.
func (u *User) Ref() (UserRef, error) {
	return NewUserRef(u.ID)
}
