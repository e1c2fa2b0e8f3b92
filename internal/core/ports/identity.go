package ports

import (
	"context"

	"github.com/google/uuid"

	"github.com/bookwise/lending-api/internal/core/domain"
)

// Actor is the authenticated caller of a loan operation.
type Actor struct {
	UserID   uuid.UUID
	Username string
	Role     string
}

// SystemActor is used by background jobs such as the overdue sweeper.
var SystemActor = Actor{Username: "system", Role: domain.RoleAdmin}

func (a Actor) IsAdmin() bool    { return a.Role == domain.RoleAdmin }
func (a Actor) IsBorrower() bool { return a.Role == domain.RoleBorrower }

// Ref returns the actor as a loan owner reference.
func (a Actor) Ref() (domain.UserRef, error) {
	return domain.NewUserRef(a.UserID)
}

// IdentityResolver turns a bearer credential into an Actor. It fails with
// domain.ErrInvalidToken for bad or expired credentials and with
// domain.ErrUserDisabled when the account was switched off.
type IdentityResolver interface {
	Resolve(ctx context.Context, token string) (Actor, error)
}
