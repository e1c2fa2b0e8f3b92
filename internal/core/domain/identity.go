package domain

import (
	"fmt"

	"github.com/google/uuid"
)

// LoanID is the canonical identity of a Loan. Handlers parse it once from the
// request path; the store and the aggregate never see raw strings.
type LoanID uuid.UUID

// NewLoanID returns a freshly generated random identity.
func NewLoanID() LoanID {
	return LoanID(uuid.New())
}

// ParseLoanID parses the canonical string form of a loan id.
func ParseLoanID(s string) (LoanID, error) {
	id, err := uuid.Parse(s)
	if err != nil || id == uuid.Nil {
		return LoanID{}, fmt.Errorf("%w: loan id %q is not a valid uuid", ErrValidation, s)
	}
	return LoanID(id), nil
}

func (id LoanID) String() string { return uuid.UUID(id).String() }

// IsZero reports whether the id was never assigned.
func (id LoanID) IsZero() bool { return uuid.UUID(id) == uuid.Nil }

// BookRef references a book in the catalogue.
type BookRef struct {
	value uuid.UUID
}

// NewBookRef wraps id. The nil uuid is treated as a missing value.
func NewBookRef(id uuid.UUID) (BookRef, error) {
	if id == uuid.Nil {
		return BookRef{}, fmt.Errorf("%w: book id is required", ErrValidation)
	}
	return BookRef{value: id}, nil
}

// ParseBookRef builds a BookRef from its string form.
func ParseBookRef(s string) (BookRef, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return BookRef{}, fmt.Errorf("%w: book id %q is not a valid uuid", ErrValidation, s)
	}
	return NewBookRef(id)
}

func (b BookRef) UUID() uuid.UUID { return b.value }
func (b BookRef) String() string { return b.value.String() }
func (b BookRef) Equals(o BookRef) bool { return b.value == o.value }

// IsZero reports whether the reference was never constructed.
func (b BookRef) IsZero() bool { return b.value == uuid.Nil }

// UserRef references the borrower that owns a loan.
type UserRef struct {
	value uuid.UUID
}

// NewUserRef wraps id. The nil uuid is treated as a missing value.
func NewUserRef(id uuid.UUID) (UserRef, error) {
	if id == uuid.Nil {
		return UserRef{}, fmt.Errorf("%w: user id is required", ErrValidation)
	}
	return UserRef{value: id}, nil
}

// ParseUserRef builds a UserRef from its string form.
func ParseUserRef(s string) (UserRef, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return UserRef{}, fmt.Errorf("%w: user id %q is not a valid uuid", ErrValidation, s)
	}
	return NewUserRef(id)
}

func (u UserRef) UUID() uuid.UUID { return u.value }
func (u UserRef) String() string { return u.value.String() }
func (u UserRef) Equals(o UserRef) bool { return u.value == o.value }

// IsZero reports whether the reference was never constructed.
func (u UserRef) IsZero() bool { return u.value == uuid.Nil }
