package ports

import (
	"context"

	"github.com/bookwise/lending-api/internal/core/domain"
)

// LoanRepository is the loan store. Implementations hand out copies, so a
// loan returned by a finder can be mutated freely without touching the store.
type LoanRepository interface {
	// Save inserts or replaces the loan under its id.
	Save(ctx context.Context, loan *domain.Loan) error
	FindByID(ctx context.Context, id domain.LoanID) (*domain.Loan, bool)
	// FindByUser returns the loans owned by user in insertion order.
	FindByUser(ctx context.Context, user domain.UserRef) []*domain.Loan
	ListAll(ctx context.Context) []*domain.Loan
	// Update runs fn on a copy of the stored loan while holding the store
	// lock and stores the copy only when fn returns nil. A missing id yields
	// domain.ErrLoanNotFound.
	Update(ctx context.Context, id domain.LoanID, fn func(*domain.Loan) error) (*domain.Loan, error)
}

// IdempotencyStore remembers which loan a client request key produced.
type IdempotencyStore interface {
	// Reserve binds key to loanID unless the key is already bound, in which
	// case it returns the existing loan id and false.
	Reserve(ctx context.Context, key string, loanID domain.LoanID) (domain.LoanID, bool, error)
}
