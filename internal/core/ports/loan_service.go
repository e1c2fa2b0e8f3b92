package ports

import (
	"context"

	"github.com/bookwise/lending-api/internal/core/domain"
)

// CreateLoanInput carries the data needed to open a loan.
type CreateLoanInput struct {
	BookRef        domain.BookRef
	IdempotencyKey string // optional
}

// LoanService drives the loan lifecycle on behalf of an actor. Borrowers can
// only see and act on their own loans; violations yield domain.ErrForbidden.
type LoanService interface {
	// CreateLoan opens a loan for the actor. The bool is false when an
	// idempotency key replayed an earlier request.
	CreateLoan(ctx context.Context, actor Actor, in CreateLoanInput) (*domain.Loan, bool, error)
	VerifyLoan(ctx context.Context, actor Actor, id domain.LoanID) (*domain.Loan, error)
	ApproveLoan(ctx context.Context, actor Actor, id domain.LoanID) (*domain.Loan, error)
	// BorrowLoan forces the loan into BORROWED. A nil due date uses the policy.
	BorrowLoan(ctx context.Context, actor Actor, id domain.LoanID, due *domain.DueDate) (*domain.Loan, error)
	InitiateReturn(ctx context.Context, actor Actor, id domain.LoanID) (*domain.Loan, error)
	FinalizeReturn(ctx context.Context, actor Actor, id domain.LoanID) (*domain.Loan, error)
	ExtendLoan(ctx context.Context, actor Actor, id domain.LoanID, extraDays int) (*domain.Loan, error)
	MarkOverdue(ctx context.Context, actor Actor, id domain.LoanID) (*domain.Loan, error)
	GetLoan(ctx context.Context, actor Actor, id domain.LoanID) (*domain.Loan, error)
	// ListLoans returns every loan for admins and the actor's own loans otherwise.
	ListLoans(ctx context.Context, actor Actor) ([]*domain.Loan, error)
	ListUserLoans(ctx context.Context, actor Actor, user domain.UserRef) ([]*domain.Loan, error)
	// SweepOverdue marks every borrowed loan past its due date as overdue and
	// returns how many were changed.
	SweepOverdue(ctx context.Context, actor Actor) (int, error)
}
