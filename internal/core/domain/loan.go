package domain

import (
	"fmt"
	"time"
)

// Loan is the aggregate root tracking one borrowing transaction from request
// through return. Its state changes only through the transition methods
// below; each method validates every precondition before touching a field.
type Loan struct {
	id              LoanID
	bookRef         BookRef
	userRef         UserRef
	status          LoanStatus
	createdAt       time.Time
	dueDate         *DueDate
	verified        bool
	approved        bool
	returnInitiated bool
	returnVerified  bool
}

// NewLoan creates a loan request for book on behalf of user.
func NewLoan(book BookRef, user UserRef) (*Loan, error) {
	if book.IsZero() {
		return nil, fmt.Errorf("%w: book reference is required", ErrValidation)
	}
	if user.IsZero() {
		return nil, fmt.Errorf("%w: user reference is required", ErrValidation)
	}
	return &Loan{
		id:        NewLoanID(),
		bookRef:   book,
		userRef:   user,
		status:    StatusRequested,
		createdAt: time.Now().UTC(),
	}, nil
}

func (l *Loan) ID() LoanID { return l.id }
func (l *Loan) BookRef() BookRef { return l.bookRef }
func (l *Loan) UserRef() UserRef { return l.userRef }
func (l *Loan) Status() LoanStatus { return l.status }
func (l *Loan) CreatedAt() time.Time { return l.createdAt }
func (l *Loan) Verified() bool { return l.verified }
func (l *Loan) Approved() bool { return l.approved }
func (l *Loan) ReturnInitiated() bool { return l.returnInitiated }
func (l *Loan) ReturnVerified() bool { return l.returnVerified }

// DueDate returns the current due date and whether one is set.
func (l *Loan) DueDate() (DueDate, bool) {
	if l.dueDate == nil {
		return DueDate{}, false
	}
	return *l.dueDate, true
}

// OwnedBy reports whether the loan belongs to user.
func (l *Loan) OwnedBy(user UserRef) bool {
	return l.userRef.Equals(user)
}

// IsOverdue reports whether the loan is still out past its due date.
func (l *Loan) IsOverdue() bool {
	return l.dueDate != nil && l.status != StatusReturned && l.dueDate.IsOverdue()
}

// Borrow is the direct path: the book leaves the shelf without a separate
// verification and approval step.
func (l *Loan) Borrow(due DueDate) {
	l.status = StatusBorrowed
	l.dueDate = &due
	l.verified = true
	l.approved = true
	l.returnInitiated = false
}

// Verify records that an admin checked the request.
func (l *Loan) Verify() error {
	if l.status != StatusRequested {
		return fmt.Errorf("%w: loan is not in requested state (status %s)", ErrInvalidTransition, l.status)
	}
	l.verified = true
	return nil
}

// Approve hands the book out. The loan clock restarts at approval time.
func (l *Loan) Approve(due DueDate) error {
	if !l.verified {
		return fmt.Errorf("%w: loan must be verified before approval", ErrInvalidTransition)
	}
	l.approved = true
	l.status = StatusBorrowed
	l.dueDate = &due
	l.createdAt = time.Now().UTC()
	return nil
}

// InitiateReturn marks that the borrower started returning the book. The
// status stays borrowed until an admin finalizes the return.
func (l *Loan) InitiateReturn() error {
	if l.status != StatusBorrowed {
		return fmt.Errorf("%w: loan is not currently borrowed (status %s)", ErrInvalidTransition, l.status)
	}
	l.returnInitiated = true
	return nil
}

// FinalizeReturn records the admin's confirmation of the physical return.
func (l *Loan) FinalizeReturn() error {
	if !l.returnInitiated {
		return fmt.Errorf("%w: return not initiated", ErrInvalidTransition)
	}
	l.returnVerified = true
	l.status = StatusReturned
	l.returnInitiated = false
	l.dueDate = nil
	return nil
}

// MarkOverdue flags the loan as overdue. There is no guard; callers decide
// when a loan qualifies.
func (l *Loan) MarkOverdue() {
	l.status = StatusOverdue
}

// ExtendLoan pushes the due date extraDays calendar days forward and returns
// the new value.
func (l *Loan) ExtendLoan(extraDays int) (DueDate, error) {
	if l.dueDate == nil {
		return DueDate{}, fmt.Errorf("%w: no due date to extend", ErrInvalidOperation)
	}
	if extraDays < 1 {
		return DueDate{}, fmt.Errorf("%w: extension must be at least one day, got %d", ErrInvalidOperation, extraDays)
	}
	next := l.dueDate.AddDays(extraDays)
	l.dueDate = &next
	return next, nil
}

// LoanSnapshot is a flat, exported copy of a loan's state.
type LoanSnapshot struct {
	ID              LoanID
	BookRef         BookRef
	UserRef         UserRef
	Status          LoanStatus
	CreatedAt       time.Time
	DueDate         *DueDate
	Verified        bool
	Approved        bool
	ReturnInitiated bool
	ReturnVerified  bool
}

// Snapshot copies the loan state.
func (l *Loan) Snapshot() LoanSnapshot {
	s := LoanSnapshot{
		ID:              l.id,
		BookRef:         l.bookRef,
		UserRef:         l.userRef,
		Status:          l.status,
		CreatedAt:       l.createdAt,
		Verified:        l.verified,
		Approved:        l.approved,
		ReturnInitiated: l.returnInitiated,
		ReturnVerified:  l.returnVerified,
	}
	if l.dueDate != nil {
		d := *l.dueDate
		s.DueDate = &d
	}
	return s
}

// RestoreLoan rebuilds a loan from a snapshot.
func RestoreLoan(s LoanSnapshot) (*Loan, error) {
	if s.ID.IsZero() {
		return nil, fmt.Errorf("%w: loan id is required", ErrValidation)
	}
	if s.UserRef.IsZero() {
		return nil, fmt.Errorf("%w: user reference is required", ErrValidation)
	}
	if !s.Status.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidLoanStatus, string(s.Status))
	}
	l := &Loan{
		id:              s.ID,
		bookRef:         s.BookRef,
		userRef:         s.UserRef,
		status:          s.Status,
		createdAt:       s.CreatedAt,
		verified:        s.Verified,
		approved:        s.Approved,
		returnInitiated: s.ReturnInitiated,
		returnVerified:  s.ReturnVerified,
	}
	if s.DueDate != nil {
		d := *s.DueDate
		l.dueDate = &d
	}
	return l, nil
}

// Clone returns an independent copy of the loan.
func (l *Loan) Clone() *Loan {
	c := *l
	if l.dueDate != nil {
		d := *l.dueDate
		c.dueDate = &d
	}
	return &c
}
