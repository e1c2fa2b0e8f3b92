package domain

import "time"

// Transition names recorded in the audit trail.
const (
	TransitionCreated         = "created"
	TransitionVerified        = "verified"
	TransitionApproved        = "approved"
	TransitionBorrowed        = "borrowed"
	TransitionReturnInitiated = "return_initiated"
	TransitionReturned        = "returned"
	TransitionOverdue         = "overdue"
	TransitionExtended        = "extended"
)

// LoanEvent records a single successful transition on a loan.
type LoanEvent struct {
	LoanID     LoanID
	UserRef    UserRef
	Transition string
	Status     LoanStatus
	DueDate    *DueDate
	ActorID    string
	ActorRole  string
	OccurredAt time.Time
}

// NewLoanEvent captures the loan state right after transition.
func NewLoanEvent(l *Loan, transition, actorID, actorRole string) LoanEvent {
	ev := LoanEvent{
		LoanID:     l.ID(),
		UserRef:    l.UserRef(),
		Transition: transition,
		Status:     l.Status(),
		ActorID:    actorID,
		ActorRole:  actorRole,
		OccurredAt: time.Now().UTC(),
	}
	if d, ok := l.DueDate(); ok {
		ev.DueDate = &d
	}
	return ev
}
