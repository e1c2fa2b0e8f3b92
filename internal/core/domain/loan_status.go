package domain

import "fmt"

// LoanStatus represents the lifecycle state of a loan.
type LoanStatus string

const (
	StatusRequested LoanStatus = "requested"
	StatusBorrowed  LoanStatus = "borrowed"
	StatusReturned  LoanStatus = "returned"
	StatusOverdue   LoanStatus = "overdue"
)

var loanStatuses = map[LoanStatus]struct{}{
	StatusRequested: {},
	StatusBorrowed:  {},
	StatusReturned:  {},
	StatusOverdue:   {},
}

// ParseLoanStatus accepts only the four lowercase status tokens.
func ParseLoanStatus(s string) (LoanStatus, error) {
	st := LoanStatus(s)
	if _, ok := loanStatuses[st]; !ok {
		return "", fmt.Errorf("%w: %q", ErrInvalidLoanStatus, s)
	}
	return st, nil
}

// Valid reports whether s is one of the known statuses.
func (s LoanStatus) Valid() bool {
	_, ok := loanStatuses[s]
	return ok
}

func (s LoanStatus) String() string { return string(s) }

func (s LoanStatus) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidLoanStatus, string(s))
	}
	return []byte(s), nil
}

func (s *LoanStatus) UnmarshalText(b []byte) error {
	st, err := ParseLoanStatus(string(b))
	if err != nil {
		return err
	}
	*s = st
	return nil
}
