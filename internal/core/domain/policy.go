package domain

import (
	"fmt"
	"time"
)

// DefaultLoanPeriodDays is the lending period applied when none is configured.
const DefaultLoanPeriodDays = 7

// LoanPolicy computes due dates for freshly borrowed or approved loans.
// It holds no state besides its configuration.
type LoanPolicy struct {
	periodDays int
	now        func() time.Time
}

// NewLoanPolicy returns a policy granting periodDays per loan.
func NewLoanPolicy(periodDays int) (*LoanPolicy, error) {
	if periodDays <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrNonPositiveDuration, periodDays)
	}
	return &LoanPolicy{periodDays: periodDays, now: time.Now}, nil
}

// WithClock returns a copy of the policy that reads the current time from now.
func (p *LoanPolicy) WithClock(now func() time.Time) *LoanPolicy {
	c := *p
	c.now = now
	return &c
}

// PeriodDays returns the configured lending period.
func (p *LoanPolicy) PeriodDays() int { return p.periodDays }

// CalculateDueDate returns today plus the lending period.
func (p *LoanPolicy) CalculateDueDate() DueDate {
	return NewDueDate(p.now()).AddDays(p.periodDays)
}
