// Package memory holds process-local implementations of the repository ports.
// Everything here is lost on restart.
package memory

import (
	"context"
	"sync"

	"github.com/bookwise/lending-api/internal/core/domain"
	"github.com/bookwise/lending-api/internal/core/ports"
)

// LoanStore implements ports.LoanRepository with a map guarded by a single
// RWMutex. Loans are copied on the way in and on the way out.
type LoanStore struct {
	mu    sync.RWMutex
	loans map[domain.LoanID]*domain.Loan
	order []domain.LoanID
}

var _ ports.LoanRepository = (*LoanStore)(nil)

// NewLoanStore returns an empty store.
func NewLoanStore() *LoanStore {
	return &LoanStore{loans: make(map[domain.LoanID]*domain.Loan)}
}

func (s *LoanStore) Save(_ context.Context, loan *domain.Loan) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.put(loan.Clone())
	return nil
}

func (s *LoanStore) FindByID(_ context.Context, id domain.LoanID) (*domain.Loan, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	l, ok := s.loans[id]
	if !ok {
		return nil, false
	}
	return l.Clone(), true
}

func (s *LoanStore) FindByUser(_ context.Context, user domain.UserRef) []*domain.Loan {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*domain.Loan, 0)
	for _, id := range s.order {
		if l := s.loans[id]; l.OwnedBy(user) {
			out = append(out, l.Clone())
		}
	}
	return out
}

func (s *LoanStore) ListAll(_ context.Context) []*domain.Loan {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*domain.Loan, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.loans[id].Clone())
	}
	return out
}

func (s *LoanStore) Update(_ context.Context, id domain.LoanID, fn func(*domain.Loan) error) (*domain.Loan, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.loans[id]
	if !ok {
		return nil, domain.ErrLoanNotFound
	}
	working := current.Clone()
	if err := fn(working); err != nil {
		return nil, err
	}
	s.put(working.Clone())
	return working, nil
}

// Len returns the number of stored loans.
func (s *LoanStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.loans)
}

// put must be called with mu held.
func (s *LoanStore) put(l *domain.Loan) {
	if _, exists := s.loans[l.ID()]; !exists {
		s.order = append(s.order, l.ID())
	}
	s.loans[l.ID()] = l
}
