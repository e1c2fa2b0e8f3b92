package memory

import (
	"context"
	"sync"
	"time"

	"github.com/bookwise/lending-api/internal/core/domain"
	"github.com/bookwise/lending-api/internal/core/ports"
)

const defaultIdempotencyTTL = 24 * time.Hour

type idemEntry struct {
	loanID    domain.LoanID
	expiresAt time.Time
}

// IdempotencyStore implements ports.IdempotencyStore in memory.
type IdempotencyStore struct {
	mu   sync.Mutex
	keys map[string]idemEntry
	ttl  time.Duration
	now  func() time.Time
}

var _ ports.IdempotencyStore = (*IdempotencyStore)(nil)

// NewIdempotencyStore keeps keys for ttl, or 24h when ttl <= 0.
func NewIdempotencyStore(ttl time.Duration) *IdempotencyStore {
	if ttl <= 0 {
		ttl = defaultIdempotencyTTL
	}
	return &IdempotencyStore{keys: make(map[string]idemEntry), ttl: ttl, now: time.Now}
}

func (s *IdempotencyStore) Reserve(_ context.Context, key string, loanID domain.LoanID) (domain.LoanID, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	if e, ok := s.keys[key]; ok && now.Before(e.expiresAt) {
		return e.loanID, false, nil
	}
	s.keys[key] = idemEntry{loanID: loanID, expiresAt: now.Add(s.ttl)}
	return loanID, true, nil
}
