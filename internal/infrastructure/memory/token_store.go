package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/bookwise/lending-api/internal/core/domain"
	"github.com/bookwise/lending-api/internal/core/ports"
)

type refreshEntry struct {
	userID    uuid.UUID
	expiresAt time.Time
}

// RefreshTokenStore implements ports.RefreshTokenStore in memory. Expired
// entries are discarded lazily when touched.
type RefreshTokenStore struct {
	mu     sync.Mutex
	tokens map[string]refreshEntry
	now    func() time.Time
}

var _ ports.RefreshTokenStore = (*RefreshTokenStore)(nil)

func NewRefreshTokenStore() *RefreshTokenStore {
	return &RefreshTokenStore{tokens: make(map[string]refreshEntry), now: time.Now}
}

func (s *RefreshTokenStore) Put(_ context.Context, token string, userID uuid.UUID, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[token] = refreshEntry{userID: userID, expiresAt: s.now().Add(ttl)}
	return nil
}

func (s *RefreshTokenStore) Consume(_ context.Context, token string) (uuid.UUID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.tokens[token]
	if !ok {
		return uuid.Nil, domain.ErrInvalidToken
	}
	delete(s.tokens, token)
	if !s.now().Before(e.expiresAt) {
		return uuid.Nil, domain.ErrInvalidToken
	}
	return e.userID, nil
}

func (s *RefreshTokenStore) Revoke(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tokens, token)
	return nil
}
