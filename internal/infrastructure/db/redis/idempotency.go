package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/bookwise/lending-api/internal/core/domain"
	"github.com/bookwise/lending-api/internal/core/ports"
)

const idempotencyTTL = 24 * time.Hour

// IdempotencyStore binds client request keys to loan ids in Redis.
// Key format: idem:<key>
type IdempotencyStore struct {
	client *redis.Client
}

var _ ports.IdempotencyStore = (*IdempotencyStore)(nil)

// NewIdempotencyStore creates an IdempotencyStore wrapping the given Redis client.
func NewIdempotencyStore(client *redis.Client) *IdempotencyStore {
	return &IdempotencyStore{client: client}
}

// Reserve stores loanID under key with SETNX. When the key already exists the
// stored loan id is returned instead.
func (s *IdempotencyStore) Reserve(ctx context.Context, key string, loanID domain.LoanID) (domain.LoanID, bool, error) {
	ok, err := s.client.SetNX(ctx, idempotencyKey(key), loanID.String(), idempotencyTTL).Result()
	if err != nil {
		return domain.LoanID{}, false, fmt.Errorf("idempotency reserve: %w", err)
	}
	if ok {
		return loanID, true, nil
	}

	raw, err := s.client.Get(ctx, idempotencyKey(key)).Result()
	if errors.Is(err, redis.Nil) {
		// Expired between SETNX and GET; try once more.
		return s.Reserve(ctx, key, loanID)
	}
	if err != nil {
		return domain.LoanID{}, false, fmt.Errorf("idempotency lookup: %w", err)
	}
	existing, err := domain.ParseLoanID(raw)
	if err != nil {
		return domain.LoanID{}, false, fmt.Errorf("idempotency lookup: %w", err)
	}
	return existing, false, nil
}

func idempotencyKey(key string) string {
	return "idem:" + key
}
