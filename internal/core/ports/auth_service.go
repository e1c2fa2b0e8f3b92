package ports

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/bookwise/lending-api/internal/core/domain"
)

// TokenPair is returned on login and refresh.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
	TokenType    string
	ExpiresIn    time.Duration
}

type AuthService interface {
	Register(ctx context.Context, username, password, role string) (*domain.User, error)
	Login(ctx context.Context, username, password string) (*TokenPair, *domain.User, error)
	// Refresh consumes a refresh token and issues a new pair. The old refresh
	// token stops working.
	Refresh(ctx context.Context, refreshToken string) (*TokenPair, error)
	Logout(ctx context.Context, refreshToken string) error
	Me(ctx context.Context, actor Actor) (*domain.User, error)
}

// RefreshTokenStore keeps opaque refresh tokens until they expire or are used.
type RefreshTokenStore interface {
	Put(ctx context.Context, token string, userID uuid.UUID, ttl time.Duration) error
	// Consume returns the owner of token and deletes it in the same step.
	// Unknown or expired tokens yield domain.ErrInvalidToken.
	Consume(ctx context.Context, token string) (uuid.UUID, error)
	Revoke(ctx context.Context, token string) error
}
