package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/bookwise/lending-api/internal/core/domain"
	"github.com/bookwise/lending-api/internal/core/ports"
	"github.com/bookwise/lending-api/internal/pkg/metrics"
)

const (
	defaultAccessTTL  = 60 * time.Minute
	defaultRefreshTTL = 7 * 24 * time.Hour
	bcryptMaxBytes    = 72
	tokenTypeBearer   = "bearer"
)

// accessClaims is the payload of an access token.
type accessClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// AuthService implements registration, token issuance and identity resolution.
type AuthService struct {
	repo       ports.AuthRepository
	tokens     ports.RefreshTokenStore
	jwtSecret  []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
	log        zerolog.Logger
}

var (
	_ ports.AuthService      = (*AuthService)(nil)
	_ ports.IdentityResolver = (*AuthService)(nil)
)

func NewAuthService(
	repo ports.AuthRepository,
	tokens ports.RefreshTokenStore,
	jwtSecret string,
	accessTTL, refreshTTL time.Duration,
	log zerolog.Logger,
) *AuthService {
	if accessTTL <= 0 {
		accessTTL = defaultAccessTTL
	}
	if refreshTTL <= 0 {
		refreshTTL = defaultRefreshTTL
	}
	return &AuthService{
		repo:       repo,
		tokens:     tokens,
		jwtSecret:  []byte(jwtSecret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        time.Now,
		log:        log,
	}
}

func (s *AuthService) Register(ctx context.Context, username, password, role string) (*domain.User, error) {
	if username == "" || password == "" {
		return nil, fmt.Errorf("%w: username and password are required", domain.ErrValidation)
	}
	if !domain.ValidRole(role) {
		return nil, fmt.Errorf("%w: unknown role %q", domain.ErrValidation, role)
	}

	hash, err := bcrypt.GenerateFromPassword(passwordBytes(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := s.now().UTC()
	user := &domain.User{
		ID:           uuid.New(),
		Username:     username,
		PasswordHash: string(hash),
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	created, err := s.repo.Create(ctx, user)
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (s *AuthService) Login(ctx context.Context, username, password string) (*ports.TokenPair, *domain.User, error) {
	if username == "" || password == "" {
		metrics.AuthLoginsTotal.WithLabelValues("failed").Inc()
		return nil, nil, domain.ErrInvalidCredentials
	}

	user, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		metrics.AuthLoginsTotal.WithLabelValues("failed").Inc()
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, nil, domain.ErrInvalidCredentials
		}
		return nil, nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), passwordBytes(password)) != nil {
		metrics.AuthLoginsTotal.WithLabelValues("failed").Inc()
		return nil, nil, domain.ErrInvalidCredentials
	}
	if user.Disabled {
		metrics.AuthLoginsTotal.WithLabelValues("failed").Inc()
		return nil, nil, domain.ErrUserDisabled
	}

	pair, err := s.issue(ctx, user)
	if err != nil {
		return nil, nil, err
	}

	metrics.AuthLoginsTotal.WithLabelValues("ok").Inc()
	return pair, user, nil
}

func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*ports.TokenPair, error) {
	if refreshToken == "" {
		return nil, domain.ErrInvalidToken
	}
	userID, err := s.tokens.Consume(ctx, refreshToken)
	if err != nil {
		return nil, err
	}
	user, err := s.activeUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.issue(ctx, user)
}

func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	return s.tokens.Revoke(ctx, refreshToken)
}

func (s *AuthService) Me(ctx context.Context, actor ports.Actor) (*domain.User, error) {
	return s.repo.FindByID(ctx, actor.UserID)
}

// Resolve validates an access token and loads the account behind it. The
// role comes from the stored account, not from the token.
func (s *AuthService) Resolve(ctx context.Context, token string) (ports.Actor, error) {
	claims := &accessClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return s.jwtSecret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !parsed.Valid {
		return ports.Actor{}, domain.ErrInvalidToken
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return ports.Actor{}, domain.ErrInvalidToken
	}
	user, err := s.activeUser(ctx, userID)
	if err != nil {
		return ports.Actor{}, err
	}
	return ports.Actor{UserID: user.ID, Username: user.Username, Role: user.Role}, nil
}

// SeedUser registers an account unless the username is already taken.
func (s *AuthService) SeedUser(ctx context.Context, username, password, role string) error {
	_, err := s.Register(ctx, username, password, role)
	switch {
	case errors.Is(err, domain.ErrUserExists):
		return nil
	case err != nil:
		return fmt.Errorf("seed user %s: %w", username, err)
	}
	s.log.Info().Str("username", username).Str("role", role).Msg("seeded user")
	return nil
}

func (s *AuthService) activeUser(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidToken
		}
		return nil, err
	}
	if user.Disabled {
		return nil, domain.ErrUserDisabled
	}
	return user, nil
}

func (s *AuthService) issue(ctx context.Context, user *domain.User) (*ports.TokenPair, error) {
	access, err := s.generateToken(user)
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}
	refresh := uuid.NewString()
	if err := s.tokens.Put(ctx, refresh, user.ID, s.refreshTTL); err != nil {
		return nil, fmt.Errorf("store refresh token: %w", err)
	}
	return &ports.TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    tokenTypeBearer,
		ExpiresIn:    s.accessTTL,
	}, nil
}

func (s *AuthService) generateToken(user *domain.User) (string, error) {
	now := s.now()
	claims := accessClaims{
		Role: user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.accessTTL)),
		},
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(s.jwtSecret)
}

// passwordBytes truncates to the 72 bytes bcrypt actually reads.
func passwordBytes(password string) []byte {
	b := []byte(password)
	if len(b) > bcryptMaxBytes {
		b = b[:bcryptMaxBytes]
	}
	return b
}
