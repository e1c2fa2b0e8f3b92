package config

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

// devJWTSecret signs tokens when ENV=development and JWT_SECRET is unset.
const devJWTSecret = "bookwise-development-secret"

type Config struct {
	Port      string `env:"PORT,      default=8080"`
	Env       string `env:"ENV,       default=development"`
	JWTSecret string `env:"JWT_SECRET"`
	LogLevel  string `env:"LOG_LEVEL, default=info"`

	Auth  AuthConfig
	Loans LoanConfig
	Audit AuditConfig
	Mongo MongoConfig
	Redis RedisConfig
}

type AuthConfig struct {
	AccessTokenTTL  time.Duration `env:"ACCESS_TOKEN_TTL,  default=60m"`
	RefreshTokenTTL time.Duration `env:"REFRESH_TOKEN_TTL, default=168h"`
	SeedUsers       bool          `env:"SEED_USERS,        default=true"`
}

type LoanConfig struct {
	PeriodDays           int           `env:"LOAN_PERIOD_DAYS,       default=7"`
	MaxExtensionDays     int           `env:"MAX_EXTENSION_DAYS,     default=30"`
	Workflow             string        `env:"LOAN_WORKFLOW,          default=direct"`
	OverdueSweepInterval time.Duration `env:"OVERDUE_SWEEP_INTERVAL, default=0s"`
}

type AuditConfig struct {
	Workers int `env:"AUDIT_WORKERS, default=4"`
}

// MongoConfig is optional; an empty URI keeps users and audit events in process.
type MongoConfig struct {
	URI      string `env:"MONGO_URI"`
	Database string `env:"MONGO_DB, default=bookwise"`
}

// RedisConfig is optional; an empty address keeps tokens and idempotency keys in process.
type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB, default=0"`
}

// IsDevelopment reports whether the service runs with ENV=development.
func (c *Config) IsDevelopment() bool { return c.Env == "development" }

// Load reads configuration from environment variables using go-envconfig.
func Load(ctx context.Context) (*Config, error) {
	return load(ctx, envconfig.OsLookuper())
}

// MustLoad is Load for main packages: it panics on error.
func MustLoad() *Config {
	cfg, err := Load(context.Background())
	if err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return cfg
}

func load(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: lookuper,
	}); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.JWTSecret == "" {
		if !c.IsDevelopment() {
			return errors.New("JWT_SECRET is required outside development")
		}
		c.JWTSecret = devJWTSecret
	}
	if c.Loans.PeriodDays <= 0 {
		return fmt.Errorf("LOAN_PERIOD_DAYS must be positive, got %d", c.Loans.PeriodDays)
	}
	if c.Loans.MaxExtensionDays <= 0 {
		return fmt.Errorf("MAX_EXTENSION_DAYS must be positive, got %d", c.Loans.MaxExtensionDays)
	}
	if c.Loans.Workflow != "direct" && c.Loans.Workflow != "approval" {
		return fmt.Errorf("LOAN_WORKFLOW must be direct or approval, got %q", c.Loans.Workflow)
	}
	if c.Audit.Workers <= 0 {
		return fmt.Errorf("AUDIT_WORKERS must be positive, got %d", c.Audit.Workers)
	}
	return nil
}
