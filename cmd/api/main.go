// @title           BookWise Lending API
// @version         1.0
// @description     Loan lifecycle service for the BookWise library.
// @BasePath        /
//
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
// @description                 Type "Bearer" followed by a space and the access token.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	gomongo "go.mongodb.org/mongo-driver/mongo"

	"github.com/bookwise/lending-api/internal/api"
	"github.com/bookwise/lending-api/internal/core/domain"
	"github.com/bookwise/lending-api/internal/core/ports"
	"github.com/bookwise/lending-api/internal/core/service"
	"github.com/bookwise/lending-api/internal/infrastructure/audit"
	mongostore "github.com/bookwise/lending-api/internal/infrastructure/db/mongo"
	redisstore "github.com/bookwise/lending-api/internal/infrastructure/db/redis"
	"github.com/bookwise/lending-api/internal/infrastructure/memory"
	"github.com/bookwise/lending-api/internal/infrastructure/queue"
	"github.com/bookwise/lending-api/internal/infrastructure/scheduler"
	"github.com/bookwise/lending-api/internal/pkg/config"
	"github.com/bookwise/lending-api/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

// demoUsers are seeded at startup when SEED_USERS is true.
var demoUsers = []struct{ username, password, role string }{
	{"pengguna1", "pengguna123", domain.RoleAdmin},
	{"peminjam1", "pinjam123", domain.RoleBorrower},
}

func main() {
	cfg := config.MustLoad()
	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "bookwise-api",
	})

	if err := run(cfg, log); err != nil {
		log.Error().Err(err).Msg("server exited with error")
		os.Exit(1)
	}
}

func run(cfg *config.Config, log zerolog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Optional backing stores ---
	var (
		db  *gomongo.Database
		rdb *goredis.Client
	)
	if mcfg := (mongostore.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database}); mcfg.Enabled() {
		client, database, err := mongostore.Connect(ctx, mcfg)
		if err != nil {
			return err
		}
		defer func() {
			if err := mongostore.Disconnect(client); err != nil {
				log.Warn().Err(err).Msg("mongo disconnect")
			}
		}()
		db = database
		log.Info().Str("database", cfg.Mongo.Database).Msg("mongo connected")
	}
	if rcfg := (redisstore.Config{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB}); rcfg.Enabled() {
		client, err := redisstore.Connect(ctx, rcfg)
		if err != nil {
			return err
		}
		defer client.Close()
		rdb = client
		log.Info().Str("addr", cfg.Redis.Addr).Msg("redis connected")
	}

	var (
		users  ports.AuthRepository      = memory.NewUserRepository()
		events ports.LoanEventRepository = audit.NewLogRepository(log)
		tokens ports.RefreshTokenStore   = memory.NewRefreshTokenStore()
		idem   ports.IdempotencyStore    = memory.NewIdempotencyStore(0)
	)
	if db != nil {
		users = mongostore.NewAuthRepository(db)
		events = mongostore.NewEventRepository(db)
	}
	if rdb != nil {
		tokens = redisstore.NewRefreshTokenStore(rdb)
		idem = redisstore.NewIdempotencyStore(rdb)
	}

	// --- Auth ---
	authService := service.NewAuthService(users, tokens, cfg.JWTSecret,
		cfg.Auth.AccessTokenTTL, cfg.Auth.RefreshTokenTTL, logger.Component("auth"))
	if cfg.Auth.SeedUsers {
		for _, u := range demoUsers {
			if err := authService.SeedUser(ctx, u.username, u.password, u.role); err != nil {
				return err
			}
		}
	}

	// --- Loans ---
	policy, err := domain.NewLoanPolicy(cfg.Loans.PeriodDays)
	if err != nil {
		return fmt.Errorf("loan policy: %w", err)
	}
	workflow, err := service.ParseWorkflow(cfg.Loans.Workflow)
	if err != nil {
		return err
	}

	// Audit workers outlive the signal context so queued events drain after
	// the HTTP server stops.
	workerCtx, stopWorkers := context.WithCancel(context.Background())
	dispatcher := queue.NewDispatcher(cfg.Audit.Workers, events, log)
	dispatcher.Start(workerCtx)
	defer func() {
		stopWorkers()
		dispatcher.Wait()
	}()

	loanService := service.NewLoanService(
		memory.NewLoanStore(),
		policy,
		idem,
		dispatcher,
		service.LoanServiceConfig{Workflow: workflow, MaxExtensionDays: cfg.Loans.MaxExtensionDays},
		logger.Component("loans"),
	)

	sweeper := scheduler.NewOverdueSweeper(loanService, cfg.Loans.OverdueSweepInterval, log)
	go sweeper.Run(ctx)

	// --- HTTP ---
	e := api.NewRouter(api.Deps{
		Log:      log,
		Auth:     authService,
		Identity: authService,
		Loans:    loanService,
		Mongo:    db,
		Redis:    rdb,
	})

	serveErr := make(chan error, 1)
	go func() {
		log.Info().
			Str("port", cfg.Port).
			Str("workflow", string(workflow)).
			Int("loan_period_days", policy.PeriodDays()).
			Msg("starting BookWise API")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("shutdown signal received")
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	log.Info().Msg("server stopped")
	return nil
}
