package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.mongodb.org/mongo-driver/mongo"

	_ "github.com/bookwise/lending-api/docs"
	"github.com/bookwise/lending-api/internal/api/handler"
	"github.com/bookwise/lending-api/internal/api/middleware"
	"github.com/bookwise/lending-api/internal/core/domain"
	"github.com/bookwise/lending-api/internal/core/ports"
)

// Deps are the collaborators the HTTP layer is built from. Mongo and Redis
// are optional and only feed the readiness probe.
type Deps struct {
	Log      zerolog.Logger
	Auth     ports.AuthService
	Identity ports.IdentityResolver
	Loans    ports.LoanService
	Mongo    *mongo.Database
	Redis    *redis.Client

	// Registry receives the HTTP request metrics. Nil means the default
	// prometheus registry.
	Registry *prometheus.Registry
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Log)

	promMW := echoprometheus.MiddlewareConfig{Subsystem: "bookwise"}
	promHandler := echoprometheus.HandlerConfig{}
	if deps.Registry != nil {
		promMW.Registerer = deps.Registry
		promHandler.Gatherer = deps.Registry
	}

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddlewareWithConfig(promMW))

	// --- Dependencies ---
	authHandler := handler.NewAuthHandler(deps.Auth)
	loanHandler := handler.NewLoanHandler(deps.Loans)
	authMW := middleware.Auth(deps.Identity)
	borrower := middleware.RBAC(domain.RoleBorrower)
	admin := middleware.RBAC(domain.RoleAdmin)
	anyRole := middleware.RBAC(domain.RoleBorrower, domain.RoleAdmin)

	// --- Public ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(deps.Mongo, deps.Redis)

	e.GET("/", healthHandler.Root)
	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(promHandler))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// --- Auth routes ---
	auth := e.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.POST("/refresh", authHandler.Refresh)
	auth.POST("/logout", authHandler.Logout)
	auth.GET("/me", authHandler.Me, authMW)

	// --- Loans ---
	v1 := e.Group("/v1", authMW)

	loans := v1.Group("/loans")
	loans.POST("", loanHandler.Create, borrower)
	loans.GET("", loanHandler.List, anyRole)
	loans.GET("/all", loanHandler.List, admin)
	loans.POST("/overdue/sweep", loanHandler.SweepOverdue, admin)
	loans.GET("/:loan_id", loanHandler.Get, anyRole)
	loans.POST("/:loan_id/verify", loanHandler.Verify, admin)
	loans.POST("/:loan_id/approve", loanHandler.Approve, admin)
	loans.POST("/:loan_id/borrow", loanHandler.Borrow, admin)
	loans.POST("/:loan_id/return", loanHandler.InitiateReturn, borrower)
	loans.POST("/:loan_id/return/finalize", loanHandler.FinalizeReturn, admin)
	loans.POST("/:loan_id/extend", loanHandler.Extend, borrower)
	loans.POST("/:loan_id/overdue", loanHandler.MarkOverdue, admin)

	v1.GET("/users/:user_id/loans", loanHandler.ListByUser, admin)

	return e
}
