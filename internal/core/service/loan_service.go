package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/bookwise/lending-api/internal/core/domain"
	"github.com/bookwise/lending-api/internal/core/ports"
	"github.com/bookwise/lending-api/internal/pkg/metrics"
)

// Workflow selects what happens when a borrower creates a loan.
type Workflow string

const (
	// WorkflowDirect borrows the book as soon as the loan is created.
	WorkflowDirect Workflow = "direct"
	// WorkflowApproval leaves the loan requested until an admin verifies and approves it.
	WorkflowApproval Workflow = "approval"
)

// ParseWorkflow accepts "direct" or "approval".
func ParseWorkflow(s string) (Workflow, error) {
	switch Workflow(s) {
	case WorkflowDirect, WorkflowApproval:
		return Workflow(s), nil
	}
	return "", fmt.Errorf("%w: unknown loan workflow %q", domain.ErrValidation, s)
}

// LoanServiceConfig tunes the loan service. Zero values fall back to defaults.
type LoanServiceConfig struct {
	Workflow         Workflow
	MaxExtensionDays int
	Clock            func() time.Time
}

const defaultMaxExtensionDays = 30

type loanService struct {
	repo   ports.LoanRepository
	policy *domain.LoanPolicy
	idem   ports.IdempotencyStore
	events ports.LoanEventPublisher
	cfg    LoanServiceConfig
	log    zerolog.Logger
}

// NewLoanService returns a LoanService implementation. idem and events may be
// nil, which disables idempotency keys and the audit trail respectively.
func NewLoanService(
	repo ports.LoanRepository,
	policy *domain.LoanPolicy,
	idem ports.IdempotencyStore,
	events ports.LoanEventPublisher,
	cfg LoanServiceConfig,
	log zerolog.Logger,
) ports.LoanService {
	if cfg.Workflow == "" {
		cfg.Workflow = WorkflowDirect
	}
	if cfg.MaxExtensionDays <= 0 {
		cfg.MaxExtensionDays = defaultMaxExtensionDays
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}
	return &loanService{
		repo:   repo,
		policy: policy,
		idem:   idem,
		events: events,
		cfg:    cfg,
		log:    log,
	}
}

func (s *loanService) CreateLoan(ctx context.Context, actor ports.Actor, in ports.CreateLoanInput) (*domain.Loan, bool, error) {
	if !actor.IsBorrower() {
		return nil, false, fmt.Errorf("create loan: %w", domain.ErrForbidden)
	}
	owner, err := actor.Ref()
	if err != nil {
		return nil, false, fmt.Errorf("create loan: %w", err)
	}
	loan, err := domain.NewLoan(in.BookRef, owner)
	if err != nil {
		return nil, false, fmt.Errorf("create loan: %w", err)
	}

	if in.IdempotencyKey != "" && s.idem != nil {
		key := actor.UserID.String() + ":" + in.IdempotencyKey
		existingID, reserved, err := s.idem.Reserve(ctx, key, loan.ID())
		switch {
		case err != nil:
			s.log.Warn().Err(err).Str("idempotency_key", in.IdempotencyKey).Msg("idempotency check failed, creating anyway")
		case !reserved:
			metrics.IdempotencyTotal.WithLabelValues("hit").Inc()
			existing, ok := s.repo.FindByID(ctx, existingID)
			if !ok {
				// Reserved by a concurrent request that has not saved yet.
				return nil, false, fmt.Errorf("create loan: %w", domain.ErrDuplicateRequest)
			}
			if !existing.OwnedBy(owner) {
				return nil, false, fmt.Errorf("create loan: %w", domain.ErrForbidden)
			}
			s.log.Info().Str("idempotency_key", in.IdempotencyKey).Str("loan_id", existing.ID().String()).Msg("idempotent replay")
			return existing, false, nil
		default:
			metrics.IdempotencyTotal.WithLabelValues("miss").Inc()
		}
	}

	if s.cfg.Workflow == WorkflowDirect {
		loan.Borrow(s.policy.CalculateDueDate())
	}
	if err := s.repo.Save(ctx, loan); err != nil {
		s.log.Error().Err(err).Msg("failed to save loan")
		return nil, false, fmt.Errorf("create loan: %w", err)
	}

	metrics.LoansCreatedTotal.WithLabelValues(string(s.cfg.Workflow)).Inc()
	s.publish(loan, domain.TransitionCreated, actor)
	if loan.Status() == domain.StatusBorrowed {
		s.publish(loan, domain.TransitionBorrowed, actor)
	}

	s.log.Info().
		Str("loan_id", loan.ID().String()).
		Str("user_id", owner.String()).
		Str("status", loan.Status().String()).
		Msg("loan created")

	return loan, true, nil
}

func (s *loanService) VerifyLoan(ctx context.Context, actor ports.Actor, id domain.LoanID) (*domain.Loan, error) {
	if !actor.IsAdmin() {
		return nil, s.reject("verify", domain.ErrForbidden)
	}
	return s.transition(ctx, actor, "verify", id, domain.TransitionVerified, nil, func(l *domain.Loan) error {
		return l.Verify()
	})
}

func (s *loanService) ApproveLoan(ctx context.Context, actor ports.Actor, id domain.LoanID) (*domain.Loan, error) {
	if !actor.IsAdmin() {
		return nil, s.reject("approve", domain.ErrForbidden)
	}
	return s.transition(ctx, actor, "approve", id, domain.TransitionApproved, nil, func(l *domain.Loan) error {
		return l.Approve(s.policy.CalculateDueDate())
	})
}

func (s *loanService) BorrowLoan(ctx context.Context, actor ports.Actor, id domain.LoanID, due *domain.DueDate) (*domain.Loan, error) {
	if !actor.IsAdmin() {
		return nil, s.reject("borrow", domain.ErrForbidden)
	}
	d := s.policy.CalculateDueDate()
	if due != nil {
		d = *due
	}
	return s.transition(ctx, actor, "borrow", id, domain.TransitionBorrowed, nil, func(l *domain.Loan) error {
		l.Borrow(d)
		return nil
	})
}

func (s *loanService) InitiateReturn(ctx context.Context, actor ports.Actor, id domain.LoanID) (*domain.Loan, error) {
	return s.transition(ctx, actor, "return", id, domain.TransitionReturnInitiated, ownerOrAdmin(actor), func(l *domain.Loan) error {
		return l.InitiateReturn()
	})
}

func (s *loanService) FinalizeReturn(ctx context.Context, actor ports.Actor, id domain.LoanID) (*domain.Loan, error) {
	if !actor.IsAdmin() {
		return nil, s.reject("finalize_return", domain.ErrForbidden)
	}
	return s.transition(ctx, actor, "finalize_return", id, domain.TransitionReturned, nil, func(l *domain.Loan) error {
		return l.FinalizeReturn()
	})
}

func (s *loanService) ExtendLoan(ctx context.Context, actor ports.Actor, id domain.LoanID, extraDays int) (*domain.Loan, error) {
	if extraDays > s.cfg.MaxExtensionDays {
		return nil, s.reject("extend", fmt.Errorf("%w: extension may not exceed %d days", domain.ErrValidation, s.cfg.MaxExtensionDays))
	}
	return s.transition(ctx, actor, "extend", id, domain.TransitionExtended, ownerOrAdmin(actor), func(l *domain.Loan) error {
		_, err := l.ExtendLoan(extraDays)
		return err
	})
}

func (s *loanService) MarkOverdue(ctx context.Context, actor ports.Actor, id domain.LoanID) (*domain.Loan, error) {
	if !actor.IsAdmin() {
		return nil, s.reject("overdue", domain.ErrForbidden)
	}
	return s.transition(ctx, actor, "overdue", id, domain.TransitionOverdue, nil, func(l *domain.Loan) error {
		l.MarkOverdue()
		return nil
	})
}

func (s *loanService) GetLoan(ctx context.Context, actor ports.Actor, id domain.LoanID) (*domain.Loan, error) {
	loan, ok := s.repo.FindByID(ctx, id)
	if !ok {
		return nil, fmt.Errorf("get loan: %w", domain.ErrLoanNotFound)
	}
	if err := ownerOrAdmin(actor)(loan); err != nil {
		return nil, fmt.Errorf("get loan: %w", err)
	}
	return loan, nil
}

func (s *loanService) ListLoans(ctx context.Context, actor ports.Actor) ([]*domain.Loan, error) {
	if actor.IsAdmin() {
		return s.repo.ListAll(ctx), nil
	}
	ref, err := actor.Ref()
	if err != nil {
		return nil, fmt.Errorf("list loans: %w", domain.ErrForbidden)
	}
	return s.repo.FindByUser(ctx, ref), nil
}

func (s *loanService) ListUserLoans(ctx context.Context, actor ports.Actor, user domain.UserRef) ([]*domain.Loan, error) {
	if !actor.IsAdmin() && actor.UserID != user.UUID() {
		return nil, fmt.Errorf("list user loans: %w", domain.ErrForbidden)
	}
	return s.repo.FindByUser(ctx, user), nil
}

// errNotOverdue aborts a sweep update when the loan changed since listing.
var errNotOverdue = errors.New("loan no longer overdue")

func (s *loanService) SweepOverdue(ctx context.Context, actor ports.Actor) (int, error) {
	if !actor.IsAdmin() {
		return 0, s.reject("sweep", domain.ErrForbidden)
	}
	now := s.cfg.Clock()
	marked := 0
	for _, candidate := range s.repo.ListAll(ctx) {
		if !overdueAt(candidate, now) {
			continue
		}
		loan, err := s.repo.Update(ctx, candidate.ID(), func(l *domain.Loan) error {
			if !overdueAt(l, now) {
				return errNotOverdue
			}
			l.MarkOverdue()
			return nil
		})
		if errors.Is(err, errNotOverdue) {
			continue
		}
		if err != nil {
			return marked, fmt.Errorf("sweep overdue: %w", err)
		}
		marked++
		metrics.OverdueMarkedTotal.Inc()
		metrics.LoanTransitionsTotal.WithLabelValues(domain.TransitionOverdue).Inc()
		s.publish(loan, domain.TransitionOverdue, actor)
	}
	if marked > 0 {
		s.log.Info().Int("marked", marked).Msg("overdue sweep completed")
	}
	return marked, nil
}

func overdueAt(l *domain.Loan, now time.Time) bool {
	due, ok := l.DueDate()
	return ok && l.Status() == domain.StatusBorrowed && due.IsOverdueAt(now)
}

// transition loads, authorizes, mutates and stores one loan under the store lock.
func (s *loanService) transition(
	ctx context.Context,
	actor ports.Actor,
	op string,
	id domain.LoanID,
	transition string,
	authorize func(*domain.Loan) error,
	apply func(*domain.Loan) error,
) (*domain.Loan, error) {
	loan, err := s.repo.Update(ctx, id, func(l *domain.Loan) error {
		if authorize != nil {
			if err := authorize(l); err != nil {
				return err
			}
		}
		return apply(l)
	})
	if err != nil {
		return nil, s.reject(op, err)
	}

	metrics.LoanTransitionsTotal.WithLabelValues(transition).Inc()
	s.publish(loan, transition, actor)

	s.log.Info().
		Str("loan_id", loan.ID().String()).
		Str("transition", transition).
		Str("status", loan.Status().String()).
		Str("actor", actor.Username).
		Msg("loan transition applied")

	return loan, nil
}

func (s *loanService) reject(op string, err error) error {
	metrics.LoanTransitionErrorsTotal.WithLabelValues(op, failureReason(err)).Inc()
	s.log.Debug().Err(err).Str("operation", op).Msg("loan operation rejected")
	return fmt.Errorf("%s loan: %w", op, err)
}

func (s *loanService) publish(l *domain.Loan, transition string, actor ports.Actor) {
	if s.events == nil {
		return
	}
	actorID := actor.Username
	if actor.UserID != uuid.Nil {
		actorID = actor.UserID.String()
	}
	s.events.Publish(domain.NewLoanEvent(l, transition, actorID, actor.Role))
}

// ownerOrAdmin lets admins through and restricts everyone else to their own loans.
func ownerOrAdmin(actor ports.Actor) func(*domain.Loan) error {
	return func(l *domain.Loan) error {
		if actor.IsAdmin() {
			return nil
		}
		ref, err := actor.Ref()
		if err != nil || !l.OwnedBy(ref) {
			return domain.ErrForbidden
		}
		return nil
	}
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrLoanNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrForbidden):
		return "forbidden"
	case errors.Is(err, domain.ErrInvalidTransition):
		return "invalid_transition"
	case errors.Is(err, domain.ErrInvalidOperation):
		return "invalid_operation"
	case errors.Is(err, domain.ErrValidation):
		return "validation"
	default:
		return "other"
	}
}
