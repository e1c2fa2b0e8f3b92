package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/bookwise/lending-api/internal/core/domain"
	"github.com/bookwise/lending-api/internal/core/ports"
)

// IdempotencyHeader carries the client's request key on loan creation.
const IdempotencyHeader = "Idempotency-Key"

// LoanHandler handles HTTP requests for loan operations.
type LoanHandler struct {
	service ports.LoanService
}

func NewLoanHandler(service ports.LoanService) *LoanHandler {
	return &LoanHandler{service: service}
}

// Create handles POST /v1/loans.
//
// @Summary      Create a loan
// @Description  Opens a loan for the calling borrower. Depending on the configured workflow the book is borrowed immediately or the loan waits for admin approval.
// @Tags         loans
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        Idempotency-Key  header    string             false  "Idempotency key to prevent duplicate submissions"
// @Param        body             body      createLoanRequest  true   "Loan request"
// @Success      201              {object}  loanResponse
// @Success      200              {object}  loanResponse  "Idempotent replay"
// @Failure      400              {object}  errorResponse
// @Failure      401              {object}  errorResponse
// @Failure      403              {object}  errorResponse
// @Failure      409              {object}  errorResponse
// @Router       /v1/loans [post]
func (h *LoanHandler) Create(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}

	var req createLoanRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	book, err := domain.ParseBookRef(req.BookID)
	if err != nil {
		return err
	}
	if req.UserID != "" {
		owner, err := domain.ParseUserRef(req.UserID)
		if err != nil {
			return err
		}
		if owner.UUID() != actor.UserID {
			return fmt.Errorf("create loan for another user: %w", domain.ErrForbidden)
		}
	}

	loan, created, err := h.service.CreateLoan(c.Request().Context(), actor, ports.CreateLoanInput{
		BookRef:        book,
		IdempotencyKey: c.Request().Header.Get(IdempotencyHeader),
	})
	if err != nil {
		return err
	}

	status := http.StatusCreated
	if !created {
		status = http.StatusOK
	}
	return c.JSON(status, toLoanResponse(loan))
}

// List handles GET /v1/loans and GET /v1/loans/all.
//
// @Summary      List loans
// @Description  Admins see every loan; borrowers see their own.
// @Tags         loans
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   loanResponse
// @Failure      401  {object}  errorResponse
// @Router       /v1/loans [get]
func (h *LoanHandler) List(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	loans, err := h.service.ListLoans(c.Request().Context(), actor)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toLoanResponses(loans))
}

// ListByUser handles GET /v1/users/:user_id/loans.
//
// @Summary      List a user's loans
// @Tags         loans
// @Produce      json
// @Security     BearerAuth
// @Param        user_id  path      string  true  "User ID (UUID)"
// @Success      200      {array}   loanResponse
// @Failure      400      {object}  errorResponse
// @Failure      403      {object}  errorResponse
// @Router       /v1/users/{user_id}/loans [get]
func (h *LoanHandler) ListByUser(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	user, err := domain.ParseUserRef(c.Param("user_id"))
	if err != nil {
		return err
	}
	loans, err := h.service.ListUserLoans(c.Request().Context(), actor, user)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toLoanResponses(loans))
}

// Get handles GET /v1/loans/:loan_id.
//
// @Summary      Get a loan
// @Tags         loans
// @Produce      json
// @Security     BearerAuth
// @Param        loan_id  path      string  true  "Loan ID (UUID)"
// @Success      200      {object}  loanResponse
// @Failure      400      {object}  errorResponse
// @Failure      403      {object}  errorResponse
// @Failure      404      {object}  errorResponse
// @Router       /v1/loans/{loan_id} [get]
func (h *LoanHandler) Get(c echo.Context) error {
	actor, id, err := actorAndLoanID(c)
	if err != nil {
		return err
	}
	loan, err := h.service.GetLoan(c.Request().Context(), actor, id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toLoanResponse(loan))
}

// Verify handles POST /v1/loans/:loan_id/verify.
//
// @Summary      Verify a loan request
// @Tags         loans
// @Produce      json
// @Security     BearerAuth
// @Param        loan_id  path      string  true  "Loan ID (UUID)"
// @Success      200      {object}  loanResponse
// @Failure      404      {object}  errorResponse
// @Failure      422      {object}  errorResponse
// @Router       /v1/loans/{loan_id}/verify [post]
func (h *LoanHandler) Verify(c echo.Context) error {
	return h.apply(c, h.service.VerifyLoan)
}

// Approve handles POST /v1/loans/:loan_id/approve.
//
// @Summary      Approve a verified loan
// @Tags         loans
// @Produce      json
// @Security     BearerAuth
// @Param        loan_id  path      string  true  "Loan ID (UUID)"
// @Success      200      {object}  loanResponse
// @Failure      404      {object}  errorResponse
// @Failure      422      {object}  errorResponse
// @Router       /v1/loans/{loan_id}/approve [post]
func (h *LoanHandler) Approve(c echo.Context) error {
	return h.apply(c, h.service.ApproveLoan)
}

// Borrow handles POST /v1/loans/:loan_id/borrow.
//
// @Summary      Hand out a book directly
// @Tags         loans
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        loan_id  path      string             true   "Loan ID (UUID)"
// @Param        body     body      borrowLoanRequest  false  "Optional due date override"
// @Success      200      {object}  loanResponse
// @Failure      400      {object}  errorResponse
// @Failure      404      {object}  errorResponse
// @Router       /v1/loans/{loan_id}/borrow [post]
func (h *LoanHandler) Borrow(c echo.Context) error {
	actor, id, err := actorAndLoanID(c)
	if err != nil {
		return err
	}

	var req borrowLoanRequest
	if c.Request().ContentLength > 0 {
		if err := c.Bind(&req); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
		}
		if err := c.Validate(&req); err != nil {
			return err
		}
	}

	var due *domain.DueDate
	if req.DueDate != "" {
		d, err := domain.ParseDueDate(req.DueDate)
		if err != nil {
			return fmt.Errorf("%w: %v", domain.ErrValidation, err)
		}
		due = &d
	}

	loan, err := h.service.BorrowLoan(c.Request().Context(), actor, id, due)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toLoanResponse(loan))
}

// InitiateReturn handles POST /v1/loans/:loan_id/return.
//
// @Summary      Start returning a borrowed book
// @Tags         loans
// @Produce      json
// @Security     BearerAuth
// @Param        loan_id  path      string  true  "Loan ID (UUID)"
// @Success      200      {object}  loanResponse
// @Failure      403      {object}  errorResponse
// @Failure      404      {object}  errorResponse
// @Failure      422      {object}  errorResponse
// @Router       /v1/loans/{loan_id}/return [post]
func (h *LoanHandler) InitiateReturn(c echo.Context) error {
	return h.apply(c, h.service.InitiateReturn)
}

// FinalizeReturn handles POST /v1/loans/:loan_id/return/finalize.
//
// @Summary      Confirm a returned book
// @Tags         loans
// @Produce      json
// @Security     BearerAuth
// @Param        loan_id  path      string  true  "Loan ID (UUID)"
// @Success      200      {object}  loanResponse
// @Failure      404      {object}  errorResponse
// @Failure      422      {object}  errorResponse
// @Router       /v1/loans/{loan_id}/return/finalize [post]
func (h *LoanHandler) FinalizeReturn(c echo.Context) error {
	return h.apply(c, h.service.FinalizeReturn)
}

// Extend handles POST /v1/loans/:loan_id/extend.
//
// @Summary      Extend a loan's due date
// @Tags         loans
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        loan_id  path      string             true  "Loan ID (UUID)"
// @Param        body     body      extendLoanRequest  true  "Extension in days"
// @Success      200      {object}  loanResponse
// @Failure      400      {object}  errorResponse
// @Failure      403      {object}  errorResponse
// @Failure      422      {object}  errorResponse
// @Router       /v1/loans/{loan_id}/extend [post]
func (h *LoanHandler) Extend(c echo.Context) error {
	actor, id, err := actorAndLoanID(c)
	if err != nil {
		return err
	}

	var req extendLoanRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	loan, err := h.service.ExtendLoan(c.Request().Context(), actor, id, req.ExtraDays)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toLoanResponse(loan))
}

// MarkOverdue handles POST /v1/loans/:loan_id/overdue.
//
// @Summary      Flag a loan as overdue
// @Tags         loans
// @Produce      json
// @Security     BearerAuth
// @Param        loan_id  path      string  true  "Loan ID (UUID)"
// @Success      200      {object}  loanResponse
// @Failure      404      {object}  errorResponse
// @Router       /v1/loans/{loan_id}/overdue [post]
func (h *LoanHandler) MarkOverdue(c echo.Context) error {
	return h.apply(c, h.service.MarkOverdue)
}

// SweepOverdue handles POST /v1/loans/overdue/sweep.
//
// @Summary      Mark every late loan overdue
// @Tags         loans
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  sweepResponse
// @Failure      403  {object}  errorResponse
// @Router       /v1/loans/overdue/sweep [post]
func (h *LoanHandler) SweepOverdue(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	n, err := h.service.SweepOverdue(c.Request().Context(), actor)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, sweepResponse{Marked: n})
}

type loanOperation func(ctx context.Context, actor ports.Actor, id domain.LoanID) (*domain.Loan, error)

// apply runs a path-addressed transition that takes no body.
func (h *LoanHandler) apply(c echo.Context, op loanOperation) error {
	actor, id, err := actorAndLoanID(c)
	if err != nil {
		return err
	}
	loan, err := op(c.Request().Context(), actor, id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toLoanResponse(loan))
}

func actorAndLoanID(c echo.Context) (ports.Actor, domain.LoanID, error) {
	actor, err := ctxActor(c)
	if err != nil {
		return ports.Actor{}, domain.LoanID{}, err
	}
	id, err := domain.ParseLoanID(c.Param("loan_id"))
	if err != nil {
		return ports.Actor{}, domain.LoanID{}, err
	}
	return actor, id, nil
}
