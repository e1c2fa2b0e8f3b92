package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/bookwise/lending-api/internal/core/domain"
	"github.com/bookwise/lending-api/internal/core/ports"
)

// stubLoanService records the last call and returns canned results.
// Unset methods panic through the embedded nil interface.
type stubLoanService struct {
	ports.LoanService

	loan    *domain.Loan
	loans   []*domain.Loan
	created bool
	err     error

	gotInput ports.CreateLoanInput
	gotID    domain.LoanID
	gotDays  int
	gotDue   *domain.DueDate
	gotUser  domain.UserRef
}

func (s *stubLoanService) CreateLoan(_ context.Context, _ ports.Actor, in ports.CreateLoanInput) (*domain.Loan, bool, error) {
	s.gotInput = in
	return s.loan, s.created, s.err
}

func (s *stubLoanService) GetLoan(_ context.Context, _ ports.Actor, id domain.LoanID) (*domain.Loan, error) {
	s.gotID = id
	return s.loan, s.err
}

func (s *stubLoanService) VerifyLoan(_ context.Context, _ ports.Actor, id domain.LoanID) (*domain.Loan, error) {
	s.gotID = id
	return s.loan, s.err
}

func (s *stubLoanService) BorrowLoan(_ context.Context, _ ports.Actor, id domain.LoanID, due *domain.DueDate) (*domain.Loan, error) {
	s.gotID, s.gotDue = id, due
	return s.loan, s.err
}

func (s *stubLoanService) ExtendLoan(_ context.Context, _ ports.Actor, id domain.LoanID, days int) (*domain.Loan, error) {
	s.gotID, s.gotDays = id, days
	return s.loan, s.err
}

func (s *stubLoanService) ListLoans(context.Context, ports.Actor) ([]*domain.Loan, error) {
	return s.loans, s.err
}

func (s *stubLoanService) ListUserLoans(_ context.Context, _ ports.Actor, user domain.UserRef) ([]*domain.Loan, error) {
	s.gotUser = user
	return s.loans, s.err
}

func (s *stubLoanService) SweepOverdue(context.Context, ports.Actor) (int, error) {
	return len(s.loans), s.err
}

func testActor(role string) ports.Actor {
	return ports.Actor{UserID: uuid.New(), Username: "tester", Role: role}
}

func sampleLoan(t *testing.T, owner uuid.UUID) *domain.Loan {
	t.Helper()
	book, _ := domain.NewBookRef(uuid.New())
	user, _ := domain.NewUserRef(owner)
	loan, err := domain.NewLoan(book, user)
	if err != nil {
		t.Fatalf("new loan: %v", err)
	}
	loan.Borrow(domain.DueDateOf(2025, 1, 8))
	return loan
}

func loanContext(e *echo.Echo, req *http.Request, actor ports.Actor, loanID string) (echo.Context, *httptest.ResponseRecorder) {
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set(ActorKey, actor)
	if loanID != "" {
		c.SetParamNames("loan_id")
		c.SetParamValues(loanID)
	}
	return c, rec
}

func TestLoanHandler_Create_Success(t *testing.T) {
	e := newEcho()
	actor := testActor(domain.RoleBorrower)
	loan := sampleLoan(t, actor.UserID)
	svc := &stubLoanService{loan: loan, created: true}
	h := NewLoanHandler(svc)

	bookID := uuid.New().String()
	req := jsonRequest(http.MethodPost, "/v1/loans", `{"bookId":"`+bookID+`"}`)
	req.Header.Set(IdempotencyHeader, "req-42")
	c, rec := loanContext(e, req, actor, "")

	if err := h.Create(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	if svc.gotInput.BookRef.String() != bookID || svc.gotInput.IdempotencyKey != "req-42" {
		t.Fatalf("unexpected service input: %+v", svc.gotInput)
	}

	var resp loanResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.LoanID != loan.ID().String() || resp.Status != "borrowed" {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if resp.DueDate == nil || *resp.DueDate != "2025-01-08" {
		t.Fatalf("unexpected due date: %v", resp.DueDate)
	}
	if resp.Links.Self != "/v1/loans/"+loan.ID().String() {
		t.Fatalf("unexpected self link: %s", resp.Links.Self)
	}
}

func TestLoanHandler_Create_Replay(t *testing.T) {
	e := newEcho()
	actor := testActor(domain.RoleBorrower)
	h := NewLoanHandler(&stubLoanService{loan: sampleLoan(t, actor.UserID), created: false})

	c, rec := loanContext(e, jsonRequest(http.MethodPost, "/v1/loans", `{"bookId":"`+uuid.NewString()+`"}`), actor, "")

	if err := h.Create(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 on replay, got %d", rec.Code)
	}
}

func TestLoanHandler_Create_InvalidBody(t *testing.T) {
	e := newEcho()
	actor := testActor(domain.RoleBorrower)
	h := NewLoanHandler(&stubLoanService{})

	cases := map[string]string{
		"missing book": `{}`,
		"bad uuid":     `{"bookId":"not-a-uuid"}`,
	}
	for name, body := range cases {
		c, _ := loanContext(e, jsonRequest(http.MethodPost, "/v1/loans", body), actor, "")
		if err := h.Create(c); !errors.Is(err, domain.ErrValidation) {
			t.Errorf("%s: expected ErrValidation, got %v", name, err)
		}
	}

	c, _ := loanContext(e, jsonRequest(http.MethodPost, "/v1/loans", `{"bookId":`), actor, "")
	var he *echo.HTTPError
	if err := h.Create(c); !errors.As(err, &he) || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for malformed json, got %v", err)
	}
}

func TestLoanHandler_Create_ForeignUserID(t *testing.T) {
	e := newEcho()
	actor := testActor(domain.RoleBorrower)
	h := NewLoanHandler(&stubLoanService{})

	body := `{"bookId":"` + uuid.NewString() + `","userId":"` + uuid.NewString() + `"}`
	c, _ := loanContext(e, jsonRequest(http.MethodPost, "/v1/loans", body), actor, "")

	if err := h.Create(c); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestLoanHandler_Get(t *testing.T) {
	e := newEcho()
	actor := testActor(domain.RoleAdmin)
	loan := sampleLoan(t, uuid.New())
	svc := &stubLoanService{loan: loan}
	h := NewLoanHandler(svc)

	c, rec := loanContext(e, httptest.NewRequest(http.MethodGet, "/", nil), actor, loan.ID().String())
	if err := h.Get(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK || svc.gotID != loan.ID() {
		t.Fatalf("code=%d id=%s", rec.Code, svc.gotID)
	}
}

func TestLoanHandler_Get_BadID(t *testing.T) {
	e := newEcho()
	h := NewLoanHandler(&stubLoanService{})

	c, _ := loanContext(e, httptest.NewRequest(http.MethodGet, "/", nil), testActor(domain.RoleAdmin), "123")
	if err := h.Get(c); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestLoanHandler_Get_ServiceErrorPassesThrough(t *testing.T) {
	e := newEcho()
	h := NewLoanHandler(&stubLoanService{err: domain.ErrLoanNotFound})

	c, _ := loanContext(e, httptest.NewRequest(http.MethodGet, "/", nil), testActor(domain.RoleAdmin), domain.NewLoanID().String())
	if err := h.Get(c); !errors.Is(err, domain.ErrLoanNotFound) {
		t.Fatalf("expected ErrLoanNotFound, got %v", err)
	}
}

func TestLoanHandler_Verify(t *testing.T) {
	e := newEcho()
	loan := sampleLoan(t, uuid.New())
	svc := &stubLoanService{loan: loan}
	h := NewLoanHandler(svc)

	c, rec := loanContext(e, httptest.NewRequest(http.MethodPost, "/", nil), testActor(domain.RoleAdmin), loan.ID().String())
	if err := h.Verify(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK || svc.gotID != loan.ID() {
		t.Fatalf("code=%d id=%s", rec.Code, svc.gotID)
	}
}

func TestLoanHandler_Borrow(t *testing.T) {
	e := newEcho()
	loan := sampleLoan(t, uuid.New())
	svc := &stubLoanService{loan: loan}
	h := NewLoanHandler(svc)

	c, _ := loanContext(e, jsonRequest(http.MethodPost, "/", `{"dueDate":"2025-03-01"}`), testActor(domain.RoleAdmin), loan.ID().String())
	if err := h.Borrow(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if svc.gotDue == nil || svc.gotDue.String() != "2025-03-01" {
		t.Fatalf("unexpected due date: %v", svc.gotDue)
	}

	svc.gotDue = nil
	c, _ = loanContext(e, httptest.NewRequest(http.MethodPost, "/", nil), testActor(domain.RoleAdmin), loan.ID().String())
	if err := h.Borrow(c); err != nil {
		t.Fatalf("handler error without body: %v", err)
	}
	if svc.gotDue != nil {
		t.Fatalf("expected policy due date (nil), got %v", svc.gotDue)
	}

	c, _ = loanContext(e, jsonRequest(http.MethodPost, "/", `{"dueDate":"03/01/2025"}`), testActor(domain.RoleAdmin), loan.ID().String())
	if err := h.Borrow(c); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestLoanHandler_Extend(t *testing.T) {
	e := newEcho()
	actor := testActor(domain.RoleBorrower)
	loan := sampleLoan(t, actor.UserID)
	svc := &stubLoanService{loan: loan}
	h := NewLoanHandler(svc)

	c, _ := loanContext(e, jsonRequest(http.MethodPost, "/", `{"extraDays":5}`), actor, loan.ID().String())
	if err := h.Extend(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if svc.gotDays != 5 {
		t.Fatalf("expected 5 days, got %d", svc.gotDays)
	}

	for _, body := range []string{`{}`, `{"extraDays":-2}`} {
		c, _ = loanContext(e, jsonRequest(http.MethodPost, "/", body), actor, loan.ID().String())
		if err := h.Extend(c); !errors.Is(err, domain.ErrValidation) {
			t.Errorf("%s: expected ErrValidation, got %v", body, err)
		}
	}
}

func TestLoanHandler_List(t *testing.T) {
	e := newEcho()
	loans := []*domain.Loan{sampleLoan(t, uuid.New()), sampleLoan(t, uuid.New())}
	h := NewLoanHandler(&stubLoanService{loans: loans})

	c, rec := loanContext(e, httptest.NewRequest(http.MethodGet, "/v1/loans", nil), testActor(domain.RoleAdmin), "")
	if err := h.List(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	var resp []loanResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if len(resp) != 2 {
		t.Fatalf("expected 2 loans, got %d", len(resp))
	}
}

func TestLoanHandler_List_EmptyIsArray(t *testing.T) {
	e := newEcho()
	h := NewLoanHandler(&stubLoanService{})

	c, rec := loanContext(e, httptest.NewRequest(http.MethodGet, "/v1/loans", nil), testActor(domain.RoleBorrower), "")
	if err := h.List(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if body := rec.Body.String(); body != "[]\n" {
		t.Fatalf("expected empty array, got %q", body)
	}
}

func TestLoanHandler_ListByUser(t *testing.T) {
	e := newEcho()
	svc := &stubLoanService{}
	h := NewLoanHandler(svc)
	userID := uuid.New()

	c, _ := loanContext(e, httptest.NewRequest(http.MethodGet, "/", nil), testActor(domain.RoleAdmin), "")
	c.SetParamNames("user_id")
	c.SetParamValues(userID.String())
	if err := h.ListByUser(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if svc.gotUser.UUID() != userID {
		t.Fatalf("unexpected user ref %s", svc.gotUser)
	}
}

func TestLoanHandler_SweepOverdue(t *testing.T) {
	e := newEcho()
	h := NewLoanHandler(&stubLoanService{loans: []*domain.Loan{sampleLoan(t, uuid.New())}})

	c, rec := loanContext(e, httptest.NewRequest(http.MethodPost, "/", nil), testActor(domain.RoleAdmin), "")
	if err := h.SweepOverdue(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Body.String() != "{\"marked\":1}\n" {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
}

func TestLoanHandler_MissingActor(t *testing.T) {
	e := newEcho()
	h := NewLoanHandler(&stubLoanService{})

	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/v1/loans", nil), httptest.NewRecorder())
	var he *echo.HTTPError
	if err := h.List(c); !errors.As(err, &he) || he.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %v", err)
	}
}

func TestToLoanResponse_NoDueDate(t *testing.T) {
	book, _ := domain.NewBookRef(uuid.New())
	user, _ := domain.NewUserRef(uuid.New())
	loan, _ := domain.NewLoan(book, user)

	resp := toLoanResponse(loan)
	if resp.DueDate != nil {
		t.Fatalf("expected nil due date")
	}
	if resp.Status != "requested" || resp.CreatedAt.Location() != time.UTC {
		t.Fatalf("unexpected response %+v", resp)
	}
}
