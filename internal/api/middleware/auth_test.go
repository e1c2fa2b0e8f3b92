package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/bookwise/lending-api/internal/api/handler"
	"github.com/bookwise/lending-api/internal/core/domain"
	"github.com/bookwise/lending-api/internal/core/ports"
)

type stubResolver struct {
	actor ports.Actor
	err   error
	got   string
}

func (s *stubResolver) Resolve(_ context.Context, token string) (ports.Actor, error) {
	s.got = token
	return s.actor, s.err
}

func runAuth(t *testing.T, resolver ports.IdentityResolver, header string) (*httptest.ResponseRecorder, bool) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	called := false
	h := Auth(resolver)(func(c echo.Context) error {
		called = true
		return c.NoContent(http.StatusOK)
	})
	if err := h(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	return rec, called
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	want := ports.Actor{UserID: uuid.New(), Username: "alice", Role: domain.RoleBorrower}
	resolver := &stubResolver{actor: want}

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer abc.def.ghi")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	called := false
	h := Auth(resolver)(func(c echo.Context) error {
		called = true
		got, ok := c.Get(handler.ActorKey).(ports.Actor)
		if !ok || got != want {
			t.Fatalf("actor not set: %+v", c.Get(handler.ActorKey))
		}
		return c.NoContent(http.StatusOK)
	})

	if err := h(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !called {
		t.Fatalf("next not called")
	}
	if resolver.got != "abc.def.ghi" {
		t.Fatalf("resolver got %q", resolver.got)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestAuthMiddleware_LowercaseScheme(t *testing.T) {
	rec, called := runAuth(t, &stubResolver{actor: ports.Actor{Role: domain.RoleAdmin}}, "bearer tok")
	if !called || rec.Code != http.StatusOK {
		t.Fatalf("expected pass-through, got %d", rec.Code)
	}
}

func TestAuthMiddleware_MissingHeader(t *testing.T) {
	rec, called := runAuth(t, &stubResolver{}, "")
	if called {
		t.Fatalf("should not reach next")
	}
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestAuthMiddleware_InvalidHeaderFormat(t *testing.T) {
	for _, header := range []string{"Token abc", "Bearer", "Bearer "} {
		rec, called := runAuth(t, &stubResolver{}, header)
		if called {
			t.Fatalf("%q: should not reach next", header)
		}
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("%q: expected 401, got %d", header, rec.Code)
		}
	}
}

func TestAuthMiddleware_RejectedToken(t *testing.T) {
	for _, err := range []error{domain.ErrInvalidToken, domain.ErrUserDisabled} {
		rec, called := runAuth(t, &stubResolver{err: err}, "Bearer tok")
		if called {
			t.Fatalf("%v: should not reach next", err)
		}
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("%v: expected 401, got %d", err, rec.Code)
		}
	}
}

func TestAuthMiddleware_ResolverFailurePassesThrough(t *testing.T) {
	boom := errors.New("store down")
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer tok")
	c := e.NewContext(req, httptest.NewRecorder())

	h := Auth(&stubResolver{err: boom})(func(echo.Context) error {
		t.Fatalf("should not reach next")
		return nil
	})
	if err := h(c); !errors.Is(err, boom) {
		t.Fatalf("expected resolver error, got %v", err)
	}
}
