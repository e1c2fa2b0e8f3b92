package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/bookwise/lending-api/internal/api/handler"
	"github.com/bookwise/lending-api/internal/core/domain"
	"github.com/bookwise/lending-api/internal/core/ports"
)

// Auth resolves the bearer token into a ports.Actor and stores it under
// handler.ActorKey.
func Auth(resolver ports.IdentityResolver) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || parts[1] == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization header")
			}

			actor, err := resolver.Resolve(c.Request().Context(), parts[1])
			switch {
			case errors.Is(err, domain.ErrUserDisabled):
				return echo.NewHTTPError(http.StatusUnauthorized, "user disabled")
			case errors.Is(err, domain.ErrInvalidToken):
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			case err != nil:
				return err
			}

			c.Set(handler.ActorKey, actor)
			return next(c)
		}
	}
}
