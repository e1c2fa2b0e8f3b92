package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/bookwise/lending-api/internal/api/handler"
	"github.com/bookwise/lending-api/internal/core/ports"
)

// RBAC enforces role-based access control on the actor set by Auth.
func RBAC(allowedRoles ...string) echo.MiddlewareFunc {
	allowed := make(map[string]struct{}, len(allowedRoles))
	for _, r := range allowedRoles {
		allowed[r] = struct{}{}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			actor, _ := c.Get(handler.ActorKey).(ports.Actor)
			if _, ok := allowed[actor.Role]; !ok {
				return c.JSON(http.StatusForbidden, map[string]string{"error": "forbidden"})
			}
			return next(c)
		}
	}
}
