package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/bookwise/lending-api/internal/core/ports"
)

// ActorKey is the echo context key under which the Auth middleware stores
// the resolved ports.Actor.
const ActorKey = "actor"

// ctxActor extracts the actor injected by the Auth middleware. Its absence
// means the route was mounted without authentication.
func ctxActor(c echo.Context) (ports.Actor, error) {
	actor, ok := c.Get(ActorKey).(ports.Actor)
	if !ok || actor.Role == "" {
		return ports.Actor{}, echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}
	return actor, nil
}
