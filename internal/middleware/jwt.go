package middleware

import (
	"context"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/event-reservation-api/internal/service"
)

// Authenticator resolves a raw bearer token into an Identity.
// *service.AuthService implements it.
type Authenticator interface {
	Authenticate(ctx context.Context, raw string) (service.Identity, error)
}

// JWTAuth returns an Echo middleware that requires a valid Bearer
// token, resolves it through auth and stores the resulting Identity on
// the context.  Failures are returned as errors so the application's
// error handler writes the 401 envelope.
func JWTAuth(auth Authenticator) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			h := c.Request().Header.Get(echo.HeaderAuthorization)
			if len(h) < 7 || !strings.EqualFold(h[:7], "Bearer ") {
				return service.Unauthorized("Unauthenticated.")
			}
			raw := strings.TrimSpace(h[7:])
			if raw == "" {
				return service.Unauthorized("Unauthenticated.")
			}

			ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
			defer cancel()
			id, err := auth.Authenticate(ctx, raw)
			if err != nil {
				return err
			}
			SetIdentity(c, id)
			return next(c)
		}
	}
}
