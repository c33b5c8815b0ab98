package middleware

// identity.go stores and retrieves the authenticated caller on the echo
// context.  JWTAuth sets it; handlers read it and pass it to services.

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/event-reservation-api/internal/service"
)

const identityKey = "identity"

// SetIdentity attaches id to the request context.
func SetIdentity(c echo.Context, id service.Identity) {
	c.Set(identityKey, id)
}

// IdentityFrom returns the caller attached by JWTAuth, or the anonymous
// identity when the route is public.
func IdentityFrom(c echo.Context) service.Identity {
	if id, ok := c.Get(identityKey).(service.Identity); ok {
		return id
	}
	return service.Identity{}
}

// userID returns the caller's id for rate-limit keys, "anon" when
// unauthenticated.
func userID(c echo.Context) string {
	if id := IdentityFrom(c); id.Authenticated() {
		return id.UserID
	}
	return "anon"
}
