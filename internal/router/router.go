package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/event-reservation-api/internal/handler"
	"github.com/iliyamo/event-reservation-api/internal/middleware"
)

// RegisterRoutes registers the unauthenticated infrastructure routes.
func RegisterRoutes(e *echo.Echo, h *handler.HealthHandler) {
	e.GET("/healthz", h.Check)
}

// RegisterAuth registers registration and login (rate limited per IP)
// and the token-protected logout and profile routes.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, authn middleware.Authenticator, limit echo.MiddlewareFunc) {
	e.POST("/register", a.Register, limit)
	e.POST("/login", a.Login, limit)

	jwt := middleware.JWTAuth(authn)
	e.POST("/logout", a.Logout, jwt)
	e.GET("/me", a.Me, jwt)
}

// RegisterPublic registers the anonymous event queries.  mws typically
// holds the public rate limiter and the response cache.
func RegisterPublic(e *echo.Echo, p *handler.PublicHandler, mws ...echo.MiddlewareFunc) {
	g := e.Group("/public/events", mws...)
	g.GET("", p.List)
	g.GET("/upcoming", p.Upcoming)
	g.GET("/city/:cityId", p.ByCity)
	g.GET("/:id", p.Get)
}
