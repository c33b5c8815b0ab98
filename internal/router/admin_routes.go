package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/event-reservation-api/internal/handler"
	"github.com/iliyamo/event-reservation-api/internal/middleware"
)

// RegisterAdmin registers city and event administration.  The routes
// only require a valid token; the admin role is checked by the services
// so the result is a typed Forbidden error.
func RegisterAdmin(e *echo.Echo, cities *handler.CityHandler, events *handler.EventHandler, authn middleware.Authenticator) {
	jwt := middleware.JWTAuth(authn)

	// ---- Cities ----
	c := e.Group("/cities", jwt)
	c.GET("", cities.List)
	c.POST("", cities.Create)
	c.GET("/:id", cities.Get)
	c.PUT("/:id", cities.Update)
	c.DELETE("/:id", cities.Delete)

	// ---- Events ----
	ev := e.Group("/events", jwt)
	ev.GET("", events.List)
	ev.POST("", events.Create)
	ev.GET("/:id", events.Get)
	ev.PUT("/:id", events.Update)
	ev.DELETE("/:id", events.Delete)
	ev.PATCH("/:id/toggle-status", events.ToggleStatus)
}
