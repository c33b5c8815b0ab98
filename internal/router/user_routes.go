package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/event-reservation-api/internal/handler"
	"github.com/iliyamo/event-reservation-api/internal/middleware"
)

// RegisterUser registers the reservation endpoints of the authenticated
// user.  Any role may use them.
func RegisterUser(e *echo.Echo, h *handler.ReservationHandler, authn middleware.Authenticator) {
	g := e.Group("/user/events", middleware.JWTAuth(authn))
	g.GET("/reservations", h.List)
	g.POST("/:eventId/reserve", h.Reserve)
	g.DELETE("/:eventId/cancel", h.Cancel)
	g.GET("/:eventId/check", h.Check)
}
