package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/event-reservation-api/internal/middleware"
	"github.com/iliyamo/event-reservation-api/internal/service"
)

// ReservationHandler serves the authenticated user's reservations.
type ReservationHandler struct {
	Reservations *service.ReservationService
}

func NewReservationHandler(reservations *service.ReservationService) *ReservationHandler {
	return &ReservationHandler{Reservations: reservations}
}

func (h *ReservationHandler) List(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	list, err := h.Reservations.List(ctx, middleware.IdentityFrom(c))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Reservations retrieved successfully", toReservedEvents(list))
}

func (h *ReservationHandler) Reserve(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	e, err := h.Reservations.Reserve(ctx, middleware.IdentityFrom(c), c.Param("eventId"))
	if err != nil {
		return err
	}
	return respond(c, http.StatusCreated, "Reservation completed successfully", toEvent(e))
}

func (h *ReservationHandler) Cancel(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Reservations.Cancel(ctx, middleware.IdentityFrom(c), c.Param("eventId")); err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Reservation cancelled successfully", nil)
}

// Check reports whether the caller is registered; an unknown event
// yields false rather than 404.
func (h *ReservationHandler) Check(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	ok, err := h.Reservations.IsRegistered(ctx, middleware.IdentityFrom(c), c.Param("eventId"))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Reservation status checked", echo.Map{"is_registered": ok})
}
