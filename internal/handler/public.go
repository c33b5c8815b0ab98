package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/event-reservation-api/internal/service"
)

// PublicHandler serves the anonymous, read-only event endpoints.
type PublicHandler struct {
	Public *service.PublicService
}

func NewPublicHandler(public *service.PublicService) *PublicHandler {
	return &PublicHandler{Public: public}
}

func (h *PublicHandler) List(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	events, err := h.Public.List(ctx)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Active events retrieved successfully", toEvents(events))
}

func (h *PublicHandler) Get(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	e, err := h.Public.Get(ctx, c.Param("id"))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Event retrieved successfully", toEvent(e))
}

func (h *PublicHandler) ByCity(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	city, events, err := h.Public.ByCity(ctx, c.Param("cityId"))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "City events retrieved successfully", echo.Map{
		"city":   toCity(city),
		"events": toEvents(events),
	})
}

func (h *PublicHandler) Upcoming(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	events, err := h.Public.Upcoming(ctx)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Upcoming events retrieved successfully", toEvents(events))
}
