package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/event-reservation-api/internal/middleware"
	"github.com/iliyamo/event-reservation-api/internal/service"
)

// EventHandler exposes event administration.
type EventHandler struct {
	Events *service.EventService
}

func NewEventHandler(events *service.EventService) *EventHandler {
	return &EventHandler{Events: events}
}

func (h *EventHandler) List(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	events, err := h.Events.List(ctx, middleware.IdentityFrom(c))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "", toEvents(events))
}

func (h *EventHandler) Create(c echo.Context) error {
	var req service.EventInput
	if err := bind(c, &req); err != nil {
		return err
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	e, err := h.Events.Create(ctx, middleware.IdentityFrom(c), req)
	if err != nil {
		return err
	}
	return respond(c, http.StatusCreated, "Event created successfully", toEvent(e))
}

func (h *EventHandler) Get(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	e, err := h.Events.Get(ctx, middleware.IdentityFrom(c), c.Param("id"))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "", toEvent(e))
}

// Update applies a partial update; only the keys present in the body change.
func (h *EventHandler) Update(c echo.Context) error {
	var req service.EventInput
	if err := bind(c, &req); err != nil {
		return err
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	e, err := h.Events.Update(ctx, middleware.IdentityFrom(c), c.Param("id"), req)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Event updated successfully", toEvent(e))
}

func (h *EventHandler) Delete(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Events.Delete(ctx, middleware.IdentityFrom(c), c.Param("id")); err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Event deleted successfully", nil)
}

func (h *EventHandler) ToggleStatus(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	e, err := h.Events.ToggleStatus(ctx, middleware.IdentityFrom(c), c.Param("id"))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Event status changed successfully", toEvent(e))
}
