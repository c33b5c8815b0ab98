package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/event-reservation-api/internal/middleware"
	"github.com/iliyamo/event-reservation-api/internal/service"
)

// CityHandler exposes city administration.
type CityHandler struct {
	Cities *service.CityService
}

func NewCityHandler(cities *service.CityService) *CityHandler {
	return &CityHandler{Cities: cities}
}

func (h *CityHandler) List(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	cities, err := h.Cities.List(ctx, middleware.IdentityFrom(c))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "", toCities(cities))
}

func (h *CityHandler) Create(c echo.Context) error {
	var req service.CityInput
	if err := bind(c, &req); err != nil {
		return err
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	city, err := h.Cities.Create(ctx, middleware.IdentityFrom(c), req)
	if err != nil {
		return err
	}
	return respond(c, http.StatusCreated, "City created successfully", toCity(city))
}

func (h *CityHandler) Get(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	city, err := h.Cities.Get(ctx, middleware.IdentityFrom(c), c.Param("id"))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "", toCity(city))
}

func (h *CityHandler) Update(c echo.Context) error {
	var req service.CityInput
	if err := bind(c, &req); err != nil {
		return err
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	city, err := h.Cities.Update(ctx, middleware.IdentityFrom(c), c.Param("id"), req)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "City updated successfully", toCity(city))
}

func (h *CityHandler) Delete(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Cities.Delete(ctx, middleware.IdentityFrom(c), c.Param("id")); err != nil {
		return err
	}
	return respond(c, http.StatusOK, "City deleted successfully", nil)
}
