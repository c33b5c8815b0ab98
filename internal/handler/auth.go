package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/event-reservation-api/internal/middleware"
	"github.com/iliyamo/event-reservation-api/internal/service"
)

// AuthHandler serves registration, login, logout and the current user.
type AuthHandler struct {
	Auth *service.AuthService
}

func NewAuthHandler(auth *service.AuthService) *AuthHandler {
	return &AuthHandler{Auth: auth}
}

// Register: create a user and return a token immediately.
func (h *AuthHandler) Register(c echo.Context) error {
	var req service.RegisterInput
	if err := bind(c, &req); err != nil {
		return err
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	res, err := h.Auth.Register(ctx, req)
	if err != nil {
		return err
	}
	return respond(c, http.StatusCreated, "Registration successful", toAuth(res))
}

// Login: verify credentials and issue a fresh token.
func (h *AuthHandler) Login(c echo.Context) error {
	var req service.LoginInput
	if err := bind(c, &req); err != nil {
		return err
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	res, err := h.Auth.Login(ctx, req)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Login successful", toAuth(res))
}

// Logout revokes the token that authenticated this request.
func (h *AuthHandler) Logout(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Auth.Logout(ctx, middleware.IdentityFrom(c)); err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Logged out successfully", nil)
}

func (h *AuthHandler) Me(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	u, err := h.Auth.Me(ctx, middleware.IdentityFrom(c))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "", echo.Map{"user": toUser(u)})
}
