package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/event-reservation-api/internal/service"
)

// requestTimeout bounds the store and storage work of one request.
const requestTimeout = 10 * time.Second

// envelope is the body of every JSON response.  Clients branch on
// Success; Errors carries per-field validation messages and Error a
// diagnostic for internal failures.
type envelope struct {
	Success bool                `json:"success"`
	Message string              `json:"message,omitempty"`
	Data    any                 `json:"data,omitempty"`
	Errors  service.FieldErrors `json:"errors,omitempty"`
	Error   string              `json:"error,omitempty"`
}

func respond(c echo.Context, status int, msg string, data any) error {
	return c.JSON(status, envelope{Success: true, Message: msg, Data: data})
}

func reqCtx(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), requestTimeout)
}

// bind decodes the request body into dst.  Malformed JSON or a value of
// the wrong type becomes a validation failure.
func bind(c echo.Context, dst any) error {
	err := c.Bind(dst)
	if err == nil {
		return nil
	}
	var ute *json.UnmarshalTypeError
	if errors.As(err, &ute) && ute.Field != "" {
		f := ute.Field
		return service.Validation("The given data was invalid.", service.FieldErrors{
			f: {"The " + strings.ReplaceAll(f, "_", " ") + " field has an invalid type."},
		})
	}
	return service.Validation("The request body is invalid.", nil)
}

// StatusOf maps an error kind to its HTTP status.
func StatusOf(k service.Kind) int {
	switch k {
	case service.KindValidation:
		return http.StatusUnprocessableEntity
	case service.KindNotFound:
		return http.StatusNotFound
	case service.KindUnauthorized:
		return http.StatusUnauthorized
	case service.KindForbidden:
		return http.StatusForbidden
	case service.KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// NewErrorHandler returns an echo.HTTPErrorHandler that writes every
// error, including framework errors such as unknown routes, as an
// envelope.  Internal failures are logged.
func NewErrorHandler(log *zap.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		status, body := render(err)
		if status >= http.StatusInternalServerError {
			log.Error("request failed",
				zap.String("method", c.Request().Method),
				zap.String("path", c.Path()),
				zap.String("request_id", c.Response().Header().Get(echo.HeaderXRequestID)),
				zap.Error(err))
		}
		if c.Request().Method == http.MethodHead {
			err = c.NoContent(status)
		} else {
			err = c.JSON(status, body)
		}
		if err != nil {
			log.Warn("write error response", zap.Error(err))
		}
	}
}

func render(err error) (int, envelope) {
	var se *service.Error
	if errors.As(err, &se) {
		body := envelope{Message: se.Message, Errors: se.Fields}
		if se.Kind == service.KindInternal && se.Err != nil {
			body.Error = se.Err.Error()
		}
		return StatusOf(se.Kind), body
	}
	var he *echo.HTTPError
	if errors.As(err, &he) {
		msg := http.StatusText(he.Code)
		if m, ok := he.Message.(string); ok && m != "" {
			msg = m
		}
		return he.Code, envelope{Message: msg}
	}
	return http.StatusInternalServerError, envelope{Message: "Internal server error", Error: err.Error()}
}
