package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// ZapLogger logs one line per request with the level chosen by status:
// 5xx error, 4xx warn (404 info), slow or mutating requests info, fast
// reads debug.  Health checks are skipped.
func ZapLogger(log *zap.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			if shouldSkipLog(req.URL.Path) {
				return next(c)
			}
			start := time.Now()
			err := next(c)
			if err != nil {
				// let the error handler write the response so the status is final
				c.Error(err)
			}
			latency := time.Since(start)
			res := c.Response()

			fields := []zap.Field{
				zap.String("method", req.Method),
				zap.String("path", req.URL.Path),
				zap.Int("status", res.Status),
				zap.Duration("latency", latency),
				zap.String("ip", c.RealIP()),
				zap.Int64("bytes_out", res.Size),
			}
			if id := res.Header().Get(echo.HeaderXRequestID); id != "" {
				fields = append(fields, zap.String("request_id", id))
			}
			if ua := req.UserAgent(); ua != "" && len(ua) < 200 {
				fields = append(fields, zap.String("user_agent", ua))
			}
			if err != nil {
				fields = append(fields, zap.Error(err))
			}
			logByStatus(log, fields, res.Status, latency, req.Method)
			return nil
		}
	}
}

func shouldSkipLog(path string) bool {
	return strings.HasPrefix(path, "/healthz") || path == "/favicon.ico"
}

func logByStatus(log *zap.Logger, fields []zap.Field, status int, latency time.Duration, method string) {
	switch {
	case status >= http.StatusInternalServerError:
		log.Error("server_error", fields...)
	case status == http.StatusNotFound:
		log.Info("not_found", fields...)
	case status >= http.StatusBadRequest:
		log.Warn("client_error", fields...)
	case latency > time.Second:
		log.Info("slow_request", append(fields, zap.Bool("slow", true))...)
	case method == http.MethodGet || method == http.MethodHead:
		log.Debug("request", fields...)
	default:
		log.Info("request", fields...)
	}
}
