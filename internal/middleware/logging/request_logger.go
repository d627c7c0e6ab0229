package loggingmw

import (
	"log/slog"
	"slices"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/phone_shop/internal/logging"
	"github.com/Skotchmaster/phone_shop/internal/middleware/auth"
)

// QuietRoutes are polled by orchestrators and scrapers. Their successful
// requests are not logged.
var QuietRoutes = []string{"/health/live", "/health/ready", "/metrics"}

type Config struct {
	Logger *slog.Logger
	// Quiet lists route paths whose 2xx/3xx completions are dropped.
	Quiet []string
}

func RequestLogger(base *slog.Logger) echo.MiddlewareFunc {
	return RequestLoggerWithConfig(Config{Logger: base, Quiet: QuietRoutes})
}

// RequestLoggerWithConfig puts a request-scoped logger into the request
// context and logs one http_request line per completed request. Handler errors
// are rendered here so the logged status is the one the client received.
func RequestLoggerWithConfig(cfg Config) echo.MiddlewareFunc {
	base := cfg.Logger
	if base == nil {
		base = slog.Default()
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			rid := req.Header.Get(echo.HeaderXRequestID)
			if rid == "" {
				rid = c.Response().Header().Get(echo.HeaderXRequestID)
			}

			l := base.With(
				"method", req.Method,
				"route", c.Path(),
				"url", req.URL.Path,
				"remote_ip", c.RealIP(),
				"user_agent", req.UserAgent(),
			)
			if rid != "" {
				l = l.With("request_id", rid)
				c.Response().Header().Set(echo.HeaderXRequestID, rid)
			}
			c.SetRequest(req.WithContext(logging.IntoContext(req.Context(), l)))

			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}

			status := c.Response().Status
			if status < 400 && slices.Contains(cfg.Quiet, c.Path()) {
				return nil
			}

			attrs := []any{
				"status", status,
				"latency_ms", time.Since(start).Milliseconds(),
				"bytes_in", req.ContentLength,
				"bytes_out", c.Response().Size,
			}
			if id, ok := auth.Identity(c); ok {
				attrs = append(attrs, "user_id", id.UserID, "role", id.Role)
			}
			if err != nil {
				attrs = append(attrs, "error", err.Error())
			}

			switch {
			case status >= 500:
				l.Error("http_request", attrs...)
			case status >= 400:
				l.Warn("http_request", attrs...)
			default:
				l.Info("http_request", attrs...)
			}
			return nil
		}
	}
}
