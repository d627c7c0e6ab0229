package httpserver

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/phone_shop/internal/logging"
	"github.com/Skotchmaster/phone_shop/internal/service"
	"github.com/Skotchmaster/phone_shop/internal/transport"
)

const msgInternal = "Internal server error"

func statusOf(err error) int {
	switch {
	case errors.Is(err, service.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, service.ErrUnauthorized), errors.Is(err, service.ErrInvalidToken):
		return http.StatusUnauthorized
	case errors.Is(err, service.ErrForbidden):
		return http.StatusForbidden
	}
	return http.StatusInternalServerError
}

// fail logs a failed operation under event and turns err into the HTTP error
// the client sees. Errors without a client message become a bare 500.
func fail(l *slog.Logger, event string, err error) error {
	code := statusOf(err)
	msg, ok := service.ClientMessage(err)
	if !ok || code == http.StatusInternalServerError {
		l.Error(event, "status", http.StatusInternalServerError, "reason", "internal error", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, msgInternal).SetInternal(err)
	}
	l.Warn(event, "status", code, "reason", msg, "error", err)
	return echo.NewHTTPError(code, msg).SetInternal(err)
}

// HTTPErrorHandler renders every error as {"success": false, "error": ...}.
func HTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	msg := msgInternal
	var details []transport.FieldError

	var ve *ValidationError
	var he *echo.HTTPError
	switch {
	case errors.As(err, &ve):
		code, msg, details = http.StatusBadRequest, ve.Error(), ve.Fields
	case errors.As(err, &he):
		code = he.Code
		switch m := he.Message.(type) {
		case string:
			msg = m
		default:
			msg = http.StatusText(code)
		}
		if he == echo.ErrNotFound {
			msg = "Route not found"
		}
	default:
		if m, ok := service.ClientMessage(err); ok && statusOf(err) != http.StatusInternalServerError {
			code, msg = statusOf(err), m
		} else {
			logging.FromContext(c.Request().Context()).Error("unhandled_error", "error", err)
		}
	}

	var werr error
	if c.Request().Method == http.MethodHead {
		werr = c.NoContent(code)
	} else {
		werr = transport.Fail(c, code, msg, details)
	}
	if werr != nil {
		logging.FromContext(c.Request().Context()).Error("error_response_failed", "error", werr)
	}
}
