package httpserver

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/Skotchmaster/phone_shop/internal/db"
	"github.com/Skotchmaster/phone_shop/internal/logging"
)

type HealthHTTP struct {
	DB *gorm.DB
}

func (h *HealthHTTP) Live(c echo.Context) error {
	return c.NoContent(http.StatusOK)
}

func (h *HealthHTTP) Ready(c echo.Context) error {
	if err := db.Ping(c.Request().Context(), h.DB); err != nil {
		logging.FromContext(c.Request().Context()).Error("readiness_error", "status", http.StatusServiceUnavailable, "error", err)
		return echo.NewHTTPError(http.StatusServiceUnavailable, "Database unavailable")
	}
	return c.NoContent(http.StatusOK)
}

func (h *HealthHTTP) Status(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
