package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMiddleware_LabelsByRoute(t *testing.T) {
	t.Parallel()

	m := New()
	e := echo.New()
	e.Use(m.Middleware())
	e.GET("/api/products/:slug", func(c echo.Context) error {
		if c.Param("slug") == "missing" {
			return echo.NewHTTPError(http.StatusNotFound, "Product not found")
		}
		return c.NoContent(http.StatusOK)
	})

	for _, path := range []string{"/api/products/pixel-9", "/api/products/galaxy", "/api/products/missing"} {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	}

	assert.Equal(t, 2.0, testutil.ToFloat64(m.httpRequests.WithLabelValues("GET", "/api/products/:slug", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.httpRequests.WithLabelValues("GET", "/api/products/:slug", "404")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.httpInFlight))
}

func TestDomainCounters(t *testing.T) {
	t.Parallel()

	m := New()
	m.OrderCreated()
	m.OrderCreated()
	m.TokenRotation("success")
	m.TokenRotation("rejected")
	m.TokenRotation("rejected")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.ordersCreated))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.tokenRotations.WithLabelValues("rejected")))

	var nilMetrics *Metrics
	assert.NotPanics(t, func() {
		nilMetrics.OrderCreated()
		nilMetrics.TokenRotation("success")
	})
}

func TestHandler_Exposition(t *testing.T) {
	t.Parallel()

	m := New()
	m.OrderCreated()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "phone_shop_orders_created_total 1"))
}
