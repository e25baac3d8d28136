package metrics

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMeteredRouter(t *testing.T, longLived ...string) (*gin.Engine, *Provider) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	provider, err := NewProvider("hub_test")
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, provider.Shutdown(context.Background()))
	})

	router := gin.New()
	router.Use(HTTPMetricsMiddleware(provider.MeterProvider(), "hub_test", longLived...))
	router.GET("/api/incidents/:id", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"id": c.Param("id")})
	})
	router.POST("/api/incidents", func(c *gin.Context) {
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
	})
	router.GET("/api/realtime", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return router, provider
}

func serve(router http.Handler, method, path string) int {
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(method, path, nil))
	return w.Code
}

func TestHTTPMetricsMiddleware(t *testing.T) {
	router, provider := newMeteredRouter(t)

	assert.Equal(t, http.StatusOK, serve(router, http.MethodGet, "/api/incidents/1"))
	assert.Equal(t, http.StatusOK, serve(router, http.MethodGet, "/api/incidents/2"))
	assert.Equal(t, http.StatusForbidden, serve(router, http.MethodPost, "/api/incidents"))
	assert.Equal(t, http.StatusNotFound, serve(router, http.MethodGet, "/nope"))

	output := scrape(t, provider)

	assertMetricLine(t, output, `hub_test_http_requests_total`,
		`method="GET".*path="/api/incidents/:id".*status_code="200"`, `2`)
	assertMetricLine(t, output, `hub_test_http_requests_total`,
		`method="POST".*path="/api/incidents".*status_code="403"`, `1`)
	assertMetricLine(t, output, `hub_test_http_requests_total`,
		`path="unknown".*status_code="404"`, `1`)
	assertMetricLine(t, output, `hub_test_http_request_duration_seconds_count`,
		`method="GET".*path="/api/incidents/:id"`, `2`)
}

func TestHTTPMetricsMiddleware_LongLivedRoutes(t *testing.T) {
	router, provider := newMeteredRouter(t, "/api/realtime")

	assert.Equal(t, http.StatusOK, serve(router, http.MethodGet, "/api/realtime"))

	output := scrape(t, provider)

	assertMetricLine(t, output, `hub_test_http_requests_total`, `path="/api/realtime"`, `1`)
	assert.NotRegexp(t, `hub_test_http_request_duration_seconds_count\{[^}]*path="/api/realtime"`, output)
}

func TestSanitizePath(t *testing.T) {
	assert.Equal(t, "/api/incidents/:id/comments/:commentId", sanitizePath("/api/incidents/:id/comments/:commentId"))
	assert.Equal(t, "unknown", sanitizePath(""))
}
