package metrics_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"hostcompare/internal/app/metrics"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsRegistryAndHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	reg := metrics.InitRegistry()

	r := gin.New()
	r.Use(metrics.Middleware())
	r.GET("/metrics", metrics.Handler(reg))
	r.GET("/api/hostings/:id", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/hostings/42", nil))
	require.Equal(t, http.StatusNoContent, rr.Code)

	metrics.ObserveCache("redis", "hit")
	metrics.ObserveMail("review_approved", nil)
	metrics.ObserveHTTP("/test", "GET", 200, 12*time.Millisecond)

	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rr.Code)

	body, _ := io.ReadAll(rr.Body)
	out := string(body)
	assert.Contains(t, out, `hostcompare_http_requests_total{method="GET",route="/api/hostings/:id",status="204"}`)
	assert.Contains(t, out, `hostcompare_cache_events_total{cache="redis",event="hit"}`)
	assert.Contains(t, out, `hostcompare_mails_sent_total{kind="review_approved",status="ok"}`)
}
