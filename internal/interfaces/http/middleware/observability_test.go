package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/tips/internal/infrastructure/monitoring"
)

func TestObservabilityMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	metrics := monitoring.NewMetrics("tips", prometheus.NewRegistry())

	router := gin.New()
	router.Use(ObservabilityMiddleware(metrics))
	router.GET("/items/:id", func(c *gin.Context) {
		assert.Equal(t, 1.0, testutil.ToFloat64(metrics.HTTPActiveRequests.WithLabelValues("/items/:id", http.MethodGet)))
		c.Status(http.StatusOK)
	})

	for _, id := range []string{"1", "2"} {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/items/"+id, nil))
		assert.Equal(t, http.StatusOK, w.Code)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/missing", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)

	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.HTTPRequests.WithLabelValues("/items/:id", http.MethodGet, "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.HTTPRequests.WithLabelValues("not_found", http.MethodGet, "404")))
	assert.Equal(t, 0.0, testutil.ToFloat64(metrics.HTTPActiveRequests.WithLabelValues("/items/:id", http.MethodGet)))
}

func newETagRouter(body *string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(ETagCache(time.Minute))
	router.GET("/artifacts", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"model_version": *body})
	})
	router.GET("/broken", func(c *gin.Context) {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "artifact_load_error"})
	})
	router.POST("/artifacts", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"reloaded": true})
	})
	return router
}

func TestETagCache_ConditionalGet(t *testing.T) {
	version := "gbm-2024.06.1"
	router := newETagRouter(&version)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/artifacts", nil))
	require.Equal(t, http.StatusOK, w.Code)
	etag := w.Header().Get("ETag")
	require.NotEmpty(t, etag)
	assert.Contains(t, w.Body.String(), version)
	assert.Equal(t, "public, max-age=60, must-revalidate", w.Header().Get("Cache-Control"))

	req := httptest.NewRequest(http.MethodGet, "/artifacts", nil)
	req.Header.Set("If-None-Match", etag)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotModified, w.Code)
	assert.Empty(t, w.Body.String())
	assert.Equal(t, etag, w.Header().Get("ETag"))

	req = httptest.NewRequest(http.MethodGet, "/artifacts", nil)
	req.Header.Set("If-None-Match", `"other", W/`+etag)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotModified, w.Code)

	// a reload changes the body and therefore the tag
	version = "gbm-2024.07.1"
	req = httptest.NewRequest(http.MethodGet, "/artifacts", nil)
	req.Header.Set("If-None-Match", etag)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEqual(t, etag, w.Header().Get("ETag"))
	assert.Contains(t, w.Body.String(), version)
}

func TestETagCache_SkipsErrorsAndWrites(t *testing.T) {
	version := "x"
	router := newETagRouter(&version)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/broken", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Empty(t, w.Header().Get("ETag"))
	assert.Contains(t, w.Body.String(), "artifact_load_error")

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/artifacts", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("ETag"))
}

func TestETagMatches(t *testing.T) {
	assert.False(t, etagMatches("", `"a"`))
	assert.True(t, etagMatches("*", `"a"`))
	assert.True(t, etagMatches(`"b", "a"`, `"a"`))
	assert.True(t, etagMatches(`W/"a"`, `"a"`))
	assert.False(t, etagMatches(`"b"`, `"a"`))
}
