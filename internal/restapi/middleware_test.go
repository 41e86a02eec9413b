package restapi

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"starnav.teamgannon.org/internal/logging"
	"starnav.teamgannon.org/internal/metrics"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	_, _ = w.Write([]byte("ok"))
})

func TestRateLimitMiddleware(t *testing.T) {
	middleware := NewRateLimitMiddleware(2, time.Minute)
	defer middleware.Stop()
	handler := middleware.Handler()(okHandler)

	serve := func(key string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/stars?key="+key, nil))
		return rec
	}

	assert.Equal(t, http.StatusOK, serve("navigator").Code)
	assert.Equal(t, http.StatusOK, serve("navigator").Code)

	limited := serve("navigator")
	assert.Equal(t, http.StatusTooManyRequests, limited.Code)
	assert.Equal(t, "1", limited.Header().Get("Retry-After"))
	assert.Contains(t, limited.Body.String(), "rate limit exceeded")

	// Each key has its own bucket.
	assert.Equal(t, http.StatusOK, serve("cartographer").Code)
}

func TestRateLimitMiddlewareDisabled(t *testing.T) {
	middleware := NewRateLimitMiddleware(0, time.Second)
	defer middleware.Stop()
	handler := middleware.Handler()(okHandler)

	for i := 0; i < 100; i++ {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/?key=TEST", nil))
		require.Equal(t, http.StatusOK, rec.Code)
	}
}

func TestCompressionMiddleware(t *testing.T) {
	large := strings.Repeat("sol alpha barnard wolf vega ", 200)
	handler := CompressionMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(large))
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/stars", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, "gzip", rec.Header().Get("Content-Encoding"))
	assert.Less(t, rec.Body.Len(), len(large))

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/stars", nil))
	assert.Empty(t, rec.Header().Get("Content-Encoding"))
	assert.Equal(t, large, rec.Body.String())
}

func TestCacheControlMiddleware(t *testing.T) {
	rec := httptest.NewRecorder()
	CacheControlMiddleware(5*time.Minute, okHandler).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, "public, max-age=300", rec.Header().Get("Cache-Control"))

	rec = httptest.NewRecorder()
	CacheControlMiddleware(0, okHandler).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, "no-cache, no-store, must-revalidate", rec.Header().Get("Cache-Control"))
}

func TestSecurityHeaders(t *testing.T) {
	api := createTestApi(t)
	defer api.Shutdown()
	handler := api.WithSecurityHeaders(okHandler)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/stars", nil))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
	assert.Contains(t, rec.Header().Get("Content-Security-Policy"), "default-src 'none'")
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Contains(t, rec.Header().Get("Content-Security-Policy"), "default-src 'self'")

	t.Run("preflight", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/api/routes", nil)
		req.Header.Set("Origin", "https://map.example.org")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
		assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), "DELETE")
		assert.Empty(t, rec.Body.String())
	})
}

func TestRequestLoggingMiddleware(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.NewStructuredLogger(&buf, slog.LevelInfo)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /probe/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	handler := RequestIDMiddleware(NewRequestLoggingMiddleware(logger)(mux))

	counter := metrics.RequestsTotal.WithLabelValues("GET /probe/{id}", "418")
	before := testutil.ToFloat64(counter)

	req := httptest.NewRequest(http.MethodGet, "/probe/7", nil)
	req.Header.Set("X-Request-ID", "probe-request")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, before+1, testutil.ToFloat64(counter))
	out := buf.String()
	assert.Contains(t, out, `"msg":"http_request"`)
	assert.Contains(t, out, `"pattern":"GET /probe/{id}"`)
	assert.Contains(t, out, `"status":418`)
	assert.Contains(t, out, `"request_id":"probe-request"`)

	buf.Reset()
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/elsewhere", nil))
	assert.Contains(t, buf.String(), `"pattern":"unmatched"`)
	assert.Contains(t, buf.String(), `"status":404`)
}

func TestStarIDValidation(t *testing.T) {
	api := createTestApi(t)
	defer api.Shutdown()
	handler := api.ValidateStarIDMiddleware(okHandler)

	tests := []struct {
		name   string
		id     string
		status int
	}{
		{"plain id", "sol", http.StatusOK},
		{"blank", " ", http.StatusBadRequest},
		{"too long", strings.Repeat("a", 101), http.StatusBadRequest},
		{"control character", "sol\x07", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/stars/x", nil)
			req.SetPathValue("id", tt.id)
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			assert.Equal(t, tt.status, rec.Code)
		})
	}
}
