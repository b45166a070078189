package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MeKo-Tech/frameocr/internal/testutil"
)

func TestCORSMiddleware(t *testing.T) {
	cfg := DefaultConfig()
	cfg.CORSOrigin = "https://app.example"
	server := newTestServer(t, cfg)

	called := false
	handler := server.corsMiddleware(func(w http.ResponseWriter, _ *http.Request) {
		called = true
		w.WriteHeader(http.StatusTeapot)
	})

	t.Run("preflight", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler(w, httptest.NewRequest(http.MethodOptions, "/ocr/frame", nil))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.False(t, called)
		assert.Equal(t, "https://app.example", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "86400", w.Header().Get("Access-Control-Max-Age"))
	})

	t.Run("passes through", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler(w, httptest.NewRequest(http.MethodGet, "/health", nil))
		assert.True(t, called)
		assert.Equal(t, http.StatusTeapot, w.Code)
		assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), "POST")
	})
}

func TestRateLimitMiddleware(t *testing.T) {
	cfg := DefaultConfig()
	cfg.RateLimit = RateLimitConfig{Enabled: true, RequestsPerMinute: 1}
	server := newTestServer(t, cfg)
	handler := server.Handler()

	first := httptest.NewRecorder()
	handler.ServeHTTP(first, frameRequest(t, "/ocr/frame", testutil.TextFrame("HELLO"), nil))
	require.Equal(t, http.StatusOK, first.Code)

	second := httptest.NewRecorder()
	handler.ServeHTTP(second, frameRequest(t, "/ocr/frame", testutil.TextFrame("HELLO"), nil))
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.Equal(t, "minute", second.Header().Get("X-RateLimit-Type"))
	assert.Equal(t, "1", second.Header().Get("X-RateLimit-Limit"))
	assert.NotEmpty(t, second.Header().Get("Retry-After"))

	other := frameRequest(t, "/ocr/frame", testutil.TextFrame("HELLO"), nil)
	other.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")
	third := httptest.NewRecorder()
	handler.ServeHTTP(third, other)
	assert.Equal(t, http.StatusOK, third.Code, "limits are per client")
}

func TestGetClientIP(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		remote  string
		want    string
	}{
		{name: "forwarded list", headers: map[string]string{"X-Forwarded-For": "1.2.3.4, 5.6.7.8"}, remote: "9.9.9.9:1", want: "1.2.3.4"},
		{name: "real ip", headers: map[string]string{"X-Real-IP": " 4.3.2.1 "}, remote: "9.9.9.9:1", want: "4.3.2.1"},
		{name: "remote addr", remote: "9.9.9.9:1234", want: "9.9.9.9"},
		{name: "remote without port", remote: "9.9.9.9", want: "9.9.9.9"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, getClientIP(req))
		})
	}
}
