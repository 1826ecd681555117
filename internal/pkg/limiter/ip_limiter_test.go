package limiter

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/time/rate"
)

func TestGetLimiterEnforcesBurst(t *testing.T) {
	l := NewIPRateLimiter(rate.Limit(0.001), 3)

	for i := 0; i < 3; i++ {
		assert.True(t, l.GetLimiter("10.0.0.1").Allow(), "request %d within burst", i)
	}
	assert.False(t, l.GetLimiter("10.0.0.1").Allow(), "burst exhausted")

	// Limits are per IP.
	assert.True(t, l.GetLimiter("10.0.0.2").Allow())
}

func TestMiddleware(t *testing.T) {
	l := NewIPRateLimiter(rate.Limit(0.001), 1)

	handler := l.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.1:1234"

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		want       string
	}{
		{name: "host and port", remoteAddr: "203.0.113.42:54321", want: "203.0.113.42"},
		{name: "bare host", remoteAddr: "203.0.113.42", want: "203.0.113.42"},
		{name: "ipv6 with port", remoteAddr: "[::1]:8080", want: "::1"},
		{name: "empty", remoteAddr: "", want: "unknown_ip"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &http.Request{RemoteAddr: tt.remoteAddr}
			assert.Equal(t, tt.want, ClientIP(r))
		})
	}
}
