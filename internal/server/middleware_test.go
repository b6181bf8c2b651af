package server

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"taberna-server/internal/config"
)

func TestRateLimiter_Allow(t *testing.T) {
	limiter := NewRateLimiter(10, time.Second)

	for i := 0; i < 10; i++ {
		assert.True(t, limiter.Allow("conn-1"), "frame %d should be allowed", i+1)
	}
	assert.False(t, limiter.Allow("conn-1"), "11th frame should be dropped")
}

func TestRateLimiter_WindowSlides(t *testing.T) {
	limiter := NewRateLimiter(2, 100*time.Millisecond)

	assert.True(t, limiter.Allow("conn-2"))
	assert.True(t, limiter.Allow("conn-2"))
	assert.False(t, limiter.Allow("conn-2"))

	time.Sleep(150 * time.Millisecond)

	assert.True(t, limiter.Allow("conn-2"))
}

func TestRateLimiter_PerConnection(t *testing.T) {
	limiter := NewRateLimiter(5, time.Second)

	for i := 0; i < 5; i++ {
		limiter.Allow("conn-1")
	}
	assert.False(t, limiter.Allow("conn-1"))

	for i := 0; i < 5; i++ {
		assert.True(t, limiter.Allow("conn-2"))
	}
}

func TestRateLimiter_Disabled(t *testing.T) {
	limiter := NewRateLimiter(0, time.Second)

	for i := 0; i < 1000; i++ {
		assert.True(t, limiter.Allow("conn-1"))
	}
}

func TestRateLimiter_Cleanup(t *testing.T) {
	limiter := NewRateLimiter(10, 50*time.Millisecond)
	limiter.Allow("old")

	time.Sleep(80 * time.Millisecond)
	limiter.Allow("fresh")
	limiter.Cleanup()

	limiter.mu.Lock()
	defer limiter.mu.Unlock()
	assert.NotContains(t, limiter.seen, "old")
	assert.Contains(t, limiter.seen, "fresh")
}

func TestRateLimiter_RemoveConnection(t *testing.T) {
	limiter := NewRateLimiter(1, time.Minute)
	limiter.Allow("conn-1")
	assert.False(t, limiter.Allow("conn-1"))

	limiter.RemoveConnection("conn-1")

	assert.True(t, limiter.Allow("conn-1"))
}

func TestConnectionHealth_IsInactive(t *testing.T) {
	health := NewConnectionHealth()

	assert.False(t, health.IsInactive("untracked", time.Millisecond))

	health.UpdateActivity("conn-1")
	assert.False(t, health.IsInactive("conn-1", time.Second))

	time.Sleep(20 * time.Millisecond)
	assert.True(t, health.IsInactive("conn-1", 10*time.Millisecond))

	health.UpdateActivity("conn-1")
	assert.False(t, health.IsInactive("conn-1", 10*time.Millisecond))
}

func TestConnectionHealth_GetInactiveConnections(t *testing.T) {
	health := NewConnectionHealth()
	health.UpdateActivity("idle")
	time.Sleep(30 * time.Millisecond)
	health.UpdateActivity("busy")

	inactive := health.GetInactiveConnections(20 * time.Millisecond)

	assert.Equal(t, []string{"idle"}, inactive)
}

func TestConnectionHealth_RemoveConnection(t *testing.T) {
	health := NewConnectionHealth()
	health.UpdateActivity("conn-1")
	health.RemoveConnection("conn-1")

	assert.Empty(t, health.GetInactiveConnections(0))
}

func TestCORS_Origins(t *testing.T) {
	tests := []struct {
		name    string
		allowed []string
		origin  string
		want    string
	}{
		{"wildcard", []string{"*"}, "https://a.example", "*"},
		{"single origin", []string{"https://a.example"}, "https://b.example", "https://a.example"},
		{"listed origin echoed", []string{"https://a.example", "https://b.example"}, "https://b.example", "https://b.example"},
		{"unlisted origin", []string{"https://a.example", "https://b.example"}, "https://evil.example", "*"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			cfg.AllowedOrigins = tt.allowed
			s := New(cfg)

			handler := s.corsMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Header.Set("Origin", tt.origin)
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.want, rec.Header().Get("Access-Control-Allow-Origin"))
		})
	}
}
