package server

import (
	"net/http"
	"sync"
	"time"
)

// corsMiddleware answers preflight requests and lets browsers read the
// status endpoints from another origin.
func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := "*"
		if len(s.cfg.AllowedOrigins) == 1 {
			origin = s.cfg.AllowedOrigins[0]
		} else if o := r.Header.Get("Origin"); o != "" && s.originAllowed(o) {
			origin = o
			w.Header().Add("Vary", "Origin")
		}
		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Accept, Content-Type")
		w.Header().Set("Access-Control-Allow-Credentials", "false")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) originAllowed(origin string) bool {
	for _, o := range s.cfg.AllowedOrigins {
		if o == "*" || o == origin {
			return true
		}
	}
	return false
}

// RateLimiter throttles inbound frames per session with a sliding window.
type RateLimiter struct {
	maxMessages int
	window      time.Duration
	seen        map[string][]time.Time // session id -> arrival times inside the window
	mu          sync.Mutex
}

func NewRateLimiter(maxMessages int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		maxMessages: maxMessages,
		window:      window,
		seen:        make(map[string][]time.Time),
	}
}

// Allow records one frame from sessionID and reports whether it is within
// the limit. A non-positive limit disables throttling.
func (r *RateLimiter) Allow(sessionID string) bool {
	if r.maxMessages <= 0 || r.window <= 0 {
		return true
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	recent := prune(r.seen[sessionID], now.Add(-r.window))
	if len(recent) >= r.maxMessages {
		r.seen[sessionID] = recent
		return false
	}
	r.seen[sessionID] = append(recent, now)
	return true
}

// Cleanup forgets sessions with no frame inside the window.
func (r *RateLimiter) Cleanup() {
	r.mu.Lock()
	defer r.mu.Unlock()

	cutoff := time.Now().Add(-r.window)
	for id, ts := range r.seen {
		if len(prune(ts, cutoff)) == 0 {
			delete(r.seen, id)
		}
	}
}

func (r *RateLimiter) RemoveConnection(sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.seen, sessionID)
}

// prune drops timestamps at or before cutoff. Timestamps are in arrival
// order, so the survivors are a suffix.
func prune(ts []time.Time, cutoff time.Time) []time.Time {
	i := 0
	for i < len(ts) && !ts[i].After(cutoff) {
		i++
	}
	return ts[i:]
}

// ConnectionHealth records when each session was last heard from: any
// inbound frame or a successful ping.
type ConnectionHealth struct {
	lastActivity map[string]time.Time
	mu           sync.RWMutex
}

func NewConnectionHealth() *ConnectionHealth {
	return &ConnectionHealth{
		lastActivity: make(map[string]time.Time),
	}
}

func (h *ConnectionHealth) UpdateActivity(sessionID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.lastActivity[sessionID] = time.Now()
}

// IsInactive reports whether sessionID has been silent for longer than
// timeout. Untracked sessions are never inactive.
func (h *ConnectionHealth) IsInactive(sessionID string, timeout time.Duration) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()

	last, ok := h.lastActivity[sessionID]
	if !ok {
		return false
	}
	return time.Since(last) > timeout
}

// GetInactiveConnections lists every session silent for longer than timeout.
func (h *ConnectionHealth) GetInactiveConnections(timeout time.Duration) []string {
	h.mu.RLock()
	defer h.mu.RUnlock()

	now := time.Now()
	var inactive []string
	for id, last := range h.lastActivity {
		if now.Sub(last) > timeout {
			inactive = append(inactive, id)
		}
	}
	return inactive
}

func (h *ConnectionHealth) RemoveConnection(sessionID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.lastActivity, sessionID)
}
