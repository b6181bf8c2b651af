package server

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/rs/zerolog/log"

	"taberna-server/internal/config"
	"taberna-server/internal/metrics"
	"taberna-server/internal/tavern"
)

type Server struct {
	cfg config.Config

	// mu guards world. Every inbound message and every timer callback holds
	// it for the whole of its handling, and never across a wait.
	mu    sync.Mutex
	world *tavern.World

	connections *ConnectionManager
	rateLimiter *RateLimiter
	health      *ConnectionHealth

	arcadeJoinDelay time.Duration
	duelTimeout     time.Duration
	now             func() time.Time

	startedAt time.Time
	stop      chan struct{}
	stopOnce  sync.Once
}

// New builds a server without starting background tasks.
func New(cfg config.Config) *Server {
	return &Server{
		cfg:             cfg,
		world:           tavern.NewWorld(),
		connections:     NewConnectionManager(),
		rateLimiter:     NewRateLimiter(cfg.RateLimitMessages, cfg.RateLimitWindow),
		health:          NewConnectionHealth(),
		arcadeJoinDelay: tavern.TwoPlayerDelay,
		duelTimeout:     cfg.DuelChoiceTimeout,
		now:             time.Now,
		startedAt:       time.Now(),
		stop:            make(chan struct{}),
	}
}

// NewServer builds the server, starts its background tasks and returns the
// HTTP server that serves it.
func NewServer(cfg config.Config) (*Server, *http.Server) {
	s := New(cfg)

	go s.cleanupTask()

	httpServer := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           s.RegisterRoutes(),
		IdleTimeout:       time.Minute,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return s, httpServer
}

// cleanupTask closes idle connections and trims rate limiter state.
func (s *Server) cleanupTask() {
	interval := s.cfg.IdleTimeout / 2
	if interval < time.Second {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			s.rateLimiter.Cleanup()
			if s.cfg.IdleTimeout <= 0 {
				continue
			}
			for _, id := range s.health.GetInactiveConnections(s.cfg.IdleTimeout) {
				c := s.connections.GetClient(id)
				if c == nil {
					s.health.RemoveConnection(id)
					continue
				}
				log.Info().Str("session_id", id).Dur("idle_timeout", s.cfg.IdleTimeout).Msg("Closing idle connection")
				go c.CloseSocket(websocket.StatusPolicyViolation, "Inactivity timeout")
			}
		}
	}
}

// Shutdown stops background work, cancels pending timers and closes every
// connection with a going-away status.
func (s *Server) Shutdown(ctx context.Context) error {
	s.stopOnce.Do(func() { close(s.stop) })

	s.mu.Lock()
	for _, d := range s.world.Duels.All() {
		s.world.Duels.Forfeit(d.Challenger)
	}
	s.world.Arcade.Reset()
	metrics.ActiveDuels.Set(0)
	clients := s.connections.Clients()
	s.mu.Unlock()

	log.Info().Int("connections", len(clients)).Msg("Closing connections")

	var wg sync.WaitGroup
	for _, c := range clients {
		wg.Add(1)
		go func(c *Client) {
			defer wg.Done()
			c.CloseSocket(websocket.StatusGoingAway, "Server shutting down")
		}(c)
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
