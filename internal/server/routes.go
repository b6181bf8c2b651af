package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"taberna-server/internal/metrics"
)

func (s *Server) RegisterRoutes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(s.corsMiddleware)

	r.Get("/", s.statusHandler)
	r.Get("/health", s.healthHandler)
	r.Handle("/metrics", promhttp.Handler())

	r.Get("/websocket", s.websocketHandler)
	r.Get("/ws", s.websocketHandler)

	return r
}

func (s *Server) statusHandler(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	players := s.world.Sessions.Len()
	s.mu.Unlock()

	writeJSON(w, map[string]any{
		"service": "taberna",
		"players": players,
	})
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	resp := map[string]any{
		"status":      "ok",
		"connections": s.connections.Count(),
		"sessions":    s.world.Sessions.Len(),
		"duels":       s.world.Duels.Len(),
		"seats":       s.world.Seats.Len(),
		"uptime":      time.Since(s.startedAt).Round(time.Second).String(),
	}
	s.mu.Unlock()

	writeJSON(w, resp)
}

func writeJSON(w http.ResponseWriter, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		http.Error(w, "Failed to marshal response", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if _, err := w.Write(data); err != nil {
		log.Warn().Err(err).Msg("Failed to write response")
	}
}

func (s *Server) websocketHandler(w http.ResponseWriter, r *http.Request) {
	socket, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: s.cfg.AllowedOrigins,
	})
	if err != nil {
		// Accept has already written the HTTP error.
		log.Warn().Err(err).Str("remote", r.RemoteAddr).Msg("WebSocket upgrade failed")
		return
	}
	socket.SetReadLimit(s.cfg.MaxMessageBytes)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	client := NewClient(uuid.NewString(), socket, s.cfg.SendQueueSize)
	go client.writePump(ctx, s.cfg.WriteTimeout)

	s.connect(client)
	defer func() {
		s.disconnect(client.ID)
		socket.Close(websocket.StatusNormalClosure, "")
	}()

	if s.cfg.PingInterval > 0 {
		go s.keepAlive(ctx, client)
	}

	for {
		msgType, data, err := socket.Read(ctx)
		if err != nil {
			switch websocket.CloseStatus(err) {
			case websocket.StatusNormalClosure, websocket.StatusGoingAway:
				log.Info().Str("session_id", client.ID).Msg("Connection closed")
			default:
				log.Warn().Err(err).Str("session_id", client.ID).Msg("Connection read error")
			}
			return
		}

		s.health.UpdateActivity(client.ID)

		if !s.rateLimiter.Allow(client.ID) {
			metrics.RateLimited.Inc()
			log.Debug().Str("session_id", client.ID).Msg("Rate limited, dropping frame")
			continue
		}

		if msgType != websocket.MessageText {
			metrics.MessagesReceived.WithLabelValues("invalid").Inc()
			log.Warn().Str("session_id", client.ID).Msg("Non-text frame ignored")
			continue
		}

		s.handleFrame(client.ID, data)
	}
}

// keepAlive pings the client until ctx ends. A successful ping counts as
// activity for the idle reaper.
func (s *Server) keepAlive(ctx context.Context, c *Client) {
	ticker := time.NewTicker(s.cfg.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			pctx, cancel := context.WithTimeout(ctx, s.cfg.WriteTimeout)
			err := c.conn.Ping(pctx)
			cancel()
			if err != nil {
				log.Debug().Err(err).Str("session_id", c.ID).Msg("Ping failed")
				continue
			}
			s.health.UpdateActivity(c.ID)
		}
	}
}

// handleFrame parses one text frame and dispatches it. Bad frames are
// logged and dropped without a reply.
func (s *Server) handleFrame(sessionID string, data []byte) {
	typ, msg, err := ParseInbound(data)
	if err != nil {
		metrics.MessagesReceived.WithLabelValues("invalid").Inc()
		log.Warn().Err(err).Str("session_id", sessionID).Str("type", typ).Msg("Invalid message")
		return
	}
	metrics.MessagesReceived.WithLabelValues(typ).Inc()
	log.Trace().Str("session_id", sessionID).Str("type", typ).Msg("Message received")

	s.dispatch(sessionID, msg)
}

// dispatch runs the handler for msg with the world locked.
func (s *Server) dispatch(sessionID string, msg Inbound) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.world.Sessions.Get(sessionID)
	if err != nil {
		log.Debug().Err(err).Str("session_id", sessionID).Msg("Message from departed session")
		return
	}

	switch m := msg.(type) {
	case *SetUsernameRequest:
		s.handleSetUsername(sess, m)
	case *InitCompletedRequest:
		s.handleInitCompleted(sess, m)
	case *MoveRequest:
		s.handleMove(sess, m)
	case *SitRequest:
		s.handleSit(sess, m)
	case *StandRequest:
		s.handleStand(sess)
	case *ChatRequest:
		s.handleChat(sess, m)
	case *DuelChallengeRequest:
		s.handleDuelRequest(sess, m)
	case *DuelAcceptRequest:
		s.handleDuelAccept(sess, m)
	case *DuelRejectRequest:
		s.handleDuelReject(sess, m)
	case *DuelChoiceRequest:
		s.handleDuelChoice(sess, m)
	case *ArcadeStateRequest:
		s.handleArcadeState(sess, m)
	case *SoccerBallRequest:
		s.handleSoccerBall(sess, m)
	default:
		log.Error().Str("session_id", sessionID).Msgf("No handler for %T", msg)
	}
}
