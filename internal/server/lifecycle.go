package server

import (
	"github.com/rs/zerolog/log"

	"taberna-server/internal/metrics"
	"taberna-server/internal/tavern"
)

// connect registers c as a new session and tells everyone about it. The
// newcomer gets its id first, then one userJoined per existing session.
func (s *Server) connect(c *Client) *tavern.Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing := s.world.Sessions.All()

	sess := tavern.NewSession(c.ID, s.now())
	s.connections.AddClient(c)
	s.world.Sessions.Add(sess)
	s.health.UpdateActivity(c.ID)

	metrics.TotalConnections.Inc()
	metrics.ActiveConnections.Set(float64(s.connections.Count()))

	s.sendTo(sess.ID, InitMessage{
		Envelope: Envelope{Type: TypeInit},
		UserID:   sess.ID,
	})
	s.broadcast(sess.ID, newUserJoined(sess, ""))
	for _, other := range existing {
		seat, _ := s.world.Seats.SeatOf(other.ID)
		s.sendTo(sess.ID, newUserJoined(other, seat))
	}

	log.Info().Str("session_id", sess.ID).Int("players", s.world.Sessions.Len()).Msg("Player connected")
	return sess
}

// disconnect tears a session down. Peers learn about it through userLeft;
// a held seat is released silently, a running duel is forfeited towards the
// opponent, and minigames the session drove are reset. Calling it twice is
// harmless.
func (s *Server) disconnect(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if c := s.connections.RemoveClient(sessionID); c != nil {
		c.Close()
		metrics.ActiveConnections.Set(float64(s.connections.Count()))
	}
	s.rateLimiter.RemoveConnection(sessionID)
	s.health.RemoveConnection(sessionID)

	sess := s.world.Sessions.Remove(sessionID)
	if sess == nil {
		return
	}

	s.broadcast(sessionID, UserLeftNotification{
		Envelope: Envelope{Type: TypeUserLeft},
		UserID:   sessionID,
	})

	if _, ok := s.world.Seats.Stand(sessionID); ok {
		metrics.SeatsOccupied.Set(float64(s.world.Seats.Len()))
	}

	if d, ok := s.world.Duels.Forfeit(sessionID); ok {
		opponent := d.Opponent(sessionID)
		metrics.ActiveDuels.Set(float64(s.world.Duels.Len()))
		metrics.DuelsResolved.WithLabelValues("forfeit").Inc()
		s.sendTo(opponent, newDuelChoice(sessionID, tavern.Timeout))
		log.Info().Str("session_id", sessionID).Str("opponent_id", opponent).Msg("Duel forfeited on disconnect")
	}

	if s.world.Arcade.Leave(sessionID) {
		s.broadcastAll(newArcadeUpdate(tavern.ArcadeReset))
	}
	if s.world.Soccer.Leave(sessionID) {
		s.broadcastAll(newSoccerGame(sessionID, false))
	}

	if sess.Initialized {
		s.postChat(tavern.FarewellEntry(sess.DisplayName(), s.now()))
	}

	log.Info().Str("session_id", sessionID).Str("username", sess.Name).Int("players", s.world.Sessions.Len()).Msg("Player disconnected")
}
