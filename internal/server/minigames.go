package server

import (
	"time"

	"github.com/rs/zerolog/log"

	"taberna-server/internal/tavern"
)

// handleArcadeState relays an arcade action as an arcadeUpdate and then the
// original frame verbatim. Both go to everyone, the sender included.
func (s *Server) handleArcadeState(sess *tavern.Session, m *ArcadeStateRequest) {
	update := newArcadeUpdate(m.GameState)
	update.CurrentPlayerID = m.CurrentPlayerID

	switch m.GameState {
	case tavern.ArcadeStartGame:
		owner := orDefault(m.PlayerID, sess.ID)
		s.world.Arcade.Start(owner)
		update.PlayerID = owner
		update.Data = m.Data

	case tavern.ArcadePlayerJoined:
		joiner := orDefault(m.PlayerID, sess.ID)
		token := s.world.Arcade.Join(joiner, m.CurrentPlayerID)
		t := time.AfterFunc(s.arcadeJoinDelay, func() { s.startTwoPlayer(token) })
		s.world.Arcade.Arm(token, t.Stop)
		update.PlayerID = joiner
		update.Data = m.Data

	case tavern.ArcadeGameState:
		if len(m.State) > 0 {
			s.world.Arcade.RecordState(m.State)
		} else {
			s.world.Arcade.RecordState(m.Data)
		}
		update.PlayerID = m.PlayerID
		update.Data = m.Data
		update.State = m.State

	case tavern.ArcadeReset:
		s.world.Arcade.Reset()

	default:
		log.Debug().Str("session_id", sess.ID).Str("action", m.GameState).Msg("Unknown arcade action, relaying raw frame only")
		s.broadcastRaw("", m.Raw, TypeArcadeState)
		return
	}

	s.broadcastAll(update)
	s.broadcastRaw("", m.Raw, TypeArcadeState)
}

// startTwoPlayer fires after the join delay unless the pending start was
// cancelled in the meantime.
func (s *Server) startTwoPlayer(token uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	owner, joiner, ok := s.world.Arcade.Fire(token)
	if !ok {
		return
	}
	update := newArcadeUpdate(tavern.ArcadeStartTwoPlayer)
	update.Player1ID = owner
	update.Player2ID = joiner
	s.broadcastAll(update)

	log.Info().Str("player1_id", owner).Str("player2_id", joiner).Msg("Arcade two-player game started")
}

func (s *Server) handleSoccerBall(sess *tavern.Session, m *SoccerBallRequest) {
	s.world.Soccer.Update(m.Position, m.Velocity)
	s.broadcast(sess.ID, newSoccerBall(*s.world.Soccer.Ball))
}

// resendMinigames brings a late joiner up to date with the arcade and the
// soccer game.
func (s *Server) resendMinigames(sessionID string) {
	if len(s.world.Arcade.LastState) > 0 {
		update := newArcadeUpdate(tavern.ArcadeGameState)
		update.CurrentPlayerID = s.world.Arcade.OwnerID
		update.State = s.world.Arcade.LastState
		s.sendTo(sessionID, update)
	}

	soccer := s.world.Soccer
	if !soccer.Active {
		return
	}
	s.sendTo(sessionID, newSoccerGame(soccer.InitiatorID, true))
	if soccer.Ball != nil {
		s.sendTo(sessionID, newSoccerBall(*soccer.Ball))
	}
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
