package server

import (
	"github.com/rs/zerolog/log"

	"taberna-server/internal/tavern"
)

// The handlers below run with s.mu held.

func (s *Server) announceProfile(sess *tavern.Session) {
	seat, _ := s.world.Seats.SeatOf(sess.ID)
	s.broadcast(sess.ID, newUserJoined(sess, seat))
}

func (s *Server) handleSetUsername(sess *tavern.Session, m *SetUsernameRequest) {
	sess.SetProfile(m.Username, m.SelectedModel)
	s.announceProfile(sess)
	log.Debug().Str("session_id", sess.ID).Str("username", sess.Name).Str("model", sess.Model).Msg("Profile updated")
}

// handleInitCompleted runs once per session: the client has loaded the scene
// and can take the chat history, the welcome line and minigame state.
func (s *Server) handleInitCompleted(sess *tavern.Session, m *InitCompletedRequest) {
	sess.SetProfile(m.Username, m.SelectedModel)
	s.announceProfile(sess)

	if sess.Initialized {
		log.Debug().Str("session_id", sess.ID).Msg("Repeated initCompleted")
		return
	}
	sess.Initialized = true

	for _, e := range s.world.Chat.Entries() {
		s.sendTo(sess.ID, newChat(e))
	}
	s.postChat(tavern.WelcomeEntry(sess.DisplayName(), s.now()))
	s.resendMinigames(sess.ID)

	log.Info().Str("session_id", sess.ID).Str("username", sess.Name).Msg("Player entered the tavern")
}

func (s *Server) handleMove(sess *tavern.Session, m *MoveRequest) {
	sess.Pose = tavern.Pose{Position: m.Position, Rotation: m.Rotation}
	s.broadcast(sess.ID, UserMovedNotification{
		Envelope: Envelope{Type: TypeUserMoved},
		UserID:   sess.ID,
		Position: m.Position,
		Rotation: m.Rotation,
	})
}
