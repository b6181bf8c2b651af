package server

import (
	"github.com/rs/zerolog/log"

	"taberna-server/internal/metrics"
	"taberna-server/internal/tavern"
)

// postChat appends e to the history and shows it to everyone.
func (s *Server) postChat(e tavern.Entry) {
	s.world.Chat.Append(e)
	metrics.ChatMessages.WithLabelValues(e.Kind.String()).Inc()
	s.broadcastAll(newChat(e))
}

func (s *Server) handleChat(sess *tavern.Session, m *ChatRequest) {
	if tavern.IsSoccerCommand(m.Message) {
		active := s.world.Soccer.Toggle(sess.ID)
		s.broadcastAll(newSoccerGame(sess.ID, active))
		log.Info().Str("session_id", sess.ID).Bool("active", active).Msg("Soccer toggled")
		return
	}

	text := tavern.NormalizeText(m.Message)
	if text == "" {
		return
	}

	s.postChat(tavern.Entry{
		Kind:       tavern.KindChat,
		AuthorID:   sess.ID,
		AuthorName: sess.Name,
		Text:       text,
		Emote:      m.IsEmote,
		Emoji:      m.Emoji,
		Timestamp:  s.now(),
	})
}
