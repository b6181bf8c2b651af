package server

import (
	"errors"

	"github.com/rs/zerolog/log"

	"taberna-server/internal/metrics"
	"taberna-server/internal/tavern"
)

func (s *Server) handleSit(sess *tavern.Session, m *SitRequest) {
	if m.SeatID == "" {
		log.Debug().Str("session_id", sess.ID).Msg("Sit without seat id")
		return
	}

	res, err := s.world.Seats.Sit(sess.ID, m.SeatID)
	if errors.Is(err, tavern.ErrSeatOccupied) {
		s.sendTo(sess.ID, ErrorMessage{
			Envelope: Envelope{Type: TypeError},
			Message:  err.Error(),
		})
		return
	}
	if err != nil {
		log.Error().Err(err).Str("session_id", sess.ID).Msg("Sit failed")
		return
	}
	if !res.Changed {
		return
	}

	if res.Released != "" {
		s.broadcast(sess.ID, UserStoodNotification{
			Envelope: Envelope{Type: TypeUserStood},
			UserID:   sess.ID,
		})
	}
	s.broadcast(sess.ID, UserSatNotification{
		Envelope: Envelope{Type: TypeUserSat},
		UserID:   sess.ID,
		SeatID:   m.SeatID,
	})
	metrics.SeatsOccupied.Set(float64(s.world.Seats.Len()))
}

func (s *Server) handleStand(sess *tavern.Session) {
	if _, ok := s.world.Seats.Stand(sess.ID); !ok {
		return
	}
	s.broadcast(sess.ID, UserStoodNotification{
		Envelope: Envelope{Type: TypeUserStood},
		UserID:   sess.ID,
	})
	metrics.SeatsOccupied.Set(float64(s.world.Seats.Len()))
}
