package server

import (
	"time"

	"github.com/rs/zerolog/log"

	"taberna-server/internal/metrics"
	"taberna-server/internal/tavern"
)

// Requests to unknown or busy players are dropped without telling the
// challenger.
func (s *Server) handleDuelRequest(sess *tavern.Session, m *DuelChallengeRequest) {
	target, err := s.world.Sessions.Get(m.TargetID)
	if err != nil {
		log.Debug().Str("session_id", sess.ID).Str("target_id", m.TargetID).Msg("Duel target not found")
		return
	}
	if !s.world.Duels.CanChallenge(sess.ID, target.ID) {
		log.Debug().Str("session_id", sess.ID).Str("target_id", target.ID).Msg("Duel request dropped")
		return
	}

	name := tavern.NormalizeName(m.ChallengerName)
	if name == "" {
		name = sess.DisplayName()
	}

	s.postChat(tavern.ChallengeEntry(name, target.DisplayName(), s.now()))
	s.sendTo(target.ID, DuelRequestNotification{
		Envelope:       Envelope{Type: TypeDuelRequest},
		TargetID:       target.ID,
		ChallengerID:   sess.ID,
		ChallengerName: name,
	})
}

func (s *Server) handleDuelAccept(sess *tavern.Session, m *DuelAcceptRequest) {
	if _, err := s.world.Sessions.Get(m.ChallengerID); err != nil {
		log.Debug().Str("session_id", sess.ID).Str("challenger_id", m.ChallengerID).Msg("Challenger left before accept")
		return
	}

	d, err := s.world.Duels.Begin(m.ChallengerID, sess.ID)
	if err != nil {
		log.Debug().Err(err).Str("session_id", sess.ID).Str("challenger_id", m.ChallengerID).Msg("Duel accept ignored")
		return
	}
	metrics.ActiveDuels.Set(float64(s.world.Duels.Len()))

	s.sendTo(d.Challenger, DuelAcceptedNotification{
		Envelope:     Envelope{Type: TypeDuelAccepted},
		TargetID:     d.Target,
		ChallengerID: d.Challenger,
	})
	s.armDuelDeadline(d)

	log.Info().Str("challenger_id", d.Challenger).Str("target_id", d.Target).Msg("Duel started")
}

func (s *Server) handleDuelReject(sess *tavern.Session, m *DuelRejectRequest) {
	if _, err := s.world.Sessions.Get(m.ChallengerID); err != nil {
		return
	}
	s.sendTo(m.ChallengerID, DuelRejectedNotification{
		Envelope:     Envelope{Type: TypeDuelRejected},
		ChallengerID: m.ChallengerID,
	})
}

func (s *Server) handleDuelChoice(sess *tavern.Session, m *DuelChoiceRequest) {
	choice, err := tavern.ParseChoice(m.Choice)
	if err != nil {
		log.Warn().Err(err).Str("session_id", sess.ID).Msg("Invalid duel choice")
		return
	}

	d, resolved, err := s.world.Duels.Choose(sess.ID, choice)
	if err != nil {
		log.Debug().Err(err).Str("session_id", sess.ID).Msg("Duel choice ignored")
		return
	}

	s.sendTo(d.Opponent(sess.ID), newDuelChoice(sess.ID, choice))
	if resolved {
		s.finishDuel(d)
	}
}

// armDuelDeadline schedules the forced timeout for d. A zero timeout leaves
// the duel open until both sides choose or one disconnects.
func (s *Server) armDuelDeadline(d *tavern.Duel) {
	if s.duelTimeout <= 0 {
		return
	}
	token := d.Token
	t := time.AfterFunc(s.duelTimeout, func() { s.expireDuel(token) })
	d.SetDeadline(t.Stop)
}

// expireDuel plays timeout for every side that has not chosen yet.
func (s *Server) expireDuel(token uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, timedOut, ok := s.world.Duels.Expire(token)
	if !ok {
		return
	}
	for _, id := range timedOut {
		s.sendTo(d.Opponent(id), newDuelChoice(id, tavern.Timeout))
	}
	log.Info().Str("challenger_id", d.Challenger).Str("target_id", d.Target).Strs("timed_out", timedOut).Msg("Duel timed out")
	s.finishDuel(d)
}

// finishDuel sends the result to both players and narrates it to the room.
// d has already left the duel table.
func (s *Server) finishDuel(d *tavern.Duel) {
	r := d.Result(s.world.NameOf)

	result := newDuelResult(r)
	s.sendTo(d.Challenger, result)
	s.sendTo(d.Target, result)
	s.postChat(tavern.DuelEntry(r, s.now()))

	outcome := "win"
	switch {
	case r.Outcome == tavern.OutcomeTie:
		outcome = "tie"
	case r.LoserSide().Choice == tavern.Timeout:
		outcome = "timeout"
	}
	metrics.ActiveDuels.Set(float64(s.world.Duels.Len()))
	metrics.DuelsResolved.WithLabelValues(outcome).Inc()
}
