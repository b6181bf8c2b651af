package server

import (
	"encoding/json"
	"errors"

	"github.com/rs/zerolog/log"

	"taberna-server/internal/metrics"
)

// All sends are fire-and-forget: a peer that cannot take a frame is logged
// and skipped. Callers hold s.mu, which fixes the per-connection order.

// sendTo delivers msg to a single session.
func (s *Server) sendTo(sessionID string, msg Outbound) {
	data, ok := encode(msg)
	if !ok {
		return
	}
	c := s.connections.GetClient(sessionID)
	if c == nil {
		metrics.SendFailures.WithLabelValues(metrics.ReasonClosed).Inc()
		log.Debug().Str("session_id", sessionID).Str("type", msg.MessageType()).Msg("Send to unknown session")
		return
	}
	deliver(c, data, msg.MessageType())
}

// broadcast delivers msg to every connection except excludeID.
func (s *Server) broadcast(excludeID string, msg Outbound) {
	data, ok := encode(msg)
	if !ok {
		return
	}
	s.broadcastRaw(excludeID, data, msg.MessageType())
}

// broadcastAll delivers msg to every connection.
func (s *Server) broadcastAll(msg Outbound) {
	s.broadcast("", msg)
}

// broadcastRaw relays an already encoded frame.
func (s *Server) broadcastRaw(excludeID string, data []byte, msgType string) {
	for _, c := range s.connections.Clients() {
		if c.ID == excludeID {
			continue
		}
		deliver(c, data, msgType)
	}
}

func encode(msg Outbound) ([]byte, bool) {
	data, err := json.Marshal(msg)
	if err != nil {
		metrics.SendFailures.WithLabelValues(metrics.ReasonMarshal).Inc()
		log.Error().Err(err).Str("type", msg.MessageType()).Msg("Marshal error")
		return nil, false
	}
	return data, true
}

func deliver(c *Client, data []byte, msgType string) {
	err := c.Enqueue(data)
	if err == nil {
		return
	}
	reason := metrics.ReasonQueueFull
	if errors.Is(err, errClientClosed) {
		reason = metrics.ReasonClosed
	}
	metrics.SendFailures.WithLabelValues(reason).Inc()
	log.Warn().Err(err).Str("session_id", c.ID).Str("type", msgType).Msg("Failed to deliver message")
}
