package tavern

import "errors"

// ErrSeatOccupied is the only domain error a client ever sees.
var ErrSeatOccupied = errors.New("Seat already occupied")

// SeatLedger enforces one occupant per seat and one seat per session.
type SeatLedger struct {
	occupants map[string]string // seatID -> sessionID
	held      map[string]string // sessionID -> seatID
}

func NewSeatLedger() *SeatLedger {
	return &SeatLedger{
		occupants: make(map[string]string),
		held:      make(map[string]string),
	}
}

// SitResult describes what Sit changed.
type SitResult struct {
	// Released is the seat the session implicitly stood up from, if any.
	Released string
	// Changed is false when the session was already sitting on the seat.
	Changed bool
}

// Sit seats sessionID on seatID, releasing any other seat it held first.
func (l *SeatLedger) Sit(sessionID, seatID string) (SitResult, error) {
	if occupant, taken := l.occupants[seatID]; taken {
		if occupant == sessionID {
			return SitResult{}, nil
		}
		return SitResult{}, ErrSeatOccupied
	}

	var res SitResult
	if prev, ok := l.held[sessionID]; ok {
		delete(l.occupants, prev)
		res.Released = prev
	}
	l.occupants[seatID] = sessionID
	l.held[sessionID] = seatID
	res.Changed = true
	return res, nil
}

// Stand releases the seat held by sessionID. ok is false when it held none.
func (l *SeatLedger) Stand(sessionID string) (seatID string, ok bool) {
	seatID, ok = l.held[sessionID]
	if !ok {
		return "", false
	}
	delete(l.held, sessionID)
	delete(l.occupants, seatID)
	return seatID, true
}

func (l *SeatLedger) SeatOf(sessionID string) (string, bool) {
	seatID, ok := l.held[sessionID]
	return seatID, ok
}

func (l *SeatLedger) Occupant(seatID string) (string, bool) {
	sessionID, ok := l.occupants[seatID]
	return sessionID, ok
}

// Len is the number of occupied seats.
func (l *SeatLedger) Len() int {
	return len(l.occupants)
}
