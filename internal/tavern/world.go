// Package tavern holds the authoritative shared state of the tavern: who is
// connected, who sits where, chat history, duels and the minigame relays.
//
// Nothing in this package is safe for concurrent use. The server owns one
// World and serializes every mutation behind a single lock.
package tavern

// World aggregates every shared component.
type World struct {
	Sessions *Registry
	Seats    *SeatLedger
	Chat     *ChatLog
	Duels    *DuelTable
	Arcade   *Arcade
	Soccer   *Soccer
}

func NewWorld() *World {
	return &World{
		Sessions: NewRegistry(),
		Seats:    NewSeatLedger(),
		Chat:     NewChatLog(HistoryLimit),
		Duels:    NewDuelTable(),
		Arcade:   &Arcade{},
		Soccer:   &Soccer{},
	}
}

// NameOf resolves a display name for narration, falling back for sessions
// that already left.
func (w *World) NameOf(id string) string {
	s, err := w.Sessions.Get(id)
	if err != nil {
		return "Un forastero"
	}
	return s.DisplayName()
}
