package tavern

import (
	"fmt"
	"strings"
	"time"
)

// HistoryLimit is how many chat entries are replayed to newcomers.
const HistoryLimit = 50

// SoccerCommand toggles the soccer minigame instead of being posted as chat.
const SoccerCommand = "/futbol"

// TavernAuthorID and TavernAuthorName sign narration entries.
const (
	TavernAuthorID   = "taberna"
	TavernAuthorName = "Taberna"
)

type Kind int

const (
	KindChat Kind = iota
	KindSystem
	KindTavern
)

func (k Kind) String() string {
	switch k {
	case KindChat:
		return "chat"
	case KindSystem:
		return "system"
	case KindTavern:
		return "tavern"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Entry is one line of chat history.
type Entry struct {
	Kind       Kind
	AuthorID   string
	AuthorName string
	Text       string
	Emote      bool
	Emoji      string
	Timestamp  time.Time
}

// Narration reports whether the entry was synthesized by the server.
func (e Entry) Narration() bool {
	return e.Kind != KindChat
}

// ChatLog is a fixed-capacity ring of the most recent entries.
type ChatLog struct {
	buf   []Entry
	start int
	n     int
}

func NewChatLog(capacity int) *ChatLog {
	if capacity <= 0 {
		capacity = HistoryLimit
	}
	return &ChatLog{buf: make([]Entry, capacity)}
}

// Append stores e, overwriting the oldest entry once the log is full.
func (c *ChatLog) Append(e Entry) {
	if c.n < len(c.buf) {
		c.buf[(c.start+c.n)%len(c.buf)] = e
		c.n++
		return
	}
	c.buf[c.start] = e
	c.start = (c.start + 1) % len(c.buf)
}

// Entries returns a copy of the log, oldest first.
func (c *ChatLog) Entries() []Entry {
	out := make([]Entry, c.n)
	for i := 0; i < c.n; i++ {
		out[i] = c.buf[(c.start+i)%len(c.buf)]
	}
	return out
}

func (c *ChatLog) Len() int {
	return c.n
}

func (c *ChatLog) Cap() int {
	return len(c.buf)
}

// IsSoccerCommand matches the whole message body, ignoring case and
// surrounding whitespace.
func IsSoccerCommand(text string) bool {
	return strings.EqualFold(strings.TrimSpace(text), SoccerCommand)
}

func tavernEntry(kind Kind, text string, now time.Time) Entry {
	return Entry{
		Kind:       kind,
		AuthorID:   TavernAuthorID,
		AuthorName: TavernAuthorName,
		Text:       text,
		Timestamp:  now,
	}
}

// WelcomeEntry greets a player who finished loading.
func WelcomeEntry(name string, now time.Time) Entry {
	return tavernEntry(KindSystem, fmt.Sprintf("🍺 ¡%s ha entrado en la taberna!", name), now)
}

// FarewellEntry narrates a player leaving.
func FarewellEntry(name string, now time.Time) Entry {
	return tavernEntry(KindSystem, fmt.Sprintf("🚪 %s ha salido de la taberna.", name), now)
}

// ChallengeEntry announces a duel request to the whole room.
func ChallengeEntry(challenger, target string, now time.Time) Entry {
	return tavernEntry(KindTavern, fmt.Sprintf("⚔️ ¡%s ha retado a %s a un duelo de piedra, papel o tijera!", challenger, target), now)
}

// DuelEntry narrates a resolved duel.
func DuelEntry(r Result, now time.Time) Entry {
	if r.Outcome == OutcomeTie {
		return tavernEntry(KindTavern, fmt.Sprintf("🤝 %s y %s empatan con %s. ¡La taberna pide revancha!",
			r.Player1.Name, r.Player2.Name, r.Player1.Choice.Emoji()), now)
	}
	winner, loser := r.WinnerSide(), r.LoserSide()
	if loser.Choice == Timeout {
		return tavernEntry(KindTavern, fmt.Sprintf("⏰ %s se quedó dormido sobre la jarra y %s gana el duelo.",
			loser.Name, winner.Name), now)
	}
	return tavernEntry(KindTavern, fmt.Sprintf("🏆 ¡%s derrota a %s! %s vence a %s. ¡Una ronda para el campeón!",
		winner.Name, loser.Name, winner.Choice.Emoji(), loser.Choice.Emoji()), now)
}
