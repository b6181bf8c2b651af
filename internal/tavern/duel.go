package tavern

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownChoice = errors.New("unknown duel choice")
	ErrNotInDuel     = errors.New("not in a duel")
	ErrAlreadyInDuel = errors.New("already in a duel")
	ErrSelfDuel      = errors.New("cannot duel yourself")
	ErrChoiceLocked  = errors.New("choice already made")
)

// Choice is a rock-paper-scissors hand, plus the timeout forfeit.
type Choice string

const (
	Rock     Choice = "piedra"
	Paper    Choice = "papel"
	Scissors Choice = "tijera"
	Timeout  Choice = "timeout"
)

// ChoiceEmojis is sent with every duel result.
var ChoiceEmojis = map[Choice]string{
	Rock:     "🪨",
	Paper:    "📄",
	Scissors: "✂️",
	Timeout:  "⏰",
}

func ParseChoice(s string) (Choice, error) {
	c := Choice(s)
	if _, ok := ChoiceEmojis[c]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownChoice, s)
	}
	return c, nil
}

func (c Choice) Emoji() string {
	return ChoiceEmojis[c]
}

// beats maps each hand to the hand it defeats.
var beats = map[Choice]Choice{
	Rock:     Scissors,
	Paper:    Rock,
	Scissors: Paper,
}

type Outcome int

const (
	OutcomeTie Outcome = iota
	OutcomePlayer1
	OutcomePlayer2
)

func (o Outcome) String() string {
	switch o {
	case OutcomeTie:
		return "tie"
	case OutcomePlayer1:
		return "player1"
	case OutcomePlayer2:
		return "player2"
	}
	return fmt.Sprintf("Outcome(%d)", int(o))
}

// Decide applies the duel rules. A timeout loses to any hand and ties only
// with another timeout.
func Decide(a, b Choice) Outcome {
	switch {
	case a == b:
		return OutcomeTie
	case a == Timeout:
		return OutcomePlayer2
	case b == Timeout:
		return OutcomePlayer1
	case beats[a] == b:
		return OutcomePlayer1
	default:
		return OutcomePlayer2
	}
}

type DuelState int

const (
	DuelIdle DuelState = iota
	DuelAccepted
	DuelChoicesPending
	DuelResolved
)

func (s DuelState) String() string {
	switch s {
	case DuelIdle:
		return "idle"
	case DuelAccepted:
		return "accepted"
	case DuelChoicesPending:
		return "choices_pending"
	case DuelResolved:
		return "resolved"
	}
	return fmt.Sprintf("DuelState(%d)", int(s))
}

// Duel is an accepted challenge between two sessions. It references the
// participants by id only.
type Duel struct {
	Challenger string
	Target     string
	State      DuelState

	// Token identifies this duel's choice deadline.
	Token uint64

	choices  map[string]Choice
	deadline func() bool
}

// Opponent returns the other participant.
func (d *Duel) Opponent(id string) string {
	if id == d.Challenger {
		return d.Target
	}
	return d.Challenger
}

// Choice returns what id has played so far.
func (d *Duel) Choice(id string) (Choice, bool) {
	c, ok := d.choices[id]
	return c, ok
}

// Missing lists participants that have not chosen, challenger first.
func (d *Duel) Missing() []string {
	var ids []string
	for _, id := range []string{d.Challenger, d.Target} {
		if _, ok := d.choices[id]; !ok {
			ids = append(ids, id)
		}
	}
	return ids
}

// SetDeadline attaches the stop function of the timer guarding this duel.
func (d *Duel) SetDeadline(stop func() bool) {
	d.deadline = stop
}

func (d *Duel) stopDeadline() {
	if d.deadline != nil {
		d.deadline()
		d.deadline = nil
	}
}

// Side is one participant's part of a result.
type Side struct {
	ID     string
	Name   string
	Choice Choice
}

// Result is a resolved duel. Player1 is always the challenger.
type Result struct {
	Player1 Side
	Player2 Side
	Outcome Outcome
}

func (r Result) WinnerSide() Side {
	if r.Outcome == OutcomePlayer2 {
		return r.Player2
	}
	return r.Player1
}

func (r Result) LoserSide() Side {
	if r.Outcome == OutcomePlayer2 {
		return r.Player1
	}
	return r.Player2
}

// WinnerID is empty on a tie.
func (r Result) WinnerID() string {
	if r.Outcome == OutcomeTie {
		return ""
	}
	return r.WinnerSide().ID
}

// DuelTable indexes active duels by both participant ids.
type DuelTable struct {
	byPlayer  map[string]*Duel
	nextToken uint64
}

func NewDuelTable() *DuelTable {
	return &DuelTable{byPlayer: make(map[string]*Duel)}
}

func (t *DuelTable) InDuel(id string) bool {
	_, ok := t.byPlayer[id]
	return ok
}

func (t *DuelTable) Get(id string) (*Duel, bool) {
	d, ok := t.byPlayer[id]
	return d, ok
}

// OpponentOf returns the id id is dueling against.
func (t *DuelTable) OpponentOf(id string) (string, bool) {
	d, ok := t.byPlayer[id]
	if !ok {
		return "", false
	}
	return d.Opponent(id), true
}

// CanChallenge reports whether a request from challenger to target should be
// delivered at all.
func (t *DuelTable) CanChallenge(challenger, target string) bool {
	return challenger != target && !t.InDuel(challenger) && !t.InDuel(target)
}

// Begin records an accepted duel between the two sessions.
func (t *DuelTable) Begin(challenger, target string) (*Duel, error) {
	if challenger == target {
		return nil, ErrSelfDuel
	}
	if t.InDuel(challenger) || t.InDuel(target) {
		return nil, ErrAlreadyInDuel
	}
	t.nextToken++
	d := &Duel{
		Challenger: challenger,
		Target:     target,
		State:      DuelAccepted,
		Token:      t.nextToken,
		choices:    make(map[string]Choice, 2),
	}
	t.byPlayer[challenger] = d
	t.byPlayer[target] = d
	return d, nil
}

// Choose records id's hand. When both hands are in, the duel is removed from
// the table and the finished duel is returned with resolved set.
func (t *DuelTable) Choose(id string, c Choice) (d *Duel, resolved bool, err error) {
	d, ok := t.byPlayer[id]
	if !ok {
		return nil, false, ErrNotInDuel
	}
	if _, done := d.choices[id]; done {
		return d, false, ErrChoiceLocked
	}
	d.choices[id] = c
	if len(d.choices) < 2 {
		d.State = DuelChoicesPending
		return d, false, nil
	}
	t.finish(d)
	return d, true, nil
}

// Expire fills every missing hand with Timeout and finishes the duel, if the
// duel holding token is still active. It returns the ids that timed out.
func (t *DuelTable) Expire(token uint64) (d *Duel, timedOut []string, ok bool) {
	for _, candidate := range t.byPlayer {
		if candidate.Token == token {
			d = candidate
			break
		}
	}
	if d == nil {
		return nil, nil, false
	}
	timedOut = d.Missing()
	for _, id := range timedOut {
		d.choices[id] = Timeout
	}
	t.finish(d)
	return d, timedOut, true
}

// Forfeit removes the duel id takes part in, without a result.
func (t *DuelTable) Forfeit(id string) (*Duel, bool) {
	d, ok := t.byPlayer[id]
	if !ok {
		return nil, false
	}
	d.State = DuelIdle
	t.remove(d)
	return d, true
}

// Len is the number of active duels.
func (t *DuelTable) Len() int {
	return len(t.byPlayer) / 2
}

// All returns every active duel once.
func (t *DuelTable) All() []*Duel {
	seen := make(map[*Duel]bool)
	var out []*Duel
	for _, d := range t.byPlayer {
		if !seen[d] {
			seen[d] = true
			out = append(out, d)
		}
	}
	return out
}

func (t *DuelTable) finish(d *Duel) {
	d.State = DuelResolved
	t.remove(d)
}

func (t *DuelTable) remove(d *Duel) {
	d.stopDeadline()
	delete(t.byPlayer, d.Challenger)
	delete(t.byPlayer, d.Target)
}

// Result builds the outcome of a duel in which both hands are known. names
// resolves display names for the participants.
func (d *Duel) Result(names func(id string) string) Result {
	p1 := Side{ID: d.Challenger, Name: names(d.Challenger), Choice: d.choices[d.Challenger]}
	p2 := Side{ID: d.Target, Name: names(d.Target), Choice: d.choices[d.Target]}
	return Result{
		Player1: p1,
		Player2: p2,
		Outcome: Decide(p1.Choice, p2.Choice),
	}
}
