package tavern

import (
	"encoding/json"
	"time"
)

// TwoPlayerDelay is how long the arcade waits after a second player joins
// before both clients switch to two-player mode.
const TwoPlayerDelay = 3 * time.Second

// Arcade actions carried in arcadeState.gameState and arcadeUpdate.action.
const (
	ArcadeStartGame      = "startGame"
	ArcadePlayerJoined   = "playerJoined"
	ArcadeGameState      = "gameState"
	ArcadeReset          = "reset"
	ArcadeStartTwoPlayer = "startTwoPlayer"
)

// Arcade is the little state the relay keeps for the cabinet: who owns the
// running game, who joined, the pending two-player start, and the last state
// blob for late joiners. The blob is never interpreted.
type Arcade struct {
	OwnerID  string
	JoinerID string

	LastState json.RawMessage

	pending   uint64
	nextToken uint64
	stop      func() bool
}

// Start registers a new game owned by ownerID. Any pending start is cancelled.
func (a *Arcade) Start(ownerID string) {
	a.cancel()
	a.OwnerID = ownerID
	a.JoinerID = ""
}

// Join records the second player and returns the token of the two-player
// start that the caller must schedule. ownerHint fills in the owner when the
// relay missed the original start.
func (a *Arcade) Join(joinerID, ownerHint string) uint64 {
	a.cancel()
	if a.OwnerID == "" {
		a.OwnerID = ownerHint
	}
	a.JoinerID = joinerID
	a.nextToken++
	a.pending = a.nextToken
	return a.pending
}

// Arm attaches the timer for token. A stale token stops the timer right away.
func (a *Arcade) Arm(token uint64, stop func() bool) {
	if token != a.pending {
		stop()
		return
	}
	a.stop = stop
}

// Fire consumes the pending start. ok is false if token was cancelled.
func (a *Arcade) Fire(token uint64) (ownerID, joinerID string, ok bool) {
	if token == 0 || token != a.pending {
		return "", "", false
	}
	a.pending = 0
	a.stop = nil
	return a.OwnerID, a.JoinerID, true
}

// Pending reports whether a two-player start is scheduled.
func (a *Arcade) Pending() bool {
	return a.pending != 0
}

// RecordState keeps the latest state blob for players who arrive later.
func (a *Arcade) RecordState(raw json.RawMessage) {
	if len(raw) == 0 {
		return
	}
	a.LastState = append(a.LastState[:0], raw...)
}

// Reset clears the cabinet.
func (a *Arcade) Reset() {
	a.cancel()
	a.OwnerID = ""
	a.JoinerID = ""
	a.LastState = nil
}

// Leave resets the cabinet if sessionID was playing on it.
func (a *Arcade) Leave(sessionID string) bool {
	if sessionID == "" || (sessionID != a.OwnerID && sessionID != a.JoinerID) {
		return false
	}
	a.Reset()
	return true
}

func (a *Arcade) cancel() {
	if a.stop != nil {
		a.stop()
		a.stop = nil
	}
	a.pending = 0
}
