package server

import (
	"encoding/json"

	"taberna-server/internal/tavern"
)

// Envelope carries the type discriminator of every outbound message.
type Envelope struct {
	Type string `json:"type"`
}

func (e Envelope) MessageType() string { return e.Type }

// Outbound is any message the server sends.
type Outbound interface {
	MessageType() string
}

// ============================================================================
// ERROR RESPONSES
// ============================================================================
type ErrorMessage struct {
	Envelope
	Message string `json:"message"`
}

// ============================================================================
// PRESENCE (init, userJoined, userLeft, userMoved)
// ============================================================================
type InitMessage struct {
	Envelope
	UserID string `json:"userId"`
}

// UserJoinedNotification is also re-sent when a player changes name or
// model; clients treat it as an upsert.
type UserJoinedNotification struct {
	Envelope
	UserID        string      `json:"userId"`
	Username      *string     `json:"username"`
	Position      tavern.Vec3 `json:"position"`
	Rotation      float64     `json:"rotation"`
	SelectedModel string      `json:"selectedModel,omitempty"`
	SeatID        string      `json:"seatId,omitempty"`
}

type UserLeftNotification struct {
	Envelope
	UserID string `json:"userId"`
}

type UserMovedNotification struct {
	Envelope
	UserID   string      `json:"userId"`
	Position tavern.Vec3 `json:"position"`
	Rotation float64     `json:"rotation"`
}

// ============================================================================
// SEATS (userSat, userStood)
// ============================================================================
type UserSatNotification struct {
	Envelope
	UserID string `json:"userId"`
	SeatID string `json:"seatId"`
}

type UserStoodNotification struct {
	Envelope
	UserID string `json:"userId"`
}

// ============================================================================
// CHAT (userChat)
// ============================================================================
type ChatNotification struct {
	Envelope
	UserID    string  `json:"userId"`
	Username  *string `json:"username"`
	Message   string  `json:"message"`
	IsEmote   bool    `json:"isEmote,omitempty"`
	IsTaberna bool    `json:"isTaberna,omitempty"`
	Emoji     string  `json:"emoji,omitempty"`
	Timestamp int64   `json:"timestamp"` // unix milliseconds
}

// ============================================================================
// DUELS (duelRequest, duelAccepted, duelRejected, duelChoice, duelResult)
// ============================================================================
type DuelRequestNotification struct {
	Envelope
	TargetID       string `json:"targetId"`
	ChallengerID   string `json:"challengerId"`
	ChallengerName string `json:"challengerName"`
}

type DuelAcceptedNotification struct {
	Envelope
	TargetID     string `json:"targetId"`
	ChallengerID string `json:"challengerId"`
}

type DuelRejectedNotification struct {
	Envelope
	ChallengerID string `json:"challengerId"`
}

type DuelChoiceNotification struct {
	Envelope
	PlayerID string        `json:"playerId"`
	Choice   tavern.Choice `json:"choice"`
}

type DuelPlayer struct {
	ID     string        `json:"id"`
	Name   string        `json:"name"`
	Choice tavern.Choice `json:"choice"`
}

type DuelResultNotification struct {
	Envelope
	Player1      DuelPlayer               `json:"player1"`
	Player2      DuelPlayer               `json:"player2"`
	ChoiceEmojis map[tavern.Choice]string `json:"choiceEmojis"`
	WinnerID     string                   `json:"winnerId,omitempty"`
	Tie          bool                     `json:"tie"`
}

// ============================================================================
// MINIGAMES (arcadeUpdate, startSoccerGame, soccerBallUpdate)
// ============================================================================
type ArcadeUpdateNotification struct {
	Envelope
	Action          string          `json:"action"`
	PlayerID        string          `json:"playerId,omitempty"`
	CurrentPlayerID string          `json:"currentPlayerId,omitempty"`
	Player1ID       string          `json:"player1Id,omitempty"`
	Player2ID       string          `json:"player2Id,omitempty"`
	Data            json.RawMessage `json:"data,omitempty"`
	State           json.RawMessage `json:"state,omitempty"`
}

type SoccerGameNotification struct {
	Envelope
	InitiatorID string `json:"initiatorId"`
	Active      bool   `json:"active"`
}

type SoccerBallNotification struct {
	Envelope
	Position tavern.Vec3 `json:"position"`
	Velocity tavern.Vec3 `json:"velocity"`
}

// ============================================================================
// BUILDERS
// ============================================================================

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func newUserJoined(sess *tavern.Session, seatID string) UserJoinedNotification {
	return UserJoinedNotification{
		Envelope:      Envelope{Type: TypeUserJoined},
		UserID:        sess.ID,
		Username:      nullable(sess.Name),
		Position:      sess.Pose.Position,
		Rotation:      sess.Pose.Rotation,
		SelectedModel: sess.Model,
		SeatID:        seatID,
	}
}

func newChat(e tavern.Entry) ChatNotification {
	return ChatNotification{
		Envelope:  Envelope{Type: TypeUserChat},
		UserID:    e.AuthorID,
		Username:  nullable(e.AuthorName),
		Message:   e.Text,
		IsEmote:   e.Emote,
		IsTaberna: e.Narration(),
		Emoji:     e.Emoji,
		Timestamp: e.Timestamp.UnixMilli(),
	}
}

func newDuelChoice(playerID string, c tavern.Choice) DuelChoiceNotification {
	return DuelChoiceNotification{
		Envelope: Envelope{Type: TypeDuelChoice},
		PlayerID: playerID,
		Choice:   c,
	}
}

func newDuelResult(r tavern.Result) DuelResultNotification {
	side := func(s tavern.Side) DuelPlayer {
		return DuelPlayer{ID: s.ID, Name: s.Name, Choice: s.Choice}
	}
	return DuelResultNotification{
		Envelope:     Envelope{Type: TypeDuelResult},
		Player1:      side(r.Player1),
		Player2:      side(r.Player2),
		ChoiceEmojis: tavern.ChoiceEmojis,
		WinnerID:     r.WinnerID(),
		Tie:          r.Outcome == tavern.OutcomeTie,
	}
}

func newArcadeUpdate(action string) ArcadeUpdateNotification {
	return ArcadeUpdateNotification{
		Envelope: Envelope{Type: TypeArcadeUpdate},
		Action:   action,
	}
}

func newSoccerGame(initiatorID string, active bool) SoccerGameNotification {
	return SoccerGameNotification{
		Envelope:    Envelope{Type: TypeStartSoccerGame},
		InitiatorID: initiatorID,
		Active:      active,
	}
}

func newSoccerBall(b tavern.Ball) SoccerBallNotification {
	return SoccerBallNotification{
		Envelope: Envelope{Type: TypeSoccerBallUpdate},
		Position: b.Position,
		Velocity: b.Velocity,
	}
}
