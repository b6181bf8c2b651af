package server

import (
	"encoding/json"
	"errors"
	"fmt"

	"taberna-server/internal/tavern"
)

// Message types shared by both directions of the wire protocol.
const (
	TypeInit             = "init"
	TypeSetUsername      = "setUsername"
	TypeInitCompleted    = "initCompleted"
	TypeUserJoined       = "userJoined"
	TypeUserLeft         = "userLeft"
	TypeUserMoved        = "userMoved"
	TypeUserSat          = "userSat"
	TypeUserStood        = "userStood"
	TypeUserChat         = "userChat"
	TypeError            = "error"
	TypeDuelRequest      = "duelRequest"
	TypeDuelAccepted     = "duelAccepted"
	TypeDuelRejected     = "duelRejected"
	TypeDuelChoice       = "duelChoice"
	TypeDuelResult       = "duelResult"
	TypeArcadeState      = "arcadeState"
	TypeArcadeUpdate     = "arcadeUpdate"
	TypeStartSoccerGame  = "startSoccerGame"
	TypeSoccerBallUpdate = "soccerBallUpdate"
)

var ErrUnknownType = errors.New("unknown message type")

// Inbound is the closed set of messages a client may send.
type Inbound interface {
	inbound()
}

type SetUsernameRequest struct {
	Username      string `json:"username"`
	SelectedModel string `json:"selectedModel"`
}

type InitCompletedRequest struct {
	Username      string `json:"username"`
	SelectedModel string `json:"selectedModel"`
}

type MoveRequest struct {
	Position tavern.Vec3 `json:"position"`
	Rotation float64     `json:"rotation"`
}

type SitRequest struct {
	SeatID string `json:"seatId"`
}

type StandRequest struct{}

type ChatRequest struct {
	Message string `json:"message"`
	IsEmote bool   `json:"isEmote,omitempty"`
	Emoji   string `json:"emoji,omitempty"`
}

type DuelChallengeRequest struct {
	TargetID       string `json:"targetId"`
	ChallengerName string `json:"challengerName"`
}

type DuelAcceptRequest struct {
	ChallengerID string `json:"challengerId"`
}

type DuelRejectRequest struct {
	ChallengerID string `json:"challengerId"`
}

type DuelChoiceRequest struct {
	Choice string `json:"choice"`
}

// ArcadeStateRequest carries an arcade action in GameState. Data and State
// are opaque; Raw is the whole frame, relayed untouched.
type ArcadeStateRequest struct {
	GameState       string          `json:"gameState"`
	Data            json.RawMessage `json:"data,omitempty"`
	PlayerID        string          `json:"playerId,omitempty"`
	CurrentPlayerID string          `json:"currentPlayerId,omitempty"`
	State           json.RawMessage `json:"state,omitempty"`

	Raw json.RawMessage `json:"-"`
}

type SoccerBallRequest struct {
	Position tavern.Vec3 `json:"position"`
	Velocity tavern.Vec3 `json:"velocity"`
}

func (*SetUsernameRequest) inbound()   {}
func (*InitCompletedRequest) inbound() {}
func (*MoveRequest) inbound()          {}
func (*SitRequest) inbound()           {}
func (*StandRequest) inbound()         {}
func (*ChatRequest) inbound()          {}
func (*DuelChallengeRequest) inbound() {}
func (*DuelAcceptRequest) inbound()    {}
func (*DuelRejectRequest) inbound()    {}
func (*DuelChoiceRequest) inbound()    {}
func (*ArcadeStateRequest) inbound()   {}
func (*SoccerBallRequest) inbound()    {}

// ParseInbound decodes one client frame. The returned type is set whenever
// the envelope itself parsed, even if the type is unknown.
func ParseInbound(data []byte) (string, Inbound, error) {
	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return "", nil, fmt.Errorf("decode envelope: %w", err)
	}

	var msg Inbound
	switch head.Type {
	case TypeSetUsername:
		msg = &SetUsernameRequest{}
	case TypeInitCompleted:
		msg = &InitCompletedRequest{}
	case TypeUserMoved:
		msg = &MoveRequest{}
	case TypeUserSat:
		msg = &SitRequest{}
	case TypeUserStood:
		msg = &StandRequest{}
	case TypeUserChat:
		msg = &ChatRequest{}
	case TypeDuelRequest:
		msg = &DuelChallengeRequest{}
	case TypeDuelAccepted:
		msg = &DuelAcceptRequest{}
	case TypeDuelRejected:
		msg = &DuelRejectRequest{}
	case TypeDuelChoice:
		msg = &DuelChoiceRequest{}
	case TypeArcadeState:
		msg = &ArcadeStateRequest{Raw: append(json.RawMessage(nil), data...)}
	case TypeSoccerBallUpdate:
		msg = &SoccerBallRequest{}
	default:
		return head.Type, nil, fmt.Errorf("%w: %q", ErrUnknownType, head.Type)
	}

	if err := json.Unmarshal(data, msg); err != nil {
		return head.Type, nil, fmt.Errorf("decode %s: %w", head.Type, err)
	}
	return head.Type, msg, nil
}
