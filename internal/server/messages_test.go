package server

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taberna-server/internal/tavern"
)

func TestParseInbound_Variants(t *testing.T) {
	tests := []struct {
		raw  string
		want Inbound
	}{
		{`{"type":"setUsername","username":"Ana","selectedModel":"bard"}`, &SetUsernameRequest{Username: "Ana", SelectedModel: "bard"}},
		{`{"type":"initCompleted","username":"Ana"}`, &InitCompletedRequest{Username: "Ana"}},
		{`{"type":"userMoved","position":[1,2,3],"rotation":0.5}`, &MoveRequest{Position: tavern.Vec3{1, 2, 3}, Rotation: 0.5}},
		{`{"type":"userSat","seatId":"stool-1"}`, &SitRequest{SeatID: "stool-1"}},
		{`{"type":"userStood"}`, &StandRequest{}},
		{`{"type":"userChat","message":"hola","isEmote":true,"emoji":"🍺"}`, &ChatRequest{Message: "hola", IsEmote: true, Emoji: "🍺"}},
		{`{"type":"duelRequest","targetId":"b","challengerName":"Ana"}`, &DuelChallengeRequest{TargetID: "b", ChallengerName: "Ana"}},
		{`{"type":"duelAccepted","challengerId":"a"}`, &DuelAcceptRequest{ChallengerID: "a"}},
		{`{"type":"duelRejected","challengerId":"a"}`, &DuelRejectRequest{ChallengerID: "a"}},
		{`{"type":"duelChoice","choice":"papel"}`, &DuelChoiceRequest{Choice: "papel"}},
		{`{"type":"soccerBallUpdate","position":[0,1,0],"velocity":[2,0,0]}`, &SoccerBallRequest{Position: tavern.Vec3{0, 1, 0}, Velocity: tavern.Vec3{2, 0, 0}}},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			_, got, err := ParseInbound([]byte(tt.raw))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseInbound_ArcadeKeepsRawFrame(t *testing.T) {
	raw := `{"type":"arcadeState","gameState":"gameState","playerId":"a","state":{"paddle":0.3},"extra":true}`

	typ, msg, err := ParseInbound([]byte(raw))
	require.NoError(t, err)
	assert.Equal(t, TypeArcadeState, typ)

	arcade, ok := msg.(*ArcadeStateRequest)
	require.True(t, ok)
	assert.Equal(t, "gameState", arcade.GameState)
	assert.Equal(t, "a", arcade.PlayerID)
	assert.JSONEq(t, `{"paddle":0.3}`, string(arcade.State))
	assert.Equal(t, raw, string(arcade.Raw))
}

func TestParseInbound_Errors(t *testing.T) {
	typ, _, err := ParseInbound([]byte(`{"type":"fly"}`))
	assert.ErrorIs(t, err, ErrUnknownType)
	assert.Equal(t, "fly", typ)

	_, _, err = ParseInbound([]byte(`[1,2]`))
	assert.Error(t, err)

	typ, _, err = ParseInbound([]byte(`{"type":"userMoved","position":"here"}`))
	assert.Error(t, err)
	assert.Equal(t, TypeUserMoved, typ)
}
