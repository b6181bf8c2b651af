package server

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBroadcastServer(t *testing.T, ids ...string) (*Server, map[string]*Client) {
	t.Helper()
	s := New(testConfig())
	clients := make(map[string]*Client, len(ids))
	for _, id := range ids {
		c := NewClient(id, nil, 2)
		s.connections.AddClient(c)
		clients[id] = c
	}
	return s, clients
}

func TestBroadcast_ExcludesOne(t *testing.T) {
	s, clients := newBroadcastServer(t, "a", "b", "c")

	s.broadcast("b", UserLeftNotification{Envelope: Envelope{Type: TypeUserLeft}, UserID: "x"})

	assert.Len(t, clients["a"].send, 1)
	assert.Len(t, clients["b"].send, 0)
	assert.Len(t, clients["c"].send, 1)
}

func TestBroadcastAll_ReachesEveryone(t *testing.T) {
	s, clients := newBroadcastServer(t, "a", "b")

	s.broadcastAll(newSoccerGame("a", true))

	for id, c := range clients {
		require.Len(t, c.send, 1, id)
		assert.JSONEq(t, `{"type":"startSoccerGame","initiatorId":"a","active":true}`, string(<-c.send))
	}
}

// A peer with a full queue loses the frame; the rest still get it.
func TestBroadcast_FullQueueDoesNotStopOthers(t *testing.T) {
	s, clients := newBroadcastServer(t, "slow", "fast")
	require.NoError(t, clients["slow"].Enqueue([]byte("x")))
	require.NoError(t, clients["slow"].Enqueue([]byte("y")))

	s.broadcastAll(UserStoodNotification{Envelope: Envelope{Type: TypeUserStood}, UserID: "z"})

	assert.Len(t, clients["slow"].send, 2)
	assert.Len(t, clients["fast"].send, 1)
}

func TestBroadcast_ClosedClientSkipped(t *testing.T) {
	s, clients := newBroadcastServer(t, "gone", "here")
	clients["gone"].Close()

	assert.NotPanics(t, func() {
		s.broadcastAll(UserStoodNotification{Envelope: Envelope{Type: TypeUserStood}, UserID: "z"})
	})
	assert.Len(t, clients["here"].send, 1)
}

func TestSendTo_UnknownSessionIgnored(t *testing.T) {
	s, clients := newBroadcastServer(t, "a")

	assert.NotPanics(t, func() {
		s.sendTo("missing", ErrorMessage{Envelope: Envelope{Type: TypeError}, Message: "x"})
	})
	assert.Len(t, clients["a"].send, 0)
}

func TestBroadcastRaw_SendsBytesUnchanged(t *testing.T) {
	s, clients := newBroadcastServer(t, "a", "b")
	raw := []byte(`{"type":"arcadeState","weird": [1, 2 ,3]}`)

	s.broadcastRaw("", raw, TypeArcadeState)

	assert.Equal(t, raw, <-clients["a"].send)
	assert.Equal(t, raw, <-clients["b"].send)
}

func TestUserJoined_NullUsernameUntilSet(t *testing.T) {
	s, clients := newBroadcastServer(t, "a")
	msg := UserJoinedNotification{Envelope: Envelope{Type: TypeUserJoined}, UserID: "b", Username: nullable("")}
	s.sendTo("a", msg)

	assert.JSONEq(t, `{"type":"userJoined","userId":"b","username":null,"position":[0,0,0],"rotation":0}`, string(<-clients["a"].send))
}
