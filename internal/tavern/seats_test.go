package tavern

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test: second player cannot take an occupied seat
// Why: the ledger is the only thing keeping two avatars off one stool
func TestSeatLedger_SeatOccupied(t *testing.T) {
	l := NewSeatLedger()

	_, err := l.Sit("x", "stool-1")
	require.NoError(t, err)

	_, err = l.Sit("y", "stool-1")
	assert.ErrorIs(t, err, ErrSeatOccupied)
	assert.Equal(t, "Seat already occupied", err.Error())

	occupant, ok := l.Occupant("stool-1")
	assert.True(t, ok)
	assert.Equal(t, "x", occupant)
	_, ok = l.SeatOf("y")
	assert.False(t, ok)
}

// Test: sitting elsewhere releases the old seat
func TestSeatLedger_ImplicitStand(t *testing.T) {
	l := NewSeatLedger()

	_, err := l.Sit("x", "stool-1")
	require.NoError(t, err)

	res, err := l.Sit("x", "stool-2")
	require.NoError(t, err)
	assert.True(t, res.Changed)
	assert.Equal(t, "stool-1", res.Released)

	_, ok := l.Occupant("stool-1")
	assert.False(t, ok, "old seat must be free")
	seat, _ := l.SeatOf("x")
	assert.Equal(t, "stool-2", seat)
	assert.Equal(t, 1, l.Len())
}

func TestSeatLedger_SitSameSeatTwice(t *testing.T) {
	l := NewSeatLedger()

	_, err := l.Sit("x", "stool-1")
	require.NoError(t, err)

	res, err := l.Sit("x", "stool-1")
	assert.NoError(t, err)
	assert.False(t, res.Changed)
	assert.Empty(t, res.Released)
}

// Test: stand is idempotent
// Why: second stand must not produce a second userStood broadcast
func TestSeatLedger_StandTwice(t *testing.T) {
	l := NewSeatLedger()
	_, _ = l.Sit("x", "stool-1")

	seat, ok := l.Stand("x")
	assert.True(t, ok)
	assert.Equal(t, "stool-1", seat)

	seat, ok = l.Stand("x")
	assert.False(t, ok)
	assert.Empty(t, seat)
	assert.Zero(t, l.Len())
}

// Test: random sit/stand traffic never breaks exclusivity
func TestSeatLedger_Exclusivity(t *testing.T) {
	l := NewSeatLedger()
	rng := rand.New(rand.NewSource(42))

	sessions := []string{"a", "b", "c", "d", "e"}
	seats := []string{"stool-1", "stool-2", "stool-3"}

	for i := 0; i < 2000; i++ {
		s := sessions[rng.Intn(len(sessions))]
		if rng.Intn(4) == 0 {
			l.Stand(s)
		} else {
			_, _ = l.Sit(s, seats[rng.Intn(len(seats))])
		}

		seatsHeld := make(map[string]int)
		for _, seat := range seats {
			if occupant, ok := l.Occupant(seat); ok {
				seatsHeld[occupant]++
				held, _ := l.SeatOf(occupant)
				assert.Equal(t, seat, held, fmt.Sprintf("step %d: ledgers disagree", i))
			}
		}
		for s, n := range seatsHeld {
			assert.LessOrEqual(t, n, 1, fmt.Sprintf("step %d: %s holds %d seats", i, s, n))
		}
	}
}
