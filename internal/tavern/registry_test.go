package tavern

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_AddGetRemove(t *testing.T) {
	r := NewRegistry()
	s := NewSession("abc", time.Now())
	r.Add(s)

	got, err := r.Get("abc")
	require.NoError(t, err)
	assert.Same(t, s, got)

	assert.Same(t, s, r.Remove("abc"))
	_, err = r.Get("abc")
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.Nil(t, r.Remove("abc"))
}

func TestRegistry_AllInJoinOrder(t *testing.T) {
	r := NewRegistry()
	now := time.Now()
	for _, id := range []string{"c", "a", "b"} {
		r.Add(NewSession(id, now))
	}
	r.Remove("a")
	r.Add(NewSession("a", now))

	var ids []string
	for _, s := range r.All() {
		ids = append(ids, s.ID)
	}
	assert.Equal(t, []string{"c", "b", "a"}, ids)
}

func TestNewSession_Defaults(t *testing.T) {
	s := NewSession("abc", time.Now())

	assert.False(t, s.HasName())
	assert.Equal(t, DefaultModel, s.Model)
	assert.Equal(t, SpawnPose, s.Pose)
	assert.Equal(t, "Un forastero", s.DisplayName())
}

func TestSession_SetProfile(t *testing.T) {
	s := NewSession("abc", time.Now())

	s.SetProfile("  Ana  ", "knight")
	assert.Equal(t, "Ana", s.Name)
	assert.Equal(t, "knight", s.Model)

	s.SetProfile("   ", "")
	assert.Equal(t, "Ana", s.Name, "blank name keeps the old one")
	assert.Equal(t, "knight", s.Model)
}

func TestNormalizeName(t *testing.T) {
	// "e" + combining acute composes to a single rune under NFC.
	assert.Equal(t, "Jos\u00e9", NormalizeName("Jose\u0301"))
	assert.Equal(t, strings.Repeat("ñ", MaxNameLength), NormalizeName(strings.Repeat("ñ", 30)))
	assert.Empty(t, NormalizeName("  "))
}
