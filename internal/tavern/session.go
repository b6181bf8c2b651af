package tavern

import (
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// DefaultModel is the avatar every session starts with.
const DefaultModel = "default"

// MaxNameLength is measured in runes.
const MaxNameLength = 20

// Vec3 is an x, y, z triple as sent on the wire.
type Vec3 [3]float64

// Pose is the last position and yaw a client reported. It is never validated.
type Pose struct {
	Position Vec3
	Rotation float64
}

// SpawnPose is where every new session appears.
var SpawnPose = Pose{Position: Vec3{0, 0, 5}}

// Session is the server-side record of one connected player.
type Session struct {
	ID       string
	Name     string // empty until the client sets one
	Model    string
	Pose     Pose
	JoinedAt time.Time

	// Initialized is set once the client reports initCompleted.
	Initialized bool
}

func NewSession(id string, now time.Time) *Session {
	return &Session{
		ID:       id,
		Model:    DefaultModel,
		Pose:     SpawnPose,
		JoinedAt: now,
	}
}

// HasName reports whether the client has set a display name.
func (s *Session) HasName() bool {
	return s.Name != ""
}

// DisplayName is the name used in tavern narration.
func (s *Session) DisplayName() string {
	if s.Name == "" {
		return "Un forastero"
	}
	return s.Name
}

// SetProfile applies a name and model sent by the client. Blank values keep
// the current ones.
func (s *Session) SetProfile(name, model string) {
	if n := NormalizeName(name); n != "" {
		s.Name = n
	}
	if m := strings.TrimSpace(model); m != "" {
		s.Model = m
	}
}

// NormalizeName trims, NFC-normalizes and truncates a display name.
func NormalizeName(name string) string {
	name = strings.TrimSpace(norm.NFC.String(name))
	if utf8.RuneCountInString(name) <= MaxNameLength {
		return name
	}
	return strings.TrimSpace(string([]rune(name)[:MaxNameLength]))
}

// NormalizeText trims and NFC-normalizes chat text.
func NormalizeText(text string) string {
	return strings.TrimSpace(norm.NFC.String(text))
}
