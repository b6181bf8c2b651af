package tavern

// Ball is the last soccer ball state reported by a client.
type Ball struct {
	Position Vec3
	Velocity Vec3
}

// Soccer tracks whether the soccer minigame is on and the last ball state.
type Soccer struct {
	Active      bool
	InitiatorID string
	Ball        *Ball
}

// Toggle flips the game on or off on behalf of initiatorID and returns the
// new state.
func (s *Soccer) Toggle(initiatorID string) bool {
	s.Active = !s.Active
	s.InitiatorID = initiatorID
	if !s.Active {
		s.Ball = nil
	}
	return s.Active
}

func (s *Soccer) Update(position, velocity Vec3) {
	s.Ball = &Ball{Position: position, Velocity: velocity}
}

// Leave switches the game off when its initiator leaves. It reports whether
// anything changed.
func (s *Soccer) Leave(sessionID string) bool {
	if !s.Active || s.InitiatorID != sessionID {
		return false
	}
	s.Active = false
	s.Ball = nil
	return true
}
