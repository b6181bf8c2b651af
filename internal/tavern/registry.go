package tavern

import (
	"errors"
	"sort"
)

var ErrSessionNotFound = errors.New("session not found")

// Registry maps session ids to live sessions. It keeps join order so that a
// newcomer rebuilds the room in the order players arrived.
type Registry struct {
	sessions map[string]*Session
	seq      map[string]uint64
	next     uint64
}

func NewRegistry() *Registry {
	return &Registry{
		sessions: make(map[string]*Session),
		seq:      make(map[string]uint64),
	}
}

// Add stores a session. Adding an id twice replaces the record but keeps its
// original join position.
func (r *Registry) Add(s *Session) {
	if _, exists := r.seq[s.ID]; !exists {
		r.next++
		r.seq[s.ID] = r.next
	}
	r.sessions[s.ID] = s
}

func (r *Registry) Get(id string) (*Session, error) {
	s, ok := r.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

// Remove drops the session and returns it, or nil if it was unknown.
func (r *Registry) Remove(id string) *Session {
	s, ok := r.sessions[id]
	if !ok {
		return nil
	}
	delete(r.sessions, id)
	delete(r.seq, id)
	return s
}

func (r *Registry) Len() int {
	return len(r.sessions)
}

// All returns every session in join order.
func (r *Registry) All() []*Session {
	all := make([]*Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		all = append(all, s)
	}
	sort.Slice(all, func(i, j int) bool {
		return r.seq[all[i].ID] < r.seq[all[j].ID]
	})
	return all
}
