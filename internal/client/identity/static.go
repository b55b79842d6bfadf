package identity

import "sync"

// Compile-time check that Static implements Provider
var _ Provider = (*Static)(nil)

// Static is a Provider whose viewer is set explicitly. Used by tests and by
// embedders that manage login themselves.
type Static struct {
	watchers watchers
	current  state
	mu       sync.Mutex
}

// NewStatic creates a provider with viewerID logged in, or nobody when empty.
func NewStatic(viewerID string) *Static {
	return &Static{
		current: state{viewerID: viewerID, ok: viewerID != ""},
	}
}

// Current returns the current viewer
func (s *Static) Current() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current.viewerID, s.current.ok
}

// Watch registers fn for viewer changes
func (s *Static) Watch(fn func(viewerID string, ok bool)) func() {
	return s.watchers.add(fn)
}

// Set logs viewerID in. An empty id is the same as Clear.
func (s *Static) Set(viewerID string) {
	s.update(state{viewerID: viewerID, ok: viewerID != ""})
}

// Clear logs the current viewer out
func (s *Static) Clear() {
	s.update(state{})
}

func (s *Static) update(next state) {
	s.mu.Lock()
	changed := s.current != next
	s.current = next
	s.mu.Unlock()

	if changed {
		s.watchers.notify(next)
	}
}
