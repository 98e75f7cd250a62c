package config

import "sync"

// Store holds the live controls and render toggles. The settings watcher
// writes from its own goroutine while the frame loop reads a snapshot per
// tick.
type Store struct {
	mu        sync.RWMutex
	controls  Controls
	wireframe bool
	profiling bool
}

// NewStore returns a store seeded with c.
func NewStore(c Controls) *Store {
	return &Store{controls: c}
}

// Controls returns a snapshot of the current controls.
func (s *Store) Controls() Controls {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.controls
}

// SetControls replaces the controls if c validates.
func (s *Store) SetControls(c Controls) error {
	if err := c.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.controls = c
	return nil
}

// Update applies fn to a copy of the controls and stores the result if it
// validates.
func (s *Store) Update(fn func(*Controls)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.controls
	fn(&next)
	if err := next.Validate(); err != nil {
		return err
	}
	s.controls = next
	return nil
}

// Wireframe reports whether the terrain is drawn as lines.
func (s *Store) Wireframe() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.wireframe
}

// ToggleWireframe flips the wireframe mode and returns the new value.
func (s *Store) ToggleWireframe() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.wireframe = !s.wireframe
	return s.wireframe
}

// Profiling reports whether per-frame timings are logged.
func (s *Store) Profiling() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.profiling
}

// ToggleProfiling flips profiling output and returns the new value.
func (s *Store) ToggleProfiling() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiling = !s.profiling
	return s.profiling
}
