package authgate

import "sync"

// State is the process-wide "credential established" flag. The zero value is
// ready to use and reports false. Writes are serialized so a success write
// cannot interleave with a failure clear; the last writer wins.
type State struct {
	mu         sync.Mutex
	authorized bool
}

// Authorized reports whether a usable credential has been established.
func (s *State) Authorized() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.authorized
}

// Set marks the credential as established.
func (s *State) Set() {
	s.mu.Lock()
	s.authorized = true
	s.mu.Unlock()
}

// Clear resets the flag after the remote service rejected the credential.
func (s *State) Clear() {
	s.mu.Lock()
	s.authorized = false
	s.mu.Unlock()
}
