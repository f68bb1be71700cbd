package profile

import "sync"

// Well-known destinations.
const (
	PathDashboard    = "/dashboard"
	PathTrialExpired = "/trial-expired"
	PathLogin        = "/auth/login"
)

// Navigator moves the user to another view. Replace drops the current
// location from history; Push keeps it.
type Navigator interface {
	Push(path string)
	Replace(path string)
}

// Navigation is one recorded move.
type Navigation struct {
	Path    string
	Replace bool
}

// Recorder is a Navigator that remembers every move. HTTP handlers turn the
// last move into a redirect; tests inspect the history.
type Recorder struct {
	mu      sync.Mutex
	history []Navigation
}

func (r *Recorder) Push(path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.history = append(r.history, Navigation{Path: path})
}

func (r *Recorder) Replace(path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.history = append(r.history, Navigation{Path: path, Replace: true})
}

// Last returns the most recent move and whether there was one.
func (r *Recorder) Last() (Navigation, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.history) == 0 {
		return Navigation{}, false
	}
	return r.history[len(r.history)-1], true
}

// History returns a copy of all moves in order.
func (r *Recorder) History() []Navigation {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Navigation(nil), r.history...)
}

// Len returns the number of recorded moves.
func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.history)
}
