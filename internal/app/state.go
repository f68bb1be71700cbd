package app

import (
	"context"
	"net/url"
	"sync"

	"go.uber.org/zap"

	"github.com/tradercopilot/swingdash/internal/backend"
	"github.com/tradercopilot/swingdash/internal/core"
	"github.com/tradercopilot/swingdash/internal/entitlement"
	"github.com/tradercopilot/swingdash/internal/profile"
	"github.com/tradercopilot/swingdash/internal/session"
)

// State holds the signed-in session with its user and entitlements. One
// State exists per browser session or CLI invocation; nothing is global.
type State struct {
	session *session.Session
	fetcher *profile.Fetcher
	nav     profile.Navigator
	logger  *zap.Logger

	mu           sync.RWMutex
	user         *core.User
	entitlements *core.Entitlements
	loading      bool
	errMsg       string
}

// NewState creates a state container over a session.
func NewState(sess *session.Session, b profile.Backend, nav profile.Navigator, logger *zap.Logger) *State {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &State{
		session: sess,
		fetcher: profile.NewFetcher(b, sess, nav, logger),
		nav:     nav,
		logger:  logger,
	}
}

// Session returns the underlying session.
func (s *State) Session() *session.Session { return s.session }

// Restore loads the profile when a stored token exists. It does nothing
// without a session.
func (s *State) Restore(ctx context.Context, location *url.URL) error {
	if !s.session.Exists(ctx) {
		return nil
	}
	_, err := s.load(ctx, location)
	return err
}

// LoginWithToken stores a freshly issued token, loads the profile and
// navigates to the dashboard unless loading already navigated elsewhere.
func (s *State) LoginWithToken(ctx context.Context, token string) error {
	if err := s.session.Set(ctx, token); err != nil {
		return err
	}
	p, err := s.load(ctx, nil)
	if backend.IsAuth(err) {
		return err
	}
	if p == nil || p.Redirect == "" {
		s.nav.Push(profile.PathDashboard)
	}
	return err
}

// Logout clears the session and profile and navigates to login.
func (s *State) Logout(ctx context.Context) error {
	err := s.session.Clear(ctx)
	s.reset()
	s.nav.Push(profile.PathLogin)
	return err
}

// Refresh reloads the profile. It is a no-op without a session.
func (s *State) Refresh(ctx context.Context) error {
	return s.Restore(ctx, nil)
}

func (s *State) load(ctx context.Context, location *url.URL) (*profile.Profile, error) {
	s.mu.Lock()
	s.loading = true
	s.errMsg = ""
	s.mu.Unlock()

	p, err := s.fetcher.Load(ctx, location)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false
	switch {
	case err == nil:
		s.user = p.User
		s.entitlements = p.Entitlements
	case backend.IsAuth(err):
		s.user = nil
		s.entitlements = nil
	default:
		s.errMsg = profile.ErrorMessage(err)
		s.logger.Warn("profile load failed", zap.Error(err))
	}
	return p, err
}

func (s *State) reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = nil
	s.entitlements = nil
	s.errMsg = ""
	s.loading = false
}

// User returns the loaded user, or nil.
func (s *State) User() *core.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user
}

// Entitlements returns the loaded entitlements, or nil.
func (s *State) Entitlements() *core.Entitlements {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.entitlements
}

// Loading reports whether a profile load is in flight.
func (s *State) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// Error returns the message of the last failed load, or "".
func (s *State) Error() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.errMsg
}

// Resolver returns access predicates over the current profile.
func (s *State) Resolver() entitlement.Resolver {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return entitlement.New(s.user, s.entitlements)
}
