package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/tradercopilot/swingdash/internal/core"
)

// DefaultTTL is the lifetime of a stored token.
const DefaultTTL = 7 * 24 * time.Hour

// Session mirrors one bearer token into a primary store and a cookie store.
// Writes fan out to both under one lock; reads prefer the primary.
type Session struct {
	mu      sync.Mutex
	primary Store
	cookie  Store
	ttl     time.Duration
	logger  *zap.Logger
}

// Option configures a Session.
type Option func(*Session)

// WithTTL overrides DefaultTTL.
func WithTTL(ttl time.Duration) Option {
	return func(s *Session) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// WithLogger sets the logger used for fallback and rollback events.
func WithLogger(l *zap.Logger) Option {
	return func(s *Session) {
		if l != nil {
			s.logger = l
		}
	}
}

// New returns a session over the two backends.
func New(primary, cookie Store, opts ...Option) *Session {
	s := &Session{
		primary: primary,
		cookie:  cookie,
		ttl:     DefaultTTL,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Set stores the token in both backends. If the cookie write fails the
// primary write is undone so neither backend holds a token the other lacks.
func (s *Session) Set(ctx context.Context, token string) error {
	if token == "" {
		return core.WrapError(core.ErrSessionStore, errors.New("empty token"))
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	previous, _ := s.primary.Load(ctx)
	if err := s.primary.Save(ctx, token, s.ttl); err != nil {
		return core.WrapError(core.ErrSessionStore, err)
	}
	if err := s.cookie.Save(ctx, token, s.ttl); err != nil {
		var rollback error
		if previous != "" {
			rollback = s.primary.Save(ctx, previous, s.ttl)
		} else {
			rollback = s.primary.Remove(ctx)
		}
		if rollback != nil {
			s.logger.Warn("session rollback failed", zap.Error(rollback))
		}
		return core.WrapError(core.ErrSessionStore, err)
	}
	return nil
}

// Get returns the token, or "" when no session exists. A token found only
// in the cookie is copied back into the primary store.
func (s *Session) Get(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	token, err := s.primary.Load(ctx)
	if err != nil {
		s.logger.Warn("primary session store unreadable, trying cookie", zap.Error(err))
	}
	if token != "" {
		return token, nil
	}

	token, cerr := s.cookie.Load(ctx)
	if cerr != nil {
		return "", core.WrapError(core.ErrSessionStore, errors.Join(err, cerr))
	}
	if token == "" {
		return "", nil
	}
	if err := s.primary.Save(ctx, token, s.ttl); err != nil {
		s.logger.Warn("rehydrate primary session store", zap.Error(err))
	}
	return token, nil
}

// Token is Get without the error, for use as a bearer token source.
func (s *Session) Token(ctx context.Context) string {
	token, _ := s.Get(ctx)
	return token
}

// Clear removes the token from both backends. It is safe without a session.
func (s *Session) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := errors.Join(s.primary.Remove(ctx), s.cookie.Remove(ctx))
	if err != nil {
		return core.WrapError(core.ErrSessionStore, err)
	}
	return nil
}

// Exists reports whether a token is present in either backend.
func (s *Session) Exists(ctx context.Context) bool {
	return s.Token(ctx) != ""
}
