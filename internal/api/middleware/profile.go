package middleware

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/tradercopilot/swingdash/internal/app"
	"github.com/tradercopilot/swingdash/internal/profile"
)

type stateKey struct{}

// StateLoader builds the per-request state container.
type StateLoader interface {
	RequestState(w http.ResponseWriter, r *http.Request, nav profile.Navigator) *app.State
}

// WithState attaches a state container to ctx.
func WithState(ctx context.Context, st *app.State) context.Context {
	return context.WithValue(ctx, stateKey{}, st)
}

// StateFrom returns the state attached by Profile, or nil.
func StateFrom(ctx context.Context) *app.State {
	st, _ := ctx.Value(stateKey{}).(*app.State)
	return st
}

// Redirect issues a 302 for GET and HEAD and a 303 otherwise, so form
// posts land on a GET.
func Redirect(w http.ResponseWriter, r *http.Request, path string) {
	code := http.StatusSeeOther
	if r.Method == http.MethodGet || r.Method == http.MethodHead {
		code = http.StatusFound
	}
	http.Redirect(w, r, path, code)
}

// Profile loads the signed-in profile for each request. Navigation decided
// by the profile fetcher (trial expiry, billing reconciliation, expired
// session) becomes an HTTP redirect. A transient load failure is passed
// through with the error recorded on the state.
func Profile(loader StateLoader, logger *zap.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			nav := &profile.Recorder{}
			st := loader.RequestState(w, r, nav)
			if err := st.Restore(r.Context(), r.URL); err != nil {
				logger.Debug("profile restore failed", zap.String("path", r.URL.Path), zap.Error(err))
			}

			if to, ok := nav.Last(); ok {
				Redirect(w, r, to.Path)
				return
			}
			if st.User() == nil && st.Error() == "" {
				Redirect(w, r, LoginURL(r.URL.Path))
				return
			}

			next.ServeHTTP(w, r.WithContext(WithState(r.Context(), st)))
		})
	}
}

// TrialGuard sends users whose trial has expired to the upgrade page.
func TrialGuard(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if st := StateFrom(r.Context()); st != nil && st.Resolver().IsTrialExpired() {
			Redirect(w, r, profile.PathTrialExpired)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// OptionalProfile loads the profile when a session exists but never
// redirects. Public pages such as pricing use it to show the current plan.
func OptionalProfile(loader StateLoader) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			st := loader.RequestState(w, r, &profile.Recorder{})
			_ = st.Restore(r.Context(), r.URL)
			next.ServeHTTP(w, r.WithContext(WithState(r.Context(), st)))
		})
	}
}
