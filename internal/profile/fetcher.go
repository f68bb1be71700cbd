package profile

import (
	"context"
	"errors"
	"net/url"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/tradercopilot/swingdash/internal/backend"
	"github.com/tradercopilot/swingdash/internal/core"
	"github.com/tradercopilot/swingdash/internal/session"
)

// Billing-success marker appended by the checkout return URL.
const (
	BillingParam   = "billing"
	BillingSuccess = "success"
)

// HasBillingMarker reports whether the location carries ?billing=success.
func HasBillingMarker(location *url.URL) bool {
	return location != nil && location.Query().Get(BillingParam) == BillingSuccess
}

// Backend is the subset of the REST client the fetcher needs.
type Backend interface {
	CurrentUser(ctx context.Context) (*core.User, error)
	Entitlements(ctx context.Context) (*core.Entitlements, error)
	SyncBilling(ctx context.Context) (*backend.BillingSyncResult, error)
}

// Profile is a user with the entitlements fetched alongside it.
type Profile struct {
	User         *core.User
	Entitlements *core.Entitlements
	// Redirect is where Load navigated, or "" when it stayed put.
	Redirect string
}

// Fetcher resolves the profile of the current session.
type Fetcher struct {
	backend Backend
	session *session.Session
	nav     Navigator
	logger  *zap.Logger
}

// NewFetcher creates a fetcher.
func NewFetcher(b Backend, s *session.Session, nav Navigator, logger *zap.Logger) *Fetcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Fetcher{backend: b, session: s, nav: nav, logger: logger}
}

// Load fetches user and entitlements concurrently. An expired trial goes to
// the trial-expired view, unless location carries the billing marker: then
// billing is synced once and the profile re-fetched before deciding.
//
// On an authentication failure the session is cleared, the user is sent to
// login and the returned error satisfies backend.IsAuth. Any other failure
// is returned wrapped in core.ErrProfileLoad with no side effects.
func (f *Fetcher) Load(ctx context.Context, location *url.URL) (*Profile, error) {
	p, err := f.fetch(ctx)
	if err != nil {
		return nil, f.fail(ctx, err)
	}

	if !p.expired() {
		return p, nil
	}
	if !HasBillingMarker(location) {
		f.push(p, PathTrialExpired)
		return p, nil
	}

	synced, err := f.reconcile(ctx)
	if err != nil {
		if backend.IsAuth(err) {
			return nil, f.fail(ctx, err)
		}
		f.logger.Warn("billing sync failed, keeping expired profile", zap.Error(err))
		f.push(p, PathTrialExpired)
		return p, nil
	}

	if synced.expired() {
		f.push(synced, PathTrialExpired)
	} else {
		// replace drops the billing marker so the sync never repeats
		f.nav.Replace(PathDashboard)
		synced.Redirect = PathDashboard
	}
	return synced, nil
}

// reconcile syncs billing, then re-fetches. The sync result is observed
// before the re-fetch is issued.
func (f *Fetcher) reconcile(ctx context.Context) (*Profile, error) {
	res, err := f.backend.SyncBilling(ctx)
	if err != nil {
		return nil, err
	}
	if res != nil {
		f.logger.Info("billing synced",
			zap.String("status", res.Status),
			zap.String("plan", res.Plan),
		)
	}
	return f.fetch(ctx)
}

func (f *Fetcher) fetch(ctx context.Context) (*Profile, error) {
	var p Profile
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		u, err := f.backend.CurrentUser(gctx)
		p.User = u
		return err
	})
	g.Go(func() error {
		e, err := f.backend.Entitlements(gctx)
		p.Entitlements = e
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &p, nil
}

func (f *Fetcher) fail(ctx context.Context, err error) error {
	if !backend.IsAuth(err) {
		return core.WrapError(core.ErrProfileLoad, err)
	}
	if cerr := f.session.Clear(ctx); cerr != nil {
		f.logger.Error("clear session after auth failure", zap.Error(cerr))
	}
	f.nav.Push(PathLogin)
	return err
}

func (f *Fetcher) push(p *Profile, path string) {
	f.nav.Push(path)
	p.Redirect = path
}

func (p *Profile) expired() bool {
	return p.Entitlements != nil && p.Entitlements.IsTrialExpired
}

// ErrorMessage returns the text shown for a failed load.
func ErrorMessage(err error) string {
	const fallback = "Failed to load user profile"
	if err == nil {
		return ""
	}
	var ce *core.Error
	if errors.As(err, &ce) {
		if ce.Cause != nil {
			if msg := backend.Message(ce.Cause); msg != "" {
				return msg
			}
		}
		return fallback
	}
	if msg := backend.Message(err); msg != "" {
		return msg
	}
	return fallback
}
