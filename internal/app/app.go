// Package app wires configuration into the collaborators shared by the
// dashboard server and the CLI, and holds the per-session State container.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/tradercopilot/swingdash/internal/api/job"
	"github.com/tradercopilot/swingdash/internal/backend"
	"github.com/tradercopilot/swingdash/internal/config"
	"github.com/tradercopilot/swingdash/internal/core"
	"github.com/tradercopilot/swingdash/internal/metrics"
	"github.com/tradercopilot/swingdash/internal/notifier/telegram"
	"github.com/tradercopilot/swingdash/internal/profile"
	"github.com/tradercopilot/swingdash/internal/scan"
	"github.com/tradercopilot/swingdash/internal/session"
	"github.com/tradercopilot/swingdash/internal/storage/archive"
)

// App is the main application orchestrator
type App struct {
	cfg      *config.Config
	logger   *zap.Logger
	metrics  *metrics.Registry
	client   *backend.Client
	keyspace session.Keyspace
	archive  archive.Storage
	telegram *telegram.Telegram
	jobs     *job.Store
	pro      *scan.ProRunner
	closers  []func() error
}

// New builds the application from configuration. The Redis keyspace is
// pinged during construction.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg == nil {
		cfg = config.Defaults()
	}

	a := &App{
		cfg:     cfg,
		logger:  logger,
		metrics: metrics.NewRegistry(),
	}

	a.client = backend.New(cfg.Backend.BaseURL,
		backend.WithDefaultTimeout(cfg.Backend.Timeout),
		backend.WithLongTimeout(cfg.Backend.ProTimeout),
		backend.WithObserver(a.metrics),
		backend.WithLogger(logger.Named("backend")),
	)

	switch cfg.Session.Store {
	case "redis":
		ks, err := session.NewRedisKeyspace(ctx, session.RedisOptions{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return nil, fmt.Errorf("connecting session keyspace: %w", err)
		}
		a.keyspace = ks
		a.closers = append(a.closers, ks.Close)
	default:
		a.keyspace = session.NewMemoryKeyspace()
	}

	store, err := newArchive(cfg.Archive)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.archive = store

	tgOpts := []telegram.Option{telegram.WithLogger(logger.Named("telegram"))}
	if cfg.Telegram.BaseURL != "" {
		tgOpts = append(tgOpts, telegram.WithBaseURL(cfg.Telegram.BaseURL))
	}
	a.telegram = telegram.New(cfg.Telegram.BotToken, tgOpts...)

	a.jobs = job.NewStore(cfg.Server.MaxJobs, cfg.Server.JobTTL)
	a.pro = scan.NewProRunner(a.jobs, a.archive, logger.Named("scan"), scan.WithRecorder(a.metrics))

	logger.Info("application initialized",
		zap.String("backend", a.client.BaseURL()),
		zap.String("session_store", cfg.Session.Store),
		zap.String("archive", cfg.Archive.Type),
		zap.Bool("telegram", a.telegram.Enabled()),
	)
	return a, nil
}

func newArchive(cfg config.ArchiveConfig) (archive.Storage, error) {
	switch cfg.Type {
	case "localfs":
		fs, err := archive.NewLocalFS(cfg.Path)
		if err != nil {
			return nil, core.WrapError(core.ErrArchiveFailed, err)
		}
		return fs, nil
	case "s3":
		s3, err := archive.NewS3(archive.S3Config{
			Bucket:    cfg.S3.Bucket,
			Endpoint:  cfg.S3.Endpoint,
			Region:    cfg.S3.Region,
			AccessKey: cfg.S3.AccessKey,
			SecretKey: cfg.S3.SecretKey,
			Prefix:    cfg.S3.Prefix,
		})
		if err != nil {
			return nil, err
		}
		return s3, nil
	default:
		return nil, nil
	}
}

// Config returns the loaded configuration.
func (a *App) Config() *config.Config { return a.cfg }

// Logger returns the root logger.
func (a *App) Logger() *zap.Logger { return a.logger }

// Metrics returns the Prometheus registry.
func (a *App) Metrics() *metrics.Registry { return a.metrics }

// Keyspace returns the dashboard session keyspace.
func (a *App) Keyspace() session.Keyspace { return a.keyspace }

// Archive returns the report archive, or nil when archiving is disabled.
func (a *App) Archive() archive.Storage { return a.archive }

// Telegram returns the alert notifier. It may be disabled.
func (a *App) Telegram() *telegram.Telegram { return a.telegram }

// Jobs returns the PRO job store.
func (a *App) Jobs() *job.Store { return a.jobs }

// Pro returns the PRO report runner.
func (a *App) Pro() *scan.ProRunner { return a.pro }

// OwnerEmails lists accounts granted the admin console.
func (a *App) OwnerEmails() []string { return a.cfg.Admin.OwnerEmails }

// Client returns a backend client authorized by ts.
func (a *App) Client(ts backend.TokenSource) *backend.Client {
	return a.client.WithTokens(ts)
}

// RequestSession returns the dashboard session of one HTTP request.
func (a *App) RequestSession(w http.ResponseWriter, r *http.Request) *session.Session {
	return session.ForRequest(w, r, a.keyspace,
		session.WithTTL(a.cfg.Session.TTL),
		session.WithLogger(a.logger.Named("session")))
}

// RequestState builds the state container for one dashboard request.
func (a *App) RequestState(w http.ResponseWriter, r *http.Request, nav profile.Navigator) *State {
	sess := a.RequestSession(w, r)
	return NewState(sess, a.Client(sess), nav, a.logger)
}

// CLIState builds the state container for a CLI invocation, persisting the
// token to the configured session files.
func (a *App) CLIState(nav profile.Navigator) (*State, error) {
	tokenFile, cookieFile, err := SessionPaths(a.cfg.Session)
	if err != nil {
		return nil, err
	}
	sess := session.New(
		session.NewFileStore(tokenFile),
		session.NewCookieFile(cookieFile, true),
		session.WithTTL(a.cfg.Session.TTL),
		session.WithLogger(a.logger.Named("session")),
	)
	return NewState(sess, a.Client(sess), nav, a.logger), nil
}

// SessionPaths resolves the CLI session files, defaulting to the user
// config directory.
func SessionPaths(cfg config.SessionConfig) (tokenFile, cookieFile string, err error) {
	tokenFile, cookieFile = cfg.TokenFile, cfg.CookieFile
	if tokenFile != "" && cookieFile != "" {
		return tokenFile, cookieFile, nil
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", "", fmt.Errorf("locating config dir: %w", err)
	}
	dir = filepath.Join(dir, "swingdash")
	if tokenFile == "" {
		tokenFile = filepath.Join(dir, "session.json")
	}
	if cookieFile == "" {
		cookieFile = filepath.Join(dir, "cookies.txt")
	}
	return tokenFile, cookieFile, nil
}

// Shutdown waits for running PRO jobs, bounded by ctx, and releases
// connections.
func (a *App) Shutdown(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		a.pro.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		a.logger.Warn("shutdown before pro jobs finished")
	}
	return a.Close()
}

// Close releases connections held by the application.
func (a *App) Close() error {
	var errs []error
	for _, c := range a.closers {
		errs = append(errs, c())
	}
	a.closers = nil
	return errors.Join(errs...)
}

var errArchiveDisabled = errors.New("archive is disabled")

// ShutdownTimeout bounds graceful shutdown.
const ShutdownTimeout = 15 * time.Second
