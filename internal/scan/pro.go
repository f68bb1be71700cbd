package scan

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/tradercopilot/swingdash/internal/api/job"
	"github.com/tradercopilot/swingdash/internal/backend"
	"github.com/tradercopilot/swingdash/internal/core"
	"github.com/tradercopilot/swingdash/internal/entitlement"
	"github.com/tradercopilot/swingdash/internal/storage/archive"
)

// JobType labels PRO report jobs in the job store.
const JobType = "analysis.pro"

// DefaultLanguage is used when no report language is chosen.
const DefaultLanguage = "en"

// Languages the report generator accepts.
var Languages = []string{"en", "es"}

const proFailure = "Analysis failed. Ensure you have PRO access."

// Report is the result of a finished PRO job.
type Report struct {
	Token       core.Token `json:"token"`
	Language    string     `json:"language"`
	Filename    string     `json:"filename"`
	Markdown    string     `json:"markdown"`
	ArchivePath string     `json:"archive_path,omitempty"`
	GeneratedAt time.Time  `json:"generated_at"`
}

// Recorder receives scan outcomes, e.g. the metrics registry.
type Recorder interface {
	RecordScan(mode, status string)
	ProJobStarted()
	ProJobFinished()
}

type nopRecorder struct{}

func (nopRecorder) RecordScan(string, string) {}
func (nopRecorder) ProJobStarted()            {}
func (nopRecorder) ProJobFinished()           {}

// ProRunner runs PRO reports in the background and tracks them as jobs.
type ProRunner struct {
	jobs     *job.Store
	archive  archive.Storage
	recorder Recorder
	logger   *zap.Logger
	now      func() time.Time
	wg       sync.WaitGroup
}

// ProOption configures a ProRunner.
type ProOption func(*ProRunner)

// WithRecorder reports job outcomes to rec.
func WithRecorder(rec Recorder) ProOption {
	return func(p *ProRunner) {
		if rec != nil {
			p.recorder = rec
		}
	}
}

// NewProRunner creates a runner. store may be nil, in which case reports
// are only kept on the job.
func NewProRunner(jobs *job.Store, store archive.Storage, logger *zap.Logger, opts ...ProOption) *ProRunner {
	if logger == nil {
		logger = zap.NewNop()
	}
	p := &ProRunner{
		jobs:     jobs,
		archive:  store,
		recorder: nopRecorder{},
		logger:   logger,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// NormalizeLanguage returns a supported language code, defaulting to "en".
func NormalizeLanguage(lang string) string {
	lang = strings.ToLower(strings.TrimSpace(lang))
	for _, l := range Languages {
		if l == lang {
			return l
		}
	}
	return DefaultLanguage
}

// Owner identifies a user's jobs in the store.
func Owner(u *core.User) string {
	if u == nil {
		return ""
	}
	return strconv.FormatInt(u.ID, 10)
}

// Start validates access and queues a PRO report on a. The analysis
// outlives the caller's request; it is bounded by the backend client's long
// timeout, so a should carry the caller's token rather than read it lazily.
func (p *ProRunner) Start(ctx context.Context, a Analyzer, r entitlement.Resolver, token, language string) (*job.Job, error) {
	if r.User == nil {
		return nil, core.ErrNoSession
	}
	if err := r.RequirePro(); err != nil {
		return nil, err
	}
	if err := core.ValidateToken(token); err != nil {
		return nil, core.WrapError(core.ErrValidation, err)
	}
	if err := r.RequireToken(token); err != nil {
		return nil, err
	}

	t := core.BaseToken(token)
	lang := NormalizeLanguage(language)
	j := p.jobs.Create(JobType, Owner(r.User))

	p.wg.Add(1)
	p.recorder.ProJobStarted()
	go func() {
		defer p.wg.Done()
		defer p.recorder.ProJobFinished()
		p.run(context.WithoutCancel(ctx), a, j.ID, r.User.ID, t, lang)
	}()
	return j, nil
}

func (p *ProRunner) run(ctx context.Context, a Analyzer, id string, userID int64, token core.Token, lang string) {
	log := p.logger.With(zap.String("job_id", id), zap.String("token", string(token)))
	_ = p.jobs.Start(id)

	res, err := a.AnalyzePro(ctx, backend.ProRequest{
		Token:     string(token),
		Timeframe: string(core.Timeframe4H),
		Language:  lang,
	})
	if err != nil {
		log.Warn("pro analysis failed", zap.Error(err))
		p.recorder.RecordScan("pro", "failed")
		_ = p.jobs.Fail(id, failureMessage(err))
		return
	}

	now := p.now()
	rep := Report{
		Token:       token,
		Language:    lang,
		Filename:    archive.ReportFilename(token, now),
		Markdown:    res.Markdown(),
		GeneratedAt: now.UTC(),
	}
	if p.archive != nil {
		path, err := archive.SaveReport(ctx, p.archive, userID, rep.Filename, rep.Markdown)
		if err != nil {
			log.Error("archiving report", zap.Error(err))
		} else {
			rep.ArchivePath = path
		}
	}

	p.recorder.RecordScan("pro", "ok")
	log.Info("pro analysis complete", zap.String("filename", rep.Filename))
	_ = p.jobs.Complete(id, rep)
}

// Report returns the finished report of a job owned by owner.
func (p *ProRunner) Report(owner, id string) (*job.Job, *Report, error) {
	j, err := p.jobs.Get(id, owner)
	if err != nil {
		return nil, nil, err
	}
	rep, ok := j.Result.(Report)
	if !ok {
		return j, nil, nil
	}
	return j, &rep, nil
}

// Wait blocks until every started job has finished.
func (p *ProRunner) Wait() {
	p.wg.Wait()
}

func failureMessage(err error) string {
	switch {
	case backend.IsTimeout(err):
		return backend.Message(err)
	case backend.IsAccess(err):
		return proFailure
	}
	var api *backend.APIError
	if errors.As(err, &api) && api.Message != "" {
		return fmt.Sprintf("%s (%s)", proFailure, api.Message)
	}
	return proFailure
}
