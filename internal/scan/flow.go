// Package scan drives the analysis dialogs: the LITE scan state machine and
// the PRO report jobs.
package scan

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/tradercopilot/swingdash/internal/backend"
	"github.com/tradercopilot/swingdash/internal/core"
	"github.com/tradercopilot/swingdash/internal/entitlement"
)

// Phase is the state of a scan dialog.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseSelecting
	PhaseSubmitting
	PhaseResult
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseSelecting:
		return "selecting"
	case PhaseSubmitting:
		return "submitting"
	case PhaseResult:
		return "result"
	case PhaseFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// ErrBusy is returned when a scan is already in flight.
var ErrBusy = errors.New("scan already in progress")

// Analyzer is the part of the backend the scan dialogs talk to.
type Analyzer interface {
	AnalyzeLite(ctx context.Context, token, timeframe, message string) (*backend.LiteAnalysis, error)
	AnalyzePro(ctx context.Context, req backend.ProRequest) (*backend.ProAnalysis, error)
}

// Flow is a LITE scan dialog. Selection and submission both re-check the
// resolver so a locked token never reaches the backend.
type Flow struct {
	mu        sync.Mutex
	resolver  entitlement.Resolver
	analyzer  Analyzer
	now       func() time.Time
	phase     Phase
	token     core.Token
	timeframe core.Timeframe
	result    *core.Signal
	err       error
}

// NewFlow returns an idle dialog with BTC 4H preselected.
func NewFlow(r entitlement.Resolver, a Analyzer) *Flow {
	return &Flow{
		resolver:  r,
		analyzer:  a,
		now:       time.Now,
		token:     core.TokenBTC,
		timeframe: core.Timeframe4H,
	}
}

// Open moves an idle dialog to selection.
func (f *Flow) Open() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.phase == PhaseIdle {
		f.phase = PhaseSelecting
	}
}

// Select picks a token and timeframe. Locked choices are refused and the
// previous selection is kept.
func (f *Flow) Select(token, timeframe string) error {
	if err := f.check(token, timeframe); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.phase == PhaseSubmitting {
		return ErrBusy
	}
	f.token = core.BaseToken(token)
	f.timeframe = core.ParseTimeframe(timeframe)
	f.phase = PhaseSelecting
	return nil
}

// Submit runs the scan for the current selection.
func (f *Flow) Submit(ctx context.Context, message string) (*core.Signal, error) {
	f.mu.Lock()
	if f.phase == PhaseSubmitting {
		f.mu.Unlock()
		return nil, ErrBusy
	}
	token, tf := f.token, f.timeframe
	if err := f.check(string(token), string(tf)); err != nil {
		f.mu.Unlock()
		return nil, err
	}
	f.phase = PhaseSubmitting
	f.result, f.err = nil, nil
	f.mu.Unlock()

	res, err := f.analyzer.AnalyzeLite(ctx, string(token), string(tf), message)

	f.mu.Lock()
	defer f.mu.Unlock()
	if err != nil {
		f.phase = PhaseFailed
		f.err = err
		return nil, err
	}
	sig := res.ToSignal(f.now())
	f.phase = PhaseResult
	f.result = &sig
	return &sig, nil
}

// Reset clears the result and returns to selection.
func (f *Flow) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.phase = PhaseSelecting
	f.result = nil
	f.err = nil
}

func (f *Flow) check(token, timeframe string) error {
	if err := f.resolver.RequireToken(token); err != nil {
		return err
	}
	return f.resolver.RequireTimeframe(timeframe)
}

// Phase returns the current state.
func (f *Flow) Phase() Phase {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.phase
}

// Selection returns the selected token and timeframe.
func (f *Flow) Selection() (core.Token, core.Timeframe) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.token, f.timeframe
}

// Result returns the last scan result, if any.
func (f *Flow) Result() *core.Signal {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.result
}

// Err returns the last failure.
func (f *Flow) Err() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.err
}

// Watchlist returns near-miss setups for a NEUTRAL result.
func (f *Flow) Watchlist() []core.WatchItem {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.result == nil || f.result.Direction != core.DirectionNeutral {
		return nil
	}
	return f.result.Watchlist
}

// Tokens lists the catalog with each token's lock state.
func (f *Flow) Tokens() []Choice {
	out := make([]Choice, 0, len(core.Tokens))
	for _, t := range core.Tokens {
		out = append(out, Choice{Value: string(t), Locked: !f.resolver.CanAccessToken(string(t))})
	}
	return out
}

// Timeframes lists the catalog with each timeframe's lock state.
func (f *Flow) Timeframes() []Choice {
	out := make([]Choice, 0, len(core.Timeframes))
	for _, tf := range core.Timeframes {
		out = append(out, Choice{Value: string(tf), Locked: !f.resolver.CanAccessTimeframe(string(tf))})
	}
	return out
}

// Choice is a selectable option in the dialog.
type Choice struct {
	Value  string `json:"value"`
	Locked bool   `json:"locked"`
}
