// internal/api/handler/web/signals.go
package web

import (
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/tradercopilot/swingdash/internal/api/middleware"
	"github.com/tradercopilot/swingdash/internal/backend"
	"github.com/tradercopilot/swingdash/internal/core"
	"github.com/tradercopilot/swingdash/internal/performance"
)

const (
	signalsPath  = "/dashboard/signals"
	signalsLimit = 100
)

// SignalsData holds data for the signals template
type SignalsData struct {
	Token       string
	Direction   string
	SavedOnly   bool
	HistoryDays int
	Active      []performance.Row
	Closed      []performance.Row
	Stats       performance.Stats
	Tokens      []core.Token
}

// Signals renders the signal history within the plan's history window.
// Rows the plan does not cover render locked.
func (h *Handler) Signals(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	savedOnly := q.Get("saved") == "1"
	filter := performance.Filter{
		Token:     strings.ToUpper(q.Get("token")),
		Direction: strings.ToUpper(q.Get("type")),
	}

	all, err := h.client(r).RecentLogs(r.Context(), backend.LogsQuery{
		Limit:     signalsLimit,
		SavedOnly: savedOnly,
	})
	if err != nil {
		h.failPage(w, r, "Signals", err)
		return
	}

	res := h.resolver(r)
	signals := performance.WithinHistory(all, res.HistoryDays(), h.now())
	signals = performance.Apply(signals, filter)
	split := performance.SplitSignals(signals)

	p := h.page(w, r, "Signals", "signals")
	p.Data = SignalsData{
		Token:       orAll(filter.Token),
		Direction:   orAll(filter.Direction),
		SavedOnly:   savedOnly,
		HistoryDays: res.HistoryDays(),
		Active:      performance.Rows(split.Active, res),
		Closed:      performance.Rows(split.Closed, res),
		Stats:       performance.Calculate(performance.Unlocked(signals, res)),
		Tokens:      core.Tokens,
	}
	h.render(w, http.StatusOK, "signals.html", p)
}

// accessibleSignal fetches a signal and checks the plan covers it.
func (h *Handler) accessibleSignal(r *http.Request, id string) (*core.Signal, error) {
	sig, err := h.client(r).GetSignal(r.Context(), id)
	if err != nil {
		return nil, err
	}
	var locked error
	if !h.resolver(r).CanAccessSignal(*sig) {
		locked = core.WrapError(core.ErrLocked, fmt.Errorf("signal %s on %s", id, sig.Token))
	}
	if !h.gate("signal", locked) {
		return nil, locked
	}
	return sig, nil
}

// ToggleSave bookmarks or un-bookmarks a signal.
func (h *Handler) ToggleSave(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if _, err := h.accessibleSignal(r, id); err != nil {
		h.fail(w, r, signalsPath, err)
		return
	}
	saved, err := h.client(r).ToggleSave(r.Context(), id)
	if err != nil {
		h.fail(w, r, signalsPath, err)
		return
	}
	if saved {
		setFlash(w, "Signal saved")
	} else {
		setFlash(w, "Signal removed from saved")
	}
	redirectBack(w, r, signalsPath)
}

// DeleteSignal removes a signal.
func (h *Handler) DeleteSignal(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if _, err := h.accessibleSignal(r, id); err != nil {
		h.fail(w, r, signalsPath, err)
		return
	}
	if err := h.client(r).DeleteSignal(r.Context(), id); err != nil {
		h.fail(w, r, signalsPath, err)
		return
	}
	h.logger.Info("signal deleted", zap.String("id", id))
	setFlash(w, "Signal deleted")
	redirectBack(w, r, signalsPath)
}

// redirectBack returns to the referring dashboard page, or fallback.
func redirectBack(w http.ResponseWriter, r *http.Request, fallback string) {
	back := fallback
	if ref := r.PostFormValue("back"); ref != "" {
		back = middleware.SafeNext(ref)
	}
	http.Redirect(w, r, back, http.StatusSeeOther)
}
