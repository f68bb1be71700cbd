// internal/api/handler/web/strategies.go
package web

import (
	"context"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/tradercopilot/swingdash/internal/backend"
	"github.com/tradercopilot/swingdash/internal/core"
	"github.com/tradercopilot/swingdash/internal/performance"
)

const strategiesPath = "/dashboard/strategies"

// StrategiesData holds data for the strategies template
type StrategiesData struct {
	Offerings  []core.StrategyOffering
	Locked     []core.StrategyOffering
	Timeframes []core.Timeframe
	HistoryID  string
	History    []performance.Row
	HistoryErr string
}

// Strategies renders the marketplace. Offerings outside the plan render
// locked. A "history" query parameter adds that strategy's signals.
func (h *Handler) Strategies(w http.ResponseWriter, r *http.Request) {
	c := h.client(r)
	m, err := c.Marketplace(r.Context())
	if err != nil {
		h.failPage(w, r, "Strategies", err)
		return
	}

	data := StrategiesData{
		Offerings:  m.Offerings,
		Locked:     m.LockedOfferings,
		Timeframes: core.Timeframes,
	}
	if id := r.URL.Query().Get("history"); id != "" {
		data.HistoryID = id
		if _, err := findOffering(m, id); err != nil {
			data.HistoryErr = userMessage(err)
		} else if signals, err := c.StrategyHistory(r.Context(), id); err != nil {
			data.HistoryErr = backend.Message(err)
		} else {
			data.History = performance.Rows(signals, h.resolver(r))
		}
	}

	p := h.page(w, r, "Strategies", "strategies")
	p.Data = data
	h.render(w, http.StatusOK, "strategies.html", p)
}

// findOffering returns the unlocked offering id. Locked offerings and
// unknown ids are refused.
func findOffering(m *core.Marketplace, id string) (*core.StrategyOffering, error) {
	for i := range m.Offerings {
		if m.Offerings[i].ID == id {
			return &m.Offerings[i], nil
		}
	}
	for _, o := range m.LockedOfferings {
		if o.ID == id {
			return nil, core.WrapError(core.ErrLocked, fmt.Errorf("strategy %s", id))
		}
	}
	return nil, core.WrapError(core.ErrNotFound, fmt.Errorf("strategy %s", id))
}

func (h *Handler) unlockedOffering(ctx context.Context, c *backend.Client, id string) (*core.StrategyOffering, error) {
	m, err := c.Marketplace(ctx)
	if err != nil {
		return nil, err
	}
	o, err := findOffering(m, id)
	h.gate("strategy", err)
	return o, err
}

// ToggleStrategy enables or disables an offering after re-checking that
// the plan still covers it.
func (h *Handler) ToggleStrategy(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	c := h.client(r)
	if _, err := h.unlockedOffering(r.Context(), c, id); err != nil {
		h.fail(w, r, strategiesPath, err)
		return
	}

	enabled, err := c.ToggleStrategy(r.Context(), id)
	if err != nil {
		h.fail(w, r, strategiesPath, err)
		return
	}
	h.logger.Info("strategy toggled", zap.String("id", id), zap.Bool("enabled", enabled))
	if enabled {
		setFlash(w, "Strategy enabled")
	} else {
		setFlash(w, "Strategy disabled")
	}
	http.Redirect(w, r, strategiesPath, http.StatusSeeOther)
}

// UpdateStrategy changes the timeframe an offering trades on.
func (h *Handler) UpdateStrategy(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	tf := r.PostFormValue("timeframe")
	res := h.resolver(r)
	if err := res.RequireTimeframe(tf); !h.gate("timeframe", err) {
		h.fail(w, r, strategiesPath, err)
		return
	}

	c := h.client(r)
	if _, err := h.unlockedOffering(r.Context(), c, id); err != nil {
		h.fail(w, r, strategiesPath, err)
		return
	}
	if err := c.UpdateStrategy(r.Context(), id, backend.StrategyUpdate{Timeframe: tf}); err != nil {
		h.fail(w, r, strategiesPath, err)
		return
	}
	setFlash(w, "Strategy updated")
	http.Redirect(w, r, strategiesPath, http.StatusSeeOther)
}
