// Package performance aggregates signal history on the client side.
package performance

import (
	"sort"
	"strings"
	"time"

	"github.com/tradercopilot/swingdash/internal/core"
	"github.com/tradercopilot/swingdash/internal/entitlement"
)

// All is the wildcard filter value.
const All = "ALL"

// Filter narrows a signal list. Empty or "ALL" fields match everything.
type Filter struct {
	Token     string
	Direction string
}

func (f Filter) matches(s core.Signal) bool {
	if t := strings.ToUpper(f.Token); t != "" && t != All && core.BaseToken(t) != s.Token {
		return false
	}
	if d := strings.ToUpper(f.Direction); d != "" && d != All && core.Direction(d) != s.Direction {
		return false
	}
	return true
}

// Apply returns the signals matching f, in input order.
func Apply(signals []core.Signal, f Filter) []core.Signal {
	out := make([]core.Signal, 0, len(signals))
	for _, s := range signals {
		if f.matches(s) {
			out = append(out, s)
		}
	}
	return out
}

// Split separates open positions from finished ones. NEUTRAL signals never
// count as open.
type Split struct {
	Active []core.Signal
	Closed []core.Signal
}

// SplitSignals partitions signals into active and closed.
func SplitSignals(signals []core.Signal) Split {
	var sp Split
	for _, s := range signals {
		switch {
		case s.Status == core.StatusActive && s.Direction != core.DirectionNeutral:
			sp.Active = append(sp.Active, s)
		case s.Status == core.StatusClosed || s.Direction == core.DirectionNeutral:
			sp.Closed = append(sp.Closed, s)
		}
	}
	return sp
}

// Stats summarizes a signal list.
type Stats struct {
	Total       int
	Active      int
	Closed      int
	Wins        int
	Losses      int
	WinRate     float64 // percent of closed signals with positive P&L
	TotalPnL    float64
	AvgPnL      float64
	MaxDrawdown float64 // largest peak-to-trough fall of cumulative P&L
}

// Calculate computes statistics over signals.
func Calculate(signals []core.Signal) Stats {
	sp := SplitSignals(signals)
	st := Stats{
		Total:  len(signals),
		Active: len(sp.Active),
		Closed: len(sp.Closed),
	}
	if st.Closed == 0 {
		return st
	}

	closed := append([]core.Signal(nil), sp.Closed...)
	sort.SliceStable(closed, func(i, j int) bool {
		return closed[i].Timestamp.Before(closed[j].Timestamp)
	})

	var cumulative, peak float64
	for _, s := range closed {
		if s.IsWin() {
			st.Wins++
		} else if s.PnL != nil && *s.PnL < 0 {
			st.Losses++
		}
		if s.PnL != nil {
			st.TotalPnL += *s.PnL
			cumulative += *s.PnL
		}
		if cumulative > peak {
			peak = cumulative
		}
		if dd := peak - cumulative; dd > st.MaxDrawdown {
			st.MaxDrawdown = dd
		}
	}
	st.WinRate = float64(st.Wins) / float64(st.Closed) * 100
	st.AvgPnL = st.TotalPnL / float64(st.Closed)
	return st
}

// WithinHistory keeps signals newer than days before now. Signals without
// a timestamp are kept. days <= 0 keeps everything.
func WithinHistory(signals []core.Signal, days int, now time.Time) []core.Signal {
	if days <= 0 {
		return signals
	}
	cutoff := now.AddDate(0, 0, -days)
	out := make([]core.Signal, 0, len(signals))
	for _, s := range signals {
		if s.Timestamp.IsZero() || !s.Timestamp.Before(cutoff) {
			out = append(out, s)
		}
	}
	return out
}

// Row is a signal with its render mode.
type Row struct {
	core.Signal
	Mode entitlement.Mode
}

// Locked reports whether the row renders locked.
func (r Row) Locked() bool { return r.Mode == entitlement.ModeLocked }

// Rows pairs each signal with its render mode for the resolver.
func Rows(signals []core.Signal, r entitlement.Resolver) []Row {
	rows := make([]Row, len(signals))
	for i, s := range signals {
		rows[i] = Row{Signal: s, Mode: r.SignalMode(s)}
	}
	return rows
}

// Unlocked returns only the signals the resolver grants.
func Unlocked(signals []core.Signal, r entitlement.Resolver) []core.Signal {
	out := make([]core.Signal, 0, len(signals))
	for _, s := range signals {
		if r.CanAccessSignal(s) {
			out = append(out, s)
		}
	}
	return out
}

// DailyChart counts wins and losses of closed signals per UTC day, oldest first.
func DailyChart(signals []core.Signal) []core.ChartPoint {
	byDay := map[string]*core.ChartPoint{}
	for _, s := range SplitSignals(signals).Closed {
		if s.Timestamp.IsZero() || s.PnL == nil {
			continue
		}
		day := s.Timestamp.UTC().Format("2006-01-02")
		p, ok := byDay[day]
		if !ok {
			p = &core.ChartPoint{Date: day}
			byDay[day] = p
		}
		if *s.PnL > 0 {
			p.Wins++
		} else if *s.PnL < 0 {
			p.Losses++
		}
	}
	out := make([]core.ChartPoint, 0, len(byDay))
	for _, p := range byDay {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}
