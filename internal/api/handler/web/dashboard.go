// internal/api/handler/web/dashboard.go
package web

import (
	"context"
	"net/http"
	"strings"

	"github.com/tradercopilot/swingdash/internal/async"
	"github.com/tradercopilot/swingdash/internal/backend"
	"github.com/tradercopilot/swingdash/internal/core"
	"github.com/tradercopilot/swingdash/internal/entitlement"
	"github.com/tradercopilot/swingdash/internal/performance"
)

const (
	recentLimit = 50
	newsLimit   = 5
)

// Section is a region of a page that loads on its own. Err holds the
// message shown when its fetch failed.
type Section[T any] struct {
	Data T
	Err  string
}

func section[T any](r *async.Resource[T]) Section[T] {
	s := Section[T]{Data: r.Value()}
	if err := r.Err(); err != nil {
		s.Err = backend.Message(err)
	}
	return s
}

// DashboardData holds data for the dashboard template
type DashboardData struct {
	Greeting  string
	Token     string
	Timeframe string
	Summary   Section[core.DashboardSummary]
	Chart     []core.ChartPoint
	Recent    Section[[]performance.Row]
	Market    Section[[]backend.Ticker]
	News      Section[[]backend.NewsItem]
	Telegram  entitlement.Mode
}

// Dashboard renders the overview. Stats, recent signals, market prices and
// news load concurrently; a failed region renders its own error.
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	c := h.client(r)
	res := h.resolver(r)

	var (
		g      async.Group
		stats  async.Resource[*core.DashboardStats]
		logs   async.Resource[[]core.Signal]
		market async.Resource[[]backend.Ticker]
		news   async.Resource[[]backend.NewsItem]
	)
	async.Fetch(ctx, &g, &stats, c.DashboardStats)
	async.Fetch(ctx, &g, &logs, func(ctx context.Context) ([]core.Signal, error) {
		return c.RecentLogs(ctx, backend.LogsQuery{Limit: recentLimit, IncludeSystem: true})
	})
	async.Fetch(ctx, &g, &market, func(ctx context.Context) ([]backend.Ticker, error) {
		return c.MarketSummary(ctx, tokenSymbols())
	})
	async.Fetch(ctx, &g, &news, func(ctx context.Context) ([]backend.NewsItem, error) {
		return c.News(ctx, newsLimit)
	})
	_ = g.Wait()

	for _, err := range []error{stats.Err(), logs.Err()} {
		if backend.IsAuth(err) {
			h.fail(w, r, "", err)
			return
		}
	}

	q := r.URL.Query()
	token := strings.ToUpper(q.Get("token"))
	timeframe := strings.ToUpper(q.Get("timeframe"))

	signals := performance.Apply(logs.Value(), performance.Filter{Token: token})
	signals = byTimeframe(withoutNeutral(signals), timeframe)

	data := DashboardData{
		Token:     orAll(token),
		Timeframe: orAll(timeframe),
		Recent:    Section[[]performance.Row]{Data: performance.Rows(signals, res)},
		Market:    section(&market),
		News:      section(&news),
		Telegram:  res.TelegramMode(),
	}
	if err := logs.Err(); err != nil {
		data.Recent.Err = backend.Message(err)
	}
	if s, ok := stats.Data(); ok && s != nil {
		data.Summary.Data = s.Summary
		data.Chart = s.Chart
	}
	if err := stats.Err(); err != nil {
		data.Summary.Err = backend.Message(err)
	}
	if len(data.Chart) == 0 {
		data.Chart = performance.DailyChart(performance.Unlocked(logs.Value(), res))
	}

	p := h.page(w, r, "Dashboard", "dashboard")
	if p.User != nil {
		data.Greeting = p.User.FirstName()
	}
	p.Data = data
	h.render(w, http.StatusOK, "dashboard.html", p)
}

func tokenSymbols() []string {
	out := make([]string, len(core.Tokens))
	for i, t := range core.Tokens {
		out[i] = string(t)
	}
	return out
}

func withoutNeutral(signals []core.Signal) []core.Signal {
	out := make([]core.Signal, 0, len(signals))
	for _, s := range signals {
		if s.Direction != core.DirectionNeutral {
			out = append(out, s)
		}
	}
	return out
}

func byTimeframe(signals []core.Signal, tf string) []core.Signal {
	if tf == "" || tf == performance.All {
		return signals
	}
	out := make([]core.Signal, 0, len(signals))
	for _, s := range signals {
		if strings.EqualFold(string(s.Timeframe), tf) {
			out = append(out, s)
		}
	}
	return out
}

func orAll(v string) string {
	if v == "" {
		return performance.All
	}
	return v
}
