package performance

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tradercopilot/swingdash/internal/core"
	"github.com/tradercopilot/swingdash/internal/entitlement"
)

func pnl(v float64) *float64 { return &v }

var day0 = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func sample() []core.Signal {
	return []core.Signal{
		{ID: "1", Token: "BTC", Timeframe: "4H", Direction: core.DirectionLong, Status: core.StatusClosed, PnL: pnl(2), Timestamp: day0},
		{ID: "2", Token: "ETH", Timeframe: "4H", Direction: core.DirectionShort, Status: core.StatusClosed, PnL: pnl(-1), Timestamp: day0.Add(24 * time.Hour)},
		{ID: "3", Token: "BTC", Timeframe: "1D", Direction: core.DirectionLong, Status: core.StatusClosed, PnL: pnl(-2), Timestamp: day0.Add(48 * time.Hour)},
		{ID: "4", Token: "SOL", Timeframe: "4H", Direction: core.DirectionLong, Status: core.StatusActive, Timestamp: day0.Add(72 * time.Hour)},
		{ID: "5", Token: "BTC", Timeframe: "4H", Direction: core.DirectionNeutral, Status: core.StatusActive, Timestamp: day0.Add(96 * time.Hour)},
	}
}

func ids(signals []core.Signal) []string {
	out := make([]string, len(signals))
	for i, s := range signals {
		out[i] = s.ID
	}
	return out
}

func TestApply(t *testing.T) {
	assert.Equal(t, []string{"1", "2", "3", "4", "5"}, ids(Apply(sample(), Filter{Token: All, Direction: All})))
	assert.Equal(t, []string{"1", "3", "5"}, ids(Apply(sample(), Filter{Token: "btc"})))
	assert.Equal(t, []string{"1", "3", "4"}, ids(Apply(sample(), Filter{Direction: "LONG"})))
	assert.Equal(t, []string{"1", "3"}, ids(Apply(sample(), Filter{Token: "BTC/USDT", Direction: "long"})))
}

func TestSplitSignals(t *testing.T) {
	sp := SplitSignals(sample())
	assert.Equal(t, []string{"4"}, ids(sp.Active))
	assert.Equal(t, []string{"1", "2", "3", "5"}, ids(sp.Closed), "neutral counts as closed")
}

func TestCalculate(t *testing.T) {
	st := Calculate(sample())
	assert.Equal(t, 5, st.Total)
	assert.Equal(t, 1, st.Active)
	assert.Equal(t, 4, st.Closed)
	assert.Equal(t, 1, st.Wins)
	assert.Equal(t, 2, st.Losses)
	assert.InDelta(t, 25.0, st.WinRate, 1e-9)
	assert.InDelta(t, -1.0, st.TotalPnL, 1e-9)
	assert.InDelta(t, -0.25, st.AvgPnL, 1e-9)
	assert.InDelta(t, 3.0, st.MaxDrawdown, 1e-9, "peak 2 down to -1")
}

func TestCalculate_Empty(t *testing.T) {
	assert.Equal(t, Stats{}, Calculate(nil))
	st := Calculate([]core.Signal{{Status: core.StatusActive, Direction: core.DirectionLong}})
	assert.Equal(t, 1, st.Active)
	assert.Zero(t, st.WinRate)
}

func TestWithinHistory(t *testing.T) {
	now := day0.Add(5 * 24 * time.Hour)
	kept := WithinHistory(sample(), 3, now)
	assert.Equal(t, []string{"3", "4", "5"}, ids(kept))
	assert.Len(t, WithinHistory(sample(), 0, now), 5)

	undated := []core.Signal{{ID: "x"}}
	assert.Len(t, WithinHistory(undated, 1, now), 1)
}

func TestRows(t *testing.T) {
	trader := entitlement.New(
		&core.User{Plan: "TRADER"},
		&core.Entitlements{AllowedTokens: []string{"BTC", "ETH"}, AllowedTimeframes: []string{"4H", "1D"}},
	)
	rows := Rows(sample(), trader)
	require.Len(t, rows, 5)
	assert.False(t, rows[0].Locked())
	assert.True(t, rows[3].Locked(), "SOL is not in the allowed tokens")
	assert.Equal(t, []string{"1", "2", "3", "5"}, ids(Unlocked(sample(), trader)))

	pro := entitlement.New(&core.User{Plan: "PRO"}, nil)
	for _, r := range Rows(sample(), pro) {
		assert.Equal(t, entitlement.ModeFull, r.Mode)
	}
}

func TestDailyChart(t *testing.T) {
	chart := DailyChart(sample())
	assert.Equal(t, []core.ChartPoint{
		{Date: "2026-03-01", Wins: 1},
		{Date: "2026-03-02", Losses: 1},
		{Date: "2026-03-03", Losses: 1},
	}, chart)
}
