package telegram

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tradercopilot/swingdash/internal/core"
	"github.com/tradercopilot/swingdash/internal/entitlement"
)

type captured struct {
	path    string
	payload map[string]any
}

func newBotServer(t *testing.T, status int, got *[]captured) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		*got = append(*got, captured{path: r.URL.Path, payload: payload})
		w.WriteHeader(status)
		if status != http.StatusOK {
			w.Write([]byte(`{"ok":false,"description":"Bad Request: chat not found"}`))
			return
		}
		w.Write([]byte(`{"ok":true}`))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func telegramUser(plan string) entitlement.Resolver {
	return entitlement.New(
		&core.User{ID: 1, Plan: plan, TelegramChatID: "555", AllowedTokens: []string{"BTC"}},
		&core.Entitlements{TelegramAccess: true, AllowedTimeframes: []string{"4H"}},
	)
}

func TestTelegram_Disabled(t *testing.T) {
	tg := New("")
	assert.False(t, tg.Enabled())
	assert.ErrorIs(t, tg.SendTest(context.Background(), "1"), core.ErrNotifierDisabled)
}

func TestTelegram_SendTest(t *testing.T) {
	var got []captured
	srv := newBotServer(t, http.StatusOK, &got)
	tg := New("abc", WithBaseURL(srv.URL+"/"))

	require.NoError(t, tg.SendTest(context.Background(), "42"))
	require.Len(t, got, 1)
	assert.Equal(t, "/botabc/sendMessage", got[0].path)
	assert.Equal(t, "42", got[0].payload["chat_id"])
	assert.Equal(t, "Markdown", got[0].payload["parse_mode"])
}

func TestTelegram_APIError(t *testing.T) {
	var got []captured
	srv := newBotServer(t, http.StatusBadRequest, &got)
	tg := New("abc", WithBaseURL(srv.URL))

	err := tg.SendTest(context.Background(), "42")
	assert.ErrorIs(t, err, core.ErrNotifierFailed)
	assert.Contains(t, err.Error(), "chat not found")
}

func TestTelegram_SendTestForChecksAccess(t *testing.T) {
	var got []captured
	srv := newBotServer(t, http.StatusOK, &got)
	tg := New("abc", WithBaseURL(srv.URL))
	ctx := context.Background()

	locked := entitlement.New(&core.User{ID: 1, Plan: "FREE", TelegramChatID: "555"}, &core.Entitlements{})
	assert.ErrorIs(t, tg.SendTestFor(ctx, locked), core.ErrLocked)

	unlinked := entitlement.New(&core.User{ID: 1, Plan: "TRADER"}, &core.Entitlements{TelegramAccess: true})
	assert.ErrorIs(t, tg.SendTestFor(ctx, unlinked), core.ErrValidation)
	assert.Empty(t, got)

	require.NoError(t, tg.SendTestFor(ctx, telegramUser("TRADER")))
	require.Len(t, got, 1)
	assert.Equal(t, "555", got[0].payload["chat_id"])
}

func TestTelegram_SendSignalsForDropsLocked(t *testing.T) {
	var got []captured
	srv := newBotServer(t, http.StatusOK, &got)
	tg := New("abc", WithBaseURL(srv.URL))

	signals := []core.Signal{
		{Token: "BTC", Timeframe: "4H", Direction: core.DirectionLong, EntryPrice: 60000, Confidence: 80},
		{Token: "SOL", Timeframe: "4H", Direction: core.DirectionShort, EntryPrice: 150, Confidence: 70},
	}
	n, err := tg.SendSignalsFor(context.Background(), telegramUser("TRADER"), signals)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	require.Len(t, got, 1)
	text := got[0].payload["text"].(string)
	assert.Contains(t, text, "BTC/USDT")
	assert.NotContains(t, text, "SOL")
}

func TestTelegram_SendSignalsBatch(t *testing.T) {
	var got []captured
	srv := newBotServer(t, http.StatusOK, &got)
	tg := New("abc", WithBaseURL(srv.URL))

	require.NoError(t, tg.SendSignals(context.Background(), "1", nil))
	assert.Empty(t, got)

	signals := []core.Signal{{Token: "BTC"}, {Token: "ETH"}}
	require.NoError(t, tg.SendSignals(context.Background(), "1", signals))
	require.Len(t, got, 1)
	assert.True(t, strings.HasPrefix(got[0].payload["text"].(string), "📊 *2 Trading Signals*"))
}

func TestFormatSignal(t *testing.T) {
	s := core.Signal{
		Token:       "XRP",
		Timeframe:   "1D",
		Direction:   core.DirectionShort,
		EntryPrice:  0.5123,
		TargetPrice: 0.45,
		StopLoss:    0.55,
		Confidence:  64,
		Rationale:   "Lower high below the 200 EMA",
		Timestamp:   time.Date(2026, 1, 2, 3, 4, 0, 0, time.UTC),
	}
	msg := FormatSignal(s)
	assert.Contains(t, msg, "📉 *XRP/USDT* 1D - SHORT")
	assert.Contains(t, msg, "Confidence: 64%")
	assert.Contains(t, msg, "Entry: $0.5123")
	assert.Contains(t, msg, "💡 Lower high below the 200 EMA")
	assert.Contains(t, msg, "2026-01-02 03:04 UTC")
}
