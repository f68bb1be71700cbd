// internal/api/handler/web/settings.go
package web

import (
	"context"
	"net/http"
	"path"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/tradercopilot/swingdash/internal/api/middleware"
	"github.com/tradercopilot/swingdash/internal/backend"
	"github.com/tradercopilot/swingdash/internal/core"
	"github.com/tradercopilot/swingdash/internal/entitlement"
	"github.com/tradercopilot/swingdash/internal/metrics"
	"github.com/tradercopilot/swingdash/internal/storage/archive"
)

const (
	settingsPath      = "/dashboard/settings"
	alertSignalsLimit = 5
)

var exportName = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}\.json$`)

type timezoneForm struct {
	Timezone string `validate:"required,timezone"`
}

type passwordForm struct {
	Current string `validate:"required"`
	New     string `validate:"required,min=8,max=128,nefield=Current"`
	Confirm string `validate:"eqfield=New"`
}

// SettingsData holds data for the settings template
type SettingsData struct {
	Timezone          string
	TelegramConnected bool
	TelegramUsername  string
	Telegram          entitlement.Mode
	BotEnabled        bool
	ArchiveEnabled    bool
	Exports           []string
	HistoryDays       int
}

// Settings renders account, alert and export settings.
func (h *Handler) Settings(w http.ResponseWriter, r *http.Request) {
	p := h.page(w, r, "Settings", "settings")
	res := h.resolver(r)
	data := SettingsData{
		Telegram:       res.TelegramMode(),
		BotEnabled:     h.app.Telegram().Enabled(),
		ArchiveEnabled: h.app.Archive() != nil,
		HistoryDays:    res.HistoryDays(),
	}
	if u := p.User; u != nil {
		data.Timezone = u.Timezone
		data.TelegramConnected = u.TelegramConnected()
		data.TelegramUsername = u.TelegramUsername
		data.Exports = h.exports(r.Context(), u.ID)
	}
	p.Data = data
	h.render(w, http.StatusOK, "settings.html", p)
}

func (h *Handler) exports(ctx context.Context, userID int64) []string {
	st := h.app.Archive()
	if st == nil {
		return nil
	}
	paths, err := st.List(ctx, archive.ExportPrefix(userID))
	if err != nil {
		h.logger.Warn("listing exports", zap.Int64("user_id", userID), zap.Error(err))
		return nil
	}
	names := make([]string, 0, len(paths))
	for _, p := range paths {
		names = append(names, path.Base(p))
	}
	sort.Sort(sort.Reverse(sort.StringSlice(names)))
	return names
}

// refresh reloads the profile after an account change.
func (h *Handler) refresh(r *http.Request) {
	if st := middleware.StateFrom(r.Context()); st != nil {
		_ = st.Refresh(r.Context())
	}
}

// UpdateTimezone changes the display timezone.
func (h *Handler) UpdateTimezone(w http.ResponseWriter, r *http.Request) {
	form := timezoneForm{Timezone: strings.TrimSpace(r.PostFormValue("timezone"))}
	if err := h.validate.Struct(form); err != nil {
		h.fail(w, r, settingsPath, err)
		return
	}
	if err := h.client(r).UpdateTimezone(r.Context(), form.Timezone); err != nil {
		h.fail(w, r, settingsPath, err)
		return
	}
	h.refresh(r)
	setFlash(w, "Timezone updated")
	http.Redirect(w, r, settingsPath, http.StatusSeeOther)
}

// UpdatePassword changes the account password.
func (h *Handler) UpdatePassword(w http.ResponseWriter, r *http.Request) {
	form := passwordForm{
		Current: r.PostFormValue("current"),
		New:     r.PostFormValue("new"),
		Confirm: r.PostFormValue("confirm"),
	}
	if err := h.validate.Struct(form); err != nil {
		h.fail(w, r, settingsPath, err)
		return
	}
	if err := h.client(r).UpdatePassword(r.Context(), form.Current, form.New); err != nil {
		h.fail(w, r, settingsPath, err)
		return
	}
	setFlash(w, "Password updated successfully")
	http.Redirect(w, r, settingsPath, http.StatusSeeOther)
}

// DisconnectTelegram unlinks the Telegram chat.
func (h *Handler) DisconnectTelegram(w http.ResponseWriter, r *http.Request) {
	if err := h.client(r).UpdateTelegram(r.Context(), ""); err != nil {
		h.fail(w, r, settingsPath, err)
		return
	}
	h.refresh(r)
	setFlash(w, "Disconnected Telegram")
	http.Redirect(w, r, settingsPath, http.StatusSeeOther)
}

// TestAlert sends a test message to the connected chat.
func (h *Handler) TestAlert(w http.ResponseWriter, r *http.Request) {
	err := h.app.Telegram().SendTestFor(r.Context(), h.resolver(r))
	h.gate("telegram", lockedOnly(err))
	h.app.Metrics().RecordAlert("test", metrics.AlertStatus(err))
	if err != nil {
		h.fail(w, r, settingsPath, err)
		return
	}
	setFlash(w, "Test alert sent")
	http.Redirect(w, r, settingsPath, http.StatusSeeOther)
}

// SendLatest forwards the most recent signals the plan covers to Telegram.
func (h *Handler) SendLatest(w http.ResponseWriter, r *http.Request) {
	res := h.resolver(r)
	if err := res.RequireTelegram(); !h.gate("telegram", err) {
		h.fail(w, r, settingsPath, err)
		return
	}
	signals, err := h.client(r).RecentLogs(r.Context(), backend.LogsQuery{Limit: alertSignalsLimit})
	if err != nil {
		h.fail(w, r, settingsPath, err)
		return
	}
	n, err := h.app.Telegram().SendSignalsFor(r.Context(), res, withoutNeutral(signals))
	h.app.Metrics().RecordAlert("signals", metrics.AlertStatus(err))
	if err != nil {
		h.fail(w, r, settingsPath, err)
		return
	}
	setFlash(w, "Sent "+strconv.Itoa(n)+" signals to Telegram")
	http.Redirect(w, r, settingsPath, http.StatusSeeOther)
}

// Export archives the accessible signal history.
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	st := middleware.StateFrom(r.Context())
	if st == nil {
		h.fail(w, r, settingsPath, core.ErrNoSession)
		return
	}
	p, exp, err := h.app.Export(r.Context(), st)
	if err != nil {
		h.fail(w, r, settingsPath, err)
		return
	}
	setFlash(w, "Exported "+strconv.Itoa(len(exp.Signals))+" signals to "+path.Base(p))
	http.Redirect(w, r, settingsPath, http.StatusSeeOther)
}

// DownloadExport serves one of the user's archived exports.
func (h *Handler) DownloadExport(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	u := h.resolver(r).User
	st := h.app.Archive()
	if !exportName.MatchString(name) || u == nil || st == nil {
		h.failPage(w, r, "Settings", core.ErrNotFound)
		return
	}
	data, err := st.Read(r.Context(), archive.ExportPrefix(u.ID)+name)
	if err != nil {
		h.failPage(w, r, "Settings", err)
		return
	}
	w.Header().Set("Content-Type", archive.ContentType(name))
	w.Header().Set("Content-Disposition", `attachment; filename="signals_`+name+`"`)
	_, _ = w.Write(data)
}
