// internal/api/handler/web/analysis.go
package web

import (
	"errors"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/tradercopilot/swingdash/internal/api/job"
	"github.com/tradercopilot/swingdash/internal/api/middleware"
	"github.com/tradercopilot/swingdash/internal/backend"
	"github.com/tradercopilot/swingdash/internal/core"
	"github.com/tradercopilot/swingdash/internal/scan"
	"github.com/tradercopilot/swingdash/internal/storage/archive"
)

const analysisPath = "/dashboard/analysis"

type liteForm struct {
	Token     string `validate:"required,max=30"`
	Timeframe string `validate:"required,max=4"`
	Message   string `validate:"max=500"`
}

type proForm struct {
	Token    string `validate:"required,max=30"`
	Language string `validate:"omitempty,oneof=en es"`
}

// AnalysisData holds data for the analysis template
type AnalysisData struct {
	Tokens     []scan.Choice
	Timeframes []scan.Choice
	Token      string
	Timeframe  string
	Message    string
	Phase      string
	Result     *core.Signal
	Watchlist  []core.WatchItem
	ScanError  string
	ProAccess  bool
	Languages  []string
	Jobs       []job.Job
}

// JobData holds data for the analysis job template
type JobData struct {
	Job    *job.Job
	Report *scan.Report
}

func (h *Handler) analysisData(r *http.Request, flow *scan.Flow) AnalysisData {
	res := h.resolver(r)
	token, tf := flow.Selection()
	return AnalysisData{
		Tokens:     flow.Tokens(),
		Timeframes: flow.Timeframes(),
		Token:      string(token),
		Timeframe:  string(tf),
		Phase:      flow.Phase().String(),
		Result:     flow.Result(),
		Watchlist:  flow.Watchlist(),
		ProAccess:  res.RequirePro() == nil,
		Languages:  scan.Languages,
		Jobs:       h.app.Jobs().List(scan.Owner(res.User)),
	}
}

// Analysis renders the scan dialog with BTC 4H preselected.
func (h *Handler) Analysis(w http.ResponseWriter, r *http.Request) {
	flow := scan.NewFlow(h.resolver(r), h.client(r))
	flow.Open()

	p := h.page(w, r, "Analysis", "analysis")
	p.Data = h.analysisData(r, flow)
	h.render(w, http.StatusOK, "analysis.html", p)
}

// Lite runs a quick scan. The selection is re-checked before the backend
// is called so a locked token never leaves the server.
func (h *Handler) Lite(w http.ResponseWriter, r *http.Request) {
	form := liteForm{
		Token:     r.PostFormValue("token"),
		Timeframe: r.PostFormValue("timeframe"),
		Message:   r.PostFormValue("message"),
	}
	flow := scan.NewFlow(h.resolver(r), h.client(r))
	flow.Open()

	status := http.StatusOK
	var scanErr error
	if err := h.validate.Struct(form); err != nil {
		status, scanErr = http.StatusBadRequest, err
	} else if err := flow.Select(form.Token, form.Timeframe); !h.gate("scan", err) {
		status, scanErr = http.StatusForbidden, err
	} else if _, err := flow.Submit(r.Context(), form.Message); err != nil {
		if backend.IsAuth(err) {
			h.fail(w, r, analysisPath, err)
			return
		}
		status, scanErr = http.StatusBadGateway, err
		h.app.Metrics().RecordScan("lite", "failed")
	} else {
		h.app.Metrics().RecordScan("lite", "ok")
	}

	p := h.page(w, r, "Analysis", "analysis")
	data := h.analysisData(r, flow)
	data.Message = form.Message
	if scanErr != nil {
		data.ScanError = userMessage(scanErr)
	}
	p.Data = data
	h.render(w, status, "analysis.html", p)
}

// Pro queues an institutional report and sends the user to its job page.
func (h *Handler) Pro(w http.ResponseWriter, r *http.Request) {
	form := proForm{
		Token:    r.PostFormValue("token"),
		Language: r.PostFormValue("language"),
	}
	if err := h.validate.Struct(form); err != nil {
		h.fail(w, r, analysisPath, err)
		return
	}

	st := middleware.StateFrom(r.Context())
	if st == nil {
		h.fail(w, r, analysisPath, core.ErrNoSession)
		return
	}
	// The job outlives this request, so it gets the token itself rather
	// than the request-bound session.
	analyzer := h.app.Client(backend.StaticToken(st.Session().Token(r.Context())))
	j, err := h.app.Pro().Start(r.Context(), analyzer, st.Resolver(), form.Token, form.Language)
	h.gate("pro_analysis", lockedOnly(err))
	if err != nil {
		h.fail(w, r, analysisPath, err)
		return
	}
	http.Redirect(w, r, analysisPath+"/jobs/"+j.ID, http.StatusSeeOther)
}

func lockedOnly(err error) error {
	if errors.Is(err, core.ErrLocked) {
		return err
	}
	return nil
}

// Job renders the progress of a PRO report. The page refreshes itself
// until the job is done.
func (h *Handler) Job(w http.ResponseWriter, r *http.Request) {
	j, rep, err := h.app.Pro().Report(scan.Owner(h.resolver(r).User), r.PathValue("id"))
	if err != nil {
		h.failPage(w, r, "Analysis", err)
		return
	}
	p := h.page(w, r, "Analysis", "analysis")
	p.Data = JobData{Job: j, Report: rep}
	h.render(w, http.StatusOK, "analysis_job.html", p)
}

// Download serves a finished report as a markdown attachment.
func (h *Handler) Download(w http.ResponseWriter, r *http.Request) {
	j, rep, err := h.app.Pro().Report(scan.Owner(h.resolver(r).User), r.PathValue("id"))
	if err != nil {
		h.failPage(w, r, "Analysis", err)
		return
	}
	if rep == nil {
		http.Redirect(w, r, analysisPath+"/jobs/"+j.ID, http.StatusSeeOther)
		return
	}

	body := []byte(rep.Markdown)
	if len(body) == 0 && rep.ArchivePath != "" && h.app.Archive() != nil {
		if body, err = h.app.Archive().Read(r.Context(), rep.ArchivePath); err != nil {
			h.logger.Warn("reading archived report", zap.String("path", rep.ArchivePath), zap.Error(err))
			h.failPage(w, r, "Analysis", err)
			return
		}
	}

	w.Header().Set("Content-Type", archive.ContentType(rep.Filename))
	w.Header().Set("Content-Disposition", `attachment; filename="`+rep.Filename+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}
