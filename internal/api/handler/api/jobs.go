// internal/api/handler/api/jobs.go
package api

import (
	"net/http"

	"github.com/tradercopilot/swingdash/internal/api/middleware"
	"github.com/tradercopilot/swingdash/internal/api/response"
	"github.com/tradercopilot/swingdash/internal/app"
	"github.com/tradercopilot/swingdash/internal/core"
	"github.com/tradercopilot/swingdash/internal/scan"
)

// JobsHandler lets the analysis page poll PRO report jobs.
type JobsHandler struct {
	app *app.App
}

// NewJobsHandler creates a new jobs handler.
func NewJobsHandler(a *app.App) *JobsHandler {
	return &JobsHandler{app: a}
}

// owner identifies the caller. Expired trials may not poll reports.
func owner(r *http.Request) (string, error) {
	st := middleware.StateFrom(r.Context())
	if st == nil || st.User() == nil {
		return "", core.ErrNoSession
	}
	if st.Resolver().IsTrialExpired() {
		return "", core.ErrTrialExpired
	}
	return scan.Owner(st.User()), nil
}

// List returns the caller's jobs, newest first.
func (h *JobsHandler) List(w http.ResponseWriter, r *http.Request) {
	o, err := owner(r)
	if err != nil {
		response.Fail(w, err)
		return
	}
	response.JSON(w, http.StatusOK, map[string]any{
		"jobs": h.app.Jobs().List(o),
	})
}

// GetByID returns one job. Jobs of other users are reported as not found.
func (h *JobsHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	o, err := owner(r)
	if err != nil {
		response.Fail(w, err)
		return
	}
	j, _, err := h.app.Pro().Report(o, r.PathValue("id"))
	if err != nil {
		response.Fail(w, err)
		return
	}
	response.JSON(w, http.StatusOK, j)
}
