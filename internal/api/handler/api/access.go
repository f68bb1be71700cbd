// internal/api/handler/api/access.go
package api

import (
	"net/http"

	"github.com/tradercopilot/swingdash/internal/api/middleware"
	"github.com/tradercopilot/swingdash/internal/api/response"
	"github.com/tradercopilot/swingdash/internal/app"
	"github.com/tradercopilot/swingdash/internal/core"
	"github.com/tradercopilot/swingdash/internal/entitlement"
)

// AccessHandler exposes the resolved gating of the current session.
type AccessHandler struct {
	app *app.App
}

// NewAccessHandler creates a new access handler.
func NewAccessHandler(a *app.App) *AccessHandler {
	return &AccessHandler{app: a}
}

// AccessResponse is the payload of the access endpoint.
type AccessResponse struct {
	User        AccessUser         `json:"user"`
	Access      entitlement.Access `json:"access"`
	IsOwner     bool               `json:"is_owner"`
	HistoryDays int                `json:"history_days"`
}

// AccessUser is the public part of the signed-in user.
type AccessUser struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Plan  string `json:"plan"`
}

// Get returns the resolver snapshot, or 401 without a session.
func (h *AccessHandler) Get(w http.ResponseWriter, r *http.Request) {
	st := middleware.StateFrom(r.Context())
	if st == nil || st.User() == nil {
		response.Error(w, http.StatusUnauthorized, core.ErrNoSession)
		return
	}

	res := st.Resolver()
	u := st.User()
	response.JSON(w, http.StatusOK, AccessResponse{
		User:        AccessUser{ID: u.ID, Email: u.Email, Name: u.Name, Plan: u.Plan},
		Access:      res.Snapshot(),
		IsOwner:     res.IsOwner(h.app.OwnerEmails()),
		HistoryDays: res.HistoryDays(),
	})
}
