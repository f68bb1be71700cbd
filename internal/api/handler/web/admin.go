// internal/api/handler/web/admin.go
package web

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/tradercopilot/swingdash/internal/async"
	"github.com/tradercopilot/swingdash/internal/backend"
	"github.com/tradercopilot/swingdash/internal/core"
	"github.com/tradercopilot/swingdash/internal/profile"
)

const adminPath = "/dashboard/admin"

type planForm struct {
	UserID int64  `validate:"required,gt=0"`
	Plan   string `validate:"required,oneof=FREE TRADER PRO"`
}

// AdminData holds data for the admin template
type AdminData struct {
	Query string
	Stats Section[*backend.AdminStats]
	Users Section[*backend.AdminUserPage]
	Plans []core.Tier
}

// requireOwner sends non-owners back to the dashboard.
func (h *Handler) requireOwner(w http.ResponseWriter, r *http.Request) bool {
	err := h.resolver(r).RequireOwner(h.app.OwnerEmails())
	if h.gate("admin", err) {
		return true
	}
	setFlash(w, userMessage(err))
	http.Redirect(w, r, profile.PathDashboard, http.StatusSeeOther)
	return false
}

// Admin renders the operator console.
func (h *Handler) Admin(w http.ResponseWriter, r *http.Request) {
	if !h.requireOwner(w, r) {
		return
	}
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	c := h.client(r)

	var (
		g     async.Group
		stats async.Resource[*backend.AdminStats]
		users async.Resource[*backend.AdminUserPage]
	)
	async.Fetch(r.Context(), &g, &stats, c.AdminStats)
	async.Fetch(r.Context(), &g, &users, func(ctx context.Context) (*backend.AdminUserPage, error) {
		return c.AdminUsers(ctx, q)
	})
	_ = g.Wait()
	for _, err := range []error{stats.Err(), users.Err()} {
		if backend.IsAuth(err) {
			h.fail(w, r, "", err)
			return
		}
	}

	p := h.page(w, r, "Admin", "admin")
	p.Data = AdminData{
		Query: q,
		Stats: section(&stats),
		Users: section(&users),
		Plans: core.Tiers,
	}
	h.render(w, http.StatusOK, "admin.html", p)
}

// UpdatePlan changes a user's plan. Ownership is checked again here.
func (h *Handler) UpdatePlan(w http.ResponseWriter, r *http.Request) {
	if !h.requireOwner(w, r) {
		return
	}
	id, _ := strconv.ParseInt(r.PathValue("id"), 10, 64)
	form := planForm{UserID: id, Plan: strings.ToUpper(r.PostFormValue("plan"))}
	if err := h.validate.Struct(form); err != nil {
		h.fail(w, r, adminPath, err)
		return
	}
	if err := h.client(r).UpdateUserPlan(r.Context(), form.UserID, form.Plan); err != nil {
		h.fail(w, r, adminPath, err)
		return
	}
	h.logger.Info("user plan updated", zap.Int64("user_id", form.UserID), zap.String("plan", form.Plan))
	setFlash(w, "User upgraded to "+form.Plan)
	http.Redirect(w, r, adminPath, http.StatusSeeOther)
}
