// internal/api/handler/web/billing.go
package web

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/tradercopilot/swingdash/internal/api/middleware"
	"github.com/tradercopilot/swingdash/internal/core"
	"github.com/tradercopilot/swingdash/internal/entitlement"
	"github.com/tradercopilot/swingdash/internal/profile"
)

// PlanView is one column of the pricing table.
type PlanView struct {
	Tier        core.Tier
	Tokens      []core.Token
	Timeframes  []core.Timeframe
	Advisor     bool
	Telegram    bool
	HistoryDays int
	Current     bool
	Paid        bool
}

// PricingData holds data for the pricing and trial-expired templates
type PricingData struct {
	Plans    []PlanView
	SignedIn bool
}

type checkoutForm struct {
	Plan string `validate:"required,oneof=TRADER PRO"`
}

func (h *Handler) pricingData(r *http.Request) PricingData {
	st := middleware.StateFrom(r.Context())
	signedIn := st != nil && st.User() != nil
	current := h.resolver(r).Tier()

	data := PricingData{SignedIn: signedIn}
	for _, t := range core.Tiers {
		f := entitlement.FeaturesFor(t)
		data.Plans = append(data.Plans, PlanView{
			Tier:        t,
			Tokens:      f.Tokens,
			Timeframes:  f.Timeframes,
			Advisor:     f.Advisor,
			Telegram:    f.Telegram,
			HistoryDays: f.HistoryDays,
			Current:     signedIn && t == current,
			Paid:        t != core.TierFree,
		})
	}
	return data
}

// Pricing renders the plan matrix.
func (h *Handler) Pricing(w http.ResponseWriter, r *http.Request) {
	p := h.page(w, r, "Pricing", "pricing")
	p.Data = h.pricingData(r)
	h.render(w, http.StatusOK, "pricing.html", p)
}

// TrialExpired renders the upgrade prompt shown once a trial has ended.
func (h *Handler) TrialExpired(w http.ResponseWriter, r *http.Request) {
	p := h.page(w, r, "Trial expired", "")
	p.Data = h.pricingData(r)
	h.render(w, http.StatusOK, "trial_expired.html", p)
}

// errNoRedirectURL is reported when the backend answers a checkout or
// portal request without a URL to send the browser to.
var errNoRedirectURL = &core.Error{Code: "BILLING_NO_URL", Message: "Billing is unavailable right now. Please try again."}

// Checkout redirects to a hosted checkout page for the chosen plan.
func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	if !h.signedIn(w, r) {
		return
	}
	form := checkoutForm{Plan: r.PostFormValue("plan")}
	if err := h.validate.Struct(form); err != nil {
		h.fail(w, r, "/pricing", err)
		return
	}

	url, err := h.client(r).CreateCheckoutSession(r.Context(), core.Tier(form.Plan))
	if err == nil && url == "" {
		err = errNoRedirectURL
	}
	if err != nil {
		h.fail(w, r, "/pricing", err)
		return
	}
	h.logger.Info("checkout started", zap.String("plan", form.Plan))
	http.Redirect(w, r, url, http.StatusSeeOther)
}

// Portal redirects to the hosted billing portal.
func (h *Handler) Portal(w http.ResponseWriter, r *http.Request) {
	if !h.signedIn(w, r) {
		return
	}
	url, err := h.client(r).CreatePortalSession(r.Context())
	if err == nil && url == "" {
		err = errNoRedirectURL
	}
	if err != nil {
		h.fail(w, r, "/pricing", err)
		return
	}
	http.Redirect(w, r, url, http.StatusSeeOther)
}

func (h *Handler) signedIn(w http.ResponseWriter, r *http.Request) bool {
	if st := middleware.StateFrom(r.Context()); st != nil && st.User() != nil {
		return true
	}
	middleware.Redirect(w, r, middleware.LoginURL(profile.PathDashboard))
	return false
}
