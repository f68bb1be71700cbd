// internal/api/handler/web/advisor.go
package web

import (
	"encoding/json"
	"net/http"
	"slices"
	"strings"

	"github.com/tradercopilot/swingdash/internal/api/middleware"
	"github.com/tradercopilot/swingdash/internal/backend"
	"github.com/tradercopilot/swingdash/internal/entitlement"
)

const (
	advisorPath       = "/dashboard/advisor"
	advisorLockedPath = "/dashboard/advisor/locked"
	maxChatHistory    = 20
)

type chatForm struct {
	Message string                `validate:"required,max=4000"`
	History []backend.ChatMessage `validate:"max=40,dive"`
}

// AdvisorData holds data for the advisor template
type AdvisorData struct {
	Messages []backend.ChatMessage
	History  string
	Draft    string
}

func newAdvisorData(msgs []backend.ChatMessage) AdvisorData {
	raw, _ := json.Marshal(msgs)
	return AdvisorData{Messages: msgs, History: string(raw)}
}

// Advisor renders the chat. Users without advisor access are redirected to
// the locked page.
func (h *Handler) Advisor(w http.ResponseWriter, r *http.Request) {
	mode := h.resolver(r).AdvisorMode()
	h.app.Metrics().RecordGating("advisor", mode.String())
	if mode == entitlement.ModeRedirect {
		middleware.Redirect(w, r, advisorLockedPath)
		return
	}
	p := h.page(w, r, "AI Advisor", "advisor")
	p.Data = newAdvisorData(nil)
	h.render(w, http.StatusOK, "advisor.html", p)
}

// AdvisorLocked renders the upgrade prompt for the advisor.
func (h *Handler) AdvisorLocked(w http.ResponseWriter, r *http.Request) {
	p := h.page(w, r, "AI Advisor", "advisor")
	h.render(w, http.StatusOK, "advisor_locked.html", p)
}

// Chat sends the conversation to the advisor. Access is checked again on
// every message. The conversation travels with the form.
func (h *Handler) Chat(w http.ResponseWriter, r *http.Request) {
	res := h.resolver(r)
	if err := res.RequireAdvisor(); !h.gate("advisor", err) {
		middleware.Redirect(w, r, advisorLockedPath)
		return
	}

	form := chatForm{Message: strings.TrimSpace(r.PostFormValue("message"))}
	if raw := r.PostFormValue("history"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &form.History); err != nil {
			form.History = nil
		}
	}

	p := h.page(w, r, "AI Advisor", "advisor")
	if err := h.validate.Struct(form); err != nil {
		data := newAdvisorData(form.History)
		data.Draft = form.Message
		p.Data = data
		p.Error = userMessage(err)
		h.render(w, http.StatusBadRequest, "advisor.html", p)
		return
	}

	msgs := withUserTurn(form.History, form.Message)

	reply, err := h.client(r).Chat(r.Context(), msgs, map[string]any{
		"tier":   res.Tier(),
		"tokens": res.AllowedTokens(),
	})
	if err != nil {
		if backend.IsAuth(err) {
			h.fail(w, r, advisorPath, err)
			return
		}
		data := newAdvisorData(form.History)
		data.Draft = form.Message
		p.Data = data
		p.Error = "Failed to get response from Advisor: " + backend.Message(err)
		h.render(w, http.StatusBadGateway, "advisor.html", p)
		return
	}

	text := reply.Reply
	if text == "" {
		text = "The advisor returned no answer."
	}
	msgs = append(msgs, backend.ChatMessage{Role: "assistant", Content: text})
	p.Data = newAdvisorData(msgs)
	h.render(w, http.StatusOK, "advisor.html", p)
}

// withUserTurn returns a copy of history with the user's message appended,
// trimmed to the most recent maxChatHistory turns. history is not modified.
func withUserTurn(history []backend.ChatMessage, message string) []backend.ChatMessage {
	msgs := append(slices.Clone(history), backend.ChatMessage{Role: "user", Content: message})
	if len(msgs) > maxChatHistory {
		msgs = msgs[len(msgs)-maxChatHistory:]
	}
	return msgs
}
