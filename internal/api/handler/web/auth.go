// internal/api/handler/web/auth.go
package web

import (
	"context"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/tradercopilot/swingdash/internal/api/middleware"
	"github.com/tradercopilot/swingdash/internal/backend"
	"github.com/tradercopilot/swingdash/internal/profile"
	"github.com/tradercopilot/swingdash/internal/session"
)

type loginForm struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required"`
	Next     string
}

type signupForm struct {
	Name     string `validate:"required,max=100"`
	Email    string `validate:"required,email"`
	Password string `validate:"required,min=8,max=128"`
	Confirm  string `validate:"eqfield=Password"`
}

// AuthData holds data for the login and signup templates
type AuthData struct {
	Email string
	Name  string
	Next  string
}

// LoginPage renders the login form. Visitors that already carry a session
// go straight to the dashboard.
func (h *Handler) LoginPage(w http.ResponseWriter, r *http.Request) {
	if ck, err := r.Cookie(session.CookieName); err == nil && ck.Value != "" {
		http.Redirect(w, r, profile.PathDashboard, http.StatusFound)
		return
	}
	p := h.page(w, r, "Sign in", "login")
	p.Data = AuthData{Next: r.URL.Query().Get("next")}
	h.render(w, http.StatusOK, "login.html", p)
}

// Login exchanges credentials for a token and starts the session.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	form := loginForm{
		Email:    strings.TrimSpace(r.PostFormValue("email")),
		Password: r.PostFormValue("password"),
		Next:     r.PostFormValue("next"),
	}
	data := AuthData{Email: form.Email, Next: form.Next}

	if err := h.validate.Struct(form); err != nil {
		h.authError(w, r, "login.html", "Sign in", data, err)
		return
	}

	tok, err := h.app.Client(backend.StaticToken("")).Login(r.Context(), form.Email, form.Password)
	if err != nil {
		h.app.Metrics().RecordSession("login_failed")
		h.authError(w, r, "login.html", "Sign in", data, err)
		return
	}
	h.startSession(w, r, tok.AccessToken, form.Next, "login.html", "Sign in", data)
}

// SignupPage renders the registration form.
func (h *Handler) SignupPage(w http.ResponseWriter, r *http.Request) {
	p := h.page(w, r, "Create account", "signup")
	p.Data = AuthData{}
	h.render(w, http.StatusOK, "signup.html", p)
}

// Signup registers an account and signs it in. When the backend does not
// return a token the new credentials are exchanged for one.
func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	form := signupForm{
		Name:     strings.TrimSpace(r.PostFormValue("name")),
		Email:    strings.TrimSpace(r.PostFormValue("email")),
		Password: r.PostFormValue("password"),
		Confirm:  r.PostFormValue("confirm"),
	}
	data := AuthData{Email: form.Email, Name: form.Name}

	if err := h.validate.Struct(form); err != nil {
		h.authError(w, r, "signup.html", "Create account", data, err)
		return
	}

	client := h.app.Client(backend.StaticToken(""))
	tok, err := client.Register(r.Context(), backend.RegisterRequest{
		Email:    form.Email,
		Password: form.Password,
		Name:     form.Name,
	})
	if err == nil && (tok == nil || tok.AccessToken == "") {
		tok, err = client.Login(r.Context(), form.Email, form.Password)
	}
	if err != nil {
		h.authError(w, r, "signup.html", "Create account", data, err)
		return
	}
	h.app.Metrics().RecordSession("signup")
	h.startSession(w, r, tok.AccessToken, "", "signup.html", "Create account", data)
}

func (h *Handler) startSession(w http.ResponseWriter, r *http.Request, token, next, page, title string, data AuthData) {
	nav := &profile.Recorder{}
	st := h.app.RequestState(w, r, nav)
	if err := st.LoginWithToken(r.Context(), token); err != nil && backend.IsAuth(err) {
		h.authError(w, r, page, title, data, err)
		return
	}
	h.app.Metrics().RecordSession("login")
	h.logger.Info("signed in", zap.String("email", data.Email))

	to, ok := nav.Last()
	switch {
	case !ok, to.Path == profile.PathDashboard:
		middleware.Redirect(w, r, middleware.SafeNext(next))
	default:
		middleware.Redirect(w, r, to.Path)
	}
}

func (h *Handler) authError(w http.ResponseWriter, r *http.Request, page, title string, data AuthData, err error) {
	status := http.StatusBadRequest
	if backend.IsAuth(err) {
		status = http.StatusUnauthorized
	}
	p := h.page(w, r, title, strings.TrimSuffix(page, ".html"))
	p.Data = data
	p.Error = userMessage(err)
	h.render(w, status, page, p)
}

// Logout clears the session and returns to the login page.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	nav := &profile.Recorder{}
	st := h.app.RequestState(w, r, nav)
	if err := st.Logout(context.WithoutCancel(r.Context())); err != nil {
		h.logger.Warn("clearing session", zap.Error(err))
	}
	h.app.Metrics().RecordSession("logout")
	middleware.Redirect(w, r, profile.PathLogin)
}
