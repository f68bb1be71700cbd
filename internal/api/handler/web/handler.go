// internal/api/handler/web/handler.go
package web

import (
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/tradercopilot/swingdash/internal/api/middleware"
	"github.com/tradercopilot/swingdash/internal/app"
	"github.com/tradercopilot/swingdash/internal/backend"
	"github.com/tradercopilot/swingdash/internal/core"
	"github.com/tradercopilot/swingdash/internal/entitlement"
	"github.com/tradercopilot/swingdash/internal/profile"
)

//go:embed templates/*
var templateFS embed.FS

// pages lists every page template. Each is parsed together with layout.html.
var pages = []string{
	"login.html", "signup.html", "pricing.html", "trial_expired.html",
	"dashboard.html", "signals.html", "strategies.html", "analysis.html",
	"analysis_job.html", "advisor.html", "advisor_locked.html",
	"settings.html", "admin.html", "error.html",
}

// Page is the data every page template receives.
type Page struct {
	Title   string
	Active  string
	User    *core.User
	Access  entitlement.Access
	IsOwner bool
	Flash   string
	Error   string
	Data    any
}

// Handler provides web UI handlers with template rendering
type Handler struct {
	// pageTemplates holds separate template instances for each page
	// Each instance contains layout.html + the specific page template
	pageTemplates map[string]*template.Template
	app           *app.App
	logger        *zap.Logger
	validate      *validator.Validate
	now           func() time.Time
}

var funcs = template.FuncMap{
	"pct": func(v float64) string { return fmt.Sprintf("%.1f%%", v) },
	"price": func(v float64) string {
		if v == 0 {
			return "-"
		}
		return fmt.Sprintf("%.2f", v)
	},
	"pnl": func(v *float64) string {
		if v == nil {
			return "-"
		}
		return fmt.Sprintf("%+.2f%%", *v)
	},
	"date": func(t time.Time) string {
		if t.IsZero() {
			return "-"
		}
		return t.UTC().Format("2006-01-02 15:04")
	},
	"lower": strings.ToLower,
}

// NewHandler creates a new web handler with templates loaded from the given directory.
// If templatesDir is empty, it falls back to embedded templates.
func NewHandler(a *app.App, templatesDir string) (*Handler, error) {
	var fsys fs.FS
	if templatesDir != "" {
		fsys = os.DirFS(templatesDir)
	} else {
		subFS, err := fs.Sub(templateFS, "templates")
		if err != nil {
			return nil, fmt.Errorf("accessing embedded templates: %w", err)
		}
		fsys = subFS
	}
	return NewHandlerWithFS(a, fsys)
}

// NewHandlerWithFS creates a new web handler using a custom filesystem.
// This is useful for testing or custom template sources.
func NewHandlerWithFS(a *app.App, fsys fs.FS) (*Handler, error) {
	pageTemplates := make(map[string]*template.Template)
	for _, page := range pages {
		tmpl, err := template.New("layout.html").Funcs(funcs).ParseFS(fsys, "layout.html", page)
		if err != nil {
			return nil, fmt.Errorf("parsing template %s from fs: %w", page, err)
		}
		pageTemplates[page] = tmpl
	}

	return &Handler{
		pageTemplates: pageTemplates,
		app:           a,
		logger:        a.Logger().Named("web"),
		validate:      validator.New(validator.WithRequiredStructEnabled()),
		now:           time.Now,
	}, nil
}

// render executes the specified page template with the given data
func (h *Handler) render(w http.ResponseWriter, status int, page string, data Page) {
	tmpl, ok := h.pageTemplates[page]
	if !ok {
		http.Error(w, "template not found: "+page, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := tmpl.ExecuteTemplate(w, "layout.html", data); err != nil {
		h.logger.Error("rendering page", zap.String("page", page), zap.Error(err))
	}
}

// page builds the common page data for the signed-in request.
func (h *Handler) page(w http.ResponseWriter, r *http.Request, title, active string) Page {
	p := Page{Title: title, Active: active, Flash: takeFlash(w, r)}
	if st := middleware.StateFrom(r.Context()); st != nil {
		res := st.Resolver()
		p.User = st.User()
		p.Access = res.Snapshot()
		p.IsOwner = res.IsOwner(h.app.OwnerEmails())
		p.Error = st.Error()
	}
	return p
}

// client returns a backend client authorized by the request's session.
func (h *Handler) client(r *http.Request) *backend.Client {
	st := middleware.StateFrom(r.Context())
	if st == nil {
		return h.app.Client(backend.StaticToken(""))
	}
	return h.app.Client(st.Session())
}

func (h *Handler) resolver(r *http.Request) entitlement.Resolver {
	if st := middleware.StateFrom(r.Context()); st != nil {
		return st.Resolver()
	}
	return entitlement.New(nil, nil)
}

// gate records a gating decision and reports whether it allowed access.
func (h *Handler) gate(feature string, err error) bool {
	mode := entitlement.ModeFull
	if err != nil {
		mode = entitlement.ModeLocked
	}
	h.app.Metrics().RecordGating(feature, mode.String())
	return err == nil
}

// fail handles an error from an action. A rejected session is cleared and
// sent to login; anything else is flashed back to the page at back.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, back string, err error) {
	if backend.IsAuth(err) || errors.Is(err, core.ErrNoSession) {
		if st := middleware.StateFrom(r.Context()); st != nil {
			_ = st.Logout(r.Context())
		}
		h.app.Metrics().RecordSession("expired")
		middleware.Redirect(w, r, middleware.LoginURL(r.URL.Path))
		return
	}
	h.logger.Warn("action failed", zap.String("path", r.URL.Path), zap.Error(err))
	setFlash(w, userMessage(err))
	middleware.Redirect(w, r, back)
}

// failPage renders the error page for a failed page load.
func (h *Handler) failPage(w http.ResponseWriter, r *http.Request, title string, err error) {
	if backend.IsAuth(err) {
		h.fail(w, r, "", err)
		return
	}
	p := h.page(w, r, title, "")
	p.Error = userMessage(err)
	h.render(w, statusFor(err), "error.html", p)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, core.ErrLocked), errors.Is(err, core.ErrNotOwner), backend.IsAccess(err):
		return http.StatusForbidden
	case errors.Is(err, core.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, core.ErrValidation):
		return http.StatusBadRequest
	default:
		return http.StatusBadGateway
	}
}

// userMessage returns the text shown to the user for err.
func userMessage(err error) string {
	var ve validator.ValidationErrors
	var ce *core.Error
	switch {
	case errors.As(err, &ve):
		return validationMessage(ve)
	case errors.Is(err, core.ErrLocked):
		return upgradeMessage
	case backend.IsAccess(err):
		return accessMessage(err)
	case errors.Is(err, core.ErrNotOwner):
		return "Owner access required."
	case errors.As(err, &ce) && ce.Code == core.ErrValidation.Code && ce.Cause != nil:
		return ce.Cause.Error()
	case errors.As(err, &ce):
		return ce.Message
	default:
		return backend.Message(err)
	}
}

const upgradeMessage = "Upgrade your plan to unlock this feature."

// accessMessage turns a backend 403 into upgrade messaging, keeping the
// backend's detail when it sent one.
func accessMessage(err error) string {
	var ae *backend.AccessError
	if errors.As(err, &ae) && ae.Message != "" && ae.Message != backend.UnexpectedError {
		return upgradeMessage + " " + ae.Message
	}
	return upgradeMessage
}

func validationMessage(errs validator.ValidationErrors) string {
	if len(errs) == 0 {
		return "Invalid input"
	}
	fe := errs[0]
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return "Enter a valid email address"
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	case "eqfield":
		return "Passwords do not match"
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, fe.Param())
	case "timezone":
		return "Unknown timezone"
	default:
		return field + " is invalid"
	}
}

const flashCookie = "tc_flash"

func setFlash(w http.ResponseWriter, msg string) {
	if msg == "" {
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookie,
		Value:    url.QueryEscape(msg),
		Path:     "/",
		MaxAge:   60,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func takeFlash(w http.ResponseWriter, r *http.Request) string {
	ck, err := r.Cookie(flashCookie)
	if err != nil || ck.Value == "" {
		return ""
	}
	http.SetCookie(w, &http.Cookie{Name: flashCookie, Path: "/", MaxAge: -1})
	msg, err := url.QueryUnescape(ck.Value)
	if err != nil {
		return ""
	}
	return msg
}

// Home sends visitors to the dashboard.
func (h *Handler) Home(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, profile.PathDashboard, http.StatusFound)
}

// TemplateFS returns the embedded template filesystem for external use.
func TemplateFS() fs.FS {
	subFS, err := fs.Sub(templateFS, "templates")
	if err != nil {
		// This should never happen with valid embed directive
		return templateFS
	}
	return subFS
}
