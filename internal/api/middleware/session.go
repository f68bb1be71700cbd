// Package middleware holds the HTTP middleware of the dashboard server.
package middleware

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/tradercopilot/swingdash/internal/profile"
	"github.com/tradercopilot/swingdash/internal/session"
)

// ProtectedPrefix is the path prefix that requires a session.
const ProtectedPrefix = "/dashboard"

// Chain applies middleware so the first one listed runs outermost.
func Chain(h http.Handler, mw ...func(http.Handler) http.Handler) http.Handler {
	for i := len(mw) - 1; i >= 0; i-- {
		h = mw[i](h)
	}
	return h
}

// RequireSession redirects requests under prefix that carry no session
// cookie to the login page, preserving the requested path as "next".
func RequireSession(prefix string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !IsProtected(r.URL.Path, prefix) {
				next.ServeHTTP(w, r)
				return
			}
			if ck, err := r.Cookie(session.CookieName); err != nil || ck.Value == "" {
				http.Redirect(w, r, LoginURL(r.URL.Path), http.StatusFound)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// IsProtected reports whether path is prefix or lies beneath it.
func IsProtected(path, prefix string) bool {
	return path == prefix || strings.HasPrefix(path, prefix+"/")
}

// LoginURL builds the login redirect for a requested path.
func LoginURL(next string) string {
	if next == "" {
		return profile.PathLogin
	}
	return profile.PathLogin + "?next=" + url.QueryEscape(next)
}

// SafeNext returns next when it is a local dashboard path, else the
// dashboard root. It prevents open redirects through the login form.
func SafeNext(next string) string {
	if strings.HasPrefix(next, "//") || strings.Contains(next, "\\") {
		return profile.PathDashboard
	}
	u, err := url.Parse(next)
	if err != nil || u.IsAbs() || u.Host != "" || !IsProtected(u.Path, ProtectedPrefix) {
		return profile.PathDashboard
	}
	return u.RequestURI()
}
