package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tradercopilot/swingdash/internal/session"
)

func TestRequireSession(t *testing.T) {
	h := RequireSession(ProtectedPrefix)(okHandler())

	tests := []struct {
		name     string
		path     string
		cookie   string
		wantCode int
		wantLoc  string
	}{
		{"public page", "/pricing", "", http.StatusOK, ""},
		{"lookalike prefix", "/dashboards", "", http.StatusOK, ""},
		{"root without cookie", "/dashboard", "", http.StatusFound, "/auth/login?next=%2Fdashboard"},
		{"nested without cookie", "/dashboard/signals", "", http.StatusFound, "/auth/login?next=%2Fdashboard%2Fsignals"},
		{"with cookie", "/dashboard/signals", "tok", http.StatusOK, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", tt.path, nil)
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: session.CookieName, Value: tt.cookie})
			}
			w := httptest.NewRecorder()
			h.ServeHTTP(w, req)

			assert.Equal(t, tt.wantCode, w.Code)
			assert.Equal(t, tt.wantLoc, w.Header().Get("Location"))
		})
	}
}

func TestRequireSession_EmptyCookie(t *testing.T) {
	h := RequireSession(ProtectedPrefix)(okHandler())

	req := httptest.NewRequest("GET", "/dashboard", nil)
	req.AddCookie(&http.Cookie{Name: session.CookieName, Value: ""})
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	assert.Equal(t, http.StatusFound, w.Code)
}

func TestSafeNext(t *testing.T) {
	tests := map[string]string{
		"":                               "/dashboard",
		"/dashboard":                     "/dashboard",
		"/dashboard/signals?token=BTC":   "/dashboard/signals?token=BTC",
		"/pricing":                       "/dashboard",
		"https://evil.example/dashboard": "/dashboard",
		"//evil.example/dashboard":       "/dashboard",
		`/\evil.example`:                 "/dashboard",
		"/dashboardx":                    "/dashboard",
	}
	for next, want := range tests {
		assert.Equal(t, want, SafeNext(next), next)
	}
}

func TestLoginURL(t *testing.T) {
	assert.Equal(t, "/auth/login", LoginURL(""))
	assert.Equal(t, "/auth/login?next=%2Fdashboard%2Fadvisor", LoginURL("/dashboard/advisor"))
}

func TestChainOrder(t *testing.T) {
	var order []string
	mark := func(name string) func(http.Handler) http.Handler {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	h := Chain(okHandler(), mark("outer"), mark("inner"))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/", nil))

	assert.Equal(t, []string{"outer", "inner"}, order)
}

func TestRedirectStatus(t *testing.T) {
	w := httptest.NewRecorder()
	Redirect(w, httptest.NewRequest("GET", "/dashboard", nil), "/trial-expired")
	assert.Equal(t, http.StatusFound, w.Code)

	w = httptest.NewRecorder()
	Redirect(w, httptest.NewRequest("POST", "/dashboard/advisor", nil), "/trial-expired")
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/trial-expired", w.Header().Get("Location"))
}
