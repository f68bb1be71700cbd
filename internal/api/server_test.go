// internal/api/server_test.go
package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tradercopilot/swingdash/internal/api/response"
	"github.com/tradercopilot/swingdash/internal/app"
	"github.com/tradercopilot/swingdash/internal/config"
	"github.com/tradercopilot/swingdash/internal/session"
)

type account struct {
	token        string
	user         string
	entitlements string
}

var accounts = map[string]account{
	"free@example.com": {
		token:        "tok-free",
		user:         `{"id":1,"email":"free@example.com","name":"Fran Free","plan":"FREE"}`,
		entitlements: `{"tier":"FREE","allowed_tokens":["BTC","ETH"],"allowed_timeframes":["4H","1D"]}`,
	},
	"pro@example.com": {
		token:        "tok-pro",
		user:         `{"id":2,"email":"pro@example.com","name":"Pat Pro","plan":"PRO"}`,
		entitlements: `{"tier":"PRO","advisor_access":true,"telegram_access":true}`,
	},
	"expired@example.com": {
		token:        "tok-expired",
		user:         `{"id":3,"email":"expired@example.com","name":"Eve","plan":"TRADER"}`,
		entitlements: `{"tier":"TRADER","is_trial_expired":true}`,
	},
	"owner@example.com": {
		token:        "tok-owner",
		user:         `{"id":4,"email":"owner@example.com","name":"Olga","plan":"PRO"}`,
		entitlements: `{"tier":"PRO","advisor_access":true}`,
	},
}

// fakeBackend serves the signals REST API for the accounts above and
// records every call it receives.
type fakeBackend struct {
	srv *httptest.Server

	mu        sync.Mutex
	calls     []string
	revoked   map[string]bool
	overrides map[string]reply
}

type reply struct {
	status int
	body   string
}

func newFakeBackend(t *testing.T) *fakeBackend {
	t.Helper()
	fb := &fakeBackend{revoked: map[string]bool{}, overrides: map[string]reply{}}
	fb.srv = httptest.NewServer(http.HandlerFunc(fb.serve))
	t.Cleanup(fb.srv.Close)
	return fb
}

func (fb *fakeBackend) revoke(token string) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	fb.revoked[token] = true
}

// respond makes the backend answer call with status and body.
func (fb *fakeBackend) respond(call string, status int, body string) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	fb.overrides[call] = reply{status: status, body: body}
}

func (fb *fakeBackend) called(call string) bool {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	for _, c := range fb.calls {
		if c == call {
			return true
		}
	}
	return false
}

func (fb *fakeBackend) serve(w http.ResponseWriter, r *http.Request) {
	call := r.Method + " " + r.URL.Path
	fb.mu.Lock()
	fb.calls = append(fb.calls, call)
	fb.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	if call == "POST /auth/token" {
		acct, ok := accounts[r.PostFormValue("username")]
		if !ok || r.PostFormValue("password") != "secret123" {
			w.WriteHeader(http.StatusUnauthorized)
			io.WriteString(w, `{"detail":"Incorrect email or password"}`)
			return
		}
		io.WriteString(w, `{"access_token":"`+acct.token+`","token_type":"bearer"}`)
		return
	}

	token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	var acct *account
	for _, a := range accounts {
		if a.token == token {
			acct = &a
		}
	}
	fb.mu.Lock()
	revoked := fb.revoked[token]
	override, overridden := fb.overrides[call]
	fb.mu.Unlock()
	if acct == nil || revoked {
		w.WriteHeader(http.StatusUnauthorized)
		io.WriteString(w, `{"detail":"Could not validate credentials"}`)
		return
	}
	if overridden {
		w.WriteHeader(override.status)
		io.WriteString(w, override.body)
		return
	}

	switch call {
	case "GET /auth/users/me":
		io.WriteString(w, acct.user)
	case "GET /auth/me/entitlements":
		io.WriteString(w, acct.entitlements)
	case "GET /stats/dashboard":
		io.WriteString(w, `{"summary":{"win_rate_24h":62.5,"open_signals":3},"chart":[]}`)
	case "GET /logs/recent":
		io.WriteString(w, `[{"id":10,"token":"BTC","timeframe":"4h","direction":"long","entry":100,"tp":110,"sl":95,"confidence":0.8},
			{"id":11,"token":"SOL","timeframe":"4h","direction":"short","entry":20,"tp":18,"sl":21,"confidence":0.7}]`)
	case "GET /market/summary":
		io.WriteString(w, `[{"symbol":"BTC","price":64000,"change_24h":1.5}]`)
	case "GET /news/":
		io.WriteString(w, `{"results":[]}`)
	case "GET /signals/10":
		io.WriteString(w, `{"id":10,"token":"BTC","timeframe":"4h","direction":"long"}`)
	case "GET /signals/11":
		io.WriteString(w, `{"id":11,"token":"SOL","timeframe":"4h","direction":"short"}`)
	case "DELETE /signals/10", "DELETE /signals/11":
		io.WriteString(w, `{}`)
	case "POST /analysis/lite":
		io.WriteString(w, `{"id":5,"token":"BTC","timeframe":"4h","direction":"long","entry":100,"tp":110,"sl":95,"confidence":0.8}`)
	case "POST /analysis/pro":
		io.WriteString(w, `{"id":9,"raw":"# BTC report"}`)
	case "POST /advisor/chat":
		io.WriteString(w, `{"response":"Stay patient."}`)
	case "GET /admin/stats":
		io.WriteString(w, `{"total_users":4,"system_status":"ok"}`)
	case "GET /admin/users":
		io.WriteString(w, `{"items":[{"id":1,"email":"free@example.com","plan":"FREE"}],"total":1,"page":1,"size":20}`)
	default:
		w.WriteHeader(http.StatusNotFound)
		io.WriteString(w, `{"detail":"Not Found"}`)
	}
}

func newTestServer(t *testing.T, fb *fakeBackend, mutate ...func(*config.Config)) (*Server, *app.App) {
	t.Helper()
	cfg := config.Defaults()
	cfg.Backend.BaseURL = fb.srv.URL
	cfg.Archive.Path = filepath.Join(t.TempDir(), "archive")
	cfg.Admin.OwnerEmails = []string{"owner@example.com"}
	cfg.RateLimit.Enabled = false
	for _, m := range mutate {
		m(cfg)
	}

	a, err := app.New(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { a.Close() })

	srv, err := NewServer(a)
	require.NoError(t, err)
	return srv, a
}

// browser is a cookie-keeping client that does not follow redirects.
type browser struct {
	t    *testing.T
	base string
	c    *http.Client
}

func newBrowser(t *testing.T, srv *Server) *browser {
	t.Helper()
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &browser{
		t:    t,
		base: ts.URL,
		c: &http.Client{
			Jar: jar,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

func (b *browser) get(path string) (*http.Response, string) {
	b.t.Helper()
	resp, err := b.c.Get(b.base + path)
	require.NoError(b.t, err)
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	return resp, string(body)
}

func (b *browser) post(path string, form url.Values) (*http.Response, string) {
	b.t.Helper()
	resp, err := b.c.PostForm(b.base+path, form)
	require.NoError(b.t, err)
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	return resp, string(body)
}

func (b *browser) login(email string) *http.Response {
	b.t.Helper()
	resp, _ := b.post("/auth/login", url.Values{"email": {email}, "password": {"secret123"}})
	require.Equal(b.t, http.StatusSeeOther, resp.StatusCode)
	return resp
}

func TestServer_Health(t *testing.T) {
	srv, _ := newTestServer(t, newFakeBackend(t))

	req := httptest.NewRequest("GET", "/api/health", nil)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
	var resp response.SuccessResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Data.(map[string]any)["status"])
}

func TestServer_DashboardRequiresSession(t *testing.T) {
	srv, _ := newTestServer(t, newFakeBackend(t))
	b := newBrowser(t, srv)

	resp, _ := b.get("/dashboard/signals")
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/auth/login?next=%2Fdashboard%2Fsignals", resp.Header.Get("Location"))

	resp, _ = b.get("/pricing")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestServer_LoginFlow(t *testing.T) {
	srv, _ := newTestServer(t, newFakeBackend(t))
	b := newBrowser(t, srv)

	resp := b.login("pro@example.com")
	assert.Equal(t, "/dashboard", resp.Header.Get("Location"))

	var token *http.Cookie
	for _, ck := range resp.Cookies() {
		if ck.Name == session.CookieName {
			token = ck
		}
	}
	require.NotNil(t, token)
	assert.Equal(t, "tok-pro", token.Value)
	assert.True(t, token.HttpOnly)

	resp, body := b.get("/dashboard")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Welcome back, Pat")
	assert.Contains(t, body, "62.5%")
}

func TestServer_LoginNextIsLocalOnly(t *testing.T) {
	srv, _ := newTestServer(t, newFakeBackend(t))

	for next, want := range map[string]string{
		"/dashboard/signals":       "/dashboard/signals",
		"https://evil.example/x":   "/dashboard",
		"//evil.example/dashboard": "/dashboard",
		"/auth/logout":             "/dashboard",
	} {
		b := newBrowser(t, srv)
		resp, _ := b.post("/auth/login", url.Values{
			"email": {"pro@example.com"}, "password": {"secret123"}, "next": {next},
		})
		assert.Equal(t, want, resp.Header.Get("Location"), next)
	}
}

func TestServer_LoginRejected(t *testing.T) {
	srv, _ := newTestServer(t, newFakeBackend(t))
	b := newBrowser(t, srv)

	resp, body := b.post("/auth/login", url.Values{"email": {"pro@example.com"}, "password": {"nope"}})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Contains(t, body, "Session expired or invalid credentials.")

	resp, body = b.post("/auth/login", url.Values{"email": {"not-an-email"}, "password": {"x"}})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, body, "Enter a valid email address")
}

func TestServer_ExpiredTrialRedirects(t *testing.T) {
	fb := newFakeBackend(t)
	srv, _ := newTestServer(t, fb)
	b := newBrowser(t, srv)

	resp := b.login("expired@example.com")
	assert.Equal(t, "/trial-expired", resp.Header.Get("Location"))

	resp, _ = b.get("/dashboard/signals")
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/trial-expired", resp.Header.Get("Location"))
	assert.False(t, fb.called("POST /billing/sync"))

	resp, body := b.get("/trial-expired")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Your trial has ended")
}

func TestServer_RevokedTokenClearsSession(t *testing.T) {
	fb := newFakeBackend(t)
	srv, _ := newTestServer(t, fb)
	b := newBrowser(t, srv)
	b.login("pro@example.com")

	fb.revoke("tok-pro")
	resp, _ := b.get("/dashboard")
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/auth/login", resp.Header.Get("Location"))

	resp, _ = b.get("/dashboard")
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/auth/login?next=%2Fdashboard", resp.Header.Get("Location"))
}

func TestServer_AccessEndpoint(t *testing.T) {
	srv, _ := newTestServer(t, newFakeBackend(t))
	b := newBrowser(t, srv)

	resp, _ := b.get("/api/v1/access")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	b.login("free@example.com")
	resp, body := b.get("/api/v1/access")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out struct {
		Data struct {
			Access struct {
				Tier   string          `json:"tier"`
				Tokens map[string]bool `json:"tokens"`
			} `json:"access"`
			HistoryDays int `json:"history_days"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(body), &out))
	assert.Equal(t, "FREE", out.Data.Access.Tier)
	assert.True(t, out.Data.Access.Tokens["BTC"])
	assert.False(t, out.Data.Access.Tokens["SOL"])
	assert.Equal(t, 7, out.Data.HistoryDays)
}

func TestServer_LockedSignalRowsAndActions(t *testing.T) {
	fb := newFakeBackend(t)
	srv, _ := newTestServer(t, fb)
	b := newBrowser(t, srv)
	b.login("free@example.com")

	resp, body := b.get("/dashboard/signals")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Upgrade to unlock SOL")
	assert.Contains(t, body, "/dashboard/signals/10/delete")
	assert.NotContains(t, body, "/dashboard/signals/11/delete")

	resp, _ = b.post("/dashboard/signals/11/delete", nil)
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.False(t, fb.called("DELETE /signals/11"))

	resp, _ = b.post("/dashboard/signals/10/delete", nil)
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.True(t, fb.called("DELETE /signals/10"))
}

func flashOf(t *testing.T, resp *http.Response) string {
	t.Helper()
	for _, ck := range resp.Cookies() {
		if ck.Name == "tc_flash" {
			msg, err := url.QueryUnescape(ck.Value)
			require.NoError(t, err)
			return msg
		}
	}
	return ""
}

func TestServer_BackendForbiddenShowsUpgrade(t *testing.T) {
	fb := newFakeBackend(t)
	fb.respond("DELETE /signals/10", http.StatusForbidden, `forbidden`)
	srv, _ := newTestServer(t, fb)
	b := newBrowser(t, srv)
	b.login("free@example.com")

	resp, _ := b.post("/dashboard/signals/10/delete", nil)
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.True(t, fb.called("DELETE /signals/10"))
	assert.Equal(t, "Upgrade your plan to unlock this feature.", flashOf(t, resp))
	assert.NotContains(t, flashOf(t, resp), "Unexpected error")
}

func TestServer_LiteScanLockedTokenNeverReachesBackend(t *testing.T) {
	fb := newFakeBackend(t)
	srv, _ := newTestServer(t, fb)
	b := newBrowser(t, srv)
	b.login("free@example.com")

	resp, body := b.post("/dashboard/analysis/lite", url.Values{"token": {"SOL"}, "timeframe": {"4H"}})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Contains(t, body, "Upgrade your plan")
	assert.False(t, fb.called("POST /analysis/lite"))

	resp, body = b.post("/dashboard/analysis/lite", url.Values{"token": {"BTC"}, "timeframe": {"4H"}})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "BTC 4H · LONG")
}

func TestServer_AdvisorLockedForFree(t *testing.T) {
	fb := newFakeBackend(t)
	srv, _ := newTestServer(t, fb)
	b := newBrowser(t, srv)
	b.login("free@example.com")

	resp, _ := b.get("/dashboard/advisor")
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/dashboard/advisor/locked", resp.Header.Get("Location"))

	resp, _ = b.post("/dashboard/advisor", url.Values{"message": {"hi"}})
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.False(t, fb.called("POST /advisor/chat"))
}

func TestServer_AdvisorChat(t *testing.T) {
	srv, _ := newTestServer(t, newFakeBackend(t))
	b := newBrowser(t, srv)
	b.login("pro@example.com")

	resp, body := b.post("/dashboard/advisor", url.Values{"message": {"Should I add to BTC?"}})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Stay patient.")
	assert.Contains(t, body, "Should I add to BTC?")
}

func TestServer_ProReportJob(t *testing.T) {
	srv, a := newTestServer(t, newFakeBackend(t))
	b := newBrowser(t, srv)
	b.login("pro@example.com")

	resp, _ := b.post("/dashboard/analysis/pro", url.Values{"token": {"BTC"}, "language": {"es"}})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	loc := resp.Header.Get("Location")
	require.True(t, strings.HasPrefix(loc, "/dashboard/analysis/jobs/"), loc)
	id := strings.TrimPrefix(loc, "/dashboard/analysis/jobs/")

	a.Pro().Wait()

	resp, body := b.get("/api/v1/scan/jobs/" + id)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, `"status":"complete"`)

	resp, body = b.get(loc + "/report")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "Institutional_Analysis_BTC_")
	assert.Equal(t, "# BTC report", body)

	other := newBrowser(t, srv)
	other.login("owner@example.com")
	resp, _ = other.get("/api/v1/scan/jobs/" + id)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestServer_ProReportRequiresPro(t *testing.T) {
	fb := newFakeBackend(t)
	srv, a := newTestServer(t, fb)
	b := newBrowser(t, srv)
	b.login("free@example.com")

	resp, _ := b.post("/dashboard/analysis/pro", url.Values{"token": {"BTC"}})
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/dashboard/analysis", resp.Header.Get("Location"))
	assert.Equal(t, 0, a.Jobs().Len())
	assert.False(t, fb.called("POST /analysis/pro"))
}

func TestServer_AdminOwnerOnly(t *testing.T) {
	fb := newFakeBackend(t)
	srv, _ := newTestServer(t, fb)

	pro := newBrowser(t, srv)
	pro.login("pro@example.com")
	resp, _ := pro.get("/dashboard/admin")
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/dashboard", resp.Header.Get("Location"))

	resp, _ = pro.post("/dashboard/admin/users/1/plan", url.Values{"plan": {"PRO"}})
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.False(t, fb.called("PATCH /admin/users/1/plan"))

	owner := newBrowser(t, srv)
	owner.login("owner@example.com")
	resp, body := owner.get("/dashboard/admin")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "free@example.com")
}

func TestServer_AdminUsersUnauthorizedClearsSession(t *testing.T) {
	fb := newFakeBackend(t)
	fb.respond("GET /admin/users", http.StatusUnauthorized, `{"detail":"Could not validate credentials"}`)
	srv, _ := newTestServer(t, fb)
	b := newBrowser(t, srv)
	b.login("owner@example.com")

	resp, _ := b.get("/dashboard/admin")
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/auth/login?next=%2Fdashboard%2Fadmin", resp.Header.Get("Location"))

	resp, _ = b.get("/dashboard")
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/auth/login?next=%2Fdashboard", resp.Header.Get("Location"))
}

func TestServer_BillingWithoutURLReturnsToPricing(t *testing.T) {
	fb := newFakeBackend(t)
	fb.respond("POST /billing/checkout-session", http.StatusOK, `{"url":""}`)
	fb.respond("POST /billing/portal-session", http.StatusOK, `{}`)
	srv, _ := newTestServer(t, fb)
	b := newBrowser(t, srv)
	b.login("free@example.com")

	resp, _ := b.post("/billing/checkout", url.Values{"plan": {"PRO"}})
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/pricing", resp.Header.Get("Location"))
	assert.Contains(t, flashOf(t, resp), "Billing is unavailable")

	resp, _ = b.post("/billing/portal", nil)
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/pricing", resp.Header.Get("Location"))
}

func TestServer_JobsRejectExpiredTrial(t *testing.T) {
	srv, _ := newTestServer(t, newFakeBackend(t))
	b := newBrowser(t, srv)
	b.login("expired@example.com")

	resp, body := b.get("/api/v1/scan/jobs")
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Contains(t, body, "TRIAL_EXPIRED")
}

func TestServer_Logout(t *testing.T) {
	srv, _ := newTestServer(t, newFakeBackend(t))
	b := newBrowser(t, srv)
	b.login("pro@example.com")

	resp, _ := b.post("/auth/logout", nil)
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/auth/login", resp.Header.Get("Location"))

	resp, _ = b.get("/dashboard")
	assert.Equal(t, http.StatusFound, resp.StatusCode)
}

func TestServer_LoginRateLimited(t *testing.T) {
	srv, _ := newTestServer(t, newFakeBackend(t), func(c *config.Config) {
		c.RateLimit.Enabled = true
		c.RateLimit.RPS = 0.001
		c.RateLimit.Burst = 2
	})
	b := newBrowser(t, srv)

	form := url.Values{"email": {"pro@example.com"}, "password": {"nope"}}
	for i := 0; i < 2; i++ {
		resp, _ := b.post("/auth/login", form)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	}
	resp, _ := b.post("/auth/login", form)
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)

	resp, _ = b.get("/auth/login")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestServer_Metrics(t *testing.T) {
	srv, _ := newTestServer(t, newFakeBackend(t), func(c *config.Config) {
		c.Metrics.APIKey = "scrape-key"
	})
	b := newBrowser(t, srv)
	b.login("free@example.com")
	b.get("/dashboard")

	resp, _ := b.get("/metrics")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	req, _ := http.NewRequest("GET", b.base+"/metrics", nil)
	req.Header.Set("X-API-Key", "scrape-key")
	mresp, err := b.c.Do(req)
	require.NoError(t, err)
	defer mresp.Body.Close()
	body, _ := io.ReadAll(mresp.Body)

	assert.Equal(t, http.StatusOK, mresp.StatusCode)
	assert.Contains(t, string(body), `http_requests_total{method="GET",path="GET /dashboard",status="2xx"}`)
	assert.Contains(t, string(body), "swingdash_backend_calls_total")
	assert.Contains(t, string(body), `swingdash_session_events_total{event="login"}`)
}
