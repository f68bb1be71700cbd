package session

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"
)

// CookieName is the cookie carrying the bearer token.
const CookieName = "tc_token"

// CookiePath scopes the token cookie to the whole site.
const CookiePath = "/"

// NewCookie builds the token cookie. A zero ttl builds an expiring cookie
// that deletes the token.
func NewCookie(token string, ttl time.Duration, secure bool) *http.Cookie {
	c := &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     CookiePath,
		SameSite: http.SameSiteLaxMode,
		Secure:   secure,
		HttpOnly: true,
	}
	if token == "" || ttl <= 0 {
		c.Value = ""
		c.MaxAge = -1
		c.Expires = time.Unix(0, 0)
		return c
	}
	c.MaxAge = int(ttl / time.Second)
	return c
}

// IsSecureRequest reports whether the request arrived over HTTPS, directly
// or behind a proxy setting X-Forwarded-Proto.
func IsSecureRequest(r *http.Request) bool {
	if r.TLS != nil {
		return true
	}
	return strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https")
}

// CookieStore reads the token cookie from a request and writes it to the
// response. It is scoped to a single request.
type CookieStore struct {
	w http.ResponseWriter
	r *http.Request

	mu      sync.Mutex
	written bool
	value   string
}

// NewCookieStore binds a cookie store to one request/response pair.
func NewCookieStore(w http.ResponseWriter, r *http.Request) *CookieStore {
	return &CookieStore{w: w, r: r}
}

func (c *CookieStore) Load(_ context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.written {
		return c.value, nil
	}
	ck, err := c.r.Cookie(CookieName)
	if errors.Is(err, http.ErrNoCookie) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return ck.Value, nil
}

func (c *CookieStore) Save(_ context.Context, token string, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	http.SetCookie(c.w, NewCookie(token, ttl, IsSecureRequest(c.r)))
	c.written = true
	c.value = token
	return nil
}

func (c *CookieStore) Remove(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	http.SetCookie(c.w, NewCookie("", 0, IsSecureRequest(c.r)))
	c.written = true
	c.value = ""
	return nil
}

// CookieFile keeps the token cookie for command-line use as a single
// Set-Cookie line on disk, honoring its Max-Age.
type CookieFile struct {
	path   string
	secure bool
	now    func() time.Time
}

// NewCookieFile returns a cookie jar file at path. secure marks the cookie
// Secure, as when the backend is reached over HTTPS.
func NewCookieFile(path string, secure bool) *CookieFile {
	return &CookieFile{path: path, secure: secure, now: time.Now}
}

type savedCookie struct {
	line    string
	savedAt time.Time
}

func (c *CookieFile) Load(_ context.Context) (string, error) {
	data, err := os.ReadFile(c.path)
	if errors.Is(err, os.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read cookie file: %w", err)
	}
	saved, err := parseCookieFile(string(data))
	if err != nil {
		return "", err
	}
	ck, err := http.ParseSetCookie(saved.line)
	if err != nil {
		return "", fmt.Errorf("parse cookie file: %w", err)
	}
	if ck.Name != CookieName || ck.MaxAge < 0 {
		return "", nil
	}
	if ck.MaxAge > 0 && c.now().After(saved.savedAt.Add(time.Duration(ck.MaxAge)*time.Second)) {
		return "", nil
	}
	return ck.Value, nil
}

func (c *CookieFile) Save(_ context.Context, token string, ttl time.Duration) error {
	line := NewCookie(token, ttl, c.secure).String()
	content := c.now().UTC().Format(time.RFC3339) + "\n" + line + "\n"
	return writeFileAtomic(c.path, []byte(content))
}

func (c *CookieFile) Remove(_ context.Context) error {
	if err := os.Remove(c.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove cookie file: %w", err)
	}
	return nil
}

// parseCookieFile splits the save timestamp from the Set-Cookie line.
func parseCookieFile(content string) (savedCookie, error) {
	lines := strings.SplitN(strings.TrimSpace(content), "\n", 2)
	if len(lines) != 2 {
		return savedCookie{}, errors.New("malformed cookie file")
	}
	at, err := time.Parse(time.RFC3339, strings.TrimSpace(lines[0]))
	if err != nil {
		return savedCookie{}, fmt.Errorf("malformed cookie timestamp: %w", err)
	}
	return savedCookie{line: strings.TrimSpace(lines[1]), savedAt: at}, nil
}
