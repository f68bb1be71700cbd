package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	// DefaultBaseURL is used when no backend URL is configured.
	DefaultBaseURL = "http://localhost:8000"
	// DefaultTimeout bounds every request.
	DefaultTimeout = 60 * time.Second
	// LongTimeout bounds long-running analysis generation.
	LongTimeout = 90 * time.Second

	maxBody = 16 << 20
)

// NormalizeBaseURL trims trailing slashes and adds a scheme when missing:
// http for localhost and 127.0.0.1, https for anything else.
func NormalizeBaseURL(raw string) string {
	v := strings.TrimRight(strings.TrimSpace(raw), "/")
	if v == "" {
		return DefaultBaseURL
	}
	if strings.HasPrefix(v, "http://") || strings.HasPrefix(v, "https://") {
		return v
	}
	lower := strings.ToLower(v)
	if strings.HasPrefix(lower, "localhost") || strings.HasPrefix(lower, "127.0.0.1") {
		return "http://" + v
	}
	return "https://" + v
}

// TokenSource yields the current bearer token, or "" when signed out.
type TokenSource interface {
	Token(ctx context.Context) string
}

// StaticToken is a fixed bearer token.
type StaticToken string

func (t StaticToken) Token(context.Context) string { return string(t) }

// Observer records the outcome of each backend call.
type Observer interface {
	ObserveBackendCall(endpoint, outcome string, duration time.Duration)
}

// Client calls the signals backend over REST/JSON.
type Client struct {
	baseURL  string
	http     *http.Client
	tokens   TokenSource
	timeout  time.Duration
	long     time.Duration
	observer Observer
	logger   *zap.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithTokenSource sets where the bearer token is read from.
func WithTokenSource(ts TokenSource) Option {
	return func(c *Client) { c.tokens = ts }
}

// WithDefaultTimeout overrides DefaultTimeout.
func WithDefaultTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithLongTimeout overrides LongTimeout for analysis generation.
func WithLongTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.long = d
		}
	}
}

// WithObserver sets the call observer.
func WithObserver(o Observer) Option {
	return func(c *Client) { c.observer = o }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// New creates a client for the backend at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: NormalizeBaseURL(baseURL),
		http:    &http.Client{},
		timeout: DefaultTimeout,
		long:    LongTimeout,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the normalized backend URL.
func (c *Client) BaseURL() string { return c.baseURL }

// WithTokens returns a copy of the client reading tokens from ts.
func (c *Client) WithTokens(ts TokenSource) *Client {
	cp := *c
	cp.tokens = ts
	return &cp
}

type request struct {
	query    url.Values
	jsonBody any
	hasJSON  bool
	form     url.Values
	timeout  time.Duration
	endpoint string
}

// RequestOption configures a single call.
type RequestOption func(*request)

// Query adds a query parameter; empty values are skipped.
func Query(key, value string) RequestOption {
	return func(r *request) {
		if value == "" {
			return
		}
		if r.query == nil {
			r.query = url.Values{}
		}
		r.query.Add(key, value)
	}
}

// JSON sends v as the JSON request body.
func JSON(v any) RequestOption {
	return func(r *request) {
		r.jsonBody = v
		r.hasJSON = true
	}
}

// Form sends form-encoded values. No JSON content type is sent.
func Form(values url.Values) RequestOption {
	return func(r *request) { r.form = values }
}

// Timeout overrides the client timeout for one call.
func Timeout(d time.Duration) RequestOption {
	return func(r *request) { r.timeout = d }
}

// Endpoint labels the call for metrics, e.g. "/signals/{id}".
func Endpoint(label string) RequestOption {
	return func(r *request) { r.endpoint = label }
}

// Do performs a request and decodes a JSON response into out (which may be
// nil). Non-2xx responses map to AuthError, AccessError or APIError.
func (c *Client) Do(ctx context.Context, method, path string, out any, opts ...RequestOption) error {
	req := request{timeout: c.timeout}
	for _, opt := range opts {
		opt(&req)
	}
	if req.endpoint == "" {
		req.endpoint = path
	}

	start := time.Now()
	err := c.do(ctx, method, path, out, req)
	if c.observer != nil {
		c.observer.ObserveBackendCall(method+" "+req.endpoint, outcome(err), time.Since(start))
	}
	if err != nil {
		c.logger.Debug("backend call failed",
			zap.String("method", method),
			zap.String("endpoint", req.endpoint),
			zap.Error(err),
		)
	}
	return err
}

func (c *Client) do(ctx context.Context, method, path string, out any, req request) error {
	ctx, cancel := context.WithTimeout(ctx, req.timeout)
	defer cancel()

	target := c.baseURL + "/" + strings.TrimPrefix(path, "/")
	if len(req.query) > 0 {
		target += "?" + req.query.Encode()
	}

	var body io.Reader
	contentType := ""
	switch {
	case req.form != nil:
		body = strings.NewReader(req.form.Encode())
		contentType = "application/x-www-form-urlencoded"
	case req.hasJSON:
		data, err := json.Marshal(req.jsonBody)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		body = bytes.NewReader(data)
		contentType = "application/json"
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")
	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}
	if c.tokens != nil {
		if token := c.tokens.Token(ctx); token != "" {
			httpReq.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return transportError(ctx, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return &AuthError{Message: "Session expired or invalid credentials."}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return transportError(ctx, err)
	}
	isJSON := isJSONContent(resp.Header.Get("Content-Type"))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, code := UnexpectedError, ""
		if isJSON {
			msg, code = normalizeDetail(data)
		}
		if resp.StatusCode == http.StatusForbidden {
			return &AccessError{Message: msg, Code: code}
		}
		return &APIError{Status: resp.StatusCode, Message: msg}
	}

	if out == nil || !isJSON || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}

func transportError(ctx context.Context, err error) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
		return &TransportError{Timeout: true, Message: "Request timeout", Err: err}
	}
	return &TransportError{Message: "Network error: " + err.Error(), Err: err}
}

func isJSONContent(ct string) bool {
	mt, _, err := mime.ParseMediaType(ct)
	if err != nil {
		return strings.Contains(ct, "application/json")
	}
	return mt == "application/json" || strings.HasSuffix(mt, "+json")
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case IsAuth(err):
		return "unauthorized"
	case IsAccess(err):
		return "forbidden"
	case IsTimeout(err):
		return "timeout"
	}
	var api *APIError
	if errors.As(err, &api) {
		return "error"
	}
	var transport *TransportError
	if errors.As(err, &transport) {
		return "network"
	}
	return "decode"
}
