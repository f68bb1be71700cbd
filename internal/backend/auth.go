package backend

import (
	"context"
	"net/http"
	"net/url"

	"github.com/tradercopilot/swingdash/internal/core"
)

// TokenResponse is the login result. Some backend builds inline the user.
type TokenResponse struct {
	AccessToken string     `json:"access_token"`
	TokenType   string     `json:"token_type"`
	User        *core.User `json:"user,omitempty"`
}

// Login exchanges credentials for a bearer token using a form body.
func (c *Client) Login(ctx context.Context, email, password string) (*TokenResponse, error) {
	form := url.Values{}
	form.Set("username", email)
	form.Set("password", password)

	var out TokenResponse
	if err := c.Do(ctx, http.MethodPost, "/auth/token", &out, Form(form)); err != nil {
		return nil, err
	}
	return &out, nil
}

// RegisterRequest is the sign-up payload.
type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name,omitempty"`
}

// Register creates an account. The backend may or may not return a token.
func (c *Client) Register(ctx context.Context, req RegisterRequest) (*TokenResponse, error) {
	var out TokenResponse
	if err := c.Do(ctx, http.MethodPost, "/auth/register", &out, JSON(req)); err != nil {
		return nil, err
	}
	return &out, nil
}

// CurrentUser fetches the signed-in user.
func (c *Client) CurrentUser(ctx context.Context) (*core.User, error) {
	var out core.User
	if err := c.Do(ctx, http.MethodGet, "/auth/users/me", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Entitlements fetches the server-computed access summary.
func (c *Client) Entitlements(ctx context.Context) (*core.Entitlements, error) {
	var out core.Entitlements
	if err := c.Do(ctx, http.MethodGet, "/auth/me/entitlements", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdatePassword changes the account password.
func (c *Client) UpdatePassword(ctx context.Context, oldPassword, newPassword string) error {
	body := map[string]string{"old_password": oldPassword, "new_password": newPassword}
	return c.Do(ctx, http.MethodPatch, "/auth/users/me/password", nil, JSON(body))
}

// UpdateTimezone sets the account timezone.
func (c *Client) UpdateTimezone(ctx context.Context, timezone string) error {
	return c.Do(ctx, http.MethodPatch, "/auth/users/me/timezone", nil, JSON(map[string]string{"timezone": timezone}))
}

// UpdateTelegram links a Telegram chat. An empty chat id disconnects it.
func (c *Client) UpdateTelegram(ctx context.Context, chatID string) error {
	return c.Do(ctx, http.MethodPatch, "/auth/users/me/telegram", nil, JSON(map[string]string{"chat_id": chatID}))
}
