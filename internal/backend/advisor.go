package backend

import (
	"context"
	"net/http"
)

// ChatMessage is one turn of an advisor conversation.
type ChatMessage struct {
	Role    string `json:"role" validate:"required,oneof=user assistant system"`
	Content string `json:"content" validate:"required"`
}

// ChatReply is the advisor's answer. Reply is filled from whichever field
// the backend used.
type ChatReply struct {
	Reply string         `json:"reply"`
	Usage map[string]any `json:"usage,omitempty"`
}

type rawChatReply struct {
	Reply    string         `json:"reply"`
	Response string         `json:"response"`
	Message  string         `json:"message"`
	Content  string         `json:"content"`
	Text     string         `json:"text"`
	Usage    map[string]any `json:"usage"`
}

// Chat sends the conversation with optional context and returns the reply.
func (c *Client) Chat(ctx context.Context, messages []ChatMessage, chatContext map[string]any) (*ChatReply, error) {
	body := map[string]any{"messages": messages, "context": chatContext}
	var raw rawChatReply
	if err := c.Do(ctx, http.MethodPost, "/advisor/chat", &raw, JSON(body)); err != nil {
		return nil, err
	}
	reply := firstNonEmpty(raw.Reply, raw.Response, raw.Message, raw.Content, raw.Text)
	if reply == "" {
		reply = "No response from advisor."
	}
	return &ChatReply{Reply: reply, Usage: raw.Usage}, nil
}

// AdvisorProfile fetches the user's risk profile.
func (c *Client) AdvisorProfile(ctx context.Context) (map[string]any, error) {
	out := map[string]any{}
	if err := c.Do(ctx, http.MethodGet, "/advisor/profile", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateAdvisorProfile replaces the user's risk profile.
func (c *Client) UpdateAdvisorProfile(ctx context.Context, profile map[string]any) (map[string]any, error) {
	out := map[string]any{}
	if err := c.Do(ctx, http.MethodPut, "/advisor/profile", &out, JSON(profile)); err != nil {
		return nil, err
	}
	return out, nil
}

// AnalyzePosition runs the deterministic position analyzer.
func (c *Client) AnalyzePosition(ctx context.Context, position map[string]any) (map[string]any, error) {
	out := map[string]any{}
	if err := c.Do(ctx, http.MethodPost, "/advisor/", &out, JSON(position)); err != nil {
		return nil, err
	}
	return out, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
