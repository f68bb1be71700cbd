package backend

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// AuthError is returned for HTTP 401. Callers clear the session on it.
type AuthError struct {
	Message string
}

func (e *AuthError) Error() string {
	return e.Message
}

// AccessError is returned for HTTP 403: the plan does not include the resource.
type AccessError struct {
	Message string
	Code    string
}

func (e *AccessError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s (%s)", e.Message, e.Code)
	}
	return e.Message
}

// APIError is any other non-2xx response.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("backend error (status %d): %s", e.Status, e.Message)
}

// TransportError is a network failure or timeout; no response was read.
type TransportError struct {
	Timeout bool
	Message string
	Err     error
}

func (e *TransportError) Error() string {
	return e.Message
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// IsAuth reports whether err is an authentication failure.
func IsAuth(err error) bool {
	var target *AuthError
	return errors.As(err, &target)
}

// IsAccess reports whether err is an entitlement failure.
func IsAccess(err error) bool {
	var target *AccessError
	return errors.As(err, &target)
}

// IsTimeout reports whether err is a request timeout.
func IsTimeout(err error) bool {
	var target *TransportError
	return errors.As(err, &target) && target.Timeout
}

// Message returns the user-facing text of a backend error.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var (
		auth      *AuthError
		access    *AccessError
		api       *APIError
		transport *TransportError
	)
	switch {
	case errors.As(err, &auth):
		return auth.Message
	case errors.As(err, &access):
		return access.Message
	case errors.As(err, &api):
		return api.Message
	case errors.As(err, &transport):
		return transport.Message
	default:
		return err.Error()
	}
}

// UnexpectedError is the message used when a failed response has no usable detail.
const UnexpectedError = "Unexpected error"

// normalizeDetail extracts a message and optional code from an error body.
// The body may carry detail as a string, a list of {msg} items, or an
// object, or a top-level {message, code}.
func normalizeDetail(body []byte) (message, code string) {
	var data map[string]any
	if len(body) == 0 || json.Unmarshal(body, &data) != nil || data == nil {
		return UnexpectedError, ""
	}

	switch d := data["detail"].(type) {
	case string:
		return d, ""
	case []any:
		msgs := make([]string, 0, len(d))
		for _, item := range d {
			var m string
			switch v := item.(type) {
			case map[string]any:
				m = stringify(v["msg"])
			case nil:
			default:
				m = stringify(v)
			}
			if m != "" {
				msgs = append(msgs, m)
			}
		}
		if len(msgs) == 0 {
			return "Validation error", ""
		}
		return strings.Join(msgs, " | "), ""
	case map[string]any:
		msg := stringify(d["message"])
		if msg == "" {
			msg = stringify(d["error"])
		}
		if msg == "" {
			raw, _ := json.Marshal(d)
			msg = string(raw)
		}
		return msg, stringify(d["code"])
	}

	if msg, ok := data["message"].(string); ok {
		return msg, stringify(data["code"])
	}
	return UnexpectedError, ""
}

func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		if !t {
			return ""
		}
		return "true"
	default:
		return fmt.Sprint(t)
	}
}
