// internal/api/response/response_test.go
package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tradercopilot/swingdash/internal/backend"
	"github.com/tradercopilot/swingdash/internal/core"
)

func TestJSON_Success(t *testing.T) {
	w := httptest.NewRecorder()
	data := map[string]string{"hello": "world"}

	JSON(w, http.StatusOK, data)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	if w.Header().Get("Content-Type") != "application/json" {
		t.Errorf("expected application/json content type")
	}

	var resp SuccessResponse
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Data == nil {
		t.Error("expected data in response")
	}
	if resp.Meta.Timestamp.IsZero() {
		t.Error("expected timestamp in meta")
	}
}

func TestError_WithCoreError(t *testing.T) {
	w := httptest.NewRecorder()
	err := core.ErrConfigInvalid

	Error(w, http.StatusBadRequest, err)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}

	var resp ErrorResponse
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Error.Code != "CONFIG_INVALID" {
		t.Errorf("expected CONFIG_INVALID, got %s", resp.Error.Code)
	}
}

func TestError_WithWrappedCause(t *testing.T) {
	w := httptest.NewRecorder()
	err := core.WrapError(core.ErrNotFound, errors.New("job abc"))

	Error(w, http.StatusNotFound, err)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "NOT_FOUND", resp.Error.Code)
	assert.Equal(t, "job abc", resp.Error.Cause)
}

func TestError_WithStandardError(t *testing.T) {
	w := httptest.NewRecorder()

	Error(w, http.StatusInternalServerError, errors.New("boom"))

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "INTERNAL_ERROR", resp.Error.Code)
	assert.NotContains(t, w.Body.String(), "boom")
}

func TestError_BackendAccess(t *testing.T) {
	w := httptest.NewRecorder()
	err := &backend.AccessError{Message: "Upgrade to PRO", Code: "PLAN_REQUIRED"}

	Fail(w, err)

	assert.Equal(t, http.StatusForbidden, w.Code)
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "ACCESS_LOCKED", resp.Error.Code)
	assert.Equal(t, "Upgrade to PRO", resp.Error.Message)
}

func TestStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, http.StatusOK},
		{"no session", core.ErrNoSession, http.StatusUnauthorized},
		{"backend auth", &backend.AuthError{Message: "expired"}, http.StatusUnauthorized},
		{"locked", core.WrapError(core.ErrLocked, errors.New("token SOL")), http.StatusForbidden},
		{"trial expired", core.ErrTrialExpired, http.StatusForbidden},
		{"not owner", core.ErrNotOwner, http.StatusForbidden},
		{"not found", core.ErrNotFound, http.StatusNotFound},
		{"validation", core.ErrValidation, http.StatusBadRequest},
		{"timeout", &backend.TransportError{Timeout: true, Message: "Request timeout"}, http.StatusGatewayTimeout},
		{"api 4xx", &backend.APIError{Status: 409, Message: "conflict"}, http.StatusConflict},
		{"api 5xx", &backend.APIError{Status: 500, Message: "down"}, http.StatusBadGateway},
		{"notifier disabled", core.ErrNotifierDisabled, http.StatusServiceUnavailable},
		{"other", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Status(tt.err))
		})
	}
}
