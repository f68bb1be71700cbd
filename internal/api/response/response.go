// internal/api/response/response.go
package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/tradercopilot/swingdash/internal/backend"
	"github.com/tradercopilot/swingdash/internal/core"
)

// Meta contains response metadata.
type Meta struct {
	Timestamp time.Time `json:"timestamp"`
}

// SuccessResponse is the standard success response format.
type SuccessResponse struct {
	Data any  `json:"data"`
	Meta Meta `json:"meta"`
}

// ErrorDetail contains error information.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Cause   string `json:"cause,omitempty"`
}

// ErrorResponse is the standard error response format.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// JSON writes a success response with data.
func JSON(w http.ResponseWriter, status int, data any) {
	resp := SuccessResponse{
		Data: data,
		Meta: Meta{Timestamp: time.Now().UTC()},
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(resp)
}

// Error writes an error response.
func Error(w http.ResponseWriter, status int, err error) {
	detail := ErrorDetail{
		Code:    "INTERNAL_ERROR",
		Message: "an internal error occurred",
	}

	var coreErr *core.Error
	switch {
	case errors.As(err, &coreErr):
		detail.Code = coreErr.Code
		detail.Message = coreErr.Message
		if coreErr.Cause != nil {
			detail.Cause = coreErr.Cause.Error()
		}
	case backend.IsAuth(err):
		detail.Code = core.ErrNoSession.Code
		detail.Message = backend.Message(err)
	case backend.IsAccess(err):
		detail.Code = core.ErrLocked.Code
		detail.Message = backend.Message(err)
	case err != nil && status < http.StatusInternalServerError:
		detail.Code = "BACKEND_ERROR"
		detail.Message = backend.Message(err)
	}

	resp := ErrorResponse{Error: detail}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(resp)
}

// Status maps an error to the HTTP status a handler should answer with.
func Status(err error) int {
	var api *backend.APIError
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, core.ErrNoSession), backend.IsAuth(err):
		return http.StatusUnauthorized
	case errors.Is(err, core.ErrLocked), errors.Is(err, core.ErrNotOwner),
		errors.Is(err, core.ErrTrialExpired), backend.IsAccess(err):
		return http.StatusForbidden
	case errors.Is(err, core.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, core.ErrValidation):
		return http.StatusBadRequest
	case backend.IsTimeout(err):
		return http.StatusGatewayTimeout
	case errors.As(err, &api):
		if api.Status >= 400 && api.Status < 500 {
			return api.Status
		}
		return http.StatusBadGateway
	case errors.Is(err, core.ErrNotifierDisabled), errors.Is(err, core.ErrConfigMissing):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Fail writes err with the status Status chooses for it.
func Fail(w http.ResponseWriter, err error) {
	Error(w, Status(err), err)
}
