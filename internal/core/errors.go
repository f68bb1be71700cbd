// internal/core/errors.go
package core

import "fmt"

// Error represents a structured error with code and optional cause.
type Error struct {
	Code    string
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is implements errors.Is matching by code.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

// WrapError creates a new error with the same code but with a cause.
func WrapError(base *Error, cause error) *Error {
	return &Error{
		Code:    base.Code,
		Message: base.Message,
		Cause:   cause,
	}
}

// Predefined errors
var (
	// Session errors
	ErrNoSession    = &Error{Code: "NO_SESSION", Message: "no active session"}
	ErrSessionStore = &Error{Code: "SESSION_STORE_FAILED", Message: "session store failed"}

	// Profile errors
	ErrProfileLoad = &Error{Code: "PROFILE_LOAD_FAILED", Message: "failed to load user profile"}

	// Gating errors
	ErrLocked       = &Error{Code: "ACCESS_LOCKED", Message: "upgrade required to access this resource"}
	ErrNotOwner     = &Error{Code: "NOT_OWNER", Message: "owner access required"}
	ErrTrialExpired = &Error{Code: "TRIAL_EXPIRED", Message: "trial expired"}

	// Request errors
	ErrValidation = &Error{Code: "VALIDATION_FAILED", Message: "invalid input"}
	ErrNotFound   = &Error{Code: "NOT_FOUND", Message: "not found"}

	// Archive errors
	ErrArchiveFailed = &Error{Code: "ARCHIVE_FAILED", Message: "archive operation failed"}

	// Notifier errors
	ErrNotifierFailed   = &Error{Code: "NOTIFIER_FAILED", Message: "notifier failed"}
	ErrNotifierDisabled = &Error{Code: "NOTIFIER_DISABLED", Message: "notifier not configured"}

	// Config errors
	ErrConfigInvalid = &Error{Code: "CONFIG_INVALID", Message: "configuration invalid"}
	ErrConfigMissing = &Error{Code: "CONFIG_MISSING", Message: "required configuration missing"}
)
