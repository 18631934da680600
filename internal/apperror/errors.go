// Package apperror provides domain-specific error types for Canvass.
// These errors carry an HTTP status code and a user-safe message. The Echo
// error handler maps them to appropriate HTTP responses automatically.
//
// NEVER return raw database or infrastructure errors to the client. Always
// wrap them in an apperror type or return a generic internal error.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
)

// AppError is the base error type for all domain errors. It carries an
// HTTP status code, a machine-readable error type, and a human-readable
// message safe to show to the client.
type AppError struct {
	// Code is the HTTP status code (e.g., 404, 400, 500).
	Code int `json:"-"`

	// Type is a machine-readable error classifier (e.g., "not_found").
	Type string `json:"type"`

	// Message is a human-readable description safe for the client.
	Message string `json:"message"`

	// Redirect is where the error handler sends the browser instead of
	// rendering an error page. Only set for authentication failures.
	Redirect string `json:"-"`

	// Internal holds the underlying error for logging. Never exposed to client.
	Internal error `json:"-"`
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Internal != nil {
		return fmt.Sprintf("%s: %s (internal: %v)", e.Type, e.Message, e.Internal)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *AppError) Unwrap() error {
	return e.Internal
}

// Error type identifiers that callers branch on.
const (
	TypeNotFound           = "not_found"
	TypeInvalidCredentials = "invalid_credentials"
	TypeUnauthenticated    = "unauthenticated"
	TypeStaleSession       = "stale_session"
	TypeForbidden          = "forbidden"
	TypeConflict           = "conflict"
)

// LoginPath is the page unauthenticated visitors are sent to.
const LoginPath = "/login"

// --- Constructors for common error types ---

// NewNotFound creates a 404 Not Found error.
func NewNotFound(message string) *AppError {
	return &AppError{
		Code:    http.StatusNotFound,
		Type:    TypeNotFound,
		Message: message,
	}
}

// NewBadRequest creates a 400 Bad Request error.
func NewBadRequest(message string) *AppError {
	return &AppError{
		Code:    http.StatusBadRequest,
		Type:    "bad_request",
		Message: message,
	}
}

// NewInvalidCredentials creates the 401 returned by a failed login. The
// message is identical for unknown emails and wrong passwords.
func NewInvalidCredentials() *AppError {
	return &AppError{
		Code:    http.StatusUnauthorized,
		Type:    TypeInvalidCredentials,
		Message: "Invalid email or password. Please try again.",
	}
}

// NewUnauthenticated creates a 401 that redirects to the login page,
// remembering returnTo so the user lands back where they started.
func NewUnauthenticated(returnTo string) *AppError {
	return &AppError{
		Code:     http.StatusUnauthorized,
		Type:     TypeUnauthenticated,
		Message:  "Please sign in to continue.",
		Redirect: LoginRedirect(returnTo),
	}
}

// NewStaleSession creates a 401 for a validly signed session whose user no
// longer exists. The session cookie must be cleared by whoever returns it.
func NewStaleSession() *AppError {
	return &AppError{
		Code:     http.StatusUnauthorized,
		Type:     TypeStaleSession,
		Message:  "Your session has ended. Please sign in again.",
		Redirect: LoginPath,
	}
}

// NewForbidden creates a 403 Forbidden error.
func NewForbidden(message string) *AppError {
	return &AppError{
		Code:    http.StatusForbidden,
		Type:    TypeForbidden,
		Message: message,
	}
}

// NewConflict creates a 409 Conflict error.
func NewConflict(message string) *AppError {
	return &AppError{
		Code:    http.StatusConflict,
		Type:    TypeConflict,
		Message: message,
	}
}

// errMissingContext is the shared internal error for nil precondition checks.
var errMissingContext = errors.New("missing required context")

// NewMissingContext creates a 500 error for handler nil-context guards
// (e.g. project context not set, dependency not wired).
func NewMissingContext() *AppError {
	return NewInternal(errMissingContext)
}

// NewInternal creates a 500 Internal Server Error. The real error is stored
// in Internal for logging but the client only sees a generic message.
func NewInternal(err error) *AppError {
	return &AppError{
		Code:     http.StatusInternalServerError,
		Type:     "internal_error",
		Message:  "An unexpected error occurred. Please try again.",
		Internal: err,
	}
}

// NewValidation creates a 422 Unprocessable Entity error for validation failures.
func NewValidation(message string) *AppError {
	return &AppError{
		Code:    http.StatusUnprocessableEntity,
		Type:    "validation_error",
		Message: message,
	}
}

// LoginRedirect builds the login URL that returns the user to path after
// signing in. An empty or non-local path yields the bare login page.
func LoginRedirect(path string) string {
	if !IsLocalPath(path) || path == LoginPath {
		return LoginPath
	}
	return LoginPath + "?redirectTo=" + url.QueryEscape(path)
}

// IsLocalPath reports whether p is a same-origin absolute path, which is
// the only kind of redirect target accepted from user input.
func IsLocalPath(p string) bool {
	if p == "" || p[0] != '/' {
		return false
	}
	if len(p) > 1 && (p[1] == '/' || p[1] == '\\') {
		return false
	}
	return true
}

// As extracts an *AppError from err's chain.
func As(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// Is reports whether err carries an AppError of the given type.
func Is(err error, errType string) bool {
	appErr, ok := As(err)
	return ok && appErr.Type == errType
}

// SafeMessage returns the client-safe error message from an error. If the
// error is an AppError, returns its Message field (which is safe to expose).
// For any other error type, returns a generic message to prevent leaking
// internal details like table names, query structure, or stack traces.
func SafeMessage(err error) string {
	if appErr, ok := As(err); ok {
		return appErr.Message
	}
	return "an unexpected error occurred"
}

// SafeCode returns the HTTP status code from an AppError, or 500 for
// any other error type.
func SafeCode(err error) int {
	if appErr, ok := As(err); ok {
		return appErr.Code
	}
	return http.StatusInternalServerError
}
