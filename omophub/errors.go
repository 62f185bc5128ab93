package omophub

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrOMOPHub is the root of every error returned by this package.
// errors.Is(err, ErrOMOPHub) matches all of the kinds below.
var ErrOMOPHub = errors.New("omophub")

// Error kinds. Every *Error carries exactly one of these in Kind.
var (
	// ErrDecode indicates the response body was not valid JSON
	ErrDecode = errors.New("invalid JSON response")
	// ErrConnection indicates the request could not be completed after all retries
	ErrConnection = errors.New("connection error")
	// ErrTimeout indicates the request exceeded the configured timeout
	ErrTimeout = errors.New("request timed out")
	// ErrValidation indicates the request was rejected as malformed (400)
	ErrValidation = errors.New("validation error")
	// ErrAuthentication indicates missing or invalid credentials (401, 403)
	ErrAuthentication = errors.New("authentication error")
	// ErrNotFound indicates the resource does not exist (404)
	ErrNotFound = errors.New("not found")
	// ErrRateLimit indicates the caller should back off (429)
	ErrRateLimit = errors.New("rate limit exceeded")
	// ErrServer indicates a remote-side fault (5xx)
	ErrServer = errors.New("server error")
	// ErrAPI covers any other non-success status
	ErrAPI = errors.New("api error")
)

// Configuration errors returned by the constructors.
var (
	// ErrMissingAPIKey indicates no API key was supplied or found in the environment
	ErrMissingAPIKey = errors.New("omophub API key is required")
	// ErrInvalidConfig indicates an invalid client option
	ErrInvalidConfig = errors.New("invalid omophub configuration")
)

// Error is the structured error returned for every failed call.
type Error struct {
	// Kind is one of the Err* kind sentinels.
	Kind error
	// Message is the human-readable message, from the service when it sent one.
	Message string
	// StatusCode is the HTTP status, zero for transport failures.
	StatusCode int
	RequestID  string
	// ErrorCode is the service's machine-readable error code.
	ErrorCode string
	Details   map[string]any
	// RetryAfter is the number of seconds from a Retry-After header, zero when absent.
	RetryAfter int
	// Err is the underlying transport or parse error, if any.
	Err error
}

// Error implements the error interface
func (e *Error) Error() string {
	var parts []string
	if e.StatusCode != 0 {
		parts = append(parts, fmt.Sprintf("status=%d", e.StatusCode))
	}
	if e.RequestID != "" {
		parts = append(parts, "request_id="+e.RequestID)
	}
	if e.ErrorCode != "" {
		parts = append(parts, "code="+e.ErrorCode)
	}
	if len(parts) == 0 {
		return e.Message
	}
	return fmt.Sprintf("%s (%s)", e.Message, strings.Join(parts, ", "))
}

// Unwrap exposes both the kind and the underlying cause to errors.Is/As.
func (e *Error) Unwrap() []error {
	if e.Err != nil {
		return []error{e.Kind, e.Err}
	}
	return []error{e.Kind}
}

// Is reports whether target is the root error.
func (e *Error) Is(target error) bool {
	return target == ErrOMOPHub
}

// IsNotFound checks if the error indicates a not found response
func (e *Error) IsNotFound() bool {
	return e.Kind == ErrNotFound
}

// IsUnauthorized checks if the error indicates an authentication failure
func (e *Error) IsUnauthorized() bool {
	return e.Kind == ErrAuthentication
}

// IsRetryable reports whether repeating the call may succeed. The library
// never retries these itself.
func (e *Error) IsRetryable() bool {
	switch e.Kind {
	case ErrRateLimit, ErrServer, ErrTimeout, ErrConnection:
		return true
	}
	return false
}

// failure is the error half of a decoded response, before classification.
type failure struct {
	StatusCode int
	Message    string
	Code       string
	Details    map[string]any
	RequestID  string
	RetryAfter int
}

// classify maps a failed response onto exactly one error kind.
func classify(f failure) *Error {
	e := &Error{
		Kind:       kindForStatus(f.StatusCode),
		Message:    f.Message,
		StatusCode: f.StatusCode,
		RequestID:  f.RequestID,
		ErrorCode:  f.Code,
		Details:    f.Details,
	}
	if e.Kind == ErrRateLimit {
		e.RetryAfter = f.RetryAfter
	}
	return e
}

func kindForStatus(status int) error {
	switch {
	case status == http.StatusBadRequest:
		return ErrValidation
	case status == http.StatusUnauthorized, status == http.StatusForbidden:
		return ErrAuthentication
	case status == http.StatusNotFound:
		return ErrNotFound
	case status == http.StatusTooManyRequests:
		return ErrRateLimit
	case status >= 500 && status <= 599:
		return ErrServer
	default:
		return ErrAPI
	}
}

// Transport-level kinds never carry a status code.
func newConnectionError(err error) *Error {
	return &Error{Kind: ErrConnection, Message: fmt.Sprintf("Connection error: %v", err), Err: err}
}

func newTimeoutError(err error) *Error {
	return &Error{Kind: ErrTimeout, Message: fmt.Sprintf("Request timed out: %v", err), Err: err}
}

func newDecodeError(err error) *Error {
	return &Error{Kind: ErrDecode, Message: fmt.Sprintf("Invalid JSON response: %v", err), Err: err}
}
