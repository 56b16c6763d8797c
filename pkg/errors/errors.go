package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Error represents a typed domain error with HTTP awareness.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"status"`
	Err     error  `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// New creates a new Error instance.
func New(code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message}
}

// Wrap attaches context to an existing error.
func Wrap(err error, code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message, Err: err}
}

// Predefined errors, one per machine-readable error kind a run can surface.
// InvalidInput, NoSuchStrategy, and BadConfig are returned before any
// strategy executes. Timeout and Cancelled are never handed back as an
// *Error to a caller — a timed-out or cancelled run instead returns its
// best-known schedule with a cancelled status — but the codes are defined
// here so internal bookkeeping and logs can tag a run with the reason it
// stopped early. Internal covers an unexpected fault inside a strategy.
var (
	ErrInvalidInput   = New("INVALID_INPUT", http.StatusBadRequest, "input bundle violates a fatal validation")
	ErrNoSuchStrategy = New("NO_SUCH_STRATEGY", http.StatusBadRequest, "unknown strategy name")
	ErrBadConfig      = New("BAD_CONFIG", http.StatusBadRequest, "configuration parameter out of range")
	ErrTimeout        = New("TIMEOUT", http.StatusOK, "time budget exceeded")
	ErrCancelled      = New("CANCELLED", http.StatusOK, "run cancelled")
	ErrInternal       = New("INTERNAL_ERROR", http.StatusInternalServerError, "internal server error")
	ErrFinalized      = New("FINALIZED", http.StatusConflict, "run already reached a terminal state")
	ErrInvalidWeights = New("INVALID_WEIGHTS", http.StatusBadRequest, "invalid component weights")
)

// FromError normalises any error into an *Error.
func FromError(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Wrap(err, ErrInternal.Code, ErrInternal.Status, ErrInternal.Message)
}

// Clone returns a copy of the error allowing for message overrides.
func Clone(err *Error, message string) *Error {
	if err == nil {
		return nil
	}
	clone := *err
	if message != "" {
		clone.Message = message
	}
	return &clone
}
