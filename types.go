package hnsearch

import (
	"context"

	"github.com/cockroachdb/errors"
)

// ErrorCode represents specific error codes for search session operations.
type ErrorCode int

const (
	// ErrCodeEmptyTerm is returned when a blank search term is submitted.
	ErrCodeEmptyTerm ErrorCode = iota + 1000

	// ErrCodeMalformedQuery is returned when a query URL cannot be decoded.
	ErrCodeMalformedQuery

	// ErrCodeInvalidAction is raised when the result reducer receives an unknown action.
	ErrCodeInvalidAction

	// ErrCodeTransport is returned when a fetch fails for any reason.
	ErrCodeTransport

	// ErrCodeTimeout is returned when a fetch times out.
	ErrCodeTimeout

	// ErrCodeCanceled is returned when a fetch is canceled.
	ErrCodeCanceled

	// ErrCodeBackendUnavailable is returned when the search backend is unavailable.
	ErrCodeBackendUnavailable
)

// String returns the human-readable string representation of the error code.
func (e ErrorCode) String() string {
	switch e {
	case ErrCodeEmptyTerm:
		return "empty search term"
	case ErrCodeMalformedQuery:
		return "malformed query"
	case ErrCodeInvalidAction:
		return "invalid action"
	case ErrCodeTransport:
		return "transport failure"
	case ErrCodeTimeout:
		return "operation timed out"
	case ErrCodeCanceled:
		return "operation canceled"
	case ErrCodeBackendUnavailable:
		return "backend unavailable"
	default:
		return "unknown error"
	}
}

// newErrorWithCode creates a new error with a code and message.
func newErrorWithCode(code ErrorCode, msg string) error {
	err := errors.New(msg)
	return errors.WithSecondaryError(err, errors.Newf("code: %d", int(code)))
}

var (
	// ErrEmptyTerm is returned when a blank search term is submitted.
	ErrEmptyTerm = newErrorWithCode(ErrCodeEmptyTerm, "hnsearch: empty search term")

	// ErrMalformedQuery is returned when a query URL cannot be decoded to a term.
	ErrMalformedQuery = newErrorWithCode(ErrCodeMalformedQuery, "hnsearch: malformed query")

	// ErrInvalidAction marks the panic raised for an unrecognized reducer action.
	ErrInvalidAction = newErrorWithCode(ErrCodeInvalidAction, "hnsearch: invalid action")

	// ErrTransport is returned when a fetch fails.
	ErrTransport = newErrorWithCode(ErrCodeTransport, "hnsearch: transport failure")

	// ErrTimeout is returned when a fetch times out.
	ErrTimeout = newErrorWithCode(ErrCodeTimeout, "hnsearch: operation timed out")

	// ErrCanceled is returned when a fetch is canceled.
	ErrCanceled = newErrorWithCode(ErrCodeCanceled, "hnsearch: operation canceled")

	// ErrBackendUnavailable is returned when the search backend is unavailable.
	ErrBackendUnavailable = newErrorWithCode(ErrCodeBackendUnavailable, "hnsearch: backend unavailable")
)

// ContextError maps a context error onto ErrCanceled or ErrTimeout. Other
// errors are returned unchanged.
func ContextError(err error) error {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return ErrTimeout
	case errors.Is(err, context.Canceled):
		return ErrCanceled
	default:
		return err
	}
}
