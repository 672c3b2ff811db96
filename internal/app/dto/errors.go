package dto

import (
	"errors"
	"fmt"
)

// Session errors
var (
	ErrNoExerciseSelected = errors.New("no exercise selected")
	ErrEmptyBatch         = errors.New("no link updates supplied")
)

// StoreErrorKind classifies a failure of the external link store by its
// transport status class. The formatter maps kinds to user-facing messages;
// the retryability predicate decides whether to offer a retry action.
type StoreErrorKind int

const (
	StoreErrUnknown StoreErrorKind = iota
	StoreErrUnauthorized
	StoreErrForbidden
	StoreErrNotFound
	StoreErrTimeout
	StoreErrRateLimited
	StoreErrUnavailable
	StoreErrServer
	StoreErrNetwork
	StoreErrCanceled
	StoreErrInvalid
)

// String returns the string representation of the StoreErrorKind.
func (k StoreErrorKind) String() string {
	switch k {
	case StoreErrUnauthorized:
		return "unauthorized"
	case StoreErrForbidden:
		return "forbidden"
	case StoreErrNotFound:
		return "not_found"
	case StoreErrTimeout:
		return "timeout"
	case StoreErrRateLimited:
		return "rate_limited"
	case StoreErrUnavailable:
		return "unavailable"
	case StoreErrServer:
		return "server_error"
	case StoreErrNetwork:
		return "network"
	case StoreErrCanceled:
		return "canceled"
	case StoreErrInvalid:
		return "invalid_request"
	default:
		return "unknown"
	}
}

// StoreError is a runtime/network fault returned by a link-store adapter.
type StoreError struct {
	Kind    StoreErrorKind
	Message string
	Err     error
}

func (e *StoreError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("link store %s: %s", e.Kind, e.Message)
	}
	return fmt.Sprintf("link store %s", e.Kind)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// NewStoreError builds a StoreError wrapping an underlying cause.
func NewStoreError(kind StoreErrorKind, message string, err error) *StoreError {
	return &StoreError{Kind: kind, Message: message, Err: err}
}

// StoreErrorKindOf extracts the kind from an error chain, or StoreErrUnknown.
func StoreErrorKindOf(err error) StoreErrorKind {
	var se *StoreError
	if errors.As(err, &se) {
		return se.Kind
	}
	return StoreErrUnknown
}
