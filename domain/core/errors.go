package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Access errors
	ErrUnauthenticated   = errors.New("not authenticated")
	ErrInvalidCredential = errors.New("invalid credential")

	// ErrNotFound covers both a missing resource and a resource owned by
	// another user. Lookups never distinguish the two to the caller.
	ErrNotFound = errors.New("resource not found")

	// Validation errors
	ErrInvalidRequest  = errors.New("invalid request")
	ErrTooLarge        = errors.New("upload too large")
	ErrUnsupportedType = errors.New("unsupported file type")

	// Lifecycle errors
	ErrInvalidState = errors.New("invalid session state")

	// Upstream errors
	ErrUpstreamFailure = errors.New("upstream service failure")

	// ErrInsufficientContent is an upstream failure where extraction
	// succeeded technically but yielded too little usable text.
	ErrInsufficientContent = fmt.Errorf("%w: insufficient content", ErrUpstreamFailure)
)

// Error constructors with context
func NewNotFoundError(resource string) error {
	return fmt.Errorf("%w: %s", ErrNotFound, resource)
}

func NewInvalidRequestError(reason string) error {
	return fmt.Errorf("%w: %s", ErrInvalidRequest, reason)
}

func NewInvalidStateError(current string, action string) error {
	return fmt.Errorf("%w: cannot %s a %s session", ErrInvalidState, action, current)
}

func NewUpstreamError(service string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrUpstreamFailure, service, err)
}

// Error checking helpers
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsInvalidRequest(err error) bool {
	return errors.Is(err, ErrInvalidRequest) ||
		errors.Is(err, ErrTooLarge) ||
		errors.Is(err, ErrUnsupportedType)
}

func IsInvalidState(err error) bool {
	return errors.Is(err, ErrInvalidState)
}

func IsUpstreamFailure(err error) bool {
	return errors.Is(err, ErrUpstreamFailure)
}

func IsAuthError(err error) bool {
	return errors.Is(err, ErrUnauthenticated) || errors.Is(err, ErrInvalidCredential)
}
