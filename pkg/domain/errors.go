package domain

import (
	"errors"
	"fmt"
)

// ErrTargetNotFound is returned when no target is registered under the
// requested controller name.
var ErrTargetNotFound = errors.New("target not found")

// ErrHandlerNotFound is returned when the resolved target does not expose
// the requested operation.
var ErrHandlerNotFound = errors.New("handler not found")

// ErrReservedMember is returned by the call proxy for member names in the
// reserved/ignored set (lifecycle hooks, private-prefixed, object protocol).
var ErrReservedMember = errors.New("reserved member name")

// BootstrapError wraps a failed execution-environment build. The failure is
// retryable: a later call may attempt a fresh bootstrap.
type BootstrapError struct {
	Err error
}

func (e *BootstrapError) Error() string {
	return fmt.Sprintf("environment bootstrap failed: %v", e.Err)
}

func (e *BootstrapError) Unwrap() error { return e.Err }

// UnauthorizedError denies a call at the guard boundary. Guard resolution
// failures map here too (fail closed) without leaking container internals.
type UnauthorizedError struct {
	Guard  string
	Reason string
}

func (e *UnauthorizedError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("unauthorized: guard %q denied the call", e.Guard)
	}
	return fmt.Sprintf("unauthorized: guard %q: %s", e.Guard, e.Reason)
}

// TransportError is surfaced by the call proxy on a non-success response.
type TransportError struct {
	Status int
	Body   string
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("rpc transport failure: status %d: %s", e.Status, e.Body)
}

// EncodingError marks a value outside the codec's supported universe.
type EncodingError struct {
	Value any
	Msg   string
}

func (e *EncodingError) Error() string {
	return fmt.Sprintf("encoding failure: %s (%T)", e.Msg, e.Value)
}

// IsUnauthorized reports whether err denotes a guard denial.
func IsUnauthorized(err error) bool {
	var ue *UnauthorizedError
	return errors.As(err, &ue)
}
