// Package errors provides error types and utilities for exposechain.
// It extends the standard errors package with sentinels matching the
// scan failure taxonomy and with wrapping helpers.
package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for common failure scenarios.
var (
	// ErrTimeout indicates an operation exceeded its time limit.
	ErrTimeout = errors.New("operation timed out")

	// ErrRateLimit indicates the caller-facing rate limit was exceeded.
	ErrRateLimit = errors.New("rate limit exceeded")

	// ErrUpstreamRateLimit indicates a third-party service's own quota was
	// exhausted. Kept distinct from ErrRateLimit so the orchestrator can
	// isolate it to one result field instead of rejecting the scan.
	ErrUpstreamRateLimit = errors.New("upstream rate limit exceeded")

	// ErrInvalidInput indicates invalid input was provided.
	ErrInvalidInput = errors.New("invalid input")

	// ErrBlocked indicates a target was refused by SSRF policy.
	ErrBlocked = errors.New("target blocked by network policy")

	// ErrNotFound indicates a requested resource was not found.
	ErrNotFound = errors.New("resource not found")

	// ErrConnectionFailed indicates a connection could not be established.
	ErrConnectionFailed = errors.New("connection failed")

	// ErrServiceUnavailable indicates a service is temporarily unavailable.
	ErrServiceUnavailable = errors.New("service unavailable")

	// ErrInvalidResponse indicates a response could not be parsed or was malformed.
	ErrInvalidResponse = errors.New("invalid response")
)

// wrappedError wraps an error with additional context.
type wrappedError struct {
	msg   string
	cause error
}

func (e *wrappedError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.msg, e.cause)
	}
	return e.msg
}

func (e *wrappedError) Unwrap() error {
	return e.cause
}

// Wrap wraps an error with additional context message.
// If err is nil, Wrap returns nil.
func Wrap(err error, msg string) error {
	if err == nil {
		return nil
	}
	return &wrappedError{msg: msg, cause: err}
}

// Wrapf wraps an error with a formatted context message.
// If err is nil, Wrapf returns nil.
func Wrapf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return &wrappedError{msg: fmt.Sprintf(format, args...), cause: err}
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target type.
func As(err error, target any) bool {
	return errors.As(err, target)
}

// New creates a new error with the given message.
func New(msg string) error {
	return errors.New(msg)
}

// Errorf formats according to a format specifier and returns an error.
func Errorf(format string, args ...any) error {
	return fmt.Errorf(format, args...)
}

// IsTimeout reports whether the error is a timeout error.
func IsTimeout(err error) bool {
	return Is(err, ErrTimeout)
}

// IsRateLimit reports whether the error is a caller-facing rate limit error.
func IsRateLimit(err error) bool {
	return Is(err, ErrRateLimit)
}

// IsUpstreamRateLimit reports whether a third-party quota was exhausted.
func IsUpstreamRateLimit(err error) bool {
	return Is(err, ErrUpstreamRateLimit)
}

// IsInvalidInput reports whether the error is an invalid input error.
func IsInvalidInput(err error) bool {
	return Is(err, ErrInvalidInput)
}

// IsBlocked reports whether the error is an SSRF policy rejection.
func IsBlocked(err error) bool {
	return Is(err, ErrBlocked)
}

// IsNotFound reports whether the error is a not found error.
func IsNotFound(err error) bool {
	return Is(err, ErrNotFound)
}

// IsConnectionFailed reports whether the error is a connection failure.
func IsConnectionFailed(err error) bool {
	return Is(err, ErrConnectionFailed)
}

// IsServiceUnavailable reports whether the error is a service unavailable error.
func IsServiceUnavailable(err error) bool {
	return Is(err, ErrServiceUnavailable)
}

// IsInvalidResponse reports whether the error is an invalid response error.
func IsInvalidResponse(err error) bool {
	return Is(err, ErrInvalidResponse)
}
