// Package apperr defines the error taxonomy shared by all domain services.
// Every operation failure is classified into one Kind so the HTTP boundary
// can map it to a stable code and status without inspecting message text.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies an operation failure.
type Kind int

const (
	// KindInternal is the fallback for unexpected failures.
	KindInternal Kind = iota
	// KindNotFound covers ids that do not resolve, including ids that
	// resolve outside the caller's tenant. The two cases are deliberately
	// indistinguishable to the caller.
	KindNotFound
	// KindBusinessRule covers schedule absence/unavailability, working-hours
	// and horizon violations, and mutations of terminal appointments.
	KindBusinessRule
	// KindConflict covers overlapping active bookings, including races
	// detected at commit time.
	KindConflict
	// KindAccessDenied covers role failures on privileged operations.
	KindAccessDenied
	// KindUnauthenticated covers missing or invalid credentials.
	KindUnauthenticated
	// KindInvalidInput covers malformed or unparseable requests.
	KindInvalidInput
	// KindUnavailable covers storage timeouts and exhausted retries. The
	// caller may retry the request.
	KindUnavailable
)

// Error carries a Kind, a caller-facing message, and an optional wrapped cause.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// New creates an Error with the given kind and message.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Newf creates an Error with a formatted message.
func Newf(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates an Error that wraps cause.
func Wrap(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Err: cause}
}

// NotFound creates a KindNotFound error.
func NotFound(message string) *Error { return New(KindNotFound, message) }

// BusinessRule creates a KindBusinessRule error.
func BusinessRule(message string) *Error { return New(KindBusinessRule, message) }

// Conflict creates a KindConflict error.
func Conflict(message string) *Error { return New(KindConflict, message) }

// AccessDenied creates a KindAccessDenied error.
func AccessDenied(message string) *Error { return New(KindAccessDenied, message) }

// KindOf extracts the Kind from err, unwrapping as needed.
// Non-taxonomy errors report KindInternal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// Code returns the stable machine-readable code for a kind.
func (k Kind) Code() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindBusinessRule:
		return "business_rule_violation"
	case KindConflict:
		return "conflict"
	case KindAccessDenied:
		return "access_denied"
	case KindUnauthenticated:
		return "unauthenticated"
	case KindInvalidInput:
		return "invalid_input"
	case KindUnavailable:
		return "unavailable"
	default:
		return "internal"
	}
}
