// Package apperrors defines the error taxonomy shared by the order engine.
// Every failure the core reports to a caller is one of these kinds; nothing
// in the core is fatal to the process.
package apperrors

import (
	"errors"
	"fmt"
)

// Kind classifies an error for transport mapping and caller branching.
type Kind string

const (
	// KindValidation covers missing or malformed caller input, such as a
	// blank PR number or a non-positive quantity.
	KindValidation Kind = "VALIDATION"

	// KindNotFound covers unknown orders, employees or products.
	KindNotFound Kind = "NOT_FOUND"

	// KindConflict covers state transitions attempted from a state that does
	// not permit them, including lost concurrent-update races.
	KindConflict Kind = "CONFLICT"

	// KindDependency covers unreachable or malformed collaborator data, such
	// as a cart item whose product cannot be resolved to a vendor.
	KindDependency Kind = "DEPENDENCY"
)

// Error is a classified application error.
type Error struct {
	Kind    Kind
	Message string
	cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	return e.Message
}

// Unwrap exposes the underlying cause, if any.
func (e *Error) Unwrap() error {
	return e.cause
}

// Validation creates a validation error.
func Validation(format string, args ...interface{}) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

// NotFound creates a not-found error.
func NotFound(format string, args ...interface{}) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

// Conflict creates a conflict error.
func Conflict(format string, args ...interface{}) *Error {
	return &Error{Kind: KindConflict, Message: fmt.Sprintf(format, args...)}
}

// Dependency creates a dependency error wrapping the collaborator failure.
func Dependency(cause error, format string, args ...interface{}) *Error {
	return &Error{Kind: KindDependency, Message: fmt.Sprintf(format, args...), cause: cause}
}

// KindOf returns the kind of err, or "" if err is not a classified error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// IsValidation reports whether err is a validation error.
func IsValidation(err error) bool { return KindOf(err) == KindValidation }

// IsNotFound reports whether err is a not-found error.
func IsNotFound(err error) bool { return KindOf(err) == KindNotFound }

// IsConflict reports whether err is a conflict error.
func IsConflict(err error) bool { return KindOf(err) == KindConflict }

// IsDependency reports whether err is a dependency error.
func IsDependency(err error) bool { return KindOf(err) == KindDependency }
