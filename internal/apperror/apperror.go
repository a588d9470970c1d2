// Package apperror defines the error taxonomy shared by all layers.
//
// Errors carry a kind sentinel so callers branch with errors.Is instead of
// matching message text. The HTTP boundary translates kinds into status codes
// and safe messages; raw infrastructure error text never reaches a client.
package apperror

import (
	"errors"
	"fmt"
)

// Kind sentinels. Every error produced by this package unwraps to exactly one
// of these.
var (
	ErrValidation       = errors.New("validation failed")
	ErrNotFound         = errors.New("not found")
	ErrPermissionDenied = errors.New("permission denied")
	ErrStorage          = errors.New("storage failure")
)

// Error is a tagged error value with an optional wrapped cause.
type Error struct {
	kind   error
	msg    string
	cause  error
	Entity string
	ID     string
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.msg, e.cause)
	}
	return e.msg
}

// Unwrap exposes both the kind sentinel and the cause to errors.Is/As.
func (e *Error) Unwrap() []error {
	if e.cause != nil {
		return []error{e.kind, e.cause}
	}
	return []error{e.kind}
}

// Validation reports caller-correctable input: malformed, oversized, wrong
// content type, or blank required fields. The reason is safe to show to users.
func Validation(reason string) *Error {
	return &Error{kind: ErrValidation, msg: reason}
}

// Validationf is Validation with formatting.
func Validationf(format string, args ...any) *Error {
	return Validation(fmt.Sprintf(format, args...))
}

// NotFound reports that the requested entity does not exist.
func NotFound(entity, id string) *Error {
	return &Error{
		kind:   ErrNotFound,
		msg:    fmt.Sprintf("%s %s not found", entity, id),
		Entity: entity,
		ID:     id,
	}
}

// PermissionDenied reports a mutation attempted by a non-owner.
func PermissionDenied(entity, id string) *Error {
	return &Error{
		kind:   ErrPermissionDenied,
		msg:    fmt.Sprintf("%s %s belongs to a different owner", entity, id),
		Entity: entity,
		ID:     id,
	}
}

// Storage wraps an infrastructure fault from a backing store. Treated as
// transient; retry policy belongs to the caller, not this service.
func Storage(op string, cause error) *Error {
	return &Error{kind: ErrStorage, msg: op, cause: cause}
}

// Reason returns the caller-safe message for validation errors, or "" when
// err is not a validation error.
func Reason(err error) string {
	var e *Error
	if errors.As(err, &e) && errors.Is(err, ErrValidation) {
		return e.msg
	}
	return ""
}
