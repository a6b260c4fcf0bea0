// Package apperror classifies failures of asset operations into a small set
// of kinds that callers map to per-item results or HTTP status codes.
package apperror

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"net/http"
)

// Kind identifies an error condition. Kinds are strings so they serialize
// naturally into API responses.
type Kind string

const (
	// KindValidation indicates a required field is missing or malformed.
	KindValidation Kind = "VALIDATION_ERROR"

	// KindNotFound indicates a referenced asset, assignment or employee does not exist.
	KindNotFound Kind = "NOT_FOUND"

	// KindConflict indicates the asset is not in the source state the transition needs.
	KindConflict Kind = "CONFLICT"

	// KindTransient indicates a connectivity or timeout failure against the store.
	KindTransient Kind = "TRANSIENT_STORE_ERROR"

	// KindIntegrity indicates an atomic multi-row change could not complete.
	KindIntegrity Kind = "INTEGRITY_ERROR"

	KindUnauthorized Kind = "UNAUTHORIZED"
	KindForbidden    Kind = "FORBIDDEN"

	// KindInternal is the fallback for anything unclassified.
	KindInternal Kind = "INTERNAL_ERROR"
)

// HTTPStatus returns the status code a single-item endpoint answers with.
func (k Kind) HTTPStatus() int {
	switch k {
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindTransient:
		return http.StatusServiceUnavailable
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// Error is a classified error carrying a human-readable message and an
// optional underlying cause.
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

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates an error of the given kind.
func New(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a kind and message to cause. A nil cause yields nil.
func Wrap(cause error, kind Kind, message string) error {
	if cause == nil {
		return nil
	}
	return &Error{Kind: kind, Message: message, Err: cause}
}

func Validation(format string, args ...interface{}) *Error {
	return New(KindValidation, format, args...)
}

func NotFound(format string, args ...interface{}) *Error {
	return New(KindNotFound, format, args...)
}

func Conflict(format string, args ...interface{}) *Error {
	return New(KindConflict, format, args...)
}

// Store classifies a persistence failure: timeouts, cancellations and broken
// connections become Transient, everything else Internal.
func Store(cause error, message string) error {
	if cause == nil {
		return nil
	}
	var ae *Error
	if errors.As(cause, &ae) {
		return cause
	}
	if IsTransient(cause) {
		return &Error{Kind: KindTransient, Message: message, Err: cause}
	}
	return &Error{Kind: KindInternal, Message: message, Err: cause}
}

// IsTransient reports whether err is worth retrying as a whole request.
func IsTransient(err error) bool {
	return errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, driver.ErrBadConn)
}

// KindOf returns the kind of err, classifying unknown errors.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	if IsTransient(err) {
		return KindTransient
	}
	return KindInternal
}

// MessageOf returns the user-facing message of err. Unclassified errors get
// a generic message so internals do not leak into responses.
func MessageOf(err error) string {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Message
	}
	if IsTransient(err) {
		return "storage temporarily unavailable, retry the request"
	}
	return "internal error"
}

// Is reports whether err has the given kind.
func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}
