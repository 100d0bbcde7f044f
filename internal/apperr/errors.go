// Package apperr defines the error kinds surfaced to API callers and their
// HTTP status mapping.
package apperr

import (
	"errors"
	"net/http"
)

// Kind classifies an error for transport translation.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindUnauthenticated
	KindForbidden
	KindNotFound
	KindConflict
	KindRateLimited
	KindUnavailable
)

// Error carries a caller-safe message and an optional wrapped cause.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(kind Kind, msg string, cause error) *Error {
	return &Error{Kind: kind, Message: msg, Err: cause}
}

// Validation reports a missing or malformed input field.
func Validation(msg string) *Error { return newError(KindValidation, msg, nil) }

// Unauthenticated reports a request without a usable identity.
func Unauthenticated(msg string) *Error { return newError(KindUnauthenticated, msg, nil) }

// Forbidden reports an identity that does not own the target resource.
func Forbidden(msg string) *Error { return newError(KindForbidden, msg, nil) }

// NotFound reports an absent or filtered-out entity.
func NotFound(msg string) *Error { return newError(KindNotFound, msg, nil) }

// Conflict reports a uniqueness clash such as a claimed username.
func Conflict(msg string) *Error { return newError(KindConflict, msg, nil) }

// RateLimited reports a caller exceeding its request budget.
func RateLimited(msg string) *Error { return newError(KindRateLimited, msg, nil) }

// Unavailable reports a backend that cannot currently serve requests.
func Unavailable(msg string, cause error) *Error { return newError(KindUnavailable, msg, cause) }

// Internal wraps an unexpected failure. Its message is never shown to callers.
func Internal(msg string, cause error) *Error { return newError(KindInternal, msg, cause) }

// KindOf extracts the kind of err, defaulting to KindInternal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// HTTPStatus maps err to the status code of the API contract.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindValidation, KindConflict:
		return http.StatusBadRequest
	case KindUnauthenticated:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindRateLimited:
		return http.StatusTooManyRequests
	case KindUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// PublicMessage returns the message that may be shown to the caller.
func PublicMessage(err error) string {
	var e *Error
	if !errors.As(err, &e) || e.Kind == KindInternal {
		return "internal server error"
	}
	if e.Kind == KindUnavailable {
		return "service temporarily unavailable"
	}
	return e.Message
}
