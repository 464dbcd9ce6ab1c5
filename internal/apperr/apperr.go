// Package apperr defines the error kinds shared by every skillmap service.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an error for callers.
type Kind string

const (
	KindNotFound              Kind = "not_found"
	KindValidation            Kind = "validation"
	KindConflict              Kind = "conflict"
	KindAuthorization         Kind = "authorization"
	KindDependencyUnavailable Kind = "dependency_unavailable"
	KindInternal              Kind = "internal"
)

// Reason refines a dependency failure.
type Reason string

const (
	ReasonNotConfigured     Reason = "not_configured"
	ReasonCallFailed        Reason = "call_failed"
	ReasonMalformedResponse Reason = "malformed_response"
)

// Error is a classified error with a human-readable message.
type Error struct {
	Kind    Kind
	Reason  Reason
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	msg := e.Message
	if msg == "" {
		msg = string(e.Kind)
	}
	if e.Reason != "" {
		msg = fmt.Sprintf("%s (%s)", msg, e.Reason)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// NotFound reports a missing entity, e.g. NotFound("employee", id).
func NotFound(entity, id string) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf("%s %q not found", entity, id)}
}

func Validation(format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

func Conflict(format string, args ...any) *Error {
	return &Error{Kind: KindConflict, Message: fmt.Sprintf(format, args...)}
}

func Authorization(format string, args ...any) *Error {
	return &Error{Kind: KindAuthorization, Message: fmt.Sprintf(format, args...)}
}

// Unavailable reports an oracle or backend that cannot serve the request.
func Unavailable(reason Reason, message string, err error) *Error {
	return &Error{Kind: KindDependencyUnavailable, Reason: reason, Message: message, Err: err}
}

// Malformed reports an oracle response that failed schema validation.
// It is a validation error carrying the malformed_response reason.
func Malformed(message string, err error) *Error {
	return &Error{Kind: KindValidation, Reason: ReasonMalformedResponse, Message: message, Err: err}
}

// Wrap attaches err as the cause of a new classified error.
func Wrap(kind Kind, err error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Err: err}
}

// KindOf returns the kind of the first *Error in err's chain, or
// KindInternal when there is none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// ReasonOf returns the reason of the first *Error in err's chain.
func ReasonOf(err error) Reason {
	var e *Error
	if errors.As(err, &e) {
		return e.Reason
	}
	return ""
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// HTTPStatus maps a kind to the status code the API answers with.
func HTTPStatus(kind Kind) int {
	switch kind {
	case KindNotFound:
		return http.StatusNotFound
	case KindValidation:
		return http.StatusBadRequest
	case KindConflict:
		return http.StatusConflict
	case KindAuthorization:
		return http.StatusForbidden
	case KindDependencyUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
