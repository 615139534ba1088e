// Package errors provides the typed error taxonomy used at every core
// boundary: route registration, table lookup, argument coercion, body
// parsing and handler invocation. Client errors carry an HTTP status and a
// message that is surfaced verbatim; server errors are masked before they
// reach the wire.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an error for dispatch and serialization purposes.
type Kind int

const (
	// KindServer is an internal failure. Its message is logged but never
	// sent to the client.
	KindServer Kind = iota

	// KindDefinition is a registration-time failure. It is fatal and must
	// abort application construction.
	KindDefinition

	// KindBadRequest is a client input failure (missing or unparseable
	// arguments, malformed body).
	KindBadRequest

	// KindNotFound means no registered pattern matched the request path.
	KindNotFound

	// KindMethodNotAllowed means a pattern matched but the method is not
	// registered for it.
	KindMethodNotAllowed
)

// String returns a short name for the kind.
func (k Kind) String() string {
	switch k {
	case KindDefinition:
		return "definition"
	case KindBadRequest:
		return "bad_request"
	case KindNotFound:
		return "not_found"
	case KindMethodNotAllowed:
		return "method_not_allowed"
	default:
		return "server"
	}
}

// Error is the concrete error value passed across core boundaries.
type Error struct {
	kind    Kind
	status  int
	message string
	cause   error
}

// New creates an error of the given kind with the kind's default status.
func New(kind Kind, message string) *Error {
	return &Error{kind: kind, status: defaultStatus(kind), message: message}
}

// Definitionf creates a registration-time error.
func Definitionf(format string, args ...any) *Error {
	return &Error{
		kind:    KindDefinition,
		status:  http.StatusInternalServerError,
		message: fmt.Sprintf(format, args...),
	}
}

// BadRequestf creates a 400 client error. The message is sent verbatim.
func BadRequestf(format string, args ...any) *Error {
	return &Error{
		kind:    KindBadRequest,
		status:  http.StatusBadRequest,
		message: fmt.Sprintf(format, args...),
	}
}

// NotFound creates a 404 client error.
func NotFound() *Error {
	return &Error{
		kind:    KindNotFound,
		status:  http.StatusNotFound,
		message: "Not found",
	}
}

// MethodNotAllowed creates a 405 client error.
func MethodNotAllowed() *Error {
	return &Error{
		kind:    KindMethodNotAllowed,
		status:  http.StatusMethodNotAllowed,
		message: "Method not allowed",
	}
}

// Internalf creates a server error. The message is for logs only.
func Internalf(format string, args ...any) *Error {
	return &Error{
		kind:    KindServer,
		status:  http.StatusInternalServerError,
		message: fmt.Sprintf(format, args...),
	}
}

// Wrap attaches a cause to the error and returns it.
func (e *Error) Wrap(cause error) *Error {
	e.cause = cause
	return e
}

// WithStatus overrides the HTTP status. Intended for client errors that
// carry a custom code.
func (e *Error) WithStatus(status int) *Error {
	e.status = status
	return e
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.cause != nil {
		return e.message + ": " + e.cause.Error()
	}
	return e.message
}

// Unwrap returns the wrapped cause, if any.
func (e *Error) Unwrap() error { return e.cause }

// Kind returns the error classification.
func (e *Error) Kind() Kind { return e.kind }

// Status returns the HTTP status associated with the error.
func (e *Error) Status() int { return e.status }

// Message returns the user-facing message without the cause chain.
func (e *Error) Message() string { return e.message }

// IsClient reports whether the error is attributable to caller input and
// may be surfaced verbatim.
func (e *Error) IsClient() bool {
	switch e.kind {
	case KindBadRequest, KindNotFound, KindMethodNotAllowed:
		return true
	}
	return false
}

// From classifies an arbitrary error. Typed errors pass through unchanged;
// anything else becomes a server error wrapping the original.
func From(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Internalf("unhandled error").Wrap(err)
}

// IsDefinition reports whether err is a registration-time error.
func IsDefinition(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.kind == KindDefinition
}

func defaultStatus(kind Kind) int {
	switch kind {
	case KindBadRequest:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindMethodNotAllowed:
		return http.StatusMethodNotAllowed
	default:
		return http.StatusInternalServerError
	}
}
