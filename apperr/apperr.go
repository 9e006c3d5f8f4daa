// Package apperr defines the typed failures services return and their
// single translation to HTTP status codes.
package apperr

import (
	"context"
	"errors"
	"net/http"

	"go.mongodb.org/mongo-driver/mongo"
)

type Kind int

const (
	Internal Kind = iota
	Validation
	Conflict
	InvalidCredentials
	Forbidden
	NotFound
	Unavailable
	Timeout
)

func (k Kind) String() string {
	switch k {
	case Validation:
		return "validation"
	case Conflict:
		return "conflict"
	case InvalidCredentials:
		return "invalid_credentials"
	case Forbidden:
		return "forbidden"
	case NotFound:
		return "not_found"
	case Unavailable:
		return "unavailable"
	case Timeout:
		return "timeout"
	default:
		return "internal"
	}
}

// Error carries a kind, a message safe to return to clients, and an
// optional underlying cause that never leaves the process.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Kind.String() + ": " + e.Message + ": " + e.Err.Error()
	}
	return e.Kind.String() + ": " + e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

func ValidationError(message string) *Error { return New(Validation, message) }
func ConflictError(message string) *Error   { return New(Conflict, message) }
func ForbiddenError(message string) *Error  { return New(Forbidden, message) }
func NotFoundError(message string) *Error   { return New(NotFound, message) }

func CredentialsError() *Error {
	return New(InvalidCredentials, "Invalid credentials")
}

func UnavailableError(err error) *Error {
	return Wrap(Unavailable, "Database not available. Please try again later.", err)
}

// KindOf returns the kind of err, or Internal when err is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Internal
}

// Status maps an error to the HTTP status the gateway responds with.
func Status(err error) int {
	switch KindOf(err) {
	case Validation, Conflict, InvalidCredentials:
		return http.StatusBadRequest
	case Forbidden:
		return http.StatusForbidden
	case NotFound:
		return http.StatusNotFound
	case Unavailable:
		return http.StatusServiceUnavailable
	case Timeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// ClientMessage returns the message exposed to clients. Internal detail
// (driver errors, stack context) stays server-side.
func ClientMessage(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Kind != Internal {
		return e.Message
	}
	return "Server error"
}

// FromStorage classifies a storage-layer failure: deadline breaches become
// Timeout, connectivity failures become Unavailable, missing documents
// become NotFound with the given message.
func FromStorage(err error, notFoundMessage string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return New(NotFound, notFoundMessage)
	case errors.Is(err, context.DeadlineExceeded):
		return Wrap(Timeout, "Request timeout. Please try again.", err)
	case errors.Is(err, context.Canceled):
		return Wrap(Timeout, "Request cancelled", err)
	case mongo.IsTimeout(err), mongo.IsNetworkError(err), errors.Is(err, mongo.ErrClientDisconnected):
		return UnavailableError(err)
	default:
		return Wrap(Internal, "Server error", err)
	}
}
