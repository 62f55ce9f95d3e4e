package apperror

import (
	"errors"
	"net/http"
)

// Kind classifies an error for callers that need to branch on failure mode
// without parsing messages.
type Kind int

const (
	KindInternal Kind = iota
	KindNotFound
	KindInvalidState
	KindUnauthorized
	KindCapacityExceeded
	KindInsufficientFunds
	KindValidation
	KindStorage
)

// Error represents a structured domain error. Domain errors are terminal for
// the request that produced them; only KindStorage is worth retrying, and the
// retry decision belongs to the caller.
type Error struct {
	Kind    Kind   `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
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

// WithCode overrides the machine-readable code.
func (e *Error) WithCode(code string) *Error {
	e.Code = code
	return e
}

// HTTPStatus maps the error kind to an HTTP status code.
func (e *Error) HTTPStatus() int {
	switch e.Kind {
	case KindNotFound:
		return http.StatusNotFound
	case KindInvalidState:
		return http.StatusConflict
	case KindUnauthorized:
		return http.StatusForbidden
	case KindCapacityExceeded, KindInsufficientFunds:
		return http.StatusUnprocessableEntity
	case KindValidation:
		return http.StatusBadRequest
	case KindStorage:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// NotFound creates an error for an absent item, listing, user or shop entry.
func NotFound(message string) *Error {
	if message == "" {
		message = "resource not found"
	}
	return &Error{Kind: KindNotFound, Code: "NOT_FOUND", Message: message}
}

// InvalidState creates an error for an illegal state transition, e.g. buying
// a listing that is no longer active.
func InvalidState(message string) *Error {
	return &Error{Kind: KindInvalidState, Code: "INVALID_STATE", Message: message}
}

// Unauthorized creates an error for an actor that does not own the resource.
func Unauthorized(message string) *Error {
	if message == "" {
		message = "not allowed"
	}
	return &Error{Kind: KindUnauthorized, Code: "UNAUTHORIZED", Message: message}
}

// CapacityExceeded creates an error for a full inventory.
func CapacityExceeded(message string) *Error {
	return &Error{Kind: KindCapacityExceeded, Code: "CAPACITY_EXCEEDED", Message: message}
}

// InsufficientFunds creates an error for a balance smaller than the amount due.
func InsufficientFunds(message string) *Error {
	if message == "" {
		message = "insufficient funds"
	}
	return &Error{Kind: KindInsufficientFunds, Code: "INSUFFICIENT_FUNDS", Message: message}
}

// Validation creates an error for malformed input.
func Validation(message string) *Error {
	return &Error{Kind: KindValidation, Code: "VALIDATION_ERROR", Message: message}
}

// Storage wraps a storage-layer failure (transaction abort, version conflict).
// The whole logical operation had no effect and may be retried from scratch.
func Storage(message string, cause error) *Error {
	if message == "" {
		message = "storage error"
	}
	return &Error{Kind: KindStorage, Code: "STORAGE_ERROR", Message: message, cause: cause}
}

// Internal wraps an unexpected failure.
func Internal(message string, cause error) *Error {
	if message == "" {
		message = "an unexpected error occurred"
	}
	return &Error{Kind: KindInternal, Code: "INTERNAL_ERROR", Message: message, cause: cause}
}

// KindOf returns the kind of err, unwrapping as needed, or KindInternal for
// foreign errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// CodeOf returns the machine code of err, unwrapping as needed, or
// INTERNAL_ERROR for foreign errors.
func CodeOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return "INTERNAL_ERROR"
}
