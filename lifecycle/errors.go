package lifecycle

import (
	"errors"
	"net/http"
)

// Kind classifies engine errors so handlers can pick a status code and
// clients can branch without parsing messages.
type Kind string

const (
	KindValidation      Kind = "validation"
	KindDuplicateActive Kind = "duplicate_active"
	KindDailyLimit      Kind = "daily_limit"
	KindConflict        Kind = "conflict"
	KindNotFound        Kind = "not_found"
	KindDependency      Kind = "dependency"
)

// Error is a kinded engine error.
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

func (e *Error) Unwrap() error { return e.Err }

// E builds a plain kinded error.
func E(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

// Wrap attaches a kind and message to an underlying error.
func Wrap(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Message: msg, Err: err}
}

// KindOf extracts the kind of an error, defaulting to dependency for
// anything the engine did not classify.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindDependency
}

// HTTPStatus maps an engine error to a response code.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindValidation:
		return http.StatusBadRequest
	case KindDuplicateActive, KindDailyLimit, KindConflict:
		return http.StatusConflict
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
