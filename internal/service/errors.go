package service

import (
	"errors"
)

var (
	ErrValidation   = errors.New("validation error")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")

	// ErrInvalidToken covers every reason a presented token is refused.
	ErrInvalidToken = errors.New("invalid or expired token")
)

// Error is a failure with a message that can be shown to API clients. Kind is
// one of the sentinels above; Cause keeps the underlying error for logs.
type Error struct {
	Kind    error
	Message string
	Cause   error
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() []error {
	errs := make([]error, 0, 2)
	if e.Kind != nil {
		errs = append(errs, e.Kind)
	}
	if e.Cause != nil {
		errs = append(errs, e.Cause)
	}
	return errs
}

func invalid(msg string) error { return &Error{Kind: ErrValidation, Message: msg} }

func invalidCause(msg string, cause error) error {
	return &Error{Kind: ErrValidation, Message: msg, Cause: cause}
}

func notFound(msg string) error { return &Error{Kind: ErrNotFound, Message: msg} }

func conflict(msg string) error { return &Error{Kind: ErrConflict, Message: msg} }

func unauthorized(msg string, cause error) error {
	return &Error{Kind: ErrUnauthorized, Message: msg, Cause: cause}
}

func forbidden(msg string) error { return &Error{Kind: ErrForbidden, Message: msg} }

// ClientMessage returns the client-facing message carried by err, if any.
func ClientMessage(err error) (string, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Message, true
	}
	return "", false
}
