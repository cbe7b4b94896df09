package service

import "errors"

// Error kinds. Handlers map them to HTTP status codes; the message of the
// wrapping error is what clients see.
var (
	ErrNotFound     = errors.New("not found")
	ErrForbidden    = errors.New("forbidden")
	ErrUnauthorized = errors.New("unauthorized")
	ErrConflict     = errors.New("conflict")
	ErrInvalid      = errors.New("invalid")
	ErrQuota        = errors.New("quota exceeded")
)

type kindError struct {
	kind error
	msg  string
}

func (e *kindError) Error() string { return e.msg }
func (e *kindError) Unwrap() error { return e.kind }

func fail(kind error, msg string) error {
	return &kindError{kind: kind, msg: msg}
}
