package response

import (
	"errors"
)

// Error is a domain error that knows which HTTP status it should be rendered with.
type Error struct {
	Code int
	Err  error
}

func (e *Error) Error() string {
	return e.Err.Error()
}

func (e *Error) Is(target error) bool {
	var t *Error
	ok := errors.As(target, &t)
	if !ok {
		return false
	}
	return e.Code == t.Code && e.Err.Error() == t.Err.Error()
}

// StatusCode returns the HTTP status the error maps to.
func (e *Error) StatusCode() int {
	return e.Code
}

// Message returns the client-facing text of the error without any wrapped cause.
func (e *Error) Message() string {
	return e.Err.Error()
}

func NewError(code int, err string) error {
	return &Error{code, errors.New(err)}
}
