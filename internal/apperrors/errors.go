// Package apperrors holds the error taxonomy shared by the services and the HTTP boundary.
package apperrors

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound        = errors.New("not found")
	ErrAlreadyExists   = errors.New("already exists")
	ErrNotAuthorized   = errors.New("not authorized")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrUnauthenticated = errors.New("unauthenticated")
)

// Error carries a message that is safe to show to the caller. It unwraps to its Kind,
// so errors.Is(err, ErrNotFound) works on every error built by this package.
type Error struct {
	Kind    error
	Code    string
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Kind
}

func newError(kind error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func NotFound(format string, args ...any) error {
	return newError(ErrNotFound, format, args...)
}

func AlreadyExists(format string, args ...any) error {
	return newError(ErrAlreadyExists, format, args...)
}

func NotAuthorized(format string, args ...any) error {
	return newError(ErrNotAuthorized, format, args...)
}

func InvalidArgument(format string, args ...any) error {
	return newError(ErrInvalidArgument, format, args...)
}

func Unauthenticated(format string, args ...any) error {
	return newError(ErrUnauthenticated, format, args...)
}

// WithCode overrides the response code slug, e.g. "account_disabled".
func WithCode(err error, code string) error {
	var appErr *Error
	if errors.As(err, &appErr) {
		cp := *appErr
		cp.Code = code
		return &cp
	}
	return err
}

// Message returns the caller-safe message of err, or fallback when err carries none.
func Message(err error, fallback string) string {
	var appErr *Error
	if errors.As(err, &appErr) && appErr.Message != "" {
		return appErr.Message
	}
	return fallback
}

// Code returns the explicit code slug attached with WithCode, if any.
func Code(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ""
}
