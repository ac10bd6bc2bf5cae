// Package apperr defines the tagged error taxonomy shared by every
// service. Each failure a handler can surface carries exactly one Code
// plus a human-readable message; the HTTP layer maps codes to statuses.
package apperr

import (
	"errors"
	"fmt"
)

// Code identifies a class of expected failure.
type Code string

const (
	CodeInvalidInput      Code = "invalid_input"
	CodeAlreadyExists     Code = "already_exists"
	CodeNotFound          Code = "not_found"
	CodeInvalidCredential Code = "invalid_credential"
	CodeTicketExpired     Code = "ticket_expired"
	CodeTicketInvalid     Code = "ticket_invalid"
	CodeTokenExpired      Code = "token_expired"
	CodeTokenMalformed    Code = "token_malformed"
	CodeUnauthorized      Code = "unauthorized"
	CodeForbidden         Code = "forbidden"
	CodeInternal          Code = "internal"
)

// Error is a tagged, user-presentable error.
type Error struct {
	Code    Code
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// New builds a tagged error with the given code and message.
func New(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

func InvalidInput(format string, args ...any) *Error {
	return New(CodeInvalidInput, format, args...)
}

func AlreadyExists(format string, args ...any) *Error {
	return New(CodeAlreadyExists, format, args...)
}

func NotFound(format string, args ...any) *Error {
	return New(CodeNotFound, format, args...)
}

func InvalidCredential(format string, args ...any) *Error {
	return New(CodeInvalidCredential, format, args...)
}

func Unauthorized(format string, args ...any) *Error {
	return New(CodeUnauthorized, format, args...)
}

func Forbidden(format string, args ...any) *Error {
	return New(CodeForbidden, format, args...)
}

// CodeOf extracts the taxonomy code from err, or CodeInternal for
// anything that is not a tagged error.
func CodeOf(err error) Code {
	var tagged *Error
	if errors.As(err, &tagged) {
		return tagged.Code
	}
	return CodeInternal
}

// Is reports whether err carries the given code.
func Is(err error, code Code) bool {
	return CodeOf(err) == code
}
