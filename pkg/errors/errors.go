// Package errors defines the coded errors returned by photowall's libraries.
//
// Every [Error] carries a [Code]. Hosts branch on the code instead of the
// message: the HTTP host turns it into a status with [HTTPStatus], the CLI
// into a process exit status with [ExitCode].
//
//	err := errors.New(errors.ErrCodeInvalidOrientation, "unknown orientation: %s", s)
//	if errors.Is(err, errors.ErrCodeInvalidOrientation) {
//	    ...
//	}
//
//	err = errors.Wrap(errors.ErrCodeProbe, cause, "read %s", path)
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code is a machine-readable error category.
type Code string

const (
	ErrCodeInvalidInput       Code = "INVALID_INPUT"
	ErrCodeInvalidOrientation Code = "INVALID_ORIENTATION"
	ErrCodeInvalidConfig      Code = "INVALID_CONFIG"
	ErrCodeInvalidFormat      Code = "INVALID_FORMAT"
	ErrCodeInvalidPath        Code = "INVALID_PATH"
	ErrCodeInvalidViewport    Code = "INVALID_VIEWPORT"

	ErrCodeNotFound     Code = "NOT_FOUND"
	ErrCodeFileNotFound Code = "FILE_NOT_FOUND"
	ErrCodeItemNotFound Code = "ITEM_NOT_FOUND"

	ErrCodeProbe       Code = "PROBE_FAILED"
	ErrCodeUnsupported Code = "UNSUPPORTED"
	ErrCodeCache       Code = "CACHE_ERROR"
	ErrCodeInternal    Code = "INTERNAL_ERROR"
)

// Exit statuses used by the CLI. 1 is the generic failure.
const (
	ExitFailure  = 1
	ExitUsage    = 2 // invalid input or configuration
	ExitNotFound = 3
)

// mapping lists how each code surfaces outside the libraries. Codes not
// listed are internal failures.
var mapping = map[Code]struct{ status, exit int }{
	ErrCodeInvalidInput:       {http.StatusBadRequest, ExitUsage},
	ErrCodeInvalidOrientation: {http.StatusBadRequest, ExitUsage},
	ErrCodeInvalidConfig:      {http.StatusBadRequest, ExitUsage},
	ErrCodeInvalidFormat:      {http.StatusBadRequest, ExitUsage},
	ErrCodeInvalidPath:        {http.StatusBadRequest, ExitUsage},
	ErrCodeInvalidViewport:    {http.StatusBadRequest, ExitUsage},
	ErrCodeNotFound:           {http.StatusNotFound, ExitNotFound},
	ErrCodeFileNotFound:       {http.StatusNotFound, ExitNotFound},
	ErrCodeItemNotFound:       {http.StatusNotFound, ExitNotFound},
	ErrCodeUnsupported:        {http.StatusUnsupportedMediaType, ExitUsage},
}

// Error is a coded error with an optional cause.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// New returns an error with code and a formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap is New with an underlying cause, kept for errors.Is and errors.As.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// GetCode returns the code of the first *Error in err's chain, or "".
func GetCode(err error) Code {
	if e := find(err); e != nil {
		return e.Code
	}
	return ""
}

// Is reports whether the first *Error in err's chain has code.
func Is(err error, code Code) bool {
	return err != nil && GetCode(err) == code
}

// UserMessage returns the message of a coded error without the code
// prefix or cause, and err.Error() for anything else.
func UserMessage(err error) string {
	if e := find(err); e != nil {
		return e.Message
	}
	return err.Error()
}

func find(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return nil
}

// HTTPStatus maps err's code onto a response status; 500 when unknown.
func HTTPStatus(err error) int {
	if m, ok := mapping[GetCode(err)]; ok {
		return m.status
	}
	return http.StatusInternalServerError
}

// ExitCode maps err's code onto a process exit status: 0 for nil, and
// [ExitFailure] when the code is unknown.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	if m, ok := mapping[GetCode(err)]; ok {
		return m.exit
	}
	return ExitFailure
}
