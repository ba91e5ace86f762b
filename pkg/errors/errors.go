// Package errors defines the coded errors shared by the engine, pipeline and
// CLI.
//
// An [Error] carries a [Code] that callers branch on, a message for people and
// an optional cause. Codes group by what went wrong:
//
//   - INVALID_*: rejected configuration, catalog, format or argument
//   - FILE_NOT_FOUND: a catalog or config path does not exist
//   - SCHEDULER: the tick scheduler refused a request
//   - DEGENERATE_GEOMETRY: cells dropped from a frame
//   - INTERNAL_ERROR: a tick panicked or produced non-finite values
//
// Branch on codes with [Is], and turn an error into a process status with
// [ExitCode]:
//
//	if errors.Is(err, errors.ErrCodeInvalidCatalog) {
//		return errors.ExitCode(err)
//	}
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

const (
	ErrCodeInvalidInput   Code = "INVALID_INPUT"
	ErrCodeInvalidConfig  Code = "INVALID_CONFIG"
	ErrCodeInvalidCatalog Code = "INVALID_CATALOG"
	ErrCodeInvalidFormat  Code = "INVALID_FORMAT"

	ErrCodeFileNotFound Code = "FILE_NOT_FOUND"

	ErrCodeScheduler  Code = "SCHEDULER"
	ErrCodeDegenerate Code = "DEGENERATE_GEOMETRY"
	ErrCodeInternal   Code = "INTERNAL_ERROR"
)

// Error is a coded error. Its text is "CODE: message[: cause]".
type Error struct {
	Code    Code
	Message string
	Cause   error
}

func (e *Error) Error() string {
	msg := string(e.Code) + ": " + e.Message
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Cause }

// New returns an Error with a formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap returns an Error with a formatted message around cause.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	e := New(code, format, args...)
	e.Cause = cause
	return e
}

// Is reports whether the first *Error in err's chain has code.
func Is(err error, code Code) bool {
	var e *Error
	return errors.As(err, &e) && e.Code == code
}

// GetCode returns the code of the first *Error in err's chain, or "".
func GetCode(err error) Code {
	var e *Error
	if !errors.As(err, &e) {
		return ""
	}
	return e.Code
}

// UserMessage returns the error without its code prefix. A wrapped cause is
// kept after the message.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		if e.Cause != nil {
			return e.Message + ": " + e.Cause.Error()
		}
		return e.Message
	}
	return err.Error()
}

// Process exit statuses returned by [ExitCode].
const (
	ExitOK           = 0
	ExitFailure      = 1
	ExitInvalidInput = 2
	ExitFileNotFound = 3
)

// ExitCode maps err to a process exit status.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	switch GetCode(err) {
	case ErrCodeInvalidInput, ErrCodeInvalidConfig, ErrCodeInvalidCatalog, ErrCodeInvalidFormat:
		return ExitInvalidInput
	case ErrCodeFileNotFound:
		return ExitFileNotFound
	}
	return ExitFailure
}
