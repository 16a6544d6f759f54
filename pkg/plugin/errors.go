package plugin

import (
	"errors"
	"fmt"
)

// ErrorCode is the string code reported to callers of show, hide and animate.
type ErrorCode string

const (
	// CodeNotFound means the requested splash source does not exist.
	CodeNotFound ErrorCode = "notFound"

	// CodeNoSplashScreen means hide or animate was called with no splash view.
	CodeNoSplashScreen ErrorCode = "noSplashScreen"

	// CodeAlreadyActive means show was called while a splash is active.
	CodeAlreadyActive ErrorCode = "alreadyActive"

	// CodeAnimateMethodNotFound means animate was called with no animation delegate.
	CodeAnimateMethodNotFound ErrorCode = "animateMethodNotFound"

	// CodeAnimateMethodFailed means the animation delegate reported a failure.
	CodeAnimateMethodFailed ErrorCode = "animateMethodFailed"
)

// Error is a splash call failure carrying one of the public codes.
// Two Errors match with errors.Is when their codes are equal.
type Error struct {
	Code    ErrorCode
	Message string
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Message == "" {
		return string(e.Code)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Is matches any *Error with the same code.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

// NewError builds an Error with a formatted message.
func NewError(code ErrorCode, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Sentinels for errors.Is.
var (
	ErrNotFound              = &Error{Code: CodeNotFound}
	ErrNoSplashScreen        = &Error{Code: CodeNoSplashScreen}
	ErrAlreadyActive         = &Error{Code: CodeAlreadyActive}
	ErrAnimateMethodNotFound = &Error{Code: CodeAnimateMethodNotFound}
	ErrAnimateMethodFailed   = &Error{Code: CodeAnimateMethodFailed}
)

// CodeOf returns the code carried by err, or "" if err is not an *Error.
func CodeOf(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// RPCError represents an uncoded error returned from an RPC call.
type RPCError struct {
	Message string
}

// Error implements the error interface.
func (e *RPCError) Error() string {
	return e.Message
}
