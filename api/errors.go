// Package api
// Author: momentics <momentics@gmail.com>
//
// Common error types and error handling utilities for the console bridge.

package api

import (
	"errors"
	"fmt"
)

// Common errors used across the bridge.
var (
	// ErrPeerClosed marks an orderly end-of-stream from the remote agent.
	// It terminates the reactor loop but is never reported as a failure.
	ErrPeerClosed = errors.New("peer closed connection")

	// ErrSendBufferOverflow is raised when a write that must be delivered
	// in full could only be partially queued on the peer socket.
	ErrSendBufferOverflow = errors.New("send buffer overflow")

	// ErrWouldBlock reports that a non-blocking operation has nothing to do right now.
	ErrWouldBlock = errors.New("operation would block")

	ErrInvalidPort    = errors.New("invalid port")
	ErrInvalidConfig  = errors.New("invalid configuration")
	ErrReactorClosed  = errors.New("reactor is closed")
	ErrNotSupported   = errors.New("operation not supported on this platform")
	ErrAttachFailed   = errors.New("attach to target process failed")
	ErrAlreadyStarted = errors.New("server already started")
)

// ErrorCode represents specific error conditions in the bridge.
type ErrorCode int

const (
	ErrCodeOK ErrorCode = iota
	ErrCodeInvalidArgument
	ErrCodeBind
	ErrCodeAccept
	ErrCodeIO
	ErrCodeBufferOverflow
	ErrCodeAttach
	ErrCodeNotSupported
	ErrCodeInternal
)

func (c ErrorCode) String() string {
	switch c {
	case ErrCodeOK:
		return "ok"
	case ErrCodeInvalidArgument:
		return "invalid_argument"
	case ErrCodeBind:
		return "bind"
	case ErrCodeAccept:
		return "accept"
	case ErrCodeIO:
		return "io"
	case ErrCodeBufferOverflow:
		return "buffer_overflow"
	case ErrCodeAttach:
		return "attach"
	case ErrCodeNotSupported:
		return "not_supported"
	default:
		return "internal"
	}
}

// Error represents a structured error with code, context and an optional cause.
type Error struct {
	Code    ErrorCode
	Message string
	Context map[string]any
	Err     error
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := e.Message
	if len(e.Context) > 0 {
		msg = fmt.Sprintf("%s (context: %+v)", msg, e.Context)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Unwrap exposes the cause to errors.Is and errors.As.
func (e *Error) Unwrap() error {
	return e.Err
}

// NewError creates a new structured error.
func NewError(code ErrorCode, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Context: make(map[string]any),
	}
}

// Wrap creates a structured error around cause.
func Wrap(code ErrorCode, message string, cause error) *Error {
	e := NewError(code, message)
	e.Err = cause
	return e
}

// WithContext adds context information to the error.
func (e *Error) WithContext(key string, value any) *Error {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	e.Context[key] = value
	return e
}

// CodeOf returns the code of the outermost *Error in err's chain,
// ErrCodeOK for nil and ErrCodeInternal for foreign errors.
func CodeOf(err error) ErrorCode {
	if err == nil {
		return ErrCodeOK
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ErrCodeInternal
}
