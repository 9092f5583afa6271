// Package apperrors provides the coded error taxonomy shared by the chat pipeline.
package apperrors

import (
	"errors"
	"fmt"
)

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	// ErrCodeValidation is a bad or missing filter argument.
	ErrCodeValidation ErrorCode = "VALIDATION_FAILED"
	// ErrCodeUnknownTool is a tool name the registry does not know.
	ErrCodeUnknownTool ErrorCode = "UNKNOWN_TOOL"
	// ErrCodeExecutor is a store failure while running a filter.
	ErrCodeExecutor ErrorCode = "EXECUTOR_FAILED"
	// ErrCodeRouter is an inference endpoint failure or malformed reply.
	ErrCodeRouter ErrorCode = "ROUTER_FAILED"
	// ErrCodeRequest is a missing required input at the transport boundary.
	ErrCodeRequest ErrorCode = "REQUEST_INVALID"
	// ErrCodeInternal is anything unexpected.
	ErrCodeInternal ErrorCode = "INTERNAL"
)

// Error is a structured application error.
type Error struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Details string    `json:"details,omitempty"`
	Err     error     `json:"-"`
}

func (e *Error) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewValidationError reports an invalid argument for a tool field.
func NewValidationError(tool, details string) *Error {
	return &Error{
		Code:    ErrCodeValidation,
		Message: fmt.Sprintf("invalid arguments for %s", tool),
		Details: details,
	}
}

// NewUnknownToolError reports a tool name that is not registered.
func NewUnknownToolError(name string) *Error {
	return &Error{
		Code:    ErrCodeUnknownTool,
		Message: fmt.Sprintf("unknown tool %q", name),
	}
}

// NewExecutorError wraps a store failure for a tool.
func NewExecutorError(tool string, err error) *Error {
	return &Error{
		Code:    ErrCodeExecutor,
		Message: fmt.Sprintf("%s failed", tool),
		Details: errString(err),
		Err:     err,
	}
}

// NewRouterError wraps an inference failure.
func NewRouterError(err error) *Error {
	return &Error{
		Code:    ErrCodeRouter,
		Message: "query routing failed",
		Details: errString(err),
		Err:     err,
	}
}

// NewRequestError reports a bad client request.
func NewRequestError(message string) *Error {
	return &Error{
		Code:    ErrCodeRequest,
		Message: message,
	}
}

// NewInternalError wraps an unexpected failure.
func NewInternalError(err error) *Error {
	return &Error{
		Code:    ErrCodeInternal,
		Message: "internal error",
		Details: errString(err),
		Err:     err,
	}
}

// CodeOf returns the code of the first *Error in err's chain, or ErrCodeInternal.
func CodeOf(err error) ErrorCode {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ErrCodeInternal
}

// IsValidation reports whether err is a validation or unknown-tool error.
func IsValidation(err error) bool {
	if err == nil {
		return false
	}
	code := CodeOf(err)
	return code == ErrCodeValidation || code == ErrCodeUnknownTool
}

// IsExecutor reports whether err is an executor failure.
func IsExecutor(err error) bool {
	return err != nil && CodeOf(err) == ErrCodeExecutor
}

// IsRouter reports whether err is a router failure.
func IsRouter(err error) bool {
	return err != nil && CodeOf(err) == ErrCodeRouter
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
