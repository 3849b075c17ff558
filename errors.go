// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package taskflow

import (
	"errors"
	"fmt"
)

// Standard JSON-RPC 2.0 error codes.
const (
	// JSONParseErrorCode indicates invalid JSON payload.
	JSONParseErrorCode = -32700
	// InvalidRequestErrorCode indicates request payload validation error.
	InvalidRequestErrorCode = -32600
	// MethodNotFoundErrorCode indicates the method does not exist.
	MethodNotFoundErrorCode = -32601
	// InvalidParamsErrorCode indicates invalid method parameters.
	InvalidParamsErrorCode = -32602
	// InternalErrorCode indicates an internal server error.
	InternalErrorCode = -32603
)

// Protocol specific error codes.
const (
	// TaskNotFoundErrorCode indicates the specified task ID was not found.
	TaskNotFoundErrorCode = -32001
	// TaskNotCancelableErrorCode indicates the task is in a final state and cannot be canceled.
	TaskNotCancelableErrorCode = -32002
	// PushNotificationNotSupportedErrorCode indicates the agent does not support push notifications.
	PushNotificationNotSupportedErrorCode = -32003
	// UnsupportedOperationErrorCode indicates the requested operation is not supported.
	UnsupportedOperationErrorCode = -32004
	// ContentTypeNotSupportedErrorCode indicates a mismatch in supported content types.
	ContentTypeNotSupportedErrorCode = -32005
)

// Error is a protocol-level failure carrying a JSON-RPC error code. Every
// error that escapes an operation is either an *Error or gets normalized
// into an internal one before it reaches the wire.
type Error struct {
	// Code is the JSON-RPC error code.
	Code int
	// Message is a short description of the error.
	Message string
	// Data contains optional additional error details.
	Data any
	// TaskID is the task the failure relates to, if known.
	TaskID string
}

var _ error = (*Error)(nil)

// Error implements the error interface.
func (e *Error) Error() string {
	if e.TaskID != "" {
		return fmt.Sprintf("taskflow: %s (code %d, task %s)", e.Message, e.Code, e.TaskID)
	}
	return fmt.Sprintf("taskflow: %s (code %d)", e.Message, e.Code)
}

// RPCError converts the error into its wire representation.
func (e *Error) RPCError() *JSONRPCError {
	return &JSONRPCError{
		Code:    e.Code,
		Message: e.Message,
		Data:    e.Data,
	}
}

// NewJSONParseError creates a new JSON parse error.
func NewJSONParseError() *Error {
	return &Error{
		Code:    JSONParseErrorCode,
		Message: "Invalid JSON payload",
	}
}

// NewInvalidRequestError creates a new invalid request error.
func NewInvalidRequestError() *Error {
	return &Error{
		Code:    InvalidRequestErrorCode,
		Message: "Request payload validation error",
	}
}

// NewMethodNotFoundError creates a new method not found error.
func NewMethodNotFoundError() *Error {
	return &Error{
		Code:    MethodNotFoundErrorCode,
		Message: "Method not found",
	}
}

// NewInvalidParamsError creates a new invalid params error.
func NewInvalidParamsError() *Error {
	return &Error{
		Code:    InvalidParamsErrorCode,
		Message: "Invalid parameters",
	}
}

// NewInternalError creates a new internal error.
func NewInternalError() *Error {
	return &Error{
		Code:    InternalErrorCode,
		Message: "Internal error",
	}
}

// NewTaskNotFoundError creates a new task not found error for the given task.
func NewTaskNotFoundError(taskID string) *Error {
	return &Error{
		Code:    TaskNotFoundErrorCode,
		Message: "Task not found",
		TaskID:  taskID,
	}
}

// NewTaskNotCancelableError creates a new task not cancelable error for the given task.
func NewTaskNotCancelableError(taskID string) *Error {
	return &Error{
		Code:    TaskNotCancelableErrorCode,
		Message: "Task cannot be canceled",
		TaskID:  taskID,
	}
}

// NewPushNotificationNotSupportedError creates a new push notification not supported error.
func NewPushNotificationNotSupportedError() *Error {
	return &Error{
		Code:    PushNotificationNotSupportedErrorCode,
		Message: "Push Notification is not supported",
	}
}

// NewUnsupportedOperationError creates a new unsupported operation error.
func NewUnsupportedOperationError() *Error {
	return &Error{
		Code:    UnsupportedOperationErrorCode,
		Message: "This operation is not supported",
	}
}

// NewContentTypeNotSupportedError creates a new content type not supported error.
func NewContentTypeNotSupportedError() *Error {
	return &Error{
		Code:    ContentTypeNotSupportedErrorCode,
		Message: "Content type not supported",
	}
}

// NormalizeError maps err to a protocol [*Error]. Errors that already carry a
// code pass through unchanged; anything else becomes an internal error with
// the original text preserved as error data.
func NormalizeError(err error) *Error {
	if err == nil {
		return nil
	}
	var protoErr *Error
	if errors.As(err, &protoErr) {
		return protoErr
	}
	normalized := NewInternalError()
	normalized.Data = err.Error()
	return normalized
}
