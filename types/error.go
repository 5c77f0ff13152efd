package types

import (
	"errors"
	"fmt"
)

// ErrorCode represents a unified error code across the service.
type ErrorCode string

// Request error codes
const (
	ErrInvalidRequest   ErrorCode = "INVALID_REQUEST"
	ErrPayloadTooLarge  ErrorCode = "PAYLOAD_TOO_LARGE"
	ErrMethodNotAllowed ErrorCode = "METHOD_NOT_ALLOWED"
)

// Aggregation error codes
const (
	ErrAggregationFailed ErrorCode = "AGGREGATION_FAILED"
	ErrInvalidTransition ErrorCode = "INVALID_TRANSITION"
	ErrCanceled          ErrorCode = "CANCELED"
	ErrTimeout           ErrorCode = "TIMEOUT"
)

// Generic error codes
const (
	ErrInternalError      ErrorCode = "INTERNAL_ERROR"
	ErrServiceUnavailable ErrorCode = "SERVICE_UNAVAILABLE"
)

// 图像处理协作方的错误类别，本服务不会产生，仅保留编码以统一错误体系。
const (
	ErrDecodeFailed ErrorCode = "DECODE_FAILED"
	ErrIOFailed     ErrorCode = "IO_FAILED"
)

// Error represents a structured error with code, message, and metadata.
type Error struct {
	Code       ErrorCode `json:"code"`
	Message    string    `json:"message"`
	HTTPStatus int       `json:"http_status,omitempty"`
	Retryable  bool      `json:"retryable"`
	Cause      error     `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// NewError creates a new Error with the given code and message.
func NewError(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

// WithCause adds a cause to the error.
func (e *Error) WithCause(cause error) *Error {
	e.Cause = cause
	return e
}

// WithHTTPStatus sets the HTTP status code.
func (e *Error) WithHTTPStatus(status int) *Error {
	e.HTTPStatus = status
	return e
}

// WithRetryable marks the error as retryable.
func (e *Error) WithRetryable(retryable bool) *Error {
	e.Retryable = retryable
	return e
}

// AsError 在错误链中查找 *Error。
func AsError(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// IsErrorCode reports whether any *Error in the chain carries code.
func IsErrorCode(err error, code ErrorCode) bool {
	e, ok := AsError(err)
	return ok && e.Code == code
}

// IsRetryable checks if an error is retryable.
func IsRetryable(err error) bool {
	if e, ok := AsError(err); ok {
		return e.Retryable
	}
	return false
}

// GetErrorCode extracts the error code from an error.
func GetErrorCode(err error) ErrorCode {
	if e, ok := AsError(err); ok {
		return e.Code
	}
	return ""
}

// ====== 常用构造 ======

// NewInvalidRequestError 请求体或参数不合法（400）。
func NewInvalidRequestError(message string) *Error {
	return NewError(ErrInvalidRequest, message).WithHTTPStatus(400)
}

// NewAggregationError 聚合任务失败，不可重试（500）。
func NewAggregationError(message string, cause error) *Error {
	return NewError(ErrAggregationFailed, message).WithCause(cause).WithHTTPStatus(500)
}

// NewTimeoutError 聚合任务超过 job_timeout。属于聚合失败（500），可重试。
func NewTimeoutError(message string, cause error) *Error {
	return NewError(ErrTimeout, message).WithCause(cause).WithHTTPStatus(500).WithRetryable(true)
}

// NewCanceledError 客户端取消或服务关闭。属于聚合失败（500），可重试。
func NewCanceledError(message string, cause error) *Error {
	return NewError(ErrCanceled, message).WithCause(cause).WithHTTPStatus(500).WithRetryable(true)
}
