package apperrors

import (
	"errors"
	"fmt"
)

// Error codes shared across the service.
const (
	CodeNotFound       = "NOT_FOUND"
	CodeAlreadyExists  = "ALREADY_EXISTS"
	CodeInvalidInput   = "INVALID_INPUT"
	CodeOutOfRange     = "OUT_OF_RANGE"
	CodeSourceFetch    = "SOURCE_FETCH_ERROR"
	CodeStoreIO        = "STORE_IO_ERROR"
	CodeCacheOperation = "CACHE_ERROR"
	CodeEventPublish   = "EVENT_PUBLISH_ERROR"
	CodeInternalServer = "INTERNAL_SERVER"
)

type AppError struct {
	Code    string
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func New(code, message string) *AppError {
	return &AppError{Code: code, Message: message}
}

func Wrap(err error, code, message string) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

// CodeOf extracts the application error code, falling back to
// INTERNAL_SERVER for plain errors.
func CodeOf(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeInternalServer
}

// MessageOf returns the client-safe reason string for an error. Internal
// detail stays in the wrapped error and the logs.
func MessageOf(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return "internal server error"
}

func IsCode(err error, code string) bool {
	return CodeOf(err) == code
}
